package config

import (
	"errors"
	"net/url"
	"strings"
	"time"

	flags "github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
)

const (
	DefaultAPIURL  = "https://slack.com/api/"
	DefaultTimeout = 30 * time.Second

	primaryUploadMethod = "files.uploadV2"
)

type Options struct {
	File      string        `short:"f" long:"file" required:"true" description:"PDF file to upload"`
	Channel   string        `short:"c" long:"channel" description:"Slack channel ID (overrides config file and environment)"`
	Comment   string        `short:"m" long:"comment" description:"Initial comment attached to the upload"`
	Title     string        `long:"title" description:"File title shown in Slack (defaults to the file name)"`
	LinkText  string        `long:"link-text" description:"Link text of the follow-up message (defaults to the file name)"`
	Config    string        `long:"config" env:"SLACK_UPLOADER_CONFIG" description:"Config file (.json, .yaml/.yml or dotenv); defaults to ./config.json"`
	APIURL    string        `long:"api-url" env:"SLACK_API_URL" default:"https://slack.com/api/" description:"Slack Web API base URL"`
	Timeout   time.Duration `long:"timeout" default:"30s" description:"Timeout applied to each HTTP call"`
	NoJoin    bool          `long:"no-join" description:"Do not try to join the channel before uploading"`
	Debug     bool          `short:"d" long:"debug" env:"SLACK_UPLOADER_DEBUG" description:"Echo outgoing requests with secrets masked"`
	LogToFile bool          `long:"log-to-file" description:"Persist a JSONL log of the run under the user cache directory"`
}

type APIEndpoints struct {
	// BaseURL always ends with a slash so method names can be appended.
	BaseURL   string
	UploadURL string
}

// ParseOptions loads ./.env without overriding the process environment and
// parses args (os.Args[1:] when nil).
func ParseOptions(args []string) (Options, error) {
	_ = godotenv.Load()
	opts := Options{}
	parser := flags.NewParser(&opts, flags.Default)
	var err error
	if args == nil {
		_, err = parser.Parse()
	} else {
		_, err = parser.ParseArgs(args)
	}
	if err != nil {
		return Options{}, err
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return opts, nil
}

func BuildEndpoints(rawBaseURL string) (APIEndpoints, error) {
	base, err := buildAPIBaseURL(rawBaseURL)
	if err != nil {
		return APIEndpoints{}, err
	}
	return APIEndpoints{
		BaseURL:   base,
		UploadURL: base + primaryUploadMethod,
	}, nil
}

func buildAPIBaseURL(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		value = DefaultAPIURL
	}
	parsed, err := url.Parse(value)
	if err != nil {
		return "", err
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return "", errors.New("expected absolute URL like https://slack.com/api/")
	}
	if !strings.EqualFold(parsed.Scheme, "http") && !strings.EqualFold(parsed.Scheme, "https") {
		return "", errors.New("API URL scheme must be http or https")
	}

	parsed.RawQuery = ""
	parsed.Fragment = ""
	parsed.RawPath = ""
	parsed.Path = strings.TrimRight(parsed.Path, "/") + "/"

	return parsed.String(), nil
}
