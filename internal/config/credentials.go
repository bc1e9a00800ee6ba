package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	TokenKey   = "SLACK_BOT_TOKEN"
	ChannelKey = "SLACK_CHANNEL_ID"

	defaultConfigFile = "config.json"
)

type Credentials struct {
	Token   string
	Channel string
}

// ConfigurationError reports missing or unreadable credentials. It is always
// returned before any network call is made.
type ConfigurationError struct {
	Field  string
	Path   string
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e == nil {
		return "configuration error"
	}
	var b strings.Builder
	b.WriteString("configuration error")
	if e.Path != "" {
		b.WriteString(" in " + e.Path)
	}
	if e.Field != "" {
		b.WriteString(": " + e.Field)
	}
	if e.Reason != "" {
		b.WriteString(" " + e.Reason)
	}
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

func (e *ConfigurationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// UserConfigPath is the per-user fallback consulted when no --config is given
// and ./config.json does not exist.
func UserConfigPath() (string, error) {
	root, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, "slack-pdf-uploader", "config.json"), nil
}

// Resolve merges the config file with the environment. File values win per
// field; the token is required.
func Resolve(explicitPath string, lookupEnv func(string) (string, bool)) (Credentials, error) {
	fromFile, err := loadConfigFile(explicitPath)
	if err != nil {
		return Credentials{}, err
	}
	fromEnv := Credentials{
		Token:   lookupTrimmed(lookupEnv, TokenKey),
		Channel: lookupTrimmed(lookupEnv, ChannelKey),
	}

	merged := Credentials{
		Token:   firstNonEmpty(fromFile.Token, fromEnv.Token),
		Channel: firstNonEmpty(fromFile.Channel, fromEnv.Channel),
	}
	if merged.Token == "" {
		return Credentials{}, &ConfigurationError{Field: TokenKey, Reason: "is not set in the config file or environment"}
	}
	return merged, nil
}

// WithChannel applies a command-line channel override and requires that a
// channel is known afterwards.
func (c Credentials) WithChannel(override string) (Credentials, error) {
	if trimmed := strings.TrimSpace(override); trimmed != "" {
		c.Channel = trimmed
	}
	if c.Channel == "" {
		return Credentials{}, &ConfigurationError{Field: ChannelKey, Reason: "is missing; pass --channel or set it in the config file or environment"}
	}
	return c, nil
}

func loadConfigFile(explicitPath string) (Credentials, error) {
	explicitPath = strings.TrimSpace(explicitPath)
	if explicitPath != "" {
		creds, err := LoadFile(explicitPath)
		if err != nil {
			return Credentials{}, &ConfigurationError{Path: explicitPath, Reason: "could not be read", Err: err}
		}
		return creds, nil
	}

	candidates := []string{defaultConfigFile}
	if userPath, err := UserConfigPath(); err == nil {
		candidates = append(candidates, userPath)
	}
	for _, path := range candidates {
		creds, err := LoadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return Credentials{}, &ConfigurationError{Path: path, Reason: "could not be read", Err: err}
		}
		return creds, nil
	}
	return Credentials{}, nil
}

// LoadFile reads credentials from a JSON, YAML or dotenv file, chosen by
// extension. Keys are matched as SLACK_BOT_TOKEN/SLACK_CHANNEL_ID or their
// lowercase forms.
func LoadFile(path string) (Credentials, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return loadStructured(path, json.Unmarshal)
	case ".yaml", ".yml":
		return loadStructured(path, yaml.Unmarshal)
	default:
		values, err := godotenv.Read(path)
		if err != nil {
			return Credentials{}, err
		}
		return Credentials{
			Token:   pickKey(values, TokenKey),
			Channel: pickKey(values, ChannelKey),
		}, nil
	}
}

func loadStructured(path string, unmarshal func([]byte, any) error) (Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Credentials{}, err
	}
	raw := map[string]any{}
	if err := unmarshal(data, &raw); err != nil {
		return Credentials{}, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	values := make(map[string]string, len(raw))
	for key, value := range raw {
		if text, ok := value.(string); ok {
			values[key] = text
		}
	}
	return Credentials{
		Token:   pickKey(values, TokenKey),
		Channel: pickKey(values, ChannelKey),
	}, nil
}

func pickKey(values map[string]string, key string) string {
	if v := strings.TrimSpace(values[key]); v != "" {
		return v
	}
	return strings.TrimSpace(values[strings.ToLower(key)])
}

func lookupTrimmed(lookupEnv func(string) (string, bool), key string) string {
	if lookupEnv == nil {
		return ""
	}
	value, _ := lookupEnv(key)
	return strings.TrimSpace(value)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
