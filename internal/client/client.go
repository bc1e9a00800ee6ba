package client

import (
	"net/http"

	"slack-pdf-uploader/internal/config"
	"slack-pdf-uploader/internal/logging"

	"github.com/slack-go/slack"
)

const (
	MethodJoin           = "conversations.join"
	MethodUploadV2       = "files.uploadV2"
	MethodGetUploadURL   = "files.getUploadURLExternal"
	MethodTransfer       = "upload_url"
	MethodCompleteUpload = "files.completeUploadExternal"
	MethodFileInfo       = "files.info"
	MethodPostMessage    = "chat.postMessage"

	maxResponseBytes = 1 << 20
)

// SlackClient issues the Web API calls of a single upload run. Calls that
// slack-go covers go through it; the multipart upload and the pre-signed
// byte transfer are plain HTTP requests on the same http.Client.
type SlackClient struct {
	http      *http.Client
	api       *slack.Client
	token     string
	endpoints config.APIEndpoints
	logger    *logging.Logger
}

type File struct {
	ID        string
	Permalink string
}

func New(httpClient *http.Client, token string, endpoints config.APIEndpoints, logger *logging.Logger) *SlackClient {
	if logger == nil {
		panic("client.New: logger must not be nil")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.DefaultTimeout}
	}
	api := slack.New(token,
		slack.OptionHTTPClient(httpClient),
		slack.OptionAPIURL(endpoints.BaseURL),
	)
	return &SlackClient{http: httpClient, api: api, token: token, endpoints: endpoints, logger: logger}
}
