package runtime

import (
	"context"
	"net/http"
	"os"

	"slack-pdf-uploader/internal/app"
	"slack-pdf-uploader/internal/client"
	"slack-pdf-uploader/internal/config"
	"slack-pdf-uploader/internal/logging"
)

type Service interface {
	RunContext(ctx context.Context) (app.Result, error)
}

type StartHooks struct {
	OnStatus func(string)
}

type uploadService struct {
	uploader *app.Uploader
	request  app.Request
	logger   *logging.Logger
}

func NewService(opts config.Options, logger *logging.Logger) (Service, error) {
	return NewServiceWithHooks(opts, logger, StartHooks{}, os.LookupEnv)
}

// NewServiceWithHooks resolves credentials and wires the Slack client. Every
// configuration problem is reported here, before any request is sent.
func NewServiceWithHooks(opts config.Options, logger *logging.Logger, hooks StartHooks, lookupEnv func(string) (string, bool)) (Service, error) {
	if logger == nil {
		panic("runtime.NewServiceWithHooks: logger must not be nil")
	}
	creds, err := config.Resolve(opts.Config, lookupEnv)
	if err != nil {
		return nil, err
	}
	creds, err = creds.WithChannel(opts.Channel)
	if err != nil {
		return nil, err
	}

	endpoints, err := config.BuildEndpoints(opts.APIURL)
	if err != nil {
		return nil, &config.ConfigurationError{Field: "api-url", Reason: "is invalid", Err: err}
	}
	logger.Debug("constructed API endpoints",
		logging.Field("base_url", endpoints.BaseURL),
		logging.Field("upload_url", endpoints.UploadURL),
		logging.Field("token", creds.Token),
	)

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = config.DefaultTimeout
	}
	httpClient := &http.Client{Timeout: timeout}
	if logger.DebugEnabled() {
		httpClient.Transport = client.WithRequestEcho(http.DefaultTransport, logger)
	}
	slackClient := client.New(httpClient, creds.Token, endpoints, logger)

	return &uploadService{
		uploader: app.New(slackClient, logger, app.Callbacks{OnStatusChange: hooks.OnStatus}),
		request: app.Request{
			Path:     opts.File,
			Channel:  creds.Channel,
			Comment:  opts.Comment,
			Title:    opts.Title,
			LinkText: opts.LinkText,
			SkipJoin: opts.NoJoin,
		},
		logger: logger,
	}, nil
}

func (s *uploadService) RunContext(ctx context.Context) (app.Result, error) {
	s.logger.Debug("upload run starting",
		logging.Field("file", s.request.Path),
		logging.Field("channel", s.request.Channel),
		logging.Field("join", !s.request.SkipJoin),
	)
	return s.uploader.Run(ctx, s.request)
}
