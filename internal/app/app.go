package app

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"

	"slack-pdf-uploader/internal/client"
	"slack-pdf-uploader/internal/config"
	"slack-pdf-uploader/internal/logging"
	"slack-pdf-uploader/internal/runstatus"
)

// SlackAPI is the subset of Slack calls an upload run needs.
type SlackAPI interface {
	JoinChannel(ctx context.Context, channel string) error
	UploadPrimary(ctx context.Context, upload client.PrimaryUpload) (client.File, error)
	RequestUploadTarget(ctx context.Context, filename string, size int64) (client.UploadTarget, error)
	TransferBytes(ctx context.Context, target client.UploadTarget, content io.Reader, size int64) error
	CompleteUpload(ctx context.Context, upload client.CompletedUpload) (client.File, error)
	FilePermalink(ctx context.Context, fileID string) (string, error)
	PostMessage(ctx context.Context, channel, text string) (string, error)
}

var _ SlackAPI = (*client.SlackClient)(nil)

type Request struct {
	Path     string
	Channel  string
	Comment  string
	Title    string
	LinkText string
	SkipJoin bool
}

type Strategy string

const (
	StrategyPrimary  Strategy = "primary"
	StrategyExternal Strategy = "external"
)

type Result struct {
	Path      string
	Channel   string
	Strategy  Strategy
	FileID    string
	Permalink string
	MessageTS string
	// LinkErr is set when the message went out without a clickable link.
	LinkErr *LinkResolutionError
}

type Callbacks struct {
	OnStatusChange func(string)
}

type Uploader struct {
	api    SlackAPI
	logger *logging.Logger
	hooks  Callbacks
	status runtimeStatusState
}

func New(api SlackAPI, logger *logging.Logger, hooks Callbacks) *Uploader {
	if api == nil {
		panic("app.New: api must not be nil")
	}
	if logger == nil {
		panic("app.New: logger must not be nil")
	}
	return &Uploader{api: api, logger: logger, hooks: hooks}
}

// Run uploads one PDF and posts its link. Each step runs to completion
// before the next starts; the returned Result is filled as far as the run
// got, even on error.
func (u *Uploader) Run(ctx context.Context, req Request) (Result, error) {
	result := Result{Channel: strings.TrimSpace(req.Channel)}
	if result.Channel == "" {
		return result, &config.ConfigurationError{Field: config.ChannelKey, Reason: "is missing"}
	}

	u.setRuntimeStatus(runstatus.Validating)
	pdf, err := inspectPDF(req.Path, u.logger)
	if err != nil {
		u.setRuntimeStatus(runstatus.Failed)
		return result, err
	}
	result.Path = pdf.Path

	if !req.SkipJoin {
		u.setRuntimeStatus(runstatus.Joining)
		u.joinChannel(ctx, result.Channel)
	}

	u.setRuntimeStatus(runstatus.Uploading)
	file, strategy, err := u.upload(ctx, result.Channel, req, pdf)
	result.Strategy = strategy
	if err != nil {
		u.setRuntimeStatus(runstatus.Failed)
		return result, err
	}
	result.FileID = file.ID
	u.logger.Info("file uploaded",
		logging.Field("file_id", file.ID),
		logging.Field("strategy", string(strategy)),
	)

	u.setRuntimeStatus(runstatus.ResolvingLink)
	link, linkErr := u.resolveLink(ctx, file)
	if linkErr != nil {
		result.LinkErr = linkErr
		u.logger.Warn("posting message without a clickable link", logging.Field("error", linkErr))
	}
	result.Permalink = link

	u.setRuntimeStatus(runstatus.Notifying)
	ts, err := u.notify(ctx, result.Channel, file.ID, linkText(req, pdf), link)
	if err != nil {
		u.setRuntimeStatus(runstatus.Failed)
		return result, err
	}
	result.MessageTS = ts
	u.setRuntimeStatus(runstatus.Done)
	return result, nil
}

func (u *Uploader) joinChannel(ctx context.Context, channel string) {
	err := u.api.JoinChannel(ctx, channel)
	if err == nil {
		u.logger.Debug("channel membership confirmed", logging.Field("channel", channel))
		return
	}
	if ctx.Err() != nil {
		u.logger.Debug("channel join interrupted", logging.Field("error", ctx.Err()))
		return
	}
	fields := []slog.Attr{
		logging.Field("channel", channel),
		logging.Field("error", err),
	}
	switch client.ErrorCode(err) {
	case "missing_scope":
		fields = append(fields, logging.Field("hint", "add the channels:join scope to the bot and reinstall the app"))
	case "method_not_supported_for_channel_type", "channel_not_found":
		fields = append(fields, logging.Field("hint", "if this is a private channel, invite the bot manually"))
	}
	u.logger.Warn("channel join failed", fields...)
}

type runtimeStatusState struct {
	mu      sync.Mutex
	current string
}

func (s *runtimeStatusState) update(status string) (string, string, bool) {
	trimmed := strings.TrimSpace(status)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == trimmed {
		return s.current, trimmed, false
	}
	previous := s.current
	s.current = trimmed
	return previous, trimmed, true
}

func (u *Uploader) setRuntimeStatus(status string) {
	previous, next, changed := u.status.update(status)
	if !changed {
		return
	}
	u.logger.Debug("upload step",
		logging.Field("from", runstatus.Key(previous)),
		logging.Field("to", runstatus.Key(next)),
	)
	if u.hooks.OnStatusChange != nil {
		u.hooks.OnStatusChange(next)
	}
}
