package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"slack-pdf-uploader/internal/app"
	"slack-pdf-uploader/internal/client"
	"slack-pdf-uploader/internal/config"
	"slack-pdf-uploader/internal/logging"
	"slack-pdf-uploader/internal/runtime"

	flags "github.com/jessevdk/go-flags"
)

var BuildVersion = "dev"

const (
	exitOK          = 0
	exitUploadError = 1
	exitUsage       = 2
	exitNotifyError = 3
	exitInterrupted = 130
)

func main() {
	os.Exit(run())
}

func run() int {
	rootCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	opts, err := config.ParseOptions(nil)
	if err != nil {
		var flagErr *flags.Error
		if errors.As(err, &flagErr) && flagErr.Type == flags.ErrHelp {
			return exitOK
		}
		return exitUsage
	}

	logger := logging.New(opts.Debug)
	defer func() {
		_ = logger.Close()
	}()
	if opts.LogToFile {
		path, err := logger.EnableFilePersistence(0)
		if err != nil {
			logger.Warn("failed to enable file log persistence", logging.Field("error", err))
		} else {
			logger.Debug("persisting log", logging.Field("path", path))
		}
	}
	logger.Debug("starting slack-pdf-uploader", logging.Field("version", BuildVersion))

	service, err := runtime.NewService(opts, logger)
	if err != nil {
		return reportFailure(logger, os.Stderr, err)
	}
	result, err := service.RunContext(rootCtx)
	if err != nil {
		if rootCtx.Err() != nil {
			logger.Warn("interrupted")
			return exitInterrupted
		}
		return reportFailure(logger, os.Stderr, err)
	}

	if result.LinkErr != nil {
		fmt.Fprintf(os.Stdout, "Uploaded %s to %s (file %s, no link available)\n", result.Path, result.Channel, result.FileID)
		return exitOK
	}
	fmt.Fprintln(os.Stdout, result.Permalink)
	return exitOK
}

// reportFailure logs err, writes it and any hint to w, and returns the exit
// code for its kind.
func reportFailure(logger *logging.Logger, w io.Writer, err error) int {
	fields := []any{err}
	if hint := failureHint(err); hint != "" {
		fields = append(fields, "hint: "+hint)
	}

	var cfgErr *config.ConfigurationError
	var fileErr *app.FileError
	var notifyErr *app.NotifyError
	switch {
	case errors.As(err, &cfgErr):
		logger.Error("configuration invalid", logging.Field("error", err))
		printDiagnostics(w, fields...)
		return exitUsage
	case errors.As(err, &fileErr):
		logger.Error("file rejected", logging.Field("error", err))
		printDiagnostics(w, fields...)
		return exitUploadError
	case errors.As(err, &notifyErr):
		logger.Error("link message failed", logging.Field("file_id", notifyErr.FileID), logging.Field("error", err))
		printDiagnostics(w, fields...)
		return exitNotifyError
	default:
		logger.Error("upload failed", logging.Field("error", err))
		printDiagnostics(w, fields...)
		return exitUploadError
	}
}

func printDiagnostics(w io.Writer, lines ...any) {
	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
}

func failureHint(err error) string {
	const tokenHint = "check SLACK_BOT_TOKEN; it must be a valid bot token (xoxb-...)"
	const rateHint = "Slack is rate limiting this token; retry later"
	if client.IsAuthFailure(err) {
		return tokenHint
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.RateLimited() {
		return rateHint
	}
	switch failureCode(err) {
	case "not_authed", "invalid_auth", "token_revoked", "token_expired", "account_inactive":
		return tokenHint
	case client.CodeRateLimited:
		return rateHint
	case "not_in_channel":
		return "invite the bot to the channel or drop --no-join"
	case "channel_not_found":
		return "check the channel ID; private channels need the bot invited first"
	case "missing_scope":
		return "add files:write and chat:write scopes to the bot and reinstall the app"
	}
	return ""
}

// failureCode prefers the code recorded on the step error over the one in
// its cause.
func failureCode(err error) string {
	var uploadErr *app.UploadError
	if errors.As(err, &uploadErr) && uploadErr.Code != "" {
		return uploadErr.Code
	}
	var notifyErr *app.NotifyError
	if errors.As(err, &notifyErr) && notifyErr.Code != "" {
		return notifyErr.Code
	}
	return client.ErrorCode(err)
}
