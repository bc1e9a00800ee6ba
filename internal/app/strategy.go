package app

import (
	"context"
	"os"
	"strings"

	"slack-pdf-uploader/internal/client"
	"slack-pdf-uploader/internal/logging"
	"slack-pdf-uploader/internal/runstatus"
)

// Codes meaning files.uploadV2 is not available in this workspace. Only these
// switch to the external flow; every other failure is terminal.
var unsupportedMethodCodes = map[string]struct{}{
	"method_deprecated":    {},
	"unknown_method":       {},
	"deprecated_endpoint":  {},
	"method_not_supported": {},
}

type outcomeKind int

const (
	outcomeUploaded outcomeKind = iota
	outcomeUnsupported
	outcomeRejected
)

type primaryOutcome struct {
	kind outcomeKind
	file client.File
	err  error
}

func classifyPrimary(file client.File, err error) primaryOutcome {
	if err == nil {
		return primaryOutcome{kind: outcomeUploaded, file: file}
	}
	if _, ok := unsupportedMethodCodes[client.ErrorCode(err)]; ok {
		return primaryOutcome{kind: outcomeUnsupported, err: err}
	}
	return primaryOutcome{kind: outcomeRejected, err: err}
}

// upload tries the single-call upload and falls back to the external flow
// only when the first call reports the method as unsupported. The external
// flow has no fallback of its own.
func (u *Uploader) upload(ctx context.Context, channel string, req Request, pdf pdfFile) (client.File, Strategy, error) {
	outcome, err := u.uploadPrimary(ctx, channel, req, pdf)
	if err != nil {
		return client.File{}, StrategyPrimary, err
	}
	switch outcome.kind {
	case outcomeUploaded:
		return outcome.file, StrategyPrimary, nil
	case outcomeRejected:
		return client.File{}, StrategyPrimary, newUploadError(client.MethodUploadV2, outcome.err)
	}

	u.logger.Info("single-call upload unsupported, using external upload flow",
		logging.Field("code", client.ErrorCode(outcome.err)),
	)
	u.setRuntimeStatus(runstatus.FallingBack)
	file, err := u.uploadExternal(ctx, channel, req, pdf)
	return file, StrategyExternal, err
}

func (u *Uploader) uploadPrimary(ctx context.Context, channel string, req Request, pdf pdfFile) (primaryOutcome, error) {
	f, err := os.Open(pdf.Path)
	if err != nil {
		return primaryOutcome{}, &FileError{Path: pdf.Path, Err: err}
	}
	defer f.Close()

	return classifyPrimary(u.api.UploadPrimary(ctx, client.PrimaryUpload{
		Filename: pdf.Name,
		Content:  f,
		Channel:  channel,
		Comment:  strings.TrimSpace(req.Comment),
		Title:    strings.TrimSpace(req.Title),
	})), nil
}

func (u *Uploader) uploadExternal(ctx context.Context, channel string, req Request, pdf pdfFile) (client.File, error) {
	target, err := u.api.RequestUploadTarget(ctx, pdf.Name, pdf.Size)
	if err != nil {
		return client.File{}, newUploadError(client.MethodGetUploadURL, err)
	}

	f, err := os.Open(pdf.Path)
	if err != nil {
		return client.File{}, &FileError{Path: pdf.Path, Err: err}
	}
	defer f.Close()
	if err := u.api.TransferBytes(ctx, target, f, pdf.Size); err != nil {
		return client.File{}, newUploadError(client.MethodTransfer, err)
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = pdf.Name
	}
	file, err := u.api.CompleteUpload(ctx, client.CompletedUpload{
		FileID:  target.FileID,
		Title:   title,
		Channel: channel,
		Comment: strings.TrimSpace(req.Comment),
	})
	if err != nil {
		return client.File{}, newUploadError(client.MethodCompleteUpload, err)
	}
	return file, nil
}
