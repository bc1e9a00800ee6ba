package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"slack-pdf-uploader/internal/client"
)

const codeRequestFailed = client.CodeRequestFailed

// FileError reports a local file that cannot be uploaded.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("invalid file %s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// UploadError is a terminal upload failure. Step names the Slack call that
// failed and Code carries the error code Slack returned.
type UploadError struct {
	Step       string
	Code       string
	RetryAfter time.Duration
	Err        error
}

func (e *UploadError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "upload failed at %s: %s", e.Step, e.Code)
	if e.RetryAfter > 0 {
		fmt.Fprintf(&b, " (retry after %s)", e.RetryAfter)
	}
	if e.Code == codeRequestFailed && e.Err != nil {
		cause := e.Err
		if inner := errors.Unwrap(cause); inner != nil {
			cause = inner
		}
		b.WriteString(": ")
		b.WriteString(cause.Error())
	}
	return b.String()
}

func (e *UploadError) Unwrap() error { return e.Err }

// LinkResolutionError means no permalink could be obtained. It never aborts
// a run.
type LinkResolutionError struct {
	FileID string
	Err    error
}

func (e *LinkResolutionError) Error() string {
	if e.FileID == "" {
		return fmt.Sprintf("permalink unavailable: %v", e.Err)
	}
	return fmt.Sprintf("permalink unavailable for %s: %v", e.FileID, e.Err)
}

func (e *LinkResolutionError) Unwrap() error { return e.Err }

// NotifyError means the follow-up message failed after the file landed in
// the channel.
type NotifyError struct {
	FileID     string
	Code       string
	RetryAfter time.Duration
	Err        error
}

func (e *NotifyError) Error() string {
	msg := fmt.Sprintf("file %s was uploaded but the link message failed: %s", e.FileID, e.Code)
	if e.RetryAfter > 0 {
		msg += fmt.Sprintf(" (retry after %s)", e.RetryAfter)
	}
	return msg
}

func (e *NotifyError) Unwrap() error { return e.Err }

func newUploadError(step string, err error) *UploadError {
	uploadErr := &UploadError{Step: step, Code: codeRequestFailed, Err: err}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		uploadErr.Code = apiErr.Code
		uploadErr.RetryAfter = apiErr.RetryAfter
	}
	return uploadErr
}

func newNotifyError(fileID string, err error) *NotifyError {
	notifyErr := &NotifyError{FileID: fileID, Code: codeRequestFailed, Err: err}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		notifyErr.Code = apiErr.Code
		notifyErr.RetryAfter = apiErr.RetryAfter
	}
	return notifyErr
}
