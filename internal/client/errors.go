package client

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/slack-go/slack"
)

const (
	CodeRateLimited      = "ratelimited"
	CodeAlreadyInChannel = "already_in_channel"
	CodeHTTPStatus       = "http_error"
	CodeInvalidResponse  = "invalid_response"
	CodeRequestFailed    = "request_failed"
	CodeUploadFailed     = "upload_failed"
	CodePermalinkMissing = "permalink_missing"
	codeUnknown          = "unknown_error"
)

// APIError is the single failure shape of every Slack call: a Web API error
// code, an HTTP status, or a transport failure.
type APIError struct {
	Method     string
	Code       string
	StatusCode int
	RetryAfter time.Duration
	Err        error
}

func (e *APIError) Error() string {
	if e == nil {
		return "slack request failed"
	}
	var b strings.Builder
	b.WriteString(e.Method)
	b.WriteString(": ")
	b.WriteString(e.Code)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (HTTP %d)", e.StatusCode)
	}
	if e.RetryAfter > 0 {
		fmt.Fprintf(&b, ", retry after %s", e.RetryAfter)
	}
	switch e.Code {
	case CodeRequestFailed, CodeInvalidResponse:
		if e.Err != nil {
			b.WriteString(": ")
			b.WriteString(e.Err.Error())
		}
	}
	return b.String()
}

func (e *APIError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (e *APIError) RateLimited() bool {
	return e != nil && (e.Code == CodeRateLimited || e.StatusCode == http.StatusTooManyRequests)
}

// ErrorCode returns the Slack error code carried by err, or "" when err is
// not an APIError.
func ErrorCode(err error) string {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return ""
	}
	return apiErr.Code
}

func IsAuthFailure(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.Code {
	case "not_authed", "invalid_auth", "token_revoked", "token_expired", "account_inactive":
		return true
	}
	return apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden
}

func wrapSlackError(method string, err error) error {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return err
	}
	var rateErr *slack.RateLimitedError
	if errors.As(err, &rateErr) {
		return &APIError{Method: method, Code: CodeRateLimited, StatusCode: http.StatusTooManyRequests, RetryAfter: rateErr.RetryAfter, Err: err}
	}
	var slackErr slack.SlackErrorResponse
	if errors.As(err, &slackErr) {
		code := strings.TrimSpace(slackErr.Err)
		if code == "" {
			code = codeUnknown
		}
		return &APIError{Method: method, Code: code, Err: err}
	}
	var statusErr slack.StatusCodeError
	if errors.As(err, &statusErr) {
		return &APIError{Method: method, Code: CodeHTTPStatus, StatusCode: statusErr.Code, Err: err}
	}
	return &APIError{Method: method, Code: CodeRequestFailed, Err: err}
}

func parseRetryAfter(header http.Header) time.Duration {
	value := strings.TrimSpace(header.Get("Retry-After"))
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if wait := time.Until(at); wait > 0 {
			return wait.Round(time.Second)
		}
	}
	return 0
}
