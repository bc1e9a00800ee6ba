package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"slack-pdf-uploader/internal/logging"

	"github.com/slack-go/slack"
)

const pdfContentType = "application/pdf"

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

type PrimaryUpload struct {
	Filename string
	Content  io.Reader
	Channel  string
	Comment  string
	Title    string
}

type UploadTarget struct {
	URL    string
	FileID string
}

type CompletedUpload struct {
	FileID  string
	Title   string
	Channel string
	Comment string
}

type uploadResponse struct {
	slack.SlackResponse
	File *slack.File `json:"file"`
}

// UploadPrimary sends the file in a single multipart files.uploadV2 call.
// An ok=false response comes back as an *APIError carrying Slack's code.
func (c *SlackClient) UploadPrimary(ctx context.Context, upload PrimaryUpload) (File, error) {
	body, contentType, err := encodeMultipart(upload)
	if err != nil {
		return File{}, &APIError{Method: MethodUploadV2, Code: CodeRequestFailed, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoints.UploadURL, body)
	if err != nil {
		return File{}, &APIError{Method: MethodUploadV2, Code: CodeRequestFailed, Err: err}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return File{}, &APIError{Method: MethodUploadV2, Code: CodeRequestFailed, Err: err}
	}
	defer resp.Body.Close()
	c.logger.Debugf("POST %s -> %s", c.endpoints.UploadURL, resp.Status)

	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if resp.StatusCode == http.StatusTooManyRequests {
		return File{}, &APIError{
			Method:     MethodUploadV2,
			Code:       CodeRateLimited,
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header),
		}
	}
	if resp.StatusCode >= http.StatusBadRequest {
		c.logger.Warn("upload request failed",
			logging.Field("status", resp.Status),
			logging.Field("response", logging.FormatHTTPPayload(data)),
		)
		return File{}, &APIError{Method: MethodUploadV2, Code: CodeHTTPStatus, StatusCode: resp.StatusCode}
	}

	var payload uploadResponse
	if err := json.Unmarshal(data, &payload); err != nil {
		c.logger.Warn("invalid upload response",
			logging.Field("content_type", resp.Header.Get("Content-Type")),
			logging.Field("error", err),
			logging.Field("response", logging.FormatHTTPPayload(data)),
		)
		return File{}, &APIError{Method: MethodUploadV2, Code: CodeInvalidResponse, StatusCode: resp.StatusCode, Err: err}
	}
	if !payload.Ok {
		code := strings.TrimSpace(payload.Error)
		if code == "" {
			code = codeUnknown
		}
		apiErr := &APIError{Method: MethodUploadV2, Code: code}
		if code == CodeRateLimited {
			apiErr.RetryAfter = parseRetryAfter(resp.Header)
		}
		c.logger.Debug("upload rejected", logging.Field("response", logging.FormatHTTPPayload(data)))
		return File{}, apiErr
	}

	file := File{}
	if payload.File != nil {
		file.ID = strings.TrimSpace(payload.File.ID)
		file.Permalink = strings.TrimSpace(payload.File.Permalink)
	}
	return file, nil
}

func encodeMultipart(upload PrimaryUpload) (*bytes.Buffer, string, error) {
	if upload.Content == nil {
		return nil, "", errors.New("upload content is nil")
	}
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := [][2]string{
		{"channel_id", upload.Channel},
		{"filename", upload.Filename},
		{"title", upload.Title},
		{"initial_comment", upload.Comment},
	}
	for _, field := range fields {
		if strings.TrimSpace(field[1]) == "" {
			continue
		}
		if err := w.WriteField(field[0], field[1]); err != nil {
			return nil, "", err
		}
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(upload.Filename)))
	header.Set("Content-Type", pdfContentType)
	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, upload.Content); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// RequestUploadTarget asks for a pre-signed URL sized for size bytes.
func (c *SlackClient) RequestUploadTarget(ctx context.Context, filename string, size int64) (UploadTarget, error) {
	resp, err := c.api.GetUploadURLExternalContext(ctx, slack.GetUploadURLExternalParameters{
		FileName: filename,
		FileSize: int(size),
	})
	if err != nil {
		return UploadTarget{}, wrapSlackError(MethodGetUploadURL, err)
	}
	target := UploadTarget{URL: strings.TrimSpace(resp.UploadURL), FileID: strings.TrimSpace(resp.FileID)}
	if target.URL == "" || target.FileID == "" {
		return UploadTarget{}, &APIError{
			Method: MethodGetUploadURL,
			Code:   CodeInvalidResponse,
			Err:    errors.New("response is missing upload_url or file_id"),
		}
	}
	c.logger.Debug("upload target issued", logging.Field("file_id", target.FileID))
	return target, nil
}

// TransferBytes writes the raw file to the pre-signed target. The target
// carries its own authorization, so no token is sent.
func (c *SlackClient) TransferBytes(ctx context.Context, target UploadTarget, content io.Reader, size int64) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, target.URL, content)
	if err != nil {
		return &APIError{Method: MethodTransfer, Code: CodeRequestFailed, Err: err}
	}
	req.ContentLength = size
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		return &APIError{Method: MethodTransfer, Code: CodeRequestFailed, Err: err}
	}
	defer resp.Body.Close()
	c.logger.Debugf("PUT upload target -> %s", resp.Status)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		c.logger.Warn("file transfer rejected",
			logging.Field("status", resp.Status),
			logging.Field("response", logging.FormatHTTPPayload(data)),
		)
		code := CodeUploadFailed
		if resp.StatusCode == http.StatusTooManyRequests {
			code = CodeRateLimited
		}
		return &APIError{Method: MethodTransfer, Code: code, StatusCode: resp.StatusCode, RetryAfter: parseRetryAfter(resp.Header)}
	}
	return nil
}

// CompleteUpload finalizes an external upload and shares it to the channel.
func (c *SlackClient) CompleteUpload(ctx context.Context, upload CompletedUpload) (File, error) {
	resp, err := c.api.CompleteUploadExternalContext(ctx, slack.CompleteUploadExternalParameters{
		Files:          []slack.FileSummary{{ID: upload.FileID, Title: upload.Title}},
		Channel:        upload.Channel,
		InitialComment: upload.Comment,
	})
	if err != nil {
		return File{}, wrapSlackError(MethodCompleteUpload, err)
	}
	file := File{ID: upload.FileID}
	if resp != nil && len(resp.Files) > 0 && strings.TrimSpace(resp.Files[0].ID) != "" {
		file.ID = strings.TrimSpace(resp.Files[0].ID)
	}
	return file, nil
}
