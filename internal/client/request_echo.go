package client

import (
	"bytes"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"

	"slack-pdf-uploader/internal/logging"

	"github.com/dustin/go-humanize"
)

type requestEcho struct {
	base   http.RoundTripper
	logger *logging.Logger
}

// WithRequestEcho wraps base so every outgoing request is logged at debug
// level with bearer tokens, token form fields and pre-signed upload URLs
// masked. File bodies are summarized by size only.
func WithRequestEcho(base http.RoundTripper, logger *logging.Logger) http.RoundTripper {
	if logger == nil {
		panic("client.WithRequestEcho: logger must not be nil")
	}
	if base == nil {
		base = http.DefaultTransport
	}
	return &requestEcho{base: base, logger: logger}
}

func (t *requestEcho) RoundTrip(req *http.Request) (*http.Response, error) {
	target := logging.MaskURL(req.URL)
	if req.Method == http.MethodPut {
		target = logging.MaskPresignedURL(req.URL)
	}
	fields := []slog.Attr{
		logging.Field("method", req.Method),
		logging.Field("url", target),
		logging.Field("headers", logging.MaskHeaders(req.Header)),
	}
	if req.ContentLength > 0 {
		fields = append(fields, logging.Field("length", humanize.Bytes(uint64(req.ContentLength))))
	}

	mediaType, _, _ := mime.ParseMediaType(req.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded":
		body, restored, err := snapshotBody(req)
		if err != nil {
			return nil, err
		}
		req = restored
		if values, parseErr := url.ParseQuery(string(body)); parseErr == nil {
			fields = append(fields, logging.Field("form", logging.MaskValues(values)))
		}
	case "application/json":
		body, restored, err := snapshotBody(req)
		if err != nil {
			return nil, err
		}
		req = restored
		fields = append(fields, logging.Field("body", logging.FormatHTTPPayload(body)))
	}

	t.logger.Debug("outgoing request", fields...)
	return t.base.RoundTrip(req)
}

// snapshotBody reads the body and returns a clone of req whose body replays
// the same bytes.
func snapshotBody(req *http.Request) ([]byte, *http.Request, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, req, nil
	}
	data, err := io.ReadAll(req.Body)
	_ = req.Body.Close()
	if err != nil {
		return nil, nil, err
	}
	clone := req.Clone(req.Context())
	clone.Body = io.NopCloser(bytes.NewReader(data))
	clone.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}
	return data, clone, nil
}
