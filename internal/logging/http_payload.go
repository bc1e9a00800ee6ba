package logging

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
)

const maskedPrefixLen = 10

var secretFormKeys = []string{"token", "client_secret"}

// FormatHTTPPayload normalizes HTTP payloads for log output.
// It attempts to decode JSON so escaped characters are rendered cleanly.
func FormatHTTPPayload(raw []byte) string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return "<empty>"
	}

	var quoted string
	if err := json.Unmarshal([]byte(trimmed), &quoted); err == nil {
		trimmed = strings.TrimSpace(quoted)
	}

	var value any
	if err := json.Unmarshal([]byte(trimmed), &value); err == nil {
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(value); encErr == nil {
			return strings.TrimSpace(buf.String())
		}
	}

	return trimmed
}

// MaskSecret keeps the first ten characters of a secret.
func MaskSecret(secret string) string {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return ""
	}
	if len(secret) <= maskedPrefixLen {
		return strings.Repeat("*", len(secret))
	}
	return secret[:maskedPrefixLen] + "..."
}

// MaskHeaders flattens headers for logging with the bearer credential masked.
func MaskHeaders(header http.Header) map[string]string {
	out := make(map[string]string, len(header))
	for key, values := range header {
		value := strings.Join(values, ", ")
		if strings.EqualFold(key, "Authorization") {
			if scheme, secret, ok := strings.Cut(value, " "); ok && strings.EqualFold(scheme, "bearer") {
				value = scheme + " " + MaskSecret(secret)
			} else {
				value = MaskSecret(value)
			}
		}
		out[key] = value
	}
	return out
}

// MaskValues copies form or query values with secret keys masked.
func MaskValues(values url.Values) map[string]string {
	out := make(map[string]string, len(values))
	for key, vals := range values {
		value := strings.Join(vals, ",")
		for _, secretKey := range secretFormKeys {
			if strings.EqualFold(key, secretKey) {
				value = MaskSecret(value)
			}
		}
		out[key] = value
	}
	return out
}

// MaskURL renders u with secret query parameters masked.
func MaskURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	query := u.Query()
	masked := false
	for _, secretKey := range secretFormKeys {
		if v := query.Get(secretKey); v != "" {
			query.Set(secretKey, MaskSecret(v))
			masked = true
		}
	}
	if !masked {
		return u.String()
	}
	clone := *u
	clone.RawQuery = query.Encode()
	return clone.String()
}

// MaskPresignedURL masks the path of a pre-signed upload URL and drops its
// query. Both authorize the upload on their own.
func MaskPresignedURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	masked := url.URL{Scheme: u.Scheme, Host: u.Host}
	if path := strings.Trim(u.EscapedPath(), "/"); path != "" {
		masked.Path = "/" + MaskSecret(path)
	}
	return masked.String()
}
