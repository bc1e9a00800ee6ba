package config

import (
	"testing"
	"time"
)

func TestBuildEndpoints_NormalizeAPIBaseURL(t *testing.T) {
	tests := []struct {
		name string
		base string
		want string
	}{
		{name: "default", base: "", want: "https://slack.com/api/"},
		{name: "already slashed", base: "https://slack.com/api/", want: "https://slack.com/api/"},
		{name: "missing slash", base: "https://slack.com/api", want: "https://slack.com/api/"},
		{name: "local fake", base: "http://127.0.0.1:8090", want: "http://127.0.0.1:8090/"},
		{name: "query fragment dropped", base: "https://example.com/api/?x=1#y", want: "https://example.com/api/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			endpoints, err := BuildEndpoints(tt.base)
			if err != nil {
				t.Fatalf("BuildEndpoints failed: %v", err)
			}
			if endpoints.BaseURL != tt.want {
				t.Fatalf("BaseURL = %q, want %q", endpoints.BaseURL, tt.want)
			}
			if endpoints.UploadURL != tt.want+"files.uploadV2" {
				t.Fatalf("UploadURL = %q", endpoints.UploadURL)
			}
		})
	}
}

func TestBuildEndpoints_InvalidScheme(t *testing.T) {
	tests := []string{
		"ftp://example.com",
		"ws://example.com",
		"file:///tmp/slack",
		"slack.com/api",
	}
	for _, base := range tests {
		t.Run(base, func(t *testing.T) {
			if _, err := BuildEndpoints(base); err == nil {
				t.Fatalf("expected error for %q", base)
			}
		})
	}
}

func TestParseOptions_DefaultsAndShortFlags(t *testing.T) {
	opts, err := ParseOptions([]string{"-f", "resume.pdf", "-c", "C123", "-m", "hello", "-d"})
	if err != nil {
		t.Fatalf("ParseOptions() error = %v", err)
	}
	if opts.File != "resume.pdf" || opts.Channel != "C123" || opts.Comment != "hello" || !opts.Debug {
		t.Fatalf("opts = %#v", opts)
	}
	if opts.Timeout != 30*time.Second {
		t.Fatalf("Timeout = %v, want 30s", opts.Timeout)
	}
	if opts.APIURL != DefaultAPIURL {
		t.Fatalf("APIURL = %q, want %q", opts.APIURL, DefaultAPIURL)
	}
}

func TestParseOptions_FileIsRequired(t *testing.T) {
	if _, err := ParseOptions([]string{"--channel", "C123"}); err == nil {
		t.Fatalf("ParseOptions() expected error without --file")
	}
}
