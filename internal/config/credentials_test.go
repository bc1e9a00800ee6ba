package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func envMap(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile(%q) error = %v", path, err)
	}
	return path
}

func TestResolve_FileWinsPerField(t *testing.T) {
	path := writeFile(t, "config.json", `{"SLACK_BOT_TOKEN":"xoxb-file"}`)

	creds, err := Resolve(path, envMap(map[string]string{
		TokenKey:   "xoxb-env",
		ChannelKey: "C-env",
	}))
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if creds.Token != "xoxb-file" {
		t.Fatalf("Token = %q, want file value", creds.Token)
	}
	if creds.Channel != "C-env" {
		t.Fatalf("Channel = %q, want env fallback", creds.Channel)
	}
}

func TestResolve_FileFormats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{name: "json lowercase keys", file: "config.json", content: `{"slack_bot_token":"xoxb-1","slack_channel_id":"C1"}`},
		{name: "yaml", file: "config.yaml", content: "SLACK_BOT_TOKEN: xoxb-1\nSLACK_CHANNEL_ID: C1\n"},
		{name: "dotenv", file: "slack.env", content: "SLACK_BOT_TOKEN=xoxb-1\nSLACK_CHANNEL_ID=C1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, tt.content)
			creds, err := Resolve(path, envMap(nil))
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if creds.Token != "xoxb-1" || creds.Channel != "C1" {
				t.Fatalf("creds = %#v", creds)
			}
		})
	}
}

func TestResolve_MissingTokenIsConfigurationError(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	_, err := Resolve("", envMap(map[string]string{TokenKey: "   ", ChannelKey: "C1"}))
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Resolve() error = %v, want ConfigurationError", err)
	}
	if cfgErr.Field != TokenKey {
		t.Fatalf("Field = %q, want %q", cfgErr.Field, TokenKey)
	}
}

func TestResolve_DefaultFileIsOptional(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	creds, err := Resolve("", envMap(map[string]string{TokenKey: "xoxb-env"}))
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if creds.Token != "xoxb-env" || creds.Channel != "" {
		t.Fatalf("creds = %#v", creds)
	}
}

func TestResolve_ExplicitMissingOrMalformedFileFails(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.json")
	malformed := writeFile(t, "config.json", `{"SLACK_BOT_TOKEN":`)

	for _, path := range []string{missing, malformed} {
		_, err := Resolve(path, envMap(map[string]string{TokenKey: "xoxb-env"}))
		var cfgErr *ConfigurationError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("Resolve(%q) error = %v, want ConfigurationError", path, err)
		}
		if cfgErr.Path != path {
			t.Fatalf("Path = %q, want %q", cfgErr.Path, path)
		}
	}
}

func TestWithChannel_ArgumentWins(t *testing.T) {
	creds := Credentials{Token: "xoxb", Channel: "C-config"}

	got, err := creds.WithChannel(" C-arg ")
	if err != nil {
		t.Fatalf("WithChannel() error = %v", err)
	}
	if got.Channel != "C-arg" {
		t.Fatalf("Channel = %q, want C-arg", got.Channel)
	}

	kept, err := creds.WithChannel("")
	if err != nil {
		t.Fatalf("WithChannel() error = %v", err)
	}
	if kept.Channel != "C-config" {
		t.Fatalf("Channel = %q, want C-config", kept.Channel)
	}
}

func TestWithChannel_MissingChannel(t *testing.T) {
	_, err := Credentials{Token: "xoxb"}.WithChannel("")
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) || cfgErr.Field != ChannelKey {
		t.Fatalf("WithChannel() error = %v, want ConfigurationError for %s", err, ChannelKey)
	}
}
