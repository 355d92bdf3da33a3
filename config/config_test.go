package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"voice-chat/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Chat.Path != "/api/chat" {
		t.Errorf("chat.path: got %q", cfg.Chat.Path)
	}
	if cfg.Chat.Timeout != 0 {
		t.Errorf("chat.timeout: got %v, want none", cfg.Chat.Timeout)
	}
	if cfg.Speech.Language != "en-US" {
		t.Errorf("speech.language: got %q", cfg.Speech.Language)
	}
	if cfg.Speech.SilenceDuration != time.Second {
		t.Errorf("speech.silence_duration: got %v", cfg.Speech.SilenceDuration)
	}
	if cfg.Playback.ReportErrors {
		t.Error("playback errors should not be reported by default")
	}
	if !cfg.TerminalEnabled() {
		t.Error("terminal should be enabled by default")
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Errorf("log: got %+v", cfg.Log)
	}
}

func TestLoad_FileWithEnv(t *testing.T) {
	t.Setenv("VOICECHAT_TEST_KEY", "sk-test")

	path := writeConfig(t, `
chat:
  base_url: http://tutor.local:9000
  timeout: 30s
speech:
  source: file
  file_dir: /tmp/utterances
  transcriber: exec
  command: whisper-cli --model base
openai:
  api_key: ${VOICECHAT_TEST_KEY}
playback:
  mode: none
  report_errors: true
ui:
  terminal: false
  http_addr: 127.0.0.1:8090
  trust_proxy: true
log:
  level: debug
  format: json
`)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Chat.BaseURL != "http://tutor.local:9000" || cfg.Chat.Timeout != 30*time.Second {
		t.Errorf("chat: got %+v", cfg.Chat)
	}
	if cfg.OpenAI.APIKey != "sk-test" {
		t.Errorf("openai.api_key: got %q", cfg.OpenAI.APIKey)
	}
	if cfg.Speech.Source != "file" || cfg.Speech.Command != "whisper-cli --model base" {
		t.Errorf("speech: got %+v", cfg.Speech)
	}
	if cfg.Playback.Mode != "none" || cfg.Playback.Command != "" || !cfg.Playback.ReportErrors {
		t.Errorf("playback: got %+v", cfg.Playback)
	}
	if cfg.TerminalEnabled() {
		t.Error("terminal should be disabled")
	}
	if cfg.UI.HTTPAddr != "127.0.0.1:8090" || !cfg.UI.TrustProxy {
		t.Errorf("ui: got %+v", cfg.UI)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"unknown source", "speech:\n  source: bluetooth\n", "speech.source"},
		{"exec without command", "speech:\n  transcriber: exec\n", "speech.command"},
		{"unknown playback", "playback:\n  mode: radio\n", "playback.mode"},
		{"negative timeout", "chat:\n  timeout: -1s\n", "chat.timeout"},
		{"bad yaml", "chat: [", "parsing config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
