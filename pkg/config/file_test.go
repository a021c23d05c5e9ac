package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}
	return path
}

func TestNewFileDefaults(t *testing.T) {
	f, err := NewFile(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("NewFile() error: %v", err)
	}

	if got := f.HighLimit(); got != 80 {
		t.Errorf("HighLimit() = %d, want 80", got)
	}
	if got := f.LowLimit(); got != 20 {
		t.Errorf("LowLimit() = %d, want 20", got)
	}
	if got := f.RearmMargin(); got != 2 {
		t.Errorf("RearmMargin() = %d, want 2", got)
	}
	if got := f.PollInterval(); got != 60*time.Second {
		t.Errorf("PollInterval() = %s, want 60s", got)
	}
	if got := f.TelegramBotToken(); got != "" {
		t.Errorf("TelegramBotToken() = %q, want empty", got)
	}
}

func TestNewFileReadsValues(t *testing.T) {
	path := writeEnvFile(t, `
HIGH=90
LOW=15
POLL_INTERVAL=30
TELEGRAM_BOT_TOKEN="123:abc"
TELEGRAM_CHAT_ID=987654
STATE_DIR=/tmp/bg-state
LOGFILE=/tmp/bg.log
`)

	f, err := NewFile(path)
	if err != nil {
		t.Fatalf("NewFile() error: %v", err)
	}

	if got := f.HighLimit(); got != 90 {
		t.Errorf("HighLimit() = %d, want 90", got)
	}
	if got := f.LowLimit(); got != 15 {
		t.Errorf("LowLimit() = %d, want 15", got)
	}
	if got := f.PollInterval(); got != 30*time.Second {
		t.Errorf("PollInterval() = %s, want 30s", got)
	}
	if got := f.TelegramBotToken(); got != "123:abc" {
		t.Errorf("TelegramBotToken() = %q, want 123:abc", got)
	}
	if got := f.TelegramChatID(); got != 987654 {
		t.Errorf("TelegramChatID() = %d, want 987654", got)
	}
	if got := f.StateDir(); got != "/tmp/bg-state" {
		t.Errorf("StateDir() = %q", got)
	}
	if got := f.LogFile(); got != "/tmp/bg.log" {
		t.Errorf("LogFile() = %q", got)
	}
}

func TestFileOverridesEnvironment(t *testing.T) {
	t.Setenv("HIGH", "70")
	t.Setenv("LOW", "30")

	path := writeEnvFile(t, "HIGH=95\n")

	f, err := NewFile(path)
	if err != nil {
		t.Fatalf("NewFile() error: %v", err)
	}

	if got := f.HighLimit(); got != 95 {
		t.Errorf("HighLimit() = %d, want 95 (file wins over environment)", got)
	}
	if got := f.LowLimit(); got != 30 {
		t.Errorf("LowLimit() = %d, want 30 (environment wins over default)", got)
	}
}

func TestNewFileValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"inverted band", "HIGH=20\nLOW=80\n"},
		{"equal thresholds", "HIGH=50\nLOW=50\n"},
		{"high out of range", "HIGH=150\n"},
		{"low out of range", "LOW=-5\n"},
		{"zero poll interval", "POLL_INTERVAL=0\n"},
		{"non-numeric high", "HIGH=eighty\n"},
		{"non-numeric chat id", "TELEGRAM_CHAT_ID=not-a-number\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewFile(writeEnvFile(t, tt.content)); err == nil {
				t.Error("NewFile() succeeded, want validation error")
			}
		})
	}
}

// A reload that fails validation must leave the previously committed
// values in effect, not the rejected ones.
func TestLoadRejectedReloadKeepsPreviousValues(t *testing.T) {
	path := writeEnvFile(t, "HIGH=80\nLOW=20\n")

	f, err := NewFile(path)
	if err != nil {
		t.Fatalf("NewFile() error: %v", err)
	}

	if err := os.WriteFile(path, []byte("HIGH=10\nLOW=90\n"), 0o644); err != nil {
		t.Fatalf("failed to rewrite env file: %v", err)
	}
	if err := f.Load(); err == nil {
		t.Fatal("Load() succeeded on an inverted band, want error")
	}

	if got := f.HighLimit(); got != 80 {
		t.Errorf("HighLimit() = %d after rejected reload, want 80 (previous value)", got)
	}
	if got := f.LowLimit(); got != 20 {
		t.Errorf("LowLimit() = %d after rejected reload, want 20 (previous value)", got)
	}
	if err := f.Validate(); err != nil {
		t.Errorf("Validate() error on the retained values: %v", err)
	}
}

func TestSetPollIntervalOverride(t *testing.T) {
	f, err := NewFile(writeEnvFile(t, "POLL_INTERVAL=60\n"))
	if err != nil {
		t.Fatalf("NewFile() error: %v", err)
	}

	f.SetPollInterval(5)
	if got := f.PollInterval(); got != 5*time.Second {
		t.Errorf("PollInterval() = %s, want 5s after override", got)
	}

	// The override survives a config reload.
	if err := f.Load(); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got := f.PollInterval(); got != 5*time.Second {
		t.Errorf("PollInterval() = %s after reload, want 5s", got)
	}
}
