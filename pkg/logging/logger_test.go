package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		name   string
		level  string
		enable slog.Level
	}{
		{"debug level", "debug", slog.LevelDebug},
		{"warn level", "warn", slog.LevelWarn},
		{"warning alias", "WARNING", slog.LevelWarn},
		{"default info", "", slog.LevelInfo},
	}

	ctx := context.Background()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := New(tt.level)
			if !logger.Enabled(ctx, tt.enable) {
				t.Fatalf("expected level %s to be enabled", tt.enable)
			}
		})
	}
}

func TestDefaultLogger(t *testing.T) {
	logger := Default()
	ctx := context.Background()
	if !logger.Enabled(ctx, slog.LevelInfo) {
		t.Error("Default() should enable info level")
	}
	if logger.Enabled(ctx, slog.LevelDebug) {
		t.Error("Default() should not enable debug level")
	}
	if Default() == logger {
		t.Error("Default() returned the same instance twice")
	}
}

func TestWithUserRedactsPhone(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "info").WithUser("919876543210")
	logger.Info("inbound message")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if got := line["user_id"]; got != "********3210" {
		t.Fatalf("expected redacted user id, got %v", got)
	}
	if got := line["msg"]; got != "inbound message" {
		t.Fatalf("unexpected msg %v", got)
	}
}

func TestRedactPhoneShortValues(t *testing.T) {
	if got := RedactPhone("123"); got != "123" {
		t.Fatalf("expected short value untouched, got %q", got)
	}
}
