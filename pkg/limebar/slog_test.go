package limebar

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestSlogAdapter(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
	adapter := NewSlogAdapter(slog.New(handler))

	tests := []struct {
		log  func(string, ...any)
		msg  string
		args []any
		want string
	}{
		{adapter.Debug, "debug message", []any{"key", "value"}, "key=value"},
		{adapter.Info, "info message", []any{"count", 42}, "count=42"},
		{adapter.Warn, "warn message", nil, "level=WARN"},
		{adapter.Error, "error message", []any{"panel", "clock"}, "panel=clock"},
	}
	for _, tt := range tests {
		buf.Reset()
		tt.log(tt.msg, tt.args...)
		if !strings.Contains(buf.String(), tt.msg) || !strings.Contains(buf.String(), tt.want) {
			t.Errorf("got %q, want message %q and %q", buf.String(), tt.msg, tt.want)
		}
	}
}

func TestNewSlogAdapterNil(t *testing.T) {
	adapter := NewSlogAdapter(nil)
	if adapter == nil {
		t.Fatal("NewSlogAdapter(nil) returned nil")
	}
	adapter.Debug("test")
}

func TestLevelLoggerFilters(t *testing.T) {
	var buf bytes.Buffer
	logger := LevelLogger(&buf, slog.LevelWarn)
	logger.Info("hidden")
	logger.Warn("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := JSONLogger(&buf, slog.LevelInfo)
	logger.Info("reloaded", "panels", 3)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if entry["msg"] != "reloaded" || entry["panels"] != float64(3) {
		t.Errorf("entry = %v", entry)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name string
		want slog.Level
		ok   bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{"warn", slog.LevelWarn, true},
		{"warning", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"loud", slog.LevelInfo, false},
	}
	for _, tt := range tests {
		got, ok := ParseLevel(tt.name)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseLevel(%q) = %v, %v want %v, %v", tt.name, got, ok, tt.want, tt.ok)
		}
	}
}

func TestNopLogger(t *testing.T) {
	logger := NopLogger()
	logger.Debug("x")
	logger.Info("x")
	logger.Warn("x")
	logger.Error("x")
}
