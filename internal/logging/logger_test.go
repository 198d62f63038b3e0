package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"loud", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

// captureDefault swaps the default logger for one writing JSON to a buffer.
func captureDefault(t *testing.T, level string) *bytes.Buffer {
	t.Helper()
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	SetupWriter(&buf, level, "json")
	return &buf
}

func TestSetupWriter_Level(t *testing.T) {
	buf := captureDefault(t, "warn")

	slog.Info("dropped")
	slog.Warn("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Errorf("info entry written at warn level: %s", out)
	}
	if !strings.Contains(out, "kept") {
		t.Errorf("warn entry missing: %s", out)
	}
}

func TestNewHandler_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	slog.New(NewHandler(&buf, "info", "text")).Info("hello", "table", "books")

	if !strings.Contains(buf.String(), "table=books") {
		t.Errorf("text output = %q, want key=value pairs", buf.String())
	}
}

func TestWithTable_IncludesRequestID(t *testing.T) {
	buf := captureDefault(t, "debug")

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-42")
	WithTable(ctx, "books").Info("row clicked", "key", "abc")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal log entry: %v", err)
	}
	if entry["request_id"] != "req-42" {
		t.Errorf("request_id = %v, want req-42", entry["request_id"])
	}
	if entry["table"] != "books" {
		t.Errorf("table = %v, want books", entry["table"])
	}
	if entry["key"] != "abc" {
		t.Errorf("key = %v, want abc", entry["key"])
	}
}

func TestFromContext_NoRequestID(t *testing.T) {
	buf := captureDefault(t, "info")

	WithFields(context.Background(), "op", "refresh").Info("done")

	if strings.Contains(buf.String(), "request_id") {
		t.Errorf("unexpected request_id in %s", buf.String())
	}
	if !strings.Contains(buf.String(), `"op":"refresh"`) {
		t.Errorf("missing field in %s", buf.String())
	}
}
