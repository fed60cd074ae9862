package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestConsoleHandlerIncludesComponentAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	lvl.Set(slog.LevelInfo)
	logger := slog.New(newConsoleHandler(&buf, lvl))

	logger.With(String(FieldComponent, "selector")).Info("session assigned",
		Int64(FieldSession, 42),
		Int64(FieldReviewer, 7),
	)

	out := buf.String()
	if !strings.Contains(out, "INFO selector: session assigned") {
		t.Fatalf("unexpected console line: %q", out)
	}
	if !strings.Contains(out, "session_id=42") || !strings.Contains(out, "reviewer_id=7") {
		t.Fatalf("missing attrs in console line: %q", out)
	}
}

func TestConsoleHandlerQuotesValues(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl))

	logger.Info("verdict", String("comment", "too much noise"))
	if !strings.Contains(buf.String(), `comment="too much noise"`) {
		t.Fatalf("expected quoted value, got %q", buf.String())
	}
}

func TestConsoleHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	lvl.Set(slog.LevelWarn)
	logger := slog.New(newConsoleHandler(&buf, lvl))

	logger.Info("ignored")
	if buf.Len() != 0 {
		t.Fatalf("expected info suppressed at warn level, got %q", buf.String())
	}
	logger.Warn("kept")
	if !strings.Contains(buf.String(), "WARN") {
		t.Fatalf("expected warn line, got %q", buf.String())
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := NewNop()
	logger.Error("should not panic", Error(nil))
}
