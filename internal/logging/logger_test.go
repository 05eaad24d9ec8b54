package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"newsreel/internal/services"
)

func TestConsoleHandlerRendersAttrs(t *testing.T) {
	var buf bytes.Buffer
	handler := newConsoleHandler(&buf, slog.LevelInfo)
	logger := slog.New(handler)

	logger.Info("stage started", String(FieldStage, "synthesizing"), Int64(FieldJobID, 7))

	out := buf.String()
	if !strings.Contains(out, "stage started") {
		t.Fatalf("missing message in %q", out)
	}
	if !strings.Contains(out, "stage=synthesizing") {
		t.Fatalf("missing stage attr in %q", out)
	}
	if !strings.Contains(out, "job_id=7") {
		t.Fatalf("missing job attr in %q", out)
	}
}

func TestConsoleHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newConsoleHandler(&buf, slog.LevelWarn))
	logger.Info("dropped")
	logger.Warn("kept")
	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Fatalf("info record should be filtered: %q", out)
	}
	if !strings.Contains(out, "kept") {
		t.Fatalf("warn record should pass: %q", out)
	}
}

func TestWithContextAddsJobFields(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(newConsoleHandler(&buf, slog.LevelInfo))

	ctx := services.WithJobID(context.Background(), 42)
	ctx = services.WithStage(ctx, "rendering")

	WithContext(ctx, base).Info("tick")

	out := buf.String()
	if !strings.Contains(out, "job_id=42") || !strings.Contains(out, "stage=rendering") {
		t.Fatalf("context fields missing in %q", out)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
