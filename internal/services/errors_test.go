package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"newsreel/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "render", "mux", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"render", "mux", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestIsTransient(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"timeout", services.Wrap(services.ErrTimeout, "speech", "synthesize", "deadline", nil), true},
		{"transient", services.Wrap(services.ErrTransient, "speech", "synthesize", "rate limited", nil), true},
		{"validation", services.Wrap(services.ErrValidation, "scenes", "plan", "unknown style", nil), false},
		{"cancelled", context.Canceled, false},
		{"synthesis unavailable", services.Wrap(services.ErrSynthesisUnavailable, "speech", "synthesize", "all providers failed", nil), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := services.IsTransient(tc.err); got != tc.want {
				t.Fatalf("IsTransient(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestIsFatal(t *testing.T) {
	fatal := []error{
		services.Wrap(services.ErrSynthesisUnavailable, "speech", "synthesize", "all providers failed", nil),
		services.Wrap(services.ErrAlignment, "subtitles", "align", "zero duration audio", nil),
		services.Wrap(services.ErrInvalidStyle, "scenes", "plan", "unknown style", nil),
		services.Wrap(services.ErrRenderMismatch, "render", "verify", "duration drift", nil),
	}
	for _, err := range fatal {
		if !services.IsFatal(err) {
			t.Fatalf("expected fatal classification for %v", err)
		}
	}
	if services.IsFatal(services.Wrap(services.ErrTimeout, "speech", "synthesize", "deadline", nil)) {
		t.Fatal("timeout should not be fatal")
	}
}

func TestDetailsStripsMarkerPrefix(t *testing.T) {
	err := services.Wrap(services.ErrInvalidStyle, "scenes", "plan", `style "neon" not configured`, nil)
	details := services.Details(err)
	if strings.HasPrefix(details.Message, "invalid style:") {
		t.Fatalf("marker prefix should be stripped, got %q", details.Message)
	}
	if !strings.Contains(details.Message, "neon") {
		t.Fatalf("expected style name in message, got %q", details.Message)
	}
}
