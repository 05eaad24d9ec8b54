package subtitles

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"newsreel/internal/services"
)

func TestWriteASSRendersDialogue(t *testing.T) {
	cues := []Cue{
		{Index: 0, Start: 0, End: 2.5, Text: "Breaking: markets rally."},
		{Index: 1, Start: 2.5, End: 5.0, Text: "Analysts expect more gains."},
	}
	var buf bytes.Buffer
	if err := WriteASS(&buf, cues, "modern", 1920, 1080); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "PlayResX: 1920") || !strings.Contains(out, "PlayResY: 1080") {
		t.Fatalf("missing resolution:\n%s", out)
	}
	if !strings.Contains(out, "Arial,48") {
		t.Fatalf("missing modern typography:\n%s", out)
	}
	if !strings.Contains(out, "Dialogue: 0,0:00:00.00,0:00:02.50,Default,,0,0,0,,Breaking: markets rally.") {
		t.Fatalf("missing first dialogue line:\n%s", out)
	}
	if !strings.Contains(out, "0:00:02.50,0:00:05.00") {
		t.Fatalf("missing second cue timing:\n%s", out)
	}
}

func TestWriteASSDramaticTypography(t *testing.T) {
	var buf bytes.Buffer
	err := WriteASS(&buf, []Cue{{Index: 0, Start: 0, End: 1, Text: "x"}}, "dramatic", 1280, 720)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if !strings.Contains(buf.String(), "Impact,52,&H0000FFFF") {
		t.Fatalf("missing dramatic typography:\n%s", buf.String())
	}
}

func TestWriteASSUnknownStyle(t *testing.T) {
	var buf bytes.Buffer
	err := WriteASS(&buf, nil, "vaporwave", 1920, 1080)
	if !errors.Is(err, services.ErrInvalidStyle) {
		t.Fatalf("error = %v, want InvalidStyle", err)
	}
}

func TestFormatASSTime(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "0:00:00.00"},
		{4.2, "0:00:04.20"},
		{65.015, "0:01:05.02"},
		{3661.5, "1:01:01.50"},
		{-1, "0:00:00.00"},
	}
	for _, tc := range tests {
		if got := formatASSTime(tc.seconds); got != tc.want {
			t.Errorf("formatASSTime(%v) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}

func TestKnownStyles(t *testing.T) {
	styles := KnownStyles()
	if len(styles) != 3 {
		t.Fatalf("styles = %v", styles)
	}
	for _, style := range []string{"modern", "classic", "dramatic"} {
		if !IsKnownStyle(style) {
			t.Errorf("style %q not recognized", style)
		}
	}
	if IsKnownStyle("unknown") {
		t.Error("unexpected style accepted")
	}
}
