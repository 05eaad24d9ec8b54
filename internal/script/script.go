package script

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"newsreel/internal/services"
	"newsreel/internal/textutil"
)

// Target duration bounds accepted from callers, in seconds.
const (
	MinTargetSeconds = 15
	MaxTargetSeconds = 120
)

// Segment is one ordered narration unit of a script. EstimatedSeconds is the
// pre-synthesis estimate; it is a weighting hint only and never overrides the
// measured audio duration.
type Segment struct {
	Index            int     `json:"index"`
	Text             string  `json:"text"`
	EstimatedSeconds float64 `json:"estimated_seconds,omitempty"`
}

// Script is the ordered segment sequence produced by the external script
// generator. It is immutable once attached to a job.
type Script struct {
	Topic         string    `json:"topic,omitempty"`
	TargetSeconds int       `json:"target_seconds,omitempty"`
	Segments      []Segment `json:"segments"`
}

// FullText joins all segment text with single spaces, the form handed to
// voice synthesis.
func (s Script) FullText() string {
	parts := make([]string, 0, len(s.Segments))
	for _, seg := range s.Segments {
		if text := textutil.NormalizeText(seg.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// WordCount returns the total word count across segments.
func (s Script) WordCount() int {
	total := 0
	for _, seg := range s.Segments {
		total += textutil.WordCount(seg.Text)
	}
	return total
}

// TotalEstimatedSeconds sums the per-segment estimates.
func (s Script) TotalEstimatedSeconds() float64 {
	total := 0.0
	for _, seg := range s.Segments {
		total += seg.EstimatedSeconds
	}
	return total
}

// Validate checks structural requirements before a script enters the pipeline.
func (s Script) Validate() error {
	if len(s.Segments) == 0 {
		return services.Wrap(services.ErrValidation, "script", "validate", "script has no segments", nil)
	}
	if textutil.IsBlank(s.FullText()) {
		return services.Wrap(services.ErrValidation, "script", "validate", "script text is empty", nil)
	}
	for i, seg := range s.Segments {
		if seg.Index != i {
			return services.Wrap(services.ErrValidation, "script", "validate",
				fmt.Sprintf("segment order broken at position %d (index %d)", i, seg.Index), nil)
		}
	}
	if s.TargetSeconds != 0 && (s.TargetSeconds < MinTargetSeconds || s.TargetSeconds > MaxTargetSeconds) {
		return services.Wrap(services.ErrValidation, "script", "validate",
			fmt.Sprintf("target duration %ds outside %d-%ds", s.TargetSeconds, MinTargetSeconds, MaxTargetSeconds), nil)
	}
	return nil
}

// Parse decodes a script from its JSON form.
func Parse(raw []byte) (Script, error) {
	var s Script
	if err := json.Unmarshal(raw, &s); err != nil {
		return Script{}, services.Wrap(services.ErrValidation, "script", "parse", "malformed script JSON", err)
	}
	return s, nil
}

// ParseString decodes a script from a string, tolerating empty input.
func ParseString(raw string) (Script, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Script{}, services.Wrap(services.ErrValidation, "script", "parse", "script missing", nil)
	}
	return Parse([]byte(raw))
}

// LoadFile reads and decodes a script JSON file.
func LoadFile(path string) (Script, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Script{}, fmt.Errorf("read script file: %w", err)
	}
	return Parse(raw)
}

// FromText builds a single-segment-per-sentence script from plain narration
// text, for callers that do not supply structured segments.
func FromText(topic, text string, targetSeconds int) Script {
	sentences := textutil.SplitSentences(text)
	segments := make([]Segment, 0, len(sentences))
	for i, sentence := range sentences {
		segments = append(segments, Segment{Index: i, Text: sentence})
	}
	return Script{Topic: strings.TrimSpace(topic), TargetSeconds: targetSeconds, Segments: segments}
}

// Marshal encodes the script for queue persistence.
func (s Script) Marshal() (string, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("marshal script: %w", err)
	}
	return string(raw), nil
}
