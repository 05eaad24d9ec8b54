package scenes

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Event is one visual effect on the render timeline. Start and Duration
// are seconds; events are contiguous and span the whole video.
type Event struct {
	Index    int     `json:"index"`
	Effect   string  `json:"effect"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// End returns the event's end time on the timeline.
func (e Event) End() float64 {
	return e.Start + e.Duration
}

// TotalDuration returns the end of the final event, or 0 for an empty plan.
func TotalDuration(events []Event) float64 {
	if len(events) == 0 {
		return 0
	}
	return events[len(events)-1].End()
}

// Validate checks contiguity, ordering, and positive durations.
func Validate(events []Event) error {
	cursor := 0.0
	for i, event := range events {
		if event.Index != i {
			return fmt.Errorf("event %d: index %d out of order", i, event.Index)
		}
		if strings.TrimSpace(event.Effect) == "" {
			return fmt.Errorf("event %d: empty effect", i)
		}
		if event.Duration <= 0 {
			return fmt.Errorf("event %d: non-positive duration %.3f", i, event.Duration)
		}
		if diff := event.Start - cursor; diff > 1e-9 || diff < -1e-9 {
			return fmt.Errorf("event %d: starts at %.3f, expected %.3f", i, event.Start, cursor)
		}
		cursor = event.End()
	}
	return nil
}

// Save writes the scene plan to path as JSON.
func Save(path string, events []Event) error {
	encoded, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return fmt.Errorf("encode scene plan: %w", err)
	}
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return fmt.Errorf("write scene plan: %w", err)
	}
	return nil
}

// Load reads a scene plan previously written by Save.
func Load(path string) ([]Event, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene plan: %w", err)
	}
	var events []Event
	if err := json.Unmarshal(raw, &events); err != nil {
		return nil, fmt.Errorf("decode scene plan %s: %w", path, err)
	}
	return events, nil
}
