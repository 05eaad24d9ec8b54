package subtitles

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Cue is a single subtitle entry on the final timeline. Start and End are
// seconds from the beginning of the narration track.
type Cue struct {
	Index int     `json:"index"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Duration returns the cue's on-screen time in seconds.
func (c Cue) Duration() float64 {
	return c.End - c.Start
}

// TotalSpan returns the end time of the last cue, or 0 for an empty list.
func TotalSpan(cues []Cue) float64 {
	if len(cues) == 0 {
		return 0
	}
	return cues[len(cues)-1].End
}

// Validate checks monotonic ordering and non-negative durations.
func Validate(cues []Cue) error {
	previousEnd := 0.0
	for i, cue := range cues {
		if cue.Index != i {
			return fmt.Errorf("cue %d: index %d out of order", i, cue.Index)
		}
		if strings.TrimSpace(cue.Text) == "" {
			return fmt.Errorf("cue %d: empty text", i)
		}
		if cue.Start < previousEnd-1e-9 {
			return fmt.Errorf("cue %d: starts at %.3f before previous end %.3f", i, cue.Start, previousEnd)
		}
		if cue.End <= cue.Start {
			return fmt.Errorf("cue %d: non-positive duration [%.3f, %.3f]", i, cue.Start, cue.End)
		}
		previousEnd = cue.End
	}
	return nil
}

// Save writes the cue list to path as JSON.
func Save(path string, cues []Cue) error {
	encoded, err := json.MarshalIndent(cues, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cues: %w", err)
	}
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return fmt.Errorf("write cues: %w", err)
	}
	return nil
}

// Load reads a cue list previously written by Save.
func Load(path string) ([]Cue, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cues: %w", err)
	}
	var cues []Cue
	if err := json.Unmarshal(raw, &cues); err != nil {
		return nil, fmt.Errorf("decode cues %s: %w", path, err)
	}
	return cues, nil
}
