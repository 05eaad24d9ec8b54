package scenes

import (
	"fmt"
	"strings"

	"newsreel/internal/services"
)

// Plan scales the style's template weights to totalSeconds. The last event
// absorbs float rounding so the plan ends exactly at totalSeconds.
func Plan(style string, totalSeconds float64) ([]Event, error) {
	template, ok := styleTemplates[strings.ToLower(strings.TrimSpace(style))]
	if !ok {
		return nil, services.Wrap(services.ErrInvalidStyle, "scenes", "plan",
			fmt.Sprintf("Unknown style %q; known styles: %s", style, strings.Join(KnownStyles(), ", ")), nil)
	}
	if totalSeconds <= 0 {
		return nil, services.Wrap(services.ErrValidation, "scenes", "plan",
			fmt.Sprintf("Cannot plan a %.3f second timeline", totalSeconds), nil)
	}

	totalWeight := 0.0
	for _, step := range template {
		totalWeight += step.Weight
	}

	events := make([]Event, 0, len(template))
	cursor := 0.0
	for i, step := range template {
		duration := totalSeconds * step.Weight / totalWeight
		if i == len(template)-1 {
			duration = totalSeconds - cursor
		}
		events = append(events, Event{
			Index:    i,
			Effect:   step.Effect,
			Start:    cursor,
			Duration: duration,
		})
		cursor += duration
	}
	return events, nil
}
