package scenes

import (
	"sort"
	"strings"
)

// templateStep is a relative share of the timeline assigned to one effect.
type templateStep struct {
	Effect string
	Weight float64
}

// Effect identifiers understood by the compositor.
const (
	EffectIntroFade = "intro_fade"
	EffectOutroFade = "outro_fade"
	EffectSlowZoom  = "slow_zoom"
	EffectKenBurns  = "ken_burns"
	EffectHold      = "hold"
)

// styleTemplates define each style's effect sequence as relative weights.
// Weights scale to the narration duration, so a template works for any
// target length.
var styleTemplates = map[string][]templateStep{
	"modern": {
		{Effect: EffectIntroFade, Weight: 5},
		{Effect: EffectSlowZoom, Weight: 85},
		{Effect: EffectOutroFade, Weight: 10},
	},
	"classic": {
		{Effect: EffectIntroFade, Weight: 10},
		{Effect: EffectHold, Weight: 80},
		{Effect: EffectOutroFade, Weight: 10},
	},
	"dramatic": {
		{Effect: EffectIntroFade, Weight: 5},
		{Effect: EffectKenBurns, Weight: 80},
		{Effect: EffectOutroFade, Weight: 15},
	},
}

// KnownStyles lists supported style identifiers in sorted order.
func KnownStyles() []string {
	styles := make([]string, 0, len(styleTemplates))
	for name := range styleTemplates {
		styles = append(styles, name)
	}
	sort.Strings(styles)
	return styles
}

// IsKnownStyle reports whether the style identifier has a template.
func IsKnownStyle(style string) bool {
	_, ok := styleTemplates[strings.ToLower(strings.TrimSpace(style))]
	return ok
}
