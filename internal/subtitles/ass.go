package subtitles

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"newsreel/internal/services"
)

// styleTypography defines the burned-in look of each named style.
type styleTypography struct {
	FontName     string
	FontSize     int
	PrimaryColor string
	OutlineWidth int
	MarginV      int
}

// Subtitle colors use the ASS &HAABBGGRR convention.
var styleTable = map[string]styleTypography{
	"modern":   {FontName: "Arial", FontSize: 48, PrimaryColor: "&H00FFFFFF", OutlineWidth: 2, MarginV: 60},
	"classic":  {FontName: "Georgia", FontSize: 44, PrimaryColor: "&H00FFFFFF", OutlineWidth: 1, MarginV: 50},
	"dramatic": {FontName: "Impact", FontSize: 52, PrimaryColor: "&H0000FFFF", OutlineWidth: 3, MarginV: 70},
}

// KnownStyles lists the supported style identifiers in sorted order.
func KnownStyles() []string {
	styles := make([]string, 0, len(styleTable))
	for name := range styleTable {
		styles = append(styles, name)
	}
	sort.Strings(styles)
	return styles
}

// IsKnownStyle reports whether the style identifier is supported.
func IsKnownStyle(style string) bool {
	_, ok := styleTable[strings.ToLower(strings.TrimSpace(style))]
	return ok
}

// WriteASS renders the cue timeline as an ASS subtitle script sized for
// the given output resolution.
func WriteASS(w io.Writer, cues []Cue, style string, width, height int) error {
	typography, ok := styleTable[strings.ToLower(strings.TrimSpace(style))]
	if !ok {
		return services.Wrap(services.ErrInvalidStyle, "subtitles", "write ass",
			fmt.Sprintf("Unknown style %q; known styles: %s", style, strings.Join(KnownStyles(), ", ")), nil)
	}

	var b strings.Builder
	b.WriteString("[Script Info]\n")
	b.WriteString("ScriptType: v4.00+\n")
	fmt.Fprintf(&b, "PlayResX: %d\n", width)
	fmt.Fprintf(&b, "PlayResY: %d\n", height)
	b.WriteString("WrapStyle: 0\n\n")

	b.WriteString("[V4+ Styles]\n")
	b.WriteString("Format: Name, Fontname, Fontsize, PrimaryColour, OutlineColour, BackColour, Bold, Italic, Alignment, Outline, Shadow, MarginL, MarginR, MarginV\n")
	fmt.Fprintf(&b, "Style: Default,%s,%d,%s,&H00000000,&H64000000,0,0,2,%d,0,40,40,%d\n\n",
		typography.FontName, typography.FontSize, typography.PrimaryColor, typography.OutlineWidth, typography.MarginV)

	b.WriteString("[Events]\n")
	b.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")
	for _, cue := range cues {
		fmt.Fprintf(&b, "Dialogue: 0,%s,%s,Default,,0,0,0,,%s\n",
			formatASSTime(cue.Start), formatASSTime(cue.End), escapeASSText(cue.Text))
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write ass: %w", err)
	}
	return nil
}

// SaveASS writes the ASS script to path.
func SaveASS(path string, cues []Cue, style string, width, height int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create ass file: %w", err)
	}
	if err := WriteASS(f, cues, style, width, height); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// formatASSTime renders seconds as H:MM:SS.cs with centisecond precision.
func formatASSTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	centis := int(seconds*100 + 0.5)
	h := centis / 360000
	centis %= 360000
	m := centis / 6000
	centis %= 6000
	s := centis / 100
	cs := centis % 100
	return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, s, cs)
}

func escapeASSText(text string) string {
	text = strings.ReplaceAll(text, "\n", "\\N")
	return strings.ReplaceAll(text, "{", "(")
}
