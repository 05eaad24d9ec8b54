package render

import (
	"strconv"
	"strings"
)

// ProgressParser consumes ffmpeg -progress key=value lines and tracks how
// far through a known-duration encode the process has gotten.
type ProgressParser struct {
	totalSeconds float64
	outSeconds   float64
	done         bool
}

// NewProgressParser builds a parser for an encode of the given length.
func NewProgressParser(totalSeconds float64) *ProgressParser {
	return &ProgressParser{totalSeconds: totalSeconds}
}

// Feed processes one line of progress output. It returns true when the
// line changed the reported position.
func (p *ProgressParser) Feed(line string) bool {
	key, value, found := strings.Cut(strings.TrimSpace(line), "=")
	if !found {
		return false
	}
	switch key {
	case "out_time_us", "out_time_ms":
		// Both keys carry microseconds in current ffmpeg builds.
		micros, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil || micros < 0 {
			return false
		}
		p.outSeconds = float64(micros) / 1e6
		return true
	case "progress":
		if strings.TrimSpace(value) == "end" {
			p.done = true
			return true
		}
	}
	return false
}

// Percent reports completion in [0, 100].
func (p *ProgressParser) Percent() float64 {
	if p.done {
		return 100
	}
	if p.totalSeconds <= 0 {
		return 0
	}
	percent := p.outSeconds / p.totalSeconds * 100
	if percent > 100 {
		percent = 100
	}
	if percent < 0 {
		percent = 0
	}
	return percent
}

// OutSeconds reports the encoder's current out-time position in seconds.
func (p *ProgressParser) OutSeconds() float64 {
	return p.outSeconds
}

// Done reports whether ffmpeg signalled the end of the encode.
func (p *ProgressParser) Done() bool {
	return p.done
}
