package subtitles

import (
	"fmt"
	"strings"

	"newsreel/internal/config"
	"newsreel/internal/script"
	"newsreel/internal/services"
	"newsreel/internal/textutil"
)

// Aligner distributes measured narration time across subtitle cues using
// the per-segment duration estimates as weights. Estimates only shape the
// proportions; the measured audio duration is authoritative.
type Aligner struct {
	maxCueChars   int
	minCueSeconds float64
}

// NewAligner constructs an aligner from subtitle configuration.
func NewAligner(cfg config.Subtitles) *Aligner {
	maxChars := cfg.MaxCueChars
	if maxChars <= 0 {
		maxChars = 42
	}
	minSeconds := cfg.MinCueSeconds
	if minSeconds <= 0 {
		minSeconds = 1.0
	}
	return &Aligner{maxCueChars: maxChars, minCueSeconds: minSeconds}
}

// Align produces the cue timeline for a script and a measured audio
// duration. A blank segment holds a silent window of the configured
// minimum duration, reserved from the pool before text segments are
// allotted time. The final cue ends exactly at audioSeconds less any
// trailing silent windows.
func (a *Aligner) Align(s script.Script, audioSeconds float64) ([]Cue, error) {
	if len(s.Segments) == 0 {
		return nil, services.Wrap(services.ErrAlignment, "subtitles", "align",
			"Script has no segments to align", nil)
	}
	if audioSeconds <= 0 {
		return nil, services.Wrap(services.ErrAlignment, "subtitles", "align",
			"Measured audio duration is zero", fmt.Errorf("audio seconds %.3f", audioSeconds))
	}

	weights := segmentWeights(s.Segments)
	totalWeight := 0.0
	silentWindows := 0
	for i := range weights {
		totalWeight += weights[i]
		if weights[i] <= 0 {
			silentWindows++
		}
	}
	if totalWeight <= 0 {
		return nil, services.Wrap(services.ErrAlignment, "subtitles", "align",
			"Script segments contain no alignable text", nil)
	}

	// Zero-weight segments hold a silent window of the minimum cue
	// duration; the remaining pool is split among weighted segments.
	pool := audioSeconds - float64(silentWindows)*a.minCueSeconds
	if pool <= 0 {
		return nil, services.Wrap(services.ErrAlignment, "subtitles", "align",
			"Audio too short to reserve silent windows for blank segments",
			fmt.Errorf("audio %.3fs, %d reserved windows of %.1fs", audioSeconds, silentWindows, a.minCueSeconds))
	}

	var cues []Cue
	cursor := 0.0
	trailingSilence := 0.0
	for i, segment := range s.Segments {
		if weights[i] <= 0 {
			cursor += a.minCueSeconds
			trailingSilence += a.minCueSeconds
			continue
		}
		span := pool * weights[i] / totalWeight
		lines := a.splitCueLines(segment.Text)
		if len(lines) == 0 {
			cursor += span
			trailingSilence += span
			continue
		}
		trailingSilence = 0
		lineWeights := make([]float64, len(lines))
		lineTotal := 0.0
		for j, line := range lines {
			lineWeights[j] = float64(textutil.CharLen(line))
			lineTotal += lineWeights[j]
		}
		for j, line := range lines {
			lineSpan := span * lineWeights[j] / lineTotal
			cues = append(cues, Cue{
				Index: len(cues),
				Start: cursor,
				End:   cursor + lineSpan,
				Text:  line,
			})
			cursor += lineSpan
		}
	}

	if len(cues) == 0 {
		return nil, services.Wrap(services.ErrAlignment, "subtitles", "align",
			"Alignment produced no cues", nil)
	}

	a.enforceMinimumDurations(cues, audioSeconds)

	// Float rounding lands on the measured duration exactly, short of
	// any silent windows reserved after the last text segment.
	cues[len(cues)-1].End = audioSeconds - trailingSilence

	if err := Validate(cues); err != nil {
		return nil, services.Wrap(services.ErrAlignment, "subtitles", "align",
			"Alignment produced an inconsistent timeline", err)
	}
	return cues, nil
}

// segmentWeights returns the proportional share of each segment. Segments
// without estimates fall back to character length so no segment collapses
// to zero screen time.
func segmentWeights(segments []script.Segment) []float64 {
	weights := make([]float64, len(segments))
	haveEstimates := false
	for i, segment := range segments {
		if segment.EstimatedSeconds > 0 {
			weights[i] = segment.EstimatedSeconds
			haveEstimates = true
		}
	}
	if !haveEstimates {
		for i, segment := range segments {
			weights[i] = float64(textutil.CharLen(strings.TrimSpace(segment.Text)))
		}
		return weights
	}
	// Mixed case: give unestimated segments a share relative to text length
	// against the average estimated cost per character.
	var estimatedChars, estimatedSeconds float64
	for i, segment := range segments {
		if weights[i] > 0 {
			estimatedChars += float64(textutil.CharLen(segment.Text))
			estimatedSeconds += weights[i]
		}
	}
	perChar := 0.0
	if estimatedChars > 0 {
		perChar = estimatedSeconds / estimatedChars
	}
	for i, segment := range segments {
		if weights[i] == 0 && !textutil.IsBlank(segment.Text) {
			weights[i] = perChar * float64(textutil.CharLen(segment.Text))
		}
	}
	return weights
}

// splitCueLines breaks segment text into display lines: sentences first,
// then clauses, then hard word wrapping for anything still too long.
func (a *Aligner) splitCueLines(text string) []string {
	text = textutil.NormalizeText(text)
	if text == "" {
		return nil
	}
	var lines []string
	for _, sentence := range textutil.SplitSentences(text) {
		if textutil.CharLen(sentence) <= a.maxCueChars {
			lines = append(lines, sentence)
			continue
		}
		for _, clause := range textutil.SplitClauses(sentence) {
			if textutil.CharLen(clause) <= a.maxCueChars {
				lines = append(lines, clause)
				continue
			}
			lines = append(lines, textutil.SplitWords(clause, a.maxCueChars)...)
		}
	}
	return lines
}

// enforceMinimumDurations widens cues shorter than the floor by reclaiming
// time from whichever neighbor has the most to spare. The overall span is
// preserved.
func (a *Aligner) enforceMinimumDurations(cues []Cue, audioSeconds float64) {
	if len(cues) < 2 {
		return
	}
	// A floor that cannot fit every cue is scaled down instead of
	// producing overlapping cues.
	floor := a.minCueSeconds
	if maxFloor := audioSeconds / float64(len(cues)); floor > maxFloor {
		floor = maxFloor
	}
	for i := range cues {
		deficit := floor - cues[i].Duration()
		if deficit <= 0 {
			continue
		}
		prevSpare, nextSpare := 0.0, 0.0
		if i > 0 {
			prevSpare = cues[i-1].Duration() - floor
		}
		if i < len(cues)-1 {
			nextSpare = cues[i+1].Duration() - floor
		}
		if prevSpare >= nextSpare && prevSpare > 0 {
			take := deficit
			if take > prevSpare {
				take = prevSpare
			}
			cues[i-1].End -= take
			cues[i].Start -= take
		} else if nextSpare > 0 {
			take := deficit
			if take > nextSpare {
				take = nextSpare
			}
			cues[i].End += take
			cues[i+1].Start += take
		}
	}
}
