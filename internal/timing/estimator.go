// Package timing estimates narration duration from script text before any
// audio exists. Estimates feed progress reporting and serve as proportional
// weights for subtitle alignment; the measured audio duration always wins
// once synthesis completes.
package timing

import (
	"newsreel/internal/config"
	"newsreel/internal/script"
	"newsreel/internal/textutil"
)

// Estimator converts script text into estimated per-segment durations using a
// fixed speaking rate plus a fixed per-segment pause.
type Estimator struct {
	wordsPerSecond float64
	segmentPause   float64
	minSegment     float64
}

// NewEstimator constructs an estimator from the timing configuration.
func NewEstimator(cfg config.Timing) *Estimator {
	return &Estimator{
		wordsPerSecond: float64(cfg.WordsPerMinute) / 60.0,
		segmentPause:   cfg.SegmentPause,
		minSegment:     cfg.MinSegmentSeconds,
	}
}

// SegmentSeconds estimates the spoken duration of a single text segment.
// Empty text degrades to the minimum floor duration rather than zero.
func (e *Estimator) SegmentSeconds(text string) float64 {
	words := textutil.WordCount(text)
	if words == 0 {
		return e.minSegment
	}
	seconds := float64(words)/e.wordsPerSecond + e.segmentPause
	if seconds < e.minSegment {
		return e.minSegment
	}
	return seconds
}

// Annotate returns a copy of the script with EstimatedSeconds populated for
// every segment. The input script is not modified.
func (e *Estimator) Annotate(s script.Script) script.Script {
	out := s
	out.Segments = make([]script.Segment, len(s.Segments))
	copy(out.Segments, s.Segments)
	for i := range out.Segments {
		out.Segments[i].EstimatedSeconds = e.SegmentSeconds(out.Segments[i].Text)
	}
	return out
}

// Metrics summarizes script timing for submit-time feedback.
type Metrics struct {
	WordCount        int
	EstimatedSeconds float64
	WordsPerMinute   int
}

// Analyze reports word count and total estimated duration for a script.
func (e *Estimator) Analyze(s script.Script) Metrics {
	annotated := e.Annotate(s)
	return Metrics{
		WordCount:        s.WordCount(),
		EstimatedSeconds: annotated.TotalEstimatedSeconds(),
		WordsPerMinute:   int(e.wordsPerSecond * 60.0),
	}
}
