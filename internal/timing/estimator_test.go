package timing_test

import (
	"math"
	"testing"

	"newsreel/internal/config"
	"newsreel/internal/script"
	"newsreel/internal/timing"
)

func newEstimator() *timing.Estimator {
	return timing.NewEstimator(config.Timing{
		WordsPerMinute:    150,
		SegmentPause:      0.4,
		MinSegmentSeconds: 0.5,
	})
}

func TestSegmentSeconds(t *testing.T) {
	est := newEstimator()
	// 5 words at 2.5 words/second plus the pause constant.
	got := est.SegmentSeconds("one two three four five")
	want := 5/2.5 + 0.4
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("SegmentSeconds = %f, want %f", got, want)
	}
}

func TestSegmentSecondsEmptyTextFloors(t *testing.T) {
	est := newEstimator()
	if got := est.SegmentSeconds(""); got != 0.5 {
		t.Fatalf("empty segment should floor at 0.5s, got %f", got)
	}
	if got := est.SegmentSeconds("   "); got != 0.5 {
		t.Fatalf("blank segment should floor at 0.5s, got %f", got)
	}
}

func TestAnnotateLeavesInputUntouched(t *testing.T) {
	est := newEstimator()
	src := script.FromText("t", "First item. Second longer news item here.", 30)
	annotated := est.Annotate(src)

	for _, seg := range src.Segments {
		if seg.EstimatedSeconds != 0 {
			t.Fatalf("input script mutated: %+v", seg)
		}
	}
	for _, seg := range annotated.Segments {
		if seg.EstimatedSeconds <= 0 {
			t.Fatalf("segment %d missing estimate", seg.Index)
		}
	}
}

func TestAnnotateDeterministic(t *testing.T) {
	est := newEstimator()
	src := script.FromText("t", "Alpha beta. Gamma delta epsilon.", 30)
	a := est.Annotate(src)
	b := est.Annotate(src)
	for i := range a.Segments {
		if a.Segments[i].EstimatedSeconds != b.Segments[i].EstimatedSeconds {
			t.Fatal("estimator must be deterministic")
		}
	}
}

func TestAnalyze(t *testing.T) {
	est := newEstimator()
	m := est.Analyze(script.FromText("t", "one two three four five six.", 30))
	if m.WordCount != 6 {
		t.Fatalf("WordCount = %d", m.WordCount)
	}
	if m.EstimatedSeconds <= 0 {
		t.Fatalf("EstimatedSeconds = %f", m.EstimatedSeconds)
	}
	if m.WordsPerMinute != 150 {
		t.Fatalf("WordsPerMinute = %d", m.WordsPerMinute)
	}
}
