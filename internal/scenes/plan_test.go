package scenes

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"newsreel/internal/services"
)

func TestPlanSpansExactDuration(t *testing.T) {
	for _, style := range KnownStyles() {
		// An awkward duration that does not divide evenly.
		events, err := Plan(style, 47.123)
		if err != nil {
			t.Fatalf("plan %s: %v", style, err)
		}
		if math.Abs(TotalDuration(events)-47.123) > 1e-9 {
			t.Fatalf("%s total = %v, want 47.123", style, TotalDuration(events))
		}
		if err := Validate(events); err != nil {
			t.Fatalf("%s validate: %v", style, err)
		}
	}
}

func TestPlanModernProportions(t *testing.T) {
	events, err := Plan("modern", 100.0)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("events = %d, want 3", len(events))
	}
	if events[0].Effect != EffectIntroFade || math.Abs(events[0].Duration-5.0) > 1e-9 {
		t.Fatalf("intro = %+v", events[0])
	}
	if events[1].Effect != EffectSlowZoom || math.Abs(events[1].Duration-85.0) > 1e-9 {
		t.Fatalf("body = %+v", events[1])
	}
	if events[2].Effect != EffectOutroFade || math.Abs(events[2].Duration-10.0) > 1e-9 {
		t.Fatalf("outro = %+v", events[2])
	}
}

func TestPlanIsDeterministic(t *testing.T) {
	first, err := Plan("dramatic", 33.7)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	second, err := Plan("dramatic", 33.7)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("plans differ:\n%+v\n%+v", first, second)
	}
}

func TestPlanUnknownStyle(t *testing.T) {
	_, err := Plan("vaporwave", 30.0)
	if !errors.Is(err, services.ErrInvalidStyle) {
		t.Fatalf("error = %v, want InvalidStyle", err)
	}
	if !services.IsFatal(err) {
		t.Fatal("expected fatal classification")
	}
}

func TestPlanRejectsNonPositiveDuration(t *testing.T) {
	if _, err := Plan("modern", 0); err == nil {
		t.Fatal("expected error for zero duration")
	}
	if _, err := Plan("modern", -3); err == nil {
		t.Fatal("expected error for negative duration")
	}
}

func TestValidateDetectsGaps(t *testing.T) {
	events := []Event{
		{Index: 0, Effect: EffectIntroFade, Start: 0, Duration: 2},
		{Index: 1, Effect: EffectHold, Start: 3, Duration: 2},
	}
	if err := Validate(events); err == nil {
		t.Fatal("expected gap error")
	}
}
