package timing

import (
	"context"
	"testing"

	"newsreel/internal/queue"
	"newsreel/internal/script"
	"newsreel/internal/testsupport"
)

func TestStageAnnotatesScript(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	s := script.FromText("markets", "Breaking: markets rally. Analysts expect more gains.", 30)
	raw, err := s.Marshal()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	item := testsupport.NewJob(t, store, queue.JobRequest{Topic: "markets", ScriptJSON: raw})

	estimating := NewStage(cfg, store, nil)
	if err := estimating.Prepare(context.Background(), item); err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if err := estimating.Execute(context.Background(), item); err != nil {
		t.Fatalf("execute: %v", err)
	}

	annotated, err := script.ParseString(item.ScriptJSON)
	if err != nil {
		t.Fatalf("parse annotated: %v", err)
	}
	for i, segment := range annotated.Segments {
		if segment.EstimatedSeconds <= 0 {
			t.Errorf("segment %d has no estimate", i)
		}
	}
}

func TestStagePrepareRequiresScript(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewJob(t, store, queue.JobRequest{Topic: "markets"})

	estimating := NewStage(cfg, store, nil)
	if err := estimating.Prepare(context.Background(), item); err == nil {
		t.Fatal("expected error without script")
	}
}
