package queue_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"newsreel/internal/config"
	"newsreel/internal/queue"
)

func newTestStore(t *testing.T) *queue.Store {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StagingDir = filepath.Join(root, "staging")
	cfg.Paths.OutputDir = filepath.Join(root, "output")
	cfg.Paths.LogDir = filepath.Join(root, "logs")
	cfg.Paths.AssetsDir = filepath.Join(root, "assets")

	store, err := queue.Open(&cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return store
}

func TestNewJobDefaults(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	item, err := store.NewJob(ctx, queue.JobRequest{
		Topic:         "city council vote",
		ImagePath:     "/assets/anchor.png",
		Style:         "modern",
		TargetSeconds: 45,
	})
	if err != nil {
		t.Fatalf("new job: %v", err)
	}
	if item.JobID == "" {
		t.Fatal("expected generated job id")
	}
	if item.Status != queue.StatusPending {
		t.Fatalf("status = %s, want %s", item.Status, queue.StatusPending)
	}
	if item.TargetSeconds != 45 {
		t.Fatalf("target seconds = %d, want 45", item.TargetSeconds)
	}
	if item.CreatedAt.IsZero() || item.UpdatedAt.IsZero() {
		t.Fatal("expected timestamps to be set")
	}
}

func TestUpdateRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	item, err := store.NewJob(ctx, queue.JobRequest{Topic: "storm warning", Style: "dramatic"})
	if err != nil {
		t.Fatalf("new job: %v", err)
	}

	item.Status = queue.StatusAudioReady
	item.AudioFile = "/staging/job/narration.wav"
	item.AudioSeconds = 42.5
	item.SynthProvider = "elevenlabs"
	heartbeat := time.Now().UTC().Truncate(time.Second)
	item.LastHeartbeat = &heartbeat
	item.SetProgress("Synthesizing", "narration complete", 40)

	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("update: %v", err)
	}

	reloaded, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if reloaded.Status != queue.StatusAudioReady {
		t.Fatalf("status = %s, want %s", reloaded.Status, queue.StatusAudioReady)
	}
	if reloaded.AudioSeconds != 42.5 {
		t.Fatalf("audio seconds = %v, want 42.5", reloaded.AudioSeconds)
	}
	if reloaded.SynthProvider != "elevenlabs" {
		t.Fatalf("provider = %q", reloaded.SynthProvider)
	}
	if reloaded.LastHeartbeat == nil || !reloaded.LastHeartbeat.Equal(heartbeat) {
		t.Fatalf("heartbeat = %v, want %v", reloaded.LastHeartbeat, heartbeat)
	}
	if reloaded.ProgressPercent != 40 {
		t.Fatalf("progress = %v, want 40", reloaded.ProgressPercent)
	}
}

func TestFindByJobID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	item, err := store.NewJob(ctx, queue.JobRequest{Topic: "election recap"})
	if err != nil {
		t.Fatalf("new job: %v", err)
	}

	found, err := store.FindByJobID(ctx, item.JobID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found == nil || found.ID != item.ID {
		t.Fatalf("find returned %+v, want id %d", found, item.ID)
	}

	missing, err := store.FindByJobID(ctx, "nonexistent")
	if err != nil {
		t.Fatalf("find missing: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for unknown job, got %+v", missing)
	}
}

func TestNextForStatusesOrdersOldestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.NewJob(ctx, queue.JobRequest{Topic: "first"})
	if err != nil {
		t.Fatalf("new job: %v", err)
	}
	if _, err := store.NewJob(ctx, queue.JobRequest{Topic: "second"}); err != nil {
		t.Fatalf("new job: %v", err)
	}

	next, err := store.NextForStatuses(ctx, queue.StatusPending)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if next == nil || next.ID != first.ID {
		t.Fatalf("next = %+v, want id %d", next, first.ID)
	}

	none, err := store.NextForStatuses(ctx, queue.StatusRendering)
	if err != nil {
		t.Fatalf("next rendering: %v", err)
	}
	if none != nil {
		t.Fatalf("expected nil for empty status, got %+v", none)
	}
}

func TestResetStuckProcessing(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	item, err := store.NewJob(ctx, queue.JobRequest{Topic: "stuck"})
	if err != nil {
		t.Fatalf("new job: %v", err)
	}
	item.Status = queue.StatusSynthesizing
	item.SetProgress("Synthesizing", "calling provider", 30)
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("update: %v", err)
	}

	reset, err := store.ResetStuckProcessing(ctx)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if reset != 1 {
		t.Fatalf("reset count = %d, want 1", reset)
	}

	reloaded, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if reloaded.Status != queue.StatusScriptReady {
		t.Fatalf("status = %s, want %s", reloaded.Status, queue.StatusScriptReady)
	}
	if reloaded.ProgressPercent != 0 || reloaded.ProgressStage != "" {
		t.Fatalf("expected progress cleared, got %q %v", reloaded.ProgressStage, reloaded.ProgressPercent)
	}
}

func TestReclaimStaleProcessing(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	stale, err := store.NewJob(ctx, queue.JobRequest{Topic: "stale"})
	if err != nil {
		t.Fatalf("new job: %v", err)
	}
	stale.Status = queue.StatusRendering
	old := time.Now().UTC().Add(-time.Hour)
	stale.LastHeartbeat = &old
	if err := store.Update(ctx, stale); err != nil {
		t.Fatalf("update stale: %v", err)
	}

	fresh, err := store.NewJob(ctx, queue.JobRequest{Topic: "fresh"})
	if err != nil {
		t.Fatalf("new job: %v", err)
	}
	fresh.Status = queue.StatusRendering
	now := time.Now().UTC()
	fresh.LastHeartbeat = &now
	if err := store.Update(ctx, fresh); err != nil {
		t.Fatalf("update fresh: %v", err)
	}

	reclaimed, err := store.ReclaimStaleProcessing(ctx, time.Now().UTC().Add(-10*time.Minute))
	if err != nil {
		t.Fatalf("reclaim: %v", err)
	}
	if reclaimed != 1 {
		t.Fatalf("reclaimed = %d, want 1", reclaimed)
	}

	staleReloaded, err := store.GetByID(ctx, stale.ID)
	if err != nil {
		t.Fatalf("get stale: %v", err)
	}
	if staleReloaded.Status != queue.StatusScenesReady {
		t.Fatalf("stale status = %s, want %s", staleReloaded.Status, queue.StatusScenesReady)
	}

	freshReloaded, err := store.GetByID(ctx, fresh.ID)
	if err != nil {
		t.Fatalf("get fresh: %v", err)
	}
	if freshReloaded.Status != queue.StatusRendering {
		t.Fatalf("fresh status = %s, want %s", freshReloaded.Status, queue.StatusRendering)
	}
}

func TestRetryFailed(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	item, err := store.NewJob(ctx, queue.JobRequest{Topic: "retryable"})
	if err != nil {
		t.Fatalf("new job: %v", err)
	}
	item.SetFailed("synthesis providers exhausted")
	item.StageAttempts = 3
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("update: %v", err)
	}

	if err := store.RetryFailed(ctx, item.ID); err != nil {
		t.Fatalf("retry: %v", err)
	}

	reloaded, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if reloaded.Status != queue.StatusPending {
		t.Fatalf("status = %s, want %s", reloaded.Status, queue.StatusPending)
	}
	if reloaded.ErrorMessage != "" || reloaded.StageAttempts != 0 {
		t.Fatalf("expected reset error state, got %q attempts=%d", reloaded.ErrorMessage, reloaded.StageAttempts)
	}

	if err := store.RetryFailed(ctx, item.ID); err == nil {
		t.Fatal("expected error retrying non-failed item")
	}
}

func TestRequestCancel(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	item, err := store.NewJob(ctx, queue.JobRequest{Topic: "cancel me"})
	if err != nil {
		t.Fatalf("new job: %v", err)
	}

	if err := store.RequestCancel(ctx, item.ID); err != nil {
		t.Fatalf("request cancel: %v", err)
	}
	flag, err := store.CancelRequested(ctx, item.ID)
	if err != nil {
		t.Fatalf("read flag: %v", err)
	}
	if !flag {
		t.Fatal("expected cancel flag set")
	}

	item.SetFailed(queue.CancelledReason)
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := store.RequestCancel(ctx, item.ID); err == nil {
		t.Fatal("expected error cancelling terminal item")
	}
}

func TestClearAndHealth(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	completed, err := store.NewJob(ctx, queue.JobRequest{Topic: "done"})
	if err != nil {
		t.Fatalf("new job: %v", err)
	}
	completed.Status = queue.StatusCompleted
	if err := store.Update(ctx, completed); err != nil {
		t.Fatalf("update: %v", err)
	}

	failed, err := store.NewJob(ctx, queue.JobRequest{Topic: "broken"})
	if err != nil {
		t.Fatalf("new job: %v", err)
	}
	failed.SetFailed("render verification mismatch")
	if err := store.Update(ctx, failed); err != nil {
		t.Fatalf("update: %v", err)
	}

	if _, err := store.NewJob(ctx, queue.JobRequest{Topic: "waiting"}); err != nil {
		t.Fatalf("new job: %v", err)
	}

	health, err := store.Health(ctx)
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	if health.Total != 3 || health.Pending != 1 || health.Failed != 1 || health.Completed != 1 {
		t.Fatalf("health = %+v", health)
	}

	removed, err := store.ClearCompleted(ctx)
	if err != nil {
		t.Fatalf("clear completed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("cleared = %d, want 1", removed)
	}

	removed, err = store.Clear(ctx)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if removed != 2 {
		t.Fatalf("cleared = %d, want 2", removed)
	}
}

func TestHealthCountsMidPipelineJobs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	item, err := store.NewJob(ctx, queue.JobRequest{Topic: "between stages"})
	if err != nil {
		t.Fatalf("new job: %v", err)
	}
	item.Status = queue.StatusAudioReady
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("update: %v", err)
	}

	health, err := store.Health(ctx)
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	if health.Ready != 1 {
		t.Fatalf("ready = %d, want 1 (health = %+v)", health.Ready, health)
	}
	if health.Pending != 0 || health.Processing != 0 {
		t.Fatalf("health = %+v, want job counted only as ready", health)
	}
	// A job waiting between stages keeps the queue in flight, so a
	// foreground runner must not treat it as drained.
	if health.InFlight() != 1 {
		t.Fatalf("in flight = %d, want 1", health.InFlight())
	}
}
