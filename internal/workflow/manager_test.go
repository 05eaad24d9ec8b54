package workflow_test

import (
	"context"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"newsreel/internal/config"
	"newsreel/internal/logging"
	"newsreel/internal/queue"
	"newsreel/internal/services"
	"newsreel/internal/stage"
	"newsreel/internal/testsupport"
	"newsreel/internal/workflow"
)

type stubStage struct {
	name       string
	prepareErr error
	executeFn  func(context.Context, *queue.Item) error
	executions atomic.Int32
	health     stage.Health
}

func newStubStage(name string) *stubStage {
	return &stubStage{name: name, health: stage.Healthy(name)}
}

func (s *stubStage) Prepare(context.Context, *queue.Item) error {
	return s.prepareErr
}

func (s *stubStage) Execute(ctx context.Context, item *queue.Item) error {
	s.executions.Add(1)
	if s.executeFn != nil {
		return s.executeFn(ctx, item)
	}
	return nil
}

func (s *stubStage) HealthCheck(context.Context) stage.Health {
	return s.health
}

type stubSet struct {
	estimator   *stubStage
	synthesizer *stubStage
	aligner     *stubStage
	planner     *stubStage
	compositor  *stubStage
	organizer   *stubStage
}

func newStubSet() *stubSet {
	return &stubSet{
		estimator:   newStubStage("estimator"),
		synthesizer: newStubStage("synthesizer"),
		aligner:     newStubStage("aligner"),
		planner:     newStubStage("planner"),
		compositor:  newStubStage("compositor"),
		organizer:   newStubStage("organizer"),
	}
}

func (s *stubSet) stageSet() workflow.StageSet {
	return workflow.StageSet{
		Estimator:   s.estimator,
		Synthesizer: s.synthesizer,
		Aligner:     s.aligner,
		Planner:     s.planner,
		Compositor:  s.compositor,
		Organizer:   s.organizer,
	}
}

func workflowConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	cfg.Workflow.QueuePollInterval = 0
	cfg.Workflow.ErrorRetryInterval = 0
	cfg.Workflow.RetryBackoffSeconds = 0
	cfg.Workflow.CancelCheckInterval = 1
	return cfg
}

func startManager(t *testing.T, cfg *config.Config, store *queue.Store, set *stubSet) *workflow.Manager {
	t.Helper()
	mgr := workflow.NewManager(cfg, store, logging.NewNop())
	mgr.ConfigureStages(set.stageSet())

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := mgr.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(mgr.Stop)
	return mgr
}

func waitForStatus(t *testing.T, store *queue.Store, id int64, want queue.Status) *queue.Item {
	t.Helper()
	deadline := time.Now().Add(30 * time.Second)
	for time.Now().Before(deadline) {
		item, err := store.GetByID(context.Background(), id)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if item != nil && item.Status == want {
			return item
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for status %s", want)
	return nil
}

func TestManagerProcessesJobThroughPipeline(t *testing.T) {
	cfg := workflowConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	set := newStubSet()
	startManager(t, cfg, store, set)

	item := testsupport.NewJob(t, store, queue.JobRequest{
		Topic:     "Quarterly results",
		ImagePath: "/tmp/anchor.png",
		Style:     "modern",
	})

	final := waitForStatus(t, store, item.ID, queue.StatusCompleted)
	if final.ProgressPercent != 100 {
		t.Fatalf("expected 100%% progress, got %v", final.ProgressPercent)
	}
	if final.StageAttempts != 0 {
		t.Fatalf("expected stage attempts reset, got %d", final.StageAttempts)
	}
	for name, stg := range map[string]*stubStage{
		"estimator":   set.estimator,
		"synthesizer": set.synthesizer,
		"aligner":     set.aligner,
		"planner":     set.planner,
		"compositor":  set.compositor,
		"organizer":   set.organizer,
	} {
		if got := stg.executions.Load(); got != 1 {
			t.Fatalf("expected %s to run once, ran %d times", name, got)
		}
	}
}

func TestManagerRetriesTransientFailures(t *testing.T) {
	cfg := workflowConfig(t)
	cfg.Workflow.MaxStageAttempts = 3
	store := testsupport.MustOpenStore(t, cfg)
	set := newStubSet()

	var failures atomic.Int32
	set.synthesizer.executeFn = func(_ context.Context, _ *queue.Item) error {
		if failures.Add(1) <= 2 {
			return services.Wrap(services.ErrTransient, "synthesizer", "synthesize", "provider busy", nil)
		}
		return nil
	}
	startManager(t, cfg, store, set)

	item := testsupport.NewJob(t, store, queue.JobRequest{
		Topic:     "Transit strike",
		ImagePath: "/tmp/anchor.png",
		Style:     "classic",
	})

	waitForStatus(t, store, item.ID, queue.StatusCompleted)
	if got := set.synthesizer.executions.Load(); got != 3 {
		t.Fatalf("expected 3 synthesis attempts, got %d", got)
	}
}

func TestManagerFailsWhenRetryBudgetExhausted(t *testing.T) {
	cfg := workflowConfig(t)
	cfg.Workflow.MaxStageAttempts = 2
	store := testsupport.MustOpenStore(t, cfg)
	set := newStubSet()
	set.synthesizer.executeFn = func(_ context.Context, _ *queue.Item) error {
		return services.Wrap(services.ErrTransient, "synthesizer", "synthesize", "provider busy", nil)
	}
	startManager(t, cfg, store, set)

	item := testsupport.NewJob(t, store, queue.JobRequest{
		Topic:     "Flood warning",
		ImagePath: "/tmp/anchor.png",
		Style:     "modern",
	})

	final := waitForStatus(t, store, item.ID, queue.StatusFailed)
	if final.ErrorMessage == "" {
		t.Fatal("expected failure message")
	}
	if got := set.synthesizer.executions.Load(); got != 2 {
		t.Fatalf("expected 2 attempts before failing, got %d", got)
	}
}

func TestManagerFatalErrorSkipsRetries(t *testing.T) {
	cfg := workflowConfig(t)
	cfg.Workflow.MaxStageAttempts = 5
	store := testsupport.MustOpenStore(t, cfg)
	set := newStubSet()
	set.planner.executeFn = func(_ context.Context, _ *queue.Item) error {
		return services.Wrap(services.ErrInvalidStyle, "planner", "plan", "unknown style vaporwave", nil)
	}
	startManager(t, cfg, store, set)

	item := testsupport.NewJob(t, store, queue.JobRequest{
		Topic:     "Art exhibit",
		ImagePath: "/tmp/anchor.png",
		Style:     "vaporwave",
	})

	final := waitForStatus(t, store, item.ID, queue.StatusFailed)
	if got := set.planner.executions.Load(); got != 1 {
		t.Fatalf("expected fatal error to run once, ran %d times", got)
	}
	if final.ErrorMessage == "" {
		t.Fatal("expected failure message")
	}
}

func TestManagerCancelsInFlightJob(t *testing.T) {
	cfg := workflowConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	set := newStubSet()

	entered := make(chan struct{})
	set.synthesizer.executeFn = func(ctx context.Context, _ *queue.Item) error {
		close(entered)
		<-ctx.Done()
		return ctx.Err()
	}
	startManager(t, cfg, store, set)

	item := testsupport.NewJob(t, store, queue.JobRequest{
		Topic:     "Election night",
		ImagePath: "/tmp/anchor.png",
		Style:     "dramatic",
	})
	stagingRoot := item.StagingRoot(cfg.Paths.StagingDir)
	if err := os.MkdirAll(stagingRoot, 0o755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}

	select {
	case <-entered:
	case <-time.After(30 * time.Second):
		t.Fatal("timed out waiting for stage to start")
	}
	if err := store.RequestCancel(context.Background(), item.ID); err != nil {
		t.Fatalf("RequestCancel failed: %v", err)
	}

	final := waitForStatus(t, store, item.ID, queue.StatusFailed)
	if !final.IsCancelled() {
		t.Fatalf("expected cancelled job, got error %q", final.ErrorMessage)
	}
	if _, err := os.Stat(stagingRoot); !os.IsNotExist(err) {
		t.Fatalf("expected staging directory removed, stat err=%v", err)
	}
}

func TestManagerStatusReportsStageHealth(t *testing.T) {
	cfg := workflowConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	set := newStubSet()
	set.compositor.health = stage.Unhealthy("compositor", "ffmpeg not found")

	mgr := workflow.NewManager(cfg, store, logging.NewNop())
	mgr.ConfigureStages(set.stageSet())

	summary := mgr.Status(context.Background())
	if summary.Running {
		t.Fatal("expected stopped manager")
	}
	if summary.Healthy() {
		t.Fatal("expected unhealthy summary")
	}
	health, ok := summary.StageHealth["compositor"]
	if !ok || health.Ready || health.Detail != "ffmpeg not found" {
		t.Fatalf("unexpected compositor health: %+v", health)
	}
}
