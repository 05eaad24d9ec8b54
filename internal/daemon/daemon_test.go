package daemon_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"newsreel/internal/daemon"
	"newsreel/internal/logging"
	"newsreel/internal/testsupport"
	"newsreel/internal/workflow"
)

func newTestDaemon(t *testing.T) *daemon.Daemon {
	t.Helper()
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	cfg.Workflow.QueuePollInterval = 1
	store := testsupport.MustOpenStore(t, cfg)

	mgr := workflow.NewManager(cfg, store, logging.NewNop())
	mgr.ConfigureStages(workflow.StageSet{})

	d, err := daemon.New(cfg, store, logging.NewNop(), mgr)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return d
}

func TestDaemonStartStop(t *testing.T) {
	d := newTestDaemon(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(d.Stop)

	status := d.Status(ctx)
	if !status.Running {
		t.Fatal("expected running daemon")
	}
	if status.APIAddr == "" {
		t.Fatal("expected bound api address")
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get("http://" + status.APIAddr + "/api/status")
	if err != nil {
		t.Fatalf("status endpoint unreachable: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status code %d", resp.StatusCode)
	}

	d.Stop()
	if d.Status(ctx).Running {
		t.Fatal("expected stopped daemon")
	}
}

func TestDaemonRejectsDoubleStart(t *testing.T) {
	d := newTestDaemon(t)

	ctx := context.Background()
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(d.Stop)

	if err := d.Start(ctx); err == nil {
		t.Fatal("expected second Start to fail")
	}
}
