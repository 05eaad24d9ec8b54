package organizer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"newsreel/internal/queue"
	"newsreel/internal/testsupport"
)

func TestOrganizerMovesRenderAndPurgesStaging(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewJob(t, store, queue.JobRequest{Topic: "City Council Vote!", Style: "modern"})

	stagingRoot := item.StagingRoot(cfg.Paths.StagingDir)
	renderedPath := filepath.Join(stagingRoot, "render", "rendered.mp4")
	testsupport.WriteFile(t, renderedPath, 4096)
	item.RenderedFile = renderedPath

	org := New(cfg, store, nil)
	if err := org.Prepare(context.Background(), item); err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if err := org.Execute(context.Background(), item); err != nil {
		t.Fatalf("execute: %v", err)
	}

	if item.FinalFile == "" {
		t.Fatal("final file not recorded")
	}
	if !strings.HasPrefix(filepath.Base(item.FinalFile), "City Council Vote") {
		t.Fatalf("final name = %q", filepath.Base(item.FinalFile))
	}
	info, err := os.Stat(item.FinalFile)
	if err != nil {
		t.Fatalf("final file missing: %v", err)
	}
	if info.Size() != 4096 {
		t.Fatalf("final size = %d, want 4096", info.Size())
	}
	if _, err := os.Stat(stagingRoot); !os.IsNotExist(err) {
		t.Fatalf("staging not purged, stat err = %v", err)
	}
}

func TestOrganizerPrepareRequiresRenderedFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewJob(t, store, queue.JobRequest{Topic: "markets"})

	org := New(cfg, store, nil)
	if err := org.Prepare(context.Background(), item); err == nil {
		t.Fatal("expected error without rendered file")
	}
}
