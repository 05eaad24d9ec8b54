package staging

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCleanStaleInvalidPaths(t *testing.T) {
	result := CleanStale(context.Background(), "", time.Hour, nil)
	if len(result.Removed) != 0 || len(result.Errors) != 0 {
		t.Fatalf("result = %+v", result)
	}
	result = CleanStale(context.Background(), filepath.Join(t.TempDir(), "missing"), time.Hour, nil)
	if len(result.Errors) != 0 {
		t.Fatalf("missing dir should not error: %+v", result)
	}
}

func TestCleanStaleRemovesOldDirectories(t *testing.T) {
	root := t.TempDir()
	oldDir := filepath.Join(root, "old-job")
	freshDir := filepath.Join(root, "fresh-job")
	for _, dir := range []string{oldDir, freshDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}
	past := time.Now().Add(-72 * time.Hour)
	if err := os.Chtimes(oldDir, past, past); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	result := CleanStale(context.Background(), root, 48*time.Hour, nil)
	if len(result.Removed) != 1 || result.Removed[0] != oldDir {
		t.Fatalf("removed = %v", result.Removed)
	}
	if _, err := os.Stat(freshDir); err != nil {
		t.Fatalf("fresh dir removed: %v", err)
	}
}

func TestCleanStaleIgnoresFiles(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "stray.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	past := time.Now().Add(-72 * time.Hour)
	if err := os.Chtimes(file, past, past); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	result := CleanStale(context.Background(), root, time.Hour, nil)
	if len(result.Removed) != 0 {
		t.Fatalf("removed = %v", result.Removed)
	}
	if _, err := os.Stat(file); err != nil {
		t.Fatalf("file removed: %v", err)
	}
}

func TestCleanOrphanedRemovesUnknownJobDirs(t *testing.T) {
	root := t.TempDir()
	activeDir := filepath.Join(root, "job-active")
	orphanDir := filepath.Join(root, "job-orphan")
	for _, dir := range []string{activeDir, orphanDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}

	active := map[string]struct{}{"JOB-ACTIVE": {}}
	result := CleanOrphaned(context.Background(), root, active, nil)
	if len(result.Removed) != 1 || result.Removed[0] != orphanDir {
		t.Fatalf("removed = %v", result.Removed)
	}
	if _, err := os.Stat(activeDir); err != nil {
		t.Fatalf("active dir removed: %v", err)
	}
}
