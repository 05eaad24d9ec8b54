package preflight_test

import (
	"context"
	"path/filepath"
	"testing"

	"newsreel/internal/preflight"
	"newsreel/internal/testsupport"
)

func TestCheckDirectoryAccess(t *testing.T) {
	dir := t.TempDir()

	result := preflight.CheckDirectoryAccess("Staging directory", dir)
	if !result.Passed {
		t.Fatalf("expected pass for %s: %s", dir, result.Detail)
	}

	missing := preflight.CheckDirectoryAccess("Staging directory", filepath.Join(dir, "absent"))
	if missing.Passed {
		t.Fatal("expected failure for missing directory")
	}
}

func TestCheckDiskSpace(t *testing.T) {
	dir := t.TempDir()

	if result := preflight.CheckDiskSpace("Disk", dir, 1); !result.Passed {
		t.Fatalf("expected pass with 1 byte floor: %s", result.Detail)
	}
	if result := preflight.CheckDiskSpace("Disk", dir, 1<<62); result.Passed {
		t.Fatal("expected failure with absurd floor")
	}
}

func TestCheckBinariesReportsMissing(t *testing.T) {
	results := preflight.CheckBinaries([]preflight.Requirement{
		{Name: "Ghost", Command: "definitely-not-on-path-42"},
		{Name: "Blank", Command: ""},
	})
	for _, result := range results {
		if result.Passed {
			t.Fatalf("expected %s to fail: %+v", result.Name, result)
		}
	}
}

func TestCheckSpeechCredentials(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithProviderOrder("elevenlabs", "azure", "local"))
	cfg.Speech.ElevenLabsAPIKey = "key"
	cfg.Speech.AzureAPIKey = ""

	results := preflight.CheckSpeechCredentials(cfg)
	if len(results) != 2 {
		t.Fatalf("expected 2 credential checks, got %d", len(results))
	}
	if !results[0].Passed {
		t.Fatalf("expected elevenlabs pass: %s", results[0].Detail)
	}
	if results[1].Passed {
		t.Fatal("expected azure failure with missing key")
	}
	if !results[1].Optional {
		t.Fatal("credential checks should be optional")
	}
}

func TestRunAllWithStubbedBinaries(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}

	results := preflight.RunAll(context.Background(), cfg)
	if len(results) == 0 {
		t.Fatal("expected checks to run")
	}
	if !preflight.Passed(results) {
		for _, result := range results {
			if !result.Passed {
				t.Logf("failed: %s: %s", result.Name, result.Detail)
			}
		}
		t.Fatal("expected all required checks to pass")
	}
}
