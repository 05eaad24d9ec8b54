package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"newsreel/internal/config"
)

func TestDefaultValidates(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.toml")
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing file")
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if cfg.Output.Width != 1920 || cfg.Output.FPS != 30 {
		t.Fatalf("unexpected defaults: %dx%d @%d", cfg.Output.Width, cfg.Output.Height, cfg.Output.FPS)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[output]
width = 1280
height = 720
fps = 24

[speech]
provider_order = ["local"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("expected exists=true")
	}
	if cfg.Output.Width != 1280 || cfg.Output.Height != 720 || cfg.Output.FPS != 24 {
		t.Fatalf("overrides not applied: %+v", cfg.Output)
	}
	if len(cfg.Speech.ProviderOrder) != 1 || cfg.Speech.ProviderOrder[0] != "local" {
		t.Fatalf("provider order not applied: %v", cfg.Speech.ProviderOrder)
	}
}

func TestValidateRejectsUnknownProvider(t *testing.T) {
	cfg := config.Default()
	cfg.Speech.ProviderOrder = []string{"polly"}
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "polly") {
		t.Fatalf("expected unknown provider error, got %v", err)
	}
}

func TestValidateRejectsOddResolution(t *testing.T) {
	cfg := config.Default()
	cfg.Output.Width = 1919
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for odd width")
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StagingDir = filepath.Join(base, "staging")
	cfg.Paths.OutputDir = filepath.Join(base, "outputs")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.AssetsDir = filepath.Join(base, "assets")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StagingDir, cfg.Paths.OutputDir, cfg.Paths.LogDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s: %v", dir, err)
		}
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("sample file should exist")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("sample config should validate: %v", err)
	}
}
