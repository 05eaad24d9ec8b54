package preflight

import (
	"context"

	"newsreel/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string
	Passed   bool
	Optional bool
	Detail   string
}

// minimumFreeBytes is the staging disk space floor. Rendering buffers one
// uncompressed segment per scene event plus the concatenated output, so a
// nearly full disk fails mid-render rather than up front without this check.
const minimumFreeBytes = 2 << 30

// RunAll executes every applicable readiness check for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Staging directory", cfg.Paths.StagingDir),
		CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir),
		CheckDiskSpace("Staging disk space", cfg.Paths.StagingDir, minimumFreeBytes),
	}
	results = append(results, CheckBinaries(SystemRequirements(cfg))...)
	results = append(results, CheckSpeechCredentials(cfg)...)
	return results
}

// Passed reports whether every required check succeeded.
func Passed(results []Result) bool {
	for _, result := range results {
		if !result.Passed && !result.Optional {
			return false
		}
	}
	return true
}
