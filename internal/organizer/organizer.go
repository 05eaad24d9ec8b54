package organizer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"newsreel/internal/config"
	"newsreel/internal/fileutil"
	"newsreel/internal/logging"
	"newsreel/internal/queue"
	"newsreel/internal/services"
	"newsreel/internal/stage"
	"newsreel/internal/textutil"
)

// Organizer is the finalizing stage: it moves the verified render into the
// output directory and purges the job's staging artifacts.
type Organizer struct {
	cfg    *config.Config
	store  *queue.Store
	logger *slog.Logger
}

// New builds the finalizing stage.
func New(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Organizer {
	logger = logging.NewComponentLogger(logger, "organizer")
	return &Organizer{cfg: cfg, store: store, logger: logger}
}

// Prepare implements stage.Handler.
func (o *Organizer) Prepare(ctx context.Context, item *queue.Item) error {
	item.SetProgress("Finalizing", "Moving rendered video to output", 0)
	if strings.TrimSpace(item.RenderedFile) == "" {
		return services.Wrap(services.ErrValidation, "organizer", "validate inputs",
			"No rendered file recorded; rerun the render stage", nil)
	}
	if _, err := os.Stat(item.RenderedFile); err != nil {
		return services.Wrap(services.ErrValidation, "organizer", "validate inputs",
			"Rendered file is missing from staging", err)
	}
	return nil
}

// Execute implements stage.Handler.
func (o *Organizer) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, o.logger)

	if err := os.MkdirAll(o.cfg.Paths.OutputDir, 0o755); err != nil {
		return services.Wrap(services.ErrTransient, "organizer", "create output dir",
			"Failed to create output directory", err)
	}

	finalPath := o.finalPathFor(item)
	if err := fileutil.CopyFileVerified(item.RenderedFile, finalPath); err != nil {
		return services.Wrap(services.ErrTransient, "organizer", "copy output",
			"Failed to copy rendered video to output directory", err)
	}

	stagingRoot := item.StagingRoot(o.cfg.Paths.StagingDir)
	if err := os.RemoveAll(stagingRoot); err != nil {
		logger.Warn("failed to purge staging directory",
			logging.String("path", stagingRoot),
			logging.Error(err),
		)
	}

	logger.Info("video finalized", logging.String("final_file", finalPath))
	item.FinalFile = finalPath
	item.SetProgressComplete("Finalizing", "Video available in output directory")
	return nil
}

// HealthCheck implements stage.Handler.
func (o *Organizer) HealthCheck(ctx context.Context) stage.Health {
	if strings.TrimSpace(o.cfg.Paths.OutputDir) == "" {
		return stage.Unhealthy("organizer", "output directory not configured")
	}
	return stage.Healthy("organizer")
}

// finalPathFor derives a collision-free output name from the topic and job
// identifier.
func (o *Organizer) finalPathFor(item *queue.Item) string {
	base := textutil.SanitizeFileName(item.Topic)
	if base == "" {
		base = "newsreel"
	}
	suffix := item.JobID
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	name := fmt.Sprintf("%s-%s.%s", base, suffix, o.cfg.Output.Container)
	return filepath.Join(o.cfg.Paths.OutputDir, name)
}
