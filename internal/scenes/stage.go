package scenes

import (
	"context"
	"log/slog"
	"os"

	"newsreel/internal/config"
	"newsreel/internal/logging"
	"newsreel/internal/queue"
	"newsreel/internal/services"
	"newsreel/internal/stage"
)

// Stage plans the visual effect timeline for a job from its style and the
// measured narration duration.
type Stage struct {
	cfg    *config.Config
	store  *queue.Store
	logger *slog.Logger
}

// NewStage builds the planning stage.
func NewStage(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Stage {
	logger = logging.NewComponentLogger(logger, "scenes")
	return &Stage{cfg: cfg, store: store, logger: logger}
}

// Prepare implements stage.Handler. Unknown styles fail here, before any
// planning work starts.
func (s *Stage) Prepare(ctx context.Context, item *queue.Item) error {
	item.SetProgress("Planning", "Starting scene planning", 0)
	if !IsKnownStyle(item.Style) {
		return services.Wrap(services.ErrInvalidStyle, "scenes", "validate inputs",
			"Unknown style "+item.Style, nil)
	}
	if item.AudioSeconds <= 0 {
		return services.Wrap(services.ErrValidation, "scenes", "validate inputs",
			"No measured narration duration; rerun synthesis", nil)
	}
	return nil
}

// Execute implements stage.Handler.
func (s *Stage) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, s.logger)

	events, err := Plan(item.Style, item.AudioSeconds)
	if err != nil {
		return err
	}

	stagingRoot := item.StagingRoot(s.cfg.Paths.StagingDir)
	if err := os.MkdirAll(stagingRoot, 0o755); err != nil {
		return services.Wrap(services.ErrTransient, "scenes", "create staging dir",
			"Failed to create job staging directory", err)
	}

	scenesPath := item.ScenesPath(s.cfg.Paths.StagingDir)
	if err := Save(scenesPath, events); err != nil {
		return services.Wrap(services.ErrTransient, "scenes", "persist plan",
			"Failed to write scene plan", err)
	}

	logger.Info("scene plan ready",
		logging.String("style", item.Style),
		logging.Int("events", len(events)),
		logging.Float64("seconds", TotalDuration(events)),
	)
	item.ScenesFile = scenesPath
	item.SetProgressComplete("Planning", "Scene plan ready")
	return nil
}

// HealthCheck implements stage.Handler.
func (s *Stage) HealthCheck(ctx context.Context) stage.Health {
	return stage.Healthy("scenes")
}
