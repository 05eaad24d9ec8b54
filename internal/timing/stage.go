package timing

import (
	"context"
	"log/slog"
	"strings"

	"newsreel/internal/config"
	"newsreel/internal/logging"
	"newsreel/internal/queue"
	"newsreel/internal/script"
	"newsreel/internal/services"
	"newsreel/internal/stage"
)

// Stage annotates the submitted script with per-segment duration
// estimates. These drive progress reporting and later act as subtitle
// weights; they never override measured audio time.
type Stage struct {
	cfg       *config.Config
	store     *queue.Store
	estimator *Estimator
	logger    *slog.Logger
}

// NewStage builds the estimating stage.
func NewStage(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Stage {
	logger = logging.NewComponentLogger(logger, "timing")
	return &Stage{
		cfg:       cfg,
		store:     store,
		estimator: NewEstimator(cfg.Timing),
		logger:    logger,
	}
}

// Prepare implements stage.Handler.
func (s *Stage) Prepare(ctx context.Context, item *queue.Item) error {
	item.SetProgress("Estimating", "Analyzing script timing", 0)
	if strings.TrimSpace(item.ScriptJSON) == "" {
		return services.Wrap(services.ErrValidation, "timing", "validate inputs",
			"No script submitted with the job", nil)
	}
	return nil
}

// Execute implements stage.Handler.
func (s *Stage) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, s.logger)

	parsed, err := script.ParseString(item.ScriptJSON)
	if err != nil {
		return services.Wrap(services.ErrValidation, "timing", "parse script",
			"Submitted script is invalid", err)
	}
	if err := parsed.Validate(); err != nil {
		return services.Wrap(services.ErrValidation, "timing", "validate script", err.Error(), err)
	}

	annotated := s.estimator.Annotate(parsed)
	raw, err := annotated.Marshal()
	if err != nil {
		return services.Wrap(services.ErrValidation, "timing", "encode script",
			"Failed to encode annotated script", err)
	}

	metrics := s.estimator.Analyze(annotated)
	logger.Info("script timing estimated",
		logging.Int("segments", len(annotated.Segments)),
		logging.Int("words", metrics.WordCount),
		logging.Float64("estimated_seconds", metrics.EstimatedSeconds),
	)

	item.ScriptJSON = raw
	item.SetProgressComplete("Estimating", "Script timing ready")
	return nil
}

// HealthCheck implements stage.Handler.
func (s *Stage) HealthCheck(ctx context.Context) stage.Health {
	return stage.Healthy("timing")
}
