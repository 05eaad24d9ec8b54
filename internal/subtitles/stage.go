package subtitles

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"newsreel/internal/config"
	"newsreel/internal/logging"
	"newsreel/internal/queue"
	"newsreel/internal/script"
	"newsreel/internal/services"
	"newsreel/internal/stage"
)

// Stage aligns subtitle cues against the measured narration track and
// persists both the cue timeline and the burn-ready ASS script.
type Stage struct {
	cfg     *config.Config
	store   *queue.Store
	aligner *Aligner
	logger  *slog.Logger
}

// NewStage builds the alignment stage.
func NewStage(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Stage {
	logger = logging.NewComponentLogger(logger, "subtitles")
	return &Stage{
		cfg:     cfg,
		store:   store,
		aligner: NewAligner(cfg.Subtitles),
		logger:  logger,
	}
}

// Prepare implements stage.Handler.
func (s *Stage) Prepare(ctx context.Context, item *queue.Item) error {
	item.SetProgress("Aligning", "Starting subtitle alignment", 0)
	if strings.TrimSpace(item.ScriptJSON) == "" {
		return services.Wrap(services.ErrValidation, "subtitles", "validate inputs",
			"No script available for alignment", nil)
	}
	if item.AudioSeconds <= 0 {
		return services.Wrap(services.ErrAlignment, "subtitles", "validate inputs",
			"No measured narration duration; rerun synthesis", nil)
	}
	if !IsKnownStyle(item.Style) {
		return services.Wrap(services.ErrInvalidStyle, "subtitles", "validate inputs",
			"Unknown style "+item.Style, nil)
	}
	return nil
}

// Execute implements stage.Handler.
func (s *Stage) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, s.logger)

	parsed, err := script.ParseString(item.ScriptJSON)
	if err != nil {
		return services.Wrap(services.ErrValidation, "subtitles", "parse script",
			"Stored script is invalid; rerun the estimating stage", err)
	}

	cues, err := s.aligner.Align(parsed, item.AudioSeconds)
	if err != nil {
		return err
	}

	stagingRoot := item.StagingRoot(s.cfg.Paths.StagingDir)
	if err := os.MkdirAll(stagingRoot, 0o755); err != nil {
		return services.Wrap(services.ErrTransient, "subtitles", "create staging dir",
			"Failed to create job staging directory", err)
	}

	cuesPath := item.CuesPath(s.cfg.Paths.StagingDir)
	if err := Save(cuesPath, cues); err != nil {
		return services.Wrap(services.ErrTransient, "subtitles", "persist cues",
			"Failed to write subtitle cues", err)
	}

	assPath := assPathFor(cuesPath)
	if err := SaveASS(assPath, cues, item.Style, s.cfg.Output.Width, s.cfg.Output.Height); err != nil {
		return err
	}

	logger.Info("subtitles aligned",
		logging.Int("cues", len(cues)),
		logging.Float64("span_seconds", TotalSpan(cues)),
	)
	item.CuesFile = cuesPath
	item.SetProgressComplete("Aligning", "Subtitle timeline ready")
	return nil
}

// HealthCheck implements stage.Handler.
func (s *Stage) HealthCheck(ctx context.Context) stage.Health {
	return stage.Healthy("subtitles")
}

// ASSPathFor returns the subtitle script path that accompanies a cues file.
func ASSPathFor(cuesPath string) string {
	return assPathFor(cuesPath)
}

func assPathFor(cuesPath string) string {
	if strings.HasSuffix(cuesPath, ".json") {
		return strings.TrimSuffix(cuesPath, ".json") + ".ass"
	}
	return cuesPath + ".ass"
}
