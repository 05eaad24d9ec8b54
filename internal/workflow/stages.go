package workflow

import (
	"log/slog"

	"newsreel/internal/config"
	"newsreel/internal/organizer"
	"newsreel/internal/queue"
	"newsreel/internal/render"
	"newsreel/internal/scenes"
	"newsreel/internal/speech"
	"newsreel/internal/subtitles"
	"newsreel/internal/timing"
)

// DefaultStageSet wires the production stage handlers.
func DefaultStageSet(cfg *config.Config, store *queue.Store, logger *slog.Logger) StageSet {
	return StageSet{
		Estimator:   timing.NewStage(cfg, store, logger),
		Synthesizer: speech.NewSynthesizer(cfg, store, logger),
		Aligner:     subtitles.NewStage(cfg, store, logger),
		Planner:     scenes.NewStage(cfg, store, logger),
		Compositor:  render.NewCompositor(cfg, store, logger),
		Organizer:   organizer.New(cfg, store, logger),
	}
}
