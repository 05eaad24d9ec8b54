package speech

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"newsreel/internal/config"
	"newsreel/internal/logging"
	"newsreel/internal/media/wav"
	"newsreel/internal/queue"
	"newsreel/internal/script"
	"newsreel/internal/services"
	"newsreel/internal/stage"
)

// Synthesizer is the workflow stage that turns the job script into a
// narration track.
type Synthesizer struct {
	cfg    *config.Config
	store  *queue.Store
	chain  *Chain
	logger *slog.Logger
}

// NewSynthesizer builds the stage with a chain derived from configuration.
func NewSynthesizer(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Synthesizer {
	logger = logging.NewComponentLogger(logger, "speech")
	return &Synthesizer{
		cfg:    cfg,
		store:  store,
		chain:  NewChainFromConfig(cfg.Speech, logger),
		logger: logger,
	}
}

// NewSynthesizerWithChain injects a prepared chain, used by tests.
func NewSynthesizerWithChain(cfg *config.Config, store *queue.Store, chain *Chain, logger *slog.Logger) *Synthesizer {
	logger = logging.NewComponentLogger(logger, "speech")
	return &Synthesizer{cfg: cfg, store: store, chain: chain, logger: logger}
}

// Prepare implements stage.Handler.
func (s *Synthesizer) Prepare(ctx context.Context, item *queue.Item) error {
	item.SetProgress("Synthesizing", "Starting voice synthesis", 0)
	if strings.TrimSpace(item.ScriptJSON) == "" {
		return services.Wrap(services.ErrValidation, "speech", "validate inputs",
			"No script available for synthesis; ensure the estimating stage completed", nil)
	}
	return nil
}

// Execute implements stage.Handler. A persisted narration file from a
// previous run is reused without calling any provider.
func (s *Synthesizer) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, s.logger)

	parsed, err := script.ParseString(item.ScriptJSON)
	if err != nil {
		return services.Wrap(services.ErrValidation, "speech", "parse script",
			"Stored script is invalid; rerun the estimating stage", err)
	}

	stagingRoot := item.StagingRoot(s.cfg.Paths.StagingDir)
	if err := os.MkdirAll(stagingRoot, 0o755); err != nil {
		return services.Wrap(services.ErrTransient, "speech", "create staging dir",
			"Failed to create job staging directory", err)
	}

	audioPath := item.AudioPath(s.cfg.Paths.StagingDir)
	if seconds, reuseErr := wav.FileDuration(audioPath); reuseErr == nil && seconds > 0 {
		logger.Info("reusing persisted narration",
			logging.String("audio_file", audioPath),
			logging.Float64("seconds", seconds),
		)
		item.AudioFile = audioPath
		item.AudioSeconds = seconds
		if item.SynthProvider == "" {
			item.SynthProvider = "cached"
		}
		item.SetProgressComplete("Synthesizing", "Narration already present")
		return nil
	}

	voice := VoiceConfig{VoiceID: item.VoiceID, Preference: item.VoicePreference}
	item.SetProgress("Synthesizing", "Calling synthesis providers", 20)
	if err := s.store.UpdateProgress(ctx, item); err != nil {
		logger.Warn("failed to persist synthesis progress", logging.Error(err))
	}

	result, err := s.chain.Synthesize(ctx, parsed.FullText(), voice, audioPath)
	if err != nil {
		// Leave no half-written artifact behind for the resume check.
		_ = os.Remove(audioPath)
		return err
	}

	item.AudioFile = result.AudioPath
	item.AudioSeconds = result.Seconds
	item.SynthProvider = result.Provider
	item.SetProgressComplete("Synthesizing", "Narration ready")
	return nil
}

// HealthCheck implements stage.Handler.
func (s *Synthesizer) HealthCheck(ctx context.Context) stage.Health {
	names := s.chain.ProviderNames()
	if len(names) == 0 {
		return stage.Unhealthy("speech", "no synthesis providers configured")
	}
	return stage.Healthy("speech")
}
