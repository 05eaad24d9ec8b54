package speech

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"newsreel/internal/config"
	"newsreel/internal/logging"
	"newsreel/internal/media/wav"
	"newsreel/internal/services"
)

// Chain tries providers in priority order until one produces usable audio.
type Chain struct {
	providers []Provider
	timeout   time.Duration
	logger    *slog.Logger
}

// NewChain constructs a fallback chain over the given providers.
func NewChain(providers []Provider, timeout time.Duration, logger *slog.Logger) *Chain {
	if logger == nil {
		logger = logging.NewNop()
	}
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &Chain{providers: providers, timeout: timeout, logger: logger}
}

// NewChainFromConfig builds the provider chain declared by cfg.ProviderOrder,
// skipping cloud providers whose credentials are absent.
func NewChainFromConfig(cfg config.Speech, logger *slog.Logger) *Chain {
	if logger == nil {
		logger = logging.NewNop()
	}
	var providers []Provider
	for _, name := range cfg.ProviderOrder {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "elevenlabs":
			if strings.TrimSpace(cfg.ElevenLabsAPIKey) == "" {
				logger.Debug("skipping synthesis provider", logging.String("provider", "elevenlabs"), logging.String("reason", "no api key"))
				continue
			}
			var opts []ElevenLabsOption
			if strings.TrimSpace(cfg.ElevenLabsBaseURL) != "" {
				opts = append(opts, WithElevenLabsBaseURL(cfg.ElevenLabsBaseURL))
			}
			providers = append(providers, NewElevenLabsClient(cfg.ElevenLabsAPIKey, cfg.ElevenLabsVoiceID, opts...))
		case "azure":
			if strings.TrimSpace(cfg.AzureAPIKey) == "" || strings.TrimSpace(cfg.AzureRegion) == "" {
				logger.Debug("skipping synthesis provider", logging.String("provider", "azure"), logging.String("reason", "no credentials"))
				continue
			}
			providers = append(providers, NewAzureClient(cfg.AzureAPIKey, cfg.AzureRegion, cfg.AzureVoice))
		case "local":
			providers = append(providers, NewLocalSynthesizer(cfg.LocalBinary, cfg.LocalVoice))
		default:
			logger.Warn("unknown synthesis provider in order", logging.String("provider", name))
		}
	}
	timeout := time.Duration(cfg.RequestTimeout) * time.Second
	return NewChain(providers, timeout, logger)
}

// ProviderNames lists the configured providers in priority order.
func (c *Chain) ProviderNames() []string {
	names := make([]string, 0, len(c.providers))
	for _, provider := range c.providers {
		names = append(names, provider.Name())
	}
	return names
}

// Synthesize runs the chain. A caller preference in voice moves that
// provider to the front without removing the others. The returned duration
// is always measured from the written file.
func (c *Chain) Synthesize(ctx context.Context, text string, voice VoiceConfig, outputPath string) (Result, error) {
	if len(c.providers) == 0 {
		return Result{}, services.Wrap(services.ErrSynthesisUnavailable, "speech", "synthesize",
			"No synthesis providers are configured", nil)
	}

	ordered := c.orderFor(voice)
	var failures []error
	for _, provider := range ordered {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}

		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
		err := provider.Synthesize(attemptCtx, text, voice, outputPath)
		cancel()
		if err != nil {
			if errors.Is(err, context.Canceled) && ctx.Err() != nil {
				return Result{}, ctx.Err()
			}
			c.logger.Warn("synthesis provider failed",
				logging.String(logging.FieldProvider, provider.Name()),
				logging.Error(err),
			)
			failures = append(failures, fmt.Errorf("%s: %w", provider.Name(), err))
			continue
		}

		seconds, err := wav.FileDuration(outputPath)
		if err != nil || seconds <= 0 {
			if err == nil {
				err = errors.New("zero-length audio")
			}
			c.logger.Warn("synthesis provider returned unusable audio",
				logging.String(logging.FieldProvider, provider.Name()),
				logging.Error(err),
			)
			failures = append(failures, fmt.Errorf("%s: %w", provider.Name(), err))
			continue
		}

		c.logger.Info("narration synthesized",
			logging.String(logging.FieldProvider, provider.Name()),
			logging.Float64("seconds", seconds),
		)
		return Result{Provider: provider.Name(), AudioPath: outputPath, Seconds: seconds}, nil
	}

	return Result{}, services.Wrap(services.ErrSynthesisUnavailable, "speech", "synthesize",
		"All synthesis providers failed", errors.Join(failures...))
}

func (c *Chain) orderFor(voice VoiceConfig) []Provider {
	preference := strings.ToLower(strings.TrimSpace(voice.Preference))
	if preference == "" {
		return c.providers
	}
	ordered := make([]Provider, 0, len(c.providers))
	for _, provider := range c.providers {
		if provider.Name() == preference {
			ordered = append(ordered, provider)
		}
	}
	if len(ordered) == 0 {
		return c.providers
	}
	for _, provider := range c.providers {
		if provider.Name() != preference {
			ordered = append(ordered, provider)
		}
	}
	return ordered
}
