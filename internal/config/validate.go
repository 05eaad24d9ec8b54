package config

import (
	"errors"
	"fmt"
)

var knownProviders = map[string]struct{}{
	"elevenlabs": {},
	"azure":      {},
	"local":      {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateOutput(); err != nil {
		return err
	}
	if err := c.validateSpeech(); err != nil {
		return err
	}
	if err := c.validateTiming(); err != nil {
		return err
	}
	if err := c.validateSubtitles(); err != nil {
		return err
	}
	if err := c.validateRender(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateOutput() error {
	if c.Output.Width <= 0 || c.Output.Height <= 0 {
		return errors.New("output.width and output.height must be positive")
	}
	if c.Output.Width%2 != 0 || c.Output.Height%2 != 0 {
		return errors.New("output.width and output.height must be even for H.264 encoding")
	}
	if c.Output.FPS <= 0 {
		return errors.New("output.fps must be positive")
	}
	switch c.Output.Container {
	case "mp4", "mkv", "mov":
	default:
		return fmt.Errorf("output.container: unsupported value %q", c.Output.Container)
	}
	return nil
}

func (c *Config) validateSpeech() error {
	if len(c.Speech.ProviderOrder) == 0 {
		return errors.New("speech.provider_order must list at least one provider")
	}
	for _, name := range c.Speech.ProviderOrder {
		if _, ok := knownProviders[name]; !ok {
			return fmt.Errorf("speech.provider_order: unknown provider %q", name)
		}
	}
	if c.Speech.RequestTimeout <= 0 {
		return errors.New("speech.request_timeout must be positive")
	}
	return nil
}

func (c *Config) validateTiming() error {
	if c.Timing.WordsPerMinute <= 0 {
		return errors.New("timing.words_per_minute must be positive")
	}
	if c.Timing.SegmentPause < 0 {
		return errors.New("timing.segment_pause_seconds must not be negative")
	}
	if c.Timing.MinSegmentSeconds <= 0 {
		return errors.New("timing.min_segment_seconds must be positive")
	}
	return nil
}

func (c *Config) validateSubtitles() error {
	if c.Subtitles.MaxCueChars < 8 {
		return errors.New("subtitles.max_cue_chars must be at least 8")
	}
	if c.Subtitles.MinCueSeconds <= 0 {
		return errors.New("subtitles.min_cue_seconds must be positive")
	}
	return nil
}

func (c *Config) validateRender() error {
	if c.Render.TimeoutSeconds <= 0 {
		return errors.New("render.timeout_seconds must be positive")
	}
	if c.Render.MusicVolume < 0 || c.Render.MusicVolume > 1 {
		return errors.New("render.music_volume must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.QueuePollInterval <= 0 {
		return errors.New("workflow.queue_poll_interval must be positive")
	}
	if c.Workflow.MaxStageAttempts <= 0 {
		return errors.New("workflow.max_stage_attempts must be positive")
	}
	if c.Workflow.RetryBackoffSeconds < 0 {
		return errors.New("workflow.retry_backoff_seconds must not be negative")
	}
	if c.Workflow.CancelCheckInterval <= 0 {
		return errors.New("workflow.cancel_check_interval must be positive")
	}
	return nil
}
