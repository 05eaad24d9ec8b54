package speech

import "context"

// VoiceConfig carries caller voice preferences through the fallback chain.
// Fields are optional; providers fall back to their configured defaults.
type VoiceConfig struct {
	// VoiceID is a provider-specific voice identifier.
	VoiceID string
	// Preference optionally names the provider the caller wants first.
	Preference string
}

// Result reports a completed synthesis.
type Result struct {
	// Provider is the name of the provider that produced the audio.
	Provider string
	// AudioPath is the persisted WAV narration file.
	AudioPath string
	// Seconds is the measured playback duration of the file, never a
	// provider-reported figure.
	Seconds float64
}

// Provider converts narration text into a WAV file on disk.
type Provider interface {
	Name() string
	Synthesize(ctx context.Context, text string, voice VoiceConfig, outputPath string) error
}
