package speech

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"newsreel/internal/services"
)

const localDefaultVoice = "en-US"

// LocalSynthesizer shells out to an offline speech engine (espeak-ng).
// It is the last link in the fallback chain and needs no credentials.
type LocalSynthesizer struct {
	binary string
	voice  string
}

// NewLocalSynthesizer constructs the offline provider.
func NewLocalSynthesizer(binary, voice string) *LocalSynthesizer {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "espeak-ng"
	}
	voice = strings.TrimSpace(voice)
	if voice == "" {
		voice = localDefaultVoice
	}
	return &LocalSynthesizer{binary: binary, voice: voice}
}

// Name implements Provider.
func (l *LocalSynthesizer) Name() string { return "local" }

// Available reports whether the engine binary can be resolved.
func (l *LocalSynthesizer) Available() bool {
	_, err := exec.LookPath(l.binary)
	return err == nil
}

// Synthesize implements Provider. The engine writes WAV output directly.
func (l *LocalSynthesizer) Synthesize(ctx context.Context, text string, voice VoiceConfig, outputPath string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return errors.New("local synthesize: text required")
	}

	voiceName := strings.TrimSpace(voice.VoiceID)
	if voiceName == "" {
		voiceName = l.voice
	}

	// Text arrives on stdin to avoid argument length limits.
	cmd := exec.CommandContext(ctx, l.binary, "-v", voiceName, "-w", outputPath, "--stdin")
	cmd.Stdin = strings.NewReader(text)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return services.Wrap(services.ErrExternalTool, "local", "synthesize",
			"Offline speech engine failed", fmt.Errorf("%s: %w: %s", l.binary, err, strings.TrimSpace(string(output))))
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return fmt.Errorf("local synthesize: output missing: %w", err)
	}
	if info.Size() == 0 {
		return errors.New("local synthesize: empty output file")
	}
	return nil
}
