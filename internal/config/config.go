package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	StagingDir string `toml:"staging_dir"`
	OutputDir  string `toml:"output_dir"`
	LogDir     string `toml:"log_dir"`
	AssetsDir  string `toml:"assets_dir"`
	APIBind    string `toml:"api_bind"`
}

// Output describes the rendered video container, resolution, and frame rate.
type Output struct {
	Width      int    `toml:"width"`
	Height     int    `toml:"height"`
	FPS        int    `toml:"fps"`
	Container  string `toml:"container"`
	VideoCodec string `toml:"video_codec"`
	AudioCodec string `toml:"audio_codec"`
	CRF        int    `toml:"crf"`
	Preset     string `toml:"preset"`
}

// Speech configures the voice synthesis provider chain.
type Speech struct {
	// ProviderOrder is the prioritized fallback chain. Recognized names:
	// elevenlabs, azure, local.
	ProviderOrder []string `toml:"provider_order"`

	ElevenLabsAPIKey  string `toml:"elevenlabs_api_key"`
	ElevenLabsVoiceID string `toml:"elevenlabs_voice_id"`
	ElevenLabsBaseURL string `toml:"elevenlabs_base_url"`

	AzureAPIKey string `toml:"azure_api_key"`
	AzureRegion string `toml:"azure_region"`
	AzureVoice  string `toml:"azure_voice"`

	LocalBinary string `toml:"local_binary"`
	LocalVoice  string `toml:"local_voice"`

	RequestTimeout int `toml:"request_timeout"`
}

// Timing configures the pre-synthesis duration estimator.
type Timing struct {
	WordsPerMinute    int     `toml:"words_per_minute"`
	SegmentPause      float64 `toml:"segment_pause_seconds"`
	MinSegmentSeconds float64 `toml:"min_segment_seconds"`
}

// Subtitles configures cue sizing limits.
type Subtitles struct {
	MaxCueChars   int     `toml:"max_cue_chars"`
	MinCueSeconds float64 `toml:"min_cue_seconds"`
}

// Render configures the compositing pass.
type Render struct {
	TimeoutSeconds int `toml:"timeout_seconds"`
	// MusicVolume is the fixed attenuation applied to background music so
	// narration stays dominant.
	MusicVolume float64 `toml:"music_volume"`
}

// Workflow contains daemon timing, retry, and cancellation intervals.
type Workflow struct {
	QueuePollInterval    int `toml:"queue_poll_interval"`
	ErrorRetryInterval   int `toml:"error_retry_interval"`
	HeartbeatInterval    int `toml:"heartbeat_interval"`
	HeartbeatTimeout     int `toml:"heartbeat_timeout"`
	MaxStageAttempts     int `toml:"max_stage_attempts"`
	RetryBackoffSeconds  int `toml:"retry_backoff_seconds"`
	CancelCheckInterval  int `toml:"cancel_check_interval"`
	StaleStagingMaxHours int `toml:"stale_staging_max_hours"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for newsreel.
//
// Configuration sections by subsystem:
//   - Paths: staging/output/log directories and API bind address
//   - Output: rendered video resolution, frame rate, container
//   - Speech: voice provider chain and credentials
//   - Timing: words-per-minute estimation constants
//   - Subtitles: cue sizing limits
//   - Render: ffmpeg compositing settings
//   - Workflow: daemon polling, retry budget, cancellation interval
//   - Logging: log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	Output    Output    `toml:"output"`
	Speech    Speech    `toml:"speech"`
	Timing    Timing    `toml:"timing"`
	Subtitles Subtitles `toml:"subtitles"`
	Render    Render    `toml:"render"`
	Workflow  Workflow  `toml:"workflow"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/newsreel/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized. The boolean reports whether a
// file was found at the resolved path.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("newsreel.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StagingDir, c.Paths.OutputDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.AssetsDir) != "" {
		// Best-effort so a missing assets volume does not block startup.
		_ = os.MkdirAll(c.Paths.AssetsDir, 0o755)
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable name used by the compositor.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable name used for media validation.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
