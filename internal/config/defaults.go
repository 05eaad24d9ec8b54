package config

const (
	defaultStagingDir = "~/.local/share/newsreel/staging"
	defaultOutputDir  = "~/newsreel/outputs"
	defaultLogDir     = "~/.local/share/newsreel/logs"
	defaultAssetsDir  = "~/.local/share/newsreel/assets"
	defaultAPIBind    = "127.0.0.1:7519"

	defaultOutputWidth  = 1920
	defaultOutputHeight = 1080
	defaultOutputFPS    = 30
	defaultContainer    = "mp4"
	defaultVideoCodec   = "libx264"
	defaultAudioCodec   = "aac"
	defaultCRF          = 20
	defaultPreset       = "medium"

	defaultElevenLabsBaseURL = "https://api.elevenlabs.io"
	defaultElevenLabsVoice   = "21m00Tcm4TlvDq8ikWAM"
	defaultAzureRegion       = "eastus"
	defaultAzureVoice        = "en-US-AriaNeural"
	defaultLocalBinary       = "espeak-ng"
	defaultSpeechTimeout     = 60

	defaultWordsPerMinute    = 155
	defaultSegmentPause      = 0.35
	defaultMinSegmentSeconds = 0.5

	defaultMaxCueChars   = 42
	defaultMinCueSeconds = 1.0

	defaultRenderTimeoutSeconds = 600
	defaultMusicVolume          = 0.3

	defaultQueuePollInterval    = 5
	defaultErrorRetryInterval   = 10
	defaultHeartbeatInterval    = 15
	defaultHeartbeatTimeout     = 120
	defaultMaxStageAttempts     = 3
	defaultRetryBackoffSeconds  = 5
	defaultCancelCheckInterval  = 2
	defaultStaleStagingMaxHours = 48

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			OutputDir:  defaultOutputDir,
			LogDir:     defaultLogDir,
			AssetsDir:  defaultAssetsDir,
			APIBind:    defaultAPIBind,
		},
		Output: Output{
			Width:      defaultOutputWidth,
			Height:     defaultOutputHeight,
			FPS:        defaultOutputFPS,
			Container:  defaultContainer,
			VideoCodec: defaultVideoCodec,
			AudioCodec: defaultAudioCodec,
			CRF:        defaultCRF,
			Preset:     defaultPreset,
		},
		Speech: Speech{
			ProviderOrder:     []string{"elevenlabs", "azure", "local"},
			ElevenLabsBaseURL: defaultElevenLabsBaseURL,
			ElevenLabsVoiceID: defaultElevenLabsVoice,
			AzureRegion:       defaultAzureRegion,
			AzureVoice:        defaultAzureVoice,
			LocalBinary:       defaultLocalBinary,
			RequestTimeout:    defaultSpeechTimeout,
		},
		Timing: Timing{
			WordsPerMinute:    defaultWordsPerMinute,
			SegmentPause:      defaultSegmentPause,
			MinSegmentSeconds: defaultMinSegmentSeconds,
		},
		Subtitles: Subtitles{
			MaxCueChars:   defaultMaxCueChars,
			MinCueSeconds: defaultMinCueSeconds,
		},
		Render: Render{
			TimeoutSeconds: defaultRenderTimeoutSeconds,
			MusicVolume:    defaultMusicVolume,
		},
		Workflow: Workflow{
			QueuePollInterval:    defaultQueuePollInterval,
			ErrorRetryInterval:   defaultErrorRetryInterval,
			HeartbeatInterval:    defaultHeartbeatInterval,
			HeartbeatTimeout:     defaultHeartbeatTimeout,
			MaxStageAttempts:     defaultMaxStageAttempts,
			RetryBackoffSeconds:  defaultRetryBackoffSeconds,
			CancelCheckInterval:  defaultCancelCheckInterval,
			StaleStagingMaxHours: defaultStaleStagingMaxHours,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
