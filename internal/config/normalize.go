package config

import (
	"os"
	"strings"
)

// normalize expands path fields, trims string values, and fills credentials
// from the environment when the file leaves them blank.
func (c *Config) normalize() error {
	var err error
	if c.Paths.StagingDir, err = expandPath(strings.TrimSpace(c.Paths.StagingDir)); err != nil {
		return err
	}
	if c.Paths.OutputDir, err = expandPath(strings.TrimSpace(c.Paths.OutputDir)); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return err
	}
	if c.Paths.AssetsDir, err = expandPath(strings.TrimSpace(c.Paths.AssetsDir)); err != nil {
		return err
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)

	c.Output.Container = strings.ToLower(strings.TrimSpace(c.Output.Container))
	c.Output.VideoCodec = strings.TrimSpace(c.Output.VideoCodec)
	c.Output.AudioCodec = strings.TrimSpace(c.Output.AudioCodec)
	c.Output.Preset = strings.TrimSpace(c.Output.Preset)

	order := make([]string, 0, len(c.Speech.ProviderOrder))
	for _, name := range c.Speech.ProviderOrder {
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "" {
			order = append(order, name)
		}
	}
	c.Speech.ProviderOrder = order

	c.Speech.ElevenLabsAPIKey = strings.TrimSpace(c.Speech.ElevenLabsAPIKey)
	if c.Speech.ElevenLabsAPIKey == "" {
		c.Speech.ElevenLabsAPIKey = strings.TrimSpace(os.Getenv("ELEVENLABS_API_KEY"))
	}
	c.Speech.ElevenLabsBaseURL = strings.TrimRight(strings.TrimSpace(c.Speech.ElevenLabsBaseURL), "/")
	c.Speech.AzureAPIKey = strings.TrimSpace(c.Speech.AzureAPIKey)
	if c.Speech.AzureAPIKey == "" {
		c.Speech.AzureAPIKey = strings.TrimSpace(os.Getenv("AZURE_SPEECH_KEY"))
	}
	c.Speech.AzureRegion = strings.TrimSpace(c.Speech.AzureRegion)
	if region := strings.TrimSpace(os.Getenv("AZURE_SPEECH_REGION")); region != "" && c.Speech.AzureRegion == defaultAzureRegion {
		c.Speech.AzureRegion = region
	}
	c.Speech.AzureVoice = strings.TrimSpace(c.Speech.AzureVoice)
	c.Speech.LocalBinary = strings.TrimSpace(c.Speech.LocalBinary)
	c.Speech.LocalVoice = strings.TrimSpace(c.Speech.LocalVoice)

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))

	return nil
}
