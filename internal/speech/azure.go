package speech

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

const (
	azureDefaultVoice = "en-US-AriaNeural"

	// riff output arrives as a complete WAV container.
	azureOutputFormat = "riff-22050hz-16bit-mono-pcm"
)

// AzureClient wraps the Azure Cognitive Services text-to-speech REST API.
type AzureClient struct {
	apiKey     string
	region     string
	voice      string
	baseURL    string
	httpClient *http.Client
}

// AzureOption customizes the Azure client.
type AzureOption func(*AzureClient)

// WithAzureHTTPClient overrides the default HTTP client.
func WithAzureHTTPClient(client *http.Client) AzureOption {
	return func(c *AzureClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithAzureBaseURL overrides the regional endpoint (useful for tests/mocks).
func WithAzureBaseURL(base string) AzureOption {
	return func(c *AzureClient) {
		base = strings.TrimSpace(base)
		if base != "" {
			c.baseURL = strings.TrimRight(base, "/")
		}
	}
}

// NewAzureClient constructs an Azure speech synthesis provider.
func NewAzureClient(apiKey, region, voice string, opts ...AzureOption) *AzureClient {
	client := &AzureClient{
		apiKey:     strings.TrimSpace(apiKey),
		region:     strings.TrimSpace(region),
		voice:      strings.TrimSpace(voice),
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.voice == "" {
		client.voice = azureDefaultVoice
	}
	if client.baseURL == "" && client.region != "" {
		client.baseURL = fmt.Sprintf("https://%s.tts.speech.microsoft.com", client.region)
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return client
}

// Name implements Provider.
func (c *AzureClient) Name() string { return "azure" }

// Synthesize implements Provider. Azure returns a complete RIFF/WAVE
// payload which is written to outputPath unchanged.
func (c *AzureClient) Synthesize(ctx context.Context, text string, voice VoiceConfig, outputPath string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return errors.New("azure synthesize: text required")
	}
	if c.apiKey == "" || c.baseURL == "" {
		return errors.New("azure synthesize: api key and region required")
	}

	voiceName := strings.TrimSpace(voice.VoiceID)
	if voiceName == "" {
		voiceName = c.voice
	}
	ssml := buildSSML(voiceName, text)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/cognitiveservices/v1", strings.NewReader(ssml))
	if err != nil {
		return fmt.Errorf("azure synthesize: request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/ssml+xml")
	req.Header.Set("X-Microsoft-OutputFormat", azureOutputFormat)
	req.Header.Set("User-Agent", "newsreel")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransportError("azure", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return classifyHTTPStatus("azure", resp.StatusCode, string(body))
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("azure synthesize: create output: %w", err)
	}
	written, err := io.Copy(out, resp.Body)
	if err != nil {
		_ = out.Close()
		return fmt.Errorf("azure synthesize: write output: %w", err)
	}
	if written == 0 {
		_ = out.Close()
		return errors.New("azure synthesize: empty audio response")
	}
	return out.Close()
}

func buildSSML(voice, text string) string {
	var b strings.Builder
	b.WriteString(`<speak version='1.0' xml:lang='en-US'>`)
	b.WriteString(`<voice name='`)
	b.WriteString(voice)
	b.WriteString(`'>`)
	b.WriteString(escapeXML(text))
	b.WriteString(`</voice></speak>`)
	return b.String()
}

func escapeXML(text string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&apos;",
	)
	return replacer.Replace(text)
}
