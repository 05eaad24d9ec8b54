package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"newsreel/internal/media/wav"
	"newsreel/internal/services"
)

const (
	elevenLabsDefaultBaseURL = "https://api.elevenlabs.io"
	elevenLabsDefaultVoice   = "21m00Tcm4TlvDq8ikWAM"
	elevenLabsModelID        = "eleven_monolingual_v1"

	// pcm_22050 output: raw little-endian 16-bit mono samples.
	elevenLabsSampleRate = 22050

	defaultHTTPTimeout = 60 * time.Second
)

// ElevenLabsClient wraps the ElevenLabs text-to-speech API.
type ElevenLabsClient struct {
	apiKey     string
	voiceID    string
	baseURL    string
	httpClient *http.Client
}

// ElevenLabsOption customizes the ElevenLabs client.
type ElevenLabsOption func(*ElevenLabsClient)

// WithElevenLabsHTTPClient overrides the default HTTP client.
func WithElevenLabsHTTPClient(client *http.Client) ElevenLabsOption {
	return func(c *ElevenLabsClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithElevenLabsBaseURL overrides the default API base (useful for tests/mocks).
func WithElevenLabsBaseURL(base string) ElevenLabsOption {
	return func(c *ElevenLabsClient) {
		base = strings.TrimSpace(base)
		if base != "" {
			c.baseURL = strings.TrimRight(base, "/")
		}
	}
}

// NewElevenLabsClient constructs an ElevenLabs synthesis provider.
func NewElevenLabsClient(apiKey, voiceID string, opts ...ElevenLabsOption) *ElevenLabsClient {
	client := &ElevenLabsClient{
		apiKey:     strings.TrimSpace(apiKey),
		voiceID:    strings.TrimSpace(voiceID),
		baseURL:    elevenLabsDefaultBaseURL,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.voiceID == "" {
		client.voiceID = elevenLabsDefaultVoice
	}
	if client.baseURL == "" {
		client.baseURL = elevenLabsDefaultBaseURL
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return client
}

// Name implements Provider.
func (c *ElevenLabsClient) Name() string { return "elevenlabs" }

type elevenLabsRequest struct {
	Text    string `json:"text"`
	ModelID string `json:"model_id"`
}

// Synthesize implements Provider. The raw PCM response is wrapped into a
// WAV container at outputPath.
func (c *ElevenLabsClient) Synthesize(ctx context.Context, text string, voice VoiceConfig, outputPath string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return errors.New("elevenlabs synthesize: text required")
	}
	if c.apiKey == "" {
		return errors.New("elevenlabs synthesize: api key required")
	}

	voiceID := strings.TrimSpace(voice.VoiceID)
	if voiceID == "" {
		voiceID = c.voiceID
	}
	endpoint, err := url.JoinPath(c.baseURL, "/v1/text-to-speech/", voiceID)
	if err != nil {
		return fmt.Errorf("elevenlabs synthesize: build url: %w", err)
	}
	endpoint += "?output_format=pcm_22050"

	encoded, err := json.Marshal(elevenLabsRequest{Text: text, ModelID: elevenLabsModelID})
	if err != nil {
		return fmt.Errorf("elevenlabs synthesize: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("elevenlabs synthesize: request: %w", err)
	}
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/octet-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransportError("elevenlabs", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return classifyHTTPStatus("elevenlabs", resp.StatusCode, string(body))
	}

	pcm, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("elevenlabs synthesize: read body: %w", err)
	}
	if len(pcm) == 0 {
		return errors.New("elevenlabs synthesize: empty audio response")
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("elevenlabs synthesize: create output: %w", err)
	}
	if err := wav.Encode(out, pcm, elevenLabsSampleRate, 1, 16); err != nil {
		_ = out.Close()
		return fmt.Errorf("elevenlabs synthesize: %w", err)
	}
	return out.Close()
}

func classifyTransportError(provider string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return services.Wrap(services.ErrTimeout, provider, "synthesize", "Provider request timed out", err)
	}
	var timeoutErr interface{ Timeout() bool }
	if errors.As(err, &timeoutErr) && timeoutErr.Timeout() {
		return services.Wrap(services.ErrTimeout, provider, "synthesize", "Provider request timed out", err)
	}
	return services.Wrap(services.ErrTransient, provider, "synthesize", "Provider request failed", err)
}

func classifyHTTPStatus(provider string, status int, body string) error {
	body = strings.TrimSpace(body)
	err := fmt.Errorf("http %d: %s", status, body)
	switch {
	case status == http.StatusTooManyRequests:
		return services.Wrap(services.ErrTransient, provider, "synthesize", "Provider rate limited the request", err)
	case status >= http.StatusInternalServerError:
		return services.Wrap(services.ErrTransient, provider, "synthesize", "Provider returned a server error", err)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return services.Wrap(services.ErrConfiguration, provider, "synthesize", "Provider rejected the configured credentials", err)
	default:
		return services.Wrap(services.ErrValidation, provider, "synthesize", "Provider rejected the request", err)
	}
}
