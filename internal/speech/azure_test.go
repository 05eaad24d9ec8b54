package speech

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"newsreel/internal/media/wav"
	"newsreel/internal/services"
)

func TestAzureSynthesizeWritesResponse(t *testing.T) {
	var payload bytes.Buffer
	if err := wav.Encode(&payload, make([]byte, 22050*2), 22050, 1, 16); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Ocp-Apim-Subscription-Key") != "azure-key" {
			t.Errorf("missing subscription key header")
		}
		if r.Header.Get("X-Microsoft-OutputFormat") != azureOutputFormat {
			t.Errorf("output format = %q", r.Header.Get("X-Microsoft-OutputFormat"))
		}
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), "en-US-AriaNeural") {
			t.Errorf("ssml missing default voice: %s", body)
		}
		if !strings.Contains(string(body), "Markets &amp; more") {
			t.Errorf("ssml not escaped: %s", body)
		}
		w.Write(payload.Bytes())
	}))
	defer server.Close()

	client := NewAzureClient("azure-key", "eastus", "", WithAzureBaseURL(server.URL))
	outputPath := filepath.Join(t.TempDir(), "narration.wav")
	if err := client.Synthesize(context.Background(), "Markets & more", VoiceConfig{}, outputPath); err != nil {
		t.Fatalf("synthesize: %v", err)
	}

	seconds, err := wav.FileDuration(outputPath)
	if err != nil || seconds <= 0 {
		t.Fatalf("duration = %v err = %v", seconds, err)
	}
}

func TestAzureClassifiesServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewAzureClient("azure-key", "eastus", "", WithAzureBaseURL(server.URL))
	err := client.Synthesize(context.Background(), "text", VoiceConfig{}, filepath.Join(t.TempDir(), "out.wav"))
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("error = %v, want transient", err)
	}
}

func TestAzureRequiresCredentials(t *testing.T) {
	client := NewAzureClient("", "", "")
	if err := client.Synthesize(context.Background(), "text", VoiceConfig{}, "out.wav"); err == nil {
		t.Fatal("expected error without credentials")
	}
}
