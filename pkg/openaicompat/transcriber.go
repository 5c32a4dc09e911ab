package openaicompat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

const (
	transcriptionLanguage = "ko"
	maxAudioBytes         = 25 << 20
)

// Transcriber turns recorded calls into text with Whisper.
type Transcriber struct {
	client     *openai.Client
	httpClient *http.Client
	model      string
}

// NewTranscriber creates a Transcriber. An empty baseURL uses OpenAI.
func NewTranscriber(apiKey, baseURL string, httpClient *http.Client) (*Transcriber, error) {
	if apiKey == "" {
		return nil, errors.New("transcriber: API key is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 2 * time.Minute}
	}

	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}
	clientConfig.HTTPClient = httpClient

	return &Transcriber{
		client:     openai.NewClientWithConfig(clientConfig),
		httpClient: httpClient,
		model:      openai.Whisper1,
	}, nil
}

// Transcribe downloads the audio at audioURL and returns its Korean transcript.
func (t *Transcriber) Transcribe(ctx context.Context, audioURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, audioURL, nil)
	if err != nil {
		return "", fmt.Errorf("transcriber: build download request: %w", err)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcriber: download audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("transcriber: download audio: status %d", resp.StatusCode)
	}

	out, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    t.model,
		FilePath: audioFileName(audioURL),
		Reader:   io.LimitReader(resp.Body, maxAudioBytes),
		Language: transcriptionLanguage,
	})
	if err != nil {
		return "", fmt.Errorf("transcriber: whisper: %w", err)
	}

	return strings.TrimSpace(out.Text), nil
}

// audioFileName keeps the extension so the API can infer the codec.
func audioFileName(audioURL string) string {
	name := path.Base(strings.SplitN(audioURL, "?", 2)[0])
	if name == "" || name == "." || name == "/" || !strings.Contains(name, ".") {
		return "audio.webm"
	}
	return name
}
