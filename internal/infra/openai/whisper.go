package openai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"voice-chat/internal/infra"
)

const DefaultBaseURL = "https://api.openai.com/v1"

// WhisperClient transcribes WAV audio with the OpenAI transcription API or
// any server exposing the same route, such as a local whisper.cpp server.
type WhisperClient struct {
	client *goopenai.Client
	model  string
	retry  infra.RetryConfig
}

func NewWhisperClient(apiKey, baseURL, model string) *WhisperClient {
	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimSuffix(baseURL, "/")
	}
	if model == "" {
		model = goopenai.Whisper1
	}
	return &WhisperClient{
		client: goopenai.NewClientWithConfig(cfg),
		model:  model,
		retry:  infra.DefaultRetryConfig(),
	}
}

func (c *WhisperClient) Name() string {
	return "openai-whisper"
}

// Transcribe sends one utterance. language is a BCP 47 tag; only the primary
// subtag is forwarded because the API expects ISO-639-1.
func (c *WhisperClient) Transcribe(ctx context.Context, wav []byte, language string) (string, error) {
	var text string

	err := infra.WithRetry(ctx, c.retry, func() error {
		resp, err := c.client.CreateTranscription(ctx, goopenai.AudioRequest{
			Model:    c.model,
			FilePath: "utterance.wav",
			Reader:   bytes.NewReader(wav),
			Language: primaryLanguage(language),
			Format:   goopenai.AudioResponseFormatJSON,
		})
		if err != nil {
			if retryable(err) {
				return fmt.Errorf("whisper API error: %w (retryable)", err)
			}
			return infra.Permanent(fmt.Errorf("whisper API error: %w", err))
		}
		text = strings.TrimSpace(resp.Text)
		return nil
	})
	if err != nil {
		return "", err
	}

	return text, nil
}

func retryable(err error) bool {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return infra.IsRetryableHTTPStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return infra.IsRetryableHTTPStatus(reqErr.HTTPStatusCode)
	}
	return true
}

func primaryLanguage(tag string) string {
	if i := strings.IndexAny(tag, "-_"); i > 0 {
		tag = tag[:i]
	}
	return strings.ToLower(tag)
}
