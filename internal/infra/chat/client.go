package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const DefaultPath = "/api/chat"

// StatusError is returned when the chat endpoint answers outside the 2xx
// range.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Server error: %d", e.StatusCode)
}

type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient posts utterances to baseURL+path. A zero timeout means requests
// wait for the server indefinitely.
func NewClient(baseURL, path string, timeout time.Duration, logger *slog.Logger) *Client {
	if path == "" {
		path = DefaultPath
	}
	return &Client{
		endpoint:   strings.TrimSuffix(baseURL, "/") + "/" + strings.TrimPrefix(path, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type request struct {
	Text string `json:"text"`
}

// Send posts the text and returns the whole response body, which the
// endpoint encodes as audio.
func (c *Client) Send(ctx context.Context, text string) ([]byte, error) {
	body, err := json.Marshal(request{Text: text})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("chat endpoint error",
			"request_id", requestID,
			"status", resp.StatusCode,
		)
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading audio: %w", err)
	}

	c.logger.Debug("chat response",
		"request_id", requestID,
		"content_type", resp.Header.Get("Content-Type"),
		"bytes", len(audio),
		"elapsed", time.Since(start),
	)

	return audio, nil
}
