// Package refine post-processes raw transcripts through an
// OpenAI-compatible chat completions endpoint. Refinement is best
// effort: any error here makes the pipeline fall back to the raw
// transcript rather than fail the session.
package refine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Yuhamixli/voice-input-assistant/internal/session"
)

// Client implements session.Refiner.
type Client struct {
	httpc *http.Client
	log   *zap.Logger
}

// NewClient builds a refinement client on httpc, which the caller
// shares with the transcription gateway so both use one configured
// transport; nil means a default client.
func NewClient(httpc *http.Client, log *zap.Logger) *Client {
	if httpc == nil {
		httpc = &http.Client{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{httpc: httpc, log: log.Named("refine")}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Refine sends the transcript through the configured model and returns
// the cleaned-up text. The whole call is bounded by the configured
// timeout so a slow model cannot stall injection.
func (c *Client) Refine(ctx context.Context, s *session.Session, text string) (string, error) {
	cfg := s.Config.Refine

	timeout := time.Duration(cfg.Timeout * float64(time.Second))
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	payload := chatRequest{
		Model: cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: cfg.Prompt},
			{Role: "user", Content: text},
		},
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	url := strings.TrimSuffix(cfg.Endpoint, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+cfg.APIKey)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("refinement endpoint returned %s", resp.Status)
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decoding refinement response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("refinement endpoint: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("refinement response has no choices")
	}
	out := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if out == "" {
		return "", fmt.Errorf("refinement produced empty text")
	}
	c.log.Debug("transcript refined",
		zap.String("session_id", s.ID),
		zap.Int("in_len", len(text)),
		zap.Int("out_len", len(out)))
	return out, nil
}
