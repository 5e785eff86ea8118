// Package narrative asks an OpenAI-compatible chat-completions service to
// explain bed allocations and schedules in plain language. It only reads
// already computed results; nothing it returns feeds back into them.
package narrative

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

var (
	ErrDisabled      = errors.New("narrative: service not configured")
	ErrEmptyResponse = errors.New("narrative: empty completion")
)

type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
	Retries int
}

type Client struct {
	http   *resty.Client
	model  string
	logger zerolog.Logger
}

// New returns nil when no base URL is configured. All methods on a nil
// client return ErrDisabled.
func New(cfg Config, logger zerolog.Logger) *Client {
	if cfg.BaseURL == "" {
		return nil
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	h := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.Retries).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(3 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if cfg.APIKey != "" {
		h.SetAuthToken(cfg.APIKey)
	}
	return &Client{http: h, model: cfg.Model, logger: logger}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type completionResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (c *Client) complete(ctx context.Context, system, prompt string, maxTokens int) (string, error) {
	if c == nil {
		return "", ErrDisabled
	}
	start := time.Now()

	var out completionResponse
	var apiErr apiError
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(completionRequest{
			Model: c.model,
			Messages: []message{
				{Role: "system", Content: system},
				{Role: "user", Content: prompt},
			},
			Temperature: 0.7,
			MaxTokens:   maxTokens,
		}).
		SetResult(&out).
		SetError(&apiErr).
		Post("/chat/completions")
	if err != nil {
		c.logger.Error().Err(err).Msg("narrative request failed")
		return "", fmt.Errorf("narrative request: %w", err)
	}
	if resp.IsError() {
		c.logger.Error().
			Int("status", resp.StatusCode()).
			Str("error", apiErr.Error.Message).
			Msg("narrative service returned an error")
		return "", fmt.Errorf("narrative service: %s (status %d)", apiErr.Error.Message, resp.StatusCode())
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		return "", ErrEmptyResponse
	}

	c.logger.Debug().Dur("latency", time.Since(start)).Int("max_tokens", maxTokens).Msg("narrative generated")
	return out.Choices[0].Message.Content, nil
}
