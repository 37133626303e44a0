// Package llm holds the text-generation client used to write assessments.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
)

var ErrEmptyResponse = errors.New("language model returned an empty response")

// Generator answers a prompt with text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GroqConfig selects the Groq model. Groq serves an OpenAI-compatible API.
type GroqConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Client generates text through a langchaingo model.
type Client struct {
	model       llms.Model
	logger      *zap.Logger
	attempts    int
	retryGap    time.Duration
	temperature float64
}

// NewGroq creates a client for Groq's chat completions endpoint.
func NewGroq(cfg GroqConfig, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("groq api key not set")
	}
	model, err := openai.New(
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.Model),
		openai.WithBaseURL(cfg.BaseURL),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Groq client: %w", err)
	}
	return New(model, logger), nil
}

// New wraps any langchaingo model.
func New(model llms.Model, logger *zap.Logger) *Client {
	return &Client{
		model:       model,
		logger:      logger,
		attempts:    3,
		retryGap:    2 * time.Second,
		temperature: 0.2,
	}
}

// Generate sends prompt as a single user message, retrying failures and
// blank answers.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		if attempt > 1 {
			if err := wait(ctx, c.retryGap); err != nil {
				return "", err
			}
		}

		out, err := llms.GenerateFromSinglePrompt(ctx, c.model, prompt, llms.WithTemperature(c.temperature))
		if err != nil {
			lastErr = fmt.Errorf("failed to generate LLM response (attempt %d): %w", attempt, err)
			c.logger.Warn("llm generation failed", zap.Int("attempt", attempt), zap.Error(err))
			continue
		}
		out = strings.TrimSpace(out)
		if out == "" {
			lastErr = fmt.Errorf("%w (attempt %d)", ErrEmptyResponse, attempt)
			continue
		}
		c.logger.Debug("llm generation succeeded", zap.Int("attempt", attempt), zap.Int("chars", len(out)))
		return out, nil
	}
	return "", fmt.Errorf("generation failed after %d attempts: %w", c.attempts, lastErr)
}

func wait(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
