// Package gemini wraps the Gemini API for the three jobs the service gives
// it: embedding text chunks, transcribing PDFs to markdown and, when
// selected as the provider, answering prompts.
package gemini

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const (
	// MaxInlineSize is the maximum size for inline PDF data (20MB)
	MaxInlineSize = 20 * 1024 * 1024
	// EmbeddingDimension is the vector size of text-embedding-004.
	EmbeddingDimension = 768
	// maxBatch is the API limit for batch embedding requests.
	maxBatch = 100

	maxAttempts = 3
)

// TranscribePrompt asks the model to convert a PDF into plain markdown.
const TranscribePrompt = `Convert this document to markdown. Reproduce the text faithfully, in reading order.
Keep headings, lists and tables. Describe figures in one sentence in italics. Do not add commentary.`

var ErrEmptyResponse = errors.New("gemini returned no content")

// Config selects models and the API key.
type Config struct {
	APIKey         string
	Model          string
	EmbeddingModel string
}

// Client wraps the Gemini client
type Client struct {
	client   *genai.Client
	model    *genai.GenerativeModel
	embedder string
	logger   *zap.Logger
	retryGap time.Duration
}

// NewClient creates a new Gemini client
func NewClient(ctx context.Context, cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	// Lower temperature keeps the line format stable.
	model.SetTemperature(0.2)
	model.SetTopK(40)
	model.SetTopP(0.95)
	model.SetMaxOutputTokens(8192)

	return &Client{
		client:   client,
		model:    model,
		embedder: cfg.EmbeddingModel,
		logger:   logger,
		retryGap: 2 * time.Second,
	}, nil
}

// Close closes the Gemini client
func (c *Client) Close() {
	if err := c.client.Close(); err != nil {
		c.logger.Warn("closing gemini client", zap.Error(err))
	}
}

// EmbedDocuments embeds chunks for storage, in batches the API accepts.
func (c *Client) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	em := c.client.EmbeddingModel(c.embedder)
	em.TaskType = genai.TaskTypeRetrievalDocument

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += maxBatch {
		end := min(start+maxBatch, len(texts))
		batch := em.NewBatch()
		for _, t := range texts[start:end] {
			batch.AddContent(genai.Text(t))
		}
		resp, err := em.BatchEmbedContents(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("failed to embed chunks %d-%d: %w", start, end, err)
		}
		if len(resp.Embeddings) != end-start {
			return nil, fmt.Errorf("embedding count mismatch: sent %d, got %d", end-start, len(resp.Embeddings))
		}
		for _, e := range resp.Embeddings {
			out = append(out, e.Values)
		}
	}
	c.logger.Debug("embedded chunks", zap.Int("count", len(out)))
	return out, nil
}

// EmbedQuery embeds a single retrieval query.
func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	em := c.client.EmbeddingModel(c.embedder)
	em.TaskType = genai.TaskTypeRetrievalQuery

	resp, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if resp.Embedding == nil {
		return nil, ErrEmptyResponse
	}
	return resp.Embedding.Values, nil
}

// TranscribePDF converts a PDF to markdown. Small files are sent inline;
// larger ones go through the File API and are deleted afterwards.
func (c *Client) TranscribePDF(ctx context.Context, name string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("file %s is empty", name)
	}
	if len(data) <= MaxInlineSize {
		return c.generate(ctx, genai.Text(TranscribePrompt), genai.Blob{MIMEType: "application/pdf", Data: data})
	}

	file, err := c.client.UploadFile(ctx, "", bytes.NewReader(data), &genai.UploadFileOptions{
		DisplayName: name,
		MIMEType:    "application/pdf",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file %s: %w", name, err)
	}
	defer func() {
		if err := c.client.DeleteFile(context.WithoutCancel(ctx), file.Name); err != nil {
			c.logger.Warn("failed to delete uploaded file", zap.String("file", file.Name), zap.Error(err))
		}
	}()

	return c.generate(ctx, genai.Text(TranscribePrompt), genai.FileData{MIMEType: file.MIMEType, URI: file.URI})
}

// Generate answers a text prompt.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, genai.Text(prompt))
}

// generate sends parts to the model, retrying empty or failed responses.
func (c *Client) generate(ctx context.Context, parts ...genai.Part) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			if err := wait(ctx, c.retryGap); err != nil {
				return "", err
			}
		}

		resp, err := c.model.GenerateContent(ctx, parts...)
		if err != nil {
			lastErr = fmt.Errorf("failed to generate content (attempt %d): %w", attempt, err)
			c.logger.Warn("gemini generation failed", zap.Int("attempt", attempt), zap.Error(err))
			continue
		}

		text := responseText(resp)
		if strings.TrimSpace(text) == "" {
			lastErr = fmt.Errorf("%w (attempt %d)", ErrEmptyResponse, attempt)
			continue
		}
		return text, nil
	}
	return "", fmt.Errorf("gemini generation failed after %d attempts: %w", maxAttempts, lastErr)
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String()
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
