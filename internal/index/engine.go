package index

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"learnassess/internal/prompt"
)

// Embedder turns text into vectors.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Generator answers a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Engine answers queries grounded in one session's indexed material.
type Engine struct {
	index     *Flat
	embedder  Embedder
	generator Generator
	topK      int
	maxChars  int
	logger    *zap.Logger
}

// NewEngine wires an index to the models that query it.
func NewEngine(idx *Flat, embedder Embedder, generator Generator, topK int, logger *zap.Logger) *Engine {
	return &Engine{
		index:     idx,
		embedder:  embedder,
		generator: generator,
		topK:      topK,
		maxChars:  24000,
		logger:    logger,
	}
}

// Index exposes the underlying vector index.
func (e *Engine) Index() *Flat { return e.index }

// Query retrieves the chunks closest to query, packs as many as fit into one
// context block and asks the generator.
func (e *Engine) Query(ctx context.Context, query string) (string, error) {
	qv, err := e.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return "", err
	}
	hits, err := e.index.Search(qv, e.topK)
	if err != nil {
		return "", err
	}

	texts := make([]string, 0, len(hits))
	used := 0
	for _, h := range hits {
		if used > 0 && used+len(h.Chunk.Text) > e.maxChars {
			break
		}
		texts = append(texts, h.Chunk.Text)
		used += len(h.Chunk.Text)
	}
	e.logger.Debug("retrieved context", zap.Int("hits", len(hits)), zap.Int("used", len(texts)), zap.Int("chars", used))

	out, err := e.generator.Generate(ctx, prompt.Compact(texts, query))
	if err != nil {
		return "", fmt.Errorf("query engine: %w", err)
	}
	return out, nil
}
