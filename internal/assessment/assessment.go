// Package assessment generates and grades assessments from indexed material.
package assessment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"learnassess/internal/mcq"
	"learnassess/internal/prompt"
)

var ErrEmptyAnswer = errors.New("answer is empty")

// Querier answers a prompt from retrieved material.
type Querier interface {
	Query(ctx context.Context, query string) (string, error)
}

type Service struct {
	split  mcq.SplitStrategy
	logger *zap.Logger
}

func NewService(split mcq.SplitStrategy, logger *zap.Logger) *Service {
	return &Service{split: split, logger: logger}
}

// GenerateMCQ asks for n questions at difficulty d and parses the reply.
// Questions missing an answer key or options are kept; the caller decides.
func (s *Service) GenerateMCQ(ctx context.Context, q Querier, n int, d prompt.Difficulty) ([]mcq.Question, error) {
	n = prompt.MCQBounds.Clamp(n)
	raw, err := q.Query(ctx, prompt.MCQ(n, d))
	if err != nil {
		return nil, fmt.Errorf("generating questions: %w", err)
	}
	questions := mcq.ParseWith(raw, mcq.Options{Split: s.split})
	if len(questions) == 0 {
		s.logger.Warn("model reply contained no questions", zap.Int("chars", len(raw)))
		return nil, mcq.ErrNoQuestions
	}
	incomplete := 0
	for _, qu := range questions {
		if qu.Incomplete() {
			incomplete++
		}
	}
	s.logger.Info("generated mcq", zap.Int("requested", n), zap.Int("parsed", len(questions)), zap.Int("incomplete", incomplete), zap.String("difficulty", string(d)))
	return questions, nil
}

// GenerateFreeResponse returns question blocks separated by blank lines.
func (s *Service) GenerateFreeResponse(ctx context.Context, q Querier, n int, d prompt.Difficulty) ([]string, error) {
	n = prompt.FreeResponseBounds.Clamp(n)
	raw, err := q.Query(ctx, prompt.FreeResponse(n, d))
	if err != nil {
		return nil, fmt.Errorf("generating free-response questions: %w", err)
	}
	blocks := SplitBlocks(raw)
	if len(blocks) == 0 {
		return nil, mcq.ErrNoQuestions
	}
	return blocks, nil
}

// EvaluateFreeResponse grades answer against the model answer contained in
// block, with the material as context, and returns the feedback text.
func (s *Service) EvaluateFreeResponse(ctx context.Context, q Querier, block, answer string) (string, error) {
	if strings.TrimSpace(answer) == "" {
		return "", ErrEmptyAnswer
	}
	question, model := SplitBlock(block)
	feedback, err := q.Query(ctx, prompt.Evaluation(question, model, answer))
	if err != nil {
		return "", fmt.Errorf("evaluating answer: %w", err)
	}
	return strings.TrimSpace(feedback), nil
}

// SplitBlocks splits text on blank lines and drops empty blocks.
func SplitBlocks(raw string) []string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	var out []string
	for _, b := range strings.Split(raw, "\n\n") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// SplitBlock separates the question from its "Model Answer:" section.
// A block without one is all question.
func SplitBlock(block string) (question, modelAnswer string) {
	for _, marker := range []string{"Model Answer:", "Answer:"} {
		if q, a, ok := strings.Cut(block, marker); ok {
			return strings.TrimSpace(q), strings.TrimSpace(a)
		}
	}
	return strings.TrimSpace(block), ""
}
