// Package db stores assessment results so learners can review past attempts.
package db

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrDisabled = errors.New("result history disabled")

type Kind string

const (
	KindMCQ          Kind = "mcq"
	KindFreeResponse Kind = "free_response"
)

// Result is one completed assessment.
type Result struct {
	ID         uuid.UUID `json:"id"`
	SessionID  uuid.UUID `json:"session_id"`
	Kind       Kind      `json:"kind"`
	Difficulty string    `json:"difficulty"`
	Correct    int       `json:"correct"`
	Total      int       `json:"total"`
	Percent    float64   `json:"percent"`
	Sources    []string  `json:"sources"`
	CreatedAt  time.Time `json:"created_at"`
}

// ResultStore persists results.
type ResultStore interface {
	SaveResult(ctx context.Context, r Result) (Result, error)
	ListResults(ctx context.Context, sessionID uuid.UUID) ([]Result, error)
}

// prepare fills in the ID and timestamp of a new result.
func prepare(r Result, now time.Time) Result {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.CreatedAt = r.CreatedAt.UTC().Truncate(time.Millisecond)
	if r.Sources == nil {
		r.Sources = []string{}
	}
	return r
}

// Disabled is used when no database is configured.
type Disabled struct{}

func (Disabled) SaveResult(context.Context, Result) (Result, error) { return Result{}, ErrDisabled }

func (Disabled) ListResults(context.Context, uuid.UUID) ([]Result, error) { return nil, ErrDisabled }

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS assessment_results (
  id UUID PRIMARY KEY,
  session_id UUID NOT NULL,
  kind TEXT NOT NULL,
  difficulty TEXT NOT NULL,
  correct INTEGER NOT NULL,
  total INTEGER NOT NULL,
  percent DOUBLE PRECISION NOT NULL,
  sources_json TEXT NOT NULL,
  created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS assessment_results_session_idx ON assessment_results (session_id, created_at);
`

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS assessment_results (
  id TEXT PRIMARY KEY,
  session_id TEXT NOT NULL,
  kind TEXT NOT NULL,
  difficulty TEXT NOT NULL,
  correct INTEGER NOT NULL,
  total INTEGER NOT NULL,
  percent REAL NOT NULL,
  sources_json TEXT NOT NULL,
  created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS assessment_results_session_idx ON assessment_results (session_id, created_at);
`
