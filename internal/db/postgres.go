package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PostgresStore keeps results in Postgres through pgxpool.
type PostgresStore struct {
	db *DB
}

func NewPostgresStore(db *DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) SaveResult(ctx context.Context, r Result) (Result, error) {
	r = prepare(r, time.Now())
	sources, err := json.Marshal(r.Sources)
	if err != nil {
		return Result{}, err
	}
	_, err = s.db.Pool.Exec(ctx, `INSERT INTO assessment_results
		(id, session_id, kind, difficulty, correct, total, percent, sources_json, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		r.ID, r.SessionID, string(r.Kind), r.Difficulty, r.Correct, r.Total, r.Percent, string(sources), r.CreatedAt)
	if err != nil {
		return Result{}, fmt.Errorf("saving result: %w", err)
	}
	return r, nil
}

func (s *PostgresStore) ListResults(ctx context.Context, sessionID uuid.UUID) ([]Result, error) {
	rows, err := s.db.Pool.Query(ctx, `SELECT id, session_id, kind, difficulty, correct, total, percent, sources_json, created_at
		FROM assessment_results WHERE session_id = $1 ORDER BY created_at DESC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("listing results: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Result, error) {
		var (
			r       Result
			kind    string
			sources string
		)
		if err := row.Scan(&r.ID, &r.SessionID, &kind, &r.Difficulty, &r.Correct, &r.Total, &r.Percent, &sources, &r.CreatedAt); err != nil {
			return Result{}, err
		}
		r.Kind = Kind(kind)
		r.CreatedAt = r.CreatedAt.UTC()
		return r, json.Unmarshal([]byte(sources), &r.Sources)
	})
}
