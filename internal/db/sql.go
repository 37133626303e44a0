package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // driver: sqlite
)

// OpenSQLite opens a SQLite database and ensures the schema exists.
func OpenSQLite(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, schemaSQLite); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return db, nil
}

// SQLStore keeps results in SQLite through database/sql.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) SaveResult(ctx context.Context, r Result) (Result, error) {
	r = prepare(r, time.Now())
	sources, err := json.Marshal(r.Sources)
	if err != nil {
		return Result{}, err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO assessment_results
		(id, session_id, kind, difficulty, correct, total, percent, sources_json, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		r.ID.String(), r.SessionID.String(), string(r.Kind), r.Difficulty, r.Correct, r.Total, r.Percent, string(sources), r.CreatedAt.UnixMilli())
	if err != nil {
		return Result{}, fmt.Errorf("saving result: %w", err)
	}
	return r, nil
}

func (s *SQLStore) ListResults(ctx context.Context, sessionID uuid.UUID) ([]Result, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, session_id, kind, difficulty, correct, total, percent, sources_json, created_at
		FROM assessment_results WHERE session_id = $1 ORDER BY created_at DESC`, sessionID.String())
	if err != nil {
		return nil, fmt.Errorf("listing results: %w", err)
	}
	defer rows.Close()

	out := []Result{}
	for rows.Next() {
		var (
			r                 Result
			id, session, kind string
			sources           string
			createdAt         int64
		)
		if err := rows.Scan(&id, &session, &kind, &r.Difficulty, &r.Correct, &r.Total, &r.Percent, &sources, &createdAt); err != nil {
			return nil, err
		}
		if r.ID, err = uuid.Parse(id); err != nil {
			return nil, err
		}
		if r.SessionID, err = uuid.Parse(session); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(sources), &r.Sources); err != nil {
			return nil, err
		}
		r.Kind = Kind(kind)
		r.CreatedAt = time.UnixMilli(createdAt).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}
