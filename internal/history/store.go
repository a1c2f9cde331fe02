// Package history persists structured inference call records in an embedded
// DuckDB database and aggregates them into run statistics.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "github.com/marcboeker/go-duckdb"

	"github.com/promptgate/promptgate/internal/llm"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS inference_calls (
	id VARCHAR PRIMARY KEY,
	run_id VARCHAR,
	flow VARCHAR,
	stage VARCHAR,
	model VARCHAR,
	started_at TIMESTAMP,
	duration_ms BIGINT,
	status VARCHAR,
	payload JSON
)`

type Store struct {
	db *sql.DB
}

// Open opens (or creates) the history database at path. An empty path opens
// an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open DuckDB: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("INSTALL json"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to install JSON extension: %w", err)
	}
	if _, err := db.Exec("LOAD json"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load JSON extension: %w", err)
	}
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create history table: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record persists one call record. Store implements llm.Recorder.
func (s *Store) Record(ctx context.Context, rec llm.CallRecord) error {
	payload := any(nil)
	if len(rec.Payload) > 0 {
		payload = string(rec.Payload)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO inference_calls (id, run_id, flow, stage, model, started_at, duration_ms, status, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		uuid.NewString(),
		rec.RunID,
		rec.Flow,
		rec.Stage,
		rec.Model,
		rec.StartedAt,
		rec.Duration.Milliseconds(),
		rec.Status,
		payload,
	)
	if err != nil {
		return fmt.Errorf("failed to insert call record: %w", err)
	}
	return nil
}
