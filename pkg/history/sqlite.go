package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/promptforge/promptforge/pkg/quality"
)

const schema = `
CREATE TABLE IF NOT EXISTS optimizations (
	id               TEXT PRIMARY KEY,
	created_at       TIMESTAMP NOT NULL,
	original_prompt  TEXT NOT NULL,
	purpose          TEXT NOT NULL,
	optimized_prompt TEXT NOT NULL,
	improvements     TEXT NOT NULL,
	explanation      TEXT NOT NULL,
	metrics          TEXT NOT NULL,
	fallback_used    INTEGER NOT NULL DEFAULT 0,
	duration_ms      INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_optimizations_created_at ON optimizations(created_at);
`

// SQLiteStore is a SQLite-backed Store.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and if needed bootstraps) a SQLite store at path.
// Use ":memory:" for an in-memory database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Put stores a record. Improvements and metrics are JSON-encoded columns.
func (s *SQLiteStore) Put(ctx context.Context, record *Record) error {
	improvements, err := json.Marshal(record.Improvements)
	if err != nil {
		return fmt.Errorf("marshal improvements: %w", err)
	}
	metrics, err := json.Marshal(record.Metrics)
	if err != nil {
		return fmt.Errorf("marshal metrics: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO optimizations
		(id, created_at, original_prompt, purpose, optimized_prompt, improvements, explanation, metrics, fallback_used, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.CreatedAt, record.OriginalPrompt, record.Purpose,
		record.OptimizedPrompt, string(improvements), record.Explanation,
		string(metrics), record.FallbackUsed, record.DurationMs,
	)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

// Get retrieves a record by id.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, original_prompt, purpose, optimized_prompt, improvements, explanation, metrics, fallback_used, duration_ms
		FROM optimizations WHERE id = ?`, id)

	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}
	return record, nil
}

// List returns all records, newest first.
func (s *SQLiteStore) List(ctx context.Context) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, original_prompt, purpose, optimized_prompt, improvements, explanation, metrics, fallback_used, duration_ms
		FROM optimizations ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*Record, error) {
	var (
		record           Record
		createdAt        time.Time
		improvementsJSON string
		metricsJSON      string
	)

	err := row.Scan(&record.ID, &createdAt, &record.OriginalPrompt, &record.Purpose,
		&record.OptimizedPrompt, &improvementsJSON, &record.Explanation,
		&metricsJSON, &record.FallbackUsed, &record.DurationMs)
	if err != nil {
		return nil, err
	}

	record.CreatedAt = createdAt
	if err := json.Unmarshal([]byte(improvementsJSON), &record.Improvements); err != nil {
		return nil, fmt.Errorf("unmarshal improvements: %w", err)
	}
	var metrics quality.Metrics
	if err := json.Unmarshal([]byte(metricsJSON), &metrics); err != nil {
		return nil, fmt.Errorf("unmarshal metrics: %w", err)
	}
	record.Metrics = metrics

	return &record, nil
}
