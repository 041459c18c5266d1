// Package history keeps an optional sqlite log of scoring runs. The dataset
// itself stays flat JSON; this is operational telemetry only.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id           TEXT PRIMARY KEY,
	dataset_path TEXT NOT NULL,
	total        INTEGER NOT NULL DEFAULT 0,
	updated      INTEGER NOT NULL DEFAULT 0,
	started_at   DATETIME NOT NULL,
	finished_at  DATETIME
);

CREATE TABLE IF NOT EXISTS scores (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id     TEXT NOT NULL REFERENCES runs(id),
	message_id TEXT NOT NULL,
	score      INTEGER NOT NULL,
	raw_reply  TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_scores_run ON scores(run_id);
`

// Run is one recorded scoring run.
type Run struct {
	ID          string
	DatasetPath string
	Total       int
	Updated     int
	StartedAt   time.Time
	FinishedAt  sql.NullTime
}

// Store persists run history in SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (and migrates) the history database at dbPath.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// BeginRun inserts a new run row.
func (s *Store) BeginRun(ctx context.Context, runID, datasetPath string, startedAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, dataset_path, started_at) VALUES (?, ?, ?)`,
		runID, datasetPath, startedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// RecordScore appends one scored message to the run.
func (s *Store) RecordScore(ctx context.Context, runID, messageID string, score int, rawReply string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO scores (run_id, message_id, score, raw_reply) VALUES (?, ?, ?, ?)`,
		runID, messageID, score, rawReply)
	if err != nil {
		return fmt.Errorf("insert score: %w", err)
	}
	return nil
}

// FinishRun stores final counts and the finish time.
func (s *Store) FinishRun(ctx context.Context, runID string, total, updated int, finishedAt time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET total = ?, updated = ?, finished_at = ? WHERE id = ?`,
		total, updated, finishedAt.UTC(), runID)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("run %s not found", runID)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, dataset_path, total, updated, started_at, finished_at
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.DatasetPath, &r.Total, &r.Updated, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
