package statestore

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"git.home.luguber.info/inful/sitegen/internal/pipeline"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore creates a new SQLite-backed store. Use ":memory:" for an
// in-memory database, or a file path for persistent storage.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS pipeline_runs (
		project_id TEXT PRIMARY KEY,
		current_stage TEXT NOT NULL,
		status TEXT NOT NULL,
		progress INTEGER NOT NULL,
		state BLOB NOT NULL,
		error TEXT,
		started_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_status ON pipeline_runs(status);
	CREATE INDEX IF NOT EXISTS idx_runs_updated ON pipeline_runs(updated_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Save upserts the snapshot for a project.
func (s *SQLiteStore) Save(ctx context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pipeline_runs (project_id, current_stage, status, progress, state, error, started_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(project_id) DO UPDATE SET
			current_stage = excluded.current_stage,
			status = excluded.status,
			progress = excluded.progress,
			state = excluded.state,
			error = excluded.error,
			updated_at = excluded.updated_at`,
		rec.ProjectID, rec.CurrentStage, string(rec.Status), rec.Progress,
		rec.State, rec.Error, rec.StartedAt.Unix(), rec.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("save pipeline run: %w", err)
	}
	return nil
}

// Load retrieves the snapshot for a project.
func (s *SQLiteStore) Load(ctx context.Context, projectID string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT project_id, current_stage, status, progress, state, error, started_at, updated_at
		FROM pipeline_runs WHERE project_id = ?`, projectID)

	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load pipeline run: %w", err)
	}
	return rec, nil
}

// ListStale returns RUNNING runs not updated since the cutoff.
func (s *SQLiteStore) ListStale(ctx context.Context, cutoff time.Time) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT project_id, current_stage, status, progress, state, error, started_at, updated_at
		FROM pipeline_runs WHERE status = ? AND updated_at < ? ORDER BY updated_at`,
		string(pipeline.RunStatusRunning), cutoff.Unix())
	if err != nil {
		return nil, fmt.Errorf("query stale runs: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stale run: %w", err)
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}

// Delete removes the snapshot for a project.
func (s *SQLiteStore) Delete(ctx context.Context, projectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM pipeline_runs WHERE project_id = ?", projectID); err != nil {
		return fmt.Errorf("delete pipeline run: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var rec Record
	var status string
	var startedAt, updatedAt int64

	if err := row.Scan(&rec.ProjectID, &rec.CurrentStage, &status, &rec.Progress,
		&rec.State, &rec.Error, &startedAt, &updatedAt); err != nil {
		return nil, err
	}
	rec.Status = pipeline.RunStatus(status)
	rec.StartedAt = time.Unix(startedAt, 0)
	rec.UpdatedAt = time.Unix(updatedAt, 0)
	return &rec, nil
}
