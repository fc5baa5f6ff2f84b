// Package statestore persists pipeline run snapshots. The engine itself is
// storage-agnostic; this package consumes its exported state and persistable
// summary and hands them back verbatim on resume.
package statestore

import (
	"context"
	"time"

	"git.home.luguber.info/inful/sitegen/internal/pipeline"
)

// Record is one persisted pipeline run.
type Record struct {
	ProjectID    string
	CurrentStage string
	Status       pipeline.RunStatus
	Progress     int
	State        []byte // full exported PipelineState JSON
	Error        string
	StartedAt    time.Time
	UpdatedAt    time.Time
}

// Store defines the interface for persisting and retrieving pipeline runs.
type Store interface {
	// Save upserts the snapshot for a project.
	Save(ctx context.Context, rec *Record) error

	// Load retrieves the snapshot for a project. Returns ErrNotFound when
	// no run has been persisted.
	Load(ctx context.Context, projectID string) (*Record, error)

	// ListStale returns runs still marked RUNNING whose last update is
	// older than the cutoff.
	ListStale(ctx context.Context, cutoff time.Time) ([]Record, error)

	// Delete removes the snapshot for a project.
	Delete(ctx context.Context, projectID string) error

	// Close closes the store and releases resources.
	Close() error
}
