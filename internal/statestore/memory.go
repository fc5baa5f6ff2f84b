package statestore

import (
	"context"
	"sync"
	"time"

	"git.home.luguber.info/inful/sitegen/internal/errors"
	"git.home.luguber.info/inful/sitegen/internal/pipeline"
)

// ErrNotFound is returned when no snapshot exists for a project.
var ErrNotFound = errors.New(errors.CategoryStorage, errors.SeverityError,
	"pipeline run not found")

// MemoryStore is an in-memory Store for tests and ad hoc runs.
type MemoryStore struct {
	mu   sync.RWMutex
	runs map[string]Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{runs: make(map[string]Record)}
}

func (s *MemoryStore) Save(_ context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *rec
	cp.State = append([]byte(nil), rec.State...)
	s.runs[rec.ProjectID] = cp
	return nil
}

func (s *MemoryStore) Load(_ context.Context, projectID string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.runs[projectID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := rec
	cp.State = append([]byte(nil), rec.State...)
	return &cp, nil
}

func (s *MemoryStore) ListStale(_ context.Context, cutoff time.Time) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Record
	for _, rec := range s.runs {
		if rec.Status == pipeline.RunStatusRunning && rec.UpdatedAt.Before(cutoff) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *MemoryStore) Delete(_ context.Context, projectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.runs, projectID)
	return nil
}

func (s *MemoryStore) Close() error { return nil }
