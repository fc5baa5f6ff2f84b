package statestore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitegen/internal/pipeline"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testRecord(projectID string, status pipeline.RunStatus, updatedAt time.Time) *Record {
	return &Record{
		ProjectID:    projectID,
		CurrentStage: "RESEARCH",
		Status:       status,
		Progress:     20,
		State:        []byte(`{"projectId":"` + projectID + `"}`),
		StartedAt:    updatedAt.Add(-time.Minute),
		UpdatedAt:    updatedAt,
	}
}

func TestSQLiteStore_SaveAndLoad(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	now := time.Now().Truncate(time.Second)
	rec := testRecord("p-1", pipeline.RunStatusRunning, now)
	require.NoError(t, store.Save(ctx, rec))

	loaded, err := store.Load(ctx, "p-1")
	require.NoError(t, err)
	require.Equal(t, "p-1", loaded.ProjectID)
	require.Equal(t, "RESEARCH", loaded.CurrentStage)
	require.Equal(t, pipeline.RunStatusRunning, loaded.Status)
	require.Equal(t, 20, loaded.Progress)
	require.JSONEq(t, `{"projectId":"p-1"}`, string(loaded.State))
	require.Equal(t, now.Unix(), loaded.UpdatedAt.Unix())
}

func TestSQLiteStore_SaveUpserts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, store.Save(ctx, testRecord("p-1", pipeline.RunStatusRunning, now)))

	updated := testRecord("p-1", pipeline.RunStatusCompleted, now.Add(time.Minute))
	updated.CurrentStage = "PUBLISH"
	updated.Progress = 100
	require.NoError(t, store.Save(ctx, updated))

	loaded, err := store.Load(ctx, "p-1")
	require.NoError(t, err)
	require.Equal(t, pipeline.RunStatusCompleted, loaded.Status)
	require.Equal(t, "PUBLISH", loaded.CurrentStage)
	require.Equal(t, 100, loaded.Progress)
}

func TestSQLiteStore_LoadNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Load(context.Background(), "nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_ListStale(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	// Old and running: stale.
	require.NoError(t, store.Save(ctx, testRecord("stale", pipeline.RunStatusRunning, now.Add(-2*time.Hour))))
	// Old but finished: not stale.
	require.NoError(t, store.Save(ctx, testRecord("done", pipeline.RunStatusCompleted, now.Add(-2*time.Hour))))
	// Running but fresh: not stale.
	require.NoError(t, store.Save(ctx, testRecord("fresh", pipeline.RunStatusRunning, now)))

	stale, err := store.ListStale(ctx, now.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, stale, 1)
	require.Equal(t, "stale", stale[0].ProjectID)
}

func TestSQLiteStore_Delete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testRecord("p-1", pipeline.RunStatusRunning, time.Now())))
	require.NoError(t, store.Delete(ctx, "p-1"))

	_, err := store.Load(ctx, "p-1")
	require.True(t, errors.Is(err, ErrNotFound))

	// Deleting an absent run is not an error.
	require.NoError(t, store.Delete(ctx, "p-1"))
}
