package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/sitegen/internal/config"
	"git.home.luguber.info/inful/sitegen/internal/statestore"
)

// Janitor prunes runs that were left RUNNING but have not been updated for
// longer than the configured max age, typically after a crash mid-run.
type Janitor struct {
	store     statestore.Store
	maxAge    time.Duration
	scheduler gocron.Scheduler
}

// NewJanitor creates a janitor and schedules the sweep at the configured
// interval. It does not start sweeping until Start is called.
func NewJanitor(store statestore.Store, cfg config.JanitorConfig) (*Janitor, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	j := &Janitor{store: store, maxAge: cfg.MaxAge, scheduler: scheduler}

	_, err = scheduler.NewJob(
		gocron.DurationJob(cfg.Every),
		gocron.NewTask(j.sweep),
	)
	if err != nil {
		return nil, err
	}
	return j, nil
}

// Start begins periodic sweeping.
func (j *Janitor) Start() {
	j.scheduler.Start()
}

// Stop shuts the scheduler down, waiting for a running sweep to finish.
func (j *Janitor) Stop() {
	if err := j.scheduler.Shutdown(); err != nil {
		slog.Warn("Janitor shutdown", slog.Any("error", err))
	}
}

func (j *Janitor) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cutoff := time.Now().Add(-j.maxAge)
	stale, err := j.store.ListStale(ctx, cutoff)
	if err != nil {
		slog.Error("Janitor list stale runs", slog.Any("error", err))
		return
	}

	for _, rec := range stale {
		if err := j.store.Delete(ctx, rec.ProjectID); err != nil {
			slog.Error("Janitor delete stale run",
				slog.String("project", rec.ProjectID),
				slog.Any("error", err))
			continue
		}
		slog.Info("Pruned stale run",
			slog.String("project", rec.ProjectID),
			slog.Time("updated_at", rec.UpdatedAt))
	}
}
