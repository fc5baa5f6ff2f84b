// Package service wires the pipeline engine to persistence, metrics and the
// optional NATS event broadcast. It owns the one-runner-per-project rule:
// a project can have at most one generation run in flight at a time.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/sitegen/internal/broadcast"
	"git.home.luguber.info/inful/sitegen/internal/config"
	"git.home.luguber.info/inful/sitegen/internal/errors"
	"git.home.luguber.info/inful/sitegen/internal/localgen"
	"git.home.luguber.info/inful/sitegen/internal/metrics"
	"git.home.luguber.info/inful/sitegen/internal/pipeline"
	"git.home.luguber.info/inful/sitegen/internal/statestore"
)

// GenerationRequest starts a new site generation run.
type GenerationRequest struct {
	// ProjectID identifies the run. Generated when empty.
	ProjectID   string
	CompanyName string
	Industry    string
	Description string
	Domain      string
}

// Service coordinates pipeline runs.
type Service struct {
	cfg       *config.Config
	store     statestore.Store
	publisher *broadcast.Publisher
	recorder  metrics.Recorder

	mu     sync.Mutex
	active map[string]struct{}
}

// New creates a Service. publisher may be nil when broadcasting is disabled;
// recorder defaults to the noop recorder when nil.
func New(cfg *config.Config, store statestore.Store, publisher *broadcast.Publisher, recorder metrics.Recorder) *Service {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Service{
		cfg:       cfg,
		store:     store,
		publisher: publisher,
		recorder:  recorder,
		active:    make(map[string]struct{}),
	}
}

// StartGeneration runs the pipeline for a new project from the first stage.
// In vibe mode the run stops at the first interactive pause; the persisted
// snapshot can then be resumed.
func (s *Service) StartGeneration(ctx context.Context, req GenerationRequest) (*pipeline.PersistableSummary, error) {
	if req.CompanyName == "" {
		return nil, errors.New(errors.CategoryConfig, errors.SeverityError,
			"company name is required")
	}
	if req.ProjectID == "" {
		req.ProjectID = uuid.NewString()
	}

	if err := s.acquire(req.ProjectID); err != nil {
		return nil, err
	}
	defer s.release(req.ProjectID)

	runner := s.newRunner(req.Domain)
	detach := s.attach(runner, req.ProjectID)
	defer detach()

	runner.Initialize(req.ProjectID)
	slog.Info("Generation started",
		slog.String("project", req.ProjectID),
		slog.String("company", req.CompanyName))

	start := time.Now()
	_, err := runner.RunStage(ctx, pipeline.StageInput, pipeline.InputInput{
		ProjectID:   req.ProjectID,
		CompanyName: req.CompanyName,
		Domain:      req.Domain,
		Industry:    req.Industry,
		Description: req.Description,
	})
	if err == nil {
		err = runner.RunFromCurrent(ctx)
	}

	summary := runner.ToPersistableSummary()
	s.recorder.PipelineOutcome(summary.Status)
	s.recorder.PipelineDuration(time.Since(start))

	if persistErr := s.persist(ctx, runner); persistErr != nil {
		slog.Error("Persist run snapshot", slog.Any("error", persistErr))
		if err == nil {
			err = persistErr
		}
	}
	return summary, err
}

// Resume reloads a persisted run and continues it from its current stage.
func (s *Service) Resume(ctx context.Context, projectID string) (*pipeline.PersistableSummary, error) {
	if err := s.acquire(projectID); err != nil {
		return nil, err
	}
	defer s.release(projectID)

	rec, err := s.store.Load(ctx, projectID)
	if err != nil {
		return nil, err
	}

	runner := s.newRunner("")
	if err := runner.ImportState(rec.State); err != nil {
		return nil, err
	}
	detach := s.attach(runner, projectID)
	defer detach()

	slog.Info("Generation resumed",
		slog.String("project", projectID),
		slog.String("stage", string(runner.State().CurrentStage)))

	runErr := runner.RunFromCurrent(ctx)

	summary := runner.ToPersistableSummary()
	s.recorder.PipelineOutcome(summary.Status)

	if persistErr := s.persist(ctx, runner); persistErr != nil {
		slog.Error("Persist run snapshot", slog.Any("error", persistErr))
		if runErr == nil {
			runErr = persistErr
		}
	}
	return summary, runErr
}

// Status returns the persisted snapshot for a project.
func (s *Service) Status(ctx context.Context, projectID string) (*statestore.Record, error) {
	return s.store.Load(ctx, projectID)
}

// Close releases the broadcast connection. The store is closed by its owner.
func (s *Service) Close() {
	if s.publisher != nil {
		s.publisher.Close()
	}
}

func (s *Service) newRunner(domain string) *pipeline.Runner {
	if domain == "" {
		domain = s.cfg.Pipeline.Domain
	}
	runner := pipeline.NewRunner(pipeline.Options{
		VibeMode: s.cfg.Pipeline.VibeMode,
		Domain:   domain,
		Platform: s.cfg.Pipeline.Platform,
	})
	localgen.Register(runner, localgen.Options{
		OutputDir:    s.cfg.Output.Directory,
		CommitExport: s.cfg.Output.CommitExport,
	})
	return runner
}

// attach subscribes the service's side effects to the runner: a snapshot is
// persisted after every lifecycle event, stage results feed the metrics
// recorder, and events are broadcast when a publisher is configured.
func (s *Service) attach(runner *pipeline.Runner, projectID string) func() {
	return runner.AddEventListener(func(evt pipeline.Event) {
		switch e := evt.(type) {
		case pipeline.StageCompleted:
			s.recorder.StageResult(e.Stage, "completed")
			s.recorder.StageDuration(e.Stage, time.Duration(e.Duration)*time.Millisecond)
		case pipeline.StageFailed:
			s.recorder.StageResult(e.Stage, "failed")
		case pipeline.StageSkipped:
			s.recorder.StageResult(e.Stage, "skipped")
		}

		if err := s.persist(context.Background(), runner); err != nil {
			slog.Error("Persist run snapshot",
				slog.String("project", projectID),
				slog.String("event", string(evt.Kind())),
				slog.Any("error", err))
		}

		if s.publisher != nil {
			if err := s.publisher.Publish(projectID, evt); err != nil {
				slog.Warn("Broadcast event",
					slog.String("project", projectID),
					slog.String("event", string(evt.Kind())),
					slog.Any("error", err))
			}
		}
	})
}

func (s *Service) persist(ctx context.Context, runner *pipeline.Runner) error {
	summary := runner.ToPersistableSummary()
	if summary == nil {
		return nil
	}
	state, err := runner.ExportState()
	if err != nil {
		return err
	}
	return s.store.Save(ctx, &statestore.Record{
		ProjectID:    summary.ProjectID,
		CurrentStage: summary.CurrentStage,
		Status:       summary.Status,
		Progress:     summary.Progress,
		State:        state,
		Error:        summary.Error,
		StartedAt:    summary.StartedAt,
		UpdatedAt:    time.Now(),
	})
}

func (s *Service) acquire(projectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.active[projectID]; busy {
		return errors.New(errors.CategoryOrchestration, errors.SeverityError,
			fmt.Sprintf("project %s already has a run in flight", projectID))
	}
	s.active[projectID] = struct{}{}
	return nil
}

func (s *Service) release(projectID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.active, projectID)
}
