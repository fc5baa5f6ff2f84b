package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"git.home.luguber.info/inful/sitegen/internal/errors"
)

// Handler performs a stage's real work (AI call, build, deploy). It must
// return an error on failure rather than a sentinel output. The returned
// output must satisfy the stage's output schema.
type Handler func(ctx context.Context, input any) (any, error)

// Options configures a Runner at construction.
type Options struct {
	// VibeMode forces a cooperative pause before interactive stages.
	VibeMode bool
	// Domain overrides the derived <slug>.example.com site domain.
	Domain string
	// Platform is the deployment target. Defaults to vercel.
	Platform Platform
}

// Runner drives one pipeline run through the fixed stage sequence. It owns
// exactly one PipelineState at a time and must not be shared across
// concurrent generation runs; callers must not overlap stage executions on
// one instance. The only blocking point is the handler invocation.
type Runner struct {
	state     *PipelineState
	validator *Validator
	expecter  *ExpectationGenerator
	handlers  map[Stage]Handler
	listeners listenerRegistry
	opts      Options
}

// NewRunner creates a Runner with the given options.
func NewRunner(opts Options) *Runner {
	if opts.Platform == "" {
		opts.Platform = PlatformVercel
	}
	return &Runner{
		validator: NewValidator(),
		expecter:  NewExpectationGenerator(opts.Platform),
		handlers:  make(map[Stage]Handler),
		opts:      opts,
	}
}

// RegisterHandler associates the handler for a stage, replacing any previous
// registration.
func (r *Runner) RegisterHandler(stage Stage, h Handler) {
	r.handlers[stage] = h
}

// AddEventListener subscribes to lifecycle events and returns an
// unsubscribe func. Listeners run synchronously in registration order.
func (r *Runner) AddEventListener(fn EventListener) func() {
	return r.listeners.add(fn)
}

// Initialize creates a fresh PipelineState for a project with every stage
// pending and the first stage current.
func (r *Runner) Initialize(projectID string) *PipelineState {
	now := time.Now()
	stages := make(map[Stage]*StageState, StageCount())
	for _, s := range stageOrder {
		stages[s] = &StageState{Status: StatusPending}
	}
	r.state = &PipelineState{
		ProjectID:    projectID,
		CurrentStage: StageInput,
		StartedAt:    now,
		UpdatedAt:    now,
		Stages:       stages,
		Progress:     Progress{Completed: 0, Total: StageCount(), Percentage: 0},
		VibeMode:     r.opts.VibeMode,
	}
	return r.state
}

// State returns the current pipeline state, or nil before Initialize.
func (r *Runner) State() *PipelineState {
	return r.state
}

// LoadState adopts an existing state, e.g. one reloaded from storage.
func (r *Runner) LoadState(state *PipelineState) {
	r.state = state
}

// SetVibeMode toggles the cooperative-pause behavior at runtime.
func (r *Runner) SetVibeMode(enabled bool) {
	r.opts.VibeMode = enabled
	if r.state != nil {
		r.state.VibeMode = enabled
	}
}

// Validator exposes the runner's validator for introspection helpers.
func (r *Runner) Validator() *Validator {
	return r.validator
}

func (r *Runner) requireState() error {
	if r.state == nil {
		return errors.New(errors.CategoryOrchestration, errors.SeverityError,
			"pipeline not initialized")
	}
	return nil
}

// RunStage validates the input, invokes the stage handler, validates its
// output, computes the next-stage expectation and commits the completed
// state atomically. Validation failures and handler errors are surfaced to
// the caller; nothing is ever swallowed.
func (r *Runner) RunStage(ctx context.Context, stage Stage, input any) (any, error) {
	if err := r.requireState(); err != nil {
		return nil, err
	}

	meta := Metadata(stage)

	if r.opts.VibeMode && meta.IsInteractive {
		r.listeners.emit(InteractivePause{baseEvent{time.Now()}, stage})
	}

	handler, ok := r.handlers[stage]
	if !ok {
		return nil, errors.Newf(errors.CategoryOrchestration, errors.SeverityError,
			"no handler registered for stage: %s", stage)
	}

	if vr := r.validator.ValidateInput(stage, input); !vr.Valid {
		return nil, errors.Newf(errors.CategoryValidation, errors.SeverityError,
			"invalid input for stage %s: %s", stage, strings.Join(vr.Errors, ", "))
	}

	start := time.Now()
	st := r.state.Stages[stage]
	st.Status = StatusRunning
	st.StartedAt = &start
	r.state.CurrentStage = stage
	r.state.UpdatedAt = start

	slog.Info("Stage started", slog.String("stage", string(stage)),
		slog.String("project", r.state.ProjectID))
	r.listeners.emit(StageStarted{baseEvent{start}, stage})

	output, err := handler(ctx, input)
	if err != nil {
		st.Status = StatusFailed
		st.Error = &StageError{
			Message:     err.Error(),
			Code:        "STAGE_ERROR",
			Recoverable: meta.CanRetry,
		}
		r.state.UpdatedAt = time.Now()

		slog.Error("Stage failed", slog.String("stage", string(stage)),
			slog.Any("error", err))
		r.listeners.emit(StageFailed{baseEvent{time.Now()}, stage, err.Error()})
		return nil, err
	}

	duration := time.Since(start).Milliseconds()

	// An invalid output is a contract failure, not a handler failure: the
	// stage stays running and no partial result is committed.
	if vr := r.validator.ValidateOutput(stage, output); !vr.Valid {
		return nil, errors.Newf(errors.CategoryValidation, errors.SeverityError,
			"invalid output from stage %s: %s", stage, strings.Join(vr.Errors, ", "))
	}

	typed, err := decodeOutput(stage, output)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, errors.SeverityError,
			fmt.Sprintf("decode output for stage %s", stage))
	}

	expectation, err := r.expecter.Generate(stage, typed)
	if err != nil {
		return nil, err
	}

	completedAt := time.Now()
	st.Status = StatusCompleted
	st.CompletedAt = &completedAt
	st.Duration = duration
	st.Output = typed
	st.Expectation = expectation
	st.Error = nil
	r.updateProgress()

	slog.Info("Stage completed", slog.String("stage", string(stage)),
		slog.Int64("duration_ms", duration))
	r.listeners.emit(StageCompleted{baseEvent{completedAt}, stage, duration})
	r.listeners.emit(ExpectationGenerated{baseEvent{completedAt}, stage, expectation})

	return typed, nil
}

// RunFromCurrent drives the pipeline from the current stage to the end.
// Completed and skipped stages are passed over. Before an interactive stage
// in vibe mode it emits interactive_pause and returns without running it, a
// cooperative yield to the caller.
func (r *Runner) RunFromCurrent(ctx context.Context) error {
	if err := r.requireState(); err != nil {
		return err
	}

	startIdx := IndexOf(r.state.CurrentStage)
	for i := startIdx; i < len(stageOrder); i++ {
		stage := stageOrder[i]

		switch r.state.Stages[stage].Status {
		case StatusCompleted, StatusSkipped:
			continue
		}

		if r.opts.VibeMode && Metadata(stage).IsInteractive {
			r.listeners.emit(InteractivePause{baseEvent{time.Now()}, stage})
			return nil
		}

		input := r.buildStageInput(stage)
		if _, err := r.RunStage(ctx, stage, input); err != nil {
			r.listeners.emit(PipelineFailed{baseEvent{time.Now()}, stage, err.Error()})
			return err
		}
	}

	total := time.Since(r.state.StartedAt).Milliseconds()
	slog.Info("Pipeline completed", slog.String("project", r.state.ProjectID),
		slog.Int64("total_ms", total))
	r.listeners.emit(PipelineCompleted{baseEvent{time.Now()}, total})
	return nil
}

// RunNext runs the first stage still pending at or after the current stage
// and returns the catalog successor of the stage it ran, or "" when nothing
// is pending. A nil input is projected from prior stage outputs; the input
// stage needs caller-supplied data.
func (r *Runner) RunNext(ctx context.Context, input any) (Stage, error) {
	if err := r.requireState(); err != nil {
		return "", err
	}

	var next Stage
	for i := IndexOf(r.state.CurrentStage); i < len(stageOrder); i++ {
		if r.state.Stages[stageOrder[i]].Status == StatusPending {
			next = stageOrder[i]
			break
		}
	}
	if next == "" {
		return "", nil
	}

	if input == nil {
		input = r.buildStageInput(next)
	}
	if _, err := r.RunStage(ctx, next, input); err != nil {
		return "", err
	}
	return NextOf(next), nil
}

// SkipStage marks a skippable stage as skipped without invoking its handler
// or expectation rule.
func (r *Runner) SkipStage(stage Stage) error {
	if err := r.requireState(); err != nil {
		return err
	}
	if !Metadata(stage).CanSkip {
		return errors.Newf(errors.CategoryOrchestration, errors.SeverityError,
			"stage %s cannot be skipped", stage)
	}

	now := time.Now()
	r.state.Stages[stage] = &StageState{Status: StatusSkipped, CompletedAt: &now}

	slog.Info("Stage skipped", slog.String("stage", string(stage)))
	r.listeners.emit(StageSkipped{baseEvent{now}, stage})
	r.updateProgress()
	return nil
}

// RetryStage resets a failed, retryable stage to pending and runs it again
// with freshly computed input.
func (r *Runner) RetryStage(ctx context.Context, stage Stage) error {
	if err := r.requireState(); err != nil {
		return err
	}
	if !Metadata(stage).CanRetry {
		return errors.Newf(errors.CategoryOrchestration, errors.SeverityError,
			"stage %s cannot be retried", stage)
	}
	if r.state.Stages[stage].Status != StatusFailed {
		return errors.Newf(errors.CategoryOrchestration, errors.SeverityError,
			"stage %s is not in failed state", stage)
	}

	r.state.Stages[stage] = &StageState{Status: StatusPending}
	r.state.CurrentStage = stage

	_, err := r.RunStage(ctx, stage, r.buildStageInput(stage))
	return err
}

// typed prior-output accessors; decodeOutput guarantees pointer records.

func (r *Runner) inputOutput() *InputOutput {
	out, _ := r.state.Stages[StageInput].Output.(*InputOutput)
	return out
}

func (r *Runner) researchOutput() *ResearchOutput {
	out, _ := r.state.Stages[StageResearch].Output.(*ResearchOutput)
	return out
}

func (r *Runner) designOutput() *DesignOutput {
	out, _ := r.state.Stages[StageDesign].Output.(*DesignOutput)
	return out
}

func (r *Runner) imagesOutput() *ImagesOutput {
	out, _ := r.state.Stages[StageImages].Output.(*ImagesOutput)
	return out
}

func (r *Runner) contentOutput() *ContentOutput {
	out, _ := r.state.Stages[StageContent].Output.(*ContentOutput)
	return out
}

func (r *Runner) seoOutput() *SeoOutput {
	out, _ := r.state.Stages[StageSeo].Output.(*SeoOutput)
	return out
}

func (r *Runner) buildOutput() *BuildOutput {
	out, _ := r.state.Stages[StageBuild].Output.(*BuildOutput)
	return out
}

func (r *Runner) uiUxOutput() *UiUxOutput {
	out, _ := r.state.Stages[StageUiUx].Output.(*UiUxOutput)
	return out
}

func (r *Runner) siteDomain() string {
	if r.opts.Domain != "" {
		return r.opts.Domain
	}
	slug := "project"
	if in := r.inputOutput(); in != nil && in.Slug != "" {
		slug = in.Slug
	}
	return fmt.Sprintf("%s.example.com", slug)
}

// buildStageInput projects prior stages' outputs and runner configuration
// into the typed input each stage's schema expects. One closed projection
// per stage, kept in lockstep with the input schema tables.
func (r *Runner) buildStageInput(stage Stage) any {
	projectID := r.state.ProjectID

	switch stage {
	case StageInput:
		// The input stage receives its data from an external source.
		return InputInput{ProjectID: projectID}

	case StageResearch:
		in := ResearchInput{ProjectID: projectID}
		if prev := r.inputOutput(); prev != nil {
			in.Company = prev.Company
			in.Pages = prev.Pages
		}
		return in

	case StageDesign:
		in := DesignInput{ProjectID: projectID, Research: r.researchOutput()}
		if prev := r.inputOutput(); prev != nil {
			in.Company = prev.Company
		}
		return in

	case StageImages:
		in := ImagesInput{ProjectID: projectID}
		if prev := r.inputOutput(); prev != nil {
			in.Company = prev.Company
			in.Pages = prev.Pages
		}
		if design := r.designOutput(); design != nil {
			in.Design = *design
		}
		return in

	case StageContent:
		in := ContentInput{
			ProjectID: projectID,
			Research:  r.researchOutput(),
			Images:    r.imagesOutput(),
		}
		if prev := r.inputOutput(); prev != nil {
			in.Company = prev.Company
			in.Pages = prev.Pages
		}
		if design := r.designOutput(); design != nil {
			in.Design = *design
		}
		return in

	case StageSeo:
		in := SeoInput{ProjectID: projectID, Domain: r.siteDomain()}
		if prev := r.inputOutput(); prev != nil {
			in.Company = prev.Company
			in.Pages = prev.Pages
		}
		if content := r.contentOutput(); content != nil {
			in.Content = *content
		}
		return in

	case StageBuild:
		in := BuildInput{ProjectID: projectID}
		in.Config.Domain = r.siteDomain()
		in.Config.Seo.Title = "Web Sitesi"
		if prev := r.inputOutput(); prev != nil {
			in.Slug = prev.Slug
			in.Config.Company = prev.Company
			in.Config.Pages = prev.Pages
			if prev.Company.Name != "" {
				in.Config.Seo.Title = prev.Company.Name
			}
			in.Config.Seo.Description = prev.Company.Description
		}
		if research := r.researchOutput(); research != nil {
			in.Config.Seo.Keywords = research.Keywords.Primary
		}
		if design := r.designOutput(); design != nil {
			in.Config.Design = *design
		}
		if content := r.contentOutput(); content != nil {
			in.Content = *content
		}
		if seo := r.seoOutput(); seo != nil {
			in.SeoFiles = seo.Files
		}
		return in

	case StageUiUx:
		in := UiUxInput{ProjectID: projectID}
		if build := r.buildOutput(); build != nil {
			in.Build = *build
			in.PreviewURL = build.PreviewURL
		}
		if design := r.designOutput(); design != nil {
			in.Design = *design
		}
		return in

	case StageReview:
		in := ReviewInput{ProjectID: projectID}
		if prev := r.inputOutput(); prev != nil {
			in.Company = prev.Company
		}
		if content := r.contentOutput(); content != nil {
			in.Content = *content
		}
		if build := r.buildOutput(); build != nil {
			in.Build = *build
		}
		if uiux := r.uiUxOutput(); uiux != nil {
			in.UiUx = *uiux
		}
		return in

	case StagePublish:
		in := PublishInput{
			ProjectID: projectID,
			Domain:    r.siteDomain(),
			Platform:  r.opts.Platform,
		}
		if prev := r.inputOutput(); prev != nil {
			in.Slug = prev.Slug
		}
		if build := r.buildOutput(); build != nil {
			in.OutputPath = build.OutputPath
			in.PreviewURL = build.PreviewURL
		}
		return in
	}

	return nil
}

func (r *Runner) updateProgress() {
	completed := 0
	for _, s := range stageOrder {
		status := r.state.Stages[s].Status
		if status == StatusCompleted || status == StatusSkipped {
			completed++
		}
	}
	r.state.Progress = Progress{
		Completed:  completed,
		Total:      StageCount(),
		Percentage: int(math.Round(float64(completed) / float64(StageCount()) * 100)),
	}
	r.state.UpdatedAt = time.Now()
}

// StageSummary is a read-only projection of one stage for UI rendering.
type StageSummary struct {
	Stage          Stage       `json:"stage"`
	Status         StageStatus `json:"status"`
	Duration       int64       `json:"duration,omitempty"`
	HasOutput      bool        `json:"hasOutput"`
	HasExpectation bool        `json:"hasExpectation"`
	IsInteractive  bool        `json:"isInteractive"`
}

// GetStageSummary projects all stages' status and flags in catalog order.
func (r *Runner) GetStageSummary() []StageSummary {
	if r.state == nil {
		return nil
	}
	out := make([]StageSummary, 0, StageCount())
	for _, s := range stageOrder {
		st := r.state.Stages[s]
		out = append(out, StageSummary{
			Stage:          s,
			Status:         st.Status,
			Duration:       st.Duration,
			HasOutput:      st.Output != nil,
			HasExpectation: st.Expectation != nil,
			IsInteractive:  Metadata(s).IsInteractive,
		})
	}
	return out
}

// NextExpectation returns the forecast attached to the current stage, or nil.
func (r *Runner) NextExpectation() *Expectation {
	if r.state == nil {
		return nil
	}
	return r.state.Stages[r.state.CurrentStage].Expectation
}

// ExportState serializes the entire pipeline state as JSON.
func (r *Runner) ExportState() ([]byte, error) {
	if err := r.requireState(); err != nil {
		return nil, err
	}
	return json.MarshalIndent(r.state, "", "  ")
}

// ImportState deserializes a previously exported state, re-decoding every
// stage output into its typed record. Missing stages are filled as pending.
func (r *Runner) ImportState(data []byte) error {
	var state PipelineState
	if err := json.Unmarshal(data, &state); err != nil {
		return errors.Wrap(err, errors.CategoryStorage, errors.SeverityError,
			"import pipeline state")
	}
	if state.Stages == nil {
		state.Stages = make(map[Stage]*StageState, StageCount())
	}
	for _, s := range stageOrder {
		st, ok := state.Stages[s]
		if !ok || st == nil {
			state.Stages[s] = &StageState{Status: StatusPending}
			continue
		}
		typed, err := decodeOutput(s, st.Output)
		if err != nil {
			return errors.Wrap(err, errors.CategoryStorage, errors.SeverityError,
				fmt.Sprintf("decode output for stage %s", s))
		}
		st.Output = typed
	}
	r.state = &state
	return nil
}

// RunStatus is the externally visible status of a run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "RUNNING"
	RunStatusCompleted RunStatus = "COMPLETED"
	RunStatusFailed    RunStatus = "FAILED"
)

// PersistableSummary is a storage-friendly projection of the run, carrying
// no engine internals beyond the raw stage map.
type PersistableSummary struct {
	ProjectID    string                `json:"projectId"`
	CurrentStage string                `json:"currentStage"`
	Status       RunStatus             `json:"status"`
	Stages       map[Stage]*StageState `json:"stages"`
	Progress     int                   `json:"progress"`
	StartedAt    time.Time             `json:"startedAt"`
	CompletedAt  *time.Time            `json:"completedAt,omitempty"`
	Error        string                `json:"error,omitempty"`
}

// ToPersistableSummary derives the external run status plus the first failed
// stage's error message for a persistence layer.
func (r *Runner) ToPersistableSummary() *PersistableSummary {
	if r.state == nil {
		return nil
	}

	allDone := true
	var firstFailed Stage
	for _, s := range stageOrder {
		status := r.state.Stages[s].Status
		if status != StatusCompleted && status != StatusSkipped {
			allDone = false
		}
		if status == StatusFailed && firstFailed == "" {
			firstFailed = s
		}
	}

	status := RunStatusRunning
	var completedAt *time.Time
	switch {
	case allDone:
		status = RunStatusCompleted
		now := time.Now()
		completedAt = &now
	case firstFailed != "":
		status = RunStatusFailed
	}

	errMsg := ""
	if firstFailed != "" {
		if se := r.state.Stages[firstFailed].Error; se != nil {
			errMsg = se.Message
		}
	}

	return &PersistableSummary{
		ProjectID:    r.state.ProjectID,
		CurrentStage: strings.ToUpper(string(r.state.CurrentStage)),
		Status:       status,
		Stages:       r.state.Stages,
		Progress:     r.state.Progress.Percentage,
		StartedAt:    r.state.StartedAt,
		CompletedAt:  completedAt,
		Error:        errMsg,
	}
}
