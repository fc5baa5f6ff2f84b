package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	sgerrors "git.home.luguber.info/inful/sitegen/internal/errors"
)

// stubOutput returns a minimal schema-valid output for a stage.
func stubOutput(stage Stage) any {
	switch stage {
	case StageInput:
		return &InputOutput{
			ProjectID: "p-1",
			Slug:      "acme",
			Company:   Company{Name: "Acme", Industry: "insaat"},
			Pages: []Page{
				{Name: "Ana Sayfa", Slug: "homepage", Type: "homepage"},
				{Name: "Hizmetler", Slug: "services", Type: "services"},
			},
		}
	case StageResearch:
		return &ResearchOutput{
			ProjectID: "p-1",
			Keywords:  Keywords{Primary: []string{"acme"}},
		}
	case StageDesign:
		return &DesignOutput{
			ProjectID:  "p-1",
			Colors:     DesignColors{Primary: "#1E40AF"},
			Typography: DesignTypography{HeadingFont: "Inter", BodyFont: "Inter"},
			Layout:     DesignLayout{Style: "modern", HeroType: "gradient"},
		}
	case StageImages:
		out := &ImagesOutput{
			ProjectID:    "p-1",
			Images:       []GeneratedImage{{ID: "i-1", Type: "hero", URL: "u", AltText: "a"}},
			TotalImages:  1,
			HeroImages:   []GeneratedImage{{ID: "i-1"}},
			FeatureIcons: []GeneratedImage{{ID: "i-2"}},
		}
		return out
	case StageContent:
		return &ContentOutput{
			ProjectID:      "p-1",
			Pages:          []PageContent{{Slug: "homepage", Type: "homepage", Title: "Ana Sayfa"}},
			TotalWordCount: 150,
		}
	case StageSeo:
		return &SeoOutput{
			ProjectID:   "p-1",
			Files:       []SeoFile{{Filename: "robots.txt", Content: "User-agent: *"}},
			SitemapURLs: []string{"https://acme.example.com/"},
		}
	case StageBuild:
		return &BuildOutput{ProjectID: "p-1", Status: "ready_for_review"}
	case StageUiUx:
		return &UiUxOutput{
			ProjectID:      "p-1",
			OverallScore:   90,
			Checks:         []UiUxCheck{{Category: "seo", Name: "Basliklar", Status: "pass", Score: 100}},
			ReadyForReview: true,
		}
	case StageReview:
		return &ReviewOutput{
			ProjectID:       "p-1",
			OverallScore:    88,
			Checks:          []ReviewCheck{{Category: "content", Name: "Kapsam", Status: "pass", Score: 90}},
			ReadyForPublish: true,
		}
	case StagePublish:
		return &PublishOutput{
			ProjectID:    "p-1",
			DeploymentID: "d-1",
			URL:          "https://acme.example.com",
		}
	}
	return nil
}

func stubHandler(stage Stage) Handler {
	return func(_ context.Context, _ any) (any, error) {
		return stubOutput(stage), nil
	}
}

func newTestRunner(t *testing.T, opts Options) *Runner {
	t.Helper()
	r := NewRunner(opts)
	for _, stage := range Stages() {
		r.RegisterHandler(stage, stubHandler(stage))
	}
	r.Initialize("p-1")
	return r
}

func TestInitialize(t *testing.T) {
	r := newTestRunner(t, Options{})
	state := r.State()

	require.Equal(t, "p-1", state.ProjectID)
	require.Equal(t, StageInput, state.CurrentStage)
	require.Len(t, state.Stages, StageCount())
	for _, st := range state.Stages {
		require.Equal(t, StatusPending, st.Status)
	}
	require.Equal(t, 0, state.Progress.Percentage)
}

func TestRunStage_CompletesAndAdvancesProgress(t *testing.T) {
	r := newTestRunner(t, Options{})

	out, err := r.RunStage(context.Background(), StageInput, InputInput{
		ProjectID: "p-1", CompanyName: "Acme",
	})
	require.NoError(t, err)
	require.IsType(t, &InputOutput{}, out)

	st := r.State().Stages[StageInput]
	require.Equal(t, StatusCompleted, st.Status)
	require.NotNil(t, st.Output)
	require.NotNil(t, st.Expectation)
	require.Equal(t, StageResearch, st.Expectation.NextStage)

	// One of ten stages done.
	require.Equal(t, 10, r.State().Progress.Percentage)
}

func TestRunStage_InvalidInputLeavesStateUntouched(t *testing.T) {
	r := newTestRunner(t, Options{})

	_, err := r.RunStage(context.Background(), StageInput, InputInput{ProjectID: "p-1"})
	require.Error(t, err)
	require.True(t, sgerrors.IsCategory(err, sgerrors.CategoryValidation))
	require.Equal(t, StatusPending, r.State().Stages[StageInput].Status)
}

func TestRunStage_NoHandler(t *testing.T) {
	r := NewRunner(Options{})
	r.Initialize("p-1")

	_, err := r.RunStage(context.Background(), StageInput, InputInput{
		ProjectID: "p-1", CompanyName: "Acme",
	})
	require.Error(t, err)
	require.True(t, sgerrors.IsCategory(err, sgerrors.CategoryOrchestration))
}

func TestRunStage_HandlerErrorMarksFailed(t *testing.T) {
	r := newTestRunner(t, Options{})
	_, err := r.RunStage(context.Background(), StageInput, InputInput{
		ProjectID: "p-1", CompanyName: "Acme",
	})
	require.NoError(t, err)

	bootErr := sgerrors.New(sgerrors.CategoryHandler, sgerrors.SeverityError, "disk full")
	r.RegisterHandler(StageResearch, func(_ context.Context, _ any) (any, error) {
		return nil, bootErr
	})

	_, err = r.RunStage(context.Background(), StageResearch, r.buildStageInput(StageResearch))
	require.ErrorIs(t, err, bootErr)

	st := r.State().Stages[StageResearch]
	require.Equal(t, StatusFailed, st.Status)
	require.NotNil(t, st.Error)
	require.Equal(t, "STAGE_ERROR", st.Error.Code)
	require.True(t, st.Error.Recoverable)
}

func TestRunStage_InvalidOutputStaysRunning(t *testing.T) {
	r := newTestRunner(t, Options{})
	_, err := r.RunStage(context.Background(), StageInput, InputInput{
		ProjectID: "p-1", CompanyName: "Acme",
	})
	require.NoError(t, err)
	_, err = r.RunStage(context.Background(), StageResearch, r.buildStageInput(StageResearch))
	require.NoError(t, err)

	// Handler returns a non-hex primary color, violating the output schema.
	r.RegisterHandler(StageDesign, func(_ context.Context, _ any) (any, error) {
		return &DesignOutput{
			ProjectID:  "p-1",
			Colors:     DesignColors{Primary: "blue"},
			Typography: DesignTypography{HeadingFont: "Inter", BodyFont: "Inter"},
			Layout:     DesignLayout{Style: "modern", HeroType: "gradient"},
		}, nil
	})

	_, err = r.RunStage(context.Background(), StageDesign, r.buildStageInput(StageDesign))
	require.Error(t, err)
	require.True(t, sgerrors.IsCategory(err, sgerrors.CategoryValidation))

	// A contract failure is not a handler failure: no failed transition, no
	// committed output.
	st := r.State().Stages[StageDesign]
	require.Equal(t, StatusRunning, st.Status)
	require.Nil(t, st.Output)
	require.Nil(t, st.Error)
}

func TestRetryStage_AfterFailure(t *testing.T) {
	r := newTestRunner(t, Options{})
	_, err := r.RunStage(context.Background(), StageInput, InputInput{
		ProjectID: "p-1", CompanyName: "Acme",
	})
	require.NoError(t, err)

	calls := 0
	r.RegisterHandler(StageResearch, func(_ context.Context, input any) (any, error) {
		calls++
		if calls == 1 {
			return nil, sgerrors.New(sgerrors.CategoryHandler, sgerrors.SeverityError, "disk full")
		}
		return stubOutput(StageResearch), nil
	})

	_, err = r.RunStage(context.Background(), StageResearch, r.buildStageInput(StageResearch))
	require.Error(t, err)
	require.Equal(t, StatusFailed, r.State().Stages[StageResearch].Status)

	require.NoError(t, r.RetryStage(context.Background(), StageResearch))
	require.Equal(t, StatusCompleted, r.State().Stages[StageResearch].Status)
	require.Equal(t, 2, calls)
}

func TestRetryStage_RequiresFailedState(t *testing.T) {
	r := newTestRunner(t, Options{})
	err := r.RetryStage(context.Background(), StageResearch)
	require.Error(t, err)
	require.Contains(t, err.Error(), "not in failed state")
}

func TestSkipStage(t *testing.T) {
	r := newTestRunner(t, Options{})

	require.NoError(t, r.SkipStage(StageImages))
	require.Equal(t, StatusSkipped, r.State().Stages[StageImages].Status)
	require.Equal(t, 10, r.State().Progress.Percentage)

	err := r.SkipStage(StageDesign)
	require.Error(t, err)
	require.Contains(t, err.Error(), "cannot be skipped")
}

func TestRunFromCurrent_CompletesPipeline(t *testing.T) {
	r := newTestRunner(t, Options{})
	_, err := r.RunStage(context.Background(), StageInput, InputInput{
		ProjectID: "p-1", CompanyName: "Acme",
	})
	require.NoError(t, err)

	var events []EventKind
	r.AddEventListener(func(evt Event) {
		events = append(events, evt.Kind())
	})

	require.NoError(t, r.RunFromCurrent(context.Background()))

	state := r.State()
	require.Equal(t, 100, state.Progress.Percentage)
	for _, stage := range Stages() {
		require.Equal(t, StatusCompleted, state.Stages[stage].Status, "stage %s", stage)
	}
	require.Equal(t, EventPipelineCompleted, events[len(events)-1])
}

func TestRunFromCurrent_PassesOverSkippedStages(t *testing.T) {
	r := newTestRunner(t, Options{})

	_, err := r.RunStage(context.Background(), StageInput, InputInput{
		ProjectID: "p-1", CompanyName: "Acme",
	})
	require.NoError(t, err)
	_, err = r.RunStage(context.Background(), StageResearch, r.buildStageInput(StageResearch))
	require.NoError(t, err)
	_, err = r.RunStage(context.Background(), StageDesign, r.buildStageInput(StageDesign))
	require.NoError(t, err)

	require.NoError(t, r.SkipStage(StageImages))

	imagesRan := false
	r.RegisterHandler(StageImages, func(_ context.Context, _ any) (any, error) {
		imagesRan = true
		return stubOutput(StageImages), nil
	})

	require.NoError(t, r.RunFromCurrent(context.Background()))

	require.False(t, imagesRan)
	require.Equal(t, StatusSkipped, r.State().Stages[StageImages].Status)
	require.Equal(t, StatusCompleted, r.State().Stages[StageContent].Status)
	require.Equal(t, 100, r.State().Progress.Percentage)
}

func TestRunFromCurrent_StopsOnFailure(t *testing.T) {
	r := newTestRunner(t, Options{})
	_, err := r.RunStage(context.Background(), StageInput, InputInput{
		ProjectID: "p-1", CompanyName: "Acme",
	})
	require.NoError(t, err)

	r.RegisterHandler(StageSeo, func(_ context.Context, _ any) (any, error) {
		return nil, sgerrors.New(sgerrors.CategoryHandler, sgerrors.SeverityError, "boom")
	})

	var failed []EventKind
	r.AddEventListener(func(evt Event) {
		if evt.Kind() == EventPipelineFailed {
			failed = append(failed, evt.Kind())
		}
	})

	err = r.RunFromCurrent(context.Background())
	require.Error(t, err)
	require.Len(t, failed, 1)
	require.Equal(t, StatusFailed, r.State().Stages[StageSeo].Status)
	require.Equal(t, StatusPending, r.State().Stages[StageBuild].Status)
}

func TestRunFromCurrent_VibeModePausesBeforeInteractive(t *testing.T) {
	r := newTestRunner(t, Options{VibeMode: true})

	var pauses []Stage
	r.AddEventListener(func(evt Event) {
		if p, ok := evt.(InteractivePause); ok {
			pauses = append(pauses, p.Stage)
		}
	})

	// The very first stage is interactive, so the run yields immediately.
	require.NoError(t, r.RunFromCurrent(context.Background()))
	require.Equal(t, []Stage{StageInput}, pauses)
	require.Equal(t, StatusPending, r.State().Stages[StageInput].Status)
}

func TestRunNext(t *testing.T) {
	r := newTestRunner(t, Options{})

	next, err := r.RunNext(context.Background(), InputInput{
		ProjectID: "p-1", CompanyName: "Acme",
	})
	require.NoError(t, err)
	require.Equal(t, StageResearch, next)
	require.Equal(t, StatusCompleted, r.State().Stages[StageInput].Status)
	require.Equal(t, StatusPending, r.State().Stages[StageResearch].Status)

	// Subsequent stages derive their input from prior outputs.
	next, err = r.RunNext(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, StageDesign, next)
	require.Equal(t, StatusCompleted, r.State().Stages[StageResearch].Status)
}

func TestRunNext_NothingPending(t *testing.T) {
	r := newTestRunner(t, Options{})
	_, err := r.RunStage(context.Background(), StageInput, InputInput{
		ProjectID: "p-1", CompanyName: "Acme",
	})
	require.NoError(t, err)
	require.NoError(t, r.RunFromCurrent(context.Background()))

	next, err := r.RunNext(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, Stage(""), next)
}

func TestBuildStageInput_ProjectsPriorOutputs(t *testing.T) {
	r := newTestRunner(t, Options{Domain: "acme.dev"})

	_, err := r.RunStage(context.Background(), StageInput, InputInput{
		ProjectID: "p-1", CompanyName: "Acme",
	})
	require.NoError(t, err)

	research, ok := r.buildStageInput(StageResearch).(ResearchInput)
	require.True(t, ok)
	require.Equal(t, "Acme", research.Company.Name)
	require.Len(t, research.Pages, 2)

	seo, ok := r.buildStageInput(StageSeo).(SeoInput)
	require.True(t, ok)
	require.Equal(t, "acme.dev", seo.Domain)
}

func TestBuildStageInput_DerivedDomain(t *testing.T) {
	r := newTestRunner(t, Options{})

	_, err := r.RunStage(context.Background(), StageInput, InputInput{
		ProjectID: "p-1", CompanyName: "Acme",
	})
	require.NoError(t, err)

	seo := r.buildStageInput(StageSeo).(SeoInput)
	require.Equal(t, "acme.example.com", seo.Domain)
}

func TestGetStageSummary(t *testing.T) {
	r := newTestRunner(t, Options{})
	_, err := r.RunStage(context.Background(), StageInput, InputInput{
		ProjectID: "p-1", CompanyName: "Acme",
	})
	require.NoError(t, err)

	summary := r.GetStageSummary()
	require.Len(t, summary, StageCount())
	require.Equal(t, StageInput, summary[0].Stage)
	require.Equal(t, StatusCompleted, summary[0].Status)
	require.True(t, summary[0].HasOutput)
	require.True(t, summary[0].HasExpectation)
	require.True(t, summary[0].IsInteractive)
	require.Equal(t, StatusPending, summary[1].Status)
}

func TestExportImportState_RoundTrip(t *testing.T) {
	r := newTestRunner(t, Options{})
	_, err := r.RunStage(context.Background(), StageInput, InputInput{
		ProjectID: "p-1", CompanyName: "Acme",
	})
	require.NoError(t, err)
	_, err = r.RunStage(context.Background(), StageResearch, r.buildStageInput(StageResearch))
	require.NoError(t, err)

	data, err := r.ExportState()
	require.NoError(t, err)

	restored := newTestRunner(t, Options{})
	require.NoError(t, restored.ImportState(data))

	state := restored.State()
	require.Equal(t, "p-1", state.ProjectID)
	require.Equal(t, StatusCompleted, state.Stages[StageInput].Status)

	// Outputs come back as typed records, so projections keep working.
	out, ok := state.Stages[StageInput].Output.(*InputOutput)
	require.True(t, ok)
	require.Equal(t, "acme", out.Slug)

	// The restored runner can continue the pipeline.
	require.NoError(t, restored.RunFromCurrent(context.Background()))
	require.Equal(t, 100, restored.State().Progress.Percentage)
}

func TestImportState_FillsMissingStages(t *testing.T) {
	r := newTestRunner(t, Options{})
	require.NoError(t, r.ImportState([]byte(`{"projectId":"p-2","currentStage":"input"}`)))

	state := r.State()
	require.Len(t, state.Stages, StageCount())
	for _, st := range state.Stages {
		require.Equal(t, StatusPending, st.Status)
	}
}

func TestToPersistableSummary(t *testing.T) {
	r := newTestRunner(t, Options{})
	_, err := r.RunStage(context.Background(), StageInput, InputInput{
		ProjectID: "p-1", CompanyName: "Acme",
	})
	require.NoError(t, err)

	summary := r.ToPersistableSummary()
	require.Equal(t, RunStatusRunning, summary.Status)
	require.Equal(t, "INPUT", summary.CurrentStage)
	require.Equal(t, 10, summary.Progress)
	require.Nil(t, summary.CompletedAt)

	require.NoError(t, r.RunFromCurrent(context.Background()))
	summary = r.ToPersistableSummary()
	require.Equal(t, RunStatusCompleted, summary.Status)
	require.NotNil(t, summary.CompletedAt)
}

func TestToPersistableSummary_Failed(t *testing.T) {
	r := newTestRunner(t, Options{})
	r.RegisterHandler(StageInput, func(_ context.Context, _ any) (any, error) {
		return nil, sgerrors.New(sgerrors.CategoryHandler, sgerrors.SeverityError, "no input source")
	})

	_, err := r.RunStage(context.Background(), StageInput, InputInput{
		ProjectID: "p-1", CompanyName: "Acme",
	})
	require.Error(t, err)

	summary := r.ToPersistableSummary()
	require.Equal(t, RunStatusFailed, summary.Status)
	require.Contains(t, summary.Error, "no input source")
}

func TestNextExpectation(t *testing.T) {
	r := newTestRunner(t, Options{})
	require.Nil(t, r.NextExpectation())

	_, err := r.RunStage(context.Background(), StageInput, InputInput{
		ProjectID: "p-1", CompanyName: "Acme",
	})
	require.NoError(t, err)

	exp := r.NextExpectation()
	require.NotNil(t, exp)
	require.Equal(t, StageResearch, exp.NextStage)
}

func TestRunStage_RequiresInitialize(t *testing.T) {
	r := NewRunner(Options{})
	_, err := r.RunStage(context.Background(), StageInput, InputInput{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "not initialized")
}
