// Package localgen provides deterministic, offline stage handlers for the
// generation pipeline. They produce schema-valid outputs without calling any
// external AI, build, or deployment service, which keeps the engine
// demonstrable from the CLI and testable end to end. Production deployments
// register network-backed handlers instead.
package localgen

import (
	"encoding/json"
	"fmt"

	"git.home.luguber.info/inful/sitegen/internal/pipeline"
)

// Options configures the local handler set.
type Options struct {
	// OutputDir is where the publish handler exports the generated site.
	// Empty disables export.
	OutputDir string
	// CommitExport initializes a git repository in the export directory and
	// commits the generated files.
	CommitExport bool
}

// Register installs every local handler on the runner.
func Register(r *pipeline.Runner, opts Options) {
	r.RegisterHandler(pipeline.StageInput, InputHandler)
	r.RegisterHandler(pipeline.StageResearch, ResearchHandler)
	r.RegisterHandler(pipeline.StageDesign, DesignHandler)
	r.RegisterHandler(pipeline.StageImages, ImagesHandler)
	r.RegisterHandler(pipeline.StageContent, ContentHandler)
	r.RegisterHandler(pipeline.StageSeo, SeoHandler)
	r.RegisterHandler(pipeline.StageBuild, NewBuildHandler(opts))
	r.RegisterHandler(pipeline.StageUiUx, UiUxHandler)
	r.RegisterHandler(pipeline.StageReview, ReviewHandler)
	r.RegisterHandler(pipeline.StagePublish, NewPublishHandler(opts))
}

// decode converts a handler input into its typed record, accepting either
// the typed struct the runner builds or a generic JSON object.
func decode[T any](input any) (T, error) {
	if typed, ok := input.(T); ok {
		return typed, nil
	}
	var out T
	data, err := json.Marshal(input)
	if err != nil {
		return out, fmt.Errorf("encode stage input: %w", err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("decode stage input: %w", err)
	}
	return out, nil
}
