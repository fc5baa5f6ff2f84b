// Package metrics provides observability for pipeline runs.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics collection adds no overhead and no nil checks when
// disabled. Swap in NewPrometheusRecorder to activate collection.
package metrics

import (
	"time"

	"git.home.luguber.info/inful/sitegen/internal/pipeline"
)

// Recorder defines all pipeline metrics operations.
type Recorder interface {
	// StageResult records one stage outcome (completed, failed, skipped).
	StageResult(stage pipeline.Stage, result string)

	// StageDuration records how long a stage ran.
	StageDuration(stage pipeline.Stage, d time.Duration)

	// PipelineOutcome records a finished run's external status.
	PipelineOutcome(status pipeline.RunStatus)

	// PipelineDuration records total run duration.
	PipelineDuration(d time.Duration)
}

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

func (NoopRecorder) StageResult(pipeline.Stage, string)          {}
func (NoopRecorder) StageDuration(pipeline.Stage, time.Duration) {}
func (NoopRecorder) PipelineOutcome(pipeline.RunStatus)          {}
func (NoopRecorder) PipelineDuration(time.Duration)              {}

var _ Recorder = NoopRecorder{}
