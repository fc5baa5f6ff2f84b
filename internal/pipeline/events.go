package pipeline

import (
	"log/slog"
	"time"
)

// EventKind discriminates pipeline lifecycle events.
type EventKind string

const (
	EventStageStarted         EventKind = "stage_started"
	EventStageCompleted       EventKind = "stage_completed"
	EventStageFailed          EventKind = "stage_failed"
	EventExpectationGenerated EventKind = "expectation_generated"
	EventPipelineCompleted    EventKind = "pipeline_completed"
	EventPipelineFailed       EventKind = "pipeline_failed"
	EventStageSkipped         EventKind = "stage_skipped"
	EventInteractivePause     EventKind = "interactive_pause"
)

// Event is a fire-and-forget lifecycle notification. Events are delivered
// synchronously to listeners in registration order and are not persisted by
// the engine.
type Event interface {
	Kind() EventKind
	When() time.Time
}

type baseEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

func (e baseEvent) When() time.Time { return e.Timestamp }

// StageStarted signals a stage transitioned to running.
type StageStarted struct {
	baseEvent
	Stage Stage `json:"stage"`
}

func (StageStarted) Kind() EventKind { return EventStageStarted }

// StageCompleted signals a stage transitioned to completed.
type StageCompleted struct {
	baseEvent
	Stage    Stage `json:"stage"`
	Duration int64 `json:"duration"` // milliseconds
}

func (StageCompleted) Kind() EventKind { return EventStageCompleted }

// StageFailed signals a stage transitioned to failed.
type StageFailed struct {
	baseEvent
	Stage Stage  `json:"stage"`
	Error string `json:"error"`
}

func (StageFailed) Kind() EventKind { return EventStageFailed }

// ExpectationGenerated carries the forecast computed after a stage completed.
type ExpectationGenerated struct {
	baseEvent
	Stage       Stage        `json:"stage"`
	Expectation *Expectation `json:"expectation"`
}

func (ExpectationGenerated) Kind() EventKind { return EventExpectationGenerated }

// PipelineCompleted signals that every stage is completed or skipped.
type PipelineCompleted struct {
	baseEvent
	TotalDuration int64 `json:"totalDuration"` // milliseconds
}

func (PipelineCompleted) Kind() EventKind { return EventPipelineCompleted }

// PipelineFailed signals that a run-to-completion attempt stopped on error.
type PipelineFailed struct {
	baseEvent
	Stage Stage  `json:"stage"`
	Error string `json:"error"`
}

func (PipelineFailed) Kind() EventKind { return EventPipelineFailed }

// StageSkipped signals a stage was explicitly skipped.
type StageSkipped struct {
	baseEvent
	Stage Stage `json:"stage"`
}

func (StageSkipped) Kind() EventKind { return EventStageSkipped }

// InteractivePause signals that vibe mode is waiting for external input
// before an interactive stage.
type InteractivePause struct {
	baseEvent
	Stage Stage `json:"stage"`
}

func (InteractivePause) Kind() EventKind { return EventInteractivePause }

// EventListener receives pipeline events. Listeners run synchronously on the
// emitting goroutine.
type EventListener func(Event)

type registeredListener struct {
	id int
	fn EventListener
}

type listenerRegistry struct {
	next      int
	listeners []registeredListener
}

// add registers a listener and returns an unsubscribe func.
func (r *listenerRegistry) add(fn EventListener) func() {
	r.next++
	id := r.next
	r.listeners = append(r.listeners, registeredListener{id: id, fn: fn})
	return func() {
		for i, l := range r.listeners {
			if l.id == id {
				r.listeners = append(r.listeners[:i], r.listeners[i+1:]...)
				return
			}
		}
	}
}

// emit delivers the event to every listener in registration order. A
// panicking listener is recovered and logged so it cannot corrupt the state
// transition it is reporting on.
func (r *listenerRegistry) emit(evt Event) {
	// Snapshot so a listener that unsubscribes during delivery cannot shift
	// the slice under the loop.
	listeners := append([]registeredListener(nil), r.listeners...)
	for _, l := range listeners {
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					slog.Error("Event listener panicked",
						slog.String("event", string(evt.Kind())),
						slog.Any("panic", rec))
				}
			}()
			l.fn(evt)
		}()
	}
}
