package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEvents_OrderOnCompletedStage(t *testing.T) {
	r := newTestRunner(t, Options{})

	var kinds []EventKind
	r.AddEventListener(func(evt Event) {
		kinds = append(kinds, evt.Kind())
	})

	_, err := r.RunStage(context.Background(), StageInput, InputInput{
		ProjectID: "p-1", CompanyName: "Acme",
	})
	require.NoError(t, err)

	require.Equal(t, []EventKind{
		EventStageStarted,
		EventStageCompleted,
		EventExpectationGenerated,
	}, kinds)
}

func TestEvents_FailedStage(t *testing.T) {
	r := newTestRunner(t, Options{})
	r.RegisterHandler(StageInput, func(_ context.Context, _ any) (any, error) {
		return nil, context.DeadlineExceeded
	})

	var kinds []EventKind
	r.AddEventListener(func(evt Event) {
		kinds = append(kinds, evt.Kind())
	})

	_, err := r.RunStage(context.Background(), StageInput, InputInput{
		ProjectID: "p-1", CompanyName: "Acme",
	})
	require.Error(t, err)
	require.Equal(t, []EventKind{EventStageStarted, EventStageFailed}, kinds)
}

func TestEvents_ListenersRunInRegistrationOrder(t *testing.T) {
	r := newTestRunner(t, Options{})

	var order []int
	r.AddEventListener(func(Event) { order = append(order, 1) })
	r.AddEventListener(func(Event) { order = append(order, 2) })

	require.NoError(t, r.SkipStage(StageImages))
	require.Equal(t, []int{1, 2}, order)
}

func TestEvents_Unsubscribe(t *testing.T) {
	r := newTestRunner(t, Options{})

	calls := 0
	unsubscribe := r.AddEventListener(func(Event) { calls++ })

	require.NoError(t, r.SkipStage(StageImages))
	require.Equal(t, 1, calls)

	unsubscribe()
	require.NoError(t, r.SkipStage(StageResearch))
	require.Equal(t, 1, calls)

	// Unsubscribing twice is a no-op.
	unsubscribe()
}

func TestEvents_UnsubscribeDuringDelivery(t *testing.T) {
	r := newTestRunner(t, Options{})

	var order []int
	var unsubscribe func()
	unsubscribe = r.AddEventListener(func(Event) {
		order = append(order, 1)
		unsubscribe()
	})
	r.AddEventListener(func(Event) { order = append(order, 2) })
	r.AddEventListener(func(Event) { order = append(order, 3) })

	// Unsubscribing mid-delivery must not skip or repeat later listeners.
	require.NoError(t, r.SkipStage(StageImages))
	require.Equal(t, []int{1, 2, 3}, order)

	require.NoError(t, r.SkipStage(StageResearch))
	require.Equal(t, []int{1, 2, 3, 2, 3}, order)
}

func TestEvents_PanickingListenerIsIsolated(t *testing.T) {
	r := newTestRunner(t, Options{})

	var after []EventKind
	r.AddEventListener(func(Event) { panic("listener bug") })
	r.AddEventListener(func(evt Event) { after = append(after, evt.Kind()) })

	// The panic must not escape nor stop delivery to later listeners.
	require.NoError(t, r.SkipStage(StageImages))
	require.Equal(t, []EventKind{EventStageSkipped}, after)
	require.Equal(t, StatusSkipped, r.State().Stages[StageImages].Status)
}

func TestEvents_CarryPayloads(t *testing.T) {
	r := newTestRunner(t, Options{})

	var completed *StageCompleted
	var expectation *ExpectationGenerated
	r.AddEventListener(func(evt Event) {
		switch e := evt.(type) {
		case StageCompleted:
			completed = &e
		case ExpectationGenerated:
			expectation = &e
		}
	})

	_, err := r.RunStage(context.Background(), StageInput, InputInput{
		ProjectID: "p-1", CompanyName: "Acme",
	})
	require.NoError(t, err)

	require.NotNil(t, completed)
	require.Equal(t, StageInput, completed.Stage)
	require.False(t, completed.When().IsZero())

	require.NotNil(t, expectation)
	require.Equal(t, StageResearch, expectation.Expectation.NextStage)
}
