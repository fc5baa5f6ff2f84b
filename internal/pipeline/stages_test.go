package pipeline

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStages_OrderAndCount(t *testing.T) {
	stages := Stages()
	require.Len(t, stages, StageCount())
	require.Equal(t, StageInput, stages[0])
	require.Equal(t, StagePublish, stages[len(stages)-1])

	// Returned slice is a copy; mutating it must not corrupt the catalog.
	stages[0] = StagePublish
	require.Equal(t, StageInput, Stages()[0])
}

func TestStages_EveryStageHasMetadata(t *testing.T) {
	for _, stage := range Stages() {
		meta := Metadata(stage)
		require.NotEmpty(t, meta.Name, "stage %s", stage)
		require.NotEmpty(t, meta.Description, "stage %s", stage)
		require.NotEmpty(t, meta.EstimatedDuration, "stage %s", stage)
	}
}

func TestStages_Flags(t *testing.T) {
	skippable := map[Stage]bool{StageResearch: true, StageImages: true}
	interactive := map[Stage]bool{
		StageInput: true, StageDesign: true, StageBuild: true, StageReview: true,
	}

	for _, stage := range Stages() {
		meta := Metadata(stage)
		require.Equal(t, skippable[stage], meta.CanSkip, "CanSkip for %s", stage)
		require.Equal(t, interactive[stage], meta.IsInteractive, "IsInteractive for %s", stage)
		require.True(t, meta.CanRetry, "CanRetry for %s", stage)
	}
}

func TestIndexOfNextOfPreviousOf(t *testing.T) {
	require.Equal(t, 0, IndexOf(StageInput))
	require.Equal(t, 9, IndexOf(StagePublish))
	require.Equal(t, -1, IndexOf(Stage("bogus")))

	require.Equal(t, StageResearch, NextOf(StageInput))
	require.Equal(t, Stage(""), NextOf(StagePublish))
	require.Equal(t, Stage(""), NextOf(Stage("bogus")))

	require.Equal(t, Stage(""), PreviousOf(StageInput))
	require.Equal(t, StageReview, PreviousOf(StagePublish))
}

func TestIsValidStage(t *testing.T) {
	require.True(t, IsValidStage("ui_ux"))
	require.False(t, IsValidStage("uiux"))
	require.False(t, IsValidStage(""))
}
