package pipeline

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateInput_MissingRequiredFields(t *testing.T) {
	v := NewValidator()

	res := v.ValidateInput(StageInput, map[string]any{})
	require.False(t, res.Valid)
	require.Len(t, res.Errors, 2) // projectId and companyName
	require.Empty(t, res.Warnings)
}

func TestValidateInput_TypedRecord(t *testing.T) {
	v := NewValidator()

	res := v.ValidateInput(StageInput, InputInput{
		ProjectID:   "p-1",
		CompanyName: "Acme Insaat",
	})
	require.True(t, res.Valid)
	require.Empty(t, res.Errors)
}

func TestValidateInput_MinLengthInclusive(t *testing.T) {
	v := NewValidator()

	// companyName has MinLen 2; exactly 2 runes must pass.
	res := v.ValidateInput(StageInput, map[string]any{
		"projectId":   "p-1",
		"companyName": "Ab",
	})
	require.True(t, res.Valid)

	res = v.ValidateInput(StageInput, map[string]any{
		"projectId":   "p-1",
		"companyName": "A",
	})
	require.False(t, res.Valid)
	require.Len(t, res.Errors, 1)
}

func TestValidateOutput_PatternAnchored(t *testing.T) {
	v := NewValidator()

	base := map[string]any{
		"projectId": "p-1",
		"company":   map[string]any{"name": "Acme"},
	}

	base["slug"] = "acme-insaat"
	require.True(t, v.ValidateOutput(StageInput, base).Valid)

	// Uppercase and embedded spaces must fail the full-match slug pattern.
	base["slug"] = "Acme insaat"
	require.False(t, v.ValidateOutput(StageInput, base).Valid)
}

func TestValidateOutput_HexColor(t *testing.T) {
	v := NewValidator()

	out := map[string]any{
		"projectId":  "p-1",
		"colors":     map[string]any{"primary": "#1E40AF"},
		"typography": map[string]any{},
		"layout":     map[string]any{},
	}
	require.True(t, v.ValidateOutput(StageDesign, out).Valid)

	out["colors"] = map[string]any{"primary": "blue"}
	res := v.ValidateOutput(StageDesign, out)
	require.False(t, res.Valid)
	require.Len(t, res.Errors, 1)
}

func TestValidateOutput_NumericBoundsInclusive(t *testing.T) {
	v := NewValidator()

	out := map[string]any{
		"projectId":      "p-1",
		"pages":          []any{map[string]any{"slug": "homepage"}},
		"totalWordCount": float64(100), // min is exactly 100
	}
	require.True(t, v.ValidateOutput(StageContent, out).Valid)

	out["totalWordCount"] = float64(99)
	require.False(t, v.ValidateOutput(StageContent, out).Valid)
}

func TestValidate_OptionalFieldFailureIsWarning(t *testing.T) {
	v := NewValidator()

	// research is optional in the design input schema; a wrong type on a
	// present optional field must warn, not error.
	res := v.ValidateInput(StageDesign, map[string]any{
		"projectId": "p-1",
		"company":   map[string]any{"name": "Acme"},
		"research":  "not an object",
	})
	require.True(t, res.Valid)
	require.Empty(t, res.Errors)
	require.Len(t, res.Warnings, 1)
}

func TestValidate_NonObjectValue(t *testing.T) {
	v := NewValidator()

	res := v.ValidateInput(StageInput, "just a string")
	require.False(t, res.Valid)
	require.Equal(t, []string{"Data must be an object"}, res.Errors)
}

func TestValidate_DotPathResolution(t *testing.T) {
	v := NewValidator()

	res := v.ValidateOutput(StageInput, map[string]any{
		"projectId": "p-1",
		"slug":      "acme",
		"company":   map[string]any{"industry": "insaat"},
	})
	require.False(t, res.Valid)
	require.Contains(t, res.Errors[0], "company.name")
}

func TestValidateTransition_AdjacentIsLegal(t *testing.T) {
	v := NewValidator()
	res := v.ValidateTransition(StageInput, StageResearch, nil)
	require.True(t, res.Valid)
}

func TestValidateTransition_SkippingSkippableStage(t *testing.T) {
	v := NewValidator()

	// design -> content skips images, which is skippable.
	res := v.ValidateTransition(StageDesign, StageContent, nil)
	require.True(t, res.Valid)

	// images -> build skips content and seo, neither skippable.
	res = v.ValidateTransition(StageImages, StageBuild, nil)
	require.False(t, res.Valid)
	require.Len(t, res.Errors, 2)
	require.Contains(t, res.Errors[0], "content")
	require.Contains(t, res.Errors[1], "seo")
}

func TestValidateTransition_FromOutputChecked(t *testing.T) {
	v := NewValidator()

	res := v.ValidateTransition(StageInput, StageResearch, map[string]any{
		"projectId": "p-1",
		// slug and company missing
	})
	require.False(t, res.Valid)
	require.Len(t, res.Errors, 1)
	require.Contains(t, res.Errors[0], "Previous stage output invalid")
}

func TestRequiredAndMissingFields(t *testing.T) {
	v := NewValidator()

	require.Equal(t, []string{"projectId", "companyName"}, v.RequiredFields(StageInput))

	missing := v.MissingFields(StageInput, map[string]any{"projectId": "p-1"})
	require.Equal(t, []string{"companyName"}, missing)

	require.Empty(t, v.MissingFields(StageInput, map[string]any{
		"projectId":   "p-1",
		"companyName": "Acme",
	}))
}
