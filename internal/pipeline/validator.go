package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ValidationResult aggregates rule outcomes for one document. A result is
// valid iff Errors is empty; Warnings never affect validity.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// Validator enforces the stage contracts declared in the schema tables.
// It is stateless and safe for concurrent use.
type Validator struct{}

// NewValidator returns a Validator.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateInput checks a stage input against its declared rules.
func (v *Validator) ValidateInput(stage Stage, value any) ValidationResult {
	return v.validate(value, inputSchemas[stage])
}

// ValidateOutput checks a stage output against its declared rules.
func (v *Validator) ValidateOutput(stage Stage, value any) ValidationResult {
	return v.validate(value, outputSchemas[stage])
}

// validate runs every rule against the JSON shape of value. A failing rule
// on a required field is an error; a failing rule on an optional-but-present
// field is only a warning, so optional hints never block a run.
func (v *Validator) validate(value any, rules []Rule) ValidationResult {
	result := ValidationResult{Errors: []string{}, Warnings: []string{}}

	doc, err := toDocument(value)
	if err != nil {
		result.Errors = append(result.Errors, "Data must be an object")
		return result
	}

	for _, rule := range rules {
		fieldValue := resolvePath(doc, rule.Field)
		fieldErrs := checkField(rule.Field, fieldValue, rule)
		if len(fieldErrs) == 0 {
			continue
		}
		if rule.Required {
			result.Errors = append(result.Errors, fieldErrs...)
		} else if fieldValue != nil {
			result.Warnings = append(result.Warnings, fieldErrs...)
		}
	}

	result.Valid = len(result.Errors) == 0
	return result
}

// ValidateTransition checks whether moving from one stage to another is
// legal. Any stage strictly between the two must be skippable, and when the
// outgoing stage's output is supplied it must satisfy its output schema.
func (v *Validator) ValidateTransition(from, to Stage, fromOutput any) ValidationResult {
	result := ValidationResult{Errors: []string{}, Warnings: []string{}}

	fromIdx := IndexOf(from)
	toIdx := IndexOf(to)

	if toIdx != fromIdx+1 {
		for i := fromIdx + 1; i >= 0 && i < toIdx; i++ {
			skipped := stageOrder[i]
			if !Metadata(skipped).CanSkip {
				result.Errors = append(result.Errors, fmt.Sprintf("Cannot skip stage: %s", skipped))
			}
		}
	}

	if fromOutput != nil {
		outputResult := v.ValidateOutput(from, fromOutput)
		if !outputResult.Valid {
			result.Errors = append(result.Errors,
				fmt.Sprintf("Previous stage output invalid: %s", strings.Join(outputResult.Errors, ", ")))
		}
	}

	result.Valid = len(result.Errors) == 0
	return result
}

// RequiredFields lists the required input fields of a stage.
func (v *Validator) RequiredFields(stage Stage) []string {
	var fields []string
	for _, rule := range inputSchemas[stage] {
		if rule.Required {
			fields = append(fields, rule.Field)
		}
	}
	return fields
}

// MissingFields lists the required input fields absent from data. Used to
// build user-facing "what's missing" messages without duplicating schemas.
func (v *Validator) MissingFields(stage Stage, data any) []string {
	required := v.RequiredFields(stage)

	doc, err := toDocument(data)
	if err != nil {
		return required
	}

	var missing []string
	for _, field := range required {
		if resolvePath(doc, field) == nil {
			missing = append(missing, field)
		}
	}
	return missing
}

// toDocument normalizes a value into its JSON object shape. Typed records
// are round-tripped through encoding/json so dot-path rules see the same
// field names the wire format uses.
func toDocument(value any) (map[string]any, error) {
	if value == nil {
		return nil, fmt.Errorf("value is nil")
	}
	if doc, ok := value.(map[string]any); ok {
		return doc, nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}
