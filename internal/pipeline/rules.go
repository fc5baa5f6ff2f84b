package pipeline

import (
	"fmt"
	"regexp"
	"strings"
)

// FieldType names the JSON shape a rule expects.
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeNumber  FieldType = "number"
	TypeBoolean FieldType = "boolean"
	TypeArray   FieldType = "array"
	TypeObject  FieldType = "object"
)

// Rule is a declarative constraint on one (possibly dot-nested) field of a
// stage input or output document. Bounds are inclusive; Pattern must match
// the full value.
type Rule struct {
	Field    string
	Required bool
	Type     FieldType
	MinLen   *int
	MaxLen   *int
	Min      *float64
	Max      *float64
	Pattern  *regexp.Regexp
	Custom   func(value any) string
}

func intp(v int) *int           { return &v }
func floatp(v float64) *float64 { return &v }

// resolvePath walks a dot-separated path through nested JSON objects.
// A missing segment or a non-object intermediate yields nil.
func resolvePath(doc map[string]any, path string) any {
	parts := strings.Split(path, ".")
	var current any = doc
	for _, part := range parts {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current = obj[part]
		if current == nil {
			return nil
		}
	}
	return current
}

// checkField evaluates every constraint of the rule against a present value
// and returns one message per violated constraint.
func checkField(fieldPath string, value any, rule Rule) []string {
	var errs []string

	if rule.Required && value == nil {
		return []string{fmt.Sprintf("%s is required", fieldPath)}
	}
	if value == nil {
		return nil
	}

	if rule.Type != "" {
		actual := jsonTypeOf(value)
		if actual != rule.Type {
			return []string{fmt.Sprintf("%s must be of type %s, got %s", fieldPath, rule.Type, actual)}
		}
	}

	if s, ok := value.(string); ok {
		if rule.MinLen != nil && len(s) < *rule.MinLen {
			errs = append(errs, fmt.Sprintf("%s must be at least %d characters", fieldPath, *rule.MinLen))
		}
		if rule.MaxLen != nil && len(s) > *rule.MaxLen {
			errs = append(errs, fmt.Sprintf("%s must be at most %d characters", fieldPath, *rule.MaxLen))
		}
		if rule.Pattern != nil && !rule.Pattern.MatchString(s) {
			errs = append(errs, fmt.Sprintf("%s has invalid format", fieldPath))
		}
	}

	if n, ok := value.(float64); ok {
		if rule.Min != nil && n < *rule.Min {
			errs = append(errs, fmt.Sprintf("%s must be at least %v", fieldPath, *rule.Min))
		}
		if rule.Max != nil && n > *rule.Max {
			errs = append(errs, fmt.Sprintf("%s must be at most %v", fieldPath, *rule.Max))
		}
	}

	if arr, ok := value.([]any); ok {
		if rule.MinLen != nil && len(arr) < *rule.MinLen {
			errs = append(errs, fmt.Sprintf("%s must have at least %d items", fieldPath, *rule.MinLen))
		}
		if rule.MaxLen != nil && len(arr) > *rule.MaxLen {
			errs = append(errs, fmt.Sprintf("%s must have at most %d items", fieldPath, *rule.MaxLen))
		}
	}

	if rule.Custom != nil {
		if msg := rule.Custom(value); msg != "" {
			errs = append(errs, msg)
		}
	}

	return errs
}

func jsonTypeOf(value any) FieldType {
	switch value.(type) {
	case string:
		return TypeString
	case float64:
		return TypeNumber
	case bool:
		return TypeBoolean
	case []any:
		return TypeArray
	case map[string]any:
		return TypeObject
	}
	return ""
}
