package errorutil

import (
	"fmt"
	"strings"
)

// ValidationError lists every field that failed within one context
type ValidationError struct {
	Context string
	Errors  []FieldError
}

// FieldError is one failed check
type FieldError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return e.Context + " validation failed"
	}

	messages := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		messages[i] = fe.Field + ": " + fe.Message
	}
	return fmt.Sprintf("%s validation failed: %s", e.Context, strings.Join(messages, "; "))
}

// ValidationBuilder collects field failures through chained checks so a
// single error can report all of them
type ValidationBuilder struct {
	context string
	errors  []FieldError
}

func NewValidationBuilder(context string) *ValidationBuilder {
	return &ValidationBuilder{context: context}
}

func (vb *ValidationBuilder) fail(field string, value interface{}, message string) *ValidationBuilder {
	vb.errors = append(vb.errors, FieldError{Field: field, Value: value, Message: message})
	return vb
}

// RequiredString fails for empty or whitespace-only values
func (vb *ValidationBuilder) RequiredString(field, value string) *ValidationBuilder {
	if IsEmptyString(value) {
		return vb.fail(field, value, "is required")
	}
	return vb
}

// RequiredInt fails for zero and negative values
func (vb *ValidationBuilder) RequiredInt(field string, value int) *ValidationBuilder {
	if value <= 0 {
		return vb.fail(field, value, "must be greater than 0")
	}
	return vb
}

// IntRange fails unless lo <= value <= hi
func (vb *ValidationBuilder) IntRange(field string, value, lo, hi int) *ValidationBuilder {
	if value < lo || value > hi {
		return vb.fail(field, value, fmt.Sprintf("must be between %d and %d", lo, hi))
	}
	return vb
}

// OneOf fails when a non-empty value is not among options
func (vb *ValidationBuilder) OneOf(field, value string, options []string) *ValidationBuilder {
	if value == "" {
		return vb
	}
	for _, option := range options {
		if value == option {
			return vb
		}
	}
	return vb.fail(field, value, "must be one of: "+strings.Join(options, ", "))
}

// Custom fails with message when predicate rejects value
func (vb *ValidationBuilder) Custom(field string, value interface{}, predicate func(interface{}) bool, message string) *ValidationBuilder {
	if !predicate(value) {
		return vb.fail(field, value, message)
	}
	return vb
}

// ValidIf runs the nested checks only when condition holds
func (vb *ValidationBuilder) ValidIf(condition bool, validationFunc func(*ValidationBuilder) *ValidationBuilder) *ValidationBuilder {
	if !condition {
		return vb
	}
	return validationFunc(vb)
}

// Build returns a *ValidationError when any check failed
func (vb *ValidationBuilder) Build() error {
	if len(vb.errors) == 0 {
		return nil
	}
	return &ValidationError{Context: vb.context, Errors: vb.errors}
}

func IsEmptyString(s string) bool {
	return strings.TrimSpace(s) == ""
}

// ValidateConfig runs validations under "<configName> configuration"
func ValidateConfig(configName string, validations func(*ValidationBuilder) *ValidationBuilder) error {
	return validations(NewValidationBuilder(configName + " configuration")).Build()
}
