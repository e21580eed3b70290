package serrors

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Base is a coded error shared across packages. Code is a stable,
// machine-readable identifier; Message is safe to show verbatim.
type Base struct {
	Code    string
	Message string
}

func (e *Base) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewError(code, message string) *Base {
	return &Base{Code: code, Message: message}
}

// FieldError describes a single invalid field of a value object or DTO.
type FieldError struct {
	Field string
	Rule  string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("field %s violates rule %q", e.Field, e.Rule)
}

type ValidationErrors map[string]FieldError

// Error lists every failed field in name order so the message is
// stable regardless of map iteration.
func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(v))
	for field := range v {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, v[field].Rule))
	}
	return "validation failed on " + strings.Join(parts, ", ")
}

// ProcessValidatorErrors flattens go-playground validator output into
// per-field entries keyed by struct field name.
func ProcessValidatorErrors(errs validator.ValidationErrors) ValidationErrors {
	out := make(ValidationErrors, len(errs))
	for _, err := range errs {
		out[err.Field()] = FieldError{Field: err.Field(), Rule: err.Tag()}
	}
	return out
}
