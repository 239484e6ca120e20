package service

import (
	"fmt"
	"strings"
)

// Validation codes attached to field errors. Handlers translate them.
const (
	CodeRequired  = "required"
	CodeNegative  = "negative"
	CodeTooLong   = "too_long"
	CodeDuplicate = "duplicate"
	CodeInvalid   = "invalid"
)

// FieldError describes one rejected input field
type FieldError struct {
	Field string `json:"field"`
	Code  string `json:"code"`
}

// ValidationError is returned for user-correctable input problems
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Field, f.Code)
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func (e *ValidationError) add(field, code string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Code: code})
}

// orNil returns e when it carries at least one field error
func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
