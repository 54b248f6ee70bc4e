// Package validate collects field-level validation failures so an operation
// can report every violated constraint at once instead of stopping at the
// first one.
package validate

import "strings"

// FieldError describes a single violated field constraint.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Errors is a collection of field errors. A nil or empty collection means
// the input passed validation.
type Errors struct {
	Fields []FieldError `json:"errors"`
}

func (e *Errors) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "validation error"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation error: " + strings.Join(parts, "; ")
}

// Add records a violation and keeps collecting.
func (e *Errors) Add(field, code, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Code: code, Message: message})
}

// HasErrors reports whether any violation was recorded.
func (e *Errors) HasErrors() bool {
	return e != nil && len(e.Fields) > 0
}

// New returns a single-field validation error.
func New(field, code, message string) error {
	e := &Errors{}
	e.Add(field, code, message)
	return e
}
