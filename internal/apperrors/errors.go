// Package apperrors defines the error kinds the HTTP layer maps to status
// codes: validation failures (400), unknown ids (404) and store failures (500).
package apperrors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNotFound is matched by every NotFoundError through errors.Is.
var ErrNotFound = errors.New("not found")

// NotFoundError reports an id that does not resolve to a stored record.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NotFound builds a NotFoundError.
func NotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError reports missing or invalid input. Fields maps the offending
// input field to a human readable reason.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

// Invalid builds a ValidationError for a single field.
func Invalid(field, reason string) error {
	return &ValidationError{
		Message: "Validation failed",
		Fields:  map[string]string{field: reason},
	}
}

// QueryError wraps a failure of the underlying store.
type QueryError struct {
	Op  string
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// Query wraps err as a QueryError for op. A nil err stays nil.
func Query(op string, err error) error {
	if err == nil {
		return nil
	}
	return &QueryError{Op: op, Err: err}
}

// IsValidation reports whether err is, or wraps, a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is, or wraps, a NotFoundError.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
