package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/good-yellow-bee/timesheet/internal/storage"
)

// ValidationError reports one or more invalid input fields.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// AuthorizationError reports an operation the caller is not allowed to
// perform.
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string {
	return e.Message
}

func newAuthorizationError(format string, args ...any) *AuthorizationError {
	return &AuthorizationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a missing resource.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

func newNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// mapStoreErr translates constraint violations surfaced by storage into
// validation errors, so concurrent writers racing past the pre-checks get
// the same response shape as a failed pre-check.
func mapStoreErr(err error, field, message string) error {
	var constraintErr *storage.ConstraintError
	if errors.As(err, &constraintErr) {
		return newValidationError(field, message)
	}
	return err
}
