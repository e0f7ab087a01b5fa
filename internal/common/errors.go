package common

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds surfaced to callers as stable machine-readable codes.
const (
	KindValidation = "VALIDATION_ERROR"
	KindNotFound   = "NOT_FOUND"
	KindConflict   = "CONFLICT"
	KindStorage    = "STORAGE_ERROR"
)

// ValidationError reports malformed or missing input. Fully recoverable by
// caller correction; no state change has occurred.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError reports a referenced resource that is absent or inactive.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found or inactive", e.Resource)
}

// NewNotFoundError builds a NotFoundError for the named resource.
func NewNotFoundError(resource string) *NotFoundError {
	return &NotFoundError{Resource: resource}
}

// ConflictError reports a state transition attempted against a record that is
// not in the expected state, such as resolving an already-terminal movement.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// NewConflictError builds a ConflictError with the given message.
func NewConflictError(message string) *ConflictError {
	return &ConflictError{Message: message}
}

// StorageError wraps a transaction or commit failure. By the time one is
// returned the enclosing transaction has rolled back, so no partial ledger
// mutation can have persisted.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError wraps err with the failing operation name.
func NewStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}

// ErrorKind maps an error to its machine-readable kind. Unknown errors are
// treated as storage failures.
func ErrorKind(err error) string {
	var ve *ValidationError
	var nf *NotFoundError
	var ce *ConflictError
	switch {
	case errors.As(err, &ve):
		return KindValidation
	case errors.As(err, &nf):
		return KindNotFound
	case errors.As(err, &ce):
		return KindConflict
	default:
		return KindStorage
	}
}

// HTTPStatus maps an error to the status code its kind is surfaced with.
func HTTPStatus(err error) int {
	switch ErrorKind(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
