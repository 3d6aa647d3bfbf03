package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions.
var (
	// ErrNotFound indicates that a requested entity was not found.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that the input data is invalid.
	ErrInvalidInput = errors.New("invalid input")

	// ErrAlreadyExists indicates that an entity with the same key already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrNetwork indicates that a source could not be reached by any transport.
	ErrNetwork = errors.New("network error")

	// ErrInvalidResponse indicates that a source answered with a payload that
	// could not be parsed.
	ErrInvalidResponse = errors.New("invalid response")

	// ErrUndetected indicates that an identifier matched no known source.
	ErrUndetected = errors.New("undetected source")

	// ErrServiceUnavailable indicates that an optional collaborator is not configured.
	ErrServiceUnavailable = errors.New("service unavailable")
)

// ValidationError represents a validation error for a specific field.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// NotFoundError provides details about a not found entity.
type NotFoundError struct {
	Entity string
	ID     string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// ExternalAPIError provides details about an external API error.
type ExternalAPIError struct {
	Source     string
	StatusCode int
	Message    string
	Cause      error
}

// Error implements the error interface.
func (e *ExternalAPIError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Source, e.StatusCode, e.Message)
}

// Unwrap returns the underlying cause error.
func (e *ExternalAPIError) Unwrap() error {
	return e.Cause
}

// ErrorKind classifies a metadata resolution failure.
type ErrorKind string

const (
	KindNotFound        ErrorKind = "not_found"
	KindNetwork         ErrorKind = "network_error"
	KindInvalidResponse ErrorKind = "invalid_response"
	KindInvalidInput    ErrorKind = "invalid_input"
	KindUndetected      ErrorKind = "undetected"
)

// sentinel returns the sentinel error matching the kind.
func (k ErrorKind) sentinel() error {
	switch k {
	case KindNotFound:
		return ErrNotFound
	case KindNetwork:
		return ErrNetwork
	case KindInvalidResponse:
		return ErrInvalidResponse
	case KindInvalidInput:
		return ErrInvalidInput
	case KindUndetected:
		return ErrUndetected
	default:
		return nil
	}
}

// ResolutionError is returned by metadata sources and the resolver.
// Message is human readable and is what Error returns, so callers that
// pattern-match on error text keep working.
type ResolutionError struct {
	Kind    ErrorKind
	Source  SourceType
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ResolutionError) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause error.
func (e *ResolutionError) Unwrap() error {
	return e.Cause
}

// Is matches the sentinel error of the error kind.
func (e *ResolutionError) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(entity, id string) *NotFoundError {
	return &NotFoundError{
		Entity: entity,
		ID:     id,
	}
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// NewExternalAPIError creates a new ExternalAPIError.
func NewExternalAPIError(source string, statusCode int, message string, cause error) *ExternalAPIError {
	return &ExternalAPIError{
		Source:     source,
		StatusCode: statusCode,
		Message:    message,
		Cause:      cause,
	}
}

// NewResolutionError creates a new ResolutionError.
func NewResolutionError(kind ErrorKind, source SourceType, message string, cause error) *ResolutionError {
	return &ResolutionError{
		Kind:    kind,
		Source:  source,
		Message: message,
		Cause:   cause,
	}
}

// KindOf returns the resolution error kind carried by err, or "" if err is
// not a resolution error.
func KindOf(err error) ErrorKind {
	var resErr *ResolutionError
	if errors.As(err, &resErr) {
		return resErr.Kind
	}
	return ""
}
