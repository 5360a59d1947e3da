package errors

import (
	"fmt"
	"net/http"
	"strings"
)

// FieldError describes a single field-level validation failure.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError represents a validation failure with field-level details.
// Fields carries every violation found in the payload; Message is set for
// payload-level failures such as an empty update.
type ValidationError struct {
	Fields  []FieldError
	Message string
}

// NewValidationError creates a validation error aggregating field violations.
func NewValidationError(fields ...FieldError) *ValidationError {
	return &ValidationError{Fields: fields}
}

// NewEmptyUpdateError creates the validation error for an update payload
// that supplies no recognized fields.
func NewEmptyUpdateError() *ValidationError {
	return &ValidationError{Message: "no fields to update"}
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("validation failed: %s", e.Message)
	}
	reasons := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		reasons[i] = f.Reason
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(reasons, ", "))
}

// HTTPStatus returns the HTTP status for this error
func (e *ValidationError) HTTPStatus() int { return http.StatusBadRequest }

// Code returns the machine-readable error code
func (e *ValidationError) Code() string { return "validation_error" }

// InvalidIDError represents a malformed external identifier. It is a client
// error, raised before any store call is attempted.
type InvalidIDError struct {
	ID string
}

// NewInvalidIDError creates a new invalid identifier error
func NewInvalidIDError(id string) *InvalidIDError {
	return &InvalidIDError{ID: id}
}

// Error implements the error interface
func (e *InvalidIDError) Error() string {
	return "invalid user ID format"
}

// HTTPStatus returns the HTTP status for this error
func (e *InvalidIDError) HTTPStatus() int { return http.StatusBadRequest }

// Code returns the machine-readable error code
func (e *InvalidIDError) Code() string { return "invalid_id" }

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string
	Message  string
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource, message string) *NotFoundError {
	return &NotFoundError{Resource: resource, Message: message}
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// HTTPStatus returns the HTTP status for this error
func (e *NotFoundError) HTTPStatus() int { return http.StatusNotFound }

// Code returns the machine-readable error code
func (e *NotFoundError) Code() string { return "not_found" }

// ConflictError represents a uniqueness-constraint violation reported by
// the store.
type ConflictError struct {
	Resource string
	Message  string
}

// NewConflictError creates a new conflict error
func NewConflictError(resource, message string) *ConflictError {
	return &ConflictError{Resource: resource, Message: message}
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s already exists", e.Resource)
}

// HTTPStatus returns the HTTP status for this error
func (e *ConflictError) HTTPStatus() int { return http.StatusConflict }

// Code returns the machine-readable error code
func (e *ConflictError) Code() string { return "conflict" }

// InternalError represents an internal or store-unavailable failure with
// context. The wrapped error is logged but never rendered to clients.
type InternalError struct {
	Message string
	Err     error
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *InternalError {
	return &InternalError{Message: message, Err: err}
}

// Error implements the error interface
func (e *InternalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *InternalError) Unwrap() error { return e.Err }

// HTTPStatus returns the HTTP status for this error
func (e *InternalError) HTTPStatus() int { return http.StatusInternalServerError }

// Code returns the machine-readable error code
func (e *InternalError) Code() string { return "internal_error" }

// HTTPStatuser is implemented by errors that carry their own HTTP mapping.
type HTTPStatuser interface {
	error
	HTTPStatus() int
	Code() string
}
