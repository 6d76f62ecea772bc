package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// Common sentinel errors for quick checks
var (
	// ErrNotFound is returned when no gateway served the requested content.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned when caller input is invalid.
	ErrInvalidInput = errors.New("invalid input")

	// ErrCapacityExceeded is returned when the user gateway cap would be exceeded.
	ErrCapacityExceeded = errors.New("capacity exceeded")

	// ErrUnreachable is returned when a gateway could not be reached.
	ErrUnreachable = errors.New("gateway unreachable")

	// ErrDecodeFailed is returned when a response body cannot be decoded.
	ErrDecodeFailed = errors.New("decode failed")

	// ErrStorageCorrupt is returned when a persisted value cannot be parsed.
	ErrStorageCorrupt = errors.New("storage corrupt")

	// ErrInternal is returned when an internal error occurs.
	ErrInternal = errors.New("internal error")
)

// Error is the base interface for all custom errors in the system.
// It extends the standard error interface with additional context.
type Error interface {
	error
	// Code returns the error code
	Code() string
	// Message returns the human-readable error message
	Message() string
	// Unwrap returns the underlying cause
	Unwrap() error
}

// BaseError provides a foundation for all typed errors.
type BaseError struct {
	code    string
	message string
	cause   error
	stack   []uintptr
}

// Error implements the error interface.
func (e *BaseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Code returns the error code.
func (e *BaseError) Code() string {
	return e.code
}

// Message returns the error message.
func (e *BaseError) Message() string {
	return e.message
}

// Unwrap returns the underlying cause.
func (e *BaseError) Unwrap() error {
	return e.cause
}

// Stack returns the captured stack trace.
func (e *BaseError) Stack() []uintptr {
	return e.stack
}

// captureStack captures the current stack trace.
func captureStack(skip int) []uintptr {
	const maxDepth = 32
	stack := make([]uintptr, maxDepth)
	n := runtime.Callers(skip+2, stack)
	return stack[:n]
}

// StackTrace returns a formatted stack trace string.
func (e *BaseError) StackTrace() string {
	if len(e.stack) == 0 {
		return ""
	}

	var buf strings.Builder
	frames := runtime.CallersFrames(e.stack)
	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "runtime/") {
			fmt.Fprintf(&buf, "%s\n\t%s:%d\n", frame.Function, frame.File, frame.Line)
		}
		if !more {
			break
		}
	}
	return buf.String()
}

// ValidationError represents an input validation error.
type ValidationError struct {
	*BaseError
	Field string
	Value interface{}
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		BaseError: &BaseError{
			code:    CodeValidation,
			message: message,
			stack:   captureStack(1),
		},
		Field: field,
		Value: value,
	}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.message)
	}
	return fmt.Sprintf("validation error: %s", e.message)
}

// NotFoundError represents content that no gateway could serve.
type NotFoundError struct {
	*BaseError
	Resource string
	ID       string
}

// NewNotFoundError creates a new not found error.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{
		BaseError: &BaseError{
			code:    CodeNotFound,
			message: fmt.Sprintf("%s not found", resource),
			stack:   captureStack(1),
		},
		Resource: resource,
		ID:       id,
	}
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s with ID '%s' not found", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// CapacityExceededError is returned when adding user gateways would push the
// list past its configured maximum. The write is rejected as a whole.
type CapacityExceededError struct {
	*BaseError
	Limit     int
	Requested int
}

// NewCapacityExceededError creates a new capacity error.
func NewCapacityExceededError(limit, requested int) *CapacityExceededError {
	return &CapacityExceededError{
		BaseError: &BaseError{
			code:    CodeCapacityExceeded,
			message: fmt.Sprintf("maximum of %d user gateways exceeded", limit),
			stack:   captureStack(1),
		},
		Limit:     limit,
		Requested: requested,
	}
}

// Error implements the error interface.
func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("maximum of %d user gateways exceeded (requested %d)", e.Limit, e.Requested)
}

// UnreachableError describes a failed request against a single gateway.
// StatusCode is zero when no HTTP response was received.
type UnreachableError struct {
	*BaseError
	Gateway    string
	StatusCode int
}

// NewUnreachableError creates a new unreachable error.
func NewUnreachableError(gateway string, statusCode int, cause error) *UnreachableError {
	message := fmt.Sprintf("gateway %s unreachable", gateway)
	if statusCode != 0 {
		message = fmt.Sprintf("gateway %s returned status %d", gateway, statusCode)
	}
	return &UnreachableError{
		BaseError: &BaseError{
			code:    CodeUnreachable,
			message: message,
			cause:   cause,
			stack:   captureStack(1),
		},
		Gateway:    gateway,
		StatusCode: statusCode,
	}
}

// DecodeError is returned when a response body does not match the requested format.
type DecodeError struct {
	*BaseError
	Format string
}

// NewDecodeError creates a new decode error.
func NewDecodeError(format string, cause error) *DecodeError {
	return &DecodeError{
		BaseError: &BaseError{
			code:    CodeDecodeFailed,
			message: fmt.Sprintf("failed to decode response as %s", format),
			cause:   cause,
			stack:   captureStack(1),
		},
		Format: format,
	}
}

// StorageCorruptError is returned when a persisted value is unparsable.
type StorageCorruptError struct {
	*BaseError
	Key string
}

// NewStorageCorruptError creates a new storage corruption error.
func NewStorageCorruptError(key string, cause error) *StorageCorruptError {
	return &StorageCorruptError{
		BaseError: &BaseError{
			code:    CodeStorageCorrupt,
			message: fmt.Sprintf("stored value for %q is corrupt", key),
			cause:   cause,
			stack:   captureStack(1),
		},
		Key: key,
	}
}

// InternalError represents an internal error.
type InternalError struct {
	*BaseError
	Operation string
}

// NewInternalError creates a new internal error.
func NewInternalError(message string, cause error) *InternalError {
	if message == "" {
		message = "internal error"
	}
	return &InternalError{
		BaseError: &BaseError{
			code:    CodeInternal,
			message: message,
			cause:   cause,
			stack:   captureStack(1),
		},
	}
}

// WithOperation sets the operation context.
func (e *InternalError) WithOperation(op string) *InternalError {
	e.Operation = op
	return e
}

// Wrap wraps an error with additional context.
// If the error is already one of our custom types, it preserves the code
// and adds the cause chain. Otherwise, it creates an InternalError.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	if e, ok := err.(Error); ok {
		return &BaseError{
			code:    e.Code(),
			message: message,
			cause:   err,
			stack:   captureStack(1),
		}
	}

	return &InternalError{
		BaseError: &BaseError{
			code:    CodeInternal,
			message: message,
			cause:   err,
			stack:   captureStack(1),
		},
	}
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, format string, args ...interface{}) error {
	return Wrap(err, fmt.Sprintf(format, args...))
}

// New creates a new error with a message.
func New(message string) error {
	return &BaseError{
		code:    CodeInternal,
		message: message,
		stack:   captureStack(1),
	}
}

// Newf creates a new error with a formatted message.
func Newf(format string, args ...interface{}) error {
	return New(fmt.Sprintf(format, args...))
}
