package errors

import (
	"context"
	"errors"
)

// IsNotFound checks if an error indicates content was not found.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}

	var notFoundErr *NotFoundError
	return errors.As(err, &notFoundErr) || errors.Is(err, ErrNotFound)
}

// IsValidation checks if an error is a validation error.
func IsValidation(err error) bool {
	if err == nil {
		return false
	}

	var validationErr *ValidationError
	return errors.As(err, &validationErr) || errors.Is(err, ErrInvalidInput)
}

// IsCapacityExceeded checks if an error signals a rejected user gateway write.
func IsCapacityExceeded(err error) bool {
	if err == nil {
		return false
	}

	var capErr *CapacityExceededError
	return errors.As(err, &capErr) || errors.Is(err, ErrCapacityExceeded)
}

// IsUnreachable checks if an error describes a failed gateway request.
func IsUnreachable(err error) bool {
	if err == nil {
		return false
	}

	var unreachableErr *UnreachableError
	return errors.As(err, &unreachableErr) || errors.Is(err, ErrUnreachable)
}

// IsDecodeFailed checks if an error is a decode failure.
func IsDecodeFailed(err error) bool {
	if err == nil {
		return false
	}

	var decodeErr *DecodeError
	return errors.As(err, &decodeErr) || errors.Is(err, ErrDecodeFailed)
}

// IsStorageCorrupt checks if an error is a storage corruption error.
func IsStorageCorrupt(err error) bool {
	if err == nil {
		return false
	}

	var corruptErr *StorageCorruptError
	return errors.As(err, &corruptErr) || errors.Is(err, ErrStorageCorrupt)
}

// IsTimeout checks if an error was caused by a deadline.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// IsInternal checks if an error is an internal error.
func IsInternal(err error) bool {
	if err == nil {
		return false
	}

	var internalErr *InternalError
	return errors.As(err, &internalErr) || errors.Is(err, ErrInternal)
}

// ShouldRetry checks if an operation should be retried based on the error.
func ShouldRetry(err error) bool {
	if err == nil {
		return false
	}

	if IsTimeout(err) {
		return true
	}

	var customErr Error
	if errors.As(err, &customErr) {
		return IsRetryable(customErr.Code())
	}

	return false
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) string {
	if err == nil {
		return CodeOK
	}

	var customErr Error
	if errors.As(err, &customErr) {
		return customErr.Code()
	}

	switch {
	case errors.Is(err, context.Canceled):
		return CodeCancelled
	case IsTimeout(err):
		return CodeTimeout
	case IsNotFound(err):
		return CodeNotFound
	case IsValidation(err):
		return CodeValidation
	case IsCapacityExceeded(err):
		return CodeCapacityExceeded
	case IsUnreachable(err):
		return CodeUnreachable
	case IsDecodeFailed(err):
		return CodeDecodeFailed
	case IsStorageCorrupt(err):
		return CodeStorageCorrupt
	default:
		return CodeInternal
	}
}

// GetErrorMessage extracts a human-readable message from an error.
func GetErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var customErr Error
	if errors.As(err, &customErr) {
		return customErr.Message()
	}

	return err.Error()
}

// Cause returns the underlying cause of an error.
// It unwraps the error chain until it finds the root cause.
func Cause(err error) error {
	for {
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return err
		}
		underlying := unwrapper.Unwrap()
		if underlying == nil {
			return err
		}
		err = underlying
	}
}
