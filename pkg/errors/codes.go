package errors

// Error codes for categorizing errors.
// These codes map to HTTP status codes where the HTTP service exposes them.
const (
	// CodeOK indicates success (not an error).
	CodeOK = "OK"

	// CodeCancelled indicates the operation was cancelled.
	CodeCancelled = "CANCELLED"

	// CodeInternal indicates internal errors.
	CodeInternal = "INTERNAL"

	// CodeNotFound indicates no gateway could serve the requested content.
	CodeNotFound = "NOT_FOUND"

	// CodeValidation indicates input validation failed.
	CodeValidation = "VALIDATION_ERROR"

	// CodeTimeout indicates an operation timed out.
	CodeTimeout = "TIMEOUT"

	// CodeConfigError indicates a configuration error.
	CodeConfigError = "CONFIG_ERROR"

	// Gateway-picker specific codes

	// CodeCapacityExceeded indicates the user gateway cap would be exceeded.
	CodeCapacityExceeded = "CAPACITY_EXCEEDED"

	// CodeUnreachable indicates a gateway timed out, failed at the network
	// layer, or answered with a non-success status.
	CodeUnreachable = "UNREACHABLE"

	// CodeDecodeFailed indicates a response body did not match the requested format.
	CodeDecodeFailed = "DECODE_FAILED"

	// CodeStorageCorrupt indicates a persisted value could not be parsed.
	CodeStorageCorrupt = "STORAGE_CORRUPT"

	// CodeStorageError indicates the persistent store itself failed.
	CodeStorageError = "STORAGE_ERROR"
)

// ErrorCategory represents a high-level error category.
type ErrorCategory string

const (
	// CategoryClient indicates a caller-side error (4xx).
	CategoryClient ErrorCategory = "CLIENT_ERROR"

	// CategoryServer indicates a server-side error (5xx).
	CategoryServer ErrorCategory = "SERVER_ERROR"

	// CategoryNetwork indicates a gateway-side failure.
	CategoryNetwork ErrorCategory = "NETWORK_ERROR"

	// CategoryTimeout indicates a timeout error.
	CategoryTimeout ErrorCategory = "TIMEOUT_ERROR"
)

// GetCategory returns the category for an error code.
func GetCategory(code string) ErrorCategory {
	switch code {
	case CodeValidation, CodeNotFound, CodeCapacityExceeded:
		return CategoryClient

	case CodeTimeout:
		return CategoryTimeout

	case CodeUnreachable, CodeDecodeFailed:
		return CategoryNetwork

	default:
		return CategoryServer
	}
}

// IsRetryable returns true if an error with the given code is worth trying
// again against the same or another gateway.
func IsRetryable(code string) bool {
	switch code {
	case CodeTimeout, CodeUnreachable, CodeDecodeFailed, CodeStorageError:
		return true
	default:
		return false
	}
}

// IsClientError returns true if the error is a client error (4xx).
func IsClientError(code string) bool {
	return GetCategory(code) == CategoryClient
}

// IsServerError returns true if the error is a server error (5xx).
func IsServerError(code string) bool {
	return GetCategory(code) == CategoryServer
}
