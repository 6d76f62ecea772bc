package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestIsHelpers(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
		want  bool
	}{
		{"nil not found", nil, IsNotFound, false},
		{"not found typed", NewNotFoundError("content", "x"), IsNotFound, true},
		{"not found sentinel", fmt.Errorf("wrap: %w", ErrNotFound), IsNotFound, true},
		{"validation typed", NewValidationError("cid", "bad", nil), IsValidation, true},
		{"validation sentinel", ErrInvalidInput, IsValidation, true},
		{"capacity typed", NewCapacityExceededError(15, 16), IsCapacityExceeded, true},
		{"capacity other", errors.New("x"), IsCapacityExceeded, false},
		{"unreachable typed", NewUnreachableError("g", 500, nil), IsUnreachable, true},
		{"decode typed", NewDecodeError("json", nil), IsDecodeFailed, true},
		{"decode sentinel", ErrDecodeFailed, IsDecodeFailed, true},
		{"corrupt typed", NewStorageCorruptError("k", nil), IsStorageCorrupt, true},
		{"timeout deadline", fmt.Errorf("probe: %w", context.DeadlineExceeded), IsTimeout, true},
		{"timeout other", errors.New("x"), IsTimeout, false},
		{"internal typed", NewInternalError("x", nil), IsInternal, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.check(tt.err); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestShouldRetry(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"deadline", context.DeadlineExceeded, true},
		{"unreachable", NewUnreachableError("g", 502, nil), true},
		{"decode", NewDecodeError("json", nil), true},
		{"capacity", NewCapacityExceededError(1, 2), false},
		{"validation", NewValidationError("f", "m", nil), false},
		{"plain", errors.New("x"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldRetry(tt.err); got != tt.want {
				t.Errorf("ShouldRetry() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, CodeOK},
		{"typed", NewDecodeError("json", nil), CodeDecodeFailed},
		{"cancelled", context.Canceled, CodeCancelled},
		{"deadline", context.DeadlineExceeded, CodeTimeout},
		{"sentinel unreachable", ErrUnreachable, CodeUnreachable},
		{"sentinel corrupt", ErrStorageCorrupt, CodeStorageCorrupt},
		{"plain", errors.New("x"), CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetErrorCode(tt.err); got != tt.want {
				t.Errorf("GetErrorCode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGetErrorMessage(t *testing.T) {
	if GetErrorMessage(nil) != "" {
		t.Error("expected empty message for nil")
	}
	if got := GetErrorMessage(NewCapacityExceededError(15, 16)); got != "maximum of 15 user gateways exceeded" {
		t.Errorf("unexpected message %q", got)
	}
	if got := GetErrorMessage(errors.New("plain")); got != "plain" {
		t.Errorf("unexpected message %q", got)
	}
}

func TestCategories(t *testing.T) {
	if GetCategory(CodeCapacityExceeded) != CategoryClient {
		t.Error("capacity should be a client error")
	}
	if GetCategory(CodeUnreachable) != CategoryNetwork {
		t.Error("unreachable should be a network error")
	}
	if !IsServerError(CodeStorageError) {
		t.Error("storage error should be a server error")
	}
	if !IsClientError(CodeValidation) {
		t.Error("validation should be a client error")
	}
	if IsRetryable(CodeCapacityExceeded) {
		t.Error("capacity should not be retryable")
	}
}
