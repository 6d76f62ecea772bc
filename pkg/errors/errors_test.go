package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestValidationError(t *testing.T) {
	tests := []struct {
		name          string
		field         string
		message       string
		value         interface{}
		expectedError string
	}{
		{
			name:          "with field",
			field:         "cid",
			message:       "invalid CID",
			value:         "not-a-cid",
			expectedError: "validation error: cid: invalid CID",
		},
		{
			name:          "without field",
			field:         "",
			message:       "invalid input",
			value:         nil,
			expectedError: "validation error: invalid input",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewValidationError(tt.field, tt.message, tt.value)
			if err.Error() != tt.expectedError {
				t.Errorf("Expected error %q, got %q", tt.expectedError, err.Error())
			}
			if err.Code() != CodeValidation {
				t.Errorf("Expected code %q, got %q", CodeValidation, err.Code())
			}
			if err.Field != tt.field {
				t.Errorf("Expected field %q, got %q", tt.field, err.Field)
			}
		})
	}
}

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("content", "QmTest")
	if err.Error() != "content with ID 'QmTest' not found" {
		t.Errorf("unexpected error string %q", err.Error())
	}
	if err.Code() != CodeNotFound {
		t.Errorf("Expected code %q, got %q", CodeNotFound, err.Code())
	}

	bare := NewNotFoundError("content", "")
	if bare.Error() != "content not found" {
		t.Errorf("unexpected error string %q", bare.Error())
	}
}

func TestCapacityExceededError(t *testing.T) {
	err := NewCapacityExceededError(15, 16)
	if err.Code() != CodeCapacityExceeded {
		t.Errorf("Expected code %q, got %q", CodeCapacityExceeded, err.Code())
	}
	if err.Limit != 15 || err.Requested != 16 {
		t.Errorf("unexpected limit/requested: %d/%d", err.Limit, err.Requested)
	}
	if !strings.Contains(err.Error(), "15") {
		t.Errorf("expected limit in message, got %q", err.Error())
	}
}

func TestUnreachableError(t *testing.T) {
	t.Run("with status", func(t *testing.T) {
		err := NewUnreachableError("https://a.example", 503, nil)
		if err.Message() != "gateway https://a.example returned status 503" {
			t.Errorf("unexpected message %q", err.Message())
		}
		if err.StatusCode != 503 {
			t.Errorf("expected status 503, got %d", err.StatusCode)
		}
	})

	t.Run("network failure", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := NewUnreachableError("https://a.example", 0, cause)
		if err.Message() != "gateway https://a.example unreachable" {
			t.Errorf("unexpected message %q", err.Message())
		}
		if !errors.Is(err, cause) {
			t.Errorf("expected cause to be preserved")
		}
	})
}

func TestDecodeError(t *testing.T) {
	cause := errors.New("unexpected end of JSON input")
	err := NewDecodeError("json", cause)
	if err.Code() != CodeDecodeFailed {
		t.Errorf("Expected code %q, got %q", CodeDecodeFailed, err.Code())
	}
	if err.Format != "json" {
		t.Errorf("expected format json, got %q", err.Format)
	}
	if !strings.Contains(err.Error(), "unexpected end of JSON input") {
		t.Errorf("Expected error to contain cause: %q", err.Error())
	}
}

func TestStorageCorruptError(t *testing.T) {
	err := NewStorageCorruptError("ipfs-smart-gateway:user-gateways", errors.New("bad json"))
	if err.Key != "ipfs-smart-gateway:user-gateways" {
		t.Errorf("unexpected key %q", err.Key)
	}
	if err.Code() != CodeStorageCorrupt {
		t.Errorf("Expected code %q, got %q", CodeStorageCorrupt, err.Code())
	}
}

func TestInternalError(t *testing.T) {
	t.Run("with cause", func(t *testing.T) {
		cause := errors.New("disk full")
		err := NewInternalError("failed to persist", cause)

		if err.Message() != "failed to persist" {
			t.Errorf("Expected message 'failed to persist', got %q", err.Message())
		}
		if err.Unwrap() != cause {
			t.Errorf("Expected cause to be preserved")
		}
	})

	t.Run("default message", func(t *testing.T) {
		err := NewInternalError("", nil).WithOperation("rank")
		if err.Message() != "internal error" {
			t.Errorf("unexpected message %q", err.Message())
		}
		if err.Operation != "rank" {
			t.Errorf("expected operation rank, got %q", err.Operation)
		}
	})
}

func TestWrap(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		if Wrap(nil, "context") != nil {
			t.Error("Expected nil for nil error")
		}
	})

	t.Run("custom error keeps code", func(t *testing.T) {
		original := NewCapacityExceededError(15, 20)
		wrapped := Wrap(original, "set user gateways")

		if GetErrorCode(wrapped) != CodeCapacityExceeded {
			t.Errorf("expected code to be preserved, got %q", GetErrorCode(wrapped))
		}
		if !IsCapacityExceeded(wrapped) {
			t.Error("expected wrapped error to remain a capacity error")
		}
	})

	t.Run("standard error becomes internal", func(t *testing.T) {
		wrapped := Wrapf(errors.New("boom"), "step %d", 2)
		if !IsInternal(wrapped) {
			t.Error("expected internal error")
		}
		if !strings.Contains(wrapped.Error(), "step 2") {
			t.Errorf("unexpected message %q", wrapped.Error())
		}
	})
}

func TestErrorChaining(t *testing.T) {
	root := NewUnreachableError("https://a.example", 0, errors.New("dial tcp: refused"))
	wrapped := fmt.Errorf("probe: %w", root)

	var target *UnreachableError
	if !errors.As(wrapped, &target) {
		t.Fatal("expected errors.As to find UnreachableError")
	}
	if target.Gateway != "https://a.example" {
		t.Errorf("unexpected gateway %q", target.Gateway)
	}
	if Cause(wrapped).Error() != "dial tcp: refused" {
		t.Errorf("unexpected root cause %q", Cause(wrapped).Error())
	}
}

func TestStackTrace(t *testing.T) {
	err := NewInternalError("boom", nil)
	if len(err.Stack()) == 0 {
		t.Error("expected captured stack")
	}
	if !strings.Contains(err.StackTrace(), "TestStackTrace") {
		t.Errorf("expected stack to contain test function, got %q", err.StackTrace())
	}
}

func TestNew(t *testing.T) {
	err := Newf("attempt %d failed", 3)
	if err.Error() != "attempt 3 failed" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if GetErrorCode(err) != CodeInternal {
		t.Errorf("expected internal code, got %q", GetErrorCode(err))
	}
}
