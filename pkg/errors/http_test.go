package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", NewValidationError("cid", "bad", nil), http.StatusBadRequest},
		{"not found", NewNotFoundError("content", "x"), http.StatusNotFound},
		{"capacity", NewCapacityExceededError(15, 16), http.StatusConflict},
		{"unreachable", NewUnreachableError("g", 0, nil), http.StatusBadGateway},
		{"decode", NewDecodeError("json", nil), http.StatusBadGateway},
		{"sentinel not found", ErrNotFound, http.StatusNotFound},
		{"sentinel invalid", ErrInvalidInput, http.StatusBadRequest},
		{"plain", errors.New("x"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusCode(tt.err); got != tt.want {
				t.Errorf("StatusCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestToHTTPError(t *testing.T) {
	t.Run("capacity details", func(t *testing.T) {
		httpErr := ToHTTPError(NewCapacityExceededError(15, 16), "trace-1")
		if httpErr.Status != http.StatusConflict {
			t.Errorf("expected 409, got %d", httpErr.Status)
		}
		if httpErr.Details["limit"] != "15" || httpErr.Details["requested"] != "16" {
			t.Errorf("unexpected details %v", httpErr.Details)
		}
		if httpErr.TraceID != "trace-1" {
			t.Errorf("unexpected trace id %q", httpErr.TraceID)
		}
	})

	t.Run("validation field", func(t *testing.T) {
		httpErr := ToHTTPError(NewValidationError("url", "must not be empty", ""), "")
		if httpErr.Details["field"] != "url" {
			t.Errorf("unexpected details %v", httpErr.Details)
		}
	})

	t.Run("nil", func(t *testing.T) {
		httpErr := ToHTTPError(nil, "")
		if httpErr.Code != CodeOK {
			t.Errorf("expected OK code, got %q", httpErr.Code)
		}
	})
}

func TestWriteHTTPError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteHTTPError(w, NewNotFoundError("content", "QmX"), "")

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("unexpected content type %q", ct)
	}

	var body HTTPError
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Code != CodeNotFound {
		t.Errorf("expected code %q, got %q", CodeNotFound, body.Code)
	}
}
