// Package httputil holds the JSON request and response helpers shared by
// the HTTP handlers.
package httputil

import (
	"encoding/json"
	"net/http"

	gwerrors "github.com/DeBrosOfficial/smart-gateway/pkg/errors"
	"github.com/go-chi/chi/v5/middleware"
)

// WriteJSON writes a JSON response with the given status code.
// Encoding errors are ignored (best-effort).
func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes a standardized JSON error response.
// The response format is: {"error": "message"}
func WriteError(w http.ResponseWriter, code int, msg string) {
	WriteJSON(w, code, map[string]any{"error": msg})
}

// WriteErr maps a typed error to its status code and writes it with the
// request ID as trace ID.
func WriteErr(w http.ResponseWriter, r *http.Request, err error) {
	gwerrors.WriteHTTPError(w, err, middleware.GetReqID(r.Context()))
}

// WriteSuccess writes {"status": "ok"}.
func WriteSuccess(w http.ResponseWriter) {
	WriteJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// WriteSuccessWithData writes a success response with additional data fields.
// The response format is: {"status": "ok", ...data}
func WriteSuccessWithData(w http.ResponseWriter, data map[string]any) {
	response := map[string]any{"status": "ok"}
	for k, v := range data {
		response[k] = v
	}
	WriteJSON(w, http.StatusOK, response)
}
