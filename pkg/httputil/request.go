package httputil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// MaxJSONBody caps request bodies read by DecodeJSONStrict.
const MaxJSONBody = 1 << 20

// DecodeJSONStrict decodes a JSON request body, rejecting unknown fields and
// bodies larger than MaxJSONBody. An empty body leaves v untouched.
func DecodeJSONStrict(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && err != io.EOF {
		return err
	}
	return nil
}

// QueryParam returns the value of a query parameter, or defaultValue if not present.
func QueryParam(r *http.Request, key, defaultValue string) string {
	if v := r.URL.Query().Get(key); v != "" {
		return v
	}
	return defaultValue
}

// QueryParamInt returns the integer value of a query parameter, or defaultValue if not present or invalid.
func QueryParamInt(r *http.Request, key string, defaultValue int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

// QueryParamBool returns the boolean value of a query parameter.
// Returns true if the parameter value is "true", "1", "yes", or "on" (case-insensitive).
// Returns defaultValue if the parameter is not present or has an invalid value.
func QueryParamBool(r *http.Request, key string, defaultValue bool) bool {
	v := r.URL.Query().Get(key)
	if v == "" {
		return defaultValue
	}
	switch strings.ToLower(v) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		return defaultValue
	}
}

// ParseMillis converts a millisecond count from a JSON body to a duration.
func ParseMillis(ms int64) (time.Duration, error) {
	if ms < 0 {
		return 0, fmt.Errorf("must be >= 0; got %d", ms)
	}
	return time.Duration(ms) * time.Millisecond, nil
}
