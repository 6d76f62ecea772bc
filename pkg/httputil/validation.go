package httputil

import (
	"fmt"
	"net/http"
	"strings"
)

// IsEmpty checks if a string is empty after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// RequireNotEmpty checks if a string value is empty after trimming whitespace.
// If empty, it writes a 400 Bad Request error with the field name and returns false.
func RequireNotEmpty(w http.ResponseWriter, value, fieldName string) bool {
	if IsEmpty(value) {
		WriteError(w, http.StatusBadRequest, fmt.Sprintf("%s is required", fieldName))
		return false
	}
	return true
}

// RequireURLs checks that urls has at least one non-blank entry. Otherwise it
// writes a 400 Bad Request error and returns false.
func RequireURLs(w http.ResponseWriter, urls []string) bool {
	for _, u := range urls {
		if !IsEmpty(u) {
			return true
		}
	}
	WriteError(w, http.StatusBadRequest, "urls must contain at least one gateway")
	return false
}
