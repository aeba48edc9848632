// Package httpjson holds the small JSON response helpers shared by all
// feature handlers.
package httpjson

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// Write encodes v as the JSON response body with the given status.
func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes the API's standard error envelope: {"error": "..."}.
func Error(w http.ResponseWriter, status int, msg string) {
	Write(w, status, map[string]string{"error": msg})
}

// Decode reads the request body into dst. On failure it writes a 400
// response and returns false; callers should return immediately.
func Decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		Error(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// InternalError logs err and writes a generic 500 so internals never leak
// to API clients.
func InternalError(w http.ResponseWriter, log *zap.Logger, msg string, err error) {
	log.Error(msg, zap.Error(err))
	Error(w, http.StatusInternalServerError, msg)
}
