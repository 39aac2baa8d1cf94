// Package api defines the JSON envelope shared by all HTTP responses.
package api

import (
	"net/http"

	json "github.com/goccy/go-json"
)

// WriteJSON encodes v and writes it with the given status code.
// Encoding failures after the header is written can only be logged by
// middleware; the body is left truncated.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ReadJSON decodes the request body into v, capped at maxBytes.
func ReadJSON(w http.ResponseWriter, r *http.Request, v any, maxBytes int64) error {
	if maxBytes <= 0 {
		maxBytes = 1 << 20
	}
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBytes)).Decode(v)
}
