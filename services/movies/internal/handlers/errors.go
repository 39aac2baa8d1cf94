package handlers

import (
	"errors"
	"net/http"

	"github.com/example/movie-platform/internal/platform/api"
	"github.com/example/movie-platform/services/movies/internal/engagement"
	"github.com/example/movie-platform/services/movies/internal/store"
)

// writeStoreError maps store and engagement errors onto the API envelope.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engagement.ErrNotFound):
		api.NotFound(w, "NOT_FOUND", "resource not found", "")
	case errors.Is(err, engagement.ErrInvalidInput):
		api.BadRequest(w, "INVALID_INPUT", err.Error(), "", nil)
	case errors.Is(err, engagement.ErrForbidden):
		api.Forbidden(w, "FORBIDDEN", "not the owner", "")
	case errors.Is(err, store.ErrDuplicate):
		api.Conflict(w, "DUPLICATE", "a movie with this title and year already exists", "", nil)
	default:
		api.Internal(w, "")
	}
}
