package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/example/movie-platform/internal/platform/api"
	"github.com/example/movie-platform/internal/platform/auth"
	"github.com/example/movie-platform/services/movies/internal/store"
)

type watchlistToggleResponse struct {
	InWatchlist bool `json:"in_watchlist"`
	Total       int  `json:"total"`
}

type watchlistResponse struct {
	Movies []store.Movie `json:"movies"`
	Total  int           `json:"total"`
}

// ToggleWatchlist handles POST /v1/watchlist/{movie_id}. Present movies
// are removed, absent ones added.
func ToggleWatchlist(ws store.WatchlistStore, ms store.MovieStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok || userID == "" {
			api.Unauthorized(w, "UNAUTHORIZED", "authentication required", "")
			return
		}
		movieID := strings.TrimSpace(chi.URLParam(r, "movie_id"))
		if movieID == "" {
			api.BadRequest(w, "MISSING_ID", "movie_id is required", "", nil)
			return
		}

		// Only catalogued movies can be watchlisted.
		if _, err := ms.GetByID(r.Context(), movieID); err != nil {
			writeStoreError(w, err)
			return
		}

		added, total, err := ws.Toggle(r.Context(), userID, movieID)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, watchlistToggleResponse{InWatchlist: added, Total: total})
	}
}

// ListWatchlist handles GET /v1/watchlist, resolving stored ids to full
// movies. Ids whose movie has since been deleted are skipped.
func ListWatchlist(ws store.WatchlistStore, ms store.MovieStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok || userID == "" {
			api.Unauthorized(w, "UNAUTHORIZED", "authentication required", "")
			return
		}

		ids, err := ws.List(r.Context(), userID)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		movies, err := ms.GetByIDs(r.Context(), ids)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		for i := range movies {
			movies[i] = presentable(movies[i])
		}
		api.WriteJSON(w, http.StatusOK, watchlistResponse{Movies: movies, Total: len(movies)})
	}
}
