package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/example/movie-platform/internal/platform/api"
	"github.com/example/movie-platform/internal/platform/auth"
	"github.com/example/movie-platform/internal/platform/events"
	"github.com/example/movie-platform/services/movies/internal/engagement"
	"github.com/example/movie-platform/services/movies/internal/store"
)

type rateRequest struct {
	Value int `json:"value"`
}

type rateResponse struct {
	AverageRating float64 `json:"average_rating"`
	TotalRatings  int     `json:"total_ratings"`
}

// RateMovie handles POST /v1/movies/{movie_id}/ratings. Rating the same
// movie twice overwrites the caller's previous value.
func RateMovie(ms store.MovieStore, pub *events.Publisher) http.HandlerFunc {
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

		var req rateRequest
		if err := api.ReadJSON(w, r, &req, 0); err != nil {
			api.BadRequest(w, "INVALID_JSON", "invalid JSON", "", nil)
			return
		}
		if req.Value < 1 || req.Value > 5 {
			api.BadRequest(w, "INVALID_RATING", "value must be between 1 and 5", "", nil)
			return
		}

		summary, err := ms.Rate(r.Context(), movieID, userID, req.Value)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		pub.Publish(events.SubjectMovieRated, userID, movieID, map[string]any{"value": req.Value})
		api.WriteJSON(w, http.StatusOK, rateResponse{
			AverageRating: engagement.Round2(summary.AverageRating),
			TotalRatings:  summary.TotalRatings,
		})
	}
}
