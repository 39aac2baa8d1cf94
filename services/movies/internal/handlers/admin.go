package handlers

import (
	"net/http"
	"strconv"

	"github.com/example/movie-platform/internal/platform/api"
	"github.com/example/movie-platform/services/movies/internal/store"
)

type adminCommentsResponse struct {
	Comments []store.FlatComment `json:"comments"`
	Total    int                 `json:"total"`
}

// AdminDashboard handles GET /v1/admin/dashboard
func AdminDashboard(ms store.MovieStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := ms.Stats(r.Context())
		if err != nil {
			writeStoreError(w, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, stats)
	}
}

// AdminComments handles GET /v1/admin/comments, flattening every
// comment across the catalog for moderation.
func AdminComments(ms store.MovieStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		comments, err := ms.AllComments(r.Context())
		if err != nil {
			writeStoreError(w, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, adminCommentsResponse{Comments: comments, Total: len(comments)})
	}
}

// AdminMovies handles GET /v1/admin/movies, the unfiltered paginated
// catalog view.
func AdminMovies(ms store.MovieStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := store.ListQuery{Page: 1, Limit: 50}
		if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
			q.Page = p
		}
		res, err := ms.List(r.Context(), q)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		for i := range res.Movies {
			res.Movies[i] = presentable(res.Movies[i])
		}
		api.WriteJSON(w, http.StatusOK, res)
	}
}
