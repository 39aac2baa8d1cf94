package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/example/movie-platform/internal/platform/api"
	"github.com/example/movie-platform/internal/platform/auth"
	"github.com/example/movie-platform/internal/platform/events"
	"github.com/example/movie-platform/services/movies/internal/engagement"
	"github.com/example/movie-platform/services/movies/internal/omdb"
	"github.com/example/movie-platform/services/movies/internal/store"
)

type createMovieRequest struct {
	Title       string `json:"title"`
	Director    string `json:"director"`
	Year        int    `json:"year"`
	Description string `json:"description"`
	Genre       string `json:"genre"`
	PosterURL   string `json:"poster_url"`
}

type updateMovieRequest struct {
	Title       *string `json:"title"`
	Director    *string `json:"director"`
	Year        *int    `json:"year"`
	Description *string `json:"description"`
	Genre       *string `json:"genre"`
	PosterURL   *string `json:"poster_url"`
}

type likeResponse struct {
	Liked      bool `json:"liked"`
	TotalLikes int  `json:"total_likes"`
}

// presentable rounds the cached average for responses.
func presentable(m store.Movie) store.Movie {
	m.AverageRating = engagement.Round2(m.AverageRating)
	return m
}

// CreateMovie handles POST /v1/movies. When the request carries only a
// title and OMDb is configured, missing metadata is filled from OMDb.
func CreateMovie(ms store.MovieStore, enricher *omdb.Client, pub *events.Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok || userID == "" {
			api.Unauthorized(w, "UNAUTHORIZED", "authentication required", "")
			return
		}

		var req createMovieRequest
		if err := api.ReadJSON(w, r, &req, 0); err != nil {
			api.BadRequest(w, "INVALID_JSON", "invalid JSON", "", nil)
			return
		}
		req.Title = strings.TrimSpace(req.Title)
		if req.Title == "" {
			api.BadRequest(w, "MISSING_TITLE", "title is required", "", nil)
			return
		}

		if enricher.Enabled() && (req.Director == "" || req.Year == 0 || req.Description == "" || req.Genre == "") {
			if data, err := enricher.ByTitle(r.Context(), req.Title); err == nil {
				if req.Director == "" {
					req.Director = data.Director
				}
				if req.Year == 0 {
					req.Year = data.YearInt()
				}
				if req.Description == "" {
					req.Description = data.Plot
				}
				if req.Genre == "" {
					req.Genre = data.Genre
				}
				if req.PosterURL == "" {
					req.PosterURL = data.Poster
				}
			} else if !errors.Is(err, omdb.ErrNotFound) {
				api.WriteError(w, http.StatusBadGateway, "ENRICHMENT_FAILED", "metadata lookup failed", "", nil)
				return
			}
		}
		if req.Year == 0 {
			api.BadRequest(w, "MISSING_YEAR", "year is required", "", nil)
			return
		}

		created, err := ms.Create(r.Context(), store.Movie{
			Title:       req.Title,
			Director:    req.Director,
			Year:        req.Year,
			Description: req.Description,
			Genre:       req.Genre,
			PosterURL:   req.PosterURL,
			CreatedBy:   userID,
		})
		if err != nil {
			writeStoreError(w, err)
			return
		}
		pub.Publish(events.SubjectMovieCreated, userID, created.ID, map[string]any{"title": created.Title})
		api.WriteJSON(w, http.StatusCreated, presentable(created))
	}
}

// ListMovies handles GET /v1/movies with search, genre, pagination and
// sort query parameters.
func ListMovies(ms store.MovieStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := store.ListQuery{
			Search: strings.TrimSpace(r.URL.Query().Get("search")),
			Genre:  strings.TrimSpace(r.URL.Query().Get("genre")),
			Sort:   strings.TrimSpace(r.URL.Query().Get("sort")),
			Page:   1,
			Limit:  10,
		}
		if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
			q.Page = p
		}
		if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
			q.Limit = l
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

// GetMovie handles GET /v1/movies/{movie_id}
func GetMovie(ms store.MovieStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		movieID := strings.TrimSpace(chi.URLParam(r, "movie_id"))
		if movieID == "" {
			api.BadRequest(w, "MISSING_ID", "movie_id is required", "", nil)
			return
		}
		m, err := ms.GetByID(r.Context(), movieID)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, presentable(m))
	}
}

// UpdateMovie handles PUT /v1/movies/{movie_id} (owner or admin).
func UpdateMovie(ms store.MovieStore) http.HandlerFunc {
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

		var req updateMovieRequest
		if err := api.ReadJSON(w, r, &req, 0); err != nil {
			api.BadRequest(w, "INVALID_JSON", "invalid JSON", "", nil)
			return
		}
		if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
			api.BadRequest(w, "MISSING_TITLE", "title must not be empty", "", nil)
			return
		}

		updated, err := ms.Update(r.Context(), movieID, userID, auth.IsAdmin(r.Context()), store.MoviePatch{
			Title:       req.Title,
			Director:    req.Director,
			Year:        req.Year,
			Description: req.Description,
			Genre:       req.Genre,
			PosterURL:   req.PosterURL,
		})
		if err != nil {
			writeStoreError(w, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, presentable(updated))
	}
}

// DeleteMovie handles DELETE /v1/movies/{movie_id} (owner or admin).
// Ratings, likes and the whole comment thread go with the movie.
func DeleteMovie(ms store.MovieStore) http.HandlerFunc {
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
		if err := ms.Delete(r.Context(), movieID, userID, auth.IsAdmin(r.Context())); err != nil {
			writeStoreError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ToggleMovieLike handles POST /v1/movies/{movie_id}/like
func ToggleMovieLike(ms store.MovieStore, pub *events.Publisher) http.HandlerFunc {
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

		liked, total, err := ms.ToggleLike(r.Context(), movieID, userID)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		pub.Publish(events.SubjectMovieLiked, userID, movieID, map[string]any{"liked": liked})
		api.WriteJSON(w, http.StatusOK, likeResponse{Liked: liked, TotalLikes: total})
	}
}
