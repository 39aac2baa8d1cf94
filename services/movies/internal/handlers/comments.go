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

type createCommentRequest struct {
	Body     string  `json:"body"`
	ParentID *string `json:"parent_id,omitempty"`
}

type updateCommentRequest struct {
	Body string `json:"body"`
}

type reactRequest struct {
	Reaction string `json:"reaction"`
}

type commentsResponse struct {
	Comments []engagement.Comment      `json:"comments"`
	Threaded []*engagement.CommentNode `json:"threaded"`
	Total    int                       `json:"total"`
}

type deleteCommentResponse struct {
	RemovedCount int `json:"removed_count"`
}

// GetComments handles GET /v1/movies/{movie_id}/comments. The response
// carries both the flat list and the reply tree.
func GetComments(ms store.MovieStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		movieID := strings.TrimSpace(chi.URLParam(r, "movie_id"))
		if movieID == "" {
			api.BadRequest(w, "MISSING_ID", "movie_id is required", "", nil)
			return
		}

		comments, err := ms.Comments(r.Context(), movieID)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		if comments == nil {
			comments = []engagement.Comment{}
		}
		api.WriteJSON(w, http.StatusOK, commentsResponse{
			Comments: comments,
			Threaded: engagement.BuildThread(comments),
			Total:    len(comments),
		})
	}
}

// CreateComment handles POST /v1/movies/{movie_id}/comments. A non-nil
// parent_id creates a reply; the parent must exist on the same movie.
func CreateComment(ms store.MovieStore, pub *events.Publisher) http.HandlerFunc {
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

		var req createCommentRequest
		if err := api.ReadJSON(w, r, &req, 0); err != nil {
			api.BadRequest(w, "INVALID_JSON", "invalid JSON", "", nil)
			return
		}
		if strings.TrimSpace(req.Body) == "" {
			api.BadRequest(w, "EMPTY_BODY", "body must not be empty", "", nil)
			return
		}

		created, err := ms.AddComment(r.Context(), movieID, userID, req.Body, req.ParentID)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		props := map[string]any{"comment_id": created.ID}
		if created.ParentID != nil {
			props["parent_id"] = *created.ParentID
		}
		pub.Publish(events.SubjectCommentCreated, userID, movieID, props)
		api.WriteJSON(w, http.StatusCreated, created)
	}
}

// UpdateComment handles PUT /v1/movies/{movie_id}/comments/{comment_id}
// (author or admin).
func UpdateComment(ms store.MovieStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok || userID == "" {
			api.Unauthorized(w, "UNAUTHORIZED", "authentication required", "")
			return
		}
		movieID := strings.TrimSpace(chi.URLParam(r, "movie_id"))
		commentID := strings.TrimSpace(chi.URLParam(r, "comment_id"))
		if movieID == "" || commentID == "" {
			api.BadRequest(w, "MISSING_ID", "movie_id and comment_id are required", "", nil)
			return
		}

		var req updateCommentRequest
		if err := api.ReadJSON(w, r, &req, 0); err != nil {
			api.BadRequest(w, "INVALID_JSON", "invalid JSON", "", nil)
			return
		}
		if strings.TrimSpace(req.Body) == "" {
			api.BadRequest(w, "EMPTY_BODY", "body must not be empty", "", nil)
			return
		}

		if err := ms.EditComment(r.Context(), movieID, commentID, userID, auth.IsAdmin(r.Context()), req.Body); err != nil {
			writeStoreError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// DeleteComment handles DELETE /v1/movies/{movie_id}/comments/{comment_id}.
// Deleting a comment removes its entire reply subtree; the response
// reports how many comments went away.
func DeleteComment(ms store.MovieStore, pub *events.Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok || userID == "" {
			api.Unauthorized(w, "UNAUTHORIZED", "authentication required", "")
			return
		}
		movieID := strings.TrimSpace(chi.URLParam(r, "movie_id"))
		commentID := strings.TrimSpace(chi.URLParam(r, "comment_id"))
		if movieID == "" || commentID == "" {
			api.BadRequest(w, "MISSING_ID", "movie_id and comment_id are required", "", nil)
			return
		}

		removed, err := ms.DeleteComment(r.Context(), movieID, commentID, userID, auth.IsAdmin(r.Context()))
		if err != nil {
			writeStoreError(w, err)
			return
		}
		pub.Publish(events.SubjectCommentDeleted, userID, movieID, map[string]any{
			"comment_id":    commentID,
			"removed_count": removed,
		})
		api.WriteJSON(w, http.StatusOK, deleteCommentResponse{RemovedCount: removed})
	}
}

// ReactToComment handles POST /v1/movies/{movie_id}/comments/{comment_id}/reactions.
// Likes and dislikes are mutually exclusive per user.
func ReactToComment(ms store.MovieStore, pub *events.Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok || userID == "" {
			api.Unauthorized(w, "UNAUTHORIZED", "authentication required", "")
			return
		}
		movieID := strings.TrimSpace(chi.URLParam(r, "movie_id"))
		commentID := strings.TrimSpace(chi.URLParam(r, "comment_id"))
		if movieID == "" || commentID == "" {
			api.BadRequest(w, "MISSING_ID", "movie_id and comment_id are required", "", nil)
			return
		}

		var req reactRequest
		if err := api.ReadJSON(w, r, &req, 0); err != nil {
			api.BadRequest(w, "INVALID_JSON", "invalid JSON", "", nil)
			return
		}
		kind := engagement.ReactionKind(strings.ToLower(strings.TrimSpace(req.Reaction)))
		if kind != engagement.ReactionLike && kind != engagement.ReactionDislike {
			api.BadRequest(w, "INVALID_REACTION", "reaction must be like or dislike", "", nil)
			return
		}

		counts, err := ms.ReactToComment(r.Context(), movieID, commentID, userID, kind)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		pub.Publish(events.SubjectCommentReacted, userID, movieID, map[string]any{
			"comment_id": commentID,
			"reaction":   string(kind),
		})
		api.WriteJSON(w, http.StatusOK, counts)
	}
}
