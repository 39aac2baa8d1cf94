package store

import (
	"context"
	"errors"
	"time"

	"github.com/example/movie-platform/services/movies/internal/engagement"
)

// ErrDuplicate is returned when a movie with the same title and year
// already exists.
var ErrDuplicate = errors.New("movie already exists (same title and year)")

// Movie is the per-movie aggregate: catalog metadata plus the engagement
// state (likes, ratings, comments) the pure core operates on.
type Movie struct {
	ID            string               `json:"id"`
	Title         string               `json:"title"`
	Director      string               `json:"director,omitempty"`
	Year          int                  `json:"year,omitempty"`
	Description   string               `json:"description,omitempty"`
	Genre         string               `json:"genre,omitempty"`
	PosterURL     string               `json:"poster_url,omitempty"`
	CreatedBy     string               `json:"created_by"`
	Likes         []string             `json:"likes"`
	Ratings       []engagement.Rating  `json:"ratings"`
	AverageRating float64              `json:"average_rating"`
	Comments      []engagement.Comment `json:"comments,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// MoviePatch carries optional metadata updates; nil fields are untouched.
type MoviePatch struct {
	Title       *string `json:"title,omitempty"`
	Director    *string `json:"director,omitempty"`
	Year        *int    `json:"year,omitempty"`
	Description *string `json:"description,omitempty"`
	Genre       *string `json:"genre,omitempty"`
	PosterURL   *string `json:"poster_url,omitempty"`
}

// ListQuery filters and orders the movie listing.
type ListQuery struct {
	Search string
	Genre  string
	Page   int
	Limit  int
	Sort   string
}

// ListResult is one page of the listing.
type ListResult struct {
	Movies       []Movie `json:"movies"`
	TotalResults int     `json:"total_results"`
	CurrentPage  int     `json:"current_page"`
	TotalPages   int     `json:"total_pages"`
}

// Stats feeds the admin dashboard.
type Stats struct {
	TotalMovies     int `json:"total_movies"`
	TotalComments   int `json:"total_comments"`
	TotalRatings    int `json:"total_ratings"`
	TotalMovieLikes int `json:"total_movie_likes"`
}

// FlatComment is a comment joined with its movie, for admin extraction.
type FlatComment struct {
	engagement.Comment
	MovieID    string `json:"movie_id"`
	MovieTitle string `json:"movie_title"`
}

// MovieStore defines the persistence contract for movie aggregates. Every
// mutating operation is a serialized read-modify-write on one movie, so
// concurrent callers never lose each other's updates. Comment and rating
// mutations surface the core's sentinel errors (engagement.ErrNotFound,
// ErrInvalidInput, ErrForbidden) unchanged.
type MovieStore interface {
	Create(ctx context.Context, m Movie) (Movie, error)
	GetByID(ctx context.Context, id string) (Movie, error)
	GetByIDs(ctx context.Context, ids []string) ([]Movie, error)
	List(ctx context.Context, q ListQuery) (ListResult, error)
	Update(ctx context.Context, id, callerID string, admin bool, p MoviePatch) (Movie, error)
	Delete(ctx context.Context, id, callerID string, admin bool) error

	ToggleLike(ctx context.Context, id, userID string) (liked bool, totalLikes int, err error)
	Rate(ctx context.Context, id, userID string, value int) (engagement.RatingSummary, error)

	Comments(ctx context.Context, movieID string) ([]engagement.Comment, error)
	AddComment(ctx context.Context, movieID, userID, body string, parentID *string) (engagement.Comment, error)
	EditComment(ctx context.Context, movieID, commentID, callerID string, admin bool, body string) error
	DeleteComment(ctx context.Context, movieID, commentID, callerID string, admin bool) (removed int, err error)
	ReactToComment(ctx context.Context, movieID, commentID, userID string, kind engagement.ReactionKind) (engagement.ReactionCounts, error)

	Stats(ctx context.Context) (Stats, error)
	AllComments(ctx context.Context) ([]FlatComment, error)
}

// WatchlistStore tracks per-user movie-id sets.
type WatchlistStore interface {
	Toggle(ctx context.Context, userID, movieID string) (added bool, total int, err error)
	List(ctx context.Context, userID string) ([]string, error)
}
