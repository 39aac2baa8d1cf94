package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/movie-platform/services/movies/internal/engagement"
)

// InMemoryMovieStore is a development-only in-memory implementation. The
// store mutex serializes every read-modify-write per aggregate; the
// engagement ops themselves are copy-on-write, so readers holding slices
// from a previous state never observe in-place mutation.
type InMemoryMovieStore struct {
	mu     sync.RWMutex
	movies map[string]Movie
}

func NewInMemoryMovieStore() *InMemoryMovieStore {
	return &InMemoryMovieStore{movies: make(map[string]Movie)}
}

func (s *InMemoryMovieStore) Create(_ context.Context, m Movie) (Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.movies {
		if strings.EqualFold(existing.Title, m.Title) && existing.Year == m.Year {
			return Movie{}, ErrDuplicate
		}
	}

	m.ID = uuid.New().String()
	m.CreatedAt = time.Now().UTC()
	m.UpdatedAt = m.CreatedAt
	if m.Likes == nil {
		m.Likes = []string{}
	}
	m.Ratings = nil
	m.AverageRating = 0
	m.Comments = nil
	s.movies[m.ID] = m
	return m, nil
}

func (s *InMemoryMovieStore) GetByID(_ context.Context, id string) (Movie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.movies[id]
	if !ok {
		return Movie{}, engagement.ErrNotFound
	}
	return m, nil
}

func (s *InMemoryMovieStore) GetByIDs(_ context.Context, ids []string) ([]Movie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Movie, 0, len(ids))
	for _, id := range ids {
		if m, ok := s.movies[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *InMemoryMovieStore) List(_ context.Context, q ListQuery) (ListResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 || q.Limit > 50 {
		q.Limit = 10
	}

	var matched []Movie
	for _, m := range s.movies {
		if q.Search != "" && !strings.Contains(strings.ToLower(m.Title), strings.ToLower(q.Search)) {
			continue
		}
		if q.Genre != "" && !strings.Contains(strings.ToLower(m.Genre), strings.ToLower(q.Genre)) {
			continue
		}
		matched = append(matched, m)
	}

	// Map iteration order is random; pin a deterministic base order before
	// the stable mode sort so ties stay reproducible.
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		return matched[i].ID < matched[j].ID
	})
	sort.SliceStable(matched, func(i, j int) bool {
		return engagement.Less(summaryOf(matched[i]), summaryOf(matched[j]), q.Sort)
	})

	total := len(matched)
	totalPages := (total + q.Limit - 1) / q.Limit
	start := (q.Page - 1) * q.Limit
	if start > total {
		start = total
	}
	end := start + q.Limit
	if end > total {
		end = total
	}

	page := make([]Movie, end-start)
	copy(page, matched[start:end])
	return ListResult{
		Movies:       page,
		TotalResults: total,
		CurrentPage:  q.Page,
		TotalPages:   totalPages,
	}, nil
}

func summaryOf(m Movie) engagement.MovieSummary {
	return engagement.MovieSummary{
		AverageRating: m.AverageRating,
		Likes:         len(m.Likes),
		CreatedAt:     m.CreatedAt,
	}
}

func (s *InMemoryMovieStore) Update(_ context.Context, id, callerID string, admin bool, p MoviePatch) (Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.movies[id]
	if !ok {
		return Movie{}, engagement.ErrNotFound
	}
	if m.CreatedBy != callerID && !admin {
		return Movie{}, engagement.ErrForbidden
	}

	if p.Title != nil {
		m.Title = strings.TrimSpace(*p.Title)
	}
	if p.Director != nil {
		m.Director = *p.Director
	}
	if p.Year != nil {
		m.Year = *p.Year
	}
	if p.Description != nil {
		m.Description = *p.Description
	}
	if p.Genre != nil {
		m.Genre = *p.Genre
	}
	if p.PosterURL != nil {
		m.PosterURL = *p.PosterURL
	}

	for otherID, other := range s.movies {
		if otherID != id && strings.EqualFold(other.Title, m.Title) && other.Year == m.Year {
			return Movie{}, ErrDuplicate
		}
	}

	m.UpdatedAt = time.Now().UTC()
	s.movies[id] = m
	return m, nil
}

func (s *InMemoryMovieStore) Delete(_ context.Context, id, callerID string, admin bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.movies[id]
	if !ok {
		return engagement.ErrNotFound
	}
	if m.CreatedBy != callerID && !admin {
		return engagement.ErrForbidden
	}
	delete(s.movies, id)
	return nil
}

func (s *InMemoryMovieStore) ToggleLike(_ context.Context, id, userID string) (bool, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.movies[id]
	if !ok {
		return false, 0, engagement.ErrNotFound
	}
	likes, added := engagement.Toggle(m.Likes, userID)
	m.Likes = likes
	s.movies[id] = m
	return added, len(likes), nil
}

func (s *InMemoryMovieStore) Rate(_ context.Context, id, userID string, value int) (engagement.RatingSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.movies[id]
	if !ok {
		return engagement.RatingSummary{}, engagement.ErrNotFound
	}
	ratings, summary, err := engagement.Rate(m.Ratings, userID, value)
	if err != nil {
		return engagement.RatingSummary{}, err
	}
	m.Ratings = ratings
	m.AverageRating = summary.AverageRating
	s.movies[id] = m
	return summary, nil
}

func (s *InMemoryMovieStore) Comments(_ context.Context, movieID string) ([]engagement.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.movies[movieID]
	if !ok {
		return nil, engagement.ErrNotFound
	}
	return m.Comments, nil
}

func (s *InMemoryMovieStore) AddComment(_ context.Context, movieID, userID, body string, parentID *string) (engagement.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.movies[movieID]
	if !ok {
		return engagement.Comment{}, engagement.ErrNotFound
	}
	comments, created, err := engagement.Add(m.Comments, engagement.Comment{
		ID:        uuid.New().String(),
		UserID:    userID,
		ParentID:  parentID,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return engagement.Comment{}, err
	}
	m.Comments = comments
	s.movies[movieID] = m
	return created, nil
}

func (s *InMemoryMovieStore) EditComment(_ context.Context, movieID, commentID, callerID string, admin bool, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.movies[movieID]
	if !ok {
		return engagement.ErrNotFound
	}
	comments, err := engagement.Edit(m.Comments, commentID, callerID, admin, body, time.Now().UTC())
	if err != nil {
		return err
	}
	m.Comments = comments
	s.movies[movieID] = m
	return nil
}

func (s *InMemoryMovieStore) DeleteComment(_ context.Context, movieID, commentID, callerID string, admin bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.movies[movieID]
	if !ok {
		return 0, engagement.ErrNotFound
	}
	comments, removed, err := engagement.Delete(m.Comments, commentID, callerID, admin)
	if err != nil {
		return 0, err
	}
	m.Comments = comments
	s.movies[movieID] = m
	return removed, nil
}

func (s *InMemoryMovieStore) ReactToComment(_ context.Context, movieID, commentID, userID string, kind engagement.ReactionKind) (engagement.ReactionCounts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.movies[movieID]
	if !ok {
		return engagement.ReactionCounts{}, engagement.ErrNotFound
	}
	comments, counts, err := engagement.React(m.Comments, commentID, userID, kind)
	if err != nil {
		return engagement.ReactionCounts{}, err
	}
	m.Comments = comments
	s.movies[movieID] = m
	return counts, nil
}

func (s *InMemoryMovieStore) Stats(_ context.Context) (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var st Stats
	st.TotalMovies = len(s.movies)
	for _, m := range s.movies {
		st.TotalComments += len(m.Comments)
		st.TotalRatings += len(m.Ratings)
		st.TotalMovieLikes += len(m.Likes)
	}
	return st, nil
}

func (s *InMemoryMovieStore) AllComments(_ context.Context) ([]FlatComment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []FlatComment{}
	for _, m := range s.movies {
		for _, c := range m.Comments {
			out = append(out, FlatComment{Comment: c, MovieID: m.ID, MovieTitle: m.Title})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
