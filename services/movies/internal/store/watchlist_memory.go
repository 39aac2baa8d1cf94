package store

import (
	"context"
	"sync"

	"github.com/example/movie-platform/services/movies/internal/engagement"
)

// InMemoryWatchlistStore is a development-only in-memory implementation.
type InMemoryWatchlistStore struct {
	mu    sync.RWMutex
	lists map[string][]string // userID -> movie ids, insertion order
}

func NewInMemoryWatchlistStore() *InMemoryWatchlistStore {
	return &InMemoryWatchlistStore{lists: make(map[string][]string)}
}

func (s *InMemoryWatchlistStore) Toggle(_ context.Context, userID, movieID string) (bool, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, added := engagement.Toggle(s.lists[userID], movieID)
	s.lists[userID] = list
	return added, len(list), nil
}

func (s *InMemoryWatchlistStore) List(_ context.Context, userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.lists[userID]
	out := make([]string, len(list))
	copy(out, list)
	return out, nil
}
