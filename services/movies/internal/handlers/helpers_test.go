package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/example/movie-platform/internal/platform/auth"
	"github.com/example/movie-platform/services/movies/internal/store"
)

// setupReq builds a request with chi URL params and optional user_id in context.
func setupReq(method, url string, body string, params map[string]string, userID string) *http.Request {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, url, bytes.NewBufferString(body))
	} else {
		req = httptest.NewRequest(method, url, nil)
	}
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	if userID != "" {
		ctx = auth.WithUserID(ctx, userID)
	}
	return req.WithContext(ctx)
}

// asAdmin adds the admin role on top of setupReq's context.
func asAdmin(req *http.Request) *http.Request {
	return req.WithContext(auth.WithRole(req.Context(), "admin"))
}

func newMovie(t *testing.T, ms *store.InMemoryMovieStore, title string, year int, owner string) store.Movie {
	t.Helper()
	m, err := ms.Create(context.Background(), store.Movie{Title: title, Year: year, Genre: "Drama", CreatedBy: owner})
	if err != nil {
		t.Fatalf("create %s: %v", title, err)
	}
	return m
}
