package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/example/movie-platform/services/movies/internal/store"
)

func TestRateMovie(t *testing.T) {
	ms := store.NewInMemoryMovieStore()
	m := newMovie(t, ms, "Heat", 1995, "user-a")
	handler := RateMovie(ms, nil)
	params := map[string]string{"movie_id": m.ID}

	req := setupReq(http.MethodPost, "/v1/movies/"+m.ID+"/ratings", `{"value":5}`, params, "user-b")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	req = setupReq(http.MethodPost, "/v1/movies/"+m.ID+"/ratings", `{"value":2}`, params, "user-c")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	var res rateResponse
	if err := json.NewDecoder(rr.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.AverageRating != 3.5 || res.TotalRatings != 2 {
		t.Fatalf("expected 3.5/2, got %+v", res)
	}
}

func TestRateMovie_Overwrite(t *testing.T) {
	ms := store.NewInMemoryMovieStore()
	m := newMovie(t, ms, "Heat", 1995, "user-a")
	handler := RateMovie(ms, nil)
	params := map[string]string{"movie_id": m.ID}

	for _, v := range []string{`{"value":5}`, `{"value":1}`} {
		req := setupReq(http.MethodPost, "/v1/movies/"+m.ID+"/ratings", v, params, "user-b")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
	}

	req := setupReq(http.MethodPost, "/v1/movies/"+m.ID+"/ratings", `{"value":3}`, params, "user-b")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	var res rateResponse
	_ = json.NewDecoder(rr.Body).Decode(&res)
	if res.TotalRatings != 1 || res.AverageRating != 3 {
		t.Fatalf("expected single overwritten rating of 3, got %+v", res)
	}
}

func TestRateMovie_OutOfRange(t *testing.T) {
	ms := store.NewInMemoryMovieStore()
	m := newMovie(t, ms, "Heat", 1995, "user-a")
	handler := RateMovie(ms, nil)

	for _, body := range []string{`{"value":0}`, `{"value":6}`} {
		req := setupReq(http.MethodPost, "/v1/movies/"+m.ID+"/ratings", body,
			map[string]string{"movie_id": m.ID}, "user-b")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for %s, got %d", body, rr.Code)
		}
	}
}

func TestRateMovie_MovieNotFound(t *testing.T) {
	handler := RateMovie(store.NewInMemoryMovieStore(), nil)
	req := setupReq(http.MethodPost, "/v1/movies/nope/ratings", `{"value":4}`,
		map[string]string{"movie_id": "nope"}, "user-b")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}
