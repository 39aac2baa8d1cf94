package omdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestByTitle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("apikey"); got != "test-key" {
			t.Errorf("expected apikey test-key, got %q", got)
		}
		if got := r.URL.Query().Get("t"); got != "Heat" {
			t.Errorf("expected t=Heat, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"Title":"Heat","Year":"1995","Director":"Michael Mann","Plot":"A heist.","Genre":"Crime, Drama","Poster":"https://img/heat.jpg","Response":"True"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "test-key")
	got, err := c.ByTitle(context.Background(), "Heat")
	if err != nil {
		t.Fatalf("ByTitle: %v", err)
	}
	if got.Title != "Heat" || got.Director != "Michael Mann" {
		t.Fatalf("unexpected payload: %+v", got)
	}
	if got.YearInt() != 1995 {
		t.Fatalf("expected year 1995, got %d", got.YearInt())
	}
}

func TestByTitle_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Response":"False","Error":"Movie not found!"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "test-key")
	if _, err := c.ByTitle(context.Background(), "Nope"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestByTitle_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(srv.URL, "test-key")
	if _, err := c.ByTitle(context.Background(), "Heat"); err == nil {
		t.Fatal("expected error for non-200 status")
	}
}

func TestYearInt_Range(t *testing.T) {
	d := MovieData{Year: "1995-1998"}
	if d.YearInt() != 1995 {
		t.Fatalf("expected 1995 from range, got %d", d.YearInt())
	}
}

func TestEnabled(t *testing.T) {
	if New("", "").Enabled() {
		t.Fatal("expected disabled without api key")
	}
	if !New("", "k").Enabled() {
		t.Fatal("expected enabled with api key")
	}
}
