package handlers

import (
	"net/http"
	"net/url"
	"testing"
)

func TestSearchWatchlistValidation(t *testing.T) {
	_, router := newTestHandlers(t)

	for _, q := range []string{"", "a", "  b  "} {
		rec := doJSON(t, router, "GET", "/api/watchlist/search?q="+url.QueryEscape(q), nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("q=%q: status = %d, want 400", q, rec.Code)
		}
	}
}

func TestSearchWatchlistWithoutAPIKey(t *testing.T) {
	// The test config carries no OMDB key, so search is unavailable
	_, router := newTestHandlers(t)

	rec := doJSON(t, router, "GET", "/api/watchlist/search?q=inception", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestAddWatchlistMovieValidation(t *testing.T) {
	_, router := newTestHandlers(t)

	rec := doJSON(t, router, "POST", "/api/watchlist", map[string]string{"imdbId": "  "})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for blank id", rec.Code)
	}
}

func TestSetWatchedUnknownMovie(t *testing.T) {
	_, router := newTestHandlers(t)

	rec := doJSON(t, router, "POST", "/api/watchlist/no-such-id/watched", map[string]bool{"watched": true})
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestListWatchlistEmpty(t *testing.T) {
	_, router := newTestHandlers(t)

	rec := doJSON(t, router, "GET", "/api/watchlist", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := rec.Body.String(); body == "null\n" {
		t.Error("empty watchlist should encode as an array")
	}
}
