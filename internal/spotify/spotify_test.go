package spotify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return &Client{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		oembedURL:  server.URL,
		cache:      make(map[string]cacheEntry),
	}
}

func TestGetMetadata(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("url"); got != "https://open.spotify.com/track/abc" {
			t.Errorf("url param = %q", got)
		}
		_, _ = w.Write([]byte(`{"title": "Test Song", "thumbnail_url": "https://i.scdn.co/image/x"}`))
	})

	meta := c.GetMetadata(context.Background(), "https://open.spotify.com/track/abc")
	if meta == nil {
		t.Fatal("GetMetadata returned nil")
	}
	if meta.Title != "Test Song" {
		t.Errorf("title = %q", meta.Title)
	}
	if meta.ThumbnailURL != "https://i.scdn.co/image/x" {
		t.Errorf("thumbnail = %q", meta.ThumbnailURL)
	}
}

func TestGetMetadataCaches(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`{"title": "Cached", "thumbnail_url": ""}`))
	})

	for i := 0; i < 3; i++ {
		if meta := c.GetMetadata(context.Background(), "https://open.spotify.com/track/x"); meta == nil {
			t.Fatal("GetMetadata returned nil")
		}
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("oEmbed called %d times, want 1", calls)
	}
}

func TestGetMetadataCacheExpiry(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`{"title": "T"}`))
	})

	c.GetMetadata(context.Background(), "https://open.spotify.com/track/x")

	// Force the entry to expire
	c.mu.Lock()
	entry := c.cache["https://open.spotify.com/track/x"]
	entry.expires = time.Now().Add(-time.Minute)
	c.cache["https://open.spotify.com/track/x"] = entry
	c.mu.Unlock()

	c.GetMetadata(context.Background(), "https://open.spotify.com/track/x")
	if atomic.LoadInt32(&calls) != 2 {
		t.Errorf("expired entry should be refetched, calls = %d", calls)
	}
}

func TestGetMetadataSoftFailures(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	if meta := c.GetMetadata(context.Background(), "https://open.spotify.com/track/gone"); meta != nil {
		t.Errorf("HTTP 404 should yield nil, got %+v", meta)
	}
	if meta := c.GetMetadata(context.Background(), ""); meta != nil {
		t.Errorf("blank URL should yield nil, got %+v", meta)
	}

	// Failures are not cached; a later success goes through
	c2 := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	})
	if meta := c2.GetMetadata(context.Background(), "https://open.spotify.com/track/bad"); meta != nil {
		t.Errorf("bad JSON should yield nil, got %+v", meta)
	}
}
