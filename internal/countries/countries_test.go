package countries

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

const apiPayload = `[
	{"name": {"common": "Iceland"}, "flags": {"png": "https://flags.example/isl.png", "svg": "https://flags.example/isl.svg"}, "cca3": "ISL"},
	{"name": {"common": "Austria"}, "flags": {"png": "https://flags.example/aut.png"}, "cca3": "AUT"},
	{"name": {"common": ""}, "cca3": "XXX"},
	{"cca3": ""}
]`

func newTestCatalog(t *testing.T, handler http.HandlerFunc) (*Catalog, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c := &Catalog{
		client:    &http.Client{Timeout: 5 * time.Second},
		apiURL:    server.URL,
		cachePath: filepath.Join(t.TempDir(), "countries-cache.json"),
	}
	return c, server
}

func TestAllFetchesAndFilters(t *testing.T) {
	c, _ := newTestCatalog(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(apiPayload))
	})

	all, err := c.All(context.Background())
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d countries, want 2 (invalid entries filtered)", len(all))
	}
	// Sorted by name
	if all[0].Name != "Austria" || all[1].Name != "Iceland" {
		t.Errorf("countries not sorted by name: %v", all)
	}
	if all[1].FlagSVG != "https://flags.example/isl.svg" {
		t.Errorf("flag svg not mapped: %q", all[1].FlagSVG)
	}
}

func TestAllWritesAndReusesDiskCache(t *testing.T) {
	var calls int32
	c, _ := newTestCatalog(t, func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(apiPayload))
	})

	if _, err := c.All(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(c.cachePath); err != nil {
		t.Fatalf("disk cache not written: %v", err)
	}

	// A fresh catalog with the same cache path never hits the API
	c2 := &Catalog{
		client:    c.client,
		apiURL:    "http://127.0.0.1:0", // unroutable; must not be called
		cachePath: c.cachePath,
	}
	all, err := c2.All(context.Background())
	if err != nil {
		t.Fatalf("All from disk cache: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("got %d countries from disk cache, want 2", len(all))
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("API called %d times, want 1", calls)
	}
}

func TestAllMemoryCache(t *testing.T) {
	var calls int32
	c, _ := newTestCatalog(t, func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(apiPayload))
	})

	for i := 0; i < 3; i++ {
		if _, err := c.All(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("API called %d times, want 1", calls)
	}
}

func TestAllIgnoresCorruptDiskCache(t *testing.T) {
	c, _ := newTestCatalog(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(apiPayload))
	})
	if err := os.WriteFile(c.cachePath, []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}

	all, err := c.All(context.Background())
	if err != nil {
		t.Fatalf("All with corrupt cache: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("got %d countries, want 2 from API", len(all))
	}
}

func TestAllAPIFailure(t *testing.T) {
	c, _ := newTestCatalog(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	if _, err := c.All(context.Background()); err == nil {
		t.Error("expected error when API fails and no cache exists")
	}
}

func TestFindByCode(t *testing.T) {
	c, _ := newTestCatalog(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(apiPayload))
	})
	ctx := context.Background()

	got, err := c.FindByCode(ctx, "isl")
	if err != nil {
		t.Fatalf("FindByCode: %v", err)
	}
	if got == nil || got.Name != "Iceland" {
		t.Errorf("FindByCode(isl) = %+v, want Iceland", got)
	}

	got, _ = c.FindByCode(ctx, "  AUT ")
	if got == nil || got.Code != "AUT" {
		t.Errorf("FindByCode should trim whitespace, got %+v", got)
	}

	got, _ = c.FindByCode(ctx, "ZZZ")
	if got != nil {
		t.Errorf("unknown code should return nil, got %+v", got)
	}

	got, _ = c.FindByCode(ctx, "")
	if got != nil {
		t.Errorf("blank code should return nil, got %+v", got)
	}
}

func TestCacheFileRoundTrip(t *testing.T) {
	c, _ := newTestCatalog(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(apiPayload))
	})
	if _, err := c.All(context.Background()); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(c.cachePath)
	if err != nil {
		t.Fatal(err)
	}
	var cached []Option
	if err := json.Unmarshal(data, &cached); err != nil {
		t.Fatalf("cache file is not valid JSON: %v", err)
	}
	if len(cached) != 2 {
		t.Errorf("cache file holds %d countries, want 2", len(cached))
	}
}
