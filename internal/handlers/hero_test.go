package handlers

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
)

func TestGetHeroFallsBackToConfig(t *testing.T) {
	_, router := newTestHandlers(t)

	rec := doJSON(t, router, "GET", "/api/hero", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var hero heroResponse
	decodeBody(t, rec, &hero)
	if hero.Uploaded {
		t.Error("fresh install should not report an uploaded hero")
	}
	if hero.URL != "/images/roses.jpg" {
		t.Errorf("url = %q, want configured featured photo", hero.URL)
	}
}

func TestUploadHeroReplacesPrevious(t *testing.T) {
	h, router := newTestHandlers(t)

	upload := func(caption string) heroResponse {
		t.Helper()
		body, contentType := multipartBody(t, "photo", "hero.png", pngBytes(t, 300, 150), map[string]string{"caption": caption})
		req := httptest.NewRequest("POST", "/api/hero", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
		var hero heroResponse
		decodeBody(t, rec, &hero)
		return hero
	}

	first := upload("first")
	if !first.Uploaded || !strings.HasPrefix(first.URL, "/uploads/hero/hero-") {
		t.Fatalf("unexpected hero response: %+v", first)
	}
	firstPath := h.absoluteMediaPath(strings.TrimPrefix(first.URL, "/"))
	if _, err := os.Stat(firstPath); err != nil {
		t.Fatalf("hero file missing: %v", err)
	}

	second := upload("second")
	if second.Caption != "second" {
		t.Errorf("caption = %q, want %q", second.Caption, "second")
	}
	if second.URL != first.URL {
		// Names include a timestamp, so a different name means the old
		// file must be gone
		if _, err := os.Stat(firstPath); !os.IsNotExist(err) {
			t.Error("previous hero file should be deleted")
		}
	}

	rec := doJSON(t, router, "GET", "/api/hero", nil)
	var hero heroResponse
	decodeBody(t, rec, &hero)
	if !hero.Uploaded || hero.Caption != "second" {
		t.Errorf("unexpected hero after replacement: %+v", hero)
	}
}

func TestUploadHeroValidation(t *testing.T) {
	_, router := newTestHandlers(t)

	body, contentType := multipartBody(t, "photo", "movie.mp4", []byte("nope"), nil)
	req := httptest.NewRequest("POST", "/api/hero", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for video upload", rec.Code)
	}
}

func TestUpdateHeroCaption(t *testing.T) {
	_, router := newTestHandlers(t)

	// No uploaded hero yet
	rec := doJSON(t, router, "PATCH", "/api/hero", map[string]string{"caption": "new"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 before upload", rec.Code)
	}

	body, contentType := multipartBody(t, "photo", "hero.png", pngBytes(t, 100, 100), nil)
	req := httptest.NewRequest("POST", "/api/hero", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("upload failed: %d", rr.Code)
	}

	rec = doJSON(t, router, "PATCH", "/api/hero", map[string]string{"caption": "our trip"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var hero heroResponse
	decodeBody(t, rec, &hero)
	if hero.Caption != "our trip" {
		t.Errorf("caption = %q, want %q", hero.Caption, "our trip")
	}
}
