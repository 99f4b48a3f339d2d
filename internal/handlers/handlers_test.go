package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gorilla/mux"

	"love-letter/internal/content"
	"love-letter/internal/countries"
	"love-letter/internal/database"
	"love-letter/internal/startup"
	"love-letter/internal/thumbnail"
)

// newTestHandlers builds a handler set backed by a temp database and a
// temp web root, with the thumbnail worker left unstarted so queued
// items stay observable.
func newTestHandlers(t *testing.T) (*Handlers, *mux.Router) {
	t.Helper()

	webRoot := t.TempDir()
	dataDir := t.TempDir()

	db, err := database.New(context.Background(), filepath.Join(dataDir, "test.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	config := &startup.Config{
		WebRoot:          webRoot,
		DataDir:          dataDir,
		MasterPassword:   "sesame",
		FavoriteLimit:    2,
		ThumbnailMaxEdge: 64,
		DatabasePath:     filepath.Join(dataDir, "test.db"),
		UploadsDir:       filepath.Join(webRoot, "uploads"),
	}

	h := New(db, content.Default(), thumbnail.NewQueue(), thumbnail.NewRenderer(),
		countries.New(filepath.Join(dataDir, "countries.json")), config)

	router := mux.NewRouter()
	h.RegisterRoutes(router)
	return h, router
}

// seedCountryCache writes the disk cache the country catalog reads, so
// tests never touch the network.
func seedCountryCache(t *testing.T, dataDir string) {
	t.Helper()
	options := []countries.Option{
		{Code: "ITA", Name: "Italy"},
		{Code: "JPN", Name: "Japan"},
	}
	data, err := json.Marshal(options)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dataDir, "countries.json"), data, 0644); err != nil {
		t.Fatal(err)
	}
}

// pngBytes renders a small in-memory PNG for upload tests.
func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 80, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

// multipartBody builds a multipart form with one file field plus extra
// string fields.
func multipartBody(t *testing.T, field, filename string, data []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatal(err)
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func doJSON(t *testing.T, router *mux.Router, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewBuffer(data)
	} else {
		reader = &bytes.Buffer{}
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
}

func TestHealthCheck(t *testing.T) {
	_, router := newTestHandlers(t)

	rec := doJSON(t, router, "GET", "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var health HealthResponse
	decodeBody(t, rec, &health)
	if health.Status != "healthy" || !health.Ready {
		t.Errorf("unexpected health response: %+v", health)
	}
}

func TestGetVersion(t *testing.T) {
	_, router := newTestHandlers(t)

	rec := doJSON(t, router, "GET", "/api/version", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var info startup.BuildInfo
	decodeBody(t, rec, &info)
	if info.Version == "" {
		t.Error("version missing from build info")
	}
}

func TestGetContentOmitsGateAnswers(t *testing.T) {
	_, router := newTestHandlers(t)

	rec := doJSON(t, router, "GET", "/api/content", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	body := rec.Body.String()
	for _, secret := range []string{"answerIndex", "answerText", "pizza"} {
		if bytes.Contains([]byte(body), []byte(secret)) {
			t.Errorf("content response leaks %q", secret)
		}
	}

	var resp contentResponse
	decodeBody(t, rec, &resp)
	if resp.Hero.Title == "" {
		t.Error("hero title missing")
	}
	if len(resp.Letter.Paragraphs) == 0 {
		t.Error("letter paragraphs missing")
	}
}

func TestGetSongsWithoutItems(t *testing.T) {
	_, router := newTestHandlers(t)

	rec := doJSON(t, router, "GET", "/api/songs", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp songsResponse
	decodeBody(t, rec, &resp)
	if resp.Items == nil {
		t.Error("items should be an empty array, not null")
	}
	if resp.Heading == "" {
		t.Error("songs heading missing")
	}
}
