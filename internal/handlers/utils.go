package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"love-letter/internal/database"
	"love-letter/internal/logging"
	"love-letter/internal/thumbnail"
)

const (
	maxGalleryUploadBytes = 15 << 20
	maxBucketUploadBytes  = 50 << 20
	maxCaptionLength      = 160
	maxAlbumNameLength    = 80
	maxTitleLength        = 160
)

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
}

var videoExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".m4v":  true,
	".webm": true,
	".avi":  true,
}

// writeJSON encodes v as JSON and writes it to the response writer.
// Any encoding or write errors are logged since we typically cannot
// recover from them in an HTTP handler context.
func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("failed to encode JSON response: %v", err)
	}
}

// writeJSONError writes an error response as JSON with the given status code.
func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	writeJSON(w, map[string]string{"error": message})
}

// writeCreated writes v as JSON with a 201 status.
func writeCreated(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, v)
}

// decodeJSON decodes the request body into v, rejecting unknown fields
// quietly (extra fields are ignored, malformed JSON is not).
func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// masterPasswordMatches compares a supplied password against the
// configured master password. An empty configured password disables the
// check entirely.
func (h *Handlers) masterPasswordMatches(password string) bool {
	if h.config.MasterPassword == "" {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(h.config.MasterPassword)) == 1
}

// masterPasswordValid checks the X-Master-Pass request header.
func (h *Handlers) masterPasswordValid(r *http.Request) bool {
	return h.masterPasswordMatches(r.Header.Get("X-Master-Pass"))
}

// photoResponse decorates a gallery photo with its serving URLs.
type photoResponse struct {
	*database.GalleryPhoto
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
}

func newPhotoResponse(p *database.GalleryPhoto) photoResponse {
	return photoResponse{
		GalleryPhoto: p,
		URL:          p.URL(),
		ThumbnailURL: p.ThumbnailURL(),
	}
}

func newPhotoResponses(photos []*database.GalleryPhoto) []photoResponse {
	out := make([]photoResponse, 0, len(photos))
	for _, p := range photos {
		out = append(out, newPhotoResponse(p))
	}
	return out
}

// mediaResponse decorates bucket list media with its serving URLs.
type mediaResponse struct {
	*database.BucketListMedia
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
}

// entryResponse replaces the raw media rows with decorated ones.
type entryResponse struct {
	*database.BucketListEntry
	Media []mediaResponse `json:"media"`
}

func newEntryResponse(e *database.BucketListEntry) entryResponse {
	media := make([]mediaResponse, 0, len(e.Media))
	for i := range e.Media {
		m := &e.Media[i]
		media = append(media, mediaResponse{
			BucketListMedia: m,
			URL:             m.URL(),
			ThumbnailURL:    m.ThumbnailURL(),
		})
	}
	return entryResponse{BucketListEntry: e, Media: media}
}

func newEntryResponses(entries []*database.BucketListEntry) []entryResponse {
	out := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, newEntryResponse(e))
	}
	return out
}

// saveUploadedReader streams one uploaded file to destPath, creating the
// destination directory as needed. A partial file is removed on failure.
func saveUploadedReader(file io.Reader, destPath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := io.Copy(out, file); err != nil {
		out.Close()
		os.Remove(destPath)
		return fmt.Errorf("failed to write file: %w", err)
	}
	return out.Close()
}

// generateThumbnailFor makes a synchronous thumbnail attempt for an image
// already saved under the web root. It returns the stored relative
// thumbnail path, or "" when generation failed.
func (h *Handlers) generateThumbnailFor(absPath string) string {
	baseName := strings.TrimSuffix(filepath.Base(absPath), filepath.Ext(absPath))
	destDir := filepath.Join(filepath.Dir(absPath), "thumbs")

	thumbAbs, ok := h.renderer.Generate(absPath, destDir, baseName, h.config.ThumbnailMaxEdge)
	if !ok {
		return ""
	}
	return thumbnail.RelativePath(h.config.WebRoot, thumbAbs)
}

// absoluteMediaPath resolves a stored root-relative path against the web
// root.
func (h *Handlers) absoluteMediaPath(storedPath string) string {
	return filepath.Join(h.config.WebRoot, filepath.FromSlash(strings.TrimPrefix(storedPath, "/")))
}

// removeMediaFiles deletes the original and thumbnail for a stored media
// path, best effort. A thumbnail equal to the original (the fallback
// case) is only removed once.
func (h *Handlers) removeMediaFiles(filePath, thumbnailPath string) {
	if filePath != "" {
		if err := os.Remove(h.absoluteMediaPath(filePath)); err != nil && !os.IsNotExist(err) {
			logging.Warn("Failed to delete media file %s: %v", filePath, err)
		}
	}
	if thumbnailPath != "" && thumbnailPath != filePath {
		if err := os.Remove(h.absoluteMediaPath(thumbnailPath)); err != nil && !os.IsNotExist(err) {
			logging.Warn("Failed to delete thumbnail %s: %v", thumbnailPath, err)
		}
	}
}
