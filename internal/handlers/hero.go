package handlers

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"love-letter/internal/logging"
	"love-letter/internal/metrics"
)

const heroMetadataFile = "hero.json"

// heroMetadata is the sidecar written next to an uploaded hero image.
type heroMetadata struct {
	Src     string `json:"src"`
	Caption string `json:"caption,omitempty"`
}

type heroResponse struct {
	URL      string `json:"url"`
	Caption  string `json:"caption,omitempty"`
	Uploaded bool   `json:"uploaded"`
}

func (h *Handlers) heroDir() string {
	return filepath.Join(h.config.UploadsDir, "hero")
}

func (h *Handlers) heroMetadataPath() string {
	return filepath.Join(h.heroDir(), heroMetadataFile)
}

// readHeroMetadata loads the sidecar, returning nil when it is absent or
// points at a file that no longer exists.
func (h *Handlers) readHeroMetadata() *heroMetadata {
	data, err := os.ReadFile(h.heroMetadataPath())
	if err != nil {
		return nil
	}

	var meta heroMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		logging.Warn("Ignoring unreadable hero metadata: %v", err)
		return nil
	}
	if meta.Src == "" {
		return nil
	}
	if _, err := os.Stat(h.absoluteMediaPath(meta.Src)); err != nil {
		return nil
	}
	return &meta
}

func (h *Handlers) writeHeroMetadata(meta *heroMetadata) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(h.heroDir(), 0755); err != nil {
		return err
	}
	return os.WriteFile(h.heroMetadataPath(), data, 0644)
}

// GetHero returns the current hero image: the uploaded one when present,
// otherwise the featured photo from the content config.
func (h *Handlers) GetHero(w http.ResponseWriter, _ *http.Request) {
	h.heroMu.Lock()
	meta := h.readHeroMetadata()
	h.heroMu.Unlock()

	if meta != nil {
		writeJSON(w, heroResponse{
			URL:      leadingSlash(meta.Src),
			Caption:  meta.Caption,
			Uploaded: true,
		})
		return
	}

	featured := h.content.Hero.FeaturedPhoto
	writeJSON(w, heroResponse{
		URL:     leadingSlash(featured.Src),
		Caption: featured.Caption,
	})
}

// UploadHero replaces the hero image. The previous uploaded file is
// deleted and the sidecar rewritten.
func (h *Handlers) UploadHero(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxGalleryUploadBytes+1<<20)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		metrics.UploadsTotal.WithLabelValues("hero", "rejected").Inc()
		writeJSONError(w, "invalid upload", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("hero", "rejected").Inc()
		writeJSONError(w, "a photo file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !imageExtensions[ext] {
		metrics.UploadsTotal.WithLabelValues("hero", "rejected").Inc()
		writeJSONError(w, "unsupported file type", http.StatusBadRequest)
		return
	}
	if header.Size > maxGalleryUploadBytes {
		metrics.UploadsTotal.WithLabelValues("hero", "rejected").Inc()
		writeJSONError(w, "photo exceeds the 15 MB limit", http.StatusBadRequest)
		return
	}

	caption := strings.TrimSpace(r.FormValue("caption"))
	if len(caption) > maxCaptionLength {
		writeJSONError(w, "caption is too long", http.StatusBadRequest)
		return
	}

	name := "hero-" + time.Now().UTC().Format("20060102150405") + ext
	absPath := filepath.Join(h.heroDir(), name)

	h.heroMu.Lock()
	defer h.heroMu.Unlock()

	if err := saveUploadedReader(file, absPath); err != nil {
		metrics.UploadsTotal.WithLabelValues("hero", "rejected").Inc()
		logging.Error("Failed to save hero image: %v", err)
		writeJSONError(w, "failed to save photo", http.StatusInternalServerError)
		return
	}

	// Drop the previous uploaded file before rewriting the sidecar
	if previous := h.readHeroMetadata(); previous != nil && previous.Src != "" {
		prevAbs := h.absoluteMediaPath(previous.Src)
		if prevAbs != absPath {
			if err := os.Remove(prevAbs); err != nil && !os.IsNotExist(err) {
				logging.Warn("Failed to delete previous hero image: %v", err)
			}
		}
	}

	meta := &heroMetadata{
		Src:     h.relativeUploadPath(absPath),
		Caption: caption,
	}
	if err := h.writeHeroMetadata(meta); err != nil {
		os.Remove(absPath)
		logging.Error("Failed to write hero metadata: %v", err)
		writeJSONError(w, "failed to save photo", http.StatusInternalServerError)
		return
	}

	metrics.UploadsTotal.WithLabelValues("hero", "accepted").Inc()
	metrics.UploadBytes.WithLabelValues("hero").Add(float64(header.Size))
	writeCreated(w, heroResponse{
		URL:      leadingSlash(meta.Src),
		Caption:  meta.Caption,
		Uploaded: true,
	})
}

// UpdateHeroCaption changes the caption of the uploaded hero image.
func (h *Handlers) UpdateHeroCaption(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Caption string `json:"caption"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	caption := strings.TrimSpace(req.Caption)
	if len(caption) > maxCaptionLength {
		writeJSONError(w, "caption is too long", http.StatusBadRequest)
		return
	}

	h.heroMu.Lock()
	defer h.heroMu.Unlock()

	meta := h.readHeroMetadata()
	if meta == nil {
		writeJSONError(w, "no uploaded hero image", http.StatusNotFound)
		return
	}

	meta.Caption = caption
	if err := h.writeHeroMetadata(meta); err != nil {
		logging.Error("Failed to write hero metadata: %v", err)
		writeJSONError(w, "failed to update caption", http.StatusInternalServerError)
		return
	}

	writeJSON(w, heroResponse{
		URL:      leadingSlash(meta.Src),
		Caption:  meta.Caption,
		Uploaded: true,
	})
}

// leadingSlash ensures a stored relative path is served as a URL path.
func leadingSlash(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	if strings.HasPrefix(p, "/") {
		return p
	}
	return "/" + p
}
