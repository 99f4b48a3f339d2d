package handlers

import (
	"archive/zip"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"love-letter/internal/database"
	"love-letter/internal/logging"
	"love-letter/internal/metrics"
)

const (
	albumFavorites  = "Favorites"
	albumUnassigned = "Unassigned"
)

// reservedAlbumNames cannot be used for explicit albums because they are
// synthesized in the album listing.
var reservedAlbumNames = map[string]bool{
	"favorites":  true,
	"unassigned": true,
	"all":        true,
}

// ListGalleryPhotos returns all photos, favorites first.
func (h *Handlers) ListGalleryPhotos(w http.ResponseWriter, r *http.Request) {
	photos, err := h.db.ListGalleryPhotos(r.Context())
	if err != nil {
		logging.Error("Failed to list gallery photos: %v", err)
		writeJSONError(w, "failed to load gallery", http.StatusInternalServerError)
		return
	}
	writeJSON(w, newPhotoResponses(photos))
}

// UploadGalleryPhoto accepts a multipart photo upload. The thumbnail is
// attempted synchronously; when generation fails the original serves as
// its own thumbnail.
func (h *Handlers) UploadGalleryPhoto(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxGalleryUploadBytes+1<<20)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		metrics.UploadsTotal.WithLabelValues("gallery", "rejected").Inc()
		writeJSONError(w, "invalid upload", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("gallery", "rejected").Inc()
		writeJSONError(w, "a photo file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !imageExtensions[ext] {
		metrics.UploadsTotal.WithLabelValues("gallery", "rejected").Inc()
		writeJSONError(w, "unsupported file type", http.StatusBadRequest)
		return
	}
	if header.Size > maxGalleryUploadBytes {
		metrics.UploadsTotal.WithLabelValues("gallery", "rejected").Inc()
		writeJSONError(w, "photo exceeds the 15 MB limit", http.StatusBadRequest)
		return
	}

	caption := strings.TrimSpace(r.FormValue("caption"))
	if len(caption) > maxCaptionLength {
		writeJSONError(w, "caption is too long", http.StatusBadRequest)
		return
	}
	album := strings.TrimSpace(r.FormValue("album"))
	if len(album) > maxAlbumNameLength {
		writeJSONError(w, "album name is too long", http.StatusBadRequest)
		return
	}

	photo, err := h.storeGalleryPhoto(r, file, header.Filename, ext, caption, album)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("gallery", "rejected").Inc()
		logging.Error("Failed to store gallery photo: %v", err)
		writeJSONError(w, "failed to save photo", http.StatusInternalServerError)
		return
	}

	metrics.UploadsTotal.WithLabelValues("gallery", "accepted").Inc()
	metrics.UploadBytes.WithLabelValues("gallery").Add(float64(header.Size))
	writeCreated(w, newPhotoResponse(photo))
}

func (h *Handlers) storeGalleryPhoto(r *http.Request, file io.Reader, originalName, ext, caption, album string) (*database.GalleryPhoto, error) {
	id := uuid.NewString()
	absPath := filepath.Join(h.config.UploadsDir, "gallery", id+ext)
	if err := saveUploadedReader(file, absPath); err != nil {
		return nil, err
	}

	relPath := h.relativeUploadPath(absPath)
	thumbPath := h.generateThumbnailFor(absPath)
	if thumbPath == "" {
		thumbPath = relPath
	}

	photo := &database.GalleryPhoto{
		ID:               id,
		Caption:          caption,
		Album:            album,
		OriginalFileName: originalName,
		FilePath:         relPath,
		ThumbnailPath:    thumbPath,
		CreatedAt:        time.Now().UTC(),
	}
	if err := h.db.InsertGalleryPhoto(r.Context(), photo); err != nil {
		h.removeMediaFiles(relPath, thumbPath)
		return nil, err
	}
	return photo, nil
}

type albumResponse struct {
	ID                string `json:"id,omitempty"`
	Name              string `json:"name"`
	Count             int    `json:"count"`
	CoverURL          string `json:"coverUrl,omitempty"`
	CoverThumbnailURL string `json:"coverThumbnailUrl,omitempty"`
	System            bool   `json:"system,omitempty"`
}

// ListGalleryAlbums returns the synthetic Favorites and Unassigned albums
// plus every explicit or implicit named album, each with a cover and a
// photo count.
func (h *Handlers) ListGalleryAlbums(w http.ResponseWriter, r *http.Request) {
	photos, err := h.db.ListGalleryPhotos(r.Context())
	if err != nil {
		logging.Error("Failed to list gallery photos: %v", err)
		writeJSONError(w, "failed to load albums", http.StatusInternalServerError)
		return
	}
	albums, err := h.db.ListGalleryAlbums(r.Context())
	if err != nil {
		logging.Error("Failed to list gallery albums: %v", err)
		writeJSONError(w, "failed to load albums", http.StatusInternalServerError)
		return
	}

	favorites := albumResponse{Name: albumFavorites, System: true}
	unassigned := albumResponse{Name: albumUnassigned, System: true}
	named := make(map[string]*albumResponse)
	var order []string

	for _, a := range albums {
		key := strings.ToLower(a.Name)
		named[key] = &albumResponse{ID: a.ID, Name: a.Name}
		order = append(order, key)
	}

	for _, p := range photos {
		if p.IsFavorite {
			favorites.Count++
			if favorites.CoverURL == "" {
				favorites.CoverURL = p.URL()
				favorites.CoverThumbnailURL = p.ThumbnailURL()
			}
		}
		if p.Album == "" {
			unassigned.Count++
			if unassigned.CoverURL == "" {
				unassigned.CoverURL = p.URL()
				unassigned.CoverThumbnailURL = p.ThumbnailURL()
			}
			continue
		}

		key := strings.ToLower(p.Album)
		entry, ok := named[key]
		if !ok {
			// Album exists only through its photos
			entry = &albumResponse{Name: p.Album}
			named[key] = entry
			order = append(order, key)
		}
		entry.Count++
		if entry.CoverURL == "" {
			entry.CoverURL = p.URL()
			entry.CoverThumbnailURL = p.ThumbnailURL()
		}
	}

	sort.Strings(order)
	response := make([]albumResponse, 0, len(order)+2)
	response = append(response, favorites)
	for _, key := range order {
		response = append(response, *named[key])
	}
	response = append(response, unassigned)

	writeJSON(w, response)
}

// CreateGalleryAlbum creates an explicit named album.
func (h *Handlers) CreateGalleryAlbum(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeJSONError(w, "album name is required", http.StatusBadRequest)
		return
	}
	if len(name) > maxAlbumNameLength {
		writeJSONError(w, "album name is too long", http.StatusBadRequest)
		return
	}
	if reservedAlbumNames[strings.ToLower(name)] {
		writeJSONError(w, "that album name is reserved", http.StatusBadRequest)
		return
	}

	inUse, err := h.db.AlbumNameInUse(r.Context(), name)
	if err != nil {
		logging.Error("Failed to check album name: %v", err)
		writeJSONError(w, "failed to create album", http.StatusInternalServerError)
		return
	}
	if inUse {
		writeJSONError(w, "an album with that name already exists", http.StatusConflict)
		return
	}

	album := &database.GalleryAlbum{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.db.InsertGalleryAlbum(r.Context(), album); err != nil {
		logging.Error("Failed to create album: %v", err)
		writeJSONError(w, "failed to create album", http.StatusInternalServerError)
		return
	}

	writeCreated(w, album)
}

// UpdateGalleryPhoto changes a photo's caption and/or album. Absent
// fields keep their current value.
func (h *Handlers) UpdateGalleryPhoto(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req struct {
		Caption *string `json:"caption"`
		Album   *string `json:"album"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	photo, err := h.db.GetGalleryPhoto(r.Context(), id)
	if err != nil {
		logging.Error("Failed to load gallery photo %s: %v", id, err)
		writeJSONError(w, "failed to load photo", http.StatusInternalServerError)
		return
	}
	if photo == nil {
		writeJSONError(w, "photo not found", http.StatusNotFound)
		return
	}

	caption := photo.Caption
	if req.Caption != nil {
		caption = strings.TrimSpace(*req.Caption)
		if len(caption) > maxCaptionLength {
			writeJSONError(w, "caption is too long", http.StatusBadRequest)
			return
		}
	}
	album := photo.Album
	if req.Album != nil {
		album = strings.TrimSpace(*req.Album)
		if len(album) > maxAlbumNameLength {
			writeJSONError(w, "album name is too long", http.StatusBadRequest)
			return
		}
	}

	if err := h.db.UpdateGalleryPhotoDetails(r.Context(), id, caption, album); err != nil {
		logging.Error("Failed to update gallery photo %s: %v", id, err)
		writeJSONError(w, "failed to update photo", http.StatusInternalServerError)
		return
	}

	photo.Caption = caption
	photo.Album = album
	writeJSON(w, newPhotoResponse(photo))
}

// SetGalleryPhotoFavorite toggles a photo's favorite flag. The favorite
// limit is only enforced when actually adding a new favorite; repeating
// the current state is a no-op.
func (h *Handlers) SetGalleryPhotoFavorite(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req struct {
		Favorite bool `json:"favorite"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	photo, err := h.db.GetGalleryPhoto(r.Context(), id)
	if err != nil {
		logging.Error("Failed to load gallery photo %s: %v", id, err)
		writeJSONError(w, "failed to load photo", http.StatusInternalServerError)
		return
	}
	if photo == nil {
		writeJSONError(w, "photo not found", http.StatusNotFound)
		return
	}

	if photo.IsFavorite == req.Favorite {
		writeJSON(w, newPhotoResponse(photo))
		return
	}

	if req.Favorite {
		count, err := h.db.CountFavoritePhotos(r.Context())
		if err != nil {
			logging.Error("Failed to count favorites: %v", err)
			writeJSONError(w, "failed to update favorite", http.StatusInternalServerError)
			return
		}
		if count >= h.config.FavoriteLimit {
			writeJSONError(w, fmt.Sprintf("you can only have %d favorites", h.config.FavoriteLimit), http.StatusBadRequest)
			return
		}
	}

	if err := h.db.SetGalleryPhotoFavorite(r.Context(), id, req.Favorite); err != nil {
		logging.Error("Failed to set favorite on %s: %v", id, err)
		writeJSONError(w, "failed to update favorite", http.StatusInternalServerError)
		return
	}

	updated, err := h.db.GetGalleryPhoto(r.Context(), id)
	if err != nil || updated == nil {
		logging.Error("Failed to reload gallery photo %s: %v", id, err)
		writeJSONError(w, "failed to load photo", http.StatusInternalServerError)
		return
	}
	writeJSON(w, newPhotoResponse(updated))
}

// DeleteGalleryPhoto removes a photo row and best-effort deletes its
// files.
func (h *Handlers) DeleteGalleryPhoto(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	photo, err := h.db.GetGalleryPhoto(r.Context(), id)
	if err != nil {
		logging.Error("Failed to load gallery photo %s: %v", id, err)
		writeJSONError(w, "failed to load photo", http.StatusInternalServerError)
		return
	}
	if photo == nil {
		writeJSONError(w, "photo not found", http.StatusNotFound)
		return
	}

	if err := h.db.DeleteGalleryPhoto(r.Context(), id); err != nil {
		logging.Error("Failed to delete gallery photo %s: %v", id, err)
		writeJSONError(w, "failed to delete photo", http.StatusInternalServerError)
		return
	}

	h.removeMediaFiles(photo.FilePath, photo.ThumbnailPath)
	writeJSON(w, map[string]string{"status": "deleted"})
}

// ExportGalleryPhotos streams selected photos (or all of them) as a zip
// archive. Entries are named after the original upload file names, with
// a numeric suffix on collisions.
func (h *Handlers) ExportGalleryPhotos(w http.ResponseWriter, r *http.Request) {
	var photos []*database.GalleryPhoto

	if ids := strings.TrimSpace(r.URL.Query().Get("ids")); ids != "" {
		for _, id := range strings.Split(ids, ",") {
			id = strings.TrimSpace(id)
			if id == "" {
				continue
			}
			photo, err := h.db.GetGalleryPhoto(r.Context(), id)
			if err != nil {
				logging.Error("Failed to load gallery photo %s: %v", id, err)
				writeJSONError(w, "failed to load photos", http.StatusInternalServerError)
				return
			}
			if photo == nil {
				writeJSONError(w, "photo not found: "+id, http.StatusNotFound)
				return
			}
			photos = append(photos, photo)
		}
	} else {
		all, err := h.db.ListGalleryPhotos(r.Context())
		if err != nil {
			logging.Error("Failed to list gallery photos: %v", err)
			writeJSONError(w, "failed to load photos", http.StatusInternalServerError)
			return
		}
		photos = all
	}

	if len(photos) == 0 {
		writeJSONError(w, "nothing to export", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="gallery-export.zip"`)

	zw := zip.NewWriter(w)
	defer zw.Close()

	used := make(map[string]int)
	for _, photo := range photos {
		src, err := os.Open(h.absoluteMediaPath(photo.FilePath))
		if err != nil {
			logging.Warn("Skipping export of %s: %v", photo.ID, err)
			continue
		}

		entry, err := zw.Create(exportEntryName(photo, used))
		if err != nil {
			src.Close()
			logging.Error("Failed to write zip entry for %s: %v", photo.ID, err)
			return
		}
		if _, err := io.Copy(entry, src); err != nil {
			src.Close()
			logging.Error("Failed to write zip entry for %s: %v", photo.ID, err)
			return
		}
		src.Close()
	}
}

// exportEntryName picks a zip entry name for a photo, preferring the
// original upload name and deduplicating repeats with a numeric suffix.
func exportEntryName(photo *database.GalleryPhoto, used map[string]int) string {
	name := photo.OriginalFileName
	if name == "" {
		name = photo.ID + filepath.Ext(photo.FilePath)
	}
	name = filepath.Base(name)

	used[strings.ToLower(name)]++
	if n := used[strings.ToLower(name)]; n > 1 {
		ext := filepath.Ext(name)
		name = fmt.Sprintf("%s_%d%s", strings.TrimSuffix(name, ext), n-1, ext)
	}
	return name
}

// relativeUploadPath converts an absolute path under the web root to the
// stored root-relative form.
func (h *Handlers) relativeUploadPath(absPath string) string {
	rel, err := filepath.Rel(h.config.WebRoot, absPath)
	if err != nil {
		return filepath.ToSlash(absPath)
	}
	return filepath.ToSlash(rel)
}
