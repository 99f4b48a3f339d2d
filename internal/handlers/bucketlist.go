package handlers

import (
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"love-letter/internal/database"
	"love-letter/internal/logging"
	"love-letter/internal/metrics"
	"love-letter/internal/thumbnail"
)

// ListBucketListEntries returns all entries, incomplete first.
func (h *Handlers) ListBucketListEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.db.ListBucketListEntries(r.Context())
	if err != nil {
		logging.Error("Failed to list bucket list entries: %v", err)
		writeJSONError(w, "failed to load bucket list", http.StatusInternalServerError)
		return
	}
	writeJSON(w, newEntryResponses(entries))
}

// CreateBucketListEntry adds a new entry.
func (h *Handlers) CreateBucketListEntry(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title         string `json:"title"`
		Description   string `json:"description"`
		RequiresPhoto bool   `json:"requiresPhoto"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		writeJSONError(w, "a title is required", http.StatusBadRequest)
		return
	}
	if len(title) > maxTitleLength {
		writeJSONError(w, "title is too long", http.StatusBadRequest)
		return
	}

	entry := &database.BucketListEntry{
		ID:            uuid.NewString(),
		Title:         title,
		Description:   strings.TrimSpace(req.Description),
		RequiresPhoto: req.RequiresPhoto,
		CreatedAt:     time.Now().UTC(),
	}
	if err := h.db.InsertBucketListEntry(r.Context(), entry); err != nil {
		logging.Error("Failed to create bucket list entry: %v", err)
		writeJSONError(w, "failed to create entry", http.StatusInternalServerError)
		return
	}

	writeCreated(w, newEntryResponse(entry))
}

// VerifyMasterPassword lets the client check a password before showing
// destructive controls. The password may come from the request body or
// the X-Master-Pass header.
func (h *Handlers) VerifyMasterPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	// Body is optional; header-only checks are fine
	_ = decodeJSON(r, &req)

	valid := false
	if req.Password != "" {
		valid = h.masterPasswordMatches(req.Password)
	} else {
		valid = h.masterPasswordValid(r)
	}

	writeJSON(w, map[string]bool{"valid": valid})
}

// CompleteBucketListEntry marks an entry as done. Media files may be
// attached; entries flagged RequiresPhoto will not complete without at
// least one.
func (h *Handlers) CompleteBucketListEntry(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	entry, err := h.db.GetBucketListEntry(r.Context(), id)
	if err != nil {
		logging.Error("Failed to load bucket list entry %s: %v", id, err)
		writeJSONError(w, "failed to load entry", http.StatusInternalServerError)
		return
	}
	if entry == nil {
		writeJSONError(w, "entry not found", http.StatusNotFound)
		return
	}
	if entry.Completed {
		writeJSONError(w, "entry is already completed", http.StatusBadRequest)
		return
	}

	files := h.multipartMediaFiles(r)
	if entry.RequiresPhoto && len(files) == 0 {
		writeJSONError(w, "this entry requires a photo to complete", http.StatusBadRequest)
		return
	}
	if err := validateBucketUploads(files); err != nil {
		metrics.UploadsTotal.WithLabelValues("bucket", "rejected").Inc()
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.saveBucketMedia(r, entry.ID, files); err != nil {
		logging.Error("Failed to save media for entry %s: %v", id, err)
		writeJSONError(w, "failed to save media", http.StatusInternalServerError)
		return
	}

	if err := h.db.SetBucketListEntryCompleted(r.Context(), id, true); err != nil {
		logging.Error("Failed to complete bucket list entry %s: %v", id, err)
		writeJSONError(w, "failed to complete entry", http.StatusInternalServerError)
		return
	}

	h.writeUpdatedEntry(w, r, id)
}

// UploadBucketListMedia attaches extra media to a completed entry.
// Requires the master password.
func (h *Handlers) UploadBucketListMedia(w http.ResponseWriter, r *http.Request) {
	if !h.masterPasswordValid(r) {
		writeJSONError(w, "invalid master password", http.StatusUnauthorized)
		return
	}
	id := mux.Vars(r)["id"]

	entry, err := h.db.GetBucketListEntry(r.Context(), id)
	if err != nil {
		logging.Error("Failed to load bucket list entry %s: %v", id, err)
		writeJSONError(w, "failed to load entry", http.StatusInternalServerError)
		return
	}
	if entry == nil {
		writeJSONError(w, "entry not found", http.StatusNotFound)
		return
	}
	if !entry.Completed {
		writeJSONError(w, "entry is not completed yet", http.StatusBadRequest)
		return
	}

	files := h.multipartMediaFiles(r)
	if len(files) == 0 {
		writeJSONError(w, "at least one media file is required", http.StatusBadRequest)
		return
	}
	if err := validateBucketUploads(files); err != nil {
		metrics.UploadsTotal.WithLabelValues("bucket", "rejected").Inc()
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.saveBucketMedia(r, entry.ID, files); err != nil {
		logging.Error("Failed to save media for entry %s: %v", id, err)
		writeJSONError(w, "failed to save media", http.StatusInternalServerError)
		return
	}

	h.writeUpdatedEntry(w, r, id)
}

// DeleteBucketListMedia removes one media item from an entry and deletes
// its files. Requires the master password.
func (h *Handlers) DeleteBucketListMedia(w http.ResponseWriter, r *http.Request) {
	if !h.masterPasswordValid(r) {
		writeJSONError(w, "invalid master password", http.StatusUnauthorized)
		return
	}
	vars := mux.Vars(r)
	entryID, mediaID := vars["id"], vars["mediaId"]

	media, err := h.db.GetBucketListMedia(r.Context(), mediaID)
	if err != nil {
		logging.Error("Failed to load bucket media %s: %v", mediaID, err)
		writeJSONError(w, "failed to load media", http.StatusInternalServerError)
		return
	}
	if media == nil || media.EntryID != entryID {
		writeJSONError(w, "media not found", http.StatusNotFound)
		return
	}

	if err := h.db.DeleteBucketListMedia(r.Context(), mediaID); err != nil {
		logging.Error("Failed to delete bucket media %s: %v", mediaID, err)
		writeJSONError(w, "failed to delete media", http.StatusInternalServerError)
		return
	}

	h.removeMediaFiles(media.FilePath, media.ThumbnailPath)
	h.writeUpdatedEntry(w, r, entryID)
}

// AddBucketMediaToGallery copies a bucket photo into the shared gallery.
// Videos and media already in the gallery are rejected.
func (h *Handlers) AddBucketMediaToGallery(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	entryID, mediaID := vars["id"], vars["mediaId"]

	media, err := h.db.GetBucketListMedia(r.Context(), mediaID)
	if err != nil {
		logging.Error("Failed to load bucket media %s: %v", mediaID, err)
		writeJSONError(w, "failed to load media", http.StatusInternalServerError)
		return
	}
	if media == nil || media.EntryID != entryID {
		writeJSONError(w, "media not found", http.StatusNotFound)
		return
	}
	if media.IsVideo {
		writeJSONError(w, "videos cannot be added to the gallery", http.StatusBadRequest)
		return
	}
	if media.IsInGallery {
		writeJSONError(w, "media is already in the gallery", http.StatusBadRequest)
		return
	}

	entry, err := h.db.GetBucketListEntry(r.Context(), entryID)
	if err != nil || entry == nil {
		logging.Error("Failed to load bucket list entry %s: %v", entryID, err)
		writeJSONError(w, "entry not found", http.StatusNotFound)
		return
	}

	src, err := os.Open(h.absoluteMediaPath(media.FilePath))
	if err != nil {
		writeJSONError(w, "the source file no longer exists", http.StatusBadRequest)
		return
	}
	defer src.Close()

	originalName := media.OriginalFileName
	if originalName == "" {
		originalName = filepath.Base(media.FilePath)
	}
	ext := strings.ToLower(filepath.Ext(media.FilePath))

	photo, err := h.storeGalleryPhoto(r, src, originalName, ext, entry.Title, "")
	if err != nil {
		logging.Error("Failed to copy bucket media %s to gallery: %v", mediaID, err)
		writeJSONError(w, "failed to add to gallery", http.StatusInternalServerError)
		return
	}

	if err := h.db.SetBucketListMediaInGallery(r.Context(), mediaID, true); err != nil {
		logging.Warn("Failed to flag bucket media %s as in gallery: %v", mediaID, err)
	}

	writeCreated(w, newPhotoResponse(photo))
}

// DeleteBucketListEntry removes an entry and all of its media files.
// Requires the master password.
func (h *Handlers) DeleteBucketListEntry(w http.ResponseWriter, r *http.Request) {
	if !h.masterPasswordValid(r) {
		writeJSONError(w, "invalid master password", http.StatusUnauthorized)
		return
	}
	id := mux.Vars(r)["id"]

	entry, err := h.db.GetBucketListEntry(r.Context(), id)
	if err != nil {
		logging.Error("Failed to load bucket list entry %s: %v", id, err)
		writeJSONError(w, "failed to load entry", http.StatusInternalServerError)
		return
	}
	if entry == nil {
		writeJSONError(w, "entry not found", http.StatusNotFound)
		return
	}

	if err := h.db.DeleteBucketListEntry(r.Context(), id); err != nil {
		logging.Error("Failed to delete bucket list entry %s: %v", id, err)
		writeJSONError(w, "failed to delete entry", http.StatusInternalServerError)
		return
	}

	for i := range entry.Media {
		h.removeMediaFiles(entry.Media[i].FilePath, entry.Media[i].ThumbnailPath)
	}
	// Best effort cleanup of the entry's upload directory
	_ = os.Remove(filepath.Join(h.config.UploadsDir, "bucket", id, "thumbs"))
	_ = os.Remove(filepath.Join(h.config.UploadsDir, "bucket", id))

	writeJSON(w, map[string]string{"status": "deleted"})
}

// multipartMediaFiles parses the multipart form and returns the uploaded
// files from the "media" field, falling back to the older "photo" field.
func (h *Handlers) multipartMediaFiles(r *http.Request) []*multipart.FileHeader {
	if err := r.ParseMultipartForm(64 << 20); err != nil {
		return nil
	}
	if r.MultipartForm == nil {
		return nil
	}
	if files := r.MultipartForm.File["media"]; len(files) > 0 {
		return files
	}
	return r.MultipartForm.File["photo"]
}

// validateBucketUploads checks every file before any is saved, so a bad
// file in the batch rejects the whole request.
func validateBucketUploads(files []*multipart.FileHeader) error {
	for _, fh := range files {
		ext := strings.ToLower(filepath.Ext(fh.Filename))
		if !imageExtensions[ext] && !videoExtensions[ext] {
			return fmt.Errorf("unsupported file type: %s", fh.Filename)
		}
		if fh.Size > maxBucketUploadBytes {
			return fmt.Errorf("%s exceeds the 50 MB limit", fh.Filename)
		}
		if fh.Size == 0 {
			return fmt.Errorf("%s is empty", fh.Filename)
		}
	}
	return nil
}

// saveBucketMedia stores validated files under the entry's upload
// directory, records the rows, and queues thumbnail jobs for the images.
func (h *Handlers) saveBucketMedia(r *http.Request, entryID string, files []*multipart.FileHeader) error {
	for _, fh := range files {
		file, err := fh.Open()
		if err != nil {
			return fmt.Errorf("failed to open upload %s: %w", fh.Filename, err)
		}

		ext := strings.ToLower(filepath.Ext(fh.Filename))
		id := uuid.NewString()
		absPath := filepath.Join(h.config.UploadsDir, "bucket", entryID, id+ext)

		if err := saveUploadedReader(file, absPath); err != nil {
			file.Close()
			return err
		}
		file.Close()

		contentType := fh.Header.Get("Content-Type")
		if contentType == "" {
			contentType = mime.TypeByExtension(ext)
		}

		media := &database.BucketListMedia{
			ID:               id,
			EntryID:          entryID,
			FilePath:         h.relativeUploadPath(absPath),
			OriginalFileName: fh.Filename,
			ContentType:      contentType,
			IsVideo:          videoExtensions[ext],
			CreatedAt:        time.Now().UTC(),
		}
		if err := h.db.InsertBucketListMedia(r.Context(), media); err != nil {
			os.Remove(absPath)
			return err
		}

		metrics.UploadsTotal.WithLabelValues("bucket", "accepted").Inc()
		metrics.UploadBytes.WithLabelValues("bucket").Add(float64(fh.Size))

		if !media.IsVideo {
			h.queue.Enqueue(thumbnail.WorkItem{
				MediaID:      id,
				AbsolutePath: absPath,
				FileName:     id + ext,
			})
		}
	}
	return nil
}

// writeUpdatedEntry responds with the entry's current state.
func (h *Handlers) writeUpdatedEntry(w http.ResponseWriter, r *http.Request, id string) {
	entry, err := h.db.GetBucketListEntry(r.Context(), id)
	if err != nil || entry == nil {
		logging.Error("Failed to reload bucket list entry %s: %v", id, err)
		writeJSONError(w, "failed to load entry", http.StatusInternalServerError)
		return
	}
	writeJSON(w, newEntryResponse(entry))
}
