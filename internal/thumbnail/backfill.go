package thumbnail

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"love-letter/internal/database"
	"love-letter/internal/logging"
	"love-letter/internal/metrics"
)

// Backfill regenerates thumbnails that earlier runs missed: rows with no
// thumbnail recorded, typically because the process stopped with jobs
// still queued. It runs once at startup, before the server accepts
// traffic.
type Backfill struct {
	db       *database.Database
	renderer *Renderer
	webRoot  string
	maxEdge  int
}

func NewBackfill(db *database.Database, renderer *Renderer, webRoot string, maxEdge int) *Backfill {
	return &Backfill{
		db:       db,
		renderer: renderer,
		webRoot:  webRoot,
		maxEdge:  maxEdge,
	}
}

// Run processes gallery photos, then bucket list media. Per-item outcomes:
//   - source file missing: row left untouched, retried on the next run
//   - thumbnail generated: thumbnail path recorded
//   - generation failed: original file path recorded as the thumbnail, so
//     the UI always has something to show and the row is not retried
//
// Updates are persisted in one transaction per kind.
func (b *Backfill) Run(ctx context.Context) error {
	if err := b.backfillGallery(ctx); err != nil {
		return err
	}
	return b.backfillBucketMedia(ctx)
}

func (b *Backfill) backfillGallery(ctx context.Context) error {
	photos, err := b.db.FindGalleryPhotosMissingThumbnails(ctx)
	if err != nil {
		return err
	}
	if len(photos) == 0 {
		return nil
	}

	logging.Info("Backfilling thumbnails for %d gallery photos", len(photos))

	tx, err := b.db.BeginBatch()
	if err != nil {
		return err
	}

	var txErr error
	for _, photo := range photos {
		if ctx.Err() != nil {
			txErr = ctx.Err()
			break
		}

		result, thumbPath := b.generateFor(photo.FilePath)
		switch result {
		case "skipped":
			// No source file; leave the row for the next run
		case "generated":
			txErr = b.db.UpdateGalleryPhotoThumbnailTx(tx, photo.ID, thumbPath)
		case "fallback":
			txErr = b.db.UpdateGalleryPhotoThumbnailTx(tx, photo.ID, photo.FilePath)
		}
		if txErr != nil {
			break
		}
		metrics.ThumbnailBackfillTotal.WithLabelValues("gallery", result).Inc()
	}

	return b.db.EndBatch(tx, txErr)
}

func (b *Backfill) backfillBucketMedia(ctx context.Context) error {
	media, err := b.db.FindBucketMediaMissingThumbnails(ctx)
	if err != nil {
		return err
	}
	if len(media) == 0 {
		return nil
	}

	logging.Info("Backfilling thumbnails for %d bucket list media items", len(media))

	tx, err := b.db.BeginBatch()
	if err != nil {
		return err
	}

	var txErr error
	for _, m := range media {
		if ctx.Err() != nil {
			txErr = ctx.Err()
			break
		}

		result, thumbPath := b.generateFor(m.FilePath)
		switch result {
		case "skipped":
		case "generated":
			txErr = b.db.UpdateBucketMediaThumbnailTx(tx, m.ID, thumbPath)
		case "fallback":
			txErr = b.db.UpdateBucketMediaThumbnailTx(tx, m.ID, m.FilePath)
		}
		if txErr != nil {
			break
		}
		metrics.ThumbnailBackfillTotal.WithLabelValues("bucket", result).Inc()
	}

	return b.db.EndBatch(tx, txErr)
}

// generateFor resolves a stored root-relative path and attempts thumbnail
// generation next to the source file. It returns the outcome ("skipped",
// "generated", "fallback") and, when generated, the new root-relative
// thumbnail path.
func (b *Backfill) generateFor(storedPath string) (string, string) {
	source := filepath.Join(b.webRoot, strings.TrimLeft(storedPath, "/\\"))
	if _, err := os.Stat(source); err != nil {
		return "skipped", ""
	}

	baseName := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	destDir := filepath.Join(filepath.Dir(source), "thumbs")

	abs, ok := b.renderer.Generate(source, destDir, baseName, b.maxEdge)
	if !ok {
		return "fallback", ""
	}
	return "generated", RelativePath(b.webRoot, abs)
}
