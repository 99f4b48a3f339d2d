package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// FindGalleryPhotosMissingThumbnails returns photos that should have a
// thumbnail but don't: thumbnail_path is NULL and a source file is recorded.
func (d *Database) FindGalleryPhotosMissingThumbnails(ctx context.Context) ([]*GalleryPhoto, error) {
	start := time.Now()
	d.mu.RLock()
	defer d.mu.RUnlock()

	queryCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(queryCtx, fmt.Sprintf(`
		SELECT %s FROM gallery_photos
		WHERE thumbnail_path IS NULL AND file_path != ''
		ORDER BY created_at ASC
	`, galleryPhotoColumns))
	recordQuery("find_photos_missing_thumbnails", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to find photos missing thumbnails: %w", err)
	}
	defer rows.Close()

	var photos []*GalleryPhoto
	for rows.Next() {
		p, err := scanGalleryPhoto(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan gallery photo: %w", err)
		}
		photos = append(photos, p)
	}
	return photos, rows.Err()
}

// FindBucketMediaMissingThumbnails returns non-video bucket list media
// without a thumbnail. Videos never get thumbnails and are excluded.
func (d *Database) FindBucketMediaMissingThumbnails(ctx context.Context) ([]*BucketListMedia, error) {
	start := time.Now()
	d.mu.RLock()
	defer d.mu.RUnlock()

	queryCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(queryCtx, fmt.Sprintf(`
		SELECT %s FROM bucket_list_media
		WHERE thumbnail_path IS NULL AND is_video = 0 AND file_path != ''
		ORDER BY created_at ASC
	`, bucketMediaColumns))
	recordQuery("find_media_missing_thumbnails", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to find media missing thumbnails: %w", err)
	}
	defer rows.Close()

	var media []*BucketListMedia
	for rows.Next() {
		m, err := scanBucketMedia(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bucket list media: %w", err)
		}
		media = append(media, m)
	}
	return media, rows.Err()
}

// UpdateGalleryPhotoThumbnail sets a photo's thumbnail path.
func (d *Database) UpdateGalleryPhotoThumbnail(ctx context.Context, id, thumbnailPath string) error {
	start := time.Now()
	d.mu.Lock()
	defer d.mu.Unlock()

	queryCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := d.db.ExecContext(queryCtx, `
		UPDATE gallery_photos SET thumbnail_path = ? WHERE id = ?
	`, thumbnailPath, id)
	recordQuery("update_photo_thumbnail", start, err)
	if err != nil {
		return fmt.Errorf("failed to update photo thumbnail: %w", err)
	}
	return nil
}

// UpdateBucketMediaThumbnail sets a media item's thumbnail path.
func (d *Database) UpdateBucketMediaThumbnail(ctx context.Context, id, thumbnailPath string) error {
	start := time.Now()
	d.mu.Lock()
	defer d.mu.Unlock()

	queryCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := d.db.ExecContext(queryCtx, `
		UPDATE bucket_list_media SET thumbnail_path = ? WHERE id = ?
	`, thumbnailPath, id)
	recordQuery("update_media_thumbnail", start, err)
	if err != nil {
		return fmt.Errorf("failed to update media thumbnail: %w", err)
	}
	return nil
}

// UpdateGalleryPhotoThumbnailTx sets a photo's thumbnail path inside a
// batch transaction (see BeginBatch). Used by the startup backfill.
func (d *Database) UpdateGalleryPhotoThumbnailTx(tx *sql.Tx, id, thumbnailPath string) error {
	start := time.Now()
	_, err := tx.Exec(`UPDATE gallery_photos SET thumbnail_path = ? WHERE id = ?`, thumbnailPath, id)
	recordQuery("update_photo_thumbnail_tx", start, err)
	if err != nil {
		return fmt.Errorf("failed to update photo thumbnail: %w", err)
	}
	return nil
}

// UpdateBucketMediaThumbnailTx sets a media item's thumbnail path inside a
// batch transaction (see BeginBatch). Used by the startup backfill.
func (d *Database) UpdateBucketMediaThumbnailTx(tx *sql.Tx, id, thumbnailPath string) error {
	start := time.Now()
	_, err := tx.Exec(`UPDATE bucket_list_media SET thumbnail_path = ? WHERE id = ?`, thumbnailPath, id)
	recordQuery("update_media_thumbnail_tx", start, err)
	if err != nil {
		return fmt.Errorf("failed to update media thumbnail: %w", err)
	}
	return nil
}
