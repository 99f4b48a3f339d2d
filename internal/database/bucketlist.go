package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const bucketMediaColumns = `id, entry_id, file_path, COALESCE(thumbnail_path, ''),
	original_file_name, content_type, is_video, is_in_gallery, created_at`

func scanBucketMedia(row interface{ Scan(...interface{}) error }) (*BucketListMedia, error) {
	var m BucketListMedia
	var createdAt int64

	err := row.Scan(&m.ID, &m.EntryID, &m.FilePath, &m.ThumbnailPath,
		&m.OriginalFileName, &m.ContentType, &m.IsVideo, &m.IsInGallery, &createdAt)
	if err != nil {
		return nil, err
	}

	m.CreatedAt = fromUnix(createdAt)
	return &m, nil
}

// ListBucketListEntries returns all entries with their media attached,
// incomplete entries first, then by recency.
func (d *Database) ListBucketListEntries(ctx context.Context) ([]*BucketListEntry, error) {
	start := time.Now()
	d.mu.RLock()
	defer d.mu.RUnlock()

	queryCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(queryCtx, `
		SELECT id, title, description, requires_photo, completed, created_at, completed_at
		FROM bucket_list_entries
		ORDER BY completed ASC, created_at DESC
	`)
	recordQuery("list_bucket_entries", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to list bucket list entries: %w", err)
	}
	defer rows.Close()

	var entries []*BucketListEntry
	byID := make(map[string]*BucketListEntry)
	for rows.Next() {
		var e BucketListEntry
		var createdAt int64
		var completedAt sql.NullInt64
		if err := rows.Scan(&e.ID, &e.Title, &e.Description, &e.RequiresPhoto,
			&e.Completed, &createdAt, &completedAt); err != nil {
			return nil, fmt.Errorf("failed to scan bucket list entry: %w", err)
		}
		e.CreatedAt = fromUnix(createdAt)
		e.CompletedAt = fromNullUnix(completedAt)
		e.Media = []BucketListMedia{}
		entries = append(entries, &e)
		byID[e.ID] = &e
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	mediaRows, err := d.db.QueryContext(queryCtx, fmt.Sprintf(`
		SELECT %s FROM bucket_list_media ORDER BY created_at ASC
	`, bucketMediaColumns))
	if err != nil {
		return nil, fmt.Errorf("failed to list bucket list media: %w", err)
	}
	defer mediaRows.Close()

	for mediaRows.Next() {
		m, err := scanBucketMedia(mediaRows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bucket list media: %w", err)
		}
		if e, ok := byID[m.EntryID]; ok {
			e.Media = append(e.Media, *m)
		}
	}
	return entries, mediaRows.Err()
}

// GetBucketListEntry returns an entry with its media, or nil when it does
// not exist.
func (d *Database) GetBucketListEntry(ctx context.Context, id string) (*BucketListEntry, error) {
	start := time.Now()
	d.mu.RLock()
	defer d.mu.RUnlock()

	queryCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var e BucketListEntry
	var createdAt int64
	var completedAt sql.NullInt64
	err := d.db.QueryRowContext(queryCtx, `
		SELECT id, title, description, requires_photo, completed, created_at, completed_at
		FROM bucket_list_entries WHERE id = ?
	`, id).Scan(&e.ID, &e.Title, &e.Description, &e.RequiresPhoto,
		&e.Completed, &createdAt, &completedAt)
	recordQuery("get_bucket_entry", start, err)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bucket list entry: %w", err)
	}
	e.CreatedAt = fromUnix(createdAt)
	e.CompletedAt = fromNullUnix(completedAt)
	e.Media = []BucketListMedia{}

	mediaRows, err := d.db.QueryContext(queryCtx, fmt.Sprintf(`
		SELECT %s FROM bucket_list_media WHERE entry_id = ? ORDER BY created_at ASC
	`, bucketMediaColumns), id)
	if err != nil {
		return nil, fmt.Errorf("failed to list entry media: %w", err)
	}
	defer mediaRows.Close()

	for mediaRows.Next() {
		m, err := scanBucketMedia(mediaRows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bucket list media: %w", err)
		}
		e.Media = append(e.Media, *m)
	}
	return &e, mediaRows.Err()
}

// InsertBucketListEntry stores a new entry row.
func (d *Database) InsertBucketListEntry(ctx context.Context, e *BucketListEntry) error {
	start := time.Now()
	d.mu.Lock()
	defer d.mu.Unlock()

	queryCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := d.db.ExecContext(queryCtx, `
		INSERT INTO bucket_list_entries
			(id, title, description, requires_photo, completed, created_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.Title, e.Description, e.RequiresPhoto, e.Completed,
		toUnix(e.CreatedAt), toNullUnix(e.CompletedAt))
	recordQuery("insert_bucket_entry", start, err)
	if err != nil {
		return fmt.Errorf("failed to insert bucket list entry: %w", err)
	}
	return nil
}

// SetBucketListEntryCompleted marks an entry complete or incomplete.
func (d *Database) SetBucketListEntryCompleted(ctx context.Context, id string, completed bool) error {
	start := time.Now()
	d.mu.Lock()
	defer d.mu.Unlock()

	queryCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var completedAt sql.NullInt64
	if completed {
		completedAt = sql.NullInt64{Int64: time.Now().UTC().Unix(), Valid: true}
	}

	_, err := d.db.ExecContext(queryCtx, `
		UPDATE bucket_list_entries SET completed = ?, completed_at = ? WHERE id = ?
	`, completed, completedAt, id)
	recordQuery("set_bucket_entry_completed", start, err)
	if err != nil {
		return fmt.Errorf("failed to update bucket list entry: %w", err)
	}
	return nil
}

// DeleteBucketListEntry removes an entry; media rows cascade. The caller
// deletes the files.
func (d *Database) DeleteBucketListEntry(ctx context.Context, id string) error {
	start := time.Now()
	d.mu.Lock()
	defer d.mu.Unlock()

	queryCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := d.db.ExecContext(queryCtx, `DELETE FROM bucket_list_entries WHERE id = ?`, id)
	recordQuery("delete_bucket_entry", start, err)
	if err != nil {
		return fmt.Errorf("failed to delete bucket list entry: %w", err)
	}
	return nil
}

// InsertBucketListMedia stores a new media row.
func (d *Database) InsertBucketListMedia(ctx context.Context, m *BucketListMedia) error {
	start := time.Now()
	d.mu.Lock()
	defer d.mu.Unlock()

	queryCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := d.db.ExecContext(queryCtx, `
		INSERT INTO bucket_list_media
			(id, entry_id, file_path, thumbnail_path, original_file_name, content_type, is_video, is_in_gallery, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.EntryID, m.FilePath, nullString(m.ThumbnailPath),
		m.OriginalFileName, m.ContentType, m.IsVideo, m.IsInGallery, toUnix(m.CreatedAt))
	recordQuery("insert_bucket_media", start, err)
	if err != nil {
		return fmt.Errorf("failed to insert bucket list media: %w", err)
	}
	return nil
}

// GetBucketListMedia returns one media row, or nil when it does not exist.
func (d *Database) GetBucketListMedia(ctx context.Context, id string) (*BucketListMedia, error) {
	start := time.Now()
	d.mu.RLock()
	defer d.mu.RUnlock()

	queryCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	row := d.db.QueryRowContext(queryCtx, fmt.Sprintf(`
		SELECT %s FROM bucket_list_media WHERE id = ?
	`, bucketMediaColumns), id)

	m, err := scanBucketMedia(row)
	recordQuery("get_bucket_media", start, err)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bucket list media: %w", err)
	}
	return m, nil
}

// DeleteBucketListMedia removes a media row. The caller deletes the files.
func (d *Database) DeleteBucketListMedia(ctx context.Context, id string) error {
	start := time.Now()
	d.mu.Lock()
	defer d.mu.Unlock()

	queryCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := d.db.ExecContext(queryCtx, `DELETE FROM bucket_list_media WHERE id = ?`, id)
	recordQuery("delete_bucket_media", start, err)
	if err != nil {
		return fmt.Errorf("failed to delete bucket list media: %w", err)
	}
	return nil
}

// SetBucketListMediaInGallery marks a media item as copied to the gallery.
func (d *Database) SetBucketListMediaInGallery(ctx context.Context, id string, inGallery bool) error {
	start := time.Now()
	d.mu.Lock()
	defer d.mu.Unlock()

	queryCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := d.db.ExecContext(queryCtx, `
		UPDATE bucket_list_media SET is_in_gallery = ? WHERE id = ?
	`, inGallery, id)
	recordQuery("set_bucket_media_in_gallery", start, err)
	if err != nil {
		return fmt.Errorf("failed to update bucket list media: %w", err)
	}
	return nil
}
