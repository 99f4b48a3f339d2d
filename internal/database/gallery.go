package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const galleryPhotoColumns = `id, caption, album, original_file_name, file_path,
	COALESCE(thumbnail_path, ''), is_favorite, created_at, favorited_at`

func scanGalleryPhoto(row interface{ Scan(...interface{}) error }) (*GalleryPhoto, error) {
	var p GalleryPhoto
	var createdAt int64
	var favoritedAt sql.NullInt64

	err := row.Scan(&p.ID, &p.Caption, &p.Album, &p.OriginalFileName, &p.FilePath,
		&p.ThumbnailPath, &p.IsFavorite, &createdAt, &favoritedAt)
	if err != nil {
		return nil, err
	}

	p.CreatedAt = fromUnix(createdAt)
	p.FavoritedAt = fromNullUnix(favoritedAt)
	return &p, nil
}

// ListGalleryPhotos returns all photos, favorites first (most recently
// favorited leading), then the rest by recency.
func (d *Database) ListGalleryPhotos(ctx context.Context) ([]*GalleryPhoto, error) {
	start := time.Now()
	d.mu.RLock()
	defer d.mu.RUnlock()

	queryCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(queryCtx, fmt.Sprintf(`
		SELECT %s FROM gallery_photos
		ORDER BY is_favorite DESC, favorited_at DESC, created_at DESC
	`, galleryPhotoColumns))
	recordQuery("list_gallery_photos", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to list gallery photos: %w", err)
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

// GetGalleryPhoto returns a photo by id, or nil when it does not exist.
func (d *Database) GetGalleryPhoto(ctx context.Context, id string) (*GalleryPhoto, error) {
	start := time.Now()
	d.mu.RLock()
	defer d.mu.RUnlock()

	queryCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	row := d.db.QueryRowContext(queryCtx, fmt.Sprintf(`
		SELECT %s FROM gallery_photos WHERE id = ?
	`, galleryPhotoColumns), id)

	p, err := scanGalleryPhoto(row)
	recordQuery("get_gallery_photo", start, err)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get gallery photo: %w", err)
	}
	return p, nil
}

// InsertGalleryPhoto stores a new photo row.
func (d *Database) InsertGalleryPhoto(ctx context.Context, p *GalleryPhoto) error {
	start := time.Now()
	d.mu.Lock()
	defer d.mu.Unlock()

	queryCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := d.db.ExecContext(queryCtx, `
		INSERT INTO gallery_photos
			(id, caption, album, original_file_name, file_path, thumbnail_path, is_favorite, created_at, favorited_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.Caption, p.Album, p.OriginalFileName, p.FilePath,
		nullString(p.ThumbnailPath), p.IsFavorite, toUnix(p.CreatedAt), toNullUnix(p.FavoritedAt))
	recordQuery("insert_gallery_photo", start, err)
	if err != nil {
		return fmt.Errorf("failed to insert gallery photo: %w", err)
	}
	return nil
}

// UpdateGalleryPhotoDetails updates a photo's caption and album.
func (d *Database) UpdateGalleryPhotoDetails(ctx context.Context, id, caption, album string) error {
	start := time.Now()
	d.mu.Lock()
	defer d.mu.Unlock()

	queryCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := d.db.ExecContext(queryCtx, `
		UPDATE gallery_photos SET caption = ?, album = ? WHERE id = ?
	`, caption, album, id)
	recordQuery("update_gallery_photo_details", start, err)
	if err != nil {
		return fmt.Errorf("failed to update gallery photo: %w", err)
	}
	return nil
}

// SetGalleryPhotoFavorite marks or unmarks a photo as favorite.
func (d *Database) SetGalleryPhotoFavorite(ctx context.Context, id string, favorite bool) error {
	start := time.Now()
	d.mu.Lock()
	defer d.mu.Unlock()

	queryCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var favoritedAt sql.NullInt64
	if favorite {
		favoritedAt = sql.NullInt64{Int64: time.Now().UTC().Unix(), Valid: true}
	}

	_, err := d.db.ExecContext(queryCtx, `
		UPDATE gallery_photos SET is_favorite = ?, favorited_at = ? WHERE id = ?
	`, favorite, favoritedAt, id)
	recordQuery("set_gallery_photo_favorite", start, err)
	if err != nil {
		return fmt.Errorf("failed to set gallery photo favorite: %w", err)
	}
	return nil
}

// CountFavoritePhotos returns the number of photos currently favorited.
func (d *Database) CountFavoritePhotos(ctx context.Context) (int, error) {
	start := time.Now()
	d.mu.RLock()
	defer d.mu.RUnlock()

	queryCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var count int
	err := d.db.QueryRowContext(queryCtx, `
		SELECT COUNT(*) FROM gallery_photos WHERE is_favorite = 1
	`).Scan(&count)
	recordQuery("count_favorite_photos", start, err)
	if err != nil {
		return 0, fmt.Errorf("failed to count favorite photos: %w", err)
	}
	return count, nil
}

// DeleteGalleryPhoto removes a photo row. The caller deletes the files.
func (d *Database) DeleteGalleryPhoto(ctx context.Context, id string) error {
	start := time.Now()
	d.mu.Lock()
	defer d.mu.Unlock()

	queryCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := d.db.ExecContext(queryCtx, `DELETE FROM gallery_photos WHERE id = ?`, id)
	recordQuery("delete_gallery_photo", start, err)
	if err != nil {
		return fmt.Errorf("failed to delete gallery photo: %w", err)
	}
	return nil
}

// ListGalleryAlbums returns all explicitly created albums.
func (d *Database) ListGalleryAlbums(ctx context.Context) ([]*GalleryAlbum, error) {
	start := time.Now()
	d.mu.RLock()
	defer d.mu.RUnlock()

	queryCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(queryCtx, `
		SELECT id, name, created_at FROM gallery_albums ORDER BY name COLLATE NOCASE
	`)
	recordQuery("list_gallery_albums", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to list gallery albums: %w", err)
	}
	defer rows.Close()

	var albums []*GalleryAlbum
	for rows.Next() {
		var a GalleryAlbum
		var createdAt int64
		if err := rows.Scan(&a.ID, &a.Name, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan gallery album: %w", err)
		}
		a.CreatedAt = fromUnix(createdAt)
		albums = append(albums, &a)
	}
	return albums, rows.Err()
}

// InsertGalleryAlbum stores a new album row.
func (d *Database) InsertGalleryAlbum(ctx context.Context, a *GalleryAlbum) error {
	start := time.Now()
	d.mu.Lock()
	defer d.mu.Unlock()

	queryCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := d.db.ExecContext(queryCtx, `
		INSERT INTO gallery_albums (id, name, created_at) VALUES (?, ?, ?)
	`, a.ID, a.Name, toUnix(a.CreatedAt))
	recordQuery("insert_gallery_album", start, err)
	if err != nil {
		return fmt.Errorf("failed to insert gallery album: %w", err)
	}
	return nil
}

// AlbumNameInUse reports whether an album name is taken, either by an
// explicit album or by photos already tagged with it. Case-insensitive.
func (d *Database) AlbumNameInUse(ctx context.Context, name string) (bool, error) {
	start := time.Now()
	d.mu.RLock()
	defer d.mu.RUnlock()

	queryCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var count int
	err := d.db.QueryRowContext(queryCtx, `
		SELECT
			(SELECT COUNT(*) FROM gallery_albums WHERE name = ? COLLATE NOCASE) +
			(SELECT COUNT(*) FROM gallery_photos WHERE album = ? COLLATE NOCASE AND album != '')
	`, name, name).Scan(&count)
	recordQuery("album_name_in_use", start, err)
	if err != nil {
		return false, fmt.Errorf("failed to check album name: %w", err)
	}
	return count > 0, nil
}
