package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"love-letter/internal/content"
	"love-letter/internal/logging"
)

// Seed populates empty tables from the content configuration. Tables that
// already contain rows are left untouched, so user edits survive restarts
// and content file changes.
func (d *Database) Seed(ctx context.Context, cfg *content.Config) error {
	if err := d.seedGallery(ctx, cfg.Gallery); err != nil {
		return err
	}
	return d.seedBucketList(ctx, cfg.BucketList.Items)
}

func (d *Database) seedGallery(ctx context.Context, items []content.GalleryItem) error {
	if len(items) == 0 {
		return nil
	}

	count, err := d.countRows(ctx, "gallery_photos")
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	logging.Info("Seeding %d gallery photos from content config", len(items))
	now := time.Now().UTC()

	for _, item := range items {
		photo := &GalleryPhoto{
			ID:        uuid.NewString(),
			Caption:   item.Caption,
			FilePath:  normalizeSeedPath(item.Src),
			CreatedAt: now,
		}
		if err := d.InsertGalleryPhoto(ctx, photo); err != nil {
			return fmt.Errorf("failed to seed gallery photo %s: %w", item.Src, err)
		}
	}
	return nil
}

func (d *Database) seedBucketList(ctx context.Context, items []content.BucketListItem) error {
	if len(items) == 0 {
		return nil
	}

	count, err := d.countRows(ctx, "bucket_list_entries")
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	logging.Info("Seeding %d bucket list entries from content config", len(items))
	now := time.Now().UTC()

	for _, item := range items {
		entry := &BucketListEntry{
			ID:          uuid.NewString(),
			Title:       item.Title,
			Description: item.Description,
			Completed:   item.Completed,
			CreatedAt:   now,
		}
		if item.Completed {
			entry.CompletedAt = &now
		}
		if err := d.InsertBucketListEntry(ctx, entry); err != nil {
			return fmt.Errorf("failed to seed bucket list entry %q: %w", item.Title, err)
		}

		for _, m := range item.Media {
			media := &BucketListMedia{
				ID:        uuid.NewString(),
				EntryID:   entry.ID,
				FilePath:  normalizeSeedPath(m.Src),
				IsVideo:   m.Type == "video",
				CreatedAt: now,
			}
			if err := d.InsertBucketListMedia(ctx, media); err != nil {
				return fmt.Errorf("failed to seed bucket list media %s: %w", m.Src, err)
			}
		}
	}
	return nil
}

func (d *Database) countRows(ctx context.Context, table string) (int, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	queryCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var count int
	// table names come from the fixed callers above, never from input
	err := d.db.QueryRowContext(queryCtx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count rows in %s: %w", table, err)
	}
	return count, nil
}

// normalizeSeedPath strips a leading slash so seeded paths match the
// root-relative convention used for uploads.
func normalizeSeedPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	return strings.TrimPrefix(p, "/")
}
