package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"love-letter/internal/logging"
	"love-letter/internal/metrics"
)

// Default timeout for database operations
const defaultTimeout = 5 * time.Second

// Database manages all persistence for the love letter application.
type Database struct {
	db      *sql.DB
	dbPath  string
	mu      sync.RWMutex
	txStart time.Time // Track transaction start time for metrics
}

// New creates a new Database instance.
// dbPath is the full path to the database FILE (e.g. "/data/loveletter.db");
// the parent directory must already exist and be writable. Use
// startup.LoadConfig() to ensure proper directory validation before calling this.
func New(ctx context.Context, dbPath string) (*Database, error) {
	logging.Info("Database path: %s", dbPath)

	// Use WAL mode and other optimizations
	// busy_timeout helps prevent "database is locked" errors
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=10000&_temp_store=MEMORY&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Allow multiple readers; writes serialize through SQLite itself
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(time.Hour)

	d := &Database{
		db:     db,
		dbPath: dbPath,
	}

	if err := d.initialize(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after initialization failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	logging.Info("Database initialized successfully at %s", dbPath)
	return d, nil
}

func (d *Database) initialize(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS gallery_photos (
		id TEXT PRIMARY KEY,
		caption TEXT NOT NULL DEFAULT '',
		album TEXT NOT NULL DEFAULT '',
		original_file_name TEXT NOT NULL DEFAULT '',
		file_path TEXT NOT NULL,
		thumbnail_path TEXT,
		is_favorite INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now')),
		favorited_at INTEGER
	);

	CREATE INDEX IF NOT EXISTS idx_gallery_photos_album ON gallery_photos(album COLLATE NOCASE);
	CREATE INDEX IF NOT EXISTS idx_gallery_photos_favorite ON gallery_photos(is_favorite);

	CREATE TABLE IF NOT EXISTS gallery_albums (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_gallery_albums_name ON gallery_albums(name COLLATE NOCASE);

	CREATE TABLE IF NOT EXISTS bucket_list_entries (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		requires_photo INTEGER NOT NULL DEFAULT 0,
		completed INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now')),
		completed_at INTEGER
	);

	CREATE TABLE IF NOT EXISTS bucket_list_media (
		id TEXT PRIMARY KEY,
		entry_id TEXT NOT NULL REFERENCES bucket_list_entries(id) ON DELETE CASCADE,
		file_path TEXT NOT NULL,
		thumbnail_path TEXT,
		original_file_name TEXT NOT NULL DEFAULT '',
		content_type TEXT NOT NULL DEFAULT '',
		is_video INTEGER NOT NULL DEFAULT 0,
		is_in_gallery INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
	);

	CREATE INDEX IF NOT EXISTS idx_bucket_list_media_entry ON bucket_list_media(entry_id);

	CREATE TABLE IF NOT EXISTS travel_countries (
		id TEXT PRIMARY KEY,
		country_code TEXT NOT NULL UNIQUE,
		country_name TEXT NOT NULL,
		is_visited INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now')),
		visited_at INTEGER
	);

	CREATE TABLE IF NOT EXISTS watchlist_movies (
		id TEXT PRIMARY KEY,
		imdb_id TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL,
		year TEXT NOT NULL DEFAULT '',
		poster_url TEXT NOT NULL DEFAULT '',
		type TEXT NOT NULL DEFAULT '',
		plot TEXT NOT NULL DEFAULT '',
		watched INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now')),
		watched_at INTEGER
	);
	`

	execCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := d.db.ExecContext(execCtx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	// Foreign keys are per-connection in SQLite
	if _, err := d.db.ExecContext(execCtx, "PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return d.runMigrations(ctx)
}

// runMigrations applies database schema migrations
func (d *Database) runMigrations(ctx context.Context) error {
	// Migration 1: Add album column to gallery_photos if it doesn't exist
	// (early deployments predate albums)
	var columnExists bool
	err := d.db.QueryRowContext(ctx, `
		SELECT COUNT(*) > 0
		FROM pragma_table_info('gallery_photos')
		WHERE name='album'
	`).Scan(&columnExists)

	if err != nil {
		return fmt.Errorf("failed to check for album column: %w", err)
	}

	if !columnExists {
		logging.Info("Migrating database: adding album column to gallery_photos table")

		_, err = d.db.ExecContext(ctx, `
			ALTER TABLE gallery_photos ADD COLUMN album TEXT NOT NULL DEFAULT ''
		`)
		if err != nil {
			return fmt.Errorf("failed to add album column: %w", err)
		}

		logging.Info("Migration complete: album column added")
	}

	// Migration 2: Add is_in_gallery column to bucket_list_media if it doesn't exist
	var inGalleryExists bool
	err = d.db.QueryRowContext(ctx, `
		SELECT COUNT(*) > 0
		FROM pragma_table_info('bucket_list_media')
		WHERE name='is_in_gallery'
	`).Scan(&inGalleryExists)

	if err != nil {
		return fmt.Errorf("failed to check for is_in_gallery column: %w", err)
	}

	if !inGalleryExists {
		logging.Info("Migrating database: adding is_in_gallery column to bucket_list_media table")

		_, err = d.db.ExecContext(ctx, `
			ALTER TABLE bucket_list_media ADD COLUMN is_in_gallery INTEGER NOT NULL DEFAULT 0
		`)
		if err != nil {
			return fmt.Errorf("failed to add is_in_gallery column: %w", err)
		}

		logging.Info("Migration complete: is_in_gallery column added")
	}

	return nil
}

// Close closes the database connection.
func (d *Database) Close() error {
	return d.db.Close()
}

// BeginBatch starts a transaction for batch operations.
// The caller is responsible for calling EndBatch when done.
func (d *Database) BeginBatch() (*sql.Tx, error) {
	d.mu.Lock()
	txStart := time.Now()

	// Use background context - transaction lifetime is managed by EndBatch,
	// not a timeout.
	tx, err := d.db.BeginTx(context.Background(), nil)
	d.mu.Unlock()

	if err != nil {
		return nil, err
	}

	d.txStart = txStart
	return tx, nil
}

// EndBatch commits or rolls back a transaction.
func (d *Database) EndBatch(tx *sql.Tx, err error) error {
	duration := time.Since(d.txStart).Seconds()

	if err != nil {
		metrics.DBTransactionDuration.WithLabelValues("rollback").Observe(duration)
		rbErr := tx.Rollback()
		if rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback also failed: %w", rbErr))
		}
		return err
	}

	metrics.DBTransactionDuration.WithLabelValues("commit").Observe(duration)
	return tx.Commit()
}

// recordQuery records database query metrics
func recordQuery(operation string, start time.Time, err error) {
	duration := time.Since(start).Seconds()
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.DBQueryTotal.WithLabelValues(operation, status).Inc()
	metrics.DBQueryDuration.WithLabelValues(operation).Observe(duration)
}

// UpdateDBMetrics updates database connection metrics
func (d *Database) UpdateDBMetrics() {
	stats := d.db.Stats()
	metrics.DBConnectionsOpen.Set(float64(stats.OpenConnections))
}

// Timestamp helpers. Times are stored as Unix seconds.

func toUnix(t time.Time) int64 {
	return t.UTC().Unix()
}

func toNullUnix(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UTC().Unix(), Valid: true}
}

func fromUnix(n int64) time.Time {
	return time.Unix(n, 0).UTC()
}

func fromNullUnix(n sql.NullInt64) *time.Time {
	if !n.Valid {
		return nil
	}
	t := time.Unix(n.Int64, 0).UTC()
	return &t
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
