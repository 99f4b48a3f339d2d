package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

func scanWatchlistMovie(row interface{ Scan(...interface{}) error }) (*WatchlistMovie, error) {
	var m WatchlistMovie
	var createdAt int64
	var watchedAt sql.NullInt64

	err := row.Scan(&m.ID, &m.ImdbID, &m.Title, &m.Year, &m.PosterURL,
		&m.Type, &m.Plot, &m.Watched, &createdAt, &watchedAt)
	if err != nil {
		return nil, err
	}

	m.CreatedAt = fromUnix(createdAt)
	m.WatchedAt = fromNullUnix(watchedAt)
	return &m, nil
}

// ListWatchlistMovies returns all movies, unwatched first, then by recency.
func (d *Database) ListWatchlistMovies(ctx context.Context) ([]*WatchlistMovie, error) {
	start := time.Now()
	d.mu.RLock()
	defer d.mu.RUnlock()

	queryCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(queryCtx, `
		SELECT id, imdb_id, title, year, poster_url, type, plot, watched, created_at, watched_at
		FROM watchlist_movies
		ORDER BY watched ASC, created_at DESC
	`)
	recordQuery("list_watchlist_movies", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to list watchlist movies: %w", err)
	}
	defer rows.Close()

	var movies []*WatchlistMovie
	for rows.Next() {
		m, err := scanWatchlistMovie(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan watchlist movie: %w", err)
		}
		movies = append(movies, m)
	}
	return movies, rows.Err()
}

// GetWatchlistMovie returns a movie by id, or nil when it does not exist.
func (d *Database) GetWatchlistMovie(ctx context.Context, id string) (*WatchlistMovie, error) {
	start := time.Now()
	d.mu.RLock()
	defer d.mu.RUnlock()

	queryCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	row := d.db.QueryRowContext(queryCtx, `
		SELECT id, imdb_id, title, year, poster_url, type, plot, watched, created_at, watched_at
		FROM watchlist_movies WHERE id = ?
	`, id)

	m, err := scanWatchlistMovie(row)
	recordQuery("get_watchlist_movie", start, err)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get watchlist movie: %w", err)
	}
	return m, nil
}

// HasWatchlistMovie reports whether a movie with the given IMDB id exists.
func (d *Database) HasWatchlistMovie(ctx context.Context, imdbID string) (bool, error) {
	start := time.Now()
	d.mu.RLock()
	defer d.mu.RUnlock()

	queryCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var count int
	err := d.db.QueryRowContext(queryCtx, `
		SELECT COUNT(*) FROM watchlist_movies WHERE imdb_id = ?
	`, imdbID).Scan(&count)
	recordQuery("has_watchlist_movie", start, err)
	if err != nil {
		return false, fmt.Errorf("failed to check watchlist movie: %w", err)
	}
	return count > 0, nil
}

// InsertWatchlistMovie stores a new movie row.
func (d *Database) InsertWatchlistMovie(ctx context.Context, m *WatchlistMovie) error {
	start := time.Now()
	d.mu.Lock()
	defer d.mu.Unlock()

	queryCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := d.db.ExecContext(queryCtx, `
		INSERT INTO watchlist_movies
			(id, imdb_id, title, year, poster_url, type, plot, watched, created_at, watched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.ImdbID, m.Title, m.Year, m.PosterURL, m.Type, m.Plot,
		m.Watched, toUnix(m.CreatedAt), toNullUnix(m.WatchedAt))
	recordQuery("insert_watchlist_movie", start, err)
	if err != nil {
		return fmt.Errorf("failed to insert watchlist movie: %w", err)
	}
	return nil
}

// SetWatchlistMovieWatched marks a movie watched or unwatched.
func (d *Database) SetWatchlistMovieWatched(ctx context.Context, id string, watched bool) error {
	start := time.Now()
	d.mu.Lock()
	defer d.mu.Unlock()

	queryCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var watchedAt sql.NullInt64
	if watched {
		watchedAt = sql.NullInt64{Int64: time.Now().UTC().Unix(), Valid: true}
	}

	_, err := d.db.ExecContext(queryCtx, `
		UPDATE watchlist_movies SET watched = ?, watched_at = ? WHERE id = ?
	`, watched, watchedAt, id)
	recordQuery("set_watchlist_movie_watched", start, err)
	if err != nil {
		return fmt.Errorf("failed to update watchlist movie: %w", err)
	}
	return nil
}

// DeleteWatchlistMovie removes a movie from the watchlist.
func (d *Database) DeleteWatchlistMovie(ctx context.Context, id string) error {
	start := time.Now()
	d.mu.Lock()
	defer d.mu.Unlock()

	queryCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := d.db.ExecContext(queryCtx, `DELETE FROM watchlist_movies WHERE id = ?`, id)
	recordQuery("delete_watchlist_movie", start, err)
	if err != nil {
		return fmt.Errorf("failed to delete watchlist movie: %w", err)
	}
	return nil
}
