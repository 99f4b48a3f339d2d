package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

func scanTravelCountry(row interface{ Scan(...interface{}) error }) (*TravelCountry, error) {
	var c TravelCountry
	var createdAt int64
	var visitedAt sql.NullInt64

	err := row.Scan(&c.ID, &c.CountryCode, &c.CountryName, &c.IsVisited, &createdAt, &visitedAt)
	if err != nil {
		return nil, err
	}

	c.CreatedAt = fromUnix(createdAt)
	c.VisitedAt = fromNullUnix(visitedAt)
	return &c, nil
}

// ListTravelCountries returns all countries, visited first (most recently
// visited leading), then planned by recency.
func (d *Database) ListTravelCountries(ctx context.Context) ([]*TravelCountry, error) {
	start := time.Now()
	d.mu.RLock()
	defer d.mu.RUnlock()

	queryCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(queryCtx, `
		SELECT id, country_code, country_name, is_visited, created_at, visited_at
		FROM travel_countries
		ORDER BY is_visited DESC, visited_at DESC, created_at DESC
	`)
	recordQuery("list_travel_countries", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to list travel countries: %w", err)
	}
	defer rows.Close()

	var countries []*TravelCountry
	for rows.Next() {
		c, err := scanTravelCountry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan travel country: %w", err)
		}
		countries = append(countries, c)
	}
	return countries, rows.Err()
}

// GetTravelCountryByCode returns a country by its alpha-3 code, or nil when
// it is not on the map. The lookup is case-insensitive.
func (d *Database) GetTravelCountryByCode(ctx context.Context, code string) (*TravelCountry, error) {
	start := time.Now()
	d.mu.RLock()
	defer d.mu.RUnlock()

	queryCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	row := d.db.QueryRowContext(queryCtx, `
		SELECT id, country_code, country_name, is_visited, created_at, visited_at
		FROM travel_countries WHERE country_code = ?
	`, strings.ToUpper(code))

	c, err := scanTravelCountry(row)
	recordQuery("get_travel_country", start, err)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get travel country: %w", err)
	}
	return c, nil
}

// InsertTravelCountry stores a new country row. The code is stored
// uppercase so the unique index is effectively case-insensitive.
func (d *Database) InsertTravelCountry(ctx context.Context, c *TravelCountry) error {
	start := time.Now()
	d.mu.Lock()
	defer d.mu.Unlock()

	queryCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := d.db.ExecContext(queryCtx, `
		INSERT INTO travel_countries (id, country_code, country_name, is_visited, created_at, visited_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, c.ID, strings.ToUpper(c.CountryCode), c.CountryName, c.IsVisited,
		toUnix(c.CreatedAt), toNullUnix(c.VisitedAt))
	recordQuery("insert_travel_country", start, err)
	if err != nil {
		return fmt.Errorf("failed to insert travel country: %w", err)
	}
	return nil
}

// SetTravelCountryVisited marks a country visited or planned.
func (d *Database) SetTravelCountryVisited(ctx context.Context, id string, visited bool) error {
	start := time.Now()
	d.mu.Lock()
	defer d.mu.Unlock()

	queryCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var visitedAt sql.NullInt64
	if visited {
		visitedAt = sql.NullInt64{Int64: time.Now().UTC().Unix(), Valid: true}
	}

	_, err := d.db.ExecContext(queryCtx, `
		UPDATE travel_countries SET is_visited = ?, visited_at = ? WHERE id = ?
	`, visited, visitedAt, id)
	recordQuery("set_travel_country_visited", start, err)
	if err != nil {
		return fmt.Errorf("failed to update travel country: %w", err)
	}
	return nil
}

// DeleteTravelCountry removes a country from the map.
func (d *Database) DeleteTravelCountry(ctx context.Context, id string) error {
	start := time.Now()
	d.mu.Lock()
	defer d.mu.Unlock()

	queryCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := d.db.ExecContext(queryCtx, `DELETE FROM travel_countries WHERE id = ?`, id)
	recordQuery("delete_travel_country", start, err)
	if err != nil {
		return fmt.Errorf("failed to delete travel country: %w", err)
	}
	return nil
}
