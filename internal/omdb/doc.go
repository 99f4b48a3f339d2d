// Package omdb is a minimal OMDB API client used by the watchlist:
// title search and single-title lookup by IMDB id. The API's "N/A"
// placeholder values are normalized to empty strings.
package omdb
