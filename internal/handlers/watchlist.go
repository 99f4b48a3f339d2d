package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"love-letter/internal/database"
	"love-letter/internal/logging"
	"love-letter/internal/omdb"
)

// ListWatchlistMovies returns the watchlist, unwatched first.
func (h *Handlers) ListWatchlistMovies(w http.ResponseWriter, r *http.Request) {
	movies, err := h.db.ListWatchlistMovies(r.Context())
	if err != nil {
		logging.Error("Failed to list watchlist: %v", err)
		writeJSONError(w, "failed to load watchlist", http.StatusInternalServerError)
		return
	}
	if movies == nil {
		movies = []*database.WatchlistMovie{}
	}
	writeJSON(w, movies)
}

// SearchWatchlist searches OMDB for movies and series.
func (h *Handlers) SearchWatchlist(w http.ResponseWriter, r *http.Request) {
	term := strings.TrimSpace(r.URL.Query().Get("q"))
	if len(term) < 2 {
		writeJSONError(w, "search term must be at least 2 characters", http.StatusBadRequest)
		return
	}

	results, err := h.omdb.Search(r.Context(), term)
	if err != nil {
		var notFound *omdb.ErrNotFound
		switch {
		case errors.As(err, &notFound):
			writeJSON(w, []omdb.SearchResult{})
		case errors.Is(err, omdb.ErrNoAPIKey):
			writeJSONError(w, "movie search is not configured", http.StatusServiceUnavailable)
		default:
			logging.Error("OMDB search failed: %v", err)
			writeJSONError(w, "movie search failed", http.StatusBadGateway)
		}
		return
	}

	writeJSON(w, results)
}

// AddWatchlistMovie adds a title by IMDB id, fetching full metadata.
func (h *Handlers) AddWatchlistMovie(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ImdbID string `json:"imdbId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	imdbID := strings.TrimSpace(req.ImdbID)
	if imdbID == "" {
		writeJSONError(w, "an imdb id is required", http.StatusBadRequest)
		return
	}

	exists, err := h.db.HasWatchlistMovie(r.Context(), imdbID)
	if err != nil {
		logging.Error("Failed to check watchlist for %s: %v", imdbID, err)
		writeJSONError(w, "failed to add movie", http.StatusInternalServerError)
		return
	}
	if exists {
		writeJSONError(w, "that title is already on the watchlist", http.StatusConflict)
		return
	}

	details, err := h.omdb.Lookup(r.Context(), imdbID)
	if err != nil {
		var notFound *omdb.ErrNotFound
		switch {
		case errors.As(err, &notFound):
			writeJSONError(w, "title not found", http.StatusNotFound)
		case errors.Is(err, omdb.ErrNoAPIKey):
			writeJSONError(w, "movie search is not configured", http.StatusServiceUnavailable)
		default:
			logging.Error("OMDB lookup failed for %s: %v", imdbID, err)
			writeJSONError(w, "movie lookup failed", http.StatusBadGateway)
		}
		return
	}

	movie := &database.WatchlistMovie{
		ID:        uuid.NewString(),
		ImdbID:    details.ImdbID,
		Title:     details.Title,
		Year:      details.Year,
		PosterURL: details.PosterURL,
		Type:      details.Type,
		Plot:      details.Plot,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.db.InsertWatchlistMovie(r.Context(), movie); err != nil {
		logging.Error("Failed to add watchlist movie %s: %v", imdbID, err)
		writeJSONError(w, "failed to add movie", http.StatusInternalServerError)
		return
	}

	writeCreated(w, movie)
}

// SetWatchlistMovieWatched flips the watched flag.
func (h *Handlers) SetWatchlistMovieWatched(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req struct {
		Watched bool `json:"watched"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.db.SetWatchlistMovieWatched(r.Context(), id, req.Watched); err != nil {
		logging.Error("Failed to update watchlist movie %s: %v", id, err)
		writeJSONError(w, "failed to update movie", http.StatusInternalServerError)
		return
	}

	movie, err := h.db.GetWatchlistMovie(r.Context(), id)
	if err != nil || movie == nil {
		logging.Error("Failed to reload watchlist movie %s: %v", id, err)
		writeJSONError(w, "movie not found", http.StatusNotFound)
		return
	}
	writeJSON(w, movie)
}

// DeleteWatchlistMovie removes a title from the watchlist.
func (h *Handlers) DeleteWatchlistMovie(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.db.DeleteWatchlistMovie(r.Context(), id); err != nil {
		logging.Error("Failed to delete watchlist movie %s: %v", id, err)
		writeJSONError(w, "failed to delete movie", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]string{"status": "deleted"})
}
