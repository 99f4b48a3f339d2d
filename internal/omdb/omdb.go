package omdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://www.omdbapi.com/"

// ErrNoAPIKey is returned when no OMDB API key is configured.
var ErrNoAPIKey = errors.New("omdb api key is not configured")

// ErrNotFound wraps the API's own error message (no results, bad id).
type ErrNotFound struct {
	Message string
}

func (e *ErrNotFound) Error() string {
	return e.Message
}

// SearchResult is one row of an OMDB title search.
type SearchResult struct {
	ImdbID    string `json:"imdbId"`
	Title     string `json:"title"`
	Year      string `json:"year,omitempty"`
	PosterURL string `json:"posterUrl,omitempty"`
	Type      string `json:"type,omitempty"`
}

// Movie is the full metadata for a single title.
type Movie struct {
	ImdbID    string
	Title     string
	Year      string
	PosterURL string
	Type      string
	Plot      string
}

// Client talks to the OMDB API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func New(apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
	}
}

type searchResponse struct {
	Search []struct {
		Title  string `json:"Title"`
		Year   string `json:"Year"`
		ImdbID string `json:"imdbID"`
		Type   string `json:"Type"`
		Poster string `json:"Poster"`
	} `json:"Search"`
	Response string `json:"Response"`
	Error    string `json:"Error"`
}

type movieResponse struct {
	Title    string `json:"Title"`
	Year     string `json:"Year"`
	ImdbID   string `json:"imdbID"`
	Type     string `json:"Type"`
	Poster   string `json:"Poster"`
	Plot     string `json:"Plot"`
	Response string `json:"Response"`
	Error    string `json:"Error"`
}

// Search queries OMDB by title. Only movies and series are returned.
func (c *Client) Search(ctx context.Context, term string) ([]SearchResult, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	var payload searchResponse
	if err := c.get(ctx, url.Values{"s": {term}}, &payload); err != nil {
		return nil, err
	}
	if !strings.EqualFold(payload.Response, "True") {
		msg := payload.Error
		if msg == "" {
			msg = "no results found"
		}
		return nil, &ErrNotFound{Message: msg}
	}

	var results []SearchResult
	for _, item := range payload.Search {
		t := strings.ToLower(item.Type)
		if t != "movie" && t != "series" {
			continue
		}
		results = append(results, SearchResult{
			ImdbID:    item.ImdbID,
			Title:     item.Title,
			Year:      item.Year,
			PosterURL: normalizeNA(item.Poster),
			Type:      t,
		})
	}
	if len(results) == 0 {
		return nil, &ErrNotFound{Message: "no movies found"}
	}
	return results, nil
}

// Lookup fetches the full metadata for one IMDB id.
func (c *Client) Lookup(ctx context.Context, imdbID string) (*Movie, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	var payload movieResponse
	if err := c.get(ctx, url.Values{"i": {imdbID}}, &payload); err != nil {
		return nil, err
	}
	if !strings.EqualFold(payload.Response, "True") || strings.TrimSpace(payload.Title) == "" {
		msg := payload.Error
		if msg == "" {
			msg = "movie not found"
		}
		return nil, &ErrNotFound{Message: msg}
	}

	id := payload.ImdbID
	if id == "" {
		id = imdbID
	}

	return &Movie{
		ImdbID:    id,
		Title:     strings.TrimSpace(payload.Title),
		Year:      payload.Year,
		PosterURL: normalizeNA(payload.Poster),
		Type:      normalizeType(payload.Type),
		Plot:      strings.TrimSpace(normalizeNA(payload.Plot)),
	}, nil
}

func (c *Client) get(ctx context.Context, params url.Values, out interface{}) error {
	params.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("omdb request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("omdb returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode omdb response: %w", err)
	}
	return nil
}

// normalizeNA maps OMDB's literal "N/A" placeholder to an empty string.
func normalizeNA(s string) string {
	if strings.EqualFold(strings.TrimSpace(s), "N/A") {
		return ""
	}
	return s
}

func normalizeType(t string) string {
	t = strings.TrimSpace(t)
	switch strings.ToLower(t) {
	case "movie":
		return "movie"
	case "series":
		return "series"
	}
	return t
}
