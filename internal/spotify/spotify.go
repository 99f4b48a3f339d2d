package spotify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"love-letter/internal/logging"
)

const (
	defaultOEmbedURL = "https://open.spotify.com/oembed"
	cacheTTL         = 6 * time.Hour
)

// Metadata is the subset of Spotify's oEmbed payload the playlist needs.
type Metadata struct {
	Title        string `json:"title,omitempty"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
}

// Client fetches track metadata through Spotify's public oEmbed endpoint,
// caching results in-process for six hours. Failures are soft: the caller
// gets nil and renders the raw config entry instead.
type Client struct {
	httpClient *http.Client
	oembedURL  string

	mu    sync.Mutex
	cache map[string]cacheEntry
}

type cacheEntry struct {
	meta    Metadata
	expires time.Time
}

func New() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		oembedURL:  defaultOEmbedURL,
		cache:      make(map[string]cacheEntry),
	}
}

// GetMetadata returns cached or freshly fetched metadata for a track URL,
// or nil when the URL is blank or the lookup fails.
func (c *Client) GetMetadata(ctx context.Context, trackURL string) *Metadata {
	trackURL = strings.TrimSpace(trackURL)
	if trackURL == "" {
		return nil
	}

	c.mu.Lock()
	if entry, ok := c.cache[trackURL]; ok && time.Now().Before(entry.expires) {
		c.mu.Unlock()
		meta := entry.meta
		return &meta
	}
	c.mu.Unlock()

	meta := c.fetch(ctx, trackURL)
	if meta == nil {
		return nil
	}

	c.mu.Lock()
	c.cache[trackURL] = cacheEntry{meta: *meta, expires: time.Now().Add(cacheTTL)}
	c.mu.Unlock()
	return meta
}

type oembedResponse struct {
	Title        string `json:"title"`
	ThumbnailURL string `json:"thumbnail_url"`
}

func (c *Client) fetch(ctx context.Context, trackURL string) *Metadata {
	endpoint := c.oembedURL + "?url=" + url.QueryEscape(trackURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logging.Debug("Spotify oEmbed request failed for %s: %v", trackURL, err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logging.Debug("Spotify oEmbed returned status %d for %s", resp.StatusCode, trackURL)
		return nil
	}

	var payload oembedResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		logging.Debug("Failed to decode Spotify oEmbed response: %v", err)
		return nil
	}

	return &Metadata{
		Title:        payload.Title,
		ThumbnailURL: payload.ThumbnailURL,
	}
}
