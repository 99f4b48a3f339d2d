package handlers

import (
	"net/http"
)

type songResponse struct {
	URL          string `json:"url"`
	Artist       string `json:"artist,omitempty"`
	Title        string `json:"title,omitempty"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
}

type songsResponse struct {
	Eyebrow    string         `json:"eyebrow,omitempty"`
	Heading    string         `json:"heading,omitempty"`
	Subheading string         `json:"subheading,omitempty"`
	Items      []songResponse `json:"items"`
}

// GetSongs returns the configured playlist, enriched with Spotify oEmbed
// metadata where available. Lookup failures degrade to the raw config
// entry; the endpoint itself never fails.
func (h *Handlers) GetSongs(w http.ResponseWriter, r *http.Request) {
	section := h.content.Songs

	items := make([]songResponse, 0, len(section.Items))
	for _, song := range section.Items {
		item := songResponse{URL: song.URL, Artist: song.Artist}
		if meta := h.spotify.GetMetadata(r.Context(), song.URL); meta != nil {
			item.Title = meta.Title
			item.ThumbnailURL = meta.ThumbnailURL
		}
		items = append(items, item)
	}

	writeJSON(w, songsResponse{
		Eyebrow:    section.Eyebrow,
		Heading:    section.Heading,
		Subheading: section.Subheading,
		Items:      items,
	})
}
