package database

import (
	"strings"
	"time"
)

// GalleryPhoto is one photo in the shared gallery. FilePath and
// ThumbnailPath are stored root-relative with forward slashes
// (e.g. "uploads/gallery/abc.jpg").
type GalleryPhoto struct {
	ID               string     `json:"id"`
	Caption          string     `json:"caption,omitempty"`
	Album            string     `json:"album,omitempty"`
	OriginalFileName string     `json:"originalFileName,omitempty"`
	FilePath         string     `json:"-"`
	ThumbnailPath    string     `json:"-"`
	IsFavorite       bool       `json:"isFavorite"`
	CreatedAt        time.Time  `json:"createdAt"`
	FavoritedAt      *time.Time `json:"favoritedAt,omitempty"`
}

// URL returns the photo's root-relative URL with a leading slash.
func (p *GalleryPhoto) URL() string {
	return toURL(p.FilePath)
}

// ThumbnailURL returns the thumbnail URL, or "" when no thumbnail exists.
func (p *GalleryPhoto) ThumbnailURL() string {
	if p.ThumbnailPath == "" {
		return ""
	}
	return toURL(p.ThumbnailPath)
}

// GalleryAlbum is a named, explicitly created album. Photos reference
// albums by name, so an album may also exist implicitly through its photos.
type GalleryAlbum struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// BucketListEntry is one item on the shared bucket list.
type BucketListEntry struct {
	ID            string            `json:"id"`
	Title         string            `json:"title"`
	Description   string            `json:"description,omitempty"`
	RequiresPhoto bool              `json:"requiresPhoto"`
	Completed     bool              `json:"completed"`
	CreatedAt     time.Time         `json:"createdAt"`
	CompletedAt   *time.Time        `json:"completedAt,omitempty"`
	Media         []BucketListMedia `json:"media"`
}

// BucketListMedia is a photo or video attached to a bucket list entry.
type BucketListMedia struct {
	ID               string    `json:"id"`
	EntryID          string    `json:"-"`
	FilePath         string    `json:"-"`
	ThumbnailPath    string    `json:"-"`
	OriginalFileName string    `json:"originalFileName,omitempty"`
	ContentType      string    `json:"-"`
	IsVideo          bool      `json:"isVideo"`
	IsInGallery      bool      `json:"isInGallery"`
	CreatedAt        time.Time `json:"createdAt"`
}

// URL returns the media file's root-relative URL with a leading slash.
func (m *BucketListMedia) URL() string {
	return toURL(m.FilePath)
}

// ThumbnailURL returns the thumbnail URL, or "" when no thumbnail exists.
func (m *BucketListMedia) ThumbnailURL() string {
	if m.ThumbnailPath == "" {
		return ""
	}
	return toURL(m.ThumbnailPath)
}

// TravelCountry is one country on the travel map. CountryCode is the
// ISO 3166-1 alpha-3 code and is unique.
type TravelCountry struct {
	ID          string     `json:"id"`
	CountryCode string     `json:"code"`
	CountryName string     `json:"name"`
	IsVisited   bool       `json:"isVisited"`
	CreatedAt   time.Time  `json:"createdAt"`
	VisitedAt   *time.Time `json:"visitedAt,omitempty"`
}

// WatchlistMovie is one movie or series on the shared watchlist.
// ImdbID is unique.
type WatchlistMovie struct {
	ID        string     `json:"id"`
	ImdbID    string     `json:"imdbId"`
	Title     string     `json:"title"`
	Year      string     `json:"year,omitempty"`
	PosterURL string     `json:"posterUrl,omitempty"`
	Type      string     `json:"type,omitempty"`
	Plot      string     `json:"plot,omitempty"`
	Watched   bool       `json:"watched"`
	CreatedAt time.Time  `json:"createdAt"`
	WatchedAt *time.Time `json:"watchedAt,omitempty"`
}

// toURL converts a stored root-relative path into a URL with a leading
// slash. Backslashes from historic imports are normalized.
func toURL(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")
	if strings.HasPrefix(path, "/") {
		return path
	}
	return "/" + path
}
