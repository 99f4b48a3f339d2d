package handlers

import (
	"sync"
	"time"

	"github.com/gorilla/mux"

	"love-letter/internal/content"
	"love-letter/internal/countries"
	"love-letter/internal/database"
	"love-letter/internal/omdb"
	"love-letter/internal/spotify"
	"love-letter/internal/startup"
	"love-letter/internal/thumbnail"
)

type Handlers struct {
	db        *database.Database
	content   *content.Config
	queue     *thumbnail.Queue
	renderer  *thumbnail.Renderer
	countries *countries.Catalog
	omdb      *omdb.Client
	spotify   *spotify.Client
	config    *startup.Config
	startTime time.Time

	// heroMu serializes hero image uploads and sidecar rewrites
	heroMu sync.Mutex
}

func New(db *database.Database, siteContent *content.Config, queue *thumbnail.Queue, renderer *thumbnail.Renderer, catalog *countries.Catalog, config *startup.Config) *Handlers {
	return &Handlers{
		db:        db,
		content:   siteContent,
		queue:     queue,
		renderer:  renderer,
		countries: catalog,
		omdb:      omdb.New(config.OmdbAPIKey),
		spotify:   spotify.New(),
		config:    config,
		startTime: time.Now(),
	}
}

// RegisterRoutes attaches all API routes to the router. Fixed paths are
// registered before parameterized ones so "albums" is never read as an id.
func (h *Handlers) RegisterRoutes(router *mux.Router) {
	api := router.PathPrefix("/api").Subrouter()

	// Gallery
	api.HandleFunc("/gallery", h.ListGalleryPhotos).Methods("GET")
	api.HandleFunc("/gallery", h.UploadGalleryPhoto).Methods("POST")
	api.HandleFunc("/gallery/albums", h.ListGalleryAlbums).Methods("GET")
	api.HandleFunc("/gallery/albums", h.CreateGalleryAlbum).Methods("POST")
	api.HandleFunc("/gallery/export", h.ExportGalleryPhotos).Methods("GET")
	api.HandleFunc("/gallery/{id}", h.UpdateGalleryPhoto).Methods("PATCH")
	api.HandleFunc("/gallery/{id}/favorite", h.SetGalleryPhotoFavorite).Methods("POST")
	api.HandleFunc("/gallery/{id}", h.DeleteGalleryPhoto).Methods("DELETE")

	// Bucket list
	api.HandleFunc("/bucketlist", h.ListBucketListEntries).Methods("GET")
	api.HandleFunc("/bucketlist", h.CreateBucketListEntry).Methods("POST")
	api.HandleFunc("/bucketlist/verify-password", h.VerifyMasterPassword).Methods("POST")
	api.HandleFunc("/bucketlist/{id}/complete", h.CompleteBucketListEntry).Methods("POST")
	api.HandleFunc("/bucketlist/{id}/media", h.UploadBucketListMedia).Methods("POST")
	api.HandleFunc("/bucketlist/{id}/media/{mediaId}", h.DeleteBucketListMedia).Methods("DELETE")
	api.HandleFunc("/bucketlist/{id}/media/{mediaId}/gallery", h.AddBucketMediaToGallery).Methods("POST")
	api.HandleFunc("/bucketlist/{id}", h.DeleteBucketListEntry).Methods("DELETE")

	// Travel map
	api.HandleFunc("/travel", h.ListTravelCountries).Methods("GET")
	api.HandleFunc("/travel", h.AddTravelCountry).Methods("POST")
	api.HandleFunc("/travel/countries", h.ListCountryOptions).Methods("GET")
	api.HandleFunc("/travel/{id}/visited", h.SetTravelCountryVisited).Methods("POST")
	api.HandleFunc("/travel/{id}", h.DeleteTravelCountry).Methods("DELETE")

	// Watchlist
	api.HandleFunc("/watchlist", h.ListWatchlistMovies).Methods("GET")
	api.HandleFunc("/watchlist", h.AddWatchlistMovie).Methods("POST")
	api.HandleFunc("/watchlist/search", h.SearchWatchlist).Methods("GET")
	api.HandleFunc("/watchlist/{id}/watched", h.SetWatchlistMovieWatched).Methods("POST")
	api.HandleFunc("/watchlist/{id}", h.DeleteWatchlistMovie).Methods("DELETE")

	// Songs, gate, hero, content
	api.HandleFunc("/songs", h.GetSongs).Methods("GET")
	api.HandleFunc("/gate", h.GetGate).Methods("GET")
	api.HandleFunc("/gate/verify", h.VerifyGate).Methods("POST")
	api.HandleFunc("/hero", h.GetHero).Methods("GET")
	api.HandleFunc("/hero", h.UploadHero).Methods("POST")
	api.HandleFunc("/hero", h.UpdateHeroCaption).Methods("PATCH")
	api.HandleFunc("/content", h.GetContent).Methods("GET")

	// Operational endpoints
	router.HandleFunc("/api/health", h.HealthCheck).Methods("GET")
	router.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	router.HandleFunc("/api/version", h.GetVersion).Methods("GET")
}
