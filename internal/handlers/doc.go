// Package handlers provides all HTTP handlers for the love letter
// application: the gallery, bucket list, travel map, watchlist, songs,
// gate, hero image and content endpoints, plus health and version.
//
// Handlers validate requests, call into the database and supporting
// clients, and render JSON. Uploaded files are written beneath the web
// root so the static file server can serve them directly.
package handlers
