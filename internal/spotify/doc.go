// Package spotify enriches playlist entries with track title and artwork
// from Spotify's public oEmbed endpoint. No API credentials are required.
package spotify
