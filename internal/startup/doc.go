// Package startup handles application configuration, directory validation,
// and the structured startup/shutdown logging banners.
//
// Configuration comes from environment variables with sensible defaults;
// LoadConfig validates that the data and uploads directories exist and are
// writable before the rest of the application comes up.
package startup
