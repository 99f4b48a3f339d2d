// Package database provides SQLite-backed persistence for the love letter
// application: gallery photos and albums, bucket list entries and media,
// travel countries, and the watchlist.
//
// The database uses WAL mode for better concurrency. All timestamps are
// stored as Unix seconds; IDs are UUID strings generated by the caller.
// Missing-thumbnail queries and the *Tx update helpers support the
// thumbnail backfill that runs at startup.
package database
