// Package metrics defines the Prometheus metrics exported by the love
// letter application.
//
// Metrics cover the HTTP layer, the SQLite store, media uploads, and the
// asynchronous thumbnail pipeline (queue depth, per-job results, backfill
// outcomes).
package metrics
