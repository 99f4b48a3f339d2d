// Package thumbnail implements the asynchronous thumbnail pipeline.
//
// A Renderer turns source images into WebP thumbnails next to the
// original file (under a thumbs/ subdirectory). Uploads enqueue work on an
// unbounded Queue that never blocks the request path; a single Worker
// drains it in the background. Because queued items are lost when the
// process stops, a Backfill pass runs at every startup and regenerates
// whatever is missing, so the pipeline converges without retries or
// persistent job state.
package thumbnail
