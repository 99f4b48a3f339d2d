package thumbnail

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"love-letter/internal/database"
	"love-letter/internal/logging"
	"love-letter/internal/metrics"
)

// Worker drains the queue on a single background goroutine and records
// finished thumbnails on the bucket list media rows. One failed item never
// stops the worker; it logs and moves on.
type Worker struct {
	queue    *Queue
	db       *database.Database
	renderer *Renderer
	webRoot  string
	maxEdge  int

	cancel context.CancelFunc
	done   chan struct{}
}

func NewWorker(queue *Queue, db *database.Database, renderer *Renderer, webRoot string, maxEdge int) *Worker {
	return &Worker{
		queue:    queue,
		db:       db,
		renderer: renderer,
		webRoot:  webRoot,
		maxEdge:  maxEdge,
		done:     make(chan struct{}),
	}
}

// Start launches the worker goroutine.
func (w *Worker) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel

	go w.run(ctx)
	logging.Info("Thumbnail worker started")
}

// Stop signals the worker and waits for the in-flight item to finish.
// Items still queued are dropped; the startup backfill picks them up on
// the next run.
func (w *Worker) Stop() {
	if w.cancel == nil {
		return
	}
	w.cancel()
	<-w.done

	if pending := w.queue.Len(); pending > 0 {
		logging.Info("Thumbnail worker stopped with %d pending items (backfill will regenerate)", pending)
	} else {
		logging.Info("Thumbnail worker stopped")
	}
}

func (w *Worker) run(ctx context.Context) {
	defer close(w.done)

	for {
		item, ok := w.queue.Dequeue(ctx)
		if !ok {
			return
		}
		w.process(ctx, item)
	}
}

func (w *Worker) process(ctx context.Context, item WorkItem) {
	if _, err := os.Stat(item.AbsolutePath); err != nil {
		logging.Debug("Skipping thumbnail for %s: source gone", item.MediaID)
		metrics.ThumbnailJobsTotal.WithLabelValues("skipped").Inc()
		return
	}

	fileDir := filepath.Dir(item.AbsolutePath)
	baseName := strings.TrimSuffix(item.FileName, filepath.Ext(item.FileName))

	thumbPath, ok := w.renderer.Generate(item.AbsolutePath, filepath.Join(fileDir, "thumbs"), baseName, w.maxEdge)
	if !ok {
		logging.Warn("Failed to generate thumbnail for bucket media %s", item.MediaID)
		metrics.ThumbnailJobsTotal.WithLabelValues("failed").Inc()
		return
	}

	media, err := w.db.GetBucketListMedia(ctx, item.MediaID)
	if err != nil {
		logging.Warn("Failed to load bucket media %s: %v", item.MediaID, err)
		metrics.ThumbnailJobsTotal.WithLabelValues("failed").Inc()
		return
	}
	if media == nil {
		// Row deleted while the job was queued
		metrics.ThumbnailJobsTotal.WithLabelValues("skipped").Inc()
		return
	}

	rel := RelativePath(w.webRoot, thumbPath)
	if err := w.db.UpdateBucketMediaThumbnail(ctx, item.MediaID, rel); err != nil {
		logging.Warn("Failed to record thumbnail for bucket media %s: %v", item.MediaID, err)
		metrics.ThumbnailJobsTotal.WithLabelValues("failed").Inc()
		return
	}

	metrics.ThumbnailJobsTotal.WithLabelValues("generated").Inc()
}
