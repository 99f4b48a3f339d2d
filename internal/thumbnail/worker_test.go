package thumbnail

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"love-letter/internal/database"
)

func newPipelineDB(t *testing.T) *database.Database {
	t.Helper()
	db, err := database.New(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func insertBucketMedia(t *testing.T, db *database.Database, filePath string) *database.BucketListMedia {
	t.Helper()
	ctx := context.Background()

	entry := &database.BucketListEntry{ID: uuid.NewString(), Title: "Test", CreatedAt: time.Now().UTC()}
	if err := db.InsertBucketListEntry(ctx, entry); err != nil {
		t.Fatal(err)
	}
	media := &database.BucketListMedia{
		ID:        uuid.NewString(),
		EntryID:   entry.ID,
		FilePath:  filePath,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.InsertBucketListMedia(ctx, media); err != nil {
		t.Fatal(err)
	}
	return media
}

// waitForThumbnail polls until the media row has a thumbnail or the
// timeout expires. Returns the final thumbnail URL ("" on timeout).
func waitForThumbnail(t *testing.T, db *database.Database, mediaID string, timeout time.Duration) string {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		m, err := db.GetBucketListMedia(context.Background(), mediaID)
		if err != nil {
			t.Fatalf("failed to load media: %v", err)
		}
		if m != nil && m.ThumbnailURL() != "" {
			return m.ThumbnailURL()
		}
		time.Sleep(10 * time.Millisecond)
	}
	return ""
}

func TestWorkerProcessesQueuedItem(t *testing.T) {
	webRoot := t.TempDir()
	uploadDir := filepath.Join(webRoot, "uploads", "bucket", "entry1")
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		t.Fatal(err)
	}
	source := filepath.Join(uploadDir, "photo.png")
	writeTestPNG(t, source, 800, 600)

	db := newPipelineDB(t)
	media := insertBucketMedia(t, db, "uploads/bucket/entry1/photo.png")

	q := NewQueue()
	w := NewWorker(q, db, NewRenderer(), webRoot, 512)
	w.Start()
	defer w.Stop()

	q.Enqueue(WorkItem{MediaID: media.ID, AbsolutePath: source, FileName: "photo.png"})

	got := waitForThumbnail(t, db, media.ID, 5*time.Second)
	want := "/uploads/bucket/entry1/thumbs/photo-thumb.webp"
	if got != want {
		t.Errorf("thumbnail URL = %q, want %q", got, want)
	}

	if _, err := os.Stat(filepath.Join(uploadDir, "thumbs", "photo-thumb.webp")); err != nil {
		t.Errorf("thumbnail file not written: %v", err)
	}
}

func TestWorkerSkipsMissingSource(t *testing.T) {
	webRoot := t.TempDir()
	db := newPipelineDB(t)
	media := insertBucketMedia(t, db, "uploads/bucket/gone.png")

	q := NewQueue()
	w := NewWorker(q, db, NewRenderer(), webRoot, 512)
	w.Start()

	q.Enqueue(WorkItem{
		MediaID:      media.ID,
		AbsolutePath: filepath.Join(webRoot, "uploads", "bucket", "gone.png"),
		FileName:     "gone.png",
	})

	// Give the worker time to process, then confirm nothing was recorded
	time.Sleep(200 * time.Millisecond)
	w.Stop()

	m, err := db.GetBucketListMedia(context.Background(), media.ID)
	if err != nil {
		t.Fatal(err)
	}
	if m.ThumbnailPath != "" {
		t.Errorf("thumbnail recorded for missing source: %q", m.ThumbnailPath)
	}
}

func TestWorkerSurvivesBadItem(t *testing.T) {
	webRoot := t.TempDir()
	uploadDir := filepath.Join(webRoot, "uploads", "bucket", "e")
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		t.Fatal(err)
	}

	// First item decodes to garbage, second is fine
	badSource := filepath.Join(uploadDir, "bad.png")
	if err := os.WriteFile(badSource, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	goodSource := filepath.Join(uploadDir, "good.png")
	writeTestPNG(t, goodSource, 600, 400)

	db := newPipelineDB(t)
	bad := insertBucketMedia(t, db, "uploads/bucket/e/bad.png")
	good := insertBucketMedia(t, db, "uploads/bucket/e/good.png")

	q := NewQueue()
	w := NewWorker(q, db, NewRenderer(), webRoot, 512)
	w.Start()
	defer w.Stop()

	q.Enqueue(WorkItem{MediaID: bad.ID, AbsolutePath: badSource, FileName: "bad.png"})
	q.Enqueue(WorkItem{MediaID: good.ID, AbsolutePath: goodSource, FileName: "good.png"})

	if got := waitForThumbnail(t, db, good.ID, 5*time.Second); got == "" {
		t.Error("worker stopped processing after a failed item")
	}

	m, _ := db.GetBucketListMedia(context.Background(), bad.ID)
	if m.ThumbnailPath != "" {
		t.Errorf("failed item should not get a thumbnail, got %q", m.ThumbnailPath)
	}
}

func TestWorkerIgnoresDeletedRow(t *testing.T) {
	webRoot := t.TempDir()
	uploadDir := filepath.Join(webRoot, "uploads", "bucket", "e")
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		t.Fatal(err)
	}
	source := filepath.Join(uploadDir, "photo.png")
	writeTestPNG(t, source, 300, 300)

	db := newPipelineDB(t)
	media := insertBucketMedia(t, db, "uploads/bucket/e/photo.png")
	if err := db.DeleteBucketListMedia(context.Background(), media.ID); err != nil {
		t.Fatal(err)
	}

	q := NewQueue()
	w := NewWorker(q, db, NewRenderer(), webRoot, 512)
	w.Start()

	q.Enqueue(WorkItem{MediaID: media.ID, AbsolutePath: source, FileName: "photo.png"})
	time.Sleep(300 * time.Millisecond)
	w.Stop()
	// Nothing to assert beyond the worker not crashing on the orphan item
}

func TestWorkerStopWithoutStart(t *testing.T) {
	w := NewWorker(NewQueue(), nil, NewRenderer(), t.TempDir(), 512)
	w.Stop() // must not panic or hang
}
