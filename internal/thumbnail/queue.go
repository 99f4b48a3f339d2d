package thumbnail

import (
	"context"
	"sync"

	"love-letter/internal/metrics"
)

// WorkItem identifies one pending thumbnail job: which bucket list media
// row to update and where its source file lives.
type WorkItem struct {
	MediaID      string
	AbsolutePath string
	FileName     string
}

// Queue is an unbounded FIFO work queue with any number of producers and a
// single consumer. Enqueue never blocks; pending items are lost on
// shutdown, which is fine because the startup backfill regenerates them.
type Queue struct {
	mu     sync.Mutex
	items  []WorkItem
	signal chan struct{}
}

func NewQueue() *Queue {
	return &Queue{
		signal: make(chan struct{}, 1),
	}
}

// Enqueue adds an item to the back of the queue. It never blocks.
func (q *Queue) Enqueue(item WorkItem) {
	q.mu.Lock()
	q.items = append(q.items, item)
	depth := len(q.items)
	q.mu.Unlock()

	metrics.ThumbnailQueueDepth.Set(float64(depth))

	select {
	case q.signal <- struct{}{}:
	default:
	}
}

// Dequeue blocks until an item is available or ctx is cancelled. It
// returns false only on cancellation; pending items are not drained
// first. Only one goroutine may consume.
func (q *Queue) Dequeue(ctx context.Context) (WorkItem, bool) {
	for {
		if ctx.Err() != nil {
			return WorkItem{}, false
		}

		q.mu.Lock()
		if len(q.items) > 0 {
			item := q.items[0]
			q.items = q.items[1:]
			depth := len(q.items)
			q.mu.Unlock()
			metrics.ThumbnailQueueDepth.Set(float64(depth))
			return item, true
		}
		q.mu.Unlock()

		select {
		case <-q.signal:
		case <-ctx.Done():
			return WorkItem{}, false
		}
	}
}

// Len returns the number of pending items.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
