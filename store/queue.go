package store

import "sync"

// queue is a FIFO buffer with single-consumer drain semantics. Producers
// append from the conversational loop; only the background flusher pops.
// The mutex is required because the Go port runs producers and the flusher
// on separate goroutines.
type queue[T any] struct {
	mu    sync.Mutex
	items []T
}

func newQueue[T any]() *queue[T] { return &queue[T]{} }

// append adds an item to the tail. It performs no I/O and cannot fail.
func (q *queue[T]) append(item T) {
	q.mu.Lock()
	q.items = append(q.items, item)
	q.mu.Unlock()
}

// popBatch atomically removes and returns up to max items from the head.
func (q *queue[T]) popBatch(max int) []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil
	}
	n := len(q.items)
	if max > 0 && n > max {
		n = max
	}
	batch := make([]T, n)
	copy(batch, q.items[:n])
	q.items = q.items[n:]
	return batch
}

// requeue puts a failed batch back at the head, preserving FIFO order for
// the next flush attempt.
func (q *queue[T]) requeue(batch []T) {
	if len(batch) == 0 {
		return
	}
	q.mu.Lock()
	q.items = append(batch, q.items...)
	q.mu.Unlock()
}

func (q *queue[T]) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
