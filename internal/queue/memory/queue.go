// Package memory provides the bounded in-memory queue used between pipeline
// stages.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/JakeFAU/lyricpass/internal/lyrics"
)

// ErrClosed is returned by Dequeue once the queue is closed and drained.
var ErrClosed = errors.New("queue closed")

// Queue is a bounded FIFO with context-aware blocking operations. Enqueue
// suspends while the queue is full; Dequeue suspends while it is empty.
type Queue[T any] struct {
	ch      chan lyrics.Item[T]
	closeMu sync.Mutex
	closed  bool
}

// NewQueue constructs a new queue with the provided capacity. A capacity
// below one is raised to one.
func NewQueue[T any](capacity int) *Queue[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Queue[T]{
		ch: make(chan lyrics.Item[T], capacity),
	}
}

// Enqueue pushes an item into the queue or returns if the context ends. A
// context that is already done always wins, even when there is room.
func (q *Queue[T]) Enqueue(ctx context.Context, item lyrics.Item[T]) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("enqueue canceled: %w", err)
	}
	select {
	case <-ctx.Done():
		return fmt.Errorf("enqueue canceled: %w", ctx.Err())
	case q.ch <- item:
		return nil
	}
}

// Dequeue pops the next item, respecting context cancellation the same way
// as Enqueue.
func (q *Queue[T]) Dequeue(ctx context.Context) (lyrics.Item[T], error) {
	if err := ctx.Err(); err != nil {
		return lyrics.Item[T]{}, fmt.Errorf("dequeue canceled: %w", err)
	}
	select {
	case <-ctx.Done():
		return lyrics.Item[T]{}, fmt.Errorf("dequeue canceled: %w", ctx.Err())
	case item, ok := <-q.ch:
		if !ok {
			return lyrics.Item[T]{}, ErrClosed
		}
		return item, nil
	}
}

// Len reports the number of buffered items.
func (q *Queue[T]) Len() int {
	return len(q.ch)
}

// Cap reports the queue capacity.
func (q *Queue[T]) Cap() int {
	return cap(q.ch)
}

// Close closes the underlying channel. Items already buffered can still be
// dequeued; enqueueing after Close panics, so only the owner calls it once
// every producer has returned.
func (q *Queue[T]) Close() {
	q.closeMu.Lock()
	defer q.closeMu.Unlock()
	if q.closed {
		return
	}
	close(q.ch)
	q.closed = true
}
