package lyrics

// Batch is the ordered set of lyric lines extracted from one song page.
type Batch []string

// Item is a queue value: either a payload or a shutdown sentinel. The zero
// value is a payload holding the zero T.
type Item[T any] struct {
	value    T
	shutdown bool
}

// Task wraps a payload for enqueueing.
func Task[T any](value T) Item[T] {
	return Item[T]{value: value}
}

// Shutdown returns the sentinel that tells a consumer no further payloads
// will arrive from the sender.
func Shutdown[T any]() Item[T] {
	return Item[T]{shutdown: true}
}

// IsShutdown reports whether the item is a shutdown sentinel.
func (i Item[T]) IsShutdown() bool {
	return i.shutdown
}

// Value returns the payload. It is the zero T for sentinels.
func (i Item[T]) Value() T {
	return i.value
}

// Lines counts the non-empty lines in the batch, i.e. the lines a sink
// will actually write.
func (b Batch) Lines() int {
	n := 0
	for _, line := range b {
		if line != "" {
			n++
		}
	}
	return n
}
