package lyrics

import (
	"context"
	"time"
)

// Fetcher retrieves one song page and extracts its lyric lines. found is
// false when the page has no lyric block; callers treat a non-nil error the
// same way.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (lines Batch, found bool, err error)
}

// Catalog resolves an artist name to the URLs of its song pages.
type Catalog interface {
	SongURLs(ctx context.Context, artist string) ([]string, error)
}

// Queue is a blocking FIFO of items shared between pipeline stages.
type Queue[T any] interface {
	Enqueue(ctx context.Context, item Item[T]) error
	Dequeue(ctx context.Context) (Item[T], error)
}

// LineSink appends lines to durable output. Empty lines are skipped and the
// returned count covers only lines actually written.
type LineSink interface {
	AppendLines(lines []string) (int, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces run IDs.
type IDGenerator interface {
	NewID() (string, error)
}
