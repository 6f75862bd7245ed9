// Package writer drains the result queue into the raw lyric file.
package writer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/JakeFAU/lyricpass/internal/lyrics"
	"github.com/JakeFAU/lyricpass/internal/metrics"
)

// Stats summarizes one writer lifecycle.
type Stats struct {
	Batches   int
	Lines     int
	Sentinels int
}

// Writer is the single consumer of the result queue and the only component
// that writes to the sink during a run.
type Writer struct {
	queue    lyrics.Queue[lyrics.Batch]
	sink     lyrics.LineSink
	expected int
	logger   *zap.Logger
}

// New creates a Writer that stops after receiving expected shutdown
// sentinels, one per worker.
func New(queue lyrics.Queue[lyrics.Batch], sink lyrics.LineSink, expected int, logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics.Init()
	return &Writer{
		queue:    queue,
		sink:     sink,
		expected: expected,
		logger:   logger,
	}
}

// Run appends every batch it receives until it has counted the expected
// number of sentinels. It never exits early on its own; it returns an error
// only when the queue or the sink fails.
func (w *Writer) Run(ctx context.Context) (Stats, error) {
	var stats Stats
	for stats.Sentinels < w.expected {
		item, err := w.queue.Dequeue(ctx)
		if err != nil {
			return stats, fmt.Errorf("writer dequeue: %w", err)
		}
		if item.IsShutdown() {
			stats.Sentinels++
			w.logger.Debug("worker signaled completion",
				zap.Int("received", stats.Sentinels),
				zap.Int("expected", w.expected),
			)
			continue
		}

		batch := item.Value()
		n, err := w.sink.AppendLines(batch)
		stats.Lines += n
		metrics.ObserveLinesWritten(n)
		if err != nil {
			return stats, fmt.Errorf("writer append: %w", err)
		}
		stats.Batches++
	}
	return stats, nil
}
