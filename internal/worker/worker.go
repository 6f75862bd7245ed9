// Package worker implements the fetch loop run by each member of the pool.
package worker

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/lyricpass/internal/lyrics"
	"github.com/JakeFAU/lyricpass/internal/metrics"
)

// Stats counts what one worker did before it shut down.
type Stats struct {
	Fetched  int
	Found    int
	NotFound int
	Failed   int
}

// Worker pulls song URLs from the work queue, fetches them, and forwards
// found line batches to the result queue.
type Worker struct {
	id      int
	work    lyrics.Queue[string]
	results lyrics.Queue[lyrics.Batch]
	fetcher lyrics.Fetcher
	logger  *zap.Logger
}

// New constructs a Worker.
func New(
	id int,
	work lyrics.Queue[string],
	results lyrics.Queue[lyrics.Batch],
	fetcher lyrics.Fetcher,
	logger *zap.Logger,
) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics.Init()
	return &Worker{
		id:      id,
		work:    work,
		results: results,
		fetcher: fetcher,
		logger:  logger.With(zap.Int("worker", id)),
	}
}

// ID returns the worker index within its pool.
func (w *Worker) ID() int {
	return w.id
}

// Run consumes the work queue until it receives a shutdown sentinel, then
// forwards exactly one sentinel to the result queue and returns. It only
// returns early when a queue operation fails, which happens on context
// cancellation.
func (w *Worker) Run(ctx context.Context) (Stats, error) {
	metrics.IncActiveWorkers()
	defer metrics.DecActiveWorkers()

	var stats Stats
	for {
		item, err := w.work.Dequeue(ctx)
		if err != nil {
			return stats, fmt.Errorf("worker %d dequeue: %w", w.id, err)
		}
		if item.IsShutdown() {
			if err := w.results.Enqueue(ctx, lyrics.Shutdown[lyrics.Batch]()); err != nil {
				return stats, fmt.Errorf("worker %d forward shutdown: %w", w.id, err)
			}
			w.logger.Debug("worker finished",
				zap.Int("fetched", stats.Fetched),
				zap.Int("found", stats.Found),
			)
			return stats, nil
		}
		if err := w.handleURL(ctx, item.Value(), &stats); err != nil {
			return stats, err
		}
	}
}

// handleURL fetches one song. Fetch failures are logged and skipped; only a
// failed enqueue is returned.
func (w *Worker) handleURL(ctx context.Context, url string, stats *Stats) error {
	stats.Fetched++
	w.logger.Debug("fetching lyrics", zap.String("url", url))

	start := time.Now()
	lines, found, err := w.fetcher.Fetch(ctx, url)
	elapsed := time.Since(start)

	switch {
	case err != nil:
		stats.Failed++
		metrics.ObserveFetch(url, metrics.FetchError, elapsed)
		w.logger.Warn("fetch failed, skipping", zap.String("url", url), zap.Error(err))
		return nil
	case !found || lines.Lines() == 0:
		stats.NotFound++
		metrics.ObserveFetch(url, metrics.FetchNotFound, elapsed)
		w.logger.Info("Found no lyrics, skipping", zap.String("url", url))
		return nil
	}

	stats.Found++
	metrics.ObserveFetch(url, metrics.FetchFound, elapsed)
	if err := w.results.Enqueue(ctx, lyrics.Task(lines)); err != nil {
		return fmt.Errorf("worker %d enqueue batch: %w", w.id, err)
	}
	return nil
}
