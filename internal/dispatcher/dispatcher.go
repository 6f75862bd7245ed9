// Package dispatcher feeds the work queue and fans it out to the worker pool.
package dispatcher

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/JakeFAU/lyricpass/internal/lyrics"
	"github.com/JakeFAU/lyricpass/internal/worker"
)

// Dispatcher owns the producer side of the work queue and the pool of
// workers draining it.
type Dispatcher struct {
	queue   lyrics.Queue[string]
	workers []*worker.Worker
	logger  *zap.Logger

	mu    sync.Mutex
	stats worker.Stats
}

// New creates a Dispatcher.
func New(queue lyrics.Queue[string], workers []*worker.Worker, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		queue:   queue,
		workers: workers,
		logger:  logger,
	}
}

// Size returns the number of workers in the pool.
func (d *Dispatcher) Size() int {
	return len(d.workers)
}

// Produce enqueues every URL in order, then one shutdown sentinel per
// worker. It blocks whenever the queue is full.
func (d *Dispatcher) Produce(ctx context.Context, urls []string) error {
	for _, url := range urls {
		d.logger.Debug("queueing song", zap.String("url", url))
		if err := d.queue.Enqueue(ctx, lyrics.Task(url)); err != nil {
			return fmt.Errorf("queue song: %w", err)
		}
	}
	for range d.workers {
		if err := d.queue.Enqueue(ctx, lyrics.Shutdown[string]()); err != nil {
			return fmt.Errorf("queue shutdown: %w", err)
		}
	}
	d.logger.Debug("producer finished", zap.Int("songs", len(urls)), zap.Int("sentinels", len(d.workers)))
	return nil
}

// Run starts all workers and blocks until every one of them has returned.
// The first worker error cancels the rest.
func (d *Dispatcher) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, w := range d.workers {
		wk := w
		g.Go(func() error {
			stats, err := wk.Run(gctx)
			d.addStats(stats)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("worker pool: %w", err)
	}
	return nil
}

// Stats returns the totals accumulated by workers that have returned.
func (d *Dispatcher) Stats() worker.Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

func (d *Dispatcher) addStats(s worker.Stats) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stats.Fetched += s.Fetched
	d.stats.Found += s.Found
	d.stats.NotFound += s.NotFound
	d.stats.Failed += s.Failed
}
