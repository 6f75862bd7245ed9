// Package pipeline runs one artist's song URLs through the producer, the
// worker pool and the writer, and waits for all three to finish.
//
// Termination follows a sentinel-counting protocol: the producer enqueues
// one shutdown sentinel per worker after the last URL, every worker forwards
// exactly one sentinel to the result queue when it sees its own, and the
// writer stops once it has counted one sentinel per worker. Because a worker
// forwards its sentinel only after it has stopped consuming, the writer's
// count is a reliable completion signal and no fetched batch is lost.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/JakeFAU/lyricpass/internal/dispatcher"
	"github.com/JakeFAU/lyricpass/internal/lyrics"
	"github.com/JakeFAU/lyricpass/internal/queue/memory"
	"github.com/JakeFAU/lyricpass/internal/worker"
	"github.com/JakeFAU/lyricpass/internal/writer"
)

var (
	// ErrProtocol reports items left behind after every stage returned.
	ErrProtocol = errors.New("queue protocol violation")
	// ErrAlreadyRunning is returned when Run is called concurrently.
	ErrAlreadyRunning = errors.New("pipeline already running")
)

// State is the lifecycle position of the most recent run.
type State int32

// Pipeline lifecycle states.
const (
	StateIdle State = iota
	StateRunning
	StateDraining
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Config sizes the worker pool and the two queues. Zero queue depths pick
// the defaults: 1.5x workers for the work queue, 2x for the result queue.
type Config struct {
	Workers          int
	WorkQueueDepth   int
	ResultQueueDepth int
}

// WithDefaults fills zero queue depths from the worker count.
func (c Config) WithDefaults() Config {
	if c.WorkQueueDepth <= 0 {
		c.WorkQueueDepth = (3*c.Workers + 1) / 2
	}
	if c.ResultQueueDepth <= 0 {
		c.ResultQueueDepth = 2 * c.Workers
	}
	return c
}

// Result reports what a run did.
type Result struct {
	URLs    int
	Workers worker.Stats
	Writer  writer.Stats
}

// Pipeline wires a fetcher and a sink into repeated runs. Runs must not
// overlap; the sink is written only by the writer of the active run.
type Pipeline struct {
	cfg     Config
	fetcher lyrics.Fetcher
	sink    lyrics.LineSink
	logger  *zap.Logger

	state   atomic.Int32
	running atomic.Bool
}

// New validates cfg and returns a Pipeline.
func New(cfg Config, fetcher lyrics.Fetcher, sink lyrics.LineSink, logger *zap.Logger) (*Pipeline, error) {
	if cfg.Workers < 1 {
		return nil, fmt.Errorf("pipeline workers must be >= 1, got %d", cfg.Workers)
	}
	if fetcher == nil {
		return nil, errors.New("pipeline fetcher is required")
	}
	if sink == nil {
		return nil, errors.New("pipeline sink is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		cfg:     cfg.WithDefaults(),
		fetcher: fetcher,
		sink:    sink,
		logger:  logger,
	}, nil
}

// State returns the lifecycle state of the latest run.
func (p *Pipeline) State() State {
	return State(p.state.Load())
}

// Run fetches every URL and appends the found lyrics to the sink. An empty
// list returns immediately without touching the sink.
func (p *Pipeline) Run(ctx context.Context, urls []string) (Result, error) {
	if len(urls) == 0 {
		p.logger.Debug("no urls, skipping run")
		return Result{}, nil
	}
	return p.run(ctx, urls)
}

func (p *Pipeline) run(ctx context.Context, urls []string) (Result, error) {
	if !p.running.CompareAndSwap(false, true) {
		return Result{}, ErrAlreadyRunning
	}
	defer p.running.Store(false)

	work := memory.NewQueue[string](p.cfg.WorkQueueDepth)
	results := memory.NewQueue[lyrics.Batch](p.cfg.ResultQueueDepth)

	workers := make([]*worker.Worker, 0, p.cfg.Workers)
	for i := 0; i < p.cfg.Workers; i++ {
		workers = append(workers, worker.New(i, work, results, p.fetcher, p.logger.Named("worker")))
	}
	pool := dispatcher.New(work, workers, p.logger.Named("producer"))
	sinkWriter := writer.New(results, p.sink, pool.Size(), p.logger.Named("writer"))

	p.setState(StateRunning)
	p.logger.Info("pipeline started",
		zap.Int("songs", len(urls)),
		zap.Int("workers", pool.Size()),
		zap.Int("work_queue_depth", work.Cap()),
		zap.Int("result_queue_depth", results.Cap()),
	)

	var writerStats writer.Stats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		stats, err := sinkWriter.Run(gctx)
		writerStats = stats
		return err
	})
	g.Go(func() error {
		return pool.Run(gctx)
	})
	g.Go(func() error {
		if err := pool.Produce(gctx, urls); err != nil {
			return fmt.Errorf("producer: %w", err)
		}
		p.setState(StateDraining)
		return nil
	})
	err := g.Wait()

	res := Result{URLs: len(urls), Workers: pool.Stats(), Writer: writerStats}
	if err != nil {
		p.setState(StateFailed)
		return res, fmt.Errorf("pipeline run: %w", err)
	}
	if work.Len() != 0 || results.Len() != 0 || writerStats.Sentinels != pool.Size() {
		p.setState(StateFailed)
		return res, fmt.Errorf("%w: %d work items, %d results left, %d/%d sentinels",
			ErrProtocol, work.Len(), results.Len(), writerStats.Sentinels, pool.Size())
	}

	p.setState(StateDone)
	p.logger.Info("pipeline finished",
		zap.Int("songs", len(urls)),
		zap.Int("found", res.Workers.Found),
		zap.Int("skipped", res.Workers.NotFound+res.Workers.Failed),
		zap.Int("lines", writerStats.Lines),
	)
	return res, nil
}

func (p *Pipeline) setState(s State) {
	p.state.Store(int32(s))
}
