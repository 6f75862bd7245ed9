// Package app wires the catalog, the scraping pipeline and the phrase
// normalizer into one end-to-end run over a list of artists.
package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/JakeFAU/lyricpass/internal/artist"
	collyfetcher "github.com/JakeFAU/lyricpass/internal/fetcher/colly"
	"github.com/JakeFAU/lyricpass/internal/lyrics"
	"github.com/JakeFAU/lyricpass/internal/metrics"
	"github.com/JakeFAU/lyricpass/internal/phrase"
	"github.com/JakeFAU/lyricpass/internal/pipeline"
	"github.com/JakeFAU/lyricpass/internal/storage/local"
)

// TimestampLayout formats the run start time in output file names.
const TimestampLayout = "2006-01-02-15.04.05"

// Output file name prefixes.
const (
	RawPrefix      = "raw-lyrics"
	WordlistPrefix = "wordlist"
)

// Options configures a Runner.
type Options struct {
	OutputDir string
	Pipeline  pipeline.Config
	PhraseMin int
	PhraseMax int
}

// Deps holds the collaborators a Runner calls into.
type Deps struct {
	Catalog lyrics.Catalog
	Fetcher lyrics.Fetcher
	Clock   lyrics.Clock
	IDs     lyrics.IDGenerator
	Logger  *zap.Logger
}

// ArtistSummary reports the outcome for one artist.
type ArtistSummary struct {
	Name   string `json:"name"`
	Result string `json:"result"`
	Songs  int    `json:"songs"`
	Found  int    `json:"found"`
	Lines  int    `json:"lines"`
}

// Summary reports a finished run.
type Summary struct {
	RunID        string          `json:"run_id"`
	RawPath      string          `json:"raw_path"`
	WordlistPath string          `json:"wordlist_path"`
	Artists      []ArtistSummary `json:"artists"`
	RawLines     int             `json:"raw_lines"`
	Phrases      int             `json:"phrases"`
}

// Runner executes scrape runs. Only one run may be active at a time.
type Runner struct {
	opts       Options
	deps       Deps
	normalizer *phrase.Normalizer
	logger     *zap.Logger

	mu     sync.Mutex
	status Status
	active *pipeline.Pipeline
}

// NewRunner validates opts and deps and returns a Runner.
func NewRunner(opts Options, deps Deps) (*Runner, error) {
	switch {
	case deps.Catalog == nil:
		return nil, errors.New("catalog is required")
	case deps.Fetcher == nil:
		return nil, errors.New("fetcher is required")
	case deps.Clock == nil:
		return nil, errors.New("clock is required")
	case deps.IDs == nil:
		return nil, errors.New("id generator is required")
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}
	if opts.Pipeline.Workers < 1 {
		return nil, fmt.Errorf("workers must be >= 1, got %d", opts.Pipeline.Workers)
	}
	normalizer, err := phrase.New(opts.PhraseMin, opts.PhraseMax)
	if err != nil {
		return nil, fmt.Errorf("phrase normalizer: %w", err)
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics.Init()

	return &Runner{
		opts:       opts,
		deps:       deps,
		normalizer: normalizer,
		logger:     logger.Named("runner"),
		status:     Status{Stage: StageIdle},
	}, nil
}

// OutputPaths derives the raw and wordlist file names for a run that
// started at the clock's current time.
func (r *Runner) OutputPaths(artists []string) (raw, wordlist string) {
	stamp := r.deps.Clock.Now().Format(TimestampLayout)
	joined := artist.Join(artists)
	raw = filepath.Join(r.opts.OutputDir, fmt.Sprintf("%s-%s-%s", RawPrefix, joined, stamp))
	wordlist = filepath.Join(r.opts.OutputDir, fmt.Sprintf("%s-%s-%s", WordlistPrefix, joined, stamp))
	return raw, wordlist
}

// Run scrapes every artist into one raw lyrics file, then derives the
// wordlist from it. Artists that cannot be resolved are skipped. The raw
// file is closed before the wordlist pass, so a failed run still leaves the
// lines it managed to write.
func (r *Runner) Run(ctx context.Context, artists []string) (Summary, error) {
	runID, err := r.deps.IDs.NewID()
	if err != nil {
		return Summary{}, err
	}
	rawPath, wordlistPath := r.OutputPaths(artists)
	logger := r.logger.With(zap.String("run_id", runID))
	summary := Summary{RunID: runID, RawPath: rawPath, WordlistPath: wordlistPath}

	r.begin(runID, rawPath, wordlistPath, len(artists))
	logger.Info("run started",
		zap.Strings("artists", artists),
		zap.String("raw_path", rawPath),
		zap.Int("workers", r.opts.Pipeline.Workers),
	)

	raw, err := r.scrape(ctx, logger, artists, rawPath, &summary)
	if raw != nil {
		summary.RawLines = raw.Lines()
		if cerr := raw.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close raw lyrics: %w", cerr)
		}
	}
	if err != nil {
		r.setStage(StageFailed)
		logger.Error("scrape failed", zap.Error(err), zap.Int("lines", summary.RawLines))
		return summary, err
	}

	r.setStage(StagePhrases)
	phrases, err := r.writeWordlist(ctx, rawPath, wordlistPath)
	summary.Phrases = phrases
	if err != nil {
		r.setStage(StageFailed)
		logger.Error("wordlist failed", zap.Error(err))
		return summary, err
	}

	r.setStage(StageDone)
	logger.Info("run finished",
		zap.Int("artists", len(artists)),
		zap.Int("lines", summary.RawLines),
		zap.Int("phrases", summary.Phrases),
		zap.String("raw_path", rawPath),
		zap.String("wordlist_path", wordlistPath),
	)
	return summary, nil
}

// scrape runs the pipeline for each artist. The raw file is opened before
// the first artist with songs, or at the end if none had any, so the
// wordlist pass always has a file to read.
func (r *Runner) scrape(
	ctx context.Context,
	logger *zap.Logger,
	artists []string,
	rawPath string,
	summary *Summary,
) (*local.AppendFile, error) {
	var (
		raw *local.AppendFile
		pl  *pipeline.Pipeline
	)
	for _, name := range artists {
		if err := ctx.Err(); err != nil {
			return raw, fmt.Errorf("scrape canceled: %w", err)
		}
		r.setArtist(name)
		alog := logger.With(zap.String("artist", name))
		alog.Info("Looking up artist")

		entry := ArtistSummary{Name: name}
		urls, err := r.deps.Catalog.SongURLs(ctx, name)
		switch {
		case err == nil:
		case errors.Is(err, collyfetcher.ErrArtistNotFound):
			alog.Warn("Artist not found, skipping")
			entry.Result = metrics.ArtistNotFound
		case errors.Is(err, collyfetcher.ErrNoSongs):
			alog.Warn("No songs found, skipping")
			entry.Result = metrics.ArtistNoSongs
		case ctx.Err() != nil:
			return raw, fmt.Errorf("look up %s: %w", name, err)
		default:
			alog.Warn("Artist lookup failed, skipping", zap.Error(err))
			entry.Result = metrics.ArtistError
		}
		if entry.Result != "" {
			metrics.ObserveArtist(entry.Result)
			summary.Artists = append(summary.Artists, entry)
			r.artistDone()
			continue
		}

		alog.Info("Found songs for artist", zap.Int("songs", len(urls)))
		if raw == nil {
			if raw, pl, err = r.openRaw(rawPath); err != nil {
				return nil, err
			}
		}

		res, err := pl.Run(ctx, urls)
		entry.Songs = len(urls)
		entry.Found = res.Workers.Found
		entry.Lines = res.Writer.Lines
		if err != nil {
			entry.Result = metrics.ArtistError
			metrics.ObserveArtist(entry.Result)
			summary.Artists = append(summary.Artists, entry)
			return raw, fmt.Errorf("scrape %s: %w", name, err)
		}
		entry.Result = metrics.ArtistScraped
		metrics.ObserveArtist(entry.Result)
		summary.Artists = append(summary.Artists, entry)
		r.artistDone()
		alog.Info("artist done",
			zap.Int("songs", entry.Songs),
			zap.Int("found", entry.Found),
			zap.Int("lines", entry.Lines),
		)
	}

	if raw == nil {
		var err error
		if raw, _, err = r.openRaw(rawPath); err != nil {
			return nil, err
		}
	}
	return raw, nil
}

func (r *Runner) openRaw(path string) (*local.AppendFile, *pipeline.Pipeline, error) {
	raw, err := local.Open(local.Config{Path: path})
	if err != nil {
		return nil, nil, fmt.Errorf("open raw lyrics: %w", err)
	}
	pl, err := pipeline.New(r.opts.Pipeline, r.deps.Fetcher, raw, r.logger.Named("pipeline"))
	if err != nil {
		_ = raw.Close()
		return nil, nil, err
	}
	r.mu.Lock()
	r.active = pl
	r.mu.Unlock()
	return raw, pl, nil
}

func (r *Runner) writeWordlist(ctx context.Context, rawPath, wordlistPath string) (int, error) {
	out, err := local.Open(local.Config{Path: wordlistPath})
	if err != nil {
		return 0, fmt.Errorf("open wordlist: %w", err)
	}
	stats, err := r.normalizer.ExtractFile(ctx, rawPath, out)
	metrics.ObservePhrases(stats.Phrases)
	if cerr := out.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("close wordlist: %w", cerr)
	}
	if err != nil {
		return stats.Phrases, fmt.Errorf("write wordlist: %w", err)
	}
	r.logger.Debug("wordlist written", zap.Int("raw_lines", stats.Lines), zap.Int("phrases", stats.Phrases))
	return stats.Phrases, nil
}
