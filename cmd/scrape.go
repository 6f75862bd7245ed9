package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/JakeFAU/lyricpass/internal/api"
	"github.com/JakeFAU/lyricpass/internal/app"
	"github.com/JakeFAU/lyricpass/internal/artist"
	"github.com/JakeFAU/lyricpass/internal/clock/system"
	"github.com/JakeFAU/lyricpass/internal/config"
	collyfetcher "github.com/JakeFAU/lyricpass/internal/fetcher/colly"
	"github.com/JakeFAU/lyricpass/internal/id/uuid"
	"github.com/JakeFAU/lyricpass/internal/pipeline"
)

var errNoArtists = errors.New("no usable artist names in input")

func runScrape(cmd *cobra.Command, cfgFile string) error {
	cfg, logger, err := loadRuntime(cmd, cfgFile)
	if err != nil {
		return err
	}
	defer syncLogger(logger)

	if err := cfg.ValidateInput(); err != nil {
		return err
	}
	artists, err := resolveArtists(cfg)
	if err != nil {
		return err
	}

	fetcher, err := collyfetcher.New(cfg.Fetcher(), logger.Named("fetcher"))
	if err != nil {
		return fmt.Errorf("init fetcher: %w", err)
	}
	runner, err := app.NewRunner(app.Options{
		OutputDir: cfg.Output.Dir,
		Pipeline: pipeline.Config{
			Workers:          cfg.Scraper.MaxConcurrentDL,
			WorkQueueDepth:   cfg.Scraper.WorkQueueDepth,
			ResultQueueDepth: cfg.Scraper.ResultQueueDepth,
		},
		PhraseMin: cfg.Phrase.Min,
		PhraseMax: cfg.Phrase.Max,
	}, app.Deps{
		Catalog: fetcher,
		Fetcher: fetcher,
		Clock:   system.New(),
		IDs:     uuid.New(),
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("init runner: %w", err)
	}

	summary, err := runWithStatusServer(cmd.Context(), cfg, runner, artists, logger)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Raw lyrics: %s\n", summary.RawPath)
	_, _ = fmt.Fprintf(out, "Wordlist:   %s\n", summary.WordlistPath)
	return nil
}

// resolveArtists reads and sanitizes the artist list. An unreadable input
// file fails here, before any request is made.
func resolveArtists(cfg config.Config) ([]string, error) {
	var (
		artists []string
		err     error
	)
	if cfg.Input.Artist != "" {
		artists = artist.Parse([]string{cfg.Input.Artist})
	} else {
		artists, err = artist.ReadFile(cfg.Input.File)
		if err != nil {
			return nil, err
		}
	}
	if len(artists) == 0 {
		return nil, errNoArtists
	}
	return artists, nil
}

// runWithStatusServer runs the scrape, serving status and metrics on the
// configured address for as long as the scrape lasts. A server failure is
// logged and does not stop the scrape.
func runWithStatusServer(
	ctx context.Context,
	cfg config.Config,
	runner *app.Runner,
	artists []string,
	logger *zap.Logger,
) (app.Summary, error) {
	if cfg.Metrics.Addr == "" {
		return runner.Run(ctx, artists)
	}

	srvCtx, stopServer := context.WithCancel(ctx)
	defer stopServer()

	var summary app.Summary
	g := new(errgroup.Group)
	g.Go(func() error {
		if err := api.NewServer(runner, logger).Serve(srvCtx, cfg.Metrics.Addr); err != nil {
			logger.Warn("status server failed, scrape continues", zap.Error(err))
		}
		return nil
	})
	g.Go(func() error {
		defer stopServer()
		var err error
		summary, err = runner.Run(ctx, artists)
		return err
	})
	return summary, g.Wait()
}
