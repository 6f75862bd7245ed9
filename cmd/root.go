// Package cmd defines the lyricpass command line.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/lyricpass/internal/config"
	"github.com/JakeFAU/lyricpass/internal/logging"
	"github.com/JakeFAU/lyricpass/internal/phrase"
)

// newRootCmd builds the command tree. The root command itself runs a scrape.
func newRootCmd() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "lyricpass",
		Short: "Build passphrase wordlists from song lyrics.",
		Long: `lyricpass scrapes every song of one or more artists from lyrics.com into a
raw lyrics file, then normalizes each line into passphrase candidates and
writes them to a wordlist file for use with password cracking tools.`,
		Example: `  lyricpass -a "Taylor Swift"
  lyricpass -i artists.txt --min 6 --max 30
  lyricpass phrases --in raw-lyrics.txt --out wordlist.txt`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScrape(cmd, cfgFile)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "optional YAML config file")
	pf.Int("min", phrase.DefaultMin, "minimum passphrase length")
	pf.Int("max", phrase.DefaultMax, "maximum passphrase length")
	pf.Bool("dev", true, "human-readable development logging")
	pf.String("log-level", "", "minimum log level (debug, info, warn, error)")

	f := cmd.Flags()
	f.StringP("artist", "a", "", "single artist to scrape")
	f.StringP("infile", "i", "", "file containing one artist per line")
	f.Int("max-concurrent-dl", 50, "number of concurrent song downloads")
	f.StringP("output-dir", "o", ".", "directory for the raw lyrics and wordlist files")
	f.String("metrics-addr", "", "serve /healthz, /metrics and /v1/status on this address while scraping")
	cmd.MarkFlagsMutuallyExclusive("artist", "infile")

	cmd.AddCommand(newPhrasesCmd(&cfgFile))
	return cmd
}

// loadRuntime loads configuration and builds the logger for a command.
func loadRuntime(cmd *cobra.Command, cfgFile string) (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("init logger: %w", err)
	}
	zap.ReplaceGlobals(logger)
	return cfg, logger, nil
}

func syncLogger(logger *zap.Logger) {
	// Sync on a console fd returns EINVAL on some platforms; nothing to do.
	_ = logger.Sync()
}

// Execute runs the root command with SIGINT/SIGTERM canceling the context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		zap.L().Error("Command execution failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "lyricpass: %v\n", err)
		os.Exit(1)
	}
}
