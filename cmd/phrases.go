package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/lyricpass/internal/metrics"
	"github.com/JakeFAU/lyricpass/internal/phrase"
	"github.com/JakeFAU/lyricpass/internal/storage/local"
)

// newPhrasesCmd reruns the normalizer over an existing raw lyrics file,
// e.g. with different length bounds, without scraping again.
func newPhrasesCmd(cfgFile *string) *cobra.Command {
	var in, out string

	cmd := &cobra.Command{
		Use:   "phrases",
		Short: "Derive a wordlist from an existing raw lyrics file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPhrases(cmd, *cfgFile, in, out)
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "raw lyrics file to read")
	cmd.Flags().StringVar(&out, "out", "", "wordlist file to append to")
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func runPhrases(cmd *cobra.Command, cfgFile, in, out string) error {
	if in == out {
		return errors.New("--in and --out must differ")
	}
	cfg, logger, err := loadRuntime(cmd, cfgFile)
	if err != nil {
		return err
	}
	defer syncLogger(logger)

	normalizer, err := phrase.New(cfg.Phrase.Min, cfg.Phrase.Max)
	if err != nil {
		return fmt.Errorf("phrase normalizer: %w", err)
	}
	sink, err := local.Open(local.Config{Path: out})
	if err != nil {
		return fmt.Errorf("open wordlist: %w", err)
	}

	metrics.Init()
	stats, err := normalizer.ExtractFile(cmd.Context(), in, sink)
	metrics.ObservePhrases(stats.Phrases)
	if cerr := sink.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("close wordlist: %w", cerr)
	}
	if err != nil {
		return err
	}

	logger.Info("wordlist written",
		zap.String("in", in),
		zap.String("out", out),
		zap.Int("lines", stats.Lines),
		zap.Int("phrases", stats.Phrases),
	)
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wordlist: %s (%d phrases)\n", out, stats.Phrases)
	return nil
}
