package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	collyfetcher "github.com/JakeFAU/lyricpass/internal/fetcher/colly"
)

func testFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("lyricpass", pflag.ContinueOnError)
	fs.StringP("artist", "a", "", "")
	fs.StringP("infile", "i", "", "")
	fs.Int("min", 8, "")
	fs.Int("max", 40, "")
	fs.Int("max-concurrent-dl", 50, "")
	fs.StringP("output-dir", "o", ".", "")
	fs.String("metrics-addr", "", "")
	fs.Bool("dev", true, "")
	return fs
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("", nil)
	require.NoError(t, err)

	require.Equal(t, 8, cfg.Phrase.Min)
	require.Equal(t, 40, cfg.Phrase.Max)
	require.Equal(t, 50, cfg.Scraper.MaxConcurrentDL)
	require.Zero(t, cfg.Scraper.WorkQueueDepth)
	require.Zero(t, cfg.Scraper.ResultQueueDepth)
	require.Equal(t, collyfetcher.DefaultSiteURL, cfg.HTTP.SiteURL)
	require.Equal(t, collyfetcher.DefaultUserAgent, cfg.HTTP.UserAgent)
	require.Equal(t, 30*time.Second, cfg.Timeout())
	require.Equal(t, ".", cfg.Output.Dir)
	require.Empty(t, cfg.Metrics.Addr)
	require.True(t, cfg.Logging.Development)
	require.ErrorIs(t, cfg.ValidateInput(), ErrInputSource)
}

func TestLoadWithFileOverrides(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	configYAML := `
input:
  file: artists.txt
phrase:
  min: 6
  max: 30
scraper:
  max_concurrent_dl: 10
  work_queue_depth: 4
  result_queue_depth: 8
http:
  site_url: http://mirror.test/
  user_agent: test-agent
  timeout_seconds: 5
  headers:
    Accept-Language: en-US
output:
  dir: /tmp/out
metrics:
  addr: 127.0.0.1:9100
logging:
  development: false
  level: warn
`
	require.NoError(t, os.WriteFile(path, []byte(configYAML), 0o600))

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	require.Equal(t, "artists.txt", cfg.Input.File)
	require.NoError(t, cfg.ValidateInput())
	require.Equal(t, PhraseConfig{Min: 6, Max: 30}, cfg.Phrase)
	require.Equal(t, ScraperConfig{MaxConcurrentDL: 10, WorkQueueDepth: 4, ResultQueueDepth: 8}, cfg.Scraper)
	require.Equal(t, "/tmp/out", cfg.Output.Dir)
	require.Equal(t, "127.0.0.1:9100", cfg.Metrics.Addr)
	require.False(t, cfg.Logging.Development)
	require.Equal(t, "warn", cfg.Logging.Level)

	fc := cfg.Fetcher()
	require.Equal(t, "http://mirror.test/", fc.SiteURL)
	require.Equal(t, "test-agent", fc.UserAgent)
	require.Equal(t, 5*time.Second, fc.Timeout)
	// viper lowercases map keys; header names are case-insensitive.
	require.Equal(t, map[string]string{"accept-language": "en-US"}, fc.Headers)
}

func TestLoadFlagsOverrideFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("phrase:\n  min: 6\n  max: 30\n"), 0o600))

	fs := testFlags()
	require.NoError(t, fs.Parse([]string{"-a", "Taylor Swift", "--max", "50", "--max-concurrent-dl", "3"}))

	cfg, err := Load(path, fs)
	require.NoError(t, err)
	require.Equal(t, "Taylor Swift", cfg.Input.Artist)
	require.NoError(t, cfg.ValidateInput())
	require.Equal(t, 6, cfg.Phrase.Min, "unchanged flag must not override the file")
	require.Equal(t, 50, cfg.Phrase.Max)
	require.Equal(t, 3, cfg.Scraper.MaxConcurrentDL)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("LYRICPASS_PHRASE_MIN", "10")
	t.Setenv("LYRICPASS_SCRAPER_MAX_CONCURRENT_DL", "7")
	t.Setenv("LYRICPASS_INPUT_ARTIST", "Adele")

	cfg, err := Load("", testFlags())
	require.NoError(t, err)
	require.Equal(t, 10, cfg.Phrase.Min)
	require.Equal(t, 7, cfg.Scraper.MaxConcurrentDL)
	require.Equal(t, "Adele", cfg.Input.Artist)
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.ErrorContains(t, err, "read config")
}

func TestValidateInput(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, Config{}.ValidateInput(), ErrInputSource)
	require.ErrorIs(t, Config{Input: InputConfig{Artist: "a", File: "f"}}.ValidateInput(), ErrInputSource)
	require.ErrorIs(t, Config{Input: InputConfig{Artist: "  "}}.ValidateInput(), ErrInputSource)
	require.NoError(t, Config{Input: InputConfig{Artist: "a"}}.ValidateInput())
	require.NoError(t, Config{Input: InputConfig{File: "f"}}.ValidateInput())
}

func TestConfigValidateErrors(t *testing.T) {
	t.Parallel()

	base := Config{
		Phrase:  PhraseConfig{Min: 8, Max: 40},
		Scraper: ScraperConfig{MaxConcurrentDL: 1},
		HTTP:    HTTPConfig{SiteURL: collyfetcher.DefaultSiteURL, TimeoutSeconds: 10},
		Output:  OutputConfig{Dir: "."},
	}
	require.NoError(t, base.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{name: "min below one", mutate: func(c *Config) { c.Phrase.Min = 0 }, want: "phrase.min"},
		{name: "max below min", mutate: func(c *Config) { c.Phrase.Max = 7 }, want: "phrase.max"},
		{name: "no workers", mutate: func(c *Config) { c.Scraper.MaxConcurrentDL = 0 }, want: "scraper.max_concurrent_dl"},
		{name: "negative depth", mutate: func(c *Config) { c.Scraper.WorkQueueDepth = -1 }, want: "queue depths"},
		{name: "invalid timeout", mutate: func(c *Config) { c.HTTP.TimeoutSeconds = 0 }, want: "http.timeout_seconds"},
		{name: "relative site", mutate: func(c *Config) { c.HTTP.SiteURL = "lyrics.com" }, want: "http.site_url"},
		{name: "empty output dir", mutate: func(c *Config) { c.Output.Dir = "" }, want: "output.dir"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := base
			tt.mutate(&cfg)
			require.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
}
