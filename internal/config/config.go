// Package config loads and validates lyricpass configuration via Viper.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	collyfetcher "github.com/JakeFAU/lyricpass/internal/fetcher/colly"
	"github.com/JakeFAU/lyricpass/internal/logging"
	"github.com/JakeFAU/lyricpass/internal/phrase"
)

// EnvPrefix namespaces environment overrides, e.g. LYRICPASS_PHRASE_MIN=6.
const EnvPrefix = "LYRICPASS"

// ErrInputSource reports a missing or ambiguous artist source.
var ErrInputSource = errors.New("exactly one of input.artist or input.file must be set")

// Config captures all knobs loaded via Viper.
type Config struct {
	Input   InputConfig    `mapstructure:"input"`
	Phrase  PhraseConfig   `mapstructure:"phrase"`
	Scraper ScraperConfig  `mapstructure:"scraper"`
	HTTP    HTTPConfig     `mapstructure:"http"`
	Output  OutputConfig   `mapstructure:"output"`
	Metrics MetricsConfig  `mapstructure:"metrics"`
	Logging logging.Config `mapstructure:"logging"`
}

// InputConfig selects where artist names come from.
type InputConfig struct {
	Artist string `mapstructure:"artist"`
	File   string `mapstructure:"file"`
}

// PhraseConfig bounds the passphrase lengths.
type PhraseConfig struct {
	Min int `mapstructure:"min"`
	Max int `mapstructure:"max"`
}

// ScraperConfig sizes the worker pool and its queues. Zero depths are
// derived from the worker count.
type ScraperConfig struct {
	MaxConcurrentDL  int `mapstructure:"max_concurrent_dl"`
	WorkQueueDepth   int `mapstructure:"work_queue_depth"`
	ResultQueueDepth int `mapstructure:"result_queue_depth"`
}

// HTTPConfig configures the lyrics site client.
type HTTPConfig struct {
	SiteURL        string            `mapstructure:"site_url"`
	UserAgent      string            `mapstructure:"user_agent"`
	Headers        map[string]string `mapstructure:"headers"`
	TimeoutSeconds int               `mapstructure:"timeout_seconds"`
}

// OutputConfig sets where the raw lyrics and wordlist files go.
type OutputConfig struct {
	Dir string `mapstructure:"dir"`
}

// MetricsConfig enables the status server when Addr is set.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// flagKeys maps command-line flag names onto configuration keys.
var flagKeys = map[string]string{
	"artist":            "input.artist",
	"infile":            "input.file",
	"min":               "phrase.min",
	"max":               "phrase.max",
	"max-concurrent-dl": "scraper.max_concurrent_dl",
	"output-dir":        "output.dir",
	"metrics-addr":      "metrics.addr",
	"dev":               "logging.development",
	"log-level":         "logging.level",
}

// Load builds a Config from defaults, an optional file, the environment and
// any flags present in flags, in increasing order of precedence.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			flag := flags.Lookup(name)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("input.artist", "")
	v.SetDefault("input.file", "")
	v.SetDefault("phrase.min", phrase.DefaultMin)
	v.SetDefault("phrase.max", phrase.DefaultMax)
	v.SetDefault("scraper.max_concurrent_dl", 50)
	v.SetDefault("scraper.work_queue_depth", 0)
	v.SetDefault("scraper.result_queue_depth", 0)
	v.SetDefault("http.site_url", collyfetcher.DefaultSiteURL)
	v.SetDefault("http.user_agent", collyfetcher.DefaultUserAgent)
	v.SetDefault("http.headers", map[string]string{})
	v.SetDefault("http.timeout_seconds", 30)
	v.SetDefault("output.dir", ".")
	v.SetDefault("metrics.addr", "")
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.level", "")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Phrase.Min < 1 {
		return fmt.Errorf("phrase.min must be >= 1")
	}
	if c.Phrase.Max < c.Phrase.Min {
		return fmt.Errorf("phrase.max must be >= phrase.min (%d)", c.Phrase.Min)
	}
	if c.Scraper.MaxConcurrentDL <= 0 {
		return fmt.Errorf("scraper.max_concurrent_dl must be > 0")
	}
	if c.Scraper.WorkQueueDepth < 0 || c.Scraper.ResultQueueDepth < 0 {
		return fmt.Errorf("scraper queue depths must be >= 0")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	u, err := url.Parse(c.HTTP.SiteURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("http.site_url must be an absolute URL, got %q", c.HTTP.SiteURL)
	}
	if c.Output.Dir == "" {
		return fmt.Errorf("output.dir must be set")
	}
	return nil
}

// ValidateInput checks that exactly one artist source was given.
func (c Config) ValidateInput() error {
	hasArtist := strings.TrimSpace(c.Input.Artist) != ""
	hasFile := strings.TrimSpace(c.Input.File) != ""
	if hasArtist == hasFile {
		return ErrInputSource
	}
	return nil
}

// Timeout converts the per-request timeout into a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// Fetcher builds the colly fetcher settings.
func (c Config) Fetcher() collyfetcher.Config {
	return collyfetcher.Config{
		SiteURL:   c.HTTP.SiteURL,
		UserAgent: c.HTTP.UserAgent,
		Headers:   c.HTTP.Headers,
		Timeout:   c.Timeout(),
	}
}
