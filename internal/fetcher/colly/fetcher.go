// Package collyfetcher implements the lyric page fetcher and the artist
// catalog lookup using gocolly.
package collyfetcher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/JakeFAU/lyricpass/internal/lyrics"
)

// Site defaults for lyrics.com.
const (
	DefaultSiteURL   = "https://www.lyrics.com/"
	DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:109.0) Gecko/20100101 Firefox/119.0"
	defaultTimeout   = 30 * time.Second
)

// Config controls collector behavior. SiteURL is the root every artist and
// song URL is resolved against.
type Config struct {
	SiteURL   string
	UserAgent string
	Headers   map[string]string
	Timeout   time.Duration
}

// Fetcher implements lyrics.Fetcher and lyrics.Catalog using the Colly
// collector. It is safe for concurrent use; every call runs on its own
// collector clone.
type Fetcher struct {
	cfg           Config
	site          *url.URL
	baseCollector *colly.Collector
	logger        *zap.Logger
}

var (
	_ lyrics.Fetcher = (*Fetcher)(nil)
	_ lyrics.Catalog = (*Fetcher)(nil)
)

type collectorHooks interface {
	OnRequest(colly.RequestCallback)
	OnResponse(colly.ResponseCallback)
	OnError(colly.ErrorCallback)
}

// New builds a Fetcher.
func New(cfg Config, logger *zap.Logger) (*Fetcher, error) {
	if cfg.SiteURL == "" {
		cfg.SiteURL = DefaultSiteURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	site, err := url.Parse(cfg.SiteURL)
	if err != nil {
		return nil, fmt.Errorf("parse site url: %w", err)
	}
	if site.Scheme == "" || site.Host == "" {
		return nil, fmt.Errorf("site url %q must be absolute", cfg.SiteURL)
	}
	if !strings.HasSuffix(site.Path, "/") {
		site.Path += "/"
	}

	c := colly.NewCollector(colly.Async(false))
	c.UserAgent = cfg.UserAgent
	// Clones share the visited store; the same song may be requested again
	// by a later artist or run.
	c.AllowURLRevisit = true
	c.SetRequestTimeout(cfg.Timeout)
	c.WithTransport(newHTTPTransport())

	return &Fetcher{
		cfg:           cfg,
		site:          site,
		baseCollector: c,
		logger:        logger,
	}, nil
}

// Fetch downloads one song page and returns the lines of its first <pre>
// block. found is false when the page has no such block or the block holds
// only blank lines.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (lyrics.Batch, bool, error) {
	var (
		mu       sync.Mutex
		text     string
		matched  bool
		fetchErr error
	)
	collector := f.baseCollector.Clone()
	f.configureCollectorHooks(collector, nil, &fetchErr)
	collector.OnHTML("pre", func(e *colly.HTMLElement) {
		mu.Lock()
		defer mu.Unlock()
		if matched {
			return
		}
		matched = true
		text = e.Text
	})

	if err := f.runCollector(ctx, collector, rawURL, &fetchErr); err != nil {
		return nil, false, err
	}

	mu.Lock()
	defer mu.Unlock()
	if !matched {
		f.logger.Info("Found no lyrics", zap.String("url", rawURL))
		return nil, false, nil
	}
	lines := splitLines(text)
	if lines.Lines() == 0 {
		f.logger.Info("Lyric block is empty", zap.String("url", rawURL))
		return nil, false, nil
	}
	return lines, true, nil
}

func (f *Fetcher) configureCollectorHooks(hooks collectorHooks, onBody func([]byte), fetchErr *error) {
	hooks.OnRequest(func(r *colly.Request) {
		f.copyHeaders(r)
	})

	hooks.OnResponse(func(r *colly.Response) {
		if onBody != nil {
			onBody(r.Body)
		}
	})

	hooks.OnError(func(r *colly.Response, err error) {
		if err == nil {
			err = errors.New("unknown colly error")
		}
		if r != nil && r.StatusCode != 0 {
			err = fmt.Errorf("status %d: %w", r.StatusCode, err)
		}
		*fetchErr = err
	})
}

func (f *Fetcher) runCollector(ctx context.Context, collector *colly.Collector, rawURL string, fetchErr *error) error {
	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(rawURL)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("colly fetch canceled: %w", ctx.Err())
	case err := <-done:
		if *fetchErr != nil {
			return fmt.Errorf("colly response failed: %w", *fetchErr)
		}
		if err != nil {
			return fmt.Errorf("colly visit failed: %w", err)
		}
		return nil
	}
}

func (f *Fetcher) copyHeaders(r *colly.Request) {
	for key, value := range f.cfg.Headers {
		r.Headers.Set(key, value)
	}
}

// splitLines breaks a lyric block on LF or CRLF, keeping blank lines so the
// batch mirrors the page.
func splitLines(text string) lyrics.Batch {
	parts := strings.Split(text, "\n")
	out := make(lyrics.Batch, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSuffix(p, "\r"))
	}
	return out
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   100,
		IdleConnTimeout:       90 * time.Second,
	}
}
