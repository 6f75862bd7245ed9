package collyfetcher

import (
	"context"
	"errors"
	"net/url"
	"regexp"
	"strings"
	"sync"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

// Catalog lookup outcomes. Both mean "zero songs for this artist".
var (
	ErrArtistNotFound = errors.New("artist not found")
	ErrNoSongs        = errors.New("no songs found")
)

const artistNotFoundMarker = "We couldn't find any artists matching your query"

var songLinkPattern = regexp.MustCompile(`/lyric/([^/"]+)/`)

// SongURLs looks the artist up on the site and returns the printable URL of
// every linked song, in page order. artist must already be sanitized.
func (f *Fetcher) SongURLs(ctx context.Context, artist string) ([]string, error) {
	var (
		mu       sync.Mutex
		ids      []string
		notFound bool
		fetchErr error
	)
	collector := f.baseCollector.Clone()
	f.configureCollectorHooks(collector, func(body []byte) {
		mu.Lock()
		defer mu.Unlock()
		notFound = strings.Contains(string(body), artistNotFoundMarker)
	}, &fetchErr)
	collector.OnHTML("a[href]", func(e *colly.HTMLElement) {
		m := songLinkPattern.FindStringSubmatch(e.Attr("href"))
		if m == nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		ids = append(ids, m[1])
	})

	if err := f.runCollector(ctx, collector, f.ArtistURL(artist), &fetchErr); err != nil {
		return nil, err
	}

	mu.Lock()
	defer mu.Unlock()
	switch {
	case notFound:
		// The not-found page still suggests unrelated songs.
		f.logger.Debug("search page reports no matching artist", zap.String("artist", artist))
		return nil, ErrArtistNotFound
	case len(ids) == 0:
		f.logger.Debug("artist page has no song links", zap.String("artist", artist))
		return nil, ErrNoSongs
	}

	urls := make([]string, 0, len(ids))
	for _, id := range ids {
		urls = append(urls, f.SongURL(id))
	}
	f.logger.Debug("song links collected", zap.String("artist", artist), zap.Int("songs", len(urls)))
	return urls, nil
}

// ArtistURL returns the search page for a sanitized artist name. The name is
// used verbatim so '+' keeps its meaning as an encoded space.
func (f *Fetcher) ArtistURL(artist string) string {
	ref := &url.URL{Path: "artist.php", RawQuery: "name=" + artist}
	return f.site.ResolveReference(ref).String()
}

// SongURL returns the print view for a song ID, the simplest page to parse.
func (f *Fetcher) SongURL(id string) string {
	ref := &url.URL{Path: "db-print.php", RawQuery: "id=" + url.QueryEscape(id)}
	return f.site.ResolveReference(ref).String()
}
