// Package metrics exposes Prometheus collectors for the lyric scraper.
package metrics

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Fetch results recorded by ObserveFetch.
const (
	FetchFound    = "found"
	FetchNotFound = "not_found"
	FetchError    = "error"
)

// Artist outcomes recorded by ObserveArtist.
const (
	ArtistScraped  = "scraped"
	ArtistNotFound = "not_found"
	ArtistNoSongs  = "no_songs"
	ArtistError    = "error"
)

var (
	songsTotal                 *prometheus.CounterVec
	fetchDurationSeconds       *prometheus.HistogramVec
	linesWrittenTotal          prometheus.Counter
	phrasesTotal               prometheus.Counter
	artistsTotal               *prometheus.CounterVec
	activeWorkers              prometheus.Gauge
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		songsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lyricpass_songs_total",
				Help: "Song pages processed, labeled by site and fetch result.",
			},
			[]string{"site", "result"},
		)

		fetchDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lyricpass_fetch_duration_seconds",
				Help:    "Histogram of song page fetch latencies, labeled by site.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"site"},
		)

		linesWrittenTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "lyricpass_lines_written_total",
				Help: "Raw lyric lines appended to the output file.",
			},
		)

		phrasesTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "lyricpass_phrases_total",
				Help: "Passphrase candidates written to the wordlist.",
			},
		)

		artistsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lyricpass_artists_total",
				Help: "Artists processed, labeled by outcome.",
			},
			[]string{"result"},
		)

		activeWorkers = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "lyricpass_active_workers",
				Help: "Number of fetch workers currently running.",
			},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		)
	})
}

// SanitizeSite sanitizes a URL to extract a lowercase hostname.
// It returns "unknown" if the URL is invalid.
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveFetch records the outcome and latency of one song fetch.
func ObserveFetch(rawURL, result string, duration time.Duration) {
	site := SanitizeSite(rawURL)
	songsTotal.WithLabelValues(site, result).Inc()
	fetchDurationSeconds.WithLabelValues(site).Observe(duration.Seconds())
}

// ObserveLinesWritten adds to the raw line counter.
func ObserveLinesWritten(n int) {
	if n > 0 {
		linesWrittenTotal.Add(float64(n))
	}
}

// ObservePhrases adds to the wordlist phrase counter.
func ObservePhrases(n int) {
	if n > 0 {
		phrasesTotal.Add(float64(n))
	}
}

// ObserveArtist increments the artist counter for the given outcome.
func ObserveArtist(result string) {
	artistsTotal.WithLabelValues(result).Inc()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// IncActiveWorkers increments the active workers gauge.
func IncActiveWorkers() {
	activeWorkers.Inc()
}

// DecActiveWorkers decrements the active workers gauge.
func DecActiveWorkers() {
	activeWorkers.Dec()
}
