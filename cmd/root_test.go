package cmd

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/lyricpass/internal/artist"
	"github.com/JakeFAU/lyricpass/internal/config"
)

type lyricsSite struct {
	*httptest.Server
	requests atomic.Int64
}

func newLyricsSite(t *testing.T) *lyricsSite {
	t.Helper()
	site := &lyricsSite{}
	mux := http.NewServeMux()
	mux.HandleFunc("/artist.php", func(w http.ResponseWriter, r *http.Request) {
		site.requests.Add(1)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		switch r.URL.Query().Get("name") {
		case "Queen":
			fmt.Fprint(w, `<html><body>
<a href="/lyric/101/Queen/We+Will+Rock+You">We Will Rock You</a>
<a href="/lyric/102/Queen/Instrumental">Instrumental</a>
<a href="/artist/Queen">Queen</a>
</body></html>`)
		default:
			fmt.Fprint(w, `<html><body><p>We couldn't find any artists matching your query</p>
<a href="/lyric/999/Other/Suggested">Suggested</a></body></html>`)
		}
	})
	mux.HandleFunc("/db-print.php", func(w http.ResponseWriter, r *http.Request) {
		site.requests.Add(1)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		switch r.URL.Query().Get("id") {
		case "101":
			fmt.Fprint(w, "<html><body><pre>We Will Rock You\r\n\r\nBuddy you're a boy make a big noise</pre></body></html>")
		default:
			fmt.Fprint(w, "<html><body><p>No lyrics</p></body></html>")
		}
	})
	site.Server = httptest.NewServer(mux)
	t.Cleanup(site.Close)
	return site
}

func writeConfig(t *testing.T, siteURL string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lyricpass.yaml")
	body := fmt.Sprintf("http:\n  site_url: %s/\n  timeout_seconds: 5\nlogging:\n  development: false\n  level: error\n", siteURL)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := strings.TrimSuffix(string(data), "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

func onlyMatch(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(pattern)
	require.NoError(t, err)
	require.Len(t, matches, 1, "pattern %s", pattern)
	return matches[0]
}

func TestScrape_EndToEnd(t *testing.T) {
	site := newLyricsSite(t)
	cfgPath := writeConfig(t, site.URL)
	outDir := t.TempDir()

	out, err := execute(t, "--config", cfgPath, "-a", "Queen", "-o", outDir, "--max-concurrent-dl", "2")
	require.NoError(t, err)

	raw := onlyMatch(t, filepath.Join(outDir, "raw-lyrics-Queen-*"))
	wordlist := onlyMatch(t, filepath.Join(outDir, "wordlist-Queen-*"))
	require.Contains(t, out, raw)
	require.Contains(t, out, wordlist)

	require.Equal(t, []string{"We Will Rock You", "Buddy you're a boy make a big noise"}, readLines(t, raw))
	require.Equal(t, []string{"we will rock you", "buddy you're a boy make a big noise"}, readLines(t, wordlist))
}

func TestScrape_InputFileSkipsUnknownArtists(t *testing.T) {
	site := newLyricsSite(t)
	cfgPath := writeConfig(t, site.URL)
	outDir := t.TempDir()

	infile := filepath.Join(t.TempDir(), "artists.txt")
	require.NoError(t, os.WriteFile(infile, []byte("Nobody\nQueen\n\nQueen\n"), 0o600))

	_, err := execute(t, "--config", cfgPath, "-i", infile, "-o", outDir, "--metrics-addr", "127.0.0.1:0")
	require.NoError(t, err)

	raw := onlyMatch(t, filepath.Join(outDir, "raw-lyrics-Nobody-Queen-*"))
	require.Len(t, readLines(t, raw), 2)
}

func TestScrape_UnreadableInputFailsBeforeNetwork(t *testing.T) {
	site := newLyricsSite(t)
	cfgPath := writeConfig(t, site.URL)

	_, err := execute(t, "--config", cfgPath, "-i", filepath.Join(t.TempDir(), "missing.txt"), "-o", t.TempDir())
	require.ErrorIs(t, err, artist.ErrUnreadableInput)
	require.Zero(t, site.requests.Load())
}

func TestScrape_InputValidation(t *testing.T) {
	site := newLyricsSite(t)
	cfgPath := writeConfig(t, site.URL)

	_, err := execute(t, "--config", cfgPath, "-o", t.TempDir())
	require.ErrorIs(t, err, config.ErrInputSource)

	_, err = execute(t, "--config", cfgPath, "-a", "Queen", "-i", "artists.txt")
	require.Error(t, err)

	_, err = execute(t, "--config", cfgPath, "-a", "???", "-o", t.TempDir())
	require.ErrorIs(t, err, errNoArtists)

	_, err = execute(t, "--config", cfgPath, "-a", "Queen", "--min", "10", "--max", "5")
	require.ErrorContains(t, err, "phrase.max")
	require.Zero(t, site.requests.Load())
}

func TestPhrasesCommand(t *testing.T) {
	dir := t.TempDir()
	raw := filepath.Join(dir, "raw.txt")
	require.NoError(t, os.WriteFile(raw, []byte("Rock-n-Roll Ain't Noise Pollution\nshort\nNo\n"), 0o600))
	wordlist := filepath.Join(dir, "out", "wordlist.txt")

	out, err := execute(t, "phrases", "--in", raw, "--out", wordlist, "--min", "5", "--dev=false", "--log-level", "error")
	require.NoError(t, err)
	require.Contains(t, out, "2 phrases")
	require.Equal(t, []string{"rock n roll ain't noise pollution", "short"}, readLines(t, wordlist))
}

func TestPhrasesCommand_RequiresFlags(t *testing.T) {
	_, err := execute(t, "phrases", "--in", "raw.txt")
	require.Error(t, err)

	_, err = execute(t, "phrases", "--in", "same.txt", "--out", "same.txt")
	require.ErrorContains(t, err, "must differ")
}
