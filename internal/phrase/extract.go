package phrase

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/JakeFAU/lyricpass/internal/lyrics"
)

// maxLineBytes bounds a single raw line; lyric pages never come close.
const maxLineBytes = 1 << 20

// Stats summarizes one extraction pass.
type Stats struct {
	Lines   int
	Phrases int
}

// Extract reads raw lines from r and appends every derived phrase to sink,
// in input order. Duplicates are kept.
func (n *Normalizer) Extract(ctx context.Context, r io.Reader, sink lyrics.LineSink) (Stats, error) {
	var stats Stats
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return stats, fmt.Errorf("extract canceled: %w", err)
		}
		stats.Lines++
		phrases := n.Phrases(scanner.Text())
		if len(phrases) == 0 {
			continue
		}
		written, err := sink.AppendLines(phrases)
		stats.Phrases += written
		if err != nil {
			return stats, fmt.Errorf("append phrases: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("scan raw lines: %w", err)
	}
	return stats, nil
}

// ExtractFile runs Extract over the file at path.
func (n *Normalizer) ExtractFile(ctx context.Context, path string, sink lyrics.LineSink) (Stats, error) {
	// #nosec G304 -- path is the raw lyric file this process wrote.
	f, err := os.Open(path)
	if err != nil {
		return Stats{}, fmt.Errorf("open raw lyrics: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only handle

	return n.Extract(ctx, f, sink)
}
