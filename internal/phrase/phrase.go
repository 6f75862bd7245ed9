// Package phrase turns raw lyric lines into passphrase candidates.
//
// A line is lowercased, hyphens, underscores and other whitespace become
// spaces, diacritics are stripped via NFKD decomposition, every character
// outside [a-z0-9 '&] is dropped and runs of spaces are collapsed. Lines
// shorter than Min are discarded; lines longer than Max are word-wrapped at
// Max. The output of Phrases is a fixed point: feeding a phrase back in
// returns it unchanged.
package phrase

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Defaults mirror the CLI flags.
const (
	DefaultMin = 8
	DefaultMax = 40
)

// Normalizer holds the accepted phrase length range, in characters.
type Normalizer struct {
	Min int
	Max int
}

// New validates the length range and returns a Normalizer.
func New(minLen, maxLen int) (*Normalizer, error) {
	if minLen < 1 {
		return nil, fmt.Errorf("phrase min must be >= 1, got %d", minLen)
	}
	if maxLen < minLen {
		return nil, fmt.Errorf("phrase max (%d) must be >= min (%d)", maxLen, minLen)
	}
	return &Normalizer{Min: minLen, Max: maxLen}, nil
}

// Phrases returns the candidates derived from one raw line. It returns nil
// when nothing in the line survives normalization and length filtering.
func (n *Normalizer) Phrases(line string) []string {
	clean := Clean(line)
	if len(clean) < n.Min {
		return nil
	}
	if len(clean) <= n.Max {
		return []string{clean}
	}

	var out []string
	for _, piece := range Wrap(clean, n.Max) {
		if len(piece) >= n.Min {
			out = append(out, piece)
		}
	}
	return out
}

// Clean applies the character-level normalization without any length
// handling. The result contains only [a-z0-9 '&] with single interior spaces
// and no leading or trailing space.
func Clean(line string) string {
	s := strings.Map(func(r rune) rune {
		if r == '-' || r == '_' || unicode.IsSpace(r) {
			return ' '
		}
		return r
	}, strings.ToLower(line))

	stripped, _, err := transform.String(stripMarks(), s)
	if err == nil {
		s = stripped
	}
	// Compatibility decomposition can surface capitals (e.g. U+210C).
	s = strings.ToLower(s)

	s = strings.Map(func(r rune) rune {
		if allowed(r) {
			return r
		}
		return -1
	}, s)

	return strings.Join(strings.Fields(s), " ")
}

// Wrap greedily packs space-separated words into lines of at most width
// characters. A word longer than width is split into width-sized chunks.
func Wrap(line string, width int) []string {
	if width < 1 {
		return nil
	}
	var (
		out []string
		cur strings.Builder
	)
	flush := func() {
		if cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
		}
	}
	for _, word := range strings.Fields(line) {
		for len(word) > width {
			flush()
			out = append(out, word[:width])
			word = word[width:]
		}
		if word == "" {
			continue
		}
		switch {
		case cur.Len() == 0:
			cur.WriteString(word)
		case cur.Len()+1+len(word) <= width:
			cur.WriteByte(' ')
			cur.WriteString(word)
		default:
			flush()
			cur.WriteString(word)
		}
	}
	flush()
	return out
}

// stripMarks is built per call because chained transformers carry state.
func stripMarks() transform.Transformer {
	return transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
}

func allowed(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		return true
	case r == ' ', r == '\'', r == '&':
		return true
	default:
		return false
	}
}
