// Package artist turns user input into the artist query names used against
// the lyrics site.
package artist

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrUnreadableInput marks an artist file that could not be opened or read.
var ErrUnreadableInput = errors.New("unreadable artist input")

const maxLineBytes = 64 * 1024

// Sanitize converts a display name into the site's query form. Surrounding
// whitespace is trimmed, inner spaces become '+' and anything outside
// [a-zA-Z0-9-+] is removed.
func Sanitize(name string) string {
	name = strings.ReplaceAll(strings.TrimSpace(name), " ", "+")
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '+':
			return r
		default:
			return -1
		}
	}, name)
}

// Parse sanitizes names, drops the ones that end up empty, and removes
// duplicates keeping the first occurrence.
func Parse(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, raw := range names {
		name := Sanitize(raw)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// Read parses one artist per line from r.
func Read(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineBytes)

	var names []string
	for scanner.Scan() {
		names = append(names, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadableInput, err)
	}
	return Parse(names), nil
}

// ReadFile parses the artist list stored at path.
func ReadFile(path string) ([]string, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from the operator's flag
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadableInput, err)
	}
	defer func() { _ = f.Close() }()

	names, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return names, nil
}

// Join builds the file name fragment shared by both output files.
func Join(names []string) string {
	return strings.Join(names, "-")
}
