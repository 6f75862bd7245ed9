// Package local implements the append-only text files the scraper writes.
package local

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrClosed is returned when appending to a closed file.
var ErrClosed = errors.New("append file closed")

// Config captures the parameters for an append-only output file.
type Config struct {
	// Path is the file to create or extend.
	Path string `mapstructure:"path" yaml:"path"`
}

// AppendFile is a line-oriented, append-only file. Existing content is never
// truncated; every call to AppendLines is flushed before it returns so a
// crash leaves all completed batches on disk.
type AppendFile struct {
	path string

	mu     sync.Mutex
	file   *os.File
	buf    *bufio.Writer
	lines  int
	closed bool
}

// Open creates the file (and its parent directories) if needed and positions
// writes at its end.
func Open(cfg Config) (*AppendFile, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, fmt.Errorf("path is required")
	}

	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create parent directories: %w", err)
	}

	// #nosec G304 -- output path is chosen by the operator.
	f, err := os.OpenFile(cfg.Path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open %s for append: %w", cfg.Path, err)
	}

	return &AppendFile{
		path: cfg.Path,
		file: f,
		buf:  bufio.NewWriter(f),
	}, nil
}

// Path returns the file location.
func (a *AppendFile) Path() string {
	return a.path
}

// Lines returns how many lines this handle has written.
func (a *AppendFile) Lines() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lines
}

// AppendLines writes each non-empty line followed by a newline and flushes.
func (a *AppendFile) AppendLines(lines []string) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return 0, ErrClosed
	}

	written := 0
	for _, line := range lines {
		if line == "" {
			continue
		}
		if _, err := a.buf.WriteString(line); err != nil {
			return written, fmt.Errorf("write %s: %w", a.path, err)
		}
		if err := a.buf.WriteByte('\n'); err != nil {
			return written, fmt.Errorf("write %s: %w", a.path, err)
		}
		written++
	}
	if err := a.buf.Flush(); err != nil {
		return written, fmt.Errorf("flush %s: %w", a.path, err)
	}
	a.lines += written
	return written, nil
}

// Close flushes pending data and releases the file. It is safe to call more
// than once.
func (a *AppendFile) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil
	}
	a.closed = true
	flushErr := a.buf.Flush()
	closeErr := a.file.Close()
	if flushErr != nil {
		return fmt.Errorf("flush %s: %w", a.path, flushErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close %s: %w", a.path, closeErr)
	}
	return nil
}
