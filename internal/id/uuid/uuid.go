// Package uuid generates the run identifiers attached to every log line of a
// scrape.
package uuid

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/JakeFAU/lyricpass/internal/lyrics"
)

var _ lyrics.IDGenerator = (*Generator)(nil)

// Generator creates time-ordered UUIDv7 strings, so runs sort by start time.
type Generator struct {
	source func() (uuid.UUID, error)
}

// New creates a Generator backed by uuid.NewV7.
func New() *Generator {
	return &Generator{source: uuid.NewV7}
}

// NewID returns a UUIDv7 string.
func (g *Generator) NewID() (string, error) {
	id, err := g.source()
	if err != nil {
		return "", fmt.Errorf("generate run id: %w", err)
	}
	return id.String(), nil
}
