// Package system provides the wall clock used for output file timestamps.
package system

import (
	"time"

	"github.com/JakeFAU/lyricpass/internal/lyrics"
)

var _ lyrics.Clock = (*Clock)(nil)

// Clock reports the current time in a fixed location.
type Clock struct {
	loc *time.Location
}

// New creates a Clock in the machine's local zone, which is what operators
// expect to see in output file names.
func New() *Clock {
	return &Clock{loc: time.Local}
}

// NewIn creates a Clock reporting times in loc. A nil loc means UTC.
func NewIn(loc *time.Location) *Clock {
	if loc == nil {
		loc = time.UTC
	}
	return &Clock{loc: loc}
}

// Now returns the current time.
func (c *Clock) Now() time.Time {
	return time.Now().In(c.loc)
}
