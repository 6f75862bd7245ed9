package lyrics

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestItemVariants(t *testing.T) {
	t.Parallel()

	task := Task("https://example.com/song")
	require.False(t, task.IsShutdown())
	require.Equal(t, "https://example.com/song", task.Value())

	sentinel := Shutdown[string]()
	require.True(t, sentinel.IsShutdown())
	require.Empty(t, sentinel.Value())
}

func TestSentinelNeverCollidesWithPayload(t *testing.T) {
	t.Parallel()

	// The old string sentinel would have been indistinguishable from a
	// task carrying the same text.
	require.False(t, Task("ENQUEUE").IsShutdown())
	require.False(t, Task("").IsShutdown())
	require.NotEqual(t, Task(""), Shutdown[string]())
}

func TestBatchLines(t *testing.T) {
	t.Parallel()

	require.Equal(t, 0, Batch(nil).Lines())
	require.Equal(t, 2, Batch{"one", "", "two", ""}.Lines())
}
