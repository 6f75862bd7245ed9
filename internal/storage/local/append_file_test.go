// Package local_test tests the append-only output file.
package local_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/lyricpass/internal/storage/local"
)

func TestOpen(t *testing.T) {
	t.Run("CreatesNestedPath", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "a", "b", "raw.txt")
		f, err := local.Open(local.Config{Path: path})
		require.NoError(t, err)
		require.NoError(t, f.Close())

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Zero(t, info.Size())
	})

	t.Run("MissingPath", func(t *testing.T) {
		_, err := local.Open(local.Config{})
		assert.Error(t, err)
	})

	t.Run("PathIsDirectory", func(t *testing.T) {
		_, err := local.Open(local.Config{Path: t.TempDir()})
		assert.Error(t, err)
	})
}

func TestAppendLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raw.txt")
	f, err := local.Open(local.Config{Path: path})
	require.NoError(t, err)

	t.Run("SkipsEmptyLines", func(t *testing.T) {
		n, err := f.AppendLines([]string{"first line", "", "second line"})
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	t.Run("VisibleBeforeClose", func(t *testing.T) {
		// #nosec G304 -- test reads from the controlled temp directory.
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "first line\nsecond line\n", string(data))
	})

	t.Run("EmptyBatch", func(t *testing.T) {
		n, err := f.AppendLines(nil)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	require.NoError(t, f.Close())
	require.NoError(t, f.Close())
	assert.Equal(t, 2, f.Lines())

	_, err = f.AppendLines([]string{"late"})
	assert.ErrorIs(t, err, local.ErrClosed)
}

func TestReopenAppendsWithoutTruncating(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raw.txt")

	first, err := local.Open(local.Config{Path: path})
	require.NoError(t, err)
	_, err = first.AppendLines([]string{"artist one"})
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := local.Open(local.Config{Path: path})
	require.NoError(t, err)
	_, err = second.AppendLines([]string{"artist two"})
	require.NoError(t, err)
	require.NoError(t, second.Close())

	// #nosec G304 -- test reads from the controlled temp directory.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "artist one\nartist two\n", string(data))
}
