package extractor

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunScratchDirsAreIsolated(t *testing.T) {
	client := NewClient(t.TempDir(), t.TempDir(), nil)

	first, err := client.runScratchDir()
	require.NoError(t, err)
	second, err := client.runScratchDir()
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Equal(t, client.ScratchDir, filepath.Dir(first))
	assert.Equal(t, client.ScratchDir, filepath.Dir(second))

	// Files landing in one run's directory are invisible to the other,
	// so concurrent downloads cannot claim each other's output.
	require.NoError(t, os.WriteFile(filepath.Join(first, "a.mp4"), []byte("x"), 0o644))
	cutoff := time.Now().Add(-time.Minute)
	assert.Len(t, newFilesSince(first, cutoff), 1)
	assert.Empty(t, newFilesSince(second, cutoff))
}

func TestNewFilesSince(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "clip.mp4"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "clip.mp4.part"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "clip.ytdl"), []byte("x"), 0o644))

	paths := newFilesSince(dir, time.Now().Add(-time.Minute))
	require.Len(t, paths, 1)
	assert.Equal(t, filepath.Join(dir, "clip.mp4"), paths[0])

	// Files older than the cutoff are not attributed to this run.
	assert.Empty(t, newFilesSince(dir, time.Now().Add(time.Minute)))
}
