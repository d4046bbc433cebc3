package services

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutGeneratesDistinctNames(t *testing.T) {
	store, err := NewArtifactStore(t.TempDir(), "transcript")
	require.NoError(t, err)

	first, err := store.Put("playlist_transcripts.txt", strings.NewReader("one"))
	require.NoError(t, err)
	second, err := store.Put("playlist_transcripts.txt", strings.NewReader("two"))
	require.NoError(t, err)

	assert.NotEqual(t, first.Filename, second.Filename)
	assert.True(t, strings.HasPrefix(first.Filename, "playlist_transcripts_"))
	assert.True(t, strings.HasSuffix(first.Filename, ".txt"))
	assert.Equal(t, int64(3), first.SizeBytes)
	assert.Equal(t, "transcript", first.ContentKind)
}

func TestPutSanitizesHints(t *testing.T) {
	store, err := NewArtifactStore(t.TempDir(), "media")
	require.NoError(t, err)

	tests := []struct {
		name   string
		hint   string
		prefix string
	}{
		{"path traversal", "../../etc/passwd", "passwd_"},
		{"shell characters", "a;b|c&d.mp4", "a_b_c_d_"},
		{"empty after cleaning", "///", "artifact_"},
		{"unicode stripped", "видео.mp4", "artifact_"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := store.Put(tt.hint, strings.NewReader("x"))
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(ref.Filename, tt.prefix),
				"filename %q should start with %q", ref.Filename, tt.prefix)
			assert.NotContains(t, ref.Filename, "/")
		})
	}
}

func TestOpenUnknownFilename(t *testing.T) {
	store, err := NewArtifactStore(t.TempDir(), "transcript")
	require.NoError(t, err)

	_, _, err = store.Open("never_stored.txt")
	assert.Error(t, err)
}

func TestPathRejectsEscapes(t *testing.T) {
	store, err := NewArtifactStore(t.TempDir(), "transcript")
	require.NoError(t, err)

	for _, name := range []string{"", "../secret", "a/b.txt", "..", "dir/../../x"} {
		_, err := store.Path(name)
		assert.ErrorIs(t, err, os.ErrNotExist, "name %q must be rejected", name)
	}
}

func TestAdoptMovesFileIn(t *testing.T) {
	scratch := t.TempDir()
	src := filepath.Join(scratch, "clip.mp4")
	require.NoError(t, os.WriteFile(src, []byte("payload"), 0o644))

	root := t.TempDir()
	store, err := NewArtifactStore(root, "media")
	require.NoError(t, err)

	ref, err := store.Adopt(src)
	require.NoError(t, err)
	assert.Equal(t, int64(7), ref.SizeBytes)

	_, statErr := os.Stat(src)
	assert.True(t, os.IsNotExist(statErr), "source file should be gone")

	data, err := os.ReadFile(filepath.Join(root, ref.Filename))
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestSizeMatchesStoredContent(t *testing.T) {
	store, err := NewArtifactStore(t.TempDir(), "transcript")
	require.NoError(t, err)

	ref, err := store.Put("notes.txt", strings.NewReader("twelve bytes"))
	require.NoError(t, err)

	size, err := store.Size(ref.Filename)
	require.NoError(t, err)
	assert.Equal(t, ref.SizeBytes, size)
}
