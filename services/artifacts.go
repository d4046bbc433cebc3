package services

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"tubescribe/types"
)

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._ -]+`)

// ArtifactStore maps generated filenames to files under a single root
// directory for the lifetime of the process. Writes go to a temp file
// first and are renamed into place, so a reader never observes a
// partial artifact. Concurrent puts from different jobs cannot collide
// because every name carries a random suffix.
//
// Nothing is ever deleted; the store grows for as long as the process
// lives. That is an accepted operational cost, not a bug.
type ArtifactStore struct {
	root string
	kind string
}

// NewArtifactStore creates the root directory if needed. kind labels
// the refs it hands out ("transcript", "media").
func NewArtifactStore(root, kind string) (*ArtifactStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("artifact store root: %w", err)
	}
	return &ArtifactStore{root: root, kind: kind}, nil
}

// Put writes the reader's contents under a fresh collision-resistant
// name derived from the hint.
func (s *ArtifactStore) Put(nameHint string, r io.Reader) (types.ArtifactRef, error) {
	filename := s.generateName(nameHint)
	dst := filepath.Join(s.root, filename)

	tmp, err := os.CreateTemp(s.root, ".put-*")
	if err != nil {
		return types.ArtifactRef{}, fmt.Errorf("artifact temp file: %w", err)
	}
	size, err := io.Copy(tmp, r)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return types.ArtifactRef{}, fmt.Errorf("artifact write: %w", err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		os.Remove(tmp.Name())
		return types.ArtifactRef{}, fmt.Errorf("artifact rename: %w", err)
	}

	return types.ArtifactRef{Filename: filename, SizeBytes: size, ContentKind: s.kind}, nil
}

// Adopt moves an existing file (for example a finished download in the
// scratch directory) into the store under a fresh name. Falls back to
// copying when the rename crosses filesystems.
func (s *ArtifactStore) Adopt(path string) (types.ArtifactRef, error) {
	info, err := os.Stat(path)
	if err != nil {
		return types.ArtifactRef{}, fmt.Errorf("adopt artifact: %w", err)
	}
	filename := s.generateName(filepath.Base(path))
	dst := filepath.Join(s.root, filename)

	if err := os.Rename(path, dst); err != nil {
		src, oerr := os.Open(path)
		if oerr != nil {
			return types.ArtifactRef{}, fmt.Errorf("adopt artifact: %w", oerr)
		}
		defer src.Close()
		ref, perr := s.Put(filepath.Base(path), src)
		if perr != nil {
			return types.ArtifactRef{}, perr
		}
		os.Remove(path)
		return ref, nil
	}

	return types.ArtifactRef{Filename: filename, SizeBytes: info.Size(), ContentKind: s.kind}, nil
}

// Open returns a handle for a stored artifact, or os.ErrNotExist for
// unknown or unsafe names.
func (s *ArtifactStore) Open(filename string) (*os.File, os.FileInfo, error) {
	path, err := s.Path(filename)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return f, info, nil
}

// Size returns an artifact's size in bytes.
func (s *ArtifactStore) Size(filename string) (int64, error) {
	path, err := s.Path(filename)
	if err != nil {
		return 0, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// Path resolves a stored filename to its absolute location, rejecting
// anything that could escape the root.
func (s *ArtifactStore) Path(filename string) (string, error) {
	if filename == "" || filename != filepath.Base(filename) || strings.Contains(filename, "..") {
		return "", os.ErrNotExist
	}
	return filepath.Join(s.root, filename), nil
}

// generateName combines a sanitized hint with a random suffix so that
// repeated jobs with identical input still produce distinct artifacts.
func (s *ArtifactStore) generateName(hint string) string {
	ext := filepath.Ext(hint)
	base := strings.TrimSuffix(filepath.Base(hint), ext)
	base = unsafeFilenameChars.ReplaceAllString(base, "_")
	base = strings.Trim(base, "._ ")
	if base == "" {
		base = "artifact"
	}
	if len(base) > 80 {
		base = base[:80]
	}
	suffix := uuid.New().String()[:8]
	return fmt.Sprintf("%s_%s%s", base, suffix, ext)
}
