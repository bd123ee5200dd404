// Package fsutil reads documents for analysis and writes fixed text back
// safely: atomic replacement, modification detection between read and write,
// and optional sidecar backups.
package fsutil

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"
)

// Sentinel errors for error categorization via errors.Is.
var (
	// ErrNilSnapshot is returned when a nil Snapshot is passed.
	ErrNilSnapshot = errors.New("nil snapshot")

	// ErrNotFound indicates the file does not exist.
	ErrNotFound = errors.New("file not found")

	// ErrPermissionDenied indicates a permission error.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrIsDirectory indicates the path is a directory, not a file.
	ErrIsDirectory = errors.New("path is a directory")

	// ErrModified indicates the file changed after it was read.
	ErrModified = errors.New("file modified since it was read")
)

// binarySniffLen is how much of a file IsBinary inspects.
const binarySniffLen = 8000

// Snapshot captures the state of a file when it was read for analysis.
type Snapshot struct {
	Path    string
	Mode    os.FileMode
	ModTime time.Time
	Size    int64

	// Hash is the SHA-256 of the content that was read.
	Hash [sha256.Size]byte
}

// Read returns the content of path and a Snapshot of it.
func Read(ctx context.Context, path string) ([]byte, *Snapshot, error) {
	select {
	case <-ctx.Done():
		return nil, nil, fmt.Errorf("read file: %w", ctx.Err())
	default:
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, nil, classify(path, "stat", err)
	}
	if stat.IsDir() {
		return nil, nil, fmt.Errorf("%w: %s", ErrIsDirectory, path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, classify(path, "read", err)
	}

	return content, &Snapshot{
		Path:    path,
		Mode:    stat.Mode().Perm(),
		ModTime: stat.ModTime(),
		Size:    stat.Size(),
		Hash:    sha256.Sum256(content),
	}, nil
}

func classify(path, op string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %s: %w", ErrNotFound, path, err)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %s: %w", ErrPermissionDenied, path, err)
	default:
		return fmt.Errorf("%s %s: %w", op, path, err)
	}
}

// Matches reports whether content is what the snapshot read.
func (s *Snapshot) Matches(content []byte) bool {
	return s != nil && int64(len(content)) == s.Size && sha256.Sum256(content) == s.Hash
}

// Changed reports whether the file on disk differs from the snapshot.
// A deleted file counts as changed. Modification time and size are compared
// first; the content is re-hashed only when both still match.
func (s *Snapshot) Changed(ctx context.Context) (bool, error) {
	if s == nil {
		return false, ErrNilSnapshot
	}

	select {
	case <-ctx.Done():
		return false, fmt.Errorf("check modified: %w", ctx.Err())
	default:
	}

	stat, err := os.Stat(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return true, nil
		}
		return false, fmt.Errorf("stat %s: %w", s.Path, err)
	}

	if !stat.ModTime().Equal(s.ModTime) || stat.Size() != s.Size {
		return true, nil
	}

	content, err := os.ReadFile(s.Path)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", s.Path, err)
	}
	return sha256.Sum256(content) != s.Hash, nil
}

// IsBinary reports whether content looks like a binary file: it holds a NUL
// byte within its first few kilobytes.
func IsBinary(content []byte) bool {
	if len(content) > binarySniffLen {
		content = content[:binarySniffLen]
	}
	return bytes.IndexByte(content, 0) >= 0
}
