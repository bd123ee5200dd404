package fsutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultFileMode is the permission mode for files without a known mode.
const DefaultFileMode os.FileMode = 0o644

// WriteAtomic writes content to path through a temp file in the same
// directory followed by a rename. On error the temp file is removed and the
// target is untouched. A zero mode means DefaultFileMode.
func WriteAtomic(ctx context.Context, path string, content []byte, mode os.FileMode) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("write atomic: %w", ctx.Err())
	default:
	}

	if mode == 0 {
		mode = DefaultFileMode
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}

	success = true
	return nil
}

// WriteOptions controls WriteFixed.
type WriteOptions struct {
	// Backup keeps the original content in a sidecar file before replacing it.
	Backup bool
}

// WriteResult reports what WriteFixed did.
type WriteResult struct {
	// Written is false when content equals what was read.
	Written bool

	// BackupPath is set when a backup was created.
	BackupPath string
}

// WriteFixed replaces the file described by snap with content. It refuses
// with ErrModified when the file changed after snap was taken, and does
// nothing when content equals the snapshot. The original mode is kept.
func WriteFixed(ctx context.Context, snap *Snapshot, content []byte, opts WriteOptions) (WriteResult, error) {
	if snap == nil {
		return WriteResult{}, ErrNilSnapshot
	}
	if snap.Matches(content) {
		return WriteResult{}, nil
	}

	changed, err := snap.Changed(ctx)
	if err != nil {
		return WriteResult{}, err
	}
	if changed {
		return WriteResult{}, fmt.Errorf("%w: %s", ErrModified, snap.Path)
	}

	var result WriteResult
	if opts.Backup {
		backup, err := CreateBackup(ctx, snap)
		if err != nil {
			return WriteResult{}, err
		}
		result.BackupPath = backup
	}

	if err := WriteAtomic(ctx, snap.Path, content, snap.Mode); err != nil {
		return WriteResult{}, err
	}
	result.Written = true
	return result, nil
}
