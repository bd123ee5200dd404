package fsutil

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// BackupSuffix is appended to a file's path to name its backup.
const BackupSuffix = ".pactfix.bak"

// BackupPath returns the sidecar backup path for path.
func BackupPath(path string) string {
	return path + BackupSuffix
}

// CreateBackup copies the file described by snap to its sidecar path and
// returns that path. An existing backup is never overwritten, so repeated
// runs keep the oldest original; in that case the existing path is returned.
func CreateBackup(ctx context.Context, snap *Snapshot) (string, error) {
	if snap == nil {
		return "", ErrNilSnapshot
	}

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("create backup: %w", ctx.Err())
	default:
	}

	backupPath := BackupPath(snap.Path)
	if _, err := os.Stat(backupPath); err == nil {
		return backupPath, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("stat backup path: %w", err)
	}

	content, err := os.ReadFile(snap.Path)
	if err != nil {
		return "", fmt.Errorf("read original for backup: %w", err)
	}
	if err := WriteAtomic(ctx, backupPath, content, snap.Mode); err != nil {
		return "", fmt.Errorf("write backup: %w", err)
	}
	return backupPath, nil
}

// RestoreBackup puts the backup of path back in place and removes it.
// It returns false when no backup exists.
func RestoreBackup(ctx context.Context, path string) (bool, error) {
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("restore backup: %w", ctx.Err())
	default:
	}

	backupPath := BackupPath(path)
	content, err := os.ReadFile(backupPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("read backup: %w", err)
	}

	stat, err := os.Stat(backupPath)
	if err != nil {
		return false, fmt.Errorf("stat backup: %w", err)
	}
	if err := WriteAtomic(ctx, path, content, stat.Mode().Perm()); err != nil {
		return false, fmt.Errorf("restore from backup: %w", err)
	}
	if err := os.Remove(backupPath); err != nil {
		return true, fmt.Errorf("remove backup: %w", err)
	}
	return true, nil
}
