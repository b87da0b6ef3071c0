package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// AtomicFileUpdate replaces filePath with content through a temp file and a
// rename, so readers never observe a partially written file. When snapshot
// is set and the file already exists, the previous version is kept as a snapshot.
func AtomicFileUpdate(filePath string, content []byte, snapshot bool) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	snaps := NewSnapshots(SnapshotsKept)
	snapshotted := false
	if snapshot && FileExists(filePath) {
		if _, err := snaps.Take(filePath); err != nil {
			return fmt.Errorf("failed to snapshot settings: %w", err)
		}
		snapshotted = true
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(filePath), filepath.Base(filePath)+".tmp*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(content); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write to temporary file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to sync temporary file: %w", err)
	}
	tmpFile.Close()

	if err := os.Chmod(tmpFile.Name(), 0600); err != nil {
		return fmt.Errorf("failed to set permissions on temporary file: %w", err)
	}

	if err := os.Rename(tmpFile.Name(), filePath); err != nil {
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	if snapshotted {
		// Non-fatal, the update itself succeeded
		_ = snaps.Prune(filePath)
	}

	return nil
}

// MigrateConfig copies a legacy file to newPath and renames the legacy file
// to <oldPath>.backup. The legacy content must be valid JSON.
func MigrateConfig(oldPath, newPath string) error {
	data, err := os.ReadFile(oldPath)
	if err != nil {
		return fmt.Errorf("failed to read old config file: %w", err)
	}

	if len(data) == 0 {
		return fmt.Errorf("old config file is empty")
	}

	if !json.Valid(data) {
		return fmt.Errorf("old config file format is invalid")
	}

	if err := AtomicFileUpdate(newPath, data, false); err != nil {
		return fmt.Errorf("failed to write new config file: %w", err)
	}

	if err := os.Rename(oldPath, oldPath+".backup"); err != nil {
		logrus.WithError(err).WithField("path", oldPath).Warn("Failed to move legacy config aside")
	}

	return nil
}

// ShouldMigrateConfig reports whether the legacy file exists and the new one does not
func ShouldMigrateConfig(oldPath, newPath string) bool {
	return FileExists(oldPath) && !FileExists(newPath)
}
