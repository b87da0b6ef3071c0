package server

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

const debounceDuration = 500 * time.Millisecond

// WatchSettings invalidates the cached listings whenever the settings file
// at path changes on disk. It blocks until ctx is done.
func (s *Server) WatchSettings(ctx context.Context, path string) error {
	return watchFile(ctx, path, func() {
		s.log.WithField("path", path).Info("Settings changed on disk, refreshing model listings")
		s.Invalidate()
	})
}

// watchFile calls onChange, debounced, after writes to path
func watchFile(ctx context.Context, path string, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for %s: %w", path, err)
	}

	// The file is replaced by rename on save, so watch its directory
	dir := filepath.Dir(absPath)
	filename := filepath.Base(absPath)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceDuration, onChange)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logWatchError(err)
		}
	}
}

func logWatchError(err error) {
	logrus.WithError(err).Warn("File watcher error")
}
