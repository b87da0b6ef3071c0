package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// SnapshotsKept is how many settings snapshots survive a write
const SnapshotsKept = 3

// snapshotMarker separates the settings file name from the snapshot stamp:
// settings.json.bak-<unix nanos, 19 digits>-<pid>
const snapshotMarker = ".bak-"

// Snapshots keeps the last few versions of a settings file next to it, so
// a bad write can be rolled back at load time.
type Snapshots struct {
	Keep int
}

// NewSnapshots returns a Snapshots keeping keep versions, or SnapshotsKept
// when keep is not positive.
func NewSnapshots(keep int) *Snapshots {
	if keep <= 0 {
		keep = SnapshotsKept
	}
	return &Snapshots{Keep: keep}
}

func snapshotName(path string, at time.Time) string {
	return fmt.Sprintf("%s%s%019d-%d", path, snapshotMarker, at.UnixNano(), os.Getpid())
}

// belongsTo reports whether snap is a snapshot of path
func belongsTo(path, snap string) bool {
	if filepath.Dir(snap) != filepath.Dir(path) {
		return false
	}
	return strings.HasPrefix(filepath.Base(snap), filepath.Base(path)+snapshotMarker)
}

// Take copies the current settings file to a new snapshot
func (s *Snapshots) Take(path string) (string, error) {
	snap := snapshotName(path, time.Now())
	if err := copySettings(path, snap); err != nil {
		return "", fmt.Errorf("failed to snapshot %s: %w", path, err)
	}
	return snap, nil
}

// List returns the snapshots of path, oldest first. The stamp is fixed
// width, so name order is age order.
func (s *Snapshots) List(path string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	var snaps []string
	for _, e := range entries {
		full := filepath.Join(filepath.Dir(path), e.Name())
		if !e.IsDir() && belongsTo(path, full) {
			snaps = append(snaps, full)
		}
	}
	sort.Strings(snaps)
	return snaps, nil
}

// Prune deletes all but the newest Keep snapshots
func (s *Snapshots) Prune(path string) error {
	snaps, err := s.List(path)
	if err != nil {
		return err
	}
	for len(snaps) > s.Keep {
		if err := os.Remove(snaps[0]); err != nil {
			return fmt.Errorf("failed to remove snapshot %s: %w", snaps[0], err)
		}
		snaps = snaps[1:]
	}
	return nil
}

// Restore overwrites path with snap, which must be one of its snapshots
func (s *Snapshots) Restore(path, snap string) error {
	if !belongsTo(path, snap) {
		return fmt.Errorf("%s is not a snapshot of %s", snap, path)
	}
	if err := copySettings(snap, path); err != nil {
		return fmt.Errorf("failed to restore %s: %w", path, err)
	}
	return nil
}

// RestoreLatest rolls path back to its newest snapshot
func (s *Snapshots) RestoreLatest(path string) error {
	snaps, err := s.List(path)
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		return fmt.Errorf("no snapshots of %s", path)
	}
	return s.Restore(path, snaps[len(snaps)-1])
}

// copySettings duplicates a settings file, mode included. Settings files are
// small, so the whole file is read at once.
func copySettings(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	if err := os.WriteFile(dst, data, info.Mode().Perm()); err != nil {
		return err
	}
	// WriteFile leaves the mode of an existing dst alone
	return os.Chmod(dst, info.Mode().Perm())
}
