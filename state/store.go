// state/store.go
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/n4vhf/callbook/models"
)

// Store keeps one JSON state record per import job under dir, plus a flat
// marker copy at markerPath. The marker is a fallback source of prior
// state and a human-glanceable freshness file; the record under dir is
// canonical.
type Store struct {
	dir        string
	markerPath string
}

func NewStore(dir, markerPath string) *Store {
	return &Store{dir: dir, markerPath: markerPath}
}

func (s *Store) recordPath(job string) string {
	return filepath.Join(s.dir, job+".json")
}

// Load returns the prior state for a job. A missing record is not an
// error: the marker is consulted next, and failing that the zero state is
// returned so first runs start clean.
func (s *Store) Load(job string) (models.SourceState, error) {
	rec, err := readRecord(s.recordPath(job))
	if err == nil && rec != (models.SourceState{}) {
		return rec, nil
	}
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return models.SourceState{}, fmt.Errorf("failed to read state record for %s: %w", job, err)
	}

	// Canonical record absent or empty; fall back to the marker.
	rec, err = readRecord(s.markerPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return models.SourceState{}, nil
		}
		return models.SourceState{}, fmt.Errorf("failed to read marker file: %w", err)
	}
	return rec, nil
}

// Save persists the record for a job: canonical copy first, marker copy
// second. Both are written via temp-file-plus-rename so a concurrent
// reader never sees a torn write. A marker failure is logged but does not
// fail the save; the canonical record already landed.
func (s *Store) Save(job string, rec models.SourceState) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create state dir %s: %w", s.dir, err)
	}
	if err := writeRecord(s.recordPath(job), rec); err != nil {
		return fmt.Errorf("failed to write state record for %s: %w", job, err)
	}
	if s.markerPath == "" {
		return nil
	}
	if err := writeRecord(s.markerPath, rec); err != nil {
		log.Printf("WARN State: failed to write marker file %s: %v", s.markerPath, err)
	}
	return nil
}

func readRecord(path string) (models.SourceState, error) {
	var rec models.SourceState
	data, err := os.ReadFile(path)
	if err != nil {
		return rec, err
	}
	if len(data) == 0 {
		return rec, nil
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return models.SourceState{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return rec, nil
}

func writeRecord(path string, rec models.SourceState) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	// Temp file in the destination directory so the rename stays on one
	// filesystem and is atomic.
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}

// Merge combines the prior record with updates from the run that just
// finished. Precedence: a fresh value wins only when it is non-empty.
// The last_run_* fields describe the most recent attempt and are always
// taken from fresh, including an empty skip reason. LocalDataUpdatedAt
// never moves backward.
func Merge(prior, fresh models.SourceState) models.SourceState {
	next := prior

	next.LastRunStartedAt = fresh.LastRunStartedAt
	next.LastRunFinishedAt = fresh.LastRunFinishedAt
	next.LastRunResult = fresh.LastRunResult
	next.LastRunSkipReason = fresh.LastRunSkipReason

	if fresh.LocalDataUpdatedAt != nil {
		if prior.LocalDataUpdatedAt == nil || fresh.LocalDataUpdatedAt.After(*prior.LocalDataUpdatedAt) {
			next.LocalDataUpdatedAt = fresh.LocalDataUpdatedAt
		}
	}

	if fresh.SourceURL != "" {
		next.SourceURL = fresh.SourceURL
	}
	if fresh.SourceETag != "" {
		next.SourceETag = fresh.SourceETag
	}
	if fresh.SourceLastModified != "" {
		next.SourceLastModified = fresh.SourceLastModified
	}
	if fresh.SourceZipSHA256 != "" {
		next.SourceZipSHA256 = fresh.SourceZipSHA256
	}
	if fresh.SourceZipBytes > 0 {
		next.SourceZipBytes = fresh.SourceZipBytes
	}

	return next
}
