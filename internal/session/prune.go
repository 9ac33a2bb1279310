package session

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/ifruncillo/llmsandbox/internal/logging"
)

const pruneLockFilename = ".prune.lock"

// PruneResult is the outcome of one Prune call.
type PruneResult struct {
	DeletedSessions []string
	SkippedSessions []string
	ReclaimedBytes  uint64
	Errors          map[string]string
	DryRun          bool
}

// PruneLockedError means another Prune call already holds the advisory
// lock on this workspace root. Prune is made concurrency-safe via a lock
// file, at the cost of a second concurrent prune failing outright rather
// than waiting.
type PruneLockedError struct{}

func (e *PruneLockedError) Error() string { return "session: prune already running for this workspace root" }

// Prune deletes every session whose metadata sidecar's UpdatedAt is at
// least olderThanHours in the past. Sessions with no parseable sidecar are
// never deleted — they are always reported under SkippedSessions. In
// dryRun mode the filesystem is left untouched but the same
// DeletedSessions list that a live run would produce is returned.
func (m *Manager) Prune(olderThanHours float64, dryRun bool) (*PruneResult, error) {
	lock := flock.New(filepath.Join(m.root, pruneLockFilename))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("session: acquiring prune lock: %w", err)
	}
	if !locked {
		return nil, &PruneLockedError{}
	}
	defer lock.Unlock()

	m.logger.Event(logging.EventPruneStarted, logging.Fields{"older_than_hours": olderThanHours, "dry_run": dryRun})

	result := &PruneResult{Errors: map[string]string{}, DryRun: dryRun}

	entries, err := os.ReadDir(m.root)
	if err != nil {
		return nil, fmt.Errorf("session: listing workspace root: %w", err)
	}

	now := time.Now().UTC()
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if _, err := uuid.Parse(name); err != nil {
			continue // not a session directory; skip silently
		}

		dir := filepath.Join(m.root, name)
		meta, err := loadMetadata(dir)
		if err != nil {
			result.SkippedSessions = append(result.SkippedSessions, name)
			m.logger.Event(logging.EventPruneSkipped, logging.Fields{"session_id": name, "reason": "unparseable metadata"})
			continue
		}

		ageHours := now.Sub(meta.UpdatedAt).Hours()
		if ageHours < olderThanHours {
			continue
		}

		size := dirSize(dir)
		m.logger.Event(logging.EventPruneCandidate, logging.Fields{
			"session_id": name, "age_hours": ageHours, "size": humanize.Bytes(size),
		})

		if dryRun {
			result.DeletedSessions = append(result.DeletedSessions, name)
			result.ReclaimedBytes += size
			continue
		}

		if err := os.RemoveAll(dir); err != nil {
			result.Errors[name] = err.Error()
			continue
		}
		result.DeletedSessions = append(result.DeletedSessions, name)
		result.ReclaimedBytes += size
		m.logger.Event(logging.EventPruneDeleted, logging.Fields{"session_id": name, "size": humanize.Bytes(size)})
	}

	m.logger.Event(logging.EventPruneCompleted, logging.Fields{
		"deleted": len(result.DeletedSessions),
		"skipped": len(result.SkippedSessions),
		"errors":  len(result.Errors),
		"reclaimed": humanize.Bytes(result.ReclaimedBytes),
	})
	return result, nil
}

func dirSize(root string) uint64 {
	var total uint64
	_ = filepath.WalkDir(root, func(_ string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		info, infoErr := d.Info()
		if infoErr != nil {
			return nil
		}
		total += uint64(info.Size())
		return nil
	})
	return total
}
