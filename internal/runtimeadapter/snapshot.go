package runtimeadapter

import (
	"os"
	"path/filepath"
	"time"
)

// snapshotWorkspace maps every relative file path under dir to its
// modification time, excluding excludeFile (the adapter's own source
// file, which always changes and is never itself guest output).
func snapshotWorkspace(dir, excludeFile string) map[string]time.Time {
	snapshot := map[string]time.Time{}
	_ = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(dir, path)
		if relErr != nil || rel == excludeFile {
			return nil
		}
		info, infoErr := d.Info()
		if infoErr != nil {
			return nil
		}
		snapshot[rel] = info.ModTime()
		return nil
	})
	return snapshot
}

// diffSnapshots compares a before/after workspace snapshot and returns
// the paths that appeared (created) and the paths present in both whose
// modification time changed (modified).
func diffSnapshots(before, after map[string]time.Time) (created, modified []string) {
	created = []string{}
	modified = []string{}
	for path, afterTime := range after {
		beforeTime, existed := before[path]
		if !existed {
			created = append(created, path)
			continue
		}
		if !afterTime.Equal(beforeTime) {
			modified = append(modified, path)
		}
	}
	return created, modified
}
