package session

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ifruncillo/llmsandbox/internal/logging"
)

// hiddenFiles are never surfaced by ListFiles: the sidecar and the
// file-backed state both begin with a dot and are maintained only by the
// host.
var hiddenFiles = map[string]bool{
	metadataFilename:     true,
	sessionStateFilename: true,
}

// ListFiles returns every relative path under the session workspace that
// matches pattern (a filepath.Match glob; empty matches everything),
// excluding host-maintained sidecars.
func (m *Manager) ListFiles(sessionID, pattern string) ([]string, error) {
	dir, err := sessionWorkspacePath(m.root, sessionID)
	if err != nil {
		return nil, err
	}
	var out []string
	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			return relErr
		}
		if hiddenFiles[filepath.Base(rel)] {
			return nil
		}
		if pattern != "" {
			matched, matchErr := filepath.Match(pattern, rel)
			if matchErr != nil {
				return matchErr
			}
			if !matched {
				return nil
			}
		}
		out = append(out, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("session: listing files: %w", err)
	}
	m.logger.Event(logging.EventFileListed, logging.Fields{"session_id": sessionID, "count": len(out)})
	return out, nil
}

// ReadFile returns the contents of relPath inside the session workspace.
// A missing file is reported as a FileNotFound error, not swallowed.
func (m *Manager) ReadFile(sessionID, relPath string) ([]byte, error) {
	target, err := resolvePath(m.root, sessionID, relPath)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(target)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &FileNotFoundError{Path: relPath}
		}
		return nil, fmt.Errorf("session: reading file: %w", err)
	}
	m.logger.Event(logging.EventFileRead, logging.Fields{"session_id": sessionID, "path": relPath, "bytes": len(b)})
	return b, nil
}

// WriteFile writes data to relPath. If the target exists and overwrite is
// false, the write fails.
func (m *Manager) WriteFile(sessionID, relPath string, data []byte, overwrite bool) error {
	target, err := resolvePath(m.root, sessionID, relPath)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, statErr := os.Stat(target); statErr == nil {
			return &ValidationError{Reason: "target exists and overwrite is false"}
		}
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o700); err != nil {
		return fmt.Errorf("session: creating parent directory: %w", err)
	}
	if err := os.WriteFile(target, data, 0o600); err != nil {
		return fmt.Errorf("session: writing file: %w", err)
	}
	m.logger.Event(logging.EventFileWritten, logging.Fields{"session_id": sessionID, "path": relPath, "bytes": len(data)})
	return nil
}

// DeletePath removes relPath. Directory deletion requires recursive=true.
// Deleting a missing path is a FileNotFoundError, never silently ignored.
func (m *Manager) DeletePath(sessionID, relPath string, recursive bool) error {
	target, err := resolvePath(m.root, sessionID, relPath)
	if err != nil {
		return err
	}
	info, statErr := os.Stat(target)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			return &FileNotFoundError{Path: relPath}
		}
		return fmt.Errorf("session: stat: %w", statErr)
	}
	if info.IsDir() {
		if !recursive {
			return &ValidationError{Reason: "directory deletion requires recursive=true"}
		}
		if err := os.RemoveAll(target); err != nil {
			return fmt.Errorf("session: deleting directory: %w", err)
		}
	} else if err := os.Remove(target); err != nil {
		return fmt.Errorf("session: deleting file: %w", err)
	}
	m.logger.Event(logging.EventFileDeleted, logging.Fields{"session_id": sessionID, "path": relPath, "recursive": recursive})
	return nil
}

// FileNotFoundError is raised by DeletePath/ReadFile when the target does
// not exist; it is never silently swallowed.
type FileNotFoundError struct {
	Path string
}

func (e *FileNotFoundError) Error() string { return fmt.Sprintf("session: not found: %s", e.Path) }
