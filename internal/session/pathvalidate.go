package session

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ValidationError is returned by every session and file operation that
// rejects an unsafe session id or relative path. It never leaks absolute
// host paths.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "session: " + e.Reason }

// validateSessionID rejects any id containing a path separator or a
// parent-directory segment.
func validateSessionID(id string) error {
	if id == "" {
		return &ValidationError{Reason: "invalid session id"}
	}
	if strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return &ValidationError{Reason: "invalid session id"}
	}
	return nil
}

// resolvePath returns the canonical host path for relativePath inside the
// session workspace identified by (workspaceRoot, sessionID), or a
// ValidationError if relativePath would escape it. Absolute relativePath
// is rejected.
func resolvePath(workspaceRoot, sessionID, relativePath string) (string, error) {
	if err := validateSessionID(sessionID); err != nil {
		return "", err
	}
	if relativePath == "" {
		return "", &ValidationError{Reason: "relative path must not be empty"}
	}
	if filepath.IsAbs(relativePath) {
		return "", &ValidationError{Reason: "relative path must not be absolute"}
	}

	sessionRoot := filepath.Join(workspaceRoot, sessionID)
	target := filepath.Join(sessionRoot, relativePath)

	canonicalRoot, err := canonicalize(sessionRoot)
	if err != nil {
		return "", &ValidationError{Reason: "session workspace not found"}
	}
	canonicalTarget, err := canonicalize(target)
	if err != nil {
		// The target need not exist yet (e.g. a write creating a new
		// file); canonicalize its parent directory instead.
		canonicalTarget, err = canonicalizeNonexistent(target)
		if err != nil {
			return "", &ValidationError{Reason: "could not resolve path"}
		}
	}

	if canonicalTarget != canonicalRoot && !strings.HasPrefix(canonicalTarget, canonicalRoot+string(filepath.Separator)) {
		return "", &ValidationError{Reason: "path escapes session workspace"}
	}
	return canonicalTarget, nil
}

func sessionWorkspacePath(workspaceRoot, sessionID string) (string, error) {
	if err := validateSessionID(sessionID); err != nil {
		return "", err
	}
	return filepath.Join(workspaceRoot, sessionID), nil
}

// canonicalize resolves symlinks on an existing path.
func canonicalize(path string) (string, error) {
	return filepath.EvalSymlinks(path)
}

// canonicalizeNonexistent resolves as much of path's ancestry as exists,
// then rejoins the remaining, not-yet-created suffix.
func canonicalizeNonexistent(path string) (string, error) {
	dir, base := filepath.Split(path)
	dir = filepath.Clean(dir)

	resolvedDir, err := filepath.EvalSymlinks(dir)
	if err != nil {
		resolvedDir, err = canonicalizeNonexistent(dir)
		if err != nil {
			return "", fmt.Errorf("resolving %q: %w", path, err)
		}
	}
	return filepath.Join(resolvedDir, base), nil
}
