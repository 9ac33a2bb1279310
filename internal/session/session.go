// Package session manages UUID-identified workspace directories, the
// metadata sidecar, host-side file operations, and workspace pruning by
// age.
package session

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/ifruncillo/llmsandbox/internal/hostfs"
	"github.com/ifruncillo/llmsandbox/internal/logging"
)

// Workspace identifies the host directory backing one sandbox. SessionID
// is empty for a one-shot, ephemeral sandbox.
type Workspace struct {
	SessionID string
	Dir       string
}

// Manager creates, resolves, deletes, and prunes session workspaces under
// a single workspace root.
type Manager struct {
	root   string
	logger *logging.Logger
}

// NewManager returns a Manager rooted at root, creating it if necessary.
// An empty root resolves to hostfs.DefaultWorkspaceRoot().
func NewManager(root string, logger *logging.Logger) (*Manager, error) {
	if root == "" {
		r, err := hostfs.DefaultWorkspaceRoot()
		if err != nil {
			return nil, fmt.Errorf("session: resolving default workspace root: %w", err)
		}
		root = r
	}
	if err := hostfs.EnsureDir(root); err != nil {
		return nil, fmt.Errorf("session: creating workspace root: %w", err)
	}
	if logger == nil {
		logger = logging.Noop()
	}
	return &Manager{root: root, logger: logger}, nil
}

// Root returns the workspace root this manager operates under.
func (m *Manager) Root() string { return m.root }

// CreateSession generates a fresh UUID v4, creates its workspace
// directory, and writes the metadata sidecar with CreatedAt == UpdatedAt.
// A sidecar write failure is logged and swallowed: the session is still
// usable, pruning will simply skip it.
func (m *Manager) CreateSession() (Workspace, error) {
	id := uuid.NewString()
	dir, err := sessionWorkspacePath(m.root, id)
	if err != nil {
		return Workspace{}, err
	}
	if err := hostfs.EnsureDir(dir); err != nil {
		return Workspace{}, fmt.Errorf("session: creating workspace: %w", err)
	}

	now := time.Now().UTC()
	meta := &Metadata{SessionID: id, CreatedAt: now, UpdatedAt: now, Version: metadataSchemaVersion}
	if err := saveMetadata(dir, meta); err != nil {
		m.logger.Warn("session.metadata.write_failed", logging.Fields{"session_id": id, "error": err.Error()})
	} else {
		m.logger.Event(logging.EventMetadataCreated, logging.Fields{"session_id": id})
	}

	m.logger.Event(logging.EventSessionCreated, logging.Fields{"session_id": id, "workspace": dir})
	return Workspace{SessionID: id, Dir: dir}, nil
}

// GetSession resolves (creating if absent) the workspace directory for id.
// Workspace contents are authoritative: if no sidecar exists, GetSession
// does not fabricate one — CreateSession is the only writer of a fresh
// sidecar.
func (m *Manager) GetSession(id string) (Workspace, error) {
	dir, err := sessionWorkspacePath(m.root, id)
	if err != nil {
		return Workspace{}, err
	}
	if err := hostfs.EnsureDir(dir); err != nil {
		return Workspace{}, fmt.Errorf("session: resolving workspace: %w", err)
	}
	m.logger.Event(logging.EventSessionRetrieved, logging.Fields{"session_id": id, "workspace": dir})
	return Workspace{SessionID: id, Dir: dir}, nil
}

// DeleteSession removes the session's workspace tree. Idempotent: a
// missing workspace is not an error.
func (m *Manager) DeleteSession(id string) error {
	dir, err := sessionWorkspacePath(m.root, id)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("session: deleting workspace: %w", err)
	}
	m.logger.Event(logging.EventSessionDeleted, logging.Fields{"session_id": id})
	return nil
}

// NewEphemeralWorkspace creates a one-shot sandbox workspace with no
// session identity and no metadata sidecar. The returned cleanup removes
// the directory; callers that want the artifacts to outlive the sandbox
// simply don't call it.
func (m *Manager) NewEphemeralWorkspace() (Workspace, func(), error) {
	dir, err := os.MkdirTemp(m.root, "ephemeral-*")
	if err != nil {
		return Workspace{}, nil, fmt.Errorf("session: creating ephemeral workspace: %w", err)
	}
	cleanup := func() { _ = os.RemoveAll(dir) }
	return Workspace{Dir: dir}, cleanup, nil
}

// SessionInfo summarizes one session directory for listing.
type SessionInfo struct {
	SessionID string
	Metadata  *Metadata // nil when the sidecar is missing or unparseable
}

// ListSessions enumerates every UUID-named directory under the workspace
// root. Directories that are not valid session UUIDs (stray files, the
// prune lock) are skipped.
func (m *Manager) ListSessions() ([]SessionInfo, error) {
	entries, err := os.ReadDir(m.root)
	if err != nil {
		return nil, fmt.Errorf("session: listing workspace root: %w", err)
	}
	var out []SessionInfo
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := uuid.Parse(entry.Name()); err != nil {
			continue
		}
		dir, err := sessionWorkspacePath(m.root, entry.Name())
		if err != nil {
			continue
		}
		meta, _ := loadMetadata(dir)
		out = append(out, SessionInfo{SessionID: entry.Name(), Metadata: meta})
	}
	return out, nil
}

// Touch refreshes a session's UpdatedAt timestamp. Runtime adapters call
// this once per execute that returns a result on a session-bound sandbox,
// whether or not the guest succeeded. It is a
// no-op, not an error, when the sidecar is missing.
func (m *Manager) Touch(sessionID string) error {
	dir, err := sessionWorkspacePath(m.root, sessionID)
	if err != nil {
		return err
	}
	if err := touchMetadata(dir); err != nil {
		return err
	}
	m.logger.Event(logging.EventMetadataUpdated, logging.Fields{"session_id": sessionID})
	return nil
}
