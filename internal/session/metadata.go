package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bytedance/sonic"
)

const (
	metadataFilename     = ".metadata.json"
	sessionStateFilename = ".session_state.json"
	metadataSchemaVersion = 1
)

// Metadata is the per-session sidecar tracking when a workspace was
// created and last touched. It begins with a dot and is never returned by
// host-facing file-listing operations.
type Metadata struct {
	SessionID string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int       `json:"version"`
}

// saveMetadata writes the sidecar: marshal, then write with private
// permissions. One sidecar exists per session workspace.
func saveMetadata(sessionDir string, m *Metadata) error {
	b, err := sonic.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("session: marshaling metadata: %w", err)
	}
	path := filepath.Join(sessionDir, metadataFilename)
	return os.WriteFile(path, b, 0o600)
}

// loadMetadata reads the sidecar. A missing or unparseable sidecar is
// reported distinctly so prune can treat it as "skip, never delete".
func loadMetadata(sessionDir string) (*Metadata, error) {
	path := filepath.Join(sessionDir, metadataFilename)
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Metadata
	if err := sonic.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("session: parsing metadata: %w", err)
	}
	return &m, nil
}

// touchMetadata refreshes UpdatedAt after an execute. The result
// is always >= the previous UpdatedAt and >= CreatedAt.
func touchMetadata(sessionDir string) error {
	m, err := loadMetadata(sessionDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	m.UpdatedAt = time.Now().UTC()
	return saveMetadata(sessionDir, m)
}
