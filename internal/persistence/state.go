// Package persistence implements the two state-carrying strategies that
// let a session-bound sandbox remember values across separate execute
// calls: a file written and read by code injected into the guest, and a
// marker-delimited region of stdout parsed by the host. Both strategies
// share one contract: state is JSON-only, cross-runtime state sharing is
// never assumed, and a corrupted state file is treated as empty rather
// than crashing execution.
package persistence

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// StateFileName is the workspace-relative sidecar both strategies read
// from and write to.
const StateFileName = ".session_state.json"

// LoadStateFile reads the state sidecar from workspaceDir. A missing file
// is reported as (nil, true): no state yet, not corrupted. An unparseable
// file is reported as (nil, false) so the caller can emit a warning event
// and proceed with empty state instead of failing the execution.
func LoadStateFile(workspaceDir string) (json.RawMessage, bool) {
	b, err := os.ReadFile(filepath.Join(workspaceDir, StateFileName))
	if err != nil {
		return nil, true
	}
	if !json.Valid(b) {
		return nil, false
	}
	return json.RawMessage(b), true
}

// SaveStateFile writes raw atomically: to a temp file in the same
// directory, then renamed into place, so a crash mid-write never leaves a
// half-written sidecar for the next execute to trip over.
func SaveStateFile(workspaceDir string, raw json.RawMessage) error {
	if raw == nil {
		raw = json.RawMessage("{}")
	}
	tmp := filepath.Join(workspaceDir, "."+StateFileName+"."+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, filepath.Join(workspaceDir, StateFileName))
}
