package hostwasm

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ifruncillo/llmsandbox/pkg/result"
)

// Manifest maps a runtime type to the interpreter binary's expected path
// and checksum. It adds an integrity check performed before the binary is
// ever compiled or instantiated — no network fetch is involved; the
// manifest only guards against a corrupted or tampered binary already
// present on disk.
type Manifest struct {
	Entries map[result.RuntimeType]ManifestEntry `json:"entries"`
}

// ManifestEntry is one runtime's expected interpreter binary.
type ManifestEntry struct {
	Path   string `json:"path"`
	SHA256 string `json:"sha256"`
}

// LoadManifest reads a manifest JSON file. A missing path is not an error:
// callers that don't configure a manifest simply skip the integrity check.
func LoadManifest(path string) (*Manifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("hostwasm: reading manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("hostwasm: parsing manifest: %w", err)
	}
	return &m, nil
}

// verifyBinary checks wasmBytes against the manifest entry for runtime, if
// a manifest was supplied. Mismatch is a *RuntimeError — a configuration
// failure surfaced before any guest code runs, same class as a missing
// binary.
func verifyBinary(manifest *Manifest, runtime result.RuntimeType, wasmPath string, wasmBytes []byte) error {
	if manifest == nil {
		return nil
	}
	entry, ok := manifest.Entries[runtime]
	if !ok || entry.SHA256 == "" {
		return nil
	}
	sum := sha256.Sum256(wasmBytes)
	actual := hex.EncodeToString(sum[:])
	if actual != entry.SHA256 {
		return &RuntimeError{
			Path:    wasmPath,
			Message: fmt.Sprintf("checksum mismatch: expected %s, got %s", entry.SHA256, actual),
		}
	}
	return nil
}
