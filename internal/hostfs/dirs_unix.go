//go:build !windows

package hostfs

import (
	"os"
	"path/filepath"
)

// baseDir resolves ~/.llmsandbox for non-Windows hosts.
func baseDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".llmsandbox"), nil
}

// dirPerm keeps session workspaces private to the host's own user.
func dirPerm() os.FileMode {
	return 0o700
}
