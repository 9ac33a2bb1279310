package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSessionIDRejectsTraversal(t *testing.T) {
	cases := []string{"", "../escape", "a/b", `a\b`, "..", "foo/../bar"}
	for _, c := range cases {
		assert.Error(t, validateSessionID(c), c)
	}
	assert.NoError(t, validateSessionID("3fae9c1e-1234-4a21-9f3e-abcdef012345"))
}

func TestResolvePathRejectsEscape(t *testing.T) {
	root := t.TempDir()
	id := "3fae9c1e-1234-4a21-9f3e-abcdef012345"
	require.NoError(t, os.MkdirAll(filepath.Join(root, id), 0o700))

	_, err := resolvePath(root, id, "../../etc/passwd")
	assert.Error(t, err)

	_, err = resolvePath(root, id, "/etc/passwd")
	assert.Error(t, err)

	target, err := resolvePath(root, id, "notes.txt")
	require.NoError(t, err)
	assert.True(t, filepath.Base(target) == "notes.txt")
}

func TestResolvePathAllowsNestedNonexistentFile(t *testing.T) {
	root := t.TempDir()
	id := "3fae9c1e-1234-4a21-9f3e-abcdef012345"
	require.NoError(t, os.MkdirAll(filepath.Join(root, id, "sub"), 0o700))

	target, err := resolvePath(root, id, "sub/new.txt")
	require.NoError(t, err)
	assert.Contains(t, target, "new.txt")
}

