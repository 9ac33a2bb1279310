package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadFileRoundTrip(t *testing.T) {
	m := newTestManager(t)
	ws, err := m.CreateSession()
	require.NoError(t, err)

	require.NoError(t, m.WriteFile(ws.SessionID, "out/result.txt", []byte("hello"), false))
	b, err := m.ReadFile(ws.SessionID, "out/result.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(b))
}

func TestWriteFileRefusesOverwriteUnlessRequested(t *testing.T) {
	m := newTestManager(t)
	ws, err := m.CreateSession()
	require.NoError(t, err)

	require.NoError(t, m.WriteFile(ws.SessionID, "a.txt", []byte("one"), false))
	err = m.WriteFile(ws.SessionID, "a.txt", []byte("two"), false)
	assert.Error(t, err)

	require.NoError(t, m.WriteFile(ws.SessionID, "a.txt", []byte("two"), true))
	b, err := m.ReadFile(ws.SessionID, "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "two", string(b))
}

func TestReadFileMissingReturnsFileNotFoundError(t *testing.T) {
	m := newTestManager(t)
	ws, err := m.CreateSession()
	require.NoError(t, err)

	_, err = m.ReadFile(ws.SessionID, "missing.txt")
	assert.IsType(t, &FileNotFoundError{}, err)
}

func TestListFilesHidesSidecars(t *testing.T) {
	m := newTestManager(t)
	ws, err := m.CreateSession()
	require.NoError(t, err)
	require.NoError(t, m.WriteFile(ws.SessionID, "visible.txt", []byte("x"), false))

	files, err := m.ListFiles(ws.SessionID, "")
	require.NoError(t, err)
	assert.Contains(t, files, "visible.txt")
	assert.NotContains(t, files, metadataFilename)
	assert.NotContains(t, files, sessionStateFilename)
}

func TestListFilesMatchesGlob(t *testing.T) {
	m := newTestManager(t)
	ws, err := m.CreateSession()
	require.NoError(t, err)
	require.NoError(t, m.WriteFile(ws.SessionID, "a.py", []byte("x"), false))
	require.NoError(t, m.WriteFile(ws.SessionID, "b.txt", []byte("x"), false))

	files, err := m.ListFiles(ws.SessionID, "*.py")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.py"}, files)
}

func TestDeletePathRequiresRecursiveForDirectories(t *testing.T) {
	m := newTestManager(t)
	ws, err := m.CreateSession()
	require.NoError(t, err)
	require.NoError(t, m.WriteFile(ws.SessionID, "dir/a.txt", []byte("x"), false))

	err = m.DeletePath(ws.SessionID, "dir", false)
	assert.Error(t, err)

	require.NoError(t, m.DeletePath(ws.SessionID, "dir", true))
	_, err = m.ReadFile(ws.SessionID, "dir/a.txt")
	assert.Error(t, err)
}

func TestDeletePathMissingIsFileNotFoundError(t *testing.T) {
	m := newTestManager(t)
	ws, err := m.CreateSession()
	require.NoError(t, err)

	err = m.DeletePath(ws.SessionID, "nope.txt", false)
	assert.IsType(t, &FileNotFoundError{}, err)
}
