package session

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ageSession(t *testing.T, m *Manager, sessionID string, age time.Duration) {
	t.Helper()
	dir, err := sessionWorkspacePath(m.root, sessionID)
	require.NoError(t, err)
	meta, err := loadMetadata(dir)
	require.NoError(t, err)
	meta.UpdatedAt = time.Now().UTC().Add(-age)
	require.NoError(t, saveMetadata(dir, meta))
}

func TestPruneDeletesOnlyOldSessions(t *testing.T) {
	m := newTestManager(t)

	oldWs, err := m.CreateSession()
	require.NoError(t, err)
	ageSession(t, m, oldWs.SessionID, 48*time.Hour)

	freshWs, err := m.CreateSession()
	require.NoError(t, err)

	result, err := m.Prune(24, false)
	require.NoError(t, err)
	assert.Contains(t, result.DeletedSessions, oldWs.SessionID)
	assert.NotContains(t, result.DeletedSessions, freshWs.SessionID)

	_, statErr := os.Stat(oldWs.Dir)
	assert.True(t, os.IsNotExist(statErr))
	_, statErr = os.Stat(freshWs.Dir)
	assert.NoError(t, statErr)
}

func TestPruneDryRunLeavesFilesystemUntouched(t *testing.T) {
	m := newTestManager(t)
	ws, err := m.CreateSession()
	require.NoError(t, err)
	ageSession(t, m, ws.SessionID, 48*time.Hour)

	result, err := m.Prune(24, true)
	require.NoError(t, err)
	assert.Contains(t, result.DeletedSessions, ws.SessionID)

	_, statErr := os.Stat(ws.Dir)
	assert.NoError(t, statErr)
}

func TestPruneSkipsDirectoriesWithoutParseableMetadata(t *testing.T) {
	m := newTestManager(t)
	ws, err := m.CreateSession()
	require.NoError(t, err)
	require.NoError(t, os.Remove(ws.Dir+"/"+metadataFilename))

	result, err := m.Prune(0, false)
	require.NoError(t, err)
	assert.Contains(t, result.SkippedSessions, ws.SessionID)
	assert.NotContains(t, result.DeletedSessions, ws.SessionID)

	_, statErr := os.Stat(ws.Dir)
	assert.NoError(t, statErr)
}

func TestPruneIgnoresNonUUIDDirectories(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, os.MkdirAll(m.root+"/not-a-session", 0o700))

	result, err := m.Prune(0, false)
	require.NoError(t, err)
	assert.Empty(t, result.DeletedSessions)
	assert.Empty(t, result.SkippedSessions)
}
