package persistence

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadStateFileMissingIsEmptyNotCorrupted(t *testing.T) {
	dir := t.TempDir()
	raw, valid := LoadStateFile(dir)
	assert.Nil(t, raw)
	assert.True(t, valid)
}

func TestLoadStateFileCorruptIsReportedInvalid(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, StateFileName), []byte("{not json"), 0o600))

	raw, valid := LoadStateFile(dir)
	assert.Nil(t, raw)
	assert.False(t, valid)
}

func TestSaveThenLoadStateFileRoundTrips(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, SaveStateFile(dir, []byte(`{"counter":3}`)))

	raw, valid := LoadStateFile(dir)
	require.True(t, valid)
	assert.JSONEq(t, `{"counter":3}`, string(raw))
}

func TestSaveStateFileNilWritesEmptyObject(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, SaveStateFile(dir, nil))

	raw, valid := LoadStateFile(dir)
	require.True(t, valid)
	assert.JSONEq(t, `{}`, string(raw))
}
