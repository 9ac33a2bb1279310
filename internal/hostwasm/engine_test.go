package hostwasm

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ifruncillo/llmsandbox/pkg/result"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyTrapMessage(t *testing.T) {
	cases := map[string]result.TrapReason{
		"all fuel consumed by WebAssembly code: OutOfFuel": result.TrapOutOfFuel,
		"out of fuel":                result.TrapOutOfFuel,
		"wasm trap: memory fault":    result.TrapMemoryLimit,
		"out of bounds memory access": result.TrapMemoryLimit,
		"host function returned an error": result.TrapHostError,
		"unreachable":                 result.TrapOther,
	}
	for msg, want := range cases {
		assert.Equal(t, want, classifyTrapMessage(msg), msg)
	}
}

func TestReadCappedNoTruncation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.log")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o600))

	got, truncated, err := readCapped(path, 1024)
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
	assert.False(t, truncated)
}

func TestReadCappedTruncates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.log")
	require.NoError(t, os.WriteFile(path, []byte("0123456789"), 0o600))

	got, truncated, err := readCapped(path, 4)
	require.NoError(t, err)
	assert.Equal(t, "0123", got)
	assert.True(t, truncated)
}

func TestReadCappedMissingFile(t *testing.T) {
	got, truncated, err := readCapped(filepath.Join(t.TempDir(), "missing.log"), 10)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.False(t, truncated)
}

func TestSplitEnv(t *testing.T) {
	names, values := splitEnv(map[string]string{"A": "1"})
	require.Len(t, names, 1)
	require.Len(t, values, 1)
	assert.Equal(t, "A", names[0])
	assert.Equal(t, "1", values[0])
}

func TestAppendLineAndCapString(t *testing.T) {
	s := appendLine("existing", "notice")
	assert.Equal(t, "existing\nnotice\n", s)

	capped, truncated := capString("0123456789", 4)
	assert.True(t, truncated)
	assert.Equal(t, "0123", capped)
}
