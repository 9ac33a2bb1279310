package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractMarkedStateNoMarkersReturnsUnchanged(t *testing.T) {
	stdout := "hello\nworld\n"
	state, stripped, found := ExtractMarkedState(stdout)
	assert.False(t, found)
	assert.Nil(t, state)
	assert.Equal(t, stdout, stripped)
}

func TestExtractMarkedStateStripsMarkerLines(t *testing.T) {
	stdout := "42\n" + MarkerBegin + "\n{\"state_val\":42}\n" + MarkerEnd + "\n"
	state, stripped, found := ExtractMarkedState(stdout)
	require.True(t, found)
	assert.JSONEq(t, `{"state_val":42}`, string(state))
	assert.Equal(t, "42\n", stripped)
}

func TestExtractMarkedStateMalformedJSONYieldsNilState(t *testing.T) {
	stdout := MarkerBegin + "\nnot-json\n" + MarkerEnd
	state, _, found := ExtractMarkedState(stdout)
	assert.True(t, found)
	assert.Nil(t, state)
}

func TestExtractMarkedStateMissingEndMarkerIsHandled(t *testing.T) {
	stdout := "before\n" + MarkerBegin + "\nsome output with no end marker\n"
	state, _, found := ExtractMarkedState(stdout)
	assert.True(t, found)
	assert.Nil(t, state)
}
