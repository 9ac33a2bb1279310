package persistence

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPythonPrologueReferencesStatePathAndBlacklist(t *testing.T) {
	src := PythonPrologue("/workspace/.session_state.json")
	assert.Contains(t, src, "/workspace/.session_state.json")
	assert.Contains(t, src, "__builtins__")
	assert.Contains(t, src, "FileNotFoundError")
}

func TestPythonEpilogueWritesBackToStatePath(t *testing.T) {
	src := PythonEpilogue("/workspace/.session_state.json")
	assert.Contains(t, src, "/workspace/.session_state.json")
	assert.Contains(t, src, "_sandbox_json.dump")
}

func TestJavaScriptPrologueEmbedsExistingState(t *testing.T) {
	src := JavaScriptPrologue([]byte(`{"state_val":41}`))
	assert.Contains(t, src, `{"state_val":41}`)
	assert.Contains(t, src, "__sandboxBaselineKeys")
}

func TestJavaScriptPrologueFallsBackToEmptyObject(t *testing.T) {
	src := JavaScriptPrologue(nil)
	assert.True(t, strings.Contains(src, "const __sandboxExistingState = {};"))
}

func TestJavaScriptEpilogueEmitsMarkers(t *testing.T) {
	src := JavaScriptEpilogue()
	assert.Contains(t, src, MarkerBegin)
	assert.Contains(t, src, MarkerEnd)
}
