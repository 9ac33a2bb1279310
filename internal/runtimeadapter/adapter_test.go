package runtimeadapter

import (
	"testing"

	"github.com/ifruncillo/llmsandbox/pkg/result"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForRuntimeReturnsAdapterPerRuntime(t *testing.T) {
	py := ForRuntime(result.Python)
	require.NotNil(t, py)
	assert.Equal(t, result.Python, py.Runtime())
	assert.Equal(t, "user_code.py", py.Filename())
	assert.Equal(t, []string{"python", "/app/user_code.py"}, py.Argv("/app"))

	js := ForRuntime(result.JavaScript)
	require.NotNil(t, js)
	assert.Equal(t, result.JavaScript, js.Runtime())
	assert.Equal(t, "user_code.js", js.Filename())
	assert.Equal(t, []string{"qjs", "--std", "/app/user_code.js"}, js.Argv("/app"))
}

func TestForRuntimeUnknownReturnsNil(t *testing.T) {
	assert.Nil(t, ForRuntime(result.RuntimeType("RUBY")))
}

func TestPythonFailureTokensIncludeOutOfFuel(t *testing.T) {
	assert.Contains(t, pythonAdapter{}.FailureTokens(), "outoffuel")
}

func TestJavaScriptExtractStateNoMarkersIsNotFailure(t *testing.T) {
	newState, stripped, failed := javascriptAdapter{}.ExtractState("plain output\n")
	assert.Nil(t, newState)
	assert.Equal(t, "plain output\n", stripped)
	assert.False(t, failed)
}

func TestPythonExtractStateIsAlwaysNoop(t *testing.T) {
	newState, stripped, failed := pythonAdapter{}.ExtractState("some stdout")
	assert.Nil(t, newState)
	assert.Equal(t, "some stdout", stripped)
	assert.False(t, failed)
}

func TestContainsAnyTokenIsCaseInsensitive(t *testing.T) {
	assert.True(t, containsAnyToken("Traceback: OutOfFuel raised", []string{"outoffuel"}))
	assert.False(t, containsAnyToken("all good", []string{"error", "exception"}))
}
