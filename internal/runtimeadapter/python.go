package runtimeadapter

import (
	"fmt"

	"github.com/ifruncillo/llmsandbox/internal/persistence"
	"github.com/ifruncillo/llmsandbox/pkg/result"
)

const pythonFilename = "user_code.py"

var pythonFailureTokens = []string{"error", "exception", "outoffuel"}

type pythonAdapter struct{}

func (pythonAdapter) Runtime() result.RuntimeType { return result.Python }
func (pythonAdapter) Filename() string            { return pythonFilename }

func (pythonAdapter) Argv(guestMountPath string) []string {
	return []string{"python", guestMountPath + "/" + pythonFilename}
}

func (pythonAdapter) SetupPrologue(guestDataPath string) string {
	return fmt.Sprintf("import sys\nsys.path.insert(0, %q)\n", guestDataPath+"/site-packages")
}

func (pythonAdapter) FailureTokens() []string { return pythonFailureTokens }

// WrapPersistence ignores existingState: the Python strategy is
// file-based, so the injected prologue reads guestStatePath itself rather
// than having the host embed the contents inline.
func (pythonAdapter) WrapPersistence(code string, existingState []byte, guestStatePath string) string {
	return persistence.PythonPrologue(guestStatePath) + code + persistence.PythonEpilogue(guestStatePath)
}

// ExtractState is a no-op for the file-based strategy: the epilogue wrote
// the new state directly to the workspace, there's nothing to pull out of
// stdout.
func (pythonAdapter) ExtractState(stdout string) (newState []byte, strippedStdout string, failed bool) {
	return nil, stdout, false
}

func (pythonAdapter) ValidateCode(code string) bool {
	return balancedBrackets(code, map[rune]rune{')': '(', ']': '[', '}': '{'})
}
