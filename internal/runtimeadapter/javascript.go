package runtimeadapter

import (
	"fmt"

	"github.com/ifruncillo/llmsandbox/internal/persistence"
	"github.com/ifruncillo/llmsandbox/pkg/result"
)

const javascriptFilename = "user_code.js"

var javascriptFailureTokens = []string{
	"error", "exception", "outoffuel", "referenceerror", "typeerror", "syntaxerror",
}

type javascriptAdapter struct{}

func (javascriptAdapter) Runtime() result.RuntimeType { return result.JavaScript }
func (javascriptAdapter) Filename() string            { return javascriptFilename }

func (javascriptAdapter) Argv(guestMountPath string) []string {
	return []string{"qjs", "--std", guestMountPath + "/" + javascriptFilename}
}

func (javascriptAdapter) SetupPrologue(guestDataPath string) string {
	return fmt.Sprintf(`
function requireVendor(name) {
  const src = std.loadFile(%q + "/vendor/" + name + ".js");
  const module = { exports: {} };
  (new Function("module", "exports", src))(module, module.exports);
  return module.exports;
}
function readText(path) { return std.loadFile(path); }
function writeText(path, data) { const f = std.open(path, "w"); f.puts(data); f.close(); }
function readJson(path) { return JSON.parse(readText(path)); }
function writeJson(path, value) { writeText(path, JSON.stringify(value)); }
function fileExists(path) { const f = std.open(path, "r"); if (f) { f.close(); return true; } return false; }
function listFiles(path) { return os.readdir(path)[0]; }
`, guestDataPath)
}

func (javascriptAdapter) FailureTokens() []string { return javascriptFailureTokens }

// WrapPersistence uses the stdout-marker strategy: existingState is
// embedded as a JSON literal in the prologue, and the epilogue prints the
// new state between markers for the host to parse back out of stdout.
func (javascriptAdapter) WrapPersistence(code string, existingState []byte, guestStatePath string) string {
	return persistence.JavaScriptPrologue(existingState) + code + persistence.JavaScriptEpilogue()
}

func (javascriptAdapter) ExtractState(stdout string) (newState []byte, strippedStdout string, failed bool) {
	state, stripped, found := persistence.ExtractMarkedState(stdout)
	if !found {
		return nil, stdout, false
	}
	if state == nil {
		return nil, stripped, true
	}
	return state, stripped, false
}

func (javascriptAdapter) ValidateCode(code string) bool {
	return balancedBrackets(code, map[rune]rune{')': '(', ']': '[', '}': '{'})
}
