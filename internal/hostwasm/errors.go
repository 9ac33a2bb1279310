package hostwasm

import "fmt"

// RuntimeError reports a configuration failure discovered before the guest
// ever runs: a missing WASM binary or a failed integrity check. No
// result.SandboxResult is produced for this class of failure.
type RuntimeError struct {
	Path    string
	Message string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("hostwasm: %s: %s", e.Path, e.Message)
}

// SandboxExecutionError reports that the host could not even set up the
// sandbox (e.g. memory limiting unavailable in the linked wasmtime
// bindings). Also surfaced before guest execution.
type SandboxExecutionError struct {
	Message string
}

func (e *SandboxExecutionError) Error() string {
	return "hostwasm: " + e.Message
}
