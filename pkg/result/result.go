// Package result defines the typed outcome of one sandbox execution and the
// enumerations used to describe it.
package result

import (
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/ifruncillo/llmsandbox/pkg/policy"
)

// RuntimeType identifies which interpreter adapter produced a result.
type RuntimeType string

const (
	Python     RuntimeType = "PYTHON"
	JavaScript RuntimeType = "JAVASCRIPT"
)

// TrapReason classifies an abnormal guest termination.
type TrapReason string

const (
	TrapOutOfFuel    TrapReason = "out_of_fuel"
	TrapMemoryLimit  TrapReason = "memory_limit"
	TrapProcExit     TrapReason = "proc_exit"
	TrapHostError    TrapReason = "host_error"
	TrapOther        TrapReason = "other"
	TrapReasonAbsent TrapReason = ""
)

// ErrorKind is the actionable failure classification attached to
// metadata[MetaKeyErrorGuidance].
type ErrorKind string

const (
	ErrOutOfFuel               ErrorKind = "OutOfFuel"
	ErrPathRestriction         ErrorKind = "PathRestriction"
	ErrMemoryExhausted         ErrorKind = "MemoryExhausted"
	ErrMissingVendoredPackage  ErrorKind = "MissingVendoredPackage"
	ErrQuickJSTupleDestructure ErrorKind = "QuickJSTupleDestructuring"
	ErrInvalidSessionState     ErrorKind = "InvalidSessionState"
	ErrGeneric                 ErrorKind = "Generic"
)

// Reserved metadata keys.
const (
	MetaKeyRuntime           = "runtime"
	MetaKeyFuelBudget        = "fuel_budget"
	MetaKeyMemoryLimitBytes  = "memory_limit_bytes"
	MetaKeyMemoryPages       = "memory_pages"
	MetaKeyStdoutTruncated   = "stdout_truncated"
	MetaKeyStderrTruncated   = "stderr_truncated"
	MetaKeyExitCode          = "exit_code"
	MetaKeyTrapped           = "trapped"
	MetaKeyTrapReason        = "trap_reason"
	MetaKeyTrapMessage       = "trap_message"
	MetaKeySessionID         = "session_id"
	MetaKeyLogsDir           = "logs_dir"
	MetaKeyErrorGuidance     = "error_guidance"
	MetaKeyFuelAnalysis      = "fuel_analysis"
)

// SandboxResult is the typed, self-contained outcome of one execute call.
// Once produced it holds no reference to live WASM or host resources.
type SandboxResult struct {
	Success        bool           `json:"success"`
	Stdout         string         `json:"stdout"`
	Stderr         string         `json:"stderr"`
	ExitCode       int            `json:"exit_code"`
	DurationMs     int64          `json:"duration_ms"`
	FuelConsumed   *uint64        `json:"fuel_consumed,omitempty"`
	MemoryUsedBytes uint64        `json:"memory_used_bytes"`
	FilesCreated   []string       `json:"files_created"`
	FilesModified  []string       `json:"files_modified"`
	WorkspacePath  string         `json:"workspace_path"`
	Metadata       map[string]any `json:"metadata"`
}

// New constructs a SandboxResult with its required invariants satisfied:
// FilesCreated/FilesModified are never nil (they serialize as `[]`, not
// `null`) and Metadata is never nil.
func New() *SandboxResult {
	return &SandboxResult{
		FilesCreated:  []string{},
		FilesModified: []string{},
		Metadata:      map[string]any{},
	}
}

// Validate enforces the two invariants every consumer of a result relies
// on: a trapped result can never report success, and fuel consumed (when
// known) cannot exceed the budget that produced it.
func (r *SandboxResult) Validate() error {
	if trapped, _ := r.Metadata[MetaKeyTrapped].(bool); trapped && r.Success {
		return &policy.ValidationError{Cause: fmt.Errorf("result: trapped result cannot report success")}
	}
	if r.FuelConsumed != nil {
		if budget, ok := r.Metadata[MetaKeyFuelBudget]; ok {
			if b, ok := toUint64(budget); ok && *r.FuelConsumed > b {
				return &policy.ValidationError{Cause: fmt.Errorf("result: fuel_consumed %d exceeds fuel_budget %d", *r.FuelConsumed, b)}
			}
		}
	}
	return nil
}

func toUint64(v any) (uint64, bool) {
	switch n := v.(type) {
	case uint64:
		return n, true
	case int:
		return uint64(n), true
	case float64:
		return uint64(n), true
	default:
		return 0, false
	}
}

// ToJSON and FromJSON round-trip through sonic rather than
// encoding/json: both speak the same struct-tag dialect, sonic is simply
// faster for the result sizes this host produces on every call.

// ToJSON serializes the result. json -> SandboxResult -> json round-trips
// to an equivalent value.
func (r *SandboxResult) ToJSON() ([]byte, error) {
	return sonic.Marshal(r)
}

// FromJSON is the inverse of ToJSON.
func FromJSON(b []byte) (*SandboxResult, error) {
	r := New()
	if err := sonic.Unmarshal(b, r); err != nil {
		return nil, fmt.Errorf("result: decoding: %w", err)
	}
	return r, nil
}
