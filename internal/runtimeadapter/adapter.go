// Package runtimeadapter implements the generic execute contract shared
// by every interpreter: wrapping user source with setup and persistence
// code, writing it into the workspace, delegating to the host executor,
// and reclassifying the raw outcome into a result.SandboxResult.
package runtimeadapter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ifruncillo/llmsandbox/internal/classifier"
	"github.com/ifruncillo/llmsandbox/internal/hostwasm"
	"github.com/ifruncillo/llmsandbox/internal/logging"
	"github.com/ifruncillo/llmsandbox/internal/persistence"
	"github.com/ifruncillo/llmsandbox/internal/session"
	"github.com/ifruncillo/llmsandbox/internal/telemetry"
	"github.com/ifruncillo/llmsandbox/pkg/policy"
	"github.com/ifruncillo/llmsandbox/pkg/result"
)

// Adapter translates the generic execute contract into one interpreter's
// conventions.
type Adapter interface {
	Runtime() result.RuntimeType
	Filename() string
	Argv(guestMountPath string) []string
	SetupPrologue(guestDataPath string) string
	FailureTokens() []string
	// WrapPersistence wraps code with the runtime's persistence
	// prologue/epilogue given any existing state read from the workspace.
	// existingState is nil when there is none yet or it was corrupted.
	WrapPersistence(code string, existingState []byte, guestStatePath string) string
	// ExtractState is called after a run when persistence is enabled. It
	// returns the new state to persist (nil if none), the stdout with any
	// persistence artifacts stripped, and whether extraction failed.
	ExtractState(stdout string) (newState []byte, strippedStdout string, failed bool)
	ValidateCode(code string) bool
}

// ForRuntime returns the Adapter for rt, or nil if unknown.
func ForRuntime(rt result.RuntimeType) Adapter {
	switch rt {
	case result.Python:
		return pythonAdapter{}
	case result.JavaScript:
		return javascriptAdapter{}
	default:
		return nil
	}
}

// ExecuteOptions parameterizes one execute call.
type ExecuteOptions struct {
	Code    string
	Runtime result.RuntimeType
	Policy  *policy.ExecutionPolicy

	WasmPath string
	Manifest *hostwasm.Manifest

	Workspace session.Workspace
	Sessions  *session.Manager // nil for ephemeral sandboxes

	// Telemetry receives one ExecutionRecord per call, if set. nil skips
	// recording entirely.
	Telemetry *telemetry.Tracker

	PersistenceEnabled bool
	// DisableInjection skips even the setup prologue, per the caller
	// escape hatch described alongside the default-on injection rule.
	DisableInjection bool

	Logger *logging.Logger
}

// Execute runs code under opts.Runtime's adapter and returns the typed
// result. Only a missing adapter or a pre-guest configuration failure
// (missing binary, failed integrity check) is returned as a Go error;
// every other outcome, including every kind of guest trap, is folded into
// a populated result.SandboxResult.
func Execute(opts ExecuteOptions) (*result.SandboxResult, error) {
	log := opts.Logger
	if log == nil {
		log = logging.Noop()
	}

	adapter := ForRuntime(opts.Runtime)
	if adapter == nil {
		return nil, fmt.Errorf("runtimeadapter: unknown runtime %q", opts.Runtime)
	}

	sessionID := opts.Workspace.SessionID
	log = log.With(logging.Fields{"session_id": sessionID, "runtime": string(opts.Runtime)})
	log.Event(logging.EventExecutionStart, logging.Fields{})

	guestStatePath := filepath.Join(opts.Policy.GuestMountPath, persistence.StateFileName)
	hostStatePath := opts.Workspace.Dir

	source := buildSource(adapter, opts, hostStatePath, guestStatePath, log)

	sourcePath := filepath.Join(opts.Workspace.Dir, adapter.Filename())
	if err := os.WriteFile(sourcePath, []byte(source), 0o600); err != nil {
		return nil, fmt.Errorf("runtimeadapter: writing source: %w", err)
	}

	before := snapshotWorkspace(opts.Workspace.Dir, adapter.Filename())

	start := time.Now()
	raw, err := hostwasm.Run(hostwasm.RunOptions{
		WasmPath:     opts.WasmPath,
		Runtime:      opts.Runtime,
		WorkspaceDir: opts.Workspace.Dir,
		Policy:       opts.Policy,
		Argv:         adapter.Argv(opts.Policy.GuestMountPath),
		Manifest:     opts.Manifest,
		Logger:       log,
	})
	if err != nil {
		return nil, err
	}
	durationMs := time.Since(start).Milliseconds()

	after := snapshotWorkspace(opts.Workspace.Dir, adapter.Filename())
	created, modified := diffSnapshots(before, after)

	stateWriteFailed := false
	if opts.PersistenceEnabled {
		newState, stripped, failed := adapter.ExtractState(raw.Stdout)
		raw.Stdout = stripped
		if failed {
			log.Warn("persistence.state_extract_failed", logging.Fields{})
		} else if newState != nil {
			if err := persistence.SaveStateFile(hostStatePath, newState); err != nil {
				stateWriteFailed = true
				log.Warn("persistence.state_write_failed", logging.Fields{"error": err.Error()})
			}
		}
	}

	success := !raw.Trapped && raw.ExitCode == 0 && !containsAnyToken(raw.Stderr, adapter.FailureTokens())

	res := result.New()
	res.Success = success
	res.Stdout = raw.Stdout
	res.Stderr = raw.Stderr
	res.ExitCode = raw.ExitCode
	res.DurationMs = durationMs
	res.FuelConsumed = raw.FuelConsumed
	res.MemoryUsedBytes = raw.MemoryBytes
	res.FilesCreated = created
	res.FilesModified = modified
	res.WorkspacePath = opts.Workspace.Dir

	res.Metadata[result.MetaKeyRuntime] = string(opts.Runtime)
	res.Metadata[result.MetaKeyFuelBudget] = opts.Policy.FuelBudget
	res.Metadata[result.MetaKeyMemoryLimitBytes] = opts.Policy.MemoryBytes
	res.Metadata[result.MetaKeyMemoryPages] = raw.MemoryPages
	res.Metadata[result.MetaKeyStdoutTruncated] = raw.StdoutTruncated
	res.Metadata[result.MetaKeyStderrTruncated] = raw.StderrTruncated
	res.Metadata[result.MetaKeyExitCode] = raw.ExitCode
	res.Metadata[result.MetaKeyTrapped] = raw.Trapped
	if raw.Trapped || raw.TrapReason != result.TrapReasonAbsent {
		res.Metadata[result.MetaKeyTrapReason] = string(raw.TrapReason)
		res.Metadata[result.MetaKeyTrapMessage] = raw.TrapMessage
	}
	if sessionID != "" {
		res.Metadata[result.MetaKeySessionID] = sessionID
	}
	if raw.LogsDir != "" {
		res.Metadata[result.MetaKeyLogsDir] = raw.LogsDir
	}

	guidance := classifier.Classify(classifier.Input{
		Trapped:       raw.Trapped,
		TrapReason:    raw.TrapReason,
		Stderr:        raw.Stderr,
		Runtime:       opts.Runtime,
		GuestMount:    opts.Policy.GuestMountPath,
		FuelConsumed:  raw.FuelConsumed,
		FuelBudget:    opts.Policy.FuelBudget,
		StateWriteErr: stateWriteFailed,
	})
	if guidance != nil {
		res.Metadata[result.MetaKeyErrorGuidance] = guidance
	}
	if raw.FuelConsumed != nil {
		if analysis := classifier.AnalyzeFuel(*raw.FuelConsumed, opts.Policy.FuelBudget, raw.Trapped, raw.TrapReason); analysis != nil {
			res.Metadata[result.MetaKeyFuelAnalysis] = analysis
		}
	}

	if opts.Sessions != nil && sessionID != "" {
		if err := opts.Sessions.Touch(sessionID); err != nil {
			log.Warn("session.touch_failed", logging.Fields{"error": err.Error()})
		}
	}

	if opts.Telemetry != nil {
		rec := telemetry.ExecutionRecord{
			SessionID:    sessionID,
			Runtime:      opts.Runtime,
			StartTime:    start,
			EndTime:      start.Add(time.Duration(durationMs) * time.Millisecond),
			DurationMs:   durationMs,
			Success:      success,
			Trapped:      raw.Trapped,
			FuelBudget:   opts.Policy.FuelBudget,
			FuelConsumed: raw.FuelConsumed,
		}
		if guidance != nil {
			rec.ErrorKind = string(guidance.ErrorType)
		}
		if analysis, ok := res.Metadata[result.MetaKeyFuelAnalysis].(*classifier.FuelAnalysis); ok {
			rec.UtilizationPercent = analysis.UtilizationPercent
		}
		if err := opts.Telemetry.Record(rec); err != nil {
			log.Warn("telemetry.record_failed", logging.Fields{"error": err.Error()})
		}
	}

	log.Event(logging.EventExecutionComplete, logging.Fields{
		"success": success, "duration_ms": durationMs, "exit_code": raw.ExitCode, "trapped": raw.Trapped,
	})
	return res, nil
}

func buildSource(adapter Adapter, opts ExecuteOptions, hostStatePath, guestStatePath string, log *logging.Logger) string {
	var b strings.Builder

	if !opts.DisableInjection {
		b.WriteString(adapter.SetupPrologue(opts.Policy.GuestDataPath))
	}

	if opts.PersistenceEnabled {
		existingState, valid := persistence.LoadStateFile(hostStatePath)
		if !valid {
			log.Warn("persistence.state_load_failed", logging.Fields{})
			existingState = nil
		}
		return b.String() + adapter.WrapPersistence(opts.Code, existingState, guestStatePath)
	}

	b.WriteString(opts.Code)
	return b.String()
}

func containsAnyToken(stderr string, tokens []string) bool {
	lower := strings.ToLower(stderr)
	for _, tok := range tokens {
		if strings.Contains(lower, strings.ToLower(tok)) {
			return true
		}
	}
	return false
}
