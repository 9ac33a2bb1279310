package hostwasm

import (
	"errors"
	"strings"

	"github.com/bytecodealliance/wasmtime-go/v15"
	"github.com/ifruncillo/llmsandbox/pkg/result"
)

// wasiExitError is satisfied by the error wasmtime-go's WASI implementation
// returns when the guest calls proc_exit(n); it carries the exit code
// without being a *wasmtime.Trap.
type wasiExitError interface {
	error
	ExitStatus() int32
}

// classifyCallErr turns the error returned by invoking _start into one of
// three outcomes: a normal return, an explicit process exit, or a trap
// whose reason is read off the trap message by string matching.
func classifyCallErr(err error) (trapped bool, reason result.TrapReason, exitCode int, message string) {
	if err == nil {
		return false, result.TrapReasonAbsent, 0, ""
	}

	var exit wasiExitError
	if errors.As(err, &exit) {
		code := int(exit.ExitStatus())
		if code == 0 {
			return false, result.TrapReasonAbsent, 0, ""
		}
		return false, result.TrapProcExit, code, err.Error()
	}

	var trap *wasmtime.Trap
	if errors.As(err, &trap) {
		msg := trap.Message()
		return true, classifyTrapMessage(msg), 0, msg
	}

	// Any other host-side exception while the guest was running is folded
	// into a trap with reason host_error.
	return true, result.TrapHostError, 0, err.Error()
}

func classifyTrapMessage(msg string) result.TrapReason {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(msg, "OutOfFuel") || strings.Contains(lower, "fuel"):
		return result.TrapOutOfFuel
	case strings.Contains(lower, "memory") || strings.Contains(lower, "out of bounds"):
		return result.TrapMemoryLimit
	case strings.Contains(lower, "host"):
		return result.TrapHostError
	default:
		return result.TrapOther
	}
}

// trapNoticeLine is appended to stderr when a trap is not already
// announced there.
func trapNoticeLine(reason result.TrapReason, message string) string {
	switch reason {
	case result.TrapOutOfFuel:
		return "OutOfFuel: execution exhausted its fuel budget"
	default:
		return "trap: " + message
	}
}
