// Package hostwasm is the host executor: per-call construction of a WASM
// engine, module instance, WASI context, preopens, fuel and memory
// enforcement, and invocation of the guest _start entry point.
package hostwasm

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/bytecodealliance/wasmtime-go/v15"
	"github.com/ifruncillo/llmsandbox/internal/logging"
	"github.com/ifruncillo/llmsandbox/pkg/policy"
	"github.com/ifruncillo/llmsandbox/pkg/result"
)

// RunOptions parameterizes one Run call.
type RunOptions struct {
	WasmPath     string
	Runtime      result.RuntimeType
	WorkspaceDir string
	Policy       *policy.ExecutionPolicy
	Argv         []string
	Manifest     *Manifest
	Logger       *logging.Logger
}

// Run executes wasmPath to completion under policy and returns a raw
// execution record. It never returns a trapped guest as a Go error: only
// configuration failures discovered before the guest starts (missing
// binary, failed integrity check, unavailable memory limiter) are returned
// as errors. Everything else — including every kind of trap — comes back
// as a populated RawResult.
func Run(opts RunOptions) (*RawResult, error) {
	log := opts.Logger
	if log == nil {
		log = logging.Noop()
	}

	wasmBytes, err := os.ReadFile(opts.WasmPath)
	if err != nil {
		return nil, &RuntimeError{Path: opts.WasmPath, Message: "reading wasm binary: " + err.Error()}
	}
	if err := verifyBinary(opts.Manifest, opts.Runtime, opts.WasmPath, wasmBytes); err != nil {
		return nil, err
	}

	// Step 1: a fresh engine per call, so that no guest instruction
	// accounting or compiled-module state leaks between executions.
	engineCfg := wasmtime.NewConfig()
	engineCfg.SetConsumeFuel(true)
	engine := wasmtime.NewEngineWithConfig(engineCfg)

	// Step 2.
	module, err := wasmtime.NewModule(engine, wasmBytes)
	if err != nil {
		return nil, &RuntimeError{Path: opts.WasmPath, Message: "compiling module: " + err.Error()}
	}

	// Step 3.
	logDir, err := os.MkdirTemp("", "llmsandbox-logs-*")
	if err != nil {
		return nil, &SandboxExecutionError{Message: "creating temp log dir: " + err.Error()}
	}
	defer func() {
		if !opts.Policy.PreserveLogs {
			_ = os.RemoveAll(logDir)
		}
	}()
	stdoutPath := filepath.Join(logDir, "stdout.log")
	stderrPath := filepath.Join(logDir, "stderr.log")

	// Step 4: WASI context with capability-based preopens.
	wasiCfg := wasmtime.NewWasiConfig()
	if err := wasiCfg.PreopenDir(opts.WorkspaceDir, opts.Policy.GuestMountPath); err != nil {
		return nil, &SandboxExecutionError{Message: "preopening workspace: " + err.Error()}
	}
	if opts.Policy.MountDataDir != "" {
		if info, statErr := os.Stat(opts.Policy.MountDataDir); statErr == nil && info.IsDir() {
			if err := wasiCfg.PreopenDir(opts.Policy.MountDataDir, opts.Policy.GuestDataPath); err != nil {
				return nil, &SandboxExecutionError{Message: "preopening vendor tree: " + err.Error()}
			}
		}
	}
	wasiCfg.SetArgv(opts.Argv)
	envNames, envValues := splitEnv(opts.Policy.Env)
	wasiCfg.SetEnv(envNames, envValues)
	if err := wasiCfg.SetStdoutFile(stdoutPath); err != nil {
		return nil, &SandboxExecutionError{Message: "redirecting stdout: " + err.Error()}
	}
	if err := wasiCfg.SetStderrFile(stderrPath); err != nil {
		return nil, &SandboxExecutionError{Message: "redirecting stderr: " + err.Error()}
	}

	// Step 5: store, fuel, and memory limiter.
	store := wasmtime.NewStore(engine)
	store.SetWasi(wasiCfg)
	if err := store.AddFuel(opts.Policy.FuelBudget); err != nil {
		return nil, &SandboxExecutionError{Message: "configuring fuel: " + err.Error()}
	}
	if err := applyMemoryLimiter(store, opts.Policy.MemoryBytes); err != nil {
		return nil, err
	}

	// Step 6: instantiate via a linker that defines WASI, resolve exports.
	linker := wasmtime.NewLinker(engine)
	if err := linker.DefineWasi(); err != nil {
		return nil, &SandboxExecutionError{Message: "defining wasi imports: " + err.Error()}
	}
	instance, err := linker.Instantiate(store, module)
	if err != nil {
		return nil, &RuntimeError{Path: opts.WasmPath, Message: "instantiating module: " + err.Error()}
	}
	start := instance.GetFunc(store, "_start")
	if start == nil {
		return nil, &RuntimeError{Path: opts.WasmPath, Message: "module does not export _start"}
	}
	memExtern := instance.GetExport(store, "memory")
	if memExtern == nil || memExtern.Memory() == nil {
		return nil, &RuntimeError{Path: opts.WasmPath, Message: "module does not export memory"}
	}
	mem := memExtern.Memory()

	// Step 7: invoke, classify the outcome.
	_, callErr := start.Call(store)
	trapped, reason, exitCode, trapMsg := classifyCallErr(callErr)

	// Step 8: fuel accounting. store.AddFuel seeded the budget; the store
	// reports how much of it was consumed, capped here at the budget.
	var fuelConsumed *uint64
	if consumed, ok := store.FuelConsumed(); ok {
		c := consumed
		if c > opts.Policy.FuelBudget {
			c = opts.Policy.FuelBudget
		}
		fuelConsumed = &c
	}

	// Step 9.
	memPages := mem.Size(store)
	memBytes := mem.DataSize(store)

	// Step 10.
	stdout, stdoutTrunc, err := readCapped(stdoutPath, opts.Policy.StdoutMaxBytes)
	if err != nil {
		log.Warn("execution.log_read_failed", logging.Fields{"stream": "stdout", "error": err.Error()})
	}
	stderr, stderrTrunc, err := readCapped(stderrPath, opts.Policy.StderrMaxBytes)
	if err != nil {
		log.Warn("execution.log_read_failed", logging.Fields{"stream": "stderr", "error": err.Error()})
	}

	// Step 11: append a trap notice if one isn't already present.
	if trapped && reason != result.TrapProcExit {
		notice := trapNoticeLine(reason, trapMsg)
		if !strings.Contains(stderr, notice) {
			stderr = appendLine(stderr, notice)
			stderr, stderrTrunc = capString(stderr, opts.Policy.StderrMaxBytes)
		}
	}

	// Step 12 (cleanup) is handled by the deferred os.RemoveAll above.

	return &RawResult{
		ExitCode:        exitCode,
		Trapped:         trapped,
		TrapReason:      reason,
		TrapMessage:     trapMsg,
		Stdout:          stdout,
		Stderr:          stderr,
		StdoutTruncated: stdoutTrunc,
		StderrTruncated: stderrTrunc,
		FuelConsumed:    fuelConsumed,
		MemoryPages:     memPages,
		MemoryBytes:     uint64(memBytes),
		LogsDir:         logDir,
	}, nil
}

// applyMemoryLimiter enforces policy.MemoryBytes as a hard cap on guest
// linear memory. A build of the wasmtime bindings that cannot express a
// memory limiter must fail fast, before the guest ever runs, rather than
// silently running unbounded.
func applyMemoryLimiter(store *wasmtime.Store, maxBytes uint64) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &SandboxExecutionError{Message: fmt.Sprintf("memory limiting unavailable: %v", r)}
		}
	}()
	limits := wasmtime.NewStoreLimitsBuilder().MemorySize(maxBytes).Build()
	store.Limiter(limits)
	return nil
}

func splitEnv(env map[string]string) (names, values []string) {
	names = make([]string, 0, len(env))
	values = make([]string, 0, len(env))
	for k, v := range env {
		names = append(names, k)
		values = append(values, v)
	}
	return names, values
}

// readCapped reads at most max+1 bytes to detect overflow without loading
// an unbounded guest output into memory.
func readCapped(path string, max int) (string, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, err
	}
	defer f.Close()

	buf := make([]byte, max+1)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", false, err
	}
	truncated := n > max
	if truncated {
		n = max
	}
	return strings.ToValidUTF8(string(buf[:n]), string(utf8.RuneError)), truncated, nil
}

func capString(s string, max int) (string, bool) {
	if len(s) <= max {
		return s, false
	}
	return strings.ToValidUTF8(s[:max], string(utf8.RuneError)), true
}

func appendLine(s, line string) string {
	if s == "" {
		return line + "\n"
	}
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	return s + line + "\n"
}
