package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ifruncillo/llmsandbox/internal/hostfs"
	"github.com/ifruncillo/llmsandbox/internal/hostwasm"
	"github.com/ifruncillo/llmsandbox/internal/logging"
	"github.com/ifruncillo/llmsandbox/internal/runtimeadapter"
	"github.com/ifruncillo/llmsandbox/internal/session"
	"github.com/ifruncillo/llmsandbox/internal/telemetry"
	"github.com/ifruncillo/llmsandbox/pkg/result"
	"github.com/spf13/cobra"
)

// sharedTracker is the one telemetry.Tracker constructed per process
// invocation; every execute call in this process appends to the same
// daily JSONL file.
var sharedTracker *telemetry.Tracker

func telemetryTracker(env *envOverrides) *telemetry.Tracker {
	if sharedTracker != nil {
		return sharedTracker
	}
	dir := env.TelemetryRoot
	if dir == "" {
		d, err := hostfs.DefaultTelemetryRoot()
		if err != nil {
			return nil
		}
		dir = d
	}
	t, err := telemetry.NewTracker(dir)
	if err != nil {
		return nil
	}
	sharedTracker = t
	return t
}

// runRequest is the shared parameter set behind both `run` and
// `session exec`; the latter just pins sessionID and persist.
type runRequest struct {
	code          string
	runtime       string
	sessionID     string
	persist       bool
	disableInject bool
}

func newRunCmd() *cobra.Command {
	req := runRequest{runtime: "python"}
	var file string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one piece of code in a fresh or existing sandbox",
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := readCode(file, args)
			if err != nil {
				return err
			}
			req.code = code
			return executeAndPrint(req)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "read code from this file instead of stdin or an argument")
	cmd.Flags().StringVar(&req.runtime, "runtime", req.runtime, "python or javascript")
	cmd.Flags().StringVar(&req.sessionID, "session", "", "run inside an existing session instead of an ephemeral workspace")
	cmd.Flags().BoolVar(&req.persist, "persist", false, "restore and save global state across calls to the same session")
	cmd.Flags().BoolVar(&req.disableInject, "no-inject", false, "skip the setup prologue entirely")
	return cmd
}

// executeAndPrint resolves env/policy/workspace for req, runs it through
// runtimeadapter.Execute, and prints the outcome per the --json flag.
func executeAndPrint(req runRequest) error {
	rt, err := parseRuntime(req.runtime)
	if err != nil {
		return err
	}

	env, err := loadEnvOverrides()
	if err != nil {
		return err
	}

	sessions, err := newSessionManager()
	if err != nil {
		return fmt.Errorf("sandboxctl: %w", err)
	}

	var ws session.Workspace
	if req.sessionID != "" {
		ws, err = sessions.GetSession(req.sessionID)
	} else {
		var cleanup func()
		ws, cleanup, err = sessions.NewEphemeralWorkspace()
		if err == nil {
			defer cleanup()
		}
	}
	if err != nil {
		return fmt.Errorf("sandboxctl: resolving workspace: %w", err)
	}

	env.VendorRoot = mustVendorRoot(env)
	p, err := buildPolicy(env, ws.Dir, flagFuelBudget, flagMemoryBytes)
	if err != nil {
		return fmt.Errorf("sandboxctl: %w", err)
	}

	wasmPath, err := resolveWasmPath(env, req.runtime)
	if err != nil {
		return err
	}

	var manifest *hostwasm.Manifest
	if env.ManifestPath != "" {
		manifest, err = hostwasm.LoadManifest(env.ManifestPath)
		if err != nil {
			return fmt.Errorf("sandboxctl: %w", err)
		}
	}

	res, err := runtimeadapter.Execute(runtimeadapter.ExecuteOptions{
		Code:               req.code,
		Runtime:            rt,
		Policy:             p,
		WasmPath:           wasmPath,
		Manifest:           manifest,
		Workspace:          ws,
		Sessions:           sessions,
		Telemetry:          telemetryTracker(env),
		PersistenceEnabled: req.persist,
		DisableInjection:   req.disableInject,
		Logger:             logging.New(os.Stderr),
	})
	if err != nil {
		return fmt.Errorf("sandboxctl: %w", err)
	}

	return printResult(res)
}

func readCode(file string, args []string) (string, error) {
	if file != "" {
		b, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("sandboxctl: reading %s: %w", file, err)
		}
		return string(b), nil
	}
	if len(args) > 0 {
		return args[0], nil
	}
	b, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("sandboxctl: reading stdin: %w", err)
	}
	return string(b), nil
}

func parseRuntime(s string) (result.RuntimeType, error) {
	switch s {
	case "python":
		return result.Python, nil
	case "javascript", "js":
		return result.JavaScript, nil
	default:
		return "", fmt.Errorf("sandboxctl: unknown runtime %q (want python or javascript)", s)
	}
}

func printResult(res *result.SandboxResult) error {
	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	fmt.Fprint(os.Stdout, res.Stdout)
	if res.Stderr != "" {
		fmt.Fprint(os.Stderr, res.Stderr)
	}
	if !res.Success {
		if guidance, ok := res.Metadata[result.MetaKeyErrorGuidance]; ok {
			fmt.Fprintf(os.Stderr, "sandboxctl: execution failed: %+v\n", guidance)
		}
		os.Exit(1)
	}
	return nil
}
