// Command sandboxctl is a thin caller of the execute contract: it never
// participates in enforcing any sandbox guarantee itself, it only wires a
// CLI surface onto the session and runtimeadapter packages.
package main

import (
	"fmt"
	"os"

	"github.com/ifruncillo/llmsandbox/internal/hostfs"
	"github.com/ifruncillo/llmsandbox/internal/logging"
	"github.com/ifruncillo/llmsandbox/internal/session"
	"github.com/spf13/cobra"
)

var (
	flagWorkspaceRoot string
	flagFuelBudget    uint64
	flagMemoryBytes   uint64
	flagJSON          bool
)

func main() {
	root := &cobra.Command{
		Use:   "sandboxctl",
		Short: "Run untrusted code in a WASI sandbox and manage its sessions",
	}
	root.PersistentFlags().StringVar(&flagWorkspaceRoot, "workspace-root", "", "session workspace root (defaults to the sessions directory under the llmsandbox base directory)")
	root.PersistentFlags().Uint64Var(&flagFuelBudget, "fuel-budget", 0, "override the fuel budget for this invocation")
	root.PersistentFlags().Uint64Var(&flagMemoryBytes, "memory-bytes", 0, "override the memory limit for this invocation")
	root.PersistentFlags().BoolVar(&flagJSON, "json", false, "print the full SandboxResult as JSON instead of a summary")

	root.AddCommand(newRunCmd())
	root.AddCommand(newSessionCmd())
	root.AddCommand(newWizardCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newSessionManager() (*session.Manager, error) {
	return session.NewManager(flagWorkspaceRoot, logging.New(os.Stderr))
}

func resolveWasmPath(env *envOverrides, runtime string) (string, error) {
	switch runtime {
	case "python":
		return env.PythonWasm, nil
	case "javascript", "js":
		return env.JavaScriptWasm, nil
	default:
		return "", fmt.Errorf("sandboxctl: unknown runtime %q (want python or javascript)", runtime)
	}
}

func mustVendorRoot(env *envOverrides) string {
	if env.VendorRoot != "" {
		return env.VendorRoot
	}
	root, err := hostfs.DefaultVendorRoot()
	if err != nil {
		return ""
	}
	return root
}
