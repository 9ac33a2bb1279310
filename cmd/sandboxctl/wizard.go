package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ifruncillo/llmsandbox/pkg/policy"
	"github.com/spf13/cobra"
)

// resourceTier names a fuel/memory pair a new user can pick without
// understanding fuel units directly.
type resourceTier struct {
	name        string
	fuelBudget  uint64
	memoryBytes uint64
}

var resourceTiers = []resourceTier{
	{"conservative", 1_000_000, 32 * 1024 * 1024},
	{"balanced", 5_000_000, 64 * 1024 * 1024},
	{"generous", 20_000_000, 128 * 1024 * 1024},
}

func newWizardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "wizard",
		Short: "Interactively build an execution policy and print how to run with it",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWizard(bufio.NewReader(os.Stdin), os.Stdout)
		},
	}
}

func runWizard(reader *bufio.Reader, out io.Writer) error {
	fmt.Fprintln(out, "sandboxctl setup")
	fmt.Fprintln(out, "----------------")
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Which runtime do you want to run untrusted code in?")
	fmt.Fprintln(out, "1. Python")
	fmt.Fprintln(out, "2. JavaScript")
	fmt.Fprint(out, "Choose (1-2) [default: 1]: ")
	runtimeChoice := readLine(reader)

	runtime := "python"
	if runtimeChoice == "2" {
		runtime = "javascript"
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "How much fuel and memory should each execution get?")
	for i, tier := range resourceTiers {
		fmt.Fprintf(out, "%d. %s (fuel=%d, memory=%d bytes)\n", i+1, tier.name, tier.fuelBudget, tier.memoryBytes)
	}
	fmt.Fprint(out, "Choose (1-3) [default: 2]: ")
	tierChoice := readLine(reader)

	tier := resourceTiers[1]
	switch tierChoice {
	case "1":
		tier = resourceTiers[0]
	case "3":
		tier = resourceTiers[2]
	}

	fmt.Fprintln(out)
	fmt.Fprint(out, "Workspace root (press Enter for the default): ")
	workspaceRoot := readLine(reader)

	env, err := loadEnvOverrides()
	if err != nil {
		return err
	}
	env.VendorRoot = mustVendorRoot(env)
	if workspaceRoot != "" {
		env.WorkspaceRoot = workspaceRoot
	}

	p, err := policy.New(policy.ExecutionPolicy{
		FuelBudget:   tier.fuelBudget,
		MemoryBytes:  tier.memoryBytes,
		MountHostDir: os.TempDir(), // placeholder; a real run substitutes the session workspace
	})
	if err != nil {
		return fmt.Errorf("sandboxctl: building policy: %w", err)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "----------------")
	fmt.Fprintln(out, "Configuration summary")
	fmt.Fprintf(out, "  runtime:       %s\n", runtime)
	fmt.Fprintf(out, "  fuel budget:   %d\n", p.FuelBudget)
	fmt.Fprintf(out, "  memory bytes:  %d\n", p.MemoryBytes)
	fmt.Fprintf(out, "  workspace root: %s\n", firstNonEmpty(env.WorkspaceRoot, "(default)"))
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Run a sandbox with these settings using, for example:")
	fmt.Fprintf(out, "  LLMSANDBOX_FUEL_BUDGET=%d LLMSANDBOX_MEMORY_BYTES=%d sandboxctl run --runtime %s -f yourscript\n",
		p.FuelBudget, p.MemoryBytes, runtime)
	return nil
}

func readLine(reader *bufio.Reader) string {
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
