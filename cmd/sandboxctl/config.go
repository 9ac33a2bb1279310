package main

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/ifruncillo/llmsandbox/pkg/policy"
)

// envOverrides lets the fuel budget, memory limit, vendor root, telemetry
// root, interpreter binary paths, and manifest path be set without a flag,
// for containerized or scripted callers that prefer environment variables.
type envOverrides struct {
	FuelBudget     uint64 `env:"LLMSANDBOX_FUEL_BUDGET"`
	MemoryBytes    uint64 `env:"LLMSANDBOX_MEMORY_BYTES"`
	WorkspaceRoot  string `env:"LLMSANDBOX_WORKSPACE_ROOT"`
	VendorRoot     string `env:"LLMSANDBOX_VENDOR_ROOT"`
	TelemetryRoot  string `env:"LLMSANDBOX_TELEMETRY_ROOT"`
	PythonWasm     string `env:"LLMSANDBOX_PYTHON_WASM" envDefault:"./bin/python.wasm"`
	JavaScriptWasm string `env:"LLMSANDBOX_JS_WASM" envDefault:"./bin/qjs.wasm"`
	ManifestPath   string `env:"LLMSANDBOX_MANIFEST"`
}

func loadEnvOverrides() (*envOverrides, error) {
	var cfg envOverrides
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("sandboxctl: parsing environment: %w", err)
	}
	return &cfg, nil
}

// buildPolicy merges flag values over envOverrides, then validates through
// policy.New so every caller gets the same defaulting/validation path.
func buildPolicy(env *envOverrides, mountHostDir string, flagFuel, flagMemory uint64) (*policy.ExecutionPolicy, error) {
	p := policy.ExecutionPolicy{
		MountHostDir: mountHostDir,
		MountDataDir: env.VendorRoot,
	}
	if flagFuel > 0 {
		p.FuelBudget = flagFuel
	} else if env.FuelBudget > 0 {
		p.FuelBudget = env.FuelBudget
	}
	if flagMemory > 0 {
		p.MemoryBytes = flagMemory
	} else if env.MemoryBytes > 0 {
		p.MemoryBytes = env.MemoryBytes
	}
	return policy.New(p)
}
