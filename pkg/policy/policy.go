// Package policy defines the validated configuration consumed by every
// sandbox execution.
package policy

import (
	"fmt"
	"os"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ExecutionPolicy parameterizes one host executor run: resource limits,
// mounts, and the environment exposed to the guest. It is immutable once
// constructed by New.
type ExecutionPolicy struct {
	// FuelBudget is the WASM instruction-count limit for a single execution.
	FuelBudget uint64 `json:"fuel_budget" default:"5000000" validate:"gt=0"`

	// MemoryBytes is the hard cap on WASM linear memory.
	MemoryBytes uint64 `json:"memory_bytes" default:"67108864" validate:"gt=0"`

	// StdoutMaxBytes and StderrMaxBytes are truncation caps applied to
	// captured guest output.
	StdoutMaxBytes int `json:"stdout_max_bytes" default:"1048576" validate:"gt=0"`
	StderrMaxBytes int `json:"stderr_max_bytes" default:"1048576" validate:"gt=0"`

	// MountHostDir is the host path used as the session workspace mount.
	MountHostDir string `json:"mount_host_dir" validate:"required,dir"`

	// GuestMountPath is the guest path at which the workspace appears.
	GuestMountPath string `json:"guest_mount_path" default:"/app" validate:"required,startswith=/"`

	// MountDataDir, if set, is a read-only secondary mount for language
	// libraries (the vendor tree).
	MountDataDir string `json:"mount_data_dir,omitempty" validate:"omitempty,dir"`

	// GuestDataPath is the guest path at which MountDataDir appears.
	GuestDataPath string `json:"guest_data_path" default:"/data" validate:"required,startswith=/"`

	// Env is exposed verbatim to the guest WASI environment. The host
	// environment is never leaked.
	Env map[string]string `json:"env,omitempty"`

	// PreserveLogs controls retention of the per-run temporary log
	// directory after execute returns.
	PreserveLogs bool `json:"preserve_logs,omitempty"`
}

// New applies defaults to p, then validates it. Numeric limits must be
// strictly positive, MountHostDir must exist, and both guest paths must be
// absolute guest paths. The returned policy is safe to share across
// concurrent executions — it is never mutated after construction.
func New(p ExecutionPolicy) (*ExecutionPolicy, error) {
	if err := defaults.Set(&p); err != nil {
		return nil, fmt.Errorf("policy: applying defaults: %w", err)
	}
	if err := validate.Struct(&p); err != nil {
		return nil, &ValidationError{Cause: err}
	}
	if info, err := os.Stat(p.MountHostDir); err != nil || !info.IsDir() {
		return nil, &ValidationError{Cause: fmt.Errorf("mount_host_dir %q does not exist", p.MountHostDir)}
	}
	if p.MountDataDir != "" {
		if info, err := os.Stat(p.MountDataDir); err != nil || !info.IsDir() {
			return nil, &ValidationError{Cause: fmt.Errorf("mount_data_dir %q does not exist", p.MountDataDir)}
		}
	}
	out := p
	return &out, nil
}

// ValidationError distinguishes policy/result construction failures from
// execution errors.
type ValidationError struct {
	Cause error
}

func (e *ValidationError) Error() string { return fmt.Sprintf("validation: %v", e.Cause) }
func (e *ValidationError) Unwrap() error { return e.Cause }
