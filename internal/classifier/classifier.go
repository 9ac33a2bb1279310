// Package classifier turns a raw execution outcome into actionable
// guidance: it maps trap reasons and stderr patterns onto a small
// enumerated set of error kinds, and buckets fuel consumption into a
// utilization tier with a recommendation. It never changes success or
// any other field of the result it's attached to — it only produces the
// payload that gets written into metadata.
package classifier

import (
	"fmt"
	"strings"

	"github.com/ifruncillo/llmsandbox/pkg/result"
)

// knownVendoredPackages lists the module names the vendor tree provides,
// used to recognize a module-not-found stderr line as a missing-vendor
// problem rather than a generic import error.
var knownVendoredPackages = []string{
	"requests", "numpy", "pandas", "lodash", "axios",
}

// Guidance is the structured payload attached to
// SandboxResult.metadata[result.MetaKeyErrorGuidance].
type Guidance struct {
	ErrorType       result.ErrorKind `json:"error_type"`
	Message         string           `json:"message"`
	SuggestedFix    string           `json:"suggested_fix,omitempty"`
	SuggestedBudget *uint64          `json:"suggested_budget,omitempty"`
}

// Input bundles the post-execution signals the classifier reasons about.
type Input struct {
	Trapped      bool
	TrapReason   result.TrapReason
	Stderr       string
	Runtime      result.RuntimeType
	GuestMount   string
	FuelConsumed *uint64
	FuelBudget   uint64
	StateWriteErr bool
}

// Classify examines in and returns the single most relevant Guidance, or
// nil when nothing actionable was recognized. Order matters: the first
// matching rule wins: an explicit persistence failure first, then the
// out-of-fuel and memory-limit trap reasons, then stderr patterns.
func Classify(in Input) *Guidance {
	if in.StateWriteErr {
		return &Guidance{
			ErrorType: result.ErrInvalidSessionState,
			Message:   "session state could not be written after execution",
		}
	}

	if in.Trapped && in.TrapReason == result.TrapOutOfFuel {
		budget := in.FuelBudget
		consumed := budget
		if in.FuelConsumed != nil {
			consumed = *in.FuelConsumed
		}
		suggested := suggestedBudget(consumed, budget)
		return &Guidance{
			ErrorType:       result.ErrOutOfFuel,
			Message:         "execution exhausted its fuel budget before completing",
			SuggestedFix:    "raise fuel_budget, or identify and cache heavy first-time imports",
			SuggestedBudget: &suggested,
		}
	}

	if in.Trapped && in.TrapReason == result.TrapMemoryLimit {
		return &Guidance{
			ErrorType:    result.ErrMemoryExhausted,
			Message:      "guest exceeded its linear memory limit",
			SuggestedFix: "raise memory_bytes or reduce the working set",
		}
	}

	if kind := classifyStderr(in.Stderr, in.Runtime, in.GuestMount); kind != nil {
		return kind
	}

	return nil
}

func classifyStderr(stderr string, runtime result.RuntimeType, guestMount string) *Guidance {
	if stderr == "" {
		return nil
	}

	if strings.Contains(stderr, "FileNotFoundError") && (guestMount == "" || !strings.Contains(stderr, guestMount)) {
		return &Guidance{
			ErrorType:    result.ErrPathRestriction,
			Message:      "guest attempted to access a path outside its sandboxed filesystem",
			SuggestedFix: "operate only on paths under the mounted workspace",
		}
	}

	for _, pkg := range knownVendoredPackages {
		if moduleNotFound(stderr, pkg) {
			return &Guidance{
				ErrorType:    result.ErrMissingVendoredPackage,
				Message:      fmt.Sprintf("module %q is provided by the vendor tree but was not found on the import path", pkg),
				SuggestedFix: importInsertionSnippet(runtime, pkg),
			}
		}
	}

	if runtime == result.JavaScript && strings.Contains(stderr, "is not iterable") {
		return &Guidance{
			ErrorType:    result.ErrQuickJSTupleDestructure,
			Message:      "destructuring a host-style tuple return failed",
			SuggestedFix: "index the returned array instead of destructuring it",
		}
	}

	return nil
}

func moduleNotFound(stderr, pkg string) bool {
	return strings.Contains(stderr, "ModuleNotFoundError") && strings.Contains(stderr, pkg) ||
		strings.Contains(stderr, "Cannot find module") && strings.Contains(stderr, pkg)
}

func importInsertionSnippet(runtime result.RuntimeType, pkg string) string {
	if runtime == result.JavaScript {
		return fmt.Sprintf("const %s = requireVendor(%q);", pkg, pkg)
	}
	return fmt.Sprintf("import sys; sys.path.insert(0, '<guest_data>/site-packages')  # then import %s", pkg)
}

func suggestedBudget(consumed, budget uint64) uint64 {
	base := budget
	if consumed > base {
		base = consumed
	}
	return base * 2
}
