package hostwasm

import "github.com/ifruncillo/llmsandbox/pkg/result"

// RawResult is the host executor's unprocessed account of one guest run,
// before a runtime adapter reclassifies it into a result.SandboxResult.
type RawResult struct {
	ExitCode    int
	Trapped     bool
	TrapReason  result.TrapReason
	TrapMessage string

	Stdout          string
	Stderr          string
	StdoutTruncated bool
	StderrTruncated bool

	FuelConsumed *uint64
	MemoryPages  uint64
	MemoryBytes  uint64

	LogsDir string
}
