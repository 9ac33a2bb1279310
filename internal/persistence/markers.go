package persistence

import (
	"encoding/json"
	"strings"
)

// MarkerBegin and MarkerEnd bracket the single JSON line the JavaScript
// epilogue emits on stdout to hand its new global state back to the host.
const (
	MarkerBegin = "/*__SANDBOX_STATE_BEGIN__*/"
	MarkerEnd   = "/*__SANDBOX_STATE_END__*/"
)

// ExtractMarkedState scans stdout line by line for a MarkerBegin/JSON/
// MarkerEnd triple, returning the enclosed JSON and stdout with all three
// lines removed. found is false when no markers are present, in which
// case stripped equals stdout unchanged. A present-but-malformed marker
// region is reported as found=true with a nil state so the caller can
// fall back to empty state rather than crash.
func ExtractMarkedState(stdout string) (state json.RawMessage, stripped string, found bool) {
	lines := strings.Split(stdout, "\n")
	beginIdx := -1
	for i, line := range lines {
		if strings.TrimSpace(line) == MarkerBegin {
			beginIdx = i
			break
		}
	}
	if beginIdx == -1 {
		return nil, stdout, false
	}
	endIdx := -1
	for i := beginIdx + 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == MarkerEnd {
			endIdx = i
			break
		}
	}
	if endIdx == -1 || endIdx != beginIdx+2 {
		kept := append(append([]string{}, lines[:beginIdx]...), remainderAfterMarkers(lines, beginIdx)...)
		return nil, strings.Join(kept, "\n"), true
	}

	payload := strings.TrimSpace(lines[beginIdx+1])
	var raw json.RawMessage
	if !json.Valid([]byte(payload)) {
		raw = nil
	} else {
		raw = json.RawMessage(payload)
	}

	kept := append(append([]string{}, lines[:beginIdx]...), lines[endIdx+1:]...)
	return raw, strings.Join(kept, "\n"), true
}

// remainderAfterMarkers returns everything after the stray begin marker
// when no end marker follows it exactly two lines later (missing, or
// misplaced), used only to keep the stripped stdout reasonably intact in
// that malformed case. A misplaced end marker is kept in the output.
func remainderAfterMarkers(lines []string, beginIdx int) []string {
	if beginIdx+1 >= len(lines) {
		return nil
	}
	return lines[beginIdx+1:]
}
