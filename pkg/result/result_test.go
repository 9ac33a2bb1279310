package result

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *SandboxResult {
	fuel := uint64(12345)
	r := New()
	r.Success = true
	r.Stdout = "hello\n"
	r.Stderr = ""
	r.ExitCode = 0
	r.DurationMs = 42
	r.FuelConsumed = &fuel
	r.MemoryUsedBytes = 65536
	r.FilesCreated = []string{"out.txt"}
	r.FilesModified = []string{"in.txt"}
	r.WorkspacePath = "/tmp/workspace"
	r.Metadata[MetaKeyRuntime] = string(Python)
	r.Metadata[MetaKeyFuelBudget] = uint64(1_000_000)
	r.Metadata[MetaKeyTrapped] = false
	return r
}

// TestSandboxResultJSONRoundTrip checks the fields with fixed Go types
// byte-for-byte and the free-form Metadata map value-by-value: a JSON
// number decoded into map[string]any always comes back as float64, so a
// uint64 stored there is equivalent, not identical, after the round trip.
func TestSandboxResultJSONRoundTrip(t *testing.T) {
	original := sampleResult()

	b, err := original.ToJSON()
	require.NoError(t, err)

	roundTripped, err := FromJSON(b)
	require.NoError(t, err)

	if diff := cmp.Diff(original, roundTripped, cmpopts.IgnoreFields(SandboxResult{}, "Metadata")); diff != "" {
		t.Errorf("round trip mismatch (-original +roundTripped):\n%s", diff)
	}

	require.Len(t, roundTripped.Metadata, len(original.Metadata))
	assert.Equal(t, original.Metadata[MetaKeyRuntime], roundTripped.Metadata[MetaKeyRuntime])
	assert.Equal(t, original.Metadata[MetaKeyTrapped], roundTripped.Metadata[MetaKeyTrapped])
	assert.EqualValues(t, original.Metadata[MetaKeyFuelBudget], roundTripped.Metadata[MetaKeyFuelBudget])
}

func TestNewNeverReturnsNilSlicesOrMap(t *testing.T) {
	r := New()
	assert.NotNil(t, r.FilesCreated)
	assert.NotNil(t, r.FilesModified)
	assert.NotNil(t, r.Metadata)
	assert.Empty(t, r.FilesCreated)
	assert.Empty(t, r.FilesModified)
}

func TestValidateRejectsTrappedSuccess(t *testing.T) {
	r := New()
	r.Success = true
	r.Metadata[MetaKeyTrapped] = true

	err := r.Validate()

	assert.Error(t, err)
}

func TestValidateRejectsFuelConsumedExceedingBudget(t *testing.T) {
	consumed := uint64(100)
	r := New()
	r.FuelConsumed = &consumed
	r.Metadata[MetaKeyFuelBudget] = uint64(50)

	err := r.Validate()

	assert.Error(t, err)
}

func TestValidateAcceptsConsistentResult(t *testing.T) {
	err := sampleResult().Validate()
	assert.NoError(t, err)
}

func TestFromJSONRejectsGarbage(t *testing.T) {
	_, err := FromJSON([]byte("not json"))
	assert.Error(t, err)
}
