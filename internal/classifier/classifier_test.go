package classifier

import (
	"testing"

	"github.com/ifruncillo/llmsandbox/pkg/result"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyOutOfFuelSuggestsDoubleBudget(t *testing.T) {
	g := Classify(Input{Trapped: true, TrapReason: result.TrapOutOfFuel, FuelBudget: 1_000_000})
	require.NotNil(t, g)
	assert.Equal(t, result.ErrOutOfFuel, g.ErrorType)
	require.NotNil(t, g.SuggestedBudget)
	assert.Equal(t, uint64(2_000_000), *g.SuggestedBudget)
}

func TestClassifyPathRestrictionWhenMountPathAbsent(t *testing.T) {
	g := Classify(Input{Stderr: "FileNotFoundError: [Errno 2] No such file or directory: '/etc/passwd'", GuestMount: "/mnt/workspace"})
	require.NotNil(t, g)
	assert.Equal(t, result.ErrPathRestriction, g.ErrorType)
}

func TestClassifyFileNotFoundInsideMountIsNotPathRestriction(t *testing.T) {
	g := Classify(Input{Stderr: "FileNotFoundError: /mnt/workspace/missing.txt", GuestMount: "/mnt/workspace"})
	assert.Nil(t, g)
}

func TestClassifyMissingVendoredPackage(t *testing.T) {
	g := Classify(Input{Stderr: "ModuleNotFoundError: No module named 'requests'", Runtime: result.Python})
	require.NotNil(t, g)
	assert.Equal(t, result.ErrMissingVendoredPackage, g.ErrorType)
}

func TestClassifyQuickJSTupleDestructuring(t *testing.T) {
	g := Classify(Input{Stderr: "TypeError: result is not iterable", Runtime: result.JavaScript})
	require.NotNil(t, g)
	assert.Equal(t, result.ErrQuickJSTupleDestructure, g.ErrorType)
}

func TestClassifyStateWriteErrorTakesPriority(t *testing.T) {
	g := Classify(Input{StateWriteErr: true, Trapped: true, TrapReason: result.TrapOutOfFuel})
	require.NotNil(t, g)
	assert.Equal(t, result.ErrInvalidSessionState, g.ErrorType)
}

func TestClassifyReturnsNilWhenNothingMatches(t *testing.T) {
	g := Classify(Input{Stderr: "all good"})
	assert.Nil(t, g)
}

func TestAnalyzeFuelBucketsByUtilization(t *testing.T) {
	cases := []struct {
		consumed uint64
		tier     UtilizationTier
	}{
		{100, TierEfficient},
		{600, TierModerate},
		{800, TierWarning},
		{950, TierCritical},
	}
	for _, c := range cases {
		a := AnalyzeFuel(c.consumed, 1000, false, result.TrapReasonAbsent)
		require.NotNil(t, a)
		assert.Equal(t, c.tier, a.Tier, "consumed=%d", c.consumed)
	}
}

func TestAnalyzeFuelMarksExhaustedOnOutOfFuelTrap(t *testing.T) {
	a := AnalyzeFuel(1000, 1000, true, result.TrapOutOfFuel)
	require.NotNil(t, a)
	assert.Equal(t, TierExhausted, a.Tier)
}

func TestAnalyzeFuelNilWhenBudgetZero(t *testing.T) {
	assert.Nil(t, AnalyzeFuel(0, 0, false, result.TrapReasonAbsent))
}
