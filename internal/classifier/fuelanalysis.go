package classifier

import "github.com/ifruncillo/llmsandbox/pkg/result"

// UtilizationTier buckets how much of its fuel budget an execution spent.
type UtilizationTier string

const (
	TierEfficient UtilizationTier = "efficient"
	TierModerate  UtilizationTier = "moderate"
	TierWarning   UtilizationTier = "warning"
	TierCritical  UtilizationTier = "critical"
	TierExhausted UtilizationTier = "exhausted"
)

// FuelAnalysis is the payload attached to
// SandboxResult.metadata[result.MetaKeyFuelAnalysis].
type FuelAnalysis struct {
	UtilizationPercent float64         `json:"utilization_percent"`
	Tier               UtilizationTier `json:"tier"`
	Recommendation     string          `json:"recommendation"`
	SuggestedBudget    uint64          `json:"suggested_budget"`
}

// AnalyzeFuel buckets consumed/budget into a tier and attaches a
// recommendation, mirroring the way resource.Manager buckets activity
// level into CPU/memory tiers: one switch over ascending thresholds, with
// a forced override for the one case (exhaustion) that isn't a simple
// percentage.
func AnalyzeFuel(consumed, budget uint64, trapped bool, trapReason result.TrapReason) *FuelAnalysis {
	if budget == 0 {
		return nil
	}

	utilization := float64(consumed) / float64(budget) * 100

	var tier UtilizationTier
	var recommendation string
	switch {
	case trapped && trapReason == result.TrapOutOfFuel:
		tier = TierExhausted
		recommendation = "fuel budget was fully consumed before completion; raise fuel_budget"
	case utilization < 50:
		tier = TierEfficient
		recommendation = "fuel budget has ample headroom"
	case utilization < 75:
		tier = TierModerate
		recommendation = "fuel usage is moderate; no action needed"
	case utilization < 90:
		tier = TierWarning
		recommendation = "fuel usage is approaching the budget; consider raising it for this workload"
	default:
		tier = TierCritical
		recommendation = "fuel usage is close to exhaustion; raise fuel_budget to avoid future traps"
	}

	return &FuelAnalysis{
		UtilizationPercent: utilization,
		Tier:               tier,
		Recommendation:     recommendation,
		SuggestedBudget:    suggestedBudget(consumed, budget),
	}
}
