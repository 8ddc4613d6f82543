package scenario

import (
	"github.com/nmeo-op/palm-engine/pkg/config"
	"github.com/nmeo-op/palm-engine/pkg/types"
)

// The three functions below are the mission's own policy heuristics,
// carried over exactly. They are approximations, not validated
// economic models; their functional form is a compatibility contract
// and must not be improved.

// FarmerPriceImpact estimates the farm-gate price shift in ₹/MT for a
// duty level: (duty - baseline) * sensitivity.
func FarmerPriceImpact(dutyPercent, baselineDutyPercent, sensitivity float64) float64 {
	return (dutyPercent - baselineDutyPercent) * sensitivity
}

// FiscalGapCost is the per-ton support outlay bridging a realized
// price below target: max(0, target - realized) * supportFraction.
func FiscalGapCost(targetPrice, realizedPrice, supportFraction float64) float64 {
	gap := targetPrice - realizedPrice
	if gap < 0 {
		gap = 0
	}
	return gap * supportFraction
}

// FXOutflowEstimate is import volume times CIF price, normalized to
// the reporting scale: importVolume * cifPrice / 1000.
func FXOutflowEstimate(importVolume, cifPrice float64) float64 {
	return importVolume * cifPrice / 1000
}

// ImpactFor layers the derived heuristics on a normalized tariff
// outcome using the configured policy constants. targetPrice is the
// viability price the gap is measured against.
func ImpactFor(outcome types.TariffOutcome, policy config.PolicyConstants, targetPrice float64) types.PolicyImpact {
	return types.PolicyImpact{
		FarmerPriceImpact: FarmerPriceImpact(outcome.EffectiveDutyPercent, policy.BaselineDutyPercent, policy.DutySensitivity),
		FiscalGapCost:     FiscalGapCost(targetPrice, outcome.LandedCost, policy.SupportFraction),
		FXOutflowEstimate: FXOutflowEstimate(policy.AnnualImportVolumeKT, outcome.CIFPrice),
	}
}
