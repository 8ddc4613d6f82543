// Package scenario translates policy knobs into requests for the
// external Monte-Carlo tariff-simulation service and normalizes its
// heterogeneous responses into one stable result model.
package scenario

import (
	"fmt"
	"math"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/nmeo-op/palm-engine/pkg/types"
)

// Bounds on simulation size keep response payloads and client-side
// render cost sane.
const (
	MinPaths  = 1
	MaxPaths  = 1000
	MinRounds = 1
	MaxRounds = 20
)

// Defaults applied when a knob is missing or non-finite
const (
	DefaultPaths      = 200
	DefaultRounds     = 5
	DefaultHorizon    = 5
	DefaultFXBaseRate = 83.0
)

// InvalidInputError carries a field-specific validation message for
// input that cannot be repaired into a dispatchable request.
type InvalidInputError struct {
	Field   string
	Message string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// ToFinite coerces a possibly NaN/Inf value to a finite number,
// substituting the fallback instead of aborting the request.
func ToFinite(v, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}

// NormalizeRange reorders an inverted [min, max] pair. Inversion is a
// UI slip, not an error; the swap is logged so audits can see it.
func NormalizeRange(field string, r types.Range) types.Range {
	r.Min = ToFinite(r.Min, 0)
	r.Max = ToFinite(r.Max, 0)
	if r.Min > r.Max {
		log.WithFields(log.Fields{
			"field": field,
			"min":   r.Min,
			"max":   r.Max,
		}).Warn("Swapped inverted range")
		r.Min, r.Max = r.Max, r.Min
	}
	return r
}

// BuildScenarioRequest validates and normalizes the full Monte-Carlo
// parameter set. Non-finite numerics fall back to documented defaults,
// inverted ranges are swapped, and simulation sizes are clamped; only
// input that cannot be repaired is rejected.
func BuildScenarioRequest(in types.ScenarioRequest) (types.ScenarioRequest, error) {
	out := in

	out.DutyPercent = ToFinite(in.DutyPercent, 0)
	out.CessPercent = ToFinite(in.CessPercent, 0)
	out.CombinedDutyPercent = ToFinite(in.CombinedDutyPercent, 0)
	if out.DutyPercent < 0 || out.DutyPercent > 100 {
		return out, &InvalidInputError{Field: "bcd", Message: "duty must be between 0 and 100 percent"}
	}
	if out.CessPercent < 0 || out.CessPercent > 100 {
		return out, &InvalidInputError{Field: "cess", Message: "cess must be between 0 and 100 percent"}
	}

	out.CIFRange = NormalizeRange("cif_range", in.CIFRange)
	out.LandedRange = NormalizeRange("landed_range", in.LandedRange)
	out.RetailRange = NormalizeRange("retail_range", in.RetailRange)
	out.SupplyCostRange = NormalizeRange("supply_cost_range", in.SupplyCostRange)

	out.FXPattern = normalizePattern(in.FXPattern)
	out.FXBaseRate = ToFinite(in.FXBaseRate, DefaultFXBaseRate)
	out.FXDrift = ToFinite(in.FXDrift, 0)
	out.FXVolatility = ToFinite(in.FXVolatility, 0)

	out.InflationPattern = normalizePattern(in.InflationPattern)
	out.InflationRate = ToFinite(in.InflationRate, 0)
	out.InflationVolatility = ToFinite(in.InflationVolatility, 0)

	out.SafeLandedPrice = ToFinite(in.SafeLandedPrice, 0)
	out.SafeRetailPrice = ToFinite(in.SafeRetailPrice, 0)

	if out.PathCount == 0 {
		out.PathCount = DefaultPaths
	}
	out.PathCount = clampInt(out.PathCount, MinPaths, MaxPaths)
	if out.RoundCount == 0 {
		out.RoundCount = DefaultRounds
	}
	out.RoundCount = clampInt(out.RoundCount, MinRounds, MaxRounds)

	if out.StartYear == 0 {
		out.StartYear = time.Now().Year()
	}
	if out.Horizon <= 0 {
		out.Horizon = DefaultHorizon
	}

	return out, nil
}

// BuildTariffRequest validates the single-point simulation body
func BuildTariffRequest(monthName string, year int, bcd, cess float64, spot *float64) (types.TariffRequest, error) {
	if types.MonthIndex(monthName) < 0 {
		return types.TariffRequest{}, &InvalidInputError{Field: "month_name", Message: fmt.Sprintf("unknown month %q", monthName)}
	}
	if year < 2000 || year > 2100 {
		return types.TariffRequest{}, &InvalidInputError{Field: "year", Message: "year out of range"}
	}
	req := types.TariffRequest{
		MonthName: monthName,
		Year:      year,
		BCD:       ToFinite(bcd, 0),
		Cess:      ToFinite(cess, 0),
	}
	if spot != nil {
		s := ToFinite(*spot, 0)
		if s > 0 {
			req.SpotPrice = &s
		}
	}
	return req, nil
}

func normalizePattern(p string) string {
	switch p {
	case types.PatternIncreasing, types.PatternDecreasing, types.PatternVolatile, types.PatternSteady:
		return p
	case "":
		return types.PatternSteady
	default:
		log.WithField("pattern", p).Warn("Unknown pattern, falling back to steady")
		return types.PatternSteady
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
