// Package aggregation provides the pure statistical functions every
// dashboard surface derives its figures from.
//
// All functions treat absence as a value: an all-absent input yields an
// absent result, never zero, NaN, or Inf. Degenerate denominators
// surface as ErrDivisionByZero for callers to convert into a "no data"
// display state.
package aggregation

import (
	"errors"
	"math"

	"github.com/nmeo-op/palm-engine/pkg/types"
)

// ErrDivisionByZero signals a ratio whose denominator is zero
var ErrDivisionByZero = errors.New("division by zero")

// MonthAll is the month filter value meaning "average the whole year"
const MonthAll = "All Months"

// Average filters out absent entries and averages the rest, rounding
// half-up to the nearest integer for currency display. All-absent
// input returns an absent Stat.
func Average(values []types.Stat) types.Stat {
	exact := AverageExact(values)
	if !exact.OK {
		return exact
	}
	return types.StatOf(roundHalfUp(exact.Value))
}

// AverageExact is Average without display rounding
func AverageExact(values []types.Stat) types.Stat {
	sum := 0.0
	n := 0
	for _, v := range values {
		if v.OK {
			sum += v.Value
			n++
		}
	}
	if n == 0 {
		return types.NoStat()
	}
	return types.StatOf(sum / float64(n))
}

// Extremes holds the present-value bounds of a series
type Extremes struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// MinMax returns the bounds over present values only; false when every
// entry is absent.
func MinMax(values []types.Stat) (Extremes, bool) {
	found := false
	var ext Extremes
	for _, v := range values {
		if !v.OK {
			continue
		}
		if !found {
			ext = Extremes{Min: v.Value, Max: v.Value}
			found = true
			continue
		}
		if v.Value < ext.Min {
			ext.Min = v.Value
		}
		if v.Value > ext.Max {
			ext.Max = v.Value
		}
	}
	return ext, found
}

// SeasonalProfile groups FFB observations by month across all given
// years, averages each month, and derives the peak/lean months and
// spread statistics. Ties resolve to the earlier month in canonical
// January-December order so the result is deterministic.
func SeasonalProfile(yearSlices [][]types.PriceObservation) types.SeasonalProfile {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, slice := range yearSlices {
		for _, obs := range slice {
			if obs.FFB == nil {
				continue
			}
			sums[obs.Month] += *obs.FFB
			counts[obs.Month]++
		}
	}

	profile := types.SeasonalProfile{PerMonthAverage: make(map[string]float64, len(sums))}
	if len(sums) == 0 {
		return profile
	}

	var averages []float64
	first := true
	var peakAvg, leanAvg float64
	for _, month := range types.MonthLabels {
		n, ok := counts[month]
		if !ok {
			continue
		}
		avg := sums[month] / float64(n)
		profile.PerMonthAverage[month] = avg
		averages = append(averages, avg)
		if first {
			profile.PeakMonth, peakAvg = month, avg
			profile.LeanMonth, leanAvg = month, avg
			first = false
			continue
		}
		// strict comparisons keep the earlier month on ties
		if avg > peakAvg {
			profile.PeakMonth, peakAvg = month, avg
		}
		if avg < leanAvg {
			profile.LeanMonth, leanAvg = month, avg
		}
	}

	profile.Volatility = populationStdDev(averages)
	if leanAvg > 0 {
		profile.VariationPercent = (peakAvg - leanAvg) / leanAvg * 100
	}
	return profile
}

// Coverage derives a region's plantation coverage. The display value
// is clamped to [0,100]; the raw ratio stays available and is flagged
// when source data is inconsistent (covered area exceeding potential,
// or a zero potential), never silently hidden.
func Coverage(profile types.RegionProfile) types.Coverage {
	cov := types.Coverage{Region: profile.ID}
	if profile.PotentialAreaHa == 0 {
		cov.Flagged = true
		return cov
	}
	cov.Raw = profile.AreaCoveredHa / profile.PotentialAreaHa * 100
	cov.Display = clamp(cov.Raw, 0, 100)
	cov.Flagged = cov.Raw < 0 || cov.Raw > 100
	return cov
}

// SelfSufficiencyRatio is domestic production over consumption as a
// percentage. A zero consumption fails rather than returning Inf.
func SelfSufficiencyRatio(domesticProduction, consumption float64) (float64, error) {
	if consumption == 0 {
		return 0, ErrDivisionByZero
	}
	return domesticProduction / consumption * 100, nil
}

// ProgressTowardTarget is current over target as a percentage, with
// the same zero-target failure mode as SelfSufficiencyRatio.
func ProgressTowardTarget(current, target float64) (float64, error) {
	if target == 0 {
		return 0, ErrDivisionByZero
	}
	return current / target * 100, nil
}

// PriceCards is the pair of headline figures a dashboard price card
// shows for one region-year selection.
type PriceCards struct {
	FFB            types.Stat `json:"ffb"`
	CPO            types.Stat `json:"cpo"`
	MonthsWithData int        `json:"months_with_data"`
}

// Cards computes the price-card values for a year slice under a month
// filter. MonthAll (or empty) averages whichever months report data;
// a specific month returns that month's observation or absent.
func Cards(slice []types.PriceObservation, month string) PriceCards {
	if month == "" || month == MonthAll {
		ffb := make([]types.Stat, 0, len(slice))
		cpo := make([]types.Stat, 0, len(slice))
		months := 0
		for _, obs := range slice {
			ffb = append(ffb, obs.FFBStat())
			cpo = append(cpo, obs.CPOStat())
			if obs.FFB != nil || obs.CPO != nil {
				months++
			}
		}
		return PriceCards{FFB: Average(ffb), CPO: Average(cpo), MonthsWithData: months}
	}

	for _, obs := range slice {
		if obs.Month != month {
			continue
		}
		cards := PriceCards{FFB: obs.FFBStat(), CPO: obs.CPOStat()}
		if obs.FFB != nil || obs.CPO != nil {
			cards.MonthsWithData = 1
		}
		return cards
	}
	return PriceCards{FFB: types.NoStat(), CPO: types.NoStat()}
}

// roundHalfUp rounds to the nearest integer with .5 going up, matching
// the display convention of the dashboard's currency cards.
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}

func populationStdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))
	return math.Sqrt(variance)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
