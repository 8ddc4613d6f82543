package aggregation

import (
	"sync"

	"github.com/nmeo-op/palm-engine/internal/timeseries"
	"github.com/nmeo-op/palm-engine/pkg/config"
	"github.com/nmeo-op/palm-engine/pkg/types"
)

// YearTotal sums expansion targets for one year over the regions that
// report a target for it. Non-reporting regions are ignored rather
// than treated as zero.
type YearTotal struct {
	Year             string  `json:"year"`
	TargetHa         float64 `json:"target_ha"`
	ReportingRegions int     `json:"reporting_regions"`
}

// NationalTotals is the mission-wide progress summary the dashboard's
// overview chart renders.
type NationalTotals struct {
	PotentialAreaHa  float64               `json:"potential_area_ha"`
	AreaCoveredHa    float64               `json:"area_covered_ha"`
	CoveragePercent  float64               `json:"coverage_percent"`
	SelfSufficiency  types.Stat            `json:"self_sufficiency"`
	TargetProgress   types.Stat            `json:"target_progress"`
	PerYearTargets   []YearTotal           `json:"per_year_targets"`
	AverageFFBByYear map[string]types.Stat `json:"average_ffb_by_year"`
}

type totalsKey struct {
	yt      types.YearType
	version uint64
}

// Aggregator wraps the store with memoized multi-year totals. The
// cache key includes the store's version counter, so any mutation
// invalidates prior results without explicit bookkeeping.
type Aggregator struct {
	store  *timeseries.Store
	policy config.PolicyConstants

	mu    sync.Mutex
	cache map[totalsKey]NationalTotals
}

// NewAggregator creates an aggregator over the given store
func NewAggregator(store *timeseries.Store, policy config.PolicyConstants) *Aggregator {
	return &Aggregator{
		store:  store,
		policy: policy,
		cache:  make(map[totalsKey]NationalTotals),
	}
}

// Store exposes the underlying dataset for read-path handlers
func (a *Aggregator) Store() *timeseries.Store {
	return a.store
}

// Policy exposes the configured national constants
func (a *Aggregator) Policy() config.PolicyConstants {
	return a.policy
}

// Seasonal rebuilds a region's seasonal profile from source
// observations; derived state is never cached across mutations.
func (a *Aggregator) Seasonal(region string, yt types.YearType) types.SeasonalProfile {
	return SeasonalProfile(a.store.YearSlices(region, yt))
}

// RegionCoverage derives coverage for every region in display order
func (a *Aggregator) RegionCoverage() []types.Coverage {
	regions := a.store.Regions()
	out := make([]types.Coverage, 0, len(regions))
	for _, r := range regions {
		out = append(out, Coverage(r))
	}
	return out
}

// National computes (or returns the memoized) mission-wide totals for
// one calendar.
func (a *Aggregator) National(yt types.YearType) NationalTotals {
	key := totalsKey{yt: yt, version: a.store.Version()}

	a.mu.Lock()
	if cached, ok := a.cache[key]; ok {
		a.mu.Unlock()
		return cached
	}
	a.mu.Unlock()

	totals := a.computeNational(yt)

	a.mu.Lock()
	// drop stale versions so the cache stays small
	for k := range a.cache {
		if k.version != key.version {
			delete(a.cache, k)
		}
	}
	a.cache[key] = totals
	a.mu.Unlock()
	return totals
}

func (a *Aggregator) computeNational(yt types.YearType) NationalTotals {
	regions := a.store.Regions()

	totals := NationalTotals{AverageFFBByYear: make(map[string]types.Stat)}
	yearIndex := make(map[string]int)
	for _, r := range regions {
		totals.PotentialAreaHa += r.PotentialAreaHa
		totals.AreaCoveredHa += r.AreaCoveredHa
		for _, target := range r.ExpansionTargets {
			idx, ok := yearIndex[target.Year]
			if !ok {
				idx = len(totals.PerYearTargets)
				yearIndex[target.Year] = idx
				totals.PerYearTargets = append(totals.PerYearTargets, YearTotal{Year: target.Year})
			}
			totals.PerYearTargets[idx].TargetHa += target.TargetHa
			totals.PerYearTargets[idx].ReportingRegions++
		}
	}

	if totals.PotentialAreaHa > 0 {
		totals.CoveragePercent = clamp(totals.AreaCoveredHa/totals.PotentialAreaHa*100, 0, 100)
	}
	if ratio, err := SelfSufficiencyRatio(a.policy.DomesticProductionMT, a.policy.NationalConsumptionMT); err == nil {
		totals.SelfSufficiency = types.StatOf(ratio)
	}

	var cumulativeTarget float64
	for _, t := range totals.PerYearTargets {
		cumulativeTarget += t.TargetHa
	}
	if progress, err := ProgressTowardTarget(totals.AreaCoveredHa, cumulativeTarget); err == nil {
		totals.TargetProgress = types.StatOf(progress)
	}

	// national FFB average per year over the regions reporting that year
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, r := range regions {
		for _, year := range a.store.Years(r.ID, yt) {
			slice := a.store.YearSlice(r.ID, yt, year)
			stats := make([]types.Stat, 0, len(slice))
			for _, obs := range slice {
				stats = append(stats, obs.FFBStat())
			}
			if regionAvg := AverageExact(stats); regionAvg.OK {
				sums[year] += regionAvg.Value
				counts[year]++
			}
		}
	}
	for year, sum := range sums {
		totals.AverageFFBByYear[year] = types.StatOf(sum / float64(counts[year]))
	}

	return totals
}
