// Package seed carries the built-in NMEO-OP dataset used when no
// persisted snapshot exists. The figures mirror the mission's published
// static dataset; admin edits are layered on top and persisted, never
// written back here.
package seed

import (
	"github.com/nmeo-op/palm-engine/pkg/types"
)

// monthly holds one year of prices in canonical month order. A zero
// entry means the month was never reported and is stored as absent.
type monthly [12]float64

type regionSeries struct {
	years []string
	ffb   map[string]monthly
	cpo   map[string]monthly
}

// Snapshot builds a fresh copy of the seed dataset. Callers own the
// result and may mutate it freely.
func Snapshot() types.DatasetSnapshot {
	snap := types.DatasetSnapshot{
		YearOrder: make(map[string][]string),
		Regions:   regionProfiles(),
	}

	for region, series := range financialYearSeries() {
		appendSeries(&snap, region, types.FinancialYear, series)
	}
	for region, series := range oilYearSeries() {
		appendSeries(&snap, region, types.OilYear, series)
	}
	return snap
}

func appendSeries(snap *types.DatasetSnapshot, region string, yt types.YearType, series regionSeries) {
	key := types.SeriesKey(region, yt)
	for _, year := range series.years {
		snap.YearOrder[key] = append(snap.YearOrder[key], year)
		ffb := series.ffb[year]
		cpo := series.cpo[year]
		for i, month := range types.MonthLabels {
			obs := types.PriceObservation{
				Region:   region,
				YearType: yt,
				Year:     year,
				Month:    month,
				FFB:      price(ffb[i]),
				CPO:      price(cpo[i]),
			}
			if obs.FFB == nil && obs.CPO == nil {
				continue
			}
			snap.Observations = append(snap.Observations, obs)
		}
	}
}

func price(v float64) *float64 {
	if v == 0 {
		return nil
	}
	return &v
}

func regionProfiles() []types.RegionProfile {
	return []types.RegionProfile{
		{
			ID: "andhra-pradesh", Name: "Andhra Pradesh",
			PotentialAreaHa: 532000, AreaCoveredHa: 189000, OER: 18.5, ProcessingMills: 12,
			ExpansionTargets: []types.ExpansionTarget{
				{Year: "2022-23", TargetHa: 18000},
				{Year: "2023-24", TargetHa: 21000},
				{Year: "2024-25", TargetHa: 25000},
				{Year: "2025-26", TargetHa: 28000},
			},
		},
		{
			ID: "telangana", Name: "Telangana",
			PotentialAreaHa: 816000, AreaCoveredHa: 92000, OER: 17.8, ProcessingMills: 5,
			ExpansionTargets: []types.ExpansionTarget{
				{Year: "2022-23", TargetHa: 20000},
				{Year: "2023-24", TargetHa: 40000},
				{Year: "2024-25", TargetHa: 80000},
				{Year: "2025-26", TargetHa: 100000},
			},
		},
		{
			ID: "karnataka", Name: "Karnataka",
			PotentialAreaHa: 143000, AreaCoveredHa: 46500, OER: 17.2, ProcessingMills: 3,
			ExpansionTargets: []types.ExpansionTarget{
				{Year: "2022-23", TargetHa: 3500},
				{Year: "2023-24", TargetHa: 4200},
				{Year: "2024-25", TargetHa: 5000},
			},
		},
		{
			ID: "tamil-nadu", Name: "Tamil Nadu",
			PotentialAreaHa: 96000, AreaCoveredHa: 31200, OER: 16.9, ProcessingMills: 2,
			ExpansionTargets: []types.ExpansionTarget{
				{Year: "2022-23", TargetHa: 2200},
				{Year: "2023-24", TargetHa: 2800},
				{Year: "2024-25", TargetHa: 3400},
			},
		},
		{
			ID: "odisha", Name: "Odisha",
			PotentialAreaHa: 85000, AreaCoveredHa: 22400, OER: 16.4, ProcessingMills: 1,
			ExpansionTargets: []types.ExpansionTarget{
				{Year: "2023-24", TargetHa: 4000},
				{Year: "2024-25", TargetHa: 6000},
			},
		},
		{
			ID: "mizoram", Name: "Mizoram",
			PotentialAreaHa: 101000, AreaCoveredHa: 29700, OER: 15.8, ProcessingMills: 1,
			ExpansionTargets: []types.ExpansionTarget{
				{Year: "2022-23", TargetHa: 1500},
				{Year: "2023-24", TargetHa: 1800},
				{Year: "2024-25", TargetHa: 2000},
			},
		},
		{
			ID: "nagaland", Name: "Nagaland",
			PotentialAreaHa: 36000, AreaCoveredHa: 4600, OER: 15.2, ProcessingMills: 0,
			ExpansionTargets: []types.ExpansionTarget{
				{Year: "2023-24", TargetHa: 1200},
				{Year: "2024-25", TargetHa: 1500},
			},
		},
		{
			ID: "assam", Name: "Assam",
			PotentialAreaHa: 75000, AreaCoveredHa: 310, OER: 15.0, ProcessingMills: 0,
			ExpansionTargets: []types.ExpansionTarget{
				{Year: "2024-25", TargetHa: 2500},
				{Year: "2025-26", TargetHa: 5000},
			},
		},
	}
}

func financialYearSeries() map[string]regionSeries {
	return map[string]regionSeries{
		"telangana": {
			years: []string{"2022-23", "2023-24", "2024-25"},
			ffb: map[string]monthly{
				"2022-23": {20180, 19950, 19310, 18540, 17230, 16110, 15420, 14980, 15260, 15730, 16040, 16390},
				"2023-24": {13650, 13120, 12840, 12510, 12980, 13240, 13760, 14150, 14620, 15080, 15490, 15910},
				// August through October 2024-25 were never reported
				"2024-25": {16280, 16890, 17540, 18230, 18970, 19610, 20240, 0, 0, 0, 19120, 18760},
			},
			cpo: map[string]monthly{
				"2022-23": {104500, 102800, 99400, 95200, 88600, 83100, 79800, 77500, 78900, 81200, 82700, 84400},
				"2023-24": {80200, 78100, 76400, 74900, 76800, 78300, 80900, 82600, 85100, 87400, 89200, 91500},
				"2024-25": {93400, 96200, 99800, 103400, 107200, 110600, 113900, 0, 0, 0, 108200, 106400},
			},
		},
		"andhra-pradesh": {
			years: []string{"2022-23", "2023-24", "2024-25"},
			ffb: map[string]monthly{
				"2022-23": {20340, 20110, 19480, 18690, 17400, 16250, 15560, 15120, 15410, 15890, 16210, 16550},
				"2023-24": {13820, 13280, 12990, 12660, 13140, 13410, 13930, 14330, 14810, 15260, 15680, 16110},
				"2024-25": {16470, 17090, 17750, 18460, 19210, 19860, 20510, 21080, 20640, 20190, 19360, 18990},
			},
			cpo: map[string]monthly{
				"2022-23": {105800, 104000, 100600, 96300, 89700, 84100, 80700, 78400, 79800, 82100, 83600, 85400},
				"2023-24": {81100, 79000, 77300, 75800, 77700, 79200, 81800, 83600, 86100, 88500, 90300, 92600},
				"2024-25": {94500, 97400, 101100, 104800, 108600, 112100, 115500, 118400, 116200, 113800, 109500, 107700},
			},
		},
		"karnataka": {
			years: []string{"2023-24", "2024-25"},
			ffb: map[string]monthly{
				"2023-24": {13400, 12910, 12620, 12300, 12760, 13020, 13540, 13930, 14390, 14840, 15240, 15660},
				"2024-25": {16020, 16620, 17260, 17940, 18670, 19300, 0, 0, 0, 0, 0, 0},
			},
			cpo: map[string]monthly{
				"2023-24": {79400, 77300, 75700, 74200, 76100, 77500, 80100, 81800, 84200, 86500, 88300, 90600},
				"2024-25": {92500, 95300, 98900, 102400, 106100, 109500, 0, 0, 0, 0, 0, 0},
			},
		},
	}
}

func oilYearSeries() map[string]regionSeries {
	return map[string]regionSeries{
		"telangana": {
			years: []string{"2022-23", "2023-24"},
			ffb: map[string]monthly{
				"2022-23": {15850, 15420, 15110, 14870, 14630, 14390, 14980, 15510, 16020, 16480, 16910, 17330},
				"2023-24": {14110, 13780, 13520, 13290, 13660, 14040, 14550, 15010, 15480, 15940, 16370, 16800},
			},
			cpo: map[string]monthly{
				"2022-23": {83800, 81600, 80100, 78900, 77600, 76400, 79300, 82000, 84600, 87000, 89200, 91400},
				"2023-24": {75300, 73600, 72300, 71100, 73000, 75000, 77700, 80100, 82600, 85000, 87300, 89600},
			},
		},
		"andhra-pradesh": {
			years: []string{"2022-23", "2023-24"},
			ffb: map[string]monthly{
				"2022-23": {16020, 15580, 15260, 15010, 14770, 14520, 15120, 15660, 16180, 16650, 17090, 17520},
				"2023-24": {14260, 13920, 13660, 13420, 13800, 14190, 14700, 15170, 15640, 16110, 16550, 16990},
			},
			cpo: map[string]monthly{
				"2022-23": {84700, 82400, 80900, 79600, 78300, 77100, 80100, 82800, 85500, 87900, 90100, 92400},
				"2023-24": {76100, 74300, 73000, 71800, 73700, 75800, 78500, 80900, 83500, 85900, 88300, 90600},
			},
		},
	}
}
