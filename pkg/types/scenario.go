package types

// Pattern names accepted for FX and inflation path generation by the
// external simulation service
const (
	PatternIncreasing = "increasing"
	PatternDecreasing = "decreasing"
	PatternVolatile   = "volatile"
	PatternSteady     = "steady"
)

// Range is an inclusive [Min, Max] price band in ₹/MT
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// ScenarioRequest is the full set of user-tunable policy knobs for the
// multi-year Monte-Carlo tariff simulation. Every numeric field must be
// finite before dispatch; ranges must satisfy Min <= Max (the builder
// normalizes both).
type ScenarioRequest struct {
	DutyPercent         float64 `json:"bcd"`
	CessPercent         float64 `json:"cess"`
	CombinedDutyPercent float64 `json:"combined_duty,omitempty"` // overrides bcd+cess when set

	CIFRange    Range `json:"cif_range"`
	LandedRange Range `json:"landed_range"`
	RetailRange Range `json:"retail_range"`

	FXPattern    string  `json:"fx_pattern"`
	FXBaseRate   float64 `json:"fx_base_rate"`
	FXDrift      float64 `json:"fx_drift"`
	FXVolatility float64 `json:"fx_volatility"`

	InflationPattern    string  `json:"inflation_pattern"`
	InflationRate       float64 `json:"inflation_rate"`
	InflationVolatility float64 `json:"inflation_volatility"`

	SupplyCostRange Range `json:"supply_cost_range"`

	SafeLandedPrice float64 `json:"safe_landed_price"`
	SafeRetailPrice float64 `json:"safe_retail_price"`

	PathCount  int `json:"num_simulations"`
	RoundCount int `json:"num_rounds"`
	StartYear  int `json:"start_year"`
	Horizon    int `json:"horizon_years"`
}

// TariffRequest is the single-point simulation body
type TariffRequest struct {
	MonthName string   `json:"month_name"`
	Year      int      `json:"year"`
	BCD       float64  `json:"bcd"`
	Cess      float64  `json:"cess"`
	SpotPrice *float64 `json:"spot_price,omitempty"`
}

// TariffOutcome is the normalized single-point simulation result. The
// external service varies its response shape between releases; the
// scenario normalizer maps every known shape onto this one so display
// code never branches on the raw payload.
type TariffOutcome struct {
	CIFPrice             float64 `json:"cif_price"`
	LandedCost           float64 `json:"landed_cost"`
	RetailPrice          float64 `json:"retail_price"`
	RiskFlag             string  `json:"risk_flag"`
	EffectiveDutyPercent float64 `json:"effective_duty_pct"`
	CIFSource            string  `json:"cif_source"`
	PredictedPrice       float64 `json:"predicted_price"`
	UsedSpotPrice        bool    `json:"used_spot_price"`
}

// DistStats is a summary of one simulated distribution for a year
type DistStats struct {
	Mean float64 `json:"mean"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	P10  float64 `json:"p10"`
	P90  float64 `json:"p90"`
}

// YearSummary aggregates all simulation paths for one year
type YearSummary struct {
	Year             int       `json:"year"`
	CIF              DistStats `json:"cif_stats"`
	Landed           DistStats `json:"landed_stats"`
	Retail           DistStats `json:"retail_stats"`
	FX               DistStats `json:"fx_stats"`
	FarmerRiskRate   float64   `json:"farmer_risk_rate"`
	ConsumerRiskRate float64   `json:"consumer_risk_rate"`
}

// YearPoint is one year's estimate on one simulation path
type YearPoint struct {
	Year   int     `json:"year"`
	CIF    float64 `json:"cif"`
	Landed float64 `json:"landed"`
	Retail float64 `json:"retail"`
}

// ScenarioResult is the normalized Monte-Carlo response. It is owned by
// the session that requested it and superseded wholesale by the next
// run; results are never merged incrementally.
type ScenarioResult struct {
	Sequence        uint64          `json:"sequence"`
	YearlySummaries []YearSummary   `json:"yearly_summaries"`
	SimulationPaths [][]YearPoint   `json:"simulation_paths"`
	Years           []int           `json:"years"`
	InputsEcho      ScenarioRequest `json:"inputs_echo"`
}

// PolicyImpact carries the derived heuristic metrics layered on top of
// a simulation outcome. The formulas are fixed policy approximations;
// their functional form is a compatibility contract.
type PolicyImpact struct {
	FarmerPriceImpact float64 `json:"farmer_price_impact"` // ₹/MT shift at farm gate
	FiscalGapCost     float64 `json:"fiscal_gap_cost"`     // per-ton support outlay
	FXOutflowEstimate float64 `json:"fx_outflow_estimate"` // reporting-scale outflow
}
