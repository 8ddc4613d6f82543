// Package types defines the core data model shared across the palm engine
package types

import (
	"encoding/json"
	"fmt"
)

// YearType distinguishes the two yearly calendars the mission reports against
type YearType string

const (
	FinancialYear YearType = "financialYear" // April-March, used for budgets and targets
	OilYear       YearType = "oilYear"       // November-October, used for trade statistics
)

// Valid reports whether yt is one of the two known calendars
func (yt YearType) Valid() bool {
	return yt == FinancialYear || yt == OilYear
}

// MonthLabels is the canonical month order. Tie-breaks in seasonal
// statistics always resolve to the earlier month in this order.
var MonthLabels = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// MonthIndex returns the position of a month label in canonical order,
// or -1 if the label is unknown.
func MonthIndex(month string) int {
	for i, m := range MonthLabels {
		if m == month {
			return i
		}
	}
	return -1
}

// Stat is a numeric value that may be absent. Absence means "no data",
// which is distinct from a value of zero. The zero Stat is absent.
type Stat struct {
	Value float64
	OK    bool
}

// StatOf wraps a present value
func StatOf(v float64) Stat {
	return Stat{Value: v, OK: true}
}

// NoStat is the absent sentinel
func NoStat() Stat {
	return Stat{}
}

// MarshalJSON encodes an absent Stat as null so display collaborators
// can distinguish "no data" from zero.
func (s Stat) MarshalJSON() ([]byte, error) {
	if !s.OK {
		return []byte("null"), nil
	}
	return json.Marshal(s.Value)
}

// UnmarshalJSON accepts null as absent
func (s *Stat) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = Stat{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*s = StatOf(v)
	return nil
}

// PriceObservation is one month of FFB/CPO prices for a region. At most
// one observation exists per (region, yearType, year, month) tuple.
// Nil price pointers mean the price was never reported; they are never
// coerced to zero.
type PriceObservation struct {
	Region   string   `json:"region"`
	YearType YearType `json:"year_type"`
	Year     string   `json:"year"`  // e.g. "2024-25"
	Month    string   `json:"month"` // canonical label, e.g. "January"
	FFB      *float64 `json:"ffb"`   // ₹/MT, fresh fruit bunches
	CPO      *float64 `json:"cpo"`   // ₹/MT, crude palm oil
}

// FFBStat returns the FFB price as a Stat
func (o PriceObservation) FFBStat() Stat {
	if o.FFB == nil {
		return NoStat()
	}
	return StatOf(*o.FFB)
}

// CPOStat returns the CPO price as a Stat
func (o PriceObservation) CPOStat() Stat {
	if o.CPO == nil {
		return NoStat()
	}
	return StatOf(*o.CPO)
}

// RegionProfile holds the mission's area and processing figures for one
// state. areaCoveredHa <= potentialAreaHa is a soft invariant: source
// data violates it occasionally and consumers must surface, not hide,
// the violation.
type RegionProfile struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	PotentialAreaHa  float64           `json:"potential_area_ha"`
	AreaCoveredHa    float64           `json:"area_covered_ha"`
	OER              float64           `json:"oer"` // oil extraction rate, percent
	ProcessingMills  int               `json:"processing_mills"`
	ExpansionTargets []ExpansionTarget `json:"expansion_targets"`
}

// ExpansionTarget is one year's area-expansion target in hectares.
// Targets keep their insertion order, which mirrors financial-year
// display conventions.
type ExpansionTarget struct {
	Year     string  `json:"year"`
	TargetHa float64 `json:"target_ha"`
}

// SeasonalProfile is derived from price observations and never stored;
// it is rebuilt whenever the underlying data or the selected region
// changes.
type SeasonalProfile struct {
	PerMonthAverage  map[string]float64 `json:"per_month_average"`
	PeakMonth        string             `json:"peak_month"`
	LeanMonth        string             `json:"lean_month"`
	Volatility       float64            `json:"volatility"`        // population stddev of monthly averages
	VariationPercent float64            `json:"variation_percent"` // (max-min)/min * 100
}

// Coverage is a region's plantation coverage with both the clamped
// display value and the raw ratio for data-quality auditing.
type Coverage struct {
	Region  string  `json:"region"`
	Display float64 `json:"display"` // clamped to [0,100]
	Raw     float64 `json:"raw"`     // unclamped ratio * 100
	Flagged bool    `json:"flagged"` // true when raw falls outside [0,100]
}

// ChangeAction enumerates audited mutations to the managed dataset
type ChangeAction string

const (
	ActionCreate ChangeAction = "CREATE"
	ActionUpdate ChangeAction = "UPDATE"
	ActionDelete ChangeAction = "DELETE"
	ActionMove   ChangeAction = "MOVE"
	ActionImport ChangeAction = "IMPORT"
	ActionExport ChangeAction = "EXPORT"
	ActionReset  ChangeAction = "RESET"
)

// ChangeLogEntry records one mutation for the admin audit trail. Old
// and new values are serialized and truncated before storage; the log
// is for human audit, not replay.
type ChangeLogEntry struct {
	ID        string       `json:"id"`
	Timestamp string       `json:"timestamp"` // RFC3339
	Action    ChangeAction `json:"action"`
	Field     string       `json:"field"`
	OldValue  string       `json:"old_value"`
	NewValue  string       `json:"new_value"`
	User      string       `json:"user"`
}

// DatasetSnapshot is the full persisted state: every observation, the
// year ordering per series, and all region profiles. It round-trips
// through the persistence layer as one JSON record.
type DatasetSnapshot struct {
	Observations []PriceObservation  `json:"observations"`
	YearOrder    map[string][]string `json:"year_order"` // "region|yearType" -> ordered years
	Regions      []RegionProfile     `json:"regions"`
}

// SeriesKey builds the year-order map key for a (region, yearType) pair
func SeriesKey(region string, yt YearType) string {
	return fmt.Sprintf("%s|%s", region, yt)
}
