package scenario

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	jsonrepair "github.com/RealAlexandreAI/json-repair"

	"github.com/nmeo-op/palm-engine/pkg/types"
)

// ErrNoUsableField means the response lacked every field in a required
// metric's fallback chain; this is the only malformed-response case
// that escalates to a user-visible error.
var ErrNoUsableField = errors.New("no usable field in simulation response")

// decodeObject parses a response body into a generic map, repairing
// malformed JSON before giving up. The external service has shipped
// truncated and single-quoted bodies in the past.
func decodeObject(body []byte) (map[string]interface{}, error) {
	var m map[string]interface{}
	if err := json.Unmarshal(body, &m); err == nil {
		return m, nil
	}
	repaired, err := jsonrepair.RepairJSON(string(body))
	if err != nil {
		return nil, fmt.Errorf("unparseable simulation response: %w", err)
	}
	if err := json.Unmarshal([]byte(repaired), &m); err != nil {
		return nil, fmt.Errorf("unparseable simulation response after repair: %w", err)
	}
	return m, nil
}

// NormalizeTariff maps any known shape of the single-point simulation
// response onto TariffOutcome. Each field resolves through a fixed
// fallback-priority chain: explicit field, then fallback field, then a
// safe default. Only a missing CIF price in every form is an error.
func NormalizeTariff(body []byte) (types.TariffOutcome, error) {
	m, err := decodeObject(body)
	if err != nil {
		return types.TariffOutcome{}, err
	}

	cif, ok := number(m, "cif_price_used", "predicted_cif_price", "spot_price")
	if !ok {
		return types.TariffOutcome{}, fmt.Errorf("%w: cif price", ErrNoUsableField)
	}

	out := types.TariffOutcome{CIFPrice: cif}

	if v, ok := number(m, "landed_cost"); ok {
		out.LandedCost = v
	} else {
		out.LandedCost = cif
	}
	if v, ok := number(m, "estimated_retail_price", "retail_price"); ok {
		out.RetailPrice = v
	} else {
		out.RetailPrice = out.LandedCost
	}
	if v, ok := str(m, "risk_flag"); ok {
		out.RiskFlag = v
	} else {
		out.RiskFlag = "UNKNOWN"
	}
	if v, ok := number(m, "effective_duty_pct", "effective_duty"); ok {
		out.EffectiveDutyPercent = v
	}
	if v, ok := number(m, "predicted_cif_price"); ok {
		out.PredictedPrice = v
	} else {
		out.PredictedPrice = cif
	}
	_, hasSpot := number(m, "spot_price")
	out.UsedSpotPrice = hasSpot
	if v, ok := str(m, "cif_source"); ok {
		out.CIFSource = v
	} else if hasSpot {
		out.CIFSource = "spot"
	} else {
		out.CIFSource = "predicted"
	}
	return out, nil
}

// monteCarloResponse mirrors the multi-year endpoint's body. Path
// points arrive either as objects or as bare retail-price numbers, so
// they decode via RawMessage.
type monteCarloResponse struct {
	SimulationPaths [][]json.RawMessage `json:"simulation_paths"`
	YearlySummary   []yearSummaryWire   `json:"yearly_summary"`
	YearsList       []int               `json:"years_list"`
}

type yearSummaryWire struct {
	Year             *int            `json:"year"`
	CIFStats         types.DistStats `json:"cif_stats"`
	LandedStats      types.DistStats `json:"landed_stats"`
	RetailStats      types.DistStats `json:"retail_stats"`
	FXStats          types.DistStats `json:"fx_stats"`
	FarmerRiskRate   float64         `json:"farmer_risk_rate"`
	ConsumerRiskRate float64         `json:"consumer_risk_rate"`
}

// NormalizeMonteCarlo parses the multi-year response and echoes the
// normalized inputs into the result so a session can always tell which
// knobs produced it.
func NormalizeMonteCarlo(body []byte, echo types.ScenarioRequest) (*types.ScenarioResult, error) {
	raw := body
	var wire monteCarloResponse
	if err := json.Unmarshal(raw, &wire); err != nil {
		repaired, rerr := jsonrepair.RepairJSON(string(body))
		if rerr != nil {
			return nil, fmt.Errorf("unparseable simulation response: %w", err)
		}
		raw = []byte(repaired)
		if err := json.Unmarshal(raw, &wire); err != nil {
			return nil, fmt.Errorf("unparseable simulation response after repair: %w", err)
		}
	}

	if len(wire.SimulationPaths) == 0 && len(wire.YearlySummary) == 0 {
		return nil, fmt.Errorf("%w: simulation paths and yearly summary", ErrNoUsableField)
	}

	result := &types.ScenarioResult{
		Years:      wire.YearsList,
		InputsEcho: echo,
	}

	for i, summary := range wire.YearlySummary {
		year := echo.StartYear + i
		if summary.Year != nil {
			year = *summary.Year
		} else if i < len(wire.YearsList) {
			year = wire.YearsList[i]
		}
		result.YearlySummaries = append(result.YearlySummaries, types.YearSummary{
			Year:             year,
			CIF:              summary.CIFStats,
			Landed:           summary.LandedStats,
			Retail:           summary.RetailStats,
			FX:               summary.FXStats,
			FarmerRiskRate:   summary.FarmerRiskRate,
			ConsumerRiskRate: summary.ConsumerRiskRate,
		})
	}

	for _, path := range wire.SimulationPaths {
		points := make([]types.YearPoint, 0, len(path))
		for i, rawPoint := range path {
			year := echo.StartYear + i
			if i < len(wire.YearsList) {
				year = wire.YearsList[i]
			}
			points = append(points, decodePathPoint(rawPoint, year))
		}
		result.SimulationPaths = append(result.SimulationPaths, points)
	}

	return result, nil
}

// decodePathPoint accepts the object form {year, cif, landed, retail}
// or a bare number, which the service emits for retail-only runs.
func decodePathPoint(raw json.RawMessage, fallbackYear int) types.YearPoint {
	var obj struct {
		Year   *int    `json:"year"`
		CIF    float64 `json:"cif"`
		Landed float64 `json:"landed"`
		Retail float64 `json:"retail"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && (obj.Year != nil || obj.CIF != 0 || obj.Landed != 0 || obj.Retail != 0) {
		point := types.YearPoint{Year: fallbackYear, CIF: obj.CIF, Landed: obj.Landed, Retail: obj.Retail}
		if obj.Year != nil {
			point.Year = *obj.Year
		}
		return point
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err == nil {
		return types.YearPoint{Year: fallbackYear, Retail: v}
	}
	return types.YearPoint{Year: fallbackYear}
}

// number walks a fallback-priority chain of keys and returns the first
// value coercible to a finite number. Strings holding numerics count;
// the service quotes its floats under load.
func number(m map[string]interface{}, keys ...string) (float64, bool) {
	for _, key := range keys {
		v, ok := m[key]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case float64:
			return t, true
		case json.Number:
			if f, err := t.Float64(); err == nil {
				return f, true
			}
		case string:
			if f, err := strconv.ParseFloat(t, 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

func str(m map[string]interface{}, keys ...string) (string, bool) {
	for _, key := range keys {
		if v, ok := m[key].(string); ok && v != "" {
			return v, true
		}
	}
	return "", false
}
