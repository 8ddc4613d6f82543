package scenario

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nmeo-op/palm-engine/pkg/types"
)

func TestNormalizeTariffFullResponse(t *testing.T) {
	body := []byte(`{
		"cif_price_used": 4520.5,
		"landed_cost": 5890.2,
		"estimated_retail_price": 142.7,
		"risk_flag": "MODERATE",
		"effective_duty_pct": 27.5,
		"cif_source": "spot",
		"spot_price": 4520.5
	}`)

	out, err := NormalizeTariff(body)
	require.NoError(t, err)
	assert.Equal(t, 4520.5, out.CIFPrice)
	assert.Equal(t, 5890.2, out.LandedCost)
	assert.Equal(t, 142.7, out.RetailPrice)
	assert.Equal(t, "MODERATE", out.RiskFlag)
	assert.Equal(t, 27.5, out.EffectiveDutyPercent)
	assert.Equal(t, "spot", out.CIFSource)
	assert.True(t, out.UsedSpotPrice)
}

func TestNormalizeTariffFallbackChain(t *testing.T) {
	// older response shape: no cif_price_used, no landed_cost, no risk flag
	body := []byte(`{"predicted_cif_price": 4100, "retail_price": 131}`)

	out, err := NormalizeTariff(body)
	require.NoError(t, err)
	assert.Equal(t, 4100.0, out.CIFPrice)
	assert.Equal(t, 4100.0, out.LandedCost, "missing landed cost falls back to cif")
	assert.Equal(t, 131.0, out.RetailPrice)
	assert.Equal(t, "UNKNOWN", out.RiskFlag)
	assert.Equal(t, "predicted", out.CIFSource)
	assert.False(t, out.UsedSpotPrice)
}

func TestNormalizeTariffRetailFallsBackToLanded(t *testing.T) {
	body := []byte(`{"cif_price_used": 4000, "landed_cost": 5200}`)

	out, err := NormalizeTariff(body)
	require.NoError(t, err)
	assert.Equal(t, 5200.0, out.RetailPrice)
}

func TestNormalizeTariffQuotedNumbers(t *testing.T) {
	body := []byte(`{"cif_price_used": "4350.25", "landed_cost": "5610"}`)

	out, err := NormalizeTariff(body)
	require.NoError(t, err)
	assert.Equal(t, 4350.25, out.CIFPrice)
	assert.Equal(t, 5610.0, out.LandedCost)
}

func TestNormalizeTariffRepairsMalformedJSON(t *testing.T) {
	// single quotes and a trailing comma, as the service has shipped
	body := []byte(`{'cif_price_used': 4200, 'risk_flag': 'HIGH',}`)

	out, err := NormalizeTariff(body)
	require.NoError(t, err)
	assert.Equal(t, 4200.0, out.CIFPrice)
	assert.Equal(t, "HIGH", out.RiskFlag)
}

func TestNormalizeTariffNoUsableCIF(t *testing.T) {
	_, err := NormalizeTariff([]byte(`{"risk_flag": "LOW"}`))
	assert.ErrorIs(t, err, ErrNoUsableField)

	_, err = NormalizeTariff([]byte(`{"cif_price_used": null, "predicted_cif_price": null}`))
	assert.ErrorIs(t, err, ErrNoUsableField)
}

func TestNormalizeMonteCarloObjectPoints(t *testing.T) {
	body := []byte(`{
		"simulation_paths": [
			[{"year": 2025, "cif": 4200, "landed": 5400, "retail": 130},
			 {"year": 2026, "cif": 4350, "landed": 5600, "retail": 135}]
		],
		"yearly_summary": [
			{"year": 2025, "cif_stats": {"mean": 4200, "min": 3900, "max": 4500, "p10": 4000, "p90": 4400}, "farmer_risk_rate": 0.12},
			{"year": 2026, "cif_stats": {"mean": 4350, "min": 4000, "max": 4700, "p10": 4100, "p90": 4600}, "farmer_risk_rate": 0.08}
		],
		"years_list": [2025, 2026]
	}`)

	echo := types.ScenarioRequest{StartYear: 2025}
	result, err := NormalizeMonteCarlo(body, echo)
	require.NoError(t, err)

	assert.Equal(t, []int{2025, 2026}, result.Years)
	require.Len(t, result.YearlySummaries, 2)
	assert.Equal(t, 2025, result.YearlySummaries[0].Year)
	assert.Equal(t, 4200.0, result.YearlySummaries[0].CIF.Mean)
	assert.Equal(t, 0.12, result.YearlySummaries[0].FarmerRiskRate)

	require.Len(t, result.SimulationPaths, 1)
	require.Len(t, result.SimulationPaths[0], 2)
	assert.Equal(t, types.YearPoint{Year: 2026, CIF: 4350, Landed: 5600, Retail: 135}, result.SimulationPaths[0][1])
	assert.Equal(t, echo, result.InputsEcho)
}

func TestNormalizeMonteCarloBareNumberPoints(t *testing.T) {
	body := []byte(`{"simulation_paths": [[128.5, 131.2, 134.9]], "years_list": [2025, 2026, 2027]}`)

	result, err := NormalizeMonteCarlo(body, types.ScenarioRequest{StartYear: 2025})
	require.NoError(t, err)
	require.Len(t, result.SimulationPaths, 1)
	points := result.SimulationPaths[0]
	require.Len(t, points, 3)
	assert.Equal(t, types.YearPoint{Year: 2026, Retail: 131.2}, points[1])
}

func TestNormalizeMonteCarloMissingYearsFallsBackToStart(t *testing.T) {
	body := []byte(`{"yearly_summary": [{"farmer_risk_rate": 0.2}, {"farmer_risk_rate": 0.3}]}`)

	result, err := NormalizeMonteCarlo(body, types.ScenarioRequest{StartYear: 2024})
	require.NoError(t, err)
	require.Len(t, result.YearlySummaries, 2)
	assert.Equal(t, 2024, result.YearlySummaries[0].Year)
	assert.Equal(t, 2025, result.YearlySummaries[1].Year)
}

func TestNormalizeMonteCarloEmptyResponse(t *testing.T) {
	_, err := NormalizeMonteCarlo([]byte(`{}`), types.ScenarioRequest{})
	assert.ErrorIs(t, err, ErrNoUsableField)
}

func TestNormalizeMonteCarloRepairsMalformedJSON(t *testing.T) {
	body := []byte(`{'yearly_summary': [{'year': 2025, 'farmer_risk_rate': 0.15}],}`)

	result, err := NormalizeMonteCarlo(body, types.ScenarioRequest{})
	require.NoError(t, err)
	require.Len(t, result.YearlySummaries, 1)
	assert.Equal(t, 2025, result.YearlySummaries[0].Year)
	assert.Equal(t, 0.15, result.YearlySummaries[0].FarmerRiskRate)
}
