package aggregation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nmeo-op/palm-engine/pkg/types"
)

func stats(values ...float64) []types.Stat {
	out := make([]types.Stat, 0, len(values))
	for _, v := range values {
		out = append(out, types.StatOf(v))
	}
	return out
}

func TestAverageAllAbsent(t *testing.T) {
	result := Average([]types.Stat{types.NoStat(), types.NoStat(), types.NoStat()})
	assert.False(t, result.OK, "all-absent input must stay absent, not become zero")

	result = Average(nil)
	assert.False(t, result.OK)
}

func TestAverageSkipsAbsent(t *testing.T) {
	values := []types.Stat{types.StatOf(100), types.NoStat(), types.StatOf(200)}
	result := Average(values)
	require.True(t, result.OK)
	assert.Equal(t, 150.0, result.Value, "absent entries must not count toward the divisor")
}

func TestAverageRounding(t *testing.T) {
	result := Average(stats(19000, 19500, 20000))
	require.True(t, result.OK)
	assert.Equal(t, 19500.0, result.Value)

	// 19250.5 rounds half-up
	result = Average(stats(19001, 19500))
	require.True(t, result.OK)
	assert.Equal(t, 19251.0, result.Value)
}

func TestAverageExactKeepsPrecision(t *testing.T) {
	result := AverageExact(stats(19001, 19500))
	require.True(t, result.OK)
	assert.InDelta(t, 19250.5, result.Value, 1e-9)
}

func TestMinMax(t *testing.T) {
	_, ok := MinMax([]types.Stat{types.NoStat(), types.NoStat()})
	assert.False(t, ok)

	ext, ok := MinMax([]types.Stat{types.NoStat(), types.StatOf(150), types.StatOf(80), types.StatOf(120)})
	require.True(t, ok)
	assert.Equal(t, 80.0, ext.Min)
	assert.Equal(t, 150.0, ext.Max)
}

func obs(month string, ffb float64) types.PriceObservation {
	return types.PriceObservation{
		Region: "telangana", YearType: types.FinancialYear, Year: "2023-24",
		Month: month, FFB: &ffb,
	}
}

func TestSeasonalProfile(t *testing.T) {
	yearA := []types.PriceObservation{obs("January", 10000), obs("May", 16000), obs("September", 12000)}
	yearB := []types.PriceObservation{obs("January", 12000), obs("May", 18000), obs("September", 14000)}

	profile := SeasonalProfile([][]types.PriceObservation{yearA, yearB})

	assert.Equal(t, "May", profile.PeakMonth)
	assert.Equal(t, "January", profile.LeanMonth)
	assert.Equal(t, 11000.0, profile.PerMonthAverage["January"])
	assert.Equal(t, 17000.0, profile.PerMonthAverage["May"])
	assert.Equal(t, 13000.0, profile.PerMonthAverage["September"])
	// (17000-11000)/11000 * 100
	assert.InDelta(t, 54.545, profile.VariationPercent, 0.001)
	assert.Greater(t, profile.Volatility, 0.0)
}

func TestSeasonalProfileTieBreak(t *testing.T) {
	// March and July tie for peak; June and October tie for lean
	slice := []types.PriceObservation{
		obs("March", 15000), obs("June", 9000), obs("July", 15000), obs("October", 9000),
	}

	for i := 0; i < 50; i++ {
		profile := SeasonalProfile([][]types.PriceObservation{slice})
		assert.Equal(t, "March", profile.PeakMonth, "earlier calendar month must win the tie")
		assert.Equal(t, "June", profile.LeanMonth)
	}
}

func TestSeasonalProfileEmpty(t *testing.T) {
	profile := SeasonalProfile(nil)
	assert.Empty(t, profile.PerMonthAverage)
	assert.Empty(t, profile.PeakMonth)
	assert.Zero(t, profile.Volatility)
}

func TestSeasonalProfileIgnoresAbsentFFB(t *testing.T) {
	slice := []types.PriceObservation{
		{Region: "telangana", YearType: types.FinancialYear, Year: "2023-24", Month: "April", FFB: nil},
		obs("May", 14000),
	}
	profile := SeasonalProfile([][]types.PriceObservation{slice})
	_, hasApril := profile.PerMonthAverage["April"]
	assert.False(t, hasApril, "months with no reported price must not appear as zero averages")
	assert.Equal(t, "May", profile.PeakMonth)
}

func TestCoverageClampAndRaw(t *testing.T) {
	normal := Coverage(types.RegionProfile{ID: "telangana", PotentialAreaHa: 816000, AreaCoveredHa: 92000})
	assert.False(t, normal.Flagged)
	assert.InDelta(t, 11.274, normal.Display, 0.001)
	assert.Equal(t, normal.Raw, normal.Display)

	// covered exceeding potential: display clamps, raw stays visible and flagged
	over := Coverage(types.RegionProfile{ID: "odd", PotentialAreaHa: 1000, AreaCoveredHa: 1250})
	assert.True(t, over.Flagged)
	assert.Equal(t, 100.0, over.Display)
	assert.Equal(t, 125.0, over.Raw)

	zero := Coverage(types.RegionProfile{ID: "empty"})
	assert.True(t, zero.Flagged)
	assert.Zero(t, zero.Display)
}

func TestSelfSufficiencyRatio(t *testing.T) {
	ratio, err := SelfSufficiencyRatio(9.5, 19.3)
	require.NoError(t, err)
	assert.InDelta(t, 49.222, ratio, 0.001)

	_, err = SelfSufficiencyRatio(9.5, 0)
	assert.ErrorIs(t, err, ErrDivisionByZero, "zero consumption must fail, never return Inf")
}

func TestProgressTowardTarget(t *testing.T) {
	progress, err := ProgressTowardTarget(50, 200)
	require.NoError(t, err)
	assert.Equal(t, 25.0, progress)

	_, err = ProgressTowardTarget(50, 0)
	assert.ErrorIs(t, err, ErrDivisionByZero)
}

func TestCardsAllMonthsPartialYear(t *testing.T) {
	// six reported months out of twelve: the average divides by six
	slice := []types.PriceObservation{
		obs("January", 16000), obs("February", 16200), obs("March", 16400),
		obs("April", 16600), obs("May", 16800), obs("June", 17000),
	}

	cards := Cards(slice, MonthAll)
	require.True(t, cards.FFB.OK)
	assert.Equal(t, 16500.0, cards.FFB.Value)
	assert.Equal(t, 6, cards.MonthsWithData)
	assert.False(t, cards.CPO.OK, "no CPO reported means absent, not zero")
}

func TestCardsSingleMonth(t *testing.T) {
	slice := []types.PriceObservation{obs("January", 16000), obs("February", 17000)}

	cards := Cards(slice, "February")
	require.True(t, cards.FFB.OK)
	assert.Equal(t, 17000.0, cards.FFB.Value)

	cards = Cards(slice, "December")
	assert.False(t, cards.FFB.OK)
	assert.False(t, cards.CPO.OK)
	assert.Zero(t, cards.MonthsWithData)
}
