package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatJSON(t *testing.T) {
	payload, err := json.Marshal(StatOf(17500))
	require.NoError(t, err)
	assert.Equal(t, "17500", string(payload))

	payload, err = json.Marshal(NoStat())
	require.NoError(t, err)
	assert.Equal(t, "null", string(payload), "absent must encode as null, never zero")

	var s Stat
	require.NoError(t, json.Unmarshal([]byte("null"), &s))
	assert.False(t, s.OK)
	require.NoError(t, json.Unmarshal([]byte("0"), &s))
	assert.True(t, s.OK, "an explicit zero is present data")
	assert.Zero(t, s.Value)
}

func TestYearTypeValid(t *testing.T) {
	assert.True(t, FinancialYear.Valid())
	assert.True(t, OilYear.Valid())
	assert.False(t, YearType("calendar").Valid())
	assert.False(t, YearType("").Valid())
}

func TestMonthIndex(t *testing.T) {
	assert.Equal(t, 0, MonthIndex("January"))
	assert.Equal(t, 11, MonthIndex("December"))
	assert.Equal(t, -1, MonthIndex("Smarch"))
}

func TestObservationStats(t *testing.T) {
	v := 16800.0
	o := PriceObservation{FFB: &v}
	assert.Equal(t, StatOf(16800), o.FFBStat())
	assert.Equal(t, NoStat(), o.CPOStat())
}

func TestSeriesKey(t *testing.T) {
	assert.Equal(t, "telangana|financialYear", SeriesKey("telangana", FinancialYear))
}
