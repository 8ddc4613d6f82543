package export

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nmeo-op/palm-engine/pkg/types"
)

func sampleSnapshot() types.DatasetSnapshot {
	ffb := 17500.0
	return types.DatasetSnapshot{
		Observations: []types.PriceObservation{
			{Region: "telangana", YearType: types.FinancialYear, Year: "2023-24", Month: "May", FFB: &ffb},
			{Region: "telangana", YearType: types.FinancialYear, Year: "2023-24", Month: "June"},
		},
		YearOrder: map[string][]string{"telangana|financialYear": {"2023-24"}},
		Regions: []types.RegionProfile{
			{ID: "telangana", Name: "Telangana", PotentialAreaHa: 816000, AreaCoveredHa: 92000, OER: 17.8, ProcessingMills: 5},
		},
	}
}

func TestFilename(t *testing.T) {
	now := time.Date(2025, time.March, 14, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "nmeo-dataset-2025-03-14.json", Filename("json", now))
	assert.Equal(t, "nmeo-dataset-2025-03-14.xlsx", Filename("xlsx", now))
}

func TestJSONRoundTrip(t *testing.T) {
	payload, err := JSON(sampleSnapshot())
	require.NoError(t, err)

	var decoded types.DatasetSnapshot
	require.NoError(t, json.Unmarshal(payload, &decoded))
	require.Len(t, decoded.Observations, 2)
	require.NotNil(t, decoded.Observations[0].FFB)
	assert.Equal(t, 17500.0, *decoded.Observations[0].FFB)
	assert.Nil(t, decoded.Observations[1].FFB, "absent prices survive the round trip as null")
}

func TestGoSource(t *testing.T) {
	src, err := GoSource(sampleSnapshot())
	require.NoError(t, err)

	text := string(src)
	assert.True(t, strings.HasPrefix(text, "// Code generated"))
	assert.Contains(t, text, "package staticdata")
	assert.Contains(t, text, "const DatasetJSON = ")

	// the embedded literal must decode back to the dataset
	quoted := strings.TrimSpace(strings.SplitN(text, "const DatasetJSON = ", 2)[1])
	var literal string
	require.NoError(t, json.Unmarshal([]byte(quoted), &literal))
	var decoded types.DatasetSnapshot
	require.NoError(t, json.Unmarshal([]byte(literal), &decoded))
	assert.Len(t, decoded.Regions, 1)
}

func TestWorkbook(t *testing.T) {
	f, err := Workbook(sampleSnapshot())
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{"Regions", "Prices"}, f.GetSheetList())

	name, err := f.GetCellValue("Regions", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Telangana", name)

	ffb, err := f.GetCellValue("Prices", "E2")
	require.NoError(t, err)
	assert.Equal(t, "17500", ffb)

	absent, err := f.GetCellValue("Prices", "E3")
	require.NoError(t, err)
	assert.Empty(t, absent, "absent prices export as empty cells, not zeros")
}
