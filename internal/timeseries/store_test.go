package timeseries

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nmeo-op/palm-engine/internal/persistence"
	"github.com/nmeo-op/palm-engine/pkg/audit"
	"github.com/nmeo-op/palm-engine/pkg/types"
)

func newTestStore(t *testing.T) (*Store, *audit.Log, *persistence.MemoryStore) {
	t.Helper()
	backend := persistence.NewMemoryStore()
	changeLog := audit.New()
	store, err := New(backend, changeLog, 0)
	require.NoError(t, err)
	return store, changeLog, backend
}

func ffb(v float64) *float64 { return &v }

func TestNewLoadsSeedWhenBackendEmpty(t *testing.T) {
	store, _, _ := newTestStore(t)

	years := store.Years("telangana", types.FinancialYear)
	assert.Equal(t, []string{"2022-23", "2023-24", "2024-25"}, years)

	obs, ok := store.GetObservation("telangana", types.FinancialYear, "2022-23", "January")
	require.True(t, ok)
	require.NotNil(t, obs.FFB)
	assert.Equal(t, 20180.0, *obs.FFB)
}

func TestGetObservationMissing(t *testing.T) {
	store, _, _ := newTestStore(t)

	// August 2024-25 in Telangana has no reported price
	_, ok := store.GetObservation("telangana", types.FinancialYear, "2024-25", "August")
	assert.False(t, ok)

	_, ok = store.GetObservation("nowhere", types.FinancialYear, "2022-23", "January")
	assert.False(t, ok)
}

func TestUpsertMonthValidation(t *testing.T) {
	store, _, _ := newTestStore(t)

	err := store.UpsertMonth("telangana", "lunar", "2024-25", "May", ffb(17000), nil)
	assert.ErrorIs(t, err, ErrUnknownYearType)

	err = store.UpsertMonth("telangana", types.FinancialYear, "2024-25", "Maytober", ffb(17000), nil)
	assert.ErrorIs(t, err, ErrUnknownMonth)

	err = store.UpsertMonth("telangana", types.FinancialYear, "2024-25", "May", ffb(-1), nil)
	assert.ErrorIs(t, err, ErrNegativePrice)
}

func TestUpsertMonthCreateAndUpdate(t *testing.T) {
	store, changeLog, _ := newTestStore(t)
	before := changeLog.Len()
	v0 := store.Version()

	require.NoError(t, store.UpsertMonth("mizoram", types.FinancialYear, "2025-26", "April", ffb(16800), nil))
	obs, ok := store.GetObservation("mizoram", types.FinancialYear, "2025-26", "April")
	require.True(t, ok)
	assert.Equal(t, 16800.0, *obs.FFB)
	assert.Nil(t, obs.CPO)
	assert.Greater(t, store.Version(), v0)

	// new year registers at the end of the series order
	assert.Equal(t, []string{"2025-26"}, store.Years("mizoram", types.FinancialYear))

	require.NoError(t, store.UpsertMonth("mizoram", types.FinancialYear, "2025-26", "April", ffb(17100), ffb(91000)))
	obs, _ = store.GetObservation("mizoram", types.FinancialYear, "2025-26", "April")
	assert.Equal(t, 17100.0, *obs.FFB)

	entries := changeLog.Entries()
	require.Equal(t, before+2, len(entries))
	assert.Equal(t, types.ActionCreate, entries[len(entries)-2].Action)
	assert.Equal(t, types.ActionUpdate, entries[len(entries)-1].Action)
}

func TestDeleteMonth(t *testing.T) {
	store, changeLog, _ := newTestStore(t)

	err := store.DeleteMonth("telangana", types.FinancialYear, "2024-25", "August")
	assert.ErrorIs(t, err, ErrUnknownYear, "deleting an absent month must not log a phantom entry")

	before := changeLog.Len()
	require.NoError(t, store.DeleteMonth("telangana", types.FinancialYear, "2024-25", "July"))
	_, ok := store.GetObservation("telangana", types.FinancialYear, "2024-25", "July")
	assert.False(t, ok)
	assert.Equal(t, before+1, changeLog.Len())
}

func TestUpsertYearIdempotent(t *testing.T) {
	store, changeLog, _ := newTestStore(t)
	before := changeLog.Len()

	require.NoError(t, store.UpsertYear("telangana", types.FinancialYear, "2025-26"))
	assert.Equal(t, []string{"2022-23", "2023-24", "2024-25", "2025-26"}, store.Years("telangana", types.FinancialYear))
	assert.Equal(t, before+1, changeLog.Len())

	// registering an existing year changes nothing
	v := store.Version()
	require.NoError(t, store.UpsertYear("telangana", types.FinancialYear, "2025-26"))
	assert.Equal(t, v, store.Version())
	assert.Equal(t, before+1, changeLog.Len())
}

func TestReorderYears(t *testing.T) {
	store, _, _ := newTestStore(t)

	err := store.ReorderYears("telangana", types.FinancialYear, []string{"2024-25", "2022-23"})
	assert.ErrorIs(t, err, ErrBadYearOrder)

	err = store.ReorderYears("telangana", types.FinancialYear, []string{"2024-25", "2022-23", "2022-23"})
	assert.ErrorIs(t, err, ErrBadYearOrder)

	require.NoError(t, store.ReorderYears("telangana", types.FinancialYear, []string{"2024-25", "2023-24", "2022-23"}))
	assert.Equal(t, []string{"2024-25", "2023-24", "2022-23"}, store.Years("telangana", types.FinancialYear))
}

func TestYearSliceCanonicalOrder(t *testing.T) {
	store, _, _ := newTestStore(t)

	slice := store.YearSlice("telangana", types.FinancialYear, "2024-25")
	require.Len(t, slice, 9, "absent months are omitted, not zero-filled")
	assert.Equal(t, "January", slice[0].Month)
	assert.Equal(t, "July", slice[6].Month)
	assert.Equal(t, "November", slice[7].Month)
	assert.Equal(t, "December", slice[8].Month)
}

func TestUpsertRegionProfile(t *testing.T) {
	store, changeLog, _ := newTestStore(t)
	count := len(store.Regions())

	store.UpsertRegionProfile(types.RegionProfile{ID: "kerala", Name: "Kerala", PotentialAreaHa: 50000})
	assert.Len(t, store.Regions(), count+1)
	profile, ok := store.Region("kerala")
	require.True(t, ok)
	assert.Equal(t, 50000.0, profile.PotentialAreaHa)

	store.UpsertRegionProfile(types.RegionProfile{ID: "kerala", Name: "Kerala", PotentialAreaHa: 60000})
	assert.Len(t, store.Regions(), count+1, "upsert by ID must replace, not append")
	profile, _ = store.Region("kerala")
	assert.Equal(t, 60000.0, profile.PotentialAreaHa)

	entries := changeLog.Entries()
	assert.Equal(t, types.ActionUpdate, entries[len(entries)-1].Action)
}

func TestSnapshotRoundTrip(t *testing.T) {
	store, _, _ := newTestStore(t)
	require.NoError(t, store.UpsertMonth("assam", types.FinancialYear, "2025-26", "June", ffb(15500), ffb(88000)))

	snap := store.Snapshot()

	backend := persistence.NewMemoryStore()
	restored, err := New(backend, audit.New(), 0)
	require.NoError(t, err)
	restored.Import(snap)

	obs, ok := restored.GetObservation("assam", types.FinancialYear, "2025-26", "June")
	require.True(t, ok)
	assert.Equal(t, 15500.0, *obs.FFB)
	assert.Equal(t, store.Years("telangana", types.OilYear), restored.Years("telangana", types.OilYear))
}

func TestFlushAndRehydrate(t *testing.T) {
	backend := persistence.NewMemoryStore()
	store, err := New(backend, audit.New(), 0)
	require.NoError(t, err)

	require.NoError(t, store.UpsertMonth("odisha", types.FinancialYear, "2024-25", "July", ffb(19900), nil))
	require.NoError(t, store.Flush(context.Background()))

	reloaded, err := New(backend, audit.New(), 0)
	require.NoError(t, err)
	obs, ok := reloaded.GetObservation("odisha", types.FinancialYear, "2024-25", "July")
	require.True(t, ok)
	assert.Equal(t, 19900.0, *obs.FFB)
}

func TestChangeLogSurvivesRestart(t *testing.T) {
	backend := persistence.NewMemoryStore()
	changeLog := audit.New()
	store, err := New(backend, changeLog, 0)
	require.NoError(t, err)

	require.NoError(t, store.UpsertMonth("odisha", types.FinancialYear, "2024-25", "August", ffb(20100), nil))
	require.NoError(t, store.Flush(context.Background()))
	recorded := changeLog.Len()

	reloadedLog := audit.New()
	_, err = New(backend, reloadedLog, 0)
	require.NoError(t, err)
	assert.Equal(t, recorded, reloadedLog.Len())
}

func TestResetToSeed(t *testing.T) {
	store, changeLog, _ := newTestStore(t)
	require.NoError(t, store.UpsertMonth("telangana", types.FinancialYear, "2024-25", "August", ffb(21000), nil))

	store.ResetToSeed()

	_, ok := store.GetObservation("telangana", types.FinancialYear, "2024-25", "August")
	assert.False(t, ok)
	entries := changeLog.Entries()
	assert.Equal(t, types.ActionReset, entries[len(entries)-1].Action)
}
