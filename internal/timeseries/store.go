// Package timeseries holds the in-memory price dataset behind the one
// mutation API allowed to touch it. Reads never fail on missing data;
// absent observations come back as explicit sentinels, not zeros.
//
// The store serializes its own mutations with a mutex so a single
// process never corrupts state. Concurrent edits from two separate
// sessions are undefined behavior: the last writer wins and no merge
// is attempted.
package timeseries

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/nmeo-op/palm-engine/internal/persistence"
	"github.com/nmeo-op/palm-engine/internal/seed"
	"github.com/nmeo-op/palm-engine/pkg/audit"
	"github.com/nmeo-op/palm-engine/pkg/types"
)

var (
	// ErrUnknownMonth is returned for month labels outside the canonical list
	ErrUnknownMonth = errors.New("unknown month label")
	// ErrUnknownYearType is returned for calendars other than financial/oil year
	ErrUnknownYearType = errors.New("unknown year type")
	// ErrNegativePrice is returned when a present price is below zero
	ErrNegativePrice = errors.New("price must be non-negative")
	// ErrUnknownYear is returned by mutations that target a year the series lacks
	ErrUnknownYear = errors.New("unknown year")
	// ErrBadYearOrder is returned when a reorder is not a permutation of the existing years
	ErrBadYearOrder = errors.New("year order must be a permutation of existing years")
)

type obsKey struct {
	region string
	yt     types.YearType
	year   string
	month  string
}

// Store is the single writer for all price observations and region
// profiles. Every mutation appends one change-log entry and schedules
// a debounced snapshot write to the persistence backend.
type Store struct {
	mu        sync.Mutex
	obs       map[obsKey]types.PriceObservation
	yearOrder map[string][]string
	regions   []types.RegionProfile
	version   uint64

	changeLog *audit.Log
	backend   persistence.Store
	debounce  time.Duration
	timer     *time.Timer
}

// New hydrates a store from the persistence backend, falling back to
// the built-in seed dataset when no snapshot has ever been written.
func New(backend persistence.Store, changeLog *audit.Log, debounce time.Duration) (*Store, error) {
	s := &Store{
		obs:       make(map[obsKey]types.PriceObservation),
		yearOrder: make(map[string][]string),
		changeLog: changeLog,
		backend:   backend,
		debounce:  debounce,
	}

	snap, err := loadSnapshot(backend)
	if err != nil {
		return nil, err
	}
	s.restore(snap)

	if entries, err := loadChangeLog(backend); err == nil {
		changeLog.Restore(entries)
	}
	// Every mutation records a change-log entry, so arming the debounce
	// from the persister covers snapshot scheduling for all writes.
	changeLog.SetPersister(func([]types.ChangeLogEntry) { s.scheduleSnapshot() })

	return s, nil
}

func loadSnapshot(backend persistence.Store) (types.DatasetSnapshot, error) {
	payload, err := backend.Load(context.Background(), persistence.RecordSnapshot)
	if errors.Is(err, persistence.ErrNotFound) {
		log.Info("No persisted snapshot found, loading seed dataset")
		return seed.Snapshot(), nil
	}
	if err != nil {
		return types.DatasetSnapshot{}, fmt.Errorf("load snapshot: %w", err)
	}
	var snap types.DatasetSnapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return types.DatasetSnapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}

func loadChangeLog(backend persistence.Store) ([]types.ChangeLogEntry, error) {
	payload, err := backend.Load(context.Background(), persistence.RecordChangeLog)
	if err != nil {
		return nil, err
	}
	var entries []types.ChangeLogEntry
	if err := json.Unmarshal(payload, &entries); err != nil {
		return nil, fmt.Errorf("decode change log: %w", err)
	}
	return entries, nil
}

// restore replaces in-memory state from a snapshot. Caller must not
// hold the mutex.
func (s *Store) restore(snap types.DatasetSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.obs = make(map[obsKey]types.PriceObservation, len(snap.Observations))
	for _, o := range snap.Observations {
		s.obs[obsKey{o.Region, o.YearType, o.Year, o.Month}] = o
	}
	s.yearOrder = make(map[string][]string, len(snap.YearOrder))
	for k, years := range snap.YearOrder {
		s.yearOrder[k] = append([]string(nil), years...)
	}
	s.regions = append([]types.RegionProfile(nil), snap.Regions...)
	s.version++
}

// Version is a monotonic counter bumped on every mutation; aggregator
// caches key on it.
func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// GetObservation returns the observation for one month, or false when
// the tuple has no data. It never synthesizes a zero price.
func (s *Store) GetObservation(region string, yt types.YearType, year, month string) (types.PriceObservation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.obs[obsKey{region, yt, year, month}]
	return o, ok
}

// YearSlice returns all observations for one year ordered by canonical
// month, empty when the year is unknown.
func (s *Store) YearSlice(region string, yt types.YearType, year string) []types.PriceObservation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.yearSliceLocked(region, yt, year)
}

func (s *Store) yearSliceLocked(region string, yt types.YearType, year string) []types.PriceObservation {
	var out []types.PriceObservation
	for _, month := range types.MonthLabels {
		if o, ok := s.obs[obsKey{region, yt, year, month}]; ok {
			out = append(out, o)
		}
	}
	return out
}

// YearSlices returns one slice per year in display order; input for
// seasonal profiling.
func (s *Store) YearSlices(region string, yt types.YearType) [][]types.PriceObservation {
	s.mu.Lock()
	defer s.mu.Unlock()
	years := s.yearOrder[types.SeriesKey(region, yt)]
	out := make([][]types.PriceObservation, 0, len(years))
	for _, year := range years {
		out = append(out, s.yearSliceLocked(region, yt, year))
	}
	return out
}

// Years returns the year labels for a series in insertion order, which
// is the canonical display order.
func (s *Store) Years(region string, yt types.YearType) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.yearOrder[types.SeriesKey(region, yt)]...)
}

// Regions returns all region profiles in display order
func (s *Store) Regions() []types.RegionProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.RegionProfile(nil), s.regions...)
}

// Region looks up one profile by ID
func (s *Store) Region(id string) (types.RegionProfile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.regions {
		if r.ID == id {
			return r, true
		}
	}
	return types.RegionProfile{}, false
}

// UpsertMonth inserts or overwrites one observation. The year is
// registered at the end of the series order when new.
func (s *Store) UpsertMonth(region string, yt types.YearType, year, month string, ffb, cpo *float64) error {
	if !yt.Valid() {
		return ErrUnknownYearType
	}
	if types.MonthIndex(month) < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownMonth, month)
	}
	if (ffb != nil && *ffb < 0) || (cpo != nil && *cpo < 0) {
		return ErrNegativePrice
	}

	key := obsKey{region, yt, year, month}
	next := types.PriceObservation{
		Region: region, YearType: yt, Year: year, Month: month,
		FFB: ffb, CPO: cpo,
	}

	s.mu.Lock()
	prev, existed := s.obs[key]
	s.obs[key] = next
	s.ensureYearLocked(region, yt, year)
	s.version++
	s.mu.Unlock()

	field := fmt.Sprintf("prices.%s.%s.%s.%s", region, yt, year, month)
	if existed {
		s.changeLog.Record(types.ActionUpdate, field, prev, next)
	} else {
		s.changeLog.Record(types.ActionCreate, field, nil, next)
	}
	return nil
}

// UpsertYear registers a year at the end of a series' display order
// without creating observations. A no-op when the year already exists.
func (s *Store) UpsertYear(region string, yt types.YearType, year string) error {
	if !yt.Valid() {
		return ErrUnknownYearType
	}

	s.mu.Lock()
	added := s.ensureYearLocked(region, yt, year)
	if added {
		s.version++
	}
	s.mu.Unlock()

	if added {
		s.changeLog.Record(types.ActionCreate, fmt.Sprintf("years.%s.%s", region, yt), nil, year)
	}
	return nil
}

func (s *Store) ensureYearLocked(region string, yt types.YearType, year string) bool {
	key := types.SeriesKey(region, yt)
	for _, y := range s.yearOrder[key] {
		if y == year {
			return false
		}
	}
	s.yearOrder[key] = append(s.yearOrder[key], year)
	return true
}

// DeleteMonth removes one observation. Deleting an absent month is an
// error so the audit trail never records phantom deletions.
func (s *Store) DeleteMonth(region string, yt types.YearType, year, month string) error {
	key := obsKey{region, yt, year, month}

	s.mu.Lock()
	prev, existed := s.obs[key]
	if existed {
		delete(s.obs, key)
		s.version++
	}
	s.mu.Unlock()

	if !existed {
		return fmt.Errorf("%w: %s %s %s %s", ErrUnknownYear, region, yt, year, month)
	}
	s.changeLog.Record(types.ActionDelete, fmt.Sprintf("prices.%s.%s.%s.%s", region, yt, year, month), prev, nil)
	return nil
}

// ReorderYears replaces a series' display order. The new order must be
// a permutation of the existing years.
func (s *Store) ReorderYears(region string, yt types.YearType, order []string) error {
	key := types.SeriesKey(region, yt)

	s.mu.Lock()
	current := s.yearOrder[key]
	if !samePermutation(current, order) {
		s.mu.Unlock()
		return ErrBadYearOrder
	}
	prev := append([]string(nil), current...)
	s.yearOrder[key] = append([]string(nil), order...)
	s.version++
	s.mu.Unlock()

	s.changeLog.Record(types.ActionMove, fmt.Sprintf("years.%s.%s", region, yt), prev, order)
	return nil
}

// UpsertRegionProfile inserts or replaces one region profile
func (s *Store) UpsertRegionProfile(profile types.RegionProfile) {
	s.mu.Lock()
	var prev *types.RegionProfile
	replaced := false
	for i, r := range s.regions {
		if r.ID == profile.ID {
			p := r
			prev = &p
			s.regions[i] = profile
			replaced = true
			break
		}
	}
	if !replaced {
		s.regions = append(s.regions, profile)
	}
	s.version++
	s.mu.Unlock()

	field := "regions." + profile.ID
	if replaced {
		s.changeLog.Record(types.ActionUpdate, field, *prev, profile)
	} else {
		s.changeLog.Record(types.ActionCreate, field, nil, profile)
	}
}

// Import replaces the entire dataset with the given snapshot
func (s *Store) Import(snap types.DatasetSnapshot) {
	s.restore(snap)
	s.changeLog.Record(types.ActionImport, "dataset",
		nil, fmt.Sprintf("%d observations, %d regions", len(snap.Observations), len(snap.Regions)))
}

// ResetToSeed discards all edits and restores the built-in dataset
func (s *Store) ResetToSeed() {
	s.restore(seed.Snapshot())
	s.changeLog.Record(types.ActionReset, "dataset", nil, "seed defaults")
}

// Snapshot returns a deep copy of the full dataset for persistence or
// export. Observations are ordered by region, calendar, year order,
// then month so exports are stable.
func (s *Store) Snapshot() types.DatasetSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() types.DatasetSnapshot {
	snap := types.DatasetSnapshot{
		YearOrder: make(map[string][]string, len(s.yearOrder)),
		Regions:   append([]types.RegionProfile(nil), s.regions...),
	}
	for k, years := range s.yearOrder {
		snap.YearOrder[k] = append([]string(nil), years...)
	}

	keys := make([]obsKey, 0, len(s.obs))
	for k := range s.obs {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.region != b.region {
			return a.region < b.region
		}
		if a.yt != b.yt {
			return a.yt < b.yt
		}
		if a.year != b.year {
			return a.year < b.year
		}
		return types.MonthIndex(a.month) < types.MonthIndex(b.month)
	})
	snap.Observations = make([]types.PriceObservation, 0, len(keys))
	for _, k := range keys {
		snap.Observations = append(snap.Observations, s.obs[k])
	}
	return snap
}

// scheduleSnapshot arms the debounce timer. Multiple mutations inside
// the window collapse into one write; Flush and Close force the write
// so persistence is eventually exactly-once.
func (s *Store) scheduleSnapshot() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.debounce <= 0 {
		go s.persist()
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, s.persist)
}

func (s *Store) persist() {
	if err := s.Flush(context.Background()); err != nil {
		log.WithError(err).Error("Snapshot persistence failed")
	}
}

// Flush writes the snapshot and change log to the backend immediately
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.backend.Save(ctx, persistence.RecordSnapshot, payload); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	logPayload, err := json.Marshal(s.changeLog.Entries())
	if err != nil {
		return fmt.Errorf("encode change log: %w", err)
	}
	if err := s.backend.Save(ctx, persistence.RecordChangeLog, logPayload); err != nil {
		return fmt.Errorf("save change log: %w", err)
	}
	return nil
}

// Close flushes pending writes and releases the backend
func (s *Store) Close() error {
	if err := s.Flush(context.Background()); err != nil {
		return err
	}
	return s.backend.Close()
}

func samePermutation(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]int, len(a))
	for _, y := range a {
		seen[y]++
	}
	for _, y := range b {
		seen[y]--
		if seen[y] < 0 {
			return false
		}
	}
	return true
}
