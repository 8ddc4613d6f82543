// Package audit maintains the bounded change log for admin mutations
// to the managed dataset.
package audit

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"

	"github.com/nmeo-op/palm-engine/pkg/types"
)

var datasetMutations = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "palm_engine_dataset_mutations_total",
	Help: "Audited dataset mutations by action.",
}, []string{"action"})

const (
	// MaxEntries caps the in-memory log; the oldest entry is evicted
	// once the cap is reached.
	MaxEntries = 100

	// maxValueLen bounds serialized old/new values. The log exists for
	// human audit, not replay, so truncation loses nothing it needs.
	maxValueLen = 100
)

// Persister receives the serialized change log whenever it mutates.
// The timeseries store wires this to the snapshot scheduler.
type Persister func(entries []types.ChangeLogEntry)

// Log is a FIFO ring of the most recent dataset mutations
type Log struct {
	mu        sync.Mutex
	entries   []types.ChangeLogEntry
	persister Persister
}

// New creates an empty change log
func New() *Log {
	return &Log{}
}

// SetPersister registers the persistence callback invoked after every
// append
func (l *Log) SetPersister(p Persister) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.persister = p
}

// Record appends one entry, evicting the oldest once the cap is hit,
// and returns the new entry's ID.
func (l *Log) Record(action types.ChangeAction, field string, oldValue, newValue interface{}) string {
	return l.RecordAs(action, field, oldValue, newValue, "admin")
}

// RecordAs is Record with an explicit actor
func (l *Log) RecordAs(action types.ChangeAction, field string, oldValue, newValue interface{}, actor string) string {
	entry := types.ChangeLogEntry{
		ID:        uuid.New().String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Action:    action,
		Field:     field,
		OldValue:  serializeValue(oldValue),
		NewValue:  serializeValue(newValue),
		User:      actor,
	}

	l.mu.Lock()
	l.entries = append(l.entries, entry)
	if len(l.entries) > MaxEntries {
		l.entries = l.entries[len(l.entries)-MaxEntries:]
	}
	snapshot := make([]types.ChangeLogEntry, len(l.entries))
	copy(snapshot, l.entries)
	persister := l.persister
	l.mu.Unlock()

	datasetMutations.WithLabelValues(string(action)).Inc()
	log.WithFields(log.Fields{
		"action": action,
		"field":  field,
	}).Debug("Change recorded")

	if persister != nil {
		persister(snapshot)
	}
	return entry.ID
}

// Entries returns the log oldest-first
func (l *Log) Entries() []types.ChangeLogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]types.ChangeLogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the current entry count
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Restore replaces the log contents from a persisted snapshot, keeping
// only the most recent MaxEntries.
func (l *Log) Restore(entries []types.ChangeLogEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(entries) > MaxEntries {
		entries = entries[len(entries)-MaxEntries:]
	}
	l.entries = make([]types.ChangeLogEntry, len(entries))
	copy(l.entries, entries)
}

// serializeValue renders a value for the log, truncated to maxValueLen
func serializeValue(v interface{}) string {
	if v == nil {
		return ""
	}
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case fmt.Stringer:
		s = t.String()
	default:
		b, err := json.Marshal(v)
		if err != nil {
			s = fmt.Sprintf("%v", v)
		} else {
			s = string(b)
		}
	}
	if len(s) > maxValueLen {
		s = s[:maxValueLen-3] + "..."
	}
	return s
}
