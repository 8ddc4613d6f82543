// Package persistence stores the dataset snapshot and change log as
// two durable JSON records behind a backend-agnostic interface.
package persistence

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/nmeo-op/palm-engine/pkg/config"
)

// Record names one of the two logical records this layer manages
type Record string

const (
	RecordSnapshot  Record = "staticDataBackup"
	RecordChangeLog Record = "staticDataChangeLog"
)

// ErrNotFound is returned by Load when the record has never been saved
var ErrNotFound = errors.New("record not found")

// Store persists JSON payloads for the two managed records
type Store interface {
	Load(ctx context.Context, record Record) ([]byte, error)
	Save(ctx context.Context, record Record, payload []byte) error
	Ping(ctx context.Context) error
	Close() error
}

// Open constructs the backend selected by configuration
func Open(cfg *config.Config) (Store, error) {
	switch cfg.StorageBackend {
	case config.StorageMemory:
		return NewMemoryStore(), nil
	case config.StorageFile:
		return NewFileStore(cfg.StoragePath)
	case config.StorageSQLite:
		return NewSQLiteStore(cfg.StoragePath)
	case config.StoragePostgres:
		return NewPostgresStore(cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

// MemoryStore keeps records in process memory; used in tests and as
// the fallback when durability is not wanted.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[Record][]byte
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[Record][]byte)}
}

// Load returns the stored payload or ErrNotFound
func (m *MemoryStore) Load(_ context.Context, record Record) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	payload, ok := m.records[record]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(payload))
	copy(out, payload)
	return out, nil
}

// Save stores a copy of the payload
func (m *MemoryStore) Save(_ context.Context, record Record, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(payload))
	copy(cp, payload)
	m.records[record] = cp
	return nil
}

// Ping always succeeds for the in-memory backend
func (m *MemoryStore) Ping(_ context.Context) error { return nil }

// Close is a no-op
func (m *MemoryStore) Close() error { return nil }
