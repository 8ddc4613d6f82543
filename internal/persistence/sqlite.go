package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure Go sqlite driver
)

// SQLiteStore persists the two records as rows in a single state table
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database file inside dir
func NewSQLiteStore(dir string) (*SQLiteStore, error) {
	if dir == "" {
		dir = "data"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	path := filepath.Join(dir, "palm-engine.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS state (
		record TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create state table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Load returns the record payload or ErrNotFound
func (s *SQLiteStore) Load(ctx context.Context, record Record) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM state WHERE record = ?`, string(record)).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", record, err)
	}
	return payload, nil
}

// Save upserts the record payload
func (s *SQLiteStore) Save(ctx context.Context, record Record, payload []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO state (record, payload) VALUES (?, ?)
		 ON CONFLICT(record) DO UPDATE SET payload = excluded.payload`,
		string(record), payload)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", record, err)
	}
	return nil
}

// Ping checks the underlying connection
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
