package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
)

// PostgresStore persists the two records in a palm_engine_state table.
// It mirrors the sqlite backend's semantics so the two are
// interchangeable behind the Store interface.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore connects using the given DSN and ensures the state
// table exists
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS palm_engine_state (
		record TEXT PRIMARY KEY,
		payload BYTEA NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create state table: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// Load returns the record payload or ErrNotFound
func (p *PostgresStore) Load(ctx context.Context, record Record) ([]byte, error) {
	var payload []byte
	err := p.db.QueryRowContext(ctx,
		`SELECT payload FROM palm_engine_state WHERE record = $1`, string(record)).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", record, err)
	}
	return payload, nil
}

// Save upserts the record payload
func (p *PostgresStore) Save(ctx context.Context, record Record, payload []byte) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO palm_engine_state (record, payload, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (record) DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()`,
		string(record), payload)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", record, err)
	}
	return nil
}

// Ping checks the underlying connection
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// Close closes the pool
func (p *PostgresStore) Close() error {
	return p.db.Close()
}
