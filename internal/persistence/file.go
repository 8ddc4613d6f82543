package persistence

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore writes each record to its own JSON file under a directory.
// Writes go through a temp file and rename so a crash mid-write never
// leaves a truncated record behind.
type FileStore struct {
	dir string
}

// NewFileStore creates the directory if needed
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		dir = "data"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (f *FileStore) path(record Record) string {
	return filepath.Join(f.dir, string(record)+".json")
}

// Load reads the record's file, mapping a missing file to ErrNotFound
func (f *FileStore) Load(_ context.Context, record Record) ([]byte, error) {
	payload, err := os.ReadFile(f.path(record))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", record, err)
	}
	return payload, nil
}

// Save writes the payload atomically
func (f *FileStore) Save(_ context.Context, record Record, payload []byte) error {
	tmp, err := os.CreateTemp(f.dir, string(record)+"-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", record, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, f.path(record)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", record, err)
	}
	return nil
}

// Ping verifies the directory is writable
func (f *FileStore) Ping(_ context.Context) error {
	info, err := os.Stat(f.dir)
	if err != nil {
		return fmt.Errorf("stat storage directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("storage path %s is not a directory", f.dir)
	}
	return nil
}

// Close is a no-op
func (f *FileStore) Close() error { return nil }
