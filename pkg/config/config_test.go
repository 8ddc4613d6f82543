package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StorageFile, cfg.StorageBackend)
	assert.Equal(t, "http://localhost:8000", cfg.SimulationURL)
	assert.Equal(t, 30*time.Second, cfg.SimulationTimeout)
	assert.Equal(t, 2*time.Second, cfg.SnapshotDebounce)
	assert.Equal(t, 19.3, cfg.Policy.NationalConsumptionMT)
	assert.Equal(t, 150.0, cfg.Policy.DutySensitivity)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORAGE_BACKEND", "memory")
	t.Setenv("SNAPSHOT_DEBOUNCE", "500ms")
	t.Setenv("DUTY_SENSITIVITY", "175")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, StorageMemory, cfg.StorageBackend)
	assert.Equal(t, 500*time.Millisecond, cfg.SnapshotDebounce)
	assert.Equal(t, 175.0, cfg.Policy.DutySensitivity)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "tape")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadPostgresRequiresURL(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestBadOverridesFallBack(t *testing.T) {
	t.Setenv("DUTY_SENSITIVITY", "lots")
	t.Setenv("SIMULATION_TIMEOUT", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 150.0, cfg.Policy.DutySensitivity)
	assert.Equal(t, 30*time.Second, cfg.SimulationTimeout)
}
