package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// StorageBackend selects where dataset snapshots are persisted
type StorageBackend string

const (
	StorageMemory   StorageBackend = "memory"
	StorageFile     StorageBackend = "file"
	StorageSQLite   StorageBackend = "sqlite"
	StoragePostgres StorageBackend = "postgres"
)

// Config holds all runtime settings for the palm engine
type Config struct {
	LogLevel string
	Port     string

	StorageBackend StorageBackend
	StoragePath    string // file/sqlite backends
	DatabaseURL    string // postgres backend

	SimulationURL     string // base URL of the external tariff-simulation service
	SimulationTimeout time.Duration

	SnapshotDebounce time.Duration

	CORSOrigins string

	Policy PolicyConstants
}

// PolicyConstants carries the national-level figures the dashboard's
// ratio computations divide by. The defaults reflect the dataset
// vintage the mission published; they are deliberately overridable
// rather than re-embedded as magic numbers.
type PolicyConstants struct {
	NationalConsumptionMT float64 // annual edible-oil consumption, million tonnes
	DomesticProductionMT  float64 // annual domestic production, million tonnes
	BaselineDutyPercent   float64 // duty baseline for farmer price impact
	DutySensitivity       float64 // ₹/MT per duty point
	SupportFraction       float64 // share of the viability gap the mission funds
	AnnualImportVolumeKT  float64 // import volume for FX outflow estimates, thousand tonnes
}

// DefaultPolicyConstants returns the dataset-vintage defaults
func DefaultPolicyConstants() PolicyConstants {
	return PolicyConstants{
		NationalConsumptionMT: 19.3,
		DomesticProductionMT:  9.5,
		BaselineDutyPercent:   5,
		DutySensitivity:       150,
		SupportFraction:       0.1,
		AnnualImportVolumeKT:  8200,
	}
}

// Load reads configuration from the environment. A .env file in the
// working directory is applied first when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err == nil {
		log.Debug("Loaded environment from .env")
	}

	backend := StorageBackend(getEnv("STORAGE_BACKEND", string(StorageFile)))
	switch backend {
	case StorageMemory, StorageFile, StorageSQLite, StoragePostgres:
	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q", backend)
	}

	if backend == StoragePostgres && os.Getenv("DATABASE_URL") == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required for the postgres backend")
	}

	cfg := &Config{
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		Port:              getEnv("PORT", "8080"),
		StorageBackend:    backend,
		StoragePath:       getEnv("STORAGE_PATH", "data"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		SimulationURL:     getEnv("SIMULATION_URL", "http://localhost:8000"),
		SimulationTimeout: getDuration("SIMULATION_TIMEOUT", 30*time.Second),
		SnapshotDebounce:  getDuration("SNAPSHOT_DEBOUNCE", 2*time.Second),
		CORSOrigins:       getEnv("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000"),
		Policy:            loadPolicyConstants(),
	}

	return cfg, nil
}

func loadPolicyConstants() PolicyConstants {
	pc := DefaultPolicyConstants()
	pc.NationalConsumptionMT = getFloat("NATIONAL_CONSUMPTION_MT", pc.NationalConsumptionMT)
	pc.DomesticProductionMT = getFloat("DOMESTIC_PRODUCTION_MT", pc.DomesticProductionMT)
	pc.BaselineDutyPercent = getFloat("BASELINE_DUTY_PCT", pc.BaselineDutyPercent)
	pc.DutySensitivity = getFloat("DUTY_SENSITIVITY", pc.DutySensitivity)
	pc.SupportFraction = getFloat("SUPPORT_FRACTION", pc.SupportFraction)
	pc.AnnualImportVolumeKT = getFloat("ANNUAL_IMPORT_VOLUME_KT", pc.AnnualImportVolumeKT)
	return pc
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.WithFields(log.Fields{"key": key, "value": value}).Warn("Ignoring non-numeric override")
		return defaultValue
	}
	return f
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.WithFields(log.Fields{"key": key, "value": value}).Warn("Ignoring unparsable duration")
		return defaultValue
	}
	return d
}
