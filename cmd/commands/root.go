package commands

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nmeo-op/palm-engine/internal/persistence"
	"github.com/nmeo-op/palm-engine/internal/timeseries"
	"github.com/nmeo-op/palm-engine/pkg/audit"
	"github.com/nmeo-op/palm-engine/pkg/config"
)

var rootCmd = &cobra.Command{
	Use:   "palm-engine",
	Short: "NMEO-OP price and progress aggregation engine",
	Long:  `Dataset, statistics, and scenario backend for the National Mission on Edible Oils - Oil Palm dashboard`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(resetCmd)
}

// openStore loads configuration and hydrates the timeseries store;
// shared bootstrap for every subcommand.
func openStore() (*config.Config, *timeseries.Store, persistence.Store, *audit.Log, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err == nil {
		log.SetLevel(level)
	}

	backend, err := persistence.Open(cfg)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to open storage backend: %w", err)
	}

	changeLog := audit.New()
	store, err := timeseries.New(backend, changeLog, cfg.SnapshotDebounce)
	if err != nil {
		backend.Close()
		return nil, nil, nil, nil, fmt.Errorf("failed to hydrate dataset: %w", err)
	}

	return cfg, store, backend, changeLog, nil
}
