package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nmeo-op/palm-engine/internal/persistence"
	"github.com/nmeo-op/palm-engine/internal/scenario"
	"github.com/nmeo-op/palm-engine/pkg/config"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check storage and simulation-service connectivity",
	RunE:  runHealth,
}

func runHealth(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	backend, err := persistence.Open(cfg)
	if err != nil {
		return fmt.Errorf("storage backend failed: %w", err)
	}
	defer backend.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := backend.Ping(ctx); err != nil {
		return fmt.Errorf("storage ping failed: %w", err)
	}
	fmt.Printf("✓ Storage backend healthy (%s)\n", cfg.StorageBackend)

	client := scenario.NewClient(cfg.SimulationURL, cfg.SimulationTimeout)
	if err := client.Ping(ctx); err != nil {
		fmt.Printf("✗ Simulation service unreachable: %v\n", err)
		return nil
	}
	fmt.Println("✓ Simulation service reachable")
	return nil
}
