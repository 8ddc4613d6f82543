package commands

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nmeo-op/palm-engine/internal/aggregation"
	"github.com/nmeo-op/palm-engine/internal/scenario"
	"github.com/nmeo-op/palm-engine/pkg/api"
)

var serverPort string

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP API server",
	Long: `Start the palm engine HTTP API server.

The server exposes REST endpoints for:
  - Dashboard statistics (price cards, seasonal profiles, coverage, national progress)
  - Admin CRUD on the managed static dataset, with a bounded change log
  - Dataset export (JSON, generated Go source, Excel workbook)
  - Tariff and Monte-Carlo scenario proxying to the external simulation service

Examples:
  # Start server on default port
  palm-engine server

  # Start server on custom port
  palm-engine server --port 9090

Environment variables:
  STORAGE_BACKEND   - memory, file, sqlite, or postgres (default: file)
  STORAGE_PATH      - directory for file/sqlite backends (default: data)
  DATABASE_URL      - PostgreSQL connection string (postgres backend only)
  SIMULATION_URL    - base URL of the tariff-simulation service
  CORS_ORIGINS      - comma-separated CORS origins (default: localhost dev ports)
  LOG_LEVEL         - logging level (debug/info/warn/error)`,
	RunE: runServer,
}

func init() {
	serverCmd.Flags().StringVar(&serverPort, "port", "", "HTTP server port (defaults to PORT env or 8080)")
}

func runServer(cmd *cobra.Command, args []string) error {
	log.Info("Initializing palm engine HTTP API server")

	cfg, store, backend, changeLog, err := openStore()
	if err != nil {
		return err
	}

	port := serverPort
	if port == "" {
		port = cfg.Port
	}

	log.WithFields(log.Fields{
		"port":    port,
		"storage": cfg.StorageBackend,
	}).Info("Server configuration loaded")

	server := api.New(cfg, api.Deps{
		Store:      store,
		Backend:    backend,
		ChangeLog:  changeLog,
		Aggregator: aggregation.NewAggregator(store, cfg.Policy),
		Scenario:   scenario.NewClient(cfg.SimulationURL, cfg.SimulationTimeout),
	})

	return server.Start(port)
}
