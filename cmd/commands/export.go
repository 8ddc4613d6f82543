package commands

import (
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nmeo-op/palm-engine/pkg/export"
)

var exportFormat string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the current dataset to a date-stamped file",
	Long: `Export the managed dataset in one of three formats:
  json    pretty-printed JSON snapshot
  source  generated Go source file embedding the dataset
  xlsx    Excel workbook with region and price sheets`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "json, source, or xlsx")
}

func runExport(cmd *cobra.Command, args []string) error {
	_, store, _, _, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	snap := store.Snapshot()
	now := time.Now()

	var filename string
	switch exportFormat {
	case "json":
		payload, err := export.JSON(snap)
		if err != nil {
			return err
		}
		filename = export.Filename("json", now)
		if err := os.WriteFile(filename, payload, 0o644); err != nil {
			return fmt.Errorf("write export: %w", err)
		}
	case "source":
		payload, err := export.GoSource(snap)
		if err != nil {
			return err
		}
		filename = export.Filename("go", now)
		if err := os.WriteFile(filename, payload, 0o644); err != nil {
			return fmt.Errorf("write export: %w", err)
		}
	case "xlsx":
		workbook, err := export.Workbook(snap)
		if err != nil {
			return err
		}
		filename = export.Filename("xlsx", now)
		if err := workbook.SaveAs(filename); err != nil {
			return fmt.Errorf("write export: %w", err)
		}
	default:
		return fmt.Errorf("unknown format %q (want json, source, or xlsx)", exportFormat)
	}

	log.WithFields(log.Fields{
		"file":         filename,
		"observations": len(snap.Observations),
		"regions":      len(snap.Regions),
	}).Info("Dataset exported")
	return nil
}
