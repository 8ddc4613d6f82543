package handlers

import (
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/nmeo-op/palm-engine/internal/timeseries"
	"github.com/nmeo-op/palm-engine/pkg/audit"
	"github.com/nmeo-op/palm-engine/pkg/export"
	"github.com/nmeo-op/palm-engine/pkg/types"
)

// ExportHandler streams the dataset in the requested download format
type ExportHandler struct {
	store     *timeseries.Store
	changeLog *audit.Log
}

// NewExportHandler creates the export handler
func NewExportHandler(store *timeseries.Store, changeLog *audit.Log) *ExportHandler {
	return &ExportHandler{store: store, changeLog: changeLog}
}

// Handle serves /api/admin/export?format=json|source|xlsx
func (h *ExportHandler) Handle(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}

	snap := h.store.Snapshot()
	now := time.Now()

	switch format {
	case "json":
		payload, err := export.JSON(snap)
		if err != nil {
			WriteInternalError(w, fmt.Sprintf("export failed: %v", err))
			return
		}
		serveDownload(w, export.Filename("json", now), "application/json", payload)
	case "source":
		payload, err := export.GoSource(snap)
		if err != nil {
			WriteInternalError(w, fmt.Sprintf("export failed: %v", err))
			return
		}
		serveDownload(w, export.Filename("go", now), "text/plain; charset=utf-8", payload)
	case "xlsx":
		workbook, err := export.Workbook(snap)
		if err != nil {
			WriteInternalError(w, fmt.Sprintf("export failed: %v", err))
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename("xlsx", now)))
		if err := workbook.Write(w); err != nil {
			log.WithError(err).Error("Failed to stream workbook")
			return
		}
	default:
		WriteValidationError(w, "unknown export format", map[string]interface{}{
			"provided": format,
			"allowed":  []string{"json", "source", "xlsx"},
		})
		return
	}

	h.changeLog.Record(types.ActionExport, "dataset", nil, format)
	log.WithFields(log.Fields{
		"format":       format,
		"observations": len(snap.Observations),
	}).Info("Dataset exported")
}

func serveDownload(w http.ResponseWriter, filename, contentType string, payload []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if _, err := w.Write(payload); err != nil {
		log.WithError(err).Error("Failed to stream export")
	}
}
