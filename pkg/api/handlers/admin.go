package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nmeo-op/palm-engine/internal/timeseries"
	"github.com/nmeo-op/palm-engine/pkg/audit"
	"github.com/nmeo-op/palm-engine/pkg/types"
)

// AdminHandler exposes the CRUD surface for the managed static
// dataset. Every mutation lands exactly one change-log entry through
// the store.
type AdminHandler struct {
	store     *timeseries.Store
	changeLog *audit.Log
}

// NewAdminHandler creates the admin handler
func NewAdminHandler(store *timeseries.Store, changeLog *audit.Log) *AdminHandler {
	return &AdminHandler{store: store, changeLog: changeLog}
}

// UpsertMonthRequest is the body for month-level price edits
type UpsertMonthRequest struct {
	Region   string         `json:"region"`
	YearType types.YearType `json:"year_type"`
	Year     string         `json:"year"`
	Month    string         `json:"month"`
	FFB      *float64       `json:"ffb"`
	CPO      *float64       `json:"cpo"`
}

// UpsertMonth inserts or overwrites one observation
func (h *AdminHandler) UpsertMonth(w http.ResponseWriter, r *http.Request) {
	var req UpsertMonthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "invalid JSON body")
		return
	}
	if err := h.store.UpsertMonth(req.Region, req.YearType, req.Year, req.Month, req.FFB, req.CPO); err != nil {
		writeStoreError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// DeleteMonthRequest is the body for month deletions
type DeleteMonthRequest struct {
	Region   string         `json:"region"`
	YearType types.YearType `json:"year_type"`
	Year     string         `json:"year"`
	Month    string         `json:"month"`
}

// DeleteMonth removes one observation
func (h *AdminHandler) DeleteMonth(w http.ResponseWriter, r *http.Request) {
	var req DeleteMonthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "invalid JSON body")
		return
	}
	if err := h.store.DeleteMonth(req.Region, req.YearType, req.Year, req.Month); err != nil {
		writeStoreError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// UpsertYearRequest is the body for registering a new year
type UpsertYearRequest struct {
	Region   string         `json:"region"`
	YearType types.YearType `json:"year_type"`
	Year     string         `json:"year"`
}

// UpsertYear registers a year at the end of a series' display order
func (h *AdminHandler) UpsertYear(w http.ResponseWriter, r *http.Request) {
	var req UpsertYearRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "invalid JSON body")
		return
	}
	if err := h.store.UpsertYear(req.Region, req.YearType, req.Year); err != nil {
		writeStoreError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ReorderYearsRequest is the body for dropdown reordering
type ReorderYearsRequest struct {
	Region   string         `json:"region"`
	YearType types.YearType `json:"year_type"`
	Order    []string       `json:"order"`
}

// ReorderYears replaces a series' display order
func (h *AdminHandler) ReorderYears(w http.ResponseWriter, r *http.Request) {
	var req ReorderYearsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "invalid JSON body")
		return
	}
	if err := h.store.ReorderYears(req.Region, req.YearType, req.Order); err != nil {
		writeStoreError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// UpsertRegion inserts or replaces a region profile
func (h *AdminHandler) UpsertRegion(w http.ResponseWriter, r *http.Request) {
	var profile types.RegionProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		WriteBadRequest(w, "invalid JSON body")
		return
	}
	if profile.ID == "" {
		WriteValidationError(w, "region id is required", nil)
		return
	}
	h.store.UpsertRegionProfile(profile)
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ChangeLog lists the audit trail oldest-first
func (h *AdminHandler) ChangeLog(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"entries": h.changeLog.Entries(),
	})
}

// Import wholesale-replaces the dataset with the posted snapshot
func (h *AdminHandler) Import(w http.ResponseWriter, r *http.Request) {
	var snap types.DatasetSnapshot
	if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
		WriteBadRequest(w, "invalid snapshot JSON")
		return
	}
	h.store.Import(snap)
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":       "ok",
		"observations": len(snap.Observations),
		"regions":      len(snap.Regions),
	})
}

// Reset discards all edits and restores the seed dataset
func (h *AdminHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.store.ResetToSeed()
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, timeseries.ErrUnknownMonth),
		errors.Is(err, timeseries.ErrUnknownYearType),
		errors.Is(err, timeseries.ErrNegativePrice),
		errors.Is(err, timeseries.ErrBadYearOrder):
		WriteValidationError(w, err.Error(), nil)
	case errors.Is(err, timeseries.ErrUnknownYear):
		WriteNotFound(w, err.Error())
	default:
		WriteInternalError(w, err.Error())
	}
}
