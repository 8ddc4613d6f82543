package handlers

import (
	"net/http"

	"github.com/nmeo-op/palm-engine/internal/aggregation"
	"github.com/nmeo-op/palm-engine/pkg/types"
)

// DashboardHandler serves the read-only statistics the dashboard pages
// render: price cards, seasonal profiles, coverage, and national
// progress.
type DashboardHandler struct {
	agg *aggregation.Aggregator
}

// NewDashboardHandler creates a dashboard handler over the aggregator
func NewDashboardHandler(agg *aggregation.Aggregator) *DashboardHandler {
	return &DashboardHandler{agg: agg}
}

// queryYearType reads and validates the yearType query parameter,
// defaulting to the financial year.
func queryYearType(r *http.Request) (types.YearType, bool) {
	raw := r.URL.Query().Get("yearType")
	if raw == "" {
		return types.FinancialYear, true
	}
	yt := types.YearType(raw)
	return yt, yt.Valid()
}

// PriceCardsResponse pairs the card values with the filter that
// produced them
type PriceCardsResponse struct {
	Region     string                 `json:"region"`
	YearType   types.YearType         `json:"year_type"`
	Year       string                 `json:"year"`
	Month      string                 `json:"month"`
	PriceCards aggregation.PriceCards `json:"price_cards"`
}

// PriceCards returns the headline FFB/CPO figures for one selection.
// Missing data yields null card values, never zeros; the UI renders
// those as its "Data being compiled" placeholder.
func (h *DashboardHandler) PriceCards(w http.ResponseWriter, r *http.Request) {
	region := r.URL.Query().Get("region")
	year := r.URL.Query().Get("year")
	if region == "" || year == "" {
		WriteBadRequest(w, "region and year query parameters are required")
		return
	}
	yt, ok := queryYearType(r)
	if !ok {
		WriteValidationError(w, "unknown yearType", map[string]interface{}{
			"allowed": []string{string(types.FinancialYear), string(types.OilYear)},
		})
		return
	}
	month := r.URL.Query().Get("month")
	if month != "" && month != aggregation.MonthAll && types.MonthIndex(month) < 0 {
		WriteValidationError(w, "unknown month", map[string]interface{}{"provided": month})
		return
	}

	slice := h.agg.Store().YearSlice(region, yt, year)
	WriteJSON(w, http.StatusOK, PriceCardsResponse{
		Region:     region,
		YearType:   yt,
		Year:       year,
		Month:      month,
		PriceCards: aggregation.Cards(slice, month),
	})
}

// Years returns a series' year labels in canonical display order
func (h *DashboardHandler) Years(w http.ResponseWriter, r *http.Request) {
	region := r.URL.Query().Get("region")
	if region == "" {
		WriteBadRequest(w, "region query parameter is required")
		return
	}
	yt, ok := queryYearType(r)
	if !ok {
		WriteBadRequest(w, "unknown yearType")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"region": region,
		"years":  h.agg.Store().Years(region, yt),
	})
}

// Seasonal returns a region's seasonal FFB profile, rebuilt on demand
// from source observations
func (h *DashboardHandler) Seasonal(w http.ResponseWriter, r *http.Request) {
	region := r.URL.Query().Get("region")
	if region == "" {
		WriteBadRequest(w, "region query parameter is required")
		return
	}
	yt, ok := queryYearType(r)
	if !ok {
		WriteBadRequest(w, "unknown yearType")
		return
	}
	WriteJSON(w, http.StatusOK, h.agg.Seasonal(region, yt))
}

// Coverage returns per-region coverage with both the clamped display
// value and the raw flagged ratio
func (h *DashboardHandler) Coverage(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"regions": h.agg.RegionCoverage(),
	})
}

// Regions returns all region profiles
func (h *DashboardHandler) Regions(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"regions": h.agg.Store().Regions(),
	})
}

// Progress returns the memoized mission-wide totals
func (h *DashboardHandler) Progress(w http.ResponseWriter, r *http.Request) {
	yt, ok := queryYearType(r)
	if !ok {
		WriteBadRequest(w, "unknown yearType")
		return
	}
	WriteJSON(w, http.StatusOK, h.agg.National(yt))
}
