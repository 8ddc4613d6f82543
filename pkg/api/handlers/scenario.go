package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"

	"github.com/nmeo-op/palm-engine/internal/scenario"
	"github.com/nmeo-op/palm-engine/pkg/config"
	"github.com/nmeo-op/palm-engine/pkg/types"
)

var scenarioDispatches = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "palm_engine_scenario_dispatches_total",
	Help: "Scenario simulation dispatches by endpoint and outcome.",
}, []string{"endpoint", "outcome"})

// ScenarioHandler fronts the external tariff-simulation service. The
// handler owns no retry policy; transport failures surface as 502 so
// the UI can offer a retry while keeping last-known-good results.
type ScenarioHandler struct {
	client *scenario.Client
	policy config.PolicyConstants
}

// NewScenarioHandler creates the scenario handler
func NewScenarioHandler(client *scenario.Client, policy config.PolicyConstants) *ScenarioHandler {
	return &ScenarioHandler{client: client, policy: policy}
}

// TariffRequestBody is the single-point simulation input
type TariffRequestBody struct {
	MonthName   string   `json:"month_name"`
	Year        int      `json:"year"`
	BCD         float64  `json:"bcd"`
	Cess        float64  `json:"cess"`
	SpotPrice   *float64 `json:"spot_price"`
	TargetPrice float64  `json:"target_price"`
}

// TariffResponse pairs the normalized outcome with the derived policy
// heuristics
type TariffResponse struct {
	Outcome types.TariffOutcome `json:"outcome"`
	Impact  types.PolicyImpact  `json:"impact"`
}

// Tariff runs the single-point simulation
func (h *ScenarioHandler) Tariff(w http.ResponseWriter, r *http.Request) {
	var body TariffRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		WriteBadRequest(w, "invalid JSON body")
		return
	}

	req, err := scenario.BuildTariffRequest(body.MonthName, body.Year, body.BCD, body.Cess, body.SpotPrice)
	if err != nil {
		writeScenarioError(w, "tariff", err)
		return
	}

	outcome, err := h.client.RunTariff(r.Context(), req)
	if err != nil {
		writeScenarioError(w, "tariff", err)
		return
	}

	scenarioDispatches.WithLabelValues("tariff", "ok").Inc()
	WriteJSON(w, http.StatusOK, TariffResponse{
		Outcome: outcome,
		Impact:  scenario.ImpactFor(outcome, h.policy, body.TargetPrice),
	})
}

// MonteCarlo runs the multi-year inflation/cost-push simulation
func (h *ScenarioHandler) MonteCarlo(w http.ResponseWriter, r *http.Request) {
	var req types.ScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "invalid JSON body")
		return
	}

	result, err := h.client.RunMonteCarlo(r.Context(), req)
	if err != nil {
		writeScenarioError(w, "montecarlo", err)
		return
	}

	scenarioDispatches.WithLabelValues("montecarlo", "ok").Inc()
	WriteJSON(w, http.StatusOK, result)
}

// Trade passes the opaque multi-agent scenario through. The response
// is repaired and forwarded as-is, not schema-validated.
func (h *ScenarioHandler) Trade(w http.ResponseWriter, r *http.Request) {
	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteBadRequest(w, "invalid JSON body")
		return
	}

	result, err := h.client.RunTrade(r.Context(), payload)
	if err != nil {
		writeScenarioError(w, "trade", err)
		return
	}

	scenarioDispatches.WithLabelValues("trade", "ok").Inc()
	WriteJSON(w, http.StatusOK, result)
}

func writeScenarioError(w http.ResponseWriter, endpoint string, err error) {
	var invalid *scenario.InvalidInputError
	var network *scenario.NetworkError
	switch {
	case errors.As(err, &invalid):
		scenarioDispatches.WithLabelValues(endpoint, "invalid").Inc()
		WriteValidationError(w, invalid.Message, map[string]interface{}{"field": invalid.Field})
	case errors.Is(err, scenario.ErrStale):
		// the newer request's response is authoritative; tell the
		// session to keep what it has
		scenarioDispatches.WithLabelValues(endpoint, "stale").Inc()
		WriteError(w, "STALE_RESPONSE", "superseded by a newer scenario request", http.StatusConflict, nil)
	case errors.As(err, &network):
		scenarioDispatches.WithLabelValues(endpoint, "network").Inc()
		WriteUpstreamError(w, err.Error())
	case errors.Is(err, scenario.ErrNoUsableField):
		scenarioDispatches.WithLabelValues(endpoint, "malformed").Inc()
		WriteUpstreamError(w, err.Error())
	default:
		scenarioDispatches.WithLabelValues(endpoint, "error").Inc()
		log.WithError(err).Error("Scenario dispatch failed")
		WriteInternalError(w, err.Error())
	}
}
