package handlers

import (
	"net/http"

	"github.com/nmeo-op/palm-engine/internal/persistence"
	"github.com/nmeo-op/palm-engine/internal/scenario"
)

// HealthHandler reports storage and simulation-service reachability
type HealthHandler struct {
	backend persistence.Store
	client  *scenario.Client
}

// NewHealthHandler creates the health handler
func NewHealthHandler(backend persistence.Store, client *scenario.Client) *HealthHandler {
	return &HealthHandler{backend: backend, client: client}
}

// Handle serves /health. Storage failure is unhealthy; an unreachable
// simulation service degrades but does not fail the check, since the
// dashboard's read paths work without it.
func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":  "healthy",
		"service": "palm-engine",
	}
	status := http.StatusOK

	if err := h.backend.Ping(r.Context()); err != nil {
		response["status"] = "unhealthy"
		response["storage"] = err.Error()
		status = http.StatusServiceUnavailable
	} else {
		response["storage"] = "ok"
	}

	if h.client != nil {
		if err := h.client.Ping(r.Context()); err != nil {
			response["simulation_service"] = "unreachable"
			if response["status"] == "healthy" {
				response["status"] = "degraded"
			}
		} else {
			response["simulation_service"] = "ok"
		}
	}

	WriteJSON(w, status, response)
}
