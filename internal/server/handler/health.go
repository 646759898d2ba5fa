package handler

import (
	"net/http"
	"time"

	"github.com/saurrx/priced/internal/service"
)

// StatusService reports the current serving state.
type StatusService interface {
	Status() service.Status
}

// HealthHandler serves the health endpoint.
type HealthHandler struct {
	svc       StatusService
	startedAt time.Time
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(svc StatusService) *HealthHandler {
	return &HealthHandler{svc: svc, startedAt: time.Now()}
}

type healthResponse struct {
	Status        string         `json:"status"`
	UptimeSeconds int64          `json:"uptimeSeconds"`
	Catalog       service.Status `json:"catalog"`
}

// HealthCheck reports service liveness and catalog state.
// GET /api/health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(h.startedAt).Seconds()),
		Catalog:       h.svc.Status(),
	})
}
