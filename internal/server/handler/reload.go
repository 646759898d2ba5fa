package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/saurrx/priced/internal/domain"
	"github.com/saurrx/priced/internal/service"
)

// ReloadService triggers a catalog reload in this process.
type ReloadService interface {
	Reload(ctx context.Context) error
}

// ReloadHandler serves the admin snapshot-reload endpoint.
type ReloadHandler struct {
	svc    ReloadService
	bus    domain.SignalBus // nil: reload stays local to this process
	logger *slog.Logger
}

// NewReloadHandler creates a ReloadHandler.
func NewReloadHandler(svc ReloadService, bus domain.SignalBus, logger *slog.Logger) *ReloadHandler {
	return &ReloadHandler{svc: svc, bus: bus, logger: logger}
}

// Reload fetches a fresh snapshot and swaps the catalog. On success the
// reload signal is also published so peer replicas pick up the new snapshot.
// A failed reload leaves the previous snapshot serving and reports 502.
// POST /api/admin/reload
func (h *ReloadHandler) Reload(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Reload(r.Context()); err != nil {
		h.logger.ErrorContext(r.Context(), "handler: reload failed",
			slog.String("error", err.Error()),
		)
		if errors.Is(err, domain.ErrSnapshotInvalid) {
			writeError(w, http.StatusBadGateway, "snapshot invalid, previous snapshot still active")
			return
		}
		writeError(w, http.StatusBadGateway, "reload failed, previous snapshot still active")
		return
	}

	reloadID := uuid.NewString()
	if h.bus != nil {
		if err := h.bus.Publish(r.Context(), service.ReloadChannel, []byte(reloadID)); err != nil {
			h.logger.WarnContext(r.Context(), "handler: reload broadcast failed",
				slog.String("reload_id", reloadID),
				slog.String("error", err.Error()),
			)
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reloaded", "reloadId": reloadID})
}
