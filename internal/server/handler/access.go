package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/saurrx/priced/internal/domain"
)

// AccessHandler serves access-code administration and validation endpoints.
type AccessHandler struct {
	store  domain.AccessCodeStore
	logger *slog.Logger
}

// NewAccessHandler creates an AccessHandler.
func NewAccessHandler(store domain.AccessCodeStore, logger *slog.Logger) *AccessHandler {
	return &AccessHandler{store: store, logger: logger}
}

type accessCodePayload struct {
	Code      string    `json:"code"`
	MaxUses   int       `json:"maxUses"`
	UsedCount int       `json:"usedCount"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

// ListCodes returns all access codes.
// GET /api/admin/codes
func (h *AccessHandler) ListCodes(w http.ResponseWriter, r *http.Request) {
	codes, err := h.store.List(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list codes failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list codes")
		return
	}

	out := make([]accessCodePayload, len(codes))
	for i, c := range codes {
		out[i] = accessCodePayload{
			Code:      c.Code,
			MaxUses:   c.MaxUses,
			UsedCount: c.UsedCount,
			Active:    c.Active,
			CreatedAt: c.CreatedAt,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"codes": out})
}

type createCodeRequest struct {
	Code    string `json:"code"`
	MaxUses int    `json:"maxUses"`
}

// CreateCode registers a new access code. MaxUses of zero means unlimited.
// POST /api/admin/codes
func (h *AccessHandler) CreateCode(w http.ResponseWriter, r *http.Request) {
	var req createCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Code == "" {
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}
	if req.MaxUses < 0 {
		writeError(w, http.StatusBadRequest, "maxUses must be non-negative")
		return
	}

	err := h.store.Create(r.Context(), domain.AccessCode{
		Code:    req.Code,
		MaxUses: req.MaxUses,
		Active:  true,
	})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			writeError(w, http.StatusConflict, "code already exists")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: create code failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to create code")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"code": req.Code})
}

type updateCodeRequest struct {
	MaxUses *int  `json:"maxUses,omitempty"`
	Active  *bool `json:"active,omitempty"`
}

// UpdateCode changes a code's limit or active flag.
// PATCH /api/admin/codes/{code}
func (h *AccessHandler) UpdateCode(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "missing code")
		return
	}

	var req updateCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.store.Update(r.Context(), code, domain.AccessCodeUpdate{
		MaxUses: req.MaxUses,
		Active:  req.Active,
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "code not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update code")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteCode removes a code.
// DELETE /api/admin/codes/{code}
func (h *AccessHandler) DeleteCode(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "missing code")
		return
	}
	if err := h.store.Delete(r.Context(), code); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete code")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ResetCode zeroes a code's usage counter.
// POST /api/admin/codes/{code}/reset
func (h *AccessHandler) ResetCode(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "missing code")
		return
	}
	if err := h.store.ResetUsage(r.Context(), code); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "code not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to reset code")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type validateCodeRequest struct {
	Code string `json:"code"`
}

// ValidateCode consumes one use of a code and reports the outcome.
// POST /api/access/validate
func (h *AccessHandler) ValidateCode(w http.ResponseWriter, r *http.Request) {
	var req validateCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Code == "" {
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}

	status, err := h.store.Consume(r.Context(), req.Code)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: validate code failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to validate code")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"valid":  status == domain.CodeOK,
		"reason": string(status),
	})
}
