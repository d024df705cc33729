package payments

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/CodrCam/avalanchehour-shop/models"
)

// Handler exposes intent creation and tax amendment. A nil
// orchestrator means the payment provider is not configured; that is a
// per-request 500, not a process failure.
type Handler struct {
	orchestrator *Orchestrator
	log          *slog.Logger
}

func NewHandler(orchestrator *Orchestrator, log *slog.Logger) *Handler {
	return &Handler{orchestrator: orchestrator, log: log}
}

func (h *Handler) HandleCreateIntent(w http.ResponseWriter, r *http.Request) {
	if h.orchestrator == nil {
		http.Error(w, "payment provider not configured", http.StatusInternalServerError)
		return
	}
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	result, err := h.orchestrator.CreateIntent(r.Context(), req)
	if err != nil {
		h.writeCheckoutError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) HandleAmendTax(w http.ResponseWriter, r *http.Request) {
	if h.orchestrator == nil {
		http.Error(w, "payment provider not configured", http.StatusInternalServerError)
		return
	}
	var req AmendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	result, err := h.orchestrator.AmendTax(r.Context(), req)
	if err != nil {
		h.writeCheckoutError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) writeCheckoutError(w http.ResponseWriter, err error) {
	var shortfall *ShortfallError
	switch {
	case errors.As(err, &shortfall):
		writeJSON(w, http.StatusConflict, map[string]interface{}{
			"error":    "insufficient stock",
			"problems": shortfall.Problems,
		})
	case errors.Is(err, ErrEmptyCart), errors.Is(err, ErrMissingShipping):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, models.ErrStoreUnavailable):
		h.log.Error("checkout blocked, inventory unavailable", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "inventory unavailable"})
	default:
		h.log.Error("checkout failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "checkout failed"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
