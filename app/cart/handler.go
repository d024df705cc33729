package cart

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

type validateRequest struct {
	Items []Line `json:"items"`
}

// Handler exposes the validator over HTTP. Two routes share it: the
// storefront cart pre-check is lenient (a malformed body reads as an
// empty cart), the checkout-time check is strict (malformed body is a
// 422). Both contracts predate this service and are kept.
type Handler struct {
	validator *Validator
	strict    bool
	log       *slog.Logger
}

func NewHandler(validator *Validator, strict bool, log *slog.Logger) *Handler {
	return &Handler{validator: validator, strict: strict, log: log}
}

func (h *Handler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if h.strict {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "invalid request body"})
			return
		}
		req.Items = nil
	}

	result, err := h.validator.Validate(req.Items)
	if err != nil {
		h.log.Error("cart validation failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "inventory unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
