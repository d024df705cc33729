package orders

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/CodrCam/avalanchehour-shop/app/payments"
	"github.com/CodrCam/avalanchehour-shop/models"
)

// Handler takes the client-side order record posted right after
// payment confirmation. The webhook writes the same row through the
// same intake; whichever lands first creates it.
type Handler struct {
	intake *Intake
	log    *slog.Logger
}

func NewHandler(intake *Intake, log *slog.Logger) *Handler {
	return &Handler{intake: intake, log: log}
}

type recordRequest struct {
	OrderID         string             `json:"orderId"`
	PaymentIntentID string             `json:"paymentIntentId"`
	AmountCents     int64              `json:"amountCents"`
	Items           []models.OrderItem `json:"items"`
	Email           string             `json:"email,omitempty"`
	Shipping        *payments.Shipping `json:"shipping,omitempty"`
}

type recordResponse struct {
	OK         bool   `json:"ok"`
	IsNewOrder bool   `json:"isNewOrder"`
	OrderID    string `json:"orderId"`
}

func (h *Handler) HandleRecord(w http.ResponseWriter, r *http.Request) {
	var req recordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"ok": false, "error": "invalid request body"})
		return
	}
	if req.OrderID == "" {
		req.OrderID = uuid.NewString()
	}

	order := &models.Order{
		OrderID:               req.OrderID,
		StripePaymentIntentID: req.PaymentIntentID,
		Status:                "succeeded",
		FulfillmentStatus:     models.FulfillmentNew,
		AmountCents:           req.AmountCents,
		Items:                 req.Items,
		CustomerEmail:         req.Email,
	}
	if req.Shipping != nil {
		order.CustomerName = req.Shipping.Name
		order.ShippingCompany = req.Shipping.Company
		order.ShippingStreet = req.Shipping.Street
		order.ShippingStreet2 = req.Shipping.Street2
		order.ShippingCity = req.Shipping.City
		order.ShippingState = req.Shipping.State
		order.ShippingZip = req.Shipping.Zip
		order.ShippingCountry = req.Shipping.Country
	}

	isNew, err := h.intake.Record(order)
	if err != nil {
		h.log.Error("order record failed", "order_id", req.OrderID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"ok": false, "error": "order record failed"})
		return
	}
	writeJSON(w, http.StatusOK, recordResponse{OK: true, IsNewOrder: isNew, OrderID: req.OrderID})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
