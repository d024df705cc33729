// Package webhook reacts to payment-provider events. It is the source
// of truth for stock decrements.
package webhook

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	stripe "github.com/stripe/stripe-go/v78"
	stripewebhook "github.com/stripe/stripe-go/v78/webhook"

	"github.com/CodrCam/avalanchehour-shop/app/orders"
	"github.com/CodrCam/avalanchehour-shop/models"
)

const maxBodyBytes = 65536

type InventoryWriter interface {
	ApplyDelta(sku string, delta int64) error
}

type Resolver interface {
	Resolve(productID string, explicitSKU string, opts models.Options) string
}

// VerifyFunc checks the event signature against the raw payload.
type VerifyFunc func(payload []byte, sigHeader, secret string) (stripe.Event, error)

// Handler processes signed events. Every outcome short of a transport
// failure is acknowledged with 200: the sender retries non-2xx
// responses, and retried delivery of non-idempotent side effects is
// worse than a dropped log line.
type Handler struct {
	intake    *orders.Intake
	inventory InventoryWriter
	resolver  Resolver
	secret    string
	verify    VerifyFunc
	log       *slog.Logger
}

func NewHandler(intake *orders.Intake, inventory InventoryWriter, resolver Resolver, secret string, log *slog.Logger) *Handler {
	return &Handler{
		intake:    intake,
		inventory: inventory,
		resolver:  resolver,
		secret:    secret,
		verify:    stripewebhook.ConstructEvent,
		log:       log,
	}
}

type ackResponse struct {
	Received bool   `json:"received"`
	Note     string `json:"note,omitempty"`
}

func (h *Handler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusServiceUnavailable)
		return
	}

	event, err := h.verify(payload, r.Header.Get("Stripe-Signature"), h.secret)
	if err != nil {
		// Log-and-accept: rejecting would put the sender in a retry loop.
		h.log.Warn("webhook signature verification failed", "error", err)
		ack(w, "signature verification failed")
		return
	}

	if event.Type != "payment_intent.succeeded" {
		ack(w, "")
		return
	}

	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		h.log.Error("webhook payload unmarshal failed", "event_id", event.ID, "error", err)
		ack(w, "unreadable payment intent")
		return
	}

	items := parseManifest(intent.Metadata["items"])
	h.recordOrder(&intent, items)
	h.decrementStock(intent.ID, items)
	ack(w, "")
}

// manifestItem is one entry of the compact cart manifest carried in
// intent metadata. Legacy entries may carry id+options instead of a
// resolved SKU.
type manifestItem struct {
	SKU     string         `json:"sku,omitempty"`
	ID      string         `json:"id,omitempty"`
	Qty     int64          `json:"qty"`
	Options models.Options `json:"options,omitempty"`
}

func parseManifest(raw string) []manifestItem {
	if raw == "" {
		return nil
	}
	var items []manifestItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil
	}
	return items
}

// recordOrder upserts the ledger row from the intent. A DB failure is
// logged and swallowed; the decrement still runs.
func (h *Handler) recordOrder(intent *stripe.PaymentIntent, items []manifestItem) {
	orderID := intent.Metadata["order_id"]
	if orderID == "" {
		orderID = intent.ID
	}

	order := &models.Order{
		OrderID:               orderID,
		StripePaymentIntentID: intent.ID,
		Status:                string(intent.Status),
		FulfillmentStatus:     models.FulfillmentNew,
		AmountCents:           intent.Amount,
		CustomerEmail:         intent.ReceiptEmail,
	}
	for _, item := range items {
		order.Items = append(order.Items, models.OrderItem{
			SKU:       item.SKU,
			ProductID: item.ID,
			Qty:       item.Qty,
			Options:   item.Options,
		})
	}
	if intent.Shipping != nil {
		order.CustomerName = intent.Shipping.Name
		if addr := intent.Shipping.Address; addr != nil {
			order.ShippingStreet = addr.Line1
			order.ShippingStreet2 = addr.Line2
			order.ShippingCity = addr.City
			order.ShippingState = addr.State
			order.ShippingZip = addr.PostalCode
			order.ShippingCountry = addr.Country
		}
	}

	if _, err := h.intake.Record(order); err != nil {
		h.log.Error("webhook order upsert failed", "order_id", orderID, "error", err)
	}
}

// decrementStock aggregates quantity per SKU and applies each as one
// atomic negative delta. A line that fails resolution, or a SKU whose
// write fails, is logged and skipped; it never blocks the rest.
func (h *Handler) decrementStock(intentID string, items []manifestItem) {
	deltas := make(map[string]int64)
	var order []string
	for _, item := range items {
		if item.Qty <= 0 {
			continue
		}
		s := h.resolver.Resolve(item.ID, item.SKU, item.Options)
		if s == "" {
			h.log.Warn("webhook item failed sku resolution, skipping",
				"intent_id", intentID, "product_id", item.ID)
			continue
		}
		if _, seen := deltas[s]; !seen {
			order = append(order, s)
		}
		deltas[s] -= item.Qty
	}

	for _, s := range order {
		if err := h.inventory.ApplyDelta(s, deltas[s]); err != nil {
			h.log.Error("inventory decrement failed",
				"intent_id", intentID, "sku", s, "delta", deltas[s], "error", err)
		}
	}
}

func ack(w http.ResponseWriter, note string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(ackResponse{Received: true, Note: note})
}
