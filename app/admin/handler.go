// Package admin exposes the inventory and order management endpoints
// behind the admin console. Expected failures come back as soft
// {ok:false, error} payloads so the console degrades to a message
// instead of crashing.
package admin

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/CodrCam/avalanchehour-shop/models"
)

const defaultOrderLimit = 50

// Parcel defaults for the carrier export: per-item weight and one box
// size for every shipment.
const (
	ouncesPerItem = 8
	parcelLength  = "10"
	parcelWidth   = "8"
	parcelHeight  = "4"
)

type InventoryStore interface {
	GetAll() ([]models.InventoryLevel, error)
	SetAbsolute(sku string, quantity int64) error
	ApplyDelta(sku string, delta int64) error
}

type OrderStore interface {
	ListRecent(limit int) ([]models.Order, error)
	ListUnshipped() ([]models.Order, error)
	UpdateFulfillmentStatus(orderID, status string) (*models.Order, error)
}

type Handler struct {
	inventory InventoryStore
	orders    OrderStore
	log       *slog.Logger
}

func NewHandler(inventory InventoryStore, orders OrderStore, log *slog.Logger) *Handler {
	return &Handler{inventory: inventory, orders: orders, log: log}
}

type inventoryItem struct {
	SKU      string `json:"sku"`
	Quantity int64  `json:"quantity"`
}

func (h *Handler) HandleListInventory(w http.ResponseWriter, r *http.Request) {
	levels, err := h.inventory.GetAll()
	if err != nil {
		h.softFail(w, "inventory list", err)
		return
	}
	items := make([]inventoryItem, len(levels))
	for i, l := range levels {
		items[i] = inventoryItem{SKU: l.SKUKey, Quantity: l.Quantity}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "items": items})
}

type setInventoryRequest struct {
	SKU      string  `json:"sku"`
	Quantity *int64  `json:"quantity"`
	Items    []struct {
		SKU      string `json:"sku"`
		Quantity int64  `json:"quantity"`
	} `json:"items"`
}

// HandleSetInventory sets absolute quantities, one row or a batch.
func (h *Handler) HandleSetInventory(w http.ResponseWriter, r *http.Request) {
	var req setInventoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errResponse("invalid request body"))
		return
	}

	type pair struct {
		sku string
		qty int64
	}
	var updates []pair
	if req.SKU != "" && req.Quantity != nil {
		updates = append(updates, pair{req.SKU, *req.Quantity})
	}
	for _, item := range req.Items {
		if item.SKU != "" {
			updates = append(updates, pair{item.SKU, item.Quantity})
		}
	}
	if len(updates) == 0 {
		writeJSON(w, http.StatusBadRequest, errResponse("sku and quantity are required"))
		return
	}

	for _, u := range updates {
		if err := h.inventory.SetAbsolute(u.sku, u.qty); err != nil {
			h.softFail(w, "inventory set", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "updated": len(updates)})
}

type adjustInventoryRequest struct {
	SKU   string `json:"sku"`
	Delta *int64 `json:"delta"`
	Items []struct {
		SKU   string `json:"sku"`
		Delta int64  `json:"delta"`
	} `json:"items"`
}

// HandleAdjustInventory applies deltas, one row or a batch. Positive
// deltas restock, negative deltas correct overcounts; the store clamps
// at zero either way.
func (h *Handler) HandleAdjustInventory(w http.ResponseWriter, r *http.Request) {
	var req adjustInventoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errResponse("invalid request body"))
		return
	}

	type pair struct {
		sku   string
		delta int64
	}
	var updates []pair
	if req.SKU != "" && req.Delta != nil {
		updates = append(updates, pair{req.SKU, *req.Delta})
	}
	for _, item := range req.Items {
		if item.SKU != "" {
			updates = append(updates, pair{item.SKU, item.Delta})
		}
	}
	if len(updates) == 0 {
		writeJSON(w, http.StatusBadRequest, errResponse("sku and delta are required"))
		return
	}

	for _, u := range updates {
		if err := h.inventory.ApplyDelta(u.sku, u.delta); err != nil {
			h.softFail(w, "inventory adjust", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "updated": len(updates)})
}

func (h *Handler) HandleListOrders(w http.ResponseWriter, r *http.Request) {
	limit := defaultOrderLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			limit = n
		}
	}
	list, err := h.orders.ListRecent(limit)
	if err != nil {
		h.softFail(w, "orders list", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "orders": list})
}

type updateOrderRequest struct {
	OrderID           string `json:"orderId"`
	FulfillmentStatus string `json:"fulfillmentStatus"`
}

func (h *Handler) HandleUpdateOrder(w http.ResponseWriter, r *http.Request) {
	var req updateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errResponse("invalid request body"))
		return
	}
	if req.OrderID == "" {
		writeJSON(w, http.StatusBadRequest, errResponse("orderId is required"))
		return
	}
	if !models.ValidFulfillmentStatus(req.FulfillmentStatus) {
		writeJSON(w, http.StatusBadRequest, errResponse("invalid fulfillment status"))
		return
	}

	order, err := h.orders.UpdateFulfillmentStatus(req.OrderID, req.FulfillmentStatus)
	if err != nil {
		if errors.Is(err, models.ErrOrderNotFound) {
			writeJSON(w, http.StatusNotFound, errResponse("order not found"))
			return
		}
		h.softFail(w, "order update", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "order": order})
}

// csvHeader is the carrier upload column set, fixed by the shipping
// tool that consumes the file.
var csvHeader = []string{
	"Name", "Company", "Street", "Street2", "City", "State", "Zip", "Country",
	"Email", "OrderID", "TotalAmount", "Items", "Pounds", "Ounces",
	"Length", "Width", "Height",
}

// HandleExportCSV writes every not-yet-shipped order as one carrier
// row. encoding/csv handles quoting (commas, quotes, newlines).
func (h *Handler) HandleExportCSV(w http.ResponseWriter, r *http.Request) {
	list, err := h.orders.ListUnshipped()
	if err != nil {
		h.softFail(w, "orders export", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="unshipped-orders.csv"`)

	cw := csv.NewWriter(w)
	cw.Write(csvHeader)
	for _, order := range list {
		pounds, ounces := parcelWeight(order.Items)
		cw.Write([]string{
			order.CustomerName,
			order.ShippingCompany,
			order.ShippingStreet,
			order.ShippingStreet2,
			order.ShippingCity,
			order.ShippingState,
			order.ShippingZip,
			order.ShippingCountry,
			order.CustomerEmail,
			order.OrderID,
			dollars(order.AmountCents),
			itemsLabel(order.Items),
			pounds,
			ounces,
			parcelLength,
			parcelWidth,
			parcelHeight,
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		h.log.Error("csv export write failed", "error", err)
	}
}

// itemsLabel renders "2× Classic Logo Tee (Navy / M)" per line, joined
// with "; ".
func itemsLabel(items models.OrderItems) string {
	labels := make([]string, 0, len(items))
	for _, item := range items {
		name := item.Name
		if name == "" {
			name = item.SKU
		}
		label := fmt.Sprintf("%d× %s", item.Qty, name)
		if opts := optionLabel(item.Options); opts != "" {
			label += " (" + opts + ")"
		}
		labels = append(labels, label)
	}
	return strings.Join(labels, "; ")
}

func optionLabel(opts models.Options) string {
	var parts []string
	for _, v := range []string{opts.Style, opts.Color, opts.Size, opts.Fit, opts.Material, opts.Variant} {
		if v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " / ")
}

func parcelWeight(items models.OrderItems) (string, string) {
	var totalOunces int64
	for _, item := range items {
		totalOunces += item.Qty * ouncesPerItem
	}
	return strconv.FormatInt(totalOunces/16, 10), strconv.FormatInt(totalOunces%16, 10)
}

func dollars(cents int64) string {
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(100)).StringFixed(2)
}

func (h *Handler) softFail(w http.ResponseWriter, op string, err error) {
	h.log.Error("admin operation failed", "op", op, "error", err)
	writeJSON(w, http.StatusInternalServerError, errResponse(op+" failed"))
}

func errResponse(msg string) map[string]interface{} {
	return map[string]interface{}{"ok": false, "error": msg}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
