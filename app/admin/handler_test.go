package admin

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/CodrCam/avalanchehour-shop/models"
)

// --- Mocks ---

type mockInventoryStore struct {
	levels   []models.InventoryLevel
	sets     map[string]int64
	deltas   map[string]int64
	storeErr error
}

func (m *mockInventoryStore) GetAll() ([]models.InventoryLevel, error) {
	if m.storeErr != nil {
		return nil, m.storeErr
	}
	return m.levels, nil
}

func (m *mockInventoryStore) SetAbsolute(sku string, quantity int64) error {
	if m.storeErr != nil {
		return m.storeErr
	}
	if m.sets == nil {
		m.sets = make(map[string]int64)
	}
	m.sets[sku] = quantity
	return nil
}

func (m *mockInventoryStore) ApplyDelta(sku string, delta int64) error {
	if m.storeErr != nil {
		return m.storeErr
	}
	if m.deltas == nil {
		m.deltas = make(map[string]int64)
	}
	m.deltas[sku] += delta
	return nil
}

type mockOrderStore struct {
	orders  []models.Order
	updated map[string]string
}

func (m *mockOrderStore) ListRecent(limit int) ([]models.Order, error) {
	if limit < len(m.orders) {
		return m.orders[:limit], nil
	}
	return m.orders, nil
}

func (m *mockOrderStore) ListUnshipped() ([]models.Order, error) {
	var out []models.Order
	for _, o := range m.orders {
		if o.FulfillmentStatus != models.FulfillmentShipped {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *mockOrderStore) UpdateFulfillmentStatus(orderID, status string) (*models.Order, error) {
	for i := range m.orders {
		if m.orders[i].OrderID == orderID {
			if m.updated == nil {
				m.updated = make(map[string]string)
			}
			m.updated[orderID] = status
			m.orders[i].FulfillmentStatus = status
			return &m.orders[i], nil
		}
	}
	return nil, models.ErrOrderNotFound
}

func newTestHandler(inv *mockInventoryStore, ord *mockOrderStore) *Handler {
	return NewHandler(inv, ord, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// --- Inventory endpoints ---

func TestHandleSetInventory(t *testing.T) {
	t.Run("single", func(t *testing.T) {
		inv := &mockInventoryStore{}
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPatch, "/api/admin/inventory",
			strings.NewReader(`{"sku":"TEE-NVY-M","quantity":12}`))

		newTestHandler(inv, &mockOrderStore{}).HandleSetInventory(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, map[string]int64{"TEE-NVY-M": 12}, inv.sets)
	})

	t.Run("batch", func(t *testing.T) {
		inv := &mockInventoryStore{}
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPatch, "/api/admin/inventory",
			strings.NewReader(`{"items":[{"sku":"A","quantity":1},{"sku":"B","quantity":0}]}`))

		newTestHandler(inv, &mockOrderStore{}).HandleSetInventory(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, map[string]int64{"A": 1, "B": 0}, inv.sets)
	})

	t.Run("missing fields", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPatch, "/api/admin/inventory", strings.NewReader(`{}`))

		newTestHandler(&mockInventoryStore{}, &mockOrderStore{}).HandleSetInventory(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("store failure is a soft json error", func(t *testing.T) {
		inv := &mockInventoryStore{storeErr: models.ErrStoreUnavailable}
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPatch, "/api/admin/inventory",
			strings.NewReader(`{"sku":"A","quantity":1}`))

		newTestHandler(inv, &mockOrderStore{}).HandleSetInventory(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		var body map[string]interface{}
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, false, body["ok"])
		assert.NotEmpty(t, body["error"])
	})
}

func TestHandleAdjustInventory(t *testing.T) {
	inv := &mockInventoryStore{}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/admin/inventory",
		strings.NewReader(`{"items":[{"sku":"A","delta":5},{"sku":"B","delta":-2}]}`))

	newTestHandler(inv, &mockOrderStore{}).HandleAdjustInventory(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]int64{"A": 5, "B": -2}, inv.deltas)
}

// --- Orders endpoints ---

func TestHandleUpdateOrder(t *testing.T) {
	ord := &mockOrderStore{orders: []models.Order{{OrderID: "ord_1", FulfillmentStatus: models.FulfillmentNew}}}
	h := newTestHandler(&mockInventoryStore{}, ord)

	testCases := []struct {
		name         string
		body         string
		expectedCode int
	}{
		{"valid update", `{"orderId":"ord_1","fulfillmentStatus":"processing"}`, http.StatusOK},
		{"invalid status", `{"orderId":"ord_1","fulfillmentStatus":"teleported"}`, http.StatusBadRequest},
		{"missing order id", `{"fulfillmentStatus":"shipped"}`, http.StatusBadRequest},
		{"unknown order", `{"orderId":"ord_999","fulfillmentStatus":"shipped"}`, http.StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPatch, "/api/admin/orders", strings.NewReader(tc.body))
			h.HandleUpdateOrder(rec, req)
			assert.Equal(t, tc.expectedCode, rec.Code)
		})
	}
	assert.Equal(t, map[string]string{"ord_1": "processing"}, ord.updated)
}

// --- CSV export ---

func TestHandleExportCSV(t *testing.T) {
	ord := &mockOrderStore{orders: []models.Order{
		{
			OrderID:           "ord_1",
			FulfillmentStatus: models.FulfillmentNew,
			AmountCents:       6550,
			CustomerName:      `Sam "Slider" Rider`,
			CustomerEmail:     "rider@example.com",
			ShippingStreet:    "12 Couloir Ln, Unit B",
			ShippingCity:      "Bozeman",
			ShippingState:     "MT",
			ShippingZip:       "59715",
			ShippingCountry:   "US",
			Items: models.OrderItems{
				{SKU: "TEE-NVY-M", Name: "Classic Logo Tee", Qty: 2, Options: models.Options{Style: "Navy", Size: "M"}},
				{SKU: "CAP-FOR", Name: "Trucker Cap", Qty: 1, Options: models.Options{Style: "Classic", Color: "Forest"}},
			},
		},
		{
			OrderID:           "ord_2",
			FulfillmentStatus: models.FulfillmentShipped,
			CustomerName:      "Shipped Already",
		},
	}}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/orders/export.csv", nil)
	newTestHandler(&mockInventoryStore{}, ord).HandleExportCSV(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))

	records, err := csv.NewReader(bytes.NewReader(rec.Body.Bytes())).ReadAll()
	assert.NoError(t, err)
	assert.Len(t, records, 2, "header plus one unshipped order")

	assert.Equal(t, csvHeader, records[0])

	row := records[1]
	assert.Equal(t, `Sam "Slider" Rider`, row[0])
	assert.Equal(t, "12 Couloir Ln, Unit B", row[2])
	assert.Equal(t, "ord_1", row[9])
	assert.Equal(t, "65.50", row[10])
	assert.Equal(t, "2× Classic Logo Tee (Navy / M); 1× Trucker Cap (Classic / Forest)", row[11])
	// 3 items at 8oz: 1lb 8oz.
	assert.Equal(t, "1", row[12])
	assert.Equal(t, "8", row[13])

	assert.NotContains(t, rec.Body.String(), "Shipped Already")
}

// --- Auth middleware ---

func TestMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	creds := Credentials{Username: "ops", Password: "hunter2", APIToken: "tok_secret"}
	protected := Middleware(creds)(next)

	testCases := []struct {
		name         string
		setup        func(r *http.Request)
		expectedCode int
	}{
		{"no credentials", func(r *http.Request) {}, http.StatusUnauthorized},
		{"valid basic auth", func(r *http.Request) { r.SetBasicAuth("ops", "hunter2") }, http.StatusNoContent},
		{"wrong password", func(r *http.Request) { r.SetBasicAuth("ops", "wrong") }, http.StatusUnauthorized},
		{"valid token header", func(r *http.Request) { r.Header.Set("X-Admin-Token", "tok_secret") }, http.StatusNoContent},
		{"wrong token", func(r *http.Request) { r.Header.Set("X-Admin-Token", "nope") }, http.StatusUnauthorized},
		{"valid token cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "admin_token", Value: "tok_secret"}) }, http.StatusNoContent},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/admin/inventory", nil)
			tc.setup(req)
			rec := httptest.NewRecorder()
			protected.ServeHTTP(rec, req)
			assert.Equal(t, tc.expectedCode, rec.Code)
		})
	}

	t.Run("unconfigured credentials fail closed", func(t *testing.T) {
		open := Middleware(Credentials{})(next)
		req := httptest.NewRequest(http.MethodGet, "/api/admin/inventory", nil)
		req.Header.Set("X-Admin-Token", "anything")
		rec := httptest.NewRecorder()
		open.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
