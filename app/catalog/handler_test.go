package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/CodrCam/avalanchehour-shop/models"
)

func TestHandleList(t *testing.T) {
	h := NewHandler(models.DefaultCatalog())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/catalog", nil)
	h.HandleList(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp Response
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, len(models.DefaultCatalog().Products()), resp.Total)

	byID := make(map[string]Product)
	for _, p := range resp.Products {
		byID[p.ID] = p
	}
	tee, ok := byID["classic-logo-tee"]
	assert.True(t, ok)
	assert.Equal(t, int64(2800), tee.PriceCents)
	assert.Contains(t, tee.Styles, "Navy")
}

func TestHandleGetProduct(t *testing.T) {
	h := NewHandler(models.DefaultCatalog())

	get := func(id string) *httptest.ResponseRecorder {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", id)
		req := httptest.NewRequest(http.MethodGet, "/api/catalog/"+id, nil)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
		rec := httptest.NewRecorder()
		h.HandleGetProduct(rec, req)
		return rec
	}

	t.Run("known product includes variants with inherited prices", func(t *testing.T) {
		rec := get("classic-logo-tee")
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Product
			Variants map[string]Variant `json:"variants"`
		}
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, int64(3000), resp.Variants["Navy"].PriceCents, "style override")
		assert.Equal(t, int64(2800), resp.Variants["Heather Grey"].PriceCents, "inherits base price")
		assert.Equal(t, "TEE-NVY-M", resp.Variants["Navy"].SKUBySize["M"])
	})

	t.Run("unknown product is a 404", func(t *testing.T) {
		rec := get("no-such-product")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
