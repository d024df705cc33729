// Package catalog serves the read-only merch catalog the storefront
// builds carts against.
package catalog

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/CodrCam/avalanchehour-shop/models"
)

type Response struct {
	Total    int       `json:"total"`
	Products []Product `json:"products"`
}

type Product struct {
	ID         string   `json:"id"`
	Slug       string   `json:"slug"`
	Name       string   `json:"name"`
	PriceCents int64    `json:"priceCents"`
	Styles     []string `json:"styles,omitempty"`
	Sizes      []string `json:"sizes,omitempty"`
	Colors     []string `json:"colors,omitempty"`
}

type Variant struct {
	Colors       []string          `json:"colors,omitempty"`
	PriceCents   int64             `json:"priceCents"`
	SKUBySize    map[string]string `json:"skuBySize,omitempty"`
	SKUByColor   map[string]string `json:"skuByColor,omitempty"`
	ImageByColor map[string]string `json:"imageByColor,omitempty"`
}

type Handler struct {
	catalog *models.Catalog
}

func NewHandler(c *models.Catalog) *Handler {
	return &Handler{catalog: c}
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	src := h.catalog.Products()
	products := make([]Product, len(src))
	for i, p := range src {
		products[i] = Product{
			ID:         p.ID,
			Slug:       p.Slug,
			Name:       p.Name,
			PriceCents: p.PriceCents,
			Styles:     p.Styles,
			Sizes:      p.Sizes,
			Colors:     p.Colors,
		}
	}
	writeJSON(w, http.StatusOK, Response{Total: len(products), Products: products})
}

func (h *Handler) HandleGetProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	product, ok := h.catalog.ByID(id)
	if !ok {
		http.Error(w, "product not found", http.StatusNotFound)
		return
	}

	variants := make(map[string]Variant, len(product.Variants))
	for style, v := range product.Variants {
		price := v.PriceCents
		if price == 0 {
			price = product.PriceCents
		}
		variants[style] = Variant{
			Colors:       v.Colors,
			PriceCents:   price,
			SKUBySize:    v.SKUBySize,
			SKUByColor:   v.SKUByColor,
			ImageByColor: v.ImageByColor,
		}
	}

	response := struct {
		Product
		Variants map[string]Variant `json:"variants,omitempty"`
	}{
		Product: Product{
			ID:         product.ID,
			Slug:       product.Slug,
			Name:       product.Name,
			PriceCents: product.PriceCents,
			Styles:     product.Styles,
			Sizes:      product.Sizes,
			Colors:     product.Colors,
		},
		Variants: variants,
	}
	writeJSON(w, http.StatusOK, response)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
