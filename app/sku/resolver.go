// Package sku maps a cart line to its canonical stock-keeping unit.
package sku

import (
	"strings"

	"github.com/CodrCam/avalanchehour-shop/models"
)

// Resolver derives inventory keys from the catalog snapshot. It is a
// pure lookup: no I/O, no state beyond the catalog itself.
type Resolver struct {
	catalog *models.Catalog
}

func NewResolver(catalog *models.Catalog) *Resolver {
	return &Resolver{catalog: catalog}
}

// Resolve returns the SKU for (productID, opts), or "" when the
// combination is unsellable. Priority order:
//
//  1. an explicit SKU supplied by the caller wins verbatim
//  2. variant skuBySize for size-driven products (apparel)
//  3. variant skuByColor for color-driven products (caps)
//  4. the product id itself for single-SKU products
//  5. a colon-joined fallback key for legacy/unmapped combinations
//
// The fallback key must stay stable once inventory rows exist under it.
func (r *Resolver) Resolve(productID string, explicitSKU string, opts models.Options) string {
	if explicitSKU != "" {
		return explicitSKU
	}

	product, ok := r.catalog.ByID(productID)
	if !ok {
		return ""
	}

	if len(product.Variants) > 0 && opts.Style != "" {
		if variant, ok := product.Variants[opts.Style]; ok {
			if opts.Size != "" {
				if s, ok := variant.SKUBySize[opts.Size]; ok {
					return s
				}
			}
			if opts.Color != "" {
				if s, ok := variant.SKUByColor[opts.Color]; ok {
					return s
				}
			}
		}
	}

	if product.SingleSKU {
		return product.ID
	}

	return fallbackKey(productID, opts)
}

// fallbackKey joins the product id with every non-empty option field
// in a fixed order.
func fallbackKey(productID string, opts models.Options) string {
	parts := []string{productID}
	for _, v := range []string{opts.Material, opts.Color, opts.Size, opts.Fit, opts.Style, opts.Variant} {
		if v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, ":")
}
