// Package pricing computes order totals in integer cents: subtotal,
// discount codes, the proportional discount split used for tax, and
// the flat shipping charge.
package pricing

import (
	"strings"

	"github.com/CodrCam/avalanchehour-shop/models"
)

const (
	// ShippingFlatCents is the per-order shipping charge, added after
	// discount and before tax.
	ShippingFlatCents int64 = 800

	// MinimumChargeCents is the floor a discount may never take the
	// subtotal below.
	MinimumChargeCents int64 = 50
)

type DiscountType string

const (
	DiscountPercent DiscountType = "percent"
	DiscountFixed   DiscountType = "fixed"
)

type Discount struct {
	Type  DiscountType
	Value int64 // percent points or cents
}

// discountCodes is the single registry for both the intent-creation
// and tax-amendment paths. Codes match case-insensitively.
var discountCodes = map[string]Discount{
	"FORECAST20": {Type: DiscountPercent, Value: 20},
	"CREW40":     {Type: DiscountPercent, Value: 40},
	"PATROL5":    {Type: DiscountFixed, Value: 500},
}

// Line is a priced order line.
type Line struct {
	SKU        string
	ProductID  string
	Name       string
	UnitCents  int64
	Qty        int64
	Options    models.Options
}

// UnitPriceCents returns the per-unit price for the selected style:
// the variant override when the style declares one, else the product
// base price.
func UnitPriceCents(product *models.Product, opts models.Options) int64 {
	if opts.Style != "" {
		if variant, ok := product.Variants[opts.Style]; ok && variant.PriceCents > 0 {
			return variant.PriceCents
		}
	}
	return product.PriceCents
}

// SubtotalCents sums unit price times quantity over all lines.
func SubtotalCents(lines []Line) int64 {
	var total int64
	for _, l := range lines {
		total += l.UnitCents * l.Qty
	}
	return total
}

// DiscountResult reports the applied discount. Code is the normalized
// registry key, or "" when no discount applied.
type DiscountResult struct {
	Code                string
	AmountCents         int64
	SubtotalAfterCents  int64
	SubtotalBeforeCents int64
}

// ApplyDiscount applies code to the subtotal. Unknown or empty codes
// apply zero discount without erroring. The post-discount subtotal is
// clamped at MinimumChargeCents: if the raw discount would cross the
// floor, it is reduced to exactly subtotal − floor.
func ApplyDiscount(subtotalCents int64, code string) DiscountResult {
	result := DiscountResult{
		SubtotalBeforeCents: subtotalCents,
		SubtotalAfterCents:  subtotalCents,
	}
	normalized := strings.ToUpper(strings.TrimSpace(code))
	discount, ok := discountCodes[normalized]
	if !ok {
		return result
	}

	var amount int64
	switch discount.Type {
	case DiscountPercent:
		amount = subtotalCents * discount.Value / 100
	case DiscountFixed:
		amount = discount.Value
	}
	if subtotalCents-amount < MinimumChargeCents {
		amount = subtotalCents - MinimumChargeCents
		if amount < 0 {
			amount = 0
		}
	}

	result.Code = normalized
	result.AmountCents = amount
	result.SubtotalAfterCents = subtotalCents - amount
	return result
}

// SplitDiscount distributes discountCents across line base amounts in
// proportion. The first N−1 shares floor; the last line absorbs the
// remainder so the shares always sum exactly to the discount. Flooring
// every line independently would drop cents and skew tax.
func SplitDiscount(baseCents []int64, discountCents int64) []int64 {
	shares := make([]int64, len(baseCents))
	if len(baseCents) == 0 || discountCents <= 0 {
		return shares
	}
	var total int64
	for _, b := range baseCents {
		total += b
	}
	if total <= 0 {
		return shares
	}
	var allocated int64
	for i := 0; i < len(baseCents)-1; i++ {
		shares[i] = baseCents[i] * discountCents / total
		allocated += shares[i]
	}
	shares[len(shares)-1] = discountCents - allocated
	return shares
}
