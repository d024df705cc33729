// Package payments creates and amends payment intents for checkout.
package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"

	"github.com/CodrCam/avalanchehour-shop/app/cart"
	"github.com/CodrCam/avalanchehour-shop/app/pricing"
	"github.com/CodrCam/avalanchehour-shop/models"
)

// manifestBudget caps the serialized {sku,qty} manifest stored in
// intent metadata. Stripe truncates metadata values at 500 characters;
// very large carts lose trailing manifest entries, a known bound.
const manifestBudget = 450

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrMissingShipping = errors.New("shipping name is required")
)

// ShortfallError carries the per-SKU shortfall list for a 409 response.
type ShortfallError struct {
	Problems []cart.Problem
}

func (e *ShortfallError) Error() string {
	return fmt.Sprintf("insufficient stock for %d sku(s)", len(e.Problems))
}

// Shipping is the buyer-entered shipping block.
type Shipping struct {
	Name    string `json:"name"`
	Company string `json:"company,omitempty"`
	Street  string `json:"street,omitempty"`
	Street2 string `json:"street2,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Zip     string `json:"zip,omitempty"`
	Country string `json:"country,omitempty"`
}

// Breakdown itemizes the charged amount for the client.
type Breakdown struct {
	SubtotalCents           int64  `json:"subtotalCents"`
	DiscountAmountCents     int64  `json:"discountAmountCents"`
	DiscountedSubtotalCents int64  `json:"discountedSubtotalCents"`
	TaxAmountCents          int64  `json:"taxAmountCents"`
	ShippingCents           int64  `json:"shippingCents"`
	TotalCents              int64  `json:"totalCents"`
	DiscountCode            string `json:"discountCode,omitempty"`
}

// IntentClient is the payment-provider seam.
type IntentClient interface {
	CreateIntent(ctx context.Context, amountCents int64, receiptEmail string, metadata map[string]string) (id, clientSecret string, err error)
	UpdateIntent(ctx context.Context, id string, amountCents int64, metadata map[string]string) error
}

// TaxCalculator computes sales tax for discounted line amounts plus
// shipping against a destination address.
type TaxCalculator interface {
	Calculate(ctx context.Context, lines []TaxLine, shippingCents int64, dest Shipping) (int64, error)
}

// TaxLine is one taxable amount: the line total net of its discount share.
type TaxLine struct {
	Reference   string
	AmountCents int64
	Qty         int64
}

type Validator interface {
	Validate(lines []cart.Line) (cart.Result, error)
}

type Resolver interface {
	Resolve(productID string, explicitSKU string, opts models.Options) string
}

// Orchestrator prices the cart, gates on stock, and drives the
// payment provider. Tax is amended onto the intent in a second step.
type Orchestrator struct {
	catalog   *models.Catalog
	resolver  Resolver
	validator Validator
	intents   IntentClient
	tax       TaxCalculator
	log       *slog.Logger
}

func NewOrchestrator(catalog *models.Catalog, resolver Resolver, validator Validator, intents IntentClient, tax TaxCalculator, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		catalog:   catalog,
		resolver:  resolver,
		validator: validator,
		intents:   intents,
		tax:       tax,
		log:       log,
	}
}

// CreateRequest is the checkout payload.
type CreateRequest struct {
	Items        []cart.Line `json:"items"`
	Email        string      `json:"email,omitempty"`
	Shipping     *Shipping   `json:"shipping"`
	DiscountCode string      `json:"discountCode,omitempty"`
}

type CreateResult struct {
	ClientSecret string    `json:"clientSecret"`
	IntentID     string    `json:"intentId"`
	OrderID      string    `json:"orderId"`
	Breakdown    Breakdown `json:"breakdown"`
}

// CreateIntent validates the cart, prices it, and creates a payment
// intent for discounted subtotal + flat shipping. Tax is deferred to
// AmendTax. Unknown product ids are dropped silently; an empty
// post-validation cart or a missing shipping name fails.
func (o *Orchestrator) CreateIntent(ctx context.Context, req CreateRequest) (*CreateResult, error) {
	if req.Shipping == nil || req.Shipping.Name == "" {
		return nil, ErrMissingShipping
	}
	lines := o.priceLines(req.Items)
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	result, err := o.validator.Validate(req.Items)
	if err != nil {
		// Stock cannot be verified; money must not move.
		return nil, fmt.Errorf("verifying stock: %w", err)
	}
	if !result.OK {
		return nil, &ShortfallError{Problems: result.Problems}
	}

	subtotal := pricing.SubtotalCents(lines)
	discount := pricing.ApplyDiscount(subtotal, req.DiscountCode)
	amount := discount.SubtotalAfterCents + pricing.ShippingFlatCents

	orderID := uuid.NewString()
	metadata := map[string]string{
		"order_id":       orderID,
		"items":          buildManifest(lines),
		"subtotal_cents": strconv.FormatInt(subtotal, 10),
		"discount_cents": strconv.FormatInt(discount.AmountCents, 10),
	}
	if discount.Code != "" {
		metadata["discount_code"] = discount.Code
	}

	intentID, clientSecret, err := o.intents.CreateIntent(ctx, amount, req.Email, metadata)
	if err != nil {
		return nil, fmt.Errorf("creating payment intent: %w", err)
	}

	return &CreateResult{
		ClientSecret: clientSecret,
		IntentID:     intentID,
		OrderID:      orderID,
		Breakdown: Breakdown{
			SubtotalCents:           subtotal,
			DiscountAmountCents:     discount.AmountCents,
			DiscountedSubtotalCents: discount.SubtotalAfterCents,
			ShippingCents:           pricing.ShippingFlatCents,
			TotalCents:              amount,
			DiscountCode:            discount.Code,
		},
	}, nil
}

// AmendRequest re-prices the cart for the tax amendment.
type AmendRequest struct {
	PaymentIntentID string      `json:"paymentIntentId"`
	Items           []cart.Line `json:"items"`
	DiscountCode    string      `json:"discountCode,omitempty"`
	Shipping        *Shipping   `json:"shipping"`
}

type AmendResult struct {
	TotalCents          int64 `json:"totalCents"`
	TaxAmountCents      int64 `json:"taxAmountCents"`
	DiscountAmountCents int64 `json:"discountAmountCents"`
}

// AmendTax recomputes the order with externally-calculated tax and
// updates the intent's amount. Tax requires a country and postal code;
// without them, and whenever the tax call fails, tax is zero rather
// than blocking payment.
func (o *Orchestrator) AmendTax(ctx context.Context, req AmendRequest) (*AmendResult, error) {
	if req.PaymentIntentID == "" {
		return nil, errors.New("paymentIntentId is required")
	}
	lines := o.priceLines(req.Items)
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	subtotal := pricing.SubtotalCents(lines)
	discount := pricing.ApplyDiscount(subtotal, req.DiscountCode)

	var tax int64
	if o.tax != nil && req.Shipping != nil && req.Shipping.Country != "" && req.Shipping.Zip != "" {
		bases := make([]int64, len(lines))
		for i, l := range lines {
			bases[i] = l.UnitCents * l.Qty
		}
		shares := pricing.SplitDiscount(bases, discount.AmountCents)
		taxLines := make([]TaxLine, len(lines))
		for i, l := range lines {
			taxLines[i] = TaxLine{Reference: l.SKU, AmountCents: bases[i] - shares[i], Qty: l.Qty}
		}
		computed, err := o.tax.Calculate(ctx, taxLines, pricing.ShippingFlatCents, *req.Shipping)
		if err != nil {
			o.log.Warn("tax calculation failed, falling back to zero tax",
				"intent_id", req.PaymentIntentID, "error", err)
		} else {
			tax = computed
		}
	}

	total := discount.SubtotalAfterCents + pricing.ShippingFlatCents + tax
	metadata := map[string]string{
		"tax_cents":      strconv.FormatInt(tax, 10),
		"discount_cents": strconv.FormatInt(discount.AmountCents, 10),
	}
	if err := o.intents.UpdateIntent(ctx, req.PaymentIntentID, total, metadata); err != nil {
		return nil, fmt.Errorf("updating payment intent: %w", err)
	}

	return &AmendResult{
		TotalCents:          total,
		TaxAmountCents:      tax,
		DiscountAmountCents: discount.AmountCents,
	}, nil
}

// priceLines resolves and prices the requested items, dropping unknown
// products and non-positive quantities.
func (o *Orchestrator) priceLines(items []cart.Line) []pricing.Line {
	var lines []pricing.Line
	for _, item := range items {
		if item.Qty <= 0 {
			continue
		}
		// Unknown product ids are dropped, not errored. An explicit SKU
		// without a catalog entry has no price either, so it drops too.
		product, ok := o.catalog.ByID(item.ProductID)
		if !ok {
			continue
		}
		lines = append(lines, pricing.Line{
			SKU:       o.resolver.Resolve(item.ProductID, item.SKU, item.Options),
			ProductID: item.ProductID,
			Name:      product.Name,
			UnitCents: pricing.UnitPriceCents(product, item.Options),
			Qty:       item.Qty,
			Options:   item.Options,
		})
	}
	return lines
}

type manifestEntry struct {
	SKU string `json:"sku"`
	Qty int64  `json:"qty"`
}

// buildManifest serializes {sku,qty} entries, stopping before the
// budget would be exceeded.
func buildManifest(lines []pricing.Line) string {
	var entries []manifestEntry
	serialized := []byte("[]")
	for _, l := range lines {
		candidate := append(entries, manifestEntry{SKU: l.SKU, Qty: l.Qty})
		b, err := json.Marshal(candidate)
		if err != nil || len(b) > manifestBudget {
			break
		}
		entries = candidate
		serialized = b
	}
	return string(serialized)
}
