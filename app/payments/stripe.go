package payments

import (
	"context"
	"fmt"

	stripe "github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
)

// StripeClient adapts the Stripe SDK to the orchestrator's seams.
type StripeClient struct {
	api *client.API
}

func NewStripeClient(secretKey string) *StripeClient {
	return &StripeClient{api: client.New(secretKey, nil)}
}

func (s *StripeClient) CreateIntent(ctx context.Context, amountCents int64, receiptEmail string, metadata map[string]string) (string, string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(string(stripe.CurrencyUSD)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	if receiptEmail != "" {
		params.ReceiptEmail = stripe.String(receiptEmail)
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}
	intent, err := s.api.PaymentIntents.New(params)
	if err != nil {
		return "", "", fmt.Errorf("stripe payment intent create: %w", err)
	}
	return intent.ID, intent.ClientSecret, nil
}

func (s *StripeClient) UpdateIntent(ctx context.Context, id string, amountCents int64, metadata map[string]string) error {
	params := &stripe.PaymentIntentParams{
		Amount: stripe.Int64(amountCents),
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}
	if _, err := s.api.PaymentIntents.Update(id, params); err != nil {
		return fmt.Errorf("stripe payment intent update: %w", err)
	}
	return nil
}

// Calculate runs a Stripe Tax calculation over the discounted line
// amounts plus shipping and returns the exclusive tax in cents.
func (s *StripeClient) Calculate(ctx context.Context, lines []TaxLine, shippingCents int64, dest Shipping) (int64, error) {
	items := make([]*stripe.TaxCalculationLineItemParams, len(lines))
	for i, l := range lines {
		items[i] = &stripe.TaxCalculationLineItemParams{
			Amount:    stripe.Int64(l.AmountCents),
			Quantity:  stripe.Int64(l.Qty),
			Reference: stripe.String(l.Reference),
		}
	}
	params := &stripe.TaxCalculationParams{
		Currency:  stripe.String(string(stripe.CurrencyUSD)),
		LineItems: items,
		ShippingCost: &stripe.TaxCalculationShippingCostParams{
			Amount: stripe.Int64(shippingCents),
		},
		CustomerDetails: &stripe.TaxCalculationCustomerDetailsParams{
			Address: &stripe.AddressParams{
				Line1:      stripe.String(dest.Street),
				Line2:      stripe.String(dest.Street2),
				City:       stripe.String(dest.City),
				State:      stripe.String(dest.State),
				PostalCode: stripe.String(dest.Zip),
				Country:    stripe.String(dest.Country),
			},
			AddressSource: stripe.String(string(stripe.TaxCalculationCustomerDetailsAddressSourceShipping)),
		},
	}
	params.Context = ctx
	calc, err := s.api.TaxCalculations.New(params)
	if err != nil {
		return 0, fmt.Errorf("stripe tax calculation: %w", err)
	}
	return calc.TaxAmountExclusive, nil
}
