package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Fulfillment status values. The flow is new → processing → shipped,
// advanced only by admin action; the system does not enforce ordering.
const (
	FulfillmentNew        = "new"
	FulfillmentProcessing = "processing"
	FulfillmentShipped    = "shipped"
)

func ValidFulfillmentStatus(s string) bool {
	switch s {
	case FulfillmentNew, FulfillmentProcessing, FulfillmentShipped:
		return true
	}
	return false
}

// OrderItem is one purchased line as recorded on the order.
type OrderItem struct {
	SKU        string  `json:"sku,omitempty"`
	ProductID  string  `json:"id,omitempty"`
	Name       string  `json:"name"`
	PriceCents int64   `json:"priceCents"`
	Qty        int64   `json:"qty"`
	Options    Options `json:"options,omitempty"`
}

// OrderItems is stored as a JSON column on the orders table.
type OrderItems []OrderItem

func (items OrderItems) Value() (driver.Value, error) {
	return json.Marshal(items)
}

func (items *OrderItems) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, items)
	case string:
		return json.Unmarshal([]byte(v), items)
	case nil:
		*items = nil
		return nil
	}
	return fmt.Errorf("unsupported order items column type %T", value)
}

// Order is the ledger row for one checkout. OrderID is the idempotency
// key: the client confirmation and the payment webhook both upsert
// against it and must converge on a single row.
type Order struct {
	ID                    uint       `gorm:"primaryKey"`
	OrderID               string     `gorm:"column:order_id;uniqueIndex;not null"`
	StripePaymentIntentID string     `gorm:"column:stripe_payment_intent_id"`
	Status                string     `gorm:"not null"`
	FulfillmentStatus     string     `gorm:"not null;default:new"`
	AmountCents           int64      `gorm:"not null"`
	Items                 OrderItems `gorm:"type:json"`
	CustomerEmail         string
	CustomerName          string
	ShippingCompany       string
	ShippingStreet        string
	ShippingStreet2       string
	ShippingCity          string
	ShippingState         string
	ShippingZip           string
	ShippingCountry       string
	CreatedAt             time.Time
}

func (o *Order) TableName() string {
	return "orders"
}
