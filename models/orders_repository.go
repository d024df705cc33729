package models

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrOrderNotFound is returned when an order is not found.
var ErrOrderNotFound = errors.New("order not found")

type OrdersRepository struct {
	db *gorm.DB
}

func NewOrdersRepository(db *gorm.DB) *OrdersRepository {
	return &OrdersRepository{db: db}
}

// Upsert inserts or updates the row keyed by OrderID and reports
// whether the row was newly created. The existence check runs before
// the upsert so callers can gate one-shot side effects on it.
func (r *OrdersRepository) Upsert(order *Order) (bool, error) {
	if r.db == nil {
		return false, ErrStoreUnavailable
	}
	if order.OrderID == "" {
		return false, errors.New("order id is required")
	}
	if order.FulfillmentStatus == "" {
		order.FulfillmentStatus = FulfillmentNew
	}

	var count int64
	if err := r.db.Model(&Order{}).Where("order_id = ?", order.OrderID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "order_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"stripe_payment_intent_id", "status", "amount_cents", "items",
			"customer_email", "customer_name",
			"shipping_company", "shipping_street", "shipping_street2",
			"shipping_city", "shipping_state", "shipping_zip", "shipping_country",
		}),
	}).Create(order).Error
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return count == 0, nil
}

func (r *OrdersRepository) ListRecent(limit int) ([]Order, error) {
	if r.db == nil {
		return nil, ErrStoreUnavailable
	}
	if limit <= 0 {
		limit = 50
	}
	var orders []Order
	if err := r.db.Order("created_at desc").Limit(limit).Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return orders, nil
}

// ListUnshipped returns every order not yet marked shipped, oldest
// first, for the carrier export.
func (r *OrdersRepository) ListUnshipped() ([]Order, error) {
	if r.db == nil {
		return nil, ErrStoreUnavailable
	}
	var orders []Order
	err := r.db.Where("fulfillment_status <> ?", FulfillmentShipped).
		Order("created_at asc").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return orders, nil
}

func (r *OrdersRepository) UpdateFulfillmentStatus(orderID, status string) (*Order, error) {
	if r.db == nil {
		return nil, ErrStoreUnavailable
	}
	if !ValidFulfillmentStatus(status) {
		return nil, fmt.Errorf("invalid fulfillment status %q", status)
	}
	res := r.db.Model(&Order{}).Where("order_id = ?", orderID).Update("fulfillment_status", status)
	if res.Error != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrOrderNotFound
	}
	var order Order
	if err := r.db.Where("order_id = ?", orderID).First(&order).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return &order, nil
}
