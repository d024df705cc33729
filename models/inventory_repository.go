package models

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrStoreUnavailable is returned when the inventory store cannot be
// reached. Callers treat it as a soft failure for reads and a hard
// failure for writes that affect money.
var ErrStoreUnavailable = errors.New("inventory store unavailable")

type InventoryRepository struct {
	db *gorm.DB
}

// NewInventoryRepository wraps db, which may be nil when no database
// is configured; every operation then reports ErrStoreUnavailable.
func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

func (r *InventoryRepository) GetAll() ([]InventoryLevel, error) {
	if r.db == nil {
		return nil, ErrStoreUnavailable
	}
	var levels []InventoryLevel
	if err := r.db.Order("sku_key asc").Find(&levels).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return levels, nil
}

// GetMany returns quantities for exactly the requested SKUs. SKUs with
// no row are absent from the result; callers treat them as zero.
func (r *InventoryRepository) GetMany(skus []string) (map[string]int64, error) {
	if r.db == nil {
		return nil, ErrStoreUnavailable
	}
	quantities := make(map[string]int64, len(skus))
	if len(skus) == 0 {
		return quantities, nil
	}
	var levels []InventoryLevel
	if err := r.db.Where("sku_key IN ?", skus).Find(&levels).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	for _, l := range levels {
		quantities[l.SKUKey] = l.Quantity
	}
	return quantities, nil
}

// SetAbsolute upserts the row to max(0, quantity), last write wins.
func (r *InventoryRepository) SetAbsolute(sku string, quantity int64) error {
	if r.db == nil {
		return ErrStoreUnavailable
	}
	if quantity < 0 {
		quantity = 0
	}
	now := time.Now().UTC()
	level := InventoryLevel{SKUKey: sku, Quantity: quantity, UpdatedAt: now}
	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "sku_key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":   quantity,
			"updated_at": now,
		}),
	}).Create(&level).Error
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// ApplyDelta upserts the row to max(0, current+delta) in a single
// conditional statement. Two concurrent decrements against the same
// SKU must both land; a read-then-write here would lose updates.
func (r *InventoryRepository) ApplyDelta(sku string, delta int64) error {
	if r.db == nil {
		return ErrStoreUnavailable
	}
	initial := delta
	if initial < 0 {
		initial = 0
	}
	now := time.Now().UTC()
	level := InventoryLevel{SKUKey: sku, Quantity: initial, UpdatedAt: now}
	// Postgres spells greatest-of-two GREATEST; SQLite's scalar MAX
	// does the same job in tests.
	fn := "MAX"
	if r.db.Dialector.Name() == "postgres" {
		fn = "GREATEST"
	}
	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "sku_key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":   gorm.Expr(fn+"(0, inventory_levels.quantity + ?)", delta),
			"updated_at": now,
		}),
	}).Create(&level).Error
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
