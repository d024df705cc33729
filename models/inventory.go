package models

import "time"

// InventoryLevel tracks the on-hand quantity for one SKU.
// Rows are created on first write and never deleted; quantity is
// clamped at zero by every mutation.
type InventoryLevel struct {
	ID        uint      `gorm:"primaryKey"`
	SKUKey    string    `gorm:"column:sku_key;uniqueIndex;not null"`
	Quantity  int64     `gorm:"not null;default:0"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (l *InventoryLevel) TableName() string {
	return "inventory_levels"
}
