package model

import "time"

// Consumable order states.
const (
	OrderStatusRequested = "requested"
	OrderStatusPlaced    = "placed"
	OrderStatusReceived  = "received"
	OrderStatusCancelled = "cancelled"
)

// ConsumableOrder is a reorder request raised when a supply runs critically low.
type ConsumableOrder struct {
	ID             int64  `gorm:"autoIncrement;primaryKey"`
	PrinterID      int64  `gorm:"not null;index:idx_order_identity"`
	ConsumableType string `gorm:"size:32;not null;index:idx_order_identity"`
	Slot           string `gorm:"size:64;index:idx_order_identity"`
	Color          string `gorm:"size:32"`
	Status         string `gorm:"size:16;not null;default:requested"`
	Percentage     int
	Notified       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
