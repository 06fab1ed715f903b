package model

import "time"

// Alert types.
const (
	AlertTypeOffline       = "PRINTER_OFFLINE"
	AlertTypeLowConsumable = "LOW_CONSUMABLE"
)

// Alert severities.
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityLow      = "low"
)

// Alert lifecycle states.
const (
	AlertStatusOpen         = "open"
	AlertStatusAcknowledged = "acknowledged"
	AlertStatusResolved     = "resolved"
)

// Alert is one actionable condition raised against a printer.
type Alert struct {
	ID             int64          `gorm:"autoIncrement;primaryKey"`
	UUID           string         `gorm:"size:36;uniqueIndex;not null"`
	PrinterID      int64          `gorm:"not null;index:idx_alert_identity"`
	Type           string         `gorm:"size:64;not null;index:idx_alert_identity"`
	Slot           string         `gorm:"size:64;index:idx_alert_identity"` // consumable slot, empty for offline alerts
	Severity       string         `gorm:"size:16;not null"`
	Status         string         `gorm:"size:16;not null;default:open;index"`
	Source         string         `gorm:"size:32;not null;default:snmp"`
	Title          string         `gorm:"size:256;not null"`
	Message        string         `gorm:"size:1024"`
	Payload        map[string]any `gorm:"serializer:json"`
	AcknowledgedAt *time.Time
	ResolvedAt     *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Active reports whether the alert still demands attention.
func (a *Alert) Active() bool {
	return a.Status != AlertStatusResolved
}
