package model

import "time"

// Sync batch kinds.
const (
	SyncTypeManual    = "manual"
	SyncTypeAutomatic = "automatic"
)

// Sync batch states.
const (
	SyncStatusPending   = "pending"
	SyncStatusRunning   = "running"
	SyncStatusCompleted = "completed"
	SyncStatusFailed    = "failed"
)

// SyncHistory tracks one fleet-wide polling batch from dispatch to completion.
type SyncHistory struct {
	ID            int64  `gorm:"autoIncrement;primaryKey"`
	Type          string `gorm:"size:16;not null"`
	Status        string `gorm:"size:16;not null;default:pending;index"`
	TotalPrinters int
	Dispatched    int
	Completed     int
	Failed        int
	ErrorMessage  string `gorm:"size:512"`
	StartedAt     *time.Time
	CompletedAt   *time.Time
	CreatedAt     time.Time `gorm:"index"`
	UpdatedAt     time.Time
}
