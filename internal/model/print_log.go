package model

import "time"

// PrintLog records the page production between two consecutive snapshots.
type PrintLog struct {
	ID                int64 `gorm:"autoIncrement;primaryKey"`
	PrinterID         int64 `gorm:"not null;index"`
	StartCounter      int64
	EndCounter        int64
	ColorCounterTotal int64
	BWCounterTotal    int64
	TotalPrints       int64
	ColorPrints       int64
	BWPrints          int64
	StartedAt         time.Time
	EndedAt           time.Time      `gorm:"index"`
	Source            string         `gorm:"size:32;not null;default:snmp"`
	Metadata          map[string]any `gorm:"serializer:json"`
	CreatedAt         time.Time
}
