package model

import "time"

// Consumable is one normalized supply slot inside a snapshot.
type Consumable struct {
	Name       string `json:"name"`
	Color      string `json:"color,omitempty"`
	Type       string `json:"type"` // toner, drum, maintenance_kit, waste, ink, ribbon, other
	Percentage int    `json:"percentage"`
	RawLevel   int64  `json:"raw_level"`
	RawMax     int64  `json:"raw_max"`
	Index      int    `json:"index"`
	OID        string `json:"oid,omitempty"`
	Confidence string `json:"confidence,omitempty"` // description, positional or fallback
	Note       string `json:"note,omitempty"`
}

// StatusSnapshot is one immutable record of a printer's state at poll time.
type StatusSnapshot struct {
	ID            int64  `gorm:"autoIncrement;primaryKey"`
	PrinterID     int64  `gorm:"not null;index:idx_snapshot_printer_time"`
	Status        string `gorm:"size:32;not null"`
	ErrorCode     string `gorm:"size:128"`
	CounterTotal  int64
	CounterColor  int64
	CounterBW     int64
	UptimeSeconds int64
	Consumables   []Consumable      `gorm:"serializer:json"`
	Counters      map[string]int64  `gorm:"serializer:json"`
	Environment   map[string]string `gorm:"serializer:json"`
	RawPayload    map[string]any    `gorm:"serializer:json"`
	CapturedAt    time.Time         `gorm:"not null;index:idx_snapshot_printer_time"`
	CreatedAt     time.Time
}
