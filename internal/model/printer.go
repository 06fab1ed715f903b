package model

import "time"

// Printer status values.
const (
	PrinterStatusOnline     = "online"
	PrinterStatusOffline    = "offline"
	PrinterStatusWarning    = "warning"
	PrinterStatusError      = "error"
	PrinterStatusUnknown    = "unknown"
	PrinterStatusDiscovered = "discovered"
)

// Printer represents one managed device of the fleet.
type Printer struct {
	ID              int64  `gorm:"primaryKey"`
	UUID            string `gorm:"size:36;uniqueIndex;not null"`
	Name            string `gorm:"size:256;not null"`
	Hostname        string `gorm:"size:256"`
	IPAddress       string `gorm:"size:64;index"`
	MACAddress      string `gorm:"size:32"`
	SerialNumber    string `gorm:"size:128"`
	Brand           string `gorm:"size:64"`
	Model           string `gorm:"size:128"`
	FirmwareVersion string `gorm:"size:128"`
	Location        string `gorm:"size:256"`
	Status          string `gorm:"size:32;not null;default:unknown"`
	IsColor         bool
	SupportsSNMP    bool `gorm:"default:true"`

	// Per-device SNMP overrides; empty/zero means use the configured default.
	Community   string `gorm:"size:64"`
	SNMPVersion string `gorm:"size:8"`
	SNMPPort    uint16

	// v3 USM overrides, consulted only when the effective version is "3".
	V3Username       string `gorm:"size:64"`
	V3SecurityLevel  string `gorm:"size:16"`
	V3AuthProtocol   string `gorm:"size:8"`
	V3AuthPassphrase string `gorm:"size:128"`
	V3PrivProtocol   string `gorm:"size:8"`
	V3PrivPassphrase string `gorm:"size:128"`

	// Lifetime counters as of the most recent successful poll.
	TotalPages int64
	ColorPages int64
	BWPages    int64

	LastSyncAt      *time.Time
	LastSeenAt      *time.Time
	DiscoverySource string `gorm:"size:32"` // "manual" or "network_scan"
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Pollable reports whether the printer should be included in sync batches.
func (p *Printer) Pollable() bool {
	return p.SupportsSNMP && p.IPAddress != ""
}
