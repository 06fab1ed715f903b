package model

import "time"

// OID catalog categories.
const (
	OidCategorySystem      = "system"
	OidCategoryStatus      = "status"
	OidCategoryCounter     = "counter"
	OidCategoryConsumable  = "consumable"
	OidCategoryEnvironment = "environment"
	OidCategoryVendor      = "vendor"
)

// OidCatalogEntry is one managed OID with its semantic metadata.
type OidCatalogEntry struct {
	ID        int64  `gorm:"autoIncrement;primaryKey"`
	OID       string `gorm:"size:128;uniqueIndex;not null"`
	Name      string `gorm:"size:128;not null"`
	Category  string `gorm:"size:32;not null;index"`
	DataType  string `gorm:"size:32;not null"` // integer, counter, string, timeticks
	Unit      string `gorm:"size:32"`
	Color     string `gorm:"size:32"`
	Vendor    string `gorm:"size:64"` // empty for standard MIB entries
	IsActive  bool   `gorm:"default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
