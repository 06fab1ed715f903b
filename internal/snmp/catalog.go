package snmp

import "printer-fleet-backend/internal/model"

// DefaultCatalog returns the built-in OID catalog. Entries are seeded on
// startup with conflict-ignore semantics, so operator edits survive restarts.
func DefaultCatalog() []model.OidCatalogEntry {
	entries := []model.OidCatalogEntry{
		// System group
		{OID: OidSysDescr, Name: "System description", Category: model.OidCategorySystem, DataType: "string"},
		{OID: OidSysName, Name: "System name", Category: model.OidCategorySystem, DataType: "string"},
		{OID: OidSysObjectID, Name: "System object ID", Category: model.OidCategorySystem, DataType: "string"},
		{OID: OidSysUpTime, Name: "System uptime", Category: model.OidCategorySystem, DataType: "timeticks", Unit: "centiseconds"},

		// RFC 3805 page counters
		{OID: "1.3.6.1.2.1.43.10.2.1.4.1.1", Name: "total_pages", Category: model.OidCategoryCounter, DataType: "counter", Unit: "pages"},
		{OID: "1.3.6.1.2.1.43.10.2.1.4.1.2", Name: "color_pages", Category: model.OidCategoryCounter, DataType: "counter", Unit: "pages"},
		{OID: "1.3.6.1.2.1.43.10.2.1.4.1.3", Name: "bw_pages", Category: model.OidCategoryCounter, DataType: "counter", Unit: "pages"},

		// RFC 3805 supply levels per canonical slot
		{OID: "1.3.6.1.2.1.43.11.1.1.9.1.1", Name: "Black level", Category: model.OidCategoryConsumable, DataType: "integer", Color: "black"},
		{OID: "1.3.6.1.2.1.43.11.1.1.8.1.1", Name: "Black max capacity", Category: model.OidCategoryConsumable, DataType: "integer", Color: "black"},
		{OID: "1.3.6.1.2.1.43.11.1.1.9.1.2", Name: "Cyan level", Category: model.OidCategoryConsumable, DataType: "integer", Color: "cyan"},
		{OID: "1.3.6.1.2.1.43.11.1.1.8.1.2", Name: "Cyan max capacity", Category: model.OidCategoryConsumable, DataType: "integer", Color: "cyan"},
		{OID: "1.3.6.1.2.1.43.11.1.1.9.1.3", Name: "Magenta level", Category: model.OidCategoryConsumable, DataType: "integer", Color: "magenta"},
		{OID: "1.3.6.1.2.1.43.11.1.1.8.1.3", Name: "Magenta max capacity", Category: model.OidCategoryConsumable, DataType: "integer", Color: "magenta"},
		{OID: "1.3.6.1.2.1.43.11.1.1.9.1.4", Name: "Yellow level", Category: model.OidCategoryConsumable, DataType: "integer", Color: "yellow"},
		{OID: "1.3.6.1.2.1.43.11.1.1.8.1.4", Name: "Yellow max capacity", Category: model.OidCategoryConsumable, DataType: "integer", Color: "yellow"},

		// Status
		{OID: OidHrDeviceStatus, Name: "Device status", Category: model.OidCategoryStatus, DataType: "integer"},
		{OID: OidHrPrinterStatus, Name: "Printer status", Category: model.OidCategoryStatus, DataType: "integer"},

		// Vendor identification
		{OID: "1.3.6.1.4.1.11.2.3.9.4.2.1.1.4.5.1.0", Name: "HP brand", Category: model.OidCategorySystem, DataType: "string", Vendor: "HP"},
		{OID: "1.3.6.1.4.1.11.2.3.9.4.2.1.1.4.5.2.0", Name: "HP model", Category: model.OidCategorySystem, DataType: "string", Vendor: "HP"},
		{OID: "1.3.6.1.4.1.11.2.3.9.4.2.1.1.4.5.3.0", Name: "HP serial number", Category: model.OidCategorySystem, DataType: "string", Vendor: "HP"},
		{OID: "1.3.6.1.4.1.1602.1.2.1.1.1.0", Name: "Canon brand", Category: model.OidCategorySystem, DataType: "string", Vendor: "Canon"},
		{OID: "1.3.6.1.4.1.1602.1.2.1.1.2.0", Name: "Canon model", Category: model.OidCategorySystem, DataType: "string", Vendor: "Canon"},
		{OID: "1.3.6.1.4.1.1248.1.2.2.1.1.1.2.1", Name: "Epson model", Category: model.OidCategorySystem, DataType: "string", Vendor: "Epson"},
		{OID: "1.3.6.1.4.1.2435.2.3.9.4.2.1.5.5.1.0", Name: "Brother model", Category: model.OidCategorySystem, DataType: "string", Vendor: "Brother"},
		{OID: "1.3.6.1.4.1.253.8.51.10.2.1.1.1.0", Name: "Xerox model", Category: model.OidCategorySystem, DataType: "string", Vendor: "Xerox"},

		// Vendor counters
		{OID: "1.3.6.1.4.1.11.2.3.9.4.2.1.1.4.5.8.0", Name: "total_pages", Category: model.OidCategoryCounter, DataType: "counter", Unit: "pages", Vendor: "HP"},
		{OID: "1.3.6.1.4.1.11.2.3.9.4.2.1.1.4.5.9.0", Name: "color_pages", Category: model.OidCategoryCounter, DataType: "counter", Unit: "pages", Vendor: "HP"},
		{OID: "1.3.6.1.4.1.11.2.3.9.4.2.1.1.4.5.10.0", Name: "bw_pages", Category: model.OidCategoryCounter, DataType: "counter", Unit: "pages", Vendor: "HP"},

		// Vendor consumable fallbacks
		{OID: "1.3.6.1.4.1.641.2.1.2.1.1.4", Name: "Lexmark yellow level", Category: model.OidCategoryVendor, DataType: "integer", Color: "yellow", Vendor: "Lexmark"},
		{OID: "1.3.6.1.4.1.641.6.2.1.1.1.4", Name: "Lexmark yellow level (alt)", Category: model.OidCategoryVendor, DataType: "integer", Color: "yellow", Vendor: "Lexmark"},

		// Environment
		{OID: "1.3.6.1.2.1.25.3.3.1.2", Name: "temperature", Category: model.OidCategoryEnvironment, DataType: "integer"},
	}

	for i := range entries {
		entries[i].IsActive = true
	}
	return entries
}
