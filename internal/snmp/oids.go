package snmp

import "fmt"

// Standard RFC 3805 and system-group OIDs.
const (
	OidSysDescr    = "1.3.6.1.2.1.1.1.0"
	OidSysObjectID = "1.3.6.1.2.1.1.2.0"
	OidSysUpTime   = "1.3.6.1.2.1.1.3.0"
	OidSysName     = "1.3.6.1.2.1.1.5.0"
	OidSysLocation = "1.3.6.1.2.1.1.6.0"

	OidHrDeviceDescr   = "1.3.6.1.2.1.25.3.2.1.3.1"
	OidHrPrinterStatus = "1.3.6.1.2.1.25.3.5.1.1.1"
	OidHrDeviceStatus  = "1.3.6.1.2.1.25.3.2.1.5.1"

	OidSerialNumber = "1.3.6.1.2.1.43.5.1.1.17.1"

	// prtMarkerSuppliesTable column bases; append ".1.<index>".
	OidSupplyTypeBase  = "1.3.6.1.2.1.43.11.1.1.2"
	OidSupplyDescBase  = "1.3.6.1.2.1.43.11.1.1.3"
	OidSupplyUnitBase  = "1.3.6.1.2.1.43.11.1.1.6"
	OidSupplyMaxBase   = "1.3.6.1.2.1.43.11.1.1.8"
	OidSupplyLevelBase = "1.3.6.1.2.1.43.11.1.1.9"

	OidMarkerLifeBase    = "1.3.6.1.2.1.43.10.2.1.4.1"
	OidMarkerCounterBase = "1.3.6.1.2.1.43.10.2.1.5.1"
)

// MaxSupplyIndex bounds the supplies table scan. Real devices expose a
// handful of rows; 30 covers every fleet vendor seen so far.
const MaxSupplyIndex = 30

// Candidate OID lists for the logical page counters. Firmware disagrees on
// which prtMarkerLifeCount row carries what, so each logical counter is
// searched across known-equivalent slots and the first positive value wins.
var (
	TotalPagesCandidates = []string{
		"1.3.6.1.2.1.43.10.2.1.4.1.1",
		"1.3.6.1.2.1.43.10.2.1.4.1.2",
		"1.3.6.1.2.1.43.10.2.1.4.1.3",
	}
	ColorPagesCandidates = []string{
		"1.3.6.1.2.1.43.10.2.1.4.1.2",
		"1.3.6.1.2.1.43.10.2.1.4.1.4",
		"1.3.6.1.2.1.43.10.2.1.4.1.5",
	}
	BWPagesCandidates = []string{
		"1.3.6.1.2.1.43.10.2.1.4.1.3",
		"1.3.6.1.2.1.43.10.2.1.4.1.6",
	}
)

// Lexmark vendor OIDs used as fallbacks when the standard supplies table
// hides the yellow channel or returns numeric descriptions.
var (
	LexmarkYellowLevelOids = []string{
		"1.3.6.1.4.1.641.2.1.2.1.1.4",
		"1.3.6.1.4.1.641.6.2.1.1.1.4",
	}
	LexmarkDescBases = []string{
		"1.3.6.1.4.1.641.2.1.2.1.1.3",
		"1.3.6.1.4.1.641.6.2.1.1.1.3",
	}
)

// SupplyTypeOid returns the prtMarkerSuppliesType OID for a table index.
func SupplyTypeOid(index int) string {
	return fmt.Sprintf("%s.1.%d", OidSupplyTypeBase, index)
}

// SupplyDescOid returns the prtMarkerSuppliesDescription OID for a table index.
func SupplyDescOid(index int) string {
	return fmt.Sprintf("%s.1.%d", OidSupplyDescBase, index)
}

// SupplyMaxOid returns the prtMarkerSuppliesMaxCapacity OID for a table index.
func SupplyMaxOid(index int) string {
	return fmt.Sprintf("%s.1.%d", OidSupplyMaxBase, index)
}

// SupplyLevelOid returns the prtMarkerSuppliesLevel OID for a table index.
func SupplyLevelOid(index int) string {
	return fmt.Sprintf("%s.1.%d", OidSupplyLevelBase, index)
}

// MarkerCounterOid returns the prtMarkerCounterLife OID for a table index.
func MarkerCounterOid(index int) string {
	return fmt.Sprintf("%s.%d", OidMarkerCounterBase, index)
}

// MarkerLifeOid returns the prtMarkerLifeCount OID for a table index.
func MarkerLifeOid(index int) string {
	return fmt.Sprintf("%s.%d", OidMarkerLifeBase, index)
}
