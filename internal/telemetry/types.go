package telemetry

import "printer-fleet-backend/internal/model"

// Supply kinds produced by classification.
const (
	KindToner       = "toner"
	KindInk         = "ink"
	KindDrum        = "drum"
	KindMaintenance = "maintenance_kit"
	KindWaste       = "waste"
	KindRibbon      = "ribbon"
	KindFuser       = "fuser"
	KindTransfer    = "transfer"
	KindPaper       = "paper"
	KindOther       = "other"
)

// Classification confidence values carried on consumables.
const (
	ConfidenceDescription = "description"
	ConfidencePositional  = "positional"
	ConfidenceFallback    = "fallback"
)

// Canonical toner colors in positional assignment order.
var CanonicalColors = []string{"black", "cyan", "magenta", "yellow"}

// SupplyObservation is one raw row of the prtMarkerSuppliesTable.
type SupplyObservation struct {
	Index       int
	TypeCode    int // prtMarkerSuppliesType, RFC 3805 enum
	Description string
	Level       int64
	HasLevel    bool
	Max         int64
	HasMax      bool
	OID         string
}

// Counters holds the absolute lifetime page counters of one reading.
type Counters struct {
	Total int64
	Color int64
	BW    int64
}

// Reading is the normalized output of one device poll.
type Reading struct {
	Status        string
	ErrorCode     string
	UptimeSeconds int64
	Counters      Counters
	Consumables   []model.Consumable
	Environment   map[string]string
	Raw           map[string]any
}

// DeviceIdentity is what discovery extracts from a responding device.
type DeviceIdentity struct {
	IPAddress    string
	SysDescr     string
	SysName      string
	Brand        string
	Model        string
	SerialNumber string
	IsColor      bool
	Consumables  []model.Consumable
	Counters     Counters
}
