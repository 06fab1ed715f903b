package telemetry

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"printer-fleet-backend/internal/model"
	"printer-fleet-backend/internal/snmp"
)

// ErrDeviceUnreachable is returned when a device does not answer the basic
// system probe at all. The poller turns this into an error status.
var ErrDeviceUnreachable = errors.New("telemetry: device unreachable")

// Driver runs full telemetry probes against one device at a time. It owns
// the scanning strategy (which OIDs, in which order, with which fallbacks)
// and delegates value classification to the normalizer.
type Driver struct {
	factory snmp.Factory
}

// NewDriver creates a driver that opens transports through the given factory.
func NewDriver(factory snmp.Factory) *Driver {
	return &Driver{factory: factory}
}

// Poll probes a device and returns a normalized reading. A device that does
// not answer sysDescr is unreachable; any later per-OID failure is absorbed
// and surfaces only as an absent value.
func (d *Driver) Poll(ctx context.Context, profile snmp.Profile, catalog []model.OidCatalogEntry) (*Reading, error) {
	t := d.factory(profile)

	sysDescr, err := t.Get(ctx, snmp.OidSysDescr)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrDeviceUnreachable, profile.Host)
	}

	reading := &Reading{
		Status:      model.PrinterStatusOnline,
		Environment: make(map[string]string),
		Raw:         map[string]any{"sysDescr": sysDescr.Str},
	}

	if sysName, err := t.Get(ctx, snmp.OidSysName); err == nil {
		reading.Raw["sysName"] = sysName.Str
	}
	if uptime, err := t.Get(ctx, snmp.OidSysUpTime); err == nil && uptime.Numeric {
		reading.UptimeSeconds = UptimeSeconds(uptime.Int)
		reading.Raw["sysUpTime"] = uptime.Int
	}

	reading.Status, reading.ErrorCode = d.collectStatus(ctx, t)

	observations, usedIndices := d.collectSupplies(ctx, t)
	consumables := NormalizeSupplies(observations)
	if MissingYellow(consumables) {
		consumables = append(consumables, d.findYellow(ctx, t, usedIndices))
	}
	reading.Consumables = FilterMonochrome(consumables)

	reading.Counters = d.collectCounters(ctx, t, catalog)
	reading.Environment = d.collectEnvironment(ctx, t, catalog)
	reading.Raw["sampledAt"] = time.Now().UTC().Format(time.RFC3339)

	return reading, nil
}

// collectSupplies walks the prtMarkerSuppliesTable index by index. Missing
// indices are skipped, not treated as the end of the table: vendors leave
// holes.
func (d *Driver) collectSupplies(ctx context.Context, t snmp.Transport) ([]SupplyObservation, map[int]bool) {
	var observations []SupplyObservation
	used := make(map[int]bool)

	for index := 1; index <= snmp.MaxSupplyIndex; index++ {
		typeVal, err := t.Get(ctx, snmp.SupplyTypeOid(index))
		if err != nil {
			continue
		}

		levelOid := snmp.SupplyLevelOid(index)
		levelVal, err := t.Get(ctx, levelOid)
		if err != nil || !levelVal.Numeric || levelVal.Int < 0 {
			continue
		}

		obs := SupplyObservation{
			Index:    index,
			Level:    levelVal.Int,
			HasLevel: true,
			OID:      levelOid,
		}
		if typeVal.Numeric {
			obs.TypeCode = int(typeVal.Int)
		}
		if maxVal, err := t.Get(ctx, snmp.SupplyMaxOid(index)); err == nil && maxVal.Numeric && maxVal.Int > 0 {
			obs.Max = maxVal.Int
			obs.HasMax = true
		}

		obs.Description = d.supplyDescription(ctx, t, index)

		observations = append(observations, obs)
		used[index] = true
	}

	return observations, used
}

// supplyDescription reads the standard description column, falling back to
// Lexmark vendor OIDs when the standard one is empty or just a number.
func (d *Driver) supplyDescription(ctx context.Context, t snmp.Transport, index int) string {
	desc := ""
	if v, err := t.Get(ctx, snmp.SupplyDescOid(index)); err == nil {
		desc = strings.TrimSpace(v.Str)
	}
	if desc != "" && !isNumeric(desc) {
		return desc
	}
	for _, base := range snmp.LexmarkDescBases {
		if v, err := t.Get(ctx, fmt.Sprintf("%s.%d", base, index)); err == nil {
			if s := strings.TrimSpace(v.Str); s != "" && !isNumeric(s) {
				return s
			}
		}
	}
	return desc
}

// findYellow runs the yellow fallback cascade: Lexmark vendor OIDs first,
// then unclaimed supply indices, and finally a synthesized zero-percent
// entry so the channel is never silently absent.
func (d *Driver) findYellow(ctx context.Context, t snmp.Transport, usedIndices map[int]bool) model.Consumable {
	for _, oid := range snmp.LexmarkYellowLevelOids {
		v, err := t.Get(ctx, oid)
		if err != nil || !v.Numeric || v.Int < 0 {
			continue
		}
		pct := int(v.Int)
		if v.Int > 1000 {
			pct = int(v.Int / 100)
		}
		if pct > 100 {
			pct = 100
		}
		return model.Consumable{
			Name:       "Yellow toner",
			Color:      "yellow",
			Type:       KindToner,
			Percentage: pct,
			RawLevel:   v.Int,
			OID:        oid,
			Confidence: ConfidenceFallback,
		}
	}

	for index := 4; index <= snmp.MaxSupplyIndex; index++ {
		if usedIndices[index] {
			continue
		}
		levelOid := snmp.SupplyLevelOid(index)
		levelVal, err := t.Get(ctx, levelOid)
		if err != nil || !levelVal.Numeric || levelVal.Int < 0 {
			continue
		}
		var max int64
		hasMax := false
		if maxVal, err := t.Get(ctx, snmp.SupplyMaxOid(index)); err == nil && maxVal.Numeric && maxVal.Int > 0 {
			max, hasMax = maxVal.Int, true
		}
		// Same realism filter the normalizer applies: drum/kit-scale rows
		// must not surface as the yellow toner.
		if max > tonerMaxCeiling || levelVal.Int > tonerMaxCeiling {
			continue
		}
		pct, ok := computePercentage(levelVal.Int, max, hasMax)
		if !ok {
			continue
		}
		return model.Consumable{
			Name:       "Yellow toner",
			Color:      "yellow",
			Type:       KindToner,
			Percentage: pct,
			RawLevel:   levelVal.Int,
			RawMax:     max,
			Index:      index,
			OID:        levelOid,
			Confidence: ConfidenceFallback,
		}
	}

	return UnreportedYellow()
}

// collectStatus maps hrDeviceStatus onto the fleet status vocabulary. A
// device that does not implement the OID, or returns something outside the
// enum, is taken at face value as running.
func (d *Driver) collectStatus(ctx context.Context, t snmp.Transport) (status, errorCode string) {
	v, err := t.Get(ctx, snmp.OidHrDeviceStatus)
	if err != nil || !v.Numeric {
		return model.PrinterStatusOnline, ""
	}
	switch v.Int {
	case 3: // warning(3)
		return model.PrinterStatusWarning, "device_warning"
	case 4: // testing(4)
		return model.PrinterStatusWarning, "device_testing"
	case 5: // down(5)
		return model.PrinterStatusOffline, "device_down"
	default: // unknown(1), running(2)
		return model.PrinterStatusOnline, ""
	}
}

// collectCounters resolves the three logical page counters. All known
// counter OIDs go out in a single batched request; catalog entries are
// consulted first, then the known-equivalent candidates, and the first
// positive value wins per counter.
func (d *Driver) collectCounters(ctx context.Context, t snmp.Transport, catalog []model.OidCatalogEntry) Counters {
	var c Counters

	var oids []string
	seen := make(map[string]bool)
	add := func(oid string) {
		if !seen[oid] {
			seen[oid] = true
			oids = append(oids, oid)
		}
	}
	for _, entry := range catalog {
		if entry.Category == model.OidCategoryCounter {
			add(entry.OID)
		}
	}
	for _, set := range [][]string{snmp.TotalPagesCandidates, snmp.ColorPagesCandidates, snmp.BWPagesCandidates} {
		for _, oid := range set {
			add(oid)
		}
	}

	values, err := t.GetMultiple(ctx, oids)
	if err != nil {
		return DeriveMissingCounters(c)
	}
	positive := func(oid string) (int64, bool) {
		v, ok := values[oid]
		return v.Int, ok && v.Numeric && v.Int > 0
	}

	for _, entry := range catalog {
		if entry.Category != model.OidCategoryCounter {
			continue
		}
		target := counterTarget(&c, entry.Name)
		if target == nil || *target > 0 {
			continue
		}
		if n, ok := positive(entry.OID); ok {
			*target = n
		}
	}

	candidateSets := []struct {
		target *int64
		oids   []string
	}{
		{&c.Total, snmp.TotalPagesCandidates},
		{&c.Color, snmp.ColorPagesCandidates},
		{&c.BW, snmp.BWPagesCandidates},
	}
	for _, set := range candidateSets {
		if *set.target > 0 {
			continue
		}
		for _, oid := range set.oids {
			if n, ok := positive(oid); ok {
				*set.target = n
				break
			}
		}
	}

	return DeriveMissingCounters(c)
}

func counterTarget(c *Counters, name string) *int64 {
	switch name {
	case "total_pages":
		return &c.Total
	case "color_pages":
		return &c.Color
	case "bw_pages":
		return &c.BW
	}
	return nil
}

// collectEnvironment reads catalog environment OIDs (temperature and the
// like). Everything here is best-effort.
func (d *Driver) collectEnvironment(ctx context.Context, t snmp.Transport, catalog []model.OidCatalogEntry) map[string]string {
	env := make(map[string]string)
	for _, entry := range catalog {
		if entry.Category != model.OidCategoryEnvironment {
			continue
		}
		if v, err := t.Get(ctx, entry.OID); err == nil && v.Str != "" {
			env[entry.Name] = v.Str
		}
	}
	return env
}

// fleetBrands are the vendor names recognized in sysDescr, checked in order.
var fleetBrands = []string{
	"HP", "Canon", "Epson", "Brother", "Xerox", "Lexmark",
	"Kyocera", "Ricoh", "Konica", "Sharp", "Samsung",
}

var modelPattern = regexp.MustCompile(`([A-Z][0-9A-Z]+(?:[-\s][0-9A-Z]+)+)`)

// Identify probes a device for discovery purposes. Returns
// ErrDeviceUnreachable when nothing answers, which discovery treats as "no
// device at this address".
func (d *Driver) Identify(ctx context.Context, profile snmp.Profile, catalog []model.OidCatalogEntry) (*DeviceIdentity, error) {
	t := d.factory(profile)

	sysDescr, err := t.Get(ctx, snmp.OidSysDescr)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrDeviceUnreachable, profile.Host)
	}

	identity := &DeviceIdentity{
		IPAddress: profile.Host,
		SysDescr:  sysDescr.Str,
		Brand:     extractBrand(sysDescr.Str),
		Model:     extractModel(sysDescr.Str),
	}

	if sysName, err := t.Get(ctx, snmp.OidSysName); err == nil {
		identity.SysName = sysName.Str
	}
	if serial, err := t.Get(ctx, snmp.OidSerialNumber); err == nil {
		identity.SerialNumber = strings.TrimSpace(serial.Str)
	}

	observations, usedIndices := d.collectSupplies(ctx, t)
	consumables := NormalizeSupplies(observations)
	if MissingYellow(consumables) {
		consumables = append(consumables, d.findYellow(ctx, t, usedIndices))
	}
	identity.Consumables = FilterMonochrome(consumables)
	identity.IsColor = HasColorToner(identity.Consumables)
	identity.Counters = d.collectCounters(ctx, t, catalog)

	return identity, nil
}

func extractBrand(sysDescr string) string {
	lower := strings.ToLower(sysDescr)
	for _, brand := range fleetBrands {
		if strings.Contains(lower, strings.ToLower(brand)) {
			return brand
		}
	}
	return ""
}

func extractModel(sysDescr string) string {
	if m := modelPattern.FindString(sysDescr); m != "" {
		return strings.TrimSpace(m)
	}
	return ""
}
