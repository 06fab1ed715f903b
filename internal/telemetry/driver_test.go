package telemetry

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"printer-fleet-backend/internal/model"
	"printer-fleet-backend/internal/snmp"
)

// fakeTransport serves canned values from a map; any other OID is absent.
type fakeTransport struct {
	values map[string]string
}

func (f *fakeTransport) Get(_ context.Context, oid string) (snmp.Value, error) {
	raw, ok := f.values[oid]
	if !ok {
		return snmp.Value{}, snmp.ErrOidAbsent
	}
	v := snmp.Value{OID: oid, Str: raw}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		v.Int, v.Numeric = n, true
	}
	return v, nil
}

func (f *fakeTransport) GetMultiple(ctx context.Context, oids []string) (map[string]snmp.Value, error) {
	out := make(map[string]snmp.Value, len(oids))
	for _, oid := range oids {
		if v, err := f.Get(ctx, oid); err == nil {
			out[oid] = v
		}
	}
	return out, nil
}

func (f *fakeTransport) Walk(ctx context.Context, baseOID string, fn func(snmp.Value) error) error {
	return nil
}

func fakeFactory(values map[string]string) snmp.Factory {
	return func(snmp.Profile) snmp.Transport {
		return &fakeTransport{values: values}
	}
}

func colorDevice() map[string]string {
	return map[string]string{
		snmp.OidSysDescr:  "Lexmark CX515 DE multifunction laser",
		snmp.OidSysName:   "printer-lab-01",
		snmp.OidSysUpTime: "360000", // centiseconds, one hour

		snmp.SupplyTypeOid(1): "3", snmp.SupplyDescOid(1): "Black Toner",
		snmp.SupplyLevelOid(1): "1200", snmp.SupplyMaxOid(1): "4000",
		snmp.SupplyTypeOid(2): "3", snmp.SupplyDescOid(2): "Cyan Toner",
		snmp.SupplyLevelOid(2): "2000", snmp.SupplyMaxOid(2): "4000",
		snmp.SupplyTypeOid(3): "3", snmp.SupplyDescOid(3): "Magenta Toner",
		snmp.SupplyLevelOid(3): "3000", snmp.SupplyMaxOid(3): "4000",
		snmp.SupplyTypeOid(4): "3", snmp.SupplyDescOid(4): "Yellow Toner",
		snmp.SupplyLevelOid(4): "400", snmp.SupplyMaxOid(4): "4000",

		"1.3.6.1.2.1.43.10.2.1.4.1.1": "10000",
		"1.3.6.1.2.1.43.10.2.1.4.1.2": "4000",
	}
}

func TestDriverPoll_ColorDevice(t *testing.T) {
	driver := NewDriver(fakeFactory(colorDevice()))

	reading, err := driver.Poll(context.Background(), snmp.Profile{Host: "10.0.0.9"}, nil)
	require.NoError(t, err)

	assert.Equal(t, model.PrinterStatusOnline, reading.Status)
	assert.Equal(t, int64(3600), reading.UptimeSeconds)
	assert.Len(t, reading.Consumables, 4)

	// total=10000, color=4000, bw derived by subtraction.
	assert.Equal(t, Counters{Total: 10000, Color: 4000, BW: 6000}, reading.Counters)
}

func TestDriverPoll_Unreachable(t *testing.T) {
	driver := NewDriver(fakeFactory(map[string]string{}))

	_, err := driver.Poll(context.Background(), snmp.Profile{Host: "10.0.0.9"}, nil)
	assert.ErrorIs(t, err, ErrDeviceUnreachable)
}

func TestDriverPoll_YellowVendorFallback(t *testing.T) {
	values := colorDevice()
	delete(values, snmp.SupplyTypeOid(4))
	delete(values, snmp.SupplyDescOid(4))
	delete(values, snmp.SupplyLevelOid(4))
	delete(values, snmp.SupplyMaxOid(4))
	values[snmp.LexmarkYellowLevelOids[0]] = "37"

	driver := NewDriver(fakeFactory(values))
	reading, err := driver.Poll(context.Background(), snmp.Profile{Host: "10.0.0.9"}, nil)
	require.NoError(t, err)

	yellow := tonerByColor(reading.Consumables, "yellow")
	require.NotNil(t, yellow)
	assert.Equal(t, 37, yellow.Percentage)
	assert.Equal(t, ConfidenceFallback, yellow.Confidence)
}

func TestDriverPoll_YellowSynthesizedWhenAbsent(t *testing.T) {
	values := colorDevice()
	delete(values, snmp.SupplyTypeOid(4))
	delete(values, snmp.SupplyDescOid(4))
	delete(values, snmp.SupplyLevelOid(4))
	delete(values, snmp.SupplyMaxOid(4))

	driver := NewDriver(fakeFactory(values))
	reading, err := driver.Poll(context.Background(), snmp.Profile{Host: "10.0.0.9"}, nil)
	require.NoError(t, err)

	yellow := tonerByColor(reading.Consumables, "yellow")
	require.NotNil(t, yellow, "yellow must never be silently omitted")
	assert.Zero(t, yellow.Percentage)
	assert.NotEmpty(t, yellow.Note)
}

func TestDriverPoll_YellowScanRejectsDrumScaleRows(t *testing.T) {
	values := colorDevice()
	delete(values, snmp.SupplyTypeOid(4))
	delete(values, snmp.SupplyDescOid(4))
	delete(values, snmp.SupplyLevelOid(4))
	delete(values, snmp.SupplyMaxOid(4))

	// An unclaimed index with no type OID but drum-scale level/max: the
	// fallback scan must not promote it to the yellow toner.
	values[snmp.SupplyLevelOid(6)] = "75000"
	values[snmp.SupplyMaxOid(6)] = "100000"

	driver := NewDriver(fakeFactory(values))
	reading, err := driver.Poll(context.Background(), snmp.Profile{Host: "10.0.0.9"}, nil)
	require.NoError(t, err)

	yellow := tonerByColor(reading.Consumables, "yellow")
	require.NotNil(t, yellow)
	assert.Zero(t, yellow.Percentage, "drum-scale row must not be read as a toner level")
	assert.NotEmpty(t, yellow.Note, "unverifiable yellow must be flagged, not fabricated")
	assert.LessOrEqual(t, yellow.RawMax, int64(30000))
}

func TestDriverPoll_CatalogCountersWinFirst(t *testing.T) {
	values := colorDevice()
	values["1.3.6.1.4.1.11.2.3.9.4.2.1.1.4.5.8.0"] = "20000"
	catalog := []model.OidCatalogEntry{
		{OID: "1.3.6.1.4.1.11.2.3.9.4.2.1.1.4.5.8.0", Name: "total_pages", Category: model.OidCategoryCounter},
	}

	driver := NewDriver(fakeFactory(values))
	reading, err := driver.Poll(context.Background(), snmp.Profile{Host: "10.0.0.9"}, catalog)
	require.NoError(t, err)

	assert.Equal(t, int64(20000), reading.Counters.Total)
}

func TestDriverPoll_DeviceStatusMapping(t *testing.T) {
	testCases := []struct {
		name          string
		hrDeviceState string
		wantStatus    string
		wantErrorCode string
	}{
		{"running maps to online", "2", model.PrinterStatusOnline, ""},
		{"warning state surfaces", "3", model.PrinterStatusWarning, "device_warning"},
		{"testing counts as warning", "4", model.PrinterStatusWarning, "device_testing"},
		{"down maps to offline", "5", model.PrinterStatusOffline, "device_down"},
		{"garbage is ignored", "status: fine", model.PrinterStatusOnline, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			values := colorDevice()
			values[snmp.OidHrDeviceStatus] = tc.hrDeviceState

			driver := NewDriver(fakeFactory(values))
			reading, err := driver.Poll(context.Background(), snmp.Profile{Host: "10.0.0.9"}, nil)
			require.NoError(t, err)

			assert.Equal(t, tc.wantStatus, reading.Status)
			assert.Equal(t, tc.wantErrorCode, reading.ErrorCode)
		})
	}
}

// batchTransport records every GetMultiple call so tests can assert the
// counter scan goes out as one batched request.
type batchTransport struct {
	fakeTransport
	batches [][]string
}

func (b *batchTransport) GetMultiple(ctx context.Context, oids []string) (map[string]snmp.Value, error) {
	b.batches = append(b.batches, oids)
	return b.fakeTransport.GetMultiple(ctx, oids)
}

func TestDriverPoll_CountersFetchedInOneBatch(t *testing.T) {
	transport := &batchTransport{fakeTransport: fakeTransport{values: colorDevice()}}
	driver := NewDriver(func(snmp.Profile) snmp.Transport { return transport })

	catalog := []model.OidCatalogEntry{
		{OID: snmp.TotalPagesCandidates[0], Name: "total_pages", Category: model.OidCategoryCounter},
	}
	reading, err := driver.Poll(context.Background(), snmp.Profile{Host: "10.0.0.9"}, catalog)
	require.NoError(t, err)

	require.Len(t, transport.batches, 1)
	assert.Equal(t, Counters{Total: 10000, Color: 4000, BW: 6000}, reading.Counters)

	// The catalog OID also appears in the candidate list; it must be
	// requested only once.
	seen := make(map[string]int)
	for _, oid := range transport.batches[0] {
		seen[oid]++
	}
	assert.Equal(t, 1, seen[snmp.TotalPagesCandidates[0]])
}

func TestDriverIdentify(t *testing.T) {
	values := colorDevice()
	values[snmp.OidSerialNumber] = "NXW123456"

	driver := NewDriver(fakeFactory(values))
	identity, err := driver.Identify(context.Background(), snmp.Profile{Host: "10.0.0.9"}, nil)
	require.NoError(t, err)

	assert.Equal(t, "Lexmark", identity.Brand)
	assert.Equal(t, "CX515 DE", identity.Model)
	assert.Equal(t, "NXW123456", identity.SerialNumber)
	assert.True(t, identity.IsColor)
	assert.Equal(t, "10.0.0.9", identity.IPAddress)
}

func TestDriverIdentify_Unreachable(t *testing.T) {
	driver := NewDriver(fakeFactory(nil))
	_, err := driver.Identify(context.Background(), snmp.Profile{Host: "10.0.0.200"}, nil)
	assert.ErrorIs(t, err, ErrDeviceUnreachable)
}
