package internal

import (
	"context"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"printer-fleet-backend/config"
	"printer-fleet-backend/internal/alerts"
	"printer-fleet-backend/internal/db"
	"printer-fleet-backend/internal/model"
	"printer-fleet-backend/internal/orders"
	"printer-fleet-backend/internal/poller"
	"printer-fleet-backend/internal/snmp"
	"printer-fleet-backend/internal/store"
	"printer-fleet-backend/internal/telemetry"
)

// fleetDevice is one scripted SNMP agent; its values can be swapped between
// polling cycles.
type fleetDevice struct {
	values map[string]string
}

func (d *fleetDevice) Get(_ context.Context, oid string) (snmp.Value, error) {
	raw, ok := d.values[oid]
	if !ok {
		return snmp.Value{}, snmp.ErrOidAbsent
	}
	v := snmp.Value{OID: oid, Str: raw}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		v.Int, v.Numeric = n, true
	}
	return v, nil
}

func (d *fleetDevice) GetMultiple(ctx context.Context, oids []string) (map[string]snmp.Value, error) {
	out := make(map[string]snmp.Value, len(oids))
	for _, oid := range oids {
		if v, err := d.Get(ctx, oid); err == nil {
			out[oid] = v
		}
	}
	return out, nil
}

func (d *fleetDevice) Walk(context.Context, string, func(snmp.Value) error) error { return nil }

func colorLaserValues(total, color, blackLevel int64) map[string]string {
	values := map[string]string{
		snmp.OidSysDescr:              "Lexmark CX725 DHE color laser",
		snmp.OidSysName:               "lex-floor2",
		snmp.OidSysUpTime:             "8640000",
		"1.3.6.1.2.1.43.10.2.1.4.1.1": strconv.FormatInt(total, 10),
		"1.3.6.1.2.1.43.10.2.1.4.1.2": strconv.FormatInt(color, 10),
	}
	supplies := []struct {
		idx   int
		desc  string
		level int64
	}{
		{1, "Black Toner Cartridge", blackLevel},
		{2, "Cyan Toner Cartridge", 3100},
		{3, "Magenta Toner Cartridge", 2800},
		{4, "Yellow Toner Cartridge", 2500},
	}
	for _, s := range supplies {
		values[snmp.SupplyTypeOid(s.idx)] = "3"
		values[snmp.SupplyDescOid(s.idx)] = s.desc
		values[snmp.SupplyLevelOid(s.idx)] = strconv.FormatInt(s.level, 10)
		values[snmp.SupplyMaxOid(s.idx)] = "4000"
	}
	return values
}

func newIntegrationStore(t *testing.T) store.Store {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	return store.NewGormStore(gdb)
}

// TestPollingLifecycle drives a printer through three polling cycles and
// verifies snapshots, print logs, consumable alerts, and the reorder trigger
// end to end against a real (in-memory) database.
func TestPollingLifecycle(t *testing.T) {
	appStore := newIntegrationStore(t)
	ctx := context.Background()
	require.NoError(t, appStore.SeedOidCatalog(ctx, snmp.DefaultCatalog()))

	cfg := config.Default()
	cfg.Orders.Enabled = true

	device := &fleetDevice{values: colorLaserValues(10000, 4000, 3000)}
	driver := telemetry.NewDriver(func(snmp.Profile) snmp.Transport { return device })

	orderSvc := orders.NewService(cfg, appStore, nil)
	alertMgr := alerts.NewManager(cfg, appStore, orderSvc)
	pollSvc := poller.New(cfg, appStore, driver, alertMgr)

	printer := &model.Printer{
		UUID:         "fedcba98-7654-3210-fedc-ba9876543210",
		Name:         "Second floor",
		IPAddress:    "10.1.2.3",
		Status:       model.PrinterStatusUnknown,
		SupportsSNMP: true,
	}
	require.NoError(t, appStore.CreatePrinter(ctx, printer))

	// Cycle 1: healthy printer, baseline snapshot, no delta and no alerts.
	require.NoError(t, pollSvc.Poll(ctx, printer.ID, 0))

	got, err := appStore.GetPrinter(ctx, printer.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PrinterStatusOnline, got.Status)
	assert.True(t, got.IsColor)
	assert.Equal(t, int64(10000), got.TotalPages)

	snap, err := appStore.LatestSnapshot(ctx, printer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(86400), snap.UptimeSeconds)
	require.Len(t, snap.Consumables, 4)
	for _, c := range snap.Consumables {
		assert.Equal(t, telemetry.KindToner, c.Type)
		assert.GreaterOrEqual(t, c.Percentage, 0)
		assert.LessOrEqual(t, c.Percentage, 100)
	}

	openAlerts, err := appStore.ListAlerts(ctx, model.AlertStatusOpen)
	require.NoError(t, err)
	assert.Empty(t, openAlerts)

	// Cycle 2: pages were printed and the black toner dropped to 2%.
	device.values = colorLaserValues(10050, 4020, 80)
	require.NoError(t, pollSvc.Poll(ctx, printer.ID, 0))

	logs, err := appStore.ListPrintLogs(ctx, printer.ID, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, int64(50), logs[0].TotalPrints)
	assert.Equal(t, int64(20), logs[0].ColorPrints)
	assert.Equal(t, int64(30), logs[0].BWPrints)

	openAlerts, err = appStore.ListAlerts(ctx, model.AlertStatusOpen)
	require.NoError(t, err)
	require.Len(t, openAlerts, 1)
	assert.Equal(t, model.AlertTypeLowConsumable, openAlerts[0].Type)
	assert.Equal(t, "black", openAlerts[0].Slot)
	assert.Equal(t, model.SeverityCritical, openAlerts[0].Severity)

	pending, err := appStore.HasPendingOrder(ctx, printer.ID, telemetry.KindToner, "black")
	require.NoError(t, err)
	assert.True(t, pending, "critical toner level must trigger a reorder")

	// Cycle 3: toner replaced, alert resolves, no duplicate order.
	device.values = colorLaserValues(10080, 4040, 4000)
	require.NoError(t, pollSvc.Poll(ctx, printer.ID, 0))

	openAlerts, err = appStore.ListAlerts(ctx, model.AlertStatusOpen)
	require.NoError(t, err)
	assert.Empty(t, openAlerts)

	resolved, err := appStore.ListAlerts(ctx, model.AlertStatusResolved)
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	assert.NotNil(t, resolved[0].ResolvedAt)

	logs, err = appStore.ListPrintLogs(ctx, printer.ID, 10)
	require.NoError(t, err)
	assert.Len(t, logs, 2)
}

// TestUnreachablePrinterLifecycle verifies the offline alert opens after a
// run of offline-classified snapshots and resolves when the device answers
// again.
func TestUnreachablePrinterLifecycle(t *testing.T) {
	appStore := newIntegrationStore(t)
	ctx := context.Background()
	cfg := config.Default()

	device := &fleetDevice{values: map[string]string{}}
	driver := telemetry.NewDriver(func(snmp.Profile) snmp.Transport { return device })
	alertMgr := alerts.NewManager(cfg, appStore, nil)
	pollSvc := poller.New(cfg, appStore, driver, alertMgr)

	printer := &model.Printer{
		UUID:         "01234567-89ab-cdef-0123-456789abcdef",
		Name:         "Warehouse",
		IPAddress:    "10.9.9.9",
		Status:       model.PrinterStatusUnknown,
		SupportsSNMP: true,
	}
	require.NoError(t, appStore.CreatePrinter(ctx, printer))

	// A total transport failure writes no snapshot; the printer just goes
	// to the error status.
	err := pollSvc.Poll(ctx, printer.ID, 0)
	require.Error(t, err)
	got, err := appStore.GetPrinter(ctx, printer.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PrinterStatusError, got.Status)

	// Three error-status snapshots in a row open the offline alert.
	base := time.Now().UTC().Add(-10 * time.Minute)
	for i := 0; i < 3; i++ {
		snap := &model.StatusSnapshot{
			PrinterID:  printer.ID,
			Status:     model.PrinterStatusError,
			CapturedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, appStore.CreateSnapshot(ctx, snap))
		require.NoError(t, alertMgr.Evaluate(ctx, printer, snap))
	}

	openAlerts, err := appStore.ListAlerts(ctx, model.AlertStatusOpen)
	require.NoError(t, err)
	require.Len(t, openAlerts, 1)
	assert.Equal(t, model.AlertTypeOffline, openAlerts[0].Type)

	// The device comes back.
	device.values = colorLaserValues(100, 40, 3000)
	require.NoError(t, pollSvc.Poll(ctx, printer.ID, 0))

	openAlerts, err = appStore.ListAlerts(ctx, model.AlertStatusOpen)
	require.NoError(t, err)
	assert.Empty(t, openAlerts)
}
