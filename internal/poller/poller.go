package poller

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"printer-fleet-backend/config"
	"printer-fleet-backend/internal/model"
	"printer-fleet-backend/internal/snmp"
	"printer-fleet-backend/internal/store"
	"printer-fleet-backend/internal/telemetry"
)

// lastSeenGrace is how far in the past last_seen_at is backdated for a
// printer that has never been seen online, so liveness math has a baseline.
const lastSeenGrace = 20 * time.Minute

// AlertEvaluator is the alert engine surface the poller drives after each
// successful snapshot.
type AlertEvaluator interface {
	Evaluate(ctx context.Context, printer *model.Printer, snap *model.StatusSnapshot) error
}

// Poller runs complete polling cycles: probe, snapshot, delta, alerts, and
// batch bookkeeping. One Poller instance is shared by all workers; each call
// to Poll touches exactly one printer.
type Poller struct {
	cfg    *config.Config
	store  store.Store
	driver *telemetry.Driver
	alerts AlertEvaluator
}

// New creates a poller. The alert evaluator may be nil, in which case alert
// evaluation is skipped (useful in tests and during discovery warm-up).
func New(cfg *config.Config, st store.Store, driver *telemetry.Driver, alerts AlertEvaluator) *Poller {
	return &Poller{cfg: cfg, store: st, driver: driver, alerts: alerts}
}

// ProfileFor merges the fleet-wide SNMP defaults with a printer's overrides.
func (p *Poller) ProfileFor(printer *model.Printer) snmp.Profile {
	profile := snmp.Profile{
		Host:      printer.IPAddress,
		Port:      p.cfg.SNMP.Port,
		Community: p.cfg.SNMP.Community,
		Version:   p.cfg.SNMP.Version,
		Timeout:   p.cfg.SNMP.Timeout(),
		Retries:   p.cfg.SNMP.Retries,

		SecurityLevel:  p.cfg.SNMP.SecurityLevel,
		Username:       p.cfg.SNMP.Username,
		AuthProtocol:   p.cfg.SNMP.AuthProtocol,
		AuthPassphrase: p.cfg.SNMP.AuthPassphrase,
		PrivProtocol:   p.cfg.SNMP.PrivProtocol,
		PrivPassphrase: p.cfg.SNMP.PrivPassphrase,
	}
	if printer.Community != "" {
		profile.Community = printer.Community
	}
	if printer.SNMPVersion != "" {
		profile.Version = printer.SNMPVersion
	}
	if printer.SNMPPort != 0 {
		profile.Port = printer.SNMPPort
	}
	if printer.V3Username != "" {
		profile.Username = printer.V3Username
		profile.SecurityLevel = printer.V3SecurityLevel
		profile.AuthProtocol = printer.V3AuthProtocol
		profile.AuthPassphrase = printer.V3AuthPassphrase
		profile.PrivProtocol = printer.V3PrivProtocol
		profile.PrivPassphrase = printer.V3PrivPassphrase
	}
	return profile
}

// Poll executes one full cycle for the given printer. batchID links the cycle
// to a SyncHistory record; zero means the cycle was requested ad hoc.
func (p *Poller) Poll(ctx context.Context, printerID, batchID int64) error {
	printer, err := p.store.GetPrinter(ctx, printerID)
	if err != nil {
		p.reportResult(ctx, batchID, false)
		return fmt.Errorf("poll: load printer %d: %w", printerID, err)
	}
	if !printer.Pollable() {
		p.reportResult(ctx, batchID, false)
		return fmt.Errorf("poll: printer %d is not pollable", printerID)
	}

	catalog, err := p.store.ListOidEntries(ctx, "")
	if err != nil {
		log.Printf("Poller: printer %d: oid catalog unavailable, using built-ins only: %v", printerID, err)
	}

	// The baseline must be read before the new snapshot is written, or the
	// delta would compare the new snapshot with itself.
	previous, err := p.store.LatestSnapshot(ctx, printerID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		p.reportResult(ctx, batchID, false)
		return fmt.Errorf("poll: load baseline for printer %d: %w", printerID, err)
	}

	now := time.Now().UTC()
	reading, err := p.driver.Poll(ctx, p.ProfileFor(printer), catalog)
	if err != nil {
		p.markUnreachable(ctx, printer, now)
		p.reportResult(ctx, batchID, false)
		return fmt.Errorf("poll: printer %d (%s): %w", printerID, printer.IPAddress, err)
	}

	snap := snapshotFromReading(printerID, reading, now)
	if err := p.store.CreateSnapshot(ctx, snap); err != nil {
		p.reportResult(ctx, batchID, false)
		return fmt.Errorf("poll: persist snapshot for printer %d: %w", printerID, err)
	}

	p.updatePrinter(ctx, printer, reading, now)

	if plog, reason := ComputeDelta(previous, snap); plog != nil {
		if err := p.store.CreatePrintLog(ctx, plog); err != nil {
			log.Printf("Poller: printer %d: failed to persist print log: %v", printerID, err)
		}
	} else if reason == SkipCounterReset || reason == SkipCounterAnomaly {
		log.Printf("Poller: printer %d: delta skipped (%s): previous=%d current=%d",
			printerID, reason, baselineTotal(previous), snap.CounterTotal)
	}

	if p.alerts != nil {
		if err := p.alerts.Evaluate(ctx, printer, snap); err != nil {
			log.Printf("Poller: printer %d: alert evaluation failed: %v", printerID, err)
		}
	}

	p.reportResult(ctx, batchID, true)
	return nil
}

// markUnreachable records a transport-level failure: the printer goes to an
// error status and last_sync_at moves, but no snapshot is written.
func (p *Poller) markUnreachable(ctx context.Context, printer *model.Printer, now time.Time) {
	printer.Status = model.PrinterStatusError
	printer.LastSyncAt = &now
	if printer.LastSeenAt == nil {
		grace := now.Add(-lastSeenGrace)
		printer.LastSeenAt = &grace
	}
	if err := p.store.SavePrinter(ctx, printer); err != nil {
		log.Printf("Poller: printer %d: failed to record unreachable state: %v", printer.ID, err)
	}
}

func (p *Poller) updatePrinter(ctx context.Context, printer *model.Printer, reading *telemetry.Reading, now time.Time) {
	printer.Status = reading.Status
	printer.LastSyncAt = &now
	if reading.Status == model.PrinterStatusOnline {
		printer.LastSeenAt = &now
	} else if printer.LastSeenAt == nil {
		grace := now.Add(-lastSeenGrace)
		printer.LastSeenAt = &grace
	}
	if reading.Counters.Total > 0 {
		printer.TotalPages = reading.Counters.Total
		printer.ColorPages = reading.Counters.Color
		printer.BWPages = reading.Counters.BW
	}
	if telemetry.HasColorToner(reading.Consumables) {
		printer.IsColor = true
	}
	if err := p.store.SavePrinter(ctx, printer); err != nil {
		log.Printf("Poller: printer %d: failed to update cached state: %v", printer.ID, err)
	}
}

func (p *Poller) reportResult(ctx context.Context, batchID int64, ok bool) {
	if batchID == 0 {
		return
	}
	if err := p.store.RecordJobResult(ctx, batchID, ok, time.Now().UTC()); err != nil {
		log.Printf("Poller: failed to record job result for batch %d: %v", batchID, err)
	}
}

func snapshotFromReading(printerID int64, reading *telemetry.Reading, now time.Time) *model.StatusSnapshot {
	return &model.StatusSnapshot{
		PrinterID:     printerID,
		Status:        reading.Status,
		ErrorCode:     reading.ErrorCode,
		CounterTotal:  reading.Counters.Total,
		CounterColor:  reading.Counters.Color,
		CounterBW:     reading.Counters.BW,
		UptimeSeconds: reading.UptimeSeconds,
		Consumables:   reading.Consumables,
		Counters: map[string]int64{
			"total_pages": reading.Counters.Total,
			"color_pages": reading.Counters.Color,
			"bw_pages":    reading.Counters.BW,
		},
		Environment: reading.Environment,
		RawPayload:  reading.Raw,
		CapturedAt:  now,
	}
}

func baselineTotal(previous *model.StatusSnapshot) int64 {
	if previous == nil {
		return 0
	}
	return previous.CounterTotal
}
