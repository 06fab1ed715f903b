package alerts

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"printer-fleet-backend/config"
	"printer-fleet-backend/internal/model"
	"printer-fleet-backend/internal/store"
	"printer-fleet-backend/internal/telemetry"
)

// Orders is the reorder capability consumed when a consumable alert opens.
type Orders interface {
	CreateIfAbsent(ctx context.Context, printer *model.Printer, c model.Consumable, slot string) (bool, error)
}

// Manager drives the two per-printer alert state machines: liveness and low
// consumables. At most one non-resolved alert exists per
// (printer, type, slot) key; acknowledged alerts are never mutated by
// automated evaluation.
type Manager struct {
	cfg    *config.Config
	store  store.Store
	orders Orders
}

// NewManager creates an alert manager. orders may be nil to disable the
// automatic reorder trigger.
func NewManager(cfg *config.Config, st store.Store, orders Orders) *Manager {
	return &Manager{cfg: cfg, store: st, orders: orders}
}

// Evaluate runs both state machines against the freshly captured snapshot.
func (m *Manager) Evaluate(ctx context.Context, printer *model.Printer, snap *model.StatusSnapshot) error {
	if err := m.evaluateLiveness(ctx, printer, snap); err != nil {
		return err
	}
	return m.evaluateConsumables(ctx, printer, snap)
}

func (m *Manager) offlineClassified(status string) bool {
	for _, s := range m.cfg.Alerts.OfflineStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// evaluateLiveness opens a PRINTER_OFFLINE alert after a consecutive run of
// offline-classified snapshots, and auto-resolves it once the printer
// answers again.
func (m *Manager) evaluateLiveness(ctx context.Context, printer *model.Printer, snap *model.StatusSnapshot) error {
	if !m.offlineClassified(snap.Status) {
		released, err := m.store.ResolveOpenAlerts(ctx, printer.ID, model.AlertTypeOffline, "", time.Now().UTC())
		if err != nil {
			return err
		}
		if released > 0 {
			log.Printf("Alerts: printer %d back online, resolved offline alert", printer.ID)
		}
		return nil
	}

	cycles := m.cfg.Alerts.OfflineCycles
	recent, err := m.store.RecentSnapshots(ctx, printer.ID, cycles)
	if err != nil {
		return fmt.Errorf("alerts: load recent snapshots for printer %d: %w", printer.ID, err)
	}

	consecutive := 0
	for _, s := range recent {
		if !m.offlineClassified(s.Status) {
			break
		}
		consecutive++
	}
	if consecutive < cycles {
		return nil
	}

	_, err = m.store.ActiveAlert(ctx, printer.ID, model.AlertTypeOffline, "")
	if err == nil {
		return nil // already being tracked
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	alert := &model.Alert{
		UUID:      uuid.NewString(),
		PrinterID: printer.ID,
		Type:      model.AlertTypeOffline,
		Severity:  model.SeverityHigh,
		Status:    model.AlertStatusOpen,
		Source:    "poller",
		Title:     fmt.Sprintf("Printer %s is offline", printer.Name),
		Message: fmt.Sprintf("No SNMP response from %s for %d consecutive polling cycles.",
			printer.IPAddress, consecutive),
		Payload: map[string]any{
			"consecutive_cycles": consecutive,
			"last_status":        snap.Status,
		},
	}
	if err := m.store.CreateAlert(ctx, alert); err != nil {
		return err
	}
	log.Printf("Alerts: printer %d offline for %d cycles, alert opened", printer.ID, consecutive)
	return nil
}

// evaluateConsumables applies the low-consumable thresholds with hysteresis:
// alerts open below the medium threshold and only release at or above the
// release threshold.
func (m *Manager) evaluateConsumables(ctx context.Context, printer *model.Printer, snap *model.StatusSnapshot) error {
	now := time.Now().UTC()
	for _, c := range snap.Consumables {
		if c.Type != telemetry.KindToner && c.Type != telemetry.KindInk {
			continue
		}
		// Synthesized entries carry no measured level; alerting on them
		// would page on every cycle for printers that simply do not report.
		if c.Confidence == telemetry.ConfidenceFallback && c.Note != "" {
			continue
		}

		slot := slotKey(c)
		if err := m.evaluateSlot(ctx, printer, c, slot, now); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) evaluateSlot(ctx context.Context, printer *model.Printer, c model.Consumable, slot string, now time.Time) error {
	level := c.Percentage

	if level >= m.cfg.Alerts.ConsumableRelease {
		_, err := m.store.ResolveOpenAlerts(ctx, printer.ID, model.AlertTypeLowConsumable, slot, now)
		return err
	}

	existing, err := m.store.ActiveAlert(ctx, printer.ID, model.AlertTypeLowConsumable, slot)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	found := err == nil

	if level >= m.cfg.Alerts.ConsumableMedium {
		// Degraded but above the alerting threshold: refresh an open alert,
		// never create one.
		if found && existing.Status == model.AlertStatusOpen {
			existing.Message = consumableMessage(c)
			existing.Payload = consumablePayload(c)
			return m.store.SaveAlert(ctx, existing)
		}
		return nil
	}

	severity := model.SeverityMedium
	if level < m.cfg.Alerts.ConsumableCritical {
		severity = model.SeverityCritical
	}

	if !found {
		alert := &model.Alert{
			UUID:      uuid.NewString(),
			PrinterID: printer.ID,
			Type:      model.AlertTypeLowConsumable,
			Slot:      slot,
			Severity:  severity,
			Status:    model.AlertStatusOpen,
			Source:    "poller",
			Title:     fmt.Sprintf("%s low on %s", printer.Name, c.Name),
			Message:   consumableMessage(c),
			Payload:   consumablePayload(c),
		}
		if err := m.store.CreateAlert(ctx, alert); err != nil {
			return err
		}
		m.triggerReorder(ctx, printer, c, slot)
		return nil
	}

	if existing.Status == model.AlertStatusAcknowledged {
		return nil
	}
	existing.Severity = severity
	existing.Message = consumableMessage(c)
	existing.Payload = consumablePayload(c)
	return m.store.SaveAlert(ctx, existing)
}

// triggerReorder fires only on alert creation. Failures are logged, never
// propagated: a broken order pipeline must not fail the polling cycle.
func (m *Manager) triggerReorder(ctx context.Context, printer *model.Printer, c model.Consumable, slot string) {
	if m.orders == nil {
		return
	}
	created, err := m.orders.CreateIfAbsent(ctx, printer, c, slot)
	if err != nil {
		log.Printf("Alerts: reorder trigger failed for printer %d slot %s: %v", printer.ID, slot, err)
		return
	}
	if created {
		log.Printf("Alerts: reorder triggered for printer %d slot %s", printer.ID, slot)
	}
}

// slotKey is the alert disambiguator for one supply slot. Color is the
// natural key for toners; unnamed slots fall back to the supply index.
func slotKey(c model.Consumable) string {
	if c.Color != "" {
		return c.Color
	}
	if c.Name != "" {
		return strings.ToLower(strings.ReplaceAll(c.Name, " ", "_"))
	}
	return fmt.Sprintf("slot_%d", c.Index)
}

func consumableMessage(c model.Consumable) string {
	return fmt.Sprintf("%s at %d%%", c.Name, c.Percentage)
}

func consumablePayload(c model.Consumable) map[string]any {
	return map[string]any{
		"percentage": c.Percentage,
		"color":      c.Color,
		"type":       c.Type,
		"raw_level":  c.RawLevel,
		"raw_max":    c.RawMax,
		"index":      c.Index,
		"confidence": c.Confidence,
	}
}
