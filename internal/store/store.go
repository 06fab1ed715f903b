package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"printer-fleet-backend/internal/model"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("store: record not found")

// Store defines the interface for all database operations.
type Store interface {
	// Printers
	GetPrinter(ctx context.Context, id int64) (*model.Printer, error)
	GetPrinterByUUID(ctx context.Context, uuid string) (*model.Printer, error)
	GetPrinterByIP(ctx context.Context, ip string) (*model.Printer, error)
	ListPrinters(ctx context.Context) ([]model.Printer, error)
	ListPollablePrinters(ctx context.Context) ([]model.Printer, error)
	CreatePrinter(ctx context.Context, p *model.Printer) error
	SavePrinter(ctx context.Context, p *model.Printer) error

	// Snapshots and print logs
	LatestSnapshot(ctx context.Context, printerID int64) (*model.StatusSnapshot, error)
	CreateSnapshot(ctx context.Context, s *model.StatusSnapshot) error
	RecentSnapshots(ctx context.Context, printerID int64, limit int) ([]model.StatusSnapshot, error)
	CreatePrintLog(ctx context.Context, l *model.PrintLog) error
	ListPrintLogs(ctx context.Context, printerID int64, limit int) ([]model.PrintLog, error)

	// Alerts
	ActiveAlert(ctx context.Context, printerID int64, alertType, slot string) (*model.Alert, error)
	GetAlertByUUID(ctx context.Context, uuid string) (*model.Alert, error)
	ListAlerts(ctx context.Context, status string) ([]model.Alert, error)
	CreateAlert(ctx context.Context, a *model.Alert) error
	SaveAlert(ctx context.Context, a *model.Alert) error
	ResolveOpenAlerts(ctx context.Context, printerID int64, alertType, slot string, now time.Time) (int64, error)

	// Sync batches
	CreateSyncHistory(ctx context.Context, h *model.SyncHistory) error
	MarkSyncRunning(ctx context.Context, id int64, total int, now time.Time) error
	SetSyncDispatched(ctx context.Context, id int64, dispatched int) error
	RecordJobResult(ctx context.Context, id int64, ok bool, now time.Time) error
	GetSyncHistory(ctx context.Context, id int64) (*model.SyncHistory, error)
	ListSyncHistory(ctx context.Context, limit int) ([]model.SyncHistory, error)
	LastAutomaticSync(ctx context.Context) (*model.SyncHistory, error)
	StaleRunningBatches(ctx context.Context, olderThan time.Time) ([]model.SyncHistory, error)
	MarkBatchFailed(ctx context.Context, id int64, reason string, now time.Time) error

	// Consumable orders
	HasPendingOrder(ctx context.Context, printerID int64, consumableType, slot string) (bool, error)
	CreateOrder(ctx context.Context, o *model.ConsumableOrder) error

	// OID catalog
	ListOidEntries(ctx context.Context, category string) ([]model.OidCatalogEntry, error)
	SeedOidCatalog(ctx context.Context, entries []model.OidCatalogEntry) error

	// DB exposes the underlying handle for callers that need raw access.
	DB() *gorm.DB
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB { return s.db }

// --- Printers ---

func (s *gormStore) GetPrinter(ctx context.Context, id int64) (*model.Printer, error) {
	var p model.Printer
	err := s.db.WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load printer %d: %w", id, err)
	}
	return &p, nil
}

func (s *gormStore) GetPrinterByUUID(ctx context.Context, uuid string) (*model.Printer, error) {
	var p model.Printer
	err := s.db.WithContext(ctx).Where("uuid = ?", uuid).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load printer %s: %w", uuid, err)
	}
	return &p, nil
}

func (s *gormStore) GetPrinterByIP(ctx context.Context, ip string) (*model.Printer, error) {
	var p model.Printer
	err := s.db.WithContext(ctx).Where("ip_address = ?", ip).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load printer by ip %s: %w", ip, err)
	}
	return &p, nil
}

func (s *gormStore) ListPrinters(ctx context.Context) ([]model.Printer, error) {
	var printers []model.Printer
	if err := s.db.WithContext(ctx).Order("name").Find(&printers).Error; err != nil {
		return nil, fmt.Errorf("failed to list printers: %w", err)
	}
	return printers, nil
}

func (s *gormStore) ListPollablePrinters(ctx context.Context) ([]model.Printer, error) {
	var printers []model.Printer
	err := s.db.WithContext(ctx).
		Where("supports_snmp = ? AND ip_address <> ''", true).
		Order("id").
		Find(&printers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pollable printers: %w", err)
	}
	return printers, nil
}

func (s *gormStore) CreatePrinter(ctx context.Context, p *model.Printer) error {
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("failed to create printer: %w", err)
	}
	return nil
}

func (s *gormStore) SavePrinter(ctx context.Context, p *model.Printer) error {
	if err := s.db.WithContext(ctx).Save(p).Error; err != nil {
		return fmt.Errorf("failed to save printer %d: %w", p.ID, err)
	}
	return nil
}

// --- Snapshots and print logs ---

// LatestSnapshot returns the most recent snapshot for a printer. Ties on
// captured_at break toward the higher row id.
func (s *gormStore) LatestSnapshot(ctx context.Context, printerID int64) (*model.StatusSnapshot, error) {
	var snap model.StatusSnapshot
	err := s.db.WithContext(ctx).
		Where("printer_id = ?", printerID).
		Order("captured_at DESC, id DESC").
		First(&snap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load latest snapshot for printer %d: %w", printerID, err)
	}
	return &snap, nil
}

func (s *gormStore) CreateSnapshot(ctx context.Context, snap *model.StatusSnapshot) error {
	if err := s.db.WithContext(ctx).Create(snap).Error; err != nil {
		return fmt.Errorf("failed to create snapshot for printer %d: %w", snap.PrinterID, err)
	}
	return nil
}

func (s *gormStore) RecentSnapshots(ctx context.Context, printerID int64, limit int) ([]model.StatusSnapshot, error) {
	var snaps []model.StatusSnapshot
	err := s.db.WithContext(ctx).
		Where("printer_id = ?", printerID).
		Order("captured_at DESC, id DESC").
		Limit(limit).
		Find(&snaps).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots for printer %d: %w", printerID, err)
	}
	return snaps, nil
}

func (s *gormStore) CreatePrintLog(ctx context.Context, l *model.PrintLog) error {
	if err := s.db.WithContext(ctx).Create(l).Error; err != nil {
		return fmt.Errorf("failed to create print log for printer %d: %w", l.PrinterID, err)
	}
	return nil
}

func (s *gormStore) ListPrintLogs(ctx context.Context, printerID int64, limit int) ([]model.PrintLog, error) {
	var logs []model.PrintLog
	err := s.db.WithContext(ctx).
		Where("printer_id = ?", printerID).
		Order("ended_at DESC").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list print logs for printer %d: %w", printerID, err)
	}
	return logs, nil
}

// --- Alerts ---

// ActiveAlert returns a non-resolved alert matching the identity key, or
// ErrNotFound. Acknowledged alerts count as active.
func (s *gormStore) ActiveAlert(ctx context.Context, printerID int64, alertType, slot string) (*model.Alert, error) {
	var a model.Alert
	err := s.db.WithContext(ctx).
		Where("printer_id = ? AND type = ? AND slot = ? AND status <> ?",
			printerID, alertType, slot, model.AlertStatusResolved).
		First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load active alert for printer %d: %w", printerID, err)
	}
	return &a, nil
}

func (s *gormStore) GetAlertByUUID(ctx context.Context, uuid string) (*model.Alert, error) {
	var a model.Alert
	err := s.db.WithContext(ctx).Where("uuid = ?", uuid).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load alert %s: %w", uuid, err)
	}
	return &a, nil
}

func (s *gormStore) ListAlerts(ctx context.Context, status string) ([]model.Alert, error) {
	q := s.db.WithContext(ctx).Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var alerts []model.Alert
	if err := q.Find(&alerts).Error; err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	return alerts, nil
}

func (s *gormStore) CreateAlert(ctx context.Context, a *model.Alert) error {
	if err := s.db.WithContext(ctx).Create(a).Error; err != nil {
		return fmt.Errorf("failed to create alert for printer %d: %w", a.PrinterID, err)
	}
	return nil
}

func (s *gormStore) SaveAlert(ctx context.Context, a *model.Alert) error {
	if err := s.db.WithContext(ctx).Save(a).Error; err != nil {
		return fmt.Errorf("failed to save alert %d: %w", a.ID, err)
	}
	return nil
}

// ResolveOpenAlerts resolves matching alerts still in the open state.
// Acknowledged alerts are left for a human to close.
func (s *gormStore) ResolveOpenAlerts(ctx context.Context, printerID int64, alertType, slot string, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Model(&model.Alert{}).
		Where("printer_id = ? AND type = ? AND slot = ? AND status = ?",
			printerID, alertType, slot, model.AlertStatusOpen).
		Updates(map[string]any{
			"status":      model.AlertStatusResolved,
			"resolved_at": now,
			"updated_at":  now,
		})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to resolve alerts for printer %d: %w", printerID, res.Error)
	}
	return res.RowsAffected, nil
}

// --- Sync batches ---

func (s *gormStore) CreateSyncHistory(ctx context.Context, h *model.SyncHistory) error {
	if err := s.db.WithContext(ctx).Create(h).Error; err != nil {
		return fmt.Errorf("failed to create sync history: %w", err)
	}
	return nil
}

func (s *gormStore) MarkSyncRunning(ctx context.Context, id int64, total int, now time.Time) error {
	err := s.db.WithContext(ctx).Model(&model.SyncHistory{}).
		Where("id = ? AND status = ?", id, model.SyncStatusPending).
		Updates(map[string]any{
			"status":         model.SyncStatusRunning,
			"total_printers": total,
			"started_at":     now,
			"updated_at":     now,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to mark sync %d running: %w", id, err)
	}
	return nil
}

func (s *gormStore) SetSyncDispatched(ctx context.Context, id int64, dispatched int) error {
	err := s.db.WithContext(ctx).Model(&model.SyncHistory{}).
		Where("id = ?", id).
		UpdateColumn("dispatched", dispatched).Error
	if err != nil {
		return fmt.Errorf("failed to set dispatched count on sync %d: %w", id, err)
	}
	return nil
}

// RecordJobResult atomically bumps the completed or failed counter and, if
// every dispatched job has reported back, closes the batch. The completion
// update is conditional so concurrent workers cannot close it twice.
func (s *gormStore) RecordJobResult(ctx context.Context, id int64, ok bool, now time.Time) error {
	column := "completed"
	if !ok {
		column = "failed"
	}
	err := s.db.WithContext(ctx).Model(&model.SyncHistory{}).
		Where("id = ?", id).
		UpdateColumn(column, gorm.Expr(column+" + 1")).Error
	if err != nil {
		return fmt.Errorf("failed to record job result on sync %d: %w", id, err)
	}

	err = s.db.WithContext(ctx).Model(&model.SyncHistory{}).
		Where("id = ? AND status = ? AND dispatched > 0 AND completed + failed >= dispatched",
			id, model.SyncStatusRunning).
		Updates(map[string]any{
			"status":       model.SyncStatusCompleted,
			"completed_at": now,
			"updated_at":   now,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to finalize sync %d: %w", id, err)
	}
	return nil
}

func (s *gormStore) GetSyncHistory(ctx context.Context, id int64) (*model.SyncHistory, error) {
	var h model.SyncHistory
	err := s.db.WithContext(ctx).First(&h, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load sync history %d: %w", id, err)
	}
	return &h, nil
}

func (s *gormStore) ListSyncHistory(ctx context.Context, limit int) ([]model.SyncHistory, error) {
	var batches []model.SyncHistory
	err := s.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&batches).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list sync history: %w", err)
	}
	return batches, nil
}

func (s *gormStore) LastAutomaticSync(ctx context.Context) (*model.SyncHistory, error) {
	var h model.SyncHistory
	err := s.db.WithContext(ctx).
		Where("type = ?", model.SyncTypeAutomatic).
		Order("created_at DESC, id DESC").
		First(&h).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load last automatic sync: %w", err)
	}
	return &h, nil
}

func (s *gormStore) StaleRunningBatches(ctx context.Context, olderThan time.Time) ([]model.SyncHistory, error) {
	var batches []model.SyncHistory
	err := s.db.WithContext(ctx).
		Where("status IN ? AND created_at < ?",
			[]string{model.SyncStatusPending, model.SyncStatusRunning}, olderThan).
		Find(&batches).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list stale batches: %w", err)
	}
	return batches, nil
}

func (s *gormStore) MarkBatchFailed(ctx context.Context, id int64, reason string, now time.Time) error {
	err := s.db.WithContext(ctx).Model(&model.SyncHistory{}).
		Where("id = ? AND status IN ?", id, []string{model.SyncStatusPending, model.SyncStatusRunning}).
		Updates(map[string]any{
			"status":        model.SyncStatusFailed,
			"error_message": reason,
			"completed_at":  now,
			"updated_at":    now,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to mark sync %d failed: %w", id, err)
	}
	return nil
}

// --- Consumable orders ---

func (s *gormStore) HasPendingOrder(ctx context.Context, printerID int64, consumableType, slot string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.ConsumableOrder{}).
		Where("printer_id = ? AND consumable_type = ? AND slot = ? AND status IN ?",
			printerID, consumableType, slot,
			[]string{model.OrderStatusRequested, model.OrderStatusPlaced}).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to count pending orders for printer %d: %w", printerID, err)
	}
	return count > 0, nil
}

func (s *gormStore) CreateOrder(ctx context.Context, o *model.ConsumableOrder) error {
	if err := s.db.WithContext(ctx).Create(o).Error; err != nil {
		return fmt.Errorf("failed to create consumable order for printer %d: %w", o.PrinterID, err)
	}
	return nil
}

// --- OID catalog ---

func (s *gormStore) ListOidEntries(ctx context.Context, category string) ([]model.OidCatalogEntry, error) {
	q := s.db.WithContext(ctx).Where("is_active = ?", true)
	if category != "" {
		q = q.Where("category = ?", category)
	}
	var entries []model.OidCatalogEntry
	if err := q.Order("oid").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list oid entries: %w", err)
	}
	return entries, nil
}

// SeedOidCatalog inserts the built-in catalog, leaving operator edits intact.
func (s *gormStore) SeedOidCatalog(ctx context.Context, entries []model.OidCatalogEntry) error {
	if len(entries) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "oid"}},
		DoNothing: true,
	}).Create(&entries).Error
	if err != nil {
		return fmt.Errorf("failed to seed oid catalog: %w", err)
	}
	return nil
}
