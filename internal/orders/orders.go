package orders

import (
	"context"
	"fmt"
	"log"

	"printer-fleet-backend/config"
	"printer-fleet-backend/internal/model"
	"printer-fleet-backend/internal/store"
)

// Mailer delivers the reorder notification. The real delivery mechanism lives
// in the surrounding application; this package only needs the capability.
type Mailer interface {
	Send(to []string, subject, textBody, htmlBody string) error
}

// LogMailer is the default Mailer: it writes the notification to the process
// log. Used when no real mail transport is configured.
type LogMailer struct{}

func (LogMailer) Send(to []string, subject, _, _ string) error {
	log.Printf("Orders: notification %q for %v (no mail transport configured)", subject, to)
	return nil
}

// Service raises consumable reorders. Creation is idempotent per
// (printer, consumable type, slot): as long as a requested or placed order
// exists for that key, no second one is created.
type Service struct {
	cfg    *config.Config
	store  store.Store
	mailer Mailer
}

func NewService(cfg *config.Config, st store.Store, mailer Mailer) *Service {
	if mailer == nil {
		mailer = LogMailer{}
	}
	return &Service{cfg: cfg, store: st, mailer: mailer}
}

// CreateIfAbsent raises a reorder for the given consumable unless ordering is
// disabled or a pending order already covers the same slot. Returns whether a
// new order was created.
func (s *Service) CreateIfAbsent(ctx context.Context, printer *model.Printer, c model.Consumable, slot string) (bool, error) {
	if !s.cfg.Orders.Enabled {
		return false, nil
	}

	pending, err := s.store.HasPendingOrder(ctx, printer.ID, c.Type, slot)
	if err != nil {
		return false, fmt.Errorf("orders: check pending for printer %d slot %s: %w", printer.ID, slot, err)
	}
	if pending {
		return false, nil
	}

	order := &model.ConsumableOrder{
		PrinterID:      printer.ID,
		ConsumableType: c.Type,
		Slot:           slot,
		Color:          c.Color,
		Status:         model.OrderStatusRequested,
		Percentage:     c.Percentage,
		Notified:       s.notify(printer, c),
	}
	if err := s.store.CreateOrder(ctx, order); err != nil {
		return false, err
	}
	log.Printf("Orders: reorder requested for printer %d (%s): %s at %d%%",
		printer.ID, printer.Name, c.Name, c.Percentage)
	return true, nil
}

func (s *Service) notify(printer *model.Printer, c model.Consumable) bool {
	if len(s.cfg.Orders.Recipients) == 0 {
		return false
	}
	subject := fmt.Sprintf("Reorder: %s for %s", c.Name, printer.Name)
	body := fmt.Sprintf("Printer %s (%s) reports %s at %d%%. A replacement should be ordered.",
		printer.Name, printer.IPAddress, c.Name, c.Percentage)
	if err := s.mailer.Send(s.cfg.Orders.Recipients, subject, body, ""); err != nil {
		log.Printf("Orders: notification failed for printer %d: %v", printer.ID, err)
		return false
	}
	return true
}
