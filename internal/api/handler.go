package api

import (
	"context"

	"printer-fleet-backend/config"
	"printer-fleet-backend/internal/discovery"
	"printer-fleet-backend/internal/model"
	"printer-fleet-backend/internal/store"
)

// Dispatcher is the scheduler surface the API needs: ad hoc polls, full
// fleet syncs and background discovery scans.
type Dispatcher interface {
	EnqueuePoll(printerID int64) bool
	EnqueueDiscovery(target string) bool
	SyncAll(ctx context.Context, syncType string) (*model.SyncHistory, error)
}

// Discoverer runs a network scan and reports what answered.
type Discoverer interface {
	Scan(ctx context.Context, target string) (*discovery.Report, error)
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	cfg        *config.Config
	store      store.Store
	dispatcher Dispatcher
	discoverer Discoverer
}

// NewHandler creates a new API handler.
func NewHandler(cfg *config.Config, s store.Store, dispatcher Dispatcher, discoverer Discoverer) *Handler {
	return &Handler{
		cfg:        cfg,
		store:      s,
		dispatcher: dispatcher,
		discoverer: discoverer,
	}
}
