package discovery

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"printer-fleet-backend/config"
	"printer-fleet-backend/internal/model"
	"printer-fleet-backend/internal/snmp"
	"printer-fleet-backend/internal/store"
	"printer-fleet-backend/internal/telemetry"
)

// Report summarizes one scan run. Printers holds the identities of devices
// that answered; persisting them is the caller's decision, not the
// scanner's.
type Report struct {
	Target    string                     `json:"target"`
	Scanned   int                        `json:"scanned"`
	Printers  []telemetry.DeviceIdentity `json:"printers"`
	StartedAt time.Time                  `json:"started_at"`
	Duration  time.Duration              `json:"duration"`
}

// Scanner probes address ranges for SNMP-speaking printers. Unreachable
// addresses are expected and silently skipped.
type Scanner struct {
	cfg    *config.Config
	store  store.Store
	driver *telemetry.Driver
}

// NewScanner creates a scanner. store may be nil, in which case no OID
// catalog is loaded and only built-in OIDs are probed.
func NewScanner(cfg *config.Config, st store.Store, driver *telemetry.Driver) *Scanner {
	return &Scanner{cfg: cfg, store: st, driver: driver}
}

// Scan expands the target and probes every candidate address, bounded by the
// configured concurrency limit.
func (s *Scanner) Scan(ctx context.Context, target string) (*Report, error) {
	ips, err := ExpandTarget(target)
	if err != nil {
		return nil, err
	}

	var catalog []model.OidCatalogEntry
	if s.store != nil {
		if catalog, err = s.store.ListOidEntries(ctx, ""); err != nil {
			log.Printf("Discovery: oid catalog unavailable, using built-ins only: %v", err)
		}
	}

	report := &Report{Target: target, Scanned: len(ips), StartedAt: time.Now().UTC()}
	found := make(chan telemetry.DeviceIdentity, len(ips))
	sem := make(chan struct{}, s.cfg.Discovery.MaxConcurrent)
	var wg sync.WaitGroup

	log.Printf("Discovery: scanning %d addresses in %s", len(ips), target)
	for _, ip := range ips {
		wg.Add(1)
		go func(ip string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if ctx.Err() != nil {
				return
			}
			identity, err := s.probe(ctx, ip, catalog)
			if err != nil {
				if !errors.Is(err, telemetry.ErrDeviceUnreachable) {
					log.Printf("Discovery: probe %s failed: %v", ip, err)
				}
				return
			}
			found <- *identity
		}(ip)
	}

	go func() {
		wg.Wait()
		close(found)
	}()

	for identity := range found {
		report.Printers = append(report.Printers, identity)
	}
	report.Duration = time.Since(report.StartedAt)

	log.Printf("Discovery: scan of %s finished in %s, %d printers found",
		target, report.Duration.Round(time.Millisecond), len(report.Printers))
	return report, ctx.Err()
}

func (s *Scanner) probe(ctx context.Context, ip string, catalog []model.OidCatalogEntry) (*telemetry.DeviceIdentity, error) {
	profile := snmp.Profile{
		Host:      ip,
		Port:      s.cfg.SNMP.Port,
		Community: s.cfg.SNMP.Community,
		Version:   s.cfg.SNMP.Version,
		Timeout:   s.cfg.SNMP.Timeout(),
		Retries:   s.cfg.SNMP.Retries,

		SecurityLevel:  s.cfg.SNMP.SecurityLevel,
		Username:       s.cfg.SNMP.Username,
		AuthProtocol:   s.cfg.SNMP.AuthProtocol,
		AuthPassphrase: s.cfg.SNMP.AuthPassphrase,
		PrivProtocol:   s.cfg.SNMP.PrivProtocol,
		PrivPassphrase: s.cfg.SNMP.PrivPassphrase,
	}
	return s.driver.Identify(ctx, profile, catalog)
}
