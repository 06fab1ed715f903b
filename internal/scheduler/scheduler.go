package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"printer-fleet-backend/config"
	"printer-fleet-backend/internal/discovery"
	"printer-fleet-backend/internal/model"
	"printer-fleet-backend/internal/store"
)

// PollJob is one unit of work: poll one printer, optionally on behalf of a
// SyncHistory batch.
type PollJob struct {
	PrinterID int64
	BatchID   int64
}

// PollRunner executes one complete polling cycle.
type PollRunner interface {
	Poll(ctx context.Context, printerID, batchID int64) error
}

// ScanRunner executes one network discovery scan.
type ScanRunner interface {
	Scan(ctx context.Context, target string) (*discovery.Report, error)
}

// WorkerPool fans poll jobs out over a fixed number of workers. A printer is
// never queued twice at the same time: delta computation assumes at most one
// in-flight poll per printer.
type WorkerPool struct {
	size   int
	jobs   chan PollJob
	runner PollRunner

	mu       sync.Mutex
	inFlight map[int64]bool
}

// NewWorkerPool creates a pool with the given worker count and queue depth.
func NewWorkerPool(size, queue int, runner PollRunner) *WorkerPool {
	return &WorkerPool{
		size:     size,
		jobs:     make(chan PollJob, queue),
		runner:   runner,
		inFlight: make(map[int64]bool),
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("Poll worker %d started", id)
	for {
		select {
		case job := <-wp.jobs:
			if err := wp.runner.Poll(ctx, job.PrinterID, job.BatchID); err != nil {
				log.Printf("Poll worker %d: %v", id, err)
			}
			wp.release(job.PrinterID)
		case <-ctx.Done():
			log.Printf("Poll worker %d shutting down", id)
			return
		}
	}
}

// Dispatch queues a job unless the printer is already queued or running, or
// the queue is full. Returns whether the job was accepted.
func (wp *WorkerPool) Dispatch(job PollJob) bool {
	wp.mu.Lock()
	if wp.inFlight[job.PrinterID] {
		wp.mu.Unlock()
		return false
	}
	wp.inFlight[job.PrinterID] = true
	wp.mu.Unlock()

	select {
	case wp.jobs <- job:
		return true
	default:
		wp.release(job.PrinterID)
		log.Printf("Poll queue full, dropping job for printer %d", job.PrinterID)
		return false
	}
}

func (wp *WorkerPool) release(printerID int64) {
	wp.mu.Lock()
	delete(wp.inFlight, printerID)
	wp.mu.Unlock()
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan PollJob {
	return wp.jobs
}

// Scheduler owns the worker pool and the two background loops: periodic
// automatic syncs and the stale-batch watchdog.
type Scheduler struct {
	cfg     *config.Config
	store   store.Store
	pool    *WorkerPool
	scanner ScanRunner
}

// tickInterval is how often the background loops re-check their conditions.
const tickInterval = time.Minute

// scanDeadline bounds a background discovery scan. Expansion is capped at
// 256 addresses, so anything still running after this long is stuck.
const scanDeadline = 10 * time.Minute

// New creates a scheduler with its own worker pool.
func New(cfg *config.Config, st store.Store, runner PollRunner, scanner ScanRunner) *Scheduler {
	return &Scheduler{
		cfg:     cfg,
		store:   st,
		pool:    NewWorkerPool(cfg.Poller.WorkerPoolSize, cfg.Poller.QueueSize, runner),
		scanner: scanner,
	}
}

// Start launches the workers and background loops. Everything stops when ctx
// is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	s.pool.Start(ctx)
	go s.watchdogLoop(ctx)
	if s.cfg.Poller.AutoSyncEnabled {
		go s.autoSyncLoop(ctx)
	}
}

// EnqueuePoll queues an ad hoc poll for one printer, outside any batch.
func (s *Scheduler) EnqueuePoll(printerID int64) bool {
	return s.pool.Dispatch(PollJob{PrinterID: printerID})
}

// EnqueueDiscovery runs a network scan in the background. The outcome is
// logged; callers that need the report use the synchronous discovery
// endpoint instead.
func (s *Scheduler) EnqueueDiscovery(target string) bool {
	if s.scanner == nil {
		return false
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), scanDeadline)
		defer cancel()
		report, err := s.scanner.Scan(ctx, target)
		if err != nil {
			log.Printf("Discovery %s: %v", target, err)
			return
		}
		log.Printf("Discovery %s: %d printers found across %d addresses in %s",
			target, len(report.Printers), report.Scanned, report.Duration)
	}()
	return true
}

// SyncAll creates a SyncHistory batch and dispatches a poll job for every
// pollable printer. It returns as soon as dispatching is done; completion is
// tracked through the batch counters.
func (s *Scheduler) SyncAll(ctx context.Context, syncType string) (*model.SyncHistory, error) {
	printers, err := s.store.ListPollablePrinters(ctx)
	if err != nil {
		return nil, fmt.Errorf("sync: list printers: %w", err)
	}

	batch := &model.SyncHistory{Type: syncType, Status: model.SyncStatusPending}
	if err := s.store.CreateSyncHistory(ctx, batch); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.store.MarkSyncRunning(ctx, batch.ID, len(printers), now); err != nil {
		return nil, err
	}

	if len(printers) == 0 {
		if err := s.store.MarkBatchFailed(ctx, batch.ID, "no pollable printers", now); err != nil {
			return nil, err
		}
		return s.store.GetSyncHistory(ctx, batch.ID)
	}

	// The dispatched count must be in place before the first job can report
	// back, or the completion check would run against a zero denominator.
	if err := s.store.SetSyncDispatched(ctx, batch.ID, len(printers)); err != nil {
		return nil, err
	}

	dispatched := 0
	for _, p := range printers {
		if s.pool.Dispatch(PollJob{PrinterID: p.ID, BatchID: batch.ID}) {
			dispatched++
			continue
		}
		// Queue full or printer already in flight: count it as a failed job
		// so the batch still converges.
		if err := s.store.RecordJobResult(ctx, batch.ID, false, time.Now().UTC()); err != nil {
			log.Printf("Sync %d: failed to record undispatchable printer %d: %v", batch.ID, p.ID, err)
		}
	}

	log.Printf("Sync %d (%s): dispatched %d of %d printers", batch.ID, syncType, dispatched, len(printers))
	return s.store.GetSyncHistory(ctx, batch.ID)
}

// autoSyncLoop starts an automatic batch whenever the last one is older than
// the configured interval.
func (s *Scheduler) autoSyncLoop(ctx context.Context) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if s.autoSyncDue(ctx) {
				if _, err := s.SyncAll(ctx, model.SyncTypeAutomatic); err != nil {
					log.Printf("Auto sync failed: %v", err)
				}
			}
		case <-ctx.Done():
			return
		}
	}
}

func (s *Scheduler) autoSyncDue(ctx context.Context) bool {
	last, err := s.store.LastAutomaticSync(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return true
	}
	if err != nil {
		log.Printf("Auto sync: cannot load last run: %v", err)
		return false
	}
	return time.Since(last.CreatedAt) >= s.cfg.Poller.AutoSyncInterval()
}

// watchdogLoop fails batches whose jobs never reported back, so a crashed
// worker cannot leave a batch running forever.
func (s *Scheduler) watchdogLoop(ctx context.Context) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.reapStaleBatches(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Scheduler) reapStaleBatches(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-s.cfg.Poller.BatchMaxAge())
	stale, err := s.store.StaleRunningBatches(ctx, cutoff)
	if err != nil {
		log.Printf("Watchdog: %v", err)
		return
	}
	for _, batch := range stale {
		reason := fmt.Sprintf("batch exceeded %s without completing", s.cfg.Poller.BatchMaxAge())
		if err := s.store.MarkBatchFailed(ctx, batch.ID, reason, time.Now().UTC()); err != nil {
			log.Printf("Watchdog: failed to reap batch %d: %v", batch.ID, err)
			continue
		}
		log.Printf("Watchdog: batch %d marked failed (%d/%d jobs reported)",
			batch.ID, batch.Completed+batch.Failed, batch.Dispatched)
	}
}
