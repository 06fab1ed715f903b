package scheduler

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"printer-fleet-backend/config"
	"printer-fleet-backend/internal/db"
	"printer-fleet-backend/internal/discovery"
	"printer-fleet-backend/internal/model"
	"printer-fleet-backend/internal/store"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	return store.NewGormStore(gdb)
}

// recordingRunner reports every job back to the batch like the real poller.
type recordingRunner struct {
	store store.Store

	mu    sync.Mutex
	polls []PollJob
	block chan struct{} // when set, Poll waits on it before returning
}

func (r *recordingRunner) Poll(ctx context.Context, printerID, batchID int64) error {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	r.polls = append(r.polls, PollJob{PrinterID: printerID, BatchID: batchID})
	r.mu.Unlock()
	if r.store != nil && batchID != 0 {
		return r.store.RecordJobResult(ctx, batchID, true, time.Now().UTC())
	}
	return nil
}

func (r *recordingRunner) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.polls)
}

func seedPrinters(t *testing.T, st store.Store, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		p := &model.Printer{
			UUID:         fmt.Sprintf("00000000-0000-0000-0000-%012d", i+1),
			Name:         fmt.Sprintf("Printer %d", i+1),
			IPAddress:    fmt.Sprintf("10.0.0.%d", i+1),
			SupportsSNMP: true,
			Status:       model.PrinterStatusUnknown,
		}
		require.NoError(t, st.CreatePrinter(context.Background(), p))
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		if cond() {
			return
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for condition")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestWorkerPool_SingleFlightPerPrinter(t *testing.T) {
	runner := &recordingRunner{block: make(chan struct{})}
	wp := NewWorkerPool(1, 8, runner)

	assert.True(t, wp.Dispatch(PollJob{PrinterID: 1}))
	assert.False(t, wp.Dispatch(PollJob{PrinterID: 1}), "same printer must not be double-queued")
	assert.True(t, wp.Dispatch(PollJob{PrinterID: 2}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wp.Start(ctx)
	close(runner.block)

	waitFor(t, func() bool { return runner.count() == 2 })

	// Once drained the printer may be queued again.
	waitFor(t, func() bool { return wp.Dispatch(PollJob{PrinterID: 1}) })
}

func TestWorkerPool_QueueFullDropsJob(t *testing.T) {
	wp := NewWorkerPool(1, 1, &recordingRunner{})

	assert.True(t, wp.Dispatch(PollJob{PrinterID: 1}))
	assert.False(t, wp.Dispatch(PollJob{PrinterID: 2}), "queue of one holds one job")

	// The dropped printer is not stuck in the in-flight set.
	<-wp.Jobs()
	wp.release(1)
	assert.True(t, wp.Dispatch(PollJob{PrinterID: 2}))
}

func TestScheduler_SyncAllRunsBatchToCompletion(t *testing.T) {
	st := newTestStore(t)
	seedPrinters(t, st, 3)

	// A printer without an address is skipped entirely.
	noIP := &model.Printer{UUID: "ffffffff-0000-0000-0000-000000000001", Name: "Detached", SupportsSNMP: true}
	require.NoError(t, st.CreatePrinter(context.Background(), noIP))

	runner := &recordingRunner{store: st}
	s := New(config.Default(), st, runner, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.pool.Start(ctx)

	batch, err := s.SyncAll(ctx, model.SyncTypeManual)
	require.NoError(t, err)
	assert.Equal(t, 3, batch.TotalPrinters)
	assert.Equal(t, 3, batch.Dispatched)

	waitFor(t, func() bool {
		h, err := st.GetSyncHistory(ctx, batch.ID)
		return err == nil && h.Status == model.SyncStatusCompleted
	})

	h, err := st.GetSyncHistory(ctx, batch.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, h.Completed)
	assert.Zero(t, h.Failed)
	assert.NotNil(t, h.CompletedAt)
}

func TestScheduler_SyncAllWithoutPrintersFailsBatch(t *testing.T) {
	st := newTestStore(t)
	s := New(config.Default(), st, &recordingRunner{}, nil)

	batch, err := s.SyncAll(context.Background(), model.SyncTypeManual)
	require.NoError(t, err)
	assert.Equal(t, model.SyncStatusFailed, batch.Status)
	assert.Zero(t, batch.Dispatched)
}

func TestScheduler_AutoSyncDue(t *testing.T) {
	st := newTestStore(t)
	s := New(config.Default(), st, &recordingRunner{}, nil)
	ctx := context.Background()

	assert.True(t, s.autoSyncDue(ctx), "no previous automatic sync means one is due")

	batch := &model.SyncHistory{Type: model.SyncTypeAutomatic, Status: model.SyncStatusCompleted}
	require.NoError(t, st.CreateSyncHistory(ctx, batch))
	assert.False(t, s.autoSyncDue(ctx), "a fresh automatic sync defers the next run")

	old := time.Now().UTC().Add(-2 * s.cfg.Poller.AutoSyncInterval())
	require.NoError(t, st.DB().Model(&model.SyncHistory{}).
		Where("id = ?", batch.ID).
		UpdateColumn("created_at", old).Error)
	assert.True(t, s.autoSyncDue(ctx))
}

type recordingScanner struct {
	mu      sync.Mutex
	targets []string
}

func (r *recordingScanner) Scan(ctx context.Context, target string) (*discovery.Report, error) {
	r.mu.Lock()
	r.targets = append(r.targets, target)
	r.mu.Unlock()
	return &discovery.Report{Target: target}, nil
}

func (r *recordingScanner) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.targets)
}

func TestScheduler_EnqueueDiscovery(t *testing.T) {
	st := newTestStore(t)
	scanner := &recordingScanner{}
	s := New(config.Default(), st, &recordingRunner{}, scanner)

	assert.True(t, s.EnqueueDiscovery("10.0.0.0/29"))
	waitFor(t, func() bool { return scanner.count() == 1 })

	noScanner := New(config.Default(), st, &recordingRunner{}, nil)
	assert.False(t, noScanner.EnqueueDiscovery("10.0.0.0/29"))
}

func TestScheduler_WatchdogReapsStaleBatches(t *testing.T) {
	st := newTestStore(t)
	s := New(config.Default(), st, &recordingRunner{}, nil)
	ctx := context.Background()

	stuck := &model.SyncHistory{Type: model.SyncTypeManual, Status: model.SyncStatusRunning, Dispatched: 5, Completed: 2}
	require.NoError(t, st.CreateSyncHistory(ctx, stuck))
	fresh := &model.SyncHistory{Type: model.SyncTypeManual, Status: model.SyncStatusRunning, Dispatched: 5}
	require.NoError(t, st.CreateSyncHistory(ctx, fresh))

	old := time.Now().UTC().Add(-2 * s.cfg.Poller.BatchMaxAge())
	require.NoError(t, st.DB().Model(&model.SyncHistory{}).
		Where("id = ?", stuck.ID).
		UpdateColumn("created_at", old).Error)

	s.reapStaleBatches(ctx)

	h, err := st.GetSyncHistory(ctx, stuck.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SyncStatusFailed, h.Status)
	assert.NotEmpty(t, h.ErrorMessage)

	h, err = st.GetSyncHistory(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SyncStatusRunning, h.Status)
}
