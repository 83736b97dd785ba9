package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	appinvoicing "github.com/nguyenhieubp/InvoiceFlowServer-sub004/internal/application/invoicing"
)

// RangeSyncer runs one batch submission over a date range.
type RangeSyncer interface {
	SyncRange(ctx context.Context, from, to time.Time) (*appinvoicing.BatchResult, error)
}

// SyncTriggerConfig holds configuration for the daily sync trigger
type SyncTriggerConfig struct {
	// SyncHour and SyncMinute set the time of day the daily run starts
	// (24h clock)
	SyncHour   int
	SyncMinute int

	// LookbackDays is how many days before today each run covers
	LookbackDays int

	// CheckInterval is how often to check if it's time to run
	CheckInterval time.Duration
}

// DefaultSyncTriggerConfig returns default sync trigger configuration
func DefaultSyncTriggerConfig() SyncTriggerConfig {
	return SyncTriggerConfig{
		SyncHour:      2, // 2am, after the POS nightly close
		SyncMinute:    0,
		LookbackDays:  1,
		CheckInterval: time.Minute,
	}
}

// SyncTrigger runs the batch submission once per day at the configured
// time. Orders already submitted successfully are skipped by the
// idempotency check, so overlapping ranges across runs are harmless.
type SyncTrigger struct {
	config SyncTriggerConfig
	syncer RangeSyncer
	logger *zap.Logger

	cancel      context.CancelFunc
	wg          sync.WaitGroup
	mu          sync.Mutex
	isRunning   bool
	lastRunDate string // Track which date we last ran for

	now func() time.Time
}

// NewSyncTrigger creates a new daily sync trigger
func NewSyncTrigger(config SyncTriggerConfig, syncer RangeSyncer, logger *zap.Logger) *SyncTrigger {
	if config.CheckInterval <= 0 {
		config.CheckInterval = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncTrigger{
		config: config,
		syncer: syncer,
		logger: logger,
		now:    time.Now,
	}
}

// Start starts the trigger loop
func (t *SyncTrigger) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = true
	t.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	t.wg.Add(1)
	go t.runLoop(ctx)

	t.logger.Info("Daily sync trigger started",
		zap.Int("sync_hour", t.config.SyncHour),
		zap.Int("sync_minute", t.config.SyncMinute),
		zap.Int("lookback_days", t.config.LookbackDays),
	)
	return nil
}

// Stop stops the trigger loop
func (t *SyncTrigger) Stop(ctx context.Context) error {
	t.mu.Lock()
	if !t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = false
	t.mu.Unlock()

	if t.cancel != nil {
		t.cancel()
	}

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.logger.Info("Daily sync trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// runLoop checks periodically if it's time for the daily run
func (t *SyncTrigger) runLoop(ctx context.Context) {
	defer t.wg.Done()

	ticker := time.NewTicker(t.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.checkAndTrigger(ctx)
		}
	}
}

// checkAndTrigger runs the sync once the configured time of day has
// passed and today's run has not happened yet.
func (t *SyncTrigger) checkAndTrigger(ctx context.Context) {
	now := t.now()
	currentDate := now.Format("2006-01-02")

	t.mu.Lock()
	alreadyRan := t.lastRunDate == currentDate
	t.mu.Unlock()
	if alreadyRan {
		return
	}

	scheduled := time.Date(now.Year(), now.Month(), now.Day(),
		t.config.SyncHour, t.config.SyncMinute, 0, 0, now.Location())
	if now.Before(scheduled) {
		return
	}

	t.mu.Lock()
	t.lastRunDate = currentDate
	t.mu.Unlock()

	from := scheduled.AddDate(0, 0, -t.config.LookbackDays)
	t.logger.Info("Daily sync run starting",
		zap.Time("from", from),
		zap.Time("to", now))

	result, err := t.syncer.SyncRange(ctx, from, now)
	if err != nil {
		t.logger.Error("Daily sync run failed to fetch orders", zap.Error(err))
		return
	}
	t.logger.Info("Daily sync run finished",
		zap.Int("total", result.Total),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("failed", result.Failed))
}
