package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appinvoicing "github.com/nguyenhieubp/InvoiceFlowServer-sub004/internal/application/invoicing"
)

type recordingSyncer struct {
	mu    sync.Mutex
	calls []struct{ from, to time.Time }
}

func (r *recordingSyncer) SyncRange(_ context.Context, from, to time.Time) (*appinvoicing.BatchResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, struct{ from, to time.Time }{from, to})
	return &appinvoicing.BatchResult{Total: 3, Succeeded: 3}, nil
}

func (r *recordingSyncer) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func newTestTrigger(syncer RangeSyncer, at time.Time) *SyncTrigger {
	trigger := NewSyncTrigger(SyncTriggerConfig{
		SyncHour:      2,
		SyncMinute:    0,
		LookbackDays:  1,
		CheckInterval: time.Minute,
	}, syncer, zap.NewNop())
	trigger.now = func() time.Time { return at }
	return trigger
}

func TestSyncTrigger_FiresAfterScheduledTime(t *testing.T) {
	syncer := &recordingSyncer{}
	now := time.Date(2024, 1, 15, 2, 3, 0, 0, time.UTC)
	trigger := newTestTrigger(syncer, now)

	trigger.checkAndTrigger(context.Background())

	require.Equal(t, 1, syncer.callCount())
	call := syncer.calls[0]
	assert.Equal(t, time.Date(2024, 1, 14, 2, 0, 0, 0, time.UTC), call.from)
	assert.Equal(t, now, call.to)
}

func TestSyncTrigger_DoesNotFireBeforeScheduledTime(t *testing.T) {
	syncer := &recordingSyncer{}
	trigger := newTestTrigger(syncer, time.Date(2024, 1, 15, 1, 59, 0, 0, time.UTC))

	trigger.checkAndTrigger(context.Background())

	assert.Equal(t, 0, syncer.callCount())
}

func TestSyncTrigger_FiresOncePerDate(t *testing.T) {
	syncer := &recordingSyncer{}
	trigger := newTestTrigger(syncer, time.Date(2024, 1, 15, 2, 1, 0, 0, time.UTC))

	trigger.checkAndTrigger(context.Background())
	trigger.checkAndTrigger(context.Background())
	trigger.checkAndTrigger(context.Background())

	assert.Equal(t, 1, syncer.callCount())
}

func TestSyncTrigger_FiresAgainOnNextDate(t *testing.T) {
	syncer := &recordingSyncer{}
	trigger := newTestTrigger(syncer, time.Date(2024, 1, 15, 2, 1, 0, 0, time.UTC))

	trigger.checkAndTrigger(context.Background())
	trigger.now = func() time.Time { return time.Date(2024, 1, 16, 2, 1, 0, 0, time.UTC) }
	trigger.checkAndTrigger(context.Background())

	assert.Equal(t, 2, syncer.callCount())
}

func TestSyncTrigger_StartStop(t *testing.T) {
	syncer := &recordingSyncer{}
	trigger := NewSyncTrigger(SyncTriggerConfig{
		SyncHour:      2,
		CheckInterval: 10 * time.Millisecond,
	}, syncer, zap.NewNop())

	require.NoError(t, trigger.Start(context.Background()))
	// Idempotent start.
	require.NoError(t, trigger.Start(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, trigger.Stop(ctx))
	require.NoError(t, trigger.Stop(ctx))
}
