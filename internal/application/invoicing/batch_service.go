package invoicing

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nguyenhieubp/InvoiceFlowServer-sub004/internal/domain/sales"
)

// DefaultWorkerCount bounds how many orders are submitted concurrently.
// The bound protects the accounting system from overload; the engine
// itself has no shared state across orders.
const DefaultWorkerCount = 5

// BatchService drives the submission pipeline over many independent
// orders with a bounded worker pool.
type BatchService struct {
	orders    sales.OrderSource
	submitter *SubmissionService
	workers   int
	logger    *zap.Logger
}

// NewBatchService creates a BatchService. A non-positive worker count
// falls back to DefaultWorkerCount.
func NewBatchService(orders sales.OrderSource, submitter *SubmissionService, workers int, logger *zap.Logger) *BatchService {
	if workers <= 0 {
		workers = DefaultWorkerCount
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchService{
		orders:    orders,
		submitter: submitter,
		workers:   workers,
		logger:    logger,
	}
}

// SyncRange submits every order in [from, to]. It always returns a full
// summary instead of aborting on the first failing order; the error
// return only covers the upstream order fetch.
func (b *BatchService) SyncRange(ctx context.Context, from, to time.Time) (*BatchResult, error) {
	orders, err := b.orders.OrdersByDateRange(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return b.submitAll(ctx, orders), nil
}

// submitAll fans the orders out over the worker pool and aggregates the
// outcomes.
func (b *BatchService) submitAll(ctx context.Context, orders []sales.SaleOrder) *BatchResult {
	result := &BatchResult{Total: len(orders)}
	if len(orders) == 0 {
		return result
	}

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		sem = make(chan struct{}, b.workers)
	)

	for i := range orders {
		order := &orders[i]
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			outcome := b.submitter.Submit(ctx, order, SubmitOptions{})

			mu.Lock()
			defer mu.Unlock()
			if outcome.Success {
				result.Succeeded++
			} else {
				result.Failed++
				result.Errors = append(result.Errors, BatchError{
					OrderID: outcome.OrderID,
					Message: outcome.Message,
				})
			}
		}()
	}

	wg.Wait()
	b.logger.Info("batch run finished",
		zap.Int("total", result.Total),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("failed", result.Failed))
	return result
}

// Retry re-submits one order. With force set, the idempotency
// short-circuit for already-successful orders is bypassed and the audit
// trail gains a fresh record.
func (b *BatchService) Retry(ctx context.Context, orderID string, force bool) (*SubmitOutcome, error) {
	order, err := b.orders.OrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return b.submitter.Submit(ctx, order, SubmitOptions{ForceRetry: force}), nil
}
