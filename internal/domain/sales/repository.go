package sales

import (
	"context"
	"time"
)

// OrderSource provides read access to upstream POS orders with fulfillment
// data already joined onto the lines.
type OrderSource interface {
	// OrderByID fetches a single order; returns shared.ErrNotFound when
	// the upstream system does not know the id.
	OrderByID(ctx context.Context, orderID string) (*SaleOrder, error)
	// OrdersByDateRange fetches all orders whose order date falls in
	// [from, to].
	OrdersByDateRange(ctx context.Context, from, to time.Time) ([]SaleOrder, error)
}

// PaymentRecordSource provides the cash/voucher payment records captured
// for an order.
type PaymentRecordSource interface {
	ByOrderID(ctx context.Context, orderID string) ([]PaymentRecord, error)
}
