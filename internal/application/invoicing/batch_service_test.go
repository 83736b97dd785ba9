package invoicing

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nguyenhieubp/InvoiceFlowServer-sub004/internal/domain/invoicing"
	"github.com/nguyenhieubp/InvoiceFlowServer-sub004/internal/domain/sales"
	"github.com/nguyenhieubp/InvoiceFlowServer-sub004/internal/domain/shared"
)

// MockOrderSource is a mock implementation of OrderSource
type MockOrderSource struct {
	mock.Mock
}

func (m *MockOrderSource) OrderByID(ctx context.Context, orderID string) (*sales.SaleOrder, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.SaleOrder), args.Error(1)
}

func (m *MockOrderSource) OrdersByDateRange(ctx context.Context, from, to time.Time) ([]sales.SaleOrder, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]sales.SaleOrder), args.Error(1)
}

func newBatchService(t *testing.T, workers int) (*BatchService, *MockOrderSource, *serviceMocks) {
	t.Helper()
	svc, m := newService(t)
	orders := new(MockOrderSource)
	return NewBatchService(orders, svc, workers, nil), orders, m
}

// stubOrderPipeline wires the mocks so that every order in the batch runs
// the full machine; orders whose id is in failing get a rejected invoice.
func stubOrderPipeline(m *serviceMocks, failing map[string]bool) {
	m.audit.On("FindLatest", mock.Anything, mock.Anything).Return(nil, shared.ErrNotFound)
	m.departments.On("ByBranchCode", mock.Anything, "CN01").Return(&invoicing.Department{
		BranchCode:     "CN01",
		CompanyCode:    "GSG",
		DepartmentCode: "012",
	}, nil)
	m.catalog.On("ByItemCode", mock.Anything, mock.Anything).Return(nil, shared.ErrNotFound)
	m.gateway.On("Submit", mock.Anything, invoicing.DocCustomer, mock.Anything).Return(okResult(), nil)
	m.gateway.On("Submit", mock.Anything, invoicing.DocSalesOrder, mock.Anything).Return(okResult(), nil)
	m.gateway.On("Submit", mock.Anything, invoicing.DocSalesInvoice, mock.MatchedBy(func(p any) bool {
		return failing[p.(*invoicing.InvoiceDocument).DocumentNumber]
	})).Return(failResult("internal error"), nil)
	m.gateway.On("Submit", mock.Anything, invoicing.DocSalesInvoice, mock.Anything).Return(okResult(), nil)
	m.payments.On("ByOrderID", mock.Anything, mock.Anything).Return([]sales.PaymentRecord{}, nil)
	m.audit.On("Upsert", mock.Anything, mock.Anything).Return(nil)
}

func batchOrders(n int) []sales.SaleOrder {
	orders := make([]sales.SaleOrder, 0, n)
	for i := 0; i < n; i++ {
		o := normalOrder()
		o.OrderID = fmt.Sprintf("SO%03d", i+1)
		orders = append(orders, *o)
	}
	return orders
}

func TestSyncRange_AggregatesOutcomes(t *testing.T) {
	batch, source, m := newBatchService(t, 3)

	orders := batchOrders(12)
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	source.On("OrdersByDateRange", mock.Anything, from, to).Return(orders, nil)
	stubOrderPipeline(m, map[string]bool{"SO004": true, "SO009": true})

	result, err := batch.SyncRange(context.Background(), from, to)
	require.NoError(t, err)

	assert.Equal(t, 12, result.Total)
	assert.Equal(t, 10, result.Succeeded)
	assert.Equal(t, 2, result.Failed)
	require.Len(t, result.Errors, 2)
	failed := map[string]bool{}
	for _, e := range result.Errors {
		failed[e.OrderID] = true
	}
	assert.True(t, failed["SO004"])
	assert.True(t, failed["SO009"])
}

func TestSyncRange_EmptyRange(t *testing.T) {
	batch, source, _ := newBatchService(t, 0)

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)
	source.On("OrdersByDateRange", mock.Anything, from, to).Return([]sales.SaleOrder{}, nil)

	result, err := batch.SyncRange(context.Background(), from, to)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Total)
	assert.Empty(t, result.Errors)
}

func TestSyncRange_FetchErrorPropagates(t *testing.T) {
	batch, source, _ := newBatchService(t, 0)

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)
	source.On("OrdersByDateRange", mock.Anything, from, to).Return(nil, shared.ErrExternalService)

	result, err := batch.SyncRange(context.Background(), from, to)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, shared.ErrExternalService)
}

func TestRetry_PassesForceThrough(t *testing.T) {
	batch, source, m := newBatchService(t, 0)

	order := normalOrder()
	source.On("OrderByID", mock.Anything, "SO001").Return(order, nil)
	m.audit.On("FindLatest", mock.Anything, "SO001").Return(&invoicing.SubmissionLog{
		OrderID: "SO001",
		Status:  invoicing.SubmissionSuccess,
	}, nil)
	stubReferenceData(m)
	m.gateway.On("Submit", mock.Anything, mock.Anything, mock.Anything).Return(okResult(), nil)
	m.payments.On("ByOrderID", mock.Anything, "SO001").Return([]sales.PaymentRecord{}, nil)
	m.audit.On("Append", mock.Anything, mock.Anything).Return(nil)

	out, err := batch.Retry(context.Background(), "SO001", true)
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.False(t, out.Skipped)
	m.audit.AssertCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestRetry_UnknownOrder(t *testing.T) {
	batch, source, _ := newBatchService(t, 0)

	source.On("OrderByID", mock.Anything, "MISSING").Return(nil, shared.ErrNotFound)

	out, err := batch.Retry(context.Background(), "MISSING", false)
	assert.Nil(t, out)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
