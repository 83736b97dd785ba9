package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appinvoicing "github.com/nguyenhieubp/InvoiceFlowServer-sub004/internal/application/invoicing"
	"github.com/nguyenhieubp/InvoiceFlowServer-sub004/internal/domain/invoicing"
	"github.com/nguyenhieubp/InvoiceFlowServer-sub004/internal/domain/shared"
)

type MockBatchRunner struct {
	mock.Mock
}

func (m *MockBatchRunner) SyncRange(ctx context.Context, from, to time.Time) (*appinvoicing.BatchResult, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appinvoicing.BatchResult), args.Error(1)
}

func (m *MockBatchRunner) Retry(ctx context.Context, orderID string, force bool) (*appinvoicing.SubmitOutcome, error) {
	args := m.Called(ctx, orderID, force)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appinvoicing.SubmitOutcome), args.Error(1)
}

type MockAuditReader struct {
	mock.Mock
}

func (m *MockAuditReader) FindLatest(ctx context.Context, orderID string) (*invoicing.SubmissionLog, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicing.SubmissionLog), args.Error(1)
}

func (m *MockAuditReader) ListByOrder(ctx context.Context, orderID string) ([]invoicing.SubmissionLog, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]invoicing.SubmissionLog), args.Error(1)
}

func newInvoiceRouter(batch *MockBatchRunner, audit *MockAuditReader) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api/v1")
	NewInvoiceHandler(batch, audit, zap.NewNop()).RegisterRoutes(api)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestInvoiceHandler_Sync(t *testing.T) {
	batch := new(MockBatchRunner)
	audit := new(MockAuditReader)
	batch.On("SyncRange", mock.Anything,
		time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 11, 23, 59, 59, 0, time.UTC),
	).Return(&appinvoicing.BatchResult{Total: 8, Succeeded: 7, Failed: 1}, nil)

	w := doJSON(t, newInvoiceRouter(batch, audit), http.MethodPost, "/api/v1/invoices/sync",
		gin.H{"from": "2024-01-10", "to": "2024-01-11"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":8`)
	assert.Contains(t, w.Body.String(), `"succeeded":7`)
	batch.AssertExpectations(t)
}

func TestInvoiceHandler_Sync_InvalidDate(t *testing.T) {
	batch := new(MockBatchRunner)
	r := newInvoiceRouter(batch, new(MockAuditReader))

	w := doJSON(t, r, http.MethodPost, "/api/v1/invoices/sync",
		gin.H{"from": "10/01/2024", "to": "2024-01-11"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	batch.AssertNotCalled(t, "SyncRange", mock.Anything, mock.Anything, mock.Anything)
}

func TestInvoiceHandler_Sync_ReversedRange(t *testing.T) {
	batch := new(MockBatchRunner)
	r := newInvoiceRouter(batch, new(MockAuditReader))

	w := doJSON(t, r, http.MethodPost, "/api/v1/invoices/sync",
		gin.H{"from": "2024-01-11", "to": "2024-01-10"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	batch.AssertNotCalled(t, "SyncRange", mock.Anything, mock.Anything, mock.Anything)
}

func TestInvoiceHandler_Sync_FetchFailure(t *testing.T) {
	batch := new(MockBatchRunner)
	batch.On("SyncRange", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, shared.ErrExternalService)

	w := doJSON(t, newInvoiceRouter(batch, new(MockAuditReader)), http.MethodPost,
		"/api/v1/invoices/sync", gin.H{"from": "2024-01-10", "to": "2024-01-11"})

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "EXTERNAL_SERVICE")
}

func TestInvoiceHandler_Retry_PassesForce(t *testing.T) {
	batch := new(MockBatchRunner)
	batch.On("Retry", mock.Anything, "SO001", true).
		Return(&appinvoicing.SubmitOutcome{OrderID: "SO001", Success: true}, nil)

	w := doJSON(t, newInvoiceRouter(batch, new(MockAuditReader)), http.MethodPost,
		"/api/v1/invoices/SO001/retry?force=true", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":true`)
	batch.AssertExpectations(t)
}

func TestInvoiceHandler_Retry_UnknownOrder(t *testing.T) {
	batch := new(MockBatchRunner)
	batch.On("Retry", mock.Anything, "SO404", false).Return(nil, shared.ErrNotFound)

	w := doJSON(t, newInvoiceRouter(batch, new(MockAuditReader)), http.MethodPost,
		"/api/v1/invoices/SO404/retry", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")
}

func TestInvoiceHandler_Status(t *testing.T) {
	audit := new(MockAuditReader)
	audit.On("FindLatest", mock.Anything, "SO001").Return(&invoicing.SubmissionLog{
		OrderID:       "SO001",
		Status:        invoicing.SubmissionSuccess,
		Message:       "ok",
		CorrelationID: "guid-1",
	}, nil)

	w := doJSON(t, newInvoiceRouter(new(MockBatchRunner), audit), http.MethodGet,
		"/api/v1/invoices/SO001/status", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"correlation_id":"guid-1"`)
}

func TestInvoiceHandler_Status_NotFound(t *testing.T) {
	audit := new(MockAuditReader)
	audit.On("FindLatest", mock.Anything, "SO404").Return(nil, shared.ErrNotFound)

	w := doJSON(t, newInvoiceRouter(new(MockBatchRunner), audit), http.MethodGet,
		"/api/v1/invoices/SO404/status", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInvoiceHandler_Audit(t *testing.T) {
	audit := new(MockAuditReader)
	audit.On("ListByOrder", mock.Anything, "SO001").Return([]invoicing.SubmissionLog{
		{OrderID: "SO001", Status: invoicing.SubmissionSuccess, RetryCount: 1},
		{OrderID: "SO001", Status: invoicing.SubmissionFailed, Message: "timeout"},
	}, nil)

	w := doJSON(t, newInvoiceRouter(new(MockBatchRunner), audit), http.MethodGet,
		"/api/v1/invoices/SO001/audit", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"retry_count":1`)
	assert.Contains(t, w.Body.String(), "timeout")
}
