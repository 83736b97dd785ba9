package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appinvoicing "github.com/nguyenhieubp/InvoiceFlowServer-sub004/internal/application/invoicing"
	"github.com/nguyenhieubp/InvoiceFlowServer-sub004/internal/domain/invoicing"
	"github.com/nguyenhieubp/InvoiceFlowServer-sub004/internal/interfaces/http/dto"
)

const dateLayout = "2006-01-02"

// BatchRunner drives order submission, one order or a date range at a
// time.
type BatchRunner interface {
	SyncRange(ctx context.Context, from, to time.Time) (*appinvoicing.BatchResult, error)
	Retry(ctx context.Context, orderID string, force bool) (*appinvoicing.SubmitOutcome, error)
}

// AuditReader exposes the submission audit trail.
type AuditReader interface {
	FindLatest(ctx context.Context, orderID string) (*invoicing.SubmissionLog, error)
	ListByOrder(ctx context.Context, orderID string) ([]invoicing.SubmissionLog, error)
}

// InvoiceHandler handles invoice submission HTTP requests
type InvoiceHandler struct {
	BaseHandler
	batch  BatchRunner
	audit  AuditReader
	logger *zap.Logger
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(batch BatchRunner, audit AuditReader, logger *zap.Logger) *InvoiceHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoiceHandler{
		batch:  batch,
		audit:  audit,
		logger: logger,
	}
}

// RegisterRoutes registers invoice routes
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	invoices := rg.Group("/invoices")
	{
		invoices.POST("/sync", h.Sync)
		invoices.POST("/:orderID/retry", h.Retry)
		invoices.GET("/:orderID/status", h.Status)
		invoices.GET("/:orderID/audit", h.Audit)
	}
}

// Sync runs the submission pipeline over every order in a date range.
func (h *InvoiceHandler) Sync(c *gin.Context) {
	var req dto.SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	from, err := time.Parse(dateLayout, req.From)
	if err != nil {
		h.BadRequest(c, "Invalid from date, expected YYYY-MM-DD")
		return
	}
	to, err := time.Parse(dateLayout, req.To)
	if err != nil {
		h.BadRequest(c, "Invalid to date, expected YYYY-MM-DD")
		return
	}
	if to.Before(from) {
		h.BadRequest(c, "Date range end precedes start")
		return
	}
	// Inclusive end of day.
	to = to.Add(24*time.Hour - time.Second)

	result, err := h.batch.SyncRange(c.Request.Context(), from, to)
	if err != nil {
		h.logger.Error("Batch sync failed", zap.Error(err))
		h.HandleError(c, err)
		return
	}

	h.logger.Info("Batch sync finished",
		zap.String("from", req.From),
		zap.String("to", req.To),
		zap.Int("total", result.Total),
		zap.Int("failed", result.Failed))
	h.Success(c, result)
}

// Retry re-submits a single order. With ?force=true, an order already
// marked successful is submitted again and the audit trail gains a fresh
// record.
func (h *InvoiceHandler) Retry(c *gin.Context) {
	orderID := c.Param("orderID")
	force := c.Query("force") == "true"

	outcome, err := h.batch.Retry(c.Request.Context(), orderID, force)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.logger.Info("Manual retry finished",
		zap.String("order_id", orderID),
		zap.Bool("force", force),
		zap.Bool("success", outcome.Success))
	h.Success(c, outcome)
}

// Status returns the latest submission record for an order.
func (h *InvoiceHandler) Status(c *gin.Context) {
	orderID := c.Param("orderID")

	record, err := h.audit.FindLatest(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toAuditEntry(record))
}

// Audit returns the full submission trail for an order, newest first.
func (h *InvoiceHandler) Audit(c *gin.Context) {
	orderID := c.Param("orderID")

	records, err := h.audit.ListByOrder(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	entries := make([]dto.AuditEntry, 0, len(records))
	for i := range records {
		entries = append(entries, toAuditEntry(&records[i]))
	}
	h.Success(c, entries)
}

func toAuditEntry(record *invoicing.SubmissionLog) dto.AuditEntry {
	return dto.AuditEntry{
		Status:        record.Status,
		Message:       record.Message,
		CorrelationID: record.CorrelationID,
		RetryCount:    record.RetryCount,
		CreatedAt:     record.CreatedAt,
	}
}
