package invoicing

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nguyenhieubp/InvoiceFlowServer-sub004/internal/domain/invoicing"
	"github.com/nguyenhieubp/InvoiceFlowServer-sub004/internal/domain/sales"
	"github.com/nguyenhieubp/InvoiceFlowServer-sub004/internal/domain/shared"
)

// Submission stages. One order moves through them strictly sequentially;
// every terminal transition writes exactly one audit record.
type stage string

const (
	stageValidating   stage = "VALIDATING"
	stageCustomer     stage = "CREATING_CUSTOMER"
	stageSalesOrder   stage = "CREATING_SALES_ORDER"
	stageSalesInvoice stage = "CREATING_SALES_INVOICE"
	stageSalesReturn  stage = "CREATING_SALES_RETURN"
	stageGxtTransfer  stage = "CREATING_GXT_TRANSFER"
	stagePayment      stage = "PROCESSING_PAYMENT"
)

// SubmissionService drives the per-order submission state machine against
// the accounting system.
type SubmissionService struct {
	gateway     invoicing.AccountingGateway
	catalog     invoicing.CatalogLookup
	departments invoicing.DepartmentLookup
	payments    sales.PaymentRecordSource
	audit       invoicing.AuditStore
	builder     *Builder
	logger      *zap.Logger

	now func() time.Time
}

// NewSubmissionService creates a SubmissionService.
func NewSubmissionService(
	gateway invoicing.AccountingGateway,
	catalog invoicing.CatalogLookup,
	departments invoicing.DepartmentLookup,
	payments sales.PaymentRecordSource,
	audit invoicing.AuditStore,
	builder *Builder,
	logger *zap.Logger,
) *SubmissionService {
	if builder == nil {
		builder = NewBuilder()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubmissionService{
		gateway:     gateway,
		catalog:     catalog,
		departments: departments,
		payments:    payments,
		audit:       audit,
		builder:     builder,
		logger:      logger,
		now:         time.Now,
	}
}

// Submit runs the full state machine for one order. Step failures never
// propagate as errors: they end in a Failed-state audit record and a
// non-success outcome, so a batch driver can move on to the next order.
func (s *SubmissionService) Submit(ctx context.Context, order *sales.SaleOrder, opts SubmitOptions) *SubmitOutcome {
	out := &SubmitOutcome{OrderID: order.OrderID}
	log := s.logger.With(zap.String("order_id", order.OrderID))

	previous, prevErr := s.audit.FindLatest(ctx, order.OrderID)
	if !opts.ForceRetry && prevErr == nil && previous.Succeeded() {
		log.Info("order already submitted, skipping")
		out.Success = true
		out.Skipped = true
		out.Message = "already submitted"
		return out
	}

	var failures []string
	category := order.Category()
	log = log.With(zap.String("category", category.String()))

	// Validating
	if err := order.Validate(); err != nil {
		failures = append(failures, err.Error())
		s.finalize(ctx, order, out, previous, opts, false, failures)
		return out
	}
	refs, err := s.fetchReferenceData(ctx, order)
	if err != nil {
		failures = append(failures, fmt.Sprintf("%s: %v", stageValidating, err))
		s.finalize(ctx, order, out, previous, opts, false, failures)
		return out
	}

	// Sale returns bypass customer, invoice and payment entirely.
	if category == sales.CategorySaleReturn {
		ok := s.submitReturn(ctx, order, refs, out, &failures)
		s.finalize(ctx, order, out, previous, opts, ok, failures)
		return out
	}

	// CreatingCustomer. A failure here is recorded but does not stop the
	// pipeline: the accounting system may already know the customer.
	custRes, custErr := s.gateway.Submit(ctx, invoicing.DocCustomer, s.builder.BuildCustomer(order, refs))
	if _, accepted := s.accept(stageCustomer, custRes, custErr, &failures); !accepted {
		log.Warn("customer upsert failed, continuing")
	}

	// CreatingSalesOrder
	soLines := s.builder.ResolveLines(order, refs, order.Lines)
	orderOK := false
	soDoc, soErr := s.builder.BuildSalesOrder(order, refs, soLines, s.documentDate(order))
	if soErr != nil {
		failures = append(failures, fmt.Sprintf("%s: %v", stageSalesOrder, soErr))
	} else {
		soRes, err := s.gateway.Submit(ctx, invoicing.DocSalesOrder, soDoc)
		_, orderOK = s.accept(stageSalesOrder, soRes, err, &failures)
	}

	// CreatingSalesInvoice, one sub-submission per fulfillment date.
	// A failing split never aborts its siblings.
	splits := splitByFulfillmentDate(order.Lines, s.now())
	splitsOK := true
	anyInvoice := false
	for _, split := range splits {
		docNumber := order.OrderID
		if len(splits) > 1 {
			docNumber = fmt.Sprintf("%s-%s", order.OrderID, split.date.Format("20060102"))
		}
		lines := s.builder.ResolveLines(order, refs, split.lines)
		doc, err := s.builder.BuildInvoice(order, refs, lines, split.date, docNumber)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s[%s]: %v", stageSalesInvoice, docNumber, err))
			splitsOK = false
			continue
		}
		res, err := s.gateway.Submit(ctx, invoicing.DocSalesInvoice, doc)
		dup, accepted := s.accept(stageSalesInvoice, res, err, &failures)
		if !accepted {
			splitsOK = false
			continue
		}
		anyInvoice = true
		if dup {
			out.Duplicate = true
			// A duplicate rejection's body is stored verbatim, taking
			// precedence over an earlier split's response.
			out.Raw = res.Raw
		} else if out.Raw == "" {
			out.Raw = res.Raw
		}
		if out.CorrelationID == "" && res != nil {
			out.CorrelationID = res.CorrelationID
		}
	}

	// CreatingGxtTransfer, service orders only.
	transferOK := true
	if category == sales.CategoryService {
		doc, err := s.builder.BuildWarehouseTransfer(order, refs, soLines, s.documentDate(order))
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", stageGxtTransfer, err))
			transferOK = false
		} else {
			res, err := s.gateway.Submit(ctx, invoicing.DocWarehouseTransfer, doc)
			_, transferOK = s.accept(stageGxtTransfer, res, err, &failures)
		}
	}

	// ProcessingPayment, only once at least one invoice split landed.
	// Individual posting failures accumulate in the audit message but do
	// not flip the overall status.
	if anyInvoice {
		s.processPayments(ctx, order, refs, &failures)
	}

	overall := orderOK && splitsOK && anyInvoice && transferOK
	s.finalize(ctx, order, out, previous, opts, overall, failures)
	return out
}

// submitReturn handles the CreatingSalesReturn branch.
func (s *SubmissionService) submitReturn(ctx context.Context, order *sales.SaleOrder, refs *ReferenceData, out *SubmitOutcome, failures *[]string) bool {
	lines := s.builder.ResolveLines(order, refs, order.Lines)
	doc, err := s.builder.BuildSalesReturn(order, refs, lines, s.documentDate(order))
	if err != nil {
		*failures = append(*failures, fmt.Sprintf("%s: %v", stageSalesReturn, err))
		return false
	}
	res, err := s.gateway.Submit(ctx, invoicing.DocSalesReturn, doc)
	dup, accepted := s.accept(stageSalesReturn, res, err, failures)
	if accepted {
		out.Duplicate = out.Duplicate || dup
		if res != nil {
			out.CorrelationID = res.CorrelationID
			out.Raw = res.Raw
		}
	}
	return accepted
}

// processPayments posts each recorded payment as a cash receipt or a
// credit advice depending on the payment method.
func (s *SubmissionService) processPayments(ctx context.Context, order *sales.SaleOrder, refs *ReferenceData, failures *[]string) {
	records, err := s.payments.ByOrderID(ctx, order.OrderID)
	if err != nil {
		*failures = append(*failures, fmt.Sprintf("%s: %v", stagePayment, err))
		return
	}
	for _, record := range records {
		docType := invoicing.DocCreditAdvice
		if record.Kind() == sales.PaymentMethodCash {
			docType = invoicing.DocCashReceipt
		}
		doc := s.builder.BuildPayment(order, refs, record, s.documentDate(order))
		res, err := s.gateway.Submit(ctx, docType, doc)
		if _, accepted := s.accept(stagePayment, res, err, failures); !accepted {
			s.logger.Warn("payment posting failed",
				zap.String("order_id", order.OrderID),
				zap.String("method_code", record.MethodCode))
		}
	}
}

// accept normalizes one gateway call: a transport error or business
// rejection accumulates a failure message, except that a rejection whose
// message carries a duplicate-constraint signature means the document
// already exists and counts as success for continuation.
func (s *SubmissionService) accept(st stage, res *invoicing.SubmitResult, err error, failures *[]string) (duplicate, accepted bool) {
	if err != nil {
		*failures = append(*failures, fmt.Sprintf("%s: %v", st, err))
		return false, false
	}
	if res.OK() {
		return false, true
	}
	if res != nil && invoicing.IsDuplicateMessage(res.Message) {
		return true, true
	}
	msg := "no response"
	if res != nil {
		msg = res.Message
	}
	*failures = append(*failures, fmt.Sprintf("%s: %s", st, msg))
	return false, false
}

// finalize writes the single terminal audit record and fills the outcome.
func (s *SubmissionService) finalize(ctx context.Context, order *sales.SaleOrder, out *SubmitOutcome, previous *invoicing.SubmissionLog, opts SubmitOptions, success bool, failures []string) {
	out.Success = success
	out.Message = strings.Join(failures, "; ")
	if success && out.Message == "" {
		out.Message = "ok"
	}

	status := invoicing.SubmissionFailed
	if success {
		status = invoicing.SubmissionSuccess
	}
	record := &invoicing.SubmissionLog{
		OrderID:       order.OrderID,
		Status:        status,
		Message:       out.Message,
		CorrelationID: out.CorrelationID,
		Raw:           out.Raw,
	}
	if previous != nil {
		record.RetryCount = previous.RetryCount + 1
	}

	var err error
	if opts.ForceRetry {
		// Manual retries append so the trail stays visible.
		err = s.audit.Append(ctx, record)
	} else {
		err = s.audit.Upsert(ctx, record)
	}
	if err != nil {
		s.logger.Error("failed to persist audit record",
			zap.String("order_id", order.OrderID), zap.Error(err))
	}
}

// documentDate is the order date, falling back to now for orders without
// one.
func (s *SubmissionService) documentDate(order *sales.SaleOrder) time.Time {
	if order.OrderDate.IsZero() {
		return s.now()
	}
	return order.OrderDate
}

// fetchReferenceData loads the department and catalog snapshot for one
// order. A missing department is fatal (the company code comes from it);
// a missing catalog item only degrades that line to its own fields.
func (s *SubmissionService) fetchReferenceData(ctx context.Context, order *sales.SaleOrder) (*ReferenceData, error) {
	dept, err := s.departments.ByBranchCode(ctx, order.BranchCode)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("VALIDATION_FAILED",
				fmt.Sprintf("branch %s has no department mapping", order.BranchCode))
		}
		return nil, err
	}

	catalog := make(map[string]*invoicing.CatalogItem)
	for i := range order.Lines {
		code := order.Lines[i].ItemCode
		if _, seen := catalog[code]; seen {
			continue
		}
		item, err := s.catalog.ByItemCode(ctx, code)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				catalog[code] = nil
				continue
			}
			return nil, err
		}
		catalog[code] = item
	}

	return &ReferenceData{Department: dept, Catalog: catalog}, nil
}

// lineGroup is one invoice split: all lines fulfilled on the same date.
type lineGroup struct {
	date  time.Time
	lines []sales.SaleLine
}

// splitByFulfillmentDate groups an order's lines into one invoice per
// distinct fulfillment date. Lines without a fulfillment date join the
// earliest date's batch; when no line has one at all, everything lands on
// today's date.
func splitByFulfillmentDate(lines []sales.SaleLine, today time.Time) []lineGroup {
	byDate := make(map[string][]sales.SaleLine)
	var dates []time.Time
	var undated []sales.SaleLine

	for _, line := range lines {
		if line.FulfilledDate == nil {
			undated = append(undated, line)
			continue
		}
		// Midnight in the timestamp's own zone: grouping is by calendar
		// day, not by 24h buckets counted from the UTC epoch.
		t := *line.FulfilledDate
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
		key := day.Format("2006-01-02")
		if _, seen := byDate[key]; !seen {
			dates = append(dates, day)
		}
		byDate[key] = append(byDate[key], line)
	}

	if len(dates) == 0 {
		return []lineGroup{{date: today, lines: undated}}
	}

	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	earliestKey := dates[0].Format("2006-01-02")
	byDate[earliestKey] = append(byDate[earliestKey], undated...)

	groups := make([]lineGroup, 0, len(dates))
	for _, day := range dates {
		groups = append(groups, lineGroup{date: day, lines: byDate[day.Format("2006-01-02")]})
	}
	return groups
}
