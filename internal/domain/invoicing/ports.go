package invoicing

import (
	"context"

	"github.com/nguyenhieubp/InvoiceFlowServer-sub004/internal/domain/sales"
)

// CatalogItem is the reference data looked up per item code.
type CatalogItem struct {
	ItemCode     string
	MaterialCode string
	Unit         string
	Kind         sales.ProductKind
	Category     string // product category family
	TrackBatch   bool
	TrackSerial  bool
}

// CatalogLookup resolves item reference data. Implementations return
// shared.ErrNotFound for unknown codes; callers decide whether that is
// fatal for the line.
type CatalogLookup interface {
	ByItemCode(ctx context.Context, code string) (*CatalogItem, error)
}

// Department is the branch reference data looked up per branch code.
type Department struct {
	BranchCode     string
	CompanyCode    string // warehouse company code in the accounting system
	DepartmentCode string
}

// DepartmentLookup resolves branch reference data.
type DepartmentLookup interface {
	ByBranchCode(ctx context.Context, code string) (*Department, error)
}

// DocumentType identifies one accounting document endpoint.
type DocumentType string

const (
	DocCustomer          DocumentType = "customer"
	DocSalesOrder        DocumentType = "sales-order"
	DocSalesInvoice      DocumentType = "sales-invoice"
	DocSalesReturn       DocumentType = "sales-return"
	DocCashReceipt       DocumentType = "cash-receipt"
	DocCreditAdvice      DocumentType = "credit-advice"
	DocWarehouseTransfer DocumentType = "warehouse-transfer"
)

// SubmitResult is the normalized response of the accounting system.
// Status 1 is the only success signal; any other value, including its
// absence in the wire response, is failure.
type SubmitResult struct {
	Status        int
	Message       string
	CorrelationID string // the external system's "guid"
	Raw           string // verbatim response body, kept for the audit trail
}

// OK reports whether the submission was accepted.
func (r *SubmitResult) OK() bool {
	return r != nil && r.Status == 1
}

// AccountingGateway submits one accounting document. Transport failures
// surface as errors; business rejections come back as a non-OK result.
type AccountingGateway interface {
	Submit(ctx context.Context, docType DocumentType, payload any) (*SubmitResult, error)
}
