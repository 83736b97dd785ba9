package invoicing

import (
	"github.com/shopspring/decimal"
)

// CustomerDocument is the customer upsert payload.
type CustomerDocument struct {
	CompanyCode  string `json:"ma_cty"`
	CustomerCode string `json:"ma_kh"`
	CustomerName string `json:"ten_kh"`
	Phone        string `json:"dien_thoai,omitempty"`
	ChannelCode  string `json:"ma_kenh,omitempty"`
	BranchCode   string `json:"ma_bp,omitempty"`
}

// PaymentDocument is the cash-receipt / credit-advice payload posted per
// payment record.
type PaymentDocument struct {
	CompanyCode    string          `json:"ma_cty"`
	CustomerCode   string          `json:"ma_kh"`
	CustomerName   string          `json:"ten_kh"`
	DocumentDate   string          `json:"ngay_ct"`
	DocumentNumber string          `json:"so_ct"`
	SourceOrderID  string          `json:"so_ct_goc"`
	MethodCode     string          `json:"ma_httt"`
	Amount         decimal.Decimal `json:"tong_tien"`
	Currency       string          `json:"ma_nt"`
	ExchangeRate   decimal.Decimal `json:"ty_gia"`
}

// SubmitOptions controls a single order submission.
type SubmitOptions struct {
	// ForceRetry bypasses the idempotency short-circuit for orders
	// already marked successful in the audit store.
	ForceRetry bool
}

// SubmitOutcome is the caller-visible result of one order submission.
type SubmitOutcome struct {
	OrderID       string `json:"order_id"`
	Success       bool   `json:"success"`
	Skipped       bool   `json:"skipped"`
	Duplicate     bool   `json:"duplicate"`
	Message       string `json:"message,omitempty"`
	CorrelationID string `json:"correlation_id,omitempty"`
	// Raw is the gateway's verbatim response body, carried into the audit
	// record. Not part of the HTTP response shape.
	Raw string `json:"-"`
}

// BatchError is one failed order inside a batch run.
type BatchError struct {
	OrderID string `json:"order_id"`
	Message string `json:"message"`
}

// BatchResult summarizes a batch run. Batch operations never abort on the
// first error; every order is attempted.
type BatchResult struct {
	Total     int          `json:"total"`
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
	Errors    []BatchError `json:"errors,omitempty"`
}
