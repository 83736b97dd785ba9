package sales

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/nguyenhieubp/InvoiceFlowServer-sub004/internal/domain/shared"
)

// DiscountSlotCount is the number of parallel discount/fee slots carried
// by every sale line (ck01..ck22 in the accounting document).
const DiscountSlotCount = 22

// ProductKind distinguishes goods, service work and vouchers on a line.
type ProductKind string

const (
	ProductKindItem    ProductKind = "ITEM"
	ProductKindService ProductKind = "SERVICE"
	ProductKindVoucher ProductKind = "VOUCHER"
)

// Suffix returns the type suffix appended to promotion display codes.
func (k ProductKind) Suffix() string {
	switch k {
	case ProductKindService:
		return ".S"
	case ProductKindVoucher:
		return ".V"
	default:
		return ".I"
	}
}

// AccountCarryOver holds the discount/cost/fee values a line arrives with
// from upstream. They are only used by the legacy passthrough branch of
// the account resolver.
type AccountCarryOver struct {
	DiscountAccount string
	CostAccount     string
	FeeCode         string
}

// SaleLine is one item/service entry within a sale order as read from the
// upstream POS API. Lines are immutable inputs: field resolution produces
// a derived invoice line and never mutates the source.
type SaleLine struct {
	ItemCode      string
	ItemName      string
	Unit          string
	Quantity      decimal.Decimal
	UnitPrice     decimal.Decimal
	Revenue       decimal.Decimal
	OrderType     string // free-text order-type label
	ProductKind   ProductKind
	Brand         string
	BranchCode    string
	WarehouseCode string

	PromotionCode string
	CardCode      string // prepaid service card attached to the line, if any
	IsGift        bool   // price and revenue both ~0, flagged as gift by a promotion
	GiftPromotion bool   // the order carries an active gift-type promotion

	VIPDiscount   decimal.Decimal // VIP/grade membership discount amount
	VoucherAmount decimal.Decimal // amount paid by voucher
	GradeDiscount decimal.Decimal // generic discount amount

	// DiscountAmounts are the 22 monetary slots (ck01..ck22) as reported
	// by the POS. Slot codes are assigned during resolution.
	DiscountAmounts [DiscountSlotCount]decimal.Decimal

	TaxCode   string
	TaxRate   decimal.Decimal
	TaxAmount decimal.Decimal

	// Inventory tracking input. Catalog flags decide whether RawLotSerial
	// becomes a lot code or a serial code.
	RawLotSerial string
	ItemCategory string // product category family, drives lot truncation

	// Existing carries the account values the line arrived with; only the
	// legacy passthrough branch of the account resolver reads them.
	Existing AccountCarryOver

	// Fulfillment data joined in from the stock-movement record, when one
	// exists for this line.
	FulfilledQuantity *decimal.Decimal
	FulfilledDate     *time.Time
	MovementWarehouse string
}

// HasFulfillment reports whether a stock-movement record was found for
// this line.
func (l *SaleLine) HasFulfillment() bool {
	return l.FulfilledQuantity != nil
}

// SaleOrder is one customer transaction read from the upstream POS API.
type SaleOrder struct {
	OrderID       string
	BranchCode    string
	CustomerCode  string
	CustomerName  string
	CustomerPhone string
	Channel       string // sales channel tag, e-commerce channels get special voucher handling
	Brand         string
	OrderDate     time.Time
	Lines         []SaleLine
}

// Category classifies the order from the order-type label of its first
// line. Orders without lines classify as CategoryNormal.
func (o *SaleOrder) Category() OrderCategory {
	if len(o.Lines) == 0 {
		return CategoryNormal
	}
	return Classify(o.Lines[0].OrderType)
}

// Validate checks the header fields the submission pipeline requires.
func (o *SaleOrder) Validate() error {
	if o.OrderID == "" {
		return shared.NewDomainError("MISSING_REQUIRED_FIELD", "order id is required")
	}
	if len(o.Lines) == 0 {
		return shared.NewDomainError("VALIDATION_FAILED", "order has no lines")
	}
	if o.CustomerCode == "" && o.Category() != CategorySaleReturn {
		return shared.NewDomainError("MISSING_REQUIRED_FIELD", "customer code is required")
	}
	return nil
}

// PaymentMethodKind distinguishes how a payment record is posted.
type PaymentMethodKind string

const (
	PaymentMethodCash    PaymentMethodKind = "CASH"
	PaymentMethodVoucher PaymentMethodKind = "VOUCHER"
)

// cashMethodCodes are the POS payment-method codes posted as cash receipts.
// Everything else is posted as a credit advice.
var cashMethodCodes = map[string]struct{}{
	"TM":   {},
	"TM01": {},
	"COD":  {},
}

// PaymentRecord is one cash/voucher payment captured for an order.
type PaymentRecord struct {
	OrderID    string
	MethodCode string
	MethodName string
	Amount     decimal.Decimal
}

// Kind reports how this record must be posted to the accounting system.
func (p PaymentRecord) Kind() PaymentMethodKind {
	if _, ok := cashMethodCodes[p.MethodCode]; ok {
		return PaymentMethodCash
	}
	return PaymentMethodVoucher
}
