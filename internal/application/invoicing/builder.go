package invoicing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nguyenhieubp/InvoiceFlowServer-sub004/internal/domain/invoicing"
	"github.com/nguyenhieubp/InvoiceFlowServer-sub004/internal/domain/sales"
	"github.com/nguyenhieubp/InvoiceFlowServer-sub004/internal/domain/shared"
)

// Transaction kind codes (ma_gd) by document.
const (
	kindSalesOrder        = "1"
	kindSalesInvoice      = "2"
	kindSalesReturn       = "3"
	kindWarehouseTransfer = "4"
)

// ReferenceData is the per-order snapshot of catalog and department
// lookups. It is fetched once per processing pass and discarded with the
// order; the core assumes no cross-order cache.
type ReferenceData struct {
	Department *invoicing.Department
	Catalog    map[string]*invoicing.CatalogItem
}

// CompanyCode returns the accounting company code of the order's branch.
func (r *ReferenceData) CompanyCode() string {
	if r == nil || r.Department == nil {
		return ""
	}
	return r.Department.CompanyCode
}

// DepartmentCode returns the department code of the order's branch.
func (r *ReferenceData) DepartmentCode() string {
	if r == nil || r.Department == nil {
		return ""
	}
	return r.Department.DepartmentCode
}

// VoucherCodeFn computes the generic voucher display code from the
// voucher-paid amount. It is the fallback for orders outside the
// recognized e-commerce channels.
type VoucherCodeFn func(amount decimal.Decimal) string

// defaultVoucherCode buckets the voucher amount into thousands.
func defaultVoucherCode(amount decimal.Decimal) string {
	thousands := amount.Div(decimal.NewFromInt(1000)).IntPart()
	return fmt.Sprintf("VC%03d", thousands)
}

// Builder assembles accounting documents from resolved lines.
type Builder struct {
	voucherCode VoucherCodeFn
}

// NewBuilder creates a Builder with the default voucher-code calculation.
func NewBuilder() *Builder {
	return &Builder{voucherCode: defaultVoucherCode}
}

// SetVoucherCodeFn overrides the generic voucher-code calculation.
func (b *Builder) SetVoucherCodeFn(fn VoucherCodeFn) {
	if fn != nil {
		b.voucherCode = fn
	}
}

// ResolveLines derives the invoice lines for a group of sale lines. The
// source lines are never mutated; everything the accounting system needs
// is computed onto the returned lines.
func (b *Builder) ResolveLines(order *sales.SaleOrder, refs *ReferenceData, group []sales.SaleLine) []invoicing.InvoiceLine {
	category := order.Category()
	resolved := make([]invoicing.InvoiceLine, 0, len(group))

	for i := range group {
		line := &group[i]

		item := refs.Catalog[line.ItemCode]
		kind := line.ProductKind
		unit := line.Unit
		materialCode := line.ItemCode
		itemCategory := line.ItemCategory
		trackBatch, trackSerial := false, false
		if item != nil {
			kind = item.Kind
			if item.Unit != "" {
				unit = item.Unit
			}
			if item.MaterialCode != "" {
				materialCode = item.MaterialCode
			}
			if item.Category != "" {
				itemCategory = item.Category
			}
			trackBatch = item.TrackBatch
			trackSerial = item.TrackSerial
		}

		alloc := invoicing.Allocate(line.Quantity, line.FulfilledQuantity, line.UnitPrice, line.Revenue, category)
		ratio := invoicing.FulfillmentRatio(line.Quantity, line.FulfilledQuantity, category)
		amounts := invoicing.ScaleSlots(line.DiscountAmounts, ratio)
		taxAmount := line.TaxAmount.Mul(ratio)

		lotSerial := invoicing.ResolveLotSerial(trackBatch, trackSerial, line.RawLotSerial, itemCategory)

		facts := invoicing.LineFacts{
			Category:            category,
			Kind:                kind,
			IsGift:              line.IsGift,
			GiftPromotionActive: line.GiftPromotion,
			VIPDiscount:         line.VIPDiscount,
			VoucherAmount:       line.VoucherAmount,
			GradeDiscount:       line.GradeDiscount,
			PromotionCode:       line.PromotionCode,
			Brand:               line.Brand,
			CompanyCode:         refs.CompanyCode(),
			Existing:            line.Existing,
		}
		accounts := invoicing.ResolveAccounts(facts)

		voucherCode := ""
		if line.VoucherAmount.IsPositive() {
			amount := line.VoucherAmount
			voucherCode = invoicing.ResolveVoucherCode(order.Channel, line.Brand, func() string {
				return b.voucherCode(amount)
			})
		}

		quantity := line.Quantity
		if line.FulfilledQuantity != nil && category.AllowsReallocation() {
			quantity = *line.FulfilledQuantity
		}

		out := invoicing.InvoiceLine{
			LineNumber:      i + 1,
			MaterialCode:    materialCode,
			Unit:            unit,
			Quantity:        quantity,
			UnitPrice:       alloc.UnitPrice,
			Amount:          alloc.Amount,
			TaxCode:         line.TaxCode,
			TaxRate:         line.TaxRate,
			TaxAmount:       taxAmount,
			WarehouseCode:   invoicing.ResolveWarehouse(category, refs.DepartmentCode(), line.MovementWarehouse, line.WarehouseCode),
			CardCode:        line.CardCode,
			LotCode:         lotSerial.LotCode,
			SerialCode:      lotSerial.SerialCode,
			TransactionType: invoicing.ResolveTransactionType(category, kind, line.Quantity),
			DiscountAccount: accounts.DiscountAccount,
			CostAccount:     accounts.CostAccount,
			FeeCode:         accounts.FeeCode,
			PromotionCode:   accounts.PromotionCode,
			GiftCode:        accounts.GiftCode,
			VoucherCode:     voucherCode,
		}
		for s := range amounts {
			out.Discounts[s].Amount = amounts[s]
		}
		resolved = append(resolved, out)
	}

	return resolved
}

// BuildInvoice assembles one sales-invoice document from resolved lines.
// Lines without a unit of measure are dropped; an invoice with no valid
// lines must never be submitted, so the builder fails instead.
func (b *Builder) BuildInvoice(order *sales.SaleOrder, refs *ReferenceData, lines []invoicing.InvoiceLine, docDate time.Time, docNumber string) (*invoicing.InvoiceDocument, error) {
	valid := make([]invoicing.InvoiceLine, 0, len(lines))
	for _, line := range lines {
		if line.Unit == "" {
			continue
		}
		valid = append(valid, line)
	}
	if len(valid) == 0 {
		return nil, shared.NewDomainError("MISSING_REQUIRED_FIELD",
			fmt.Sprintf("order %s: no line carries a unit of measure", order.OrderID))
	}

	summary := make([]invoicing.SummaryLine, 0, len(valid))
	for i := range valid {
		valid[i].LineNumber = i + 1
		summary = append(summary, invoicing.SummaryLine{
			LineNumber:   valid[i].LineNumber,
			MaterialCode: valid[i].MaterialCode,
			NetDiscount:  valid[i].NetDiscount(),
		})
	}

	return &invoicing.InvoiceDocument{
		CompanyCode:     refs.CompanyCode(),
		CustomerCode:    order.CustomerCode,
		CustomerName:    order.CustomerName,
		TransactionKind: kindSalesInvoice,
		DocumentDate:    docDate.Format(invoicing.DateLayout),
		PostingDate:     docDate.Format(invoicing.DateLayout),
		DocumentNumber:  docNumber,
		Currency:        invoicing.CurrencyVND,
		ExchangeRate:    invoicing.ExchangeRateFixed,
		ChannelCode:     order.Channel,
		Detail:          valid,
		Summary:         summary,
	}, nil
}

// BuildSalesOrder assembles the sales-order document.
func (b *Builder) BuildSalesOrder(order *sales.SaleOrder, refs *ReferenceData, lines []invoicing.InvoiceLine, docDate time.Time) (*invoicing.InvoiceDocument, error) {
	doc, err := b.BuildInvoice(order, refs, lines, docDate, order.OrderID)
	if err != nil {
		return nil, err
	}
	doc.TransactionKind = kindSalesOrder
	return doc, nil
}

// BuildSalesReturn assembles the sales-return document.
func (b *Builder) BuildSalesReturn(order *sales.SaleOrder, refs *ReferenceData, lines []invoicing.InvoiceLine, docDate time.Time) (*invoicing.InvoiceDocument, error) {
	doc, err := b.BuildInvoice(order, refs, lines, docDate, order.OrderID)
	if err != nil {
		return nil, err
	}
	doc.TransactionKind = kindSalesReturn
	return doc, nil
}

// BuildWarehouseTransfer assembles the goods-movement document submitted
// after the invoices of a service order.
func (b *Builder) BuildWarehouseTransfer(order *sales.SaleOrder, refs *ReferenceData, lines []invoicing.InvoiceLine, docDate time.Time) (*invoicing.InvoiceDocument, error) {
	doc, err := b.BuildInvoice(order, refs, lines, docDate, order.OrderID)
	if err != nil {
		return nil, err
	}
	doc.TransactionKind = kindWarehouseTransfer
	if len(doc.Detail) > 0 {
		doc.FromWarehouse = doc.Detail[0].WarehouseCode
	}
	doc.ToWarehouse = "B" + refs.DepartmentCode()
	return doc, nil
}

// BuildCustomer assembles the customer upsert payload.
func (b *Builder) BuildCustomer(order *sales.SaleOrder, refs *ReferenceData) *CustomerDocument {
	return &CustomerDocument{
		CompanyCode:  refs.CompanyCode(),
		CustomerCode: order.CustomerCode,
		CustomerName: order.CustomerName,
		Phone:        order.CustomerPhone,
		ChannelCode:  order.Channel,
		BranchCode:   order.BranchCode,
	}
}

// BuildPayment assembles the payment posting for one payment record.
func (b *Builder) BuildPayment(order *sales.SaleOrder, refs *ReferenceData, record sales.PaymentRecord, docDate time.Time) *PaymentDocument {
	return &PaymentDocument{
		CompanyCode:    refs.CompanyCode(),
		CustomerCode:   order.CustomerCode,
		CustomerName:   order.CustomerName,
		DocumentDate:   docDate.Format(invoicing.DateLayout),
		DocumentNumber: fmt.Sprintf("%s-%s", order.OrderID, record.MethodCode),
		SourceOrderID:  order.OrderID,
		MethodCode:     record.MethodCode,
		Amount:         record.Amount,
		Currency:       invoicing.CurrencyVND,
		ExchangeRate:   invoicing.ExchangeRateFixed,
	}
}
