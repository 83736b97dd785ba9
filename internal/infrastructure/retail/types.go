package retail

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/nguyenhieubp/InvoiceFlowServer-sub004/internal/domain/invoicing"
	"github.com/nguyenhieubp/InvoiceFlowServer-sub004/internal/domain/sales"
)

// posTimeLayout is the timestamp format the POS API uses everywhere.
const posTimeLayout = "2006-01-02 15:04:05"

// posListEnvelope wraps every list endpoint response.
type posListEnvelope[T any] struct {
	Data    []T    `json:"data"`
	Total   int    `json:"total"`
	HasMore bool   `json:"hasMore"`
	Message string `json:"message"`
}

// posObjectEnvelope wraps every single-object endpoint response.
type posObjectEnvelope[T any] struct {
	Data    *T     `json:"data"`
	Message string `json:"message"`
}

// posOrder is one sale order as the POS API returns it.
type posOrder struct {
	OrderID       string         `json:"orderId"`
	BranchCode    string         `json:"branchCode"`
	CustomerCode  string         `json:"customerCode"`
	CustomerName  string         `json:"customerName"`
	CustomerPhone string         `json:"customerPhone"`
	Channel       string         `json:"channel"`
	Brand         string         `json:"brand"`
	OrderDate     string         `json:"orderDate"`
	Details       []posOrderLine `json:"details"`
}

// posOrderLine is one line entry within a POS order.
type posOrderLine struct {
	ItemCode      string          `json:"itemCode"`
	ItemName      string          `json:"itemName"`
	Unit          string          `json:"unit"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	Revenue       decimal.Decimal `json:"revenue"`
	OrderType     string          `json:"orderType"`
	ProductType   string          `json:"productType"`
	Brand         string          `json:"brand"`
	WarehouseCode string          `json:"warehouseCode"`

	PromotionCode    string `json:"promotionCode"`
	CardCode         string `json:"cardCode"`
	IsGift           bool   `json:"isGift"`
	HasGiftPromotion bool   `json:"hasGiftPromotion"`

	VIPDiscount   decimal.Decimal `json:"vipDiscount"`
	VoucherAmount decimal.Decimal `json:"voucherAmount"`
	GradeDiscount decimal.Decimal `json:"gradeDiscount"`

	Discounts []posDiscountEntry `json:"discounts"`

	TaxCode   string          `json:"taxCode"`
	TaxRate   decimal.Decimal `json:"taxRate"`
	TaxAmount decimal.Decimal `json:"taxAmount"`

	LotSerial    string `json:"lotSerial"`
	ItemCategory string `json:"itemCategory"`

	DiscountAccount string `json:"discountAccount"`
	CostAccount     string `json:"costAccount"`
	FeeCode         string `json:"feeCode"`
}

// posDiscountEntry is one occupied discount slot on a line. Slot numbers
// are 1-based on the wire.
type posDiscountEntry struct {
	Slot   int             `json:"slot"`
	Amount decimal.Decimal `json:"amount"`
}

// posShipment is one stock-movement record for an order line.
type posShipment struct {
	OrderID       string          `json:"orderId"`
	ItemCode      string          `json:"itemCode"`
	Quantity      decimal.Decimal `json:"quantity"`
	ShippedAt     string          `json:"shippedAt"`
	WarehouseCode string          `json:"warehouseCode"`
}

// posPayment is one captured payment record.
type posPayment struct {
	OrderID    string          `json:"orderId"`
	MethodCode string          `json:"methodCode"`
	MethodName string          `json:"methodName"`
	Amount     decimal.Decimal `json:"amount"`
}

// posItem is the item master entry.
type posItem struct {
	ItemCode     string `json:"itemCode"`
	MaterialCode string `json:"materialCode"`
	Unit         string `json:"unit"`
	ProductType  string `json:"productType"`
	Category     string `json:"category"`
	TrackBatch   bool   `json:"trackBatch"`
	TrackSerial  bool   `json:"trackSerial"`
}

// posBranch is the branch master entry.
type posBranch struct {
	BranchCode     string `json:"branchCode"`
	CompanyCode    string `json:"companyCode"`
	DepartmentCode string `json:"departmentCode"`
}

// parseProductKind maps the POS product-type tag to the domain kind.
// Unknown tags count as goods.
func parseProductKind(tag string) sales.ProductKind {
	switch tag {
	case "SERVICE":
		return sales.ProductKindService
	case "VOUCHER":
		return sales.ProductKindVoucher
	default:
		return sales.ProductKindItem
	}
}

// toDomainOrder converts a POS order into the domain model.
func (o *posOrder) toDomainOrder() *sales.SaleOrder {
	order := &sales.SaleOrder{
		OrderID:       o.OrderID,
		BranchCode:    o.BranchCode,
		CustomerCode:  o.CustomerCode,
		CustomerName:  o.CustomerName,
		CustomerPhone: o.CustomerPhone,
		Channel:       o.Channel,
		Brand:         o.Brand,
		Lines:         make([]sales.SaleLine, 0, len(o.Details)),
	}
	if t, err := time.Parse(posTimeLayout, o.OrderDate); err == nil {
		order.OrderDate = t
	}
	for _, detail := range o.Details {
		order.Lines = append(order.Lines, detail.toDomainLine(o.BranchCode))
	}
	return order
}

func (l *posOrderLine) toDomainLine(branchCode string) sales.SaleLine {
	line := sales.SaleLine{
		ItemCode:      l.ItemCode,
		ItemName:      l.ItemName,
		Unit:          l.Unit,
		Quantity:      l.Quantity,
		UnitPrice:     l.UnitPrice,
		Revenue:       l.Revenue,
		OrderType:     l.OrderType,
		ProductKind:   parseProductKind(l.ProductType),
		Brand:         l.Brand,
		BranchCode:    branchCode,
		WarehouseCode: l.WarehouseCode,
		PromotionCode: l.PromotionCode,
		CardCode:      l.CardCode,
		IsGift:        l.IsGift,
		GiftPromotion: l.HasGiftPromotion,
		VIPDiscount:   l.VIPDiscount,
		VoucherAmount: l.VoucherAmount,
		GradeDiscount: l.GradeDiscount,
		TaxCode:       l.TaxCode,
		TaxRate:       l.TaxRate,
		TaxAmount:     l.TaxAmount,
		RawLotSerial:  l.LotSerial,
		ItemCategory:  l.ItemCategory,
		Existing: sales.AccountCarryOver{
			DiscountAccount: l.DiscountAccount,
			CostAccount:     l.CostAccount,
			FeeCode:         l.FeeCode,
		},
	}
	for _, entry := range l.Discounts {
		if entry.Slot < 1 || entry.Slot > sales.DiscountSlotCount {
			continue
		}
		line.DiscountAmounts[entry.Slot-1] = entry.Amount
	}
	return line
}

// toCatalogItem converts the item master entry into the domain lookup
// result.
func (i *posItem) toCatalogItem() *invoicing.CatalogItem {
	return &invoicing.CatalogItem{
		ItemCode:     i.ItemCode,
		MaterialCode: i.MaterialCode,
		Unit:         i.Unit,
		Kind:         parseProductKind(i.ProductType),
		Category:     i.Category,
		TrackBatch:   i.TrackBatch,
		TrackSerial:  i.TrackSerial,
	}
}

func (b *posBranch) toDepartment() *invoicing.Department {
	return &invoicing.Department{
		BranchCode:     b.BranchCode,
		CompanyCode:    b.CompanyCode,
		DepartmentCode: b.DepartmentCode,
	}
}
