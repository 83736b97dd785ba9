package invoicing

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/nguyenhieubp/InvoiceFlowServer-sub004/internal/domain/sales"
)

// DiscountSlot is one of the 22 parallel (account code, amount) pairs on
// an invoice line.
type DiscountSlot struct {
	Code   string
	Amount decimal.Decimal
}

// InvoiceLine is the resolved form of one sale line, carrying every field
// the accounting system expects. It is derived per submission attempt and
// never written back to the source order.
type InvoiceLine struct {
	LineNumber   int             `json:"line_nbr"`
	MaterialCode string          `json:"ma_vt"`
	Unit         string          `json:"dvt"`
	Quantity     decimal.Decimal `json:"so_luong"`
	UnitPrice    decimal.Decimal `json:"gia_nt2"`
	Amount       decimal.Decimal `json:"tien_nt2"`

	TaxCode   string          `json:"ma_thue"`
	TaxRate   decimal.Decimal `json:"thue_suat"`
	TaxAmount decimal.Decimal `json:"tien_thue"`

	WarehouseCode   string `json:"ma_kho"`
	CardCode        string `json:"ma_the,omitempty"`
	LotCode         string `json:"ma_lo,omitempty"`
	SerialCode      string `json:"ma_serial,omitempty"`
	TransactionType string `json:"loai_gd"`

	DiscountAccount string `json:"tk_ck,omitempty"`
	CostAccount     string `json:"tk_gv,omitempty"`
	FeeCode         string `json:"ma_phi,omitempty"`
	PromotionCode   string `json:"ma_km,omitempty"`
	GiftCode        string `json:"ma_km_tang,omitempty"`
	VoucherCode     string `json:"ma_vc,omitempty"`

	// Discounts are serialized as the flat ma_ck01..ma_ck22 and
	// tien_ck01..tien_ck22 pairs the accounting API expects.
	Discounts [sales.DiscountSlotCount]DiscountSlot `json:"-"`
}

// NetDiscount sums every discount slot into one reconciliation figure.
func (l *InvoiceLine) NetDiscount() decimal.Decimal {
	total := decimal.Zero
	for _, slot := range l.Discounts {
		total = total.Add(slot.Amount)
	}
	return total
}

// MarshalJSON flattens the discount slots into the numbered wire fields.
func (l InvoiceLine) MarshalJSON() ([]byte, error) {
	type plain InvoiceLine
	base, err := json.Marshal(plain(l))
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(base, &fields); err != nil {
		return nil, err
	}
	for i, slot := range l.Discounts {
		suffix := fmt.Sprintf("%02d", i+1)
		code, err := json.Marshal(slot.Code)
		if err != nil {
			return nil, err
		}
		amount, err := json.Marshal(slot.Amount)
		if err != nil {
			return nil, err
		}
		fields["ma_ck"+suffix] = code
		fields["tien_ck"+suffix] = amount
	}
	return json.Marshal(fields)
}

// SummaryLine is one entry of the reconciliation summary array: the net
// discount across all 22 slots of the matching detail line.
type SummaryLine struct {
	LineNumber   int             `json:"line_nbr"`
	MaterialCode string          `json:"ma_vt"`
	NetDiscount  decimal.Decimal `json:"tien_ck"`
}

// InvoiceDocument is the full submission document: header plus detail and
// summary arrays. Currency and exchange rate are fixed by contract.
type InvoiceDocument struct {
	CompanyCode     string          `json:"ma_cty"`
	CustomerCode    string          `json:"ma_kh"`
	CustomerName    string          `json:"ten_kh"`
	TransactionKind string          `json:"ma_gd"`
	DocumentDate    string          `json:"ngay_ct"`
	PostingDate     string          `json:"ngay_lct"`
	DocumentNumber  string          `json:"so_ct"`
	SeriesCode      string          `json:"so_seri,omitempty"`
	Currency        string          `json:"ma_nt"`
	ExchangeRate    decimal.Decimal `json:"ty_gia"`
	ChannelCode     string          `json:"ma_kenh,omitempty"`

	// Warehouse-transfer documents carry source and target warehouses.
	FromWarehouse string `json:"ma_kho_xuat,omitempty"`
	ToWarehouse   string `json:"ma_kho_nhap,omitempty"`

	Detail  []InvoiceLine `json:"detail"`
	Summary []SummaryLine `json:"detail2"`
}

// DateLayout is the document/posting date format of the accounting API.
const DateLayout = "2006-01-02"

// Fixed header values for every document.
const (
	CurrencyVND = "VND"
)

// ExchangeRateFixed is the fixed exchange rate of every header.
var ExchangeRateFixed = decimal.NewFromInt(1)
