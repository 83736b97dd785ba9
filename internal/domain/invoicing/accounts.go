package invoicing

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/nguyenhieubp/InvoiceFlowServer-sub004/internal/domain/sales"
)

// Fixed account pairs. Internal programs (bottle exchange, point
// redemption, investment, internal gifts) book cost against the internal
// promotion pair; birthday gifts carry their own pair.
const (
	costAccountInternal = "64181"
	feeCodeInternal     = "KMNB"

	costAccountBirthday = "64171"
	feeCodeBirthday     = "QSN"
)

// Discount accounts by discount origin and product kind.
const (
	discountVIPItem        = "521131"
	discountVIPService     = "521132"
	discountVoucherItem    = "521121"
	discountVoucherService = "521122"
	discountVoucherGift    = "521123"
	discountGradeItem      = "521111"
	discountGradeService   = "521112"
)

// Promotion code prefixes. Codes issued through the mobile app arrive
// with the XKM prefix and must be rewritten to the canonical CTKM prefix;
// a rewritten code never receives a type suffix.
const (
	altPromotionPrefix       = "XKM"
	canonicalPromotionPrefix = "CTKM"
)

// loyaltyGiftCodes maps the warehouse company code to the fixed gift code
// used for point-redemption lines. Unmapped companies use the default.
var loyaltyGiftCodes = map[string]string{
	"GSG": "DTD-GSG",
	"GHN": "DTD-GHN",
	"GMT": "DTD-GMT",
}

const loyaltyGiftDefault = "DTD"

// ecommerceChannels are the customer channel tags whose vouchers use the
// fixed brand-keyed codes instead of the amount-based calculation.
var ecommerceChannels = map[string]struct{}{
	"SHOPEE": {},
	"LAZADA": {},
	"TIKTOK": {},
}

// voucherBrandCodes maps the brand to the fixed e-commerce voucher code.
var voucherBrandCodes = map[string]string{
	"GPN": "VCSAN01",
	"GPS": "VCSAN02",
	"GPM": "VCSAN03",
}

const voucherBrandDefault = "VCSAN"

// LineFacts is everything the account resolver needs to know about one
// line. All reference data has been fetched beforehand; resolution is
// pure.
type LineFacts struct {
	Category            sales.OrderCategory
	Kind                sales.ProductKind
	IsGift              bool
	GiftPromotionActive bool

	VIPDiscount   decimal.Decimal
	VoucherAmount decimal.Decimal
	GradeDiscount decimal.Decimal

	PromotionCode string
	Brand         string
	CompanyCode   string

	Existing sales.AccountCarryOver
}

// HasPromotionCode reports whether the line arrived with a promotion code.
func (f LineFacts) HasPromotionCode() bool {
	return strings.TrimSpace(f.PromotionCode) != ""
}

// AccountAssignment is the resolved account/code set of one line.
type AccountAssignment struct {
	DiscountAccount string
	CostAccount     string
	FeeCode         string
	PromotionCode   string
	GiftCode        string
	VoucherCode     string
}

// ResolveAccounts walks the account-code precedence chain top to bottom;
// the first true branch wins and the branches are mutually exclusive. The
// order is the observed behavior of the accounting integration and must
// not be rearranged.
func ResolveAccounts(f LineFacts) AccountAssignment {
	var a AccountAssignment

	isItem := f.Kind == sales.ProductKindItem
	isService := f.Kind == sales.ProductKindService

	switch {
	case f.Category == sales.CategoryBottleExchange ||
		f.Category == sales.CategoryLoyaltyPointExchange ||
		f.Category == sales.CategoryInvestment:
		a.CostAccount = costAccountInternal
		a.FeeCode = feeCodeInternal

	case f.Category == sales.CategoryBirthdayGift:
		a.CostAccount = costAccountBirthday
		a.FeeCode = feeCodeBirthday

	case f.GiftPromotionActive && f.IsGift:
		a.CostAccount = costAccountInternal
		a.FeeCode = feeCodeInternal
		a.DiscountAccount = f.Existing.DiscountAccount

	case f.VIPDiscount.IsPositive() && (isItem || isService):
		if isItem {
			a.DiscountAccount = discountVIPItem
		} else {
			a.DiscountAccount = discountVIPService
		}

	case f.VoucherAmount.IsPositive():
		switch {
		case f.IsGift:
			a.DiscountAccount = discountVoucherGift
		case isItem:
			a.DiscountAccount = discountVoucherItem
		default:
			a.DiscountAccount = discountVoucherService
		}

	case f.GradeDiscount.IsPositive() && (isItem || isService):
		if isService {
			a.DiscountAccount = discountGradeService
		} else {
			a.DiscountAccount = discountGradeItem
		}

	case f.HasPromotionCode() && !(f.GiftPromotionActive && f.IsGift):
		if isService {
			a.DiscountAccount = discountGradeService
		} else {
			a.DiscountAccount = discountGradeItem
		}

	default:
		a.DiscountAccount = f.Existing.DiscountAccount
		a.CostAccount = f.Existing.CostAccount
		a.FeeCode = f.Existing.FeeCode
	}

	a.PromotionCode, a.GiftCode = ResolvePromotionDisplay(f)
	return a
}

// ResolvePromotionDisplay derives the promotion display code and the gift
// promotion code of a line.
//
// Point-redemption lines ignore the raw code entirely and take the fixed
// company-keyed gift code. Gift lines under the normal/exchange
// categories keep only the leading dash-delimited segment with any type
// suffix stripped. Every other line keeps the leading segment and gains
// exactly one type suffix, unless the code came through the canonical
// prefix rewrite or already carries one.
func ResolvePromotionDisplay(f LineFacts) (promotion, gift string) {
	if f.Category == sales.CategoryLoyaltyPointExchange {
		code, ok := loyaltyGiftCodes[f.CompanyCode]
		if !ok {
			code = loyaltyGiftDefault
		}
		return code, code
	}

	raw := strings.TrimSpace(f.PromotionCode)
	if raw == "" {
		return "", ""
	}

	rewritten := false
	if strings.HasPrefix(raw, altPromotionPrefix) {
		raw = canonicalPromotionPrefix + strings.TrimPrefix(raw, altPromotionPrefix)
		rewritten = true
	}

	display := leadingSegment(raw)

	if f.IsGift && (f.Category == sales.CategoryNormal || f.Category == sales.CategoryNormalExchange) {
		display = stripTypeSuffix(display)
		if f.GiftPromotionActive {
			return "", display
		}
		return display, ""
	}

	if !rewritten && !hasTypeSuffix(display) {
		display += f.Kind.Suffix()
	}
	if f.GiftPromotionActive && f.IsGift {
		return "", display
	}
	return display, ""
}

// ResolveVoucherCode picks the voucher display code of a line. Orders
// from a recognized e-commerce channel use the fixed brand-keyed code;
// everything else defers to the amount-based calculation of the caller.
func ResolveVoucherCode(channel, brand string, fallback func() string) string {
	if _, ok := ecommerceChannels[strings.ToUpper(strings.TrimSpace(channel))]; ok {
		if code, ok := voucherBrandCodes[brand]; ok {
			return code
		}
		return voucherBrandDefault
	}
	if fallback != nil {
		return fallback()
	}
	return ""
}

// ResolveTransactionType derives the loai_gd code of a line.
func ResolveTransactionType(category sales.OrderCategory, kind sales.ProductKind, quantity decimal.Decimal) string {
	switch category {
	case sales.CategoryNormalExchange, sales.CategoryCardSeparation:
		if quantity.IsNegative() {
			return "11"
		}
		return "12"
	case sales.CategoryService:
		if kind == sales.ProductKindService && quantity.IsPositive() {
			return "01"
		}
	}
	return "01"
}

// ResolveWarehouse derives the warehouse code of a line. Card-separation
// orders always post against the B-prefixed department warehouse; other
// lines prefer the warehouse of the actual stock movement, then the
// line's own warehouse.
func ResolveWarehouse(category sales.OrderCategory, departmentCode, movementWarehouse, lineWarehouse string) string {
	if category == sales.CategoryCardSeparation {
		return "B" + departmentCode
	}
	if movementWarehouse != "" {
		return movementWarehouse
	}
	return lineWarehouse
}

// leadingSegment returns the part of the code before the first dash.
func leadingSegment(code string) string {
	if idx := strings.Index(code, "-"); idx >= 0 {
		return code[:idx]
	}
	return code
}

var typeSuffixes = []string{".I", ".S", ".V"}

func hasTypeSuffix(code string) bool {
	for _, s := range typeSuffixes {
		if strings.HasSuffix(code, s) {
			return true
		}
	}
	return false
}

func stripTypeSuffix(code string) string {
	for _, s := range typeSuffixes {
		if strings.HasSuffix(code, s) {
			return strings.TrimSuffix(code, s)
		}
	}
	return code
}
