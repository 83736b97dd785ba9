package sales

import "strings"

// OrderCategory is the canonical classification of a sale order, assigned
// once per order from the order-type label of its first line.
type OrderCategory string

const (
	CategoryNormal               OrderCategory = "NORMAL"
	CategoryNormalExchange       OrderCategory = "NORMAL_EXCHANGE"
	CategoryService              OrderCategory = "SERVICE"
	CategoryLoyaltyPointExchange OrderCategory = "LOYALTY_POINT_EXCHANGE"
	CategoryBirthdayGift         OrderCategory = "BIRTHDAY_GIFT"
	CategoryInvestment           OrderCategory = "INVESTMENT"
	CategoryCardSeparation       OrderCategory = "CARD_SEPARATION"
	CategoryBottleExchange       OrderCategory = "BOTTLE_EXCHANGE"
	CategorySaleReturn           OrderCategory = "SALE_RETURN"
)

// String returns the string representation of OrderCategory
func (c OrderCategory) String() string {
	return string(c)
}

// AllowsReallocation reports whether partial-fulfillment reallocation
// applies to lines of this category.
func (c OrderCategory) AllowsReallocation() bool {
	return c == CategoryNormal || c == CategoryNormalExchange
}

// categoryRule pairs one category with the normalized label variants that
// denote it. Rules are evaluated in slice order and the first match wins:
// several labels are textual supersets of others (both the card-separation
// and exchange labels contain "dv"), so the order below is part of the
// contract. New spellings are added to the variant list, never as new
// conditionals.
type categoryRule struct {
	category OrderCategory
	variants []string
}

var categoryRules = []categoryRule{
	{CategorySaleReturn, []string{
		"09. tra hang", "09. trả hàng", "tra hang", "trả hàng",
	}},
	{CategoryCardSeparation, []string{
		"07. tach the dv", "07. tách thẻ dv", "tach the dv", "tách thẻ dv",
	}},
	{CategoryNormalExchange, []string{
		"02. doi hang ck dv", "02. đổi hàng ck dv", "doi hang ck dv", "đổi hàng ck dv",
		"02. doi hang", "02. đổi hàng",
	}},
	{CategoryBottleExchange, []string{
		"08. doi vo", "08. đổi vỏ", "doi vo", "đổi vỏ",
	}},
	{CategoryLoyaltyPointExchange, []string{
		"03. doi diem", "03. đổi điểm", "doi diem", "đổi điểm",
	}},
	{CategoryBirthdayGift, []string{
		"05. qua sinh nhat", "05. quà sinh nhật", "qua sinh nhat", "quà sinh nhật",
	}},
	{CategoryInvestment, []string{
		"06. dau tu", "06. đầu tư", "dau tu", "đầu tư",
	}},
	{CategoryService, []string{
		"04. lam dich vu", "04. làm dịch vụ", "lam dich vu", "làm dịch vụ",
	}},
}

// legacyServiceLabels are labels that never map to a category of their own
// but must still be treated as service work.
var legacyServiceLabels = map[string]struct{}{
	"dich vu khac": {},
	"dịch vụ khác": {},
}

// normalizeLabel trims, case-folds and collapses internal whitespace so
// that upstream spelling variants compare equal.
func normalizeLabel(label string) string {
	return strings.Join(strings.Fields(strings.ToLower(label)), " ")
}

// Classify maps a free-text order-type label to its OrderCategory.
// Unrecognized labels fall back to CategoryNormal.
func Classify(label string) OrderCategory {
	normalized := normalizeLabel(label)
	for _, rule := range categoryRules {
		for _, v := range rule.variants {
			if normalized == v {
				return rule.category
			}
		}
	}
	return CategoryNormal
}

// IsServiceLabel reports whether the label denotes service work. This is a
// derived predicate, not mutually exclusive with Classify: exchange and
// card-separation orders are service work too, and a handful of legacy
// labels count as service without carrying their own category.
func IsServiceLabel(label string) bool {
	switch Classify(label) {
	case CategoryService, CategoryNormalExchange, CategoryCardSeparation:
		return true
	}
	_, ok := legacyServiceLabels[normalizeLabel(label)]
	return ok
}
