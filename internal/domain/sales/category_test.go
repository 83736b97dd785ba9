package sales

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify_KnownVariants(t *testing.T) {
	tests := []struct {
		label    string
		expected OrderCategory
	}{
		{"03. Đổi điểm", CategoryLoyaltyPointExchange},
		{"Đổi điểm", CategoryLoyaltyPointExchange},
		{"doi diem", CategoryLoyaltyPointExchange},
		{"  03.   Đổi điểm  ", CategoryLoyaltyPointExchange},
		{"07. Tách thẻ DV", CategoryCardSeparation},
		{"tach the dv", CategoryCardSeparation},
		{"02. Đổi hàng CK DV", CategoryNormalExchange},
		{"02. Đổi hàng", CategoryNormalExchange},
		{"08. Đổi vỏ", CategoryBottleExchange},
		{"05. Quà sinh nhật", CategoryBirthdayGift},
		{"06. Đầu tư", CategoryInvestment},
		{"09. Trả hàng", CategorySaleReturn},
		{"04. Làm dịch vụ", CategoryService},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.label))
		})
	}
}

func TestClassify_UnknownLabelFallsBackToNormal(t *testing.T) {
	assert.Equal(t, CategoryNormal, Classify("01. Bán hàng"))
	assert.Equal(t, CategoryNormal, Classify("something else entirely"))
	assert.Equal(t, CategoryNormal, Classify(""))
}

func TestClassify_CardSeparationWinsOverExchange(t *testing.T) {
	// Both label families contain "dv"; the rule order decides.
	assert.Equal(t, CategoryCardSeparation, Classify("Tách thẻ DV"))
	assert.Equal(t, CategoryNormalExchange, Classify("Đổi hàng CK DV"))
}

func TestIsServiceLabel(t *testing.T) {
	assert.True(t, IsServiceLabel("04. Làm dịch vụ"))
	assert.True(t, IsServiceLabel("02. Đổi hàng CK DV"))
	assert.True(t, IsServiceLabel("07. Tách thẻ DV"))
	assert.True(t, IsServiceLabel("Dịch vụ khác"))
	assert.False(t, IsServiceLabel("01. Bán hàng"))
	assert.False(t, IsServiceLabel("03. Đổi điểm"))
}

func TestOrderCategory_AllowsReallocation(t *testing.T) {
	assert.True(t, CategoryNormal.AllowsReallocation())
	assert.True(t, CategoryNormalExchange.AllowsReallocation())
	assert.False(t, CategoryLoyaltyPointExchange.AllowsReallocation())
	assert.False(t, CategorySaleReturn.AllowsReallocation())
}

func TestSaleOrder_CategoryFromFirstLine(t *testing.T) {
	order := &SaleOrder{
		OrderID: "SO001",
		Lines: []SaleLine{
			{OrderType: "03. Đổi điểm"},
			{OrderType: "01. Bán hàng"},
		},
	}
	assert.Equal(t, CategoryLoyaltyPointExchange, order.Category())

	empty := &SaleOrder{OrderID: "SO002"}
	assert.Equal(t, CategoryNormal, empty.Category())
}

func TestPaymentRecord_Kind(t *testing.T) {
	assert.Equal(t, PaymentMethodCash, PaymentRecord{MethodCode: "TM"}.Kind())
	assert.Equal(t, PaymentMethodCash, PaymentRecord{MethodCode: "COD"}.Kind())
	assert.Equal(t, PaymentMethodVoucher, PaymentRecord{MethodCode: "VC01"}.Kind())
}
