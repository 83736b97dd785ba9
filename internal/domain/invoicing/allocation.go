package invoicing

import (
	"github.com/shopspring/decimal"

	"github.com/nguyenhieubp/InvoiceFlowServer-sub004/internal/domain/sales"
)

// Allocation is the recomputed monetary core of a line under partial
// fulfillment.
type Allocation struct {
	UnitPrice decimal.Decimal
	Amount    decimal.Decimal
}

// Allocate recomputes the unit price and line amount of a line.
//
// Point-redemption lines never carry monetary value, so the loyalty
// category forces both outputs to zero. Otherwise a missing unit price is
// derived from revenue when possible, and for categories subject to
// reallocation a fulfilled quantity that differs from the ordered one
// reprices the line to what actually shipped.
func Allocate(orderedQty decimal.Decimal, fulfilledQty *decimal.Decimal, unitPrice, revenue decimal.Decimal, category sales.OrderCategory) Allocation {
	if category == sales.CategoryLoyaltyPointExchange {
		return Allocation{UnitPrice: decimal.Zero, Amount: decimal.Zero}
	}

	price := unitPrice
	if price.IsZero() && revenue.IsPositive() && !orderedQty.IsZero() {
		price = revenue.Div(orderedQty.Abs())
	}

	amount := revenue
	if category.AllowsReallocation() && fulfilledQty != nil && !fulfilledQty.Equal(orderedQty) {
		if fulfilledQty.IsPositive() && price.IsPositive() {
			amount = fulfilledQty.Mul(price)
		} else if !orderedQty.IsZero() {
			amount = revenue.Mul(fulfilledQty.Div(orderedQty))
		}
	}

	return Allocation{UnitPrice: price, Amount: amount}
}

// FulfillmentRatio is the fulfilled/ordered ratio used to scale every
// monetary slot of a line. It is 1 when no reallocation applies.
func FulfillmentRatio(orderedQty decimal.Decimal, fulfilledQty *decimal.Decimal, category sales.OrderCategory) decimal.Decimal {
	one := decimal.NewFromInt(1)
	if !category.AllowsReallocation() || fulfilledQty == nil || orderedQty.IsZero() {
		return one
	}
	if fulfilledQty.Equal(orderedQty) {
		return one
	}
	return fulfilledQty.Div(orderedQty)
}

// ScaleSlots applies the fulfillment ratio uniformly to all 22 discount
// slots. Scaling is a cross-cutting rule: every monetary slot moves by
// the same ratio, not just the headline price.
func ScaleSlots(amounts [sales.DiscountSlotCount]decimal.Decimal, ratio decimal.Decimal) [sales.DiscountSlotCount]decimal.Decimal {
	if ratio.Equal(decimal.NewFromInt(1)) {
		return amounts
	}
	var scaled [sales.DiscountSlotCount]decimal.Decimal
	for i, amount := range amounts {
		scaled[i] = amount.Mul(ratio)
	}
	return scaled
}
