package usecase

import (
	"github.com/shopspring/decimal"

	"invoice-accrual/internal/domain"
)

// Tolerances for reconciling recomputed figures against the order source's
// own reported figures. The grand-total tolerance is the tightened 0.001
// value; the looser 0.01 remains for cart tax, whose per-item entries are
// rounded upstream.
var (
	cartTaxEpsilon = decimal.RequireFromString("0.01")
	totalEpsilon   = decimal.RequireFromString("0.001")
	rateEpsilon    = decimal.RequireFromString("0.01")
	balanceEpsilon = decimal.RequireFromString("0.01")
	mergeEpsilon   = decimal.RequireFromString("0.000000001")
)

// ItemTaxTotal sums the independently reported per-unit tax entries of a
// line item.
func ItemTaxTotal(item domain.LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, t := range item.Taxes {
		total = total.Add(t.Total)
	}
	return total
}

// ItemTotalWithTax is the unit price of an item plus its reported tax.
func ItemTotalWithTax(item domain.LineItem) decimal.Decimal {
	return item.Price.Add(ItemTaxTotal(item))
}

// TotalItemsTax sums ItemTaxTotal over all items of an order.
func TotalItemsTax(order *domain.Order) decimal.Decimal {
	total := decimal.Zero
	for _, item := range order.LineItems {
		total = total.Add(ItemTaxTotal(item))
	}
	return total
}

// AccurateCartTax recomputes the order's cart tax from its line items and
// cross-checks the order-reported figure. The reported total is untrusted:
// drift signals a coupon, fee, or tax class the engine does not understand,
// and processing must halt rather than book a silently wrong entry.
func AccurateCartTax(order *domain.Order) (decimal.Decimal, error) {
	total := TotalItemsTax(order)

	diff := total.Sub(order.CartTax).Abs()
	if diff.GreaterThanOrEqual(cartTaxEpsilon) {
		return decimal.Zero, domain.NewMismatchError(domain.ErrTaxMismatch, total, order.CartTax,
			"order cart tax does not match the tax recomputed from line items")
	}
	return total, nil
}

// AccurateTotal recomputes the order's grand total — sum over items of
// price*quantity plus item tax, plus shipping and shipping tax — and
// cross-checks the order-reported figure.
func AccurateTotal(order *domain.Order) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, item := range order.LineItems {
		line := item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(line).Add(ItemTaxTotal(item))
	}
	total = total.Add(order.ShippingTotal).Add(order.ShippingTax)

	diff := total.Sub(order.Total).Abs()
	if diff.GreaterThan(totalEpsilon) {
		return decimal.Zero, domain.NewMismatchError(domain.ErrTotalMismatch, total, order.Total,
			"order total does not match the total recomputed from line items and shipping")
	}
	return total, nil
}
