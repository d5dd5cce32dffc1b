package usecase

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"invoice-accrual/internal/domain"
)

// AccrualData is the fully classified input to the row builder: one order
// with verified totals, resolved jurisdiction, payment method, and the
// conversion rate into the target ledger currency.
type AccrualData struct {
	Order    *domain.Order
	Accounts *domain.AccountDirectory

	CountryISO  string
	IsInEU      bool
	IsStandard  bool
	HasShipping bool

	PaymentMethod string

	// CurrencyRate converts source-currency amounts into the target
	// ledger currency. Pre-resolved by the caller; the engine never
	// fetches rates.
	CurrencyRate decimal.Decimal

	// Total is the independently recomputed grand total in source
	// currency, including shipping and all taxes.
	Total decimal.Decimal

	CustomerNumber string
	InvoiceNumber  int64
	Period         string
}

// NewAccrualData classifies an order and verifies its totals, returning the
// builder input. This is the single entry point where the order's reported
// figures are reconciled against recomputed ones.
func NewAccrualData(order *domain.Order, accounts *domain.AccountDirectory, rate decimal.Decimal, catalog *domain.CouponCatalog) (*AccrualData, error) {
	if len(order.FeeLines) != 0 {
		return nil, domain.NewError(domain.ErrInvalidOrder,
			"order %d contains unexpected fee lines", order.ID)
	}
	if err := verifyCoupons(order, catalog); err != nil {
		return nil, err
	}

	total, err := AccurateTotal(order)
	if err != nil {
		return nil, err
	}
	if _, err := AccurateCartTax(order); err != nil {
		return nil, err
	}

	isStandard, err := ContainsNoReducedRate(order.LineItems)
	if err != nil {
		return nil, err
	}

	paymentMethod, err := ResolvePaymentMethod(order)
	if err != nil {
		return nil, err
	}

	countryISO := order.Billing.Country
	hasShipping := len(order.ShippingLines) > 0 && order.ShippingTotal.IsPositive()

	return &AccrualData{
		Order:         order,
		Accounts:      accounts,
		CountryISO:    countryISO,
		IsInEU:        IsInsideEU(countryISO),
		IsStandard:    isStandard,
		HasShipping:   hasShipping,
		PaymentMethod: paymentMethod,
		CurrencyRate:  rate,
		Total:         total,
	}, nil
}

// verifyCoupons checks every coupon line against the typed catalog. Coupons
// must exist in the catalog and must not carry a discount amount; a nonzero
// order-level discount without an allowing coupon is likewise fatal.
func verifyCoupons(order *domain.Order, catalog *domain.CouponCatalog) error {
	hasDiscounts := false
	for _, coupon := range order.CouponLines {
		if !coupon.Discount.IsZero() || !coupon.DiscountTax.IsZero() {
			return domain.NewError(domain.ErrUnexpectedDiscount,
				"unexpected discount amount %s for coupon code %q", coupon.Discount, coupon.Code)
		}
		if coupon.Code == "" {
			return domain.NewError(domain.ErrUnexpectedDiscount,
				"order %d is missing the discount code for an applied discount", order.ID)
		}
		entry, ok := catalog.Lookup(coupon.Code)
		if !ok {
			return domain.NewError(domain.ErrUnexpectedDiscount,
				"order %d contains unexpected coupon %q", order.ID, coupon.Code)
		}
		if entry.DiscountAllowed {
			hasDiscounts = true
		}
	}
	if !hasDiscounts && !order.DiscountTotal.IsZero() {
		return domain.NewError(domain.ErrUnexpectedDiscount,
			"order %d contains an unexpected discount total %s", order.ID, order.DiscountTotal)
	}
	return nil
}

// itemsByPrice returns the order's line items sorted by descending unit
// price. The sort is stable so equally priced items keep source order.
func (d *AccrualData) itemsByPrice() []domain.LineItem {
	items := make([]domain.LineItem, len(d.Order.LineItems))
	copy(items, d.Order.LineItems)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Price.GreaterThan(items[j].Price)
	})
	return items
}

// salesAcc resolves the sales-side account entry. A non-empty payment
// method takes precedence over the country chain.
func (d *AccrualData) salesAcc(isStandard bool, paymentMethod, countryISO string) (domain.RateEntry, error) {
	if paymentMethod != "" {
		return d.Accounts.ResolveByMethod(domain.AccountSales, paymentMethod, isStandard)
	}
	return d.Accounts.Resolve(domain.AccountSales, countryISO, isStandard, d.PaymentMethod)
}

// vatAcc resolves the VAT-side account entry under the same precedence.
func (d *AccrualData) vatAcc(isStandard bool, paymentMethod, countryISO string) (domain.RateEntry, error) {
	if paymentMethod != "" {
		return d.Accounts.ResolveByMethod(domain.AccountVAT, paymentMethod, isStandard)
	}
	return d.Accounts.Resolve(domain.AccountVAT, countryISO, isStandard, d.PaymentMethod)
}

// taxLabel renders a configured rate for row memos: "25.00% VAT".
func taxLabel(entry domain.RateEntry) string {
	return fmt.Sprintf("%s%% VAT", entry.Rate.Mul(decimal.NewFromInt(100)).StringFixed(2))
}

// toTarget converts a source-currency amount into the target currency.
func (d *AccrualData) toTarget(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(d.CurrencyRate)
}

// combinedStandardRate is the configured sales rate plus VAT rate for the
// order's jurisdiction. Outside the EU this must be exactly zero.
func (d *AccrualData) combinedStandardRate() (decimal.Decimal, error) {
	var sales, vat domain.RateEntry
	var err error
	if d.IsInEU {
		if sales, err = d.salesAcc(d.IsStandard, "", d.CountryISO); err != nil {
			return decimal.Zero, err
		}
		if vat, err = d.vatAcc(d.IsStandard, "", d.CountryISO); err != nil {
			return decimal.Zero, err
		}
	} else {
		if sales, err = d.salesAcc(d.IsStandard, d.PaymentMethod, ""); err != nil {
			return decimal.Zero, err
		}
		if vat, err = d.vatAcc(d.IsStandard, d.PaymentMethod, ""); err != nil {
			return decimal.Zero, err
		}
	}
	return sales.Rate.Add(vat.Rate), nil
}

// BuildAccrual emits the ordered debit/credit rows for a classified order.
// VAT treatment for exports is categorically different from intra-EU retail
// VAT, so the two jurisdictions never share a code path.
func BuildAccrual(data *AccrualData) (*domain.InvoiceAccrual, error) {
	accrual := &domain.InvoiceAccrual{
		Description:   fmt.Sprintf("Invoice for order id: %d", data.Order.ID),
		Period:        data.Period,
		InvoiceNumber: data.InvoiceNumber,
		StartDate:     data.Order.DateCompleted,
		EndDate:       data.Order.DateCompleted,
	}

	var err error
	if data.IsInEU {
		err = buildEURows(accrual, data)
	} else {
		err = buildExportRows(accrual, data)
	}
	if err != nil {
		return nil, err
	}
	return accrual, nil
}

// buildEURows books an intra-EU sale: one debit for the full received
// amount against the processor's sales account, then per-item sales and VAT
// credits on the country's accounts.
func buildEURows(accrual *domain.InvoiceAccrual, data *AccrualData) error {
	salesAcc, err := data.salesAcc(data.IsStandard, data.PaymentMethod, "")
	if err != nil {
		return err
	}
	if err := accrual.AddDebit(salesAcc.Account, data.toTarget(data.Total), data.PaymentMethod); err != nil {
		return err
	}

	if data.HasShipping {
		vatAcc, err := data.vatAcc(data.IsStandard, "", data.CountryISO)
		if err != nil {
			return err
		}
		shippingWithTax := data.Order.ShippingTotal.Add(data.Order.ShippingTax)
		err = accrual.AddCredit(vatAcc.Account, data.toTarget(shippingWithTax),
			fmt.Sprintf("Shipping incl. VAT - %s", taxLabel(vatAcc)))
		if err != nil {
			return err
		}
	}

	for _, item := range data.itemsByPrice() {
		// Fully discounted items contribute nothing to the ledger.
		if item.Price.IsZero() && item.SubtotalTax.IsZero() {
			continue
		}
		isStandard := itemIsStandard(item)
		itemSales, err := data.salesAcc(isStandard, "", data.CountryISO)
		if err != nil {
			return err
		}
		quantity := decimal.NewFromInt(int64(item.Quantity))
		err = accrual.AddCredit(itemSales.Account, data.toTarget(item.Price.Mul(quantity)),
			fmt.Sprintf("Sales - %s", taxLabel(itemSales)))
		if err != nil {
			return err
		}

		itemTax := ItemTaxTotal(item)
		if itemTax.IsPositive() {
			itemVAT, err := data.vatAcc(isStandard, "", data.CountryISO)
			if err != nil {
				return err
			}
			if err := verifyItemRate(item, itemTax, itemVAT); err != nil {
				return err
			}
			err = accrual.AddCredit(itemVAT.Account, data.toTarget(itemTax),
				fmt.Sprintf("Outgoing VAT - %s", taxLabel(itemVAT)))
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// buildExportRows books a sale outside the EU, which must be zero-rated:
// the goods and shipping are debited as received and credited against the
// 0% VAT bucket.
func buildExportRows(accrual *domain.InvoiceAccrual, data *AccrualData) error {
	combined, err := data.combinedStandardRate()
	if err != nil {
		return err
	}
	if !combined.IsZero() {
		return domain.NewError(domain.ErrNoAccountConfigured,
			"expected a 0%% combined rate for country %q outside the EU, got %s",
			data.CountryISO, combined)
	}

	salesAcc, err := data.salesAcc(data.IsStandard, data.PaymentMethod, "")
	if err != nil {
		return err
	}
	vatAcc, err := data.vatAcc(data.IsStandard, "", data.CountryISO)
	if err != nil {
		return err
	}

	shippingWithTax := data.Order.ShippingTotal.Add(data.Order.ShippingTax)
	goods := data.Total.Sub(shippingWithTax)

	if err := accrual.AddDebit(salesAcc.Account, data.toTarget(data.Total), data.PaymentMethod); err != nil {
		return err
	}
	err = accrual.AddCredit(vatAcc.Account, data.toTarget(goods),
		fmt.Sprintf("Outside EU - VAT - %s", taxLabel(vatAcc)))
	if err != nil {
		return err
	}
	if data.HasShipping {
		if err := accrual.AddCredit(vatAcc.Account, data.toTarget(shippingWithTax), "Shipping"); err != nil {
			return err
		}
	}
	return nil
}

// verifyItemRate checks an item's implied VAT rate — reported tax divided
// by price times quantity — against the configured account rate.
func verifyItemRate(item domain.LineItem, itemTax decimal.Decimal, vatAcc domain.RateEntry) error {
	base := item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
	if base.IsZero() {
		return domain.NewMismatchError(domain.ErrRateMismatch, vatAcc.Rate, decimal.Zero,
			fmt.Sprintf("item %q reports tax %s on a zero-priced line", item.Name, itemTax))
	}
	implied := itemTax.Div(base)
	diff := implied.Sub(vatAcc.Rate).Abs()
	if diff.GreaterThanOrEqual(rateEpsilon) {
		return domain.NewMismatchError(domain.ErrRateMismatch, vatAcc.Rate, implied,
			fmt.Sprintf("item %q implies a VAT rate that does not match the configured account rate", item.Name))
	}
	return nil
}
