package usecase

import (
	"fmt"

	"github.com/shopspring/decimal"

	"invoice-accrual/internal/domain"
)

// Metadata keys under which the order source reports processor fees.
var feeMetaKeys = map[string]string{
	PaymentMethodStripe: "_stripe_fee",
	PaymentMethodPayPal: "_paypal_transaction_fee",
}

// ExtractPaymentFee reads the processor fee for the resolved payment method
// from order metadata. The fee must be positive and smaller than the order
// total; anything else means the metadata cannot be trusted.
func ExtractPaymentFee(order *domain.Order, paymentMethod string) (decimal.Decimal, error) {
	key, ok := feeMetaKeys[paymentMethod]
	if !ok {
		return decimal.Zero, domain.NewError(domain.ErrUnknownPaymentMethod,
			"no fee metadata key known for payment method %q", paymentMethod)
	}
	raw, ok := order.FindMeta(key)
	if !ok {
		return decimal.Zero, domain.NewError(domain.ErrInvalidFeeAmount,
			"order %d is missing fee metadata %q for %s", order.ID, key, paymentMethod)
	}
	fee, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, domain.NewError(domain.ErrInvalidFeeAmount,
			"order %d carries unparseable fee %q: %v", order.ID, raw, err)
	}
	if !fee.IsPositive() || fee.GreaterThanOrEqual(order.Total) {
		return decimal.Zero, domain.NewError(domain.ErrInvalidFeeAmount,
			"unexpected fee amount %s for %s on order %d", fee, paymentMethod, order.ID)
	}
	return fee, nil
}

// AddPaymentFee appends the processor-fee row pair: a credit on the
// processor's sales account reducing recognized net revenue, and a matching
// debit on the bank-fees clearing account. The pair is self-balancing, so
// the accrual's balance invariant is undisturbed.
func AddPaymentFee(accrual *domain.InvoiceAccrual, data *AccrualData, bankFeesAccount int) error {
	fee, err := ExtractPaymentFee(data.Order, data.PaymentMethod)
	if err != nil {
		return err
	}
	salesAcc, err := data.salesAcc(true, data.PaymentMethod, "")
	if err != nil {
		return err
	}
	err = accrual.AddCredit(salesAcc.Account, fee, fmt.Sprintf("%s fee - outgoing", data.PaymentMethod))
	if err != nil {
		return err
	}
	return accrual.AddDebit(bankFeesAccount, fee, fmt.Sprintf("%s fee", data.PaymentMethod))
}

// RateFromFee derives a conversion rate from processor-reported net and fee
// figures: (net + fee) in target currency over the order total in source
// currency. Offered to callers that prefer the processor's own settlement
// figures over a live FX rate.
func RateFromFee(net, fee, total decimal.Decimal) (decimal.Decimal, error) {
	if !total.IsPositive() {
		return decimal.Zero, domain.NewError(domain.ErrInvalidFeeAmount,
			"cannot derive a rate from a non-positive order total %s", total)
	}
	return net.Add(fee).Div(total), nil
}
