package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrorKind enumerates the ways a reconciliation can fail. Every kind is
// fatal for the order being processed; the engine never repairs bad input.
type ErrorKind string

const (
	// ErrTotalMismatch: the recomputed grand total disagrees with the
	// order-reported total beyond tolerance.
	ErrTotalMismatch ErrorKind = "TOTAL_MISMATCH"
	// ErrTaxMismatch: the recomputed cart tax disagrees with the
	// order-reported cart tax beyond tolerance.
	ErrTaxMismatch ErrorKind = "TAX_MISMATCH"
	// ErrUnknownTaxClass: a line item carries a tax-class tag the engine
	// was not built to understand.
	ErrUnknownTaxClass ErrorKind = "UNKNOWN_TAX_CLASS"
	// ErrUnknownPaymentMethod: the payment method does not normalize to a
	// known processor.
	ErrUnknownPaymentMethod ErrorKind = "UNKNOWN_PAYMENT_METHOD"
	// ErrRateMismatch: a line item's implied VAT rate disagrees with the
	// configured account rate.
	ErrRateMismatch ErrorKind = "RATE_MISMATCH"
	// ErrNoAccountConfigured: no ledger account is mapped for the
	// country/payment-method combination.
	ErrNoAccountConfigured ErrorKind = "NO_ACCOUNT_CONFIGURED"
	// ErrUnbalancedLedger: credit and debit sums disagree beyond epsilon.
	ErrUnbalancedLedger ErrorKind = "UNBALANCED_LEDGER"
	// ErrInvalidFeeAmount: the processor fee is non-positive or exceeds
	// the order total.
	ErrInvalidFeeAmount ErrorKind = "INVALID_FEE_AMOUNT"
	// ErrInvalidOrder: the order itself is malformed (no items, missing
	// payment date, unexpected fee lines).
	ErrInvalidOrder ErrorKind = "INVALID_ORDER"
	// ErrUnexpectedDiscount: a coupon or discount that the catalog does
	// not allow.
	ErrUnexpectedDiscount ErrorKind = "UNEXPECTED_DISCOUNT"
)

// ReconciliationError is the typed failure returned by every stage of the
// pipeline. The diagnostic payload fields are populated where they apply.
type ReconciliationError struct {
	Kind     ErrorKind
	OrderID  int64
	Expected decimal.Decimal
	Actual   decimal.Decimal
	Diff     decimal.Decimal
	Account  int
	Detail   string
}

func (e *ReconciliationError) Error() string {
	switch e.Kind {
	case ErrTotalMismatch, ErrTaxMismatch, ErrRateMismatch, ErrUnbalancedLedger:
		return fmt.Sprintf("%s: expected %s, got %s (diff %s): %s",
			e.Kind, e.Expected.StringFixed(2), e.Actual.StringFixed(2), e.Diff.StringFixed(3), e.Detail)
	case ErrNoAccountConfigured:
		return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
	}
}

// Is makes errors.Is match on the error kind, so callers can compare against
// a bare &ReconciliationError{Kind: ...} sentinel.
func (e *ReconciliationError) Is(target error) bool {
	t, ok := target.(*ReconciliationError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// NewError builds a ReconciliationError with just a kind and message.
func NewError(kind ErrorKind, format string, args ...any) *ReconciliationError {
	return &ReconciliationError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// NewMismatchError builds a mismatch-style error carrying the expected and
// actual figures plus their absolute difference.
func NewMismatchError(kind ErrorKind, expected, actual decimal.Decimal, detail string) *ReconciliationError {
	return &ReconciliationError{
		Kind:     kind,
		Expected: expected,
		Actual:   actual,
		Diff:     expected.Sub(actual).Abs(),
		Detail:   detail,
	}
}
