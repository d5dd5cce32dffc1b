package usecase

import (
	"regexp"
	"strings"

	"invoice-accrual/internal/domain"
)

// Normalized payment methods. The engine refuses to guess the accounting
// treatment of anything outside this closed set.
const (
	PaymentMethodStripe = "Stripe"
	PaymentMethodPayPal = "PayPal"
)

// euCountries is the fixed set of EU member ISO codes. Deliberately static
// domain data loaded at init, never mutated.
var euCountries = map[string]struct{}{
	"AT": {}, "BE": {}, "BG": {}, "CY": {}, "CZ": {}, "DE": {}, "DK": {},
	"EE": {}, "ES": {}, "FI": {}, "FR": {}, "GR": {}, "HR": {}, "HU": {},
	"IE": {}, "IT": {}, "LT": {}, "LU": {}, "LV": {}, "MT": {}, "NL": {},
	"PL": {}, "PT": {}, "RO": {}, "SE": {}, "SI": {}, "SK": {},
}

var (
	// Catch-all: stripe and stripe_{bancontact,ideal,sofort,...}
	stripePattern = regexp.MustCompile(`^stripe\S*`)
	// Catch-all: paypal and ppec_paypal
	paypalPattern = regexp.MustCompile(`^\S*paypal$`)
)

// IsInsideEU reports whether a country code belongs to the configured EU
// set. Case-insensitive, exact membership only.
func IsInsideEU(countryISO string) bool {
	_, ok := euCountries[strings.ToUpper(countryISO)]
	return ok
}

// validateTaxClasses checks that every item's tax-class tag is one of the
// two known values or empty (empty means standard).
func validateTaxClasses(items []domain.LineItem) error {
	for _, item := range items {
		switch item.TaxClass {
		case "", domain.TaxClassStandard, domain.TaxClassReduced:
		default:
			return domain.NewError(domain.ErrUnknownTaxClass,
				"line item %q carries tax class %q; expected %q, %q or empty",
				item.Name, item.TaxClass, domain.TaxClassStandard, domain.TaxClassReduced)
		}
	}
	return nil
}

// ContainsNoReducedRate reports whether an order is standard-rate overall:
// true iff no item carries the reduced-rate tag. An unrecognized tag is
// fatal before any classification happens.
func ContainsNoReducedRate(items []domain.LineItem) (bool, error) {
	if err := validateTaxClasses(items); err != nil {
		return false, err
	}
	for _, item := range items {
		if item.TaxClass == domain.TaxClassReduced {
			return false, nil
		}
	}
	return true, nil
}

// OnlyReducedRate reports whether every item of an order is reduced-rate.
func OnlyReducedRate(items []domain.LineItem) (bool, error) {
	if err := validateTaxClasses(items); err != nil {
		return false, err
	}
	for _, item := range items {
		if item.TaxClass != domain.TaxClassReduced {
			return false, nil
		}
	}
	return true, nil
}

// itemIsStandard classifies a single item independently of the order-level
// classification; each item's own class drives its own row's account.
func itemIsStandard(item domain.LineItem) bool {
	return item.TaxClass != domain.TaxClassReduced
}

// ResolvePaymentMethod normalizes the free-text payment method of an order
// to the closed set of known processors.
func ResolvePaymentMethod(order *domain.Order) (string, error) {
	payment := strings.ToLower(order.PaymentMethod)
	if payment == "" {
		return "", domain.NewError(domain.ErrUnknownPaymentMethod,
			"order %d has no payment method and needs manual bookkeeping", order.ID)
	}
	if stripePattern.MatchString(payment) {
		return PaymentMethodStripe, nil
	}
	if paypalPattern.MatchString(payment) {
		return PaymentMethodPayPal, nil
	}
	return "", domain.NewError(domain.ErrUnknownPaymentMethod,
		"payment method %q (%q) unexpected", order.PaymentMethod, order.PaymentMethodTitle)
}
