package domain

import (
	"github.com/shopspring/decimal"
)

// RestOfWorldKey is the sentinel directory key for countries without their
// own account mapping (in practice: everything outside the EU).
const RestOfWorldKey = "NON_EU"

// AccountKind selects which side of the directory a lookup targets.
type AccountKind string

const (
	AccountSales AccountKind = "sales"
	AccountVAT   AccountKind = "vat"
)

// RateEntry pairs a ledger account number with the VAT rate booked on it.
// Rate is a fraction of 1 (0.25 == 25%).
type RateEntry struct {
	Rate    decimal.Decimal `json:"rate" mapstructure:"rate"`
	Account int             `json:"account" mapstructure:"account"`
}

// AccountPair holds the standard- and reduced-rate entries for one
// directory key.
type AccountPair struct {
	Standard RateEntry `json:"standard" mapstructure:"standard"`
	Reduced  RateEntry `json:"reduced" mapstructure:"reduced"`
}

// Pick returns the standard or reduced entry.
func (p AccountPair) Pick(isStandard bool) RateEntry {
	if isStandard {
		return p.Standard
	}
	return p.Reduced
}

// AccountDirectory maps country codes (or the rest-of-world sentinel, or a
// payment-method name) to ledger accounts for VAT and sales postings. It is
// loaded once from configuration and treated as immutable for the duration
// of a batch run.
type AccountDirectory struct {
	VAT   map[string]AccountPair `json:"vat" mapstructure:"vat"`
	Sales map[string]AccountPair `json:"sales" mapstructure:"sales"`
}

// Resolve looks up the account/rate entry for a country, falling back to the
// rest-of-world bucket and finally to the payment-method bucket. The
// paymentMethod fallback exists because certain payment rails require a
// distinct sales account even outside the EU; pass "" when no such fallback
// applies.
func (d *AccountDirectory) Resolve(kind AccountKind, countryISO string, isStandard bool, paymentMethod string) (RateEntry, error) {
	table := d.Sales
	if kind == AccountVAT {
		table = d.VAT
	}

	if pair, ok := table[countryISO]; ok {
		return pair.Pick(isStandard), nil
	}
	if pair, ok := table[RestOfWorldKey]; ok {
		return pair.Pick(isStandard), nil
	}
	if paymentMethod != "" {
		if pair, ok := table[paymentMethod]; ok {
			return pair.Pick(isStandard), nil
		}
	}
	return RateEntry{}, NewError(ErrNoAccountConfigured,
		"no %s account configured for country %q (payment method %q)", kind, countryISO, paymentMethod)
}

// ResolveByMethod looks up the payment-method bucket directly, bypassing the
// country chain. Used for the fee augmentation rows, which always book
// against the processor's own sales account.
func (d *AccountDirectory) ResolveByMethod(kind AccountKind, paymentMethod string, isStandard bool) (RateEntry, error) {
	table := d.Sales
	if kind == AccountVAT {
		table = d.VAT
	}
	if pair, ok := table[paymentMethod]; ok {
		return pair.Pick(isStandard), nil
	}
	return RateEntry{}, NewError(ErrNoAccountConfigured,
		"no %s account configured for payment method %q", kind, paymentMethod)
}

// Validate checks every entry in both tables: rates must lie in [0,1] and
// account numbers must be positive.
func (d *AccountDirectory) Validate() error {
	one := decimal.NewFromInt(1)
	check := func(kind AccountKind, table map[string]AccountPair) error {
		for key, pair := range table {
			for _, entry := range []RateEntry{pair.Standard, pair.Reduced} {
				if entry.Rate.IsNegative() || entry.Rate.GreaterThan(one) {
					return NewError(ErrNoAccountConfigured,
						"%s account table: rate %s for key %q outside [0,1]", kind, entry.Rate, key)
				}
				if entry.Account <= 0 {
					return NewError(ErrNoAccountConfigured,
						"%s account table: non-positive account number %d for key %q", kind, entry.Account, key)
				}
			}
		}
		return nil
	}
	if err := check(AccountVAT, d.VAT); err != nil {
		return err
	}
	return check(AccountSales, d.Sales)
}
