package domain

// Coupon is one known discount code and whether a real monetary discount is
// allowed for it. Codes with DiscountAllowed == false are tracking-only
// coupons that must never carry an amount.
type Coupon struct {
	Code            string `json:"code" mapstructure:"code"`
	DiscountAllowed bool   `json:"discount_allowed" mapstructure:"discount_allowed"`
}

// CouponCatalog is the typed, immutable list of coupon codes the engine
// accepts. It is loaded once at startup from static configuration.
type CouponCatalog struct {
	Coupons []Coupon `json:"coupons" mapstructure:"coupons"`
}

// Lookup returns the catalog entry for a code.
func (c *CouponCatalog) Lookup(code string) (Coupon, bool) {
	for _, coupon := range c.Coupons {
		if coupon.Code == code {
			return coupon, true
		}
	}
	return Coupon{}, false
}
