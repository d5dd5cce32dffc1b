package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TaxClass is the rate tier tag carried by a line item. An empty tag means
// the item is taxed at the standard rate.
type TaxClass string

const (
	TaxClassStandard TaxClass = "normal-rate"
	TaxClassReduced  TaxClass = "reduced-rate"
)

// ItemTax is one independently reported tax entry on a line item.
type ItemTax struct {
	ID    int             `json:"id"`
	Total decimal.Decimal `json:"total"`
}

// LineItem is a single purchased article within an order.
type LineItem struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	SKU         string          `json:"sku"`
	Price       decimal.Decimal `json:"price"` // unit price excluding tax
	Quantity    int             `json:"quantity"`
	TaxClass    TaxClass        `json:"tax_class"`
	SubtotalTax decimal.Decimal `json:"subtotal_tax"`
	Taxes       []ItemTax       `json:"taxes"`
}

// Address holds the billing or shipping address of an order.
type Address struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Address1  string `json:"address_1"`
	Address2  string `json:"address_2"`
	City      string `json:"city"`
	PostCode  string `json:"postcode"`
	Country   string `json:"country"`
	Email     string `json:"email"`
}

// MetaData is a free-form key/value pair attached to an order by the order
// source. Payment-processor fees arrive through these.
type MetaData struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// CouponLine is a discount code applied to an order.
type CouponLine struct {
	Code        string          `json:"code"`
	Discount    decimal.Decimal `json:"discount"`
	DiscountTax decimal.Decimal `json:"discount_tax"`
}

// FeeLine is an ad hoc surcharge line. The engine does not understand these
// and rejects any order carrying one.
type FeeLine struct {
	Name  string          `json:"name"`
	Total decimal.Decimal `json:"total"`
}

// ShippingLine is one shipping method charged on an order.
type ShippingLine struct {
	MethodTitle string          `json:"method_title"`
	Total       decimal.Decimal `json:"total"`
}

// Order is the completed e-commerce order as reported by the order source.
// It is a read-only input: the engine recomputes its totals rather than
// trusting the reported figures.
type Order struct {
	ID                 int64           `json:"id"`
	Currency           string          `json:"currency"`
	Total              decimal.Decimal `json:"total"`
	CartTax            decimal.Decimal `json:"cart_tax"`
	ShippingTotal      decimal.Decimal `json:"shipping_total"`
	ShippingTax        decimal.Decimal `json:"shipping_tax"`
	DiscountTotal      decimal.Decimal `json:"discount_total"`
	LineItems          []LineItem      `json:"line_items"`
	ShippingLines      []ShippingLine  `json:"shipping_lines"`
	CouponLines        []CouponLine    `json:"coupon_lines"`
	FeeLines           []FeeLine       `json:"fee_lines"`
	Billing            Address         `json:"billing"`
	Shipping           Address         `json:"shipping"`
	PaymentMethod      string          `json:"payment_method"`
	PaymentMethodTitle string          `json:"payment_method_title"`
	CustomerID         int64           `json:"customer_id"`
	MetaData           []MetaData      `json:"meta_data"`
	DateCompleted      *time.Time      `json:"date_completed"`
	DatePaid           *time.Time      `json:"date_paid"`
}

// FindMeta returns the value of the first metadata entry with the given key.
func (o *Order) FindMeta(key string) (string, bool) {
	for _, m := range o.MetaData {
		if m.Key == key {
			return m.Value, true
		}
	}
	return "", false
}
