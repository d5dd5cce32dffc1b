package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerRow is one debit-or-credit posting to a numbered account. Exactly
// one of Debit/Credit is nonzero; AddDebit/AddCredit enforce this at
// construction so a malformed row can never enter an accrual.
type LedgerRow struct {
	Account int             `json:"account"`
	Debit   decimal.Decimal `json:"debit"`
	Credit  decimal.Decimal `json:"credit"`
	Info    string          `json:"transaction_information"`
}

// InvoiceAccrual is the balanced double-entry record produced for one order.
type InvoiceAccrual struct {
	Description   string      `json:"description"`
	Period        string      `json:"period"`
	InvoiceNumber int64       `json:"invoice_number,omitempty"`
	StartDate     *time.Time  `json:"start_date,omitempty"`
	EndDate       *time.Time  `json:"end_date,omitempty"`
	Rows          []LedgerRow `json:"invoice_accrual_rows"`
}

// AddDebit appends a debit row. A non-positive amount is a construction
// error: zero-amount rows carry no information and negative postings are
// expressed on the opposite side.
func (ia *InvoiceAccrual) AddDebit(account int, amount decimal.Decimal, info string) error {
	if !amount.IsPositive() {
		return NewError(ErrUnbalancedLedger, "debit row on account %d must be positive, got %s", account, amount)
	}
	ia.Rows = append(ia.Rows, LedgerRow{Account: account, Debit: amount, Info: info})
	return nil
}

// AddCredit appends a credit row under the same constraints as AddDebit.
func (ia *InvoiceAccrual) AddCredit(account int, amount decimal.Decimal, info string) error {
	if !amount.IsPositive() {
		return NewError(ErrUnbalancedLedger, "credit row on account %d must be positive, got %s", account, amount)
	}
	ia.Rows = append(ia.Rows, LedgerRow{Account: account, Credit: amount, Info: info})
	return nil
}

// TotalDebit sums the debit side. A row carrying both a debit and a credit
// indicates corruption and is reported, never summed over.
func TotalDebit(rows []LedgerRow) (decimal.Decimal, error) {
	return sideTotal(rows, func(r LedgerRow) decimal.Decimal { return r.Debit })
}

// TotalCredit sums the credit side.
func TotalCredit(rows []LedgerRow) (decimal.Decimal, error) {
	return sideTotal(rows, func(r LedgerRow) decimal.Decimal { return r.Credit })
}

func sideTotal(rows []LedgerRow, side func(LedgerRow) decimal.Decimal) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, r := range rows {
		if r.Debit.IsPositive() && r.Credit.IsPositive() {
			return decimal.Zero, NewError(ErrUnbalancedLedger,
				"row on account %d carries both debit %s and credit %s", r.Account, r.Debit, r.Credit)
		}
		total = total.Add(side(r))
	}
	return total, nil
}

// ConcatAccruals merges the rows of several accruals into one record, in
// map-iteration order keyed by order id. Header fields are left empty; the
// result is only meant for aggregate inspection.
func ConcatAccruals(accruals map[int64]*InvoiceAccrual) *InvoiceAccrual {
	merged := &InvoiceAccrual{}
	for _, a := range accruals {
		merged.Rows = append(merged.Rows, a.Rows...)
	}
	return merged
}

// InvoiceRow is one line of the customer-facing invoice projection.
type InvoiceRow struct {
	ArticleNumber     string          `json:"article_number"`
	Price             decimal.Decimal `json:"price"` // incl. tax, target currency
	DeliveredQuantity int             `json:"delivered_quantity"`
}

// Invoice is the customer-facing projection of an order: the same line
// items without the ledger-account detail, addressed for an external
// invoicing endpoint.
type Invoice struct {
	CustomerNumber   string       `json:"customer_number,omitempty"`
	InvoiceDate      *time.Time   `json:"invoice_date,omitempty"`
	Currency         string       `json:"currency"`
	YourOrderNumber  string       `json:"your_order_number"`
	YourReference    string       `json:"your_reference,omitempty"`
	CustomerName     string       `json:"customer_name"`
	Country          string       `json:"country"`
	Address1         string       `json:"address1"`
	Address2         string       `json:"address2,omitempty"`
	ZipCode          string       `json:"zip_code"`
	City             string       `json:"city"`
	DeliveryCountry  string       `json:"delivery_country"`
	DeliveryAddress1 string       `json:"delivery_address1"`
	DeliveryAddress2 string       `json:"delivery_address2,omitempty"`
	DeliveryZipCode  string       `json:"delivery_zip_code"`
	DeliveryCity     string       `json:"delivery_city"`
	Rows             []InvoiceRow `json:"invoice_rows"`
}

// VerificationResult is the outcome of reconciling a single order: either a
// populated accrual plus invoice projection, or an error description.
// Constructed once per order and immutable afterwards.
type VerificationResult struct {
	ID           uuid.UUID       `json:"id"`
	OrderID      int64           `json:"order_id"`
	CurrencyRate decimal.Decimal `json:"currency_rate"`
	Accrual      *InvoiceAccrual `json:"invoice_accrual,omitempty"`
	Invoice      *Invoice        `json:"invoice,omitempty"`
	Error        string          `json:"error,omitempty"`
}

// NewVerificationResult allocates a result shell for an order.
func NewVerificationResult(orderID int64, rate decimal.Decimal) *VerificationResult {
	return &VerificationResult{ID: uuid.New(), OrderID: orderID, CurrencyRate: rate}
}

// OK reports whether the verification produced a usable accrual.
func (v *VerificationResult) OK() bool {
	return v.Error == "" && v.Accrual != nil
}
