package usecase

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"invoice-accrual/internal/domain"
)

// BuildInvoice derives the customer-facing invoice projection for an order:
// the same line items priced including tax in the target currency, without
// any ledger-account detail.
func BuildInvoice(order *domain.Order, rate decimal.Decimal, targetCurrency, customerNumber string) (*domain.Invoice, error) {
	if order.DatePaid == nil {
		return nil, domain.NewError(domain.ErrInvalidOrder,
			"order %d is missing its final payment date", order.ID)
	}
	if len(order.LineItems) == 0 {
		return nil, domain.NewError(domain.ErrInvalidOrder,
			"order %d has no line items", order.ID)
	}

	rows := make([]domain.InvoiceRow, 0, len(order.LineItems))
	for _, item := range order.LineItems {
		rows = append(rows, domain.InvoiceRow{
			ArticleNumber:     item.SKU,
			Price:             ItemTotalWithTax(item).Mul(rate),
			DeliveredQuantity: item.Quantity,
		})
	}

	var reference string
	if order.CustomerID != 0 {
		reference = strconv.FormatInt(order.CustomerID, 10)
	}

	return &domain.Invoice{
		CustomerNumber:  customerNumber,
		InvoiceDate:     order.DateCompleted,
		Currency:        targetCurrency,
		YourOrderNumber: strconv.FormatInt(order.ID, 10),
		YourReference:   reference,
		CustomerName: strings.TrimSpace(
			order.Billing.FirstName + " " + order.Billing.LastName),

		Country:  order.Billing.Country,
		Address1: order.Billing.Address1,
		Address2: order.Billing.Address2,
		ZipCode:  order.Billing.PostCode,
		City:     order.Billing.City,

		DeliveryCountry:  order.Shipping.Country,
		DeliveryAddress1: order.Shipping.Address1,
		DeliveryAddress2: order.Shipping.Address2,
		DeliveryZipCode:  order.Shipping.PostCode,
		DeliveryCity:     order.Shipping.City,

		Rows: rows,
	}, nil
}
