package usecase_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoice-accrual/internal/domain"
	"invoice-accrual/internal/usecase"
)

func TestItemTaxTotal(t *testing.T) {
	item := domain.LineItem{Taxes: []domain.ItemTax{
		{Total: d("12.50")},
		{Total: d("2.50")},
	}}
	assertDecimal(t, d("15.00"), usecase.ItemTaxTotal(item))
	assertDecimal(t, d("0"), usecase.ItemTaxTotal(domain.LineItem{}))
}

func TestItemTotalWithTax(t *testing.T) {
	item := domain.LineItem{Price: d("80.00"), Taxes: []domain.ItemTax{{Total: d("20.00")}}}
	assertDecimal(t, d("100.00"), usecase.ItemTotalWithTax(item))
}

func TestAccurateCartTax(t *testing.T) {
	tests := []struct {
		name     string
		reported string
		wantErr  bool
	}{
		{name: "exact match", reported: "25.00"},
		{name: "within tolerance", reported: "25.005"},
		{name: "at tolerance boundary is fatal", reported: "25.01", wantErr: true},
		{name: "beyond tolerance", reported: "26.00", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := orderSE()
			order.CartTax = d(tt.reported)

			got, err := usecase.AccurateCartTax(order)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, &domain.ReconciliationError{Kind: domain.ErrTaxMismatch}))
				return
			}
			require.NoError(t, err)
			assertDecimal(t, d("25.00"), got)
		})
	}
}

func TestAccurateTotal(t *testing.T) {
	tests := []struct {
		name     string
		reported string
		wantErr  bool
	}{
		{name: "exact match", reported: "125.00"},
		{name: "at tolerance boundary passes", reported: "125.001"},
		{name: "just beyond tolerance", reported: "125.002", wantErr: true},
		{name: "off by a whole unit", reported: "126.00", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := orderSE()
			order.Total = d(tt.reported)

			got, err := usecase.AccurateTotal(order)
			if tt.wantErr {
				require.Error(t, err)
				var recErr *domain.ReconciliationError
				require.True(t, errors.As(err, &recErr))
				assert.Equal(t, domain.ErrTotalMismatch, recErr.Kind)
				assertDecimal(t, d("125.00"), recErr.Expected)
				return
			}
			require.NoError(t, err)
			assertDecimal(t, d("125.00"), got)
		})
	}
}

func TestAccurateTotal_IncludesQuantityAndShipping(t *testing.T) {
	order := orderSE()
	order.LineItems[0].Quantity = 3
	order.LineItems[0].Taxes = []domain.ItemTax{{Total: d("75.00")}}
	order.ShippingTotal = d("12.00")
	order.ShippingTax = d("3.00")
	// 3*100 + 75 + 12 + 3
	order.Total = d("390.00")

	got, err := usecase.AccurateTotal(order)
	require.NoError(t, err)
	assertDecimal(t, d("390.00"), got)
}

func TestTotalItemsTax(t *testing.T) {
	order := orderSE()
	order.LineItems = append(order.LineItems, domain.LineItem{
		Taxes: []domain.ItemTax{{Total: d("5.00")}},
	})
	assertDecimal(t, d("30.00"), usecase.TotalItemsTax(order))
}
