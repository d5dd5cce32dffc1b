package usecase_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoice-accrual/internal/domain"
	"invoice-accrual/internal/usecase"
)

func TestIsInsideEU(t *testing.T) {
	assert.True(t, usecase.IsInsideEU("SE"))
	assert.True(t, usecase.IsInsideEU("se"))
	assert.True(t, usecase.IsInsideEU("De"))
	assert.False(t, usecase.IsInsideEU("US"))
	assert.False(t, usecase.IsInsideEU("GB"))
	assert.False(t, usecase.IsInsideEU("NO"))
	assert.False(t, usecase.IsInsideEU(""))
}

func TestContainsNoReducedRate(t *testing.T) {
	tests := []struct {
		name    string
		items   []domain.LineItem
		want    bool
		wantErr bool
	}{
		{
			name:  "all standard",
			items: []domain.LineItem{{TaxClass: domain.TaxClassStandard}, {TaxClass: ""}},
			want:  true,
		},
		{
			name:  "one reduced",
			items: []domain.LineItem{{TaxClass: domain.TaxClassStandard}, {TaxClass: domain.TaxClassReduced}},
			want:  false,
		},
		{
			name:  "empty order",
			items: nil,
			want:  true,
		},
		{
			name:    "unrecognized tag is fatal",
			items:   []domain.LineItem{{Name: "Sale item", TaxClass: "on-sale"}},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := usecase.ContainsNoReducedRate(tt.items)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, &domain.ReconciliationError{Kind: domain.ErrUnknownTaxClass}))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOnlyReducedRate(t *testing.T) {
	got, err := usecase.OnlyReducedRate([]domain.LineItem{
		{TaxClass: domain.TaxClassReduced},
		{TaxClass: domain.TaxClassReduced},
	})
	require.NoError(t, err)
	assert.True(t, got)

	got, err = usecase.OnlyReducedRate([]domain.LineItem{
		{TaxClass: domain.TaxClassReduced},
		{TaxClass: ""},
	})
	require.NoError(t, err)
	assert.False(t, got)
}

func TestResolvePaymentMethod(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		want    string
		wantErr bool
	}{
		{name: "plain stripe", method: "stripe", want: usecase.PaymentMethodStripe},
		{name: "stripe variant", method: "stripe_ideal", want: usecase.PaymentMethodStripe},
		{name: "stripe uppercase", method: "Stripe", want: usecase.PaymentMethodStripe},
		{name: "plain paypal", method: "paypal", want: usecase.PaymentMethodPayPal},
		{name: "express checkout paypal", method: "ppec_paypal", want: usecase.PaymentMethodPayPal},
		{name: "empty needs manual bookkeeping", method: "", wantErr: true},
		{name: "unknown processor", method: "klarna", wantErr: true},
		{name: "paypal prefix does not match", method: "paypal_later", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := &domain.Order{ID: 1, PaymentMethod: tt.method}
			got, err := usecase.ResolvePaymentMethod(order)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, &domain.ReconciliationError{Kind: domain.ErrUnknownPaymentMethod}))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
