package usecase_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoice-accrual/internal/domain"
	"invoice-accrual/internal/usecase"
	mock_usecase "invoice-accrual/internal/usecase/mocks"
)

func testConfig() usecase.Config {
	return usecase.Config{
		TargetCurrency:  "SEK",
		Period:          "MONTHLY",
		BankFeesAccount: 6570,
		PrimaryAccounts: []int{1580, 1780, 6570},
	}
}

func newTestReconciler(t *testing.T, cfg usecase.Config) *usecase.Reconciler {
	t.Helper()
	r, err := usecase.NewReconciler(testAccounts(), testCatalog(), cfg, slog.Default())
	require.NoError(t, err)
	return r
}

func TestNewReconciler_RejectsInvalidDirectory(t *testing.T) {
	accounts := testAccounts()
	pair := accounts.VAT["SE"]
	pair.Standard.Rate = d("1.5")
	accounts.VAT["SE"] = pair

	_, err := usecase.NewReconciler(accounts, testCatalog(), testConfig(), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, &domain.ReconciliationError{Kind: domain.ErrNoAccountConfigured}))
}

func TestReconcile_EUOrderEndToEnd(t *testing.T) {
	r := newTestReconciler(t, testConfig())

	result := r.Reconcile(orderSE(), d("1"))
	require.True(t, result.OK(), "unexpected error: %s", result.Error)
	assert.Equal(t, int64(1001), result.OrderID)
	assert.NotEqual(t, "", result.ID.String())

	accrual := result.Accrual
	require.Len(t, accrual.Rows, 5)
	assert.Equal(t, "MONTHLY", accrual.Period)
	assert.Equal(t, "Invoice for order id: 1001", accrual.Description)

	debit, err := domain.TotalDebit(accrual.Rows)
	require.NoError(t, err)
	credit, err := domain.TotalCredit(accrual.Rows)
	require.NoError(t, err)
	assertDecimal(t, d("130.00"), debit)
	assertDecimal(t, debit, credit)

	require.NotNil(t, result.Invoice)
	assert.Equal(t, "SEK", result.Invoice.Currency)
	require.Len(t, result.Invoice.Rows, 1)
}

func TestReconcile_ExportOrderEndToEnd(t *testing.T) {
	r := newTestReconciler(t, testConfig())

	result := r.Reconcile(orderUS(), d("1"))
	require.True(t, result.OK(), "unexpected error: %s", result.Error)

	debit, err := domain.TotalDebit(result.Accrual.Rows)
	require.NoError(t, err)
	credit, err := domain.TotalCredit(result.Accrual.Rows)
	require.NoError(t, err)
	assertDecimal(t, d("62.00"), debit)
	assertDecimal(t, debit, credit)
}

func TestReconcile_TotalMismatchProducesNoRows(t *testing.T) {
	r := newTestReconciler(t, testConfig())

	order := orderSE()
	order.Total = d("126.00") // off by 1.00, beyond tolerance

	result := r.Reconcile(order, d("1"))
	assert.False(t, result.OK())
	assert.Nil(t, result.Accrual)
	assert.Nil(t, result.Invoice)
	assert.Contains(t, result.Error, "TOTAL_MISMATCH")
}

func TestReconcile_UnknownTaxClassFailsBeforeRows(t *testing.T) {
	r := newTestReconciler(t, testConfig())

	order := orderSE()
	order.LineItems[0].TaxClass = "on-sale"

	result := r.Reconcile(order, d("1"))
	assert.False(t, result.OK())
	assert.Nil(t, result.Accrual)
	assert.Contains(t, result.Error, "UNKNOWN_TAX_CLASS")
}

func TestReconcile_SimplifyMergesBeforeFees(t *testing.T) {
	cfg := testConfig()
	cfg.Simplify = true
	r := newTestReconciler(t, cfg)

	order := orderSE()
	order.LineItems = []domain.LineItem{
		{Name: "A", SKU: "A", Price: d("60.00"), Quantity: 1, SubtotalTax: d("15.00"), Taxes: []domain.ItemTax{{Total: d("15.00")}}},
		{Name: "B", SKU: "B", Price: d("40.00"), Quantity: 1, SubtotalTax: d("10.00"), Taxes: []domain.ItemTax{{Total: d("10.00")}}},
	}

	result := r.Reconcile(order, d("1"))
	require.True(t, result.OK(), "unexpected error: %s", result.Error)

	// Two sales rows merged into one, two VAT rows merged into one, plus
	// the debit and the fee pair appended after simplification.
	require.Len(t, result.Accrual.Rows, 5)

	debit, err := domain.TotalDebit(result.Accrual.Rows)
	require.NoError(t, err)
	credit, err := domain.TotalCredit(result.Accrual.Rows)
	require.NoError(t, err)
	assertDecimal(t, debit, credit)
}

func TestReconcile_InvoiceNumberFromMetadata(t *testing.T) {
	r := newTestReconciler(t, testConfig())

	order := orderSE()
	order.MetaData = append(order.MetaData,
		domain.MetaData{Key: "_invoice_number", Value: "90210"},
		domain.MetaData{Key: "_customer_number", Value: "C-42"})

	result := r.Reconcile(order, d("1"))
	require.True(t, result.OK(), "unexpected error: %s", result.Error)
	assert.Equal(t, int64(90210), result.Accrual.InvoiceNumber)
	assert.Equal(t, "C-42", result.Invoice.CustomerNumber)
}

func TestReconcileBatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	good := orderSE()
	bad := orderSE()
	bad.ID = 1003
	bad.Total = d("200.00")

	orders := mock_usecase.NewMockOrderSource(ctrl)
	orders.EXPECT().GetOrders(gomock.Any()).Return([]domain.Order{*good, *bad}, nil)

	rates := mock_usecase.NewMockRateSource(ctrl)
	rates.EXPECT().GetRate(gomock.Any(), "EUR", gomock.Any()).Return(d("1"), nil).Times(2)

	r := newTestReconciler(t, testConfig())
	results, err := r.ReconcileBatch(context.Background(), orders, rates)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.True(t, results[0].OK())
	assert.False(t, results[1].OK())
	assert.Equal(t, int64(1003), results[1].OrderID)
	assert.Contains(t, results[1].Error, "TOTAL_MISMATCH")
}

func TestReconcileBatch_SourceFailureAborts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	orders := mock_usecase.NewMockOrderSource(ctrl)
	orders.EXPECT().GetOrders(gomock.Any()).Return(nil, errors.New("connection refused"))

	rates := mock_usecase.NewMockRateSource(ctrl)

	r := newTestReconciler(t, testConfig())
	_, err := r.ReconcileBatch(context.Background(), orders, rates)
	require.Error(t, err)
}

func TestReconcileBatch_RateFailureSkipsOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	orders := mock_usecase.NewMockOrderSource(ctrl)
	orders.EXPECT().GetOrders(gomock.Any()).Return([]domain.Order{*orderSE()}, nil)

	rates := mock_usecase.NewMockRateSource(ctrl)
	rates.EXPECT().GetRate(gomock.Any(), "EUR", gomock.Any()).
		Return(decimal.Zero, errors.New("rate service unavailable"))

	r := newTestReconciler(t, testConfig())
	results, err := r.ReconcileBatch(context.Background(), orders, rates)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].OK())
	assert.Contains(t, results[0].Error, "rate service unavailable")
}
