package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"invoice-accrual/internal/domain"
)

// OrderSource supplies the completed orders to reconcile. The engine
// depends on this interface, not on a concrete order-system client.
//
//go:generate mockgen -destination=mocks/mock_sources.go -source=interface.go OrderSource,RateSource
type OrderSource interface {
	GetOrders(ctx context.Context) ([]domain.Order, error)
}

// RateSource supplies the pre-resolved conversion rate from an order's
// currency into the target ledger currency at a given date.
type RateSource interface {
	GetRate(ctx context.Context, currency string, date time.Time) (decimal.Decimal, error)
}
