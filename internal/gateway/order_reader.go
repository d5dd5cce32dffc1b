package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"invoice-accrual/internal/domain"
)

// JSONOrderSource implements the OrderSource interface over a local file
// holding an array of orders in the order source's JSON representation.
type JSONOrderSource struct {
	path string
}

// NewJSONOrderSource creates a source reading from the given file.
func NewJSONOrderSource(path string) *JSONOrderSource {
	return &JSONOrderSource{path: path}
}

// GetOrders reads and parses the order file.
func (s *JSONOrderSource) GetOrders(ctx context.Context) ([]domain.Order, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open order file %s: %w", s.path, err)
	}

	var orders []domain.Order
	if err := json.Unmarshal(raw, &orders); err != nil {
		return nil, fmt.Errorf("failed to parse orders from %s: %w", s.path, err)
	}
	return orders, nil
}

// StaticRateSource implements the RateSource interface with one fixed
// conversion rate, for runs where the rate was resolved out of band.
type StaticRateSource struct {
	rate decimal.Decimal
}

// NewStaticRateSource creates a source that always returns rate.
func NewStaticRateSource(rate decimal.Decimal) *StaticRateSource {
	return &StaticRateSource{rate: rate}
}

// GetRate returns the fixed rate regardless of currency and date.
func (s *StaticRateSource) GetRate(ctx context.Context, currency string, date time.Time) (decimal.Decimal, error) {
	return s.rate, nil
}
