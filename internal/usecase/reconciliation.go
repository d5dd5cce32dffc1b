package usecase

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"invoice-accrual/internal/domain"
)

// Metadata keys under which the order source reports identifiers assigned
// by the bookkeeping system.
const (
	invoiceNumberMetaKey  = "_invoice_number"
	customerNumberMetaKey = "_customer_number"
)

// Config holds the engine settings that are policy rather than input data.
type Config struct {
	// TargetCurrency is the single ledger currency all amounts are
	// converted into.
	TargetCurrency string
	// Period is the accounting period tag stamped on each accrual.
	Period string
	// Simplify merges same-account rows before balance verification.
	Simplify bool
	// BankFeesAccount is the clearing account debited for processor fees.
	BankFeesAccount int
	// PrimaryAccounts sort first within each side when simplifying.
	PrimaryAccounts []int
}

// Reconciler runs the full pipeline for one order: totals validation,
// jurisdiction classification, row building, optional simplification,
// balance verification, and fee augmentation. It holds only immutable
// configuration, so one Reconciler may serve concurrent batch workers.
type Reconciler struct {
	accounts *domain.AccountDirectory
	catalog  *domain.CouponCatalog
	cfg      Config
	logger   *slog.Logger
}

// NewReconciler creates a Reconciler over a validated account directory.
func NewReconciler(accounts *domain.AccountDirectory, catalog *domain.CouponCatalog, cfg Config, logger *slog.Logger) (*Reconciler, error) {
	if err := accounts.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	if catalog == nil {
		catalog = &domain.CouponCatalog{}
	}
	return &Reconciler{accounts: accounts, catalog: catalog, cfg: cfg, logger: logger}, nil
}

// Reconcile verifies one order against the supplied conversion rate and
// produces its accrual and invoice projection. Failures are reported inside
// the result; no partial accrual is ever returned as valid.
func (r *Reconciler) Reconcile(order *domain.Order, rate decimal.Decimal) *domain.VerificationResult {
	result := domain.NewVerificationResult(order.ID, rate)

	accrual, data, err := r.buildAccrual(order, rate)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	invoice, err := BuildInvoice(order, rate, r.cfg.TargetCurrency, data.CustomerNumber)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.Accrual = accrual
	result.Invoice = invoice
	return result
}

func (r *Reconciler) buildAccrual(order *domain.Order, rate decimal.Decimal) (*domain.InvoiceAccrual, *AccrualData, error) {
	data, err := NewAccrualData(order, r.accounts, rate, r.catalog)
	if err != nil {
		return nil, nil, err
	}
	data.Period = r.cfg.Period
	if raw, ok := order.FindMeta(invoiceNumberMetaKey); ok {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			data.InvoiceNumber = n
		}
	}
	if raw, ok := order.FindMeta(customerNumberMetaKey); ok {
		data.CustomerNumber = raw
	}

	accrual, err := BuildAccrual(data)
	if err != nil {
		return nil, nil, err
	}

	if r.cfg.Simplify {
		if err := Simplify(accrual, r.cfg.PrimaryAccounts); err != nil {
			return nil, nil, err
		}
	}
	if err := VerifyBalance(accrual); err != nil {
		return nil, nil, err
	}
	// The fee pair is self-balancing, so the invariant verified above
	// still holds afterwards.
	if err := AddPaymentFee(accrual, data, r.cfg.BankFeesAccount); err != nil {
		return nil, nil, err
	}
	if err := VerifyBalance(accrual); err != nil {
		return nil, nil, err
	}
	return accrual, data, nil
}

// ReconcileBatch fetches all orders from a source, resolves each order's
// conversion rate, and reconciles them independently. One bad order never
// aborts the batch: its result carries the error and the loop moves on.
func (r *Reconciler) ReconcileBatch(ctx context.Context, orders OrderSource, rates RateSource) ([]*domain.VerificationResult, error) {
	fetched, err := orders.GetOrders(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]*domain.VerificationResult, 0, len(fetched))
	for i := range fetched {
		order := &fetched[i]

		rate, err := rates.GetRate(ctx, order.Currency, rateDate(order))
		if err != nil {
			result := domain.NewVerificationResult(order.ID, decimal.Zero)
			result.Error = err.Error()
			results = append(results, result)
			r.logger.Warn("currency rate lookup failed",
				slog.Int64("order_id", order.ID),
				slog.String("currency", order.Currency),
				slog.String("error", err.Error()))
			continue
		}

		result := r.Reconcile(order, rate)
		if !result.OK() {
			r.logger.Warn("order verification failed",
				slog.Int64("order_id", order.ID),
				slog.String("error", result.Error))
		} else {
			r.logger.Info("order verified",
				slog.Int64("order_id", order.ID),
				slog.Int("rows", len(result.Accrual.Rows)))
		}
		results = append(results, result)
	}
	return results, nil
}

// rateDate picks the date the conversion rate should be resolved for.
func rateDate(order *domain.Order) time.Time {
	if order.DatePaid != nil {
		return *order.DatePaid
	}
	if order.DateCompleted != nil {
		return *order.DateCompleted
	}
	return time.Time{}
}
