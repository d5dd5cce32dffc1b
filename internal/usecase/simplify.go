package usecase

import (
	"sort"

	"github.com/shopspring/decimal"

	"invoice-accrual/internal/domain"
)

// groupByAccount merges rows of a single side by account number, summing
// amounts. First-seen order and the first row's memo are retained.
func groupByAccount(rows []domain.LedgerRow) []domain.LedgerRow {
	var (
		order  []int
		merged = make(map[int]domain.LedgerRow)
	)
	for _, r := range rows {
		existing, ok := merged[r.Account]
		if !ok {
			order = append(order, r.Account)
			merged[r.Account] = r
			continue
		}
		existing.Debit = existing.Debit.Add(r.Debit)
		existing.Credit = existing.Credit.Add(r.Credit)
		merged[r.Account] = existing
	}
	out := make([]domain.LedgerRow, 0, len(order))
	for _, account := range order {
		out = append(out, merged[account])
	}
	return out
}

// sideSum sums one side of a set of rows without the corruption check; the
// rows here were already partitioned by Simplify.
func sideSum(rows []domain.LedgerRow, credit bool) decimal.Decimal {
	total := decimal.Zero
	for _, r := range rows {
		if credit {
			total = total.Add(r.Credit)
		} else {
			total = total.Add(r.Debit)
		}
	}
	return total
}

// Simplify merges same-account rows on each side of an accrual, preserving
// the balance invariant. The post-condition is asserted, not assumed: a
// grouping bug that drops a row surfaces as UnbalancedLedger here rather
// than as a wrong ledger entry downstream.
//
// primaryAccounts, when non-empty, sort first within each side — a pure
// presentation concern for the main receivables and fee-clearing accounts.
func Simplify(accrual *domain.InvoiceAccrual, primaryAccounts []int) error {
	var creditRows, debitRows []domain.LedgerRow
	for _, r := range accrual.Rows {
		if r.Debit.IsPositive() && r.Credit.IsPositive() {
			return domain.NewError(domain.ErrUnbalancedLedger,
				"row on account %d carries both debit %s and credit %s", r.Account, r.Debit, r.Credit)
		}
		if r.Credit.IsPositive() {
			creditRows = append(creditRows, r)
		} else if r.Debit.IsPositive() {
			debitRows = append(debitRows, r)
		}
	}

	creditBefore := sideSum(creditRows, true)
	debitBefore := sideSum(debitRows, false)

	creditRows = groupByAccount(creditRows)
	debitRows = groupByAccount(debitRows)

	if diff := sideSum(creditRows, true).Sub(creditBefore).Abs(); diff.GreaterThan(mergeEpsilon) {
		return domain.NewMismatchError(domain.ErrUnbalancedLedger, creditBefore, sideSum(creditRows, true),
			"credit total changed while merging rows by account")
	}
	if diff := sideSum(debitRows, false).Sub(debitBefore).Abs(); diff.GreaterThan(mergeEpsilon) {
		return domain.NewMismatchError(domain.ErrUnbalancedLedger, debitBefore, sideSum(debitRows, false),
			"debit total changed while merging rows by account")
	}

	if len(primaryAccounts) > 0 {
		sortPrimaryFirst(creditRows, primaryAccounts)
		sortPrimaryFirst(debitRows, primaryAccounts)
	}

	accrual.Rows = append(debitRows, creditRows...)
	return nil
}

// sortPrimaryFirst stably moves designated accounts to the front of a side,
// in the order they appear in primaryAccounts.
func sortPrimaryFirst(rows []domain.LedgerRow, primaryAccounts []int) {
	rank := func(account int) int {
		for i, p := range primaryAccounts {
			if account == p {
				return i
			}
		}
		return len(primaryAccounts)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rank(rows[i].Account) < rank(rows[j].Account)
	})
}

// VerifyBalance asserts that the credit and debit sides of an accrual agree
// within epsilon. Run after the build and again after simplification.
func VerifyBalance(accrual *domain.InvoiceAccrual) error {
	credit, err := domain.TotalCredit(accrual.Rows)
	if err != nil {
		return err
	}
	debit, err := domain.TotalDebit(accrual.Rows)
	if err != nil {
		return err
	}
	if diff := credit.Sub(debit).Abs(); diff.GreaterThanOrEqual(balanceEpsilon) {
		return domain.NewMismatchError(domain.ErrUnbalancedLedger, credit, debit,
			"total debit does not match total credit")
	}
	return nil
}
