// Package reconcile derives account balances from transaction history and
// repairs drift between stored and derived values.
package reconcile

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fintrack-dev/fintrack/internal/model"
	"github.com/fintrack-dev/fintrack/internal/store"
)

// DefaultEpsilon absorbs rounding noise carried in from historical data that
// was recorded with float arithmetic.
var DefaultEpsilon = decimal.RequireFromString("0.01")

// Discrepancy reports one account whose stored balance differs from the
// balance derived from its transaction history.
type Discrepancy struct {
	AccountID         string
	AccountName       string
	CurrentBalance    decimal.Decimal
	CalculatedBalance decimal.Decimal
	Difference        decimal.Decimal // calculated - current
}

// Derive computes an account's balance from its initial balance plus every
// qualifying transaction effect. Pending transactions never count. The sum is
// order-independent; transactions referencing other (or missing) accounts are
// simply never matched, so orphans degrade gracefully.
func Derive(st *store.Store, account model.BankAccount) decimal.Decimal {
	balance := account.InitialBalance
	for _, t := range st.Transactions() {
		if !t.Qualifies() {
			continue
		}
		switch t.Kind {
		case model.KindIncome:
			if t.AccountID == account.ID {
				balance = balance.Add(t.Amount)
			}
		case model.KindExpense, model.KindSavings:
			if t.AccountID == account.ID {
				balance = balance.Sub(t.Amount)
			}
		case model.KindTransfer:
			if t.FromAccountID == account.ID {
				balance = balance.Sub(t.Amount)
			}
			if t.ToAccountID == account.ID {
				balance = balance.Add(t.Amount)
			}
		}
	}
	return balance
}

// ValidateAll compares every account's stored balance against its derived
// balance and returns the accounts that differ by more than epsilon.
// Read-only; no side effects.
func ValidateAll(st *store.Store, epsilon decimal.Decimal) []Discrepancy {
	var out []Discrepancy
	for _, a := range st.Accounts() {
		calculated := Derive(st, a)
		diff := calculated.Sub(a.CurrentBalance)
		if diff.Abs().GreaterThan(epsilon) {
			out = append(out, Discrepancy{
				AccountID:         a.ID,
				AccountName:       a.Name,
				CurrentBalance:    a.CurrentBalance,
				CalculatedBalance: calculated,
				Difference:        diff,
			})
		}
	}
	return out
}

// Result summarizes a recalculation pass.
type Result struct {
	Updated int
	Errors  []string
}

// RecalculateAll overwrites every account's stored balance with the derived
// value. Idempotent: a second pass with no new transactions changes nothing.
// One account's persistence failure does not stop the rest.
func RecalculateAll(ctx context.Context, st *store.Store) Result {
	var res Result
	for _, a := range st.Accounts() {
		calculated := Derive(st, a)
		if calculated.Equal(a.CurrentBalance) {
			continue
		}
		err := st.UpdateAccount(ctx, a.ID, func(acct *model.BankAccount) {
			acct.CurrentBalance = calculated
		})
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("account %s: %v", a.ID, err))
			continue
		}
		res.Updated++
	}
	return res
}
