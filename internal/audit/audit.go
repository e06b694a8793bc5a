// Package audit walks the data graph for broken references and soft
// inconsistencies. Scans are read-only; repairs are explicit, separate calls.
package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/fintrack-dev/fintrack/internal/model"
	"github.com/fintrack-dev/fintrack/internal/store"
)

// OrphanReport lists records whose foreign references do not resolve,
// per category.
type OrphanReport struct {
	IncomeTransactions   []string
	ExpenseTransactions  []string
	SavingsTransactions  []string
	TransferTransactions []string
	Accounts             []string
	Plans                []string
	Templates            []string
}

// Total returns the overall orphan count.
func (r OrphanReport) Total() int {
	return len(r.IncomeTransactions) + len(r.ExpenseTransactions) +
		len(r.SavingsTransactions) + len(r.TransferTransactions) +
		len(r.Accounts) + len(r.Plans) + len(r.Templates)
}

// TransactionIDs returns the orphaned transaction ids across all four kinds.
// Only these are eligible for cleanup.
func (r OrphanReport) TransactionIDs() []string {
	var out []string
	out = append(out, r.IncomeTransactions...)
	out = append(out, r.ExpenseTransactions...)
	out = append(out, r.SavingsTransactions...)
	out = append(out, r.TransferTransactions...)
	return out
}

// FindOrphans computes, read-only, every record whose account or bank
// reference is missing: transactions (either side of a transfer counts),
// accounts without banks, plans and templates without accounts.
func FindOrphans(st *store.Store) OrphanReport {
	var rep OrphanReport

	for _, t := range st.Transactions() {
		orphaned := false
		if t.Kind == model.KindTransfer {
			_, fromOK := st.Account(t.FromAccountID)
			_, toOK := st.Account(t.ToAccountID)
			orphaned = !fromOK || !toOK
		} else {
			_, ok := st.Account(t.AccountID)
			orphaned = !ok
		}
		if !orphaned {
			continue
		}
		switch t.Kind {
		case model.KindIncome:
			rep.IncomeTransactions = append(rep.IncomeTransactions, t.ID)
		case model.KindExpense:
			rep.ExpenseTransactions = append(rep.ExpenseTransactions, t.ID)
		case model.KindSavings:
			rep.SavingsTransactions = append(rep.SavingsTransactions, t.ID)
		case model.KindTransfer:
			rep.TransferTransactions = append(rep.TransferTransactions, t.ID)
		}
	}

	for _, a := range st.Accounts() {
		if _, ok := st.Bank(a.BankID); !ok {
			rep.Accounts = append(rep.Accounts, a.ID)
		}
	}
	for _, p := range st.Plans() {
		if _, ok := st.Account(p.AccountID); !ok {
			rep.Plans = append(rep.Plans, p.ID)
		}
	}
	for _, t := range st.Templates() {
		if _, ok := st.Account(t.AccountID); !ok {
			rep.Templates = append(rep.Templates, t.ID)
		}
	}
	return rep
}

// CleanupResult reports a cleanup pass.
type CleanupResult struct {
	Cleaned int
	Errors  []string
}

// Cleanup deletes the orphaned transactions named in the report. Orphaned
// accounts, plans, and templates are never deleted here: their recreation
// context is ambiguous and they are left for user review. One record's
// failure does not block the rest.
func Cleanup(ctx context.Context, st *store.Store, rep OrphanReport) CleanupResult {
	var res CleanupResult
	for _, txID := range rep.TransactionIDs() {
		if err := st.DeleteTransaction(ctx, txID); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("transaction %s: %v", txID, err))
			continue
		}
		res.Cleaned++
	}
	return res
}

// Warning flags a soft inconsistency for user attention. Never auto-repaired.
type Warning struct {
	Category string
	RecordID string
	Message  string
}

// futureHorizon is how far ahead a transaction date is considered implausible.
const futureHorizon = 365 * 24 * time.Hour

// CheckInconsistencies flags issues that do not break referential integrity:
// negative balances on non-credit-card accounts, transactions dated
// implausibly far in the future, and probable duplicates.
func CheckInconsistencies(st *store.Store, now time.Time) []Warning {
	var out []Warning

	for _, a := range st.Accounts() {
		if a.CurrentBalance.IsNegative() && !a.IsCreditCard() {
			out = append(out, Warning{
				Category: "negative-balance",
				RecordID: a.ID,
				Message:  fmt.Sprintf("account %q has negative balance %s", a.Name, a.CurrentBalance.StringFixed(2)),
			})
		}
	}

	horizon := now.Add(futureHorizon)
	seen := make(map[string]string)
	for _, t := range st.Transactions() {
		if t.Date.After(horizon) {
			out = append(out, Warning{
				Category: "future-dated",
				RecordID: t.ID,
				Message:  fmt.Sprintf("transaction dated %s is more than a year ahead", t.Date.Format("2006-01-02")),
			})
		}
		key := duplicateKey(t)
		if firstID, ok := seen[key]; ok {
			out = append(out, Warning{
				Category: "probable-duplicate",
				RecordID: t.ID,
				Message:  fmt.Sprintf("matches transaction %s on account, amount, date, and description", firstID),
			})
			continue
		}
		seen[key] = t.ID
	}
	return out
}

func duplicateKey(t model.Transaction) string {
	account := t.AccountID
	if t.Kind == model.KindTransfer {
		account = t.FromAccountID + ">" + t.ToAccountID
	}
	return fmt.Sprintf("%s|%s|%s|%s|%s", t.Kind, account, t.Amount.String(), t.Date.Format("2006-01-02"), t.Description)
}
