// Package snapshot implements the backup file contract and the gate that
// validates and applies full-data snapshots with rollback.
package snapshot

import (
	"time"

	"github.com/fintrack-dev/fintrack/internal/model"
	"github.com/fintrack-dev/fintrack/internal/store"
)

// Version is the backup document version this build reads and writes. A
// document with any other version needs migration before the gate accepts it.
const Version = "1"

// Document is the full-data backup contract: one serialized copy of every
// entity collection, with transactions and schedules split by kind.
type Document struct {
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`

	Banks    []model.Bank        `json:"banks"`
	Accounts []model.BankAccount `json:"accounts"`

	IncomeTransactions   []model.Transaction `json:"incomeTransactions"`
	ExpenseTransactions  []model.Transaction `json:"expenseTransactions"`
	SavingsTransactions  []model.Transaction `json:"savingsTransactions"`
	TransferTransactions []model.Transaction `json:"transferTransactions"`

	ExpenseEMIs []model.InstallmentPlan `json:"expenseEMIs"`
	SavingsEMIs []model.InstallmentPlan `json:"savingsEMIs"`

	RecurringIncomes  []model.RecurringTemplate `json:"recurringIncomes"`
	RecurringExpenses []model.RecurringTemplate `json:"recurringExpenses"`
	RecurringSavings  []model.RecurringTemplate `json:"recurringSavings"`

	Settings map[string]string `json:"settings"`
}

// transactions returns every transaction in the document with its kind
// normalized to the collection it came from.
func (d Document) transactions() []model.Transaction {
	var out []model.Transaction
	for _, group := range []struct {
		kind model.TxKind
		txs  []model.Transaction
	}{
		{model.KindIncome, d.IncomeTransactions},
		{model.KindExpense, d.ExpenseTransactions},
		{model.KindSavings, d.SavingsTransactions},
		{model.KindTransfer, d.TransferTransactions},
	} {
		for _, t := range group.txs {
			t.Kind = group.kind
			out = append(out, t)
		}
	}
	return out
}

func (d Document) plans() []model.InstallmentPlan {
	var out []model.InstallmentPlan
	for _, p := range d.ExpenseEMIs {
		p.Kind = model.KindExpense
		out = append(out, p)
	}
	for _, p := range d.SavingsEMIs {
		p.Kind = model.KindSavings
		out = append(out, p)
	}
	return out
}

func (d Document) templates() []model.RecurringTemplate {
	var out []model.RecurringTemplate
	for _, group := range []struct {
		kind  model.TxKind
		tmpls []model.RecurringTemplate
	}{
		{model.KindIncome, d.RecurringIncomes},
		{model.KindExpense, d.RecurringExpenses},
		{model.KindSavings, d.RecurringSavings},
	} {
		for _, t := range group.tmpls {
			t.Kind = group.kind
			out = append(out, t)
		}
	}
	return out
}

// Capture exports the store's full current state as a backup document.
func Capture(st *store.Store) Document {
	doc := Document{
		Version:   Version,
		Timestamp: time.Now().UTC(),
		Banks:     st.Banks(),
		Accounts:  st.Accounts(),
		Settings:  st.Settings(),
	}
	for _, t := range st.Transactions() {
		switch t.Kind {
		case model.KindIncome:
			doc.IncomeTransactions = append(doc.IncomeTransactions, t)
		case model.KindExpense:
			doc.ExpenseTransactions = append(doc.ExpenseTransactions, t)
		case model.KindSavings:
			doc.SavingsTransactions = append(doc.SavingsTransactions, t)
		case model.KindTransfer:
			doc.TransferTransactions = append(doc.TransferTransactions, t)
		}
	}
	for _, p := range st.Plans() {
		if p.Kind == model.KindSavings {
			doc.SavingsEMIs = append(doc.SavingsEMIs, p)
		} else {
			doc.ExpenseEMIs = append(doc.ExpenseEMIs, p)
		}
	}
	for _, t := range st.Templates() {
		switch t.Kind {
		case model.KindIncome:
			doc.RecurringIncomes = append(doc.RecurringIncomes, t)
		case model.KindExpense:
			doc.RecurringExpenses = append(doc.RecurringExpenses, t)
		case model.KindSavings:
			doc.RecurringSavings = append(doc.RecurringSavings, t)
		}
	}
	return doc
}
