package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TxKind discriminates the transaction union. Conversion and reconciliation
// switch on this field rather than probing for field presence.
type TxKind string

const (
	KindIncome   TxKind = "income"
	KindExpense  TxKind = "expense"
	KindSavings  TxKind = "savings"
	KindTransfer TxKind = "transfer"
)

// TxStatus is the lifecycle state of a transaction. Each kind has exactly one
// terminal status; only terminal transactions affect balances.
type TxStatus string

const (
	StatusPending   TxStatus = "pending"
	StatusReceived  TxStatus = "received"  // income
	StatusPaid      TxStatus = "paid"      // expense
	StatusCompleted TxStatus = "completed" // savings, transfer
)

// TerminalStatus returns the settled status for a transaction kind.
func TerminalStatus(kind TxKind) TxStatus {
	switch kind {
	case KindIncome:
		return StatusReceived
	case KindExpense:
		return StatusPaid
	default:
		return StatusCompleted
	}
}

// Transaction is a single ledger movement. Transfers use FromAccountID and
// ToAccountID; every other kind uses AccountID. EMIID and RecurringTemplateID
// are provenance tags set by the scheduled generator, never ownership links.
type Transaction struct {
	ID                  string          `json:"id"`
	Kind                TxKind          `json:"kind"`
	AccountID           string          `json:"accountId,omitempty"`
	FromAccountID       string          `json:"fromAccountId,omitempty"`
	ToAccountID         string          `json:"toAccountId,omitempty"`
	Amount              decimal.Decimal `json:"amount"`
	Date                time.Time       `json:"date"`
	Status              TxStatus        `json:"status"`
	Description         string          `json:"description,omitempty"`
	Notes               string          `json:"notes,omitempty"`
	EMIID               string          `json:"emiId,omitempty"`
	RecurringTemplateID string          `json:"recurringTemplateId,omitempty"`
	DueDate             *time.Time      `json:"dueDate,omitempty"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`
}

// Qualifies reports whether the transaction is settled and therefore counts
// toward account balances.
func (t Transaction) Qualifies() bool {
	return t.Status == TerminalStatus(t.Kind)
}

// SourceID returns the id of the plan or template that generated the
// transaction, or "" for manually entered ones.
func (t Transaction) SourceID() string {
	if t.EMIID != "" {
		return t.EMIID
	}
	return t.RecurringTemplateID
}
