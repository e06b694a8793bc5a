package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bank is a financial institution that accounts belong to.
type Bank struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AccountType classifies a bank account.
type AccountType string

const (
	AccountSavings    AccountType = "savings"
	AccountCurrent    AccountType = "current"
	AccountCreditCard AccountType = "credit_card"
	AccountWallet     AccountType = "wallet"
)

// BankAccount is a single account held at a bank. CurrentBalance is the only
// signed monetary field in the model; InitialBalance is set at creation and
// never touched by reconciliation.
type BankAccount struct {
	ID                 string           `json:"id"`
	BankID             string           `json:"bankId"`
	Name               string           `json:"name"`
	AccountType        AccountType      `json:"accountType"`
	CurrentBalance     decimal.Decimal  `json:"currentBalance"`
	InitialBalance     decimal.Decimal  `json:"initialBalance"`
	CreditLimit        *decimal.Decimal `json:"creditLimit,omitempty"`
	OutstandingBalance *decimal.Decimal `json:"outstandingBalance,omitempty"`
	StatementDate      *time.Time       `json:"statementDate,omitempty"`
	DueDate            *time.Time       `json:"dueDate,omitempty"`
	CreatedAt          time.Time        `json:"createdAt"`
	UpdatedAt          time.Time        `json:"updatedAt"`
}

// IsCreditCard reports whether negative balances are expected for the account.
func (a BankAccount) IsCreditCard() bool {
	return a.AccountType == AccountCreditCard
}
