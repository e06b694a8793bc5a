package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Frequency is the period between scheduled transactions. Installment plans
// support only monthly and quarterly; templates support the full set.
type Frequency string

const (
	FreqWeekly    Frequency = "weekly"
	FreqMonthly   Frequency = "monthly"
	FreqQuarterly Frequency = "quarterly"
	FreqYearly    Frequency = "yearly"
	FreqCustom    Frequency = "custom"
)

// ScheduleStatus is the lifecycle state shared by plans and templates.
// Active and Paused toggle by user action; Completed is terminal.
type ScheduleStatus string

const (
	ScheduleActive    ScheduleStatus = "active"
	SchedulePaused    ScheduleStatus = "paused"
	ScheduleCompleted ScheduleStatus = "completed"
)

// InstallmentPlan is a fixed-term schedule (EMI) with a known installment
// count. Kind is KindExpense or KindSavings. CompletedInstallments tracks how
// many transactions the generator has produced for the plan.
type InstallmentPlan struct {
	ID                    string          `json:"id"`
	Name                  string          `json:"name"`
	Kind                  TxKind          `json:"kind"`
	AccountID             string          `json:"accountId"`
	Amount                decimal.Decimal `json:"amount"`
	StartDate             time.Time       `json:"startDate"`
	EndDate               time.Time       `json:"endDate"`
	Frequency             Frequency       `json:"frequency"`
	Status                ScheduleStatus  `json:"status"`
	TotalInstallments     int             `json:"totalInstallments"`
	CompletedInstallments int             `json:"completedInstallments"`
	DeductionDate         *time.Time      `json:"deductionDate,omitempty"`
	Notes                 string          `json:"notes,omitempty"`
	CreatedAt             time.Time       `json:"createdAt"`
	UpdatedAt             time.Time       `json:"updatedAt"`
}

// Exhausted reports whether every installment has been generated.
func (p InstallmentPlan) Exhausted() bool {
	return p.CompletedInstallments >= p.TotalInstallments
}

// RecurringTemplate is an open-ended periodic schedule. Kind is KindIncome,
// KindExpense, or KindSavings. NextDueDate is a cached value the generator
// advances after each pass.
type RecurringTemplate struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Kind        TxKind          `json:"kind"`
	AccountID   string          `json:"accountId"`
	Amount      decimal.Decimal `json:"amount"`
	StartDate   time.Time       `json:"startDate"`
	EndDate     *time.Time      `json:"endDate,omitempty"`
	Frequency   Frequency       `json:"frequency"`
	Status      ScheduleStatus  `json:"status"`
	NextDueDate time.Time       `json:"nextDueDate"`
	Notes       string          `json:"notes,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Expired reports whether the template's optional end date lies strictly
// before the given day.
func (t RecurringTemplate) Expired(today time.Time) bool {
	return t.EndDate != nil && t.EndDate.Before(today)
}
