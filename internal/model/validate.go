package model

// Validate checks structural rules that do not require store access.
// Referential checks (bank exists, account exists) belong to the store.
func (b Bank) Validate() []Issue {
	var issues []Issue
	if b.Name == "" {
		issues = append(issues, blocking("name", "bank name is required"))
	}
	return issues
}

func (a BankAccount) Validate() []Issue {
	var issues []Issue
	if a.BankID == "" {
		issues = append(issues, blocking("bankId", "account must reference a bank"))
	}
	if a.Name == "" {
		issues = append(issues, blocking("name", "account name is required"))
	}
	switch a.AccountType {
	case AccountSavings, AccountCurrent, AccountCreditCard, AccountWallet:
	default:
		issues = append(issues, blocking("accountType", "unknown account type %q", a.AccountType))
	}
	if a.InitialBalance.IsNegative() && !a.IsCreditCard() {
		issues = append(issues, warning("initialBalance", "negative initial balance on non-credit-card account"))
	}
	return issues
}

func (t Transaction) Validate() []Issue {
	var issues []Issue
	switch t.Kind {
	case KindTransfer:
		if t.FromAccountID == "" || t.ToAccountID == "" {
			issues = append(issues, blocking("accountId", "transfer needs both fromAccountId and toAccountId"))
		}
		if t.FromAccountID != "" && t.FromAccountID == t.ToAccountID {
			issues = append(issues, blocking("toAccountId", "transfer source and destination are the same account"))
		}
	case KindIncome, KindExpense, KindSavings:
		if t.AccountID == "" {
			issues = append(issues, blocking("accountId", "transaction must reference an account"))
		}
	default:
		issues = append(issues, blocking("kind", "unknown transaction kind %q", t.Kind))
	}
	if t.Amount.IsNegative() {
		issues = append(issues, blocking("amount", "amount must not be negative"))
	}
	if t.Date.IsZero() {
		issues = append(issues, blocking("date", "date is required"))
	}
	if t.EMIID != "" && t.RecurringTemplateID != "" {
		issues = append(issues, blocking("emiId", "transaction cannot be tagged with both a plan and a template"))
	}
	return issues
}

func (p InstallmentPlan) Validate() []Issue {
	var issues []Issue
	if p.Name == "" {
		issues = append(issues, blocking("name", "plan name is required"))
	}
	if p.Kind != KindExpense && p.Kind != KindSavings {
		issues = append(issues, blocking("kind", "installment plan kind must be expense or savings, got %q", p.Kind))
	}
	if p.AccountID == "" {
		issues = append(issues, blocking("accountId", "plan must reference an account"))
	}
	if p.Amount.IsNegative() {
		issues = append(issues, blocking("amount", "amount must not be negative"))
	}
	if p.Frequency != FreqMonthly && p.Frequency != FreqQuarterly {
		issues = append(issues, blocking("frequency", "installment plans support monthly or quarterly, got %q", p.Frequency))
	}
	if p.StartDate.IsZero() || p.EndDate.IsZero() {
		issues = append(issues, blocking("startDate", "plans are fixed-term: startDate and endDate are required"))
	}
	if !p.EndDate.IsZero() && p.EndDate.Before(p.StartDate) {
		issues = append(issues, blocking("endDate", "endDate precedes startDate"))
	}
	if p.TotalInstallments < 1 {
		issues = append(issues, blocking("totalInstallments", "at least one installment is required"))
	}
	if p.CompletedInstallments < 0 || p.CompletedInstallments > p.TotalInstallments {
		issues = append(issues, blocking("completedInstallments", "completed installments %d outside 0..%d", p.CompletedInstallments, p.TotalInstallments))
	}
	return issues
}

func (t RecurringTemplate) Validate() []Issue {
	var issues []Issue
	if t.Name == "" {
		issues = append(issues, blocking("name", "template name is required"))
	}
	if t.Kind != KindIncome && t.Kind != KindExpense && t.Kind != KindSavings {
		issues = append(issues, blocking("kind", "template kind must be income, expense, or savings, got %q", t.Kind))
	}
	if t.AccountID == "" {
		issues = append(issues, blocking("accountId", "template must reference an account"))
	}
	if t.Amount.IsNegative() {
		issues = append(issues, blocking("amount", "amount must not be negative"))
	}
	switch t.Frequency {
	case FreqWeekly, FreqMonthly, FreqQuarterly, FreqYearly, FreqCustom:
	default:
		issues = append(issues, blocking("frequency", "unknown frequency %q", t.Frequency))
	}
	if t.StartDate.IsZero() {
		issues = append(issues, blocking("startDate", "startDate is required"))
	}
	if t.EndDate != nil && t.EndDate.Before(t.StartDate) {
		issues = append(issues, blocking("endDate", "endDate precedes startDate"))
	}
	return issues
}
