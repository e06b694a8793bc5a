package audit

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fintrack-dev/fintrack/internal/model"
	"github.com/fintrack-dev/fintrack/internal/store"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seed(t *testing.T) (*store.Store, model.Bank, model.BankAccount) {
	t.Helper()
	ctx := context.Background()
	st := store.New(store.NewMemoryKV())

	bank, _, err := st.CreateBank(ctx, model.Bank{Name: "Test Bank"})
	require.NoError(t, err)
	acct, _, err := st.CreateAccount(ctx, model.BankAccount{
		BankID: bank.ID, Name: "Checking", AccountType: model.AccountCurrent,
		InitialBalance: dec("100"), CurrentBalance: dec("100"),
	})
	require.NoError(t, err)
	return st, bank, acct
}

// orphanFixture builds a store with one orphaned expense, one orphaned
// transfer, one orphaned plan, and an account with a missing bank.
func orphanFixture(t *testing.T) (*store.Store, model.BankAccount) {
	t.Helper()
	st, bank, acct := seed(t)
	ctx := context.Background()

	doomed, _, err := st.CreateAccount(ctx, model.BankAccount{
		BankID: bank.ID, Name: "Doomed", AccountType: model.AccountWallet,
		InitialBalance: dec("0"), CurrentBalance: dec("0"),
	})
	require.NoError(t, err)

	_, _, err = st.CreateTransaction(ctx, model.Transaction{
		Kind: model.KindExpense, AccountID: doomed.ID,
		Amount: dec("10"), Date: date(2025, 1, 1), Status: model.StatusPaid,
	})
	require.NoError(t, err)
	_, _, err = st.CreateTransaction(ctx, model.Transaction{
		Kind: model.KindTransfer, FromAccountID: doomed.ID, ToAccountID: acct.ID,
		Amount: dec("20"), Date: date(2025, 1, 2), Status: model.StatusCompleted,
	})
	require.NoError(t, err)
	_, _, err = st.CreatePlan(ctx, model.InstallmentPlan{
		Name: "Stale plan", Kind: model.KindExpense, AccountID: doomed.ID,
		Amount: dec("5"), StartDate: date(2025, 1, 1), EndDate: date(2025, 6, 1),
		Frequency: model.FreqMonthly, Status: model.ScheduleActive,
		TotalInstallments: 6,
	})
	require.NoError(t, err)

	// Healthy transaction that must survive cleanup.
	_, _, err = st.CreateTransaction(ctx, model.Transaction{
		Kind: model.KindIncome, AccountID: acct.ID,
		Amount: dec("30"), Date: date(2025, 1, 3), Status: model.StatusReceived,
	})
	require.NoError(t, err)

	require.NoError(t, st.DeleteAccount(ctx, doomed.ID))
	require.NoError(t, st.DeleteBank(ctx, bank.ID))
	return st, acct
}

func TestFindOrphans(t *testing.T) {
	st, _ := orphanFixture(t)

	rep := FindOrphans(st)
	assert.Len(t, rep.ExpenseTransactions, 1)
	assert.Len(t, rep.TransferTransactions, 1)
	assert.Len(t, rep.Plans, 1)
	assert.Len(t, rep.Accounts, 1, "account whose bank was deleted")
	assert.Empty(t, rep.IncomeTransactions)
	assert.Empty(t, rep.Templates)
	assert.Equal(t, 4, rep.Total())
}

func TestFindOrphans_CleanStore(t *testing.T) {
	st, _, _ := seed(t)
	rep := FindOrphans(st)
	assert.Zero(t, rep.Total())
}

func TestCleanup_DeletesOnlyTransactions(t *testing.T) {
	st, acct := orphanFixture(t)

	rep := FindOrphans(st)
	res := Cleanup(context.Background(), st, rep)
	assert.Equal(t, 2, res.Cleaned)
	assert.Empty(t, res.Errors)

	// Orphaned plan and account survive for user review.
	assert.Len(t, st.Plans(), 1)
	assert.Len(t, st.Accounts(), 1)

	// The healthy income transaction is untouched.
	txs := st.Transactions()
	require.Len(t, txs, 1)
	assert.Equal(t, model.KindIncome, txs[0].Kind)
	assert.Equal(t, acct.ID, txs[0].AccountID)
}

func TestCleanup_ContinuesOnError(t *testing.T) {
	st, _ := orphanFixture(t)

	rep := FindOrphans(st)
	// Poison the report with an id that no longer exists.
	rep.IncomeTransactions = append(rep.IncomeTransactions, "missing-tx")

	res := Cleanup(context.Background(), st, rep)
	assert.Equal(t, 2, res.Cleaned, "remaining orphans still deleted")
	assert.Len(t, res.Errors, 1)
}

func TestCheckInconsistencies(t *testing.T) {
	st, _, acct := seed(t)
	ctx := context.Background()
	now := date(2025, 6, 1)

	require.NoError(t, st.UpdateAccount(ctx, acct.ID, func(a *model.BankAccount) {
		a.CurrentBalance = dec("-50")
	}))
	_, _, err := st.CreateTransaction(ctx, model.Transaction{
		Kind: model.KindExpense, AccountID: acct.ID, Description: "Rent",
		Amount: dec("800"), Date: date(2025, 5, 1), Status: model.StatusPaid,
	})
	require.NoError(t, err)
	_, _, err = st.CreateTransaction(ctx, model.Transaction{
		Kind: model.KindExpense, AccountID: acct.ID, Description: "Rent",
		Amount: dec("800"), Date: date(2025, 5, 1), Status: model.StatusPending,
	})
	require.NoError(t, err)
	_, _, err = st.CreateTransaction(ctx, model.Transaction{
		Kind: model.KindIncome, AccountID: acct.ID, Description: "Windfall",
		Amount: dec("1"), Date: date(2027, 1, 1), Status: model.StatusPending,
	})
	require.NoError(t, err)

	warnings := CheckInconsistencies(st, now)

	categories := make(map[string]int)
	for _, w := range warnings {
		categories[w.Category]++
	}
	assert.Equal(t, 1, categories["negative-balance"])
	assert.Equal(t, 1, categories["probable-duplicate"])
	assert.Equal(t, 1, categories["future-dated"])
}

func TestCheckInconsistencies_CreditCardNegativeOK(t *testing.T) {
	st, bank, _ := seed(t)
	ctx := context.Background()

	_, _, err := st.CreateAccount(ctx, model.BankAccount{
		BankID: bank.ID, Name: "Card", AccountType: model.AccountCreditCard,
		InitialBalance: dec("0"), CurrentBalance: dec("-500"),
	})
	require.NoError(t, err)

	for _, w := range CheckInconsistencies(st, date(2025, 6, 1)) {
		assert.NotEqual(t, "negative-balance", w.Category)
	}
}

func TestPlanDrift_FindAndRepair(t *testing.T) {
	st, _, acct := seed(t)
	ctx := context.Background()

	plan, _, err := st.CreatePlan(ctx, model.InstallmentPlan{
		Name: "EMI", Kind: model.KindExpense, AccountID: acct.ID,
		Amount: dec("100"), StartDate: date(2025, 1, 1), EndDate: date(2025, 6, 1),
		Frequency: model.FreqMonthly, Status: model.ScheduleActive,
		TotalInstallments: 6, CompletedInstallments: 3,
	})
	require.NoError(t, err)

	// Only one generated transaction actually exists.
	due := date(2025, 1, 1)
	_, _, err = st.CreateTransaction(ctx, model.Transaction{
		Kind: model.KindExpense, AccountID: acct.ID,
		Amount: dec("100"), Date: due, Status: model.StatusPaid,
		EMIID: plan.ID, DueDate: &due,
	})
	require.NoError(t, err)

	drift := FindPlanDrift(st)
	require.Len(t, drift, 1)
	assert.Equal(t, 3, drift[0].Counter)
	assert.Equal(t, 1, drift[0].Observed)

	res := RepairPlanProgress(ctx, st, drift)
	assert.Equal(t, 1, res.Cleaned)
	assert.Empty(t, res.Errors)

	got, _ := st.Plan(plan.ID)
	assert.Equal(t, 1, got.CompletedInstallments)
	assert.Empty(t, FindPlanDrift(st))
}
