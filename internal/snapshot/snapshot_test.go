package snapshot

import (
	"context"
	"path/filepath"
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

// seededStore builds a store with one bank, one account, and one completed
// income transaction, returning the store and the account id.
func seededStore(t *testing.T, kv store.KV) (*store.Store, string) {
	t.Helper()
	ctx := context.Background()
	st := store.New(kv)

	bank, _, err := st.CreateBank(ctx, model.Bank{Name: "HDFC"})
	require.NoError(t, err)
	acct, _, err := st.CreateAccount(ctx, model.BankAccount{
		BankID:         bank.ID,
		Name:           "Checking",
		AccountType:    model.AccountSavings,
		InitialBalance: dec("1000"),
		CurrentBalance: dec("1000"),
	})
	require.NoError(t, err)
	_, _, err = st.CreateTransaction(ctx, model.Transaction{
		Kind:        model.KindIncome,
		AccountID:   acct.ID,
		Amount:      dec("500"),
		Date:        date(2025, 3, 1),
		Description: "Salary",
		Status:      model.StatusReceived,
	})
	require.NoError(t, err)
	require.NoError(t, st.SetSetting(ctx, "currency", "USD"))
	return st, acct.ID
}

func TestCapture_SplitsByKind(t *testing.T) {
	ctx := context.Background()
	st, acctID := seededStore(t, store.NewMemoryKV())

	_, _, err := st.CreateTransaction(ctx, model.Transaction{
		Kind: model.KindExpense, AccountID: acctID, Amount: dec("40"),
		Date: date(2025, 3, 2), Description: "Groceries", Status: model.StatusPending,
	})
	require.NoError(t, err)

	doc := Capture(st)
	assert.Equal(t, Version, doc.Version)
	assert.False(t, doc.Timestamp.IsZero())
	assert.Len(t, doc.Banks, 1)
	assert.Len(t, doc.Accounts, 1)
	assert.Len(t, doc.IncomeTransactions, 1)
	assert.Len(t, doc.ExpenseTransactions, 1)
	assert.Empty(t, doc.SavingsTransactions)
	assert.Equal(t, "USD", doc.Settings["currency"])
}

func TestApply_ReplaceRoundTrip(t *testing.T) {
	ctx := context.Background()
	src, _ := seededStore(t, store.NewMemoryKV())
	doc := Capture(src)

	dst := store.New(store.NewMemoryKV())
	res, err := Apply(ctx, dst, doc, ModeReplace)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Inserted, "bank + account + transaction")

	assert.Equal(t, src.Banks(), dst.Banks())
	assert.Equal(t, src.Accounts(), dst.Accounts())
	assert.Equal(t, src.Transactions(), dst.Transactions())
	assert.Equal(t, src.Settings(), dst.Settings())
}

func TestApply_ReplaceDiscardsExistingState(t *testing.T) {
	ctx := context.Background()
	src, _ := seededStore(t, store.NewMemoryKV())
	doc := Capture(src)

	dst, _ := seededStore(t, store.NewMemoryKV())
	oldBankID := dst.Banks()[0].ID

	_, err := Apply(ctx, dst, doc, ModeReplace)
	require.NoError(t, err)

	_, ok := dst.Bank(oldBankID)
	assert.False(t, ok, "pre-restore records are gone after replace")
	assert.Len(t, dst.Banks(), 1)
}

func TestApply_MergeSkipsExistingIDs(t *testing.T) {
	ctx := context.Background()
	st, acctID := seededStore(t, store.NewMemoryKV())
	doc := Capture(st)

	// Add one transaction the store does not have yet.
	doc.ExpenseTransactions = append(doc.ExpenseTransactions, model.Transaction{
		ID: "tx-new", AccountID: acctID, Amount: dec("25"),
		Date: date(2025, 3, 5), Description: "Coffee", Status: model.StatusPaid,
	})

	res, err := Apply(ctx, st, doc, ModeMerge)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Inserted)
	assert.Equal(t, 4, res.Skipped, "bank, account, income tx, currency setting")

	_, ok := st.Transaction("tx-new")
	assert.True(t, ok)
	assert.Len(t, st.Transactions(), 2)
}

func TestApply_RejectsInvalidDocument(t *testing.T) {
	ctx := context.Background()
	st, _ := seededStore(t, store.NewMemoryKV())
	before := Capture(st)

	doc := Capture(st)
	doc.Version = "0"

	_, err := Apply(ctx, st, doc, ModeReplace)
	var invalid *InvalidDocumentError
	require.ErrorAs(t, err, &invalid)
	assert.NotEmpty(t, invalid.Issues)

	after := Capture(st)
	assert.Equal(t, before.Banks, after.Banks, "store untouched on validation failure")
	assert.Equal(t, before.IncomeTransactions, after.IncomeTransactions)
}

func TestApply_UnknownMode(t *testing.T) {
	st := store.New(store.NewMemoryKV())
	_, err := Apply(context.Background(), st, Capture(st), Mode("upsert"))
	assert.Error(t, err)
}

// flakyKV fails Set for one specific key, letting a restore fail partway
// through while the rollback (which never touches that key) still succeeds.
type flakyKV struct {
	*store.MemoryKV
	failKey string
}

func (f *flakyKV) Set(ctx context.Context, key string, value []byte) error {
	if key == f.failKey {
		return assert.AnError
	}
	return f.MemoryKV.Set(ctx, key, value)
}

func TestApply_ReplaceRollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	kv := &flakyKV{MemoryKV: store.NewMemoryKV(), failKey: "transactions/poison"}
	st, _ := seededStore(t, kv)
	pre := Capture(st)

	incoming, inAcct := seededStore(t, store.NewMemoryKV())
	doc := Capture(incoming)
	doc.ExpenseTransactions = append(doc.ExpenseTransactions, model.Transaction{
		ID: "poison", AccountID: inAcct, Amount: dec("1"),
		Date: date(2025, 4, 1), Description: "boom", Status: model.StatusPaid,
	})

	_, err := Apply(ctx, st, doc, ModeReplace)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rolled back")

	post := Capture(st)
	assert.Equal(t, pre.Banks, post.Banks)
	assert.Equal(t, pre.Accounts, post.Accounts)
	assert.Equal(t, pre.IncomeTransactions, post.IncomeTransactions)
	assert.Equal(t, pre.Settings, post.Settings)

	_, ok := st.Bank(doc.Banks[0].ID)
	assert.False(t, ok, "partially applied incoming records are rolled back")
}

func TestValidate(t *testing.T) {
	base := func() Document {
		return Document{
			Version:   Version,
			Timestamp: date(2025, 6, 1),
			Banks:     []model.Bank{{ID: "b1", Name: "HDFC"}},
			Accounts:  []model.BankAccount{{ID: "a1", BankID: "b1", Name: "Checking"}},
		}
	}

	t.Run("clean document", func(t *testing.T) {
		assert.Empty(t, Validate(base()))
	})

	t.Run("version mismatch", func(t *testing.T) {
		doc := base()
		doc.Version = "2"
		issues := Validate(doc)
		require.Len(t, issues, 1)
		assert.Contains(t, issues[0].Message, "migration")
	})

	t.Run("missing version and timestamp", func(t *testing.T) {
		issues := Validate(Document{})
		assert.Len(t, issues, 2)
	})

	t.Run("duplicate id across collections", func(t *testing.T) {
		doc := base()
		doc.Accounts[0].ID = "b1"
		issues := Validate(doc)
		require.Len(t, issues, 1)
		assert.Contains(t, issues[0].Message, "already used")
	})

	t.Run("transfer missing a side", func(t *testing.T) {
		doc := base()
		doc.TransferTransactions = []model.Transaction{{
			ID: "tx1", FromAccountID: "a1", Amount: dec("10"), Date: date(2025, 6, 1),
		}}
		issues := Validate(doc)
		require.Len(t, issues, 1)
		assert.Contains(t, issues[0].Message, "toAccountId")
	})

	t.Run("negative amount", func(t *testing.T) {
		doc := base()
		doc.IncomeTransactions = []model.Transaction{{
			ID: "tx1", AccountID: "a1", Amount: dec("-5"), Date: date(2025, 6, 1),
		}}
		issues := Validate(doc)
		require.Len(t, issues, 1)
		assert.Contains(t, issues[0].Message, "negative")
	})

	t.Run("plan without installments", func(t *testing.T) {
		doc := base()
		doc.ExpenseEMIs = []model.InstallmentPlan{{
			ID: "p1", AccountID: "a1",
			StartDate: date(2025, 1, 1), EndDate: date(2025, 12, 1),
		}}
		issues := Validate(doc)
		require.Len(t, issues, 1)
		assert.Contains(t, issues[0].Message, "installment")
	})

	t.Run("template without start date", func(t *testing.T) {
		doc := base()
		doc.RecurringIncomes = []model.RecurringTemplate{{ID: "t1", AccountID: "a1"}}
		issues := Validate(doc)
		require.Len(t, issues, 1)
		assert.Contains(t, issues[0].Message, "startDate")
	})
}

func TestFile_RoundTrip(t *testing.T) {
	st, _ := seededStore(t, store.NewMemoryKV())
	doc := Capture(st)

	path := filepath.Join(t.TempDir(), "backup.json")
	require.NoError(t, WriteFile(path, doc))

	got, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, doc.Version, got.Version)
	assert.Equal(t, doc.Banks, got.Banks)
	assert.Equal(t, doc.IncomeTransactions, got.IncomeTransactions)
	assert.Equal(t, doc.Settings, got.Settings)
}
