package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/fintrack-dev/fintrack/internal/id"
	"github.com/fintrack-dev/fintrack/internal/model"
)

// Collection prefixes used as KV key namespaces.
const (
	colBanks        = "banks"
	colAccounts     = "accounts"
	colTransactions = "transactions"
	colPlans        = "plans"
	colTemplates    = "templates"
	colSettings     = "settings"
)

// Store holds every entity collection in memory and mirrors each mutation to
// the KV. It is the single source of truth for the engine; one instance is
// constructed per running application and passed to each component explicitly.
type Store struct {
	kv  KV
	now func() time.Time

	banks        map[string]model.Bank
	accounts     map[string]model.BankAccount
	transactions map[string]model.Transaction
	plans        map[string]model.InstallmentPlan
	templates    map[string]model.RecurringTemplate
	settings     map[string]string

	// generated indexes transactions by (source id, due date) so the
	// scheduled generator's idempotency check is a constant-time lookup.
	generated map[string]string
}

// New creates an empty Store over the given KV. Call Load to hydrate.
func New(kv KV) *Store {
	return &Store{
		kv:           kv,
		now:          time.Now,
		banks:        make(map[string]model.Bank),
		accounts:     make(map[string]model.BankAccount),
		transactions: make(map[string]model.Transaction),
		plans:        make(map[string]model.InstallmentPlan),
		templates:    make(map[string]model.RecurringTemplate),
		settings:     make(map[string]string),
		generated:    make(map[string]string),
	}
}

// SetClock overrides the timestamp source. Used in tests.
func (s *Store) SetClock(now func() time.Time) { s.now = now }

// Load hydrates all collections from the KV and rebuilds the generated index.
func (s *Store) Load(ctx context.Context) error {
	var err error
	if s.banks, err = loadCollection[model.Bank](ctx, s.kv, colBanks); err != nil {
		return err
	}
	if s.accounts, err = loadCollection[model.BankAccount](ctx, s.kv, colAccounts); err != nil {
		return err
	}
	if s.transactions, err = loadCollection[model.Transaction](ctx, s.kv, colTransactions); err != nil {
		return err
	}
	if s.plans, err = loadCollection[model.InstallmentPlan](ctx, s.kv, colPlans); err != nil {
		return err
	}
	if s.templates, err = loadCollection[model.RecurringTemplate](ctx, s.kv, colTemplates); err != nil {
		return err
	}
	if s.settings, err = loadCollection[string](ctx, s.kv, colSettings); err != nil {
		return err
	}
	s.reindex()
	return nil
}

func (s *Store) reindex() {
	s.generated = make(map[string]string)
	for _, t := range s.transactions {
		s.index(t)
	}
}

func (s *Store) index(t model.Transaction) {
	if src := t.SourceID(); src != "" && t.DueDate != nil {
		s.generated[id.ProvenanceKey(src, *t.DueDate)] = t.ID
	}
}

func (s *Store) unindex(t model.Transaction) {
	if src := t.SourceID(); src != "" && t.DueDate != nil {
		delete(s.generated, id.ProvenanceKey(src, *t.DueDate))
	}
}

// HasGenerated reports whether a generated transaction already exists for the
// plan or template id at the given due date.
func (s *Store) HasGenerated(sourceID string, due time.Time) bool {
	_, ok := s.generated[id.ProvenanceKey(sourceID, due)]
	return ok
}

// GeneratedCount returns how many generated transactions carry the source id.
func (s *Store) GeneratedCount(sourceID string) int {
	n := 0
	for _, t := range s.transactions {
		if t.SourceID() == sourceID {
			n++
		}
	}
	return n
}

// Clear empties every collection, both in memory and in the KV. Used by the
// snapshot gate before a Replace apply.
func (s *Store) Clear(ctx context.Context) error {
	for prefix, keys := range map[string][]string{
		colBanks:        mapKeys(s.banks),
		colAccounts:     mapKeys(s.accounts),
		colTransactions: mapKeys(s.transactions),
		colPlans:        mapKeys(s.plans),
		colTemplates:    mapKeys(s.templates),
		colSettings:     mapKeys(s.settings),
	} {
		for _, k := range keys {
			if err := s.kv.Delete(ctx, prefix+"/"+k); err != nil {
				return fmt.Errorf("clearing %s: %w", prefix, err)
			}
		}
	}
	s.banks = make(map[string]model.Bank)
	s.accounts = make(map[string]model.BankAccount)
	s.transactions = make(map[string]model.Transaction)
	s.plans = make(map[string]model.InstallmentPlan)
	s.templates = make(map[string]model.RecurringTemplate)
	s.settings = make(map[string]string)
	s.generated = make(map[string]string)
	return nil
}

// ─── Banks ──────────────────────────────────────────────────────────────────

// CreateBank validates and stores a new bank. Warnings are returned alongside
// the created entity; blocking issues abort with a ValidationError.
func (s *Store) CreateBank(ctx context.Context, b model.Bank) (model.Bank, []model.Issue, error) {
	issues := b.Validate()
	if model.Blocking(issues) {
		return model.Bank{}, issues, &ValidationError{Issues: issues}
	}
	s.stampNew(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err := persist(ctx, s.kv, colBanks, b.ID, b, s.banks); err != nil {
		return model.Bank{}, issues, err
	}
	return b, issues, nil
}

// UpdateBank applies mutate to a copy of the bank and persists the result.
func (s *Store) UpdateBank(ctx context.Context, bankID string, mutate func(*model.Bank)) error {
	b, ok := s.banks[bankID]
	if !ok {
		return fmt.Errorf("bank %s: %w", bankID, ErrNotFound)
	}
	mutate(&b)
	if issues := b.Validate(); model.Blocking(issues) {
		return &ValidationError{Issues: issues}
	}
	b.UpdatedAt = s.now()
	return persist(ctx, s.kv, colBanks, b.ID, b, s.banks)
}

// DeleteBank removes a bank. Accounts referencing it are not cascaded; they
// become orphans for the integrity auditor to surface.
func (s *Store) DeleteBank(ctx context.Context, bankID string) error {
	return removeRecord(ctx, s.kv, colBanks, bankID, s.banks)
}

// Bank returns a bank by id.
func (s *Store) Bank(bankID string) (model.Bank, bool) {
	b, ok := s.banks[bankID]
	return b, ok
}

// Banks returns all banks ordered by id.
func (s *Store) Banks() []model.Bank {
	return sortedValues(s.banks, func(b model.Bank) string { return b.ID })
}

// ─── Accounts ───────────────────────────────────────────────────────────────

// CreateAccount validates the account and its bank reference, then stores it.
func (s *Store) CreateAccount(ctx context.Context, a model.BankAccount) (model.BankAccount, []model.Issue, error) {
	issues := a.Validate()
	if model.Blocking(issues) {
		return model.BankAccount{}, issues, &ValidationError{Issues: issues}
	}
	if _, ok := s.banks[a.BankID]; !ok {
		return model.BankAccount{}, issues, fmt.Errorf("bank %s: %w", a.BankID, ErrBankNotFound)
	}
	s.stampNew(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err := persist(ctx, s.kv, colAccounts, a.ID, a, s.accounts); err != nil {
		return model.BankAccount{}, issues, err
	}
	return a, issues, nil
}

// UpdateAccount applies mutate to a copy of the account and persists it.
// InitialBalance is restored if mutate changed it.
func (s *Store) UpdateAccount(ctx context.Context, accountID string, mutate func(*model.BankAccount)) error {
	a, ok := s.accounts[accountID]
	if !ok {
		return fmt.Errorf("account %s: %w", accountID, ErrNotFound)
	}
	initial := a.InitialBalance
	mutate(&a)
	a.InitialBalance = initial
	if issues := a.Validate(); model.Blocking(issues) {
		return &ValidationError{Issues: issues}
	}
	a.UpdatedAt = s.now()
	return persist(ctx, s.kv, colAccounts, a.ID, a, s.accounts)
}

// DeleteAccount removes an account without cascading to its transactions.
func (s *Store) DeleteAccount(ctx context.Context, accountID string) error {
	return removeRecord(ctx, s.kv, colAccounts, accountID, s.accounts)
}

// Account returns an account by id.
func (s *Store) Account(accountID string) (model.BankAccount, bool) {
	a, ok := s.accounts[accountID]
	return a, ok
}

// Accounts returns all accounts ordered by id.
func (s *Store) Accounts() []model.BankAccount {
	return sortedValues(s.accounts, func(a model.BankAccount) string { return a.ID })
}

// ─── Transactions ───────────────────────────────────────────────────────────

// CreateTransaction validates the transaction and its account reference(s),
// then stores it and maintains the generated index.
func (s *Store) CreateTransaction(ctx context.Context, t model.Transaction) (model.Transaction, []model.Issue, error) {
	issues := t.Validate()
	if model.Blocking(issues) {
		return model.Transaction{}, issues, &ValidationError{Issues: issues}
	}
	refs := []string{t.AccountID}
	if t.Kind == model.KindTransfer {
		refs = []string{t.FromAccountID, t.ToAccountID}
	}
	for _, ref := range refs {
		if _, ok := s.accounts[ref]; !ok {
			return model.Transaction{}, issues, fmt.Errorf("account %s: %w", ref, ErrAccountNotFound)
		}
	}
	s.stampNew(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err := persist(ctx, s.kv, colTransactions, t.ID, t, s.transactions); err != nil {
		return model.Transaction{}, issues, err
	}
	s.index(t)
	return t, issues, nil
}

// UpdateTransaction applies mutate to a copy of the transaction. The
// provenance index follows any due-date or tag change.
func (s *Store) UpdateTransaction(ctx context.Context, txID string, mutate func(*model.Transaction)) error {
	t, ok := s.transactions[txID]
	if !ok {
		return fmt.Errorf("transaction %s: %w", txID, ErrNotFound)
	}
	prev := t
	mutate(&t)
	if issues := t.Validate(); model.Blocking(issues) {
		return &ValidationError{Issues: issues}
	}
	t.UpdatedAt = s.now()
	if err := persist(ctx, s.kv, colTransactions, t.ID, t, s.transactions); err != nil {
		return err
	}
	s.unindex(prev)
	s.index(t)
	return nil
}

// DeleteTransaction removes a transaction and its index entry.
func (s *Store) DeleteTransaction(ctx context.Context, txID string) error {
	t, ok := s.transactions[txID]
	if !ok {
		return fmt.Errorf("transaction %s: %w", txID, ErrNotFound)
	}
	if err := removeRecord(ctx, s.kv, colTransactions, txID, s.transactions); err != nil {
		return err
	}
	s.unindex(t)
	return nil
}

// Transaction returns a transaction by id.
func (s *Store) Transaction(txID string) (model.Transaction, bool) {
	t, ok := s.transactions[txID]
	return t, ok
}

// Transactions returns all transactions ordered by id.
func (s *Store) Transactions() []model.Transaction {
	return sortedValues(s.transactions, func(t model.Transaction) string { return t.ID })
}

// ─── Installment plans ──────────────────────────────────────────────────────

// CreatePlan validates the plan and its account reference, then stores it.
func (s *Store) CreatePlan(ctx context.Context, p model.InstallmentPlan) (model.InstallmentPlan, []model.Issue, error) {
	issues := p.Validate()
	if model.Blocking(issues) {
		return model.InstallmentPlan{}, issues, &ValidationError{Issues: issues}
	}
	if _, ok := s.accounts[p.AccountID]; !ok {
		return model.InstallmentPlan{}, issues, fmt.Errorf("account %s: %w", p.AccountID, ErrAccountNotFound)
	}
	s.stampNew(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err := persist(ctx, s.kv, colPlans, p.ID, p, s.plans); err != nil {
		return model.InstallmentPlan{}, issues, err
	}
	return p, issues, nil
}

// UpdatePlan applies mutate to a copy of the plan and persists it.
func (s *Store) UpdatePlan(ctx context.Context, planID string, mutate func(*model.InstallmentPlan)) error {
	p, ok := s.plans[planID]
	if !ok {
		return fmt.Errorf("plan %s: %w", planID, ErrNotFound)
	}
	mutate(&p)
	if issues := p.Validate(); model.Blocking(issues) {
		return &ValidationError{Issues: issues}
	}
	p.UpdatedAt = s.now()
	return persist(ctx, s.kv, colPlans, p.ID, p, s.plans)
}

// DeletePlan removes a plan. Transactions tagged with it keep their tag.
func (s *Store) DeletePlan(ctx context.Context, planID string) error {
	return removeRecord(ctx, s.kv, colPlans, planID, s.plans)
}

// Plan returns an installment plan by id.
func (s *Store) Plan(planID string) (model.InstallmentPlan, bool) {
	p, ok := s.plans[planID]
	return p, ok
}

// Plans returns all installment plans ordered by id.
func (s *Store) Plans() []model.InstallmentPlan {
	return sortedValues(s.plans, func(p model.InstallmentPlan) string { return p.ID })
}

// ─── Recurring templates ────────────────────────────────────────────────────

// CreateTemplate validates the template and its account reference, then
// stores it. NextDueDate defaults to StartDate when unset.
func (s *Store) CreateTemplate(ctx context.Context, t model.RecurringTemplate) (model.RecurringTemplate, []model.Issue, error) {
	issues := t.Validate()
	if model.Blocking(issues) {
		return model.RecurringTemplate{}, issues, &ValidationError{Issues: issues}
	}
	if _, ok := s.accounts[t.AccountID]; !ok {
		return model.RecurringTemplate{}, issues, fmt.Errorf("account %s: %w", t.AccountID, ErrAccountNotFound)
	}
	if t.NextDueDate.IsZero() {
		t.NextDueDate = t.StartDate
	}
	s.stampNew(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err := persist(ctx, s.kv, colTemplates, t.ID, t, s.templates); err != nil {
		return model.RecurringTemplate{}, issues, err
	}
	return t, issues, nil
}

// UpdateTemplate applies mutate to a copy of the template and persists it.
func (s *Store) UpdateTemplate(ctx context.Context, templateID string, mutate func(*model.RecurringTemplate)) error {
	t, ok := s.templates[templateID]
	if !ok {
		return fmt.Errorf("template %s: %w", templateID, ErrNotFound)
	}
	mutate(&t)
	if issues := t.Validate(); model.Blocking(issues) {
		return &ValidationError{Issues: issues}
	}
	t.UpdatedAt = s.now()
	return persist(ctx, s.kv, colTemplates, t.ID, t, s.templates)
}

// DeleteTemplate removes a template. Transactions tagged with it keep their tag.
func (s *Store) DeleteTemplate(ctx context.Context, templateID string) error {
	return removeRecord(ctx, s.kv, colTemplates, templateID, s.templates)
}

// Template returns a recurring template by id.
func (s *Store) Template(templateID string) (model.RecurringTemplate, bool) {
	t, ok := s.templates[templateID]
	return t, ok
}

// Templates returns all recurring templates ordered by id.
func (s *Store) Templates() []model.RecurringTemplate {
	return sortedValues(s.templates, func(t model.RecurringTemplate) string { return t.ID })
}

// ─── Settings ───────────────────────────────────────────────────────────────

// SetSetting stores an opaque settings value.
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	return persist(ctx, s.kv, colSettings, key, value, s.settings)
}

// Setting returns a settings value.
func (s *Store) Setting(key string) (string, bool) {
	v, ok := s.settings[key]
	return v, ok
}

// Settings returns a copy of all settings.
func (s *Store) Settings() map[string]string {
	out := make(map[string]string, len(s.settings))
	for k, v := range s.settings {
		out[k] = v
	}
	return out
}

// ─── Verbatim inserts (snapshot gate) ───────────────────────────────────────

// Insert methods persist records exactly as given, keeping ids and
// timestamps. The snapshot gate validates the document before using them, so
// no per-record validation or foreign-key ordering applies here.

func (s *Store) InsertBank(ctx context.Context, b model.Bank) error {
	return persist(ctx, s.kv, colBanks, b.ID, b, s.banks)
}

func (s *Store) InsertAccount(ctx context.Context, a model.BankAccount) error {
	return persist(ctx, s.kv, colAccounts, a.ID, a, s.accounts)
}

func (s *Store) InsertTransaction(ctx context.Context, t model.Transaction) error {
	if err := persist(ctx, s.kv, colTransactions, t.ID, t, s.transactions); err != nil {
		return err
	}
	s.index(t)
	return nil
}

func (s *Store) InsertPlan(ctx context.Context, p model.InstallmentPlan) error {
	return persist(ctx, s.kv, colPlans, p.ID, p, s.plans)
}

func (s *Store) InsertTemplate(ctx context.Context, t model.RecurringTemplate) error {
	return persist(ctx, s.kv, colTemplates, t.ID, t, s.templates)
}

// ─── Helpers ────────────────────────────────────────────────────────────────

func (s *Store) stampNew(recordID *string, createdAt, updatedAt *time.Time) {
	if *recordID == "" {
		*recordID = id.New()
	}
	now := s.now()
	*createdAt = now
	*updatedAt = now
}

func persist[T any](ctx context.Context, kv KV, prefix, key string, v T, coll map[string]T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s/%s: %w", prefix, key, err)
	}
	if err := kv.Set(ctx, prefix+"/"+key, data); err != nil {
		return fmt.Errorf("persisting %s/%s: %w", prefix, key, err)
	}
	coll[key] = v
	return nil
}

func removeRecord[T any](ctx context.Context, kv KV, prefix, key string, coll map[string]T) error {
	if _, ok := coll[key]; !ok {
		return fmt.Errorf("%s/%s: %w", prefix, key, ErrNotFound)
	}
	if err := kv.Delete(ctx, prefix+"/"+key); err != nil {
		return fmt.Errorf("deleting %s/%s: %w", prefix, key, err)
	}
	delete(coll, key)
	return nil
}

func loadCollection[T any](ctx context.Context, kv KV, prefix string) (map[string]T, error) {
	raw, err := kv.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", prefix, err)
	}
	out := make(map[string]T, len(raw))
	for key, data := range raw {
		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", key, err)
		}
		out[key[len(prefix)+1:]] = v
	}
	return out, nil
}

func sortedValues[T any](coll map[string]T, key func(T) string) []T {
	out := make([]T, 0, len(coll))
	for _, v := range coll {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return key(out[i]) < key(out[j]) })
	return out
}

func mapKeys[T any](coll map[string]T) []string {
	out := make([]string, 0, len(coll))
	for k := range coll {
		out = append(out, k)
	}
	return out
}
