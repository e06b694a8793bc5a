package snapshot

import (
	"context"
	"fmt"

	"github.com/fintrack-dev/fintrack/internal/store"
)

// Mode selects how a snapshot is applied.
type Mode string

const (
	// ModeReplace clears every store and loads the snapshot verbatim.
	ModeReplace Mode = "replace"
	// ModeMerge inserts incoming records, skipping ids that already exist.
	ModeMerge Mode = "merge"
)

// ApplyResult summarizes an apply.
type ApplyResult struct {
	Inserted int
	Skipped  int // merge mode: incoming ids that already existed
}

// Apply validates the document and loads it into the store. Replace mode is
// all-or-nothing: the pre-apply state is captured first and restored if any
// step fails. Merge mode inserts record by record and reports the first
// failure; already-applied inserts stay (each is individually valid data).
func Apply(ctx context.Context, st *store.Store, doc Document, mode Mode) (ApplyResult, error) {
	if issues := Validate(doc); len(issues) > 0 {
		return ApplyResult{}, &InvalidDocumentError{Issues: issues}
	}

	switch mode {
	case ModeReplace:
		pre := Capture(st)
		res, err := load(ctx, st, doc, true)
		if err != nil {
			if _, rbErr := load(ctx, st, pre, true); rbErr != nil {
				return res, fmt.Errorf("restore failed: %v; rollback also failed: %w", err, rbErr)
			}
			return ApplyResult{}, fmt.Errorf("restore failed, previous state rolled back: %w", err)
		}
		return res, nil
	case ModeMerge:
		return merge(ctx, st, doc)
	default:
		return ApplyResult{}, fmt.Errorf("unknown apply mode %q", mode)
	}
}

// load clears the store (when replace is set) and inserts every record from
// the document verbatim.
func load(ctx context.Context, st *store.Store, doc Document, replace bool) (ApplyResult, error) {
	var res ApplyResult
	if replace {
		if err := st.Clear(ctx); err != nil {
			return res, err
		}
	}
	for _, b := range doc.Banks {
		if err := st.InsertBank(ctx, b); err != nil {
			return res, err
		}
		res.Inserted++
	}
	for _, a := range doc.Accounts {
		if err := st.InsertAccount(ctx, a); err != nil {
			return res, err
		}
		res.Inserted++
	}
	for _, t := range doc.transactions() {
		if err := st.InsertTransaction(ctx, t); err != nil {
			return res, err
		}
		res.Inserted++
	}
	for _, p := range doc.plans() {
		if err := st.InsertPlan(ctx, p); err != nil {
			return res, err
		}
		res.Inserted++
	}
	for _, t := range doc.templates() {
		if err := st.InsertTemplate(ctx, t); err != nil {
			return res, err
		}
		res.Inserted++
	}
	for k, v := range doc.Settings {
		if err := st.SetSetting(ctx, k, v); err != nil {
			return res, err
		}
	}
	return res, nil
}

func merge(ctx context.Context, st *store.Store, doc Document) (ApplyResult, error) {
	var res ApplyResult
	for _, b := range doc.Banks {
		if _, ok := st.Bank(b.ID); ok {
			res.Skipped++
			continue
		}
		if err := st.InsertBank(ctx, b); err != nil {
			return res, err
		}
		res.Inserted++
	}
	for _, a := range doc.Accounts {
		if _, ok := st.Account(a.ID); ok {
			res.Skipped++
			continue
		}
		if err := st.InsertAccount(ctx, a); err != nil {
			return res, err
		}
		res.Inserted++
	}
	for _, t := range doc.transactions() {
		if _, ok := st.Transaction(t.ID); ok {
			res.Skipped++
			continue
		}
		if err := st.InsertTransaction(ctx, t); err != nil {
			return res, err
		}
		res.Inserted++
	}
	for _, p := range doc.plans() {
		if _, ok := st.Plan(p.ID); ok {
			res.Skipped++
			continue
		}
		if err := st.InsertPlan(ctx, p); err != nil {
			return res, err
		}
		res.Inserted++
	}
	for _, t := range doc.templates() {
		if _, ok := st.Template(t.ID); ok {
			res.Skipped++
			continue
		}
		if err := st.InsertTemplate(ctx, t); err != nil {
			return res, err
		}
		res.Inserted++
	}
	for k, v := range doc.Settings {
		if _, ok := st.Setting(k); ok {
			res.Skipped++
			continue
		}
		if err := st.SetSetting(ctx, k, v); err != nil {
			return res, err
		}
	}
	return res, nil
}
