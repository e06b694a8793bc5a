// Package schedule generates ledger transactions from installment plans and
// recurring templates, exactly once per (source, due date) pair.
package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/fintrack-dev/fintrack/internal/model"
	"github.com/fintrack-dev/fintrack/internal/store"
)

// Generator walks active plans and templates and creates any transaction
// whose due date has arrived. Safe to run repeatedly: the store's generated
// index guarantees at most one transaction per (source, due date).
type Generator struct {
	store *store.Store
	now   func() time.Time
}

// NewGenerator creates a Generator over the store.
func NewGenerator(st *store.Store) *Generator {
	return &Generator{store: st, now: time.Now}
}

// SetClock overrides "today". Used in tests.
func (g *Generator) SetClock(now func() time.Time) { g.now = now }

// Report summarizes one generation pass. A single source's failure is
// recorded and never aborts the rest of the pass.
type Report struct {
	Generated int
	Skipped   int
	Completed int // sources auto-transitioned to completed
	Errors    []string
}

// Run performs one generation pass over every plan and template.
func (g *Generator) Run(ctx context.Context) Report {
	var rep Report
	today := DateOnly(g.now())
	for _, p := range g.store.Plans() {
		g.runPlan(ctx, &rep, p, today)
	}
	for _, t := range g.store.Templates() {
		g.runTemplate(ctx, &rep, t, today)
	}
	return rep
}

func (g *Generator) runPlan(ctx context.Context, rep *Report, p model.InstallmentPlan, today time.Time) {
	if p.Status != model.ScheduleActive || p.Exhausted() {
		return
	}
	due := NextPlanDue(p)
	if due.After(today) {
		return
	}
	if g.store.HasGenerated(p.ID, due) {
		rep.Skipped++
		return
	}

	tx := model.Transaction{
		Kind:        p.Kind,
		AccountID:   p.AccountID,
		Amount:      p.Amount,
		Date:        due,
		Status:      model.StatusPending,
		Description: p.Name,
		EMIID:       p.ID,
		DueDate:     &due,
	}
	if _, _, err := g.store.CreateTransaction(ctx, tx); err != nil {
		rep.Errors = append(rep.Errors, fmt.Sprintf("plan %s (%s): %v", p.ID, p.Name, err))
		return
	}
	rep.Generated++

	err := g.store.UpdatePlan(ctx, p.ID, func(plan *model.InstallmentPlan) {
		plan.CompletedInstallments++
		if plan.CompletedInstallments >= plan.TotalInstallments {
			plan.Status = model.ScheduleCompleted
		}
	})
	if err != nil {
		rep.Errors = append(rep.Errors, fmt.Sprintf("plan %s (%s): advancing progress: %v", p.ID, p.Name, err))
		return
	}
	if p.CompletedInstallments+1 >= p.TotalInstallments {
		rep.Completed++
	}
}

func (g *Generator) runTemplate(ctx context.Context, rep *Report, t model.RecurringTemplate, today time.Time) {
	if t.Status != model.ScheduleActive {
		return
	}
	// A past end date forces completion. This is the single trigger point for
	// the auto-transition; status-dependent reads go through the generator.
	if t.Expired(today) {
		if err := g.completeTemplate(ctx, t); err != nil {
			rep.Errors = append(rep.Errors, fmt.Sprintf("template %s (%s): %v", t.ID, t.Name, err))
			return
		}
		rep.Completed++
		return
	}

	due := DateOnly(t.NextDueDate)
	if t.NextDueDate.IsZero() {
		due = DateOnly(t.StartDate)
	}
	if due.After(today) {
		return
	}
	if t.EndDate != nil && due.After(DateOnly(*t.EndDate)) {
		return
	}

	if g.store.HasGenerated(t.ID, due) {
		// The transaction exists but a previous pass failed before advancing
		// the cached due date. Advance it now so the template is not stuck.
		rep.Skipped++
		if err := g.advanceTemplate(ctx, t, due); err != nil {
			rep.Errors = append(rep.Errors, fmt.Sprintf("template %s (%s): %v", t.ID, t.Name, err))
		}
		return
	}

	tx := model.Transaction{
		Kind:                t.Kind,
		AccountID:           t.AccountID,
		Amount:              t.Amount,
		Date:                due,
		Status:              model.StatusPending,
		Description:         t.Name,
		RecurringTemplateID: t.ID,
		DueDate:             &due,
	}
	if _, _, err := g.store.CreateTransaction(ctx, tx); err != nil {
		rep.Errors = append(rep.Errors, fmt.Sprintf("template %s (%s): %v", t.ID, t.Name, err))
		return
	}
	rep.Generated++

	if err := g.advanceTemplate(ctx, t, due); err != nil {
		rep.Errors = append(rep.Errors, fmt.Sprintf("template %s (%s): advancing due date: %v", t.ID, t.Name, err))
	}
}

func (g *Generator) advanceTemplate(ctx context.Context, t model.RecurringTemplate, due time.Time) error {
	next := NextPeriod(due, t.Frequency)
	return g.store.UpdateTemplate(ctx, t.ID, func(tpl *model.RecurringTemplate) {
		tpl.NextDueDate = next
	})
}

func (g *Generator) completeTemplate(ctx context.Context, t model.RecurringTemplate) error {
	return g.store.UpdateTemplate(ctx, t.ID, func(tpl *model.RecurringTemplate) {
		tpl.Status = model.ScheduleCompleted
	})
}
