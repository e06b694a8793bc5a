// Package convert transforms between the two schedule representations:
// fixed-installment plans and open-ended recurring templates. Conversions are
// pure shape transforms; the store orchestration (replace old, create new,
// re-point transactions) is the caller's job.
package convert

import (
	"errors"
	"fmt"
	"time"

	"github.com/fintrack-dev/fintrack/internal/model"
	"github.com/fintrack-dev/fintrack/internal/schedule"
)

// ErrKindNotConvertible is returned for templates whose kind has no
// installment-plan equivalent (income).
var ErrKindNotConvertible = errors.New("template kind has no installment-plan equivalent")

// TemplateResult is a plan converted to template shape, plus notes about
// anything the conversion dropped.
type TemplateResult struct {
	Template model.RecurringTemplate
	Notes    []string
}

// PlanResult is a template converted to plan shape, plus notes about any
// lossy mapping the caller must surface to the user.
type PlanResult struct {
	Plan  model.InstallmentPlan
	Notes []string
}

// PlanToTemplate converts an installment plan into an open-ended template.
// Name, amount, account, frequency, status, and notes carry over; the
// template's next due date is seeded from the plan's current progress.
// Installment counters are dropped. The source plan is never mutated.
func PlanToTemplate(p model.InstallmentPlan) TemplateResult {
	end := p.EndDate
	tpl := model.RecurringTemplate{
		Name:        p.Name,
		Kind:        p.Kind,
		AccountID:   p.AccountID,
		Amount:      p.Amount,
		StartDate:   p.StartDate,
		EndDate:     &end,
		Frequency:   p.Frequency,
		Status:      p.Status,
		NextDueDate: schedule.NextPlanDue(p),
		Notes:       p.Notes,
	}
	notes := []string{
		fmt.Sprintf("installment progress (%d of %d) is dropped; the template tracks no occurrence count",
			p.CompletedInstallments, p.TotalInstallments),
	}
	return TemplateResult{Template: tpl, Notes: notes}
}

// TemplateToPlan converts a recurring template into a fixed-term plan. A
// template with no end date gets one synthesized 365 days after its start.
// Weekly, yearly, and custom frequencies map to the closest plan frequency;
// each lossy mapping is surfaced in the result's notes. The source template
// is never mutated.
func TemplateToPlan(t model.RecurringTemplate) (PlanResult, error) {
	if t.Kind != model.KindExpense && t.Kind != model.KindSavings {
		return PlanResult{}, fmt.Errorf("kind %q: %w", t.Kind, ErrKindNotConvertible)
	}

	var notes []string
	end := schedule.DateOnly(t.StartDate).AddDate(0, 0, 365)
	if t.EndDate != nil {
		end = schedule.DateOnly(*t.EndDate)
	} else {
		notes = append(notes, fmt.Sprintf("template has no end date; synthesized %s (start + 365 days)", end.Format("2006-01-02")))
	}

	freq := t.Frequency
	switch t.Frequency {
	case model.FreqWeekly:
		freq = model.FreqMonthly
		notes = append(notes, "weekly frequency is not supported by plans; mapped to monthly")
	case model.FreqYearly:
		freq = model.FreqQuarterly
		notes = append(notes, "yearly frequency is not supported by plans; mapped to quarterly")
	case model.FreqCustom:
		freq = model.FreqMonthly
		notes = append(notes, "custom frequency is not supported by plans; mapped to monthly")
	}

	plan := model.InstallmentPlan{
		Name:              t.Name,
		Kind:              t.Kind,
		AccountID:         t.AccountID,
		Amount:            t.Amount,
		StartDate:         t.StartDate,
		EndDate:           end,
		Frequency:         freq,
		Status:            t.Status,
		TotalInstallments: countInstallments(t, end, freq),
		Notes:             t.Notes,
	}
	return PlanResult{Plan: plan, Notes: notes}, nil
}

// countInstallments counts the whole periods between the start date and the
// resolved end date at the plan frequency, with a minimum of one.
func countInstallments(t model.RecurringTemplate, end time.Time, freq model.Frequency) int {
	start := schedule.DateOnly(t.StartDate)
	step := schedule.StepMonths(freq)
	n := 0
	for k := 0; ; k++ {
		due := schedule.AddMonths(start, k*step)
		if due.After(end) {
			break
		}
		n++
	}
	if n < 1 {
		n = 1
	}
	return n
}
