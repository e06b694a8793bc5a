package schedule

import (
	"time"

	"github.com/fintrack-dev/fintrack/internal/model"
)

// StepMonths returns the installment step for a frequency in months. Weekly
// and custom frequencies approximate to one month in installment math.
func StepMonths(f model.Frequency) int {
	switch f {
	case model.FreqQuarterly:
		return 3
	case model.FreqYearly:
		return 12
	default:
		return 1
	}
}

// AddMonths adds n months to t, clamping to the last day of the target month
// so that Jan 31 + 1 month lands on Feb 28/29 rather than rolling into March.
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	firstOfTarget := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	if d > lastDay {
		d = lastDay
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), d, 0, 0, 0, 0, t.Location())
}

// NextPlanDue returns the next due date for an installment plan: the explicit
// deduction-date override when set, otherwise the start date advanced by the
// number of completed installments.
func NextPlanDue(p model.InstallmentPlan) time.Time {
	if p.DeductionDate != nil {
		return DateOnly(*p.DeductionDate)
	}
	return AddMonths(DateOnly(p.StartDate), p.CompletedInstallments*StepMonths(p.Frequency))
}

// NextPeriod advances a due date by one frequency period. Weekly moves seven
// days; every other frequency moves in whole months.
func NextPeriod(t time.Time, f model.Frequency) time.Time {
	if f == model.FreqWeekly {
		return DateOnly(t).AddDate(0, 0, 7)
	}
	return AddMonths(DateOnly(t), StepMonths(f))
}

// DateOnly truncates a timestamp to midnight, keeping the location. Due-date
// comparisons and idempotency keys work at day precision.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
