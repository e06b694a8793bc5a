package audit

import (
	"context"
	"fmt"

	"github.com/fintrack-dev/fintrack/internal/model"
	"github.com/fintrack-dev/fintrack/internal/store"
)

// PlanDrift reports an installment plan whose completed-installments counter
// disagrees with the number of transactions actually tagged with its id.
type PlanDrift struct {
	PlanID   string
	PlanName string
	Counter  int // stored CompletedInstallments
	Observed int // generated transactions found
}

// FindPlanDrift compares every plan's counter against the generated
// transactions in the store. Read-only.
func FindPlanDrift(st *store.Store) []PlanDrift {
	var out []PlanDrift
	for _, p := range st.Plans() {
		observed := st.GeneratedCount(p.ID)
		if observed != p.CompletedInstallments {
			out = append(out, PlanDrift{
				PlanID:   p.ID,
				PlanName: p.Name,
				Counter:  p.CompletedInstallments,
				Observed: observed,
			})
		}
	}
	return out
}

// RepairPlanProgress resets each drifted plan's counter to the observed
// transaction count, clamped to [0, TotalInstallments]. A plan whose repaired
// counter reaches the total is transitioned to completed.
func RepairPlanProgress(ctx context.Context, st *store.Store, drift []PlanDrift) CleanupResult {
	var res CleanupResult
	for _, d := range drift {
		err := st.UpdatePlan(ctx, d.PlanID, func(p *model.InstallmentPlan) {
			completed := d.Observed
			if completed < 0 {
				completed = 0
			}
			if completed > p.TotalInstallments {
				completed = p.TotalInstallments
			}
			p.CompletedInstallments = completed
			if p.Status == model.ScheduleActive && completed >= p.TotalInstallments {
				p.Status = model.ScheduleCompleted
			}
		})
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("plan %s: %v", d.PlanID, err))
			continue
		}
		res.Cleaned++
	}
	return res
}
