package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fintrack-dev/fintrack/internal/audit"
	"github.com/fintrack-dev/fintrack/internal/oplog"
)

func newAuditCommand() *cobra.Command {
	auditCmd := &cobra.Command{
		Use:   "audit",
		Short: "Find and repair referential-integrity problems",
	}
	auditCmd.AddCommand(newAuditScanCommand())
	auditCmd.AddCommand(newAuditCleanupCommand())
	auditCmd.AddCommand(newAuditCheckCommand())
	return auditCmd
}

func newAuditScanCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Report orphaned records and installment-count drift",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context(), dir)
			if err != nil {
				return err
			}
			defer e.Close()

			rep := audit.FindOrphans(e.st)
			printOrphanGroup("orphaned income transactions", rep.IncomeTransactions)
			printOrphanGroup("orphaned expense transactions", rep.ExpenseTransactions)
			printOrphanGroup("orphaned savings transactions", rep.SavingsTransactions)
			printOrphanGroup("orphaned transfer transactions", rep.TransferTransactions)
			printOrphanGroup("accounts with missing banks", rep.Accounts)
			printOrphanGroup("plans with missing accounts", rep.Plans)
			printOrphanGroup("templates with missing accounts", rep.Templates)
			fmt.Printf("total orphans: %d\n", rep.Total())

			drift := audit.FindPlanDrift(e.st)
			for _, d := range drift {
				fmt.Printf("drift: plan %q counter says %d installments, found %d generated transactions\n",
					d.PlanName, d.Counter, d.Observed)
			}
			if len(drift) > 0 {
				fmt.Println("run 'fintrack audit cleanup --repair-drift' to reset drifted counters")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "project directory")
	return cmd
}

func printOrphanGroup(label string, ids []string) {
	if len(ids) == 0 {
		return
	}
	fmt.Printf("%s (%d):\n", label, len(ids))
	for _, recordID := range ids {
		fmt.Printf("  %s\n", recordID)
	}
}

func newAuditCleanupCommand() *cobra.Command {
	var dir string
	var repairDrift bool

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete orphaned transactions",
		Long: `Deletes transactions whose account references no longer resolve.
Orphaned accounts, plans, and templates are never deleted automatically;
review them with 'fintrack audit scan' and fix them by hand.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context(), dir)
			if err != nil {
				return err
			}
			defer e.Close()

			rep := audit.FindOrphans(e.st)
			res := audit.Cleanup(cmd.Context(), e.st, rep)
			e.log(oplog.Entry{
				Timestamp: time.Now(),
				Operation: "cleanup",
				Details:   "orphaned transaction cleanup",
				Affected:  res.Cleaned,
				Errors:    len(res.Errors),
			})
			fmt.Printf("Deleted %d orphaned transaction(s)\n", res.Cleaned)
			for _, msg := range res.Errors {
				fmt.Printf("error: %s\n", msg)
			}

			if repairDrift {
				drift := audit.FindPlanDrift(e.st)
				repair := audit.RepairPlanProgress(cmd.Context(), e.st, drift)
				fmt.Printf("Repaired %d drifted plan counter(s)\n", repair.Cleaned)
				for _, msg := range repair.Errors {
					fmt.Printf("error: %s\n", msg)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "project directory")
	cmd.Flags().BoolVar(&repairDrift, "repair-drift", false, "reset drifted installment counters to observed counts")
	return cmd
}

func newAuditCheckCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Flag soft inconsistencies without changing anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context(), dir)
			if err != nil {
				return err
			}
			defer e.Close()

			warnings := audit.CheckInconsistencies(e.st, time.Now())
			if len(warnings) == 0 {
				fmt.Println("No inconsistencies found.")
				return nil
			}
			for _, w := range warnings {
				fmt.Printf("[%s] %s: %s\n", w.Category, w.RecordID, w.Message)
			}
			fmt.Printf("%d warning(s)\n", len(warnings))
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "project directory")
	return cmd
}
