package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fintrack-dev/fintrack/internal/oplog"
	"github.com/fintrack-dev/fintrack/internal/reconcile"
)

func newBalancesCommand() *cobra.Command {
	balancesCmd := &cobra.Command{
		Use:   "balances",
		Short: "Validate or repair account balances",
	}
	balancesCmd.AddCommand(newBalancesValidateCommand())
	balancesCmd.AddCommand(newBalancesRecalcCommand())
	return balancesCmd
}

func newBalancesValidateCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Report accounts whose stored balance differs from history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context(), dir)
			if err != nil {
				return err
			}
			defer e.Close()

			discrepancies := reconcile.ValidateAll(e.st, e.cfg.Epsilon())
			if len(discrepancies) == 0 {
				fmt.Println("All account balances match transaction history.")
				return nil
			}
			for _, d := range discrepancies {
				fmt.Printf("%s (%s): stored %s, calculated %s, difference %s\n",
					d.AccountName, d.AccountID,
					d.CurrentBalance.StringFixed(2),
					d.CalculatedBalance.StringFixed(2),
					d.Difference.StringFixed(2))
			}
			fmt.Printf("%d account(s) out of balance\n", len(discrepancies))
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "project directory")
	return cmd
}

func newBalancesRecalcCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "recalc",
		Short: "Overwrite stored balances with values derived from history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context(), dir)
			if err != nil {
				return err
			}
			defer e.Close()

			res := reconcile.RecalculateAll(cmd.Context(), e.st)
			e.log(oplog.Entry{
				Timestamp: time.Now(),
				Operation: "recalculate",
				Details:   "balance recalculation",
				Affected:  res.Updated,
				Errors:    len(res.Errors),
			})

			fmt.Printf("Updated %d account balance(s)\n", res.Updated)
			for _, msg := range res.Errors {
				fmt.Printf("error: %s\n", msg)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "project directory")
	return cmd
}
