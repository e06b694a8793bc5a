package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fintrack-dev/fintrack/internal/oplog"
	"github.com/fintrack-dev/fintrack/internal/schedule"
)

func newGenerateCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate due transactions from plans and templates",
		Long: `Walks every active installment plan and recurring template and creates
any transaction whose due date has arrived. Running it again immediately is a
no-op: at most one transaction exists per (source, due date) pair.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context(), dir)
			if err != nil {
				return err
			}
			defer e.Close()

			gen := schedule.NewGenerator(e.st)
			rep := gen.Run(cmd.Context())
			e.log(oplog.Entry{
				Timestamp: time.Now(),
				Operation: "generate",
				Details:   "scheduled generation pass",
				Affected:  rep.Generated,
				Errors:    len(rep.Errors),
			})

			fmt.Printf("Generated %d transaction(s), skipped %d already-generated, completed %d schedule(s)\n",
				rep.Generated, rep.Skipped, rep.Completed)
			for _, msg := range rep.Errors {
				fmt.Printf("error: %s\n", msg)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "project directory")
	return cmd
}
