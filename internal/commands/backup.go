package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/fintrack-dev/fintrack/internal/gitops"
	"github.com/fintrack-dev/fintrack/internal/oplog"
	"github.com/fintrack-dev/fintrack/internal/snapshot"
)

func newBackupCommand() *cobra.Command {
	var dir string
	var commit bool

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export a full snapshot to the backups directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context(), dir)
			if err != nil {
				return err
			}
			defer e.Close()

			doc := snapshot.Capture(e.st)
			name := fmt.Sprintf("fintrack-backup-%s.json", doc.Timestamp.Format("20060102-150405"))
			path := filepath.Join(e.root, "backups", name)
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return fmt.Errorf("creating backups dir: %w", err)
			}
			if err := snapshot.WriteFile(path, doc); err != nil {
				return err
			}

			inserted := len(doc.Banks) + len(doc.Accounts) +
				len(doc.IncomeTransactions) + len(doc.ExpenseTransactions) +
				len(doc.SavingsTransactions) + len(doc.TransferTransactions) +
				len(doc.ExpenseEMIs) + len(doc.SavingsEMIs) +
				len(doc.RecurringIncomes) + len(doc.RecurringExpenses) + len(doc.RecurringSavings)
			e.log(oplog.Entry{
				Timestamp: time.Now(),
				Operation: "backup",
				Details:   name,
				Affected:  inserted,
			})
			fmt.Printf("Wrote %s (%d records)\n", path, inserted)

			if (commit || e.cfg.Git.AutoCommit) && gitops.IsRepo(e.root) {
				hash, err := gitops.CommitBackup(e.root, path,
					fmt.Sprintf("Backup %s", doc.Timestamp.Format("2006-01-02 15:04:05")),
					e.cfg.Git.AuthorName, e.cfg.Git.AuthorEmail)
				if err != nil {
					return err
				}
				fmt.Printf("Committed as %s\n", hash)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "project directory")
	cmd.Flags().BoolVar(&commit, "commit", false, "commit the backup file to git")
	return cmd
}
