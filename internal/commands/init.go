package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fintrack-dev/fintrack/internal/config"
	"github.com/fintrack-dev/fintrack/internal/gitops"
	"github.com/fintrack-dev/fintrack/internal/store"
)

func newInitCommand() *cobra.Command {
	var name string
	var gitInit bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new fintrack project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			return runInit(absDir, name, gitInit)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "profile name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().BoolVar(&gitInit, "git", false, "initialize a git repository for backups")

	return cmd
}

func runInit(dir, name string, gitInit bool) error {
	for _, d := range []string{"logs", "backups"} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	cfg := config.Default(name)
	if err := config.Save(filepath.Join(dir, "fintrack.yaml"), cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	// Create the data file with the schema in place.
	kv, err := store.OpenSQLite(filepath.Join(dir, cfg.Storage.DataFile))
	if err != nil {
		return fmt.Errorf("creating data file: %w", err)
	}
	if err := kv.Close(); err != nil {
		return fmt.Errorf("closing data file: %w", err)
	}

	gitignore := "logs/\n*.db\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	if gitInit && !gitops.IsRepo(dir) {
		if err := gitops.Init(dir); err != nil {
			return err
		}
	}

	fmt.Printf("Initialized fintrack project in %s\n", dir)
	return nil
}
