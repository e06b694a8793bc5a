package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fintrack-dev/fintrack/internal/config"
	"github.com/fintrack-dev/fintrack/internal/oplog"
	"github.com/fintrack-dev/fintrack/internal/store"
)

// env bundles the loaded config and hydrated store a command operates on.
type env struct {
	root string
	cfg  *config.Config
	kv   *store.SQLiteKV
	st   *store.Store
}

// openEnv loads fintrack.yaml from dir, opens the data file, and hydrates the
// store.
func openEnv(ctx context.Context, dir string) (*env, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg, err := config.Load(filepath.Join(root, "fintrack.yaml"))
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	kv, err := store.OpenSQLite(filepath.Join(root, cfg.Storage.DataFile))
	if err != nil {
		return nil, fmt.Errorf("opening data file: %w", err)
	}

	st := store.New(kv)
	if err := st.Load(ctx); err != nil {
		_ = kv.Close()
		return nil, fmt.Errorf("hydrating store: %w", err)
	}

	return &env{root: root, cfg: cfg, kv: kv, st: st}, nil
}

func (e *env) Close() error {
	return e.kv.Close()
}

// log appends an operation row, warning instead of failing the command when
// the log cannot be written.
func (e *env) log(entry oplog.Entry) {
	if err := oplog.Append(e.root, []oplog.Entry{entry}); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to write oplog: %v\n", err)
	}
}
