package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fintrack-dev/fintrack/internal/config"
)

func TestRunInit(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, runInit(dir, "Alice", false))

	for _, d := range []string{"logs", "backups"} {
		info, err := os.Stat(filepath.Join(dir, d))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}

	cfg, err := config.Load(filepath.Join(dir, "fintrack.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "Alice", cfg.Profile.Name)
	assert.Equal(t, "fintrack.db", cfg.Storage.DataFile)

	_, err = os.Stat(filepath.Join(dir, "fintrack.db"))
	assert.NoError(t, err, "data file is created with the schema in place")

	data, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "*.db")
}

func TestInitCommand_RequiresName(t *testing.T) {
	cmd := newInitCommand()
	cmd.SetArgs([]string{t.TempDir()})
	assert.Error(t, cmd.Execute())
}
