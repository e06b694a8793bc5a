package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fintrack.yaml")

	cfg := Default("Alice")
	cfg.Reconcile.Epsilon = "0.05"
	cfg.Git.AutoCommit = true
	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fintrack.yaml")
	require.NoError(t, os.WriteFile(path, []byte("profile: [unclosed"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	cfg := Default("Bob")
	assert.Equal(t, "Bob", cfg.Profile.Name)
	assert.Equal(t, "USD", cfg.Profile.Currency)
	assert.Equal(t, "fintrack.db", cfg.Storage.DataFile)
	assert.False(t, cfg.Git.AutoCommit)
}

func TestEpsilon(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"configured", "0.05", "0.05"},
		{"unset falls back", "", "0.01"},
		{"malformed falls back", "a lot", "0.01"},
		{"negative falls back", "-0.5", "0.01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.Reconcile.Epsilon = tt.raw
			assert.Equal(t, tt.want, cfg.Epsilon().String())
		})
	}
}
