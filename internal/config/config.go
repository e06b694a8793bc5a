package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config represents the top-level fintrack.yaml configuration.
type Config struct {
	Profile   ProfileConfig   `yaml:"profile"`
	Storage   StorageConfig   `yaml:"storage"`
	Reconcile ReconcileConfig `yaml:"reconcile"`
	Git       GitConfig       `yaml:"git"`
}

// ProfileConfig identifies the ledger owner.
type ProfileConfig struct {
	Name     string `yaml:"name"`
	Currency string `yaml:"currency"`
}

// StorageConfig points at the SQLite data file, relative to the project root.
type StorageConfig struct {
	DataFile string `yaml:"data_file"`
}

// ReconcileConfig tunes balance validation.
type ReconcileConfig struct {
	// Epsilon is the largest stored-vs-derived difference treated as
	// rounding noise rather than a discrepancy.
	Epsilon string `yaml:"epsilon"`
}

// GitConfig controls auto-committing exported backups.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Epsilon parses the configured epsilon, falling back to 0.01 when unset or
// malformed.
func (c *Config) Epsilon() decimal.Decimal {
	fallback := decimal.RequireFromString("0.01")
	if c.Reconcile.Epsilon == "" {
		return fallback
	}
	eps, err := decimal.NewFromString(c.Reconcile.Epsilon)
	if err != nil || eps.IsNegative() {
		return fallback
	}
	return eps
}

// Load reads a fintrack.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default(profileName string) *Config {
	return &Config{
		Profile: ProfileConfig{
			Name:     profileName,
			Currency: "USD",
		},
		Storage: StorageConfig{
			DataFile: "fintrack.db",
		},
		Reconcile: ReconcileConfig{
			Epsilon: "0.01",
		},
		Git: GitConfig{
			AutoCommit:  false,
			AuthorName:  "Fintrack",
			AuthorEmail: "backup@fintrack.dev",
		},
	}
}
