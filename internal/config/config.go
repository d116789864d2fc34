package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the ledger directory.
const FileName = "folio.yaml"

// Config represents the top-level folio.yaml configuration.
type Config struct {
	Ledger   LedgerConfig   `yaml:"ledger"`
	Generate GenerateConfig `yaml:"generate"`
	Git      GitConfig      `yaml:"git"`
}

// LedgerConfig locates the ledger snapshot.
type LedgerConfig struct {
	Path               string `yaml:"path"`
	RequireDoubleEntry bool   `yaml:"require_double_entry"`
}

// GenerateConfig controls default schedule projection.
type GenerateConfig struct {
	HorizonDays int `yaml:"horizon_days"`
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads a folio.yaml file from disk.
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

// Default returns a Config with sensible defaults for a new ledger.
func Default() *Config {
	return &Config{
		Ledger: LedgerConfig{
			Path:               "ledger.json",
			RequireDoubleEntry: true,
		},
		Generate: GenerateConfig{
			HorizonDays: 90,
		},
		Git: GitConfig{
			AutoCommit:  true,
			AuthorName:  "Folio",
			AuthorEmail: "folio@localhost",
		},
	}
}
