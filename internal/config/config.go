package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/stmtimport/internal/model"
)

// FileName is the config file looked up in the working directory.
const FileName = "stmtimport.yaml"

// Sink kinds.
const (
	SinkSQLite = "sqlite"
	SinkCSV    = "csv"
)

// Config represents the top-level stmtimport.yaml configuration.
type Config struct {
	DefaultCurrency string    `yaml:"default_currency"`
	ProgressEvery   int       `yaml:"progress_every"`
	Sink            string    `yaml:"sink"`
	Database        string    `yaml:"database"`
	LedgerFile      string    `yaml:"ledger_file"`
	ImportDir       string    `yaml:"import_dir"`
	BanksFile       string    `yaml:"banks_file,omitempty"`
	CategoriesFile  string    `yaml:"categories_file,omitempty"`
	Log             LogConfig `yaml:"log"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "console" or "json"
}

// Load reads a stmtimport.yaml file from disk. Missing keys keep their
// defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads path, falling back to Default when it does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
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
func Default() *Config {
	return &Config{
		DefaultCurrency: string(model.DefaultCurrency),
		ProgressEvery:   100,
		Sink:            SinkSQLite,
		Database:        "stmtimport.db",
		LedgerFile:      "transactions.csv",
		ImportDir:       "import",
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate checks enumerated and required values.
func (c *Config) Validate() error {
	switch c.Sink {
	case SinkSQLite, SinkCSV:
	default:
		return fmt.Errorf("config: unknown sink %q (want %s or %s)", c.Sink, SinkSQLite, SinkCSV)
	}
	if _, ok := model.ParseCurrency(c.DefaultCurrency); !ok {
		return fmt.Errorf("config: unknown default_currency %q", c.DefaultCurrency)
	}
	if c.ProgressEvery < 0 {
		return fmt.Errorf("config: progress_every must not be negative")
	}
	return nil
}

// Resolve makes p relative to root unless it is absolute or empty.
func Resolve(root, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}
