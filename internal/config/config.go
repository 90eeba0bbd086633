package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/andy/pharmabill/internal/logger"
)

type Config struct {
	// Database settings
	Database DatabaseConfig `yaml:"database"`

	// Document numbering and export settings
	Documents DocumentsConfig `yaml:"documents"`

	// Logging settings
	Log LogConfig `yaml:"log"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"` // Path to the encrypted SQLite database
}

type DocumentsConfig struct {
	ProformaPrefix string `yaml:"proforma_prefix"` // Proforma number prefix (e.g., "PRO")
	InvoicePrefix  string `yaml:"invoice_prefix"`  // Invoice number prefix (e.g., "INV")
	ExportDir      string `yaml:"export_dir"`      // Directory for backup files
}

type LogConfig struct {
	Level  string `yaml:"level"`  // trace, debug, info, warn, error
	Format string `yaml:"format"` // console or json
	Output string `yaml:"output"` // stdout, stderr, discard, or file path
}

// Environment variables that override the file
const (
	EnvDBPath    = "PHARMABILL_DB_PATH"
	EnvLogLevel  = "PHARMABILL_LOG_LEVEL"
	EnvLogFormat = "PHARMABILL_LOG_FORMAT"
	EnvLogOutput = "PHARMABILL_LOG_OUTPUT"
)

func baseDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home dir unavailable
		homeDir = "."
	}
	return filepath.Join(homeDir, ".config", "pharmabill")
}

// DefaultConfigPath returns ~/.config/pharmabill/config.yaml
func DefaultConfigPath() string {
	return filepath.Join(baseDir(), "config.yaml")
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	dir := baseDir()

	return &Config{
		Database: DatabaseConfig{
			Path: filepath.Join(dir, "pharmabill.db"),
		},
		Documents: DocumentsConfig{
			ProformaPrefix: "PRO",
			InvoicePrefix:  "INV",
			ExportDir:      filepath.Join(dir, "backups"),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
			Output: filepath.Join(dir, "pharmabill.log"),
		},
	}
}

// Load loads config from the given path, or returns defaults if file doesn't exist.
// Environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// LoadDefault loads from the default config path
func LoadDefault() (*Config, error) {
	return Load(DefaultConfigPath())
}

func (c *Config) applyEnv() {
	for env, dst := range map[string]*string{
		EnvDBPath:    &c.Database.Path,
		EnvLogLevel:  &c.Log.Level,
		EnvLogFormat: &c.Log.Format,
		EnvLogOutput: &c.Log.Output,
	} {
		if v := os.Getenv(env); v != "" {
			*dst = v
		}
	}
}

// Save writes the config to the given path
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// EnsureDirectories creates the database and export directories
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(filepath.Dir(c.Database.Path), 0700); err != nil {
		return err
	}
	return os.MkdirAll(c.Documents.ExportDir, 0755)
}

// Logging converts the log section into a logger configuration
func (c *Config) Logging() logger.LogConfig {
	lc := logger.DefaultConfig()
	if c.Log.Level != "" {
		lc.Level = c.Log.Level
	}
	if c.Log.Format != "" {
		lc.Format = c.Log.Format
	}
	lc.Output = c.Log.Output
	return lc
}
