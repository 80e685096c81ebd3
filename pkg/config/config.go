// Package config provides configuration management for lendbook.
// It loads configuration from environment variables, .env files and an
// optional YAML settings file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/shunichi-ikebuchi/lendbook/pkg/pathutil"
)

const (
	// DefaultMaxBackups is the number of backup files kept after each save.
	DefaultMaxBackups = 50
	// DefaultHTTPAddr is the listen address of the local HTTP surface.
	DefaultHTTPAddr = "127.0.0.1:8088"
)

// Config represents the application configuration.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	HTTP    HTTPConfig    `yaml:"http"`
	Debug   bool          `yaml:"debug"`
}

// StorageConfig represents where the ledger and its side files live.
type StorageConfig struct {
	DataRoot       string `yaml:"data_root"`
	LedgerPath     string `yaml:"ledger_path"`
	BackupDir      string `yaml:"backup_dir"`
	AttachmentsDir string `yaml:"attachments_dir"`
	HistoryDB      string `yaml:"history_db"`
	MaxBackups     int    `yaml:"max_backups"`
}

// HTTPConfig represents the local HTTP server configuration.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// Load loads configuration from environment variables.
// It automatically loads .env file from the current directory if available.
// You can optionally specify a custom .env file path.
func Load(envPath ...string) (*Config, error) {
	if len(envPath) > 0 && envPath[0] != "" {
		if err := godotenv.Load(envPath[0]); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	} else {
		// Try to load .env from current directory (ignore error if not found)
		_ = godotenv.Load()
	}

	maxBackups, err := parseIntEnv("LENDBOOK_MAX_BACKUPS", DefaultMaxBackups)
	if err != nil {
		return nil, err
	}

	config := &Config{
		Storage: StorageConfig{
			DataRoot:       getEnvOrDefault("LENDBOOK_DATA_ROOT", "."),
			LedgerPath:     os.Getenv("LENDBOOK_LEDGER_PATH"),
			BackupDir:      os.Getenv("LENDBOOK_BACKUP_DIR"),
			AttachmentsDir: os.Getenv("LENDBOOK_ATTACHMENTS_DIR"),
			HistoryDB:      os.Getenv("LENDBOOK_HISTORY_DB"),
			MaxBackups:     maxBackups,
		},
		HTTP: HTTPConfig{
			Addr: getEnvOrDefault("LENDBOOK_HTTP_ADDR", DefaultHTTPAddr),
		},
		Debug: os.Getenv("DEBUG") == "true",
	}

	if settings := os.Getenv("LENDBOOK_SETTINGS"); settings != "" {
		if err := config.ApplySettings(settings); err != nil {
			return nil, err
		}
	}

	return config, nil
}

// ApplySettings overlays the values present in a YAML settings file.
// Keys absent from the file leave the current values untouched.
func (c *Config) ApplySettings(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read settings file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse settings file %s: %w", path, err)
	}
	return nil
}

// Validate checks the configuration and reports every problem found.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Storage.DataRoot) == "" {
		errs = append(errs, errors.New("storage.data_root must not be empty"))
	}
	if c.Storage.MaxBackups < 1 {
		errs = append(errs, fmt.Errorf("storage.max_backups must be at least 1, got %d", c.Storage.MaxBackups))
	}
	if strings.TrimSpace(c.HTTP.Addr) == "" {
		errs = append(errs, errors.New("http.addr must not be empty"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w\nPlease check your .env file, settings file or environment variables", errors.Join(errs...))
	}
	return nil
}

// PathConfig returns the path settings for a pathutil.PathResolver.
func (c *Config) PathConfig() pathutil.Config {
	return pathutil.Config{
		DataRoot:       c.Storage.DataRoot,
		LedgerPath:     c.Storage.LedgerPath,
		BackupDir:      c.Storage.BackupDir,
		AttachmentsDir: c.Storage.AttachmentsDir,
		DatabasePath:   c.Storage.HistoryDB,
	}
}

// getEnvOrDefault returns the value of the environment variable or a default value if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseIntEnv parses an int from an environment variable.
// Returns defaultValue if the environment variable is not set.
func parseIntEnv(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value for %s: %s", key, value)
	}

	return parsed, nil
}
