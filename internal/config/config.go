package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Default values for configuration fields.
const (
	DefaultConfigFile    = "migrate.yml"
	DefaultEnvFile       = ".env"
	DefaultMigrationsDir = "./migrations"
	DefaultMaxConns      = 2
	DefaultOutOfOrder    = "warn"
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "auto"
)

// ErrInvalidConfig indicates a configuration value outside its allowed range.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the application configuration loaded from file, environment, and flags.
// Zero timeouts leave the database defaults in place.
type Config struct {
	DatabaseURL      string
	MigrationsDir    string
	LockTimeout      time.Duration
	StatementTimeout time.Duration
	MaxConns         int32
	OutOfOrder       string
	LogLevel         string
	LogFormat        string
}

// yamlConfig is the raw YAML file representation with string durations.
type yamlConfig struct {
	DatabaseURL      string `yaml:"database_url"`
	MigrationsDir    string `yaml:"migrations_dir"`
	LockTimeout      string `yaml:"lock_timeout"`
	StatementTimeout string `yaml:"statement_timeout"`
	MaxConns         int32  `yaml:"max_conns"`
	OutOfOrder       string `yaml:"out_of_order"`
	LogLevel         string `yaml:"log_level"`
	LogFormat        string `yaml:"log_format"`
}

// New returns a Config populated with default values.
func New() *Config {
	return &Config{
		MigrationsDir: DefaultMigrationsDir,
		MaxConns:      DefaultMaxConns,
		OutOfOrder:    DefaultOutOfOrder,
		LogLevel:      DefaultLogLevel,
		LogFormat:     DefaultLogFormat,
	}
}

// Load reads a YAML configuration file and returns a Config.
// If allowMissing is true and the file does not exist, defaults are returned.
func Load(path string, allowMissing bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && allowMissing {
			return New(), nil
		}

		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	var raw yamlConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	return fromYAML(&raw)
}

// fromYAML converts the raw YAML representation to a Config with defaults applied.
func fromYAML(raw *yamlConfig) (*Config, error) {
	cfg := New()

	if raw.DatabaseURL != "" {
		cfg.DatabaseURL = raw.DatabaseURL
	}

	if raw.MigrationsDir != "" {
		cfg.MigrationsDir = raw.MigrationsDir
	}

	if raw.LockTimeout != "" {
		d, err := time.ParseDuration(raw.LockTimeout)
		if err != nil {
			return nil, fmt.Errorf("parsing lock_timeout %q: %w", raw.LockTimeout, err)
		}

		cfg.LockTimeout = d
	}

	if raw.StatementTimeout != "" {
		d, err := time.ParseDuration(raw.StatementTimeout)
		if err != nil {
			return nil, fmt.Errorf("parsing statement_timeout %q: %w", raw.StatementTimeout, err)
		}

		cfg.StatementTimeout = d
	}

	if raw.MaxConns != 0 {
		cfg.MaxConns = raw.MaxConns
	}

	if raw.OutOfOrder != "" {
		cfg.OutOfOrder = raw.OutOfOrder
	}

	if raw.LogLevel != "" {
		cfg.LogLevel = raw.LogLevel
	}

	if raw.LogFormat != "" {
		cfg.LogFormat = raw.LogFormat
	}

	return cfg, nil
}

// LoadEnvFile loads KEY=VALUE pairs from path into the process environment.
// Variables that are already set keep their values. A missing file is only
// an error when required is true.
func LoadEnvFile(path string, required bool) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !required {
			return nil
		}

		return fmt.Errorf("reading env file %s: %w", path, err)
	}

	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("parsing env file %s: %w", path, err)
	}

	return nil
}

// MergeEnv overrides config fields from MIGRATE_* environment variables.
func MergeEnv(cfg *Config) error {
	if v := os.Getenv("MIGRATE_DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}

	if v := os.Getenv("MIGRATE_MIGRATIONS_DIR"); v != "" {
		cfg.MigrationsDir = v
	}

	if v := os.Getenv("MIGRATE_LOCK_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parsing MIGRATE_LOCK_TIMEOUT %q: %w", v, err)
		}

		cfg.LockTimeout = d
	}

	if v := os.Getenv("MIGRATE_STATEMENT_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parsing MIGRATE_STATEMENT_TIMEOUT %q: %w", v, err)
		}

		cfg.StatementTimeout = d
	}

	if v := os.Getenv("MIGRATE_MAX_CONNS"); v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			return fmt.Errorf("parsing MIGRATE_MAX_CONNS %q: %w", v, err)
		}

		cfg.MaxConns = int32(n)
	}

	if v := os.Getenv("MIGRATE_OUT_OF_ORDER"); v != "" {
		cfg.OutOfOrder = v
	}

	if v := os.Getenv("MIGRATE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	if v := os.Getenv("MIGRATE_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}

	return nil
}

// Validate checks ranges that the consuming packages do not check themselves.
func (c *Config) Validate() error {
	if c.MigrationsDir == "" {
		return fmt.Errorf("%w: migrations_dir is empty", ErrInvalidConfig)
	}

	if c.LockTimeout < 0 {
		return fmt.Errorf("%w: lock_timeout %s is negative", ErrInvalidConfig, c.LockTimeout)
	}

	if c.StatementTimeout < 0 {
		return fmt.Errorf("%w: statement_timeout %s is negative", ErrInvalidConfig, c.StatementTimeout)
	}

	if c.MaxConns < 1 {
		return fmt.Errorf("%w: max_conns must be at least 1, got %d", ErrInvalidConfig, c.MaxConns)
	}

	return nil
}
