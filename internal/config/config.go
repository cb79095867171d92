package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"plancal/internal/atomicfile"
	appLog "plancal/internal/log"
)

// NOTE: This file provides the configuration model and full YAML-based
// load/save behavior, including first-run config creation and 0600
// permissions. Environment variables (optionally from a .env file) override
// the file.

const (
	defaultLogLevel       = "INFO"
	defaultHorizonWeeks   = 12
	defaultMaxOccurrences = 5000
	defaultWatchSchedule  = "*/15 * * * *"
)

// Environment overrides.
const (
	EnvLogLevel       = "PLANCAL_LOG_LEVEL"
	EnvMaxOccurrences = "PLANCAL_MAX_OCCURRENCES"
	EnvWatchSchedule  = "PLANCAL_WATCH_SCHEDULE"
	EnvWorkers        = "PLANCAL_WORKERS"
)

// Config is the top-level application configuration.
type Config struct {
	// LogLevel is one of DEBUG, INFO, WARN, ERROR.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// HorizonWeeks is how far `expand` looks ahead when no --until is given.
	HorizonWeeks int `yaml:"horizon_weeks" json:"horizon_weeks"`

	// MaxOccurrencesPerEvent caps expansion of a single event. Negative
	// disables the cap.
	MaxOccurrencesPerEvent int `yaml:"max_occurrences_per_event" json:"max_occurrences_per_event"`

	// Workers bounds the parallel conflict scan. Zero means one per CPU.
	Workers int `yaml:"workers" json:"workers"`

	// WatchSchedule is a standard 5-field cron spec (e.g. "*/15 * * * *")
	// used by `watch` to re-run the conflict scan.
	WatchSchedule string `yaml:"watch_schedule" json:"watch_schedule"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:               defaultLogLevel,
		HorizonWeeks:           defaultHorizonWeeks,
		MaxOccurrencesPerEvent: defaultMaxOccurrences,
		Workers:                0,
		WatchSchedule:          defaultWatchSchedule,
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	c.LogLevel = strings.ToUpper(strings.TrimSpace(c.LogLevel))
	if _, err := appLog.ParseLevel(c.LogLevel); err != nil {
		c.LogLevel = defaultLogLevel
	}
	if c.HorizonWeeks <= 0 {
		c.HorizonWeeks = defaultHorizonWeeks
	}
	if c.MaxOccurrencesPerEvent == 0 {
		c.MaxOccurrencesPerEvent = defaultMaxOccurrences
	}
	if c.Workers < 0 {
		c.Workers = 0
	}
	if strings.TrimSpace(c.WatchSchedule) == "" {
		c.WatchSchedule = defaultWatchSchedule
	}
}

// Validate rejects values Normalize cannot repair.
func (c *Config) Validate() error {
	if _, err := cron.ParseStandard(c.WatchSchedule); err != nil {
		return fmt.Errorf("watch_schedule %q: %w", c.WatchSchedule, err)
	}
	return nil
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - If the file exists, read YAML and unmarshal into Config
//   - Apply a .env file next to the working directory, if present
//   - Apply PLANCAL_* environment overrides
//   - Normalize defaults and validate
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// First run: create default config file.
		if err := Save(path, cfg); err != nil {
			return cfg, err
		}
	case err != nil:
		return nil, err
	default:
		cfg = &Config{}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	if err := LoadDotEnv(".env"); err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is not
// an error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load %s: %w", path, err)
}

// ApplyEnv overrides fields from PLANCAL_* variables.
func (c *Config) ApplyEnv() error {
	if v, ok := os.LookupEnv(EnvLogLevel); ok {
		c.LogLevel = v
	}
	if v, ok := os.LookupEnv(EnvWatchSchedule); ok {
		c.WatchSchedule = v
	}
	for name, dst := range map[string]*int{
		EnvMaxOccurrences: &c.MaxOccurrencesPerEvent,
		EnvWorkers:        &c.Workers,
	} {
		v, ok := os.LookupEnv(name)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*dst = n
	}
	return nil
}

// Save writes the given configuration to the specified path.
//
// The file is replaced atomically and ends up with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return atomicfile.WriteFile(path, data, 0o600, ".plancal-config-*.tmp")
}

// Save is a convenience method on Config that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
