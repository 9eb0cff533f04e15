// Package config loads application settings by layering defaults, an
// optional YAML file and RACEREADY_ environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"raceready/internal/logger"
)

// Sentinel errors for callers using errors.Is.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)

// EnvPrefix is the prefix for environment overrides. Nested keys use a double
// underscore, e.g. RACEREADY_ATHLETE__MAX_HR.
const EnvPrefix = "RACEREADY_"

// Config represents the application configuration
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// DBPath is the SQLite database file.
	DBPath string `koanf:"db_path"`

	// HTTPAddr is the listen address for `raceready serve`.
	HTTPAddr string `koanf:"http_addr"`

	// HistoryLimit caps how many snapshots the history views return.
	HistoryLimit int `koanf:"history_limit"`

	Athlete AthleteConfig `koanf:"athlete"`
	Display DisplayConfig `koanf:"display"`
}

// AthleteConfig holds athlete-specific settings
type AthleteConfig struct {
	RestingHR float64 `koanf:"resting_hr"`
	MaxHR     float64 `koanf:"max_hr"`
	Age       int     `koanf:"age"`
	Gender    string  `koanf:"gender"`
}

// DisplayConfig holds display preferences
type DisplayConfig struct {
	DistanceUnit string `koanf:"distance_unit"`
	PaceUnit     string `koanf:"pace_unit"`
}

// New returns the default configuration
func New() *Config {
	dir, err := Dir()
	if err != nil {
		dir = "."
	}
	return &Config{
		LogLevel:     "info",
		DBPath:       filepath.Join(dir, "data.db"),
		HTTPAddr:     ":8087",
		HistoryLimit: 90,
		Athlete: AthleteConfig{
			RestingHR: 50,
			MaxHR:     185,
		},
		Display: DisplayConfig{
			DistanceUnit: "mi",
			PaceUnit:     "min/mi",
		},
	}
}

// Load builds a Config. Precedence, low to high:
//  1. defaults (New)
//  2. the YAML file at path, or ~/.raceready/config.yaml when path is empty
//     and that file exists
//  3. environment variables with EnvPrefix
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path == "" {
		path = os.Getenv(EnvPrefix + "CONFIG")
	}
	if path == "" {
		if dir, err := Dir(); err == nil {
			candidate := filepath.Join(dir, "config.yaml")
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
			}
		}
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: reading %s: %v", ErrLoadConfig, path, err)
		}
	}

	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		s = strings.ToLower(s)
		return strings.ReplaceAll(s, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: reading environment: %v", ErrLoadConfig, err)
	}

	cfg := New()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field ranges and enumerations
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("%w: db_path must not be empty", ErrInvalidConfig)
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.HistoryLimit <= 0 {
		return fmt.Errorf("%w: history_limit must be positive, got %d", ErrInvalidConfig, c.HistoryLimit)
	}

	// Validate display units
	if c.Display.DistanceUnit != "km" && c.Display.DistanceUnit != "mi" {
		return fmt.Errorf("%w: display.distance_unit must be \"km\" or \"mi\", got %q", ErrInvalidConfig, c.Display.DistanceUnit)
	}
	if c.Display.PaceUnit != "min/km" && c.Display.PaceUnit != "min/mi" {
		return fmt.Errorf("%w: display.pace_unit must be \"min/km\" or \"min/mi\", got %q", ErrInvalidConfig, c.Display.PaceUnit)
	}

	a := c.Athlete
	if a.RestingHR < 0 || a.MaxHR < 0 || a.Age < 0 {
		return fmt.Errorf("%w: athlete values must not be negative", ErrInvalidConfig)
	}
	if a.RestingHR > 0 && a.MaxHR > 0 && a.RestingHR >= a.MaxHR {
		return fmt.Errorf("%w: athlete.resting_hr (%v) must be less than athlete.max_hr (%v)", ErrInvalidConfig, a.RestingHR, a.MaxHR)
	}
	switch strings.ToLower(a.Gender) {
	case "", "m", "male", "f", "female":
	default:
		return fmt.Errorf("%w: athlete.gender must be m or f, got %q", ErrInvalidConfig, a.Gender)
	}

	return nil
}

// Dir returns the path to the data and config directory, ~/.raceready
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".raceready"), nil
}
