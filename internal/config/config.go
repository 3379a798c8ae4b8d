// Package config resolves process settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	EnvStateFile    = "VENDSIM_STATE_FILE"
	EnvLogLevel     = "VENDSIM_LOG_LEVEL"
	EnvLogFormat    = "VENDSIM_LOG_FORMAT"
	EnvLowStock     = "VENDSIM_LOW_STOCK"
	EnvReportTop    = "VENDSIM_REPORT_TOP"
	EnvReportRecent = "VENDSIM_REPORT_RECENT"
)

const (
	DefaultStateFile    = "machine_state.json"
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "console"
	DefaultLowStock     = 100
	DefaultReportTop    = 3
	DefaultReportRecent = 5
)

type Config struct {
	StateFile    string
	LogLevel     string
	LogFormat    string
	LowStock     int
	ReportTop    int
	ReportRecent int
}

func Default() Config {
	return Config{
		StateFile:    DefaultStateFile,
		LogLevel:     DefaultLogLevel,
		LogFormat:    DefaultLogFormat,
		LowStock:     DefaultLowStock,
		ReportTop:    DefaultReportTop,
		ReportRecent: DefaultReportRecent,
	}
}

// Load reads the given .env files (missing ones are skipped; variables already
// set in the process win) and then resolves the configuration from the
// environment.
func Load(envFiles ...string) (Config, error) {
	for _, f := range envFiles {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv(os.Getenv)
}

// FromEnv resolves the configuration through getenv. Unset or blank variables
// keep their defaults.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Default()
	var errs []error

	str := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		v := strings.TrimSpace(getenv(key))
		if v == "" {
			return
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %q is not an integer", key, v))
			return
		}
		*dst = n
	}

	str(EnvStateFile, &cfg.StateFile)
	str(EnvLogLevel, &cfg.LogLevel)
	str(EnvLogFormat, &cfg.LogFormat)
	num(EnvLowStock, &cfg.LowStock)
	num(EnvReportTop, &cfg.ReportTop)
	num(EnvReportRecent, &cfg.ReportRecent)

	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.StateFile) == "" {
		errs = append(errs, errors.New("state file is required"))
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log level must be debug|info|warn|error (got %q)", c.LogLevel))
	}
	switch strings.ToLower(c.LogFormat) {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log format must be console|json (got %q)", c.LogFormat))
	}
	if c.LowStock < 0 {
		errs = append(errs, fmt.Errorf("low stock threshold must be >= 0 (got %d)", c.LowStock))
	}
	if c.ReportTop < 0 {
		errs = append(errs, fmt.Errorf("report top must be >= 0 (got %d)", c.ReportTop))
	}
	if c.ReportRecent < 0 {
		errs = append(errs, fmt.Errorf("report recent must be >= 0 (got %d)", c.ReportRecent))
	}
	return errors.Join(errs...)
}
