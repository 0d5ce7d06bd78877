// Package config loads runtime tunables for the lab service from environment
// variables, applying defaults and reporting every invalid override at once.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	// DefaultAddr is the TCP address the lab service listens on.
	DefaultAddr = ":8732"
	// DefaultTargetHz is the simulation loop frame rate.
	DefaultTargetHz = 60.0
	// DefaultFluxSamples is the integration grid resolution per side.
	DefaultFluxSamples = 20
	// MaxFluxSamples bounds the user-configurable grid so one tick stays
	// interactive; integration cost grows with the square of this value.
	MaxFluxSamples = 50

	// DefaultSessionDir is where exported session bundles are written.
	DefaultSessionDir = "sessions"

	// DefaultLogLevel controls verbosity for lab logs.
	DefaultLogLevel = "info"
	// DefaultLogPath is where structured logs are written.
	DefaultLogPath = "lab.log"
	// DefaultLogMaxSizeMB caps the size of a single log file before rotation.
	DefaultLogMaxSizeMB = 50
	// DefaultLogMaxBackups limits retained rotated log files.
	DefaultLogMaxBackups = 5
)

// Config captures all runtime tunables for the lab service.
type Config struct {
	Address      string
	TargetHz     float64
	FluxSamples  int
	SessionDir   string
	DatabasePath string
	Logging      LoggingConfig
}

// LoggingConfig captures structured logging configuration options.
type LoggingConfig struct {
	Level      string
	Path       string
	MaxSizeMB  int
	MaxBackups int
}

// Load reads the lab configuration from environment variables, applying sane
// defaults and returning descriptive errors for invalid overrides.
func Load() (*Config, error) {
	cfg := &Config{
		Address:      getString("LAB_ADDR", DefaultAddr),
		TargetHz:     DefaultTargetHz,
		FluxSamples:  DefaultFluxSamples,
		SessionDir:   getString("LAB_SESSION_DIR", DefaultSessionDir),
		DatabasePath: strings.TrimSpace(os.Getenv("LAB_DB_PATH")),
		Logging: LoggingConfig{
			Level:      strings.TrimSpace(getString("LAB_LOG_LEVEL", DefaultLogLevel)),
			Path:       strings.TrimSpace(getString("LAB_LOG_PATH", DefaultLogPath)),
			MaxSizeMB:  DefaultLogMaxSizeMB,
			MaxBackups: DefaultLogMaxBackups,
		},
	}

	var problems []string

	if raw := strings.TrimSpace(os.Getenv("LAB_TARGET_HZ")); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil || value <= 0 {
			problems = append(problems, fmt.Sprintf("LAB_TARGET_HZ must be a positive number, got %q", raw))
		} else {
			cfg.TargetHz = value
		}
	}

	if raw := strings.TrimSpace(os.Getenv("LAB_SAMPLES")); raw != "" {
		value, err := strconv.Atoi(raw)
		switch {
		case err != nil || value <= 0:
			problems = append(problems, fmt.Sprintf("LAB_SAMPLES must be a positive integer, got %q", raw))
		case value > MaxFluxSamples:
			problems = append(problems, fmt.Sprintf("LAB_SAMPLES must not exceed %d, got %d", MaxFluxSamples, value))
		default:
			cfg.FluxSamples = value
		}
	}

	if raw := strings.TrimSpace(os.Getenv("LAB_LOG_MAX_SIZE_MB")); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || value <= 0 {
			problems = append(problems, fmt.Sprintf("LAB_LOG_MAX_SIZE_MB must be a positive integer, got %q", raw))
		} else {
			cfg.Logging.MaxSizeMB = value
		}
	}

	if raw := strings.TrimSpace(os.Getenv("LAB_LOG_MAX_BACKUPS")); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || value < 0 {
			problems = append(problems, fmt.Sprintf("LAB_LOG_MAX_BACKUPS must be a non-negative integer, got %q", raw))
		} else {
			cfg.Logging.MaxBackups = value
		}
	}

	if len(problems) > 0 {
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return cfg, nil
}

func getString(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}
