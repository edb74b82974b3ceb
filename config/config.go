// Package config holds the runtime configuration of the conversion and
// query tools. Defaults are always valid; a JSON config file overlays
// them field by field.
package config

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"

	"github.com/dcppc-phosphorous/GTEC-ETL/errors"
)

// ErrInvalidConfig reports a configuration that fails validation.
var ErrInvalidConfig = stderrors.New("invalid configuration")

// LoggingConfig controls structured log output.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level"`
	// Format is json or text.
	Format string `json:"format"`
}

// Config is the full tool configuration.
type Config struct {
	// AllowBackLinks controls whether group members receive links back to
	// their groups. Disabling it produces an acyclic document for
	// consumers that cannot handle reference cycles.
	AllowBackLinks bool `json:"allow_back_links"`

	// MaxOutputSamples caps the samples linked from each study dataset.
	// Zero means unlimited.
	MaxOutputSamples int `json:"max_output_samples"`

	// MetricsPort exposes Prometheus metrics when non-zero.
	MetricsPort int `json:"metrics_port"`

	Logging LoggingConfig `json:"logging"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		AllowBackLinks:   true,
		MaxOutputSamples: 0,
		MetricsPort:      0,
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads a JSON config file over the defaults. An empty path returns
// the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.WrapFatal(err, "config", "Load",
			fmt.Sprintf("read %s", path))
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.WrapInvalid(err, "config", "Load",
			fmt.Sprintf("parse %s", path))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field values and ranges.
func (c Config) Validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.WrapInvalid(ErrInvalidConfig, "config", "Validate",
			fmt.Sprintf("check logging level %q", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		return errors.WrapInvalid(ErrInvalidConfig, "config", "Validate",
			fmt.Sprintf("check logging format %q", c.Logging.Format))
	}
	if c.MaxOutputSamples < 0 {
		return errors.WrapInvalid(ErrInvalidConfig, "config", "Validate",
			fmt.Sprintf("check max output samples %d", c.MaxOutputSamples))
	}
	if c.MetricsPort < 0 || c.MetricsPort > 65535 {
		return errors.WrapInvalid(ErrInvalidConfig, "config", "Validate",
			fmt.Sprintf("check metrics port %d", c.MetricsPort))
	}
	return nil
}

// Clone returns an independent copy.
func (c Config) Clone() Config {
	return c
}
