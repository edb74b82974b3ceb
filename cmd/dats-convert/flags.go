package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
)

// CLIConfig holds command-line configuration.
type CLIConfig struct {
	InputPath        string
	OutputPath       string
	ConfigPath       string
	AllowBackLinks   bool
	MaxOutputSamples int
	MetricsPort      int
	Pretty           bool
	LogLevel         string
	LogFormat        string
	ShowVersion      bool

	backLinksSet   bool
	maxSamplesSet  bool
	metricsPortSet bool
}

func parseFlags() *CLIConfig {
	cfg := &CLIConfig{}

	flag.StringVar(&cfg.InputPath, "input",
		getEnv("DATS_CONVERT_INPUT", ""),
		"Path to the study bundle JSON (env: DATS_CONVERT_INPUT)")

	flag.StringVar(&cfg.OutputPath, "output",
		getEnv("DATS_CONVERT_OUTPUT", "-"),
		"Output path, - for stdout (env: DATS_CONVERT_OUTPUT)")

	flag.StringVar(&cfg.ConfigPath, "config",
		getEnv("DATS_CONVERT_CONFIG", ""),
		"Path to configuration file (env: DATS_CONVERT_CONFIG)")

	flag.BoolVar(&cfg.AllowBackLinks, "allow-back-links",
		getEnvBool("DATS_CONVERT_BACK_LINKS", true),
		"Link group members back to their groups (env: DATS_CONVERT_BACK_LINKS)")

	flag.IntVar(&cfg.MaxOutputSamples, "max-output-samples",
		getEnvInt("DATS_CONVERT_MAX_SAMPLES", 0),
		"Cap samples linked per study, 0 for unlimited (env: DATS_CONVERT_MAX_SAMPLES)")

	flag.IntVar(&cfg.MetricsPort, "metrics-port",
		getEnvInt("DATS_CONVERT_METRICS_PORT", 0),
		"Prometheus metrics port, 0 to disable (env: DATS_CONVERT_METRICS_PORT)")

	flag.BoolVar(&cfg.Pretty, "pretty", false, "Indent the output document")

	flag.StringVar(&cfg.LogLevel, "log-level",
		getEnv("DATS_CONVERT_LOG_LEVEL", "info"),
		"Log level: debug, info, warn, error (env: DATS_CONVERT_LOG_LEVEL)")

	flag.StringVar(&cfg.LogFormat, "log-format",
		getEnv("DATS_CONVERT_LOG_FORMAT", "json"),
		"Log format: json, text (env: DATS_CONVERT_LOG_FORMAT)")

	flag.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")

	flag.Usage = printDetailedHelp
	flag.Parse()

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "allow-back-links":
			cfg.backLinksSet = true
		case "max-output-samples":
			cfg.maxSamplesSet = true
		case "metrics-port":
			cfg.metricsPortSet = true
		}
	})

	// Environment overrides count as explicit settings too.
	if os.Getenv("DATS_CONVERT_BACK_LINKS") != "" {
		cfg.backLinksSet = true
	}
	if os.Getenv("DATS_CONVERT_MAX_SAMPLES") != "" {
		cfg.maxSamplesSet = true
	}
	if os.Getenv("DATS_CONVERT_METRICS_PORT") != "" {
		cfg.metricsPortSet = true
	}

	return cfg
}

func validateFlags(cfg *CLIConfig) error {
	if cfg.InputPath == "" {
		return fmt.Errorf("missing required -input flag")
	}
	if _, err := os.Stat(cfg.InputPath); err != nil {
		return fmt.Errorf("input file not found: %s", cfg.InputPath)
	}
	if cfg.ConfigPath != "" {
		if _, err := os.Stat(cfg.ConfigPath); err != nil {
			return fmt.Errorf("config file not found: %s", cfg.ConfigPath)
		}
	}
	return nil
}

func printDetailedHelp() {
	_, _ = fmt.Fprintf(os.Stderr, `%s - study metadata to DATS JSON

Usage: %s [options]

Options:
`, appName, os.Args[0])
	flag.PrintDefaults()
	_, _ = fmt.Fprintf(os.Stderr, `
Examples:
  # Convert a bundle to stdout
  %s --input=study_bundle.json

  # Write an indented document without back-links
  %s --input=study_bundle.json --output=study.json --pretty --allow-back-links=false

  # Keep at most 1000 samples per study
  %s --input=study_bundle.json --max-output-samples=1000

Version: %s
`, os.Args[0], os.Args[0], os.Args[0], Version)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
