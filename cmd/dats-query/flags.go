package main

import (
	"flag"
	"fmt"
	"os"
)

// CLIConfig holds command-line configuration.
type CLIConfig struct {
	DatsFile           string
	Query              string
	DatasetID          string
	Group              string
	NoSchemaValidation bool
	LogLevel           string
	LogFormat          string
	ShowVersion        bool
}

var validQueries = []string{"datasets", "variables", "members", "dump"}

func parseFlags() *CLIConfig {
	cfg := &CLIConfig{}

	flag.StringVar(&cfg.DatsFile, "dats-file",
		getEnv("DATS_QUERY_FILE", ""),
		"Path to the DATS JSON document (env: DATS_QUERY_FILE)")

	flag.StringVar(&cfg.Query, "query", "datasets",
		"Report to run: datasets, variables, members, dump")

	flag.StringVar(&cfg.DatasetID, "dataset-id", "",
		"Restrict to one dataset, by identity or dbGaP accession")

	flag.StringVar(&cfg.Group, "group", "",
		"Study group name filter for the members report")

	flag.BoolVar(&cfg.NoSchemaValidation, "no-schema-validation", false,
		"Skip document schema validation before loading")

	flag.StringVar(&cfg.LogLevel, "log-level",
		getEnv("DATS_QUERY_LOG_LEVEL", "info"),
		"Log level: debug, info, warn, error (env: DATS_QUERY_LOG_LEVEL)")

	flag.StringVar(&cfg.LogFormat, "log-format",
		getEnv("DATS_QUERY_LOG_FORMAT", "json"),
		"Log format: json, text (env: DATS_QUERY_LOG_FORMAT)")

	flag.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")

	flag.Usage = printDetailedHelp
	flag.Parse()

	return cfg
}

func validateFlags(cfg *CLIConfig) error {
	if cfg.DatsFile == "" {
		return fmt.Errorf("missing required -dats-file flag")
	}
	if _, err := os.Stat(cfg.DatsFile); err != nil {
		return fmt.Errorf("document not found: %s", cfg.DatsFile)
	}
	if !contains(validQueries, cfg.Query) {
		return fmt.Errorf("invalid query: %s", cfg.Query)
	}
	return nil
}

func printDetailedHelp() {
	_, _ = fmt.Fprintf(os.Stderr, `%s - tabular reports over DATS JSON documents

Usage: %s [options]

Options:
`, appName, os.Args[0])
	flag.PrintDefaults()
	_, _ = fmt.Fprintf(os.Stderr, `
Examples:
  # List the studies of a document
  %s --dats-file=study.json --query=datasets

  # List the variables of one study
  %s --dats-file=study.json --query=variables --dataset-id=phs000001.v1

  # List the members of a study group
  %s --dats-file=study.json --query=members --dataset-id=phs000001.v1 --group="all subjects"

Version: %s
`, os.Args[0], os.Args[0], os.Args[0], Version)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
