// Package main implements dats-query, which loads a DATS JSON document
// into a triple index and runs tabular reports over it.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/dcppc-phosphorous/GTEC-ETL/graph"
	"github.com/dcppc-phosphorous/GTEC-ETL/graph/query"
	"github.com/dcppc-phosphorous/GTEC-ETL/metric"
)

const (
	// Version is the build version string.
	Version = "0.1.0"
	appName = "dats-query"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("query failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run() error {
	cliCfg := parseFlags()
	if cliCfg.ShowVersion {
		fmt.Printf("%s %s\n", appName, Version)
		return nil
	}
	if err := validateFlags(cliCfg); err != nil {
		return err
	}

	logger := setupLogger(cliCfg.LogLevel, cliCfg.LogFormat)
	slog.SetDefault(logger)

	registry := metric.NewRegistry()

	doc, err := os.ReadFile(cliCfg.DatsFile)
	if err != nil {
		return fmt.Errorf("read document %s: %w", cliCfg.DatsFile, err)
	}

	loadOpts := []graph.LoadOption{graph.WithMetrics(registry)}
	if cliCfg.NoSchemaValidation {
		loadOpts = append(loadOpts, graph.WithoutSchemaValidation())
	}
	idx, err := graph.LoadBytes(doc, loadOpts...)
	if err != nil {
		return err
	}
	logger.Info("document loaded",
		"file", cliCfg.DatsFile,
		"subjects", idx.Len(),
		"root", idx.Root())

	eng := query.New(idx, query.WithMetrics(registry))
	table, err := runQuery(eng, cliCfg)
	if err != nil {
		return err
	}
	_, err = fmt.Print(table.TSV())
	return err
}

func runQuery(eng *query.Engine, cliCfg *CLIConfig) (query.Table, error) {
	switch cliCfg.Query {
	case "datasets":
		return eng.ListChildDatasets()
	case "variables":
		return eng.ListDatasetVariables(cliCfg.DatasetID)
	case "members":
		return eng.ListStudyGroupMembers(cliCfg.DatasetID, cliCfg.Group)
	case "dump":
		return eng.TabularDump()
	default:
		return query.Table{}, fmt.Errorf("unknown query %q", cliCfg.Query)
	}
}
