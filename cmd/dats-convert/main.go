// Package main implements dats-convert, which turns tabular study
// metadata bundles into a single linked DATS JSON document.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/dcppc-phosphorous/GTEC-ETL/config"
	"github.com/dcppc-phosphorous/GTEC-ETL/convert"
	"github.com/dcppc-phosphorous/GTEC-ETL/dats"
	"github.com/dcppc-phosphorous/GTEC-ETL/metric"
)

const (
	// Version is the build version string.
	Version = "0.1.0"
	appName = "dats-convert"
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
		slog.Error("conversion failed", "error", err, "exit_code", 1)
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

	cfg, err := loadConfig(cliCfg)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)

	registry := metric.NewRegistry()
	if cfg.MetricsPort > 0 {
		srv := registry.Serve(cfg.MetricsPort)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
		logger.Info("metrics server started", "port", cfg.MetricsPort)
	}

	input, err := os.Open(cliCfg.InputPath)
	if err != nil {
		return fmt.Errorf("open input %s: %w", cliCfg.InputPath, err)
	}
	defer func() { _ = input.Close() }()

	bundle, err := convert.LoadBundle(input)
	if err != nil {
		return err
	}

	store := dats.NewStore(
		dats.WithBackLinks(cfg.AllowBackLinks),
		dats.WithMetrics(registry),
	)
	converter := convert.New(store,
		convert.WithLogger(logger),
		convert.WithMaxOutputSamples(cfg.MaxOutputSamples),
	)

	root, err := converter.Convert(bundle)
	if err != nil {
		return err
	}
	logger.Info("conversion complete",
		"nodes", store.Len(),
		"root", root.ID(),
		"back_links", cfg.AllowBackLinks)

	return writeDocument(cliCfg, registry, root)
}

func writeDocument(cliCfg *CLIConfig, registry *metric.Registry, root *dats.Node) error {
	out := os.Stdout
	if cliCfg.OutputPath != "" && cliCfg.OutputPath != "-" {
		f, err := os.Create(cliCfg.OutputPath)
		if err != nil {
			return fmt.Errorf("create output %s: %w", cliCfg.OutputPath, err)
		}
		defer func() { _ = f.Close() }()
		out = f
	}

	builder := dats.NewBuilder(dats.WithBuilderMetrics(registry))
	if cliCfg.Pretty {
		doc, err := builder.MarshalIndent(root, "", "  ")
		if err != nil {
			return err
		}
		doc = append(doc, '\n')
		_, err = out.Write(doc)
		return err
	}
	return builder.Write(out, root)
}

func loadConfig(cliCfg *CLIConfig) (config.Config, error) {
	cfg, err := config.Load(cliCfg.ConfigPath)
	if err != nil {
		return config.Config{}, err
	}

	// Explicit flags override the config file.
	if cliCfg.backLinksSet {
		cfg.AllowBackLinks = cliCfg.AllowBackLinks
	}
	if cliCfg.maxSamplesSet {
		cfg.MaxOutputSamples = cliCfg.MaxOutputSamples
	}
	if cliCfg.metricsPortSet {
		cfg.MetricsPort = cliCfg.MetricsPort
	}
	cfg.Logging.Level = cliCfg.LogLevel
	cfg.Logging.Format = cliCfg.LogFormat

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
