/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

// Command lfureplay replays a script of cache operations against an LFU cache
// and prints lookup results, cache content and, optionally, Prometheus metrics.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/acronis/go-appkit/config"
	"github.com/acronis/go-appkit/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/pflag"

	"github.com/acronis/go-lfucache/lfucache"
)

const envVarsPrefix = "LFUREPLAY"

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		_, _ = fmt.Fprintln(os.Stderr, "lfureplay:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	flags := pflag.NewFlagSet("lfureplay", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	cfgPath := flags.StringP("config", "c", "", "path to a YAML or JSON config file with \"lfucache\" and \"log\" sections")
	scriptPath := flags.StringP("script", "s", "", "path to a YAML script with cache operations")
	printMetrics := flags.Bool("metrics", false, "print cache metrics in Prometheus text format at the end")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *scriptPath == "" {
		return fmt.Errorf("--script is required")
	}

	cacheCfg := lfucache.NewConfig()
	logCfg := log.NewConfig()
	if err := loadConfig(*cfgPath, cacheCfg, logCfg); err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, closeLogger := newLogger(logCfg, stdout, stderr)
	defer closeLogger()

	scriptFile, err := os.Open(*scriptPath)
	if err != nil {
		return fmt.Errorf("open script: %w", err)
	}
	defer func() { _ = scriptFile.Close() }()
	s, err := parseScript(scriptFile)
	if err != nil {
		return err
	}

	if *printMetrics {
		cacheCfg.Metrics.Enabled = true
	}
	cache, promMetrics, err := lfucache.NewFromConfig[string, string](cacheCfg, lfucache.Options[string, string]{
		OnEvict: lfucache.NewLoggingEvictCallback[string, string](logger),
	})
	if err != nil {
		return err
	}
	registry := prometheus.NewRegistry()
	if promMetrics != nil {
		promMetrics.MustRegisterIn(registry)
	}

	logger.Info("replaying script",
		log.String("script", *scriptPath), log.Int("ops", len(s.Ops)), log.Int("capacity", cache.Capacity()))
	if err = newReplayer(cache, stdout, logger).run(s); err != nil {
		logger.Error("replay failed", log.Error(err))
		return err
	}

	if *printMetrics {
		return writeMetrics(registry, stdout)
	}
	return nil
}

// loadConfig reads configuration from the file if it's given.
// Environment variables with the LFUREPLAY_ prefix override values from the file and defaults.
func loadConfig(path string, cfgs ...config.Config) error {
	loader := config.NewDefaultLoader(envVarsPrefix)
	if path == "" {
		return loadDefaults(loader.DataProvider, cfgs...)
	}
	dataType := config.DataTypeYAML
	if strings.EqualFold(filepath.Ext(path), ".json") {
		dataType = config.DataTypeJSON
	}
	return loader.LoadFromFile(path, dataType, cfgs[0], cfgs[1:]...)
}

func loadDefaults(dp config.DataProvider, cfgs ...config.Config) error {
	dpFor := func(cfg config.Config) config.DataProvider {
		if kp, ok := cfg.(config.KeyPrefixProvider); ok && kp.KeyPrefix() != "" {
			return config.NewKeyPrefixedDataProvider(dp, kp.KeyPrefix())
		}
		return dp
	}
	for _, cfg := range cfgs {
		cfg.SetProviderDefaults(dpFor(cfg))
	}
	for _, cfg := range cfgs {
		if err := cfg.Set(dpFor(cfg)); err != nil {
			return err
		}
	}
	return nil
}

func writeMetrics(gatherer prometheus.Gatherer, w io.Writer) error {
	families, err := gatherer.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err = expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}
