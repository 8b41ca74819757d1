// Package main implements the entry point for dittod, a command response
// listener. It decodes every response envelope published on the configured
// NATS subject tree, logs it, and exposes codec metrics over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/haoxiangmiao/ditto/envelope"
	"github.com/haoxiangmiao/ditto/metric"
	"github.com/haoxiangmiao/ditto/natsbridge"
	"github.com/haoxiangmiao/ditto/policies"
	"github.com/haoxiangmiao/ditto/things"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "dittod"
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
		slog.Error("Application failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run() error {
	cliCfg, logger, shouldExit, err := initializeCLI()
	if shouldExit || err != nil {
		return err
	}

	cfg, err := loadConfig(cliCfg.ConfigPath)
	if err != nil {
		return err
	}

	if cliCfg.Validate {
		slog.Info("Configuration is valid")
		return nil
	}

	codec, promRegistry, err := buildCodec()
	if err != nil {
		return fmt.Errorf("build codec: %w", err)
	}

	slog.Info("Connecting to NATS", "url", cfg.URL)
	conn, err := nats.Connect(cfg.URL,
		nats.Name(appName),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second))
	if err != nil {
		return fmt.Errorf("connect to NATS: %w", err)
	}
	defer func() {
		if err := conn.Drain(); err != nil {
			slog.Warn("NATS drain failed", "error", err)
		}
	}()

	bridge, err := natsbridge.NewBridge(conn, codec, cfg, natsbridge.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("build bridge: %w", err)
	}

	subject := cfg.SubjectPrefix + ".>"
	sub, err := bridge.Subscribe(subject, func(env *envelope.Envelope) {
		logger.Info("response",
			"type", env.TypeTag(),
			"status", int(env.Status()),
			"entity_id", env.EntityID(),
			"path", env.ResourcePath())
	})
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", subject, err)
	}
	defer func() { _ = sub.Unsubscribe() }()

	slog.Info("Listening for responses", "subject", subject)

	metricsServer := startMetricsServer(cliCfg.MetricsPort, promRegistry)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	slog.Info("Shutting down", "timeout", cliCfg.ShutdownTimeout)
	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cliCfg.ShutdownTimeout)
		defer cancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			slog.Warn("Metrics server shutdown failed", "error", err)
		}
	}
	return nil
}

// initializeCLI parses flags and sets up logging
func initializeCLI() (*CLIConfig, *slog.Logger, bool, error) {
	cliCfg := parseFlags()
	if err := validateFlags(cliCfg); err != nil {
		return nil, nil, false, fmt.Errorf("invalid flags: %w", err)
	}

	if cliCfg.ShowVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return nil, nil, true, nil
	}

	if cliCfg.ShowHelp {
		printHelp()
		return nil, nil, true, nil
	}

	logger := setupLogger(cliCfg.LogLevel, cliCfg.LogFormat)
	slog.SetDefault(logger)

	slog.Info("Starting dittod",
		"version", Version,
		"build_time", BuildTime,
		"config_path", cliCfg.ConfigPath)

	return cliCfg, logger, false, nil
}

// loadConfig reads and validates the bridge configuration
func loadConfig(path string) (natsbridge.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return natsbridge.Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := natsbridge.ParseConfig(data)
	if err != nil {
		return natsbridge.Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// buildCodec wires the type registry, codec and metric collectors
func buildCodec() (*envelope.Codec, *prometheus.Registry, error) {
	registry := envelope.NewRegistry()
	if err := things.Register(registry); err != nil {
		return nil, nil, err
	}
	if err := policies.Register(registry); err != nil {
		return nil, nil, err
	}

	promRegistry := prometheus.NewRegistry()
	codecMetrics := metric.NewCodecMetrics()
	if err := codecMetrics.Register(promRegistry); err != nil {
		return nil, nil, err
	}

	codec := envelope.NewCodec(registry, envelope.WithObserver(codecMetrics))
	return codec, promRegistry, nil
}

// startMetricsServer serves /metrics, or returns nil when disabled
func startMetricsServer(port int, registry *prometheus.Registry) *http.Server {
	if port == 0 {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("Metrics server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Metrics server failed", "error", err)
		}
	}()
	return server
}
