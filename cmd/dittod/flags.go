package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigPath      string
	LogLevel        string
	LogFormat       string
	MetricsPort     int
	ShutdownTimeout time.Duration
	ShowVersion     bool
	ShowHelp        bool
	Validate        bool
}

func parseFlags() *CLIConfig {
	cfg := &CLIConfig{}

	// Define flags with environment variable fallback
	flag.StringVar(&cfg.ConfigPath, "config",
		getEnv("DITTOD_CONFIG", "configs/dittod.yaml"),
		"Path to configuration file (env: DITTOD_CONFIG)")

	flag.StringVar(&cfg.ConfigPath, "c",
		getEnv("DITTOD_CONFIG", "configs/dittod.yaml"),
		"Path to configuration file (env: DITTOD_CONFIG)")

	flag.StringVar(&cfg.LogLevel, "log-level",
		getEnv("DITTOD_LOG_LEVEL", "info"),
		"Log level: debug, info, warn, error (env: DITTOD_LOG_LEVEL)")

	flag.StringVar(&cfg.LogFormat, "log-format",
		getEnv("DITTOD_LOG_FORMAT", "json"),
		"Log format: json, text (env: DITTOD_LOG_FORMAT)")

	flag.IntVar(&cfg.MetricsPort, "metrics-port",
		getEnvInt("DITTOD_METRICS_PORT", 8080),
		"Prometheus metrics port, 0 to disable (env: DITTOD_METRICS_PORT)")

	flag.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout",
		getEnvDuration("DITTOD_SHUTDOWN_TIMEOUT", 30*time.Second),
		"Graceful shutdown timeout (env: DITTOD_SHUTDOWN_TIMEOUT)")

	flag.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	flag.BoolVar(&cfg.ShowVersion, "v", false, "Show version information")
	flag.BoolVar(&cfg.ShowHelp, "help", false, "Show help information")
	flag.BoolVar(&cfg.ShowHelp, "h", false, "Show help information")
	flag.BoolVar(&cfg.Validate, "validate", false, "Validate configuration and exit")

	flag.Usage = printHelp

	flag.Parse()

	return cfg
}

func validateFlags(cfg *CLIConfig) error {
	// Skip validation for special flags
	if cfg.ShowVersion || cfg.ShowHelp {
		return nil
	}

	if _, err := os.Stat(cfg.ConfigPath); err != nil {
		return fmt.Errorf("config file not found: %s", cfg.ConfigPath)
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, cfg.LogLevel) {
		return fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}

	validFormats := []string{"json", "text"}
	if !contains(validFormats, cfg.LogFormat) {
		return fmt.Errorf("invalid log format: %s", cfg.LogFormat)
	}

	if cfg.MetricsPort < 0 || cfg.MetricsPort > 65535 {
		return fmt.Errorf("invalid metrics port: %d", cfg.MetricsPort)
	}

	return nil
}

func printHelp() {
	_, _ = fmt.Fprintf(os.Stderr, `%s - command response listener

Subscribes to the configured NATS subject tree, decodes every command
response envelope, logs it, and exposes codec metrics on /metrics.

Usage:
  %s [flags]

Flags:
  -config, -c        Path to YAML configuration file
  -log-level         Log level: debug, info, warn, error
  -log-format        Log format: json, text
  -metrics-port      Prometheus metrics port, 0 to disable
  -shutdown-timeout  Graceful shutdown timeout
  -validate          Validate configuration and exit
  -version, -v       Show version information
  -help, -h          Show this help

Environment variables:
  DITTOD_CONFIG, DITTOD_LOG_LEVEL, DITTOD_LOG_FORMAT,
  DITTOD_METRICS_PORT, DITTOD_SHUTDOWN_TIMEOUT
`, appName, appName)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
