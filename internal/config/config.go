package config

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Config holds all process-level runtime configuration for the bridge.
// Precedence: CLI flags > env vars > defaults.
type Config struct {
	ConfigFile  string // path to the RemoteProtocolBridge configuration tree (XML)
	DataDir     string // directory holding .dbpr project seed files (spec.md §4.2.8)
	MetricsAddr string // listen address for the /metrics and /healthz HTTP endpoints
	LogLevel    string // debug, info, warn, error
	LogFormat   string // text or json
}

// defaults
const (
	defaultConfigFile  = "./bridge.xml"
	defaultDataDir     = "./data"
	defaultMetricsAddr = ":9090"
	defaultLogLevel    = "info"
	defaultLogFormat   = "text"
)

// envPrefix is the prefix for all bridge environment variables.
const envPrefix = "FLOWBRIDGE_"

// Load parses configuration from CLI flags and environment variables.
// Precedence: CLI flags > env vars > defaults.
func Load() (*Config, error) {
	cfg := &Config{}

	fs := flag.NewFlagSet("remoteprotocolbridgecore", flag.ContinueOnError)

	fs.StringVar(&cfg.ConfigFile, "config-file", defaultConfigFile, "path to the RemoteProtocolBridge configuration tree (XML)")
	fs.StringVar(&cfg.DataDir, "data-dir", defaultDataDir, "directory holding .dbpr project seed files")
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", defaultMetricsAddr, "listen address for the /metrics and /healthz endpoints")
	fs.StringVar(&cfg.LogLevel, "log-level", defaultLogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", defaultLogFormat, "log output format (text, json)")

	if err := fs.Parse(os.Args[1:]); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	// Apply env var overrides for any flags not explicitly set on the command line.
	// CLI flags take precedence over env vars.
	applyEnvOverrides(fs, cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides checks environment variables for any flag that was not
// explicitly provided on the command line. This preserves the precedence:
// CLI flags > env vars > defaults.
func applyEnvOverrides(fs *flag.FlagSet, cfg *Config) {
	// Track which flags were explicitly set via CLI.
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})

	// Map of flag name to env var name.
	envMap := map[string]string{
		"config-file":  envPrefix + "CONFIG_FILE",
		"data-dir":     envPrefix + "DATA_DIR",
		"metrics-addr": envPrefix + "METRICS_ADDR",
		"log-level":    envPrefix + "LOG_LEVEL",
		"log-format":   envPrefix + "LOG_FORMAT",
	}

	for flagName, envVar := range envMap {
		if set[flagName] {
			continue
		}
		val, ok := os.LookupEnv(envVar)
		if !ok || val == "" {
			continue
		}
		switch flagName {
		case "config-file":
			cfg.ConfigFile = val
		case "data-dir":
			cfg.DataDir = val
		case "metrics-addr":
			cfg.MetricsAddr = val
		case "log-level":
			cfg.LogLevel = val
		case "log-format":
			cfg.LogFormat = val
		}
	}
}

// validate checks that the config values are sane.
func (c *Config) validate() error {
	if strings.TrimSpace(c.ConfigFile) == "" {
		return fmt.Errorf("config-file must not be empty")
	}
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("data-dir must not be empty")
	}
	if err := validateListenAddr(c.MetricsAddr); err != nil {
		return fmt.Errorf("metrics-addr: %w", err)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("log-level must be one of debug, info, warn, error; got %q", c.LogLevel)
	}
	c.LogLevel = strings.ToLower(c.LogLevel)

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.LogFormat)] {
		return fmt.Errorf("log-format must be one of text, json; got %q", c.LogFormat)
	}
	c.LogFormat = strings.ToLower(c.LogFormat)

	return nil
}

// validateListenAddr accepts a bare ":port" or "host:port" form, the shapes
// net/http.Server.Addr and prometheus exporters expect.
func validateListenAddr(addr string) error {
	host, portStr, err := splitHostPort(addr)
	if err != nil {
		return err
	}
	_ = host
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("port must be numeric, got %q", portStr)
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	return nil
}

func splitHostPort(addr string) (host, port string, err error) {
	idx := strings.LastIndex(addr, ":")
	if idx < 0 {
		return "", "", fmt.Errorf("address %q must be of the form [host]:port", addr)
	}
	return addr[:idx], addr[idx+1:], nil
}

// SlogHandler returns a slog.Handler configured with the appropriate format
// (text or json) and log level.
func (c *Config) SlogHandler(w *os.File) slog.Handler {
	opts := &slog.HandlerOptions{Level: c.SlogLevel()}
	if c.LogFormat == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// SlogLevel returns the slog.Level corresponding to the configured log level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
