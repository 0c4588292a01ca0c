package config

import (
	"log/slog"
	"os"
	"testing"
)

func TestDefaults(t *testing.T) {
	// Clear any env vars that might interfere.
	for _, env := range []string{
		"FLOWBRIDGE_CONFIG_FILE", "FLOWBRIDGE_DATA_DIR", "FLOWBRIDGE_METRICS_ADDR",
		"FLOWBRIDGE_LOG_LEVEL", "FLOWBRIDGE_LOG_FORMAT",
	} {
		t.Setenv(env, "")
		os.Unsetenv(env)
	}

	os.Args = []string{"remoteprotocolbridgecore"}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.ConfigFile != defaultConfigFile {
		t.Errorf("ConfigFile = %q, want %q", cfg.ConfigFile, defaultConfigFile)
	}
	if cfg.DataDir != defaultDataDir {
		t.Errorf("DataDir = %q, want %q", cfg.DataDir, defaultDataDir)
	}
	if cfg.MetricsAddr != defaultMetricsAddr {
		t.Errorf("MetricsAddr = %q, want %q", cfg.MetricsAddr, defaultMetricsAddr)
	}
	if cfg.LogLevel != defaultLogLevel {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, defaultLogLevel)
	}
	if cfg.LogFormat != defaultLogFormat {
		t.Errorf("LogFormat = %q, want %q", cfg.LogFormat, defaultLogFormat)
	}
}

func TestEnvVarOverride(t *testing.T) {
	os.Args = []string{"remoteprotocolbridgecore"}
	t.Setenv("FLOWBRIDGE_METRICS_ADDR", ":9191")
	t.Setenv("FLOWBRIDGE_DATA_DIR", "/tmp/bridge-test")
	t.Setenv("FLOWBRIDGE_LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.MetricsAddr != ":9191" {
		t.Errorf("MetricsAddr = %q, want :9191", cfg.MetricsAddr)
	}
	if cfg.DataDir != "/tmp/bridge-test" {
		t.Errorf("DataDir = %q, want /tmp/bridge-test", cfg.DataDir)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
}

func TestCLIFlagsPrecedence(t *testing.T) {
	// CLI flags should override env vars.
	os.Args = []string{"remoteprotocolbridgecore", "--metrics-addr", ":3000", "--log-level", "warn"}
	t.Setenv("FLOWBRIDGE_METRICS_ADDR", ":9191")
	t.Setenv("FLOWBRIDGE_LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.MetricsAddr != ":3000" {
		t.Errorf("MetricsAddr = %q, want :3000 (CLI should override env)", cfg.MetricsAddr)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want warn (CLI should override env)", cfg.LogLevel)
	}
}

func TestValidateInvalidMetricsAddr(t *testing.T) {
	os.Args = []string{"remoteprotocolbridgecore", "--metrics-addr", "not-an-addr"}
	_, err := Load()
	if err == nil {
		t.Fatal("expected error for invalid metrics-addr, got nil")
	}
}

func TestValidateInvalidLogLevel(t *testing.T) {
	os.Args = []string{"remoteprotocolbridgecore", "--log-level", "verbose"}
	_, err := Load()
	if err == nil {
		t.Fatal("expected error for invalid log level, got nil")
	}
}

func TestValidateEmptyConfigFile(t *testing.T) {
	os.Args = []string{"remoteprotocolbridgecore", "--config-file", ""}
	_, err := Load()
	if err == nil {
		t.Fatal("expected error when config-file is empty")
	}
}

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := &Config{LogLevel: tt.level}
			if got := cfg.SlogLevel(); got != tt.want {
				t.Errorf("SlogLevel() = %v, want %v", got, tt.want)
			}
		})
	}
}
