package bridgelog

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/config"
)

func TestNewRespectsConfiguredLevel(t *testing.T) {
	cfg := &config.Config{LogLevel: "warn", LogFormat: "text"}
	logger := New(cfg)

	ctx := context.Background()
	if logger.Enabled(ctx, slog.LevelInfo) {
		t.Fatal("expected info-level logs to be disabled at warn level")
	}
	if !logger.Enabled(ctx, slog.LevelWarn) {
		t.Fatal("expected warn-level logs to be enabled")
	}
}

func TestForSubsystemTagsOutput(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))
	logger := ForSubsystem(base, "engine")
	logger.Info("hello")

	if !strings.Contains(buf.String(), `subsystem=engine`) {
		t.Fatalf("expected subsystem tag in output, got %q", buf.String())
	}
}
