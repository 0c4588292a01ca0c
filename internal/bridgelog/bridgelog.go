// Package bridgelog centralizes construction of the slog.Logger handed to
// every bridge subsystem, following the teacher's cmd/flowpbx/main.go
// convention of one process-wide logger configured from Config and
// specialized per component via logger.With("subsystem", ...).
package bridgelog

import (
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/config"
)

// New builds the process-wide logger from cfg's log level/format and tags
// every line with a freshly generated instance_id, the way the teacher's
// pgstore tags each installation row with its own instanceID, so that logs
// from overlapping process restarts or multiple deployed instances can be
// told apart by a downstream log aggregator.
func New(cfg *config.Config) *slog.Logger {
	return slog.New(cfg.SlogHandler(os.Stdout)).With("instance_id", uuid.NewString())
}

// ForSubsystem returns a child logger tagged with the given subsystem name,
// the way internal/engine and internal/bridgenode tag their own loggers.
func ForSubsystem(logger *slog.Logger, subsystem string) *slog.Logger {
	return logger.With("subsystem", subsystem)
}
