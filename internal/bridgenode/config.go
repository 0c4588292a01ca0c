package bridgenode

import (
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/handler"
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/objectmodel"
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/processor"
)

// ProtocolSpec is one desired processor within a Node's configuration
// (spec.md §6 "ProtocolA / ProtocolB"). New constructs a fresh instance and
// is only invoked when no running processor with the same id and Type
// already exists — reconfiguration with an unchanged Type reuses the
// running processor via SetState instead (spec.md §4.4 "Configuration
// updates preserve already-running processors if type is unchanged").
type ProtocolSpec struct {
	State processor.Config
	New   func(cfg processor.Config) (processor.Processor, error)
}

// Config is a Node's full desired state (spec.md §6 "Node elements").
type Config struct {
	ID        objectmodel.NodeID
	Handler   handler.Config
	ProtocolA []ProtocolSpec
	ProtocolB []ProtocolSpec
}
