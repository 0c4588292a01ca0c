package processor

import "github.com/ChristianAhrens/remoteprotocolbridgecore/internal/objectmodel"

// Processor is the common contract every protocol-specific implementation
// honors (spec.md §4.2).
type Processor interface {
	Start() error
	Stop() error
	SetState(cfg Config) error

	SendRemoteObjectMessage(ro objectmodel.RemoteObject, data objectmodel.MessageData, externalID int) error

	AddListener(l Listener)
	RemoveListener(l Listener)

	ID() objectmodel.ProtocolID
	Type() Type
	Role() Role

	ActiveObjects() []objectmodel.RemoteObject
	MutedObjects() []objectmodel.RemoteObject
}
