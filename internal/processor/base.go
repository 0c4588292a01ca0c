package processor

import (
	"sync"

	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/objectmodel"
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/roi"
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/timerthread"
)

// Base implements the behaviors spec.md §4.2 "Shared behaviors" calls out:
// listener fan-out, mute-list filtering, and the active-object polling
// timer. Protocol-specific processors embed Base and call its helpers from
// their own Start/Stop/SetState/SendRemoteObjectMessage.
type Base struct {
	id   objectmodel.ProtocolID
	role Role
	typ  Type

	mu            sync.Mutex
	activeObjects map[objectmodel.RemoteObject]struct{}
	mutedObjects  map[objectmodel.RemoteObject]struct{}
	listeners     []Listener

	pollTimer timerthread.Timer
}

// Init sets the processor's identity. Called once by the concrete
// processor's constructor.
func (b *Base) Init(id objectmodel.ProtocolID, role Role, typ Type) {
	b.id = id
	b.role = role
	b.typ = typ
	b.activeObjects = make(map[objectmodel.RemoteObject]struct{})
	b.mutedObjects = make(map[objectmodel.RemoteObject]struct{})
}

func (b *Base) ID() objectmodel.ProtocolID { return b.id }
func (b *Base) Role() Role                 { return b.role }
func (b *Base) Type() Type                 { return b.typ }

// AddListener registers l to receive OnProtocolMessageReceived callbacks.
func (b *Base) AddListener(l Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, l)
}

// RemoveListener unregisters l.
func (b *Base) RemoveListener(l Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, existing := range b.listeners {
		if existing == l {
			b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
			return
		}
	}
}

// NotifyListeners fans out a decoded message to every registered listener.
// self is the Processor embedding this Base (passed explicitly since Base
// cannot see the outer type).
func (b *Base) NotifyListeners(self Processor, ro objectmodel.RemoteObject, data objectmodel.MessageData, meta objectmodel.MetaInfo) {
	b.mu.Lock()
	listeners := make([]Listener, len(b.listeners))
	copy(listeners, b.listeners)
	b.mu.Unlock()

	for _, l := range listeners {
		l.OnProtocolMessageReceived(self, ro, data, meta)
	}
}

// SetActiveObjects replaces the active-object set. ROI_HeartbeatPing/Pong
// are always added when usesActiveObjects is true, regardless of what the
// configuration explicitly lists (spec.md §4.2 "Shared behaviors").
func (b *Base) SetActiveObjects(objects []objectmodel.RemoteObject, usesActiveObjects bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.activeObjects = make(map[objectmodel.RemoteObject]struct{}, len(objects)+2)
	for _, ro := range objects {
		b.activeObjects[ro] = struct{}{}
	}
	if usesActiveObjects {
		b.activeObjects[objectmodel.New(roi.HeartbeatPing, objectmodel.Invalid)] = struct{}{}
		b.activeObjects[objectmodel.New(roi.HeartbeatPong, objectmodel.Invalid)] = struct{}{}
	}
}

// SetMutedObjects replaces the mute list.
func (b *Base) SetMutedObjects(objects []objectmodel.RemoteObject) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mutedObjects = make(map[objectmodel.RemoteObject]struct{}, len(objects))
	for _, ro := range objects {
		b.mutedObjects[ro] = struct{}{}
	}
}

// IsMuted reports whether ro is on the mute list. Incoming or outgoing
// messages whose (roi, addressing) matches are dropped silently (spec.md
// §4.2 "Shared behaviors: Muting").
func (b *Base) IsMuted(ro objectmodel.RemoteObject) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.mutedObjects[ro]
	return ok
}

// ActiveObjects returns a snapshot of the active-object list.
func (b *Base) ActiveObjects() []objectmodel.RemoteObject {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]objectmodel.RemoteObject, 0, len(b.activeObjects))
	for ro := range b.activeObjects {
		out = append(out, ro)
	}
	return out
}

// MutedObjects returns a snapshot of the mute list.
func (b *Base) MutedObjects() []objectmodel.RemoteObject {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]objectmodel.RemoteObject, 0, len(b.mutedObjects))
	for ro := range b.mutedObjects {
		out = append(out, ro)
	}
	return out
}

// StartPolling starts the active-object timer, if there are active objects
// and intervalMs > 0 (spec.md §4.2 "Active-object timer"). onPoll is
// invoked once per active object per tick; the OSC processor uses it to
// issue a value-query (an empty-data send).
func (b *Base) StartPolling(intervalMs int, onPoll func(ro objectmodel.RemoteObject)) {
	objects := b.ActiveObjects()
	if len(objects) == 0 || intervalMs <= 0 {
		return
	}
	b.pollTimer.Start(intervalMs, intervalMs, func() {
		for _, ro := range b.ActiveObjects() {
			onPoll(ro)
		}
	})
}

// StopPolling stops the active-object timer.
func (b *Base) StopPolling() {
	b.pollTimer.Stop()
}
