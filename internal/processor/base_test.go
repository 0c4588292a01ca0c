package processor

import (
	"testing"

	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/objectmodel"
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/roi"
)

func TestMuteList(t *testing.T) {
	var b Base
	b.Init(1, RoleA, TypeOSC)

	ro := objectmodel.New(roi.MatrixInputMute, objectmodel.NewAddressing(3, -1))
	other := objectmodel.New(roi.MatrixInputMute, objectmodel.NewAddressing(4, -1))

	b.SetMutedObjects([]objectmodel.RemoteObject{ro})
	if !b.IsMuted(ro) {
		t.Fatal("ro should be muted")
	}
	if b.IsMuted(other) {
		t.Fatal("other channel should not be muted")
	}
}

func TestActiveObjectsAutoAddsHeartbeat(t *testing.T) {
	var b Base
	b.Init(1, RoleA, TypeOSC)

	ro := objectmodel.New(roi.MatrixInputGain, objectmodel.NewAddressing(1, -1))
	b.SetActiveObjects([]objectmodel.RemoteObject{ro}, true)

	active := b.ActiveObjects()
	hasPing, hasPong := false, false
	for _, o := range active {
		if o.ID == roi.HeartbeatPing {
			hasPing = true
		}
		if o.ID == roi.HeartbeatPong {
			hasPong = true
		}
	}
	if !hasPing || !hasPong {
		t.Fatalf("expected heartbeat ping/pong auto-added, got %v", active)
	}
	if len(active) != 3 {
		t.Fatalf("expected 3 active objects, got %d", len(active))
	}
}

func TestActiveObjectsNoHeartbeatWhenDisabled(t *testing.T) {
	var b Base
	b.Init(1, RoleA, TypeOSC)
	b.SetActiveObjects(nil, false)
	if len(b.ActiveObjects()) != 0 {
		t.Fatal("expected no active objects")
	}
}

func TestListenerNotification(t *testing.T) {
	var b Base
	b.Init(1, RoleA, TypeOSC)

	received := 0
	b.AddListener(ListenerFunc(func(p Processor, ro objectmodel.RemoteObject, data objectmodel.MessageData, meta objectmodel.MetaInfo) {
		received++
	}))

	ro := objectmodel.New(roi.MatrixInputMute, objectmodel.NewAddressing(1, -1))
	b.NotifyListeners(nil, ro, objectmodel.NewInt(objectmodel.NewAddressing(1, -1), 1), objectmodel.NoMeta)
	if received != 1 {
		t.Fatalf("received = %d, want 1", received)
	}
}
