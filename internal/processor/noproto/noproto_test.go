package noproto

import (
	"testing"

	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/objectmodel"
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/processor"
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/roi"
)

type captureListener struct {
	received []objectmodel.RemoteObject
}

func (c *captureListener) OnProtocolMessageReceived(_ processor.Processor, ro objectmodel.RemoteObject, _ objectmodel.MessageData, _ objectmodel.MetaInfo) {
	c.received = append(c.received, ro)
}

func TestSeedDefaultsPopulatesDeviceNameAndScene(t *testing.T) {
	p := New(objectmodel.ProtocolID(1), processor.RoleA, nil)

	ro := objectmodel.New(roi.SettingsDeviceName, objectmodel.Invalid)
	v, ok := p.cache.Peek(ro)
	if !ok {
		t.Fatal("expected device name seeded")
	}
	name, ok := v.String()
	if !ok || name != "InternalSim" {
		t.Fatalf("got %q, want InternalSim", name)
	}

	sceneRO := objectmodel.New(roi.SceneSceneIndex, objectmodel.Invalid)
	scene, ok := p.cache.Peek(sceneRO)
	if !ok {
		t.Fatal("expected scene index seeded")
	}
	s, _ := scene.String()
	if s != "50.0" {
		t.Fatalf("got scene index %q, want 50.0 (last seeded default)", s)
	}
}

func TestQueryReturnsCachedValue(t *testing.T) {
	p := New(objectmodel.ProtocolID(1), processor.RoleA, nil)
	ro := objectmodel.New(roi.MatrixInputChannelName, objectmodel.NewAddressing(1, objectmodel.InvalidAddressValue))
	p.Base.SetActiveObjects(nil, false)

	listener := &captureListener{}
	p.AddListener(listener)

	if err := p.SendRemoteObjectMessage(ro, objectmodel.Empty(ro.Addr), -1); err != nil {
		t.Fatalf("SendRemoteObjectMessage: %v", err)
	}
	if len(listener.received) != 1 || listener.received[0].ID != roi.MatrixInputChannelName {
		t.Fatalf("expected one MatrixInputChannelName notification, got %+v", listener.received)
	}
}

func TestSetXYDecomposesIntoXAndY(t *testing.T) {
	p := New(objectmodel.ProtocolID(1), processor.RoleA, nil)
	listener := &captureListener{}
	p.AddListener(listener)

	addr := objectmodel.NewAddressing(1, 1)
	ro := objectmodel.New(roi.CoordinateMappingSourcePositionXY, addr)
	data := objectmodel.NewFloat(addr, 0.25, 0.75)

	if err := p.SendRemoteObjectMessage(ro, data, 5); err != nil {
		t.Fatalf("SendRemoteObjectMessage: %v", err)
	}

	seen := map[roi.ID]bool{}
	for _, r := range listener.received {
		seen[r.ID] = true
	}
	for _, want := range []roi.ID{
		roi.CoordinateMappingSourcePositionXY,
		roi.CoordinateMappingSourcePosition,
		roi.CoordinateMappingSourcePositionX,
		roi.CoordinateMappingSourcePositionY,
	} {
		if !seen[want] {
			t.Fatalf("expected notification for %s, got %+v", want, listener.received)
		}
	}

	full, ok := p.cache.Peek(objectmodel.New(roi.CoordinateMappingSourcePosition, addr))
	if !ok {
		t.Fatal("expected base XYZ object cached")
	}
	vs, ok := full.Floats()
	if !ok || len(vs) != 3 || vs[0] != 0.25 || vs[1] != 0.75 {
		t.Fatalf("got %v, want [0.25 0.75 z]", vs)
	}
}

func TestScenePreviousDecrementsIndex(t *testing.T) {
	p := New(objectmodel.ProtocolID(1), processor.RoleA, nil)
	listener := &captureListener{}
	p.AddListener(listener)

	ro := objectmodel.New(roi.ScenePrevious, objectmodel.Invalid)
	if err := p.SendRemoteObjectMessage(ro, objectmodel.Empty(objectmodel.Invalid), -1); err != nil {
		t.Fatalf("SendRemoteObjectMessage: %v", err)
	}

	sceneRO := objectmodel.New(roi.SceneSceneIndex, objectmodel.Invalid)
	v, ok := p.cache.Peek(sceneRO)
	if !ok {
		t.Fatal("expected scene index updated")
	}
	s, _ := v.String()
	if s != "49.0" {
		t.Fatalf("got %q, want 49.0", s)
	}
}

func TestAnimatorCircleProducesBoundedValues(t *testing.T) {
	a := newAnimator(AnimationCircle)
	for i := 0; i < 50; i++ {
		a.bumpTick()
		v := a.stepFloat(0, roi.PositioningSourceSpread, 3, 0)
		if v < 0 || v > 1 {
			t.Fatalf("tick %d: got %v, want within [0,1]", i, v)
		}
	}
}

func TestHeartbeatCadence(t *testing.T) {
	a := newAnimator(AnimationOff)
	count := 0
	for i := 0; i < 120; i++ {
		a.bumpTick()
		if a.isHeartbeatTick() {
			count++
		}
	}
	if count != 3 {
		t.Fatalf("got %d heartbeat ticks in 120, want 3", count)
	}
}
