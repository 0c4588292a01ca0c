package ocp1

import (
	"testing"

	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/roi"
)

func TestOnoRoundTrip(t *testing.T) {
	ono, ok := onoFor(roi.MatrixInputGain, 5, -1)
	if !ok {
		t.Fatal("expected ono for MatrixInputGain")
	}
	id, channel, record, ok := resolveONo(ono)
	if !ok {
		t.Fatal("expected resolve")
	}
	if id != roi.MatrixInputGain || channel != 5 || record != -1 {
		t.Fatalf("got (%v,%d,%d), want (MatrixInputGain,5,-1)", id, channel, record)
	}
}

func TestPositioningProxyTarget(t *testing.T) {
	xOno, _ := onoFor(roi.PositioningSourcePositionX, 1, -1)
	xyzOno, _ := onoFor(roi.PositioningSourcePosition, 1, -1)
	if xOno != xyzOno {
		t.Fatal("X requests should proxy onto the XYZ object's ONo")
	}
}

func TestIsSceneAgentMethod(t *testing.T) {
	if !isSceneAgentMethod(roi.SceneRecall) {
		t.Fatal("SceneRecall should be a SceneAgent method")
	}
	if isSceneAgentMethod(roi.MatrixInputGain) {
		t.Fatal("MatrixInputGain should not be a SceneAgent method")
	}
}

func TestPendingSetValueCorrelation(t *testing.T) {
	p := newPendingTables()
	h := p.newHandle()
	p.addSetValue(h, ONo(42), 7)

	entry, ok := p.popSetValue(h)
	if !ok {
		t.Fatal("expected pending set-value entry")
	}
	if entry.ONo != 42 || entry.ExternalID != 7 {
		t.Fatalf("got %+v, want ONo=42 ExternalID=7", entry)
	}
	if _, ok := p.popSetValue(h); ok {
		t.Fatal("handle should be consumed after pop")
	}
}

func TestFrameMarshalRoundTrip(t *testing.T) {
	f := frame{Kind: kindCommand, Handle: 9, ONo: 123, Method: 1, Values: []float32{1.5, -2.5}}
	raw := marshalFrame(f)

	// strip the 4-byte length prefix this bridge uses for TCP framing.
	got, err := unmarshalFrame(raw[4:])
	if err != nil {
		t.Fatalf("unmarshalFrame: %v", err)
	}
	if got.Handle != 9 || got.ONo != 123 || got.Method != 1 {
		t.Fatalf("got %+v", got)
	}
	if len(got.Values) != 2 || got.Values[0] != 1.5 || got.Values[1] != -2.5 {
		t.Fatalf("values = %v", got.Values)
	}
}
