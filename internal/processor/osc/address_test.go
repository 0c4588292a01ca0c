package osc

import (
	"testing"

	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/roi"
)

func TestResolveAddressChannelOnly(t *testing.T) {
	id, channel, record, ok := ResolveAddress("/dbaudio1/matrixinput/gain/3")
	if !ok {
		t.Fatal("expected match")
	}
	if id != roi.MatrixInputGain {
		t.Fatalf("id = %v, want MatrixInputGain", id)
	}
	if channel != 3 {
		t.Fatalf("channel = %d, want 3", channel)
	}
	if record != -1 {
		t.Fatalf("record = %d, want -1", record)
	}
}

func TestResolveAddressChannelAndRecord(t *testing.T) {
	id, channel, record, ok := ResolveAddress("/dbaudio1/coordinatemapping/source_position_xy/2/5")
	if !ok {
		t.Fatal("expected match")
	}
	if id != roi.CoordinateMappingSourcePositionXY {
		t.Fatalf("id = %v, want CoordinateMappingSourcePositionXY", id)
	}
	if record != 2 {
		t.Fatalf("record = %d, want 2", record)
	}
	if channel != 5 {
		t.Fatalf("channel = %d, want 5", channel)
	}
}

func TestResolveAddressNoMatch(t *testing.T) {
	if _, _, _, ok := ResolveAddress("/unknown/address"); ok {
		t.Fatal("expected no match")
	}
}

func TestAddressForRoundTrip(t *testing.T) {
	if AddressFor(roi.SceneRecall) != "/dbaudio1/scene/recall" {
		t.Fatalf("AddressFor(SceneRecall) = %q", AddressFor(roi.SceneRecall))
	}
	if AddressFor(roi.HeartbeatPing) != "" {
		t.Fatalf("AddressFor(HeartbeatPing) should be empty, got %q", AddressFor(roi.HeartbeatPing))
	}
}
