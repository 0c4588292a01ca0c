package rttrpm

import (
	"encoding/binary"
	"math"
	"testing"
)

func appendHeader(buf []byte, typ ModuleType, size uint16) []byte {
	buf = append(buf, byte(typ))
	var sz [2]byte
	binary.LittleEndian.PutUint16(sz[:], size)
	return append(buf, sz[:]...)
}

func appendFloat64(buf []byte, v float64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
	return append(buf, b[:]...)
}

func appendUint16(buf []byte, v uint16) []byte {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	return append(buf, b[:]...)
}

func buildPacket(t *testing.T) []byte {
	t.Helper()
	var buf []byte

	// Trackable header (WithoutTimestamp): name "A", 1 submodule.
	buf = appendHeader(buf, ModuleTrackableWithoutTimestamp, 5)
	buf = append(buf, 1, 'A', 1) // nameLen=1, "A", numSubmodules=1

	// Centroid position submodule.
	centroidSize := uint16(2 + 3*8)
	buf = appendHeader(buf, ModuleCentroidPosition, centroidSize)
	buf = appendUint16(buf, 10) // latency
	buf = appendFloat64(buf, 0.25)
	buf = appendFloat64(buf, 0.75)
	buf = appendFloat64(buf, 0.0)

	return buf
}

func TestParsePacketCentroidPosition(t *testing.T) {
	data := buildPacket(t)
	pkt, err := ParsePacket(data)
	if err != nil {
		t.Fatalf("ParsePacket: %v", err)
	}
	if pkt.Trackable.Name != "A" {
		t.Fatalf("name = %q, want A", pkt.Trackable.Name)
	}
	if pkt.CentroidPosition == nil {
		t.Fatal("expected centroid position module")
	}
	if pkt.CentroidPosition.X != 0.25 || pkt.CentroidPosition.Y != 0.75 {
		t.Fatalf("got (%v,%v), want (0.25,0.75)", pkt.CentroidPosition.X, pkt.CentroidPosition.Y)
	}
}

func TestParsePacketSkipsUnknownModule(t *testing.T) {
	var buf []byte
	buf = appendHeader(buf, ModuleTrackableWithoutTimestamp, 3)
	buf = append(buf, 0, 2) // nameLen=0, numSubmodules=2

	// An unrecognized module type with a declared size — must be skipped
	// without aborting the packet.
	buf = appendHeader(buf, 0x7F, 4)
	buf = append(buf, 0xDE, 0xAD, 0xBE, 0xEF)

	centroidSize := uint16(2 + 3*8)
	buf = appendHeader(buf, ModuleCentroidPosition, centroidSize)
	buf = appendUint16(buf, 0)
	buf = appendFloat64(buf, 1)
	buf = appendFloat64(buf, 2)
	buf = appendFloat64(buf, 3)

	pkt, err := ParsePacket(buf)
	if err != nil {
		t.Fatalf("ParsePacket: %v", err)
	}
	if pkt.CentroidPosition == nil || pkt.CentroidPosition.X != 1 {
		t.Fatalf("expected centroid position to survive the unknown module, got %+v", pkt.CentroidPosition)
	}
}

func TestParsePacketRejectsNonTrackableHeader(t *testing.T) {
	var buf []byte
	buf = appendHeader(buf, ModuleCentroidPosition, 26)
	if _, err := ParsePacket(buf); err == nil {
		t.Fatal("expected error for packet not starting with a trackable module")
	}
}
