// Package rttrpm implements the Blacktrax RTTrPM packet parser (spec.md
// §4.2.5), grounded on
// original_source/.../RTTrPMProtocolProcessor/RTTrPMReceiver/Modules/*.
package rttrpm

import (
	"encoding/binary"
	"fmt"
	"math"
)

// ModuleType is the RTTrPM packet module type code (PacketModule.h).
type ModuleType uint8

const (
	ModuleInvalid                     ModuleType = 0x00
	ModuleTrackableWithTimestamp       ModuleType = 0x51
	ModuleTrackableWithoutTimestamp    ModuleType = 0x01
	ModuleCentroidPosition             ModuleType = 0x02
	ModuleOrientationQuaternion        ModuleType = 0x03
	ModuleOrientationEuler             ModuleType = 0x04
	ModuleTrackedPointPosition         ModuleType = 0x06
	ModuleCentroidAccelVelo            ModuleType = 0x20
	ModuleTrackedPointAccelVelo        ModuleType = 0x21
	ModuleZoneCollisionDetection       ModuleType = 0x22
)

// Trackable carries the header fields every RTTrPM packet body starts
// with: the tracked object's name, an optional sequence number (only
// present in the timestamped trackable variant), and the submodule count
// that follows (spec.md §4.2.5 "trackable header with name and submodule
// count").
type Trackable struct {
	Name             string
	HasSeqNumber     bool
	SeqNumber        uint32
	NumberOfSubmodules uint8
}

// CentroidPosition is a 3D position sample with an approximate latency
// (PacketModule.h CentroidPosition, 0x02).
type CentroidPosition struct {
	LatencyMs    uint16
	X, Y, Z      float64
}

// CentroidAccelVelo carries position plus acceleration and velocity
// (CentroidAAVModule, 0x20).
type CentroidAccelVelo struct {
	X, Y, Z          float64
	AccelX, AccelY, AccelZ float32
	VeloX, VeloY, VeloZ    float32
}

// TrackedPointPosition is a single tracked point's position plus its index
// within the trackable (TrackedPointPosModule, 0x06).
type TrackedPointPosition struct {
	LatencyMs uint16
	X, Y, Z   float64
	Index     uint8
}

// OrientationEuler is a Euler-angle orientation sample (0x04).
type OrientationEuler struct {
	LatencyMs uint16
	Order     uint16
	R1, R2, R3 float64
}

// OrientationQuaternion is a quaternion orientation sample (0x03).
type OrientationQuaternion struct {
	LatencyMs      uint16
	Qx, Qy, Qz, Qw float64
}

// ZoneCollision lists the named zones the trackable currently occupies
// (ZoneCollisionDetectModule, 0x22).
type ZoneCollision struct {
	Zones []string
}

// header is the 3-byte (type, size) prefix every module starts with
// (PacketModule::readData).
type header struct {
	Type ModuleType
	Size uint16
}

func readHeader(data []byte, pos *int) (header, error) {
	if *pos+3 > len(data) {
		return header{}, fmt.Errorf("rttrpm: truncated module header at %d", *pos)
	}
	h := header{Type: ModuleType(data[*pos]), Size: binary.LittleEndian.Uint16(data[*pos+1:])}
	*pos += 3
	if h.Size == 0 || h.Type == ModuleInvalid {
		return header{}, fmt.Errorf("rttrpm: invalid module (size=%d type=0x%02x)", h.Size, h.Type)
	}
	return h, nil
}

func readFloat64(data []byte, pos *int) (float64, error) {
	if *pos+8 > len(data) {
		return 0, fmt.Errorf("rttrpm: truncated float64 at %d", *pos)
	}
	v := math.Float64frombits(binary.LittleEndian.Uint64(data[*pos:]))
	*pos += 8
	return v, nil
}

func readFloat32(data []byte, pos *int) (float32, error) {
	if *pos+4 > len(data) {
		return 0, fmt.Errorf("rttrpm: truncated float32 at %d", *pos)
	}
	v := math.Float32frombits(binary.LittleEndian.Uint32(data[*pos:]))
	*pos += 4
	return v, nil
}

func readUint16(data []byte, pos *int) (uint16, error) {
	if *pos+2 > len(data) {
		return 0, fmt.Errorf("rttrpm: truncated uint16 at %d", *pos)
	}
	v := binary.LittleEndian.Uint16(data[*pos:])
	*pos += 2
	return v, nil
}

// readTrackable parses the trackable header. The submodule-count byte sits
// immediately after the name (and, for the timestamped variant, the
// 4-byte sequence number) — the same shape PacketModuleTrackable::readData
// follows.
func readTrackable(h header, data []byte, pos *int) (Trackable, error) {
	if *pos+1 > len(data) {
		return Trackable{}, fmt.Errorf("rttrpm: truncated trackable name length")
	}
	nameLen := int(data[*pos])
	*pos++
	if *pos+nameLen > len(data) {
		return Trackable{}, fmt.Errorf("rttrpm: truncated trackable name")
	}
	name := string(data[*pos : *pos+nameLen])
	*pos += nameLen

	t := Trackable{Name: name}
	if h.Type == ModuleTrackableWithTimestamp {
		if *pos+4 > len(data) {
			return Trackable{}, fmt.Errorf("rttrpm: truncated trackable seq number")
		}
		t.SeqNumber = binary.LittleEndian.Uint32(data[*pos:])
		t.HasSeqNumber = true
		*pos += 4
	}

	if *pos+1 > len(data) {
		return Trackable{}, fmt.Errorf("rttrpm: truncated trackable submodule count")
	}
	t.NumberOfSubmodules = data[*pos]
	*pos++
	return t, nil
}

func readCentroidPosition(data []byte, pos *int) (CentroidPosition, error) {
	var m CentroidPosition
	var err error
	if lat, e := readUint16(data, pos); e != nil {
		return m, e
	} else {
		m.LatencyMs = lat
	}
	if m.X, err = readFloat64(data, pos); err != nil {
		return m, err
	}
	if m.Y, err = readFloat64(data, pos); err != nil {
		return m, err
	}
	if m.Z, err = readFloat64(data, pos); err != nil {
		return m, err
	}
	return m, nil
}

func readCentroidAccelVelo(data []byte, pos *int) (CentroidAccelVelo, error) {
	var m CentroidAccelVelo
	var err error
	if m.X, err = readFloat64(data, pos); err != nil {
		return m, err
	}
	if m.Y, err = readFloat64(data, pos); err != nil {
		return m, err
	}
	if m.Z, err = readFloat64(data, pos); err != nil {
		return m, err
	}
	if m.AccelX, err = readFloat32(data, pos); err != nil {
		return m, err
	}
	if m.AccelY, err = readFloat32(data, pos); err != nil {
		return m, err
	}
	if m.AccelZ, err = readFloat32(data, pos); err != nil {
		return m, err
	}
	if m.VeloX, err = readFloat32(data, pos); err != nil {
		return m, err
	}
	if m.VeloY, err = readFloat32(data, pos); err != nil {
		return m, err
	}
	if m.VeloZ, err = readFloat32(data, pos); err != nil {
		return m, err
	}
	return m, nil
}

func readTrackedPointPosition(data []byte, pos *int) (TrackedPointPosition, error) {
	var m TrackedPointPosition
	var err error
	if m.LatencyMs, err = readUint16(data, pos); err != nil {
		return m, err
	}
	if m.X, err = readFloat64(data, pos); err != nil {
		return m, err
	}
	if m.Y, err = readFloat64(data, pos); err != nil {
		return m, err
	}
	if m.Z, err = readFloat64(data, pos); err != nil {
		return m, err
	}
	if *pos+1 > len(data) {
		return m, fmt.Errorf("rttrpm: truncated tracked point index")
	}
	m.Index = data[*pos]
	*pos++
	return m, nil
}

func readOrientationEuler(data []byte, pos *int) (OrientationEuler, error) {
	var m OrientationEuler
	var err error
	if m.LatencyMs, err = readUint16(data, pos); err != nil {
		return m, err
	}
	if m.Order, err = readUint16(data, pos); err != nil {
		return m, err
	}
	if m.R1, err = readFloat64(data, pos); err != nil {
		return m, err
	}
	if m.R2, err = readFloat64(data, pos); err != nil {
		return m, err
	}
	if m.R3, err = readFloat64(data, pos); err != nil {
		return m, err
	}
	return m, nil
}

func readOrientationQuaternion(data []byte, pos *int) (OrientationQuaternion, error) {
	var m OrientationQuaternion
	var err error
	if m.LatencyMs, err = readUint16(data, pos); err != nil {
		return m, err
	}
	if m.Qx, err = readFloat64(data, pos); err != nil {
		return m, err
	}
	if m.Qy, err = readFloat64(data, pos); err != nil {
		return m, err
	}
	if m.Qz, err = readFloat64(data, pos); err != nil {
		return m, err
	}
	if m.Qw, err = readFloat64(data, pos); err != nil {
		return m, err
	}
	return m, nil
}

// readZoneCollision parses the zone-collision module: a submodule count
// (including itself, per the original's "we start at 1" comment) followed
// by that many (size, nameLen, name) zone entries.
func readZoneCollision(data []byte, pos *int) (ZoneCollision, error) {
	if *pos+1 > len(data) {
		return ZoneCollision{}, fmt.Errorf("rttrpm: truncated zone submodule count")
	}
	count := int(data[*pos])
	*pos++

	var z ZoneCollision
	for i := 1; i < count; i++ {
		if *pos+2 > len(data) {
			return z, fmt.Errorf("rttrpm: truncated zone submodule header")
		}
		*pos++ // submodule size byte, unused beyond framing
		nameLen := int(data[*pos])
		*pos++
		if *pos+nameLen > len(data) {
			return z, fmt.Errorf("rttrpm: truncated zone name")
		}
		z.Zones = append(z.Zones, string(data[*pos:*pos+nameLen]))
		*pos += nameLen
	}
	return z, nil
}
