package rttrpm

import (
	"encoding/binary"
	"fmt"
)

// Packet is one decoded RTTrPM UDP datagram: the trackable header plus
// whichever submodules follow it. Submodules the bridge does not consume
// are parsed (to keep the read offset correct) but not retained.
type Packet struct {
	Trackable             Trackable
	CentroidPosition      *CentroidPosition
	CentroidAccelVelo     *CentroidAccelVelo
	TrackedPointPositions []TrackedPointPosition
	OrientationEuler      *OrientationEuler
	OrientationQuaternion *OrientationQuaternion
	ZoneCollision         *ZoneCollision
}

// ParsePacket decodes one RTTrPM datagram. Read offsets advance explicitly
// per module using each module's fixed layout (spec.md §4.2.5); a module
// whose header reports size 0 or an unrecognized type code is skipped via
// its declared size rather than aborting the whole packet.
func ParsePacket(data []byte) (Packet, error) {
	pos := 0
	trackableHeader, err := readHeader(data, &pos)
	if err != nil {
		return Packet{}, fmt.Errorf("rttrpm: trackable header: %w", err)
	}
	if trackableHeader.Type != ModuleTrackableWithTimestamp && trackableHeader.Type != ModuleTrackableWithoutTimestamp {
		return Packet{}, fmt.Errorf("rttrpm: expected trackable module, got type 0x%02x", trackableHeader.Type)
	}
	trackable, err := readTrackable(trackableHeader, data, &pos)
	if err != nil {
		return Packet{}, fmt.Errorf("rttrpm: trackable body: %w", err)
	}

	pkt := Packet{Trackable: trackable}

	for i := uint8(0); i < trackable.NumberOfSubmodules && pos < len(data); i++ {
		subStart := pos
		h, err := readHeader(data, &pos)
		if err != nil {
			if pos == subStart+3 {
				// Size-0 or type-0 module: skip it via its declared size.
				pos = subStart + 3 + int(binary.LittleEndian.Uint16(data[subStart+1:]))
				continue
			}
			return pkt, fmt.Errorf("rttrpm: submodule %d header: %w", i, err)
		}
		bodyEnd := subStart + 3 + int(h.Size)

		switch h.Type {
		case ModuleCentroidPosition:
			m, err := readCentroidPosition(data, &pos)
			if err != nil {
				return pkt, fmt.Errorf("rttrpm: centroid position: %w", err)
			}
			pkt.CentroidPosition = &m
		case ModuleCentroidAccelVelo:
			m, err := readCentroidAccelVelo(data, &pos)
			if err != nil {
				return pkt, fmt.Errorf("rttrpm: centroid accel/velo: %w", err)
			}
			pkt.CentroidAccelVelo = &m
		case ModuleTrackedPointPosition:
			m, err := readTrackedPointPosition(data, &pos)
			if err != nil {
				return pkt, fmt.Errorf("rttrpm: tracked point position: %w", err)
			}
			pkt.TrackedPointPositions = append(pkt.TrackedPointPositions, m)
		case ModuleOrientationEuler:
			m, err := readOrientationEuler(data, &pos)
			if err != nil {
				return pkt, fmt.Errorf("rttrpm: orientation euler: %w", err)
			}
			pkt.OrientationEuler = &m
		case ModuleOrientationQuaternion:
			m, err := readOrientationQuaternion(data, &pos)
			if err != nil {
				return pkt, fmt.Errorf("rttrpm: orientation quaternion: %w", err)
			}
			pkt.OrientationQuaternion = &m
		case ModuleZoneCollisionDetection:
			m, err := readZoneCollision(data, &pos)
			if err != nil {
				return pkt, fmt.Errorf("rttrpm: zone collision: %w", err)
			}
			pkt.ZoneCollision = &m
		default:
			// Unknown/unhandled module: trust the declared size and skip.
			pos = bodyEnd
		}

		if pos < bodyEnd {
			pos = bodyEnd
		}
	}

	return pkt, nil
}
