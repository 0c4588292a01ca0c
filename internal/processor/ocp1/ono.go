// Package ocp1 implements the OCA/OCP.1 protocol processor (spec.md
// §4.2.3), grounded on
// original_source/.../OCP1ProtocolProcessor/OCP1ProtocolProcessor.cpp.
package ocp1

import (
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/objectmodel"
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/roi"
)

// ONo is an OCA object number: the (objectDefLevel, objectDefNumber) pair
// packed into a single 32-bit wire value, per AES70/OCA.
type ONo uint32

// onoBaseByROI is the precomputed ROI -> ONo table (spec.md §4.2.3 "Object-to-ONo
// mapping is a precomputed table"), transcribed from
// OCP1ProtocolProcessor::CreateKnownONosMap. Channel/record components are
// folded into the packed ONo by onoFor.
var onoBaseByROI = map[roi.ID]ONo{
	roi.MatrixInputMute:               0x0001000000,
	roi.MatrixInputGain:                0x0002000000,
	roi.MatrixInputDelay:               0x0003000000,
	roi.MatrixInputDelayEnable:         0x0004000000,
	roi.MatrixInputSelect:              0x0005000000,
	roi.MatrixOutputMute:               0x0010000000,
	roi.MatrixOutputGain:               0x0011000000,
	roi.MatrixOutputDelay:              0x0012000000,
	roi.MatrixOutputDelayEnable:        0x0013000000,
	roi.PositioningSourcePositionX:     0x0020000000,
	roi.PositioningSourcePositionY:     0x0021000000,
	roi.PositioningSourcePositionXY:    0x0022000000,
	roi.PositioningSourcePosition:      0x0023000000, // proxy target: XYZ
	roi.PositioningSourceSpread:        0x0024000000,
	roi.MatrixSettingsReverbRoomId:     0x0030000000,
	roi.SceneRecall:                    0x0040000000, // SceneAgent ApplyCommand
	roi.SceneNext:                      0x0041000000, // SceneAgent NextCommand
	roi.ScenePrevious:                  0x0042000000, // SceneAgent PreviousCommand
	roi.SceneSceneIndex:                0x0043000000,
	roi.HeartbeatPing:                  0x00F0000000,
	roi.HeartbeatPong:                  0x00F0000001,
}

// positioningProxyTargets is the set of ROIs that are proxied onto the
// triple-float XYZ object rather than addressed directly (spec.md §4.2.3
// "Some ROIs are proxied").
var positioningProxyTargets = map[roi.ID]bool{
	roi.PositioningSourcePositionX:  true,
	roi.PositioningSourcePositionY:  true,
	roi.PositioningSourcePositionXY: true,
}

// proxyTarget returns the ROI whose ONo should actually be addressed for id,
// folding X/Y/XY requests onto the XYZ object.
func proxyTarget(id roi.ID) roi.ID {
	if positioningProxyTargets[id] {
		return roi.PositioningSourcePosition
	}
	return id
}

// onoFor packs a base ONo with the channel/record addressing components.
// OCA ONos are flat 32-bit numbers; channel and record are folded into the
// low two bytes, matching the original's per-instance ONo allocation
// scheme (base + (record<<8) + channel).
func onoFor(id roi.ID, channel, record int) (ONo, bool) {
	base, ok := onoBaseByROI[proxyTarget(id)]
	if !ok {
		return 0, false
	}
	if channel > 0 {
		base |= ONo(channel & 0xFF)
	}
	if record > 0 {
		base |= ONo((record & 0xFF) << 8)
	}
	return base, true
}

// resolveONo is the inverse of onoFor: it strips the packed channel/record
// bytes and looks up the remaining base against onoBaseByROI.
func resolveONo(ono ONo) (id roi.ID, channel, record int, ok bool) {
	channel = int(ono & 0xFF)
	record = int((ono >> 8) & 0xFF)
	base := ono &^ 0xFFFF

	for candidate, b := range onoBaseByROI {
		if b == base {
			if channel == 0 {
				channel = objectmodel.InvalidAddressValue
			}
			if record == 0 {
				record = objectmodel.InvalidAddressValue
			}
			return candidate, channel, record, true
		}
	}
	return roi.Invalid, 0, 0, false
}

// isSceneAgentMethod reports whether id is dispatched against the
// SceneAgent singleton's dedicated methods rather than a plain value set
// (spec.md §4.2.3 "Scene_Recall/Next/Previous address the Scene-Agent
// singleton's dedicated methods, not a value set").
func isSceneAgentMethod(id roi.ID) bool {
	switch id {
	case roi.SceneRecall, roi.SceneNext, roi.ScenePrevious:
		return true
	default:
		return false
	}
}
