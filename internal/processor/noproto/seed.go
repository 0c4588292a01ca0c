package noproto

import (
	"fmt"

	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/objectmodel"
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/roi"
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/valuecache"
)

// ChannelCount is the simulator's default input/output count (spec.md
// §4.2.6, NoProtocolProtocolProcessor::sc_chCnt).
const ChannelCount = 64

// MappingCount is the number of coordinate-mapping areas the simulator seeds
// by default.
const MappingCount = 4

// defaultSceneIndexes mirrors InitializeObjectValueCache's literal scene
// seed list.
var defaultSceneIndexes = []float32{1, 2, 3, 4, 5, 10, 20, 30, 40, 50}

// animatedObjects is the set of ids StepAnimation advances, transcribed from
// NoProtocolProtocolProcessor::IsAnimatedObject.
var animatedObjects = map[roi.ID]bool{
	roi.MatrixInputMute:                  true,
	roi.MatrixInputGain:                  true,
	roi.MatrixInputDelay:                 true,
	roi.MatrixInputLevelMeterPreMute:     true,
	roi.MatrixInputLevelMeterPostMute:    true,
	roi.MatrixOutputMute:                 true,
	roi.MatrixOutputGain:                 true,
	roi.MatrixOutputDelay:                true,
	roi.MatrixOutputLevelMeterPreMute:    true,
	roi.MatrixOutputLevelMeterPostMute:   true,
	roi.PositioningSourceSpread:          true,
	roi.PositioningSourceDelayMode:       true,
	roi.PositioningSourcePosition:        true,
	roi.PositioningSourcePositionXY:      true,
	roi.PositioningSourcePositionX:       true,
	roi.PositioningSourcePositionY:       true,
	roi.CoordinateMappingSourcePosition:  true,
	roi.CoordinateMappingSourcePositionXY: true,
	roi.CoordinateMappingSourcePositionX: true,
	roi.CoordinateMappingSourcePositionY: true,
	roi.MatrixSettingsReverbRoomId:       true,
	roi.MatrixSettingsReverbPredelayFactor: true,
	roi.MatrixSettingsReverbRearLevel:    true,
	roi.MatrixInputReverbSendGain:        true,
}

// isAnimatedObject reports whether id is advanced by StepAnimation.
func isAnimatedObject(id roi.ID) bool { return animatedObjects[id] }

// seedDefaults fills cache with the simulator's built-in placeholder values
// (NoProtocolProtocolProcessor::InitializeObjectValueCache, no-argument
// overload): a device name, the default scene set, the en-space reverb
// trio, then every animatable object's per-channel/record starting value,
// before layering project-specific input/speaker/mapping data on top.
func seedDefaults(c *valuecache.Cache) {
	setString(c, roi.SettingsDeviceName, objectmodel.Invalid, "InternalSim")

	for _, idx := range defaultSceneIndexes {
		setSceneIndex(c, idx)
	}

	setInt(c, roi.MatrixSettingsReverbRoomId, objectmodel.Invalid, 1)
	setFloat(c, roi.MatrixSettingsReverbPredelayFactor, objectmodel.Invalid, 1)
	setFloat(c, roi.MatrixSettingsReverbRearLevel, objectmodel.Invalid, 1)

	for id := roi.HeartbeatPing + 1; id < roi.BridgingMAX; id++ {
		if !isAnimatedObject(id) {
			continue
		}
		if !roi.IsChannelAddressingObject(id) {
			continue
		}
		for ch := 1; ch <= ChannelCount; ch++ {
			if roi.IsRecordAddressingObject(id) {
				for rec := 1; rec <= MappingCount; rec++ {
					seedAnimatableDefault(c, id, ch, rec)
				}
			} else {
				seedAnimatableDefault(c, id, ch, objectmodel.InvalidAddressValue)
			}
		}
	}

	pd := ProjectData{InputNames: make(map[int]string), SpeakerPositions: make(map[int]SpeakerPosition), CoordinateMappings: make(map[int]CoordinateMapping)}
	for in := 1; in <= ChannelCount; in++ {
		pd.InputNames[in] = fmt.Sprintf("Input %d", in)
	}
	pd.SpeakerPositions[1] = SpeakerPosition{X: 2, Y: -2, Hor: 135}
	pd.SpeakerPositions[2] = SpeakerPosition{X: 2, Y: 0, Hor: 180}
	pd.SpeakerPositions[3] = SpeakerPosition{X: 2, Y: 2, Hor: 225}
	pd.SpeakerPositions[4] = SpeakerPosition{X: 0, Y: 2, Hor: 270}
	pd.SpeakerPositions[5] = SpeakerPosition{X: -2, Y: 2, Hor: 315}
	pd.SpeakerPositions[6] = SpeakerPosition{X: -2, Y: 0, Hor: 0}
	pd.SpeakerPositions[7] = SpeakerPosition{X: -2, Y: -2, Hor: 45}
	pd.SpeakerPositions[8] = SpeakerPosition{X: 0, Y: -2, Hor: 90}
	for i := 9; i <= ChannelCount; i++ {
		pd.SpeakerPositions[i] = SpeakerPosition{}
	}
	pd.CoordinateMappings[1] = CoordinateMapping{Name: "Example Mapping 1", P1X: 1, P1Y: 1, P3X: -5, P3Y: -2}
	pd.CoordinateMappings[2] = CoordinateMapping{Name: "Example Mapping 2", P1X: 1, P1Y: 1, P3X: -2, P3Y: 5}
	pd.CoordinateMappings[3] = CoordinateMapping{Name: "Example Mapping 3", P1X: 1, P1Y: 1, P3X: 5, P3Y: 2}
	pd.CoordinateMappings[4] = CoordinateMapping{Name: "Example Mapping 4", P1X: 1, P1Y: 1, P3X: 2, P3Y: -5}

	seedFromProject(c, pd)
}

// seedFromProject layers per-input, per-output and per-mapping values from
// pd onto cache (NoProtocolProtocolProcessor::InitializeObjectValueCache,
// ProjectData overload).
func seedFromProject(c *valuecache.Cache, pd ProjectData) {
	for channel, name := range pd.InputNames {
		seedInput(c, channel, name)
	}
	for channel, sp := range pd.SpeakerPositions {
		setFloats(c, roi.PositioningSpeakerPosition, channel, objectmodel.InvalidAddressValue,
			float32(sp.X), float32(sp.Y), float32(sp.Z), float32(sp.Hor), float32(sp.Vrt), float32(sp.Rot))
	}
	for mapping, cm := range pd.CoordinateMappings {
		seedMapping(c, mapping, cm)
	}
}

func seedAnimatableDefault(c *valuecache.Cache, id roi.ID, channel, record int) {
	switch id {
	case roi.PositioningSourcePosition:
		setFloats(c, id, channel, record, 0, 0, 0)
	case roi.CoordinateMappingSourcePosition:
		setFloats(c, id, channel, record, 0.5, 0.5, 0.5)
	case roi.PositioningSourcePositionXY:
		setFloats(c, id, channel, record, 0, 0)
	case roi.CoordinateMappingSourcePositionXY:
		setFloats(c, id, channel, record, 0.5, 0.5)
	case roi.MatrixInputMute, roi.MatrixOutputMute, roi.PositioningSourceDelayMode, roi.MatrixSettingsReverbRoomId:
		setInt(c, id, addrOf(channel, record), 0)
	default:
		setFloat(c, id, addrOf(channel, record), 0)
	}
}

func seedInput(c *valuecache.Cache, channel int, name string) {
	addr := objectmodel.NewAddressing(channel, objectmodel.InvalidAddressValue)
	setString(c, roi.MatrixInputChannelName, addr, name)
	setFloats(c, roi.PositioningSourcePosition, channel, objectmodel.InvalidAddressValue, 0, 0, 0)
	for mp := 1; mp <= MappingCount; mp++ {
		setFloats(c, roi.CoordinateMappingSourcePosition, channel, mp, 0.5, 0.5, 0.5)
	}
	setFloat(c, roi.PositioningSourceSpread, addr, 0)
	setFloat(c, roi.MatrixInputReverbSendGain, addr, 0)
	setInt(c, roi.PositioningSourceDelayMode, addr, 1)
}

func seedMapping(c *valuecache.Cache, mapping int, cm CoordinateMapping) {
	addr := objectmodel.NewAddressing(mapping, objectmodel.InvalidAddressValue)
	setString(c, roi.CoordinateMappingSettingsName, addr, cm.Name)
	setFloats(c, roi.CoordinateMappingSettingsP1real, mapping, objectmodel.InvalidAddressValue, float32(cm.P1X), float32(cm.P1Y), float32(cm.P1Z))
	setFloats(c, roi.CoordinateMappingSettingsP3real, mapping, objectmodel.InvalidAddressValue, float32(cm.P3X), float32(cm.P3Y), float32(cm.P3Z))
	setFloats(c, roi.CoordinateMappingSettingsP1virtual, mapping, objectmodel.InvalidAddressValue, 1, 1, 0)
	setFloats(c, roi.CoordinateMappingSettingsP3virtual, mapping, objectmodel.InvalidAddressValue, 0, 0, 0)
	flip := 0
	if cm.Flip {
		flip = 1
	}
	setInt(c, roi.CoordinateMappingSettingsFlip, addr, int32(flip))
}

func setSceneIndex(c *valuecache.Cache, sceneIndex float32) {
	if sceneIndex < 1 {
		sceneIndex = 1
	}
	major := int(sceneIndex)
	minor := int(sceneIndex*100) % 100
	idxStr := fmt.Sprintf("%d.%d", major, minor)

	setString(c, roi.SceneSceneIndex, objectmodel.Invalid, idxStr)
	setString(c, roi.SceneSceneName, objectmodel.Invalid, "Example Scene "+idxStr)
	setString(c, roi.SceneSceneComment, objectmodel.Invalid, "Example Scene Comment "+idxStr)
}

func addrOf(channel, record int) objectmodel.Addressing {
	return objectmodel.NewAddressing(channel, record)
}

func setString(c *valuecache.Cache, id roi.ID, addr objectmodel.Addressing, v string) {
	c.Set(objectmodel.New(id, addr), objectmodel.NewString(addr, v))
}

func setInt(c *valuecache.Cache, id roi.ID, addr objectmodel.Addressing, v int32) {
	c.Set(objectmodel.New(id, addr), objectmodel.NewInt(addr, v))
}

func setFloat(c *valuecache.Cache, id roi.ID, addr objectmodel.Addressing, v float32) {
	c.Set(objectmodel.New(id, addr), objectmodel.NewFloat(addr, v))
}

func setFloats(c *valuecache.Cache, id roi.ID, channel, record int, vs ...float32) {
	addr := objectmodel.NewAddressing(channel, record)
	c.Set(objectmodel.New(id, addr), objectmodel.NewFloat(addr, vs...))
}
