// Package roi defines RemoteObjectIdentifier, the closed enumeration of
// bridged parameter kinds, and the static properties (addressing shape,
// value range) attached to each member.
package roi

// ID is a RemoteObjectIdentifier. The member order and numeric values are
// load-bearing: BridgingMAX is the boundary between forwardable and
// internal-only ids (see IsBridgeable), exactly as in the original
// RemoteProtocolBridge C++ enum this type is transcribed from.
type ID int

const (
	HeartbeatPing ID = iota
	HeartbeatPong
	Invalid

	SettingsDeviceName
	StatusStatusText
	StatusAudioNetworkSampleStatus
	ErrorGnrlErr
	ErrorErrorText

	MatrixInputSelect
	MatrixInputMute
	MatrixInputGain
	MatrixInputDelay
	MatrixInputDelayEnable
	MatrixInputEqEnable
	MatrixInputPolarity
	MatrixInputChannelName
	MatrixInputLevelMeterPreMute
	MatrixInputLevelMeterPostMute
	MatrixInputReverbSendGain

	MatrixNodeEnable
	MatrixNodeGain
	MatrixNodeDelayEnable
	MatrixNodeDelay

	MatrixOutputMute
	MatrixOutputGain
	MatrixOutputDelay
	MatrixOutputDelayEnable
	MatrixOutputEqEnable
	MatrixOutputPolarity
	MatrixOutputChannelName
	MatrixOutputLevelMeterPreMute
	MatrixOutputLevelMeterPostMute

	PositioningSourceSpread
	PositioningSourceDelayMode
	PositioningSourcePositionXY
	PositioningSourcePositionX
	PositioningSourcePositionY
	PositioningSourcePosition

	CoordinateMappingSourcePositionXY
	CoordinateMappingSourcePositionX
	CoordinateMappingSourcePositionY
	CoordinateMappingSourcePosition

	MatrixSettingsReverbRoomId
	MatrixSettingsReverbPredelayFactor
	MatrixSettingsReverbRearLevel

	FunctionGroupName
	FunctionGroupDelay
	FunctionGroupSpreadFactor

	ReverbInputGain
	ReverbInputProcessingMute
	ReverbInputProcessingGain
	ReverbInputProcessingEqEnable
	ReverbInputProcessingLevelMeter

	SceneSceneIndex
	SceneSceneName
	SceneSceneComment
	ScenePrevious
	SceneNext
	SceneRecall

	CoordinateMappingSettingsP1real
	CoordinateMappingSettingsP2real
	CoordinateMappingSettingsP3real
	CoordinateMappingSettingsP4real
	CoordinateMappingSettingsP1virtual
	CoordinateMappingSettingsP3virtual
	CoordinateMappingSettingsFlip
	CoordinateMappingSettingsName

	PositioningSpeakerPosition

	SoundObjectRoutingMute
	SoundObjectRoutingGain

	// BridgingMAX marks the boundary: ids before it may be forwarded between
	// protocols, ids at or after it are internal-only (selection helpers,
	// housekeeping) and are dropped by a Node if seen on the wire.
	BridgingMAX

	DeviceClear
	RemoteProtocolBridgeSoundObjectSelect
	RemoteProtocolBridgeUIElementIndexSelect
	RemoteProtocolBridgeGetAllKnownValues
	RemoteProtocolBridgeSoundObjectGroupSelect
	RemoteProtocolBridgeMatrixInputGroupSelect
	RemoteProtocolBridgeMatrixOutputGroupSelect

	InvalidMAX
)

// names holds the canonical wire-facing name for each id, used by logging
// and by the OSC address-pattern table.
var names = map[ID]string{
	HeartbeatPing:                  "HeartbeatPing",
	HeartbeatPong:                  "HeartbeatPong",
	Invalid:                        "Invalid",
	SettingsDeviceName:             "Settings_DeviceName",
	StatusStatusText:               "Status_StatusText",
	StatusAudioNetworkSampleStatus: "Status_AudioNetworkSampleStatus",
	ErrorGnrlErr:                   "Error_GnrlErr",
	ErrorErrorText:                 "Error_ErrorText",

	MatrixInputSelect:            "MatrixInput_Select",
	MatrixInputMute:              "MatrixInput_Mute",
	MatrixInputGain:              "MatrixInput_Gain",
	MatrixInputDelay:             "MatrixInput_Delay",
	MatrixInputDelayEnable:       "MatrixInput_DelayEnable",
	MatrixInputEqEnable:          "MatrixInput_EqEnable",
	MatrixInputPolarity:          "MatrixInput_Polarity",
	MatrixInputChannelName:       "MatrixInput_ChannelName",
	MatrixInputLevelMeterPreMute: "MatrixInput_LevelMeterPreMute",
	MatrixInputLevelMeterPostMute: "MatrixInput_LevelMeterPostMute",
	MatrixInputReverbSendGain:     "MatrixInput_ReverbSendGain",

	MatrixNodeEnable:       "MatrixNode_Enable",
	MatrixNodeGain:         "MatrixNode_Gain",
	MatrixNodeDelayEnable:  "MatrixNode_DelayEnable",
	MatrixNodeDelay:        "MatrixNode_Delay",

	MatrixOutputMute:              "MatrixOutput_Mute",
	MatrixOutputGain:              "MatrixOutput_Gain",
	MatrixOutputDelay:             "MatrixOutput_Delay",
	MatrixOutputDelayEnable:       "MatrixOutput_DelayEnable",
	MatrixOutputEqEnable:          "MatrixOutput_EqEnable",
	MatrixOutputPolarity:          "MatrixOutput_Polarity",
	MatrixOutputChannelName:       "MatrixOutput_ChannelName",
	MatrixOutputLevelMeterPreMute: "MatrixOutput_LevelMeterPreMute",
	MatrixOutputLevelMeterPostMute: "MatrixOutput_LevelMeterPostMute",

	PositioningSourceSpread:     "Positioning_SourceSpread",
	PositioningSourceDelayMode:  "Positioning_SourceDelayMode",
	PositioningSourcePositionXY: "Positioning_SourcePosition_XY",
	PositioningSourcePositionX:  "Positioning_SourcePosition_X",
	PositioningSourcePositionY:  "Positioning_SourcePosition_Y",
	PositioningSourcePosition:   "Positioning_SourcePosition",

	CoordinateMappingSourcePositionXY: "CoordinateMapping_SourcePosition_XY",
	CoordinateMappingSourcePositionX:  "CoordinateMapping_SourcePosition_X",
	CoordinateMappingSourcePositionY:  "CoordinateMapping_SourcePosition_Y",
	CoordinateMappingSourcePosition:   "CoordinateMapping_SourcePosition",

	MatrixSettingsReverbRoomId:         "MatrixSettings_ReverbRoomId",
	MatrixSettingsReverbPredelayFactor: "MatrixSettings_ReverbPredelayFactor",
	MatrixSettingsReverbRearLevel:      "MatrixSettings_ReverbRearLevel",

	FunctionGroupName:         "FunctionGroup_Name",
	FunctionGroupDelay:        "FunctionGroup_Delay",
	FunctionGroupSpreadFactor: "FunctionGroup_SpreadFactor",

	ReverbInputGain:                 "ReverbInput_Gain",
	ReverbInputProcessingMute:       "ReverbInputProcessing_Mute",
	ReverbInputProcessingGain:       "ReverbInputProcessing_Gain",
	ReverbInputProcessingEqEnable:   "ReverbInputProcessing_EqEnable",
	ReverbInputProcessingLevelMeter: "ReverbInputProcessing_LevelMeter",

	SceneSceneIndex:   "Scene_SceneIndex",
	SceneSceneName:    "Scene_SceneName",
	SceneSceneComment: "Scene_SceneComment",
	ScenePrevious:     "Scene_Previous",
	SceneNext:         "Scene_Next",
	SceneRecall:       "Scene_Recall",

	CoordinateMappingSettingsP1real:    "CoordinateMappingSettings_P1real",
	CoordinateMappingSettingsP2real:    "CoordinateMappingSettings_P2real",
	CoordinateMappingSettingsP3real:    "CoordinateMappingSettings_P3real",
	CoordinateMappingSettingsP4real:    "CoordinateMappingSettings_P4real",
	CoordinateMappingSettingsP1virtual: "CoordinateMappingSettings_P1virtual",
	CoordinateMappingSettingsP3virtual: "CoordinateMappingSettings_P3virtual",
	CoordinateMappingSettingsFlip:      "CoordinateMappingSettings_Flip",
	CoordinateMappingSettingsName:      "CoordinateMappingSettings_Name",

	PositioningSpeakerPosition: "Positioning_SpeakerPosition",

	SoundObjectRoutingMute: "SoundObjectRouting_Mute",
	SoundObjectRoutingGain: "SoundObjectRouting_Gain",

	BridgingMAX: "BridgingMAX",

	DeviceClear:                                 "Device_Clear",
	RemoteProtocolBridgeSoundObjectSelect:        "RemoteProtocolBridge_SoundObjectSelect",
	RemoteProtocolBridgeUIElementIndexSelect:     "RemoteProtocolBridge_UIElementIndexSelect",
	RemoteProtocolBridgeGetAllKnownValues:        "RemoteProtocolBridge_GetAllKnownValues",
	RemoteProtocolBridgeSoundObjectGroupSelect:   "RemoteProtocolBridge_SoundObjectGroupSelect",
	RemoteProtocolBridgeMatrixInputGroupSelect:   "RemoteProtocolBridge_MatrixInputGroupSelect",
	RemoteProtocolBridgeMatrixOutputGroupSelect:  "RemoteProtocolBridge_MatrixOutputGroupSelect",
}

// String returns the canonical wire name, or a numeric fallback for an
// unnamed/out-of-range value.
func (id ID) String() string {
	if n, ok := names[id]; ok {
		return n
	}
	return "ID(unknown)"
}

// IsBridgeable reports whether id may be forwarded between protocols. Ids
// at or beyond BridgingMAX are internal-only (selection helpers, the
// GetAllKnownValues pseudo-request) and a Node drops them unless explicitly
// handled (see bridgenode.Node.Dispatch).
func IsBridgeable(id ID) bool {
	return id >= HeartbeatPing && id < BridgingMAX
}

// ParseName resolves a wire name (as used in XML config and log output)
// back to an ID. It is the inverse of String.
func ParseName(name string) (ID, bool) {
	for id, n := range names {
		if n == name {
			return id, true
		}
	}
	return Invalid, false
}
