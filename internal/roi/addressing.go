package roi

// channelAddressing is the set of ids whose RemoteObjectAddressing.First
// (channel/source index) is meaningful. Transcribed from
// ProcessingEngineConfig::IsChannelAddressingObject.
var channelAddressing = map[ID]bool{
	MatrixInputSelect:            true,
	MatrixInputMute:              true,
	MatrixInputDelayEnable:       true,
	MatrixInputEqEnable:          true,
	MatrixInputPolarity:          true,
	MatrixNodeEnable:             true,
	MatrixNodeDelayEnable:        true,
	MatrixOutputMute:             true,
	MatrixOutputDelayEnable:      true,
	MatrixOutputEqEnable:         true,
	MatrixOutputPolarity:         true,
	PositioningSourceDelayMode:   true,
	ReverbInputProcessingMute:    true,
	ReverbInputProcessingEqEnable: true,
	MatrixInputGain:              true,
	MatrixInputDelay:             true,
	MatrixInputLevelMeterPreMute: true,
	MatrixInputLevelMeterPostMute: true,
	MatrixNodeGain:               true,
	MatrixNodeDelay:              true,
	MatrixOutputGain:             true,
	MatrixOutputDelay:            true,
	MatrixOutputLevelMeterPreMute:  true,
	MatrixOutputLevelMeterPostMute: true,
	PositioningSourceSpread:        true,
	PositioningSourcePositionXY:    true,
	PositioningSourcePositionX:     true,
	PositioningSourcePositionY:     true,
	PositioningSourcePosition:      true,
	MatrixInputReverbSendGain:      true,
	ReverbInputGain:                true,
	ReverbInputProcessingGain:      true,
	ReverbInputProcessingLevelMeter: true,
	CoordinateMappingSourcePositionXY: true,
	CoordinateMappingSourcePositionX:  true,
	CoordinateMappingSourcePositionY:  true,
	CoordinateMappingSourcePosition:   true,
	MatrixInputChannelName:  true,
	MatrixOutputChannelName: true,
	RemoteProtocolBridgeSoundObjectSelect: true,
}

// recordAddressing is the set of ids whose RemoteObjectAddressing.Second
// (record/mapping-area index) is meaningful. Transcribed from
// ProcessingEngineConfig::IsRecordAddressingObject.
var recordAddressing = map[ID]bool{
	MatrixNodeEnable:                  true,
	MatrixNodeGain:                    true,
	MatrixNodeDelay:                   true,
	MatrixNodeDelayEnable:             true,
	CoordinateMappingSourcePositionXY: true,
	CoordinateMappingSourcePositionX:  true,
	CoordinateMappingSourcePositionY:  true,
	CoordinateMappingSourcePosition:   true,
	ReverbInputGain:                   true,
}

// IsChannelAddressingObject reports whether id carries a meaningful channel
// (RemoteObjectAddressing.First) component.
func IsChannelAddressingObject(id ID) bool {
	return channelAddressing[id]
}

// IsRecordAddressingObject reports whether id carries a meaningful record
// (RemoteObjectAddressing.Second) component.
func IsRecordAddressingObject(id ID) bool {
	return recordAddressing[id]
}
