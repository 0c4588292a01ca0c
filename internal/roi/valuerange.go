package roi

// valueRange describes the engineering-unit range of a normalizable ROI.
type valueRange struct {
	min, max float64
}

// ranges is the ValueRange table (spec.md §3 "ValueRange table"),
// transcribed from ProcessingEngineConfig::m_objectRanges, extended with
// entries original_source left unset but spec.md §1 calls out by name
// (spread 0..1, relative mapped position 0..1, gain -120..+24 dB).
var ranges = map[ID]valueRange{
	RemoteProtocolBridgeSoundObjectSelect: {0, 1},
	PositioningSourceDelayMode:            {0, 2},
	MatrixInputReverbSendGain:             {-120, 24},
	PositioningSourceSpread:               {0, 1},
	CoordinateMappingSourcePositionX:      {0, 1},
	CoordinateMappingSourcePositionY:      {0, 1},
	CoordinateMappingSourcePositionXY:     {0, 1},
	CoordinateMappingSourcePosition:       {0, 1},
	PositioningSourcePositionX:            {0, 1},
	PositioningSourcePositionY:            {0, 1},
	PositioningSourcePositionXY:           {0, 1},
	PositioningSourcePosition:             {0, 1},
	MatrixInputLevelMeterPreMute:          {-120, 24},
	MatrixInputLevelMeterPostMute:         {-120, 24},
	MatrixInputGain:                       {-120, 24},
	MatrixInputMute:                       {0, 1},
	MatrixOutputLevelMeterPreMute:         {-120, 24},
	MatrixOutputLevelMeterPostMute:        {-120, 24},
	MatrixOutputGain:                      {-120, 24},
	MatrixOutputMute:                      {0, 1},
	ReverbInputGain:                       {-120, 24},
	ReverbInputProcessingGain:             {-120, 24},
	ReverbInputProcessingLevelMeter:       {-120, 24},
}

// ValueRange returns the engineering-unit [min,max] for id, and ok=false if
// id has no defined range (e.g. strings, booleans expressed as 0/1 mute
// flags, scene indices).
func ValueRange(id ID) (min, max float64, ok bool) {
	r, ok := ranges[id]
	if !ok {
		return 0, 0, false
	}
	return r.min, r.max, true
}

// Normalize maps value from id's engineering range into [0,1]. If id has no
// defined range, value is returned unchanged.
func Normalize(id ID, value float64) float64 {
	min, max, ok := ValueRange(id)
	if !ok || max == min {
		return value
	}
	return (value - min) / (max - min)
}

// Denormalize maps a [0,1] value into id's engineering range. If id has no
// defined range, value is returned unchanged.
func Denormalize(id ID, value float64) float64 {
	min, max, ok := ValueRange(id)
	if !ok {
		return value
	}
	return min + value*(max-min)
}

// Remap converts value from the range of fromID into the range of toID via
// a normalize-then-scale pass (spec.md §4.2 "Value-range mapping").
func Remap(fromID, toID ID, value float64) float64 {
	return Denormalize(toID, Normalize(fromID, value))
}
