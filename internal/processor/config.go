package processor

import (
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/objectmodel"
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/roi"
)

// MIDICommand is the MIDI message kind a MIDIAssignment matches (spec.md
// §4.2.4).
type MIDICommand int

const (
	MIDINote MIDICommand = iota
	MIDIControlChange
	MIDIPitchWheel
	MIDIProgramChange
	MIDIAftertouch
	MIDIChannelPressure
)

// MIDISceneValue binds one "major.minor" scene identifier to the raw
// command value that selects it, for multi-value assignments like
// Scene_Recall (spec.md §6 "<Value value=\"M.m\">HEX</Value>").
type MIDISceneValue struct {
	Value   string // "major.minor"
	Command int
}

// MIDIAssignment maps one MIDI command (optionally ranged) onto a ROI
// (spec.md §4.2.4).
type MIDIAssignment struct {
	ROI     roi.ID
	Command MIDICommand
	Channel int // 1-16, 0 = any

	// Command-range: raw command value span yields channel/index (e.g. a
	// contiguous block of note numbers selects sound objects 1..N).
	HasCommandRange bool
	CommandLow      int
	CommandHigh     int

	// Value-range: raw command value remapped into the ROI's engineering
	// range (roi.ValueRange).
	HasValueRange bool
	ValueLow      float64
	ValueHigh     float64

	// Multi-value assignments (Scene_Recall/Next/Previous carry a payload
	// string alongside the command).
	SceneValues []MIDISceneValue
}

// RemapEntry is one RemapOSC address-pattern/value-range override (spec.md
// §6 "RemapOSC-specific").
type RemapEntry struct {
	ROI      roi.ID
	Pattern  string // contains %1 (channel) / %2 (record) placeholders
	MinValue float64
	MaxValue float64
}

// Config is the processor-agnostic slice of the configuration tree a
// Processor's SetState consumes (spec.md §4.2 "setState(configTree)").
// Fields not relevant to a given Type are left zero.
type Config struct {
	ID   objectmodel.ProtocolID
	Role Role
	Type Type

	UsesActiveObjects bool
	ActiveObjects     []objectmodel.RemoteObject
	MutedObjects      []objectmodel.RemoteObject
	PollingIntervalMs int

	// Network (OSC family, OCP.1, RTTrPM, AURA).
	IPAddress  string
	ClientPort int
	HostPort   int

	// OSC-family.
	MappingAreaID int

	// OCP.1.
	Ocp1ServerMode bool // true = server, false = client

	// MIDI.
	MIDIInputDevice  string
	MIDIOutputDevice string
	MIDIAssignments  []MIDIAssignment

	// RemapOSC.
	Remappings          []RemapEntry
	DataSendingDisabled bool

	// No-protocol simulator.
	SimulateCircular bool   // false = pseudo-random animation
	ProjectFilePath  string // optional .dbpr SQLite seed, see noproto package
}
