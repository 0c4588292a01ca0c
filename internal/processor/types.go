// Package processor defines the common Protocol Processor contract
// (spec.md §4.2) shared by every transport-specific implementation: OSC and
// its dialects, OCP.1, MIDI, RTTrPM, AURA and the No-protocol simulator.
package processor

import "github.com/ChristianAhrens/remoteprotocolbridgecore/internal/objectmodel"

// Role is the processor's side of a Node: role A or role B (spec.md
// GLOSSARY).
type Role int

const (
	RoleInvalid Role = iota
	RoleA
	RoleB
)

func (r Role) String() string {
	switch r {
	case RoleA:
		return "A"
	case RoleB:
		return "B"
	default:
		return "invalid"
	}
}

// Type identifies the wire protocol a processor speaks (spec.md §6
// "ProtocolA/ProtocolB ... Type").
type Type int

const (
	TypeInvalid Type = iota
	TypeOCP1
	TypeOSC
	TypeYamahaOSC
	TypeADMOSC
	TypeRemapOSC
	TypeMIDI
	TypeRTTrPM
	TypeAURA
	TypeNoProtocol
)

func (t Type) String() string {
	switch t {
	case TypeOCP1:
		return "OCA"
	case TypeOSC:
		return "OSC"
	case TypeYamahaOSC:
		return "YamahaOSC"
	case TypeADMOSC:
		return "ADMOSC"
	case TypeRemapOSC:
		return "RemapOSC"
	case TypeMIDI:
		return "MIDI"
	case TypeRTTrPM:
		return "RTTrPM"
	case TypeAURA:
		return "AURA"
	case TypeNoProtocol:
		return "NoProtocol"
	default:
		return "Invalid"
	}
}

// ParseType resolves the XML config's string spelling of a protocol type.
func ParseType(s string) Type {
	switch s {
	case "OCA":
		return TypeOCP1
	case "OSC":
		return TypeOSC
	case "YamahaOSC":
		return TypeYamahaOSC
	case "ADMOSC":
		return TypeADMOSC
	case "RemapOSC":
		return TypeRemapOSC
	case "MIDI":
		return TypeMIDI
	case "RTTrPM":
		return TypeRTTrPM
	case "AURA":
		return TypeAURA
	case "NoProtocol":
		return TypeNoProtocol
	default:
		return TypeInvalid
	}
}

// Listener receives messages decoded off the wire by a Processor (spec.md
// §4.2 "Addition/removal of a Listener").
type Listener interface {
	OnProtocolMessageReceived(p Processor, ro objectmodel.RemoteObject, data objectmodel.MessageData, meta objectmodel.MetaInfo)
}

// ListenerFunc adapts a plain function to Listener.
type ListenerFunc func(p Processor, ro objectmodel.RemoteObject, data objectmodel.MessageData, meta objectmodel.MetaInfo)

func (f ListenerFunc) OnProtocolMessageReceived(p Processor, ro objectmodel.RemoteObject, data objectmodel.MessageData, meta objectmodel.MetaInfo) {
	f(p, ro, data, meta)
}
