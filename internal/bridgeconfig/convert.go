package bridgeconfig

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/objectmodel"
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/processor"
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/roi"
)

// parseIntList splits a comma-separated attribute value ("1,2,3") into its
// component ints. An empty string yields nil.
func parseIntList(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("parsing int list %q: %w", s, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// parseHex parses a hex-serialized MIDI command value, with or without a
// leading "0x".
func parseHex(s string) (int, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
	v, err := strconv.ParseInt(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing hex value %q: %w", s, err)
	}
	return int(v), nil
}

// expandObjectList turns an ActiveObjects/MutedObjects block into its
// Cartesian-product RemoteObject set: each child element names an ROI by
// its wire tag, and its channels/records attributes are crossed (spec.md §6
// "Cartesian product yields active RemoteObjects; records omitted yields
// second = -1").
func expandObjectList(list ObjectListXML) ([]objectmodel.RemoteObject, error) {
	var out []objectmodel.RemoteObject
	for _, e := range list.Entries {
		id, ok := roi.ParseName(e.XMLName.Local)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownROI, e.XMLName.Local)
		}

		channels, err := parseIntList(e.Channels)
		if err != nil {
			return nil, err
		}
		if len(channels) == 0 {
			channels = []int{objectmodel.InvalidAddressValue}
		}

		records, err := parseIntList(e.Records)
		if err != nil {
			return nil, err
		}
		if len(records) == 0 {
			records = []int{objectmodel.InvalidAddressValue}
		}

		for _, ch := range channels {
			for _, rec := range records {
				out = append(out, objectmodel.New(id, objectmodel.NewAddressing(ch, rec)))
			}
		}
	}
	return out, nil
}

// toMIDIAssignments converts the XML assignment list to
// processor.MIDIAssignment, resolving command and ROI names and
// hex-serialized ranges.
func toMIDIAssignments(xs []MIDIAssignmentXML) ([]processor.MIDIAssignment, error) {
	out := make([]processor.MIDIAssignment, 0, len(xs))
	for _, x := range xs {
		id, ok := roi.ParseName(x.ROI)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownROI, x.ROI)
		}
		cmd, ok := parseMIDICommand(x.Command)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownMIDICommand, x.Command)
		}

		a := processor.MIDIAssignment{
			ROI:       id,
			Command:   cmd,
			Channel:   x.Channel,
			HasValueRange: x.ValueLow != 0 || x.ValueHigh != 0,
			ValueLow:  x.ValueLow,
			ValueHigh: x.ValueHigh,
		}

		if x.CommandLow != "" || x.CommandHigh != "" {
			low, err := parseHex(x.CommandLow)
			if err != nil {
				return nil, err
			}
			high, err := parseHex(x.CommandHigh)
			if err != nil {
				return nil, err
			}
			a.HasCommandRange = true
			a.CommandLow = low
			a.CommandHigh = high
		}

		for _, v := range x.Values {
			cv, err := parseHex(v.Command)
			if err != nil {
				return nil, err
			}
			a.SceneValues = append(a.SceneValues, processor.MIDISceneValue{Value: v.Value, Command: cv})
		}

		out = append(out, a)
	}
	return out, nil
}

func parseMIDICommand(s string) (processor.MIDICommand, bool) {
	switch s {
	case "Note":
		return processor.MIDINote, true
	case "ControlChange":
		return processor.MIDIControlChange, true
	case "PitchWheel":
		return processor.MIDIPitchWheel, true
	case "ProgramChange":
		return processor.MIDIProgramChange, true
	case "Aftertouch":
		return processor.MIDIAftertouch, true
	case "ChannelPressure":
		return processor.MIDIChannelPressure, true
	default:
		return 0, false
	}
}

func toRemappings(xs []RemappingXML) ([]processor.RemapEntry, error) {
	out := make([]processor.RemapEntry, 0, len(xs))
	for _, x := range xs {
		id, ok := roi.ParseName(x.ROI)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownROI, x.ROI)
		}
		out = append(out, processor.RemapEntry{
			ROI:      id,
			Pattern:  strings.TrimSpace(x.Pattern),
			MinValue: x.MinValue,
			MaxValue: x.MaxValue,
		})
	}
	return out, nil
}

// toProcessorConfig converts one <ProtocolA>/<ProtocolB> element into the
// processor-agnostic processor.Config every Processor.SetState consumes
// (spec.md §4.2 "setState(configTree)").
func toProcessorConfig(px ProtocolXML, role processor.Role) (processor.Config, error) {
	typ := processor.ParseType(px.Type)
	if typ == processor.TypeInvalid {
		return processor.Config{}, fmt.Errorf("%w: %q", ErrUnknownProtocolType, px.Type)
	}

	active, err := expandObjectList(px.ActiveObjects)
	if err != nil {
		return processor.Config{}, err
	}
	muted, err := expandObjectList(px.MutedObjects)
	if err != nil {
		return processor.Config{}, err
	}
	assignments, err := toMIDIAssignments(px.MIDIAssignments)
	if err != nil {
		return processor.Config{}, err
	}
	remappings, err := toRemappings(px.Remappings)
	if err != nil {
		return processor.Config{}, err
	}

	pollMs := px.PollingInterval.IntervalMs
	if pollMs == 0 {
		pollMs = 100
	}

	return processor.Config{
		ID:   objectmodel.ProtocolID(px.ID),
		Role: role,
		Type: typ,

		UsesActiveObjects: px.UsesActiveRemoteObjects,
		ActiveObjects:     active,
		MutedObjects:      muted,
		PollingIntervalMs: pollMs,

		IPAddress:  px.IPAddress.Address,
		ClientPort: px.ClientPort.Port,
		HostPort:   px.HostPort.Port,

		MappingAreaID: px.MappingArea.ID,

		Ocp1ServerMode: px.Ocp1ConnectionMode == "server",

		MIDIInputDevice:  px.InputDevice.Identifier,
		MIDIOutputDevice: px.OutputDevice.Identifier,
		MIDIAssignments:  assignments,

		Remappings:          remappings,
		DataSendingDisabled: px.DataSendingDisabled,
	}, nil
}
