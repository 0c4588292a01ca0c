package midi

import (
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/objectmodel"
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/processor"
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/roi"
)

// isSelectROI reports whether id has select/deselect-toggle semantics
// (spec.md §4.2.4 "Selection semantics"), grounded on the original's
// special-cased ROI_MatrixInput_Select / ROI_RemoteProtocolBridge_
// SoundObjectSelect / ROI_RemoteProtocolBridge_SoundObjectGroupSelect
// handling.
func isSelectROI(id roi.ID) bool {
	switch id {
	case roi.MatrixInputSelect, roi.RemoteProtocolBridgeSoundObjectSelect, roi.RemoteProtocolBridgeSoundObjectGroupSelect:
		return true
	default:
		return false
	}
}

// matchResult is what resolving an Event against an Assignment yields.
type matchResult struct {
	Assignment processor.MIDIAssignment
	Channel    int // resolved channel/index, InvalidAddressValue if n/a
	Value      float64
	HasValue   bool
}

// match resolves e against assignments, returning the first matching
// assignment and its derived channel/value (spec.md §4.2.4 "the first
// matching assignment wins").
func match(e Event, assignments []processor.MIDIAssignment) (matchResult, bool) {
	for _, a := range assignments {
		if a.Command != e.Command {
			continue
		}
		if a.Channel != 0 && a.Channel != e.Channel {
			continue
		}

		r := matchResult{Assignment: a, Channel: objectmodel.InvalidAddressValue}

		if a.HasCommandRange {
			if e.Value < a.CommandLow || e.Value > a.CommandHigh {
				continue
			}
			r.Channel = 1 + (e.Value - a.CommandLow)
		}
		if a.HasValueRange {
			targetMin, targetMax, ok := roi.ValueRange(a.ROI)
			if !ok {
				targetMin, targetMax = 0, 1
			}
			inputSpan := maxFloat(a.ValueHigh-a.ValueLow, 1e-9)
			frac := (float64(e.Value) - a.ValueLow) / inputSpan
			r.Value = targetMin + frac*(targetMax-targetMin)
			r.HasValue = true
		}
		if len(a.SceneValues) > 0 {
			for _, sv := range a.SceneValues {
				if sv.Command == e.Value {
					return matchResult{Assignment: a, Channel: r.Channel}, true
				}
			}
			continue
		}
		return r, true
	}
	return matchResult{}, false
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// selectState tracks the "currently selected channel" for one select-type
// ROI (spec.md §4.2.4 "tracks currently-selected channel; the assignment
// emits deselect-previous + select-new, or toggles if the same command
// re-arrives").
type selectState struct {
	current int // InvalidAddressValue if none selected
}

func newSelectState() *selectState {
	return &selectState{current: objectmodel.InvalidAddressValue}
}

// apply updates the selection given a newly resolved channel, and returns
// the (previous, next) pair the caller should emit deselect/select events
// for. Re-selecting the already-selected channel toggles it off.
func (s *selectState) apply(channel int) (previous, next int) {
	previous = s.current
	if channel == s.current {
		s.current = objectmodel.InvalidAddressValue
	} else {
		s.current = channel
	}
	return previous, s.current
}
