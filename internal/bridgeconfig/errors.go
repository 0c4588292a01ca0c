package bridgeconfig

import "errors"

// Configuration errors (spec.md §7 "Configuration errors — missing
// required element, conflicting ids, unknown mode"), named the way the
// teacher exports sentinel errors (internal/flow.ErrFlowNotFound-style).
var (
	ErrUnknownMode           = errors.New("unknown object handling mode")
	ErrUnknownProtocolType   = errors.New("unknown protocol type")
	ErrUnknownROI            = errors.New("unknown remote object identifier")
	ErrUnknownMIDICommand    = errors.New("unknown midi command")
	ErrDuplicateNodeID       = errors.New("duplicate node id in configuration")
	ErrDuplicateProtocolID   = errors.New("duplicate protocol id within a node role")
	ErrMIDIPortOpenerMissing = errors.New("midi protocol configured but no MIDI port opener supplied")
)
