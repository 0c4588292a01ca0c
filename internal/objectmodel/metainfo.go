package objectmodel

// MessageCategory classifies why a message is being delivered (spec.md §3
// RemoteObjectMessageMetaInfo).
type MessageCategory int

const (
	CategoryNone MessageCategory = iota
	CategoryUnsolicited
	CategorySetAcknowledgement
)

// InvalidExternalID marks "no originating protocol" (the original's
// INVALID_EXTID).
const InvalidExternalID = -1

// AsyncExternalID marks a set triggered by something other than an
// incoming protocol message (the original's ASYNC_EXTID), e.g. the
// No-protocol simulator's own animation.
const AsyncExternalID = -2

// MetaInfo carries the originating protocol id through a round-trip so
// set-acknowledgements are not reflected back to the originator (spec.md
// §3, §4.3 "Common forwarding invariants", §8 P5).
type MetaInfo struct {
	Category   MessageCategory
	ExternalID int
}

// NoMeta is the zero value: MC_None, no external id.
var NoMeta = MetaInfo{Category: CategoryNone, ExternalID: InvalidExternalID}
