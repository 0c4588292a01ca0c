// Package handler implements the Object-Data-Handler (spec.md §4.3): the
// routing/filtering/transformation policy sitting between role-A and role-B
// processors of a bridgenode.Node. Following spec.md §9's guidance, variants
// are expressed as a tagged sum (Mode) dispatched by a single Handler type,
// not a class hierarchy.
package handler

import (
	"sync"
	"time"

	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/objectmodel"
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/processor"
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/roi"
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/timerthread"
)

// Mode selects the handler's forwarding/filtering policy (spec.md §4.3,
// §6 ObjectHandling Mode attribute).
type Mode int

const (
	ModeInvalid Mode = iota
	ModeBypass
	ModeForwardAToBOnly
	ModeReverseBToAOnly
	ModeRemapAXYToBXY
	ModeMuxNAtoMB
	ModeForwardOnlyValueChanges
	ModeMuxNAtoMBWithValFilter
	ModeMirrorDualAWithValFilter
	ModeA1ActiveWithValFilter
	ModeA2ActiveWithValFilter
	// ModeDS100DeviceSimulation pairs a role with internal/processor/noproto,
	// whose own cache/animation logic supplies the simulated replies; the
	// handler itself only needs to forward both ways, same as ModeBypass.
	ModeDS100DeviceSimulation
)

func (m Mode) String() string {
	switch m {
	case ModeBypass:
		return "Bypass"
	case ModeForwardAToBOnly:
		return "Forward_A_to_B_only"
	case ModeReverseBToAOnly:
		return "Reverse_B_to_A_only"
	case ModeRemapAXYToBXY:
		return "Remap_A_X_Y_to_B_XY"
	case ModeMuxNAtoMB:
		return "Mux_nA_to_mB"
	case ModeForwardOnlyValueChanges:
		return "Forward_only_valueChanges"
	case ModeMuxNAtoMBWithValFilter:
		return "Mux_nA_to_mB_withValFilter"
	case ModeMirrorDualAWithValFilter:
		return "Mirror_dualA_withValFilter"
	case ModeA1ActiveWithValFilter:
		return "A1active_withValFilter"
	case ModeA2ActiveWithValFilter:
		return "A2active_withValFilter"
	case ModeDS100DeviceSimulation:
		return "DS100_DeviceSimulation"
	default:
		return "Invalid"
	}
}

// ParseMode resolves the XML config's string spelling of a Mode.
func ParseMode(s string) Mode {
	for m := ModeBypass; m <= ModeDS100DeviceSimulation; m++ {
		if m.String() == s {
			return m
		}
	}
	return ModeInvalid
}

// OnlineState tracks a protocol's liveness and, for Mirror-dualA, its
// master/slave role. Up/Down and Master/Slave are independent bit-pairs
// combined with bitwise OR (spec.md §4.3 "Shared state").
type OnlineState int

const (
	Down   OnlineState = 0
	Up     OnlineState = 1 << 0
	Master OnlineState = 1 << 1
	Slave  OnlineState = 1 << 2
)

func (s OnlineState) IsUp() bool     { return s&Up != 0 }
func (s OnlineState) IsMaster() bool { return s&Master != 0 }
func (s OnlineState) IsSlave() bool  { return s&Slave != 0 }

// StateListener is notified of protocol online-state transitions, e.g. for
// telemetry or Mirror-dualA failover events (spec.md §4.3 "a state listener
// for telemetry").
type StateListener interface {
	OnProtocolStateChanged(id objectmodel.ProtocolID, state OnlineState)
}

// StateListenerFunc adapts a plain function to StateListener.
type StateListenerFunc func(id objectmodel.ProtocolID, state OnlineState)

func (f StateListenerFunc) OnProtocolStateChanged(id objectmodel.ProtocolID, state OnlineState) {
	f(id, state)
}

// Sender is the narrow capability a Handler needs from its owning Node:
// dispatch a message to one of the Node's own processors by id (spec.md
// §4.4 "sendMessageTo"). Kept as an interface (rather than importing
// bridgenode) to avoid a handler<->bridgenode import cycle, per spec.md §9's
// arena+index guidance.
// externalID identifies, for loop-prevention purposes, which protocol this
// send is being made on behalf of (spec.md §8 P5): when the destination
// processor later emits a SetAcknowledgement, it stamps the ack's
// MetaInfo.ExternalID with this value, letting a later hop's sendOne drop
// it before it bounces back to the same protocol.
type Sender interface {
	SendMessageTo(id objectmodel.ProtocolID, ro objectmodel.RemoteObject, data objectmodel.MessageData, externalID int) bool
}

// defaultReactionTimeout is the silence window after which a protocol is
// flagged Down (spec.md §4.3 "a reaction-timeout (default 5100 ms)").
const defaultReactionTimeout = 5100 * time.Millisecond

// defaultFailoverTime is Mirror-dualA's default master-silence window
// (spec.md §4.3 "Mirror-dualA ... default 1000 ms").
const defaultFailoverTime = 1000 * time.Millisecond

// Config configures a Handler's construction (spec.md §6 ObjectHandling
// element and its mode-specific children).
type Config struct {
	Mode Mode

	ProtocolAIDs []objectmodel.ProtocolID
	ProtocolBIDs []objectmodel.ProtocolID

	// Mux / Mux-with-value-filter.
	ProtocolAChannelCount int
	ProtocolBChannelCount int

	// Forward-only value-changes / Mux-with-value-filter / Mirror-dualA /
	// A1-A2-active-with-value-filter.
	DataPrecision float64

	// Mirror-dualA.
	FailoverTime time.Duration

	ReactionTimeout time.Duration
}

// Handler is the single tagged-sum type implementing every variant spec.md
// §4.3 names; OnReceivedMessageFromProtocol dispatches on Mode.
type Handler struct {
	mode Mode

	protocolAIDs []objectmodel.ProtocolID
	protocolBIDs []objectmodel.ProtocolID

	protocolAChannelCount int
	protocolBChannelCount int
	precision             float64
	failoverTime          time.Duration
	reactionTimeout       time.Duration

	mu       sync.Mutex
	state    map[objectmodel.ProtocolID]OnlineState
	lastSeen map[objectmodel.ProtocolID]time.Time
	listener StateListener

	// Remap (A x,y -> B xy): last-known 3-float position per position
	// family and (channel, record), so a lone X or Y update doesn't clobber
	// the other, not-yet-resent component.
	remapCache map[remapKey][3]float32

	// Forward-only value-changes / Mux-with-value-filter / mirror /
	// A1-A2-active: last-forwarded value, split per role (spec.md
	// "Ambiguities to preserve" item 3: A-cache and B-cache are always kept
	// separate, never a single shared map).
	aCache map[objectmodel.RemoteObject]objectmodel.MessageData
	bCache map[objectmodel.RemoteObject]objectmodel.MessageData

	timer timerthread.Timer
}

// New constructs a Handler for the given Config.
func New(cfg Config) *Handler {
	reaction := cfg.ReactionTimeout
	if reaction <= 0 {
		reaction = defaultReactionTimeout
	}
	failover := cfg.FailoverTime
	if failover <= 0 {
		failover = defaultFailoverTime
	}

	h := &Handler{
		mode:                  cfg.Mode,
		protocolAIDs:          append([]objectmodel.ProtocolID(nil), cfg.ProtocolAIDs...),
		protocolBIDs:          append([]objectmodel.ProtocolID(nil), cfg.ProtocolBIDs...),
		protocolAChannelCount: cfg.ProtocolAChannelCount,
		protocolBChannelCount: cfg.ProtocolBChannelCount,
		precision:             cfg.DataPrecision,
		failoverTime:          failover,
		reactionTimeout:       reaction,
		state:                 make(map[objectmodel.ProtocolID]OnlineState),
		lastSeen:              make(map[objectmodel.ProtocolID]time.Time),
		remapCache:            make(map[remapKey][3]float32),
		aCache:                make(map[objectmodel.RemoteObject]objectmodel.MessageData),
		bCache:                make(map[objectmodel.RemoteObject]objectmodel.MessageData),
	}
	for _, id := range h.protocolAIDs {
		h.state[id] = Down
	}
	for _, id := range h.protocolBIDs {
		h.state[id] = Down
	}
	if len(h.protocolAIDs) > 0 {
		h.state[h.protocolAIDs[0]] = Down | Master
		if len(h.protocolAIDs) > 1 {
			h.state[h.protocolAIDs[1]] = Down | Slave
		}
	}
	return h
}

// Mode reports the handler's configured variant.
func (h *Handler) Mode() Mode { return h.mode }

// SetStateListener registers the telemetry/failover listener.
func (h *Handler) SetStateListener(l StateListener) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.listener = l
}

// Start begins the reaction-timeout timer that flips silent protocols to
// Down (spec.md §4.3 "a periodic timer flips silent protocols to Down").
func (h *Handler) Start() {
	h.timer.Start(int(h.reactionTimeout/time.Millisecond)/2, 0, h.checkReactionTimeouts)
}

// Stop halts the reaction-timeout timer.
func (h *Handler) Stop() {
	h.timer.Stop()
}

func (h *Handler) checkReactionTimeouts() {
	h.mu.Lock()
	now := time.Now()
	var changed []objectmodel.ProtocolID
	for id, seen := range h.lastSeen {
		if now.Sub(seen) <= h.reactionTimeout {
			continue
		}
		if h.state[id]&Up == 0 {
			continue
		}
		h.state[id] &^= Up
		changed = append(changed, id)
	}
	listener := h.listener
	states := make(map[objectmodel.ProtocolID]OnlineState, len(changed))
	for _, id := range changed {
		states[id] = h.state[id]
	}
	h.mu.Unlock()

	if listener == nil {
		return
	}
	for _, id := range changed {
		listener.OnProtocolStateChanged(id, states[id])
	}
}

func (h *Handler) markSeen(id objectmodel.ProtocolID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastSeen[id] = time.Now()
	wasUp := h.state[id]&Up != 0
	h.state[id] |= Up
	if !wasUp && h.listener != nil {
		state := h.state[id]
		h.mu.Unlock()
		h.listener.OnProtocolStateChanged(id, state)
		h.mu.Lock()
	}
}

// Snapshot returns a copy of the current per-protocol online state, for
// telemetry callers that cannot register a StateListener (e.g. a metrics
// scrape, which wants the live state rather than a stream of transitions).
func (h *Handler) Snapshot() map[objectmodel.ProtocolID]OnlineState {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make(map[objectmodel.ProtocolID]OnlineState, len(h.state))
	for id, s := range h.state {
		out[id] = s
	}
	return out
}

// CacheSizes reports the live size of each per-direction cache the handler
// maintains, for telemetry on memory growth of long-running mux/mirror/
// value-filter nodes.
func (h *Handler) CacheSizes() (remap, a, b int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.remapCache), len(h.aCache), len(h.bCache)
}

func (h *Handler) isProtocolA(id objectmodel.ProtocolID) bool {
	for _, a := range h.protocolAIDs {
		if a == id {
			return true
		}
	}
	return false
}

// isProtocolB reports membership in the B list, not merely "not in A" —
// spec.md §9 "Ambiguities to preserve" item 2 calls out the original's
// inverted predicate as a bug, not a behavior to reproduce.
func (h *Handler) isProtocolB(id objectmodel.ProtocolID) bool {
	for _, b := range h.protocolBIDs {
		if b == id {
			return true
		}
	}
	return false
}

// OnReceivedMessageFromProtocol is the Node worker's single entry point into
// the handler (spec.md §4.4 "synchronously invoke
// handler.onReceivedMessageFromProtocol"). fromID identifies the sending
// processor; ro/data/meta are as received; fromType isn't currently
// consulted by any variant but is threaded through for future per-type
// policy.
func (h *Handler) OnReceivedMessageFromProtocol(sender Sender, fromID objectmodel.ProtocolID, fromType processor.Type, ro objectmodel.RemoteObject, data objectmodel.MessageData, meta objectmodel.MetaInfo) {
	h.markSeen(fromID)

	if ro.ID == roi.HeartbeatPing || ro.ID == roi.HeartbeatPong {
		h.passThroughHeartbeat(sender, fromID, ro, data, meta)
		return
	}

	switch h.mode {
	case ModeBypass, ModeDS100DeviceSimulation:
		h.forwardToOtherRole(sender, fromID, ro, data, meta)
	case ModeForwardAToBOnly:
		if h.isProtocolA(fromID) {
			h.sendToAll(sender, h.protocolBIDs, fromID, ro, data, meta)
		}
	case ModeReverseBToAOnly:
		if h.isProtocolB(fromID) {
			h.sendToAll(sender, h.protocolAIDs, fromID, ro, data, meta)
		}
	case ModeRemapAXYToBXY:
		h.handleRemap(sender, fromID, ro, data, meta)
	case ModeMuxNAtoMB:
		h.handleMux(sender, fromID, ro, data, meta, false)
	case ModeMuxNAtoMBWithValFilter:
		h.handleMux(sender, fromID, ro, data, meta, true)
	case ModeForwardOnlyValueChanges:
		h.handleValueFilter(sender, fromID, ro, data, meta)
	case ModeMirrorDualAWithValFilter:
		h.handleMirror(sender, fromID, ro, data, meta)
	case ModeA1ActiveWithValFilter:
		if len(h.protocolAIDs) > 0 {
			h.handleActiveFilter(sender, fromID, ro, data, meta, h.protocolAIDs[0])
		}
	case ModeA2ActiveWithValFilter:
		if len(h.protocolAIDs) > 1 {
			h.handleActiveFilter(sender, fromID, ro, data, meta, h.protocolAIDs[1])
		}
	}
}

// passThroughHeartbeat forwards Ping/Pong to the other role unconditionally
// (spec.md §4.3 "HeartbeatPing/Pong pass through uninterpreted").
func (h *Handler) passThroughHeartbeat(sender Sender, fromID objectmodel.ProtocolID, ro objectmodel.RemoteObject, data objectmodel.MessageData, meta objectmodel.MetaInfo) {
	if h.isProtocolA(fromID) {
		h.sendToAll(sender, h.protocolBIDs, fromID, ro, data, meta)
		return
	}
	h.sendToAll(sender, h.protocolAIDs, fromID, ro, data, meta)
}

func (h *Handler) forwardToOtherRole(sender Sender, fromID objectmodel.ProtocolID, ro objectmodel.RemoteObject, data objectmodel.MessageData, meta objectmodel.MetaInfo) {
	if h.isProtocolA(fromID) {
		h.sendToAll(sender, h.protocolBIDs, fromID, ro, data, meta)
		return
	}
	h.sendToAll(sender, h.protocolAIDs, fromID, ro, data, meta)
}

// sendToAll forwards to every target id, applying the loop-prevention
// invariant (spec.md §4.3 "A message tagged SetAcknowledgement with
// externalId == targetProtocolId must not be re-sent to that protocol").
// fromID is stamped on the outgoing send as the externalID the destination
// should echo back on its own acknowledgement.
func (h *Handler) sendToAll(sender Sender, targets []objectmodel.ProtocolID, fromID objectmodel.ProtocolID, ro objectmodel.RemoteObject, data objectmodel.MessageData, meta objectmodel.MetaInfo) {
	for _, id := range targets {
		h.sendOne(sender, id, fromID, ro, data, meta)
	}
}

func (h *Handler) sendOne(sender Sender, target objectmodel.ProtocolID, fromID objectmodel.ProtocolID, ro objectmodel.RemoteObject, data objectmodel.MessageData, meta objectmodel.MetaInfo) {
	if meta.Category == objectmodel.CategorySetAcknowledgement && int(target) == meta.ExternalID {
		return
	}
	sender.SendMessageTo(target, ro, data.Clone(), int(fromID))
}
