package handler

import (
	"time"

	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/objectmodel"
)

// currentMirrorRolesLocked returns the current master/slave A-protocol ids. Must
// be called with h.mu held.
func (h *Handler) currentMirrorRolesLocked() (master, slave objectmodel.ProtocolID) {
	if len(h.protocolAIDs) == 0 {
		return 0, 0
	}
	master = h.protocolAIDs[0]
	if len(h.protocolAIDs) > 1 {
		slave = h.protocolAIDs[1]
	}
	for _, id := range h.protocolAIDs {
		if h.state[id].IsMaster() {
			master = id
		}
		if h.state[id].IsSlave() {
			slave = id
		}
	}
	return master, slave
}

// swapMirrorRolesLocked exchanges the Master/Slave bits on the two A
// protocols atomically (spec.md §8 P4, §4.3 "master/slave swap
// atomically"). Must be called with h.mu held; it returns nothing, so the
// caller swaps its own master/slave variables and notifies listeners after
// unlocking.
func (h *Handler) swapMirrorRolesLocked(master, slave objectmodel.ProtocolID) {
	h.state[master] = (h.state[master] &^ (Master | Slave)) | Slave
	h.state[slave] = (h.state[slave] &^ (Master | Slave)) | Master
}

// handleMirror implements Mirror_dualA_withValFilter: of exactly two A
// protocols, the master forwards its updates to B (and mirrors them,
// unfiltered, to the slave so the slave's shadow state tracks the
// device); the slave's own traffic is ignored for forwarding unless the
// master has been silent past failoverTime, in which case the roles swap
// and the slave's (now master's) message is forwarded to B instead
// (spec.md §4.3, §8 P4).
func (h *Handler) handleMirror(sender Sender, fromID objectmodel.ProtocolID, ro objectmodel.RemoteObject, data objectmodel.MessageData, meta objectmodel.MetaInfo) {
	if h.isProtocolB(fromID) {
		h.mu.Lock()
		master, slave := h.currentMirrorRolesLocked()
		changed := h.ackAwareValueChangedLocked(h.aCache, ro, data, meta)
		h.mu.Unlock()
		if changed {
			h.sendOne(sender, master, fromID, ro, data, meta)
		}
		if slave != 0 {
			sender.SendMessageTo(slave, ro, data.Clone(), int(fromID))
		}
		return
	}

	h.mu.Lock()
	master, slave := h.currentMirrorRolesLocked()
	now := time.Now()
	masterSilent := now.Sub(h.lastSeen[master]) > h.failoverTime
	swapped := false
	if fromID == slave && masterSilent {
		h.swapMirrorRolesLocked(master, slave)
		master, slave = slave, master
		swapped = true
	}
	states := map[objectmodel.ProtocolID]OnlineState{master: h.state[master], slave: h.state[slave]}
	listener := h.listener
	h.mu.Unlock()

	if swapped && listener != nil {
		listener.OnProtocolStateChanged(master, states[master])
		listener.OnProtocolStateChanged(slave, states[slave])
	}

	if fromID != master {
		return
	}

	h.mu.Lock()
	changed := h.ackAwareValueChangedLocked(h.bCache, ro, data, meta)
	h.mu.Unlock()
	if changed {
		h.sendToAll(sender, h.protocolBIDs, fromID, ro, data, meta)
	}
	if slave != 0 {
		sender.SendMessageTo(slave, ro, data.Clone(), int(fromID))
	}
}

// ackAwareValueChangedLocked is valueChangedLocked, except a
// SetAcknowledgement is never written into cache, per spec.md §4.3
// "Set-acknowledgement messages are not written into the change-tracking
// cache for acknowledging peers, so ack replies can still propagate to
// bridged peers that did not yet observe the update". Must be called with
// h.mu held.
func (h *Handler) ackAwareValueChangedLocked(cache map[objectmodel.RemoteObject]objectmodel.MessageData, ro objectmodel.RemoteObject, data objectmodel.MessageData, meta objectmodel.MetaInfo) bool {
	if data.IsDataEmpty() {
		return true
	}
	if meta.Category == objectmodel.CategorySetAcknowledgement {
		last, ok := cache[ro]
		return !ok || !valuesEqual(last, data, h.precision)
	}
	return h.valueChangedLocked(cache, ro, data)
}
