package handler

import "github.com/ChristianAhrens/remoteprotocolbridgecore/internal/objectmodel"

// handleActiveFilter implements A1active_withValFilter / A2active_withValFilter:
// of the two A protocols, only activeA's traffic (and any B's) is forwarded,
// both directions value-change filtered (spec.md §4.3 "A1-active / A2-active
// with value-filter"). The non-active A protocol's traffic is dropped.
func (h *Handler) handleActiveFilter(sender Sender, fromID objectmodel.ProtocolID, ro objectmodel.RemoteObject, data objectmodel.MessageData, meta objectmodel.MetaInfo, activeA objectmodel.ProtocolID) {
	switch {
	case h.isProtocolB(fromID):
		h.mu.Lock()
		changed := h.ackAwareValueChangedLocked(h.aCache, ro, data, meta)
		h.mu.Unlock()
		if changed {
			h.sendOne(sender, activeA, fromID, ro, data, meta)
		}
	case fromID == activeA:
		h.mu.Lock()
		changed := h.ackAwareValueChangedLocked(h.bCache, ro, data, meta)
		h.mu.Unlock()
		if changed {
			h.sendToAll(sender, h.protocolBIDs, fromID, ro, data, meta)
		}
	default:
		// The inactive A protocol: dropped (spec.md §4.3 "only data from
		// A#1 (resp. A#2) ... is forwarded").
	}
}
