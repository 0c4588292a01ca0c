package handler

import (
	"math"

	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/objectmodel"
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/roi"
)

// valuesEqual reports whether cur differs from last by no more than
// precision (floats) or at all (int/string) — spec.md §4.3
// "Forward-only value-changes": "forward only if payload differs by more
// than configured precision (for floats). Integer and string compare
// exactly."
func valuesEqual(last, cur objectmodel.MessageData, precision float64) bool {
	if last.ValType != cur.ValType || last.ValCount != cur.ValCount {
		return false
	}
	switch cur.ValType {
	case objectmodel.ValueFloat:
		lv, ok1 := last.Floats()
		cv, ok2 := cur.Floats()
		if !ok1 || !ok2 || len(lv) != len(cv) {
			return false
		}
		for i := range cv {
			if math.Abs(float64(cv[i]-lv[i])) > precision {
				return false
			}
		}
		return true
	default:
		return last.Equal(cur)
	}
}

// valueChangedLocked reports whether data is new/changed relative to cache[ro],
// updating cache[ro] as a side effect when it is. Must be called with h.mu
// held by the caller.
func (h *Handler) valueChangedLocked(cache map[objectmodel.RemoteObject]objectmodel.MessageData, ro objectmodel.RemoteObject, data objectmodel.MessageData) bool {
	last, ok := cache[ro]
	if ok && valuesEqual(last, data, h.precision) {
		return false
	}
	cache[ro] = data.Clone()
	return true
}

type cachedEntry struct {
	ro   objectmodel.RemoteObject
	data objectmodel.MessageData
}

func snapshotCache(cache map[objectmodel.RemoteObject]objectmodel.MessageData) []cachedEntry {
	out := make([]cachedEntry, 0, len(cache))
	for ro, data := range cache {
		out = append(out, cachedEntry{ro, data})
	}
	return out
}

// handleValueFilter implements Forward_only_valueChanges: per-role cache of
// last-forwarded values, forwarding only on change (beyond precision for
// floats), always forwarding keep-alives (handled upstream) and
// value-count-zero polling requests, and answering
// RemoteProtocolBridge_GetAllKnownValues by walking the requester's own
// side's cache (spec.md §9 "Ambiguities to preserve" item 1: not the
// A-cache unconditionally, as the source does).
func (h *Handler) handleValueFilter(sender Sender, fromID objectmodel.ProtocolID, ro objectmodel.RemoteObject, data objectmodel.MessageData, meta objectmodel.MetaInfo) {
	if ro.ID == roi.RemoteProtocolBridgeGetAllKnownValues {
		h.replyAllKnownValues(sender, fromID)
		return
	}

	fromA := h.isProtocolA(fromID)
	targets := h.protocolBIDs
	cache := h.bCache
	if !fromA {
		targets = h.protocolAIDs
		cache = h.aCache
	}

	if !data.IsDataEmpty() {
		h.mu.Lock()
		changed := h.valueChangedLocked(cache, ro, data)
		h.mu.Unlock()
		if !changed {
			return
		}
	}
	h.sendToAll(sender, targets, fromID, ro, data, meta)
}

// replyAllKnownValues answers a cache-values query directly to the
// requester; it isn't a forward on behalf of another protocol, so it's
// stamped with AsyncExternalID like the original's own internally-triggered
// sends (spec.md §9, `ObjectDataHandling_Abstract`'s ASYNC_EXTID).
func (h *Handler) replyAllKnownValues(sender Sender, fromID objectmodel.ProtocolID) {
	var cache map[objectmodel.RemoteObject]objectmodel.MessageData
	if h.isProtocolB(fromID) {
		cache = h.bCache
	} else {
		cache = h.aCache
	}

	h.mu.Lock()
	entries := snapshotCache(cache)
	h.mu.Unlock()

	for _, e := range entries {
		sender.SendMessageTo(fromID, e.ro, e.data.Clone(), objectmodel.AsyncExternalID)
	}
}
