package handler

import (
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/objectmodel"
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/roi"
)

func indexOfProtocol(ids []objectmodel.ProtocolID, id objectmodel.ProtocolID) int {
	for i, existing := range ids {
		if existing == id {
			return i
		}
	}
	return -1
}

// muxChannel flattens (protocolIndex, localChannel) into a contiguous index
// and back, per spec.md §4.3 "Mux nA↔mB": "flatten each role's channels
// into a contiguous index (protocolIndex × chanCount + local), then split
// into the other role's channel layout."
func muxChannel(protocolIndex, localChannel, chanCount int) int {
	return protocolIndex*chanCount + (localChannel - 1)
}

func unmuxChannel(flat, chanCount int) (protocolIndex, localChannel int) {
	return flat / chanCount, flat%chanCount + 1
}

// handleMux implements Mux_nA_to_mB (withFilter=false) and
// Mux_nA_to_mB_withValFilter (withFilter=true, keyed on the mapped/flat
// addressing per spec.md §4.3 "Mux-with-value-filter"). Ids without a
// meaningful channel component forward to every peer on the other role,
// same as Bypass, since there's no channel to remap.
func (h *Handler) handleMux(sender Sender, fromID objectmodel.ProtocolID, ro objectmodel.RemoteObject, data objectmodel.MessageData, meta objectmodel.MetaInfo, withFilter bool) {
	if !roi.IsChannelAddressingObject(ro.ID) {
		h.forwardToOtherRole(sender, fromID, ro, data, meta)
		return
	}

	fromA := h.isProtocolA(fromID)

	var srcIDs, dstIDs []objectmodel.ProtocolID
	var srcChanCount, dstChanCount int
	if fromA {
		srcIDs, dstIDs = h.protocolAIDs, h.protocolBIDs
		srcChanCount, dstChanCount = h.protocolAChannelCount, h.protocolBChannelCount
	} else {
		srcIDs, dstIDs = h.protocolBIDs, h.protocolAIDs
		srcChanCount, dstChanCount = h.protocolBChannelCount, h.protocolAChannelCount
	}
	if srcChanCount <= 0 || dstChanCount <= 0 {
		return
	}

	srcIdx := indexOfProtocol(srcIDs, fromID)
	if srcIdx < 0 {
		return
	}
	flat := muxChannel(srcIdx, ro.Addr.First, srcChanCount)
	dstIdx, dstChannel := unmuxChannel(flat, dstChanCount)
	if dstIdx < 0 || dstIdx >= len(dstIDs) {
		return
	}

	mappedRO := objectmodel.New(ro.ID, objectmodel.NewAddressing(dstChannel, ro.Addr.Second))
	target := dstIDs[dstIdx]

	if withFilter {
		cache := h.bCache
		if !fromA {
			cache = h.aCache
		}
		if !data.IsDataEmpty() {
			h.mu.Lock()
			changed := h.valueChangedLocked(cache, mappedRO, data)
			h.mu.Unlock()
			if !changed {
				return
			}
		}
	}

	h.sendOne(sender, target, fromID, mappedRO, data, meta)
}
