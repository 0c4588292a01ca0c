package handler

import (
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/objectmodel"
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/roi"
)

// positionFamily groups one position ROI's combined-XYZ, combined-XY,
// X-only and Y-only variants (spec.md §4.3 "whenever the XYZ triple
// changes, the handler derives and emits the XY, X, Y variants").
type positionFamily struct {
	full, xy, x, y roi.ID
}

var positionFamilies = []positionFamily{
	{roi.PositioningSourcePosition, roi.PositioningSourcePositionXY, roi.PositioningSourcePositionX, roi.PositioningSourcePositionY},
	{roi.CoordinateMappingSourcePosition, roi.CoordinateMappingSourcePositionXY, roi.CoordinateMappingSourcePositionX, roi.CoordinateMappingSourcePositionY},
}

func familyOf(id roi.ID) (positionFamily, bool) {
	for _, f := range positionFamilies {
		if f.full == id || f.xy == id || f.x == id || f.y == id {
			return f, true
		}
	}
	return positionFamily{}, false
}

type remapKey struct {
	family int
	addr   objectmodel.Addressing
}

// handleRemap implements Remap_A_X_Y_to_B_XY: separate X/Y sends from A are
// merged (against a per-(channel,record) cached 3-float position, to
// preserve the unsent component) into a combined XY on B; B's combined XY
// is split back into X and Y on A. Everything outside the position families
// forwards like Bypass.
func (h *Handler) handleRemap(sender Sender, fromID objectmodel.ProtocolID, ro objectmodel.RemoteObject, data objectmodel.MessageData, meta objectmodel.MetaInfo) {
	family, ok := familyOf(ro.ID)
	if !ok {
		h.forwardToOtherRole(sender, fromID, ro, data, meta)
		return
	}

	famIdx := -1
	for i, f := range positionFamilies {
		if f == family {
			famIdx = i
			break
		}
	}
	key := remapKey{family: famIdx, addr: ro.Addr}

	fromA := h.isProtocolA(fromID)

	switch {
	case fromA && (ro.ID == family.x || ro.ID == family.y):
		vs, ok := data.Floats()
		if !ok || len(vs) != 1 {
			return
		}
		h.mu.Lock()
		cur := h.remapCache[key]
		if ro.ID == family.x {
			cur[0] = vs[0]
		} else {
			cur[1] = vs[0]
		}
		h.remapCache[key] = cur
		h.mu.Unlock()

		xy := objectmodel.New(family.xy, ro.Addr)
		h.sendToAll(sender, h.protocolBIDs, fromID, xy, objectmodel.NewFloat(ro.Addr, cur[0], cur[1]), meta)

	case fromA:
		// Combined XY or full XYZ already, or any other family member sent
		// directly: forward unchanged.
		h.sendToAll(sender, h.protocolBIDs, fromID, ro, data, meta)

	case !fromA && ro.ID == family.xy:
		vs, ok := data.Floats()
		if !ok || len(vs) != 2 {
			return
		}
		h.mu.Lock()
		h.remapCache[key] = [3]float32{vs[0], vs[1], h.remapCache[key][2]}
		h.mu.Unlock()

		h.sendToAll(sender, h.protocolAIDs, fromID, objectmodel.New(family.x, ro.Addr), objectmodel.NewFloat(ro.Addr, vs[0]), meta)
		h.sendToAll(sender, h.protocolAIDs, fromID, objectmodel.New(family.y, ro.Addr), objectmodel.NewFloat(ro.Addr, vs[1]), meta)

	default:
		h.sendToAll(sender, h.protocolAIDs, fromID, ro, data, meta)
	}
}
