package osc

import (
	"strconv"
	"strings"

	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/roi"
)

// admAddressByID is the ADM OSC dialect's object-parameter address table,
// grounded on ADMOSCProtocolProcessor.cpp's GetADMMessageTypeString /
// GetADMObjectTypeString ("obj/<index>/<param>"). Only the positioning and
// gain ids ADM actually carries are mapped; everything else has no ADM
// representation.
var admAddressByID = map[roi.ID]string{
	roi.CoordinateMappingSourcePositionX:  "/adm/obj/1/x",
	roi.CoordinateMappingSourcePositionY:  "/adm/obj/1/y",
	roi.CoordinateMappingSourcePositionXY: "/adm/obj/1/xyz",
	roi.MatrixInputGain:                   "/adm/obj/1/gain",
}

var admIDByPrefix map[string]roi.ID

func init() {
	admIDByPrefix = make(map[string]roi.ID, len(admAddressByID))
	for id, addr := range admAddressByID {
		admIDByPrefix[addr] = id
	}
}

// admAddressFor returns the ADM dialect address for id, or "" if ADM has no
// representation for it.
func admAddressFor(id roi.ID) string {
	return admAddressByID[id]
}

// admResolveAddress mirrors ResolveAddress for the "obj/<index>/<param>"
// ADM shape: the object index is the channel, there is no record component.
func admResolveAddress(address string) (id roi.ID, channel int, ok bool) {
	const objPrefix = "/adm/obj/"
	if !strings.HasPrefix(address, objPrefix) {
		return roi.Invalid, 0, false
	}
	rest := strings.TrimPrefix(address, objPrefix)
	segments := strings.SplitN(rest, "/", 2)
	if len(segments) != 2 {
		return roi.Invalid, 0, false
	}
	index, err := strconv.Atoi(segments[0])
	if err != nil {
		return roi.Invalid, 0, false
	}
	candidate, ok := admIDByPrefix["/adm/obj/1/"+segments[1]]
	if !ok {
		return roi.Invalid, 0, false
	}
	return candidate, index, true
}
