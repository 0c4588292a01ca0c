// Package osc implements the OSC processor and its d&b DS100-dialect
// dependents (spec.md §4.2.2), grounded on
// original_source/.../OSCProtocolProcessor.cpp.
package osc

import (
	"strconv"
	"strings"

	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/roi"
)

// addressByID is the stable OSC address-pattern table, bit-exact with the
// d&b DS100 public dialect (spec.md §6).
var addressByID = map[roi.ID]string{
	roi.SettingsDeviceName:             "/dbaudio1/settings/devicename",
	roi.ErrorGnrlErr:                   "/dbaudio1/error/gnrlerr",
	roi.ErrorErrorText:                 "/dbaudio1/error/errortext",
	roi.StatusStatusText:               "/dbaudio1/status/statustext",
	roi.MatrixInputSelect:              "/dbaudio1/matrixinput/select",
	roi.MatrixInputMute:                "/dbaudio1/matrixinput/mute",
	roi.MatrixInputGain:                "/dbaudio1/matrixinput/gain",
	roi.MatrixInputDelay:               "/dbaudio1/matrixinput/delay",
	roi.MatrixInputDelayEnable:         "/dbaudio1/matrixinput/delayenable",
	roi.MatrixInputEqEnable:            "/dbaudio1/matrixinput/eqenable",
	roi.MatrixInputPolarity:            "/dbaudio1/matrixinput/polarity",
	roi.MatrixInputChannelName:         "/dbaudio1/matrixinput/channelname",
	roi.MatrixInputLevelMeterPreMute:   "/dbaudio1/matrixinput/levelmeterpremute",
	roi.MatrixInputLevelMeterPostMute:  "/dbaudio1/matrixinput/levelmeterpostmute",
	roi.MatrixNodeEnable:               "/dbaudio1/matrixnode/enable",
	roi.MatrixNodeGain:                 "/dbaudio1/matrixnode/gain",
	roi.MatrixNodeDelayEnable:          "/dbaudio1/matrixnode/delayenable",
	roi.MatrixNodeDelay:                "/dbaudio1/matrixnode/delay",
	roi.MatrixOutputMute:               "/dbaudio1/matrixoutput/mute",
	roi.MatrixOutputGain:               "/dbaudio1/matrixoutput/gain",
	roi.MatrixOutputDelay:              "/dbaudio1/matrixoutput/delay",
	roi.MatrixOutputDelayEnable:        "/dbaudio1/matrixoutput/delayenable",
	roi.MatrixOutputEqEnable:           "/dbaudio1/matrixoutput/eqenable",
	roi.MatrixOutputPolarity:           "/dbaudio1/matrixoutput/polarity",
	roi.MatrixOutputChannelName:        "/dbaudio1/matrixoutput/channelname",
	roi.MatrixOutputLevelMeterPreMute:  "/dbaudio1/matrixoutput/levelmeterpremute",
	roi.MatrixOutputLevelMeterPostMute: "/dbaudio1/matrixoutput/levelmeterpostmute",
	roi.PositioningSourceSpread:        "/dbaudio1/positioning/source_spread",
	roi.PositioningSourceDelayMode:     "/dbaudio1/positioning/source_delaymode",
	roi.PositioningSourcePosition:      "/dbaudio1/positioning/source_position",
	roi.PositioningSourcePositionXY:    "/dbaudio1/positioning/source_position_xy",
	roi.PositioningSourcePositionX:     "/dbaudio1/positioning/source_position_x",
	roi.PositioningSourcePositionY:     "/dbaudio1/positioning/source_position_y",
	roi.CoordinateMappingSourcePosition:   "/dbaudio1/coordinatemapping/source_position",
	roi.CoordinateMappingSourcePositionX:  "/dbaudio1/coordinatemapping/source_position_x",
	roi.CoordinateMappingSourcePositionY:  "/dbaudio1/coordinatemapping/source_position_y",
	roi.CoordinateMappingSourcePositionXY: "/dbaudio1/coordinatemapping/source_position_xy",
	roi.MatrixSettingsReverbRoomId:         "/dbaudio1/matrixsettings/reverbroomid",
	roi.MatrixSettingsReverbPredelayFactor: "/dbaudio1/matrixsettings/reverbpredelayfactor",
	roi.MatrixSettingsReverbRearLevel:      "/dbaudio1/matrixsettings/reverbrearlevel",
	roi.MatrixInputReverbSendGain:          "/dbaudio1/matrixinput/reverbsendgain",
	roi.ReverbInputGain:                    "/dbaudio1/reverbinput/gain",
	roi.ReverbInputProcessingMute:          "/dbaudio1/reverbinputprocessing/mute",
	roi.ReverbInputProcessingGain:          "/dbaudio1/reverbinputprocessing/gain",
	roi.ReverbInputProcessingLevelMeter:    "/dbaudio1/reverbinputprocessing/levelmeter",
	roi.ReverbInputProcessingEqEnable:      "/dbaudio1/reverbinputprocessing/eqenable",
	roi.DeviceClear:                        "/dbaudio1/device/clear",
	roi.ScenePrevious:                      "/dbaudio1/scene/previous",
	roi.SceneNext:                          "/dbaudio1/scene/next",
	roi.SceneRecall:                        "/dbaudio1/scene/recall",
	roi.SceneSceneIndex:                    "/dbaudio1/scene/sceneindex",
	roi.SceneSceneName:                     "/dbaudio1/scene/scenename",
	roi.SceneSceneComment:                  "/dbaudio1/scene/scenecomment",
	roi.RemoteProtocolBridgeSoundObjectSelect:    "/RemoteProtocolBridge/SoundObjectSelect",
	roi.RemoteProtocolBridgeUIElementIndexSelect: "/RemoteProtocolBridge/UIElementIndexSelect",
}

var idByAddress map[string]roi.ID

func init() {
	idByAddress = make(map[string]roi.ID, len(addressByID))
	for id, addr := range addressByID {
		idByAddress[addr] = id
	}
}

// AddressFor returns the base OSC address pattern for id, without trailing
// channel/record segments, or "" if id has no OSC dialect mapping.
func AddressFor(id roi.ID) string {
	return addressByID[id]
}

// ResolveAddress matches address against the address table by prefix match
// on the base pattern, then parses any trailing numeric segments as
// record/channel according to the matched id's addressing shape (spec.md
// §4.2.2 "Decoding rule"): channel last, record second-to-last.
func ResolveAddress(address string) (id roi.ID, channel, record int, ok bool) {
	var bestAddr string
	var bestID roi.ID
	for addr, candidate := range idByAddress {
		if strings.HasPrefix(address, addr) && len(addr) > len(bestAddr) {
			bestAddr = addr
			bestID = candidate
		}
	}
	if bestAddr == "" {
		return roi.Invalid, 0, 0, false
	}

	channel, record = -1, -1
	rest := strings.TrimPrefix(address, bestAddr)
	rest = strings.Trim(rest, "/")
	var segments []string
	if rest != "" {
		segments = strings.Split(rest, "/")
	}

	needsChannel := roi.IsChannelAddressingObject(bestID)
	needsRecord := roi.IsRecordAddressingObject(bestID)

	// Channel is always the last numeric segment, record the one before it.
	if needsRecord && len(segments) >= 2 {
		if v, err := strconv.Atoi(segments[len(segments)-2]); err == nil {
			record = v
		}
	}
	if needsChannel && len(segments) >= 1 {
		if v, err := strconv.Atoi(segments[len(segments)-1]); err == nil {
			channel = v
		}
	} else if needsRecord && !needsChannel && len(segments) >= 1 {
		if v, err := strconv.Atoi(segments[len(segments)-1]); err == nil {
			record = v
		}
	}

	return bestID, channel, record, true
}
