package osc

import (
	"log/slog"

	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/objectmodel"
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/processor"
)

// NewYamaha constructs a Yamaha-dialect OSC processor (spec.md §4.2.2
// "YamahaOSC"). It uses the DS100 address table, wire format and
// send/receive loop unchanged; there is no Yamaha-specific address table.
func NewYamaha(id objectmodel.ProtocolID, role processor.Role, log *slog.Logger) *Processor {
	return New(id, role, DialectYamaha, log)
}

// NewADM constructs an ADM-dialect OSC processor (spec.md §4.2.2 "ADMOSC").
func NewADM(id objectmodel.ProtocolID, role processor.Role, log *slog.Logger) *Processor {
	return New(id, role, DialectADM, log)
}

// NewRemap constructs a RemapOSC processor, whose outgoing address patterns
// come from configuration (spec.md §4.2.2 "RemapOSC"). A configured pattern
// is sent as the base address with channel/record segments appended as for
// DS100; %1/%2 placeholders are not substituted, the configured
// MinValue/MaxValue are not applied, and incoming messages are decoded with
// the DS100 table.
func NewRemap(id objectmodel.ProtocolID, role processor.Role, log *slog.Logger) *Processor {
	return New(id, role, DialectRemap, log)
}
