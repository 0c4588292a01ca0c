package midi

import "io"

// Port abstracts a physical or virtual MIDI input/output device. No MIDI
// transport library appears anywhere in the example corpus, so Port is this
// processor's own seam: the wire-level event codec (event.go) and matching
// logic (assignment.go) are independent of how bytes actually reach a
// device, and a test or a future OS-specific backend can satisfy Port with
// whatever is available (ALSA rawmidi, CoreMIDI, a loopback pipe).
type Port interface {
	io.ReadWriteCloser
}
