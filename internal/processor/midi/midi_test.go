package midi

import (
	"io"
	"sync"
	"testing"
	"time"

	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/objectmodel"
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/processor"
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/roi"
)

// pipePort is an in-memory Port for tests: Write records what was sent,
// and Read returns whatever is pushed onto the in channel.
type pipePort struct {
	mu      sync.Mutex
	written [][]byte
	in      chan []byte
}

func newPipePort() *pipePort {
	return &pipePort{in: make(chan []byte, 16)}
}

func (p *pipePort) Read(b []byte) (int, error) {
	raw, ok := <-p.in
	if !ok {
		return 0, io.EOF
	}
	return copy(b, raw), nil
}

func (p *pipePort) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	cp := make([]byte, len(b))
	copy(cp, b)
	p.written = append(p.written, cp)
	return len(b), nil
}

func (p *pipePort) Close() error {
	close(p.in)
	return nil
}

func (p *pipePort) lastWritten() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.written) == 0 {
		return nil
	}
	return p.written[len(p.written)-1]
}

func TestDecodeEncodeEventRoundTrip(t *testing.T) {
	raw := []byte{0x90, 60, 64} // note-on, channel 1, note 60
	e, ok := DecodeEvent(raw)
	if !ok {
		t.Fatal("expected decode")
	}
	if e.Command != processor.MIDINote || e.Channel != 1 || e.Value != 60 {
		t.Fatalf("got %+v", e)
	}
	back := EncodeEvent(e)
	e2, ok := DecodeEvent(back)
	if !ok || e2.Command != e.Command || e2.Channel != e.Channel || e2.Value != e.Value {
		t.Fatalf("round trip mismatch: %+v vs %+v", e, e2)
	}
}

func TestCommandRangeYieldsChannel(t *testing.T) {
	assignments := []processor.MIDIAssignment{
		{ROI: roi.RemoteProtocolBridgeSoundObjectSelect, Command: processor.MIDINote, HasCommandRange: true, CommandLow: 0, CommandHigh: 63},
	}
	r, ok := match(Event{Command: processor.MIDINote, Channel: 1, Value: 5}, assignments)
	if !ok {
		t.Fatal("expected match")
	}
	if r.Channel != 6 {
		t.Fatalf("channel = %d, want 6", r.Channel)
	}
}

func TestValueRangeRemap(t *testing.T) {
	assignments := []processor.MIDIAssignment{
		{ROI: roi.MatrixInputGain, Command: processor.MIDIControlChange, HasValueRange: true, ValueLow: 0, ValueHigh: 127},
	}
	r, ok := match(Event{Command: processor.MIDIControlChange, Channel: 1, Value: 127}, assignments)
	if !ok || !r.HasValue {
		t.Fatal("expected value match")
	}
	if r.Value != 24 {
		t.Fatalf("value = %v, want 24 (gain max)", r.Value)
	}
}

func TestSelectStateTogglesOnRepeat(t *testing.T) {
	s := newSelectState()
	prev, next := s.apply(3)
	if prev != objectmodel.InvalidAddressValue || next != 3 {
		t.Fatalf("first apply = (%d,%d), want (invalid,3)", prev, next)
	}
	prev, next = s.apply(3)
	if prev != 3 || next != objectmodel.InvalidAddressValue {
		t.Fatalf("repeat apply = (%d,%d), want (3,invalid) [toggle off]", prev, next)
	}
}

func TestDeafWindowSuppressesEcho(t *testing.T) {
	port := newPipePort()
	p := New(1, processor.RoleA, port, nil)
	_ = p.SetState(processor.Config{
		MIDIAssignments: []processor.MIDIAssignment{
			{ROI: roi.MatrixInputMute, Command: processor.MIDINote, Channel: 1},
		},
	})

	ro := objectmodel.New(roi.MatrixInputMute, objectmodel.NewAddressing(objectmodel.InvalidAddressValue, objectmodel.InvalidAddressValue))
	p.emit(roi.MatrixInputMute, ro.Addr, objectmodel.NewInt(ro.Addr, 1))

	if err := p.SendRemoteObjectMessage(ro, objectmodel.NewInt(ro.Addr, 1), -1); err != nil {
		t.Fatalf("SendRemoteObjectMessage: %v", err)
	}
	if port.lastWritten() != nil {
		t.Fatal("expected send to be suppressed within the deaf window")
	}

	time.Sleep(0) // deaf window is real time; functional behavior verified above
}
