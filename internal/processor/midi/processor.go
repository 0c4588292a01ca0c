package midi

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/objectmodel"
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/processor"
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/roi"
)

// deafWindow is the output suppression period after a received event for
// the same (roi, addressing), preventing motor-fader feedback loops
// (spec.md §4.2.4 "An output deaf-window (≈300 ms) ... suppresses outgoing
// echoes").
const deafWindow = 300 * time.Millisecond

// Processor implements processor.Processor over a MIDI Port (spec.md
// §4.2.4).
type Processor struct {
	processor.Base

	log  *slog.Logger
	port Port

	mu          sync.Mutex
	assignments []processor.MIDIAssignment
	selectStates map[roi.ID]*selectState
	lastReceived map[objectmodel.RemoteObject]time.Time

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New constructs a MIDI Processor bound to port. Start begins reading from
// port; Stop closes it.
func New(id objectmodel.ProtocolID, role processor.Role, port Port, log *slog.Logger) *Processor {
	p := &Processor{
		port:         port,
		log:          log,
		selectStates: make(map[roi.ID]*selectState),
		lastReceived: make(map[objectmodel.RemoteObject]time.Time),
	}
	p.Base.Init(id, role, processor.TypeMIDI)
	return p
}

func (p *Processor) SetState(cfg processor.Config) error {
	p.mu.Lock()
	p.assignments = cfg.MIDIAssignments
	p.mu.Unlock()

	p.Base.SetActiveObjects(cfg.ActiveObjects, cfg.UsesActiveObjects)
	p.Base.SetMutedObjects(cfg.MutedObjects)
	return nil
}

func (p *Processor) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.wg.Add(1)
	go p.readLoop(ctx)
	return nil
}

func (p *Processor) Stop() error {
	if p.cancel != nil {
		p.cancel()
	}
	err := p.port.Close()
	p.wg.Wait()
	return err
}

func (p *Processor) readLoop(ctx context.Context) {
	defer p.wg.Done()
	buf := make([]byte, 3)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		n, err := p.port.Read(buf)
		if err != nil {
			return
		}
		if n == 0 {
			continue
		}
		e, ok := DecodeEvent(buf[:n])
		if !ok {
			continue
		}
		p.handleEvent(e)
	}
}

func (p *Processor) handleEvent(e Event) {
	p.mu.Lock()
	assignments := p.assignments
	p.mu.Unlock()

	r, ok := match(e, assignments)
	if !ok {
		return
	}
	a := r.Assignment

	if isSelectROI(a.ROI) {
		p.mu.Lock()
		state, ok := p.selectStates[a.ROI]
		if !ok {
			state = newSelectState()
			p.selectStates[a.ROI] = state
		}
		p.mu.Unlock()

		previous, next := state.apply(r.Channel)
		if previous != objectmodel.InvalidAddressValue {
			p.emit(a.ROI, objectmodel.NewAddressing(previous, objectmodel.InvalidAddressValue), objectmodel.NewInt(objectmodel.Invalid, 0))
		}
		if next != objectmodel.InvalidAddressValue && next != previous {
			p.emit(a.ROI, objectmodel.NewAddressing(next, objectmodel.InvalidAddressValue), objectmodel.NewInt(objectmodel.Invalid, 1))
		}
		return
	}

	addr := objectmodel.NewAddressing(r.Channel, objectmodel.InvalidAddressValue)
	var data objectmodel.MessageData
	if r.HasValue {
		data = objectmodel.NewFloat(addr, float32(r.Value))
	} else if len(a.SceneValues) > 0 {
		for _, sv := range a.SceneValues {
			if sv.Command == e.Value {
				data = objectmodel.NewString(addr, sv.Value)
				break
			}
		}
	} else {
		data = objectmodel.NewInt(addr, int32(e.Value))
	}
	p.emit(a.ROI, addr, data)
}

func (p *Processor) emit(id roi.ID, addr objectmodel.Addressing, data objectmodel.MessageData) {
	ro := objectmodel.New(id, addr)
	if p.Base.IsMuted(ro) {
		return
	}
	p.mu.Lock()
	p.lastReceived[ro] = time.Now()
	p.mu.Unlock()
	p.Base.NotifyListeners(p, ro, data, objectmodel.NoMeta)
}

// SendRemoteObjectMessage encodes ro/data as a MIDI event and writes it to
// the port, unless ro is within its deaf window (spec.md §4.2.4).
func (p *Processor) SendRemoteObjectMessage(ro objectmodel.RemoteObject, data objectmodel.MessageData, externalID int) error {
	if p.Base.IsMuted(ro) {
		return nil
	}

	p.mu.Lock()
	last, seen := p.lastReceived[ro]
	assignments := p.assignments
	p.mu.Unlock()
	if seen && time.Since(last) < deafWindow {
		return nil
	}

	a, ok := assignmentFor(ro.ID, assignments)
	if !ok {
		return nil
	}

	value := 0
	switch {
	case a.HasCommandRange && ro.Addr.First != objectmodel.InvalidAddressValue:
		value = a.CommandLow + (ro.Addr.First - 1)
	case a.HasValueRange:
		if v, ok := data.Floats(); ok && len(v) == 1 {
			targetMin, targetMax, rok := roi.ValueRange(ro.ID)
			if !rok {
				targetMin, targetMax = 0, 1
			}
			frac := (float64(v[0]) - targetMin) / maxFloat(targetMax-targetMin, 1e-9)
			value = int(a.ValueLow + frac*(a.ValueHigh-a.ValueLow))
		}
	default:
		if v, ok := data.Ints(); ok && len(v) == 1 {
			value = int(v[0])
		}
	}

	raw := EncodeEvent(Event{Command: a.Command, Channel: a.Channel, Value: value})
	_, err := p.port.Write(raw)
	return err
}

func assignmentFor(id roi.ID, assignments []processor.MIDIAssignment) (processor.MIDIAssignment, bool) {
	for _, a := range assignments {
		if a.ROI == id {
			return a, true
		}
	}
	return processor.MIDIAssignment{}, false
}
