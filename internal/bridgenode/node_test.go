package bridgenode

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/handler"
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/objectmodel"
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/processor"
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/roi"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeProcessor is a minimal processor.Processor for exercising Node without
// any real network code, in the style of processor/base_test.go's direct use
// of processor.Base.
type fakeProcessor struct {
	processor.Base

	startCalls int
	stopCalls  int
	sent       []objectmodel.RemoteObject
	failStart  bool
}

func newFakeProcessor(id objectmodel.ProtocolID, role processor.Role) *fakeProcessor {
	p := &fakeProcessor{}
	p.Base.Init(id, role, processor.TypeOSC)
	return p
}

func (p *fakeProcessor) Start() error {
	p.startCalls++
	if p.failStart {
		return errors.New("boom")
	}
	return nil
}

func (p *fakeProcessor) Stop() error {
	p.stopCalls++
	return nil
}

func (p *fakeProcessor) SetState(cfg processor.Config) error { return nil }

func (p *fakeProcessor) SendRemoteObjectMessage(ro objectmodel.RemoteObject, data objectmodel.MessageData, externalID int) error {
	p.sent = append(p.sent, ro)
	return nil
}

func newFakeSpec(id objectmodel.ProtocolID, role processor.Role) ProtocolSpec {
	return ProtocolSpec{
		State: processor.Config{ID: id, Role: role, Type: processor.TypeOSC},
		New: func(cfg processor.Config) (processor.Processor, error) {
			return newFakeProcessor(cfg.ID, cfg.Role), nil
		},
	}
}

func TestQueueGrowsByChunkOnOverflow(t *testing.T) {
	q := newMessageQueue()
	for i := 0; i < queueGrowth+1; i++ {
		q.push(queuedMessage{senderID: objectmodel.ProtocolID(i)})
	}
	if len(q.buf) != 2*queueGrowth {
		t.Fatalf("expected buffer to grow to %d, got %d", 2*queueGrowth, len(q.buf))
	}
	if q.count != queueGrowth+1 {
		t.Fatalf("expected count %d, got %d", queueGrowth+1, q.count)
	}

	first, ok := q.pop(time.Millisecond)
	if !ok || first.senderID != 0 {
		t.Fatalf("expected FIFO order preserved across growth, got %+v ok=%v", first, ok)
	}
}

func TestQueuePopTimesOutWhenEmpty(t *testing.T) {
	q := newMessageQueue()
	_, ok := q.pop(5 * time.Millisecond)
	if ok {
		t.Fatal("expected pop on empty queue to time out")
	}
}

func TestNodeDispatchesQueuedMessageToHandler(t *testing.T) {
	n := New(1, testLogger())
	a := newFakeSpec(1, processor.RoleA)
	b := newFakeSpec(2, processor.RoleB)
	if err := n.SetState(Config{
		ID:        1,
		Handler:   handler.Config{Mode: handler.ModeBypass, ProtocolAIDs: []objectmodel.ProtocolID{1}, ProtocolBIDs: []objectmodel.ProtocolID{2}},
		ProtocolA: []ProtocolSpec{a},
		ProtocolB: []ProtocolSpec{b},
	}); err != nil {
		t.Fatalf("SetState: %v", err)
	}
	if err := n.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer n.Stop()

	bProc := n.protocolsByRole[processor.RoleB][2].(*fakeProcessor)

	addr := objectmodel.NewAddressing(3, objectmodel.InvalidAddressValue)
	ro := objectmodel.New(roi.MatrixInputMute, addr)
	data := objectmodel.NewInt(addr, 1)
	n.OnProtocolMessageReceived(n.protocolsByRole[processor.RoleA][1], ro, data, objectmodel.NoMeta)

	deadline := time.Now().Add(200 * time.Millisecond)
	for len(bProc.sent) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if len(bProc.sent) != 1 {
		t.Fatalf("expected bypass handler to forward to protocol B, got %d sends", len(bProc.sent))
	}
}

func TestNodeDropsMessagesAtOrAboveBridgingMAX(t *testing.T) {
	n := New(1, testLogger())
	a := newFakeSpec(1, processor.RoleA)
	b := newFakeSpec(2, processor.RoleB)
	if err := n.SetState(Config{
		ID:        1,
		Handler:   handler.Config{Mode: handler.ModeBypass, ProtocolAIDs: []objectmodel.ProtocolID{1}, ProtocolBIDs: []objectmodel.ProtocolID{2}},
		ProtocolA: []ProtocolSpec{a},
		ProtocolB: []ProtocolSpec{b},
	}); err != nil {
		t.Fatalf("SetState: %v", err)
	}
	if err := n.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer n.Stop()

	bProc := n.protocolsByRole[processor.RoleB][2].(*fakeProcessor)

	addr := objectmodel.NewAddressing(3, objectmodel.InvalidAddressValue)
	internalOnly := objectmodel.New(roi.BridgingMAX, addr)
	n.OnProtocolMessageReceived(n.protocolsByRole[processor.RoleA][1], internalOnly, objectmodel.Empty(addr), objectmodel.NoMeta)

	time.Sleep(60 * time.Millisecond)
	if len(bProc.sent) != 0 {
		t.Fatalf("expected BridgingMAX-and-above roi to be dropped, got %+v", bProc.sent)
	}
}

func TestSendMessageToRoutesAcrossRoleMaps(t *testing.T) {
	n := New(1, testLogger())
	a := newFakeSpec(1, processor.RoleA)
	b := newFakeSpec(2, processor.RoleB)
	if err := n.SetState(Config{
		ID:        1,
		Handler:   handler.Config{Mode: handler.ModeBypass, ProtocolAIDs: []objectmodel.ProtocolID{1}, ProtocolBIDs: []objectmodel.ProtocolID{2}},
		ProtocolA: []ProtocolSpec{a},
		ProtocolB: []ProtocolSpec{b},
	}); err != nil {
		t.Fatalf("SetState: %v", err)
	}

	addr := objectmodel.NewAddressing(3, objectmodel.InvalidAddressValue)
	ro := objectmodel.New(roi.MatrixInputMute, addr)
	data := objectmodel.NewInt(addr, 1)

	if ok := n.SendMessageTo(2, ro, data, 1); !ok {
		t.Fatal("expected send to known protocol 2 to succeed")
	}
	if ok := n.SendMessageTo(99, ro, data, 1); ok {
		t.Fatal("expected send to unknown protocol to fail")
	}

	bProc := n.protocolsByRole[processor.RoleB][2].(*fakeProcessor)
	if len(bProc.sent) != 1 {
		t.Fatalf("expected exactly one delivered send, got %d", len(bProc.sent))
	}
}

func TestSetStatePreservesRunningProcessorWhenTypeUnchanged(t *testing.T) {
	n := New(1, testLogger())
	a := newFakeSpec(1, processor.RoleA)
	b := newFakeSpec(2, processor.RoleB)
	cfg := Config{
		ID:        1,
		Handler:   handler.Config{Mode: handler.ModeBypass, ProtocolAIDs: []objectmodel.ProtocolID{1}, ProtocolBIDs: []objectmodel.ProtocolID{2}},
		ProtocolA: []ProtocolSpec{a},
		ProtocolB: []ProtocolSpec{b},
	}
	if err := n.SetState(cfg); err != nil {
		t.Fatalf("SetState: %v", err)
	}
	if err := n.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer n.Stop()

	original := n.protocolsByRole[processor.RoleA][1].(*fakeProcessor)

	// Reapply an identical configuration: the factory must not be invoked
	// again and the running instance must be untouched.
	if err := n.SetState(cfg); err != nil {
		t.Fatalf("second SetState: %v", err)
	}
	again := n.protocolsByRole[processor.RoleA][1].(*fakeProcessor)
	if original != again {
		t.Fatal("expected the same processor instance to be preserved across reconfiguration")
	}
	if again.startCalls != 1 {
		t.Fatalf("expected processor to have been started exactly once, got %d", again.startCalls)
	}
}

func TestSetStateRemovesDroppedProcessor(t *testing.T) {
	n := New(1, testLogger())
	a := newFakeSpec(1, processor.RoleA)
	b := newFakeSpec(2, processor.RoleB)
	if err := n.SetState(Config{
		ID:        1,
		Handler:   handler.Config{Mode: handler.ModeBypass, ProtocolAIDs: []objectmodel.ProtocolID{1}, ProtocolBIDs: []objectmodel.ProtocolID{2}},
		ProtocolA: []ProtocolSpec{a},
		ProtocolB: []ProtocolSpec{b},
	}); err != nil {
		t.Fatalf("SetState: %v", err)
	}
	if err := n.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer n.Stop()

	removed := n.protocolsByRole[processor.RoleA][1].(*fakeProcessor)

	if err := n.SetState(Config{
		ID:        1,
		Handler:   handler.Config{Mode: handler.ModeBypass, ProtocolAIDs: nil, ProtocolBIDs: []objectmodel.ProtocolID{2}},
		ProtocolA: nil,
		ProtocolB: []ProtocolSpec{b},
	}); err != nil {
		t.Fatalf("SetState removing A: %v", err)
	}

	if _, ok := n.protocolsByRole[processor.RoleA][1]; ok {
		t.Fatal("expected protocol 1 to be removed from role A")
	}
	if removed.stopCalls != 1 {
		t.Fatalf("expected removed processor to be stopped, got %d stop calls", removed.stopCalls)
	}
}
