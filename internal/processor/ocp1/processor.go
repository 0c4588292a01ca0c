package ocp1

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"

	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/objectmodel"
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/processor"
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/roi"
)

// Processor implements processor.Processor over a TCP OCA/OCP.1 connection,
// in either client or server mode (spec.md §4.2.3).
type Processor struct {
	processor.Base

	log         *slog.Logger
	serverMode  bool
	ipAddress   string
	clientPort  int
	hostPort    int
	pollMs      int

	pending *pendingTables

	mu       sync.Mutex
	listener net.Listener
	conn     net.Conn
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// New constructs an OCP.1 Processor.
func New(id objectmodel.ProtocolID, role processor.Role, log *slog.Logger) *Processor {
	p := &Processor{log: log, pending: newPendingTables()}
	p.Base.Init(id, role, processor.TypeOCP1)
	return p
}

func (p *Processor) SetState(cfg processor.Config) error {
	p.mu.Lock()
	p.serverMode = cfg.Ocp1ServerMode
	p.ipAddress = cfg.IPAddress
	p.clientPort = cfg.ClientPort
	p.hostPort = cfg.HostPort
	p.pollMs = cfg.PollingIntervalMs
	p.mu.Unlock()

	p.Base.SetActiveObjects(cfg.ActiveObjects, cfg.UsesActiveObjects)
	p.Base.SetMutedObjects(cfg.MutedObjects)
	return nil
}

func (p *Processor) Start() error {
	p.mu.Lock()
	serverMode := p.serverMode
	hostPort := p.hostPort
	ipAddress := p.ipAddress
	clientPort := p.clientPort
	p.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	p.mu.Lock()
	p.cancel = cancel
	p.mu.Unlock()

	if serverMode {
		ln, err := net.Listen("tcp", fmt.Sprintf(":%d", hostPort))
		if err != nil {
			return fmt.Errorf("ocp1: listen :%d: %w", hostPort, err)
		}
		p.mu.Lock()
		p.listener = ln
		p.mu.Unlock()

		p.wg.Add(1)
		go p.acceptLoop(ctx, ln)
		return nil
	}

	conn, err := net.Dial("tcp", fmt.Sprintf("%s:%d", ipAddress, clientPort))
	if err != nil {
		return fmt.Errorf("ocp1: dial %s:%d: %w", ipAddress, clientPort, err)
	}
	p.onConnected(ctx, conn)
	return nil
}

func (p *Processor) acceptLoop(ctx context.Context, ln net.Listener) {
	defer p.wg.Done()
	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
			}
			if p.log != nil {
				p.log.Warn("ocp1 accept failed", "err", err)
			}
			continue
		}
		p.onConnected(ctx, conn)
	}
}

// onConnected runs the subscribe-then-query-initial-values handshake and
// starts the read loop (spec.md §4.2.3 "On connect: subscribe all active
// ROIs, then query their initial values").
func (p *Processor) onConnected(ctx context.Context, conn net.Conn) {
	p.mu.Lock()
	p.conn = conn
	p.mu.Unlock()

	for _, ro := range p.Base.ActiveObjects() {
		_ = p.subscribe(ro)
	}
	for _, ro := range p.Base.ActiveObjects() {
		_ = p.requestValue(ro)
	}

	p.mu.Lock()
	pollMs := p.pollMs
	p.mu.Unlock()
	if pollMs > 0 {
		p.Base.StartPolling(pollMs, func(ro objectmodel.RemoteObject) {
			p.sendKeepAlive()
		})
	}

	p.wg.Add(1)
	go p.readLoop(ctx, conn)
}

func (p *Processor) Stop() error {
	p.Base.StopPolling()

	p.mu.Lock()
	cancel := p.cancel
	conn := p.conn
	ln := p.listener
	p.cancel = nil
	p.conn = nil
	p.listener = nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	var err error
	if conn != nil {
		err = conn.Close()
	}
	if ln != nil {
		_ = ln.Close()
	}
	p.pending.clear()
	p.wg.Wait()
	return err
}

func (p *Processor) readLoop(ctx context.Context, conn net.Conn) {
	defer p.wg.Done()
	defer func() {
		p.mu.Lock()
		if p.conn == conn {
			p.conn = nil
		}
		p.mu.Unlock()
		p.pending.clear()
		_ = conn.Close()
	}()

	r := bufio.NewReader(conn)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		var lenBuf [4]byte
		if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
			return
		}
		n := binary.BigEndian.Uint32(lenBuf[:])
		body := make([]byte, n)
		if _, err := io.ReadFull(r, body); err != nil {
			return
		}
		f, err := unmarshalFrame(body)
		if err != nil {
			if p.log != nil {
				p.log.Warn("ocp1 malformed frame", "err", err)
			}
			continue
		}
		p.handleFrame(f)
	}
}

func (p *Processor) handleFrame(f frame) {
	switch f.Kind {
	case kindResponse:
		if p.pending.popSubscription(f.Handle) {
			return
		}
		if ono, ok := p.pending.popGetValue(f.Handle); ok {
			p.deliverValue(ono, f.Values, objectmodel.NoMeta)
			return
		}
		if entry, ok := p.pending.popSetValue(f.Handle); ok {
			meta := objectmodel.MetaInfo{Category: objectmodel.CategorySetAcknowledgement, ExternalID: entry.ExternalID}
			p.deliverValue(entry.ONo, f.Values, meta)
			return
		}
	case kindNotification:
		p.deliverValue(f.ONo, f.Values, objectmodel.NoMeta)
	}
}

// deliverValue resolves ono back to its ROI(s) and notifies listeners.
// A notification/response targeting the XYZ proxy object is additionally
// decomposed into X/Y/XY variants (spec.md §4.2.3 "post-processed to also
// emit the X/Y/XY variants to listeners").
func (p *Processor) deliverValue(ono ONo, values []float32, meta objectmodel.MetaInfo) {
	id, channel, record, ok := resolveONo(ono)
	if !ok {
		return
	}
	addr := objectmodel.NewAddressing(channel, record)

	if id == roi.PositioningSourcePosition && len(values) == 3 {
		p.notify(objectmodel.New(roi.PositioningSourcePosition, addr), objectmodel.NewFloat(addr, values...), meta)
		p.notify(objectmodel.New(roi.PositioningSourcePositionX, addr), objectmodel.NewFloat(addr, values[0]), meta)
		p.notify(objectmodel.New(roi.PositioningSourcePositionY, addr), objectmodel.NewFloat(addr, values[1]), meta)
		p.notify(objectmodel.New(roi.PositioningSourcePositionXY, addr), objectmodel.NewFloat(addr, values[0], values[1]), meta)
		return
	}
	p.notify(objectmodel.New(id, addr), objectmodel.NewFloat(addr, values...), meta)
}

func (p *Processor) notify(ro objectmodel.RemoteObject, data objectmodel.MessageData, meta objectmodel.MetaInfo) {
	if p.Base.IsMuted(ro) {
		return
	}
	p.Base.NotifyListeners(p, ro, data, meta)
}

func (p *Processor) writeFrame(f frame) error {
	p.mu.Lock()
	conn := p.conn
	p.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("ocp1: not connected")
	}
	_, err := conn.Write(marshalFrame(f))
	return err
}

func (p *Processor) subscribe(ro objectmodel.RemoteObject) error {
	ono, ok := onoFor(ro.ID, ro.Addr.First, ro.Addr.Second)
	if !ok {
		return nil
	}
	handle := p.pending.newHandle()
	p.pending.addSubscription(handle)
	return p.writeFrame(frame{Kind: kindCommand, Handle: handle, ONo: ono, Method: 2})
}

func (p *Processor) requestValue(ro objectmodel.RemoteObject) error {
	ono, ok := onoFor(ro.ID, ro.Addr.First, ro.Addr.Second)
	if !ok {
		return nil
	}
	handle := p.pending.newHandle()
	p.pending.addGetValue(handle, ono)
	return p.writeFrame(frame{Kind: kindCommand, Handle: handle, ONo: ono, Method: 0})
}

func (p *Processor) sendKeepAlive() {
	_ = p.writeFrame(frame{Kind: kindKeepAlive})
}

// SendRemoteObjectMessage issues a set-value command (or, for
// Scene_Recall/Next/Previous, the SceneAgent's dedicated method) and
// records the handle so the acknowledgement can be correlated back
// (spec.md §4.2.3).
func (p *Processor) SendRemoteObjectMessage(ro objectmodel.RemoteObject, data objectmodel.MessageData, externalID int) error {
	if p.Base.IsMuted(ro) {
		return nil
	}
	ono, ok := onoFor(ro.ID, ro.Addr.First, ro.Addr.Second)
	if !ok {
		return nil
	}

	method := uint8(1) // SetValueCommand
	if isSceneAgentMethod(ro.ID) {
		switch ro.ID {
		case roi.SceneRecall:
			method = 4
		case roi.SceneNext:
			method = 5
		case roi.ScenePrevious:
			method = 6
		}
	}

	values, _ := data.Floats()
	handle := p.pending.newHandle()
	p.pending.addSetValue(handle, ono, externalID)
	return p.writeFrame(frame{Kind: kindCommand, Handle: handle, ONo: ono, Method: method, Values: values})
}
