package osc

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/netip"
	"strings"
	"sync"

	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/objectmodel"
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/processor"
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/roi"
)

// Dialect selects which address-pattern table and value conventions a
// Processor speaks. RemapOSC additionally consults per-instance Remappings
// (spec.md §4.2.2 "RemapOSC").
type Dialect int

const (
	DialectDS100 Dialect = iota
	DialectYamaha
	DialectADM
	DialectRemap
)

func dialectType(d Dialect) processor.Type {
	switch d {
	case DialectYamaha:
		return processor.TypeYamahaOSC
	case DialectADM:
		return processor.TypeADMOSC
	case DialectRemap:
		return processor.TypeRemapOSC
	default:
		return processor.TypeOSC
	}
}

// Processor implements processor.Processor over plain OSC-over-UDP for the
// d&b DS100 dialect and its Yamaha/ADM/Remap derivatives (spec.md §4.2.2),
// grounded on OSCProtocolProcessor.cpp's send/receive loop and address
// table.
type Processor struct {
	processor.Base
	processor.NetworkBase

	dialect Dialect
	log     *slog.Logger

	mu          sync.Mutex
	conn        *net.UDPConn
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	remappings  []processor.RemapEntry
	sendingOff  bool
	mappingArea int
}

// New constructs an OSC Processor for the given dialect.
func New(id objectmodel.ProtocolID, role processor.Role, dialect Dialect, log *slog.Logger) *Processor {
	p := &Processor{dialect: dialect, log: log}
	p.Base.Init(id, role, dialectType(dialect))
	return p
}

// SetState applies configuration (spec.md §4.2 "setState(configTree)").
func (p *Processor) SetState(cfg processor.Config) error {
	if err := p.NetworkBase.SetAddress(cfg.IPAddress, cfg.ClientPort, cfg.HostPort); err != nil {
		return fmt.Errorf("osc: %w", err)
	}
	p.Base.SetActiveObjects(cfg.ActiveObjects, cfg.UsesActiveObjects)
	p.Base.SetMutedObjects(cfg.MutedObjects)

	p.mu.Lock()
	p.remappings = cfg.Remappings
	p.sendingOff = cfg.DataSendingDisabled
	p.mappingArea = cfg.MappingAreaID
	p.mu.Unlock()

	if cfg.PollingIntervalMs > 0 {
		p.Base.StopPolling()
		p.Base.StartPolling(cfg.PollingIntervalMs, func(ro objectmodel.RemoteObject) {
			_ = p.SendRemoteObjectMessage(ro, objectmodel.Empty(ro.Addr), -1)
		})
	}
	return nil
}

// Start opens the UDP socket and begins the receive loop.
func (p *Processor) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	addr := &net.UDPAddr{Port: p.NetworkBase.HostPort()}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return fmt.Errorf("osc: listen udp :%d: %w", addr.Port, err)
	}
	p.conn = conn

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.wg.Add(1)
	go p.receiveLoop(ctx, conn)

	if p.log != nil {
		p.log.Info("osc processor started", "id", p.ID(), "role", p.Role(), "port", addr.Port)
	}
	return nil
}

// Stop closes the socket and stops background work.
func (p *Processor) Stop() error {
	p.Base.StopPolling()

	p.mu.Lock()
	cancel := p.cancel
	conn := p.conn
	p.cancel = nil
	p.conn = nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	var err error
	if conn != nil {
		err = conn.Close()
	}
	p.wg.Wait()
	return err
}

func (p *Processor) receiveLoop(ctx context.Context, conn *net.UDPConn) {
	defer p.wg.Done()
	buf := make([]byte, 65507)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		n, from, err := conn.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
			}
			if p.log != nil {
				p.log.Warn("osc read failed", "err", err)
			}
			continue
		}

		senderIP, ok := netip.AddrFromSlice(from.IP)
		if !ok || !p.NetworkBase.Accept(senderIP.Unmap()) {
			continue
		}

		m, err := unmarshal(buf[:n])
		if err != nil {
			if p.log != nil {
				p.log.Warn("osc malformed packet", "err", err)
			}
			continue
		}
		p.handleMessage(m)
	}
}

func (p *Processor) handleMessage(m message) {
	var id roi.ID
	var channel, record int
	var ok bool
	if p.dialect == DialectADM {
		id, channel, ok = admResolveAddress(m.Address)
		record = objectmodel.InvalidAddressValue
	} else {
		id, channel, record, ok = ResolveAddress(m.Address)
	}
	if !ok || !roi.IsBridgeable(id) {
		return
	}
	addr := objectmodel.NewAddressing(channel, record)
	ro := objectmodel.New(id, addr)
	if p.Base.IsMuted(ro) {
		return
	}

	var data objectmodel.MessageData
	switch {
	case len(m.Floats) > 0:
		data = objectmodel.NewFloat(addr, m.Floats...)
	case len(m.Ints) > 0:
		data = objectmodel.NewInt(addr, m.Ints...)
	case len(m.Strings) > 0:
		data = objectmodel.NewString(addr, m.Strings[0])
	default:
		data = objectmodel.Empty(addr)
	}

	p.Base.NotifyListeners(p, ro, data, objectmodel.NoMeta)
}

// SendRemoteObjectMessage encodes ro/data as an OSC message and sends it to
// the configured (or auto-detected) peer. externalID is accepted for
// interface symmetry with other processors but OSC carries no loop-guard
// field on the wire.
func (p *Processor) SendRemoteObjectMessage(ro objectmodel.RemoteObject, data objectmodel.MessageData, externalID int) error {
	p.mu.Lock()
	sendingOff := p.sendingOff
	conn := p.conn
	p.mu.Unlock()

	if sendingOff || conn == nil {
		return nil
	}
	if p.Base.IsMuted(ro) {
		return nil
	}

	addr := p.addressFor(ro)
	if addr == "" {
		return nil
	}
	addr = p.appendSegments(addr, ro)

	m := message{Address: addr}
	switch data.ValType {
	case objectmodel.ValueFloat:
		if v, ok := data.Floats(); ok {
			m.Floats = v
			for range v {
				m.Tags += "f"
			}
		}
	case objectmodel.ValueInt:
		if v, ok := data.Ints(); ok {
			m.Ints = v
			for range v {
				m.Tags += "i"
			}
		}
	case objectmodel.ValueString:
		if v, ok := data.String(); ok {
			m.Strings = []string{v}
			m.Tags = "s"
		}
	}

	peer := p.NetworkBase.AddrPort()
	if peer == "" {
		return nil
	}
	udpAddr, err := net.ResolveUDPAddr("udp", peer)
	if err != nil {
		return fmt.Errorf("osc: resolve peer %q: %w", peer, err)
	}
	_, err = conn.WriteToUDP(marshal(m), udpAddr)
	return err
}

// addressFor resolves the OSC address pattern for ro.ID, consulting the
// per-instance RemapOSC overrides first.
func (p *Processor) addressFor(ro objectmodel.RemoteObject) string {
	switch p.dialect {
	case DialectRemap:
		p.mu.Lock()
		remaps := p.remappings
		p.mu.Unlock()
		for _, r := range remaps {
			if r.ROI == ro.ID {
				return r.Pattern
			}
		}
		return ""
	case DialectADM:
		return admAddressFor(ro.ID)
	default:
		return AddressFor(ro.ID)
	}
}

func (p *Processor) appendSegments(base string, ro objectmodel.RemoteObject) string {
	if p.dialect == DialectADM {
		if ro.Addr.First != objectmodel.InvalidAddressValue {
			return fmt.Sprintf("/adm/obj/%d/%s", ro.Addr.First, strings.TrimPrefix(base, "/adm/obj/1/"))
		}
		return base
	}
	if roi.IsRecordAddressingObject(ro.ID) && ro.Addr.Second != objectmodel.InvalidAddressValue {
		base = fmt.Sprintf("%s/%d", base, ro.Addr.Second)
	}
	if roi.IsChannelAddressingObject(ro.ID) && ro.Addr.First != objectmodel.InvalidAddressValue {
		base = fmt.Sprintf("%s/%d", base, ro.Addr.First)
	}
	return base
}
