// Package aura implements the AURA spatial-audio renderer's TCP ASCII
// line protocol (supplemented scope, SPEC_FULL.md §4.2.7), grounded on
// original_source/.../AURAProtocolProtocolProcessor.cpp. The original stubs
// its actual wire write (SendSourcePositionToAURA/SendListenerPositionToAURA
// are DBG-only); this package fills in a plain line-oriented TCP format for
// the same relative-to-absolute position forwarding it describes.
package aura

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/objectmodel"
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/processor"
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/roi"
)

// Area is the AURA room's physical extent in meters, used to convert
// relative (0..1) coordinate-mapping positions to absolute coordinates
// (AURAProtocolProtocolProcessor::RelativeToAbsolutePosition).
type Area struct {
	Width, Height float32
}

// ListenerPosition is the fixed listener/reference point within Area.
type ListenerPosition struct {
	X, Y, Z float32
}

// Processor forwards relative source positions to an AURA renderer as
// absolute coordinates over a TCP line protocol.
type Processor struct {
	processor.Base
	processor.NetworkBase

	log *slog.Logger

	mu       sync.Mutex
	area     Area
	listener ListenerPosition
	conn     net.Conn
	writer   *bufio.Writer
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// New constructs an AURA Processor.
func New(id objectmodel.ProtocolID, role processor.Role, log *slog.Logger) *Processor {
	p := &Processor{log: log}
	p.Base.Init(id, role, processor.TypeAURA)
	return p
}

// SetArea sets the room's physical extent.
func (p *Processor) SetArea(a Area) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.area = a
}

// SetListenerPosition sets the fixed listener/reference point.
func (p *Processor) SetListenerPosition(pos ListenerPosition) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listener = pos
}

func (p *Processor) SetState(cfg processor.Config) error {
	if err := p.NetworkBase.SetAddress(cfg.IPAddress, cfg.ClientPort, cfg.HostPort); err != nil {
		return fmt.Errorf("aura: %w", err)
	}
	p.Base.SetActiveObjects(cfg.ActiveObjects, cfg.UsesActiveObjects)
	p.Base.SetMutedObjects(cfg.MutedObjects)
	return nil
}

func (p *Processor) Start() error {
	peer := p.NetworkBase.AddrPort()
	if peer == "" {
		return fmt.Errorf("aura: no peer address configured")
	}
	conn, err := net.Dial("tcp", peer)
	if err != nil {
		return fmt.Errorf("aura: dial %s: %w", peer, err)
	}

	p.mu.Lock()
	p.conn = conn
	p.writer = bufio.NewWriter(conn)
	listener := p.listener
	p.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.wg.Add(1)
	go p.readLoop(ctx, conn)

	return p.sendListenerPosition(listener)
}

func (p *Processor) Stop() error {
	if p.cancel != nil {
		p.cancel()
	}
	p.mu.Lock()
	conn := p.conn
	p.conn = nil
	p.mu.Unlock()

	var err error
	if conn != nil {
		err = conn.Close()
	}
	p.wg.Wait()
	return err
}

// readLoop drains and discards any lines AURA sends back; the bridge's
// AURA integration is outbound-only (spec.md supplement: position
// forwarding, no feedback channel defined).
func (p *Processor) readLoop(ctx context.Context, conn net.Conn) {
	defer p.wg.Done()
	r := bufio.NewScanner(conn)
	for r.Scan() {
		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

func (p *Processor) sendListenerPosition(pos ListenerPosition) error {
	return p.writeLine(fmt.Sprintf("LISTENERPOS %f %f %f", pos.X, pos.Y, pos.Z))
}

func (p *Processor) writeLine(line string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.writer == nil {
		return fmt.Errorf("aura: not connected")
	}
	if _, err := p.writer.WriteString(line + "\n"); err != nil {
		return err
	}
	return p.writer.Flush()
}

// relativeToAbsolute converts a 0..1 relative position to the area's
// absolute meters (AURAProtocolProtocolProcessor::RelativeToAbsolutePosition).
func (p *Processor) relativeToAbsolute(x, y float32) (float32, float32) {
	p.mu.Lock()
	area := p.area
	p.mu.Unlock()
	return area.Width * x, area.Height * y
}

// SendRemoteObjectMessage forwards a coordinate-mapped source position to
// AURA as an absolute SOURCEPOS line. Only positioning ROIs carry meaning
// here; everything else is accepted and ignored (spec.md §4.2.7).
func (p *Processor) SendRemoteObjectMessage(ro objectmodel.RemoteObject, data objectmodel.MessageData, externalID int) error {
	if p.Base.IsMuted(ro) {
		return nil
	}

	sourceID := ro.Addr.First
	var x, y float32
	switch ro.ID {
	case roi.CoordinateMappingSourcePosition:
		vs, ok := data.Floats()
		if !ok || len(vs) < 2 {
			return nil
		}
		x, y = vs[0], vs[1]
	case roi.CoordinateMappingSourcePositionXY:
		vs, ok := data.Floats()
		if !ok || len(vs) < 2 {
			return nil
		}
		x, y = vs[0], vs[1]
	case roi.CoordinateMappingSourcePositionX:
		vs, ok := data.Floats()
		if !ok || len(vs) < 1 {
			return nil
		}
		x = vs[0]
	case roi.CoordinateMappingSourcePositionY:
		vs, ok := data.Floats()
		if !ok || len(vs) < 1 {
			return nil
		}
		y = vs[0]
	default:
		return nil
	}

	ax, ay := p.relativeToAbsolute(x, y)
	return p.writeLine(fmt.Sprintf("SOURCEPOS %d %f %f 0.0", sourceID, ax, ay))
}
