package rttrpm

import (
	"context"
	"log/slog"
	"net"
	"sync"

	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/objectmodel"
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/processor"
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/roi"
)

// Processor implements processor.Processor as a receive-only RTTrPM UDP
// listener (spec.md §4.2.5): Blacktrax broadcasts tracking data but this
// bridge never writes back to it, so SendRemoteObjectMessage is a no-op.
type Processor struct {
	processor.Base
	processor.NetworkBase

	log *slog.Logger

	mu     sync.Mutex
	conn   *net.UDPConn
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New constructs an RTTrPM Processor.
func New(id objectmodel.ProtocolID, role processor.Role, log *slog.Logger) *Processor {
	p := &Processor{log: log}
	p.Base.Init(id, role, processor.TypeRTTrPM)
	return p
}

func (p *Processor) SetState(cfg processor.Config) error {
	if err := p.NetworkBase.SetAddress(cfg.IPAddress, cfg.ClientPort, cfg.HostPort); err != nil {
		return err
	}
	p.Base.SetActiveObjects(cfg.ActiveObjects, cfg.UsesActiveObjects)
	p.Base.SetMutedObjects(cfg.MutedObjects)
	return nil
}

func (p *Processor) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	conn, err := net.ListenUDP("udp", &net.UDPAddr{Port: p.NetworkBase.HostPort()})
	if err != nil {
		return err
	}
	p.conn = conn

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.wg.Add(1)
	go p.receiveLoop(ctx, conn)
	return nil
}

func (p *Processor) Stop() error {
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
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
			}
			continue
		}
		pkt, err := ParsePacket(buf[:n])
		if err != nil {
			if p.log != nil {
				p.log.Warn("rttrpm malformed packet", "err", err)
			}
			continue
		}
		p.dispatch(pkt)
	}
}

// dispatch converts a decoded packet into RemoteObject notifications.
// Positioning ROIs address by tracked-point index (the centroid, when no
// per-point index is present, is reported as channel 1).
func (p *Processor) dispatch(pkt Packet) {
	channel := 1
	if len(pkt.TrackedPointPositions) > 0 {
		channel = int(pkt.TrackedPointPositions[0].Index) + 1
	}
	addr := objectmodel.NewAddressing(channel, objectmodel.InvalidAddressValue)

	if pkt.CentroidPosition != nil {
		x, y := pkt.CentroidPosition.X, pkt.CentroidPosition.Y
		p.emit(roi.CoordinateMappingSourcePosition, addr, objectmodel.NewFloat(addr, float32(x), float32(y), float32(pkt.CentroidPosition.Z)))
		p.emit(roi.CoordinateMappingSourcePositionXY, addr, objectmodel.NewFloat(addr, float32(x), float32(y)))
	}
	for _, tp := range pkt.TrackedPointPositions {
		pointAddr := objectmodel.NewAddressing(int(tp.Index)+1, objectmodel.InvalidAddressValue)
		p.emit(roi.CoordinateMappingSourcePosition, pointAddr, objectmodel.NewFloat(pointAddr, float32(tp.X), float32(tp.Y), float32(tp.Z)))
	}
}

func (p *Processor) emit(id roi.ID, addr objectmodel.Addressing, data objectmodel.MessageData) {
	ro := objectmodel.New(id, addr)
	if p.Base.IsMuted(ro) {
		return
	}
	p.Base.NotifyListeners(p, ro, data, objectmodel.NoMeta)
}

// SendRemoteObjectMessage is a no-op: RTTrPM is receive-only.
func (p *Processor) SendRemoteObjectMessage(objectmodel.RemoteObject, objectmodel.MessageData, int) error {
	return nil
}
