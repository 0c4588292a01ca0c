// Package bridgenode implements the Node (spec.md §4.4): the owner of one
// bridged pair of protocol-processor sets, one Object-Data-Handler, and the
// single worker loop that serializes traffic between them.
package bridgenode

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/handler"
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/objectmodel"
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/processor"
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/roi"
)

// dequeueTimeout is the worker's blocking-wait ceiling (spec.md §4.4 "block
// up to 25 ms waiting for a message").
const dequeueTimeout = 25 * time.Millisecond

// LogListener receives a copy of every message a Node dispatches to its
// handler, for an Engine to fan out to a configured log target (spec.md
// §4.4 "asynchronously post a callback message to registered node-listeners
// for logging").
type LogListener interface {
	OnNodeMessage(nodeID objectmodel.NodeID, senderID objectmodel.ProtocolID, senderType processor.Type, ro objectmodel.RemoteObject, data objectmodel.MessageData, meta objectmodel.MetaInfo)
}

// LogListenerFunc adapts a plain function to LogListener.
type LogListenerFunc func(nodeID objectmodel.NodeID, senderID objectmodel.ProtocolID, senderType processor.Type, ro objectmodel.RemoteObject, data objectmodel.MessageData, meta objectmodel.MetaInfo)

func (f LogListenerFunc) OnNodeMessage(nodeID objectmodel.NodeID, senderID objectmodel.ProtocolID, senderType processor.Type, ro objectmodel.RemoteObject, data objectmodel.MessageData, meta objectmodel.MetaInfo) {
	f(nodeID, senderID, senderType, ro, data, meta)
}

// Node owns two role-keyed sets of protocol processors, one
// Object-Data-Handler, and the worker goroutine that serializes all traffic
// between them (spec.md §4.4, §5 "Within a single Node, messages ... are
// totally ordered by enqueue time and processed sequentially").
type Node struct {
	id     objectmodel.NodeID
	logger *slog.Logger

	mu              sync.Mutex
	protocolsByRole map[processor.Role]map[objectmodel.ProtocolID]processor.Processor
	h               *handler.Handler
	running         bool

	listenersMu sync.Mutex
	listeners   []LogListener

	queue *messageQueue
	stop  chan struct{}
	wg    sync.WaitGroup

	messagesBridged atomic.Uint64
}

// New creates an unconfigured Node. Call SetState before Start.
func New(id objectmodel.NodeID, logger *slog.Logger) *Node {
	return &Node{
		id:     id,
		logger: logger.With("subsystem", "bridge_node", "node_id", id),
		protocolsByRole: map[processor.Role]map[objectmodel.ProtocolID]processor.Processor{
			processor.RoleA: make(map[objectmodel.ProtocolID]processor.Processor),
			processor.RoleB: make(map[objectmodel.ProtocolID]processor.Processor),
		},
		queue: newMessageQueue(),
	}
}

// ID returns the node's configured id.
func (n *Node) ID() objectmodel.NodeID { return n.id }

// AddLogListener registers l to receive a copy of every dispatched message.
func (n *Node) AddLogListener(l LogListener) {
	n.listenersMu.Lock()
	defer n.listenersMu.Unlock()
	n.listeners = append(n.listeners, l)
}

func (n *Node) notifyListeners(m queuedMessage) {
	n.listenersMu.Lock()
	listeners := make([]LogListener, len(n.listeners))
	copy(listeners, n.listeners)
	n.listenersMu.Unlock()

	for _, l := range listeners {
		l.OnNodeMessage(n.id, m.senderID, m.senderType, m.ro, m.data, m.meta)
	}
}

// OnProtocolMessageReceived implements processor.Listener. Every owned
// processor registers the Node as its listener; decoded messages are
// enqueued rather than handled inline, so the worker goroutine remains the
// sole consumer (spec.md §4.4 "a single inter-protocol message queue").
func (n *Node) OnProtocolMessageReceived(p processor.Processor, ro objectmodel.RemoteObject, data objectmodel.MessageData, meta objectmodel.MetaInfo) {
	n.messagesBridged.Add(1)
	n.queue.push(queuedMessage{
		senderID:   p.ID(),
		senderType: p.Type(),
		ro:         ro,
		data:       data,
		meta:       meta,
	})
}

// MessagesBridged reports the total number of messages this Node has
// accepted from its processors since construction, for telemetry.
func (n *Node) MessagesBridged() uint64 { return n.messagesBridged.Load() }

// ProtocolStates reports the live online-state of every configured
// processor, keyed by id, as tracked by the Node's handler. Empty if the
// Node has no handler configured yet.
func (n *Node) ProtocolStates() map[objectmodel.ProtocolID]handler.OnlineState {
	n.mu.Lock()
	h := n.h
	n.mu.Unlock()
	if h == nil {
		return nil
	}
	return h.Snapshot()
}

// CacheSizes reports the handler's live per-direction cache sizes, for
// telemetry on memory growth. All zero if the Node has no handler configured.
func (n *Node) CacheSizes() (remap, a, b int) {
	n.mu.Lock()
	h := n.h
	n.mu.Unlock()
	if h == nil {
		return 0, 0, 0
	}
	return h.CacheSizes()
}

// ProtocolTypes reports the processor.Type of every configured processor,
// keyed by id, across both roles.
func (n *Node) ProtocolTypes() map[objectmodel.ProtocolID]processor.Type {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make(map[objectmodel.ProtocolID]processor.Type)
	for _, role := range [...]processor.Role{processor.RoleA, processor.RoleB} {
		for id, p := range n.protocolsByRole[role] {
			out[id] = p.Type()
		}
	}
	return out
}

// SendMessageTo implements handler.Sender by dispatching to whichever role
// map owns id (spec.md §4.4 "sendMessageTo(protocolId, roi, data) dispatches
// to the processor owned by this node in either role map. Returns false if
// unknown.").
func (n *Node) SendMessageTo(id objectmodel.ProtocolID, ro objectmodel.RemoteObject, data objectmodel.MessageData, externalID int) bool {
	n.mu.Lock()
	p, ok := n.protocolsByRole[processor.RoleA][id]
	if !ok {
		p, ok = n.protocolsByRole[processor.RoleB][id]
	}
	n.mu.Unlock()
	if !ok {
		return false
	}
	return p.SendRemoteObjectMessage(ro, data, externalID) == nil
}

// SetState reconfigures the Node (spec.md §4.4 "Configuration updates
// preserve already-running processors if type is unchanged; add/remove
// deltas are applied; the handler is replaced if its mode changes. The
// running state is preserved across reconfiguration.").
func (n *Node) SetState(cfg Config) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if err := n.reconcileRoleLocked(processor.RoleA, cfg.ProtocolA); err != nil {
		return err
	}
	if err := n.reconcileRoleLocked(processor.RoleB, cfg.ProtocolB); err != nil {
		return err
	}

	if n.h == nil || n.h.Mode() != cfg.Handler.Mode {
		if n.h != nil && n.running {
			n.h.Stop()
		}
		n.h = handler.New(cfg.Handler)
		if n.running {
			n.h.Start()
		}
	}
	return nil
}

// reconcileRoleLocked applies the add/remove/preserve deltas for one role's
// processor set against its newly desired spec list. Must be called with
// n.mu held.
func (n *Node) reconcileRoleLocked(role processor.Role, specs []ProtocolSpec) error {
	desired := make(map[objectmodel.ProtocolID]ProtocolSpec, len(specs))
	for _, s := range specs {
		desired[s.State.ID] = s
	}
	existing := n.protocolsByRole[role]

	for id, p := range existing {
		if _, wanted := desired[id]; wanted {
			continue
		}
		if n.running {
			p.Stop()
		}
		p.RemoveListener(n)
		delete(existing, id)
	}

	for id, spec := range desired {
		if p, ok := existing[id]; ok {
			if p.Type() == spec.State.Type {
				if err := p.SetState(spec.State); err != nil {
					return fmt.Errorf("reconfiguring protocol %d: %w", id, err)
				}
				continue
			}
			if n.running {
				p.Stop()
			}
			p.RemoveListener(n)
			delete(existing, id)
		}

		p, err := spec.New(spec.State)
		if err != nil {
			return fmt.Errorf("constructing protocol %d: %w", id, err)
		}
		if err := p.SetState(spec.State); err != nil {
			return fmt.Errorf("initializing protocol %d: %w", id, err)
		}
		p.AddListener(n)
		if n.running {
			if err := p.Start(); err != nil {
				return fmt.Errorf("starting protocol %d: %w", id, err)
			}
		}
		existing[id] = p
	}
	return nil
}

// Start starts every owned processor, the handler's reaction-timeout timer,
// and the worker goroutine. Idempotent.
func (n *Node) Start() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.running {
		return nil
	}

	for _, role := range [...]processor.Role{processor.RoleA, processor.RoleB} {
		for _, p := range n.protocolsByRole[role] {
			if err := p.Start(); err != nil {
				return fmt.Errorf("starting protocol %d: %w", p.ID(), err)
			}
		}
	}
	if n.h != nil {
		n.h.Start()
	}

	n.stop = make(chan struct{})
	n.wg.Add(1)
	go n.run()
	n.running = true

	n.logger.Info("node started")
	return nil
}

// Stop halts the worker goroutine, the handler, and every owned processor,
// returning once the worker has exited (spec.md §5 "stop() on any component
// must return within a bounded time (≤100 ms for thread joins)").
func (n *Node) Stop() error {
	n.mu.Lock()
	if !n.running {
		n.mu.Unlock()
		return nil
	}
	stop := n.stop
	h := n.h
	n.running = false
	n.mu.Unlock()

	close(stop)
	n.wg.Wait()

	if h != nil {
		h.Stop()
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	var firstErr error
	for _, role := range [...]processor.Role{processor.RoleA, processor.RoleB} {
		for _, p := range n.protocolsByRole[role] {
			if err := p.Stop(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	n.logger.Info("node stopped")
	return firstErr
}

// run is the worker loop (spec.md §4.4 "Worker loop: block up to 25 ms
// waiting for a message; on dequeue, (a) asynchronously post a callback
// message to registered node-listeners for logging, (b) synchronously
// invoke handler.onReceivedMessageFromProtocol. If roi ≥ BridgingMAX and is
// not the internal GetAllKnownValues, drop.").
func (n *Node) run() {
	defer n.wg.Done()
	for {
		select {
		case <-n.stop:
			return
		default:
		}

		m, ok := n.queue.pop(dequeueTimeout)
		if !ok {
			continue
		}

		if m.ro.ID >= roi.BridgingMAX && m.ro.ID != roi.RemoteProtocolBridgeGetAllKnownValues {
			continue
		}

		go n.notifyListeners(m)

		n.mu.Lock()
		h := n.h
		n.mu.Unlock()
		if h != nil {
			h.OnReceivedMessageFromProtocol(n, m.senderID, m.senderType, m.ro, m.data, m.meta)
		}
	}
}
