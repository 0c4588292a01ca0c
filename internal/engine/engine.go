// Package engine implements the Engine (spec.md §4.5): the owner of every
// configured Node, and the fan-out point for node logging callbacks to a
// configured log target.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/bridgenode"
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/objectmodel"
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/processor"
)

// ErrDuplicateNodeID is returned by AddNode when the id is already owned by
// another Node (spec.md §5 "NodeId ... unique within an Engine").
var ErrDuplicateNodeID = errors.New("duplicate node id")

// ErrUnknownNodeID is returned by RemoveNode/Node for an id the Engine
// doesn't own.
var ErrUnknownNodeID = errors.New("unknown node id")

// Engine owns map[NodeId]Node (spec.md §4.5). Its Start/Stop starts and
// stops every Node, and every Node's message traffic is fanned out, via
// bridgenode.LogListener, to the Engine's own logger.
type Engine struct {
	logger *slog.Logger

	mu      sync.Mutex
	nodes   map[objectmodel.NodeID]*bridgenode.Node
	running bool
}

// New creates an empty Engine.
func New(logger *slog.Logger) *Engine {
	return &Engine{
		logger: logger.With("subsystem", "engine"),
		nodes:  make(map[objectmodel.NodeID]*bridgenode.Node),
	}
}

// AddNode registers n under its id, starting it immediately if the Engine
// is already running (spec.md §4.4's reconfiguration path calls this when
// bridgeconfig.Build adds a Node that didn't previously exist).
func (e *Engine) AddNode(n *bridgenode.Node) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.nodes[n.ID()]; exists {
		return fmt.Errorf("%w: %d", ErrDuplicateNodeID, n.ID())
	}
	n.AddLogListener(bridgenode.LogListenerFunc(e.logMessage))
	e.nodes[n.ID()] = n

	if e.running {
		if err := n.Start(); err != nil {
			delete(e.nodes, n.ID())
			return fmt.Errorf("starting node %d: %w", n.ID(), err)
		}
	}
	return nil
}

// RemoveNode stops and unregisters the Node owning id.
func (e *Engine) RemoveNode(id objectmodel.NodeID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	n, ok := e.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownNodeID, id)
	}
	delete(e.nodes, id)
	return n.Stop()
}

// Node returns the Node registered under id, if any.
func (e *Engine) Node(id objectmodel.NodeID) (*bridgenode.Node, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	n, ok := e.nodes[id]
	return n, ok
}

// NodeIDs returns a snapshot of every registered node id.
func (e *Engine) NodeIDs() []objectmodel.NodeID {
	e.mu.Lock()
	defer e.mu.Unlock()
	ids := make([]objectmodel.NodeID, 0, len(e.nodes))
	for id := range e.nodes {
		ids = append(ids, id)
	}
	return ids
}

func (e *Engine) logMessage(nodeID objectmodel.NodeID, senderID objectmodel.ProtocolID, senderType processor.Type, ro objectmodel.RemoteObject, data objectmodel.MessageData, meta objectmodel.MetaInfo) {
	e.logger.Debug("message bridged",
		"node_id", nodeID,
		"sender_id", senderID,
		"sender_type", senderType,
		"roi", ro.ID,
		"channel", ro.Addr.First,
		"record", ro.Addr.Second,
	)
}

// Start starts every registered Node (spec.md §4.5 "start() starts all
// nodes"). Idempotent.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return nil
	}

	started := make([]*bridgenode.Node, 0, len(e.nodes))
	for id, n := range e.nodes {
		if err := n.Start(); err != nil {
			for _, s := range started {
				s.Stop()
			}
			return fmt.Errorf("starting node %d: %w", id, err)
		}
		started = append(started, n)
	}
	e.running = true
	e.logger.Info("engine started", "node_count", len(e.nodes))
	return nil
}

// Stop stops every registered Node and joins (spec.md §4.5 "stop() stops
// all and joins").
func (e *Engine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running {
		return nil
	}

	var firstErr error
	for id, n := range e.nodes {
		if err := n.Stop(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("stopping node %d: %w", id, err)
		}
	}
	e.running = false
	e.logger.Info("engine stopped")
	return firstErr
}
