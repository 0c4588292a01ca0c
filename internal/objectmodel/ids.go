package objectmodel

import "sync/atomic"

// NodeID identifies a bridgenode.Node.
type NodeID uint32

// ProtocolID identifies a processor.Processor within its owning Node.
type ProtocolID uint64

// idCounter is the process-wide monotonic id source. spec.md §9 "Global
// counter" calls for replacing the original's plain static int with an
// atomic counter that configuration ingress can seed from observed ids so
// a replayed/reloaded configuration does not collide with ids already in
// use.
var idCounter atomic.Uint64

// NextID returns the next process-wide unique id.
func NextID() uint64 {
	return idCounter.Add(1)
}

// ObserveID pushes an id seen in configuration into the counter so future
// NextID calls never collide with it.
func ObserveID(id uint64) {
	for {
		cur := idCounter.Load()
		if id <= cur {
			return
		}
		if idCounter.CompareAndSwap(cur, id) {
			return
		}
	}
}
