package ocp1

import "sync"

// pendingTables tracks in-flight subscribe/get-value/set-value requests by
// their correlating handle, so an asynchronous response frame can be
// routed back to the right ROI (spec.md §4.2.3 "pending-handle table ...
// indexed by 32-bit OCP.1 handle").
type pendingTables struct {
	mu            sync.Mutex
	subscriptions map[uint32]struct{}
	getValues     map[uint32]ONo
	setValues     map[uint32]setEntry
	nextHandle    uint32
}

type setEntry struct {
	ONo        ONo
	ExternalID int
}

func newPendingTables() *pendingTables {
	return &pendingTables{
		subscriptions: make(map[uint32]struct{}),
		getValues:     make(map[uint32]ONo),
		setValues:     make(map[uint32]setEntry),
	}
}

// newHandle returns the next unused 32-bit handle.
func (p *pendingTables) newHandle() uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextHandle++
	return p.nextHandle
}

func (p *pendingTables) addSubscription(handle uint32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subscriptions[handle] = struct{}{}
}

func (p *pendingTables) popSubscription(handle uint32) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.subscriptions[handle]; ok {
		delete(p.subscriptions, handle)
		return true
	}
	return false
}

func (p *pendingTables) addGetValue(handle uint32, ono ONo) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.getValues[handle] = ono
}

func (p *pendingTables) popGetValue(handle uint32) (ONo, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	ono, ok := p.getValues[handle]
	if ok {
		delete(p.getValues, handle)
	}
	return ono, ok
}

func (p *pendingTables) addSetValue(handle uint32, ono ONo, externalID int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.setValues[handle] = setEntry{ONo: ono, ExternalID: externalID}
}

func (p *pendingTables) popSetValue(handle uint32) (setEntry, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.setValues[handle]
	if ok {
		delete(p.setValues, handle)
	}
	return e, ok
}

// clear flushes every pending table (spec.md §4.2.3 "On disconnect: flush
// pending tables and clear the cache").
func (p *pendingTables) clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subscriptions = make(map[uint32]struct{})
	p.getValues = make(map[uint32]ONo)
	p.setValues = make(map[uint32]setEntry)
}
