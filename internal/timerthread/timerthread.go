// Package timerthread provides the periodic-callback infrastructure shared
// by active-object polling and keepalive emission (spec.md §4.6). It is not
// a single global timer: every owner (a processor, a handler) embeds its
// own Timer and starts its own goroutine, grounded on the teacher's
// internal/sip.TrunkRegistrar health-check-loop pattern (context-cancelled
// ticker goroutine per owned resource).
package timerthread

import (
	"context"
	"sync"
	"time"
)

// Callback is invoked on every tick. It must be non-blocking or
// short-running (spec.md §4.6).
type Callback func()

// Timer runs Callback on a fixed interval, after an optional initial delay,
// until Stop is called.
type Timer struct {
	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Start begins the timer goroutine. Calling Start while already running is
// a no-op (idempotent, spec.md §4.2 processor contract requires start/stop
// idempotence to extend to their owned timers).
func (t *Timer) Start(intervalMs, initialDelayMs int, cb Callback) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		return
	}
	if intervalMs <= 0 {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	t.wg.Add(1)

	go func() {
		defer t.wg.Done()

		if initialDelayMs > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Duration(initialDelayMs) * time.Millisecond):
			}
		}

		ticker := time.NewTicker(time.Duration(intervalMs) * time.Millisecond)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cb()
			}
		}
	}()
}

// Stop cancels the timer goroutine and waits for it to exit, including
// any callback already running. Safe to call when not running, and safe
// to call more than once (spec.md §5 "stop() on any component must return
// within a bounded time").
func (t *Timer) Stop() {
	t.mu.Lock()
	cancel := t.cancel
	t.cancel = nil
	t.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	t.wg.Wait()
}

// Running reports whether the timer goroutine is currently active.
func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancel != nil
}
