package eventloop

import "sync"

// ConnectionEvaluator queues deferred signal invocations: closures that must
// run on the owning thread's next ProcessEvents pass rather than at emit
// time. This is how a DeferredSignal delivers a value produced on a worker
// goroutine into the owning goroutine without the receiver taking any lock.
type ConnectionEvaluator struct {
	mu      sync.Mutex
	pending []func()
	wake    func()
}

// newConnectionEvaluator constructs an empty evaluator. wake is called after
// every enqueue so a goroutine blocked in Loop.Exec notices the new work.
func newConnectionEvaluator(wake func()) *ConnectionEvaluator {
	return &ConnectionEvaluator{wake: wake}
}

// enqueue appends fn to the pending list. Safe from any goroutine.
func (c *ConnectionEvaluator) enqueue(fn func()) {
	c.mu.Lock()
	c.pending = append(c.pending, fn)
	c.mu.Unlock()
	if c.wake != nil {
		c.wake()
	}
}

// hasPending reports whether any closures are queued.
func (c *ConnectionEvaluator) hasPending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending) > 0
}

// evaluate runs and clears every pending closure. Must be called from the
// owning thread only (enforced by the caller, Loop.ProcessEvents).
func (c *ConnectionEvaluator) evaluate() {
	c.mu.Lock()
	pending := c.pending
	c.pending = nil
	c.mu.Unlock()

	for _, fn := range pending {
		fn()
	}
}
