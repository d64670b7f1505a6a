// Package eventloop implements the per-thread event loop that the rest of
// the engine is built around: a FIFO queue of (handler, event) pairs plus a
// ConnectionEvaluator for deferred signal delivery, so results produced on
// worker goroutines reach their owning goroutine without the receiver
// taking a lock.
package eventloop

import (
	"errors"
	"sync"
)

// ErrNotOwner is returned when ProcessEvents (or another owner-only
// operation) is called from a goroutine other than the one that created the
// Loop.
var ErrNotOwner = errors.New("eventloop: caller is not the loop's owning goroutine")

type queuedEvent struct {
	receiver EventHandler
	event    Event
}

// Loop is a single-goroutine event queue with cross-goroutine posting.
type Loop struct {
	mu    sync.Mutex
	cond  *sync.Cond
	queue []queuedEvent
	quit  bool

	ownerID     uint64
	ownerLocked bool

	evaluator *ConnectionEvaluator
}

// NewLoop constructs a Loop. The calling goroutine becomes its owner.
func NewLoop() *Loop {
	l := &Loop{
		ownerID: goroutineID(),
	}
	l.cond = sync.NewCond(&l.mu)
	// The broadcast takes l.mu so it cannot fall between a waiter's
	// hasPending check and its cond.Wait, which would lose the wakeup.
	l.evaluator = newConnectionEvaluator(func() {
		l.mu.Lock()
		l.cond.Broadcast()
		l.mu.Unlock()
	})
	return l
}

// Evaluator returns the loop's ConnectionEvaluator, used by DeferredSignal
// to enqueue cross-goroutine deliveries.
func (l *Loop) Evaluator() *ConnectionEvaluator {
	return l.evaluator
}

// IsOwnerThread reports whether the calling goroutine owns l.
func (l *Loop) IsOwnerThread() bool {
	return goroutineID() == l.ownerID
}

// PostEvent pushes event onto the queue for receiver, waking the owning
// goroutine if it is blocked in Exec. Safe to call from any goroutine.
func (l *Loop) PostEvent(receiver EventHandler, event Event) {
	l.mu.Lock()
	l.queue = append(l.queue, queuedEvent{receiver: receiver, event: event})
	l.mu.Unlock()
	l.cond.Broadcast()
}

// Forget removes every pending event targeting receiver. Call this when an
// EventHandler is about to be discarded, since Go has no destructors to do
// it automatically.
func (l *Loop) Forget(receiver EventHandler) {
	l.mu.Lock()
	defer l.mu.Unlock()

	kept := l.queue[:0]
	for _, qe := range l.queue {
		if qe.receiver != receiver {
			kept = append(kept, qe)
		}
	}
	l.queue = kept
}

// ProcessEvents evaluates pending deferred signal invocations, then drains
// the current queue, delivering each entry to its receiver's HandleEvent.
// It refuses to run when called from a goroutine other than the owner.
func (l *Loop) ProcessEvents() error {
	if !l.IsOwnerThread() {
		return ErrNotOwner
	}

	l.evaluator.evaluate()

	l.mu.Lock()
	batch := l.queue
	l.queue = nil
	l.mu.Unlock()

	for i := range batch {
		batch[i].receiver.HandleEvent(&batch[i].event)
	}
	return nil
}

// Exec blocks the calling goroutine, repeatedly waiting for work and
// draining it, until Quit is called. Must be called from the owner.
func (l *Loop) Exec() error {
	if !l.IsOwnerThread() {
		return ErrNotOwner
	}

	for {
		l.mu.Lock()
		for len(l.queue) == 0 && !l.quit && !l.evaluator.hasPending() {
			l.cond.Wait()
		}
		if l.quit {
			l.quit = false
			l.mu.Unlock()
			return nil
		}
		l.mu.Unlock()

		if err := l.ProcessEvents(); err != nil {
			return err
		}
	}
}

// WaitOnce blocks until there is queued work or a pending deferred signal,
// then runs exactly one ProcessEvents pass. Used by AsyncResult.WaitForFinished
// to pump the owning loop without busy-waiting. Must be called from the owner.
func (l *Loop) WaitOnce() error {
	if !l.IsOwnerThread() {
		return ErrNotOwner
	}

	l.mu.Lock()
	for len(l.queue) == 0 && !l.quit && !l.evaluator.hasPending() {
		l.cond.Wait()
	}
	quit := l.quit
	l.quit = false
	l.mu.Unlock()

	if quit {
		return nil
	}
	return l.ProcessEvents()
}

// Quit causes a blocked Exec to return. Safe from any goroutine.
func (l *Loop) Quit() {
	l.mu.Lock()
	l.quit = true
	l.mu.Unlock()
	l.cond.Broadcast()
}
