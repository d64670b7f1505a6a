// Package ostimer implements Timer (one-shot or periodic, posting Timeout
// events) and FdNotifier (epoll-backed FD readiness, posting Notifier
// events), the two OS-facing primitives components build timeouts and I/O
// wakeups from.
package ostimer

import (
	"sync"
	"time"

	"github.com/mFlorianW/rapid/internal/eventloop"
)

// Timer posts a Timeout event to itself on its owning loop when it fires.
// An interval of 0 means stopped. Go's runtime timer comfortably hits the
// 1ms resolution the original's timerfd-backed Timer promises.
type Timer struct {
	loop *eventloop.Loop

	mu       sync.Mutex
	interval time.Duration
	periodic bool
	timer    *time.Timer
	stopCh   chan struct{}

	Timeout eventloop.VoidSignal
}

// NewTimer constructs a stopped Timer owned by loop.
func NewTimer(loop *eventloop.Loop) *Timer {
	return &Timer{loop: loop}
}

// SetInterval arms (or, with 0, stops) the timer. periodic selects whether
// it repeats or fires once.
func (t *Timer) SetInterval(d time.Duration, periodic bool) {
	t.Stop()

	t.mu.Lock()
	t.interval = d
	t.periodic = periodic
	t.mu.Unlock()

	if d <= 0 {
		return
	}

	stopCh := make(chan struct{})
	t.mu.Lock()
	t.stopCh = stopCh
	t.mu.Unlock()

	go t.run(d, periodic, stopCh)
}

func (t *Timer) run(d time.Duration, periodic bool, stopCh chan struct{}) {
	if periodic {
		ticker := time.NewTicker(d)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				t.loop.PostEvent(t, eventloop.Event{Kind: eventloop.Timeout})
			case <-stopCh:
				return
			}
		}
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		t.loop.PostEvent(t, eventloop.Event{Kind: eventloop.Timeout})
	case <-stopCh:
	}
}

// Stop halts the timer; it posts no further Timeout events until re-armed.
func (t *Timer) Stop() {
	t.mu.Lock()
	stopCh := t.stopCh
	t.stopCh = nil
	t.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
	}
}

// HandleEvent implements eventloop.EventHandler.
func (t *Timer) HandleEvent(evt *eventloop.Event) bool {
	if evt.Kind != eventloop.Timeout {
		return false
	}
	eventloop.EmitVoid(&t.Timeout)
	return true
}
