package ostimer

import "github.com/mFlorianW/rapid/internal/eventloop"

// FdNotifier observes a single file descriptor for Read or Write readiness,
// registered with a process-wide Poller keyed by (fd, kind). The poller
// goroutine posts Notifier events to the owning loop.
type FdNotifier struct {
	loop   *eventloop.Loop
	poller *Poller
	fd     int
	kind   Kind

	Notifier eventloop.VoidSignal
}

// NewFdNotifier registers fd with poller for the given kind. The owning
// loop is notified via Notifier whenever poller reports readiness.
func NewFdNotifier(loop *eventloop.Loop, poller *Poller, fd int, kind Kind) (*FdNotifier, error) {
	n := &FdNotifier{loop: loop, poller: poller, fd: fd, kind: kind}
	if err := poller.Register(fd, kind, n.onReady); err != nil {
		return nil, err
	}
	return n, nil
}

func (n *FdNotifier) onReady() {
	n.loop.PostEvent(n, eventloop.Event{Kind: eventloop.Notifier})
}

// HandleEvent implements eventloop.EventHandler.
func (n *FdNotifier) HandleEvent(evt *eventloop.Event) bool {
	if evt.Kind != eventloop.Notifier {
		return false
	}
	eventloop.EmitVoid(&n.Notifier)
	return true
}

// Close unregisters the descriptor from the poller.
func (n *FdNotifier) Close() error {
	return n.poller.Unregister(n.fd, n.kind)
}
