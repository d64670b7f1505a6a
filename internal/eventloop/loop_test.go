package eventloop

import (
	"sync"
	"testing"
	"time"
)

type recordingHandler struct {
	mu     sync.Mutex
	events []Kind
}

func (h *recordingHandler) HandleEvent(evt *Event) bool {
	h.mu.Lock()
	h.events = append(h.events, evt.Kind)
	h.mu.Unlock()
	return true
}

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.events)
}

func TestLoopProcessEventsDeliversInOrder(t *testing.T) {
	t.Parallel()

	loop := NewLoop()
	handler := &recordingHandler{}
	loop.PostEvent(handler, Event{Kind: Timeout})
	loop.PostEvent(handler, Event{Kind: Notifier})

	if err := loop.ProcessEvents(); err != nil {
		t.Fatalf("ProcessEvents: %v", err)
	}
	if handler.count() != 2 {
		t.Fatalf("count() = %d, want 2", handler.count())
	}
	if handler.events[0] != Timeout || handler.events[1] != Notifier {
		t.Errorf("events = %v, want [Timeout Notifier]", handler.events)
	}
}

func TestLoopProcessEventsRejectsNonOwner(t *testing.T) {
	t.Parallel()

	loop := NewLoop()
	errCh := make(chan error, 1)
	go func() {
		errCh <- loop.ProcessEvents()
	}()
	if err := <-errCh; err != ErrNotOwner {
		t.Errorf("ProcessEvents from foreign goroutine = %v, want ErrNotOwner", err)
	}
}

func TestLoopForgetRemovesPendingEvents(t *testing.T) {
	t.Parallel()

	loop := NewLoop()
	handler := &recordingHandler{}
	loop.PostEvent(handler, Event{Kind: Timeout})
	loop.Forget(handler)

	if err := loop.ProcessEvents(); err != nil {
		t.Fatalf("ProcessEvents: %v", err)
	}
	if handler.count() != 0 {
		t.Errorf("count() = %d, want 0 after Forget", handler.count())
	}
}

func TestLoopExecQuit(t *testing.T) {
	t.Parallel()

	// Exec must run on the loop's owner, so the loop is created on the
	// goroutine that runs Exec and handed back for Quit.
	loopCh := make(chan *Loop)
	errCh := make(chan error, 1)
	go func() {
		loop := NewLoop()
		loopCh <- loop
		errCh <- loop.Exec()
	}()

	loop := <-loopCh
	loop.Quit()

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Exec() = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Exec did not return after Quit")
	}
}
