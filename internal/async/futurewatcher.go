package async

import (
	"github.com/mFlorianW/rapid/internal/eventloop"
)

// FutureWatcher bridges a worker-goroutine computation back into an owning
// loop: Watch runs fn on a new goroutine and, on completion, posts a
// ThreadFinished event to itself on loop; HandleEvent then emits Finished.
// GetResult extracts the value, blocking if the computation hasn't
// completed yet, or returning the zero value if fn returned an error.
type FutureWatcher[T any] struct {
	loop     *eventloop.Loop
	Finished eventloop.VoidSignal

	resultCh chan result[T]
	result   result[T]
	got      bool
}

type result[T any] struct {
	value T
	err   error
}

// NewFutureWatcher constructs a FutureWatcher owned by loop.
func NewFutureWatcher[T any](loop *eventloop.Loop) *FutureWatcher[T] {
	return &FutureWatcher[T]{loop: loop}
}

// Watch starts fn on a worker goroutine and arms the watcher to post
// ThreadFinished to itself, on loop, once fn returns.
func (w *FutureWatcher[T]) Watch(fn func() (T, error)) {
	w.resultCh = make(chan result[T], 1)
	go func() {
		value, err := fn()
		w.resultCh <- result[T]{value: value, err: err}
		w.loop.PostEvent(w, eventloop.Event{Kind: eventloop.ThreadFinished})
	}()
}

// HandleEvent implements eventloop.EventHandler.
func (w *FutureWatcher[T]) HandleEvent(evt *eventloop.Event) bool {
	if evt.Kind != eventloop.ThreadFinished {
		return false
	}
	eventloop.EmitVoid(&w.Finished)
	return true
}

// GetResult returns the computed value. It blocks until the worker
// goroutine has finished; on failure it returns the zero value.
func (w *FutureWatcher[T]) GetResult() T {
	if !w.got {
		w.result = <-w.resultCh
		w.got = true
	}
	if w.result.err != nil {
		var zero T
		return zero
	}
	return w.result.value
}
