package eventloop

import "sync"

// DeferredSignal broadcasts across goroutines safely: Emit never calls
// slots directly. Instead it enqueues each slot invocation on the owning
// Loop's ConnectionEvaluator, so slots only ever run on their Loop's
// goroutine, during that Loop's next ProcessEvents/Exec pass.
type DeferredSignal[T any] struct {
	loop *Loop

	mu    sync.Mutex
	slots []func(T)
}

// NewDeferredSignal constructs a DeferredSignal whose slots are evaluated on loop.
func NewDeferredSignal[T any](loop *Loop) *DeferredSignal[T] {
	return &DeferredSignal[T]{loop: loop}
}

// Connect registers fn to run (on loop's goroutine) for every future Emit.
// It returns a Disconnect function that removes fn again; already-enqueued
// invocations still run.
func (s *DeferredSignal[T]) Connect(fn func(T)) (disconnect func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots = append(s.slots, fn)
	idx := len(s.slots) - 1
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if idx < len(s.slots) {
			s.slots[idx] = nil
		}
	}
}

// Emit enqueues every connected slot on the owning loop's ConnectionEvaluator.
// Safe to call from any goroutine.
func (s *DeferredSignal[T]) Emit(value T) {
	s.mu.Lock()
	slots := make([]func(T), len(s.slots))
	copy(slots, s.slots)
	s.mu.Unlock()

	evaluator := s.loop.Evaluator()
	for _, slot := range slots {
		if slot == nil {
			continue
		}
		slot := slot
		evaluator.enqueue(func() { slot(value) })
	}
}
