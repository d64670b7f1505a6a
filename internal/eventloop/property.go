package eventloop

import "sync"

// Property holds a readable value plus a DeferredSignal that fires with the
// new value on every Set. Mirrors the original's KDBindings::Property<T>
// members on ILaptimer (currentLaptime, currentSectorTime): readable from
// any goroutine, change notifications always delivered on the owning loop.
type Property[T any] struct {
	mu      sync.RWMutex
	value   T
	changed *DeferredSignal[T]
}

// NewProperty constructs a Property with the given initial value, whose
// change notifications are delivered on loop.
func NewProperty[T any](loop *Loop, initial T) *Property[T] {
	return &Property[T]{value: initial, changed: NewDeferredSignal[T](loop)}
}

// Get returns the current value. Safe from any goroutine.
func (p *Property[T]) Get() T {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.value
}

// Set stores value and emits Changed. Safe from any goroutine.
func (p *Property[T]) Set(value T) {
	p.mu.Lock()
	p.value = value
	p.mu.Unlock()
	p.changed.Emit(value)
}

// Changed returns the DeferredSignal fired whenever Set is called.
func (p *Property[T]) Changed() *DeferredSignal[T] {
	return p.changed
}
