package async

import (
	"sync"

	"github.com/mFlorianW/rapid/internal/eventloop"
)

// ResultWithValue extends Result with a value that is readable only once
// the terminal state is Ok.
type ResultWithValue[T any] struct {
	*Result

	mu    sync.Mutex
	value T
}

// NewResultWithValue constructs a ResultWithValue owned by the calling goroutine.
func NewResultWithValue[T any](loop *eventloop.Loop) *ResultWithValue[T] {
	return &ResultWithValue[T]{Result: NewResult(loop)}
}

// SetResultValue stores value. This does not emit Done — call SetResult
// separately once, after the value is set, matching the original's split
// between setResultValue (repeatable) and setResult (emits once).
func (r *ResultWithValue[T]) SetResultValue(value T) {
	r.mu.Lock()
	r.value = value
	r.mu.Unlock()
}

// GetResultValue returns the stored value and true, or the zero value and
// false if the result isn't terminal-Ok yet.
func (r *ResultWithValue[T]) GetResultValue() (T, bool) {
	if r.GetResult() != Ok {
		var zero T
		return zero, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.value, true
}
