// Package async provides the one-shot result cell (AsyncResult) and the
// worker-to-owner bridge (FutureWatcher) that glue worker-goroutine
// computation (DB I/O, HTTP request/response parsing) back into an owning
// goroutine's event loop without the caller taking a lock.
package async

import (
	"sync"

	"github.com/mFlorianW/rapid/internal/eventloop"
	"github.com/mFlorianW/rapid/internal/rlog"
)

// State is the terminal/non-terminal state of an AsyncResult.
type State int

const (
	// NotFinished is the initial state; no result is available yet.
	NotFinished State = iota
	// Ok is a terminal state: the operation succeeded.
	Ok
	// Err is a terminal state: the operation failed.
	Err
)

func (s State) String() string {
	switch s {
	case Ok:
		return "Ok"
	case Err:
		return "Err"
	default:
		return "NotFinished"
	}
}

var log = rlog.For("async")

// Result is a shared one-shot result cell. SetResult may be called from any
// goroutine exactly once; WaitForFinished may be called only from the
// owning goroutine (the one that created the Result).
type Result struct {
	loop *eventloop.Loop

	mu      sync.Mutex
	state   State
	errMsg  string
	ownerID uint64

	done *eventloop.DeferredSignal[*Result]
}

// NewResult constructs a Result owned by the calling goroutine. loop is the
// event loop pumped by WaitForFinished and used to deliver Done.
func NewResult(loop *eventloop.Loop) *Result {
	return &Result{
		loop:  loop,
		state: NotFinished,
		done:  eventloop.NewDeferredSignal[*Result](loop),
	}
}

// Done returns the signal emitted exactly once, when SetResult transitions
// the Result to a terminal state.
func (r *Result) Done() *eventloop.DeferredSignal[*Result] {
	return r.done
}

// GetResult returns the current state. Safe from any goroutine.
func (r *Result) GetResult() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// GetErrorMessage returns the error message set alongside an Err result, or
// "" if none was given. Safe from any goroutine.
func (r *Result) GetErrorMessage() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.errMsg
}

// SetResult transitions r to a terminal state and emits Done exactly once.
// Calling SetResult again once already terminal is a usage error: it is
// logged and ignored, not propagated (spec §7).
func (r *Result) SetResult(state State, errMsg ...string) {
	r.mu.Lock()
	if r.state != NotFinished {
		r.mu.Unlock()
		log.Warn("SetResult called on an already-finished async result")
		return
	}
	r.state = state
	if len(errMsg) > 0 {
		r.errMsg = errMsg[0]
	}
	r.mu.Unlock()

	r.done.Emit(r)
}

// WaitForFinished pumps the owning loop's ProcessEvents until the result is
// terminal. It must be called only on the loop's owning goroutine.
func (r *Result) WaitForFinished() {
	if !r.loop.IsOwnerThread() {
		log.Warn("WaitForFinished called from a goroutine that does not own the result's loop")
		return
	}
	for r.GetResult() == NotFinished {
		if err := r.loop.WaitOnce(); err != nil {
			return
		}
	}
}
