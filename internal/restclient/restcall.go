package restclient

import "github.com/mFlorianW/rapid/internal/eventloop"

// CallResult is the outcome of a finished RestCall.
type CallResult int

const (
	// Unknown means the call has not finished yet.
	Unknown CallResult = iota
	// Success means the call completed with a 2xx status.
	Success
	// Error means the call failed transport-side or returned a non-2xx status.
	Error
)

// RestCall tracks one in-flight (or finished) REST call. Grounded on
// RestCall.hpp/.cpp: callers either poll IsFinished/GetResult or connect to
// Finished, which fires exactly once.
type RestCall struct {
	data   string
	result CallResult

	// Finished is emitted once, on the loop that owns it, when the call
	// completes. The emitted value is the call itself, mirroring the
	// original's Signal<RestCall*>.
	Finished *eventloop.DeferredSignal[*RestCall]
}

func newRestCall(loop *eventloop.Loop) *RestCall {
	return &RestCall{
		result:   Unknown,
		Finished: eventloop.NewDeferredSignal[*RestCall](loop),
	}
}

// IsFinished reports whether the call has a result yet.
func (c *RestCall) IsFinished() bool { return c.result != Unknown }

// Result returns the call's result. Only valid once IsFinished is true.
func (c *RestCall) Result() CallResult { return c.result }

// Data returns the raw response body. Only valid once IsFinished is true.
func (c *RestCall) Data() string { return c.data }

// setResult stores the result and body and emits Finished exactly once.
func (c *RestCall) setResult(result CallResult, data string) {
	c.data = data
	c.result = result
	c.Finished.Emit(c)
}
