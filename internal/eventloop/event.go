package eventloop

// Kind identifies the category of an Event posted to a Loop.
type Kind int

const (
	// Unknown is the zero Kind, used by callers defining their own events.
	Unknown Kind = iota
	// Timeout is posted by a Timer when it fires.
	Timeout
	// ThreadFinished is posted by a FutureWatcher when its worker goroutine completes.
	ThreadFinished
	// HttpRequestReceived names a REST-request event; no code in this module posts it.
	HttpRequestReceived
	// Notifier is posted by the FD poller when a registered descriptor is ready.
	Notifier
)

func (k Kind) String() string {
	switch k {
	case Timeout:
		return "Timeout"
	case ThreadFinished:
		return "ThreadFinished"
	case HttpRequestReceived:
		return "HttpRequestReceived"
	case Notifier:
		return "Notifier"
	default:
		return "Unknown"
	}
}

// Event is posted to a Loop and delivered to a single EventHandler.
type Event struct {
	Kind    Kind
	Payload any
}
