package eventloop

// EventHandler receives events posted to the Loop it was registered on.
// HandleEvent returns true if it consumed the event.
type EventHandler interface {
	HandleEvent(evt *Event) bool
}
