package eventloop

import "runtime"

// goroutineID extracts the calling goroutine's id from its stack trace
// header ("goroutine 123 [running]: ..."). It is the cheapest thread-affinity
// check available without cgo or runtime patches, used only to assert that
// Loop-owning operations (ProcessEvents, WaitForFinished) run on the
// goroutine that owns the loop.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	var id uint64
	for i := len("goroutine "); i < n; i++ {
		if buf[i] < '0' || buf[i] > '9' {
			break
		}
		id = id*10 + uint64(buf[i]-'0')
	}
	return id
}
