package ostimer

import (
	"sync"

	"golang.org/x/sys/unix"

	"github.com/mFlorianW/rapid/internal/rlog"
)

var pollerLog = rlog.For("ostimer.poller")

// Kind selects which readiness an FdNotifier watches for.
type Kind int

const (
	// Read watches for the descriptor becoming readable.
	Read Kind = iota
	// Write watches for the descriptor becoming writable.
	Write
)

type regKey struct {
	fd   int
	kind Kind
}

// Poller is a process-wide epoll instance. Construct one with NewPoller
// rather than reaching for a package-level singleton, so tests can build a
// fresh poller instead of sharing state across test cases.
type Poller struct {
	epfd int

	mu       sync.Mutex
	watchers map[regKey]func()
	closed   bool
}

// NewPoller opens a fresh epoll instance.
func NewPoller() (*Poller, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}
	return &Poller{epfd: epfd, watchers: make(map[regKey]func())}, nil
}

// Register arms fd for the given readiness kind, calling onReady (from the
// poller's Run goroutine) whenever epoll reports it. Registering the same
// (fd, kind) pair twice is a no-op with a warning (spec §4.D).
func (p *Poller) Register(fd int, kind Kind, onReady func()) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := regKey{fd: fd, kind: kind}
	if _, exists := p.watchers[key]; exists {
		pollerLog.WithField("fd", fd).WithField("kind", kind).Warn("fd+kind already registered, ignoring")
		return nil
	}

	var events uint32 = unix.EPOLLET
	if kind == Read {
		events |= unix.EPOLLIN
	} else {
		events |= unix.EPOLLOUT
	}

	event := unix.EpollEvent{Events: events, Fd: int32(fd)}
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, &event); err != nil {
		return err
	}
	p.watchers[key] = onReady
	return nil
}

// Unregister removes fd's (fd, kind) watch.
func (p *Poller) Unregister(fd int, kind Kind) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := regKey{fd: fd, kind: kind}
	if _, exists := p.watchers[key]; !exists {
		return nil
	}
	delete(p.watchers, key)
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, nil)
}

// Run blocks the calling goroutine, dispatching ready callbacks, until Close
// is called. Intended to be run on its own dedicated OS thread/goroutine.
func (p *Poller) Run() error {
	events := make([]unix.EpollEvent, 32)
	for {
		n, err := unix.EpollWait(p.epfd, events, -1)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			p.mu.Lock()
			closed := p.closed
			p.mu.Unlock()
			if closed {
				return nil
			}
			return err
		}

		p.mu.Lock()
		var ready []func()
		for i := 0; i < n; i++ {
			fd := int(events[i].Fd)
			if events[i].Events&unix.EPOLLIN != 0 {
				if cb, ok := p.watchers[regKey{fd: fd, kind: Read}]; ok {
					ready = append(ready, cb)
				}
			}
			if events[i].Events&unix.EPOLLOUT != 0 {
				if cb, ok := p.watchers[regKey{fd: fd, kind: Write}]; ok {
					ready = append(ready, cb)
				}
			}
		}
		p.mu.Unlock()

		for _, cb := range ready {
			cb()
		}
	}
}

// Close releases the epoll file descriptor and causes a blocked Run to return.
func (p *Poller) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	return unix.Close(p.epfd)
}
