package ostimer

import (
	"testing"
	"time"

	"github.com/mFlorianW/rapid/internal/eventloop"
)

func TestTimerFiresOnce(t *testing.T) {
	t.Parallel()

	loop := eventloop.NewLoop()
	timer := NewTimer(loop)
	var fired int
	timer.Timeout.Connect(func(struct{}) { fired++ })

	timer.SetInterval(20*time.Millisecond, false)

	deadline := time.After(2 * time.Second)
	for fired == 0 {
		select {
		case <-deadline:
			t.Fatal("timer never fired")
		default:
			if err := loop.WaitOnce(); err != nil {
				t.Fatalf("WaitOnce: %v", err)
			}
		}
	}
	if fired != 1 {
		t.Errorf("fired = %d, want 1", fired)
	}
}

func TestTimerStopPreventsFiring(t *testing.T) {
	t.Parallel()

	loop := eventloop.NewLoop()
	timer := NewTimer(loop)
	var fired int
	timer.Timeout.Connect(func(struct{}) { fired++ })

	timer.SetInterval(50*time.Millisecond, false)
	timer.Stop()

	time.Sleep(100 * time.Millisecond)
	_ = loop.ProcessEvents()
	if fired != 0 {
		t.Errorf("fired = %d, want 0 after Stop", fired)
	}
}
