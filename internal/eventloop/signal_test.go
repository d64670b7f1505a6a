package eventloop

import "testing"

func TestSignalEmitCallsSlotsInOrder(t *testing.T) {
	t.Parallel()

	var sig Signal[int]
	var order []int
	sig.Connect(func(v int) { order = append(order, v*10) })
	sig.Connect(func(v int) { order = append(order, v*100) })

	sig.Emit(1)

	if len(order) != 2 || order[0] != 10 || order[1] != 100 {
		t.Errorf("order = %v, want [10 100]", order)
	}
}

func TestSignalDisconnect(t *testing.T) {
	t.Parallel()

	var sig Signal[int]
	called := false
	disconnect := sig.Connect(func(int) { called = true })
	disconnect()

	sig.Emit(1)
	if called {
		t.Error("disconnected slot should not run")
	}
}

func TestDeferredSignalDeliversOnOwnerLoop(t *testing.T) {
	t.Parallel()

	loop := NewLoop()
	sig := NewDeferredSignal[int](loop)
	var received int
	sig.Connect(func(v int) { received = v })

	done := make(chan struct{})
	go func() {
		sig.Emit(42)
		close(done)
	}()
	<-done

	if received != 0 {
		t.Fatal("slot must not run before ProcessEvents")
	}
	if err := loop.ProcessEvents(); err != nil {
		t.Fatalf("ProcessEvents: %v", err)
	}
	if received != 42 {
		t.Errorf("received = %d, want 42", received)
	}
}

func TestPropertySetEmitsChanged(t *testing.T) {
	t.Parallel()

	loop := NewLoop()
	prop := NewProperty[int](loop, 0)
	var seen int
	prop.Changed().Connect(func(v int) { seen = v })

	prop.Set(7)
	if got := prop.Get(); got != 7 {
		t.Errorf("Get() = %d, want 7", got)
	}
	if err := loop.ProcessEvents(); err != nil {
		t.Fatalf("ProcessEvents: %v", err)
	}
	if seen != 7 {
		t.Errorf("seen = %d, want 7", seen)
	}
}
