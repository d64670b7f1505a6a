package types

import "testing"

func TestRingBufferPushFrontEvictsOldest(t *testing.T) {
	t.Parallel()

	rb := NewRingBuffer[int](4)
	for i := 1; i <= 5; i++ {
		rb.PushFront(i)
	}
	if rb.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", rb.Len())
	}
	want := []int{5, 4, 3, 2}
	for i, w := range want {
		got, ok := rb.At(i)
		if !ok || got != w {
			t.Errorf("At(%d) = %v, %v; want %v, true", i, got, ok, w)
		}
	}
	if _, ok := rb.At(4); ok {
		t.Error("At(4) should be out of range for a 4-capacity buffer holding 4 entries")
	}
}

func TestRingBufferClear(t *testing.T) {
	t.Parallel()

	rb := NewRingBuffer[string](4)
	rb.PushFront("a")
	rb.Clear()
	if rb.Len() != 0 {
		t.Errorf("Len() after Clear() = %d, want 0", rb.Len())
	}
}
