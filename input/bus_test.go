package input

import (
	"sync"
	"testing"
)

func TestFlushDeliversInArrivalOrder(t *testing.T) {
	b := NewBus()
	var got []string
	b.OnPointerMove(func(x, y float32) {
		got = append(got, "move")
	})
	b.OnResize(func(w, h int) {
		got = append(got, "resize")
	})

	b.PushPointer(0.1, 0.2)
	b.PushResize(800, 600)
	b.PushPointer(0.3, 0.4)

	if len(got) != 0 {
		t.Fatalf("expected no delivery before Flush, got %v", got)
	}
	if n := b.Flush(); n != 3 {
		t.Errorf("expected 3 events flushed, got %d", n)
	}

	want := []string{"move", "resize", "move"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d: expected %s, got %s", i, want[i], got[i])
		}
	}
	if b.Pending() != 0 {
		t.Errorf("expected empty queue after flush, got %d", b.Pending())
	}
}

func TestFlushPassesValues(t *testing.T) {
	b := NewBus()
	var x, y float32
	var w, h int
	b.OnPointerMove(func(px, py float32) { x, y = px, py })
	b.OnResize(func(pw, ph int) { w, h = pw, ph })

	b.PushPointer(-0.5, 0.75)
	b.PushResize(1024, 768)
	b.Flush()

	if x != -0.5 || y != 0.75 {
		t.Errorf("expected pointer (-0.5, 0.75), got (%f, %f)", x, y)
	}
	if w != 1024 || h != 768 {
		t.Errorf("expected size 1024x768, got %dx%d", w, h)
	}
}

func TestRemoveListener(t *testing.T) {
	b := NewBus()
	calls := 0
	remove := b.OnPointerMove(func(x, y float32) { calls++ })
	keep := 0
	b.OnPointerMove(func(x, y float32) { keep++ })

	if b.Listeners() != 2 {
		t.Fatalf("expected 2 listeners, got %d", b.Listeners())
	}
	remove()
	remove()
	if b.Listeners() != 1 {
		t.Errorf("expected 1 listener after remove, got %d", b.Listeners())
	}

	b.PushPointer(0, 0)
	b.Flush()
	if calls != 0 {
		t.Errorf("expected removed listener not called, got %d calls", calls)
	}
	if keep != 1 {
		t.Errorf("expected remaining listener called once, got %d", keep)
	}
}

func TestPushDuringFlushWaitsForNextFlush(t *testing.T) {
	b := NewBus()
	seen := 0
	b.OnPointerMove(func(x, y float32) {
		seen++
		if seen == 1 {
			b.PushPointer(x, y)
		}
	})

	b.PushPointer(0, 0)
	if n := b.Flush(); n != 1 {
		t.Errorf("expected 1 event in first flush, got %d", n)
	}
	if b.Pending() != 1 {
		t.Errorf("expected re-pushed event queued, got %d", b.Pending())
	}
	b.Flush()
	if seen != 2 {
		t.Errorf("expected 2 deliveries, got %d", seen)
	}
}

func TestCloseDropsEvents(t *testing.T) {
	b := NewBus()
	calls := 0
	b.OnResize(func(w, h int) { calls++ })

	b.PushResize(1, 1)
	b.Close()
	b.PushResize(2, 2)

	if n := b.Flush(); n != 0 {
		t.Errorf("expected nothing to flush after Close, got %d", n)
	}
	if calls != 0 {
		t.Errorf("expected no delivery after Close, got %d", calls)
	}
}

func TestConcurrentPush(t *testing.T) {
	b := NewBus()
	total := 0
	b.OnPointerMove(func(x, y float32) { total++ })

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				b.PushPointer(0, 0)
			}
		}()
	}
	wg.Wait()
	b.Flush()

	if total != 800 {
		t.Errorf("expected 800 deliveries, got %d", total)
	}
}

func TestKindString(t *testing.T) {
	if PointerMove.String() != "pointer_move" || Resize.String() != "resize" {
		t.Errorf("unexpected kind names %s %s", PointerMove, Resize)
	}
}
