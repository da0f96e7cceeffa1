// Package input queues host events and delivers them on the frame goroutine.
//
// Hosts push pointer and resize events from whatever goroutine observes them.
// The engine calls Flush at the start of each frame, so an event that arrives
// mid-frame takes effect on the next one.
package input

import "sync"

// Kind identifies an event type.
type Kind uint8

const (
	PointerMove Kind = iota
	Resize
)

func (k Kind) String() string {
	switch k {
	case PointerMove:
		return "pointer_move"
	case Resize:
		return "resize"
	default:
		return "unknown"
	}
}

// Event is one host event. X and Y are normalized pointer coordinates; W and H
// are viewport pixels.
type Event struct {
	Kind Kind
	X, Y float32
	W, H int
}

type pointerListener struct {
	id int
	fn func(x, y float32)
}

type resizeListener struct {
	id int
	fn func(w, h int)
}

// Bus is a listener registry plus a pending event queue.
type Bus struct {
	mu      sync.Mutex
	pending []Event
	spare   []Event
	closed  bool

	nextID  int
	pointer []pointerListener
	resize  []resizeListener
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// OnPointerMove registers fn and returns a function that removes it.
func (b *Bus) OnPointerMove(fn func(x, y float32)) (remove func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.pointer = append(b.pointer, pointerListener{id: id, fn: fn})
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, l := range b.pointer {
			if l.id == id {
				b.pointer = append(b.pointer[:i], b.pointer[i+1:]...)
				return
			}
		}
	}
}

// OnResize registers fn and returns a function that removes it.
func (b *Bus) OnResize(fn func(w, h int)) (remove func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.resize = append(b.resize, resizeListener{id: id, fn: fn})
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, l := range b.resize {
			if l.id == id {
				b.resize = append(b.resize[:i], b.resize[i+1:]...)
				return
			}
		}
	}
}

// PushPointer queues a pointer move. Safe for concurrent use.
func (b *Bus) PushPointer(x, y float32) {
	b.push(Event{Kind: PointerMove, X: x, Y: y})
}

// PushResize queues a viewport resize. Safe for concurrent use.
func (b *Bus) PushResize(w, h int) {
	b.push(Event{Kind: Resize, W: w, H: h})
}

func (b *Bus) push(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.pending = append(b.pending, ev)
}

// Flush delivers every queued event in arrival order and returns how many were
// delivered. Listeners run without the lock held, so they may push or
// unregister; events they push wait for the next Flush.
func (b *Bus) Flush() int {
	b.mu.Lock()
	if len(b.pending) == 0 {
		b.mu.Unlock()
		return 0
	}
	events := b.pending
	b.pending = b.spare[:0]
	pointer := append([]pointerListener(nil), b.pointer...)
	resize := append([]resizeListener(nil), b.resize...)
	b.mu.Unlock()

	for _, ev := range events {
		switch ev.Kind {
		case PointerMove:
			for _, l := range pointer {
				l.fn(ev.X, ev.Y)
			}
		case Resize:
			for _, l := range resize {
				l.fn(ev.W, ev.H)
			}
		}
	}

	b.mu.Lock()
	b.spare = events[:0]
	b.mu.Unlock()
	return len(events)
}

// Pending returns the number of queued events.
func (b *Bus) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

// Listeners returns the number of registered listeners of both kinds.
func (b *Bus) Listeners() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pointer) + len(b.resize)
}

// Close drops queued events and ignores further pushes.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.pending = nil
}
