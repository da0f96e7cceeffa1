// Package pointer smooths raw pointer coordinates into a damped target.
//
// Coordinates are normalized device coordinates: x and y in [-1, 1], origin at
// the centre of the viewport, Y pointing up.
//
// The first move seeds the damped value directly, so the push point starts
// under the pointer instead of easing in from the off-screen sentinel.
package pointer

// Sentinel is the off-screen coordinate held until the first pointer move.
const Sentinel float32 = -100

// Snapshot is the damped pointer for one tick. Consumers receive it by value.
type Snapshot struct {
	X, Y float32
	// Active is false until the first pointer move. Inactive snapshots
	// produce no push and no parallax.
	Active bool
}

// Idle is the snapshot used before any pointer input.
var Idle = Snapshot{X: Sentinel, Y: Sentinel}

// Tracker holds raw and damped pointer state.
type Tracker struct {
	rawX, rawY       float32
	dampedX, dampedY float32
	smoothing        float32
	active           bool
}

// NewTracker creates a tracker with the given smoothing factor in (0, 1].
// Smaller values give more lag.
func NewTracker(smoothing float32) *Tracker {
	return &Tracker{
		rawX:      Sentinel,
		rawY:      Sentinel,
		dampedX:   Sentinel,
		dampedY:   Sentinel,
		smoothing: smoothing,
	}
}

// OnPointerMove records the latest raw position.
func (t *Tracker) OnPointerMove(x, y float32) {
	if !t.active {
		// Seed the damped value so the push point does not sweep in from off-screen.
		t.dampedX, t.dampedY = x, y
		t.active = true
	}
	t.rawX, t.rawY = x, y
}

// Tick advances the damped value one step toward raw and returns the snapshot.
func (t *Tracker) Tick() Snapshot {
	if !t.active {
		return Idle
	}
	t.dampedX += (t.rawX - t.dampedX) * t.smoothing
	t.dampedY += (t.rawY - t.dampedY) * t.smoothing
	return Snapshot{X: t.dampedX, Y: t.dampedY, Active: true}
}

// Raw returns the last recorded raw position (the sentinel before any move).
func (t *Tracker) Raw() (x, y float32) {
	return t.rawX, t.rawY
}

// Normalize converts client pixel coordinates to normalized device coordinates.
// A degenerate viewport yields the sentinel.
func Normalize(px, py, width, height float32) (x, y float32) {
	if width <= 0 || height <= 0 {
		return Sentinel, Sentinel
	}
	x = px/width*2 - 1
	y = -(py/height)*2 + 1
	return x, y
}
