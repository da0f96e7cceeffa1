// Package components defines ECS components for the rings mode.
package components

// Position represents an ambient point's world position.
type Position struct {
	X, Y, Z float32
}

// Velocity represents an ambient point's per-tick displacement.
type Velocity struct {
	X, Y, Z float32
}

// Drift offsets an ambient point into the noise field so neighbours wander independently.
type Drift struct {
	Phase float64
}
