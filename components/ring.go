package components

import "image/color"

// Ring is a circle in its local XY plane, centred at origin.
type Ring struct {
	Radius float32
	Color  color.RGBA
}

// Rotation holds Euler angles in radians, applied X then Y then Z.
type Rotation struct {
	X, Y, Z float32
}

// Spin is the per-tick angular velocity around each axis.
type Spin struct {
	X, Y, Z float32
}
