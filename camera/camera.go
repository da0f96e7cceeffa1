// Package camera provides the perspective camera that frames the particle cube.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera looks down -Z at the origin from (0, 0, Distance).
type Camera struct {
	// Vertical field of view in degrees
	FOV float32

	// Clip planes
	Near, Far float32

	// Distance from the origin along +Z
	Distance float32

	// Viewport dimensions (surface size in pixels)
	ViewportW, ViewportH float32

	proj, view, viewProj mgl32.Mat4
}

// Projected is a world point mapped onto the viewport.
type Projected struct {
	X, Y float32 // Pixels, origin top-left
	// Depth is the clip-space w (distance along the view axis)
	Depth float32
	// Scale is pixels per world unit at this depth
	Scale float32
}

// New creates a camera for the given viewport.
func New(viewportW, viewportH, fov, near, far, distance float32) *Camera {
	c := &Camera{
		FOV:       fov,
		Near:      near,
		Far:       far,
		Distance:  distance,
		ViewportW: viewportW,
		ViewportH: viewportH,
	}
	c.update()
	return c
}

// FitDistance returns the distance at which a cube of the given half extent
// spans fill of the narrower viewport dimension.
func FitDistance(halfExtent, fov, aspect, fill float32) float32 {
	if fill <= 0 {
		fill = 1
	}
	tanHalf := float32(math.Tan(float64(mgl32.DegToRad(fov) / 2)))
	narrow := float32(1)
	if aspect > 0 && aspect < 1 {
		narrow = aspect
	}
	return halfExtent / (fill * tanHalf * narrow)
}

// Aspect returns width / height, or 1 for a degenerate viewport.
func (c *Camera) Aspect() float32 {
	if c.ViewportW <= 0 || c.ViewportH <= 0 {
		return 1
	}
	return c.ViewportW / c.ViewportH
}

// Resize updates viewport dimensions and the projection.
// Calling it again with the same size changes nothing.
func (c *Camera) Resize(viewportW, viewportH float32) {
	if viewportW == c.ViewportW && viewportH == c.ViewportH {
		return
	}
	c.ViewportW = viewportW
	c.ViewportH = viewportH
	c.update()
}

// SetDistance moves the camera along +Z.
func (c *Camera) SetDistance(d float32) {
	if d == c.Distance {
		return
	}
	c.Distance = d
	c.update()
}

// Position returns the eye position in world space.
func (c *Camera) Position() mgl32.Vec3 {
	return mgl32.Vec3{0, 0, c.Distance}
}

// Projection returns the perspective matrix.
func (c *Camera) Projection() mgl32.Mat4 {
	return c.proj
}

// View returns the look-at matrix.
func (c *Camera) View() mgl32.Mat4 {
	return c.view
}

// ViewProjection returns Projection * View.
func (c *Camera) ViewProjection() mgl32.Mat4 {
	return c.viewProj
}

// Project maps a world point to viewport pixels. The point is rejected when
// it lies behind the near plane or beyond the far plane.
func (c *Camera) Project(world mgl32.Vec3) (Projected, bool) {
	clip := c.viewProj.Mul4x1(world.Vec4(1))
	w := clip.W()
	if w < c.Near || w > c.Far {
		return Projected{}, false
	}

	ndcX := clip.X() / w
	ndcY := clip.Y() / w
	tanHalf := float32(math.Tan(float64(mgl32.DegToRad(c.FOV) / 2)))

	return Projected{
		X:     (ndcX + 1) / 2 * c.ViewportW,
		Y:     (1 - ndcY) / 2 * c.ViewportH,
		Depth: w,
		Scale: c.ViewportH / (2 * tanHalf * w),
	}, true
}

// Visible reports whether a projected point with the given pixel radius
// overlaps the viewport.
func (c *Camera) Visible(p Projected, radius float32) bool {
	return p.X >= -radius && p.X <= c.ViewportW+radius &&
		p.Y >= -radius && p.Y <= c.ViewportH+radius
}

func (c *Camera) update() {
	c.proj = mgl32.Perspective(mgl32.DegToRad(c.FOV), c.Aspect(), c.Near, c.Far)
	c.view = mgl32.LookAtV(c.Position(), mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0})
	c.viewProj = c.proj.Mul4(c.view)
}
