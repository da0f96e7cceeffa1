// Package scene owns the rendering context lifecycle.
//
// Bridge is the only component that talks to a Backend. Everything upstream
// hands it plain data: packed positions, edge lists, ring poses and the
// damped pointer snapshot.
package scene

import (
	"errors"
	"image/color"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/constellation/camera"
	"github.com/pthm-cable/constellation/config"
	"github.com/pthm-cable/constellation/field"
	"github.com/pthm-cable/constellation/graph"
	"github.com/pthm-cable/constellation/pointer"
)

var (
	// ErrNoContainer is returned by Mount when the host supplied no mount point.
	ErrNoContainer = errors.New("scene: mount point absent")
	// ErrNoContext is returned by Mount when the backend cannot create a surface.
	ErrNoContext = errors.New("scene: rendering context unavailable")
	// ErrDisposed is returned by Mount after Dispose.
	ErrDisposed = errors.New("scene: bridge disposed")
)

// Surface is a drawing surface created by a Backend.
type Surface interface {
	Size() (w, h int)
}

// Container is the host element a surface is attached to.
type Container interface {
	Viewport() (w, h int)
	AppendChild(s Surface)
	RemoveChild(s Surface)
	Contains(s Surface) bool
}

// Backend is the contract a renderer must satisfy.
//
// CreateSurface allocates the surface and any GPU resources. Release must
// free everything CreateSurface allocated, be safe after a failed
// CreateSurface, and is called at most once per Bridge.
type Backend interface {
	CreateSurface(w, h int) (Surface, error)
	Resize(w, h int)
	Draw(dl *DrawList)
	Release()
}

// Style holds the colours and sizes used for drawing.
type Style struct {
	Background color.RGBA
	Point      color.RGBA
	Line       color.RGBA
	PointSize  float32 // World units
}

// RingStroke is a closed polyline for one ring, in world space before the root transform.
type RingStroke struct {
	Color    color.RGBA
	Vertices []float32 // xyz triples, last vertex connects back to the first
}

// DrawList is everything a backend needs for one frame.
type DrawList struct {
	Camera *camera.Camera
	// Root is the parallax rotation applied to every vertex.
	Root   mgl32.Mat4
	Points []float32 // xyz triples
	Lines  []float32 // two xyz vertices per segment
	Rings  []RingStroke
	Style  Style
	// Pointer is the damped snapshot the root rotation was built from.
	Pointer pointer.Snapshot
}

// Vertex returns the i-th xyz triple of buf.
func Vertex(buf []float32, i int) mgl32.Vec3 {
	return mgl32.Vec3{buf[3*i], buf[3*i+1], buf[3*i+2]}
}

// Transform applies the root transform to a world vertex.
func (dl *DrawList) Transform(v mgl32.Vec3) mgl32.Vec3 {
	return dl.Root.Mul4x1(v.Vec4(1)).Vec3()
}

// Frame is the per-tick input to RenderFrame.
type Frame struct {
	Positions []float32 // xyz triples
	Edges     []graph.Edge
	Rings     []field.RingState
	Pointer   pointer.Snapshot
}

// Options configure a Bridge at construction.
type Options struct {
	FOV, Near, Far float32
	// Distance 0 fits the camera so the field spans Fill of the viewport.
	Distance  float32
	Fill      float32
	HalfRange float32
	// Parallax is radians of root rotation per unit of damped pointer offset.
	Parallax     float32
	RingSegments int
	Style        Style
}

// OptionsFromConfig extracts bridge options from the loaded config.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		FOV:          float32(cfg.Camera.FOV),
		Near:         float32(cfg.Camera.Near),
		Far:          float32(cfg.Camera.Far),
		Distance:     float32(cfg.Camera.Distance),
		Fill:         float32(cfg.Camera.Fill),
		HalfRange:    cfg.Derived.HalfRange,
		Parallax:     float32(cfg.Parallax.Strength),
		RingSegments: 96,
		Style: Style{
			Background: cfg.Derived.Background,
			Point:      cfg.Derived.Point,
			Line:       cfg.Derived.Line,
			PointSize:  float32(cfg.Style.PointSize),
		},
	}
}
