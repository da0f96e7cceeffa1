package scene

import (
	"fmt"
	"math"
	"reflect"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/constellation/camera"
	"github.com/pthm-cable/constellation/field"
	"github.com/pthm-cable/constellation/graph"
	"github.com/pthm-cable/constellation/pointer"
)

// Bridge owns the backend, its surface and the buffers uploaded each frame.
// It is not safe for concurrent use; all calls belong to the frame goroutine.
type Bridge struct {
	backend Backend
	opts    Options

	container Container
	surface   Surface
	cam       *camera.Camera

	points []float32
	lines  [2][]float32
	front  int
	rings  []RingStroke
	dl     DrawList

	attempted bool
	mounted   bool
	disposed  bool
}

// NewBridge creates an unmounted bridge.
func NewBridge(backend Backend, opts Options) *Bridge {
	if opts.RingSegments < 3 {
		opts.RingSegments = 96
	}
	return &Bridge{backend: backend, opts: opts}
}

// Mount creates the surface sized to the container viewport and attaches it.
// On error the bridge stays inert: RenderFrame and Resize do nothing.
func (b *Bridge) Mount(c Container) error {
	if b.disposed {
		return ErrDisposed
	}
	if b.mounted {
		return nil
	}
	if absent(c) {
		return ErrNoContainer
	}
	if b.backend == nil {
		return fmt.Errorf("%w: no backend", ErrNoContext)
	}

	w, h := c.Viewport()
	b.attempted = true
	s, err := b.backend.CreateSurface(w, h)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNoContext, err)
	}

	b.container = c
	b.surface = s
	c.AppendChild(s)

	b.cam = camera.New(float32(w), float32(h), b.opts.FOV, b.opts.Near, b.opts.Far, b.opts.Distance)
	b.fitCamera()
	b.mounted = true
	return nil
}

// absent reports a nil container, including a nil pointer held in the interface.
func absent(c Container) bool {
	if c == nil {
		return true
	}
	v := reflect.ValueOf(c)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}

// Mounted reports whether Mount succeeded and Dispose has not run.
func (b *Bridge) Mounted() bool {
	return b.mounted && !b.disposed
}

// Camera returns the camera, or nil before a successful mount.
func (b *Bridge) Camera() *camera.Camera {
	return b.cam
}

// RenderFrame uploads the frame's buffers and issues one draw.
func (b *Bridge) RenderFrame(f Frame) {
	if !b.Mounted() {
		return
	}

	b.points = append(b.points[:0], f.Positions...)

	// Rebuild lines into the back buffer, then swap
	back := 1 - b.front
	b.lines[back] = appendEdgeVertices(b.lines[back][:0], f.Positions, f.Edges)
	b.front = back

	b.rings = tessellateRings(b.rings, f.Rings, b.opts.RingSegments)

	b.dl = DrawList{
		Camera: b.cam,
		Root:   parallax(f.Pointer, b.opts.Parallax),
		Points: b.points,
		Lines:  b.lines[b.front],
		Rings:  b.rings,
		Style:  b.opts.Style,

		Pointer: f.Pointer,
	}
	b.backend.Draw(&b.dl)
}

// Resize matches the camera and surface to a new viewport. Particle and edge
// state are untouched; repeating the same size is a no-op.
func (b *Bridge) Resize(w, h int) {
	if !b.Mounted() {
		return
	}
	if float32(w) == b.cam.ViewportW && float32(h) == b.cam.ViewportH {
		return
	}
	b.cam.Resize(float32(w), float32(h))
	b.fitCamera()
	b.backend.Resize(w, h)
}

// Dispose releases backend resources and detaches the surface. It is
// idempotent and safe after a failed or missing mount.
func (b *Bridge) Dispose() {
	if b.disposed {
		return
	}
	b.disposed = true

	if b.attempted && b.backend != nil {
		b.backend.Release()
	}
	if b.container != nil && b.surface != nil && b.container.Contains(b.surface) {
		b.container.RemoveChild(b.surface)
	}

	b.points = nil
	b.lines = [2][]float32{}
	b.rings = nil
	b.dl = DrawList{}
}

// fitCamera recomputes the camera distance when it was not fixed by config.
func (b *Bridge) fitCamera() {
	if b.opts.Distance > 0 {
		return
	}
	b.cam.SetDistance(camera.FitDistance(b.opts.HalfRange, b.opts.FOV, b.cam.Aspect(), b.opts.Fill))
}

// appendEdgeVertices writes both endpoints of every edge. Edges that index
// past the position buffer are skipped.
func appendEdgeVertices(dst, positions []float32, edges []graph.Edge) []float32 {
	n := len(positions) / 3
	for _, e := range edges {
		if e.I < 0 || e.J < 0 || e.I >= n || e.J >= n {
			continue
		}
		i, j := 3*e.I, 3*e.J
		dst = append(dst,
			positions[i], positions[i+1], positions[i+2],
			positions[j], positions[j+1], positions[j+2],
		)
	}
	return dst
}

// tessellateRings turns ring poses into closed polylines, reusing dst's vertex slices.
func tessellateRings(dst []RingStroke, rings []field.RingState, segments int) []RingStroke {
	for len(dst) < len(rings) {
		dst = append(dst, RingStroke{})
	}
	dst = dst[:len(rings)]

	for i, ring := range rings {
		rot := ringRotation(ring.Rotation)
		verts := dst[i].Vertices[:0]
		for s := 0; s < segments; s++ {
			theta := 2 * math.Pi * float64(s) / float64(segments)
			local := mgl32.Vec4{
				ring.Radius * float32(math.Cos(theta)),
				ring.Radius * float32(math.Sin(theta)),
				0, 1,
			}
			v := rot.Mul4x1(local)
			verts = append(verts, v.X(), v.Y(), v.Z())
		}
		dst[i] = RingStroke{Color: ring.Color, Vertices: verts}
	}
	return dst
}

// ringRotation applies X, then Y, then Z.
func ringRotation(r mgl32.Vec3) mgl32.Mat4 {
	return mgl32.HomogRotate3DZ(r[2]).
		Mul4(mgl32.HomogRotate3DY(r[1])).
		Mul4(mgl32.HomogRotate3DX(r[0]))
}

// parallax tilts the scene root toward the damped pointer.
func parallax(snap pointer.Snapshot, strength float32) mgl32.Mat4 {
	if !snap.Active || strength == 0 {
		return mgl32.Ident4()
	}
	return mgl32.HomogRotate3DY(snap.X * strength).
		Mul4(mgl32.HomogRotate3DX(-snap.Y * strength))
}
