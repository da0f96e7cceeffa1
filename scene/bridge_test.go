package scene

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/constellation/field"
	"github.com/pthm-cable/constellation/graph"
	"github.com/pthm-cable/constellation/pointer"
)

type fakeSurface struct{ w, h int }

func (s *fakeSurface) Size() (int, int) { return s.w, s.h }

type fakeContainer struct {
	w, h     int
	children []Surface
}

func (c *fakeContainer) Viewport() (int, int) { return c.w, c.h }
func (c *fakeContainer) AppendChild(s Surface) {
	c.children = append(c.children, s)
}
func (c *fakeContainer) RemoveChild(s Surface) {
	for i, child := range c.children {
		if child == s {
			c.children = append(c.children[:i], c.children[i+1:]...)
			return
		}
	}
}
func (c *fakeContainer) Contains(s Surface) bool {
	for _, child := range c.children {
		if child == s {
			return true
		}
	}
	return false
}

// recorder is a Backend that keeps copies of what it was asked to draw.
type recorder struct {
	failCreate error
	created    int
	resizes    [][2]int
	draws      int
	released   int
	last       DrawList
	lastLines  []float32
}

func (r *recorder) CreateSurface(w, h int) (Surface, error) {
	r.created++
	if r.failCreate != nil {
		return nil, r.failCreate
	}
	return &fakeSurface{w: w, h: h}, nil
}
func (r *recorder) Resize(w, h int) { r.resizes = append(r.resizes, [2]int{w, h}) }
func (r *recorder) Draw(dl *DrawList) {
	r.draws++
	r.last = *dl
	r.lastLines = append(r.lastLines[:0], dl.Lines...)
}
func (r *recorder) Release() { r.released++ }

func testOptions() Options {
	return Options{FOV: 60, Near: 0.1, Far: 100, Distance: 5, Fill: 0.85, HalfRange: 6, Parallax: 0.1}
}

func mounted(t *testing.T) (*Bridge, *recorder, *fakeContainer) {
	t.Helper()
	rec := &recorder{}
	c := &fakeContainer{w: 1280, h: 720}
	b := NewBridge(rec, testOptions())
	if err := b.Mount(c); err != nil {
		t.Fatalf("mount: %v", err)
	}
	return b, rec, c
}

func TestMountAttachesSurface(t *testing.T) {
	b, rec, c := mounted(t)

	if rec.created != 1 {
		t.Errorf("expected one surface, got %d", rec.created)
	}
	if len(c.children) != 1 {
		t.Fatalf("expected surface appended to container, got %d children", len(c.children))
	}
	if w, h := c.children[0].Size(); w != 1280 || h != 720 {
		t.Errorf("expected surface sized 1280x720, got %dx%d", w, h)
	}
	if b.Camera().Distance != 5 {
		t.Errorf("expected configured distance 5, got %f", b.Camera().Distance)
	}

	// Second mount is a no-op
	if err := b.Mount(c); err != nil {
		t.Errorf("expected remount to succeed, got %v", err)
	}
	if rec.created != 1 {
		t.Errorf("expected no new surface on remount, got %d", rec.created)
	}
}

func TestMountWithoutContainerIsInert(t *testing.T) {
	rec := &recorder{}
	b := NewBridge(rec, testOptions())

	err := b.Mount(nil)
	if !errors.Is(err, ErrNoContainer) {
		t.Fatalf("expected ErrNoContainer, got %v", err)
	}

	b.RenderFrame(Frame{Positions: []float32{0, 0, 0}})
	b.Resize(800, 600)
	b.Dispose()
	b.Dispose()

	if rec.created != 0 || rec.draws != 0 || len(rec.resizes) != 0 {
		t.Errorf("expected inert bridge, got created=%d draws=%d resizes=%d", rec.created, rec.draws, len(rec.resizes))
	}
	if rec.released != 0 {
		t.Errorf("expected no release without a mount attempt, got %d", rec.released)
	}
}

func TestMountNilPointerContainerIsInert(t *testing.T) {
	rec := &recorder{}
	b := NewBridge(rec, testOptions())

	var c *fakeContainer
	err := b.Mount(c)
	if !errors.Is(err, ErrNoContainer) {
		t.Fatalf("expected ErrNoContainer, got %v", err)
	}

	b.RenderFrame(Frame{Positions: []float32{0, 0, 0}})
	b.Dispose()

	if rec.created != 0 || rec.draws != 0 || rec.released != 0 {
		t.Errorf("expected inert bridge, got created=%d draws=%d released=%d", rec.created, rec.draws, rec.released)
	}
}

func TestMountContextFailureIsInert(t *testing.T) {
	rec := &recorder{failCreate: errors.New("no gl")}
	c := &fakeContainer{w: 800, h: 600}
	b := NewBridge(rec, testOptions())

	err := b.Mount(c)
	if !errors.Is(err, ErrNoContext) {
		t.Fatalf("expected ErrNoContext, got %v", err)
	}
	if len(c.children) != 0 {
		t.Errorf("expected nothing attached, got %d children", len(c.children))
	}

	b.RenderFrame(Frame{})
	if rec.draws != 0 {
		t.Errorf("expected no draws, got %d", rec.draws)
	}

	// Partial mount still releases whatever the backend allocated
	b.Dispose()
	b.Dispose()
	if rec.released != 1 {
		t.Errorf("expected exactly one release, got %d", rec.released)
	}
}

func TestRenderFrameBuildsLinesFromEdges(t *testing.T) {
	b, rec, _ := mounted(t)

	positions := []float32{
		0, 0, 0,
		1, 2, 3,
		4, 5, 6,
	}
	edges := []graph.Edge{{I: 0, J: 1}, {I: 1, J: 2}}
	b.RenderFrame(Frame{Positions: positions, Edges: edges})

	if rec.draws != 1 {
		t.Fatalf("expected one draw, got %d", rec.draws)
	}
	if len(rec.last.Points) != 9 {
		t.Errorf("expected 9 point floats, got %d", len(rec.last.Points))
	}
	want := []float32{0, 0, 0, 1, 2, 3, 1, 2, 3, 4, 5, 6}
	if len(rec.lastLines) != len(want) {
		t.Fatalf("expected %d line floats, got %d", len(want), len(rec.lastLines))
	}
	for i := range want {
		if rec.lastLines[i] != want[i] {
			t.Errorf("line float %d: expected %f, got %f", i, want[i], rec.lastLines[i])
		}
	}
}

func TestRenderFrameReplacesLines(t *testing.T) {
	b, rec, _ := mounted(t)
	positions := []float32{0, 0, 0, 1, 0, 0, 2, 0, 0}

	b.RenderFrame(Frame{Positions: positions, Edges: []graph.Edge{{I: 0, J: 1}, {I: 1, J: 2}}})
	first := rec.last.Lines
	b.RenderFrame(Frame{Positions: positions, Edges: []graph.Edge{{I: 0, J: 2}}})
	second := rec.last.Lines

	if len(second) != 6 {
		t.Errorf("expected previous tick's lines discarded, got %d floats", len(second))
	}
	if &first[0] == &second[0] {
		t.Error("expected consecutive frames to write alternate line buffers")
	}
}

func TestRenderFrameSkipsOutOfRangeEdges(t *testing.T) {
	b, rec, _ := mounted(t)

	b.RenderFrame(Frame{Positions: []float32{0, 0, 0, 1, 1, 1}, Edges: []graph.Edge{{I: 0, J: 1}, {I: 1, J: 5}}})
	if len(rec.lastLines) != 6 {
		t.Errorf("expected only the valid edge, got %d floats", len(rec.lastLines))
	}
}

func TestParallaxFollowsPointer(t *testing.T) {
	b, rec, _ := mounted(t)

	b.RenderFrame(Frame{Pointer: pointer.Idle})
	if rec.last.Root != mgl32.Ident4() {
		t.Error("expected identity root before any pointer input")
	}

	b.RenderFrame(Frame{Pointer: pointer.Snapshot{X: 0.5, Y: 0, Active: true}})
	if !rec.last.Pointer.Active || rec.last.Pointer.X != 0.5 {
		t.Errorf("expected pointer passed to the backend, got %+v", rec.last.Pointer)
	}
	moved := rec.last.Transform(mgl32.Vec3{0, 0, 1})
	// Rotation about +Y by a positive angle swings +Z toward +X
	if moved.X() <= 0 {
		t.Errorf("expected root rotated toward pointer, got %v", moved)
	}

	b.RenderFrame(Frame{Pointer: pointer.Snapshot{X: 0, Y: 0, Active: true}})
	if rec.last.Root != mgl32.Ident4() {
		t.Error("expected identity root with a centred pointer")
	}
}

func TestRenderFrameTessellatesRings(t *testing.T) {
	b, rec, _ := mounted(t)

	rings := []field.RingState{
		{Radius: 1},
		{Radius: 2, Rotation: mgl32.Vec3{1.5707964, 0, 0}},
	}
	b.RenderFrame(Frame{Rings: rings})

	if len(rec.last.Rings) != 2 {
		t.Fatalf("expected 2 ring strokes, got %d", len(rec.last.Rings))
	}
	flat := rec.last.Rings[0]
	if len(flat.Vertices) != 96*3 {
		t.Errorf("expected 96 vertices, got %d floats", len(flat.Vertices))
	}
	for i := 0; i < len(flat.Vertices)/3; i++ {
		v := Vertex(flat.Vertices, i)
		if d := v.Len() - 1; d > 1e-5 || d < -1e-5 {
			t.Fatalf("vertex %d off radius: %v", i, v)
		}
		if v.Z() != 0 {
			t.Fatalf("unrotated ring vertex %d left its plane: %v", i, v)
		}
	}

	// Quarter turn about X moves the ring into the XZ plane
	tilted := rec.last.Rings[1]
	for i := 0; i < len(tilted.Vertices)/3; i++ {
		if y := Vertex(tilted.Vertices, i).Y(); y > 1e-4 || y < -1e-4 {
			t.Fatalf("tilted ring vertex %d has y %f", i, y)
		}
	}
}

func TestResizeIdempotent(t *testing.T) {
	b, rec, _ := mounted(t)

	b.Resize(1024, 768)
	once := *b.Camera()
	b.Resize(1024, 768)

	if *b.Camera() != once {
		t.Error("expected repeated resize to leave the camera unchanged")
	}
	if len(rec.resizes) != 1 {
		t.Errorf("expected one backend resize, got %d", len(rec.resizes))
	}
}

func TestResizeKeepsFrameState(t *testing.T) {
	b, rec, _ := mounted(t)
	positions := []float32{0, 0, 0, 1, 0, 0}
	b.RenderFrame(Frame{Positions: positions, Edges: []graph.Edge{{I: 0, J: 1}}})

	b.Resize(640, 480)
	if len(rec.last.Lines) != 6 || len(rec.last.Points) != 6 {
		t.Error("expected resize not to reset uploaded buffers")
	}
}

func TestFitDistanceWhenUnset(t *testing.T) {
	rec := &recorder{}
	opts := testOptions()
	opts.Distance = 0
	b := NewBridge(rec, opts)
	if err := b.Mount(&fakeContainer{w: 1000, h: 1000}); err != nil {
		t.Fatal(err)
	}

	landscape := b.Camera().Distance
	if landscape <= opts.HalfRange {
		t.Errorf("expected fitted distance beyond the cube, got %f", landscape)
	}

	b.Resize(500, 1000)
	if b.Camera().Distance <= landscape {
		t.Errorf("expected portrait viewport to pull the camera back, got %f", b.Camera().Distance)
	}
}

func TestDisposeIdempotent(t *testing.T) {
	b, rec, c := mounted(t)

	b.Dispose()
	b.Dispose()

	if rec.released != 1 {
		t.Errorf("expected one release, got %d", rec.released)
	}
	if len(c.children) != 0 {
		t.Errorf("expected surface detached, got %d children", len(c.children))
	}

	// Late frame callbacks are silent and do not recreate resources
	b.RenderFrame(Frame{Positions: []float32{0, 0, 0}})
	b.Resize(10, 10)
	if rec.draws != 0 || rec.created != 1 {
		t.Errorf("expected no work after dispose, got draws=%d created=%d", rec.draws, rec.created)
	}
	if err := b.Mount(c); !errors.Is(err, ErrDisposed) {
		t.Errorf("expected ErrDisposed on mount after dispose, got %v", err)
	}
}
