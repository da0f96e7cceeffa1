package scene

import (
	"image/color"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/constellation/camera"
)

func testDrawList() *DrawList {
	return &DrawList{
		Camera: camera.New(200, 100, 60, 0.1, 100, 5),
		Root:   mgl32.Ident4(),
		Style: Style{
			Background: color.RGBA{R: 2, G: 6, B: 23, A: 255},
			Point:      color.RGBA{R: 56, G: 189, B: 248, A: 230},
			Line:       color.RGBA{R: 129, G: 140, B: 248, A: 89},
			PointSize:  0.12,
		},
	}
}

func TestFlatProjectsCentre(t *testing.T) {
	dl := testDrawList()
	dl.Points = []float32{0, 0, 0}
	dl.Lines = []float32{0, 0, 0, 1, 0, 0}

	var f Flat
	f.Build(dl)

	if len(f.Points) != 1 {
		t.Fatalf("expected 1 point, got %d", len(f.Points))
	}
	p := f.Points[0]
	if absf32(p.X-100) > 1e-3 || absf32(p.Y-50) > 1e-3 {
		t.Errorf("expected origin at (100, 50), got (%f, %f)", p.X, p.Y)
	}
	if p.Radius <= 0 {
		t.Errorf("expected positive radius, got %f", p.Radius)
	}

	if len(f.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(f.Lines))
	}
	if f.Lines[0].X1 <= f.Lines[0].X0 {
		t.Errorf("expected +x endpoint right of origin, got %+v", f.Lines[0])
	}
	if f.Lines[0].Color != dl.Style.Line {
		t.Errorf("expected line colour from style, got %v", f.Lines[0].Color)
	}
}

func TestFlatCullsBehindCamera(t *testing.T) {
	dl := testDrawList()
	dl.Points = []float32{0, 0, 10}
	dl.Lines = []float32{0, 0, 0, 0, 0, 10}

	var f Flat
	f.Build(dl)

	if len(f.Points) != 0 {
		t.Errorf("expected point behind camera culled, got %d", len(f.Points))
	}
	if len(f.Lines) != 0 {
		t.Errorf("expected segment crossing the eye dropped, got %d", len(f.Lines))
	}
}

func TestFlatClosesRings(t *testing.T) {
	dl := testDrawList()
	dl.Rings = []RingStroke{{
		Color:    color.RGBA{R: 255, A: 255},
		Vertices: []float32{1, 0, 0, 0, 1, 0, -1, 0, 0, 0, -1, 0},
	}}

	var f Flat
	f.Build(dl)

	if len(f.Lines) != 4 {
		t.Fatalf("expected 4 ring segments, got %d", len(f.Lines))
	}
	last := f.Lines[3]
	first := f.Lines[0]
	if last.X1 != first.X0 || last.Y1 != first.Y0 {
		t.Error("expected last segment to close the ring")
	}
}

func TestFlatAppliesRoot(t *testing.T) {
	dl := testDrawList()
	dl.Points = []float32{1, 0, 0}
	dl.Root = mgl32.HomogRotate3DZ(mgl32.DegToRad(90))

	var f Flat
	f.Build(dl)

	if len(f.Points) != 1 {
		t.Fatalf("expected 1 point, got %d", len(f.Points))
	}
	// +x rotated onto +y lands above centre
	if f.Points[0].Y >= 50 || absf32(f.Points[0].X-100) > 1e-2 {
		t.Errorf("expected point above centre, got (%f, %f)", f.Points[0].X, f.Points[0].Y)
	}
}

func TestFlatNilCamera(t *testing.T) {
	var f Flat
	f.Lines = append(f.Lines, FlatLine{})
	f.Build(&DrawList{Points: []float32{0, 0, 0}})
	if len(f.Lines) != 0 || len(f.Points) != 0 {
		t.Error("expected empty output without a camera")
	}
}

func absf32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
