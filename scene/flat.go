package scene

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
)

// FlatLine is a projected segment in viewport pixels.
type FlatLine struct {
	X0, Y0, X1, Y1 float32
	Color          color.RGBA
}

// FlatPoint is a projected point sprite in viewport pixels.
type FlatPoint struct {
	X, Y, Radius float32
	Color        color.RGBA
}

// Flat is a draw list projected to 2D for backends without a 3D pipeline.
// Buffers are reused between frames.
type Flat struct {
	Background color.RGBA
	Width      float32
	Height     float32
	Lines      []FlatLine
	Points     []FlatPoint
}

// Build projects dl through its root transform and camera. Segments with an
// endpoint outside the clip range are dropped; points off screen are culled.
func (f *Flat) Build(dl *DrawList) {
	f.Lines = f.Lines[:0]
	f.Points = f.Points[:0]
	if dl == nil || dl.Camera == nil {
		return
	}
	cam := dl.Camera
	f.Background = dl.Style.Background
	f.Width, f.Height = cam.ViewportW, cam.ViewportH

	for k := 0; k+1 < len(dl.Lines)/3; k += 2 {
		f.addLine(dl, Vertex(dl.Lines, k), Vertex(dl.Lines, k+1), dl.Style.Line)
	}

	for _, ring := range dl.Rings {
		n := len(ring.Vertices) / 3
		for k := 0; k < n; k++ {
			f.addLine(dl, Vertex(ring.Vertices, k), Vertex(ring.Vertices, (k+1)%n), ring.Color)
		}
	}

	half := dl.Style.PointSize / 2
	for k := 0; k < len(dl.Points)/3; k++ {
		p, ok := cam.Project(dl.Transform(Vertex(dl.Points, k)))
		if !ok {
			continue
		}
		r := half * p.Scale
		if r < 0.5 {
			r = 0.5
		}
		if !cam.Visible(p, r) {
			continue
		}
		f.Points = append(f.Points, FlatPoint{X: p.X, Y: p.Y, Radius: r, Color: dl.Style.Point})
	}
}

func (f *Flat) addLine(dl *DrawList, a, b mgl32.Vec3, c color.RGBA) {
	pa, ok := dl.Camera.Project(dl.Transform(a))
	if !ok {
		return
	}
	pb, ok := dl.Camera.Project(dl.Transform(b))
	if !ok {
		return
	}
	f.Lines = append(f.Lines, FlatLine{X0: pa.X, Y0: pa.Y, X1: pb.X, Y1: pb.Y, Color: c})
}
