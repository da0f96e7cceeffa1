// Package field owns particle state and advances it each tick.
//
// Nothing here knows about rendering: the engine hands positions to the scene
// bridge as plain float32 triples.
package field

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/constellation/config"
	"github.com/pthm-cable/constellation/pointer"
)

// Particle is one point of the field. Its identity is its index.
type Particle struct {
	Position mgl32.Vec3
	Velocity mgl32.Vec3
}

// Params are the tuning knobs of a particle field, fixed at construction.
type Params struct {
	Count           int
	Range           float32 // Side of the bounding cube centred at origin
	MaxSpeed        float32 // Width of the per-axis initial velocity interval
	InfluenceRadius float32
	Push            float32
	WorldScale      float32
	Epsilon         float32
}

// ParamsFromConfig extracts field parameters from the loaded config.
func ParamsFromConfig(cfg *config.Config) Params {
	return Params{
		Count:           cfg.Field.Count,
		Range:           float32(cfg.Field.Range),
		MaxSpeed:        float32(cfg.Field.MaxSpeed),
		InfluenceRadius: float32(cfg.Pointer.InfluenceRadius),
		Push:            float32(cfg.Pointer.Push),
		WorldScale:      float32(cfg.Pointer.WorldScale),
		Epsilon:         float32(cfg.Pointer.Epsilon),
	}
}

// Field is the constellation-mode particle field.
type Field struct {
	params    Params
	half      float32
	particles []Particle
}

// New creates a field with randomized positions inside the cube and
// randomized velocities in [-MaxSpeed/2, MaxSpeed/2] per axis.
func New(p Params, rng *rand.Rand) *Field {
	particles := make([]Particle, p.Count)
	for i := range particles {
		particles[i] = Particle{
			Position: mgl32.Vec3{
				(rng.Float32() - 0.5) * p.Range,
				(rng.Float32() - 0.5) * p.Range,
				(rng.Float32() - 0.5) * p.Range,
			},
			Velocity: mgl32.Vec3{
				(rng.Float32() - 0.5) * p.MaxSpeed,
				(rng.Float32() - 0.5) * p.MaxSpeed,
				(rng.Float32() - 0.5) * p.MaxSpeed,
			},
		}
	}
	return &Field{params: p, half: p.Range / 2, particles: particles}
}

// NewWithParticles creates a field from explicit particle state. The slice is copied.
func NewWithParticles(p Params, particles []Particle) *Field {
	p.Count = len(particles)
	own := make([]Particle, len(particles))
	copy(own, particles)
	return &Field{params: p, half: p.Range / 2, particles: own}
}

// Integrate advances every particle by one frame.
//
// Per particle: reflect velocity on any axis already past the cube, move by
// velocity, then push away from the pointer when it is within the influence
// radius. Positions are never clamped, so a particle can sit outside the cube
// by at most one velocity step.
func (f *Field) Integrate(snap pointer.Snapshot) {
	mouse := mgl32.Vec3{snap.X * f.params.WorldScale, snap.Y * f.params.WorldScale, 0}

	for i := range f.particles {
		p := &f.particles[i]

		for axis := 0; axis < 3; axis++ {
			p.Velocity[axis] = reflect(p.Position[axis], p.Velocity[axis], f.half)
		}

		p.Position = p.Position.Add(p.Velocity)

		if snap.Active {
			f.push(p, mouse)
		}
	}
}

// push moves p away from mouse in the XY plane with linear falloff.
func (f *Field) push(p *Particle, mouse mgl32.Vec3) {
	delta := p.Position.Sub(mouse)
	d := delta.Len()
	if d >= f.params.InfluenceRadius || d <= f.params.Epsilon {
		return
	}

	force := (f.params.InfluenceRadius - d) * f.params.Push
	dir := delta.Mul(1 / d)

	// The push never carries a particle past a wall; reflection owns the bounds.
	p.Position[0] = pushAxis(p.Position[0], dir[0]*force, f.half)
	p.Position[1] = pushAxis(p.Position[1], dir[1]*force, f.half)
}

// Particles returns the live particle slice. Callers must not retain it across ticks.
func (f *Field) Particles() []Particle {
	return f.particles
}

// Positions appends xyz triples for every particle to dst[:0].
func (f *Field) Positions(dst []float32) []float32 {
	dst = dst[:0]
	for i := range f.particles {
		pos := f.particles[i].Position
		dst = append(dst, pos[0], pos[1], pos[2])
	}
	return dst
}

// Len returns the particle count.
func (f *Field) Len() int {
	return len(f.particles)
}

// HalfRange returns half the cube side.
func (f *Field) HalfRange() float32 {
	return f.half
}

// MaxVelocity returns the largest per-axis velocity magnitude in the field.
// Reflection preserves magnitudes, so this is constant over the field's life.
func (f *Field) MaxVelocity() float32 {
	var m float32
	for i := range f.particles {
		for axis := 0; axis < 3; axis++ {
			if v := absf(f.particles[i].Velocity[axis]); v > m {
				m = v
			}
		}
	}
	return m
}

// reflect points v back toward the interior when pos is outside [-half, half].
func reflect(pos, v, half float32) float32 {
	if pos > half && v > 0 {
		return -v
	}
	if pos < -half && v < 0 {
		return -v
	}
	return v
}

// pushAxis applies delta to pos unless that takes it further outside [-half, half].
func pushAxis(pos, delta, half float32) float32 {
	next := pos + delta
	limit := half
	if a := absf(pos); a > limit {
		limit = a
	}
	if next > limit {
		return limit
	}
	if next < -limit {
		return -limit
	}
	return next
}

func absf(x float32) float32 {
	return float32(math.Abs(float64(x)))
}
