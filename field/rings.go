package field

import (
	"image/color"
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/mlange-42/ark/ecs"
	"github.com/ojrac/opensimplex-go"

	"github.com/pthm-cable/constellation/components"
	"github.com/pthm-cable/constellation/config"
	"github.com/pthm-cable/constellation/pointer"
)

// driftFrequency scales the tick counter into noise time.
const driftFrequency = 0.004

// RingState is the render-facing view of one ring.
type RingState struct {
	Radius   float32
	Rotation mgl32.Vec3
	Color    color.RGBA
}

// RingParams are the tuning knobs of the rings mode.
type RingParams struct {
	Count        int
	BaseRadius   float32
	Spacing      float32
	Spin         float32
	AmbientCount int
	Drift        float32
	Range        float32
	MaxSpeed     float32
}

// RingParamsFromConfig extracts rings-mode parameters from the loaded config.
func RingParamsFromConfig(cfg *config.Config) RingParams {
	return RingParams{
		Count:        cfg.Rings.Count,
		BaseRadius:   float32(cfg.Rings.BaseRadius),
		Spacing:      float32(cfg.Rings.Spacing),
		Spin:         float32(cfg.Rings.Spin),
		AmbientCount: cfg.Rings.AmbientCount,
		Drift:        float32(cfg.Rings.Drift),
		Range:        float32(cfg.Field.Range),
		MaxSpeed:     float32(cfg.Field.MaxSpeed),
	}
}

// RingField is the rings-mode variant: nested rotating rings plus ambient
// drifting points. It reacts to the pointer only through scene parallax.
type RingField struct {
	world *ecs.World

	ringMapper  *ecs.Map3[components.Ring, components.Rotation, components.Spin]
	ringFilter  *ecs.Filter3[components.Ring, components.Rotation, components.Spin]
	pointMapper *ecs.Map3[components.Position, components.Velocity, components.Drift]
	pointFilter *ecs.Filter3[components.Position, components.Velocity, components.Drift]

	noise opensimplex.Noise
	half  float32
	drift float32
	tick  int64
}

// NewRings creates the ring entities and ambient points. Ring colours cycle
// through palette; an empty palette leaves them zero.
func NewRings(p RingParams, palette []color.RGBA, rng *rand.Rand) *RingField {
	world := ecs.NewWorld()

	r := &RingField{
		world:       world,
		ringMapper:  ecs.NewMap3[components.Ring, components.Rotation, components.Spin](world),
		ringFilter:  ecs.NewFilter3[components.Ring, components.Rotation, components.Spin](world),
		pointMapper: ecs.NewMap3[components.Position, components.Velocity, components.Drift](world),
		pointFilter: ecs.NewFilter3[components.Position, components.Velocity, components.Drift](world),
		noise:       opensimplex.New(rng.Int63()),
		half:        p.Range / 2,
		drift:       p.Drift,
	}

	for i := 0; i < p.Count; i++ {
		ring := components.Ring{Radius: p.BaseRadius + float32(i)*p.Spacing}
		if len(palette) > 0 {
			ring.Color = palette[i%len(palette)]
		}
		// Alternate spin direction so neighbouring rings counter-rotate.
		sign := float32(1)
		if i%2 == 1 {
			sign = -1
		}
		factor := 1 + float32(i)*0.35
		rot := components.Rotation{
			X: rng.Float32() * 2 * math.Pi,
			Y: rng.Float32() * 2 * math.Pi,
		}
		spin := components.Spin{
			X: sign * p.Spin * factor,
			Y: sign * p.Spin * factor * 0.6,
			Z: p.Spin * 0.25,
		}
		r.ringMapper.NewEntity(&ring, &rot, &spin)
	}

	for i := 0; i < p.AmbientCount; i++ {
		pos := components.Position{
			X: (rng.Float32() - 0.5) * p.Range,
			Y: (rng.Float32() - 0.5) * p.Range,
			Z: (rng.Float32() - 0.5) * p.Range,
		}
		vel := components.Velocity{
			X: (rng.Float32() - 0.5) * p.MaxSpeed,
			Y: (rng.Float32() - 0.5) * p.MaxSpeed,
			Z: (rng.Float32() - 0.5) * p.MaxSpeed,
		}
		drift := components.Drift{Phase: rng.Float64() * 1000}
		r.pointMapper.NewEntity(&pos, &vel, &drift)
	}

	return r
}

// Integrate spins every ring and moves the ambient points. The snapshot is
// accepted for symmetry with Field; rings mode has no pointer push.
func (r *RingField) Integrate(_ pointer.Snapshot) {
	r.tick++

	rings := r.ringFilter.Query()
	for rings.Next() {
		_, rot, spin := rings.Get()
		rot.X = wrapAngle(rot.X + spin.X)
		rot.Y = wrapAngle(rot.Y + spin.Y)
		rot.Z = wrapAngle(rot.Z + spin.Z)
	}

	t := float64(r.tick) * driftFrequency
	points := r.pointFilter.Query()
	for points.Next() {
		pos, vel, drift := points.Get()

		vel.X = reflect(pos.X, vel.X, r.half)
		vel.Y = reflect(pos.Y, vel.Y, r.half)
		vel.Z = reflect(pos.Z, vel.Z, r.half)

		pos.X += vel.X + r.drift*float32(r.noise.Eval2(drift.Phase, t))
		pos.Y += vel.Y + r.drift*float32(r.noise.Eval2(drift.Phase+97, t))
		pos.Z += vel.Z

		// Drift must not carry a point through a wall.
		pos.X = clampOutward(pos.X, r.half+absf(vel.X))
		pos.Y = clampOutward(pos.Y, r.half+absf(vel.Y))
	}
}

// Rings appends the state of every ring to dst[:0], in creation order.
func (r *RingField) Rings(dst []RingState) []RingState {
	dst = dst[:0]
	query := r.ringFilter.Query()
	for query.Next() {
		ring, rot, _ := query.Get()
		dst = append(dst, RingState{
			Radius:   ring.Radius,
			Rotation: mgl32.Vec3{rot.X, rot.Y, rot.Z},
			Color:    ring.Color,
		})
	}
	return dst
}

// Positions appends xyz triples for every ambient point to dst[:0].
func (r *RingField) Positions(dst []float32) []float32 {
	dst = dst[:0]
	query := r.pointFilter.Query()
	for query.Next() {
		pos, _, _ := query.Get()
		dst = append(dst, pos.X, pos.Y, pos.Z)
	}
	return dst
}

// HalfRange returns half the cube side the ambient points live in.
func (r *RingField) HalfRange() float32 {
	return r.half
}

func wrapAngle(a float32) float32 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

func clampOutward(x, limit float32) float32 {
	if x > limit {
		return limit
	}
	if x < -limit {
		return -limit
	}
	return x
}
