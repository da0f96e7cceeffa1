package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/constellation/field"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds the constellation field state for later restore.
type Snapshot struct {
	Version int    `json:"version"`
	RNGSeed int64  `json:"rng_seed"`
	Mode    string `json:"mode"`
	Tick    int64  `json:"tick"`

	Range     float32         `json:"range"`
	Particles []ParticleState `json:"particles"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// ParticleState holds one particle's position and velocity.
type ParticleState struct {
	X  float32 `json:"x"`
	Y  float32 `json:"y"`
	Z  float32 `json:"z"`
	VX float32 `json:"vx"`
	VY float32 `json:"vy"`
	VZ float32 `json:"vz"`
}

// CaptureParticles converts live particles to their saved form.
func CaptureParticles(particles []field.Particle) []ParticleState {
	out := make([]ParticleState, len(particles))
	for i, p := range particles {
		out[i] = ParticleState{
			X: p.Position[0], Y: p.Position[1], Z: p.Position[2],
			VX: p.Velocity[0], VY: p.Velocity[1], VZ: p.Velocity[2],
		}
	}
	return out
}

// FieldParticles converts saved particles back to field particles.
func (s *Snapshot) FieldParticles() []field.Particle {
	out := make([]field.Particle, len(s.Particles))
	for i, p := range s.Particles {
		out[i] = field.Particle{
			Position: mgl32.Vec3{p.X, p.Y, p.Z},
			Velocity: mgl32.Vec3{p.VX, p.VY, p.VZ},
		}
	}
	return out
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := fmt.Sprintf("snapshot_%d", snapshot.Tick)
	if snapshot.Bookmark != nil {
		name = fmt.Sprintf("snapshot_%d_%s", snapshot.Tick, snapshot.Bookmark.Type)
	}
	path := filepath.Join(dir, name+".json")

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}

// LoadSnapshot reads a snapshot from disk and checks its version.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", snapshot.Version, SnapshotVersion)
	}
	return &snapshot, nil
}
