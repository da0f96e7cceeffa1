package engine

import (
	"log/slog"
	"math/rand"

	"github.com/pthm-cable/constellation/config"
	"github.com/pthm-cable/constellation/field"
	"github.com/pthm-cable/constellation/telemetry"
)

// newField builds the constellation field, from restore when it carries
// particles. The tick counter resumes from the snapshot.
func (e *Engine) newField(cfg *config.Config, rng *rand.Rand, restore *telemetry.Snapshot) *field.Field {
	params := field.ParamsFromConfig(cfg)
	if restore == nil || len(restore.Particles) == 0 {
		return field.New(params, rng)
	}
	if restore.Range != 0 && restore.Range != params.Range {
		slog.Warn("snapshot range differs from config", "snapshot", restore.Range, "config", params.Range)
	}
	e.tick = restore.Tick
	e.graphCollector.Reset(e.tick)
	slog.Info("restored field", "particles", len(restore.Particles), "tick", restore.Tick)
	return field.NewWithParticles(params, restore.FieldParticles())
}

// Snapshot captures the current field. In rings mode only the header is filled.
func (e *Engine) Snapshot(bookmark *telemetry.Bookmark) *telemetry.Snapshot {
	s := &telemetry.Snapshot{
		Version:  telemetry.SnapshotVersion,
		RNGSeed:  e.seed,
		Mode:     string(e.mode),
		Tick:     e.tick,
		Range:    float32(e.cfg.Field.Range),
		Bookmark: bookmark,
	}
	if e.field != nil {
		s.Particles = telemetry.CaptureParticles(e.field.Particles())
	}
	return s
}

// SaveSnapshot writes the current field to dir and returns the file path.
func (e *Engine) SaveSnapshot(dir string, bookmark *telemetry.Bookmark) (string, error) {
	path, err := telemetry.SaveSnapshot(e.Snapshot(bookmark), dir)
	if err != nil {
		return "", err
	}
	slog.Info("snapshot saved", "path", path, "tick", e.tick)
	return path, nil
}
