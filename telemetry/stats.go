package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated proximity graph statistics for a window of ticks.
type WindowStats struct {
	WindowStartTick int64 `csv:"-"`
	WindowEndTick   int64 `csv:"window_end"`
	Ticks           int   `csv:"ticks"`
	Particles       int   `csv:"particles"`

	// Edge count per tick
	EdgesMean float64 `csv:"edges_mean"`
	EdgesStd  float64 `csv:"edges_std"`
	EdgesMin  float64 `csv:"edges_min"`
	EdgesMax  float64 `csv:"edges_max"`

	// Degree distribution at window end
	DegreeMean   float64 `csv:"degree_mean"`
	DegreeStd    float64 `csv:"degree_std"`
	DegreeP50    float64 `csv:"degree_p50"`
	DegreeP90    float64 `csv:"degree_p90"`
	IsolatedFrac float64 `csv:"isolated_frac"`
}

// Percentile returns the p-th empirical quantile of sorted, p in [0, 1].
// Returns 0 if sorted is empty.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}

// EdgeSeriesStats summarizes per-tick edge counts.
func EdgeSeriesStats(counts []float64) (mean, std, min, max float64) {
	switch len(counts) {
	case 0:
		return 0, 0, 0, 0
	case 1:
		return counts[0], 0, counts[0], counts[0]
	}
	mean, std = stat.MeanStdDev(counts, nil)
	return mean, std, floats.Min(counts), floats.Max(counts)
}

// DegreeStats summarizes a degree distribution. degrees is sorted in place.
func DegreeStats(degrees []float64) (mean, std, p50, p90, isolated float64) {
	n := len(degrees)
	if n == 0 {
		return 0, 0, 0, 0, 0
	}
	sort.Float64s(degrees)
	if n == 1 {
		mean = degrees[0]
	} else {
		mean, std = stat.MeanStdDev(degrees, nil)
	}

	zero := sort.SearchFloat64s(degrees, 1)
	isolated = float64(zero) / float64(n)

	return mean, std, Percentile(degrees, 0.5), Percentile(degrees, 0.9), isolated
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_start", s.WindowStartTick),
		slog.Int64("window_end", s.WindowEndTick),
		slog.Int("ticks", s.Ticks),
		slog.Int("particles", s.Particles),
		slog.Float64("edges_mean", s.EdgesMean),
		slog.Float64("edges_std", s.EdgesStd),
		slog.Float64("edges_min", s.EdgesMin),
		slog.Float64("edges_max", s.EdgesMax),
		slog.Float64("degree_mean", s.DegreeMean),
		slog.Float64("degree_std", s.DegreeStd),
		slog.Float64("degree_p50", s.DegreeP50),
		slog.Float64("degree_p90", s.DegreeP90),
		slog.Float64("isolated_frac", s.IsolatedFrac),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("graph", "stats", s)
}
