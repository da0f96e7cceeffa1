package telemetry

import "github.com/pthm-cable/constellation/graph"

// GraphCollector accumulates proximity graph samples within a window of
// ticks and produces WindowStats.
type GraphCollector struct {
	windowTicks     int64
	windowStartTick int64

	edgeCounts []float64
	particles  int

	// Degree distribution of the latest sample
	degreeBuf []int
	degrees   []float64
}

// NewGraphCollector creates a collector that flushes every windowTicks ticks.
func NewGraphCollector(windowTicks int) *GraphCollector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &GraphCollector{
		windowTicks: int64(windowTicks),
		edgeCounts:  make([]float64, 0, windowTicks),
	}
}

// Record adds one tick's graph to the current window.
func (c *GraphCollector) Record(particles int, edges []graph.Edge) {
	c.edgeCounts = append(c.edgeCounts, float64(len(edges)))
	c.particles = particles

	c.degreeBuf = graph.Degrees(particles, edges, c.degreeBuf)
	c.degrees = c.degrees[:0]
	for _, d := range c.degreeBuf {
		c.degrees = append(c.degrees, float64(d))
	}
}

// ShouldFlush returns true if the current window is complete.
func (c *GraphCollector) ShouldFlush(tick int64) bool {
	return tick-c.windowStartTick >= c.windowTicks
}

// Flush produces stats for the current window and starts a new one at tick.
func (c *GraphCollector) Flush(tick int64) WindowStats {
	s := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   tick,
		Ticks:           len(c.edgeCounts),
		Particles:       c.particles,
	}
	s.EdgesMean, s.EdgesStd, s.EdgesMin, s.EdgesMax = EdgeSeriesStats(c.edgeCounts)
	s.DegreeMean, s.DegreeStd, s.DegreeP50, s.DegreeP90, s.IsolatedFrac = DegreeStats(c.degrees)

	c.windowStartTick = tick
	c.edgeCounts = c.edgeCounts[:0]
	return s
}

// WindowStartTick returns the tick at which the current window began.
func (c *GraphCollector) WindowStartTick() int64 {
	return c.windowStartTick
}

// Reset discards the current window and starts a new one at tick.
func (c *GraphCollector) Reset(tick int64) {
	c.windowStartTick = tick
	c.edgeCounts = c.edgeCounts[:0]
}
