package engine

import "log/slog"

// flushTelemetry emits perf stats when the window is complete. Graph stats
// and bookmarks follow in field mode only.
func (e *Engine) flushTelemetry() {
	if !e.graphCollector.ShouldFlush(e.tick) {
		return
	}

	stats := e.graphCollector.Flush(e.tick)
	perfStats := e.perfCollector.Stats()

	if e.logStats {
		perfStats.LogStats()
	}
	if err := e.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
		slog.Error("failed to write perf", "error", err)
	}

	// Rings mode has no links, so there is no graph to report.
	if e.builder == nil {
		return
	}

	if e.statsCallback != nil {
		e.statsCallback(stats)
	}
	if e.logStats {
		stats.LogStats()
	}
	if err := e.outputManager.WriteGraph(stats); err != nil {
		slog.Error("failed to write graph stats", "error", err)
	}

	for _, bm := range e.bookmarks.Check(stats) {
		if e.logStats {
			bm.LogBookmark()
		}
		if err := e.outputManager.WriteBookmark(bm); err != nil {
			slog.Error("failed to write bookmark", "error", err)
		}
		// Save snapshot on bookmark
		if e.snapshotDir != "" {
			if _, err := e.SaveSnapshot(e.snapshotDir, &bm); err != nil {
				slog.Error("failed to save snapshot", "error", err)
			}
		}
	}
}
