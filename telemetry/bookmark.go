package telemetry

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/stat"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkLinkSurge      BookmarkType = "link_surge"
	BookmarkLinkCollapse   BookmarkType = "link_collapse"
	BookmarkIsolationSpike BookmarkType = "isolation_spike"
	BookmarkSteadyGraph    BookmarkType = "steady_graph"
)

// Bookmark marks a window where the link graph changed character.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        int64        `csv:"tick"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// steadyWindows is how many consecutive low-variance windows make a steady graph.
const steadyWindows = 5

// BookmarkDetector watches successive window stats for notable changes.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	recentEdgePeak float64
	steadyCount    int
	scratch        []float64
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 4 {
		historySize = 4 // steady detection looks at four windows
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
		scratch:     make([]float64, 0, historySize),
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if bd.historyFull || bd.historyIdx > 0 {
		for _, check := range []func(WindowStats) *Bookmark{
			bd.checkLinkSurge,
			bd.checkLinkCollapse,
			bd.checkIsolationSpike,
			bd.checkSteadyGraph,
		} {
			if b := check(stats); b != nil {
				bookmarks = append(bookmarks, *b)
			}
		}
	}

	bd.addToHistory(stats)
	if stats.EdgesMean > bd.recentEdgePeak {
		bd.recentEdgePeak = stats.EdgesMean
	}

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

// getHistory returns stored windows, oldest first.
func (bd *BookmarkDetector) getHistory() []WindowStats {
	if !bd.historyFull {
		return bd.history[:bd.historyIdx]
	}
	out := make([]WindowStats, 0, bd.historySize)
	out = append(out, bd.history[bd.historyIdx:]...)
	return append(out, bd.history[:bd.historyIdx]...)
}

// edgeMeans fills the scratch buffer with EdgesMean of the given windows.
func (bd *BookmarkDetector) edgeMeans(windows []WindowStats) []float64 {
	bd.scratch = bd.scratch[:0]
	for _, h := range windows {
		bd.scratch = append(bd.scratch, h.EdgesMean)
	}
	return bd.scratch
}

func (bd *BookmarkDetector) checkLinkSurge(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	avg := stat.Mean(bd.edgeMeans(history), nil)
	if avg == 0 {
		return nil
	}

	if stats.EdgesMean > avg*1.5 && stats.EdgesMean-avg >= 5 {
		return &Bookmark{
			Type:        BookmarkLinkSurge,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Mean links %.1f is %.1fx average (%.1f)", stats.EdgesMean, stats.EdgesMean/avg, avg),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkLinkCollapse(stats WindowStats) *Bookmark {
	if bd.recentEdgePeak == 0 {
		return nil
	}

	drop := 1 - stats.EdgesMean/bd.recentEdgePeak
	if drop > 0.40 && stats.EdgesMean < bd.recentEdgePeak-5 {
		// Reset the peak after triggering
		oldPeak := bd.recentEdgePeak
		bd.recentEdgePeak = stats.EdgesMean

		return &Bookmark{
			Type:        BookmarkLinkCollapse,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Mean links fell %.0f%% from peak %.1f to %.1f", drop*100, oldPeak, stats.EdgesMean),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkIsolationSpike(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	prev := history[len(history)-1]
	if stats.IsolatedFrac > 0.5 && prev.IsolatedFrac <= 0.25 {
		return &Bookmark{
			Type:        BookmarkIsolationSpike,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Isolated particles rose from %.0f%% to %.0f%%", prev.IsolatedFrac*100, stats.IsolatedFrac*100),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkSteadyGraph(stats WindowStats) *Bookmark {
	if stats.Particles == 0 || stats.EdgesMean == 0 {
		bd.steadyCount = 0
		return nil
	}

	history := bd.getHistory()
	if len(history) < 4 {
		return nil
	}

	mean, variance := stat.MeanVariance(bd.edgeMeans(history[len(history)-4:]), nil)
	// CV^2 < 0.0025 means the mean link count moved less than 5%
	if mean > 0 && variance/(mean*mean) < 0.0025 {
		bd.steadyCount++
	} else {
		bd.steadyCount = 0
	}

	if bd.steadyCount == steadyWindows {
		return &Bookmark{
			Type:        BookmarkSteadyGraph,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Link count steady near %.1f over %d windows", mean, steadyWindows),
		}
	}
	return nil
}
