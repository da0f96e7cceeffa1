package engine

import (
	"context"
	"time"
)

// Clock paces the frame loop. Wait blocks until the next frame is due and
// returns false when the host is gone or ctx is done.
type Clock interface {
	Wait(ctx context.Context) bool
}

// TickerClock paces frames with a time.Ticker.
type TickerClock struct {
	ticker *time.Ticker
}

// NewTickerClock creates a clock firing fps times per second.
func NewTickerClock(fps int) *TickerClock {
	if fps < 1 {
		fps = 60
	}
	return &TickerClock{ticker: time.NewTicker(time.Second / time.Duration(fps))}
}

// Wait implements Clock.
func (c *TickerClock) Wait(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	select {
	case <-ctx.Done():
		return false
	case <-c.ticker.C:
		return true
	}
}

// Stop releases the ticker.
func (c *TickerClock) Stop() {
	c.ticker.Stop()
}

// FreeClock never waits. Used for headless runs.
type FreeClock struct{}

// Wait implements Clock.
func (FreeClock) Wait(ctx context.Context) bool {
	return ctx.Err() == nil
}

// Run steps the engine once per clock beat until ctx is done, the clock
// reports the host gone, or the engine is stopped. It returns ctx.Err() on
// cancellation and nil otherwise.
func (e *Engine) Run(ctx context.Context, clock Clock) error {
	for {
		if !clock.Wait(ctx) {
			return ctx.Err()
		}
		if !e.Step() {
			return nil
		}
		e.perfCollector.RecordFrame()
	}
}
