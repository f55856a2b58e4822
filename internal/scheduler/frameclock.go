package scheduler

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// FrameClock paces redraws. It runs at the full rate while something is
// changing on screen and drops to the idle rate once nothing is.
type FrameClock struct {
	clock      clockwork.Clock
	full, idle int
	fps        int
	idling     bool
	last       time.Time
}

// NewFrameClock returns a clock running at full fps. Rates below one are
// raised to one.
func NewFrameClock(clock clockwork.Clock, full, idle int) *FrameClock {
	full = max(full, 1)
	idle = min(max(idle, 1), full)
	return &FrameClock{clock: clock, full: full, idle: idle, fps: full}
}

// FrameTime is the interval between frames at the current rate.
func (c *FrameClock) FrameTime() time.Duration {
	return time.Second / time.Duration(c.fps)
}

// NextFrame is the earliest time the next frame may start.
func (c *FrameClock) NextFrame() time.Time {
	return c.last.Add(c.FrameTime())
}

// Start begins a frame and returns true, unless it is called before
// NextFrame, in which case it does nothing and returns false.
func (c *FrameClock) Start() bool {
	now := c.clock.Now()
	if now.Before(c.NextFrame()) {
		return false
	}
	c.last = now
	return true
}

// Until is the time left before NextFrame, never negative.
func (c *FrameClock) Until() time.Duration {
	return max(c.NextFrame().Sub(c.clock.Now()), 0)
}

// Reset lets the next frame start immediately.
func (c *FrameClock) Reset() { c.last = time.Time{} }

// Idle switches to the idle rate.
func (c *FrameClock) Idle() { c.fps, c.idling = c.idle, true }

// Active switches to the full rate.
func (c *FrameClock) Active() { c.fps, c.idling = c.full, false }

func (c *FrameClock) IsIdle() bool { return c.idling }
func (c *FrameClock) FPS() int     { return c.fps }
