package sim

import (
	"math"
	"time"
)

// WallClock measures time since it was created using the monotonic clock.
type WallClock struct {
	start time.Time
}

func NewWallClock() *WallClock {
	return &WallClock{start: time.Now()}
}

func (c *WallClock) Now() time.Duration { return time.Since(c.start) }

// StepClock advances by a fixed step on every call after the first.
type StepClock struct {
	step    time.Duration
	now     time.Duration
	started bool
}

func NewStepClock(dt float64) *StepClock {
	return &StepClock{step: time.Duration(dt * float64(time.Second))}
}

func (c *StepClock) Now() time.Duration {
	if c.started {
		c.now += c.step
	}
	c.started = true
	return c.now
}

// ClampDt bounds dt to [0, max]. NaN becomes 0 and +Inf becomes max.
func ClampDt(dt, max float64) float64 {
	if math.IsNaN(dt) || dt < 0 {
		return 0
	}
	if dt > max {
		return max
	}
	return dt
}
