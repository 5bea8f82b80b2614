package gallery

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultFrameInterval approximates one display frame.
const DefaultFrameInterval = 16 * time.Millisecond

// Scheduler coalesces work to at most one run per frame. Work scheduled
// before the frame fires replaces earlier pending work.
type Scheduler interface {
	Schedule(fn func())
	Flush()
	Cancel()
}

// Coalescer is a clock-driven Scheduler. By default the frame's work runs
// on the timer goroutine; a coalescer from NewFrameCoalescer hands it to
// Frames instead, so a UI loop can run it on its own goroutine.
type Coalescer struct {
	clock    clockwork.Clock
	interval time.Duration
	frames   chan func()

	mu      sync.Mutex
	pending func()
	timer   clockwork.Timer
}

// NewCoalescer creates a coalescer firing interval after the first
// scheduled call of each frame. A nil clock uses the real clock.
func NewCoalescer(clock clockwork.Clock, interval time.Duration) *Coalescer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return &Coalescer{clock: clock, interval: interval}
}

// NewFrameCoalescer is NewCoalescer delivering each frame's work on Frames
// rather than running it.
func NewFrameCoalescer(clock clockwork.Clock, interval time.Duration) *Coalescer {
	c := NewCoalescer(clock, interval)
	c.frames = make(chan func(), 1)
	return c
}

// Frames receives the work of each fired frame. It is nil unless the
// coalescer came from NewFrameCoalescer. At most one frame is buffered; a
// newer frame replaces an unreceived one.
func (c *Coalescer) Frames() <-chan func() {
	return c.frames
}

// Schedule records fn as the work for the next frame.
func (c *Coalescer) Schedule(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = fn
	if c.timer == nil {
		c.timer = c.clock.AfterFunc(c.interval, c.fire)
	}
}

func (c *Coalescer) fire() {
	c.mu.Lock()
	fn := c.pending
	c.pending = nil
	c.timer = nil
	c.mu.Unlock()

	if fn == nil {
		return
	}
	if c.frames == nil {
		fn()
		return
	}
	for {
		select {
		case c.frames <- fn:
			return
		default:
		}
		select {
		case <-c.frames:
		default:
		}
	}
}

// Pending reports whether work is waiting for the next frame.
func (c *Coalescer) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending != nil
}

// Flush runs pending work now on the calling goroutine.
func (c *Coalescer) Flush() {
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	fn := c.pending
	c.pending = nil
	c.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Cancel drops pending work without running it.
func (c *Coalescer) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.pending = nil
}

// immediate runs work synchronously.
type immediate struct{}

func (immediate) Schedule(fn func()) { fn() }
func (immediate) Flush()             {}
func (immediate) Cancel()            {}
