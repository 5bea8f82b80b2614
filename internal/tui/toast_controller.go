package tui

import (
	"slices"
	"sync"
	"time"

	"github.com/colonyops/mosaic/internal/core/notify"
)

const (
	maxToasts         = 4
	toastTickInterval = 100 * time.Millisecond
	toastWidth        = 48
)

// ttlFor keeps failures on screen longer than routine notices.
func ttlFor(level notify.Level) time.Duration {
	switch level {
	case notify.LevelError:
		return 8 * time.Second
	case notify.LevelWarning:
		return 6 * time.Second
	default:
		return 4 * time.Second
	}
}

type toast struct {
	notification notify.Notification
	remaining    time.Duration
	// count is how many identical notifications this toast stands for.
	count int
}

// ToastController holds the visible toast stack. Push is called by the
// notification bus from command goroutines, so every method locks.
type ToastController struct {
	mu      sync.Mutex
	toasts  []toast
	ticking bool
}

func NewToastController() *ToastController {
	return &ToastController{}
}

// Push shows n. A repeat of the newest toast bumps its count and restarts
// its TTL instead of stacking. Past maxToasts the oldest is dropped.
func (c *ToastController) Push(n notify.Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if last := len(c.toasts) - 1; last >= 0 {
		top := &c.toasts[last]
		if top.notification.Level == n.Level && top.notification.Message == n.Message {
			top.count++
			top.remaining = ttlFor(n.Level)
			return
		}
	}

	c.toasts = append(c.toasts, toast{notification: n, remaining: ttlFor(n.Level), count: 1})
	if len(c.toasts) > maxToasts {
		c.toasts = slices.Delete(c.toasts, 0, len(c.toasts)-maxToasts)
	}
}

// Tick ages every toast by d and drops the expired ones.
func (c *ToastController) Tick(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.toasts {
		c.toasts[i].remaining -= d
	}
	c.toasts = slices.DeleteFunc(c.toasts, func(t toast) bool { return t.remaining <= 0 })
}

func (c *ToastController) HasToasts() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.toasts) > 0
}

// Toasts returns a copy of the stack, oldest first.
func (c *ToastController) Toasts() []toast {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.toasts)
}

// Ticking reports whether a tick chain is scheduled.
func (c *ToastController) Ticking() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ticking
}

func (c *ToastController) SetTicking(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ticking = v
}
