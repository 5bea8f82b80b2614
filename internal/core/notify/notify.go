// Package notify defines transient user-facing notifications and an
// in-memory history of them.
package notify

import (
	"sync"
	"time"
)

// Level represents the severity of a notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification represents a single notification event.
type Notification struct {
	ID        int64
	Level     Level
	Message   string
	CreatedAt time.Time
}

// History keeps the most recent notifications of a session. The zero value
// is not usable; use NewHistory.
type History struct {
	mu     sync.Mutex
	items  []Notification
	nextID int64
	limit  int
}

// NewHistory creates a history that retains at most limit notifications.
// A limit below 1 retains everything.
func NewHistory(limit int) *History {
	return &History{limit: limit}
}

// Save stores n and returns its assigned ID.
func (h *History) Save(n Notification) int64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	n.ID = h.nextID
	h.items = append(h.items, n)
	if h.limit > 0 && len(h.items) > h.limit {
		h.items = h.items[len(h.items)-h.limit:]
	}
	return n.ID
}

// List returns retained notifications, newest first.
func (h *History) List() []Notification {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Notification, len(h.items))
	for i, n := range h.items {
		out[len(h.items)-1-i] = n
	}
	return out
}

// Clear drops all retained notifications.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.items = nil
}

// Len returns the number of retained notifications.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.items)
}
