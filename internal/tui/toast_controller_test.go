package tui

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/mosaic/internal/core/notify"
)

func info(msg string) notify.Notification {
	return notify.Notification{Level: notify.LevelInfo, Message: msg}
}

func TestToastController_TTLByLevel(t *testing.T) {
	tests := []struct {
		level notify.Level
		want  time.Duration
	}{
		{notify.LevelInfo, 4 * time.Second},
		{notify.LevelWarning, 6 * time.Second},
		{notify.LevelError, 8 * time.Second},
	}

	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			c := NewToastController()
			c.Push(notify.Notification{Level: tt.level, Message: "m"})
			require.Len(t, c.Toasts(), 1)
			assert.Equal(t, tt.want, c.Toasts()[0].remaining)
		})
	}
}

func TestToastController_EvictsOldest(t *testing.T) {
	c := NewToastController()
	for i := range maxToasts + 2 {
		c.Push(info(fmt.Sprintf("deleted %d", i)))
	}

	toasts := c.Toasts()
	require.Len(t, toasts, maxToasts)
	assert.Equal(t, "deleted 2", toasts[0].notification.Message)
	assert.Equal(t, fmt.Sprintf("deleted %d", maxToasts+1), toasts[maxToasts-1].notification.Message)
}

func TestToastController_CoalescesRepeats(t *testing.T) {
	c := NewToastController()
	c.Push(notify.Notification{Level: notify.LevelError, Message: "server unavailable"})
	c.Tick(3 * time.Second)
	c.Push(notify.Notification{Level: notify.LevelError, Message: "server unavailable"})

	toasts := c.Toasts()
	require.Len(t, toasts, 1)
	assert.Equal(t, 2, toasts[0].count)
	assert.Equal(t, 8*time.Second, toasts[0].remaining, "repeat restarts the TTL")

	// Same text at another level is a separate toast.
	c.Push(notify.Notification{Level: notify.LevelWarning, Message: "server unavailable"})
	assert.Len(t, c.Toasts(), 2)
}

func TestToastController_Tick(t *testing.T) {
	c := NewToastController()
	c.Push(info("expires"))
	c.Push(notify.Notification{Level: notify.LevelError, Message: "survives"})

	c.Tick(time.Second)
	assert.Equal(t, 3*time.Second, c.Toasts()[0].remaining)

	c.Tick(3 * time.Second)
	toasts := c.Toasts()
	require.Len(t, toasts, 1)
	assert.Equal(t, "survives", toasts[0].notification.Message)
}

func TestToastController_Ticking(t *testing.T) {
	c := NewToastController()
	assert.False(t, c.Ticking())

	c.SetTicking(true)
	assert.True(t, c.Ticking())
}
