package utils

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flush(t *testing.T, d *DeferredWriter) string {
	t.Helper()
	var out bytes.Buffer
	require.NoError(t, d.Flush(&out))
	return out.String()
}

func TestDeferredWriter_Write(t *testing.T) {
	d := &DeferredWriter{}

	n, err := d.Write([]byte("serving "))
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	_, _ = d.Write([]byte("demo"))

	assert.Equal(t, "serving demo", flush(t, d))
}

func TestDeferredWriter_ConcurrentPrintf(t *testing.T) {
	d := &DeferredWriter{}
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.Printf("x")
		}()
	}
	wg.Wait()

	assert.Equal(t, "x (x50)\n", flush(t, d))
}

func TestDeferredWriter_Printf(t *testing.T) {
	d := &DeferredWriter{}

	d.Printf("warning: %s", "unknown theme")
	d.Printf("error: %s\n", "server unavailable")
	d.Printf("error: server unavailable")
	d.Printf("error: %s", "like failed")
	d.Printf("error: server unavailable")

	assert.Equal(t, 4, d.Len())
	assert.Equal(t,
		"warning: unknown theme\n"+
			"error: server unavailable (x2)\n"+
			"error: like failed\n"+
			"error: server unavailable\n",
		flush(t, d))
}

func TestDeferredWriter_Flush(t *testing.T) {
	t.Run("empty writes nothing", func(t *testing.T) {
		assert.Empty(t, flush(t, &DeferredWriter{}))
	})

	t.Run("resets after flush", func(t *testing.T) {
		d := &DeferredWriter{}
		d.Printf("once")
		assert.Equal(t, "once\n", flush(t, d))
		assert.Zero(t, d.Len())
		assert.Empty(t, flush(t, d))
	})
}
