package profiler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startServer(t *testing.T, opts ...Option) string {
	t.Helper()
	s := New(0, opts...)
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		assert.NoError(t, s.Shutdown(ctx))
	})
	return "http://" + s.Addr()
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url) //nolint:gosec // test server on loopback
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestServer_Pprof(t *testing.T) {
	base := startServer(t)

	for _, endpoint := range []string{"/debug/pprof/", "/debug/pprof/cmdline", "/debug/pprof/symbol"} {
		t.Run(endpoint, func(t *testing.T) {
			assert.Equal(t, http.StatusOK, get(t, base+endpoint).StatusCode)
		})
	}
}

func TestServer_Status(t *testing.T) {
	t.Run("disabled by default", func(t *testing.T) {
		base := startServer(t)
		assert.Equal(t, http.StatusNotFound, get(t, base+"/status").StatusCode)
	})

	t.Run("serves snapshot", func(t *testing.T) {
		calls := 0
		base := startServer(t, WithStatus(func() any {
			calls++
			return map[string]int{"loaded": 40, "selected": 3}
		}))

		resp := get(t, base+"/status")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

		var body map[string]int
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, 40, body["loaded"])
		assert.Equal(t, 1, calls)
	})
}

func TestServer_AddrBeforeStart(t *testing.T) {
	assert.Empty(t, New(0).Addr())
}
