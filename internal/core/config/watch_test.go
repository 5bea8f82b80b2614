package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reload struct {
	cfg *Config
	err error
}

func startWatch(t *testing.T, path string) <-chan reload {
	t.Helper()
	ch := make(chan reload, 8)
	w, err := Watch(path, t.TempDir(), func(cfg *Config, err error) {
		ch <- reload{cfg, err}
	})
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, w.Close()) })
	return ch
}

func waitReload(t *testing.T, ch <-chan reload) reload {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("no reload within 5s")
		return reload{}
	}
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	path := writeConfig(t, "tui:\n  theme: tokyo-night\n")
	ch := startWatch(t, path)

	require.NoError(t, os.WriteFile(path, []byte("tui:\n  theme: gruvbox\nkeys:\n  help: [\"h\"]\n"), 0o644))

	r := waitReload(t, ch)
	require.NoError(t, r.err)
	assert.Equal(t, "gruvbox", r.cfg.TUI.Theme)
	assert.Equal(t, []string{"h"}, r.cfg.Keys[ActionHelp])
}

func TestWatch_ReportsBadFile(t *testing.T) {
	path := writeConfig(t, "tui:\n  theme: tokyo-night\n")
	ch := startWatch(t, path)

	require.NoError(t, os.WriteFile(path, []byte("tui: [\n"), 0o644))

	r := waitReload(t, ch)
	require.Error(t, r.err)
	assert.Nil(t, r.cfg)
}

func TestWatch_IgnoresSiblingFiles(t *testing.T) {
	path := writeConfig(t, "tui:\n  theme: tokyo-night\n")
	ch := startWatch(t, path)

	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), "other.yaml"), []byte("x: 1\n"), 0o644))

	select {
	case r := <-ch:
		t.Fatalf("unexpected reload: %+v", r)
	case <-time.After(3 * reloadDebounce):
	}
}
