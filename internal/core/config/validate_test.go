package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validConfig returns a Config with all required fields set for testing.
func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.Keys = mergeKeys(defaultKeys, nil)
	return &cfg
}

func TestValidateDeep_ValidConfig(t *testing.T) {
	cfg := validConfig(t)
	cfg.Playback.Player = "mpv --title={{ shq .Filename }} {{ shq .URL }}"

	err := cfg.ValidateDeep("")
	assert.NoError(t, err, "expected valid config")
}

func TestValidateDeep_ServerURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr string
	}{
		{name: "no scheme", url: "localhost:8484", wantErr: "scheme"},
		{name: "ftp", url: "ftp://media.example.com", wantErr: "scheme"},
		{name: "no host", url: "http://", wantErr: "missing host"},
		{name: "bad escape", url: "http://%zz", wantErr: "invalid url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			cfg.Server.URL = tt.url

			err := cfg.ValidateDeep("")

			var fieldErrs criterio.FieldErrors
			require.ErrorAs(t, err, &fieldErrs)
			require.Len(t, fieldErrs, 1)
			assert.Equal(t, "server.url", fieldErrs[0].Field)
			assert.Contains(t, fieldErrs[0].Err.Error(), tt.wantErr)
		})
	}
}

func TestValidateDeep_InvalidPlayerTemplate(t *testing.T) {
	tests := []struct {
		name   string
		player string
	}{
		{name: "unknown field", player: "mpv {{ .Path }}"},
		{name: "syntax", player: "mpv {{ .URL"},
		{name: "unknown function", player: "mpv {{ quote .URL }}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			cfg.Playback.Player = tt.player

			err := cfg.ValidateDeep("")

			var fieldErrs criterio.FieldErrors
			require.ErrorAs(t, err, &fieldErrs)
			require.Len(t, fieldErrs, 1)
			assert.Equal(t, "playback.player", fieldErrs[0].Field)
			assert.Contains(t, fieldErrs[0].Err.Error(), "template error")
		})
	}
}

func TestValidateDeep_EmptyKey(t *testing.T) {
	cfg := validConfig(t)
	cfg.Keys[ActionLike] = []string{"down", " "}

	err := cfg.ValidateDeep("")

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	require.Len(t, fieldErrs, 1)
	assert.Equal(t, "keys.like[1]", fieldErrs[0].Field)
}

func TestValidateDeep_FileAccess(t *testing.T) {
	t.Run("config path is a directory", func(t *testing.T) {
		cfg := validConfig(t)
		err := cfg.ValidateDeep(t.TempDir())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "is a directory")
	})

	t.Run("missing config file is fine", func(t *testing.T) {
		cfg := validConfig(t)
		assert.NoError(t, cfg.ValidateDeep(filepath.Join(t.TempDir(), "config.yaml")))
	})

	t.Run("data dir is a file", func(t *testing.T) {
		cfg := validConfig(t)
		file := filepath.Join(t.TempDir(), "data")
		require.NoError(t, os.WriteFile(file, nil, 0o644))
		cfg.DataDir = file

		err := cfg.ValidateDeep("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not a directory")
	})

	t.Run("missing data dir will be created", func(t *testing.T) {
		cfg := validConfig(t)
		cfg.DataDir = filepath.Join(t.TempDir(), "later")
		assert.NoError(t, cfg.ValidateDeep(""))
	})
}

func TestValidateDeep_StructuralErrorFirst(t *testing.T) {
	cfg := validConfig(t)
	cfg.Gallery.PageSize = 0
	cfg.Server.URL = "nope"

	err := cfg.ValidateDeep("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page_size")
}

func TestWarnings(t *testing.T) {
	t.Run("clean config", func(t *testing.T) {
		cfg := validConfig(t)
		assert.Empty(t, cfg.Warnings())
	})

	t.Run("unknown theme", func(t *testing.T) {
		cfg := validConfig(t)
		cfg.TUI.Theme = "neon"
		w := cfg.Warnings()
		require.Len(t, w, 1)
		assert.Equal(t, "TUI", w[0].Category)
		assert.Contains(t, w[0].Message, "tokyo-night")
	})

	t.Run("player not installed", func(t *testing.T) {
		cfg := validConfig(t)
		cfg.Playback.Player = "FOO=1 mosaic-missing-player-xyz {{ shq .URL }}"
		w := cfg.Warnings()
		require.Len(t, w, 1)
		assert.Equal(t, "Playback", w[0].Category)
		assert.Contains(t, w[0].Message, "mosaic-missing-player-xyz")
	})

	t.Run("preview mode", func(t *testing.T) {
		cfg := validConfig(t)
		cfg.Gallery.DeleteMode = DeleteModePreview
		w := cfg.Warnings()
		require.Len(t, w, 1)
		assert.Equal(t, "delete_mode", w[0].Item)
	})

	t.Run("key bound twice", func(t *testing.T) {
		cfg := validConfig(t)
		cfg.Keys[ActionFavorite] = []string{"down"}
		w := cfg.Warnings()
		require.Len(t, w, 1)
		assert.Equal(t, "down", w[0].Item)
		assert.Contains(t, w[0].Message, "favorite")
		assert.Contains(t, w[0].Message, "like")
	})
}

func TestPlayerExecutable(t *testing.T) {
	assert.Equal(t, "mpv", playerExecutable("mpv --really-quiet {{ shq .URL }}"))
	assert.Equal(t, "vlc", playerExecutable("DISPLAY=:0 vlc {{ shq .URL }}"))
	assert.Empty(t, playerExecutable("{{ .Nope }}"))
}
