// Package config handles configuration loading and validation for mosaic.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// Delete modes.
const (
	DeleteModeBackend = "backend"
	DeleteModePreview = "preview"
)

// OrderSeeded is the only list order the backend supports.
const OrderSeeded = "seeded"

// Key actions that can be rebound under the keys section.
const (
	ActionOpen      = "open"
	ActionClose     = "close"
	ActionNext      = "next"
	ActionPrev      = "prev"
	ActionLike      = "like"
	ActionFavorite  = "favorite"
	ActionDelete    = "delete"
	ActionSelect    = "select"
	ActionSelectAll = "select_all"
	ActionClear     = "clear"
	ActionRefresh   = "refresh"
	ActionSearch    = "search"
	ActionRetry     = "retry"
	ActionInfo      = "info"
	ActionHelp      = "help"
	ActionQuit      = "quit"
)

// defaultKeys provides built-in key bindings that users can override.
var defaultKeys = map[string][]string{
	ActionOpen:      {"enter"},
	ActionClose:     {"esc"},
	ActionNext:      {"right", "l"},
	ActionPrev:      {"left", "h"},
	ActionLike:      {"down"},
	ActionFavorite:  {"f"},
	ActionDelete:    {"x", "delete"},
	ActionSelect:    {"space"},
	ActionSelectAll: {"ctrl+a"},
	ActionClear:     {"c"},
	ActionRefresh:   {"r"},
	ActionSearch:    {"/"},
	ActionRetry:     {"R"},
	ActionInfo:      {"i"},
	ActionHelp:      {"?"},
	ActionQuit:      {"q", "ctrl+c"},
}

// Actions returns the names of all bindable actions, sorted.
func Actions() []string {
	names := make([]string, 0, len(defaultKeys))
	for name := range defaultKeys {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// DefaultKeys returns a copy of the built-in key bindings.
func DefaultKeys() map[string][]string {
	return mergeKeys(defaultKeys, nil)
}

// Config holds the application configuration.
type Config struct {
	Server   ServerConfig        `yaml:"server"`
	Gallery  GalleryConfig       `yaml:"gallery"`
	Playback PlaybackConfig      `yaml:"playback"`
	TUI      TUIConfig           `yaml:"tui"`
	Keys     map[string][]string `yaml:"keys"`
	DataDir  string              `yaml:"-"` // set by caller, not from config file
}

// ServerConfig points at the media-indexing service.
type ServerConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// GalleryConfig tunes paging, preloading and deletion.
type GalleryConfig struct {
	PageSize         int    `yaml:"page_size"`
	PreloadThreshold int    `yaml:"preload_threshold"`
	Order            string `yaml:"order"`
	DeleteMode       string `yaml:"delete_mode"`
	ConfirmDelete    *bool  `yaml:"confirm_delete"`
}

// Confirm reports whether deletions ask for confirmation.
func (g GalleryConfig) Confirm() bool {
	return g.ConfirmDelete == nil || *g.ConfirmDelete
}

// PlaybackConfig tunes video handle retention and the external player.
type PlaybackConfig struct {
	PruneEverySteps int           `yaml:"prune_every_steps"`
	StepWindow      int           `yaml:"step_window"`
	TimerWindow     int           `yaml:"timer_window"`
	PruneInterval   time.Duration `yaml:"prune_interval"`
	// Player is a shell command template, e.g. "mpv {{ shq .URL }}".
	// Empty disables external playback.
	Player string `yaml:"player"`
}

// TUIConfig holds terminal UI settings.
type TUIConfig struct {
	Theme         string        `yaml:"theme"`
	FrameInterval time.Duration `yaml:"frame_interval"`
	// Mobile drops the viewer navigation keys, leaving only close and quit.
	Mobile bool `yaml:"mobile"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	confirm := true
	return Config{
		Server: ServerConfig{
			URL:     "http://localhost:8484",
			Timeout: 30 * time.Second,
		},
		Gallery: GalleryConfig{
			PageSize:         20,
			PreloadThreshold: 5,
			Order:            OrderSeeded,
			DeleteMode:       DeleteModeBackend,
			ConfirmDelete:    &confirm,
		},
		Playback: PlaybackConfig{
			PruneEverySteps: 30,
			StepWindow:      10,
			TimerWindow:     15,
			PruneInterval:   2 * time.Minute,
		},
		TUI: TUIConfig{
			Theme:         "tokyo-night",
			FrameInterval: 16 * time.Millisecond,
		},
		Keys: map[string][]string{},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	// Merge user key bindings into defaults (user config overrides defaults)
	cfg.Keys = mergeKeys(defaultKeys, cfg.Keys)

	// Apply defaults for zero values
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Server.URL == "" {
		c.Server.URL = defaults.Server.URL
	}
	if c.Server.Timeout == 0 {
		c.Server.Timeout = defaults.Server.Timeout
	}
	if c.Gallery.PageSize == 0 {
		c.Gallery.PageSize = defaults.Gallery.PageSize
	}
	if c.Gallery.PreloadThreshold == 0 {
		c.Gallery.PreloadThreshold = defaults.Gallery.PreloadThreshold
	}
	if c.Gallery.Order == "" {
		c.Gallery.Order = defaults.Gallery.Order
	}
	if c.Gallery.DeleteMode == "" {
		c.Gallery.DeleteMode = defaults.Gallery.DeleteMode
	}
	if c.Playback.PruneEverySteps == 0 {
		c.Playback.PruneEverySteps = defaults.Playback.PruneEverySteps
	}
	if c.Playback.StepWindow == 0 {
		c.Playback.StepWindow = defaults.Playback.StepWindow
	}
	if c.Playback.TimerWindow == 0 {
		c.Playback.TimerWindow = defaults.Playback.TimerWindow
	}
	if c.Playback.PruneInterval == 0 {
		c.Playback.PruneInterval = defaults.Playback.PruneInterval
	}
	if c.TUI.Theme == "" {
		c.TUI.Theme = defaults.TUI.Theme
	}
	if c.TUI.FrameInterval == 0 {
		c.TUI.FrameInterval = defaults.TUI.FrameInterval
	}
}

// mergeKeys merges user key bindings into defaults.
// User bindings replace the default keys of the same action.
func mergeKeys(defaults, user map[string][]string) map[string][]string {
	result := make(map[string][]string, len(defaults)+len(user))

	// Copy defaults first
	for k, v := range defaults {
		result[k] = slices.Clone(v)
	}

	// Override with user config
	for k, v := range user {
		result[k] = slices.Clone(v)
	}

	return result
}

// Validate checks that the configuration is structurally valid.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	if c.Server.URL == "" {
		return fmt.Errorf("server.url cannot be empty")
	}
	if c.Server.Timeout < 0 {
		return fmt.Errorf("server.timeout cannot be negative")
	}

	if c.Gallery.PageSize < 1 {
		return fmt.Errorf("gallery.page_size must be at least 1")
	}
	if c.Gallery.PreloadThreshold < 1 {
		return fmt.Errorf("gallery.preload_threshold must be at least 1")
	}
	if c.Gallery.Order != OrderSeeded {
		return fmt.Errorf("gallery.order %q is not supported", c.Gallery.Order)
	}
	switch c.Gallery.DeleteMode {
	case DeleteModeBackend, DeleteModePreview:
	default:
		return fmt.Errorf("gallery.delete_mode must be %q or %q", DeleteModeBackend, DeleteModePreview)
	}

	if c.Playback.PruneEverySteps < 1 {
		return fmt.Errorf("playback.prune_every_steps must be at least 1")
	}
	if c.Playback.StepWindow < 1 || c.Playback.TimerWindow < 1 {
		return fmt.Errorf("playback windows must be at least 1")
	}
	if c.Playback.PruneInterval < time.Second {
		return fmt.Errorf("playback.prune_interval must be at least 1s")
	}

	if c.TUI.FrameInterval < time.Millisecond {
		return fmt.Errorf("tui.frame_interval must be at least 1ms")
	}

	for action, keys := range c.Keys {
		if _, ok := defaultKeys[action]; !ok {
			return fmt.Errorf("keys: unknown action %q", action)
		}
		if len(keys) == 0 {
			return fmt.Errorf("keys: action %q has no keys", action)
		}
	}

	return nil
}

// ServerURL parses the configured server URL.
func (c *Config) ServerURL() (*url.URL, error) {
	return url.Parse(c.Server.URL)
}

// LogFile returns the default log file path.
func (c *Config) LogFile() string {
	return filepath.Join(c.DataDir, "mosaic.log")
}
