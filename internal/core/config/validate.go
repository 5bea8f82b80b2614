package config

import (
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"strings"

	"github.com/hay-kot/criterio"

	"github.com/colonyops/mosaic/internal/core/styles"
	"github.com/colonyops/mosaic/pkg/tmpl"
)

// PlayerTemplateData defines available fields for the playback.player template.
type PlayerTemplateData struct {
	ID       string // Item id
	MediaID  int64  // Numeric backend id
	URL      string // Absolute resource url
	Filename string // Original filename
	Type     string // "image" or "video"
}

// SamplePlayerData is rendered to check the player template.
var SamplePlayerData = PlayerTemplateData{
	ID:       "1",
	MediaID:  1,
	URL:      "http://localhost:8484/files/1.mp4",
	Filename: "IMG_0001.mp4",
	Type:     "video",
}

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// ValidateDeep performs comprehensive validation of the configuration including
// the server url, template syntax, and file accessibility. The configPath argument
// specifies the config file location to validate (empty string skips config file check).
// This calls Validate() first for basic structural validation, then adds I/O checks.
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		c.validateFileAccess(configPath),
		criterio.Run("server.url", c.Server.URL, isServerURL),
		criterio.Run("playback.player", c.Playback.Player, isPlayerTemplate),
		c.validateKeys(),
	)
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	if _, ok := styles.GetPalette(c.TUI.Theme); !ok {
		warnings = append(warnings, ValidationWarning{
			Category: "TUI",
			Item:     "theme",
			Message:  fmt.Sprintf("unknown theme %q, falling back to %s (available: %s)", c.TUI.Theme, styles.DefaultTheme, strings.Join(styles.ThemeNames(), ", ")),
		})
	}

	if c.Playback.Player != "" {
		if bin := playerExecutable(c.Playback.Player); bin != "" {
			if _, err := exec.LookPath(bin); err != nil {
				warnings = append(warnings, ValidationWarning{
					Category: "Playback",
					Item:     "player",
					Message:  fmt.Sprintf("%s not found in PATH, videos will not play", bin),
				})
			}
		}
	}

	if c.Gallery.DeleteMode == DeleteModePreview {
		warnings = append(warnings, ValidationWarning{
			Category: "Gallery",
			Item:     "delete_mode",
			Message:  "preview mode never deletes anything",
		})
	}

	seen := make(map[string]string)
	for _, action := range Actions() {
		for _, k := range c.Keys[action] {
			if other, ok := seen[k]; ok {
				warnings = append(warnings, ValidationWarning{
					Category: "Keys",
					Item:     k,
					Message:  fmt.Sprintf("bound to both %s and %s", other, action),
				})
				continue
			}
			seen[k] = action
		}
	}

	return warnings
}

// validateFileAccess checks the config file and data directory.
func (c *Config) validateFileAccess(configPath string) error {
	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("data_dir", c.DataDir, isDirectoryOrNotExist),
	)
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

// isDirectoryOrNotExist validates that a path is a directory or doesn't exist.
func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // will be created
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("exists but is not a directory")
	}
	return nil
}

// isServerURL validates an absolute http(s) url.
func isServerURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}

// isPlayerTemplate checks the player command renders against sample data.
func isPlayerTemplate(command string) error {
	if command == "" {
		return nil
	}
	if _, err := tmpl.Render(command, SamplePlayerData); err != nil {
		return fmt.Errorf("template error: %w", err)
	}
	return nil
}

// validateKeys rejects empty key names.
func (c *Config) validateKeys() error {
	var errs criterio.FieldErrorsBuilder
	for _, action := range Actions() {
		for i, k := range c.Keys[action] {
			if strings.TrimSpace(k) == "" {
				errs = errs.Append(fmt.Sprintf("keys.%s[%d]", action, i), fmt.Errorf("key cannot be empty"))
			}
		}
	}
	return errs.ToError()
}

// playerExecutable returns the program name of the rendered player command.
func playerExecutable(command string) string {
	rendered, err := tmpl.Render(command, SamplePlayerData)
	if err != nil {
		return ""
	}
	fields := strings.Fields(rendered)
	for _, f := range fields {
		// skip leading VAR=value assignments
		if strings.Contains(f, "=") && !strings.HasPrefix(f, "-") {
			continue
		}
		return f
	}
	return ""
}
