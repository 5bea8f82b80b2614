// Package styles provides shared lipgloss v2 styles for CLI and TUI components.
package styles

import (
	"image/color"

	lipgloss "charm.land/lipgloss/v2"
)

// CurrentPalette holds the active theme palette.
var CurrentPalette Palette

// Exported color aliases for convenience.
var (
	ColorPrimary    color.Color
	ColorSecondary  color.Color
	ColorForeground color.Color
	ColorMuted      color.Color
	ColorBackground color.Color
	ColorSurface    color.Color
	ColorSuccess    color.Color
	ColorWarning    color.Color
	ColorError      color.Color
)

// Style exports.
var (
	// CLI styles.
	CommandHeaderStyle lipgloss.Style
	CommandStyle       lipgloss.Style
	DividerStyle       lipgloss.Style
	SuccessStyle       lipgloss.Style
	FailureStyle       lipgloss.Style

	// Grid tiles.
	TileStyle         lipgloss.Style
	TileCursorStyle   lipgloss.Style
	TileSelectedStyle lipgloss.Style
	TileCaptionStyle  lipgloss.Style
	TileVideoStyle    lipgloss.Style
	DragBoxStyle      lipgloss.Style
	SentinelStyle     lipgloss.Style

	// Status and header bars.
	HeaderStyle       lipgloss.Style
	HeaderModeStyle   lipgloss.Style
	StatusBarStyle    lipgloss.Style
	StatusErrorStyle  lipgloss.Style
	StatusHintStyle   lipgloss.Style
	SelectionBarStyle lipgloss.Style

	// Viewer.
	ViewerFrameStyle   lipgloss.Style
	ViewerTitleStyle   lipgloss.Style
	ViewerIndexStyle   lipgloss.Style
	ViewerFlagOnStyle  lipgloss.Style
	ViewerFlagOffStyle lipgloss.Style
	ViewerBusyStyle    lipgloss.Style
	ViewerPlaceholder  lipgloss.Style
	ViewerInfoStyle    lipgloss.Style

	// Modals and dialogs.
	ModalStyle               lipgloss.Style
	ModalTitleStyle          lipgloss.Style
	ModalHelpStyle           lipgloss.Style
	ModalButtonStyle         lipgloss.Style
	ModalButtonSelectedStyle lipgloss.Style

	// Key help overlay.
	HelpSectionStyle lipgloss.Style
	HelpKeyStyle     lipgloss.Style
	HelpDescStyle    lipgloss.Style
	HelpRuleStyle    lipgloss.Style

	// Preview dialog.
	PreviewTitleStyle  lipgloss.Style
	PreviewItemStyle   lipgloss.Style
	PreviewScrollStyle lipgloss.Style

	// Toasts.
	ToastInfoStyle    lipgloss.Style
	ToastWarningStyle lipgloss.Style
	ToastErrorStyle   lipgloss.Style

	// Query bar.
	QueryPromptStyle lipgloss.Style
	QueryLabelStyle  lipgloss.Style
)

// ColorPool is used for deterministic color hashing of tags.
var ColorPool []color.Color

// SetTheme sets the active palette and rebuilds all global styles.
func SetTheme(p Palette) {
	CurrentPalette = p

	ColorPrimary = p.Primary
	ColorSecondary = p.Secondary
	ColorForeground = p.Foreground
	ColorMuted = p.Muted
	ColorBackground = p.Background
	ColorSurface = p.Surface
	ColorSuccess = p.Success
	ColorWarning = p.Warning
	ColorError = p.Error

	CommandHeaderStyle = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true)
	CommandStyle = lipgloss.NewStyle().
		Foreground(ColorForeground)
	DividerStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)
	SuccessStyle = lipgloss.NewStyle().Foreground(ColorSuccess)
	FailureStyle = lipgloss.NewStyle().Foreground(ColorError)

	TileStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorSurface).
		Foreground(ColorForeground)
	TileCursorStyle = TileStyle.
		BorderForeground(ColorPrimary)
	TileSelectedStyle = TileStyle.
		Border(lipgloss.ThickBorder()).
		BorderForeground(ColorSuccess)
	TileCaptionStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)
	TileVideoStyle = lipgloss.NewStyle().
		Foreground(ColorSecondary).
		Bold(true)
	DragBoxStyle = lipgloss.NewStyle().
		Foreground(ColorWarning)
	SentinelStyle = lipgloss.NewStyle().
		Foreground(ColorMuted).
		Italic(true)

	HeaderStyle = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true).
		PaddingLeft(1)
	HeaderModeStyle = lipgloss.NewStyle().
		Foreground(ColorBackground).
		Background(ColorSecondary).
		Padding(0, 1)
	StatusBarStyle = lipgloss.NewStyle().
		Foreground(ColorMuted).
		PaddingLeft(1)
	StatusErrorStyle = lipgloss.NewStyle().
		Foreground(ColorError).
		PaddingLeft(1)
	StatusHintStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)
	SelectionBarStyle = lipgloss.NewStyle().
		Foreground(ColorBackground).
		Background(ColorWarning).
		Bold(true).
		Padding(0, 1)

	ViewerFrameStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorSurface).
		Padding(0, 1)
	ViewerTitleStyle = lipgloss.NewStyle().
		Foreground(ColorForeground).
		Bold(true)
	ViewerIndexStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)
	ViewerFlagOnStyle = lipgloss.NewStyle().
		Foreground(ColorError).
		Bold(true)
	ViewerFlagOffStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)
	ViewerBusyStyle = lipgloss.NewStyle().
		Foreground(ColorWarning)
	ViewerPlaceholder = lipgloss.NewStyle().
		Foreground(ColorSurface).
		Background(ColorBackground)
	ViewerInfoStyle = lipgloss.NewStyle().
		PaddingLeft(1)

	ModalStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorPrimary).
		Padding(1, 2)
	ModalTitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorForeground)
	ModalHelpStyle = lipgloss.NewStyle().
		Foreground(ColorMuted).
		MarginTop(1)
	ModalButtonStyle = lipgloss.NewStyle().
		Padding(0, 1).
		Background(ColorSurface).
		Foreground(ColorMuted)
	ModalButtonSelectedStyle = lipgloss.NewStyle().
		Padding(0, 1).
		Background(ColorPrimary).
		Foreground(ColorBackground).
		Bold(true)

	HelpSectionStyle = lipgloss.NewStyle().
		Foreground(ColorSecondary).
		Bold(true)
	HelpKeyStyle = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true)
	HelpDescStyle = lipgloss.NewStyle().
		Foreground(ColorForeground)
	HelpRuleStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)

	PreviewTitleStyle = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true)
	PreviewItemStyle = lipgloss.NewStyle().
		Foreground(ColorForeground)
	PreviewScrollStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)

	toast := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1)
	ToastInfoStyle = toast.BorderForeground(ColorPrimary).Foreground(ColorForeground)
	ToastWarningStyle = toast.BorderForeground(ColorWarning).Foreground(ColorWarning)
	ToastErrorStyle = toast.BorderForeground(ColorError).Foreground(ColorError)

	QueryPromptStyle = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true)
	QueryLabelStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)

	ColorPool = []color.Color{
		ColorPrimary,
		ColorSecondary,
		ColorSuccess,
		ColorWarning,
		ColorError,
		ColorMuted,
	}
}

// ColorForString returns a deterministic color for a given string.
// The same string always produces the same color.
func ColorForString(s string) color.Color {
	var hash uint32
	for _, c := range s {
		hash = hash*31 + uint32(c)
	}
	return ColorPool[hash%uint32(len(ColorPool))]
}

// ApplyTheme activates the named built-in theme. Unknown names return false
// and leave the current theme in place.
func ApplyTheme(name string) bool {
	p, ok := GetPalette(name)
	if !ok {
		return false
	}
	SetTheme(p)
	return true
}

// nolint:gochecknoinits // bootstrap default theme before any style is accessed.
func init() {
	SetTheme(themes[DefaultTheme])
}
