// Package components provides reusable TUI components.
package components

import (
	"strings"

	"charm.land/bubbles/v2/key"
	lipgloss "charm.land/lipgloss/v2"

	"github.com/colonyops/mosaic/internal/core/styles"
	"github.com/colonyops/mosaic/internal/tui/keys"
)

// HelpEntry is one shortcut row.
type HelpEntry struct {
	Key  string
	Desc string
}

// HelpDialogSection groups entries under a title.
type HelpDialogSection struct {
	Title   string
	Entries []HelpEntry
}

// mouseSection documents the pointer gestures, which are not rebindable.
var mouseSection = HelpDialogSection{
	Title: "Mouse",
	Entries: []HelpEntry{
		{Key: "click", Desc: "open, or toggle while selecting"},
		{Key: "ctrl+click", Desc: "toggle one tile"},
		{Key: "shift+click", Desc: "select range"},
		{Key: "drag", Desc: "box select"},
		{Key: "wheel", Desc: "scroll, or step slides"},
	},
}

// HelpSections builds the dialog sections from the active key map. Disabled
// bindings are left out, and so are sections with nothing left.
func HelpSections(km keys.KeyMap) []HelpDialogSection {
	var out []HelpDialogSection
	for _, s := range km.Sections() {
		sec := HelpDialogSection{Title: s.Title}
		for _, b := range s.Bindings {
			if e, ok := entryFor(b); ok {
				sec.Entries = append(sec.Entries, e)
			}
		}
		if len(sec.Entries) > 0 {
			out = append(out, sec)
		}
	}
	return append(out, mouseSection)
}

func entryFor(b key.Binding) (HelpEntry, bool) {
	if !b.Enabled() || len(b.Keys()) == 0 {
		return HelpEntry{}, false
	}
	return HelpEntry{Key: strings.Join(b.Keys(), "/"), Desc: b.Help().Desc}, true
}

// HelpDialog lists the available shortcuts.
type HelpDialog struct {
	title    string
	sections []HelpDialogSection
}

// NewHelpDialog creates a help dialog with the given sections.
func NewHelpDialog(title string, sections []HelpDialogSection) *HelpDialog {
	return &HelpDialog{title: title, sections: sections}
}

// View renders the dialog box.
func (h *HelpDialog) View() string {
	keyWidth := 0
	for _, s := range h.sections {
		for _, e := range s.Entries {
			keyWidth = max(keyWidth, lipgloss.Width(e.Key))
		}
	}
	keyWidth += 2

	var lines []string
	for i, s := range h.sections {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines,
			styles.HelpSectionStyle.Render(s.Title),
			styles.HelpRuleStyle.Render(strings.Repeat("─", keyWidth+16)),
		)
		for _, e := range s.Entries {
			lines = append(lines, formatKeyDesc(e.Key, e.Desc, keyWidth))
		}
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.ModalTitleStyle.Render(h.title),
		"",
		strings.Join(lines, "\n"),
		styles.ModalHelpStyle.Render("esc/? close"),
	)
	return styles.ModalStyle.Render(content)
}

// Overlay renders the dialog centered over background.
func (h *HelpDialog) Overlay(background string, width, height int) string {
	modal := h.View()

	bgLayer := lipgloss.NewLayer(background)
	modalLayer := lipgloss.NewLayer(modal)

	x := max((width-lipgloss.Width(modal))/2, 0)
	y := max((height-lipgloss.Height(modal))/2, 0)
	modalLayer.X(x).Y(y).Z(1)

	return lipgloss.NewCompositor(bgLayer, modalLayer).Render()
}

// formatKeyDesc left-aligns keys by display width so wide glyphs line up.
func formatKeyDesc(k, desc string, width int) string {
	padded := k + Pad(width-lipgloss.Width(k))
	return styles.HelpKeyStyle.Render(padded) + styles.HelpDescStyle.Render(desc)
}
