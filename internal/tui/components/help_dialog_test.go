package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/mosaic/internal/core/config"
	"github.com/colonyops/mosaic/internal/tui/keys"
)

func TestHelpSections(t *testing.T) {
	sections := HelpSections(keys.New(config.DefaultKeys()))

	titles := make([]string, 0, len(sections))
	for _, s := range sections {
		titles = append(titles, s.Title)
	}
	assert.Equal(t, []string{"Grid", "Viewer", "General", "Mouse"}, titles)
	assert.Contains(t, sections[1].Entries, HelpEntry{Key: "right/l", Desc: "next"})
}

func TestHelpSections_Mobile(t *testing.T) {
	sections := HelpSections(keys.New(config.DefaultKeys()).Mobile())

	viewer := sections[1]
	require.Equal(t, "Viewer", viewer.Title)
	assert.Equal(t, []HelpEntry{{Key: "esc", Desc: "close"}}, viewer.Entries)
}

func TestHelpDialog_View(t *testing.T) {
	d := NewHelpDialog("Keys", []HelpDialogSection{
		{Title: "Grid", Entries: []HelpEntry{{Key: "x", Desc: "delete"}, {Key: "ctrl+a", Desc: "select all"}}},
	})

	out := ansi.Strip(d.View())
	assert.Contains(t, out, "Keys")
	assert.Contains(t, out, "x       delete")
	assert.Contains(t, out, "ctrl+a  select all")
	assert.Contains(t, out, "esc/? close")
}

func TestHelpDialog_Overlay(t *testing.T) {
	bg := strings.TrimRight(strings.Repeat(strings.Repeat(".", 60)+"\n", 30), "\n")
	d := NewHelpDialog("Keys", []HelpDialogSection{{Title: "General", Entries: []HelpEntry{{Key: "q", Desc: "quit"}}}})

	out := ansi.Strip(d.Overlay(bg, 60, 30))
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 30)
	assert.Equal(t, strings.Repeat(".", 60), lines[0])
	assert.Contains(t, out, "quit")
}

func TestPad(t *testing.T) {
	assert.Equal(t, "", Pad(-1))
	assert.Equal(t, "   ", Pad(3))
	assert.Len(t, Pad(100), 100)
}
