package grid

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"

	"github.com/colonyops/mosaic/internal/core/media"
	"github.com/colonyops/mosaic/internal/core/styles"
)

const (
	previewMaxWidth  = 80
	previewMaxHeight = 24
	previewMargin    = 4
	previewChrome    = 6
	previewPadding   = 4
)

// PreviewDialog lists the items a preview-mode delete would remove.
type PreviewDialog struct {
	items    []media.Item
	message  string
	viewport viewport.Model
	closed   bool
}

// NewPreviewDialog creates a read-only dialog for items.
func NewPreviewDialog(items []media.Item, message string, width, height int) PreviewDialog {
	w := min(width-previewMargin, previewMaxWidth)
	h := min(height-previewMargin, previewMaxHeight)

	vp := viewport.New(
		viewport.WithWidth(max(w-previewPadding, 10)),
		viewport.WithHeight(max(h-previewChrome, 3)),
	)

	lines := make([]string, 0, len(items))
	for _, it := range items {
		icon := styles.IconImage
		if it.IsVideo() {
			icon = styles.IconVideo
		}
		lines = append(lines, styles.PreviewItemStyle.Render(
			fmt.Sprintf("%s %-8d %s", icon, it.MediaID, it.Filename),
		))
	}
	vp.SetContent(strings.Join(lines, "\n"))

	return PreviewDialog{items: items, message: message, viewport: vp}
}

// Update scrolls the list; esc, enter or q close the dialog.
func (d PreviewDialog) Update(msg tea.Msg) PreviewDialog {
	if keyMsg, ok := msg.(tea.KeyPressMsg); ok {
		switch keyMsg.String() {
		case "esc", "enter", "q":
			d.closed = true
			return d
		case "up", "k":
			d.viewport.ScrollUp(1)
			return d
		case "down", "j":
			d.viewport.ScrollDown(1)
			return d
		}
	}
	d.viewport, _ = d.viewport.Update(msg)
	return d
}

// Closed reports whether the user dismissed the dialog.
func (d PreviewDialog) Closed() bool { return d.closed }

// Items returns the previewed items.
func (d PreviewDialog) Items() []media.Item { return d.items }

// Overlay renders the dialog centered over background.
func (d PreviewDialog) Overlay(background string, width, height int) string {
	scroll := ""
	if d.viewport.TotalLineCount() > d.viewport.VisibleLineCount() {
		scroll = styles.PreviewScrollStyle.Render(fmt.Sprintf(" %d%%", int(d.viewport.ScrollPercent()*100)))
	}

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		styles.PreviewTitleStyle.Render(d.message)+scroll,
		"",
		d.viewport.View(),
		"",
		styles.ModalHelpStyle.Render("nothing was deleted • ↑/↓ scroll • esc close"),
	)
	return centerOver(background, styles.ModalStyle.Render(content), width, height)
}
