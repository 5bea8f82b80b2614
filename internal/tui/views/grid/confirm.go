package grid

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"

	"github.com/colonyops/mosaic/internal/core/styles"
)

// ConfirmChoice is the outcome of the delete confirmation.
type ConfirmChoice int

const (
	ChoicePending ConfirmChoice = iota
	ChoiceDelete
	// ChoiceAlways deletes and skips confirmation for the rest of the session.
	ChoiceAlways
	ChoiceCancel
)

var confirmButtons = []struct {
	label  string
	choice ConfirmChoice
}{
	{"Delete", ChoiceDelete},
	{"Always", ChoiceAlways},
	{"Cancel", ChoiceCancel},
}

// ConfirmModal asks before deleting the selected items.
type ConfirmModal struct {
	count    int
	selected int
	choice   ConfirmChoice
}

// NewConfirmModal creates a confirmation for count items.
func NewConfirmModal(count int) ConfirmModal {
	return ConfirmModal{count: count}
}

// Update handles input for the confirmation.
func (m ConfirmModal) Update(msg tea.Msg) ConfirmModal {
	keyMsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return m
	}

	switch keyMsg.String() {
	case "left", "h", "shift+tab":
		m.selected = (m.selected + len(confirmButtons) - 1) % len(confirmButtons)
	case "right", "l", "tab":
		m.selected = (m.selected + 1) % len(confirmButtons)
	case "enter":
		m.choice = confirmButtons[m.selected].choice
	case "y", "Y":
		m.choice = ChoiceDelete
	case "a", "A":
		m.choice = ChoiceAlways
	case "n", "N", "esc":
		m.choice = ChoiceCancel
	}
	return m
}

// Choice returns the decision, or ChoicePending.
func (m ConfirmModal) Choice() ConfirmChoice { return m.choice }

// Overlay renders the modal centered over background.
func (m ConfirmModal) Overlay(background string, width, height int) string {
	buttons := make([]string, 0, len(confirmButtons)*2)
	for i, b := range confirmButtons {
		if i > 0 {
			buttons = append(buttons, "  ")
		}
		if i == m.selected {
			buttons = append(buttons, styles.ModalButtonSelectedStyle.Render(b.label))
		} else {
			buttons = append(buttons, styles.ModalButtonStyle.Render(b.label))
		}
	}

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		styles.ModalTitleStyle.Render(styles.IconTrash+" Delete"),
		"",
		fmt.Sprintf("Delete %d item(s)? This cannot be undone.", m.count),
		lipgloss.NewStyle().MarginTop(1).Render(lipgloss.JoinHorizontal(lipgloss.Center, buttons...)),
		styles.ModalHelpStyle.Render("←/→ select • enter confirm • a always • esc cancel"),
	)
	modal := styles.ModalStyle.Render(content)

	return centerOver(background, modal, width, height)
}

func centerOver(background, fg string, width, height int) string {
	bg := lipgloss.NewLayer(background)
	layer := lipgloss.NewLayer(fg)
	x := max((width-lipgloss.Width(fg))/2, 0)
	y := max((height-lipgloss.Height(fg))/2, 0)
	layer.X(x).Y(y).Z(1)
	return lipgloss.NewCompositor(bg, layer).Render()
}
