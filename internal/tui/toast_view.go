package tui

import (
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"

	"github.com/colonyops/mosaic/internal/core/notify"
	"github.com/colonyops/mosaic/internal/core/styles"
)

type toastTickMsg time.Time

func scheduleToastTick() tea.Cmd {
	return tea.Tick(toastTickInterval, func(t time.Time) tea.Msg {
		return toastTickMsg(t)
	})
}

// ToastView draws the controller's stack in the lower-right corner.
type ToastView struct {
	controller *ToastController
}

func NewToastView(controller *ToastController) *ToastView {
	return &ToastView{controller: controller}
}

// View renders the stack, newest at the bottom.
func (v *ToastView) View() string {
	toasts := v.controller.Toasts()
	if len(toasts) == 0 {
		return ""
	}

	rendered := make([]string, len(toasts))
	for i, t := range toasts {
		rendered[i] = renderToast(t)
	}
	return strings.Join(rendered, "\n")
}

func renderToast(t toast) string {
	icon, style := styles.IconNotifyInfo, styles.ToastInfoStyle
	switch t.notification.Level {
	case notify.LevelError:
		icon, style = styles.IconNotifyError, styles.ToastErrorStyle
	case notify.LevelWarning:
		icon, style = styles.IconNotifyWarning, styles.ToastWarningStyle
	}

	text := icon + " " + t.notification.Message
	if t.count > 1 {
		text += fmt.Sprintf(" (x%d)", t.count)
	}
	return style.Width(toastWidth).Render(text)
}

// Overlay composites the stack over background.
func (v *ToastView) Overlay(background string, width, height int) string {
	stack := v.View()
	if stack == "" {
		return background
	}

	layer := lipgloss.NewLayer(stack).
		X(max(width-lipgloss.Width(stack)-1, 0)).
		Y(max(height-lipgloss.Height(stack)-1, 0)).
		Z(2)

	return lipgloss.NewCompositor(lipgloss.NewLayer(background), layer).Render()
}
