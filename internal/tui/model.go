// Package tui implements the mosaic terminal UI: the tile grid, the slide
// viewer and toasts for transient notifications.
package tui

import (
	"context"
	"errors"
	"fmt"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"

	"github.com/colonyops/mosaic/internal/core/config"
	"github.com/colonyops/mosaic/internal/core/logging"
	"github.com/colonyops/mosaic/internal/core/notify"
	"github.com/colonyops/mosaic/internal/core/styles"
	"github.com/colonyops/mosaic/internal/gallery"
	"github.com/colonyops/mosaic/internal/tui/components"
	"github.com/colonyops/mosaic/internal/tui/keys"
	tuinotify "github.com/colonyops/mosaic/internal/tui/notify"
	"github.com/colonyops/mosaic/internal/tui/views/grid"
	"github.com/colonyops/mosaic/internal/tui/views/viewer"
)

const helpTitle = "Keyboard shortcuts"

// ViewType identifies which screen is shown.
type ViewType int

const (
	ViewGrid ViewType = iota
	ViewViewer
)

// Options configures the TUI model.
type Options struct {
	Gallery *gallery.Gallery
	Config  *config.Config
	// Bus feeds toasts. Nil disables them.
	Bus *tuinotify.Bus
	// Frames is the drag-box scheduler handed to the gallery.
	Frames *gallery.Coalescer
	Seed  string
	Ctx   context.Context
}

// ConfigReloadedMsg carries a config re-read from disk while running. Err
// is set when the new file failed to load; the running config is kept.
type ConfigReloadedMsg struct {
	Config *config.Config
	Err    error
}

// Model is the root bubbletea model.
type Model struct {
	gal  *gallery.Gallery
	keys keys.KeyMap

	activeView ViewType
	gridView   grid.View
	viewerView viewer.View
	lastIndex  int
	help       *components.HelpDialog

	toastController *ToastController
	toastView       *ToastView

	mobile   bool
	width    int
	height   int
	quitting bool
}

// New creates the root model.
func New(opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		def := config.DefaultConfig()
		def.Keys = config.DefaultKeys()
		cfg = &def
	}
	km := keys.New(cfg.Keys)

	toastCtrl := NewToastController()
	if opts.Bus != nil {
		opts.Bus.Subscribe(func(n notify.Notification) {
			toastCtrl.Push(n)
		})
	}

	return Model{
		gal:  opts.Gallery,
		keys: km,
		gridView: grid.New(opts.Gallery, grid.Options{
			Keys:   km,
			Frames: opts.Frames,
			Seed:   opts.Seed,
			Ctx:    opts.Ctx,
		}),
		viewerView: viewer.New(opts.Gallery, viewer.Options{
			Keys:   km,
			Mobile: cfg.TUI.Mobile,
			Ctx:    opts.Ctx,
		}),
		lastIndex:       -1,
		mobile:          cfg.TUI.Mobile,
		toastController: toastCtrl,
		toastView:       NewToastView(toastCtrl),
	}
}

// Init loads the first page.
func (m Model) Init() tea.Cmd {
	return m.gridView.Init()
}

// ActiveView returns the shown screen.
func (m Model) ActiveView() ViewType { return m.activeView }

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.toastController == nil {
		m.toastController = NewToastController()
	}

	switch msg := msg.(type) {
	case toastTickMsg:
		return m.handleToastTick()
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.gridView.SetSize(msg.Width, msg.Height)
		m.viewerView.SetSize(msg.Width, msg.Height)
		return m, m.ensureToastTick()
	case tea.BlurMsg:
		// Suspended terminal: stop anything playing.
		if m.gal != nil {
			m.gal.Playback.PauseAll()
		}
		return m, nil
	case ConfigReloadedMsg:
		return m.handleConfigReloaded(msg)
	case grid.OpenedMsg:
		return m.handleOpened(msg)
	case viewer.ClosedMsg:
		return m.handleClosed(msg.Index)
	case tea.KeyPressMsg:
		if m.help != nil {
			return m.handleHelpKey(msg)
		}
		if m.gridView.Capturing() {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help = components.NewHelpDialog(helpTitle, components.HelpSections(m.viewKeys()))
			return m, nil
		}
	case tea.MouseClickMsg, tea.MouseMotionMsg, tea.MouseReleaseMsg, tea.MouseWheelMsg:
		if m.help != nil {
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch {
	case isInput(msg) && m.activeView == ViewViewer:
		m.viewerView, cmd = m.viewerView.Update(msg)
	case isInput(msg):
		m.gridView, cmd = m.gridView.Update(msg)
	default:
		var gcmd, vcmd tea.Cmd
		m.gridView, gcmd = m.gridView.Update(msg)
		m.viewerView, vcmd = m.viewerView.Update(msg)
		cmd = tea.Batch(gcmd, vcmd)
	}

	m.syncView()
	return m, tea.Batch(cmd, m.ensureToastTick())
}

// handleConfigReloaded applies the parts of a new config that can change
// without a restart: theme and key bindings.
func (m Model) handleConfigReloaded(msg ConfigReloadedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.toastController.Push(notify.Notification{
			Level:   notify.LevelError,
			Message: fmt.Sprintf("Config not reloaded: %v", msg.Err),
		})
		return m, m.ensureToastTick()
	}

	cfg := msg.Config
	note := notify.Notification{Level: notify.LevelInfo, Message: "Config reloaded"}
	if !styles.ApplyTheme(cfg.TUI.Theme) {
		note = notify.Notification{Level: notify.LevelWarning, Message: fmt.Sprintf("Config reloaded, unknown theme %q", cfg.TUI.Theme)}
	}

	m.keys = keys.New(cfg.Keys)
	m.gridView.SetKeys(m.keys)
	m.viewerView.Reconfigure(m.keys)
	if m.help != nil {
		m.help = components.NewHelpDialog(helpTitle, components.HelpSections(m.viewKeys()))
	}

	m.toastController.Push(note)
	return m, m.ensureToastTick()
}

// handleHelpKey closes the help overlay on close, help or quit and swallows
// everything else.
func (m Model) handleHelpKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Close, m.keys.Help, m.keys.Quit) {
		m.help = nil
	}
	return m, nil
}

// viewKeys returns the key map the active screen honors.
func (m Model) viewKeys() keys.KeyMap {
	if m.mobile && m.activeView == ViewViewer {
		return m.keys.Mobile()
	}
	return m.keys
}

func isInput(msg tea.Msg) bool {
	switch msg.(type) {
	case tea.KeyPressMsg, tea.MouseClickMsg, tea.MouseMotionMsg, tea.MouseReleaseMsg, tea.MouseWheelMsg:
		return true
	}
	return false
}

func (m Model) handleOpened(msg grid.OpenedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil && !errors.Is(msg.Err, gallery.ErrOutOfRange) && !errors.Is(msg.Err, context.Canceled) {
		logger := logging.Component("tui")
		logger.Debug().Err(msg.Err).Int("index", msg.Index).Msg("open viewer failed")
	}
	if msg.Open {
		m.activeView = ViewViewer
	}
	m.syncView()
	return m, m.ensureToastTick()
}

func (m Model) handleClosed(index int) (tea.Model, tea.Cmd) {
	if index < 0 {
		index = m.lastIndex
	}
	m.activeView = ViewGrid
	m.gridView.Reveal(index)
	return m, m.ensureToastTick()
}

// syncView follows the coordinator: the viewer may close on its own when
// the list empties or the params change.
func (m *Model) syncView() {
	if m.gal == nil {
		return
	}
	st := m.gal.Coordinator.State()
	if st.Open {
		m.lastIndex = st.Index
		return
	}
	if m.activeView == ViewViewer {
		m.activeView = ViewGrid
		m.gridView.Reveal(m.lastIndex)
	}
}

func (m Model) handleToastTick() (tea.Model, tea.Cmd) {
	m.toastController.Tick(toastTickInterval)
	if m.toastController.HasToasts() {
		return m, scheduleToastTick()
	}
	m.toastController.SetTicking(false)
	return m, nil
}

// ensureToastTick starts the TTL countdown when toasts arrived while no
// tick was scheduled.
func (m Model) ensureToastTick() tea.Cmd {
	if !m.toastController.HasToasts() || m.toastController.Ticking() {
		return nil
	}
	m.toastController.SetTicking(true)
	return scheduleToastTick()
}

// View renders the TUI.
func (m Model) View() tea.View {
	if m.quitting {
		return tea.NewView("")
	}

	v := tea.NewView(m.render())
	v.AltScreen = true
	v.MouseMode = tea.MouseModeAllMotion
	v.ReportFocus = true
	return v
}

// render composes the active screen and the toast overlay.
func (m Model) render() string {
	w, h := m.width, m.height
	if w == 0 {
		w = 80
	}
	if h == 0 {
		h = 24
	}

	var content string
	if m.activeView == ViewViewer {
		content = m.viewerView.View()
	} else {
		content = m.gridView.View()
	}

	if m.help != nil {
		content = m.help.Overlay(content, w, h)
	}
	if m.toastController.HasToasts() {
		content = m.toastView.Overlay(content, w, h)
	}
	return content
}
