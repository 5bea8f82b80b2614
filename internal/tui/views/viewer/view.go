// Package viewer renders the full-screen slide viewer on top of
// gallery.Viewer.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"

	"github.com/colonyops/mosaic/internal/core/media"
	"github.com/colonyops/mosaic/internal/core/styles"
	"github.com/colonyops/mosaic/internal/gallery"
	"github.com/colonyops/mosaic/internal/tui/keys"
)

const infoPanelWidth = 44

// actionMsg reports the end of a viewer action run as a command.
type actionMsg struct {
	action string
	err    error
}

// ClosedMsg is emitted when the viewer closed. Index is the last shown
// position, or -1.
type ClosedMsg struct {
	Index int
}

// Options configures the viewer view.
type Options struct {
	Keys keys.KeyMap
	// Mobile keeps only the close and quit bindings.
	Mobile bool
	Ctx    context.Context
}

// View is the viewer sub-model.
type View struct {
	gal    *gallery.Gallery
	keys   keys.KeyMap
	mobile bool
	ctx    context.Context

	width    int
	height   int
	showInfo bool
	info     *infoCache
	hint     string
}

// New creates the viewer view over gal.
func New(gal *gallery.Gallery, opts Options) View {
	km := opts.Keys
	if opts.Mobile {
		km = km.Mobile()
	}
	ctx := opts.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	return View{
		gal:    gal,
		keys:   km,
		mobile: opts.Mobile,
		ctx:    ctx,
		info:   &infoCache{},
	}
}

// Reconfigure swaps the key map and drops the cached info panel, which was
// rendered with the old theme.
func (v *View) Reconfigure(km keys.KeyMap) {
	if v.mobile {
		km = km.Mobile()
	}
	v.keys = km
	*v.info = infoCache{}
}

// SetSize updates the screen size.
func (v *View) SetSize(width, height int) {
	v.width = width
	v.height = height
}

// Update handles messages for the viewer.
func (v View) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case actionMsg:
		return v.handleAction(msg)
	case tea.KeyPressMsg:
		return v.handleKey(msg)
	case tea.MouseWheelMsg:
		if msg.Mouse().Button == tea.MouseWheelDown {
			return v, v.run("next", v.gal.Viewer.Next)
		}
		v.hint = hintFor(v.gal.Viewer.Prev())
		return v, nil
	}
	return v, nil
}

func (v View) handleKey(msg tea.KeyPressMsg) (View, tea.Cmd) {
	viewer := v.gal.Viewer
	v.hint = ""

	switch {
	case key.Matches(msg, v.keys.Close):
		return v, v.close()
	case key.Matches(msg, v.keys.Next):
		return v, v.run("next", viewer.Next)
	case key.Matches(msg, v.keys.Prev):
		v.hint = hintFor(viewer.Prev())
		return v, nil
	case key.Matches(msg, v.keys.Like):
		return v, v.run("like", viewer.ToggleLike)
	case key.Matches(msg, v.keys.Favorite):
		return v, v.run("favorite", viewer.ToggleFavorite)
	case key.Matches(msg, v.keys.Delete):
		return v, v.run("delete", viewer.DeleteCurrent)
	case key.Matches(msg, v.keys.Info):
		v.showInfo = !v.showInfo
		return v, nil
	}
	return v, nil
}

func (v View) handleAction(msg actionMsg) (View, tea.Cmd) {
	v.hint = hintFor(msg.err)
	if !v.gal.Coordinator.State().Open {
		return v, func() tea.Msg { return ClosedMsg{Index: -1} }
	}
	return v, nil
}

// hintFor maps expected refusals to a status line. Other failures were
// already published as notifications.
func hintFor(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, gallery.ErrOutOfRange):
		return "no more slides"
	case errors.Is(err, gallery.ErrLoading):
		return "loading more…"
	case errors.Is(err, gallery.ErrBusy):
		return "still saving…"
	default:
		return ""
	}
}

func (v View) run(action string, fn func(context.Context) error) tea.Cmd {
	ctx := v.ctx
	return func() tea.Msg {
		return actionMsg{action: action, err: fn(ctx)}
	}
}

func (v View) close() tea.Cmd {
	index := v.gal.Coordinator.SelectedIndex()
	v.gal.Viewer.Close()
	return func() tea.Msg { return ClosedMsg{Index: index} }
}

// View renders the viewer screen.
func (v View) View() string {
	item, ok := v.gal.Viewer.Current()
	if !ok {
		pending := v.gal.Coordinator.State().Pending
		msg := "Nothing to show"
		if pending >= 0 {
			msg = fmt.Sprintf("Loading slide %d…", pending+1)
		}
		return lipgloss.Place(v.width, v.height, lipgloss.Center, lipgloss.Center,
			styles.ViewerPlaceholder.Render(msg))
	}

	title := v.renderTitle(item)
	status := v.renderStatus(item)
	bodyHeight := max(v.height-lipgloss.Height(title)-lipgloss.Height(status), 3)

	bodyWidth := v.width
	var info string
	if v.showInfo && v.width > infoPanelWidth*2 {
		info = styles.ViewerInfoStyle.Width(infoPanelWidth).Height(bodyHeight).
			Render(v.info.render(item, infoPanelWidth-4))
		bodyWidth = v.width - lipgloss.Width(info)
	}

	body := v.renderSlide(item, bodyWidth, bodyHeight)
	if info != "" {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, info)
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, body, status)
}

func (v View) renderTitle(it media.Item) string {
	icon := styles.IconImage
	if it.IsVideo() {
		icon = styles.IconVideo
	}

	st := v.gal.Coordinator.State()
	total := fmt.Sprintf("%d", len(v.gal.Coordinator.Items()))
	if v.gal.Coordinator.HasMore() {
		total += "+"
	}

	left := styles.ViewerTitleStyle.Render(icon + " " + it.Filename)
	right := styles.ViewerIndexStyle.Render(fmt.Sprintf("%d / %s", st.Index+1, total))
	gap := max(v.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return left + strings.Repeat(" ", gap) + right
}

func (v View) renderSlide(it media.Item, width, height int) string {
	var lines []string
	if it.IsVideo() {
		state := "paused"
		if v.gal.Playback.Active() == it.ID {
			state = "playing in external player"
		}
		lines = append(lines, styles.TileVideoStyle.Render("▶ video"), styles.ViewerPlaceholder.Render(state))
	} else {
		lines = append(lines, styles.ViewerPlaceholder.Render("[ image ]"))
	}
	lines = append(lines, "", styles.ViewerPlaceholder.Render(it.ResourceURL))

	content := lipgloss.JoinVertical(lipgloss.Center, lines...)
	frame := styles.ViewerFrameStyle
	innerW := max(width-frame.GetHorizontalFrameSize(), 1)
	innerH := max(height-frame.GetVerticalFrameSize(), 1)
	return frame.Render(lipgloss.Place(innerW, innerH, lipgloss.Center, lipgloss.Center, content))
}

func (v View) renderStatus(it media.Item) string {
	viewer := v.gal.Viewer

	like := styles.ViewerFlagOffStyle.Render(styles.IconHeartOff + " like")
	if viewer.Liked() {
		like = styles.ViewerFlagOnStyle.Render(styles.IconHeart + " liked")
	}
	fav := styles.ViewerFlagOffStyle.Render(styles.IconStarOff + " favorite")
	if viewer.Favorited() {
		fav = styles.ViewerFlagOnStyle.Render(styles.IconStar + " favorited")
	}

	parts := []string{like, fav}
	if viewer.Busy(it.MediaID) {
		parts = append(parts, styles.ViewerBusyStyle.Render("saving…"))
	}
	if v.hint != "" {
		parts = append(parts, styles.StatusHintStyle.Render(v.hint))
	}

	flags := strings.Join(parts, "  ")
	help := styles.StatusBarStyle.Render(keys.HelpLine(v.keys.ViewerHelp()))
	return flags + "\n" + help
}
