// Package grid renders the paginated tile grid: keyboard and mouse
// selection, the drag-box, the load-more sentinel, the query bar and the
// delete flow.
package grid

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/colonyops/mosaic/internal/core/media"
	"github.com/colonyops/mosaic/internal/core/styles"
	"github.com/colonyops/mosaic/internal/gallery"
	"github.com/colonyops/mosaic/internal/tui/keys"
)


// loadedMsg reports the end of a list fetch.
type loadedMsg struct {
	op    string
	added int
	err   error
}

// deletedMsg reports the end of a batch delete.
type deletedMsg struct {
	outcome gallery.DeleteOutcome
	err     error
}

// frameMsg carries one frame of coalesced drag-box hit tests to the update
// loop.
type frameMsg struct{ run func() }

// OpenedMsg is emitted after the grid asked the coordinator to open the
// viewer. The root model switches to the viewer when Open is true.
type OpenedMsg struct {
	Index int
	Open  bool
	Err   error
}

// Options configures the grid view.
type Options struct {
	Keys keys.KeyMap
	// Frames is the gallery's drag-box scheduler. Its fired frames are run
	// by the update loop. Nil means hit tests run immediately on every
	// motion event.
	Frames *gallery.Coalescer
	// Seed restores the shuffle when the query bar is cleared.
	Seed string
	Ctx  context.Context
}

// View is the grid sub-model.
type View struct {
	gal   *gallery.Gallery
	ctrl  *Controller
	keys  keys.KeyMap
	frames *gallery.Coalescer
	seed    string
	ctx   context.Context

	width  int
	height int

	spinner  spinner.Model
	spinning bool
	loading  bool
	deleting bool
	framing  bool

	query    textinput.Model
	querying bool

	confirm    ConfirmModal
	confirming bool
	preview    PreviewDialog
	previewing bool
}

// New creates the grid view over gal.
func New(gal *gallery.Gallery, opts Options) View {
	ctrl := NewController(gal.Grid.Items)
	gal.Grid.Selection().SetTileLocator(ctrl.TileRects)

	ctx := opts.Ctx
	if ctx == nil {
		ctx = context.Background()
	}

	s := spinner.New()
	s.Spinner = spinner.MiniDot

	q := textinput.New()
	q.Prompt = styles.IconSearch + " "
	q.Placeholder = "#tag words"
	q.CharLimit = 120
	qs := textinput.DefaultStyles(true)
	qs.Focused.Prompt = styles.QueryPromptStyle
	qs.Cursor.Color = styles.ColorPrimary
	q.SetStyles(qs)

	return View{
		gal:      gal,
		ctrl:     ctrl,
		keys:     opts.Keys,
		frames:   opts.Frames,
		seed:     opts.Seed,
		ctx:      ctx,
		spinner:  s,
		spinning: true,
		loading:  true,
		query:    q,
	}
}

// Init fetches the first page.
func (v View) Init() tea.Cmd {
	return tea.Batch(v.spinner.Tick, v.refresh())
}

// SetKeys replaces the key map after a config reload.
func (v *View) SetKeys(km keys.KeyMap) {
	v.keys = km
}

// SetSize updates the screen size.
func (v *View) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.relayout()
}

// Controller exposes the layout, mainly for tests.
func (v View) Controller() *Controller { return v.ctrl }

// Capturing reports whether the grid owns every key (query bar or modal
// open), so global bindings must not fire.
func (v View) Capturing() bool {
	return v.querying || v.confirming || v.previewing
}

// Reveal moves the cursor to index, used when the viewer closes.
func (v *View) Reveal(index int) {
	if index >= 0 {
		v.ctrl.SetCursor(index)
	}
}

func (v *View) relayout() {
	originY := 1
	if v.querying {
		originY++
	}
	// Header and query bar above, status and selection bar below.
	v.ctrl.SetSize(v.width, max(v.height-originY-2, TileHeight), originY)
}

// Update handles messages for the grid.
func (v View) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		return v.handleLoaded(msg)
	case deletedMsg:
		return v.handleDeleted(msg)
	case frameMsg:
		v.framing = false
		if msg.run != nil {
			msg.run()
		}
		return v, nil
	case spinner.TickMsg:
		if !v.spinning {
			return v, nil
		}
		if !v.busy() {
			v.spinning = false
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd
	case tea.KeyPressMsg:
		return v.handleKey(msg)
	case tea.MouseClickMsg:
		return v.handleClick(msg.Mouse())
	case tea.MouseMotionMsg:
		return v.handleMotion(msg.Mouse())
	case tea.MouseReleaseMsg:
		return v.handleRelease(msg.Mouse())
	case tea.MouseWheelMsg:
		m := msg.Mouse()
		if m.Button == tea.MouseWheelDown {
			v.ctrl.Scroll(1)
		} else {
			v.ctrl.Scroll(-1)
		}
		return v, v.sentinel()
	}

	if v.querying {
		var cmd tea.Cmd
		v.query, cmd = v.query.Update(msg)
		return v, cmd
	}
	return v, nil
}

func (v View) handleLoaded(msg loadedMsg) (View, tea.Cmd) {
	v.loading = false
	v.ctrl.Clamp()
	if msg.err != nil && !errors.Is(msg.err, context.Canceled) {
		// The source already notified; the status bar shows Err().
		return v, nil
	}
	return v, v.sentinel()
}

func (v View) handleDeleted(msg deletedMsg) (View, tea.Cmd) {
	v.deleting = false
	v.ctrl.Clamp()
	if msg.err != nil {
		return v, nil
	}
	if len(msg.outcome.Preview) > 0 {
		v.preview = NewPreviewDialog(msg.outcome.Preview, msg.outcome.Message, v.width, v.height)
		v.previewing = true
	}
	return v, v.sentinel()
}

func (v View) handleKey(msg tea.KeyPressMsg) (View, tea.Cmd) {
	switch {
	case v.previewing:
		v.preview = v.preview.Update(msg)
		if v.preview.Closed() {
			v.previewing = false
		}
		return v, nil
	case v.confirming:
		return v.handleConfirmKey(msg)
	case v.querying:
		return v.handleQueryKey(msg)
	}

	sel := v.gal.Grid.Selection()
	items := v.gal.Grid.Items()
	keyStr := msg.String()

	switch keyStr {
	case "up", "k":
		v.ctrl.Move(0, -1)
		return v, v.sentinel()
	case "down", "j":
		v.ctrl.Move(0, 1)
		return v, v.sentinel()
	case "left", "h":
		v.ctrl.Move(-1, 0)
		return v, nil
	case "right", "l":
		v.ctrl.Move(1, 0)
		return v, v.sentinel()
	case "shift+up", "shift+down", "shift+left", "shift+right":
		return v.extendSelection(keyStr)
	case "pgup":
		v.ctrl.Move(0, -v.ctrl.VisibleRows())
		return v, nil
	case "pgdown":
		v.ctrl.Move(0, v.ctrl.VisibleRows())
		return v, v.sentinel()
	case "home", "g":
		v.ctrl.SetCursor(0)
		return v, nil
	case "end", "G":
		v.ctrl.SetCursor(len(items) - 1)
		return v, v.sentinel()
	}

	switch {
	case key.Matches(msg, v.keys.Open):
		if len(items) == 0 {
			return v, nil
		}
		return v, v.open(v.ctrl.Cursor())
	case key.Matches(msg, v.keys.Select):
		if c := v.ctrl.Cursor(); c < len(items) {
			sel.ToggleOne(items[c].ID, c)
		}
	case key.Matches(msg, v.keys.SelectAll):
		if len(items) > 0 {
			sel.SelectRange(0, len(items)-1, false)
		}
	case key.Matches(msg, v.keys.Clear), key.Matches(msg, v.keys.Close):
		sel.Clear()
	case key.Matches(msg, v.keys.Delete):
		return v.startDelete()
	case key.Matches(msg, v.keys.Refresh):
		v.loading = true
		return v, tea.Batch(v.startSpinner(), v.refresh())
	case key.Matches(msg, v.keys.Retry):
		if v.gal.Grid.Err() == "" {
			return v, nil
		}
		v.loading = true
		return v, tea.Batch(v.startSpinner(), v.retry())
	case key.Matches(msg, v.keys.Search):
		v.querying = true
		v.query.SetValue(FormatQuery(v.gal.Grid.Source().Params()))
		v.query.CursorEnd()
		v.relayout()
		return v, v.query.Focus()
	}
	return v, nil
}

// extendSelection moves the cursor and range-selects from the anchor, the
// keyboard form of shift+click.
func (v View) extendSelection(keyStr string) (View, tea.Cmd) {
	sel := v.gal.Grid.Selection()
	shift := gallery.Modifiers{Shift: true}
	if sel.Anchor() < 0 {
		sel.Click(v.ctrl.Cursor(), shift)
	}

	switch keyStr {
	case "shift+up":
		v.ctrl.Move(0, -1)
	case "shift+down":
		v.ctrl.Move(0, 1)
	case "shift+left":
		v.ctrl.Move(-1, 0)
	case "shift+right":
		v.ctrl.Move(1, 0)
	}
	sel.Click(v.ctrl.Cursor(), shift)
	return v, v.sentinel()
}

func (v View) handleQueryKey(msg tea.KeyPressMsg) (View, tea.Cmd) {
	switch msg.String() {
	case "esc":
		v.querying = false
		v.query.Blur()
		v.relayout()
		return v, nil
	case "enter":
		v.querying = false
		v.query.Blur()
		v.relayout()
		params := ParseQuery(v.query.Value(), v.seed)
		v.loading = true
		v.ctrl.SetCursor(0)
		return v, tea.Batch(v.startSpinner(), v.setParams(params))
	}

	var cmd tea.Cmd
	v.query, cmd = v.query.Update(msg)
	return v, cmd
}

func (v View) startDelete() (View, tea.Cmd) {
	sel := v.gal.Grid.Selection()
	if sel.Len() == 0 || v.deleting {
		return v, nil
	}
	if v.gal.Grid.NeedsConfirm() {
		v.confirm = NewConfirmModal(sel.Len())
		v.confirming = true
		return v, nil
	}
	v.deleting = true
	return v, tea.Batch(v.startSpinner(), v.deleteSelected())
}

func (v View) handleConfirmKey(msg tea.KeyPressMsg) (View, tea.Cmd) {
	v.confirm = v.confirm.Update(msg)

	switch v.confirm.Choice() {
	case ChoicePending:
		return v, nil
	case ChoiceAlways:
		v.gal.Grid.SetSkipConfirm()
	case ChoiceCancel:
		v.confirming = false
		return v, nil
	}

	v.confirming = false
	v.deleting = true
	return v, tea.Batch(v.startSpinner(), v.deleteSelected())
}

func modifiers(m tea.Mouse) gallery.Modifiers {
	return gallery.Modifiers{
		Shift: m.Mod.Contains(tea.ModShift),
		Ctrl:  m.Mod.Contains(tea.ModCtrl) || m.Mod.Contains(tea.ModMeta) || m.Mod.Contains(tea.ModSuper),
		Alt:   m.Mod.Contains(tea.ModAlt),
	}
}

func (v View) handleClick(m tea.Mouse) (View, tea.Cmd) {
	if m.Button != tea.MouseLeft || v.Capturing() {
		return v, nil
	}

	sel := v.gal.Grid.Selection()
	mods := modifiers(m)
	index, onTile := v.ctrl.IndexAt(m.X, m.Y)
	if !onTile {
		pt := gallery.Point{X: m.X, Y: m.Y}
		if v.ctrl.Body().Contains(pt) {
			sel.BeginDrag(pt, mods, false)
		}
		return v, nil
	}

	v.ctrl.SetCursor(index)
	if sel.Click(index, mods) == gallery.ClickOpen {
		return v, v.open(index)
	}
	return v, nil
}

func (v View) handleMotion(m tea.Mouse) (View, tea.Cmd) {
	sel := v.gal.Grid.Selection()
	if !sel.Dragging() {
		return v, nil
	}
	sel.DragTo(gallery.Point{X: m.X, Y: m.Y})
	return v.scheduleFrame()
}

func (v View) handleRelease(m tea.Mouse) (View, tea.Cmd) {
	sel := v.gal.Grid.Selection()
	if !sel.Dragging() {
		return v, nil
	}
	sel.DragTo(gallery.Point{X: m.X, Y: m.Y})
	sel.EndDrag()
	return v, nil
}

// scheduleFrame waits for the coalescer's next frame. One wait is
// outstanding at a time; a wait left over from an ended drag is picked up by
// the next one.
func (v View) scheduleFrame() (View, tea.Cmd) {
	if v.frames == nil || v.framing {
		return v, nil
	}
	v.framing = true
	frames, ctx := v.frames.Frames(), v.ctx
	return v, func() tea.Msg {
		select {
		case fn := <-frames:
			return frameMsg{run: fn}
		case <-ctx.Done():
			return nil
		}
	}
}

// sentinel loads the next page when the last rendered tile is near the
// end of the list.
func (v *View) sentinel() tea.Cmd {
	last := v.ctrl.LastVisible()
	if !v.gal.Grid.ShouldLoad(last) {
		return nil
	}
	grid, ctx := v.gal.Grid, v.ctx
	return tea.Batch(v.startSpinner(), func() tea.Msg {
		n, err := grid.NearEnd(ctx, last)
		return loadedMsg{op: "more", added: n, err: err}
	})
}

func (v *View) startSpinner() tea.Cmd {
	if v.spinning {
		return nil
	}
	v.spinning = true
	return v.spinner.Tick
}

func (v View) busy() bool {
	return v.loading || v.deleting || v.gal.Grid.IsLoadingMore()
}

func (v View) refresh() tea.Cmd {
	grid, ctx := v.gal.Grid, v.ctx
	return func() tea.Msg {
		n, err := grid.Refresh(ctx)
		return loadedMsg{op: "refresh", added: n, err: err}
	}
}

func (v View) retry() tea.Cmd {
	grid, ctx := v.gal.Grid, v.ctx
	return func() tea.Msg {
		n, err := grid.Retry(ctx)
		return loadedMsg{op: "retry", added: n, err: err}
	}
}

func (v View) setParams(params media.Params) tea.Cmd {
	grid, ctx := v.gal.Grid, v.ctx
	return func() tea.Msg {
		n, err := grid.SetParams(ctx, params)
		return loadedMsg{op: "params", added: n, err: err}
	}
}

func (v View) deleteSelected() tea.Cmd {
	grid, ctx := v.gal.Grid, v.ctx
	return func() tea.Msg {
		out, err := grid.DeleteSelected(ctx)
		return deletedMsg{outcome: out, err: err}
	}
}

func (v View) open(index int) tea.Cmd {
	coord, ctx := v.gal.Coordinator, v.ctx
	return func() tea.Msg {
		ok, err := coord.OpenAt(ctx, index)
		return OpenedMsg{Index: index, Open: ok, Err: err}
	}
}

// View renders the grid screen.
func (v View) View() string {
	var b strings.Builder
	b.WriteString(v.renderHeader())
	b.WriteString("\n")
	if v.querying {
		b.WriteString(v.query.View())
		b.WriteString("\n")
	}
	b.WriteString(v.renderBody())
	b.WriteString("\n")
	b.WriteString(v.renderSelectionBar())
	b.WriteString("\n")
	b.WriteString(v.renderStatus())

	content := b.String()
	content = v.overlayDragBox(content)

	switch {
	case v.confirming:
		content = v.confirm.Overlay(content, v.width, v.height)
	case v.previewing:
		content = v.preview.Overlay(content, v.width, v.height)
	}
	return content
}

func (v View) renderHeader() string {
	params := v.gal.Grid.Source().Params()
	icon := styles.IconShuffle
	switch params.Mode() {
	case media.ModeTag:
		icon = styles.IconTag
	case media.ModeQuery:
		icon = styles.IconSearch
	}

	parts := []string{
		styles.HeaderStyle.Render("mosaic"),
		styles.HeaderModeStyle.Render(icon + " " + describe(params)),
		styles.StatusHintStyle.Render(fmt.Sprintf("%d items", len(v.gal.Grid.Items()))),
	}
	if v.busy() {
		parts = append(parts, v.spinner.View())
	}
	return strings.Join(parts, " ")
}

func (v View) renderBody() string {
	items := v.gal.Grid.Items()
	height := v.ctrl.VisibleRows() * TileHeight

	if len(items) == 0 {
		var msg string
		switch {
		case v.loading || v.gal.Grid.IsLoadingMore():
			msg = v.spinner.View() + " Loading…"
		case v.gal.Grid.Err() != "":
			msg = styles.StatusErrorStyle.Render("Failed to load: "+v.gal.Grid.Err()) +
				"\n" + styles.StatusHintStyle.Render("press "+v.keys.Retry.Help().Key+" to retry")
		default:
			msg = styles.ViewerPlaceholder.Render("No media")
		}
		return lipgloss.Place(v.width, height, lipgloss.Center, lipgloss.Center, msg)
	}

	sel := v.gal.Grid.Selection()
	cols := v.ctrl.Columns()
	cursor := v.ctrl.Cursor()
	lastRow := rowsFor(len(items), cols)

	rows := make([]string, 0, v.ctrl.VisibleRows())
	for row := v.ctrl.Top(); row < v.ctrl.Top()+v.ctrl.VisibleRows(); row++ {
		if row == lastRow {
			rows = append(rows, v.renderSentinel())
			break
		}
		tiles := make([]string, 0, cols)
		for col := range cols {
			i := row*cols + col
			if i >= len(items) {
				break
			}
			tiles = append(tiles, renderTile(items[i], i == cursor, sel.Contains(items[i].ID)))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, tiles...))
	}

	body := lipgloss.JoinVertical(lipgloss.Left, rows...)
	if pad := height - lipgloss.Height(body); pad > 0 {
		body += strings.Repeat("\n", pad)
	}
	return body
}

func (v View) renderSentinel() string {
	grid := v.gal.Grid
	switch {
	case grid.IsLoadingMore():
		return styles.SentinelStyle.Render(v.spinner.View() + " loading more…")
	case grid.Err() != "":
		return styles.StatusErrorStyle.Render("load failed • " + v.keys.Retry.Help().Key + " retry")
	case grid.HasMore():
		return styles.SentinelStyle.Render("scroll for more")
	default:
		return styles.SentinelStyle.Render(fmt.Sprintf("end of list • %d items", len(grid.Items())))
	}
}

func renderTile(it media.Item, cursor, selected bool) string {
	inner := TileWidth - 2

	kind := styles.IconImage + " image"
	if it.IsVideo() {
		kind = styles.TileVideoStyle.Render(styles.IconVideo + " video")
	}
	if selected {
		kind = styles.IconCheck + " " + kind
	}

	var flags []string
	if it.Liked {
		flags = append(flags, styles.IconHeart)
	}
	if it.Favorited {
		flags = append(flags, styles.IconStar)
	}

	lines := []string{
		fit(kind, inner),
		fit(it.Filename, inner),
		fit(styles.TileCaptionStyle.Render(strings.Join(flags, " ")), inner),
	}

	style := styles.TileStyle
	switch {
	case selected:
		style = styles.TileSelectedStyle
	case cursor:
		style = styles.TileCursorStyle
	}
	if selected && cursor {
		style = style.BorderForeground(styles.ColorPrimary)
	}
	return style.Render(strings.Join(lines, "\n"))
}

// fit truncates or pads s to exactly width cells.
func fit(s string, width int) string {
	s = ansi.Truncate(s, width, "…")
	if w := ansi.StringWidth(s); w < width {
		s += strings.Repeat(" ", width-w)
	}
	return s
}

func (v View) renderSelectionBar() string {
	sel := v.gal.Grid.Selection()
	if !sel.Active() {
		return ""
	}

	text := fmt.Sprintf("%s %d selected • %s delete • %s clear • %s all",
		styles.IconCheck, sel.Len(),
		v.keys.Delete.Help().Key, v.keys.Clear.Help().Key, v.keys.SelectAll.Help().Key)
	if v.gal.Grid.DeleteMode() == gallery.DeletePreview {
		text += " • preview mode"
	}
	return styles.SelectionBarStyle.Render(text)
}

func (v View) renderStatus() string {
	if err := v.gal.Grid.Err(); err != "" {
		return styles.StatusErrorStyle.Render(err)
	}
	if v.querying {
		return styles.StatusHintStyle.Render("enter search • esc cancel • empty input shuffles")
	}
	return styles.StatusBarStyle.Render(keys.HelpLine(v.keys.GridHelp()))
}

// overlayDragBox draws the drag-box outline on top of content.
func (v View) overlayDragBox(content string) string {
	box, ok := v.gal.Grid.Selection().DragBox()
	if !ok || box.W < 2 || box.H < 2 {
		return content
	}

	horiz := strings.Repeat("─", box.W-2)
	vert := strings.TrimSuffix(strings.Repeat("│\n", box.H-2), "\n")

	layers := []*lipgloss.Layer{lipgloss.NewLayer(content)}
	add := func(s string, x, y int) {
		if s == "" {
			return
		}
		layers = append(layers, lipgloss.NewLayer(styles.DragBoxStyle.Render(s)).X(x).Y(y).Z(1))
	}
	add("┌"+horiz+"┐", box.X, box.Y)
	add("└"+horiz+"┘", box.X, box.Y+box.H-1)
	add(vert, box.X, box.Y+1)
	add(vert, box.X+box.W-1, box.Y+1)

	return lipgloss.NewCompositor(layers...).Render()
}
