package grid

import (
	"github.com/colonyops/mosaic/internal/core/media"
	"github.com/colonyops/mosaic/internal/gallery"
)

// Tile geometry in terminal cells, borders included.
const (
	TileWidth  = 22
	TileHeight = 5
)

// Controller owns the grid layout: cursor, scroll position and the mapping
// between list indices and screen cells. It has no bubbletea dependency.
type Controller struct {
	items func() []media.Item

	width   int
	height  int
	originY int

	cursor int
	top    int
}

// NewController creates a layout over the list returned by items.
func NewController(items func() []media.Item) *Controller {
	return &Controller{items: items}
}

// SetSize sets the grid area. originY is the screen row of its first line.
func (c *Controller) SetSize(width, height, originY int) {
	c.width = width
	c.height = height
	c.originY = originY
	c.Clamp()
}

// Columns returns the number of tiles per row.
func (c *Controller) Columns() int {
	return max(c.width/TileWidth, 1)
}

// VisibleRows returns the number of tile rows that fit the grid area.
func (c *Controller) VisibleRows() int {
	return max(c.height/TileHeight, 1)
}

// Top returns the first rendered row.
func (c *Controller) Top() int { return c.top }

// Cursor returns the focused index.
func (c *Controller) Cursor() int { return c.cursor }

// SetCursor focuses index and scrolls it into view.
func (c *Controller) SetCursor(index int) {
	c.cursor = index
	c.Clamp()
	c.reveal()
}

// Move shifts the cursor by dx tiles and dy rows.
func (c *Controller) Move(dx, dy int) {
	n := len(c.items())
	if n == 0 {
		return
	}
	c.cursor = clamp(c.cursor+dx+dy*c.Columns(), 0, n-1)
	c.reveal()
}

// Scroll moves the viewport by rows, keeping the cursor on screen.
func (c *Controller) Scroll(rows int) {
	c.top = clamp(c.top+rows, 0, c.maxTop())

	first, last := c.Visible()
	if last < first {
		return
	}
	c.cursor = clamp(c.cursor, first, last)
}

// Clamp pulls cursor and scroll position back into range after the list
// changed.
func (c *Controller) Clamp() {
	n := len(c.items())
	c.cursor = clamp(c.cursor, 0, max(n-1, 0))
	c.top = clamp(c.top, 0, c.maxTop())
}

// Visible returns the first and last rendered item indices. last < first
// when nothing is rendered.
func (c *Controller) Visible() (first, last int) {
	n := len(c.items())
	cols := c.Columns()
	first = c.top * cols
	last = min((c.top+c.VisibleRows())*cols, n) - 1
	return first, last
}

// LastVisible returns the index of the last rendered tile, or -1.
func (c *Controller) LastVisible() int {
	_, last := c.Visible()
	return last
}

// SentinelVisible reports whether the row after the last item is on
// screen.
func (c *Controller) SentinelVisible() bool {
	n := len(c.items())
	return c.top+c.VisibleRows() > rowsFor(n, c.Columns())
}

// TileRects returns the screen boxes of mounted tiles. It is the
// selection's tile locator.
func (c *Controller) TileRects() []gallery.TileRect {
	items := c.items()
	first, last := c.Visible()
	if last < first {
		return nil
	}

	out := make([]gallery.TileRect, 0, last-first+1)
	for i := first; i <= last; i++ {
		out = append(out, gallery.TileRect{ID: items[i].ID, Rect: c.rectFor(i)})
	}
	return out
}

// Body returns the screen area tiles are laid out in. Header, query bar
// and status rows lie outside it.
func (c *Controller) Body() gallery.Rect {
	return gallery.Rect{X: 0, Y: c.originY, W: c.width, H: c.height}
}

// IndexAt returns the item index under the screen cell x, y.
func (c *Controller) IndexAt(x, y int) (int, bool) {
	if x < 0 || y < c.originY || y >= c.originY+c.VisibleRows()*TileHeight {
		return -1, false
	}
	col := x / TileWidth
	if col >= c.Columns() {
		return -1, false
	}

	row := c.top + (y-c.originY)/TileHeight
	index := row*c.Columns() + col
	if index >= len(c.items()) {
		return -1, false
	}
	return index, true
}

func (c *Controller) rectFor(index int) gallery.Rect {
	cols := c.Columns()
	row, col := index/cols, index%cols
	return gallery.Rect{
		X: col * TileWidth,
		Y: c.originY + (row-c.top)*TileHeight,
		W: TileWidth,
		H: TileHeight,
	}
}

func (c *Controller) reveal() {
	row := c.cursor / c.Columns()
	switch {
	case row < c.top:
		c.top = row
	case row >= c.top+c.VisibleRows():
		c.top = row - c.VisibleRows() + 1
	}
}

// maxTop leaves room for the sentinel row below the last item.
func (c *Controller) maxTop() int {
	rows := rowsFor(len(c.items()), c.Columns()) + 1
	return max(rows-c.VisibleRows(), 0)
}

func rowsFor(n, cols int) int {
	return (n + cols - 1) / cols
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
