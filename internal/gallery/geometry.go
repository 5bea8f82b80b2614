package gallery

// Point is a position in viewport cells.
type Point struct {
	X, Y int
}

// Rect is an axis-aligned box in viewport cells covering [X, X+W) x [Y, Y+H).
type Rect struct {
	X, Y, W, H int
}

// RectFromPoints returns the smallest rect containing both corner cells.
func RectFromPoints(a, b Point) Rect {
	x0, x1 := min(a.X, b.X), max(a.X, b.X)
	y0, y1 := min(a.Y, b.Y), max(a.Y, b.Y)
	return Rect{X: x0, Y: y0, W: x1 - x0 + 1, H: y1 - y0 + 1}
}

// Empty reports whether r covers no cells.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Contains reports whether p lies inside r.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.W && p.Y >= r.Y && p.Y < r.Y+r.H
}

// Intersects reports whether r and o share at least one cell.
func (r Rect) Intersects(o Rect) bool {
	if r.Empty() || o.Empty() {
		return false
	}
	return r.X < o.X+o.W && o.X < r.X+r.W && r.Y < o.Y+o.H && o.Y < r.Y+r.H
}

// TileRect is the on-screen box of one mounted tile.
type TileRect struct {
	ID   string
	Rect Rect
}

// TileLocator reports the boxes of currently mounted tiles.
type TileLocator func() []TileRect

// HitTest returns the ids of tiles intersecting box, in tile order.
func HitTest(box Rect, tiles []TileRect) []string {
	var hits []string
	for _, t := range tiles {
		if t.Rect.Intersects(box) {
			hits = append(hits, t.ID)
		}
	}
	return hits
}
