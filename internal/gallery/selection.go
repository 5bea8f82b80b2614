package gallery

import (
	"sync"

	"github.com/colonyops/mosaic/internal/core/media"
)

// Modifiers are the keyboard modifiers held during a pointer gesture.
// Ctrl also covers cmd/meta.
type Modifiers struct {
	Shift bool
	Ctrl  bool
	Alt   bool
}

// ClickAction is the outcome of dispatching a click.
type ClickAction int

const (
	ClickNone ClickAction = iota
	// ClickOpen asks the host to open the viewer on the clicked item.
	ClickOpen
	ClickToggle
	ClickRange
)

// DragMode is how a drag-box result combines with the pre-drag selection.
type DragMode int

const (
	DragReplace DragMode = iota
	DragAdd
	DragSubtract
)

type dragState struct {
	start Point
	cur   Point
	mode  DragMode
	base  map[string]struct{}
}

// Selection tracks selected item ids plus the anchor for range selection.
// Index based operations read the live list through items, never a
// snapshot.
type Selection struct {
	items     func() []media.Item
	tiles     TileLocator
	scheduler Scheduler

	mu     sync.Mutex
	ids    map[string]struct{}
	anchor int
	active bool
	drag   *dragState
}

// NewSelection creates an empty selection over the list returned by items.
// A nil scheduler runs drag hit tests immediately.
func NewSelection(items func() []media.Item, scheduler Scheduler) *Selection {
	if scheduler == nil {
		scheduler = immediate{}
	}
	return &Selection{
		items:     items,
		scheduler: scheduler,
		ids:       make(map[string]struct{}),
		anchor:    -1,
	}
}

// SetTileLocator sets the source of mounted tile boxes for drag-box hits.
func (s *Selection) SetTileLocator(tiles TileLocator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tiles = tiles
}

// ToggleOne flips membership of id and moves the anchor to index.
func (s *Selection) ToggleOne(id string, index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.toggleLocked(id)
	s.anchor = index
}

func (s *Selection) toggleLocked(id string) {
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
	} else {
		s.ids[id] = struct{}{}
	}
	s.active = len(s.ids) > 0
}

// SelectRange selects the closed interval between from and to in current
// list order. Without additive the range replaces the selection.
func (s *Selection) SelectRange(from, to int, additive bool) {
	items := s.items()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectRangeLocked(items, from, to, additive)
}

func (s *Selection) selectRangeLocked(items []media.Item, from, to int, additive bool) {
	if !additive {
		clear(s.ids)
	}

	lo, hi := min(from, to), max(from, to)
	lo = max(lo, 0)
	hi = min(hi, len(items)-1)
	for i := lo; i <= hi; i++ {
		s.ids[items[i].ID] = struct{}{}
	}
	s.active = len(s.ids) > 0
}

// Click dispatches a click on the tile at index.
//
// Shift always range-selects from the anchor (the clicked index becomes the
// anchor if there is none). Ctrl always toggles and leaves the anchor alone.
// A plain click opens the viewer when nothing is selected and toggles
// otherwise.
func (s *Selection) Click(index int, mods Modifiers) ClickAction {
	items := s.items()
	if index < 0 || index >= len(items) {
		return ClickNone
	}
	id := items[index].ID

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case mods.Shift:
		if s.anchor < 0 || s.anchor >= len(items) {
			s.anchor = index
		}
		s.selectRangeLocked(items, s.anchor, index, mods.Ctrl)
		return ClickRange
	case mods.Ctrl:
		s.toggleLocked(id)
		return ClickToggle
	case len(s.ids) == 0:
		return ClickOpen
	default:
		s.toggleLocked(id)
		s.anchor = index
		return ClickToggle
	}
}

// BeginDrag starts a drag-box at p. Drags only start on empty background,
// so onTile reports false and does nothing. Shift makes the box additive,
// alt subtractive.
func (s *Selection) BeginDrag(p Point, mods Modifiers, onTile bool) bool {
	if onTile {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	mode := DragReplace
	switch {
	case mods.Shift:
		mode = DragAdd
	case mods.Alt:
		mode = DragSubtract
	}

	base := make(map[string]struct{}, len(s.ids))
	for id := range s.ids {
		base[id] = struct{}{}
	}
	s.drag = &dragState{start: p, cur: p, mode: mode, base: base}
	return true
}

// Dragging reports whether a drag-box is in progress.
func (s *Selection) Dragging() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drag != nil
}

// DragBox returns the current drag rectangle.
func (s *Selection) DragBox() (Rect, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.drag == nil {
		return Rect{}, false
	}
	return RectFromPoints(s.drag.start, s.drag.cur), true
}

// DragTo moves the free corner of the drag-box. The hit test runs through
// the scheduler, so fast pointer motion costs one test per frame.
func (s *Selection) DragTo(p Point) {
	s.mu.Lock()
	if s.drag == nil {
		s.mu.Unlock()
		return
	}
	s.drag.cur = p
	s.mu.Unlock()

	s.scheduler.Schedule(s.applyDragHits)
}

// EndDrag finalizes the drag-box selection. Selection mode is exited when
// nothing ended up selected.
func (s *Selection) EndDrag() {
	s.scheduler.Flush()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.drag == nil {
		return
	}
	s.drag = nil
	s.active = len(s.ids) > 0
}

func (s *Selection) applyDragHits() {
	s.mu.Lock()
	tiles := s.tiles
	drag := s.drag
	s.mu.Unlock()
	if drag == nil || tiles == nil {
		return
	}

	present := make(map[string]struct{})
	for _, it := range s.items() {
		present[it.ID] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.drag != drag {
		return
	}

	hits := HitTest(RectFromPoints(drag.start, drag.cur), tiles())

	next := make(map[string]struct{}, len(hits)+len(drag.base))
	switch drag.mode {
	case DragAdd:
		for id := range drag.base {
			next[id] = struct{}{}
		}
		for _, id := range hits {
			next[id] = struct{}{}
		}
	case DragSubtract:
		for id := range drag.base {
			next[id] = struct{}{}
		}
		for _, id := range hits {
			delete(next, id)
		}
	default:
		for _, id := range hits {
			next[id] = struct{}{}
		}
	}

	for id := range next {
		if _, ok := present[id]; !ok {
			delete(next, id)
		}
	}

	s.ids = next
	s.active = len(next) > 0 || s.active
}

// Clear empties the selection and exits selection mode.
func (s *Selection) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduler.Cancel()
	clear(s.ids)
	s.anchor = -1
	s.active = false
	s.drag = nil
}

// Retain drops ids not present in items. The anchor is dropped when it no
// longer points into the list.
func (s *Selection) Retain(items []media.Item) {
	present := make(map[string]struct{}, len(items))
	for _, it := range items {
		present[it.ID] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.ids {
		if _, ok := present[id]; !ok {
			delete(s.ids, id)
		}
	}
	if s.anchor >= len(items) {
		s.anchor = -1
	}
	if len(s.ids) == 0 && s.drag == nil {
		s.active = false
	}
}

// Prune removes ids from the selection. Selection mode is exited when the
// set becomes empty.
func (s *Selection) Prune(ids []string) {
	if len(ids) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.ids, id)
	}
	if len(s.ids) == 0 && s.drag == nil {
		s.active = false
	}
}

// IDs returns the selected ids in no particular order.
func (s *Selection) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	return out
}

// Contains reports whether id is selected.
func (s *Selection) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of selected ids.
func (s *Selection) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}

// Active reports whether selection mode is on.
func (s *Selection) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Anchor returns the range anchor index, or -1.
func (s *Selection) Anchor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.anchor
}

// Selected returns the selected items in list order.
func (s *Selection) Selected() []media.Item {
	items := s.items()

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]media.Item, 0, len(s.ids))
	for _, it := range items {
		if _, ok := s.ids[it.ID]; ok {
			out = append(out, it)
		}
	}
	return out
}

// Indices returns the list positions of selected items in ascending order.
func (s *Selection) Indices() []int {
	items := s.items()

	s.mu.Lock()
	defer s.mu.Unlock()
	var out []int
	for i, it := range items {
		if _, ok := s.ids[it.ID]; ok {
			out = append(out, i)
		}
	}
	return out
}
