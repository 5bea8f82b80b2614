package gallery

import (
	"context"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/colonyops/mosaic/internal/core/logging"
	"github.com/colonyops/mosaic/internal/core/media"
)

// ViewerState is the viewer cursor. Pending is an index the list has not
// loaded far enough to show yet; -1 when unset.
type ViewerState struct {
	Open    bool
	Index   int
	Pending int
}

// ClosedState is the cursor of a closed viewer with nothing pending.
func ClosedState() ViewerState {
	return ViewerState{Open: false, Index: -1, Pending: -1}
}

// Reconcile is the reaction to the mirrored list changing to length n.
// A pending index that now fits is opened, an empty list closes the viewer,
// and an open index past the end is clamped to the last item.
func Reconcile(st ViewerState, n int) ViewerState {
	if n <= 0 {
		return ClosedState()
	}
	if st.Pending >= 0 && st.Pending < n {
		return ViewerState{Open: true, Index: st.Pending, Pending: -1}
	}
	if st.Open && st.Index >= n {
		st.Index = n - 1
	}
	return st
}

// Coordinator bridges a list view and the viewer. It mirrors the list,
// owns the viewer cursor, and is the only writer of open, close and
// navigate transitions.
type Coordinator struct {
	list ListCommands
	log  zerolog.Logger

	mu        sync.Mutex
	items     []media.Item
	state     ViewerState
	removing  bool
	listeners []func(ViewerState)
}

// NewCoordinator subscribes to list and starts with the viewer closed.
func NewCoordinator(list ListCommands, logger *zerolog.Logger) *Coordinator {
	l := logging.Component("coordinator")
	if logger != nil {
		l = *logger
	}

	c := &Coordinator{
		list:  list,
		log:   l,
		items: list.Items(),
		state: ClosedState(),
	}
	list.OnChange(c.onListChange)
	return c
}

func (c *Coordinator) onListChange(items []media.Item) {
	c.mu.Lock()
	c.items = items
	if c.removing {
		c.mu.Unlock()
		return
	}
	prev := c.state
	c.state = Reconcile(c.state, len(items))
	st := c.state
	listeners := slices.Clone(c.listeners)
	c.mu.Unlock()

	if prev != st {
		c.log.Debug().
			Int("items", len(items)).
			Int("index", st.Index).
			Bool("open", st.Open).
			Msg("viewer reconciled")
	}
	c.notify(listeners, st)
}

// OnViewerChange registers fn to run after every list change and every
// cursor transition.
func (c *Coordinator) OnViewerChange(fn func(ViewerState)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

func (c *Coordinator) notify(listeners []func(ViewerState), st ViewerState) {
	for _, fn := range listeners {
		fn(st)
	}
}

func (c *Coordinator) transition(fn func(ViewerState, []media.Item) ViewerState) ViewerState {
	c.mu.Lock()
	c.state = fn(c.state, c.items)
	st := c.state
	listeners := slices.Clone(c.listeners)
	c.mu.Unlock()

	c.notify(listeners, st)
	return st
}

// OpenAt opens the viewer at index. An index past the loaded list is
// recorded as pending and a load-more is issued; it opens once the list
// grows far enough. When the list is exhausted and the index still does
// not fit, the pending index is dropped and ErrOutOfRange is returned.
func (c *Coordinator) OpenAt(ctx context.Context, index int) (bool, error) {
	if index < 0 {
		return false, ErrOutOfRange
	}

	st := c.transition(func(st ViewerState, items []media.Item) ViewerState {
		if index < len(items) {
			return ViewerState{Open: true, Index: index, Pending: -1}
		}
		st.Pending = index
		return st
	})
	if st.Open && st.Index == index && st.Pending < 0 {
		return true, nil
	}

	_, err := c.list.LoadMore(ctx)

	c.mu.Lock()
	st = c.state
	c.mu.Unlock()
	if st.Pending < 0 {
		return st.Open && st.Index == index, err
	}
	if !c.list.HasMore() {
		c.transition(func(st ViewerState, _ []media.Item) ViewerState {
			if st.Pending == index {
				st.Pending = -1
			}
			return st
		})
		if err != nil {
			return false, err
		}
		return false, ErrOutOfRange
	}
	return false, err
}

// OpenID opens the viewer on the item with id.
func (c *Coordinator) OpenID(ctx context.Context, id string) (bool, error) {
	idx := media.IndexOf(c.Items(), id)
	if idx < 0 {
		return false, ErrOutOfRange
	}
	return c.OpenAt(ctx, idx)
}

// Show moves an open viewer to index within the loaded list.
func (c *Coordinator) Show(index int) error {
	c.mu.Lock()
	if !c.state.Open {
		c.mu.Unlock()
		return ErrNoCurrent
	}
	if index < 0 || index >= len(c.items) {
		c.mu.Unlock()
		return ErrOutOfRange
	}
	c.mu.Unlock()

	c.transition(func(st ViewerState, _ []media.Item) ViewerState {
		st.Index = index
		return st
	})
	return nil
}

// Step moves an open viewer by delta from wherever the cursor is when the
// move commits, and returns the new index. A target outside the loaded list
// leaves the cursor alone and returns ErrOutOfRange.
func (c *Coordinator) Step(delta int) (int, error) {
	c.mu.Lock()
	if !c.state.Open {
		c.mu.Unlock()
		return -1, ErrNoCurrent
	}
	target := c.state.Index + delta
	if target < 0 || target >= len(c.items) {
		idx := c.state.Index
		c.mu.Unlock()
		return idx, ErrOutOfRange
	}
	c.state.Index = target
	st := c.state
	listeners := slices.Clone(c.listeners)
	c.mu.Unlock()

	c.notify(listeners, st)
	return target, nil
}

// CloseViewer closes the viewer and drops any pending index. It does not
// cancel list fetches.
func (c *Coordinator) CloseViewer() {
	c.transition(func(ViewerState, []media.Item) ViewerState {
		return ClosedState()
	})
}

// State returns the viewer cursor.
func (c *Coordinator) State() ViewerState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SelectedIndex returns the open index, or -1 when the viewer is closed.
func (c *Coordinator) SelectedIndex() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.state.Open {
		return -1
	}
	return c.state.Index
}

// Items returns a copy of the mirrored list.
func (c *Coordinator) Items() []media.Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.items)
}

// Current returns the item the viewer shows.
func (c *Coordinator) Current() (media.Item, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.state.Open || c.state.Index < 0 || c.state.Index >= len(c.items) {
		return media.Item{}, false
	}
	return c.items[c.state.Index], true
}

// Refresh reloads the list from the start.
func (c *Coordinator) Refresh(ctx context.Context) (int, error) {
	return c.list.Refresh(ctx)
}

// LoadMore requests the next page.
func (c *Coordinator) LoadMore(ctx context.Context) (int, error) {
	return c.list.LoadMore(ctx)
}

// HasMore reports whether the list may grow.
func (c *Coordinator) HasMore() bool {
	return c.list.HasMore()
}

// IsLoadingMore reports whether a page fetch is in flight.
func (c *Coordinator) IsLoadingMore() bool {
	return c.list.IsLoadingMore()
}

// UpdateItem mutates one list item in place.
func (c *Coordinator) UpdateItem(mediaID int64, fn func(*media.Item)) bool {
	return c.list.UpdateItem(mediaID, fn)
}

// RemoveItems removes items from the list and keeps the viewer on a sensible
// item. If the displayed item was removed the viewer stays at the same
// position, showing what moved into it; otherwise it follows the displayed
// item to its new position. An emptied list closes the viewer.
func (c *Coordinator) RemoveItems(mediaIDs []int64) int {
	if len(mediaIDs) == 0 {
		return 0
	}

	drop := make(map[int64]struct{}, len(mediaIDs))
	for _, id := range mediaIDs {
		drop[id] = struct{}{}
	}

	c.mu.Lock()
	before := c.state
	var shownID string
	removedShown := false
	if before.Open && before.Index >= 0 && before.Index < len(c.items) {
		shown := c.items[before.Index]
		shownID = shown.ID
		_, removedShown = drop[shown.MediaID]
	}
	c.removing = true
	c.mu.Unlock()

	removed := c.list.RemoveItems(mediaIDs)

	c.mu.Lock()
	c.removing = false
	n := len(c.items)
	st := c.state
	switch {
	case n == 0:
		st = ClosedState()
	case st.Open && shownID != "":
		idx := before.Index
		if !removedShown {
			if moved := media.IndexOf(c.items, shownID); moved >= 0 {
				idx = moved
			}
		}
		st.Index = min(idx, n-1)
		st = Reconcile(st, n)
	default:
		st = Reconcile(st, n)
	}
	c.state = st
	listeners := slices.Clone(c.listeners)
	c.mu.Unlock()

	c.log.Debug().
		Int("removed", removed).
		Bool("removed_shown", removedShown).
		Int("index", st.Index).
		Bool("open", st.Open).
		Msg("items removed")

	c.notify(listeners, st)
	return removed
}
