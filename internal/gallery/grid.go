package gallery

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/colonyops/mosaic/internal/core/logging"
	"github.com/colonyops/mosaic/internal/core/media"
)

// DefaultPreloadThreshold is how close to the end of the list the last
// visible item must be before more items are requested.
const DefaultPreloadThreshold = 5

// DeleteMode selects what the grid delete action does.
type DeleteMode string

const (
	// DeleteBackend calls the batch-delete endpoint.
	DeleteBackend DeleteMode = "backend"
	// DeletePreview only reports the selected items.
	DeletePreview DeleteMode = "preview"
)

// ListCommands is the imperative surface a list view exposes to the
// coordinator.
type ListCommands interface {
	Refresh(ctx context.Context) (int, error)
	LoadMore(ctx context.Context) (int, error)
	Items() []media.Item
	HasMore() bool
	IsLoadingMore() bool
	UpdateItem(mediaID int64, fn func(*media.Item)) bool
	RemoveItems(mediaIDs []int64) int
	OnChange(fn func([]media.Item))
}

// GridOptions configures a Grid.
type GridOptions struct {
	PreloadThreshold int
	DeleteMode       DeleteMode
	ConfirmDelete    bool
	Scheduler        Scheduler
	Notifier         Notifier
	Logger           *zerolog.Logger
}

// DeleteOutcome reports the result of a grid delete.
type DeleteOutcome struct {
	Deleted []int64
	Failed  []media.DeleteFailure
	// Preview holds the selected items when the grid is in preview mode.
	Preview []media.Item
	Message string
}

// Grid hosts a Source and a Selection and implements ListCommands. Every
// list mutation prunes the selection before grid listeners run.
type Grid struct {
	source    *Source
	selection *Selection
	backend   Backend
	notifier  Notifier
	log       zerolog.Logger
	threshold int
	mode      DeleteMode
	confirm   bool

	mu          sync.Mutex
	skipConfirm bool
	deleting    bool
	listeners   []func([]media.Item)
}

var _ ListCommands = (*Grid)(nil)

// NewGrid wires a grid over source.
func NewGrid(source *Source, backend Backend, opts GridOptions) *Grid {
	threshold := opts.PreloadThreshold
	if threshold <= 0 {
		threshold = DefaultPreloadThreshold
	}
	mode := opts.DeleteMode
	if mode == "" {
		mode = DeleteBackend
	}

	logger := logging.Component("grid")
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	g := &Grid{
		source:    source,
		selection: NewSelection(source.Items, opts.Scheduler),
		backend:   backend,
		notifier:  notifierOrNop(opts.Notifier),
		log:       logger,
		threshold: threshold,
		mode:      mode,
		confirm:   opts.ConfirmDelete,
	}
	source.OnChange(g.onSourceChange)
	return g
}

func (g *Grid) onSourceChange(items []media.Item) {
	g.selection.Retain(items)

	g.mu.Lock()
	listeners := slices.Clone(g.listeners)
	g.mu.Unlock()

	emit(listeners, items)
}

// OnChange registers fn to run after every list mutation, after the
// selection has been pruned.
func (g *Grid) OnChange(fn func([]media.Item)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.listeners = append(g.listeners, fn)
}

// Selection returns the grid's selection engine.
func (g *Grid) Selection() *Selection { return g.selection }

// Source returns the underlying paginated source.
func (g *Grid) Source() *Source { return g.source }

// Refresh replace-fetches from offset 0 and returns the number of items
// loaded. Any previous error state is cleared first.
func (g *Grid) Refresh(ctx context.Context) (int, error) {
	g.source.ClearError()
	return g.source.Fetch(ctx, 0, Replace)
}

// LoadMore append-fetches from the current length. It is a no-op when the
// list is exhausted, a fetch is in flight, or the source is in error.
func (g *Grid) LoadMore(ctx context.Context) (int, error) {
	if !g.canLoadMore() {
		return 0, nil
	}
	return g.source.Fetch(ctx, g.source.Len(), Append)
}

func (g *Grid) canLoadMore() bool {
	c := g.source.Cursor()
	return c.HasMore && !c.Fetching && g.source.Err() == ""
}

// Retry clears the error state and re-issues the fetch that failed.
func (g *Grid) Retry(ctx context.Context) (int, error) {
	mode := g.source.FailedMode()
	g.source.ClearError()
	if mode == Append {
		return g.source.Fetch(ctx, g.source.Len(), Append)
	}
	return g.source.Fetch(ctx, 0, Replace)
}

// ShouldLoad reports whether the sentinel at lastVisible is close enough to
// the end of the list to trigger LoadMore, and the load guards allow it.
func (g *Grid) ShouldLoad(lastVisible int) bool {
	n := g.source.Len()
	if n == 0 || lastVisible < n-g.threshold {
		return false
	}
	return g.canLoadMore()
}

// NearEnd is the sentinel trigger: it loads more when ShouldLoad allows.
func (g *Grid) NearEnd(ctx context.Context, lastVisible int) (int, error) {
	if !g.ShouldLoad(lastVisible) {
		return 0, nil
	}
	return g.LoadMore(ctx)
}

// SetParams switches to a new list: the selection and list are cleared,
// the in-flight fetch is cancelled, and the new list is fetched.
func (g *Grid) SetParams(ctx context.Context, params media.Params) (int, error) {
	g.selection.Clear()
	g.source.SetParams(params)
	return g.Refresh(ctx)
}

// Items returns a copy of the current list.
func (g *Grid) Items() []media.Item { return g.source.Items() }

// HasMore reports whether the server may hold more items.
func (g *Grid) HasMore() bool { return g.source.Cursor().HasMore }

// IsLoadingMore reports whether a fetch is in flight.
func (g *Grid) IsLoadingMore() bool { return g.source.Cursor().Fetching }

// Err returns the source error message.
func (g *Grid) Err() string { return g.source.Err() }

// UpdateItem mutates one item in place. It is a no-op if the id is absent.
func (g *Grid) UpdateItem(mediaID int64, fn func(*media.Item)) bool {
	return g.source.Update(mediaID, fn)
}

// RemoveItems drops items from the list; the selection is pruned in the
// same transition.
func (g *Grid) RemoveItems(mediaIDs []int64) int {
	if len(mediaIDs) == 0 {
		return 0
	}
	return g.source.Remove(mediaIDs)
}

// DeleteMode returns the configured delete mode.
func (g *Grid) DeleteMode() DeleteMode { return g.mode }

// NeedsConfirm reports whether the next delete should ask for confirmation.
func (g *Grid) NeedsConfirm() bool {
	if g.mode == DeletePreview || !g.confirm {
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return !g.skipConfirm
}

// SetSkipConfirm records the session-scoped "don't ask again" choice.
func (g *Grid) SetSkipConfirm() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.skipConfirm = true
}

// DeleteSelected deletes the selected items. In preview mode the backend is
// not called and the selected items are returned instead. On partial
// failure the failed ids stay selected.
func (g *Grid) DeleteSelected(ctx context.Context) (DeleteOutcome, error) {
	selected := g.selection.Selected()
	if len(selected) == 0 {
		return DeleteOutcome{}, nil
	}

	if g.mode == DeletePreview {
		return DeleteOutcome{
			Preview: selected,
			Message: fmt.Sprintf("Preview: %d item(s) selected", len(selected)),
		}, nil
	}

	g.mu.Lock()
	if g.deleting {
		g.mu.Unlock()
		return DeleteOutcome{}, ErrBusy
	}
	g.deleting = true
	g.mu.Unlock()
	defer func() {
		g.mu.Lock()
		g.deleting = false
		g.mu.Unlock()
	}()

	ids := make([]int64, 0, len(selected))
	for _, it := range selected {
		ids = append(ids, it.MediaID)
	}

	res, err := g.backend.BatchDelete(ctx, ids)
	if err != nil {
		if isCanceled(err) {
			return DeleteOutcome{}, err
		}
		g.log.Error().Err(err).Int("count", len(ids)).Msg("batch delete failed")
		g.notifier.Errorf("Delete failed: %v", err)
		return DeleteOutcome{}, fmt.Errorf("batch delete: %w", err)
	}

	g.source.Remove(res.Deleted)

	out := DeleteOutcome{Deleted: res.Deleted, Failed: res.Failed}
	if len(res.Failed) > 0 {
		out.Message = media.FriendlyFailures(res.Failed)
		g.notifier.Errorf("%s", out.Message)
		g.log.Warn().
			Int("deleted", len(res.Deleted)).
			Int("failed", len(res.Failed)).
			Msg("batch delete partially failed")
	} else {
		g.selection.Clear()
		out.Message = fmt.Sprintf("Deleted %d item(s)", len(res.Deleted))
		g.notifier.Infof("%s", out.Message)
	}
	return out, nil
}
