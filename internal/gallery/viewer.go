package gallery

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/colonyops/mosaic/internal/core/logging"
	"github.com/colonyops/mosaic/internal/core/media"
)

// ViewerOptions configures a Viewer.
type ViewerOptions struct {
	PreloadThreshold int
	Notifier         Notifier
	Logger           *zerolog.Logger
}

type flagKind int

const (
	flagLike flagKind = iota
	flagFavorite
)

func (k flagKind) String() string {
	if k == flagFavorite {
		return "favorite"
	}
	return "like"
}

// Viewer is the full-screen slide controller. It reads and moves the cursor
// through the Coordinator and keeps transient like/favorite display state
// for the current item only.
type Viewer struct {
	coord     *Coordinator
	backend   Backend
	playback  *Playback
	notifier  Notifier
	log       zerolog.Logger
	threshold int

	// nav serializes Next; it is held across the preload fetch.
	nav sync.Mutex

	mu        sync.Mutex
	currentID string
	liked     bool
	favorited bool
	busy      map[int64]bool
}

// NewViewer creates a viewer bound to coord. playback may be nil.
func NewViewer(coord *Coordinator, backend Backend, playback *Playback, opts ViewerOptions) *Viewer {
	threshold := opts.PreloadThreshold
	if threshold <= 0 {
		threshold = DefaultPreloadThreshold
	}

	logger := logging.Component("viewer")
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	v := &Viewer{
		coord:     coord,
		backend:   backend,
		playback:  playback,
		notifier:  notifierOrNop(opts.Notifier),
		log:       logger,
		threshold: threshold,
		busy:      make(map[int64]bool),
	}
	coord.OnViewerChange(v.sync)
	return v
}

// sync reacts to cursor and list changes. When the shown item changes the
// like/favorite display state is reset from the item and playback moves to
// it.
func (v *Viewer) sync(st ViewerState) {
	item, ok := v.coord.Current()

	v.mu.Lock()
	if !ok {
		wasOpen := v.currentID != ""
		v.currentID = ""
		v.mu.Unlock()
		if wasOpen && v.playback != nil {
			v.playback.Deactivate()
		}
		return
	}
	if item.ID == v.currentID {
		v.mu.Unlock()
		return
	}
	v.currentID = item.ID
	v.liked = item.Liked
	v.favorited = item.Favorited
	v.mu.Unlock()

	if v.playback != nil {
		v.playback.Activate(context.Background(), st.Index)
		v.playback.Ensure(st.Index - 1)
		v.playback.Ensure(st.Index + 1)
	}
}

// Next advances one slide. Approaching the end of the loaded list requests
// more items first. Calls are serialized and each commits one step from the
// live cursor, so overlapping presses are never merged. A target still past
// the end is refused with ErrLoading while a page is in flight and with
// ErrOutOfRange once the list is exhausted.
func (v *Viewer) Next(ctx context.Context) error {
	v.nav.Lock()
	defer v.nav.Unlock()

	st := v.coord.State()
	if !st.Open {
		return ErrNoCurrent
	}

	target := st.Index + 1
	n := len(v.coord.Items())
	if target >= n-v.threshold || target > n-1 {
		if v.coord.HasMore() {
			added, err := v.coord.LoadMore(ctx)
			if err != nil && target > n-1 {
				return err
			}
			v.log.Debug().Int("target", target).Int("added", added).Msg("preloaded")
		}
	}

	_, err := v.coord.Step(1)
	if errors.Is(err, ErrOutOfRange) && v.coord.IsLoadingMore() {
		return ErrLoading
	}
	return err
}

// Prev moves back one slide from the live cursor. It refuses to go below
// the first slide and never waits on a pending Next.
func (v *Viewer) Prev() error {
	_, err := v.coord.Step(-1)
	return err
}

// SlideChanged resynchronizes the cursor after a direct jump to index.
func (v *Viewer) SlideChanged(index int) error {
	return v.coord.Show(index)
}

// Close closes the viewer.
func (v *Viewer) Close() {
	v.coord.CloseViewer()
}

// Current returns the shown item.
func (v *Viewer) Current() (media.Item, bool) {
	return v.coord.Current()
}

// Liked returns the displayed like state of the current item.
func (v *Viewer) Liked() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.liked
}

// Favorited returns the displayed favorite state of the current item.
func (v *Viewer) Favorited() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.favorited
}

// Busy reports whether a mutation for mediaID is in flight.
func (v *Viewer) Busy(mediaID int64) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.busy[mediaID]
}

// ToggleLike flips the like flag of the current item.
func (v *Viewer) ToggleLike(ctx context.Context) error {
	return v.toggle(ctx, flagLike)
}

// ToggleFavorite flips the favorite flag of the current item.
func (v *Viewer) ToggleFavorite(ctx context.Context) error {
	return v.toggle(ctx, flagFavorite)
}

func (v *Viewer) acquire(mediaID int64) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.busy[mediaID] {
		return false
	}
	v.busy[mediaID] = true
	return true
}

func (v *Viewer) release(mediaID int64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.busy, mediaID)
}

// toggle applies the flip optimistically to the display state and the list,
// then calls the backend. On failure both are rolled back.
func (v *Viewer) toggle(ctx context.Context, kind flagKind) error {
	item, ok := v.coord.Current()
	if !ok {
		return ErrNoCurrent
	}
	if !v.acquire(item.MediaID) {
		return ErrBusy
	}
	defer v.release(item.MediaID)

	v.mu.Lock()
	prev := v.flagLocked(kind)
	next := !prev
	if v.currentID == item.ID {
		v.setFlagLocked(kind, next)
	}
	v.mu.Unlock()

	v.coord.UpdateItem(item.MediaID, func(it *media.Item) { setItemFlag(it, kind, next) })

	var err error
	switch kind {
	case flagFavorite:
		err = v.backend.SetFavorite(ctx, item.MediaID, next)
	default:
		err = v.backend.SetLike(ctx, item.MediaID, next)
	}
	if err == nil {
		return nil
	}

	v.mu.Lock()
	if v.currentID == item.ID {
		v.setFlagLocked(kind, prev)
	}
	v.mu.Unlock()
	v.coord.UpdateItem(item.MediaID, func(it *media.Item) { setItemFlag(it, kind, prev) })

	if isCanceled(err) {
		return err
	}
	v.log.Warn().Err(err).Int64("media_id", item.MediaID).Str("flag", kind.String()).Msg("toggle failed, rolled back")
	v.notifier.Errorf("Could not update %s: %v", kind, err)
	return fmt.Errorf("set %s on %d: %w", kind, item.MediaID, err)
}

func (v *Viewer) flagLocked(kind flagKind) bool {
	if kind == flagFavorite {
		return v.favorited
	}
	return v.liked
}

func (v *Viewer) setFlagLocked(kind flagKind, value bool) {
	if kind == flagFavorite {
		v.favorited = value
	} else {
		v.liked = value
	}
}

func setItemFlag(it *media.Item, kind flagKind, value bool) {
	if kind == flagFavorite {
		it.Favorited = value
	} else {
		it.Liked = value
	}
}

// DeleteCurrent deletes the shown item. On success it is removed through
// the coordinator, which moves the viewer to a successor. On failure the
// slide stays open and the friendly reason is returned.
func (v *Viewer) DeleteCurrent(ctx context.Context) error {
	item, ok := v.coord.Current()
	if !ok {
		return ErrNoCurrent
	}
	if !v.acquire(item.MediaID) {
		return ErrBusy
	}
	defer v.release(item.MediaID)

	res, err := v.backend.BatchDelete(ctx, []int64{item.MediaID})
	if err != nil {
		if isCanceled(err) {
			return err
		}
		v.log.Error().Err(err).Int64("media_id", item.MediaID).Msg("delete failed")
		v.notifier.Errorf("Delete failed: %v", err)
		return fmt.Errorf("delete %d: %w", item.MediaID, err)
	}

	if slices.Contains(res.Deleted, item.MediaID) {
		v.coord.RemoveItems([]int64{item.MediaID})
		v.notifier.Infof("Deleted %s", item.Filename)
		return nil
	}

	msg := media.FriendlyFailures(res.Failed)
	if msg == "" {
		msg = media.FriendlyReason("")
	}
	v.notifier.Errorf("%s", msg)
	return fmt.Errorf("%w: %s", ErrDeleteFailed, msg)
}
