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

// FetchMode selects how a fetched page merges into the list.
type FetchMode int

const (
	// Replace discards the current list.
	Replace FetchMode = iota
	// Append merges unseen items onto the end.
	Append
)

func (m FetchMode) String() string {
	if m == Append {
		return "append"
	}
	return "replace"
}

// DefaultPageSize is the number of items requested per page.
const DefaultPageSize = 20

// Cursor is the pagination state of a source.
type Cursor struct {
	Offset   int
	HasMore  bool
	Fetching bool
}

func initialCursor() Cursor {
	return Cursor{Offset: 0, HasMore: true, Fetching: false}
}

// SourceOptions configures a Source.
type SourceOptions struct {
	PageSize int
	Notifier Notifier
	Logger   *zerolog.Logger
}

// Source pages through one list of the media service. It owns the list and
// its cursor. At most one fetch is in flight; overlapping calls are rejected
// rather than queued. Changing params cancels the in-flight fetch and any
// late result of it is discarded.
type Source struct {
	backend  Backend
	notifier Notifier
	log      zerolog.Logger
	pageSize int

	mu         sync.Mutex
	params     media.Params
	items      []media.Item
	cursor     Cursor
	err        string
	failedMode FetchMode
	gen        uint64
	ctx        context.Context
	cancel     context.CancelFunc
	closed     bool
	listeners  []func([]media.Item)
}

// NewSource creates a source for params. No request is issued until Fetch.
func NewSource(backend Backend, params media.Params, opts SourceOptions) *Source {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	logger := logging.Component("source")
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Source{
		backend:  backend,
		notifier: notifierOrNop(opts.Notifier),
		log:      logger,
		pageSize: pageSize,
		params:   params,
		cursor:   initialCursor(),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// OnChange registers fn to be called synchronously after every list
// mutation with a copy of the new list.
func (s *Source) OnChange(fn func([]media.Item)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Fetch requests one page at offset and merges it according to mode. It
// returns the number of items replaced or appended. A call made while
// another fetch is in flight returns 0 immediately.
func (s *Source) Fetch(ctx context.Context, offset int, mode FetchMode) (int, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return 0, ErrClosed
	}
	if s.cursor.Fetching {
		s.mu.Unlock()
		s.log.Debug().Int("offset", offset).Str("mode", mode.String()).Msg("fetch rejected, request in flight")
		return 0, nil
	}
	if err := s.params.Validate(); err != nil {
		s.err = err.Error()
		s.failedMode = mode
		s.mu.Unlock()
		return 0, err
	}

	s.cursor.Fetching = true
	gen := s.gen
	params := s.params
	lifetime := s.ctx
	s.mu.Unlock()

	fetchCtx, cancel := context.WithCancel(logging.WithListMode(ctx, string(params.Mode())))
	defer cancel()
	stop := context.AfterFunc(lifetime, cancel)
	defer stop()

	page, err := s.backend.List(fetchCtx, media.ListRequest{
		Params: params,
		Offset: offset,
		Limit:  s.pageSize,
	})

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		s.log.Debug().Ctx(fetchCtx).Int("offset", offset).Msg("discarding stale page")
		return 0, nil
	}
	s.cursor.Fetching = false

	if err != nil {
		if isCanceled(err) {
			s.mu.Unlock()
			s.log.Debug().Ctx(fetchCtx).Int("offset", offset).Msg("fetch cancelled")
			return 0, nil
		}

		s.err = err.Error()
		s.failedMode = mode
		var snapshot []media.Item
		changed := false
		if mode == Replace && len(s.items) > 0 {
			s.items = nil
			s.cursor.Offset = 0
			changed = true
		}
		listeners := s.listenersLocked()
		s.mu.Unlock()

		s.log.Error().Ctx(fetchCtx).Err(err).Int("offset", offset).Str("mode", mode.String()).Msg("fetch failed")
		s.notifier.Errorf("Failed to load media: %v", err)
		if changed {
			emit(listeners, snapshot)
		}
		return 0, fmt.Errorf("fetch media at offset %d: %w", offset, err)
	}

	s.err = ""
	var count int
	switch mode {
	case Replace:
		s.items = media.DedupeByID(page.Items)
		count = len(s.items)
		s.cursor.HasMore = page.HasMore
	case Append:
		fresh := s.unseenLocked(page.Items)
		s.items = append(s.items, fresh...)
		count = len(fresh)
		// An empty page of new items ends the list even if the server
		// still claims more.
		s.cursor.HasMore = page.HasMore && count > 0
	}
	s.cursor.Offset = len(s.items)
	snapshot := slices.Clone(s.items)
	listeners := s.listenersLocked()
	s.mu.Unlock()

	s.log.Debug().
		Ctx(fetchCtx).
		Int("offset", offset).
		Str("mode", mode.String()).
		Int("received", len(page.Items)).
		Int("merged", count).
		Bool("has_more", page.HasMore).
		Msg("page merged")

	emit(listeners, snapshot)
	return count, nil
}

// unseenLocked filters incoming down to ids not already held, also dropping
// repeats within incoming itself.
func (s *Source) unseenLocked(incoming []media.Item) []media.Item {
	seen := make(map[string]struct{}, len(s.items))
	for _, it := range s.items {
		seen[it.ID] = struct{}{}
	}

	fresh := make([]media.Item, 0, len(incoming))
	for _, it := range incoming {
		if _, ok := seen[it.ID]; ok {
			continue
		}
		seen[it.ID] = struct{}{}
		fresh = append(fresh, it)
	}
	return fresh
}

// SetParams switches the source to a new list. The in-flight fetch is
// cancelled, the list is cleared and the cursor reset.
func (s *Source) SetParams(params media.Params) {
	s.mu.Lock()
	s.cancel()
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.gen++
	s.params = params
	s.items = nil
	s.cursor = initialCursor()
	s.err = ""
	listeners := s.listenersLocked()
	s.mu.Unlock()

	s.log.Debug().Str("list_mode", string(params.Mode())).Msg("params changed")
	emit(listeners, nil)
}

// Params returns the active list params.
func (s *Source) Params() media.Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params
}

// Update mutates the item with mediaID in place. It reports whether the item
// was found.
func (s *Source) Update(mediaID int64, fn func(*media.Item)) bool {
	s.mu.Lock()
	idx := -1
	for i := range s.items {
		if s.items[i].MediaID == mediaID {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	fn(&s.items[idx])
	snapshot := slices.Clone(s.items)
	listeners := s.listenersLocked()
	s.mu.Unlock()

	emit(listeners, snapshot)
	return true
}

// Remove drops items whose media id is in mediaIDs and returns how many
// were removed.
func (s *Source) Remove(mediaIDs []int64) int {
	if len(mediaIDs) == 0 {
		return 0
	}

	drop := make(map[int64]struct{}, len(mediaIDs))
	for _, id := range mediaIDs {
		drop[id] = struct{}{}
	}

	s.mu.Lock()
	before := len(s.items)
	s.items = slices.DeleteFunc(s.items, func(it media.Item) bool {
		_, ok := drop[it.MediaID]
		return ok
	})
	removed := before - len(s.items)
	if removed == 0 {
		s.mu.Unlock()
		return 0
	}
	s.cursor.Offset = len(s.items)
	snapshot := slices.Clone(s.items)
	listeners := s.listenersLocked()
	s.mu.Unlock()

	emit(listeners, snapshot)
	return removed
}

// Items returns a copy of the current list.
func (s *Source) Items() []media.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items)
}

// Len returns the number of items held.
func (s *Source) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Cursor returns the pagination cursor.
func (s *Source) Cursor() Cursor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// Err returns the last fetch error message, or "" when healthy.
func (s *Source) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// FailedMode returns the mode of the last failed fetch.
func (s *Source) FailedMode() FetchMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failedMode
}

// ClearError resets the error state so the next fetch is allowed.
func (s *Source) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = ""
}

// Close cancels any in-flight fetch. Later fetches return ErrClosed.
func (s *Source) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.gen++
	s.cursor.Fetching = false
	s.cancel()
}

func (s *Source) listenersLocked() []func([]media.Item) {
	return slices.Clone(s.listeners)
}

func emit(listeners []func([]media.Item), items []media.Item) {
	for _, fn := range listeners {
		fn(slices.Clone(items))
	}
}
