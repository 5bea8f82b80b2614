// Package devserver is an in-memory media-indexing service implementing the
// endpoints mosaic consumes. It backs the serve command and client tests.
package devserver

import (
	"cmp"
	"errors"
	"fmt"
	"hash/fnv"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/colonyops/mosaic/internal/core/media"
)

// ErrNotFound is returned for unknown media ids.
var ErrNotFound = errors.New("media not found")

var defaultTags = []string{"beach", "family", "pets", "travel", "food", "city"}

// LibraryOptions shapes the generated library.
type LibraryOptions struct {
	Count int
	// VideoEvery makes every Nth item a video. Zero means no videos.
	VideoEvery int
	// LockedEvery makes every Nth item refuse deletion. Zero means none.
	LockedEvery int
	// Now anchors the generated timestamps.
	Now time.Time
}

type entry struct {
	item   media.Item
	tags   []string
	locked bool
}

// Library is a mutex-guarded in-memory media catalogue.
type Library struct {
	mu      sync.RWMutex
	entries []*entry
	byID    map[int64]*entry
}

// NewLibrary generates a library of opts.Count items.
func NewLibrary(opts LibraryOptions) *Library {
	now := opts.Now
	if now.IsZero() {
		now = time.Now().UTC().Truncate(time.Hour)
	}

	lib := &Library{byID: make(map[int64]*entry, opts.Count)}
	for i := 1; i <= opts.Count; i++ {
		id := int64(i)
		typ, ext := media.TypeImage, "jpg"
		if opts.VideoEvery > 0 && i%opts.VideoEvery == 0 {
			typ, ext = media.TypeVideo, "mp4"
		}

		it := media.Item{
			ID:          media.IDFor(id),
			MediaID:     id,
			Type:        typ,
			URL:         fmt.Sprintf("/media/%d", id),
			ResourceURL: fmt.Sprintf("/files/%d.%s", id, ext),
			Filename:    fmt.Sprintf("IMG_%04d.%s", id, ext),
			CreatedAt:   now.Add(-time.Duration(i) * time.Hour),
		}
		// Every seventh item has no thumbnail and relies on the resource.
		if i%7 != 0 {
			it.ThumbnailURL = fmt.Sprintf("/thumbs/%d.jpg", id)
		}

		e := &entry{
			item:   it,
			tags:   []string{defaultTags[i%len(defaultTags)], defaultTags[(i/3)%len(defaultTags)]},
			locked: opts.LockedEvery > 0 && i%opts.LockedEvery == 0,
		}
		lib.entries = append(lib.entries, e)
		lib.byID[id] = e
	}
	return lib
}

// Len returns the number of items held.
func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// List returns one page of the list selected by req.
func (l *Library) List(req media.ListRequest) (media.Page, error) {
	if err := req.Validate(); err != nil {
		return media.Page{}, err
	}

	l.mu.RLock()
	matched := l.matchLocked(req.Params)
	l.mu.RUnlock()

	offset := max(req.Offset, 0)
	start := min(offset, len(matched))
	end := min(start+max(req.Limit, 0), len(matched))
	return media.Page{
		Items:   slices.Clone(matched[start:end]),
		Offset:  offset,
		HasMore: end < len(matched),
	}, nil
}

func (l *Library) matchLocked(p media.Params) []media.Item {
	var out []media.Item
	switch p.Mode() {
	case media.ModeQuery:
		q := strings.ToLower(p.Query)
		for _, e := range l.entries {
			if p.Tag != "" && !slices.Contains(e.tags, p.Tag) {
				continue
			}
			if strings.Contains(strings.ToLower(e.item.Filename), q) || slices.Contains(e.tags, q) {
				out = append(out, e.item)
			}
		}
	case media.ModeTag:
		for _, e := range l.entries {
			if slices.Contains(e.tags, p.Tag) {
				out = append(out, e.item)
			}
		}
	default:
		out = make([]media.Item, 0, len(l.entries))
		for _, e := range l.entries {
			out = append(out, e.item)
		}
		shuffle(out, p.Seed)
	}
	return out
}

// shuffle orders items by a per-item key derived from seed and the item id,
// so every page of one session sees the same order and deleting items
// never moves the ones that remain.
func shuffle(items []media.Item, seed string) {
	keys := make(map[int64]uint64, len(items))
	for _, it := range items {
		keys[it.MediaID] = shuffleKey(seed, it.MediaID)
	}
	slices.SortFunc(items, func(a, b media.Item) int {
		if c := cmp.Compare(keys[a.MediaID], keys[b.MediaID]); c != 0 {
			return c
		}
		return cmp.Compare(a.MediaID, b.MediaID)
	})
}

func shuffleKey(seed string, id int64) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(seed))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write(strconv.AppendInt(nil, id, 10))
	return h.Sum64()
}

// Delete removes ids, reporting per-id failures with reason codes.
func (l *Library) Delete(ids []int64) media.DeleteResult {
	l.mu.Lock()
	defer l.mu.Unlock()

	res := media.DeleteResult{Deleted: []int64{}, Failed: []media.DeleteFailure{}}
	for _, id := range ids {
		e, ok := l.byID[id]
		switch {
		case !ok:
			res.Failed = append(res.Failed, media.DeleteFailure{ID: id, Reason: media.ReasonNotFound})
		case e.locked:
			res.Failed = append(res.Failed, media.DeleteFailure{ID: id, Reason: media.ReasonLocked})
		default:
			delete(l.byID, id)
			l.entries = slices.DeleteFunc(l.entries, func(x *entry) bool { return x == e })
			res.Deleted = append(res.Deleted, id)
		}
	}
	return res
}

// SetLike sets the like flag of id.
func (l *Library) SetLike(id int64, value bool) error {
	return l.update(id, func(it *media.Item) { it.Liked = value })
}

// SetFavorite sets the favorite flag of id.
func (l *Library) SetFavorite(id int64, value bool) error {
	return l.update(id, func(it *media.Item) { it.Favorited = value })
}

func (l *Library) update(id int64, fn func(*media.Item)) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.byID[id]
	if !ok {
		return fmt.Errorf("media %d: %w", id, ErrNotFound)
	}
	fn(&e.item)
	return nil
}

// Get returns the item with id.
func (l *Library) Get(id int64) (media.Item, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	e, ok := l.byID[id]
	if !ok {
		return media.Item{}, false
	}
	return e.item, true
}
