package gallery

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/mosaic/internal/core/media"
)

var quiet = zerolog.Nop()

func makeItems(from, n int) []media.Item {
	items := make([]media.Item, 0, n)
	for i := from; i < from+n; i++ {
		id := int64(i)
		items = append(items, media.Item{
			ID:        media.IDFor(id),
			MediaID:   id,
			Type:      media.TypeImage,
			URL:       fmt.Sprintf("/media/%d", id),
			Filename:  fmt.Sprintf("img_%03d.jpg", id),
			CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		})
	}
	return items
}

func idsOf(items []media.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

// fakeBackend serves a fixed library with offset/limit paging. pageFn
// overrides paging when set; gate, when set, holds List until it is
// closed or the request context ends.
type fakeBackend struct {
	mu       sync.Mutex
	library  []media.Item
	pageFn   func(req media.ListRequest) media.Page
	gate     chan struct{}
	entered  chan struct{}
	// deaf makes List ignore context cancellation while gated.
	deaf     bool
	listErr  error
	requests []media.ListRequest

	deleteErr   error
	deleteFails map[int64]string
	deleteCalls [][]int64

	flagErr   error
	flagGate  chan struct{}
	likes     map[int64]bool
	favorites map[int64]bool
}

func newFakeBackend(n int) *fakeBackend {
	return &fakeBackend{
		library:   makeItems(1, n),
		likes:     make(map[int64]bool),
		favorites: make(map[int64]bool),
	}
}

func (f *fakeBackend) List(ctx context.Context, req media.ListRequest) (media.Page, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	gate := f.gate
	entered := f.entered
	listErr := f.listErr
	pageFn := f.pageFn
	deaf := f.deaf
	f.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	switch {
	case gate != nil && deaf:
		<-gate
	case gate != nil:
		select {
		case <-gate:
		case <-ctx.Done():
			return media.Page{}, ctx.Err()
		}
	}
	if listErr != nil {
		return media.Page{}, listErr
	}
	if pageFn != nil {
		return pageFn(req), nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	start := min(req.Offset, len(f.library))
	end := min(req.Offset+req.Limit, len(f.library))
	return media.Page{
		Items:   append([]media.Item(nil), f.library[start:end]...),
		Offset:  req.Offset,
		HasMore: end < len(f.library),
	}, nil
}

func (f *fakeBackend) BatchDelete(_ context.Context, ids []int64) (media.DeleteResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls = append(f.deleteCalls, append([]int64(nil), ids...))
	if f.deleteErr != nil {
		return media.DeleteResult{}, f.deleteErr
	}

	var res media.DeleteResult
	for _, id := range ids {
		if reason, ok := f.deleteFails[id]; ok {
			res.Failed = append(res.Failed, media.DeleteFailure{ID: id, Reason: reason})
			continue
		}
		res.Deleted = append(res.Deleted, id)
	}
	return res, nil
}

func (f *fakeBackend) SetLike(ctx context.Context, id int64, value bool) error {
	return f.setFlag(ctx, f.likes, id, value)
}

func (f *fakeBackend) SetFavorite(ctx context.Context, id int64, value bool) error {
	return f.setFlag(ctx, f.favorites, id, value)
}

func (f *fakeBackend) setFlag(ctx context.Context, m map[int64]bool, id int64, value bool) error {
	f.mu.Lock()
	gate := f.flagGate
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.flagErr != nil {
		return f.flagErr
	}
	m[id] = value
	return nil
}

func (f *fakeBackend) lastRequest() media.ListRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return media.ListRequest{}
	}
	return f.requests[len(f.requests)-1]
}

func (f *fakeBackend) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

var errBackendDown = errors.New("backend down")

type recordingNotifier struct {
	mu     sync.Mutex
	errors []string
	infos  []string
}

func (r *recordingNotifier) Errorf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, fmt.Sprintf(format, args...))
}

func (r *recordingNotifier) Infof(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.infos = append(r.infos, fmt.Sprintf(format, args...))
}

func (r *recordingNotifier) Errors() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.errors...)
}

func (r *recordingNotifier) Infos() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.infos...)
}

var seeded = media.Params{Seed: "session-seed"}

func newTestSource(b Backend, n Notifier) *Source {
	return NewSource(b, seeded, SourceOptions{PageSize: 20, Notifier: n, Logger: &quiet})
}

func newTestGallery(b Backend, opts Options) *Gallery {
	if opts.PageSize == 0 {
		opts.PageSize = 20
	}
	opts.Logger = &quiet
	return New(b, seeded, opts)
}
