// Package gallerytest provides an in-memory gallery backend for tests of
// code built on the gallery. It wraps the demo server's library, so list
// order, filters and delete failures match what the serve command returns.
package gallerytest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/mosaic/internal/core/media"
	"github.com/colonyops/mosaic/internal/devserver"
	"github.com/colonyops/mosaic/internal/gallery"
)

// Backend implements gallery.Backend over a devserver.Library with
// injectable failures.
type Backend struct {
	Library *devserver.Library

	mu      sync.Mutex
	listErr error
	flagErr error
	lists   int
}

var _ gallery.Backend = (*Backend)(nil)

// NewBackend creates a backend over a generated library.
func NewBackend(opts devserver.LibraryOptions) *Backend {
	if opts.Now.IsZero() {
		opts.Now = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return &Backend{Library: devserver.NewLibrary(opts)}
}

// List returns one page, or the injected list failure.
func (b *Backend) List(ctx context.Context, req media.ListRequest) (media.Page, error) {
	if err := ctx.Err(); err != nil {
		return media.Page{}, err
	}

	b.mu.Lock()
	b.lists++
	err := b.listErr
	b.mu.Unlock()
	if err != nil {
		return media.Page{}, err
	}
	return b.Library.List(req)
}

// BatchDelete deletes ids from the library.
func (b *Backend) BatchDelete(ctx context.Context, ids []int64) (media.DeleteResult, error) {
	if err := ctx.Err(); err != nil {
		return media.DeleteResult{}, err
	}
	return b.Library.Delete(ids), nil
}

// SetLike sets the like flag, or returns the injected flag failure.
func (b *Backend) SetLike(ctx context.Context, mediaID int64, value bool) error {
	if err := b.flagFailure(ctx); err != nil {
		return err
	}
	return b.Library.SetLike(mediaID, value)
}

// SetFavorite sets the favorite flag, or returns the injected flag failure.
func (b *Backend) SetFavorite(ctx context.Context, mediaID int64, value bool) error {
	if err := b.flagFailure(ctx); err != nil {
		return err
	}
	return b.Library.SetFavorite(mediaID, value)
}

func (b *Backend) flagFailure(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.flagErr
}

// FailList makes every List call return err. Nil restores normal behavior.
func (b *Backend) FailList(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listErr = err
}

// FailFlags makes like and favorite calls return err.
func (b *Backend) FailFlags(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.flagErr = err
}

// ListCalls returns the number of List calls made.
func (b *Backend) ListCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lists
}

// New builds a gallery over a fresh backend in seeded mode. The gallery is
// closed when the test ends.
func New(t *testing.T, lib devserver.LibraryOptions, opts gallery.Options) (*gallery.Gallery, *Backend) {
	t.Helper()

	if opts.Logger == nil {
		nop := zerolog.Nop()
		opts.Logger = &nop
	}

	b := NewBackend(lib)
	g := gallery.New(b, media.Params{Seed: "test-seed"}, opts)
	t.Cleanup(g.Close)
	return g, b
}
