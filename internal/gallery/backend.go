// Package gallery holds the browsing and viewing state machines: the
// paginated media source, the selection engine, video playback handles, the
// grid command surface, the full-screen viewer and the coordinator keeping
// them consistent. It contains no Bubble Tea code.
package gallery

import (
	"context"
	"errors"

	"github.com/colonyops/mosaic/internal/core/media"
)

var (
	// ErrBusy is returned when a mutation for the same item is already in flight.
	ErrBusy = errors.New("item is busy")
	// ErrNoCurrent is returned by viewer actions when nothing is open.
	ErrNoCurrent = errors.New("viewer has no current item")
	// ErrClosed is returned by a source after Close.
	ErrClosed = errors.New("source closed")
	// ErrOutOfRange is returned when navigation targets an index the list
	// cannot reach.
	ErrOutOfRange = errors.New("index out of range")
	// ErrLoading is returned when the next slide is not loaded yet because
	// a page fetch is still in flight. Retrying after it lands succeeds.
	ErrLoading = errors.New("next page still loading")
	// ErrDeleteFailed is returned when the backend refused to delete the
	// item shown in the viewer.
	ErrDeleteFailed = errors.New("delete failed")
)

// Backend is the part of the media service the gallery consumes.
type Backend interface {
	List(ctx context.Context, req media.ListRequest) (media.Page, error)
	BatchDelete(ctx context.Context, ids []int64) (media.DeleteResult, error)
	SetLike(ctx context.Context, mediaID int64, value bool) error
	SetFavorite(ctx context.Context, mediaID int64, value bool) error
}

// Notifier surfaces transient user-facing messages.
type Notifier interface {
	Errorf(format string, args ...any)
	Infof(format string, args ...any)
}

type nopNotifier struct{}

func (nopNotifier) Errorf(string, ...any) {}
func (nopNotifier) Infof(string, ...any)  {}

func notifierOrNop(n Notifier) Notifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}

func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}
