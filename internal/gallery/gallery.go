package gallery

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/colonyops/mosaic/internal/core/media"
)

// Options configures a Gallery.
type Options struct {
	PageSize         int
	PreloadThreshold int
	DeleteMode       DeleteMode
	ConfirmDelete    bool
	// Scheduler coalesces drag-box hit tests. Nil runs them immediately.
	Scheduler Scheduler
	Notifier  Notifier
	Playback  PlaybackOptions
	// Handles creates video handles. Nil disables playback handles.
	Handles HandleFactory
	Logger  *zerolog.Logger
}

// Gallery wires a source, grid, coordinator, viewer and playback manager
// over one backend.
type Gallery struct {
	Source      *Source
	Grid        *Grid
	Coordinator *Coordinator
	Viewer      *Viewer
	Playback    *Playback
}

// New builds a gallery for params. Nothing is fetched until Refresh.
func New(backend Backend, params media.Params, opts Options) *Gallery {
	source := NewSource(backend, params, SourceOptions{
		PageSize: opts.PageSize,
		Notifier: opts.Notifier,
		Logger:   opts.Logger,
	})
	grid := NewGrid(source, backend, GridOptions{
		PreloadThreshold: opts.PreloadThreshold,
		DeleteMode:       opts.DeleteMode,
		ConfirmDelete:    opts.ConfirmDelete,
		Scheduler:        opts.Scheduler,
		Notifier:         opts.Notifier,
		Logger:           opts.Logger,
	})
	coord := NewCoordinator(grid, opts.Logger)

	pbOpts := opts.Playback
	if pbOpts.Logger == nil {
		pbOpts.Logger = opts.Logger
	}
	playback := NewPlayback(coord.Items, opts.Handles, pbOpts)

	viewer := NewViewer(coord, backend, playback, ViewerOptions{
		PreloadThreshold: opts.PreloadThreshold,
		Notifier:         opts.Notifier,
		Logger:           opts.Logger,
	})

	return &Gallery{
		Source:      source,
		Grid:        grid,
		Coordinator: coord,
		Viewer:      viewer,
		Playback:    playback,
	}
}

// Start runs background maintenance until ctx is done.
func (g *Gallery) Start(ctx context.Context) {
	g.Playback.Start(ctx)
}

// Close cancels in-flight fetches and releases playback handles.
func (g *Gallery) Close() {
	g.Source.Close()
	g.Playback.Close()
}

// Stats is a point-in-time snapshot for debugging endpoints.
type Stats struct {
	Params       media.Params `json:"params"`
	Loaded       int          `json:"loaded"`
	Offset       int          `json:"offset"`
	HasMore      bool         `json:"has_more"`
	Fetching     bool         `json:"fetching"`
	Err          string       `json:"error,omitempty"`
	Selected     int          `json:"selected"`
	ViewerOpen   bool         `json:"viewer_open"`
	ViewerIndex  int          `json:"viewer_index"`
	ActiveHandle string       `json:"active_handle,omitempty"`
	LiveHandles  int          `json:"live_handles"`
}

// Stats snapshots the gallery.
func (g *Gallery) Stats() Stats {
	cur := g.Source.Cursor()
	st := g.Coordinator.State()
	return Stats{
		Params:       g.Source.Params(),
		Loaded:       g.Source.Len(),
		Offset:       cur.Offset,
		HasMore:      cur.HasMore,
		Fetching:     cur.Fetching,
		Err:          g.Source.Err(),
		Selected:     g.Grid.Selection().Len(),
		ViewerOpen:   st.Open,
		ViewerIndex:  st.Index,
		ActiveHandle: g.Playback.Active(),
		LiveHandles:  len(g.Playback.Handles()),
	}
}
