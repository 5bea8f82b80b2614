// Package player launches an external program to play videos. Each video
// item gets a handle that renders the configured command template and runs
// it in the background while the item is the active slide.
package player

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/colonyops/mosaic/internal/core/config"
	"github.com/colonyops/mosaic/internal/core/logging"
	"github.com/colonyops/mosaic/internal/core/media"
	"github.com/colonyops/mosaic/internal/gallery"
	"github.com/colonyops/mosaic/pkg/executil"
	"github.com/colonyops/mosaic/pkg/tmpl"
)

// ErrNoURL is returned when a video item has nothing to play.
var ErrNoURL = errors.New("item has no resource url")

// Data is the template data available to the player command.
type Data = config.PlayerTemplateData

// DataFor builds the template data for item.
func DataFor(item media.Item) Data {
	return Data{
		ID:       item.ID,
		MediaID:  item.MediaID,
		URL:      item.ResourceURL,
		Filename: item.Filename,
		Type:     string(item.Type),
	}
}

// Validate renders command against config.SamplePlayerData.
func Validate(command string) error {
	if _, err := tmpl.Render(command, config.SamplePlayerData); err != nil {
		return fmt.Errorf("player command: %w", err)
	}
	return nil
}

// Options configures the handle factory.
type Options struct {
	// Command is a text/template rendered with Data, e.g.
	// "mpv --really-quiet {{ shq .URL }}".
	Command string
	// Dir is the working directory of the player. Empty inherits the cwd.
	Dir     string
	Starter executil.Starter
	Logger  *zerolog.Logger
}

// NewFactory returns a gallery.HandleFactory launching opts.Command. An
// empty command returns a nil factory, which disables video handles.
func NewFactory(opts Options) (gallery.HandleFactory, error) {
	if opts.Command == "" {
		return nil, nil
	}
	if err := Validate(opts.Command); err != nil {
		return nil, err
	}
	if opts.Starter == nil {
		opts.Starter = executil.RealStarter{}
	}

	logger := logging.Component("player")
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	return func(item media.Item) (gallery.Handle, error) {
		if item.ResourceURL == "" {
			return nil, fmt.Errorf("%s: %w", item.ID, ErrNoURL)
		}
		cmd, err := tmpl.Render(opts.Command, DataFor(item))
		if err != nil {
			return nil, fmt.Errorf("render player command: %w", err)
		}
		return &Handle{
			itemID:  item.ID,
			cmd:     cmd,
			dir:     opts.Dir,
			starter: opts.Starter,
			log:     logger,
		}, nil
	}, nil
}

// Handle runs one player process for one item. External players cannot be
// paused remotely, so Pause stops the process and Play starts a new one.
type Handle struct {
	itemID  string
	cmd     string
	dir     string
	starter executil.Starter
	log     zerolog.Logger

	mu     sync.Mutex
	proc   *executil.Process
	closed bool
}

var _ gallery.Handle = (*Handle)(nil)

// Command returns the rendered command line.
func (h *Handle) Command() string { return h.cmd }

// Play starts the player unless it is already running. The process is not
// bound to ctx's cancellation; it lives until Pause or Close.
func (h *Handle) Play(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return fmt.Errorf("play %s: handle closed", h.itemID)
	}
	if h.proc != nil && h.proc.Running() {
		return nil
	}

	proc, err := h.starter.StartSh(context.WithoutCancel(ctx), h.dir, h.cmd)
	if err != nil {
		return fmt.Errorf("play %s: %w", h.itemID, err)
	}
	h.proc = proc
	h.log.Debug().Str("item", h.itemID).Int("pid", proc.Pid()).Msg("player started")

	go h.watch(proc)
	return nil
}

func (h *Handle) watch(proc *executil.Process) {
	<-proc.Done()
	if err := proc.Err(); err != nil {
		h.log.Debug().Err(err).Str("item", h.itemID).Msg("player exited")
	}
}

// Playing reports whether a player process is running.
func (h *Handle) Playing() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.proc != nil && h.proc.Running()
}

// Pause stops the running player, if any.
func (h *Handle) Pause() {
	h.mu.Lock()
	proc := h.proc
	h.proc = nil
	h.mu.Unlock()

	if proc != nil && proc.Running() {
		_ = proc.Stop()
	}
}

// Close stops the player and rejects further Play calls.
func (h *Handle) Close() {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()
	h.Pause()
}
