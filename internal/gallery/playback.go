package gallery

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/colonyops/mosaic/internal/core/logging"
	"github.com/colonyops/mosaic/internal/core/media"
	"github.com/colonyops/mosaic/pkg/kv"
)

// Handle is a playable video resource. Play starts playback and returns
// without waiting for it to finish.
type Handle interface {
	Play(ctx context.Context) error
	Pause()
	Close()
}

// HandleFactory creates the handle for a video item.
type HandleFactory func(media.Item) (Handle, error)

// Playback retention defaults.
const (
	DefaultPruneEverySteps = 30
	DefaultStepWindow      = 10
	DefaultTimerWindow     = 15
	DefaultPruneInterval   = 2 * time.Minute
)

// PlaybackOptions configures handle retention.
type PlaybackOptions struct {
	PruneEverySteps int
	StepWindow      int
	TimerWindow     int
	PruneInterval   time.Duration
	Clock           clockwork.Clock
	Logger          *zerolog.Logger
}

func (o *PlaybackOptions) applyDefaults() {
	if o.PruneEverySteps <= 0 {
		o.PruneEverySteps = DefaultPruneEverySteps
	}
	if o.StepWindow <= 0 {
		o.StepWindow = DefaultStepWindow
	}
	if o.TimerWindow <= 0 {
		o.TimerWindow = DefaultTimerWindow
	}
	if o.PruneInterval <= 0 {
		o.PruneInterval = DefaultPruneInterval
	}
	if o.Clock == nil {
		o.Clock = clockwork.NewRealClock()
	}
}

// Playback keeps at most one video playing. Handles are created lazily per
// video item and pruned when their item drifts far from the current index;
// a pruned handle is recreated on demand.
type Playback struct {
	items   func() []media.Item
	factory HandleFactory
	opts    PlaybackOptions
	log     zerolog.Logger
	handles *kv.Store[string, Handle]

	mu       sync.Mutex
	activeID string
	current  int
	steps    int
	stop     context.CancelFunc
	closed   bool
}

// NewPlayback creates a playback manager over the list returned by items.
// A nil factory disables video handles entirely.
func NewPlayback(items func() []media.Item, factory HandleFactory, opts PlaybackOptions) *Playback {
	opts.applyDefaults()

	logger := logging.Component("playback")
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	return &Playback{
		items:   items,
		factory: factory,
		opts:    opts,
		log:     logger,
		handles: kv.New[string, Handle](),
		current: -1,
	}
}

// Activate makes the item at index the active slide. The previously active
// handle is paused and the new one, if it is a video, is asked to play.
// Playback errors are logged only.
func (p *Playback) Activate(ctx context.Context, index int) {
	items := p.items()
	if index < 0 || index >= len(items) {
		return
	}
	item := items[index]

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	prevID := p.activeID
	p.current = index
	p.steps++
	prune := p.steps%p.opts.PruneEverySteps == 0
	if item.IsVideo() {
		p.activeID = item.ID
	} else {
		p.activeID = ""
	}
	p.mu.Unlock()

	if prevID != "" && prevID != item.ID {
		if h, ok := p.handles.Get(prevID); ok {
			h.Pause()
		}
	}

	if item.IsVideo() {
		if h := p.ensure(item); h != nil {
			if err := h.Play(ctx); err != nil {
				p.log.Debug().Err(err).Str("item", item.ID).Msg("play rejected")
			}
		}
	}

	if prune {
		p.pruneAround(index, p.opts.StepWindow, "steps")
	}
}

// Deactivate pauses the active handle without choosing a new one.
func (p *Playback) Deactivate() {
	p.mu.Lock()
	id := p.activeID
	p.activeID = ""
	p.mu.Unlock()

	if id == "" {
		return
	}
	if h, ok := p.handles.Get(id); ok {
		h.Pause()
	}
}

// Ensure creates the handle for the item at index without playing it.
func (p *Playback) Ensure(index int) {
	items := p.items()
	if index < 0 || index >= len(items) || !items[index].IsVideo() {
		return
	}

	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return
	}
	p.ensure(items[index])
}

func (p *Playback) ensure(item media.Item) Handle {
	if p.factory == nil {
		return nil
	}
	h, created, err := p.handles.GetOrCreate(item.ID, func() (Handle, error) {
		return p.factory(item)
	})
	if err != nil {
		p.log.Warn().Err(err).Str("item", item.ID).Msg("create video handle")
		return nil
	}
	if created {
		p.log.Debug().Str("item", item.ID).Msg("video handle created")
	}
	return h
}

// Start launches the periodic pruning timer. It stops when ctx is done or
// the manager is closed.
func (p *Playback) Start(ctx context.Context) {
	p.mu.Lock()
	if p.closed || p.stop != nil {
		p.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	p.stop = cancel
	p.mu.Unlock()

	ticker := p.opts.Clock.NewTicker(p.opts.PruneInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.Chan():
				p.mu.Lock()
				current := p.current
				p.mu.Unlock()
				if current >= 0 {
					p.pruneAround(current, p.opts.TimerWindow, "timer")
				}
			}
		}
	}()
}

// pruneAround drops handles whose item is more than window positions from
// center, or no longer in the list at all.
func (p *Playback) pruneAround(center, window int, reason string) {
	positions := make(map[string]int)
	for i, it := range p.items() {
		positions[it.ID] = i
	}

	p.mu.Lock()
	active := p.activeID
	p.mu.Unlock()

	dropped := p.handles.DeleteFunc(func(id string, _ Handle) bool {
		if id == active {
			return false
		}
		pos, ok := positions[id]
		if !ok {
			return true
		}
		return pos < center-window || pos > center+window
	})
	for _, h := range dropped {
		h.Close()
	}

	if len(dropped) > 0 {
		p.log.Debug().
			Int("center", center).
			Int("window", window).
			Int("dropped", len(dropped)).
			Str("reason", reason).
			Msg("pruned video handles")
	}
}

// PauseAll pauses every handle, used when the terminal loses focus.
func (p *Playback) PauseAll() {
	for _, h := range p.handles.Values() {
		h.Pause()
	}
}

// Active returns the id of the playing item, or "".
func (p *Playback) Active() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.activeID
}

// Handles returns the ids of items with a live handle.
func (p *Playback) Handles() []string {
	return p.handles.Keys()
}

// Close stops the timer, pauses and drops all handles.
func (p *Playback) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.activeID = ""
	stop := p.stop
	p.mu.Unlock()

	if stop != nil {
		stop()
	}
	for _, h := range p.handles.Drain() {
		h.Pause()
		h.Close()
	}
}
