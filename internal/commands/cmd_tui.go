package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/mosaic/internal/core/config"
	"github.com/colonyops/mosaic/internal/core/logging"
	"github.com/colonyops/mosaic/internal/core/notify"
	"github.com/colonyops/mosaic/internal/gallery"
	"github.com/colonyops/mosaic/internal/player"
	"github.com/colonyops/mosaic/internal/tui"
	tuinotify "github.com/colonyops/mosaic/internal/tui/notify"
	"github.com/colonyops/mosaic/pkg/profiler"
	"github.com/colonyops/mosaic/pkg/utils"
)

const notificationHistory = 100

type TuiCmd struct {
	flags *Flags
	list  listFlags
}

// NewTuiCmd creates a new tui command
func NewTuiCmd(flags *Flags) *TuiCmd {
	return &TuiCmd{flags: flags}
}

// Flags returns the TUI-specific flags for registration on the root command
func (cmd *TuiCmd) Flags() []cli.Flag {
	return append(cmd.list.flags(),
		&cli.IntFlag{
			Name:        "profiler-port",
			Usage:       "enable pprof HTTP endpoint on specified port (e.g., 6060)",
			Sources:     cli.EnvVars("MOSAIC_PROFILER_PORT"),
			Destination: &cmd.flags.ProfilerPort,
		},
	)
}

// Register adds the browse command to the application
func (cmd *TuiCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "browse",
		Usage:     "Open the interactive gallery",
		UsageText: "mosaic browse [--tag TAG] [--query TEXT] [--seed SEED]",
		Description: `Opens the tile grid. Enter opens the viewer, space and mouse clicks
select, dragging on the background draws a selection box, x deletes the
selection and / searches ("#tag words").

Running mosaic with no arguments does the same.`,
		Flags:  cmd.Flags(),
		Action: cmd.Run,
	})
	return app
}

// Run executes the TUI. Exported for use as default command.
func (cmd *TuiCmd) Run(ctx context.Context, c *cli.Command) error {
	return cmd.run(ctx, c)
}

// GalleryOptions maps the config onto gallery options.
func GalleryOptions(cfg *config.Config) gallery.Options {
	return gallery.Options{
		PageSize:         cfg.Gallery.PageSize,
		PreloadThreshold: cfg.Gallery.PreloadThreshold,
		DeleteMode:       gallery.DeleteMode(cfg.Gallery.DeleteMode),
		ConfirmDelete:    cfg.Gallery.Confirm(),
		Playback: gallery.PlaybackOptions{
			PruneEverySteps: cfg.Playback.PruneEverySteps,
			StepWindow:      cfg.Playback.StepWindow,
			TimerWindow:     cfg.Playback.TimerWindow,
			PruneInterval:   cfg.Playback.PruneInterval,
		},
	}
}

func (cmd *TuiCmd) run(ctx context.Context, c *cli.Command) error {
	cfg := cmd.flags.config()

	// The TUI owns the terminal; anything worth printing waits for exit.
	var console utils.DeferredWriter
	defer func() {
		errw := c.Root().ErrWriter
		if errw == nil {
			errw = os.Stderr
		}
		_ = console.Flush(errw)
	}()

	backend, err := cmd.flags.Client()
	if err != nil {
		return err
	}

	var warnings []string
	for _, w := range cfg.Warnings() {
		warnings = append(warnings, fmt.Sprintf("%s: %s", w.Category, w.Message))
	}

	handles, err := player.NewFactory(player.Options{Command: cfg.Playback.Player})
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("Playback disabled: %v", err))
	}

	bus := tuinotify.NewBus(notify.NewHistory(notificationHistory))
	frames := gallery.NewFrameCoalescer(clockwork.NewRealClock(), cfg.TUI.FrameInterval)
	params := cmd.list.params()

	galLogger := logging.Component("gallery")
	opts := GalleryOptions(cfg)
	opts.Scheduler = frames
	opts.Notifier = bus
	opts.Handles = handles
	opts.Logger = &galLogger

	g := gallery.New(backend, params, opts)
	defer g.Close()

	if cmd.flags.ProfilerPort > 0 {
		profServer := profiler.New(cmd.flags.ProfilerPort, profiler.WithStatus(func() any { return g.Stats() }))
		if err := profServer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start profiler: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := profServer.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("failed to shutdown profiler server")
			}
		}()
		log.Info().
			Str("pprof", fmt.Sprintf("http://%s/debug/pprof/", profServer.Addr())).
			Str("status", fmt.Sprintf("http://%s/status", profServer.Addr())).
			Msg("profiler endpoint available")
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g.Start(runCtx)

	m := tui.New(tui.Options{
		Gallery: g,
		Config:  cfg,
		Bus:     bus,
		Frames:  frames,
		Seed:    params.Seed,
		Ctx:     runCtx,
	})
	for _, w := range warnings {
		bus.Warnf("%s", w)
		console.Printf("warning: %s", w)
	}

	log.Info().
		Str("list_mode", string(params.Mode())).
		Str("seed", params.Seed).
		Msg("starting browser")

	p := tea.NewProgram(m, tea.WithContext(runCtx))
	if stop := cmd.watchConfig(p); stop != nil {
		defer stop()
	}
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}

	// Errors shown as toasts are gone with the screen; repeat them.
	for _, n := range bus.History() {
		if n.Level == notify.LevelError {
			console.Printf("error: %s", n.Message)
		}
	}
	return nil
}

// watchConfig forwards config file edits to the running program. Without a
// config file, or when the watcher fails, reloading is simply off.
func (cmd *TuiCmd) watchConfig(p *tea.Program) func() {
	path := cmd.flags.ConfigPath
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}

	w, err := config.Watch(path, cmd.flags.DataDir, func(cfg *config.Config, err error) {
		p.Send(tui.ConfigReloadedMsg{Config: cfg, Err: err})
	})
	if err != nil {
		log.Warn().Err(err).Msg("config reload disabled")
		return nil
	}
	return func() {
		if err := w.Close(); err != nil {
			log.Debug().Err(err).Msg("close config watcher")
		}
	}
}
