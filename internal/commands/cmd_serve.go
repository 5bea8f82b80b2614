package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/mosaic/internal/devserver"
)

type ServeCmd struct {
	flags *Flags

	addr        string
	count       int
	videoEvery  int
	lockedEvery int
	rps         float64
	latency     time.Duration
}

// NewServeCmd creates a new serve command
func NewServeCmd(flags *Flags) *ServeCmd {
	return &ServeCmd{flags: flags}
}

// Register adds the serve command to the application
func (cmd *ServeCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "serve",
		Usage:     "Run the in-memory demo media server",
		UsageText: "mosaic serve [--addr :8484] [--count 500]",
		Description: `Serves a generated library over the same endpoints the client uses,
so the gallery can be tried without a real media index. Deletes and flag
changes live in memory and are lost on exit.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       ":8484",
				Sources:     cli.EnvVars("MOSAIC_SERVE_ADDR"),
				Destination: &cmd.addr,
			},
			&cli.IntFlag{
				Name:        "count",
				Usage:       "number of generated items",
				Value:       500,
				Destination: &cmd.count,
			},
			&cli.IntFlag{
				Name:        "videos",
				Usage:       "make every Nth item a video (0 disables)",
				Value:       4,
				Destination: &cmd.videoEvery,
			},
			&cli.IntFlag{
				Name:        "locked",
				Usage:       "make every Nth item refuse deletion (0 disables)",
				Value:       9,
				Destination: &cmd.lockedEvery,
			},
			&cli.FloatFlag{
				Name:        "rps",
				Usage:       "global request rate limit (0 disables)",
				Destination: &cmd.rps,
			},
			&cli.DurationFlag{
				Name:        "latency",
				Usage:       "artificial delay added to every response",
				Destination: &cmd.latency,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *ServeCmd) run(ctx context.Context, c *cli.Command) error {
	if cmd.count < 0 {
		return fmt.Errorf("--count cannot be negative")
	}

	lib := devserver.NewLibrary(devserver.LibraryOptions{
		Count:       cmd.count,
		VideoEvery:  cmd.videoEvery,
		LockedEvery: cmd.lockedEvery,
	})
	router := devserver.NewRouter(lib, devserver.RouterOptions{
		RequestsPerSecond: cmd.rps,
		Burst:             int(cmd.rps) + 1,
		Latency:           cmd.latency,
	})

	log.Info().Str("addr", cmd.addr).Int("items", lib.Len()).Msg("demo server listening")
	_, _ = fmt.Fprintf(c.Root().Writer, "serving %d items on %s\n", lib.Len(), cmd.addr)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return devserver.Serve(ctx, cmd.addr, router)
}
