package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/mosaic/internal/gallery"
)

// FlagCmd sets or clears one per-item flag (like or favorite).
type FlagCmd struct {
	flags *Flags
	name  string
	noun  string
	set   func(gallery.Backend, context.Context, int64, bool) error

	off bool
}

// NewLikeCmd creates the like command
func NewLikeCmd(flags *Flags) *FlagCmd {
	return &FlagCmd{
		flags: flags,
		name:  "like",
		noun:  "liked",
		set:   gallery.Backend.SetLike,
	}
}

// NewFavCmd creates the fav command
func NewFavCmd(flags *Flags) *FlagCmd {
	return &FlagCmd{
		flags: flags,
		name:  "fav",
		noun:  "favorited",
		set:   gallery.Backend.SetFavorite,
	}
}

// Register adds the command to the application
func (cmd *FlagCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      cmd.name,
		Usage:     fmt.Sprintf("Mark items as %s", cmd.noun),
		UsageText: fmt.Sprintf("mosaic %s <id>... [--off]", cmd.name),
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "off",
				Usage:       "clear the flag instead of setting it",
				Destination: &cmd.off,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *FlagCmd) run(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() == 0 {
		return fmt.Errorf("no ids given")
	}

	backend, err := cmd.flags.Client()
	if err != nil {
		return err
	}

	value := !cmd.off
	out := c.Root().Writer
	for _, arg := range c.Args().Slice() {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid id %q", arg)
		}
		if err := cmd.set(backend, ctx, id, value); err != nil {
			return fmt.Errorf("%s %d: %w", cmd.name, id, err)
		}

		state := cmd.noun
		if !value {
			state = "not " + state
		}
		_, _ = fmt.Fprintf(out, "%d %s\n", id, state)
	}
	return nil
}
