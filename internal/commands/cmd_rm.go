package commands

import (
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/mosaic/internal/core/media"
	"github.com/colonyops/mosaic/pkg/iojson"
)

type RmCmd struct {
	flags *Flags
	input iojson.FileReader[media.Item]

	jsonOutput bool
}

// NewRmCmd creates a new rm command
func NewRmCmd(flags *Flags) *RmCmd {
	return &RmCmd{flags: flags}
}

// Register adds the rm command to the application
func (cmd *RmCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "rm",
		Usage:     "Delete media items",
		UsageText: "mosaic rm <id>... | mosaic ls --json | mosaic rm",
		Description: `Deletes the given media ids in one batch request. Without arguments the
items are read as JSON lines from --file or piped stdin, the format
written by 'mosaic ls --json'.

Items the backend refuses are reported with a reason; the command exits
non-zero when anything failed.`,
		Flags: []cli.Flag{
			cmd.input.Flag(),
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print the delete result as JSON",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *RmCmd) run(ctx context.Context, c *cli.Command) error {
	ids, err := cmd.ids(c.Args().Slice())
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return fmt.Errorf("no ids given")
	}

	backend, err := cmd.flags.Client()
	if err != nil {
		return err
	}

	res, err := backend.BatchDelete(ctx, ids)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	out := c.Root().Writer
	if cmd.jsonOutput {
		if err := iojson.WriteLine(out, res); err != nil {
			return err
		}
	} else {
		for _, id := range res.Deleted {
			_, _ = fmt.Fprintf(out, "deleted %d\n", id)
		}
		for _, f := range res.Failed {
			_, _ = fmt.Fprintf(out, "failed  %d: %s\n", f.ID, media.FriendlyReason(f.Reason))
		}
	}

	if !res.AllDeleted() {
		return cli.Exit(media.FriendlyFailures(res.Failed), 1)
	}
	return nil
}

// ids parses args, or reads items from the input when there are none.
// Duplicates are dropped, first occurrence wins.
func (cmd *RmCmd) ids(args []string) ([]int64, error) {
	var ids []int64
	if len(args) > 0 {
		for _, a := range args {
			id, err := strconv.ParseInt(a, 10, 64)
			if err != nil || id <= 0 {
				return nil, fmt.Errorf("invalid id %q", a)
			}
			ids = append(ids, id)
		}
	} else if cmd.input.Piped() {
		items, err := cmd.input.Read()
		if err != nil {
			return nil, fmt.Errorf("read items: %w", err)
		}
		for _, it := range items {
			ids = append(ids, it.MediaID)
		}
	}

	var unique []int64
	for _, id := range ids {
		if !slices.Contains(unique, id) {
			unique = append(unique, id)
		}
	}
	return unique, nil
}
