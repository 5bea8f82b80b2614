package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/mosaic/internal/core/media"
	"github.com/colonyops/mosaic/pkg/iojson"
)

// maxListPages bounds --all so a backend that never reports the end cannot
// loop forever.
const maxListPages = 1000

type LsCmd struct {
	flags *Flags
	list  listFlags

	// flags
	jsonOutput bool
	offset     int
	limit      int
	all        bool
}

// NewLsCmd creates a new ls command
func NewLsCmd(flags *Flags) *LsCmd {
	return &LsCmd{flags: flags}
}

// Register adds the ls command to the application
func (cmd *LsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "ls",
		Usage:     "List media items",
		UsageText: "mosaic ls [--json] [--tag TAG] [--query TEXT] [--offset N] [--limit N] [--all]",
		Description: `Fetches one page of the list (or every page with --all) and prints a
table of id, type, flags and filename.

Use --json for one JSON object per line; the output can be piped into
'mosaic rm'. Pass --seed to page through the same shuffle across calls.`,
		Flags: append(cmd.list.flags(),
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.jsonOutput,
			},
			&cli.IntFlag{
				Name:        "offset",
				Usage:       "index of the first item",
				Destination: &cmd.offset,
			},
			&cli.IntFlag{
				Name:        "limit",
				Usage:       "page size (defaults to gallery.page_size)",
				Destination: &cmd.limit,
			},
			&cli.BoolFlag{
				Name:        "all",
				Usage:       "keep fetching until the list is exhausted",
				Destination: &cmd.all,
			},
		),
		Action: cmd.run,
	})

	return app
}

func (cmd *LsCmd) run(ctx context.Context, c *cli.Command) error {
	if cmd.offset < 0 {
		return fmt.Errorf("--offset cannot be negative")
	}

	backend, err := cmd.flags.Client()
	if err != nil {
		return err
	}

	limit := cmd.limit
	if limit <= 0 {
		limit = cmd.flags.config().Gallery.PageSize
	}

	req := media.ListRequest{Params: cmd.list.params(), Offset: cmd.offset, Limit: limit}
	if err := req.Validate(); err != nil {
		return err
	}

	var items []media.Item
	for range maxListPages {
		page, err := backend.List(ctx, req)
		if err != nil {
			return fmt.Errorf("list: %w", err)
		}
		items = append(items, page.Items...)
		if !cmd.all || !page.HasMore || len(page.Items) == 0 {
			break
		}
		req.Offset += len(page.Items)
	}
	items = media.DedupeByID(items)

	out := c.Root().Writer

	if len(items) == 0 {
		if !cmd.jsonOutput {
			fmt.Fprintf(os.Stderr, "No items found\n")
		}
		return nil
	}

	if cmd.jsonOutput {
		for _, it := range items {
			if err := iojson.WriteLine(out, it); err != nil {
				return fmt.Errorf("encode item: %w", err)
			}
		}
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tTYPE\tFLAGS\tCREATED\tFILENAME")
	for _, it := range items {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			it.MediaID, it.Type, flagString(it), it.CreatedAt.Format("2006-01-02"), it.Filename)
	}
	return w.Flush()
}

func flagString(it media.Item) string {
	s := ""
	if it.Liked {
		s += "L"
	}
	if it.Favorited {
		s += "F"
	}
	if s == "" {
		return "-"
	}
	return s
}
