package viewer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/rs/zerolog/log"

	"github.com/colonyops/mosaic/internal/core/media"
	"github.com/colonyops/mosaic/internal/core/styles"
)

// infoMarkdown describes an item as a markdown table.
func infoMarkdown(it media.Item) string {
	yesNo := func(b bool) string {
		if b {
			return "yes"
		}
		return "no"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", it.Filename)
	b.WriteString("| field | value |\n|---|---|\n")
	fmt.Fprintf(&b, "| id | %d |\n", it.MediaID)
	fmt.Fprintf(&b, "| type | %s |\n", it.Type)
	if !it.CreatedAt.IsZero() {
		fmt.Fprintf(&b, "| created | %s |\n", it.CreatedAt.Format("2006-01-02 15:04"))
	}
	fmt.Fprintf(&b, "| liked | %s |\n", yesNo(it.Liked))
	fmt.Fprintf(&b, "| favorite | %s |\n", yesNo(it.Favorited))
	fmt.Fprintf(&b, "\n`%s`\n", it.ResourceURL)
	return b.String()
}

// infoCache memoizes the rendered panel; glamour is too slow to run on
// every frame.
type infoCache struct {
	key      string
	rendered string
}

func (c *infoCache) render(it media.Item, width int) string {
	md := infoMarkdown(it)
	key := fmt.Sprintf("%d:%s", width, md)
	if c.key == key {
		return c.rendered
	}

	c.key = key
	c.rendered = renderMarkdown(md, width)
	return c.rendered
}

func renderMarkdown(md string, width int) string {
	style := styles.GlamourStyle()
	noMargin := uint(0)
	style.Document.Margin = &noMargin

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStyles(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		log.Debug().Err(err).Msg("failed to create markdown renderer, showing raw content")
		return md
	}

	out, err := renderer.Render(md)
	if err != nil {
		log.Debug().Err(err).Msg("failed to render markdown, showing raw content")
		return md
	}
	return strings.TrimSpace(out)
}
