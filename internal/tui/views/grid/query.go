package grid

import (
	"strings"

	"github.com/colonyops/mosaic/internal/core/media"
)

// ParseQuery turns query bar input into list params. A leading "#word"
// selects a tag, the remaining words become the text query. Empty input
// returns to the seeded shuffle.
func ParseQuery(input, seed string) media.Params {
	p := media.Params{Seed: seed}

	fields := strings.Fields(input)
	if len(fields) > 0 && strings.HasPrefix(fields[0], "#") {
		p.Tag = strings.TrimPrefix(fields[0], "#")
		fields = fields[1:]
	}
	p.Query = strings.Join(fields, " ")
	return p
}

// FormatQuery is the inverse of ParseQuery, used to prefill the query bar.
func FormatQuery(p media.Params) string {
	var parts []string
	if p.Tag != "" {
		parts = append(parts, "#"+p.Tag)
	}
	if p.Query != "" {
		parts = append(parts, p.Query)
	}
	return strings.Join(parts, " ")
}

// describe renders the mode label shown in the header.
func describe(p media.Params) string {
	switch p.Mode() {
	case media.ModeQuery:
		if p.Tag != "" {
			return "search \"" + p.Query + "\" in #" + p.Tag
		}
		return "search \"" + p.Query + "\""
	case media.ModeTag:
		return "#" + p.Tag
	default:
		return "shuffle"
	}
}
