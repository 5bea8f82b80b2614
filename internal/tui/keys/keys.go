// Package keys builds the TUI key bindings from the keys config section.
package keys

import (
	"charm.land/bubbles/v2/key"

	"github.com/colonyops/mosaic/internal/core/config"
)

// KeyMap holds one binding per bindable action.
type KeyMap struct {
	Open      key.Binding
	Close     key.Binding
	Next      key.Binding
	Prev      key.Binding
	Like      key.Binding
	Favorite  key.Binding
	Delete    key.Binding
	Select    key.Binding
	SelectAll key.Binding
	Clear     key.Binding
	Refresh   key.Binding
	Search    key.Binding
	Retry     key.Binding
	Info      key.Binding
	Help      key.Binding
	Quit      key.Binding
}

var helpText = map[string]string{
	config.ActionOpen:      "open",
	config.ActionClose:     "close",
	config.ActionNext:      "next",
	config.ActionPrev:      "prev",
	config.ActionLike:      "like",
	config.ActionFavorite:  "favorite",
	config.ActionDelete:    "delete",
	config.ActionSelect:    "select",
	config.ActionSelectAll: "select all",
	config.ActionClear:     "clear",
	config.ActionRefresh:   "refresh",
	config.ActionSearch:    "search",
	config.ActionRetry:     "retry",
	config.ActionInfo:      "info",
	config.ActionHelp:      "help",
	config.ActionQuit:      "quit",
}

// New builds a KeyMap from action -> keys. Actions missing from bindings
// get no keys and never match.
func New(bindings map[string][]string) KeyMap {
	b := func(action string) key.Binding {
		keys := bindings[action]
		if len(keys) == 0 {
			return key.NewBinding(key.WithDisabled())
		}
		return key.NewBinding(
			key.WithKeys(keys...),
			key.WithHelp(keys[0], helpText[action]),
		)
	}

	return KeyMap{
		Open:      b(config.ActionOpen),
		Close:     b(config.ActionClose),
		Next:      b(config.ActionNext),
		Prev:      b(config.ActionPrev),
		Like:      b(config.ActionLike),
		Favorite:  b(config.ActionFavorite),
		Delete:    b(config.ActionDelete),
		Select:    b(config.ActionSelect),
		SelectAll: b(config.ActionSelectAll),
		Clear:     b(config.ActionClear),
		Refresh:   b(config.ActionRefresh),
		Search:    b(config.ActionSearch),
		Retry:     b(config.ActionRetry),
		Info:      b(config.ActionInfo),
		Help:      b(config.ActionHelp),
		Quit:      b(config.ActionQuit),
	}
}

// Mobile returns a copy with the viewer bindings other than close and quit
// disabled.
func (k KeyMap) Mobile() KeyMap {
	for _, b := range []*key.Binding{&k.Next, &k.Prev, &k.Like, &k.Favorite, &k.Delete, &k.Info} {
		b.SetEnabled(false)
	}
	return k
}

// GridHelp returns the bindings shown in the grid status bar.
func (k KeyMap) GridHelp() []key.Binding {
	return []key.Binding{k.Open, k.Select, k.Delete, k.Search, k.Refresh, k.Help, k.Quit}
}

// ViewerHelp returns the bindings shown in the viewer status bar.
func (k KeyMap) ViewerHelp() []key.Binding {
	return []key.Binding{k.Close, k.Prev, k.Next, k.Like, k.Favorite, k.Delete, k.Info}
}

// HelpLine renders enabled bindings as "key action" pairs.
func HelpLine(bindings []key.Binding) string {
	var out string
	for _, b := range bindings {
		if !b.Enabled() {
			continue
		}
		h := b.Help()
		if out != "" {
			out += " • "
		}
		out += h.Key + " " + h.Desc
	}
	return out
}

// Section is a titled group of bindings for the help overlay.
type Section struct {
	Title    string
	Bindings []key.Binding
}

// Sections groups every binding by the screen it applies to.
func (k KeyMap) Sections() []Section {
	return []Section{
		{Title: "Grid", Bindings: []key.Binding{
			k.Open, k.Select, k.SelectAll, k.Clear, k.Delete,
			k.Search, k.Refresh, k.Retry,
		}},
		{Title: "Viewer", Bindings: []key.Binding{
			k.Next, k.Prev, k.Like, k.Favorite, k.Delete, k.Info, k.Close,
		}},
		{Title: "General", Bindings: []key.Binding{k.Help, k.Quit}},
	}
}
