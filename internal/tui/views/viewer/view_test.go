package viewer

import (
	"context"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/mosaic/internal/core/config"
	"github.com/colonyops/mosaic/internal/core/media"
	"github.com/colonyops/mosaic/internal/devserver"
	"github.com/colonyops/mosaic/internal/gallery"
	"github.com/colonyops/mosaic/internal/gallery/gallerytest"
	"github.com/colonyops/mosaic/internal/tui/keys"
	"github.com/colonyops/mosaic/pkg/tuitest"
)

func openViewer(t *testing.T, count, index int, mobile bool) (View, *gallery.Gallery, *gallerytest.Backend) {
	t.Helper()
	g, b := gallerytest.New(t, devserver.LibraryOptions{Count: count}, gallery.Options{})
	ctx := context.Background()

	_, err := g.Grid.Refresh(ctx)
	require.NoError(t, err)
	ok, err := g.Coordinator.OpenAt(ctx, index)
	require.NoError(t, err)
	require.True(t, ok)

	v := New(g, Options{Keys: keys.New(config.DefaultKeys()), Mobile: mobile})
	v.SetSize(120, 30)
	return v, g, b
}

// step feeds msg, runs the resulting command and feeds its messages back.
// Messages the view emits for its parent are returned.
func step(v View, msg tea.Msg) (View, []tea.Msg) {
	v, cmd := v.Update(msg)

	var out []tea.Msg
	for _, m := range tuitest.Collect(cmd) {
		if _, ok := m.(actionMsg); !ok {
			out = append(out, m)
			continue
		}
		var follow tea.Cmd
		v, follow = v.Update(m)
		out = append(out, tuitest.Collect(follow)...)
	}
	return v, out
}

func current(t *testing.T, g *gallery.Gallery) media.Item {
	t.Helper()
	it, ok := g.Viewer.Current()
	require.True(t, ok)
	return it
}

func TestView_NextPrev(t *testing.T) {
	v, g, _ := openViewer(t, 5, 0, false)

	v, _ = step(v, tuitest.KeyRight())
	assert.Equal(t, 1, g.Coordinator.State().Index)
	assert.Contains(t, tuitest.StripANSI(v.View()), "2 / 5")

	v, _ = step(v, tuitest.KeyLeft())
	assert.Equal(t, 0, g.Coordinator.State().Index)

	v, _ = step(v, tuitest.KeyLeft())
	assert.Equal(t, 0, g.Coordinator.State().Index)
	assert.Contains(t, tuitest.StripANSI(v.View()), "no more slides")

	// The hint clears on the next key.
	v, _ = step(v, tuitest.KeyRight())
	assert.NotContains(t, tuitest.StripANSI(v.View()), "no more slides")
}

func TestView_NextAtEnd(t *testing.T) {
	v, g, _ := openViewer(t, 3, 2, false)

	v, _ = step(v, tuitest.KeyRight())
	assert.Equal(t, 2, g.Coordinator.State().Index)
	assert.Contains(t, tuitest.StripANSI(v.View()), "no more slides")
}

func TestView_LoadingHint(t *testing.T) {
	v, _, _ := openViewer(t, 3, 1, false)

	v, _ = v.Update(actionMsg{action: "next", err: gallery.ErrLoading})
	out := tuitest.StripANSI(v.View())
	assert.Contains(t, out, "loading more…")
	assert.NotContains(t, out, "no more slides")
}

func TestView_WheelNavigates(t *testing.T) {
	v, g, _ := openViewer(t, 5, 1, false)

	v, _ = step(v, tuitest.MouseWheel(10, 10, true))
	assert.Equal(t, 2, g.Coordinator.State().Index)

	_, _ = step(v, tuitest.MouseWheel(10, 10, false))
	assert.Equal(t, 1, g.Coordinator.State().Index)
}

func TestView_ToggleFlags(t *testing.T) {
	v, g, b := openViewer(t, 5, 0, false)
	it := current(t, g)

	v, _ = step(v, tuitest.KeyDown())
	stored, ok := b.Library.Get(it.MediaID)
	require.True(t, ok)
	assert.True(t, stored.Liked)
	assert.True(t, g.Viewer.Liked())
	assert.Contains(t, tuitest.StripANSI(v.View()), "liked")

	v, _ = step(v, tuitest.KeyPress('f'))
	stored, _ = b.Library.Get(it.MediaID)
	assert.True(t, stored.Favorited)
	assert.Contains(t, tuitest.StripANSI(v.View()), "favorited")

	_, _ = step(v, tuitest.KeyDown())
	stored, _ = b.Library.Get(it.MediaID)
	assert.False(t, stored.Liked)
	assert.False(t, g.Viewer.Liked())
}

func TestView_CloseReportsIndex(t *testing.T) {
	v, g, _ := openViewer(t, 5, 3, false)

	_, msgs := step(v, tuitest.KeyEsc())
	require.Len(t, msgs, 1)
	assert.Equal(t, ClosedMsg{Index: 3}, msgs[0])
	assert.False(t, g.Coordinator.State().Open)
}

func TestView_DeleteLastItemCloses(t *testing.T) {
	v, g, b := openViewer(t, 1, 0, false)

	_, msgs := step(v, tuitest.KeyPress('x'))
	assert.Zero(t, b.Library.Len())
	assert.False(t, g.Coordinator.State().Open)
	require.Len(t, msgs, 1)
	assert.Equal(t, ClosedMsg{Index: -1}, msgs[0])
}

func TestView_DeleteMovesToSuccessor(t *testing.T) {
	v, g, _ := openViewer(t, 5, 1, false)
	before := current(t, g)

	v, msgs := step(v, tuitest.KeyPress('x'))
	assert.Empty(t, msgs)
	after := current(t, g)
	assert.NotEqual(t, before.ID, after.ID)
	assert.Equal(t, 1, g.Coordinator.State().Index)
	assert.Contains(t, tuitest.StripANSI(v.View()), "2 / 4")
}

func TestView_MobileKeepsCloseOnly(t *testing.T) {
	v, g, b := openViewer(t, 5, 0, true)
	it := current(t, g)

	v, msgs := step(v, tuitest.KeyRight())
	assert.Empty(t, msgs)
	assert.Equal(t, 0, g.Coordinator.State().Index)

	v, _ = step(v, tuitest.KeyDown())
	stored, _ := b.Library.Get(it.MediaID)
	assert.False(t, stored.Liked)

	out := tuitest.StripANSI(v.View())
	assert.Contains(t, out, "esc close")
	assert.NotContains(t, out, "next")

	_, msgs = step(v, tuitest.KeyEsc())
	assert.Equal(t, []tea.Msg{ClosedMsg{Index: 0}}, msgs)
}

func TestView_InfoPanel(t *testing.T) {
	v, g, _ := openViewer(t, 5, 0, false)
	it := current(t, g)

	assert.NotContains(t, tuitest.StripANSI(v.View()), "created")

	v, _ = step(v, tuitest.KeyPress('i'))
	out := tuitest.StripANSI(v.View())
	assert.Contains(t, out, "created")
	assert.Contains(t, out, it.Filename)

	v, _ = step(v, tuitest.KeyPress('i'))
	assert.NotContains(t, tuitest.StripANSI(v.View()), "created")
}

func TestInfoMarkdown(t *testing.T) {
	md := infoMarkdown(media.Item{
		MediaID:     7,
		Type:        media.TypeVideo,
		Filename:    "IMG_0007.mp4",
		ResourceURL: "http://localhost/files/7.mp4",
		Liked:       true,
	})

	assert.Contains(t, md, "## IMG_0007.mp4")
	assert.Contains(t, md, "| id | 7 |")
	assert.Contains(t, md, "| liked | yes |")
	assert.Contains(t, md, "| favorite | no |")
	assert.NotContains(t, md, "created")
}
