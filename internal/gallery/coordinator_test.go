package gallery

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/mosaic/internal/core/media"
)

func TestReconcile(t *testing.T) {
	tests := []struct {
		name string
		st   ViewerState
		n    int
		want ViewerState
	}{
		{
			name: "empty list closes",
			st:   ViewerState{Open: true, Index: 3, Pending: 7},
			n:    0,
			want: ClosedState(),
		},
		{
			name: "pending resolves when it fits",
			st:   ViewerState{Open: false, Index: -1, Pending: 25},
			n:    40,
			want: ViewerState{Open: true, Index: 25, Pending: -1},
		},
		{
			name: "pending waits",
			st:   ViewerState{Open: false, Index: -1, Pending: 45},
			n:    40,
			want: ViewerState{Open: false, Index: -1, Pending: 45},
		},
		{
			name: "clamps on shrink",
			st:   ViewerState{Open: true, Index: 9, Pending: -1},
			n:    4,
			want: ViewerState{Open: true, Index: 3, Pending: -1},
		},
		{
			name: "in range untouched",
			st:   ViewerState{Open: true, Index: 2, Pending: -1},
			n:    4,
			want: ViewerState{Open: true, Index: 2, Pending: -1},
		},
		{
			name: "closed stays closed",
			st:   ClosedState(),
			n:    4,
			want: ClosedState(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Reconcile(tt.st, tt.n))
		})
	}
}

func loadedGallery(t *testing.T, b *fakeBackend, opts Options) *Gallery {
	t.Helper()
	g := newTestGallery(b, opts)
	_, err := g.Coordinator.Refresh(context.Background())
	require.NoError(t, err)
	return g
}

func TestCoordinator_OpenAtInRange(t *testing.T) {
	g := loadedGallery(t, newFakeBackend(30), Options{})
	c := g.Coordinator

	var states []ViewerState
	c.OnViewerChange(func(st ViewerState) { states = append(states, st) })

	ok, err := c.OpenAt(context.Background(), 4)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 4, c.SelectedIndex())
	cur, _ := c.Current()
	assert.Equal(t, "5", cur.ID)
	require.NotEmpty(t, states)
	assert.Equal(t, ViewerState{Open: true, Index: 4, Pending: -1}, states[len(states)-1])

	c.CloseViewer()
	assert.Equal(t, -1, c.SelectedIndex())
	_, ok = c.Current()
	assert.False(t, ok)
}

func TestCoordinator_OpenAtBeyondLoadsMore(t *testing.T) {
	b := newFakeBackend(60)
	g := loadedGallery(t, b, Options{})
	c := g.Coordinator

	ok, err := c.OpenAt(context.Background(), 25)

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, ViewerState{Open: true, Index: 25, Pending: -1}, c.State())
	assert.Len(t, c.Items(), 40)
}

func TestCoordinator_PendingResolvesOnLaterLoad(t *testing.T) {
	b := newFakeBackend(60)
	g := loadedGallery(t, b, Options{})
	c := g.Coordinator
	ctx := context.Background()

	ok, err := c.OpenAt(ctx, 45)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 45, c.State().Pending)
	assert.False(t, c.State().Open)

	_, err = g.Grid.LoadMore(ctx)
	require.NoError(t, err)

	assert.Equal(t, ViewerState{Open: true, Index: 45, Pending: -1}, c.State())
}

func TestCoordinator_OpenAtBeyondExhaustedList(t *testing.T) {
	g := loadedGallery(t, newFakeBackend(20), Options{})
	c := g.Coordinator

	ok, err := c.OpenAt(context.Background(), 30)

	require.ErrorIs(t, err, ErrOutOfRange)
	assert.False(t, ok)
	assert.Equal(t, ClosedState(), c.State())

	_, err = c.OpenAt(context.Background(), -1)
	require.ErrorIs(t, err, ErrOutOfRange)
}

func TestCoordinator_OpenID(t *testing.T) {
	g := loadedGallery(t, newFakeBackend(10), Options{})
	c := g.Coordinator

	ok, err := c.OpenID(context.Background(), "7")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 6, c.SelectedIndex())

	_, err = c.OpenID(context.Background(), "nope")
	require.ErrorIs(t, err, ErrOutOfRange)
}

func TestCoordinator_RemoveItems(t *testing.T) {
	tests := []struct {
		name      string
		open      int
		remove    []int64
		wantOpen  bool
		wantIndex int
		wantID    string
	}{
		{name: "shown removed keeps position", open: 5, remove: []int64{6}, wantOpen: true, wantIndex: 5, wantID: "7"},
		{name: "shown kept follows item", open: 5, remove: []int64{1, 2}, wantOpen: true, wantIndex: 3, wantID: "6"},
		{name: "batch spanning shown", open: 5, remove: []int64{1, 6, 9}, wantOpen: true, wantIndex: 5, wantID: "8"},
		{name: "last removed clamps", open: 9, remove: []int64{10}, wantOpen: true, wantIndex: 8, wantID: "9"},
		{name: "all removed closes", open: 2, remove: []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, wantOpen: false, wantIndex: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := loadedGallery(t, newFakeBackend(10), Options{})
			c := g.Coordinator
			_, err := c.OpenAt(context.Background(), tt.open)
			require.NoError(t, err)

			c.RemoveItems(tt.remove)

			st := c.State()
			assert.Equal(t, tt.wantOpen, st.Open)
			assert.Equal(t, tt.wantIndex, st.Index)
			if tt.wantOpen {
				cur, ok := c.Current()
				require.True(t, ok)
				assert.Equal(t, tt.wantID, cur.ID)
			}
		})
	}
}

func TestCoordinator_ClampsWhenListShrinksElsewhere(t *testing.T) {
	g := loadedGallery(t, newFakeBackend(10), Options{})
	c := g.Coordinator
	_, err := c.OpenAt(context.Background(), 8)
	require.NoError(t, err)

	g.Grid.RemoveItems([]int64{1, 2, 3, 4, 5})

	assert.Equal(t, ViewerState{Open: true, Index: 4, Pending: -1}, c.State())
}

func TestCoordinator_ParamsChangeClosesViewer(t *testing.T) {
	b := newFakeBackend(10)
	g := loadedGallery(t, b, Options{})
	c := g.Coordinator
	_, err := c.OpenAt(context.Background(), 3)
	require.NoError(t, err)

	g.Source.SetParams(media.Params{Query: "dogs"})

	assert.Equal(t, ClosedState(), c.State())
	assert.Empty(t, c.Items())
}

func TestCoordinator_ShowBounds(t *testing.T) {
	g := loadedGallery(t, newFakeBackend(5), Options{})
	c := g.Coordinator

	require.ErrorIs(t, c.Show(1), ErrNoCurrent)

	_, err := c.OpenAt(context.Background(), 0)
	require.NoError(t, err)
	require.NoError(t, c.Show(4))
	require.ErrorIs(t, c.Show(5), ErrOutOfRange)
	assert.Equal(t, 4, c.SelectedIndex())
}
