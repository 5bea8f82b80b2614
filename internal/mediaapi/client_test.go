package mediaapi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/mosaic/internal/core/media"
	"github.com/colonyops/mosaic/internal/devserver"
	"github.com/colonyops/mosaic/internal/gallery"
	"github.com/colonyops/mosaic/internal/mediaapi"
)

var _ gallery.Backend = (*mediaapi.Client)(nil)

func newTestClient(t *testing.T, lib *devserver.Library) *mediaapi.Client {
	t.Helper()
	nop := zerolog.Nop()
	srv := httptest.NewServer(devserver.NewRouter(lib, devserver.RouterOptions{Logger: &nop}))
	t.Cleanup(srv.Close)

	c, err := mediaapi.New(srv.URL, mediaapi.WithLogger(nop), mediaapi.WithTimeout(5*time.Second))
	require.NoError(t, err)
	return c
}

func testLibrary(n int) *devserver.Library {
	return devserver.NewLibrary(devserver.LibraryOptions{
		Count:       n,
		VideoEvery:  4,
		LockedEvery: 9,
		Now:         time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	})
}

func TestListQuery(t *testing.T) {
	tests := []struct {
		name   string
		params media.Params
		want   url.Values
	}{
		{
			name:   "seeded",
			params: media.Params{Seed: "abc"},
			want:   url.Values{"offset": {"20"}, "limit": {"20"}, "seed": {"abc"}, "order": {"seeded"}},
		},
		{
			name:   "tag",
			params: media.Params{Seed: "abc", Tag: "pets"},
			want:   url.Values{"offset": {"20"}, "limit": {"20"}, "tag": {"pets"}},
		},
		{
			name:   "query with tag",
			params: media.Params{Query: "cat", Tag: "pets"},
			want:   url.Values{"offset": {"20"}, "limit": {"20"}, "query_text": {"cat"}, "tag": {"pets"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mediaapi.ListQuery(media.ListRequest{Params: tt.params, Offset: 20, Limit: 20})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_ListResolvesURLs(t *testing.T) {
	c := newTestClient(t, testLibrary(25))

	page, err := c.List(context.Background(), media.ListRequest{
		Params: media.Params{Seed: "s"},
		Offset: 0,
		Limit:  20,
	})
	require.NoError(t, err)

	assert.Len(t, page.Items, 20)
	assert.True(t, page.HasMore)
	for _, it := range page.Items {
		assert.Equal(t, media.IDFor(it.MediaID), it.ID)
		u, err := url.Parse(it.ResourceURL)
		require.NoError(t, err)
		assert.True(t, u.IsAbs(), "resource url %q resolved", it.ResourceURL)
		assert.True(t, mustAbs(t, it.Thumbnail()))
	}

	next, err := c.List(context.Background(), media.ListRequest{
		Params: media.Params{Seed: "s"},
		Offset: 20,
		Limit:  20,
	})
	require.NoError(t, err)
	assert.Len(t, next.Items, 5)
	assert.False(t, next.HasMore)
}

func mustAbs(t *testing.T, raw string) bool {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u.IsAbs()
}

func TestClient_BatchDeletePartial(t *testing.T) {
	lib := testLibrary(20)
	c := newTestClient(t, lib)

	res, err := c.BatchDelete(context.Background(), []int64{1, 9, 300})
	require.NoError(t, err)

	assert.Equal(t, []int64{1}, res.Deleted)
	require.Len(t, res.Failed, 2)
	assert.Equal(t, media.ReasonLocked, res.Failed[0].Reason)
	assert.Equal(t, media.ReasonNotFound, res.Failed[1].Reason)
	assert.False(t, res.AllDeleted())
	assert.Equal(t, 19, lib.Len())
}

func TestClient_Flags(t *testing.T) {
	lib := testLibrary(5)
	c := newTestClient(t, lib)
	ctx := context.Background()

	require.NoError(t, c.SetLike(ctx, 2, true))
	require.NoError(t, c.SetFavorite(ctx, 2, true))
	it, _ := lib.Get(2)
	assert.True(t, it.Liked)
	assert.True(t, it.Favorited)

	err := c.SetLike(ctx, 404, true)
	var se *mediaapi.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.Code)
	assert.Contains(t, se.Body, "not found")
}

func TestClient_Cancelled(t *testing.T) {
	nop := zerolog.Nop()
	srv := httptest.NewServer(devserver.NewRouter(testLibrary(5), devserver.RouterOptions{
		Latency: time.Second,
		Logger:  &nop,
	}))
	t.Cleanup(srv.Close)
	c, err := mediaapi.New(srv.URL, mediaapi.WithLogger(nop))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = c.List(ctx, media.ListRequest{Params: media.Params{Seed: "s"}, Limit: 5})
	require.ErrorIs(t, err, context.Canceled)
}

func TestClient_DrivesGallery(t *testing.T) {
	c := newTestClient(t, testLibrary(45))
	nop := zerolog.Nop()
	g := gallery.New(c, media.Params{Seed: "s"}, gallery.Options{PageSize: 20, Logger: &nop})
	defer g.Close()
	ctx := context.Background()

	n, err := g.Grid.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, 20, n)

	ok, err := g.Coordinator.OpenAt(ctx, 30)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, g.Grid.Items(), 40)
}

func TestNewResolver(t *testing.T) {
	tests := []struct {
		name    string
		base    string
		wantErr bool
	}{
		{name: "http", base: "http://localhost:8484"},
		{name: "https with path", base: "https://media.example.com/api/"},
		{name: "no scheme", base: "localhost:8484", wantErr: true},
		{name: "ftp", base: "ftp://host", wantErr: true},
		{name: "no host", base: "http://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := mediaapi.NewResolver(tt.base)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestResolver_Resolve(t *testing.T) {
	r, err := mediaapi.NewResolver("https://media.example.com/api/")
	require.NoError(t, err)

	assert.Equal(t, "https://media.example.com/files/1.jpg", r.Resolve("/files/1.jpg"))
	assert.Equal(t, "https://media.example.com/api/thumbs/1.jpg", r.Resolve("thumbs/1.jpg"))
	assert.Equal(t, "https://cdn.example.com/x.jpg", r.Resolve("https://cdn.example.com/x.jpg"))
	assert.Empty(t, r.Resolve(""))
}
