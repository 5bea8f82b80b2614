package devserver

import (
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/mosaic/internal/core/media"
)

func testLibrary(count int) *Library {
	return NewLibrary(LibraryOptions{
		Count:       count,
		VideoEvery:  5,
		LockedEvery: 10,
		Now:         time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	})
}

func pageIDs(p media.Page) []int64 {
	out := make([]int64, 0, len(p.Items))
	for _, it := range p.Items {
		out = append(out, it.MediaID)
	}
	return out
}

func TestLibrary_Generated(t *testing.T) {
	lib := testLibrary(20)

	it, ok := lib.Get(5)
	require.True(t, ok)
	assert.Equal(t, media.TypeVideo, it.Type)
	assert.Equal(t, "IMG_0005.mp4", it.Filename)

	it, _ = lib.Get(7)
	assert.Empty(t, it.ThumbnailURL)
	assert.Equal(t, it.ResourceURL, it.Thumbnail())
}

func TestLibrary_SeededOrderIsStablePerSeed(t *testing.T) {
	lib := testLibrary(50)
	req := media.ListRequest{Params: media.Params{Seed: "abc"}, Limit: 50}

	a, err := lib.List(req)
	require.NoError(t, err)
	b, err := lib.List(req)
	require.NoError(t, err)
	assert.Equal(t, pageIDs(a), pageIDs(b))

	req.Seed = "xyz"
	c, err := lib.List(req)
	require.NoError(t, err)
	assert.NotEqual(t, pageIDs(a), pageIDs(c))
	assert.ElementsMatch(t, pageIDs(a), pageIDs(c))
}

func TestLibrary_PagesCoverList(t *testing.T) {
	lib := testLibrary(45)
	params := media.Params{Seed: "s"}

	var all []int64
	offset := 0
	for {
		p, err := lib.List(media.ListRequest{Params: params, Offset: offset, Limit: 20})
		require.NoError(t, err)
		all = append(all, pageIDs(p)...)
		offset += len(p.Items)
		if !p.HasMore {
			break
		}
	}

	assert.Len(t, all, 45)
	full, _ := lib.List(media.ListRequest{Params: params, Limit: 100})
	assert.Equal(t, pageIDs(full), all)
}

func TestLibrary_SeededOrderSurvivesDeletes(t *testing.T) {
	lib := testLibrary(45)
	params := media.Params{Seed: "s"}

	before, err := lib.List(media.ListRequest{Params: params, Limit: 100})
	require.NoError(t, err)
	first, err := lib.List(media.ListRequest{Params: params, Limit: 20})
	require.NoError(t, err)

	// Delete three unlocked items the client already holds.
	var gone []int64
	for _, id := range pageIDs(first) {
		if id%10 != 0 && len(gone) < 3 {
			gone = append(gone, id)
		}
	}
	require.Len(t, lib.Delete(gone).Deleted, 3)

	held := slices.DeleteFunc(pageIDs(first), func(id int64) bool { return slices.Contains(gone, id) })
	all := slices.Clone(held)
	offset := len(held)
	for {
		p, err := lib.List(media.ListRequest{Params: params, Offset: offset, Limit: 20})
		require.NoError(t, err)
		all = append(all, pageIDs(p)...)
		offset += len(p.Items)
		if !p.HasMore {
			break
		}
	}

	want := slices.DeleteFunc(pageIDs(before), func(id int64) bool { return slices.Contains(gone, id) })
	assert.Equal(t, want, all, "no item skipped or repeated")
}

func TestLibrary_Filters(t *testing.T) {
	lib := testLibrary(30)

	tagged, err := lib.List(media.ListRequest{Params: media.Params{Tag: "pets"}, Limit: 100})
	require.NoError(t, err)
	require.NotEmpty(t, tagged.Items)
	for _, id := range pageIDs(tagged) {
		e := lib.byID[id]
		assert.Contains(t, e.tags, "pets")
	}

	found, err := lib.List(media.ListRequest{Params: media.Params{Query: "0012"}, Limit: 100})
	require.NoError(t, err)
	assert.Equal(t, []int64{12}, pageIDs(found))

	_, err = lib.List(media.ListRequest{Limit: 10})
	require.ErrorIs(t, err, media.ErrMissingSeed)
}

func TestLibrary_Delete(t *testing.T) {
	lib := testLibrary(20)

	res := lib.Delete([]int64{1, 10, 99})

	assert.Equal(t, []int64{1}, res.Deleted)
	assert.Equal(t, []media.DeleteFailure{
		{ID: 10, Reason: media.ReasonLocked},
		{ID: 99, Reason: media.ReasonNotFound},
	}, res.Failed)
	assert.Equal(t, 19, lib.Len())
	_, ok := lib.Get(1)
	assert.False(t, ok)
}

func TestLibrary_Flags(t *testing.T) {
	lib := testLibrary(3)

	require.NoError(t, lib.SetLike(2, true))
	require.NoError(t, lib.SetFavorite(2, true))
	it, _ := lib.Get(2)
	assert.True(t, it.Liked)
	assert.True(t, it.Favorited)

	require.ErrorIs(t, lib.SetLike(42, true), ErrNotFound)
}
