package gallery

import (
	"context"
	"slices"
	"testing"

	"pgregory.net/rapid"

	"github.com/colonyops/mosaic/internal/core/media"
)

// scriptedPages returns a pageFn serving pages from a drawn script, one per
// request, with ids drawn from a small range so pages overlap.
func scriptedPages(t *rapid.T) (func(media.ListRequest) media.Page, int) {
	count := rapid.IntRange(1, 8).Draw(t, "pages")
	pages := make([]media.Page, count)
	for i := range pages {
		raw := rapid.SliceOfN(rapid.IntRange(1, 40), 0, 20).Draw(t, "ids")
		items := make([]media.Item, 0, len(raw))
		for _, id := range raw {
			items = append(items, makeItems(id, 1)[0])
		}
		pages[i] = media.Page{Items: items, HasMore: rapid.Bool().Draw(t, "hasMore")}
	}

	next := 0
	return func(media.ListRequest) media.Page {
		p := pages[min(next, len(pages)-1)]
		next++
		return p
	}, count
}

func TestPropertyAppendNeverDuplicates(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		b := newFakeBackend(0)
		pageFn, count := scriptedPages(t)
		b.pageFn = pageFn
		s := newTestSource(b, nil)
		ctx := context.Background()

		merged := 0
		for i := range count {
			mode := Append
			if i == 0 {
				mode = Replace
			}
			n, err := s.Fetch(ctx, s.Len(), mode)
			if err != nil {
				t.Fatalf("fetch %d: %v", i, err)
			}
			merged += n

			items := s.Items()
			seen := make(map[string]bool, len(items))
			for _, it := range items {
				if seen[it.ID] {
					t.Fatalf("duplicate id %s after fetch %d", it.ID, i)
				}
				seen[it.ID] = true
			}
		}

		if got := s.Cursor().Offset; got != merged {
			t.Fatalf("offset %d, merged %d", got, merged)
		}
		if s.Len() != merged {
			t.Fatalf("len %d, merged %d", s.Len(), merged)
		}
	})
}

func TestPropertyEmptyAppendEndsList(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 30).Draw(t, "n")
		first := makeItems(1, n)
		// Repeats are a random subset of the items already held.
		repeat := rapid.SliceOfN(rapid.IntRange(0, n-1), 0, n).Draw(t, "repeat")

		b := newFakeBackend(0)
		b.pageFn = func(req media.ListRequest) media.Page {
			if req.Offset == 0 {
				return media.Page{Items: first, HasMore: true}
			}
			page := make([]media.Item, 0, len(repeat))
			for _, i := range repeat {
				page = append(page, first[i])
			}
			return media.Page{Items: page, HasMore: true}
		}
		s := newTestSource(b, nil)
		ctx := context.Background()

		if _, err := s.Fetch(ctx, 0, Replace); err != nil {
			t.Fatalf("replace: %v", err)
		}
		got, err := s.Fetch(ctx, s.Len(), Append)
		if err != nil {
			t.Fatalf("append: %v", err)
		}
		if got != 0 || s.Cursor().HasMore {
			t.Fatalf("append merged %d, hasMore %v", got, s.Cursor().HasMore)
		}
	})
}

func TestPropertyRemoveKeepsSelectionSubset(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 30).Draw(t, "n")
		b := newFakeBackend(n)
		g := newTestGallery(b, Options{PageSize: 50}).Grid
		if _, err := g.Refresh(context.Background()); err != nil {
			t.Fatalf("refresh: %v", err)
		}

		for _, i := range rapid.SliceOfN(rapid.IntRange(0, max(n-1, 0)), 0, n).Draw(t, "select") {
			if i < n {
				g.Selection().ToggleOne(media.IDFor(int64(i+1)), i)
			}
		}
		before := g.Selection().IDs()

		removeRaw := rapid.SliceOfN(rapid.IntRange(1, n+5), 0, n+5).Draw(t, "remove")
		remove := make([]int64, 0, len(removeRaw))
		removed := make(map[string]bool)
		for _, id := range removeRaw {
			remove = append(remove, int64(id))
			removed[media.IDFor(int64(id))] = true
		}

		g.RemoveItems(remove)

		var want []string
		for _, id := range before {
			if !removed[id] {
				want = append(want, id)
			}
		}
		got := g.Selection().IDs()
		slices.Sort(want)
		slices.Sort(got)
		if !slices.Equal(want, got) {
			t.Fatalf("selection %v, want %v", got, want)
		}

		present := make(map[string]bool)
		for _, it := range g.Items() {
			present[it.ID] = true
		}
		for _, id := range got {
			if !present[id] {
				t.Fatalf("selected id %s not in list", id)
			}
		}
	})
}

func TestPropertySelectRangeOrderIndependent(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 40).Draw(t, "n")
		from := rapid.IntRange(0, n-1).Draw(t, "from")
		to := rapid.IntRange(0, n-1).Draw(t, "to")

		a, _ := newTestSelection(n)
		a.SelectRange(from, to, false)
		b, _ := newTestSelection(n)
		b.SelectRange(to, from, false)

		got := a.Indices()
		if !slices.Equal(got, b.Indices()) {
			t.Fatalf("range (%d,%d) differs from (%d,%d)", from, to, to, from)
		}

		lo, hi := min(from, to), max(from, to)
		if len(got) != hi-lo+1 || got[0] != lo || got[len(got)-1] != hi {
			t.Fatalf("range (%d,%d) selected %v", from, to, got)
		}
	})
}

func TestPropertyViewerClampsOnShrink(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		k := rapid.IntRange(0, 50).Draw(t, "k")
		m := rapid.IntRange(0, k).Draw(t, "m")

		got := Reconcile(ViewerState{Open: true, Index: k, Pending: -1}, m)

		switch {
		case m == 0 && got != ClosedState():
			t.Fatalf("m=0 should close, got %+v", got)
		case m > 0 && (!got.Open || got.Index != m-1):
			t.Fatalf("k=%d m=%d got %+v", k, m, got)
		}
	})
}

func TestPropertyCoordinatorKeepsIndexInRange(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 30).Draw(t, "n")
		g := newTestGallery(newFakeBackend(n), Options{PageSize: 50})
		c := g.Coordinator
		ctx := context.Background()
		if _, err := c.Refresh(ctx); err != nil {
			t.Fatalf("refresh: %v", err)
		}
		open := rapid.IntRange(0, n-1).Draw(t, "open")
		if _, err := c.OpenAt(ctx, open); err != nil {
			t.Fatalf("open: %v", err)
		}

		steps := rapid.IntRange(1, 5).Draw(t, "steps")
		for range steps {
			raw := rapid.SliceOfN(rapid.IntRange(1, n), 1, 5).Draw(t, "remove")
			remove := make([]int64, 0, len(raw))
			for _, id := range raw {
				remove = append(remove, int64(id))
			}
			c.RemoveItems(remove)

			st := c.State()
			size := len(c.Items())
			if size == 0 {
				if st.Open {
					t.Fatalf("open on empty list: %+v", st)
				}
				continue
			}
			if !st.Open || st.Index < 0 || st.Index >= size {
				t.Fatalf("index %d out of range for %d items", st.Index, size)
			}
		}
	})
}
