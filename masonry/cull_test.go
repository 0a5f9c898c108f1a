package masonry

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func bruteForce(items []LayoutItem, scroll, viewport, buffer float32) []LayoutItem {
	var out []LayoutItem
	for _, it := range items {
		if it.Y+it.TotalHeight >= scroll-buffer && it.Y <= scroll+viewport+buffer {
			out = append(out, it)
		}
	}
	return out
}

func TestCull_MatchesBruteForceAtEveryOffset(t *testing.T) {
	lay := ComputeLayout(randomItems(3, 3000), 6, 160, 8, 24, DefaultAspect)
	index := NewIntervalIndex(lay.Items)

	const viewport, buffer = 700, 400
	for scroll := float32(0); scroll <= lay.TotalHeight+viewport; scroll += 37 {
		want := bruteForce(lay.Items, scroll, viewport, buffer)

		if diff := cmp.Diff(want, Cull(lay.Items, scroll, viewport, buffer)); diff != "" {
			t.Fatalf("linear cull at %.0f differs (-want +got):\n%s", scroll, diff)
		}
		if diff := cmp.Diff(want, index.Cull(scroll, viewport, buffer)); diff != "" {
			t.Fatalf("indexed cull at %.0f differs (-want +got):\n%s", scroll, diff)
		}
	}
}

func TestCull_BufferPreRendersOffscreenTiles(t *testing.T) {
	items := []LayoutItem{
		{Index: 0, ID: 1, Y: 0, TotalHeight: 100},
		{Index: 1, ID: 2, Y: 1150, TotalHeight: 100},
		{Index: 2, ID: 3, Y: 2000, TotalHeight: 100},
	}

	got := Cull(items, 500, 600, 0)
	if len(got) != 0 {
		t.Fatalf("expected nothing inside the bare viewport, got %v", got)
	}

	got = Cull(items, 500, 600, 400)
	if len(got) != 2 || got[0].ID != 1 || got[1].ID != 2 {
		t.Fatalf("expected tiles 1 and 2 inside the buffered band, got %v", got)
	}
}

func TestIntervalIndex_Empty(t *testing.T) {
	index := NewIntervalIndex(nil)
	if got := index.Cull(0, 500, 100); got != nil {
		t.Fatalf("expected nil from an empty index, got %v", got)
	}
}

func TestGrid_ScrollOnlyCulls(t *testing.T) {
	cfg := DefaultConfig()
	g := NewGrid(cfg)
	g.SetItems(randomItems(11, 400))
	g.Resize(Size{Width: 964, Height: 600})

	recomputes := g.Recomputes()
	layout := g.Layout()

	for scroll := float32(0); scroll < layout.TotalHeight; scroll += 123 {
		g.SetScroll(scroll)
		want := bruteForce(layout.Items, scroll, 600, cfg.BufferPx)
		if diff := cmp.Diff(want, g.Visible()); diff != "" {
			t.Fatalf("visible set at %.0f differs (-want +got):\n%s", scroll, diff)
		}
	}

	if g.Recomputes() != recomputes {
		t.Fatalf("scrolling recomputed the layout: %d -> %d", recomputes, g.Recomputes())
	}
}

func TestGrid_LargeListUsesIndex(t *testing.T) {
	cfg := DefaultConfig()
	cfg.IndexThreshold = 100
	g := NewGrid(cfg)
	g.SetItems(randomItems(5, 1000))
	g.Resize(Size{Width: 1200, Height: 800})

	if g.index == nil || g.index.Len() != 1000 {
		t.Fatal("expected an interval index over all items above the threshold")
	}
	g.SetScroll(5000)
	want := bruteForce(g.Layout().Items, 5000, 800, cfg.BufferPx)
	if diff := cmp.Diff(want, g.Visible()); diff != "" {
		t.Fatalf("indexed visible set differs (-want +got):\n%s", diff)
	}
}

func TestGrid_NotReadyWithoutWidth(t *testing.T) {
	g := NewGrid(DefaultConfig())
	g.SetItems(unknownItems(10))
	g.Resize(Size{Width: 0, Height: 500})

	if g.Recomputes() != 0 {
		t.Fatalf("expected no layout before the width is known, got %d recomputes", g.Recomputes())
	}
	if len(g.Visible()) != 0 {
		t.Fatalf("expected nothing visible, got %d", len(g.Visible()))
	}

	g.Resize(Size{Width: 400, Height: 500})
	if len(g.Layout().Items) != 10 {
		t.Fatalf("expected 10 laid out items after resize, got %d", len(g.Layout().Items))
	}
}

func TestGrid_AppendLeavesCallerSliceAlone(t *testing.T) {
	backing := make([]AssetRecord, 2, 8)
	backing[0], backing[1] = AssetRecord{ID: 1}, AssetRecord{ID: 2}
	spare := backing[:3]
	spare[2] = AssetRecord{ID: 99}

	g := NewGrid(DefaultConfig())
	g.SetItems(backing)
	g.AppendItems([]AssetRecord{{ID: 3}})

	if spare[2].ID != 99 {
		t.Fatalf("appending overwrote the caller's array: got id %d", spare[2].ID)
	}
	if n := len(g.Items()); n != 3 || g.Items()[2].ID != 3 {
		t.Fatalf("expected ids 1..3 in the grid, got %v", g.Items())
	}
}
