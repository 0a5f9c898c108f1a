package masonry

import (
	"slices"
	"sort"
)

// Visible reports whether item falls in the band rendered for the viewport.
func Visible(item LayoutItem, scrollOffset, viewportHeight, bufferPx float32) bool {
	return item.Y+item.TotalHeight >= scrollOffset-bufferPx &&
		item.Y <= scrollOffset+viewportHeight+bufferPx
}

// Cull returns the items that must be rendered, in layout order.
func Cull(items []LayoutItem, scrollOffset, viewportHeight, bufferPx float32) []LayoutItem {
	var out []LayoutItem
	for _, it := range items {
		if Visible(it, scrollOffset, viewportHeight, bufferPx) {
			out = append(out, it)
		}
	}
	return out
}

// IntervalIndex answers the same question as Cull in logarithmic time for
// large layouts. It holds a reference to the layout's items and must be
// rebuilt whenever a new layout is published.
type IntervalIndex struct {
	items   []LayoutItem
	byY     []int // positions into items ordered by Y
	tallest float32
}

// NewIntervalIndex indexes the items of one layout.
func NewIntervalIndex(items []LayoutItem) *IntervalIndex {
	idx := &IntervalIndex{
		items: items,
		byY:   make([]int, len(items)),
	}
	for i, it := range items {
		idx.byY[i] = i
		idx.tallest = max32(idx.tallest, it.TotalHeight)
	}
	sort.SliceStable(idx.byY, func(a, b int) bool {
		return items[idx.byY[a]].Y < items[idx.byY[b]].Y
	})
	return idx
}

// Len returns the number of indexed items.
func (x *IntervalIndex) Len() int {
	return len(x.items)
}

// Cull returns the same items as the package level Cull, in layout order.
func (x *IntervalIndex) Cull(scrollOffset, viewportHeight, bufferPx float32) []LayoutItem {
	top := scrollOffset - bufferPx
	bottom := scrollOffset + viewportHeight + bufferPx

	// No item can reach top from further up than the tallest one. The extra
	// pixel absorbs float rounding; the exact predicate is applied below.
	floor := top - x.tallest - 1
	lo := sort.Search(len(x.byY), func(i int) bool {
		return x.items[x.byY[i]].Y >= floor
	})
	hi := sort.Search(len(x.byY), func(i int) bool {
		return x.items[x.byY[i]].Y > bottom
	})

	var hits []int
	for _, pos := range x.byY[lo:hi] {
		if Visible(x.items[pos], scrollOffset, viewportHeight, bufferPx) {
			hits = append(hits, pos)
		}
	}
	if len(hits) == 0 {
		return nil
	}
	slices.Sort(hits)

	out := make([]LayoutItem, len(hits))
	for i, pos := range hits {
		out[i] = x.items[pos]
	}
	return out
}
