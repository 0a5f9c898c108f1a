package masonry

import (
	"slices"
)

// AssetRecord is a row of the external asset index. The grid only reads it.
type AssetRecord struct {
	ID           int64
	FolderID     int64
	Name         string
	Path         string
	Extension    string
	ThumbnailRef string
	FileSize     int64
	ModifiedAt   int64

	// Natural pixel size, 0 when unknown.
	Width  int
	Height int
}

// LayoutItem is the placement of one record in content coordinates.
type LayoutItem struct {
	Index       int
	ID          int64
	Column      int
	X           float32
	Y           float32
	Width       float32
	ThumbHeight float32
	TotalHeight float32
}

// Bottom returns the content y coordinate of the item's lower edge.
func (l LayoutItem) Bottom() float32 {
	return l.Y + l.TotalHeight
}

// Layout is one published result of the layout engine. It is replaced as a
// whole on every recompute and never modified afterwards.
type Layout struct {
	Items       []LayoutItem
	TotalHeight float32
	Columns     int
	ColumnWidth float32
}

// Point is a position in either viewport or content coordinates.
type Point struct {
	X, Y float32
}

// Rect is an axis aligned rectangle given by its min and max corners.
type Rect struct {
	Min, Max Point
}

// RectFromPoints returns the normalised rectangle spanned by a and b.
func RectFromPoints(a, b Point) Rect {
	return Rect{
		Min: Point{X: min32(a.X, b.X), Y: min32(a.Y, b.Y)},
		Max: Point{X: max32(a.X, b.X), Y: max32(a.Y, b.Y)},
	}
}

// Intersects reports whether the item's bounding box overlaps r.
func (r Rect) Intersects(item LayoutItem) bool {
	return item.X < r.Max.X && item.X+item.Width > r.Min.X &&
		item.Y < r.Max.Y && item.Y+item.TotalHeight > r.Min.Y
}

// Modifiers is the subset of keyboard modifiers the grid cares about.
type Modifiers int

const (
	// ModShift extends a selection as a range.
	ModShift Modifiers = 1 << iota
	// ModToggle is Control, or Command on macOS.
	ModToggle
)

// Additive reports whether any modifier that merges selections is held.
func (m Modifiers) Additive() bool {
	return m&(ModShift|ModToggle) != 0
}

// IDSet is a set of asset ids.
type IDSet map[int64]struct{}

// NewIDSet returns a set holding ids.
func NewIDSet(ids ...int64) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is in the set.
func (s IDSet) Has(id int64) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of ids.
func (s IDSet) Len() int {
	return len(s)
}

// Clone returns an independent copy of s. The clone of a nil set is empty but non-nil.
func (s IDSet) Clone() IDSet {
	c := make(IDSet, len(s))
	for id := range s {
		c[id] = struct{}{}
	}
	return c
}

// Sorted returns the ids in ascending order.
func (s IDSet) Sorted() []int64 {
	ids := make([]int64, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Equal reports whether both sets hold the same ids.
func (s IDSet) Equal(o IDSet) bool {
	if len(s) != len(o) {
		return false
	}
	for id := range s {
		if !o.Has(id) {
			return false
		}
	}
	return true
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
