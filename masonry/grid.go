package masonry

import "slices"

// Grid ties the layout engine, culler, rubber-band selector, selection and
// loader together for one scrolling container. It is driven by discrete UI
// events and must only be used from the UI thread.
type Grid struct {
	cfg Config

	items   []AssetRecord
	version uint64

	engine  Engine
	layout  Layout
	index   *IntervalIndex
	visible []LayoutItem

	size   Size
	scroll float32

	selection  *Selection
	gesture    DragGestureState
	preview    IDSet
	previewing bool
	loader     *Loader

	// OnLayoutChange fires after a recompute is published.
	OnLayoutChange func(Layout)
	// OnVisibleChange fires after every cull with the items to render.
	OnVisibleChange func([]LayoutItem)
	// OnPreview reports the ids under the rubber-band whenever they change
	// while dragging, and nil when the gesture ends.
	OnPreview func(IDSet)
	// OnBoxSelect fires when a rubber-band gesture is released.
	OnBoxSelect func(ids IDSet, additive bool)
	// OnLoadError receives page fetch failures.
	OnLoadError func(error)
}

// NewGrid returns an empty grid with no known container size.
func NewGrid(cfg Config) *Grid {
	return &Grid{
		cfg:       cfg,
		selection: NewSelection(),
	}
}

// Config returns the active configuration.
func (g *Grid) Config() Config {
	return g.cfg
}

// SetConfig replaces the configuration and relays out if needed.
func (g *Grid) SetConfig(cfg Config) {
	g.cfg = cfg
	g.relayout()
}

// Selection returns the grid's selection state.
func (g *Grid) Selection() *Selection {
	return g.selection
}

// Items returns the loaded records in display order.
func (g *Grid) Items() []AssetRecord {
	return g.items
}

// Record returns the record at index.
func (g *Grid) Record(index int) (AssetRecord, bool) {
	if index < 0 || index >= len(g.items) {
		return AssetRecord{}, false
	}
	return g.items[index], true
}

// Layout returns the last published layout.
func (g *Grid) Layout() Layout {
	return g.layout
}

// Visible returns the items that must currently be rendered.
func (g *Grid) Visible() []LayoutItem {
	return g.visible
}

// Scroll returns the current scroll offset.
func (g *Grid) Scroll() float32 {
	return g.scroll
}

// Size returns the last container size passed to Resize.
func (g *Grid) Size() Size {
	return g.size
}

// Recomputes returns how often the layout was actually recomputed.
func (g *Grid) Recomputes() int {
	return g.engine.Recomputes()
}

// MaxScroll is the largest useful scroll offset for the current layout.
func (g *Grid) MaxScroll() float32 {
	m := g.layout.TotalHeight - g.size.Height
	if m < 0 {
		return 0
	}
	return m
}

// SetItems replaces the item list. The grid keeps its own copy.
func (g *Grid) SetItems(items []AssetRecord) {
	g.items = slices.Clone(items)
	g.version++
	g.clearLayout()
	g.relayout()
}

// AppendItems adds records to the end of the list and then recomputes, so
// the new layout always sees the complete list.
func (g *Grid) AppendItems(recs []AssetRecord) {
	if len(recs) == 0 {
		return
	}
	g.items = append(g.items, recs...)
	g.version++
	g.relayout()
}

// Resize updates the container size. A zero width means the container is not
// laid out yet and the layout is left alone.
func (g *Grid) Resize(size Size) {
	g.size = size
	g.relayout()
}

// SetScroll moves the viewport. It never recomputes positions.
func (g *Grid) SetScroll(offset float32) {
	if offset < 0 {
		offset = 0
	}
	g.scroll = offset
	if g.gesture.Active {
		g.reduce(ScrollChanged{Scroll: offset})
	}
	g.cull()
	g.checkLoad()
}

// AttachLoader lets l feed this grid. Pages are appended as they arrive and
// the first page is requested once the container has a size.
func (g *Grid) AttachLoader(l *Loader) {
	g.loader = l
	l.OnAppend = g.AppendItems
	l.OnError = func(err error) {
		if g.OnLoadError != nil {
			g.OnLoadError(err)
		}
	}
	g.checkLoad()
}

// Loader returns the attached loader, if any.
func (g *Grid) Loader() *Loader {
	return g.loader
}

// Reset starts over for a new query: items, selection and gesture are
// dropped and any fetch in flight is discarded.
func (g *Grid) Reset() {
	g.items = nil
	g.version++
	g.scroll = 0
	g.gesture = DragGestureState{}
	g.endPreview()
	g.selection.Clear()
	if g.loader != nil {
		g.loader.Reset()
	}
	g.clearLayout()
	g.relayout()
}

// Close discards pending work. The grid must not be used afterwards.
func (g *Grid) Close() {
	if g.loader != nil {
		g.loader.Close()
	}
}

// ItemAt returns the layout item under a content coordinate.
func (g *Grid) ItemAt(p Point) (LayoutItem, bool) {
	if it, ok := ItemAt(g.visible, p); ok {
		return it, true
	}
	return ItemAt(g.layout.Items, p)
}

// Click applies the usual selection semantics for a click on the item at
// index: toggle with ModToggle, range with ModShift, otherwise select only it.
func (g *Grid) Click(index int, mods Modifiers) {
	rec, ok := g.Record(index)
	if !ok {
		return
	}
	switch {
	case mods&ModToggle != 0:
		g.selection.Toggle(rec.ID)
	case mods&ModShift != 0:
		g.selection.Extend(g.items, rec.ID)
	default:
		g.selection.SelectOnly(rec.ID)
	}
}

// PointerDown starts a rubber-band gesture unless the press is on a tile or
// not with the primary button.
func (g *Grid) PointerDown(pos, origin Point, button PointerButton) {
	_, over := g.ItemAt(ToContent(pos, origin, g.scroll))
	g.reduce(PointerDown{Pos: pos, Origin: origin, Scroll: g.scroll, Button: button, OverTile: over})
}

// PointerMove updates an active gesture.
func (g *Grid) PointerMove(pos, origin Point) {
	g.reduce(PointerMove{Pos: pos, Origin: origin, Scroll: g.scroll})
}

// PointerUp ends the gesture and applies its selection.
func (g *Grid) PointerUp(mods Modifiers) {
	res := g.reduce(PointerUp{Modifiers: mods})
	g.endPreview()
	if !res.Done {
		return
	}
	if res.Additive {
		g.selection.MergeWith(res.Selected)
	} else {
		g.selection.ReplaceWith(res.Selected)
	}
	if g.OnBoxSelect != nil {
		g.OnBoxSelect(res.Selected.Clone(), res.Additive)
	}
}

// CancelGesture drops an active gesture without changing the selection.
func (g *Grid) CancelGesture() {
	g.reduce(GestureCancel{})
	g.endPreview()
}

// Dragging reports whether a rubber-band rectangle is currently shown.
func (g *Grid) Dragging() bool {
	return g.gesture.Dragging
}

// GestureRect returns the rubber-band rectangle in content coordinates.
func (g *Grid) GestureRect() (Rect, bool) {
	if !g.gesture.Dragging {
		return Rect{}, false
	}
	return g.gesture.Rect(), true
}

func (g *Grid) reduce(ev GestureEvent) GestureResult {
	var res GestureResult
	g.gesture, res = ReduceGesture(g.gesture, ev, g.layout.Items, g.cfg.DragThreshold)
	if res.Preview == nil || (g.previewing && res.Preview.Equal(g.preview)) {
		return res
	}
	g.preview = res.Preview
	g.previewing = true
	if g.OnPreview != nil {
		g.OnPreview(res.Preview)
	}
	return res
}

func (g *Grid) endPreview() {
	if !g.previewing {
		return
	}
	g.preview = nil
	g.previewing = false
	if g.OnPreview != nil {
		g.OnPreview(nil)
	}
}

// clearLayout drops the published layout after the item list was replaced,
// so nothing refers to old indices while the container has no size.
func (g *Grid) clearLayout() {
	g.layout = Layout{}
	g.index = nil
	g.visible = nil
}

func (g *Grid) relayout() {
	if g.size.Width <= 0 {
		return
	}

	cols, width := Columns(g.size.Width, g.cfg.MinColumnWidth, g.cfg.Gap)
	before := g.engine.Recomputes()
	g.layout = g.engine.Layout(g.items, g.version, cols, width, g.cfg)
	if g.engine.Recomputes() != before {
		g.index = nil
		if g.cfg.IndexThreshold > 0 && len(g.layout.Items) > g.cfg.IndexThreshold {
			g.index = NewIntervalIndex(g.layout.Items)
		}
		if g.OnLayoutChange != nil {
			g.OnLayoutChange(g.layout)
		}
	}

	if m := g.MaxScroll(); g.scroll > m {
		g.scroll = m
	}
	g.cull()
	g.checkLoad()
}

func (g *Grid) cull() {
	if g.index != nil {
		g.visible = g.index.Cull(g.scroll, g.size.Height, g.cfg.BufferPx)
	} else {
		g.visible = Cull(g.layout.Items, g.scroll, g.size.Height, g.cfg.BufferPx)
	}
	if g.OnVisibleChange != nil {
		g.OnVisibleChange(g.visible)
	}
}

func (g *Grid) checkLoad() {
	if g.loader == nil || g.size.Width <= 0 {
		return
	}
	g.loader.Check(g.layout.TotalHeight - (g.scroll + g.size.Height))
}
