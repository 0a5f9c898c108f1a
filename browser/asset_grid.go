package browser

import (
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/alexballas/assetgrid/masonry"
)

// AssetGrid is a scrolling masonry grid of asset thumbnails. Only tiles near
// the viewport exist as canvas objects; pages are pulled from the attached
// source as the user scrolls towards the end.
type AssetGrid struct {
	widget.BaseWidget

	OnItemClick       func(rec masonry.AssetRecord, index int, mods masonry.Modifiers)
	OnItemDoubleClick func(rec masonry.AssetRecord, index int)
	OnItemContextMenu func(rec masonry.AssetRecord, index int, pos fyne.Position)
	OnSelectionChange func(ids masonry.IDSet)
	OnBoxSelect       func(ids masonry.IDSet, additive bool)
	OnLoadError       func(err error)
	OnLoadStateChange func(state masonry.LoadState)

	// Annotate returns a short badge text (tags, rating) for a record.
	Annotate func(rec masonry.AssetRecord) string
	// ItemMenu, when set, builds a context menu shown on secondary tap.
	ItemMenu func(rec masonry.AssetRecord, index int) *fyne.Menu

	grid     *masonry.Grid
	baseCfg  masonry.Config
	settings *Settings

	scroll      *container.Scroll
	content     *fyne.Container
	overlay     *selectionOverlay
	zoomOverlay *zoomScrollOverlay
	resize      *masonry.ResizeAdapter

	tiles map[int]*assetTile
	free  []*assetTile

	preview         masonry.IDSet
	previewAdditive bool

	zoomLevel int

	layoutDirty bool
	syncing     bool

	// runFetch overrides how the loader starts fetches.
	runFetch func(func())

	lastDragTime     time.Time
	dragCurViewport  fyne.Position
	autoScrollTicker *time.Ticker
	autoScrollStop   chan struct{}
	autoScrollDir    int
	autoScrollStep   float32
}

// NewAssetGrid returns an empty grid using cfg.
func NewAssetGrid(cfg masonry.Config) *AssetGrid {
	g := &AssetGrid{
		baseCfg:   cfg,
		zoomLevel: defaultZoomLevelIndex,
		tiles:     map[int]*assetTile{},
	}
	g.grid = masonry.NewGrid(cfg)
	g.grid.OnLayoutChange = func(masonry.Layout) { g.layoutDirty = true }
	g.grid.OnVisibleChange = g.syncTiles
	g.grid.OnPreview = g.setPreview
	g.grid.OnBoxSelect = func(ids masonry.IDSet, additive bool) {
		if g.OnBoxSelect != nil {
			g.OnBoxSelect(ids, additive)
		}
	}
	g.grid.OnLoadError = func(err error) {
		fyne.LogError("Failed to load assets", err)
		if g.OnLoadError != nil {
			g.OnLoadError(err)
		}
	}
	g.grid.Selection().OnChange = func(ids masonry.IDSet) {
		g.refreshHighlights()
		if g.OnSelectionChange != nil {
			g.OnSelectionChange(ids)
		}
	}

	g.content = container.New(&tileLayout{grid: g.grid})
	g.scroll = container.NewVScroll(g.content)
	g.scroll.OnScrolled = g.onScrolled
	g.overlay = newSelectionOverlay(g.onDragStart, g.onDragMove, g.onDragEnd)
	if fyne.CurrentDevice().IsMobile() {
		// Dragging scrolls on touch screens.
		g.overlay.Hide()
	}
	g.zoomOverlay = newZoomScrollOverlay(g.AdjustZoom)
	g.resize = masonry.NewResizeAdapter(cfg.ResizeInterval, fyne.Do, g.onResize)

	g.ExtendBaseWidget(g)
	return g
}

// NewAssetGridWithSettings returns a grid configured from, and persisting
// zoom changes to, s.
func NewAssetGridWithSettings(s *Settings) *AssetGrid {
	g := NewAssetGrid(s.Config(masonry.DefaultConfig()))
	g.settings = s
	g.zoomLevel = s.ZoomLevel()
	g.applyConfig()
	return g
}

func (g *AssetGrid) CreateRenderer() fyne.WidgetRenderer {
	root := container.New(&resizeLayout{
		internal: layout.NewStackLayout(),
		adapter:  g.resize,
	}, g.scroll, g.overlay, g.zoomOverlay)
	return widget.NewSimpleRenderer(root)
}

// Grid exposes the underlying controller.
func (g *AssetGrid) Grid() *masonry.Grid {
	return g.grid
}

// Selection returns the selection state.
func (g *AssetGrid) Selection() *masonry.Selection {
	return g.grid.Selection()
}

// SelectAll selects every loaded record.
func (g *AssetGrid) SelectAll() {
	g.grid.Selection().SelectAll(g.grid.Items())
}

// SetSource starts a new query: everything loaded so far is dropped, the
// scroll position returns to the top and pages are fetched from src.
func (g *AssetGrid) SetSource(src masonry.PageSource) {
	g.stopAutoScroll()
	g.grid.CancelGesture()

	if l := g.grid.Loader(); l != nil {
		l.SetSource(src)
		g.grid.Reset()
	} else {
		g.grid.Reset()
		l := masonry.NewLoader(src, g.baseCfg.PageSize, g.baseCfg.LoadThreshold, fyne.Do)
		if g.runFetch != nil {
			l.Run = g.runFetch
		}
		l.OnStateChange = func(s masonry.LoadState) {
			if g.OnLoadStateChange != nil {
				g.OnLoadStateChange(s)
			}
		}
		g.grid.AttachLoader(l)

		appendItems := l.OnAppend
		l.OnAppend = func(recs []masonry.AssetRecord) {
			appendItems(recs)
			g.prewarm(recs)
		}
	}
	g.layoutDirty = true
	g.syncTiles(g.grid.Visible())
}

// SetItems shows a fixed list of records, detaching any paged source.
func (g *AssetGrid) SetItems(recs []masonry.AssetRecord) {
	if l := g.grid.Loader(); l != nil {
		l.Close()
	}
	g.grid.Selection().Clear()
	g.grid.SetItems(recs)
	g.layoutDirty = true
	g.syncTiles(g.grid.Visible())
}

// Refresh re-reads annotations and selection state of the visible tiles.
func (g *AssetGrid) Refresh() {
	g.syncTiles(g.grid.Visible())
	g.BaseWidget.Refresh()
}

// ScrollTo moves the viewport to a content offset.
func (g *AssetGrid) ScrollTo(offset float32) {
	offset = max(0, min(offset, g.grid.MaxScroll()))
	g.syncing = true
	g.scroll.Offset = fyne.NewPos(0, offset)
	g.scroll.Refresh()
	g.syncing = false

	g.grid.SetScroll(offset)
	g.refreshBand()
}

// ZoomLevel returns the current zoom step.
func (g *AssetGrid) ZoomLevel() int {
	return g.zoomLevel
}

// SetZoomLevel changes the zoom step, which scales the minimum column width.
func (g *AssetGrid) SetZoomLevel(level int) {
	level = clampZoomLevelIndex(level)
	if level == g.zoomLevel {
		return
	}
	g.zoomLevel = level
	if g.settings != nil {
		g.settings.SetZoomLevel(level)
	}
	g.applyConfig()
}

// AdjustZoom moves the zoom by steps, positive zooming in.
func (g *AssetGrid) AdjustZoom(steps int) {
	if steps != 0 {
		g.SetZoomLevel(g.zoomLevel + steps)
	}
}

// SetConfig replaces the grid configuration.
func (g *AssetGrid) SetConfig(cfg masonry.Config) {
	g.baseCfg = cfg
	g.resize.MinInterval = cfg.ResizeInterval
	g.applyConfig()
}

// Close stops background work. The grid must not be used afterwards.
func (g *AssetGrid) Close() {
	g.stopAutoScroll()
	g.resize.Stop()
	g.grid.Close()
	for _, t := range g.tiles {
		t.release()
	}
}

func (g *AssetGrid) applyConfig() {
	cfg := g.baseCfg
	cfg.MinColumnWidth *= zoomLevels[clampZoomLevelIndex(g.zoomLevel)]
	g.grid.SetConfig(cfg)
}

func (g *AssetGrid) onResize(size masonry.Size) {
	g.grid.Resize(size)
}

func (g *AssetGrid) onScrolled(p fyne.Position) {
	if g.syncing {
		return
	}
	g.grid.SetScroll(p.Y)
	g.refreshBand()
}

func (g *AssetGrid) canvasScale() float32 {
	if app := fyne.CurrentApp(); app != nil {
		if c := app.Driver().CanvasForObject(g); c != nil {
			return c.Scale()
		}
	}
	return 1
}

// syncTiles binds a pooled tile to every visible item. Tiles of items that
// left the viewport go back to the pool first so they can be reused.
func (g *AssetGrid) syncTiles(visible []masonry.LayoutItem) {
	items := g.grid.Items()
	needed := make(map[int]struct{}, len(visible))
	for _, it := range visible {
		needed[it.Index] = struct{}{}
	}
	for idx, t := range g.tiles {
		if _, ok := needed[idx]; !ok {
			t.release()
			g.free = append(g.free, t)
			delete(g.tiles, idx)
		}
	}

	objects := make([]fyne.CanvasObject, 0, len(visible))
	for _, it := range visible {
		if it.Index >= len(items) {
			continue
		}
		t, ok := g.tiles[it.Index]
		if !ok {
			t = g.acquireTile()
			g.tiles[it.Index] = t
		}
		rec := items[it.Index]
		annotation := ""
		if g.Annotate != nil {
			annotation = g.Annotate(rec)
		}
		t.bind(it.Index, rec, it, annotation)
		t.setSelected(g.highlighted(rec.ID))
		objects = append(objects, t)
	}

	g.content.Objects = objects
	g.content.Refresh()

	if g.layoutDirty {
		g.layoutDirty = false
		// Refreshing the scroller can report an offset back; the grid's
		// own offset is already authoritative here.
		g.syncing = true
		g.scroll.Offset = fyne.NewPos(0, g.grid.Scroll())
		g.scroll.Refresh()
		g.syncing = false
	}
}

func (g *AssetGrid) acquireTile() *assetTile {
	if n := len(g.free); n > 0 {
		t := g.free[n-1]
		g.free = g.free[:n-1]
		return t
	}
	return newAssetTile(g)
}

func (g *AssetGrid) highlighted(id int64) bool {
	if g.preview != nil {
		if g.preview.Has(id) {
			return true
		}
		return g.previewAdditive && g.grid.Selection().Has(id)
	}
	return g.grid.Selection().Has(id)
}

func (g *AssetGrid) refreshHighlights() {
	items := g.grid.Items()
	for idx, t := range g.tiles {
		if idx < len(items) {
			t.setSelected(g.highlighted(items[idx].ID))
		}
	}
}

func (g *AssetGrid) setPreview(ids masonry.IDSet) {
	g.preview = ids
	g.refreshHighlights()
}

func (g *AssetGrid) prewarm(recs []masonry.AssetRecord) {
	refs := make([]string, 0, len(recs))
	for _, r := range recs {
		if r.ThumbnailRef != "" {
			refs = append(refs, r.ThumbnailRef)
		}
	}
	if len(refs) == 0 {
		return
	}
	width := thumbnailWidth(g.grid.Layout().ColumnWidth * g.canvasScale())
	GetThumbnailManager().Prewarm(refs, width)
}

func (g *AssetGrid) tileClicked(index int, mods masonry.Modifiers) {
	rec, ok := g.grid.Record(index)
	if !ok {
		return
	}
	g.grid.Click(index, mods)
	if g.OnItemClick != nil {
		g.OnItemClick(rec, index, mods)
	}
}

func (g *AssetGrid) tileDoubleClicked(index int) {
	rec, ok := g.grid.Record(index)
	if !ok || g.OnItemDoubleClick == nil {
		return
	}
	g.OnItemDoubleClick(rec, index)
}

func (g *AssetGrid) tileContextMenu(index int, pos fyne.Position) {
	rec, ok := g.grid.Record(index)
	if !ok {
		return
	}
	if g.OnItemContextMenu != nil {
		g.OnItemContextMenu(rec, index, pos)
	}
	if g.ItemMenu == nil {
		return
	}
	menu := g.ItemMenu(rec, index)
	if menu == nil {
		return
	}
	if c := fyne.CurrentApp().Driver().CanvasForObject(g); c != nil {
		widget.ShowPopUpMenuAtPosition(menu, c, pos)
	}
}

// suppressClick reports whether a tile click belongs to a rubber-band drag.
func (g *AssetGrid) suppressClick() bool {
	return g.grid.Dragging() || time.Since(g.lastDragTime) < clickGuard
}

func (g *AssetGrid) onDragStart(pos fyne.Position) {
	g.grid.PointerDown(toPoint(pos), masonry.Point{}, masonry.ButtonPrimary)
}

func (g *AssetGrid) onDragMove(pos fyne.Position) {
	g.dragCurViewport = pos
	g.previewAdditive = modifiersFrom(currentModifiers()).Additive()
	g.grid.PointerMove(toPoint(pos), masonry.Point{})
	g.refreshBand()
	g.updateAutoScroll()
}

func (g *AssetGrid) onDragEnd() {
	g.stopAutoScroll()
	if g.grid.Dragging() {
		g.lastDragTime = time.Now()
	}
	g.grid.PointerUp(modifiersFrom(currentModifiers()))
	g.previewAdditive = false
	g.refreshBand()
}

// refreshBand draws the rubber-band rectangle of the active gesture.
func (g *AssetGrid) refreshBand() {
	r, ok := g.grid.GestureRect()
	if !ok {
		g.overlay.hideRect()
		return
	}
	scroll := g.grid.Scroll()
	g.overlay.showRect(
		fyne.NewPos(r.Min.X, r.Min.Y-scroll),
		fyne.NewPos(r.Max.X, r.Max.Y-scroll),
	)
}

func (g *AssetGrid) updateAutoScroll() {
	if !g.grid.Dragging() {
		g.stopAutoScroll()
		return
	}

	size := g.scroll.Size()
	if size.Height <= 0 {
		g.stopAutoScroll()
		return
	}

	zone := max(theme.Padding()*4, 24)
	zone = min(zone, size.Height/2)

	var dir int
	var intensity float32
	if g.dragCurViewport.Y < zone {
		dir = -1
		intensity = (zone - g.dragCurViewport.Y) / zone
	} else if g.dragCurViewport.Y > size.Height-zone {
		dir = 1
		intensity = (g.dragCurViewport.Y - (size.Height - zone)) / zone
	}
	intensity = min(intensity, 1)

	if dir == 0 || intensity <= 0 {
		g.stopAutoScroll()
		return
	}

	maxStep := min(max(g.grid.Layout().ColumnWidth*0.25, 12), 80)
	g.autoScrollDir = dir
	g.autoScrollStep = intensity * maxStep
	g.startAutoScroll()
}

func (g *AssetGrid) startAutoScroll() {
	if g.autoScrollTicker != nil {
		return
	}
	g.autoScrollTicker = time.NewTicker(autoScrollInterval)
	g.autoScrollStop = make(chan struct{})

	stop := g.autoScrollStop
	ticker := g.autoScrollTicker
	go func() {
		for {
			select {
			case <-ticker.C:
				fyne.Do(g.autoScrollTick)
			case <-stop:
				return
			}
		}
	}()
}

func (g *AssetGrid) stopAutoScroll() {
	if g.autoScrollTicker == nil {
		return
	}
	g.autoScrollTicker.Stop()
	g.autoScrollTicker = nil
	if g.autoScrollStop != nil {
		close(g.autoScrollStop)
		g.autoScrollStop = nil
	}
	g.autoScrollDir = 0
	g.autoScrollStep = 0
}

func (g *AssetGrid) autoScrollTick() {
	if !g.grid.Dragging() || g.autoScrollDir == 0 || g.autoScrollStep <= 0 {
		g.stopAutoScroll()
		return
	}

	offset := g.grid.Scroll()
	next := offset + float32(g.autoScrollDir)*g.autoScrollStep
	next = max(0, min(next, g.grid.MaxScroll()))
	if next == offset {
		g.stopAutoScroll()
		return
	}

	// The grid feeds the new offset into the gesture, so the band keeps its
	// content anchored while the pointer is held at the edge.
	g.ScrollTo(next)
}
