package browser

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"

	"github.com/alexballas/assetgrid/assetindex"
	"github.com/alexballas/assetgrid/masonry"
)

func testRecords(n int) []masonry.AssetRecord {
	recs := make([]masonry.AssetRecord, n)
	for i := range recs {
		recs[i] = masonry.AssetRecord{
			ID:     int64(i + 1),
			Name:   fmt.Sprintf("asset-%04d.png", i),
			Width:  400,
			Height: 300,
		}
	}
	return recs
}

func testConfig() masonry.Config {
	cfg := masonry.DefaultConfig()
	cfg.ResizeInterval = 0
	return cfg
}

// newTestGrid returns a grid laid out at 964x600 through the widget's own
// resize path.
func newTestGrid(t *testing.T) *AssetGrid {
	t.Helper()
	g := NewAssetGrid(testConfig())
	g.runFetch = func(f func()) { f() }
	test.WidgetRenderer(g)
	g.Resize(fyne.NewSize(964, 600))
	fyne.DoAndWait(func() {})

	if got := g.grid.Size().Width; got != 964 {
		t.Fatalf("expected the grid to see width 964, got %v", got)
	}
	return g
}

func tiles(g *AssetGrid) []*assetTile {
	out := make([]*assetTile, 0, len(g.content.Objects))
	for _, o := range g.content.Objects {
		out = append(out, o.(*assetTile))
	}
	return out
}

func tileFor(t *testing.T, g *AssetGrid, index int) *assetTile {
	t.Helper()
	for _, tile := range tiles(g) {
		if tile.index == index {
			return tile
		}
	}
	t.Fatalf("no tile rendered for index %d", index)
	return nil
}

func primaryUp(mods fyne.KeyModifier) *desktop.MouseEvent {
	return &desktop.MouseEvent{Button: desktop.MouseButtonPrimary, Modifier: mods}
}

func TestAssetGrid_RendersOnlyVisibleTiles(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	g := newTestGrid(t)
	g.SetItems(testRecords(1000))

	if cols := g.grid.Layout().Columns; cols != 5 {
		t.Fatalf("expected 5 columns at 964px, got %d", cols)
	}
	rendered := len(g.content.Objects)
	if rendered == 0 || rendered != len(g.grid.Visible()) {
		t.Fatalf("expected one tile per visible item, got %d tiles for %d items", rendered, len(g.grid.Visible()))
	}
	if rendered >= 100 {
		t.Fatalf("expected only tiles near the viewport, got %d", rendered)
	}

	recomputes := g.grid.Recomputes()
	g.ScrollTo(5000)

	if g.grid.Scroll() != 5000 {
		t.Fatalf("expected scroll 5000, got %v", g.grid.Scroll())
	}
	cfg := g.grid.Config()
	for _, tile := range tiles(g) {
		it := tile.item
		if it.Y+it.TotalHeight < 5000-cfg.BufferPx || it.Y > 5000+600+cfg.BufferPx {
			t.Fatalf("tile for index %d at y=%v is outside the viewport", it.Index, it.Y)
		}
		if tile.rec.ID != int64(it.Index+1) {
			t.Fatalf("tile bound to the wrong record: %d for index %d", tile.rec.ID, it.Index)
		}
	}
	if g.grid.Recomputes() != recomputes {
		t.Fatal("scrolling must not recompute the layout")
	}
	if len(g.content.Objects)+len(g.free) < rendered {
		t.Fatal("expected released tiles to return to the pool")
	}
}

func TestAssetGrid_ClickSelection(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	g := newTestGrid(t)
	g.SetItems(testRecords(50))

	var changes int
	var clicked []int
	g.OnSelectionChange = func(masonry.IDSet) { changes++ }
	g.OnItemClick = func(_ masonry.AssetRecord, index int, _ masonry.Modifiers) {
		clicked = append(clicked, index)
	}

	tileFor(t, g, 0).MouseUp(primaryUp(0))
	if !g.Selection().Has(1) || g.Selection().Len() != 1 {
		t.Fatalf("expected only id 1 selected, got %v", g.Selection().IDs().Sorted())
	}
	if !tileFor(t, g, 0).selected {
		t.Fatal("expected the clicked tile to be highlighted")
	}

	tileFor(t, g, 3).MouseUp(primaryUp(fyne.KeyModifierShift))
	if got := g.Selection().IDs().Sorted(); len(got) != 4 || got[0] != 1 || got[3] != 4 {
		t.Fatalf("expected range 1..4 selected, got %v", got)
	}

	tileFor(t, g, 2).MouseUp(primaryUp(fyne.KeyModifierControl))
	if g.Selection().Has(3) || g.Selection().Len() != 3 {
		t.Fatalf("expected id 3 toggled off, got %v", g.Selection().IDs().Sorted())
	}
	if tileFor(t, g, 2).selected {
		t.Fatal("expected the toggled tile to lose its highlight")
	}

	tileFor(t, g, 1).MouseUp(&desktop.MouseEvent{Button: desktop.MouseButtonSecondary})
	if changes != 3 || len(clicked) != 3 {
		t.Fatalf("expected 3 selection changes and clicks, got %d and %d", changes, len(clicked))
	}
}

func TestAssetGrid_RubberBandThroughOverlay(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	g := newTestGrid(t)
	g.SetItems(testRecords(50))

	var boxed masonry.IDSet
	g.OnBoxSelect = func(ids masonry.IDSet, additive bool) {
		if additive {
			t.Error("expected a replacing selection without modifiers")
		}
		boxed = ids
	}

	// Start in the gap between the first two columns, end inside column 1.
	start := fyne.NewPos(190, 2)
	end := fyne.NewPos(300, 100)
	g.overlay.Dragged(&fyne.DragEvent{
		PointEvent: fyne.PointEvent{Position: end},
		Dragged:    fyne.NewDelta(end.X-start.X, end.Y-start.Y),
	})
	if !g.grid.Dragging() || !g.overlay.rect.Visible() {
		t.Fatal("expected the rubber band to be shown")
	}
	if !tileFor(t, g, 1).selected {
		t.Fatal("expected the tile under the band to be previewed")
	}

	g.overlay.DragEnd()
	if g.overlay.rect.Visible() {
		t.Fatal("expected the band to be hidden after release")
	}
	if boxed.Len() != 1 || !boxed.Has(2) {
		t.Fatalf("expected id 2 box selected, got %v", boxed.Sorted())
	}
	if !g.Selection().Has(2) || g.Selection().Len() != 1 {
		t.Fatalf("expected selection {2}, got %v", g.Selection().IDs().Sorted())
	}

	// The click delivered right after the drag is swallowed.
	tileFor(t, g, 4).MouseUp(primaryUp(0))
	if g.Selection().Has(5) {
		t.Fatal("expected the post-drag click to be ignored")
	}
}

func TestAssetGrid_DragFromTileDoesNotBand(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	g := newTestGrid(t)
	g.SetItems(testRecords(50))

	start := fyne.NewPos(50, 50)
	end := fyne.NewPos(400, 300)
	g.overlay.Dragged(&fyne.DragEvent{
		PointEvent: fyne.PointEvent{Position: end},
		Dragged:    fyne.NewDelta(end.X-start.X, end.Y-start.Y),
	})
	if g.grid.Dragging() {
		t.Fatal("a drag starting on a tile must not start a rubber band")
	}
	g.overlay.DragEnd()
	if g.Selection().Len() != 0 {
		t.Fatalf("expected no selection, got %v", g.Selection().IDs().Sorted())
	}
}

func TestAssetGrid_PagesFromIndex(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	g := newTestGrid(t)
	idx := assetindex.NewMemoryIndex(testRecords(250))

	var states []masonry.LoadState
	g.OnLoadStateChange = func(s masonry.LoadState) { states = append(states, s) }
	g.SetSource(assetindex.Bind(idx, assetindex.Filter{}, assetindex.Sort{}))
	fyne.DoAndWait(func() {})

	if got := len(g.grid.Items()); got != 100 {
		t.Fatalf("expected the first page of 100, got %d", got)
	}
	if len(g.content.Objects) == 0 {
		t.Fatal("expected tiles for the first page")
	}

	for i := 0; i < 5 && g.grid.Loader().State() != masonry.LoadExhausted; i++ {
		g.ScrollTo(g.grid.MaxScroll())
		fyne.DoAndWait(func() {})
	}
	if got := len(g.grid.Items()); got != 250 {
		t.Fatalf("expected all 250 records, got %d", got)
	}
	if g.grid.Loader().State() != masonry.LoadExhausted {
		t.Fatalf("expected exhausted loader, got %v", g.grid.Loader().State())
	}
	if len(states) == 0 || states[len(states)-1] != masonry.LoadExhausted {
		t.Fatalf("expected state changes ending in exhausted, got %v", states)
	}

	// A new query starts over from the top.
	g.Selection().SelectOnly(1)
	g.SetSource(assetindex.Bind(idx, assetindex.Filter{Search: "asset-000"}, assetindex.Sort{}))
	fyne.DoAndWait(func() {})
	if got := len(g.grid.Items()); got != 10 {
		t.Fatalf("expected 10 records for the new query, got %d", got)
	}
	if g.grid.Scroll() != 0 || g.Selection().Len() != 0 {
		t.Fatalf("expected scroll and selection reset, got scroll %v and %d selected", g.grid.Scroll(), g.Selection().Len())
	}
}

type failingSource struct{}

func (failingSource) QueryPage(context.Context, int, int) (masonry.PageResult, error) {
	return masonry.PageResult{}, errors.New("index offline")
}

func TestAssetGrid_LoadErrorReported(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	g := newTestGrid(t)
	var got error
	g.OnLoadError = func(err error) { got = err }
	g.SetSource(failingSource{})
	fyne.DoAndWait(func() {})

	var le *masonry.LoadError
	if !errors.As(got, &le) || le.Page != 1 {
		t.Fatalf("expected a LoadError for page 1, got %v", got)
	}
	if g.grid.Loader().State() != masonry.LoadIdle {
		t.Fatalf("expected the loader to be idle for a retry, got %v", g.grid.Loader().State())
	}
}

func TestAssetGrid_AnnotateAndZoom(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	g := newTestGrid(t)
	g.Annotate = func(rec masonry.AssetRecord) string {
		if rec.ID%2 == 0 {
			return "★★★"
		}
		return ""
	}
	g.SetItems(testRecords(20))

	if got := tileFor(t, g, 1).badge.Text; got != "★★★" {
		t.Fatalf("expected a badge on id 2, got %q", got)
	}
	if tileFor(t, g, 0).badge.Visible() {
		t.Fatal("expected no badge on id 1")
	}

	g.SetZoomLevel(len(zoomLevels) - 1)
	if cols := g.grid.Layout().Columns; cols != 2 {
		t.Fatalf("expected 2 columns at the largest zoom, got %d", cols)
	}
	g.AdjustZoom(-100)
	if g.ZoomLevel() != 0 {
		t.Fatalf("expected zoom to clamp at 0, got %d", g.ZoomLevel())
	}
	if cols := g.grid.Layout().Columns; cols <= 5 {
		t.Fatalf("expected more columns when zoomed out, got %d", cols)
	}
}

func TestAssetGrid_ZoomPersistsToSettings(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	s := NewSettings(a)
	s.SetMinColumnWidth(200)
	g := NewAssetGridWithSettings(s)
	if got := g.grid.Config().MinColumnWidth; got != 200 {
		t.Fatalf("expected min column width 200, got %v", got)
	}

	g.AdjustZoom(1)
	if s.ZoomLevel() != defaultZoomLevelIndex+1 {
		t.Fatalf("expected zoom level %d persisted, got %d", defaultZoomLevelIndex+1, s.ZoomLevel())
	}
	if got := g.grid.Config().MinColumnWidth; got != 200*zoomLevels[defaultZoomLevelIndex+1] {
		t.Fatalf("expected zoomed min column width, got %v", got)
	}
}
