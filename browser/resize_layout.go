package browser

import (
	"fyne.io/fyne/v2"

	"github.com/alexballas/assetgrid/masonry"
)

// resizeLayout lays out its objects with internal and reports every real
// size change to the adapter. The adapter defers the grid update out of the
// layout pass, since changing the UI during layout can panic in the driver.
type resizeLayout struct {
	internal fyne.Layout
	adapter  *masonry.ResizeAdapter
}

func (r *resizeLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	r.internal.Layout(objects, size)
	if r.adapter != nil {
		r.adapter.Notify(masonry.Size{Width: size.Width, Height: size.Height})
	}
}

func (r *resizeLayout) MinSize(objects []fyne.CanvasObject) fyne.Size {
	return r.internal.MinSize(objects)
}

// tileLayout positions tiles at their masonry coordinates. Its min height is
// the full content height so the scroll container knows the extent.
type tileLayout struct {
	grid *masonry.Grid
}

func (t *tileLayout) Layout(objects []fyne.CanvasObject, _ fyne.Size) {
	for _, o := range objects {
		tile, ok := o.(*assetTile)
		if !ok {
			continue
		}
		it := tile.item
		tile.Move(fyne.NewPos(it.X, it.Y))
		tile.Resize(fyne.NewSize(it.Width, it.TotalHeight))
	}
}

func (t *tileLayout) MinSize([]fyne.CanvasObject) fyne.Size {
	return fyne.NewSize(0, t.grid.Layout().TotalHeight)
}
